// Copyright © 2020 The Pea Authors under an MIT-style license.

package subtype

import (
	"github.com/eaburns/flow/types"
)

// A term is a signed type.
// A negative term stands for the negation of its type.
// max is whether nominal types are expanded regardless of their invariants.
type term struct {
	sign bool
	typ  types.Type
	max  bool
}

func (t term) key() string {
	var p string
	switch {
	case t.sign && t.max:
		p = "+M"
	case t.sign:
		p = "+m"
	case t.max:
		p = "-M"
	default:
		p = "-m"
	}
	return p + types.Key(t.typ)
}

func (t term) String() string {
	if t.sign {
		return t.typ.String()
	}
	return types.Not(t.typ).String()
}

// isVoidTerm returns whether the intersection of two terms is void.
func (x *prover) isVoidTerm(a, b term) (void bool, err error) {
	ka, kb := a.key(), b.key()
	if kb < ka {
		ka, kb = kb, ka
	}
	k := [2]string{ka, kb}
	if x.assumptions[k] {
		return true, nil
	}
	x.assumptions[k] = true
	defer delete(x.assumptions, k)
	defer x.tr("isVoid(%s & %s)", a, b)(&err)
	return x.isVoid(nil, []term{a, b})
}

// isVoid returns whether the conjunction of truths and work is void.
// Atoms are moved from work into truths;
// every other term is expanded until work is empty.
func (x *prover) isVoid(truths, work []term) (bool, error) {
	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]
		switch t := item.typ.(type) {
		case *types.Union:
			// !(A|B) is !A & !B; A|B is a disjunction.
			void, done, err := x.expand(truths, &work, item, t.Elems, !item.sign)
			if err != nil || done {
				return void, err
			}
		case *types.Intersection:
			// A&B is a conjunction; !(A&B) is !A | !B.
			void, done, err := x.expand(truths, &work, item, t.Elems, item.sign)
			if err != nil || done {
				return void, err
			}
		case *types.Negation:
			work = append(work, term{sign: !item.sign, typ: t.Elem, max: !item.max})
		case *types.Nominal:
			d, err := x.resolveContractive(t.Name)
			if err != nil {
				return false, err
			}
			// The name itself is kept as an opaque atom,
			// so a nominal contradicts its own negation
			// even when its definition is not expanded.
			truths = append(truths, term{sign: item.sign, typ: t, max: item.max})
			switch {
			case item.max || !d.Invariant:
				work = append(work, term{sign: item.sign, typ: d.Type, max: item.max})
			case item.sign:
				// Minimised, so the invariant may exclude every value.
				return true, nil
			}
		default:
			truths = append(truths, item)
		}
	}
	for _, t := range truths {
		if isEmptyAtom(t) {
			return true, nil
		}
	}
	for i := 0; i < len(truths); i++ {
		for j := i + 1; j < len(truths); j++ {
			void, err := x.isVoidAtom(truths[i], truths[j])
			if err != nil || void {
				return void, err
			}
		}
	}
	return false, nil
}

// expand expands the operands of a union or intersection term.
// For a conjunction, the operands are added to work and done is false.
// For a disjunction, every operand is decided on a copy of the current state;
// done is true and void is whether every operand was void.
func (x *prover) expand(truths []term, work *[]term, item term, elems []types.Type, conjunct bool) (void, done bool, err error) {
	if conjunct {
		for _, e := range elems {
			*work = append(*work, term{sign: item.sign, typ: e, max: item.max})
		}
		return false, false, nil
	}
	for _, e := range elems {
		w := make([]term, len(*work), len(*work)+1)
		copy(w, *work)
		w = append(w, term{sign: item.sign, typ: e, max: item.max})
		ts := append([]term{}, truths...)
		v, err := x.isVoid(ts, w)
		if err != nil || !v {
			return false, true, err
		}
	}
	return true, true, nil
}

// isEmptyAtom returns whether an atom alone is void: void or !any.
func isEmptyAtom(t term) bool {
	return t.sign && t.typ == types.Void || !t.sign && t.typ == types.Any
}

func isOpaque(t types.Type) bool {
	switch t.(type) {
	case *types.Var, *types.Existential, *types.Nominal:
		return true
	default:
		return false
	}
}

// isVoidAtom returns whether the intersection of two atoms is void.
// Neither atom is alone void.
func (x *prover) isVoidAtom(a, b term) (bool, error) {
	if isOpaque(a.typ) || isOpaque(b.typ) {
		if types.Equal(a.typ, b.typ) {
			return a.sign != b.sign, nil
		}
		return false, nil
	}
	switch at := a.typ.(type) {
	case types.Primitive:
		if bt, ok := b.typ.(types.Primitive); ok && at == bt {
			return a.sign != b.sign, nil
		}
	case *types.Array:
		if bt, ok := b.typ.(*types.Array); ok {
			if !a.sign && !b.sign {
				return false, nil
			}
			return x.isVoidTerm(term{sign: a.sign, typ: at.Elem, max: a.max}, term{sign: b.sign, typ: bt.Elem, max: b.max})
		}
	case *types.Record:
		if bt, ok := b.typ.(*types.Record); ok {
			return x.isVoidRecord(a, at, b, bt)
		}
	case *types.Reference:
		if bt, ok := b.typ.(*types.Reference); ok {
			return x.isVoidReference(a, at, b, bt)
		}
	case *types.Callable:
		if bt, ok := b.typ.(*types.Callable); ok && (at.Kind == types.Property) == (bt.Kind == types.Property) {
			return x.isVoidCallable(a, at, b, bt)
		}
	}
	// Atoms of different kinds are disjoint,
	// so only two positive atoms are void.
	// One of them may be any, which contains the other.
	return a.sign && b.sign && a.typ != types.Any && b.typ != types.Any, nil
}

func (x *prover) isVoidRecord(a term, ar *types.Record, b term, br *types.Record) (bool, error) {
	if !a.sign && !b.sign {
		return false, nil
	}
	sign := a.sign == b.sign
	matches := 0
	for _, f := range ar.Fields {
		bt := br.Field(f.Name)
		if bt == nil {
			continue
		}
		void, err := x.isVoidTerm(term{sign: a.sign, typ: f.Type, max: a.max}, term{sign: b.sign, typ: bt, max: b.max})
		if err != nil {
			return false, err
		}
		if void == sign {
			// Positive records with a disjoint field are void;
			// a positive record with a field outside the negated one is not.
			return sign, nil
		}
		matches++
	}
	switch compareFields(matches, ar, br) {
	case uncomparable:
		return a.sign && b.sign && !(ar.Open && br.Open), nil
	case smaller:
		return a.sign && !b.sign && br.Open, nil
	case greater:
		return !a.sign && b.sign && ar.Open, nil
	default:
		return a.sign != b.sign, nil
	}
}

type fieldOrder int

const (
	equal fieldOrder = iota
	// smaller means a has a subset of b's fields.
	smaller
	// greater means a has a superset of b's fields.
	greater
	uncomparable
)

// compareFields compares the field sets of two records,
// given the number of field names they have in common.
func compareFields(matches int, a, b *types.Record) fieldOrder {
	na, nb := len(a.Fields), len(b.Fields)
	switch {
	case matches < na && matches < nb:
		return uncomparable
	case matches < na:
		if b.Open {
			return smaller
		}
		return uncomparable
	case matches < nb:
		if a.Open {
			return greater
		}
		return uncomparable
	case a.Open != b.Open:
		if a.Open {
			return greater
		}
		return smaller
	default:
		return equal
	}
}

func (x *prover) isVoidReference(a term, ar *types.Reference, b term, br *types.Reference) (bool, error) {
	if !a.sign && !b.sign {
		return false, nil
	}
	// References are invariant: they are disjoint unless their elements are equal.
	sub, err := x.isVoidTerm(term{sign: false, typ: ar.Elem, max: a.max}, term{sign: true, typ: br.Elem, max: b.max})
	if err != nil {
		return false, err
	}
	super, err := x.isVoidTerm(term{sign: false, typ: br.Elem, max: b.max}, term{sign: true, typ: ar.Elem, max: a.max})
	if err != nil {
		return false, err
	}
	equal := sub && super
	if a.sign == b.sign {
		return !equal, nil
	}
	pos, neg := ar, br
	if !a.sign {
		pos, neg = br, ar
	}
	return equal && x.within(neg.Lifetime, pos.Lifetime), nil
}

func (x *prover) isVoidCallable(a term, at *types.Callable, b term, bt *types.Callable) (bool, error) {
	if at.Kind != bt.Kind {
		// A function may be used where a method is required, but not the reverse.
		if at.Kind == types.Method && a.sign || bt.Kind == types.Method && b.sign {
			return false, nil
		}
	}
	if !a.sign && !b.sign {
		return false, nil
	}
	params, err := x.isVoidParameters(!a.sign, at.Params, !b.sign, bt.Params, a.max, b.max)
	if err != nil || !params {
		return false, err
	}
	return x.isVoidParameters(a.sign, at.Returns, b.sign, bt.Returns, a.max, b.max)
}

// isVoidParameters returns whether two signed parameter (or return) lists are void.
func (x *prover) isVoidParameters(aSign bool, as []types.Type, bSign bool, bs []types.Type, aMax, bMax bool) (bool, error) {
	sign := aSign == bSign
	if len(as) != len(bs) {
		return sign, nil
	}
	for i := range as {
		void, err := x.isVoidTerm(term{sign: aSign, typ: as[i], max: aMax}, term{sign: bSign, typ: bs[i], max: bMax})
		if err != nil {
			return false, err
		}
		if void == sign {
			return sign, nil
		}
	}
	return !sign, nil
}
