// Copyright © 2020 The Pea Authors under an MIT-style license.

package typing

import (
	"github.com/eaburns/flow/subtype"
	"github.com/eaburns/flow/types"
)

// Generate returns the constraints under which produced is a subtype of required.
// Existentials may appear in either type.
// If neither has existentials, the result is Top or Bottom
// according to a raw subtype test.
func Generate(op *subtype.Operator, required, produced types.Type, lt subtype.Lifetimes) (*Constraints, error) {
	g := generator{op: op, lt: lt}
	return g.gen(required, produced)
}

type generator struct {
	op *subtype.Operator
	lt subtype.Lifetimes
}

// gen returns the constraints under which lower is a subtype of upper.
func (g *generator) gen(upper, lower types.Type) (*Constraints, error) {
	if !types.HasExistential(upper) && !types.HasExistential(lower) {
		ok, err := g.op.IsRawSubtype(upper, lower, g.lt)
		switch {
		case err != nil:
			return nil, err
		case ok:
			return Top(), nil
		default:
			return Bottom(), nil
		}
	}
	if u, ok := upper.(*types.Existential); ok {
		return Top().withLower(u.ID, lower), nil
	}
	if l, ok := lower.(*types.Existential); ok {
		return Top().withUpper(l.ID, upper), nil
	}
	if l, ok := lower.(*types.Union); ok {
		c := Top()
		for _, e := range l.Elems {
			ce, err := g.gen(upper, e)
			if err != nil {
				return nil, err
			}
			if c = c.Intersect(ce); c.IsBottom() {
				break
			}
		}
		return c, nil
	}
	switch u := upper.(type) {
	case *types.Union:
		return g.genDisjunct(u, lower)
	case *types.Array:
		la, err := g.op.ExtractArray(lower)
		if err != nil || la == nil {
			return Bottom(), err
		}
		return g.gen(u.Elem, la.Elem)
	case *types.Reference:
		lr, err := g.op.ExtractReference(lower)
		if err != nil || lr == nil || !g.within(u.Lifetime, lr.Lifetime) {
			return Bottom(), err
		}
		// Reference elements are invariant.
		c1, err := g.gen(u.Elem, lr.Elem)
		if err != nil {
			return nil, err
		}
		c2, err := g.gen(lr.Elem, u.Elem)
		if err != nil {
			return nil, err
		}
		return c1.Intersect(c2), nil
	case *types.Record:
		return g.genRecord(u, lower)
	case *types.Callable:
		return g.genCallable(u, lower)
	default:
		return Bottom(), nil
	}
}

// genDisjunct picks constraints for the first disjunct of upper that lower may inhabit,
// preferring a disjunct that needs no constraints at all.
func (g *generator) genDisjunct(upper *types.Union, lower types.Type) (*Constraints, error) {
	var first *Constraints
	for _, e := range upper.Elems {
		c, err := g.gen(e, lower)
		if err != nil {
			return nil, err
		}
		if c.IsBottom() {
			continue
		}
		if len(c.lower) == 0 && len(c.upper) == 0 {
			return c, nil
		}
		if first == nil {
			first = c
		}
	}
	if first == nil {
		return Bottom(), nil
	}
	return first, nil
}

func (g *generator) genRecord(upper *types.Record, lower types.Type) (*Constraints, error) {
	lr, err := g.op.ExtractRecord(lower)
	if err != nil || lr == nil {
		return Bottom(), err
	}
	if !upper.Open && (lr.Open || len(lr.Fields) != len(upper.Fields)) {
		return Bottom(), nil
	}
	c := Top()
	for _, f := range upper.Fields {
		lt := lr.Field(f.Name)
		if lt == nil {
			return Bottom(), nil
		}
		cf, err := g.gen(f.Type, lt)
		if err != nil {
			return nil, err
		}
		if c = c.Intersect(cf); c.IsBottom() {
			break
		}
	}
	return c, nil
}

func (g *generator) genCallable(upper *types.Callable, lower types.Type) (*Constraints, error) {
	lc, err := g.op.ExtractCallable(lower)
	if err != nil || lc == nil {
		return Bottom(), err
	}
	if lc.Kind != upper.Kind && !(upper.Kind == types.Method && lc.Kind == types.Function) {
		return Bottom(), nil
	}
	if len(lc.Params) != len(upper.Params) || len(lc.Returns) != len(upper.Returns) {
		return Bottom(), nil
	}
	c := Top()
	for i := range upper.Params {
		// Parameters are contravariant.
		cp, err := g.gen(lc.Params[i], upper.Params[i])
		if err != nil {
			return nil, err
		}
		c = c.Intersect(cp)
	}
	for i := range upper.Returns {
		cr, err := g.gen(upper.Returns[i], lc.Returns[i])
		if err != nil {
			return nil, err
		}
		c = c.Intersect(cr)
	}
	return c, nil
}

// within returns whether the required lifetime is within the produced one.
func (g *generator) within(required, produced string) bool {
	switch {
	case produced == types.Static || required == produced:
		return true
	case g.lt == nil:
		return false
	default:
		return g.lt.IsWithin(required, produced)
	}
}
