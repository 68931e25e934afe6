// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package subtype decides semantic subtyping between types.
//
// A parent type contains a child type
// if and only if the intersection of the child with the negated parent is void.
// Voidness is decided by expanding a conjunction of signed terms
// into atoms and checking every pair of atoms for disjointness,
// assuming coinductively that pairs already under consideration are void
// so that recursive types terminate.
package subtype

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/eaburns/flow/decl"
	"github.com/eaburns/flow/types"
)

// A Result is the result of a subtype test.
type Result int

const (
	False Result = iota
	True
	// Unknown means the child is contained in the parent
	// only if the invariants of the nominal types involved hold.
	Unknown
)

func (r Result) String() string {
	switch r {
	case False:
		return "false"
	case True:
		return "true"
	case Unknown:
		return "unknown"
	default:
		panic("impossible")
	}
}

// Lifetimes reports the containment relation between named lifetimes.
type Lifetimes interface {
	// IsWithin returns whether the inner lifetime is within the outer lifetime.
	IsWithin(inner, outer string) bool
}

// An Option configures an Operator.
type Option func(*Operator)

// WithTrace returns an Option that writes a trace of every void test to w.
func WithTrace(w io.Writer) Option {
	return func(op *Operator) { op.trace = w }
}

// An Operator decides subtyping relative to a set of type declarations.
// It is safe for concurrent use.
type Operator struct {
	resolver decl.Resolver
	trace    io.Writer

	// contractive caches IsContractive results by declaration name.
	contractive sync.Map
}

// New returns a new Operator that resolves nominal types with r.
func New(r decl.Resolver, opts ...Option) *Operator {
	op := &Operator{resolver: r}
	for _, o := range opts {
		o(op)
	}
	return op
}

// IsSubtype returns whether child is contained in parent.
// The maximised test ignores nominal invariants,
// and the minimised test treats invariant-constrained nominals as opaque.
// Passing the first but not the second yields Unknown.
func (op *Operator) IsSubtype(parent, child types.Type, lt Lifetimes) (res Result, err error) {
	x := op.newProver(lt)
	defer x.tr("IsSubtype(%s, %s)", parent, child)(&err)
	max, err := x.isVoidTerm(term{sign: false, typ: parent, max: true}, term{sign: true, typ: child, max: true})
	if err != nil || !max {
		return False, err
	}
	x = op.newProver(lt)
	min, err := x.isVoidTerm(term{sign: false, typ: parent, max: false}, term{sign: true, typ: child, max: false})
	switch {
	case err != nil:
		return False, err
	case min:
		return True, nil
	default:
		return Unknown, nil
	}
}

// IsRawSubtype returns whether child is contained in parent,
// ignoring the invariants of nominal types.
func (op *Operator) IsRawSubtype(parent, child types.Type, lt Lifetimes) (ok bool, err error) {
	x := op.newProver(lt)
	defer x.tr("IsRawSubtype(%s, %s)", parent, child)(&err)
	return x.isVoidTerm(term{sign: false, typ: parent, max: true}, term{sign: true, typ: child, max: true})
}

// IsVoid returns whether t has no values.
func (op *Operator) IsVoid(t types.Type, lt Lifetimes) (bool, error) {
	x := op.newProver(lt)
	return x.isVoidTerm(term{sign: true, typ: t, max: true}, term{sign: true, typ: t, max: true})
}

// IsEmpty returns whether t is contained in void.
// It is the test applied to declared types.
func (op *Operator) IsEmpty(t types.Type, lt Lifetimes) (bool, error) {
	return op.IsRawSubtype(types.Void, t, lt)
}

// IsContractive returns whether the definition t of the named type
// reaches a constructor before referring to the name again.
// A type defined only through unions, intersections, and negations of itself,
// such as "type t is t|int", is not contractive.
func (op *Operator) IsContractive(name string, t types.Type) (bool, error) {
	return op.isContractive(name, t, map[string]bool{})
}

func (op *Operator) isContractive(name string, t types.Type, seen map[string]bool) (bool, error) {
	switch t := t.(type) {
	case *types.Union:
		return op.isContractiveList(name, t.Elems, seen)
	case *types.Intersection:
		return op.isContractiveList(name, t.Elems, seen)
	case *types.Negation:
		return op.isContractive(name, t.Elem, seen)
	case *types.Nominal:
		if t.Name == name {
			return false, nil
		}
		if seen[t.Name] {
			return true, nil
		}
		seen[t.Name] = true
		d, err := op.resolve(t.Name)
		if err != nil {
			return false, err
		}
		return op.isContractive(name, d.Type, seen)
	default:
		return true, nil
	}
}

func (op *Operator) isContractiveList(name string, ts []types.Type, seen map[string]bool) (bool, error) {
	for _, t := range ts {
		if ok, err := op.isContractive(name, t, seen); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (op *Operator) resolve(name string) (*decl.Type, error) {
	if op.resolver == nil {
		return nil, &decl.ResolutionError{Name: name, Kind: decl.TypeKind}
	}
	d, err := op.resolver.ResolveExactly(name, decl.TypeKind)
	if err != nil {
		return nil, err
	}
	typ, ok := d.(*decl.Type)
	if !ok {
		return nil, fmt.Errorf("%s resolved to %T, not a type declaration", name, d)
	}
	return typ, nil
}

// resolveContractive returns the named type declaration
// and an error if its definition is not contractive,
// since expanding it would never reach an atom.
func (op *Operator) resolveContractive(name string) (*decl.Type, error) {
	d, err := op.resolve(name)
	if err != nil {
		return nil, err
	}
	ok, cached := op.contractive.Load(name)
	if !cached {
		c, err := op.IsContractive(name, d.Type)
		if err != nil {
			return nil, err
		}
		ok, _ = op.contractive.LoadOrStore(name, c)
	}
	if !ok.(bool) {
		return nil, &ContractiveError{Name: name}
	}
	return d, nil
}

// A ContractiveError reports a type declaration that is not contractive.
type ContractiveError struct {
	Name string
}

func (err *ContractiveError) Error() string {
	return fmt.Sprintf("type %s is not contractive", err.Name)
}

// A prover holds the state of a single subtype query.
type prover struct {
	*Operator
	lt Lifetimes
	// assumptions are the term pairs assumed void
	// while their voidness is being decided.
	assumptions map[[2]string]bool
	indent      string
}

func (op *Operator) newProver(lt Lifetimes) *prover {
	return &prover{Operator: op, lt: lt, assumptions: make(map[[2]string]bool)}
}

func (x *prover) log(f string, vs ...interface{}) {
	if x.trace == nil {
		return
	}
	fmt.Fprintf(x.trace, x.indent+f+"\n", vs...)
}

func (x *prover) tr(f string, vs ...interface{}) func(...interface{}) {
	if x.trace == nil {
		return func(...interface{}) {}
	}
	x.log(f, vs...)
	olddent := x.indent
	x.indent += "---"
	return func(errs ...interface{}) {
		defer func() { x.indent = olddent }()
		if len(errs) == 0 {
			return
		}
		v := reflect.ValueOf(errs[0])
		if v.IsNil() || v.Elem().IsNil() {
			return
		}
		x.log("%v", v.Elem().Interface())
	}
}

// within returns whether the inner lifetime is within the outer one.
func (x *prover) within(inner, outer string) bool {
	switch {
	case outer == types.Static || outer == "" || inner == outer:
		return true
	case x.lt == nil:
		return false
	default:
		return x.lt.IsWithin(inner, outer)
	}
}
