// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package types defines the types checked by the flow checker.
//
// Types are immutable values.
// Composite types are pointers, but they are never modified after construction,
// so they may be shared freely between environments, rows, and goroutines.
package types

// A Type is one of:
// 	Primitive (Void, Any, Null, Bool, Int, Byte)
// 	*Array
// 	*Record
// 	*Reference
// 	*Negation
// 	*Union
// 	*Intersection
// 	*Nominal
// 	*Callable
// 	*Existential
// 	*Var
type Type interface {
	String() string
	isType()
}

// A Primitive is a type with no constituent types.
type Primitive int

const (
	// Void is the empty type.
	Void Primitive = iota
	// Any is the type of all values.
	Any
	Null
	Bool
	Int
	Byte
)

// An Array is the type of arrays of Elem values.
type Array struct {
	Elem Type
}

// A Record is the type of records with the given fields.
// An Open record also contains records with additional fields.
type Record struct {
	// Fields are in declaration order; names are unique.
	Fields []Field
	Open   bool
}

// A Field is a named record field.
type Field struct {
	Name string
	Type Type
}

// Field returns the named field's type, or nil if there is no such field.
func (r *Record) Field(name string) Type {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

// Static is the lifetime that contains all lifetimes.
const Static = "*"

// A Reference is the type of references to cells of Elem values
// that live for the named Lifetime.
type Reference struct {
	Elem Type
	// Lifetime is Static if the reference was written without one.
	Lifetime string
}

// A Negation is the type of all values not in Elem.
type Negation struct {
	Elem Type
}

// A Union is the type of values in any of Elems.
type Union struct {
	Elems []Type
}

// An Intersection is the type of values in all of Elems.
type Intersection struct {
	Elems []Type
}

// A Nominal refers to a declared type by name.
type Nominal struct {
	Name string
}

// A CallableKind distinguishes the kinds of callable.
type CallableKind int

const (
	Function CallableKind = iota
	Method
	Property
)

func (k CallableKind) String() string {
	switch k {
	case Function:
		return "function"
	case Method:
		return "method"
	case Property:
		return "property"
	default:
		panic("impossible")
	}
}

// A Callable is the type of a function, method, or property.
type Callable struct {
	Kind    CallableKind
	Params  []Type
	Returns []Type
}

// An Existential is a type variable introduced while resolving an invocation.
// It is identified by a small integer minted by a constraint set.
type Existential struct {
	ID int
}

// A Var is a template parameter of a callable declaration.
// It is opaque within the declaration's body.
type Var struct {
	Name string
}

func (Primitive) isType()     {}
func (*Array) isType()        {}
func (*Record) isType()       {}
func (*Reference) isType()    {}
func (*Negation) isType()     {}
func (*Union) isType()        {}
func (*Intersection) isType() {}
func (*Nominal) isType()      {}
func (*Callable) isType()     {}
func (*Existential) isType()  {}
func (*Var) isType()          {}

// Or returns the union of ts.
// Nested unions are flattened, Void and duplicate operands are removed,
// and if only one operand remains, it is returned.
// If any operand is Any, the result is Any.
func Or(ts ...Type) Type {
	var elems []Type
	for _, t := range ts {
		if u, ok := t.(*Union); ok {
			for _, e := range u.Elems {
				elems = addUnique(elems, e)
			}
			continue
		}
		elems = addUnique(elems, t)
	}
	var keep []Type
	for _, e := range elems {
		switch e {
		case Any:
			return Any
		case Void:
			continue
		}
		keep = append(keep, e)
	}
	switch len(keep) {
	case 0:
		return Void
	case 1:
		return keep[0]
	default:
		return &Union{Elems: keep}
	}
}

// And returns the intersection of ts.
// It is the dual of Or: Any operands are removed,
// and if any operand is Void, the result is Void.
func And(ts ...Type) Type {
	var elems []Type
	for _, t := range ts {
		if i, ok := t.(*Intersection); ok {
			for _, e := range i.Elems {
				elems = addUnique(elems, e)
			}
			continue
		}
		elems = addUnique(elems, t)
	}
	var keep []Type
	for _, e := range elems {
		switch e {
		case Void:
			return Void
		case Any:
			continue
		}
		keep = append(keep, e)
	}
	switch len(keep) {
	case 0:
		return Any
	case 1:
		return keep[0]
	default:
		return &Intersection{Elems: keep}
	}
}

// Not returns the negation of t, cancelling a double negation.
func Not(t Type) Type {
	if n, ok := t.(*Negation); ok {
		return n.Elem
	}
	return &Negation{Elem: t}
}

func addUnique(ts []Type, t Type) []Type {
	for _, u := range ts {
		if Equal(t, u) {
			return ts
		}
	}
	return append(ts, t)
}

// Equal returns whether two types are structurally identical.
// Nominal types are equal only if they have the same name;
// they are not expanded.
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	switch a := a.(type) {
	case Primitive:
		return false
	case *Array:
		b, ok := b.(*Array)
		return ok && Equal(a.Elem, b.Elem)
	case *Record:
		b, ok := b.(*Record)
		if !ok || a.Open != b.Open || len(a.Fields) != len(b.Fields) {
			return false
		}
		for _, f := range a.Fields {
			t := b.Field(f.Name)
			if t == nil || !Equal(f.Type, t) {
				return false
			}
		}
		return true
	case *Reference:
		b, ok := b.(*Reference)
		return ok && a.Lifetime == b.Lifetime && Equal(a.Elem, b.Elem)
	case *Negation:
		b, ok := b.(*Negation)
		return ok && Equal(a.Elem, b.Elem)
	case *Union:
		b, ok := b.(*Union)
		return ok && sameSet(a.Elems, b.Elems)
	case *Intersection:
		b, ok := b.(*Intersection)
		return ok && sameSet(a.Elems, b.Elems)
	case *Nominal:
		b, ok := b.(*Nominal)
		return ok && a.Name == b.Name
	case *Callable:
		b, ok := b.(*Callable)
		return ok && a.Kind == b.Kind && equalList(a.Params, b.Params) && equalList(a.Returns, b.Returns)
	case *Existential:
		b, ok := b.(*Existential)
		return ok && a.ID == b.ID
	case *Var:
		b, ok := b.(*Var)
		return ok && a.Name == b.Name
	default:
		return false
	}
}

func equalList(as, bs []Type) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !Equal(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// sameSet reports whether the operand lists contain the same types, ignoring order.
// Operand lists built by Or and And never contain duplicates.
func sameSet(as, bs []Type) bool {
	if len(as) != len(bs) {
		return false
	}
next:
	for _, a := range as {
		for _, b := range bs {
			if Equal(a, b) {
				continue next
			}
		}
		return false
	}
	return true
}

// Substitute returns t with Existential and Var leaves replaced by sub.
// sub returns nil to leave a leaf unchanged.
// If nothing is replaced, t itself is returned.
func Substitute(t Type, sub func(Type) Type) Type {
	switch t := t.(type) {
	case *Existential, *Var:
		if s := sub(t); s != nil {
			return s
		}
		return t
	case *Array:
		if e := Substitute(t.Elem, sub); e != t.Elem {
			return &Array{Elem: e}
		}
		return t
	case *Reference:
		if e := Substitute(t.Elem, sub); e != t.Elem {
			return &Reference{Elem: e, Lifetime: t.Lifetime}
		}
		return t
	case *Negation:
		if e := Substitute(t.Elem, sub); e != t.Elem {
			return &Negation{Elem: e}
		}
		return t
	case *Record:
		var fields []Field
		for i, f := range t.Fields {
			ft := Substitute(f.Type, sub)
			if ft != f.Type && fields == nil {
				fields = append([]Field{}, t.Fields...)
			}
			if fields != nil {
				fields[i].Type = ft
			}
		}
		if fields == nil {
			return t
		}
		return &Record{Fields: fields, Open: t.Open}
	case *Union:
		if elems, ok := substituteList(t.Elems, sub); ok {
			return Or(elems...)
		}
		return t
	case *Intersection:
		if elems, ok := substituteList(t.Elems, sub); ok {
			return And(elems...)
		}
		return t
	case *Callable:
		params, pok := substituteList(t.Params, sub)
		returns, rok := substituteList(t.Returns, sub)
		if !pok && !rok {
			return t
		}
		return &Callable{Kind: t.Kind, Params: params, Returns: returns}
	default:
		return t
	}
}

// substituteList returns the substituted list and whether anything changed.
func substituteList(ts []Type, sub func(Type) Type) ([]Type, bool) {
	out := make([]Type, len(ts))
	changed := false
	for i, t := range ts {
		out[i] = Substitute(t, sub)
		changed = changed || out[i] != t
	}
	if !changed {
		return ts, false
	}
	return out, true
}

// HasExistential returns whether t contains an Existential.
func HasExistential(t Type) bool {
	found := false
	Substitute(t, func(t Type) Type {
		if _, ok := t.(*Existential); ok {
			found = true
		}
		return nil
	})
	return found
}
