// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package env implements the typing environment of the flow checker:
// the refined types of variables at a program point,
// and the containment relation between lifetimes.
//
// Environments are immutable; operations return new environments.
package env

import (
	"sort"
	"strings"

	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/types"
)

// An Env is a typing environment.
type Env struct {
	refinements map[int]refinement
	// withins maps a lifetime to the lifetimes it is declared within.
	withins map[string][]string
	bottom  bool
}

type refinement struct {
	v   *ast.Variable
	typ types.Type
}

// Bottom is the environment of unreachable code.
var Bottom = &Env{bottom: true}

// New returns the empty environment.
func New() *Env { return &Env{} }

// Type returns the effective type of v:
// its refined type, or its declared type if it is not refined.
func (e *Env) Type(v *ast.Variable) types.Type {
	if r, ok := e.refinements[v.ID]; ok {
		return r.typ
	}
	return v.Type
}

// Refine returns an environment in which v has type t.
// If t equals the effective type of v, e itself is returned.
func (e *Env) Refine(v *ast.Variable, t types.Type) *Env {
	if types.Equal(e.Type(v), t) {
		return e
	}
	refs := make(map[int]refinement, len(e.refinements)+1)
	for id, r := range e.refinements {
		refs[id] = r
	}
	if types.Equal(v.Type, t) {
		delete(refs, v.ID)
	} else {
		refs[v.ID] = refinement{v: v, typ: t}
	}
	return &Env{refinements: refs, withins: e.withins}
}

// Refined returns the refined variables ordered by ID.
func (e *Env) Refined() []*ast.Variable {
	vs := make([]*ast.Variable, 0, len(e.refinements))
	for _, r := range e.refinements {
		vs = append(vs, r.v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].ID < vs[j].ID })
	return vs
}

// DeclareWithin returns an environment in which inner is within each of outers.
func (e *Env) DeclareWithin(inner string, outers ...string) *Env {
	withins := make(map[string][]string, len(e.withins)+1)
	for l, os := range e.withins {
		withins[l] = os
	}
	withins[inner] = append(append([]string{}, e.withins[inner]...), outers...)
	return &Env{refinements: e.refinements, withins: withins}
}

// IsWithin returns whether the inner lifetime is within the outer lifetime.
// Every lifetime is within itself and within the static lifetime.
func (e *Env) IsWithin(inner, outer string) bool {
	if outer == types.Static || inner == outer {
		return true
	}
	for _, o := range e.withins[inner] {
		if o == outer {
			return true
		}
	}
	return false
}

// Equal returns whether two environments have the same refinements and lifetimes.
func (e *Env) Equal(o *Env) bool {
	if e == o {
		return true
	}
	if e.bottom || o.bottom || len(e.refinements) != len(o.refinements) || len(e.withins) != len(o.withins) {
		return false
	}
	for id, r := range e.refinements {
		s, ok := o.refinements[id]
		if !ok || !types.Equal(r.typ, s.typ) {
			return false
		}
	}
	for l, os := range e.withins {
		if !sameStrings(os, o.withins[l]) {
			return false
		}
	}
	return true
}

// Union returns the join of two environments.
// A variable refined in both has the union of its refined types;
// a variable refined in only one is no longer refined.
func Union(a, b *Env) *Env {
	switch {
	case a == b || b.bottom:
		return a
	case a.bottom:
		return b
	}
	refs := make(map[int]refinement)
	for id, r := range a.refinements {
		s, ok := b.refinements[id]
		if !ok {
			continue
		}
		t := types.Or(r.typ, s.typ)
		if !types.Equal(t, r.v.Type) {
			refs[id] = refinement{v: r.v, typ: t}
		}
	}
	withins := make(map[string][]string)
	for l, os := range a.withins {
		var both []string
		for _, o := range os {
			if b.IsWithin(l, o) {
				both = append(both, o)
			}
		}
		if len(both) > 0 {
			withins[l] = both
		}
	}
	return &Env{refinements: refs, withins: withins}
}

// UnionAll returns the join of all of the environments.
// The join of no environments is Bottom.
func UnionAll(es ...*Env) *Env {
	u := Bottom
	for _, e := range es {
		u = Union(u, e)
	}
	return u
}

// Agree returns an environment with the lifetimes of a
// and only the refinements on which a and b agree.
func Agree(a, b *Env) *Env {
	switch {
	case a.bottom:
		return b
	case b.bottom:
		return a
	}
	refs := make(map[int]refinement)
	for id, r := range a.refinements {
		if s, ok := b.refinements[id]; ok && types.Equal(r.typ, s.typ) {
			refs[id] = r
		}
	}
	return &Env{refinements: refs, withins: a.withins}
}

func (e *Env) String() string {
	if e.bottom {
		return "⊥"
	}
	var s strings.Builder
	s.WriteRune('{')
	for i, v := range e.Refined() {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(v.Name)
		s.WriteString(": ")
		s.WriteString(e.Type(v).String())
	}
	s.WriteRune('}')
	return s.String()
}

func sameStrings(as, bs []string) bool {
	if len(as) != len(bs) {
		return false
	}
	m := make(map[string]int)
	for _, a := range as {
		m[a]++
	}
	for _, b := range bs {
		if m[b] == 0 {
			return false
		}
		m[b]--
	}
	return true
}
