// Copyright © 2020 The Pea Authors under an MIT-style license.

package typing

import (
	"sort"
	"strings"

	"github.com/eaburns/flow/subtype"
	"github.com/eaburns/flow/types"
)

// Constraints are lower and upper bounds on existential type variables.
// Constraints are immutable.
type Constraints struct {
	bottom bool
	// n is the number of variables minted so far.
	n     int
	lower map[int][]types.Type
	upper map[int][]types.Type
}

// Top returns constraints that are always satisfied.
func Top() *Constraints { return &Constraints{} }

// Bottom returns constraints that are never satisfied.
func Bottom() *Constraints { return &Constraints{bottom: true} }

// IsBottom returns whether the constraints are trivially unsatisfiable.
func (c *Constraints) IsBottom() bool { return c.bottom }

// MaxVariable returns the largest variable ID minted, or -1.
func (c *Constraints) MaxVariable() int { return c.n - 1 }

// Fresh returns constraints with n new, unconstrained variables.
func (c *Constraints) Fresh(n int) (*Constraints, []*types.Existential) {
	d := c.copy()
	vs := make([]*types.Existential, n)
	for i := range vs {
		vs[i] = &types.Existential{ID: d.n}
		d.n++
	}
	return d, vs
}

// Intersect returns the conjunction of two sets of constraints.
func (c *Constraints) Intersect(o *Constraints) *Constraints {
	switch {
	case c.bottom || o.bottom:
		return Bottom()
	case o.n == 0 && len(o.lower) == 0 && len(o.upper) == 0:
		return c
	}
	d := c.copy()
	if o.n > d.n {
		d.n = o.n
	}
	for id, ts := range o.lower {
		for _, t := range ts {
			d.addLower(id, t)
		}
	}
	for id, ts := range o.upper {
		for _, t := range ts {
			d.addUpper(id, t)
		}
	}
	return d
}

func (c *Constraints) withLower(id int, t types.Type) *Constraints {
	d := c.copy()
	d.addLower(id, t)
	return d
}

func (c *Constraints) withUpper(id int, t types.Type) *Constraints {
	d := c.copy()
	d.addUpper(id, t)
	return d
}

func (c *Constraints) addLower(id int, t types.Type) {
	if id >= c.n {
		c.n = id + 1
	}
	c.lower[id] = addType(c.lower[id], t)
}

func (c *Constraints) addUpper(id int, t types.Type) {
	if id >= c.n {
		c.n = id + 1
	}
	c.upper[id] = addType(c.upper[id], t)
}

func addType(ts []types.Type, t types.Type) []types.Type {
	for _, u := range ts {
		if types.Equal(t, u) {
			return ts
		}
	}
	return append(append([]types.Type{}, ts...), t)
}

func (c *Constraints) copy() *Constraints {
	d := &Constraints{
		bottom: c.bottom,
		n:      c.n,
		lower:  make(map[int][]types.Type, len(c.lower)),
		upper:  make(map[int][]types.Type, len(c.upper)),
	}
	for id, ts := range c.lower {
		d.lower[id] = ts
	}
	for id, ts := range c.upper {
		d.upper[id] = ts
	}
	return d
}

// A Solution maps existential IDs to concrete types.
type Solution map[int]types.Type

// Apply returns t with its solved existentials replaced.
func (s Solution) Apply(t types.Type) types.Type {
	return types.Substitute(t, func(t types.Type) types.Type {
		if e, ok := t.(*types.Existential); ok {
			return s[e.ID]
		}
		return nil
	})
}

// Solve returns a solution to the constraints.
// Each variable is the union of its lower bounds if it has any,
// otherwise the intersection of its upper bounds if it has any,
// otherwise any.
func (c *Constraints) Solve() Solution {
	sol := make(Solution, c.n)
	for id := 0; id < c.n; id++ {
		switch {
		case len(c.lower[id]) > 0:
			sol[id] = types.Or(c.lower[id]...)
		case len(c.upper[id]) > 0:
			sol[id] = types.And(c.upper[id]...)
		default:
			sol[id] = types.Any
		}
	}
	// Bounds may mention other variables; propagate at most n times.
	for i := 0; i < c.n; i++ {
		changed := false
		for id, t := range sol {
			if s := sol.Apply(t); s != t {
				sol[id] = s
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	// Cyclic bounds are left unsolved; read them as any.
	for id, t := range sol {
		sol[id] = types.Substitute(t, func(t types.Type) types.Type {
			if _, ok := t.(*types.Existential); ok {
				return types.Any
			}
			return nil
		})
	}
	return sol
}

// Satisfiable returns whether the union of each variable's lower bounds
// is a raw subtype of each of its upper bounds under the solution.
func (c *Constraints) Satisfiable(op *subtype.Operator, lt subtype.Lifetimes) (bool, error) {
	if c.bottom {
		return false, nil
	}
	sol := c.Solve()
	for id, lows := range c.lower {
		if len(c.upper[id]) == 0 {
			continue
		}
		low := sol.Apply(types.Or(lows...))
		for _, up := range c.upper[id] {
			ok, err := op.IsRawSubtype(sol.Apply(up), low, lt)
			if err != nil || !ok {
				return false, err
			}
		}
	}
	return true, nil
}

func (c *Constraints) String() string {
	if c.bottom {
		return "⊥"
	}
	var parts []string
	for id := 0; id < c.n; id++ {
		v := (&types.Existential{ID: id}).String()
		for _, t := range c.lower[id] {
			parts = append(parts, v+" :> "+t.String())
		}
		for _, t := range c.upper[id] {
			parts = append(parts, v+" <: "+t.String())
		}
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
