// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package typing implements typing matrices:
// sets of alternative typings of a group of expressions,
// used to resolve overloaded and generic invocations.
//
// Each row of a matrix is one alternative:
// a vector of provisional slot types under a set of existential constraints.
// Rows that become unsatisfiable are dropped,
// and checks registered on the matrix are applied once it is final.
package typing

import (
	"fmt"
	"strings"

	"github.com/eaburns/flow/subtype"
	"github.com/eaburns/flow/types"
)

// A Row is one alternative typing.
// Rows are immutable values.
type Row struct {
	// Tag identifies the alternative that produced the row;
	// it is carried along by every operation.
	Tag         int
	constraints *Constraints
	types       []types.Type
}

// Constraints returns the row's constraints.
func (r Row) Constraints() *Constraints {
	if r.constraints == nil {
		return Top()
	}
	return r.constraints
}

// Width returns the number of slots.
func (r Row) Width() int { return len(r.types) }

// Get returns the type of a slot.
func (r Row) Get(slot int) types.Type { return r.types[slot] }

// Set returns a row with the slot set to t.
func (r Row) Set(slot int, t types.Type) Row {
	ts := append([]types.Type{}, r.types...)
	ts[slot] = t
	r.types = ts
	return r
}

// Add returns a row with a new last slot of type t.
func (r Row) Add(t types.Type) Row {
	ts := make([]types.Type, len(r.types), len(r.types)+1)
	copy(ts, r.types)
	r.types = append(ts, t)
	return r
}

// Fresh returns a row with n new existentials in its constraints.
func (r Row) Fresh(n int) (Row, []*types.Existential) {
	c, vs := r.Constraints().Fresh(n)
	r.constraints = c
	return r, vs
}

// Intersect returns the row with its constraints intersected with c.
func (r Row) Intersect(c *Constraints) Row {
	r.constraints = r.Constraints().Intersect(c)
	return r
}

// Concretise returns the row with its existentials replaced by their solution.
func (r Row) Concretise() Row {
	c := r.Constraints()
	sol := c.Solve()
	ts := make([]types.Type, len(r.types))
	for i, t := range r.types {
		ts[i] = sol.Apply(t)
	}
	r.types = ts
	r.constraints = &Constraints{n: c.n}
	return r
}

func (r Row) String() string {
	var s strings.Builder
	s.WriteRune('[')
	for i, t := range r.types {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(t.String())
	}
	s.WriteString("] ")
	s.WriteString(r.Constraints().String())
	return s.String()
}

// A Check is a deferred test applied by Finalise.
// It is one of:
// 	SubtypeCheck
// 	SingleRow
type Check interface {
	isCheck()
}

// A SubtypeCheck requires the Child slot's type
// to be a raw subtype of the Parent slot's type in every row.
type SubtypeCheck struct {
	Parent, Child int
}

// SingleRow requires exactly one row.
type SingleRow struct{}

func (SubtypeCheck) isCheck() {}
func (SingleRow) isCheck()    {}

// A Typing is a typing matrix.
// Typings are immutable; operations return new Typings.
type Typing struct {
	op     *subtype.Operator
	lt     subtype.Lifetimes
	rows   []Row
	checks []Check
}

// New returns a typing with a single, empty, unconstrained row.
func New(op *subtype.Operator, lt subtype.Lifetimes) *Typing {
	return &Typing{op: op, lt: lt, rows: []Row{{constraints: Top()}}}
}

func (t *Typing) with(rows []Row) *Typing {
	return &Typing{op: t.op, lt: t.lt, rows: rows, checks: t.checks}
}

// Empty returns whether there are no rows.
func (t *Typing) Empty() bool { return len(t.rows) == 0 }

// Height returns the number of rows.
func (t *Typing) Height() int { return len(t.rows) }

// Rows returns the rows.
func (t *Typing) Rows() []Row { return append([]Row{}, t.rows...) }

// Types returns the type of a slot in each row.
func (t *Typing) Types(slot int) []types.Type {
	ts := make([]types.Type, len(t.rows))
	for i, r := range t.rows {
		ts[i] = r.Get(slot)
	}
	return ts
}

// Push adds a slot of type typ to every row.
func (t *Typing) Push(typ types.Type) *Typing {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.Add(typ)
	}
	return t.with(rows)
}

// Pull unifies the required type of a slot with a produced type in each row.
// A Void required type accepts anything and takes the produced type.
// A Void produced type drops the row.
// Otherwise the row's constraints are intersected with those generated
// for the produced type to be a subtype of the required one,
// and the row is dropped if they are unsatisfiable.
func (t *Typing) Pull(slot int, produced func(Row) types.Type) (*Typing, error) {
	var rows []Row
	for _, r := range t.rows {
		upper, lower := r.Get(slot), produced(r)
		switch {
		case upper == types.Void && lower == types.Void:
			rows = append(rows, r)
		case upper == types.Void:
			rows = append(rows, r.Set(slot, lower))
		case lower == types.Void:
			continue
		default:
			c, err := Generate(t.op, upper, lower, t.lt)
			if err != nil {
				return nil, err
			}
			r = r.Intersect(c)
			ok, err := r.Constraints().Satisfiable(t.op, t.lt)
			if err != nil {
				return nil, err
			}
			if ok {
				rows = append(rows, r)
			}
		}
	}
	return t.with(rows), nil
}

// Project replaces each row with the rows returned by f.
func (t *Typing) Project(f func(Row) []Row) *Typing {
	var rows []Row
	for _, r := range t.rows {
		rows = append(rows, f(r)...)
	}
	return t.with(rows)
}

// Map replaces each row with the row returned by f,
// dropping it if f returns false.
func (t *Typing) Map(f func(Row) (Row, bool)) *Typing {
	var rows []Row
	for _, r := range t.rows {
		if s, ok := f(r); ok {
			rows = append(rows, s)
		}
	}
	return t.with(rows)
}

// A Comparator orders two rows.
// It returns a negative number if a is preferred,
// a positive number if b is preferred,
// and 0 if neither is.
type Comparator func(a, b Row) (int, error)

// Fold drops every row to which another row is preferred.
func (t *Typing) Fold(cmp Comparator) (*Typing, error) {
	dropped := make([]bool, len(t.rows))
	for i := range t.rows {
		for j := i + 1; j < len(t.rows); j++ {
			if dropped[i] {
				break
			}
			if dropped[j] {
				continue
			}
			c, err := cmp(t.rows[i], t.rows[j])
			switch {
			case err != nil:
				return nil, err
			case c < 0:
				dropped[j] = true
			case c > 0:
				dropped[i] = true
			}
		}
	}
	var rows []Row
	for i, r := range t.rows {
		if !dropped[i] {
			rows = append(rows, r)
		}
	}
	return t.with(rows), nil
}

// Concretise replaces the existentials of each row by their solution.
func (t *Typing) Concretise() *Typing {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.Concretise()
	}
	return t.with(rows)
}

// Register returns the typing with a check to be applied by Finalise.
func (t *Typing) Register(c Check) *Typing {
	u := t.with(t.rows)
	u.checks = append(append([]Check{}, t.checks...), c)
	return u
}

// Finalise applies the registered checks in order.
func (t *Typing) Finalise() error {
	for _, c := range t.checks {
		switch c := c.(type) {
		case SubtypeCheck:
			for _, r := range t.rows {
				parent, child := r.Get(c.Parent), r.Get(c.Child)
				ok, err := t.op.IsRawSubtype(parent, child, t.lt)
				if err != nil {
					return err
				}
				if !ok {
					return &SubtypeError{Parent: parent, Child: child, Row: r}
				}
			}
		case SingleRow:
			if len(t.rows) != 1 {
				return &HeightError{Rows: t.Rows()}
			}
		default:
			panic(fmt.Sprintf("impossible check %T", c))
		}
	}
	return nil
}

// A SubtypeError is a failed SubtypeCheck.
type SubtypeError struct {
	Parent, Child types.Type
	Row           Row
}

func (err *SubtypeError) Error() string {
	return fmt.Sprintf("type %s not subtype of %s", err.Child, err.Parent)
}

// A HeightError is a failed SingleRow check.
type HeightError struct {
	Rows []Row
}

func (err *HeightError) Error() string {
	if len(err.Rows) == 0 {
		return "no typing"
	}
	return fmt.Sprintf("%d typings", len(err.Rows))
}

// RowComparator returns a Comparator that prefers the more specific row:
// a is preferred to b if each of the slots of a is a raw subtype
// of the same slot of b, but not the reverse.
// If no slots are given, every slot is compared.
func RowComparator(op *subtype.Operator, lt subtype.Lifetimes, slots ...int) Comparator {
	return func(a, b Row) (int, error) {
		ss := slots
		if len(ss) == 0 {
			for i := 0; i < a.Width() && i < b.Width(); i++ {
				ss = append(ss, i)
			}
		}
		left, right := true, true
		for _, s := range ss {
			ab, err := op.IsRawSubtype(b.Get(s), a.Get(s), lt)
			if err != nil {
				return 0, err
			}
			ba, err := op.IsRawSubtype(a.Get(s), b.Get(s), lt)
			if err != nil {
				return 0, err
			}
			left = left && ab
			right = right && ba
		}
		switch {
		case left && !right:
			return -1, nil
		case right && !left:
			return 1, nil
		default:
			return 0, nil
		}
	}
}
