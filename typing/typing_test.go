// Copyright © 2020 The Pea Authors under an MIT-style license.

package typing

import (
	"errors"
	"testing"

	"github.com/eaburns/flow/decl"
	"github.com/eaburns/flow/subtype"
	"github.com/eaburns/flow/types"
	"github.com/eaburns/pretty"
	"github.com/google/go-cmp/cmp"
)

var (
	intOrNull = &types.Union{Elems: []types.Type{types.Int, types.Null}}
	intOrBool = &types.Union{Elems: []types.Type{types.Int, types.Bool}}
)

func newOp() *subtype.Operator { return subtype.New(decl.NewTable()) }

func slotStrings(t *Typing, slot int) []string {
	var ss []string
	for _, typ := range t.Types(slot) {
		ss = append(ss, typ.String())
	}
	return ss
}

func TestPull(t *testing.T) {
	op := newOp()
	tests := []struct {
		name     string
		required types.Type
		produced types.Type
		// want is the slot type of the surviving row, or "" if it is dropped.
		want string
	}{
		{name: "subtype", required: intOrNull, produced: types.Int, want: "int|null"},
		{name: "not subtype", required: types.Int, produced: types.Bool, want: ""},
		{name: "void required", required: types.Void, produced: types.Bool, want: "bool"},
		{name: "void produced", required: types.Int, produced: types.Void, want: ""},
		{name: "both void", required: types.Void, produced: types.Void, want: "void"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			typ := New(op, nil).Push(test.required)
			typ, err := typ.Pull(0, func(Row) types.Type { return test.produced })
			if err != nil {
				t.Fatalf("Pull failed: %s", err)
			}
			var want []string
			if test.want != "" {
				want = []string{test.want}
			}
			if diff := cmp.Diff(want, slotStrings(typ, 0)); diff != "" {
				t.Errorf("slot 0 (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGeneric(t *testing.T) {
	op := newOp()
	typ := New(op, nil).Push(&types.Array{Elem: types.Int})
	typ = typ.Project(func(r Row) []Row {
		r, vs := r.Fresh(1)
		sig := &types.Callable{Params: []types.Type{&types.Array{Elem: vs[0]}}, Returns: []types.Type{vs[0]}}
		return []Row{r.Add(sig).Add(sig.Params[0])}
	})
	typ, err := typ.Pull(2, func(r Row) types.Type { return r.Get(0) })
	if err != nil {
		t.Fatalf("Pull failed: %s", err)
	}
	if typ.Empty() {
		t.Fatalf("generic row dropped")
	}
	typ = typ.Concretise().Register(SubtypeCheck{Parent: 2, Child: 0}).Register(SingleRow{})
	if err := typ.Finalise(); err != nil {
		t.Fatalf("Finalise failed: %s", err)
	}
	sig := typ.Rows()[0].Get(1).(*types.Callable)
	if sig.Returns[0] != types.Int {
		t.Errorf("instantiated signature %s, want return int", sig)
	}
}

func TestFold(t *testing.T) {
	op := newOp()
	params := []types.Type{intOrBool, types.Int, intOrNull}
	typ := New(op, nil).Project(func(r Row) []Row {
		var rows []Row
		for i, p := range params {
			s := r.Add(p)
			s.Tag = i
			rows = append(rows, s)
		}
		return rows
	})
	typ, err := typ.Fold(RowComparator(op, nil))
	if err != nil {
		t.Fatalf("Fold failed: %s", err)
	}
	var tags []int
	for _, r := range typ.Rows() {
		tags = append(tags, r.Tag)
	}
	if diff := cmp.Diff([]int{1}, tags); diff != "" {
		t.Errorf("surviving tags (-want +got):\n%s\n%s", diff, pretty.String(typ.Rows()))
	}
}

func TestFoldIncomparable(t *testing.T) {
	op := newOp()
	typ := New(op, nil).Project(func(r Row) []Row {
		return []Row{r.Add(intOrBool), r.Add(intOrNull)}
	})
	typ, err := typ.Fold(RowComparator(op, nil, 0))
	if err != nil {
		t.Fatalf("Fold failed: %s", err)
	}
	err = typ.Register(SingleRow{}).Finalise()
	var herr *HeightError
	if !errors.As(err, &herr) || len(herr.Rows) != 2 {
		t.Errorf("Finalise()=%v, want 2 typings", err)
	}
}

func TestFinaliseSubtype(t *testing.T) {
	op := newOp()
	typ := New(op, nil).Push(types.Int).Push(types.Bool).Register(SubtypeCheck{Parent: 0, Child: 1})
	err := typ.Finalise()
	var serr *SubtypeError
	if !errors.As(err, &serr) || serr.Parent != types.Int || serr.Child != types.Bool {
		t.Errorf("Finalise()=%v, want bool not subtype of int", err)
	}
}

func TestMap(t *testing.T) {
	op := newOp()
	typ := New(op, nil).Project(func(r Row) []Row {
		return []Row{r.Add(types.Int), r.Add(types.Null)}
	})
	typ = typ.Map(func(r Row) (Row, bool) { return r, r.Get(0) != types.Null })
	if diff := cmp.Diff([]string{"int"}, slotStrings(typ, 0)); diff != "" {
		t.Errorf("slot 0 (-want +got):\n%s", diff)
	}
}

func TestGenerate(t *testing.T) {
	op := newOp()
	x := &types.Existential{ID: 0}
	tests := []struct {
		name               string
		required, produced types.Type
		want               string
		sat                bool
	}{
		{name: "concrete", required: intOrNull, produced: types.Int, want: "{}", sat: true},
		{name: "concrete fail", required: types.Int, produced: types.Null, want: "⊥", sat: false},
		{name: "var", required: x, produced: types.Int, want: "{?0 :> int}", sat: true},
		{name: "array", required: &types.Array{Elem: x}, produced: &types.Array{Elem: types.Bool}, want: "{?0 :> bool}", sat: true},
		{
			name:     "reference",
			required: &types.Reference{Elem: x, Lifetime: types.Static},
			produced: &types.Reference{Elem: types.Int, Lifetime: types.Static},
			want:     "{?0 :> int, ?0 <: int}",
			sat:      true,
		},
		{
			name:     "record",
			required: &types.Record{Fields: []types.Field{{Name: "f", Type: x}}, Open: true},
			produced: &types.Record{Fields: []types.Field{{Name: "f", Type: types.Int}, {Name: "g", Type: types.Bool}}},
			want:     "{?0 :> int}",
			sat:      true,
		},
		{
			name:     "union of produced",
			required: &types.Array{Elem: x},
			produced: &types.Union{Elems: []types.Type{&types.Array{Elem: types.Int}, &types.Array{Elem: types.Null}}},
			want:     "{?0 :> int, ?0 :> null}",
			sat:      true,
		},
		{
			name:     "union of required",
			required: &types.Union{Elems: []types.Type{types.Null, x}},
			produced: types.Null,
			want:     "{}",
			sat:      true,
		},
		{name: "shape mismatch", required: &types.Array{Elem: x}, produced: types.Int, want: "⊥", sat: false},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			c, err := Generate(op, test.required, test.produced, nil)
			if err != nil {
				t.Fatalf("Generate failed: %s", err)
			}
			if got := c.String(); got != test.want {
				t.Errorf("got %s, want %s", got, test.want)
			}
			sat, err := c.Satisfiable(op, nil)
			if err != nil || sat != test.sat {
				t.Errorf("Satisfiable()=%v, %v, want %v", sat, err, test.sat)
			}
		})
	}
}

func TestSolve(t *testing.T) {
	c, vs := Top().Fresh(3)
	c = c.withLower(vs[0].ID, types.Int).
		withLower(vs[0].ID, types.Null).
		withUpper(vs[1].ID, intOrNull).
		withLower(vs[2].ID, &types.Array{Elem: vs[0]})
	sol := c.Solve()
	want := []string{"int|null", "int|null", "(int|null)[]"}
	got := []string{sol[0].String(), sol[1].String(), sol[2].String()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("solution (-want +got):\n%s", diff)
	}
	if c.MaxVariable() != 2 {
		t.Errorf("MaxVariable()=%d, want 2", c.MaxVariable())
	}
	unsat := Top().withLower(0, types.Bool).withUpper(0, types.Int)
	if ok, err := unsat.Satisfiable(newOp(), nil); err != nil || ok {
		t.Errorf("Satisfiable(bool <: ?0 <: int)=%v, %v", ok, err)
	}
}
