// Copyright © 2020 The Pea Authors under an MIT-style license.

package subtype

import (
	"errors"
	"strings"
	"testing"

	"github.com/eaburns/flow/decl"
	"github.com/eaburns/flow/types"
	"github.com/google/go-cmp/cmp"
)

var (
	intT  = types.Int
	boolT = types.Bool
	nullT = types.Null
	anyT  = types.Any
	voidT = types.Void
)

func or(ts ...types.Type) types.Type  { return &types.Union{Elems: ts} }
func and(ts ...types.Type) types.Type { return &types.Intersection{Elems: ts} }
func not(t types.Type) types.Type     { return &types.Negation{Elem: t} }
func array(t types.Type) types.Type   { return &types.Array{Elem: t} }
func ref(l string, t types.Type) types.Type {
	return &types.Reference{Elem: t, Lifetime: l}
}
func nominal(n string) types.Type { return &types.Nominal{Name: n} }
func tvar(n string) types.Type    { return &types.Var{Name: n} }

func rec(open bool, fs ...interface{}) types.Type {
	r := &types.Record{Open: open}
	for i := 0; i < len(fs); i += 2 {
		r.Fields = append(r.Fields, types.Field{Type: fs[i].(types.Type), Name: fs[i+1].(string)})
	}
	return r
}

func fun(kind types.CallableKind, params []types.Type, returns ...types.Type) types.Type {
	return &types.Callable{Kind: kind, Params: params, Returns: returns}
}

func list(ts ...types.Type) []types.Type { return ts }

// lifetimes maps an inner lifetime to the lifetimes containing it.
type lifetimes map[string][]string

func (lt lifetimes) IsWithin(inner, outer string) bool {
	for _, o := range lt[inner] {
		if o == outer {
			return true
		}
	}
	return false
}

func testOperator() *Operator {
	tab := decl.NewTable(
		&decl.Type{Name: "nat", Type: intT, Invariant: true},
		&decl.Type{Name: "number", Type: intT},
		&decl.Type{Name: "list", Type: or(nullT, rec(false, intT, "data", nominal("list"), "next"))},
		&decl.Type{Name: "loop", Type: or(nominal("loop"), intT)},
		&decl.Type{Name: "indirect", Type: nominal("loop")},
	)
	return New(tab)
}

type subtypeTest struct {
	name          string
	parent, child types.Type
	lt            Lifetimes
	want          Result
}

func (test subtypeTest) run(t *testing.T) {
	t.Parallel()
	op := testOperator()
	got, err := op.IsSubtype(test.parent, test.child, test.lt)
	if err != nil {
		t.Fatalf("IsSubtype(%s, %s) failed: %s", test.parent, test.child, err)
	}
	if got != test.want {
		t.Errorf("IsSubtype(%s, %s)=%s, want %s", test.parent, test.child, got, test.want)
	}
}

func TestPrimitives(t *testing.T) {
	tests := []subtypeTest{
		{name: "int int", parent: intT, child: intT, want: True},
		{name: "int bool", parent: intT, child: boolT, want: False},
		{name: "any int", parent: anyT, child: intT, want: True},
		{name: "int any", parent: intT, child: anyT, want: False},
		{name: "int void", parent: intT, child: voidT, want: True},
		{name: "void int", parent: voidT, child: intT, want: False},
		{name: "void void", parent: voidT, child: voidT, want: True},
		{name: "void not void", parent: voidT, child: not(voidT), want: False},
		{name: "not void any", parent: not(voidT), child: anyT, want: True},
		{name: "not any", parent: voidT, child: not(anyT), want: True},
		{name: "union member", parent: or(intT, nullT), child: intT, want: True},
		{name: "union not member", parent: intT, child: or(intT, nullT), want: False},
		{name: "union both", parent: or(intT, nullT), child: or(nullT, intT), want: True},
		{name: "negation", parent: not(nullT), child: intT, want: True},
		{name: "negation excludes", parent: not(nullT), child: or(intT, nullT), want: False},
		{name: "intersection narrows", parent: intT, child: and(or(intT, nullT), not(nullT)), want: True},
		{name: "double negation", parent: intT, child: not(not(intT)), want: True},
		{name: "intersection is smaller", parent: or(intT, boolT), child: and(or(intT, boolT), or(intT, nullT)), want: True},
	}
	for _, test := range tests {
		t.Run(test.name, test.run)
	}
}

func TestRecords(t *testing.T) {
	tests := []subtypeTest{
		{name: "same", parent: rec(false, intT, "f"), child: rec(false, intT, "f"), want: True},
		{name: "covariant field", parent: rec(false, or(intT, nullT), "f"), child: rec(false, intT, "f"), want: True},
		{name: "contravariant field", parent: rec(false, intT, "f"), child: rec(false, or(intT, nullT), "f"), want: False},
		{name: "open contains closed", parent: rec(true, intT, "f"), child: rec(false, intT, "f", boolT, "g"), want: True},
		{name: "open contains open", parent: rec(true, intT, "f"), child: rec(true, intT, "f", boolT, "g"), want: True},
		{name: "closed excludes wider", parent: rec(false, intT, "f"), child: rec(false, intT, "f", boolT, "g"), want: False},
		{name: "closed excludes open", parent: rec(false, intT, "f"), child: rec(true, intT, "f"), want: False},
		{name: "closed excludes narrower", parent: rec(false, intT, "f", boolT, "g"), child: rec(false, intT, "f"), want: False},
		{name: "open excludes narrower", parent: rec(true, intT, "f", boolT, "g"), child: rec(true, intT, "f"), want: False},
		{name: "different fields", parent: rec(false, intT, "f"), child: rec(false, intT, "g"), want: False},
		{name: "union of records", parent: rec(false, or(intT, boolT), "f"), child: or(rec(false, intT, "f"), rec(false, boolT, "f")), want: True},
		{name: "disjoint fields are void", parent: voidT, child: and(rec(false, intT, "f"), rec(false, boolT, "f")), want: True},
		{name: "disjoint closed records are void", parent: voidT, child: and(rec(false, intT, "f"), rec(false, intT, "g")), want: True},
		{name: "open records overlap", parent: voidT, child: and(rec(true, intT, "f"), rec(true, intT, "g")), want: False},
	}
	for _, test := range tests {
		t.Run(test.name, test.run)
	}
}

func TestArraysAndReferences(t *testing.T) {
	tests := []subtypeTest{
		{name: "covariant array", parent: array(or(intT, nullT)), child: array(intT), want: True},
		{name: "array not int", parent: array(intT), child: intT, want: False},
		{name: "array of union", parent: array(or(intT, nullT)), child: or(array(intT), array(nullT)), want: True},
		{name: "same reference", parent: ref("*", intT), child: ref("*", intT), want: True},
		{name: "invariant reference", parent: ref("*", or(intT, nullT)), child: ref("*", intT), want: False},
		{name: "invariant reference reversed", parent: ref("*", intT), child: ref("*", or(intT, nullT)), want: False},
		{name: "static outlives", parent: ref("l", intT), child: ref("*", intT), want: True},
		{name: "named does not outlive static", parent: ref("*", intT), child: ref("l", intT), want: False},
		{
			name:   "outer outlives inner",
			parent: ref("this", intT),
			child:  ref("l", intT),
			lt:     lifetimes{"this": {"l"}},
			want:   True,
		},
		{
			name:   "inner does not outlive outer",
			parent: ref("l", intT),
			child:  ref("this", intT),
			lt:     lifetimes{"this": {"l"}},
			want:   False,
		},
		{name: "negated references", parent: or(ref("*", intT), ref("*", boolT)), child: intT, want: False},
	}
	for _, test := range tests {
		t.Run(test.name, test.run)
	}
}

func TestCallables(t *testing.T) {
	const (
		F = types.Function
		M = types.Method
		P = types.Property
	)
	tests := []subtypeTest{
		{name: "same", parent: fun(F, list(intT), intT), child: fun(F, list(intT), intT), want: True},
		{name: "contravariant parameter", parent: fun(F, list(intT), intT), child: fun(F, list(or(intT, nullT)), intT), want: True},
		{name: "covariant parameter", parent: fun(F, list(or(intT, nullT)), intT), child: fun(F, list(intT), intT), want: False},
		{name: "covariant return", parent: fun(F, list(intT), or(intT, nullT)), child: fun(F, list(intT), intT), want: True},
		{name: "contravariant return", parent: fun(F, list(intT), intT), child: fun(F, list(intT), or(intT, nullT)), want: False},
		{name: "arity", parent: fun(F, list(intT), intT), child: fun(F, list(intT, intT), intT), want: False},
		{name: "function is method", parent: fun(M, list(intT)), child: fun(F, list(intT)), want: True},
		{name: "method is not function", parent: fun(F, list(intT)), child: fun(M, list(intT)), want: False},
		{name: "property is not function", parent: fun(F, list(intT), boolT), child: fun(P, list(intT), boolT), want: False},
		{name: "property", parent: fun(P, list(intT), boolT), child: fun(P, list(intT), boolT), want: True},
	}
	for _, test := range tests {
		t.Run(test.name, test.run)
	}
}

func TestNominals(t *testing.T) {
	tests := []subtypeTest{
		{name: "invariant contains nothing for sure", parent: nominal("nat"), child: intT, want: Unknown},
		{name: "invariant child", parent: intT, child: nominal("nat"), want: True},
		{name: "same nominal", parent: nominal("nat"), child: nominal("nat"), want: True},
		{name: "alias", parent: nominal("number"), child: intT, want: True},
		{name: "alias child", parent: intT, child: nominal("number"), want: True},
		{name: "recursive contains null", parent: nominal("list"), child: nullT, want: True},
		{name: "recursive contains one", parent: nominal("list"), child: rec(false, intT, "data", nullT, "next"), want: True},
		{
			name:   "recursive contains two",
			parent: nominal("list"),
			child:  rec(false, intT, "data", rec(false, intT, "data", nullT, "next"), "next"),
			want:   True,
		},
		{name: "recursive excludes bool", parent: nominal("list"), child: rec(false, intT, "data", boolT, "next"), want: False},
		{name: "null is not list", parent: nullT, child: nominal("list"), want: False},
		{name: "list reflexive", parent: nominal("list"), child: nominal("list"), want: True},
	}
	for _, test := range tests {
		t.Run(test.name, test.run)
	}
}

func TestTemplateVars(t *testing.T) {
	tests := []subtypeTest{
		{name: "reflexive", parent: tvar("T"), child: tvar("T"), want: True},
		{name: "different", parent: tvar("T"), child: tvar("U"), want: False},
		{name: "int is not T", parent: tvar("T"), child: intT, want: False},
		{name: "T is not int", parent: intT, child: tvar("T"), want: False},
		{name: "any contains T", parent: anyT, child: tvar("T"), want: True},
		{name: "T contains void", parent: tvar("T"), child: voidT, want: True},
		{name: "union with T", parent: or(tvar("T"), nullT), child: tvar("T"), want: True},
		{name: "array of T", parent: array(tvar("T")), child: array(tvar("T")), want: True},
	}
	for _, test := range tests {
		t.Run(test.name, test.run)
	}
}

// Every type is its own subtype and contradicts its negation.
func TestReflexiveAndNonContradictory(t *testing.T) {
	op := testOperator()
	for _, typ := range []types.Type{
		voidT, anyT, nullT, boolT, intT, types.Byte,
		array(intT),
		rec(false, intT, "f", boolT, "g"),
		rec(true, or(intT, nullT), "f"),
		ref("*", intT),
		not(nullT),
		or(intT, nullT, array(boolT)),
		and(or(intT, nullT), not(nullT)),
		nominal("number"),
		nominal("list"),
		nominal("nat"),
		ref("*", nominal("nat")),
		fun(types.Function, list(intT), boolT),
		tvar("T"),
	} {
		if got, err := op.IsSubtype(typ, typ, nil); err != nil || got != True {
			t.Errorf("IsSubtype(%s, %s)=%s, %v", typ, typ, got, err)
		}
		contra := and(typ, not(typ))
		if void, err := op.IsVoid(contra, nil); err != nil || !void {
			t.Errorf("IsVoid(%s)=%v, %v", contra, void, err)
		}
	}
}

func TestEmpty(t *testing.T) {
	op := testOperator()
	for _, test := range []struct {
		typ  types.Type
		want bool
	}{
		{voidT, true},
		{intT, false},
		{and(intT, boolT), true},
		{and(intT, not(intT)), true},
		{or(voidT, nullT), false},
		{array(voidT), false},
	} {
		got, err := op.IsEmpty(test.typ, nil)
		if err != nil || got != test.want {
			t.Errorf("IsEmpty(%s)=%v, %v, want %v", test.typ, got, err, test.want)
		}
	}
}

func TestContractive(t *testing.T) {
	op := testOperator()
	ok, err := op.IsContractive("loop", or(nominal("loop"), intT))
	if err != nil || ok {
		t.Errorf("IsContractive(loop)=%v, %v, want false", ok, err)
	}
	ok, err = op.IsContractive("list", or(nullT, rec(false, intT, "data", nominal("list"), "next")))
	if err != nil || !ok {
		t.Errorf("IsContractive(list)=%v, %v, want true", ok, err)
	}

	var cerr *ContractiveError
	_, err = op.IsSubtype(intT, nominal("indirect"), nil)
	if !errors.As(err, &cerr) || cerr.Name != "loop" {
		t.Errorf("IsSubtype(int, indirect)=%v, want not contractive loop", err)
	}

	var rerr *decl.ResolutionError
	_, err = op.IsSubtype(intT, nominal("missing"), nil)
	if !errors.As(err, &rerr) {
		t.Errorf("IsSubtype(int, missing)=%v, want resolution error", err)
	}
}

func TestExtract(t *testing.T) {
	op := testOperator()
	got, err := op.ExtractRecord(or(rec(false, intT, "f", boolT, "g"), rec(false, nullT, "f")))
	if err != nil {
		t.Fatalf("ExtractRecord failed: %s", err)
	}
	want := rec(true, or(intT, nullT), "f")
	if !types.Equal(got, want) {
		t.Errorf("ExtractRecord=%s, want %s", got, want)
	}

	got, err = op.ExtractRecord(and(rec(false, or(intT, nullT), "f", intT, "g"), rec(true, intT, "f")))
	if err != nil {
		t.Fatalf("ExtractRecord failed: %s", err)
	}
	if f := got.Field("g"); f != intT {
		t.Errorf("ExtractRecord(meet).g=%v, want int", f)
	}

	if r, err := op.ExtractRecord(or(rec(false, intT, "f"), nullT)); err != nil || r != nil {
		t.Errorf("ExtractRecord(with null)=%v, %v, want nil", r, err)
	}

	arr, err := op.ExtractArray(or(array(intT), array(boolT)))
	if err != nil || !types.Equal(arr, array(or(intT, boolT))) {
		t.Errorf("ExtractArray=%v, %v", arr, err)
	}

	r, err := op.ExtractReference(ref("l", intT))
	if err != nil || r.Lifetime != "l" {
		t.Errorf("ExtractReference=%v, %v", r, err)
	}
	if r, err := op.ExtractReference(or(ref("l", intT), ref("m", intT))); err != nil || r != nil {
		t.Errorf("ExtractReference(mixed lifetimes)=%v, %v, want nil", r, err)
	}
}

func TestTrace(t *testing.T) {
	var s strings.Builder
	op := New(decl.NewTable(), WithTrace(&s))
	if _, err := op.IsSubtype(or(intT, nullT), intT, nil); err != nil {
		t.Fatalf("IsSubtype failed: %s", err)
	}
	lines := strings.Split(strings.TrimSpace(s.String()), "\n")
	if diff := cmp.Diff("IsSubtype(int|null, int)", lines[0]); diff != "" {
		t.Errorf("first trace line: %s", diff)
	}
	if len(lines) < 2 || !strings.HasPrefix(lines[1], "---isVoid(") {
		t.Errorf("missing nested trace lines: %q", lines)
	}
}
