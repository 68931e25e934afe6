// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/types"
	"github.com/eaburns/peggy/peg"
	"github.com/eaburns/pretty"
	"github.com/google/go-cmp/cmp"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := NewParser().Parse("test.w", strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	return f
}

func TestParseTypes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{src: "int", want: "int"},
		{src: "int|null", want: "int|null"},
		{src: "int&!null", want: "int&!null"},
		{src: "(int|null)[]", want: "(int|null)[]"},
		{src: "int[][]", want: "int[][]"},
		{src: "{int f, bool g}", want: "{int f, bool g}"},
		{src: "{int f, ...}", want: "{int f, ...}"},
		{src: "{...}", want: "{...}"},
		{src: "&int", want: "&int"},
		{src: "&l:int", want: "&l:int"},
		{src: "&int[]", want: "&int[]"},
		{src: "function(int, bool)->(int)", want: "function(int, bool)->(int)"},
		{src: "method()->int", want: "method()->(int)"},
		{src: "nat", want: "nat"},
		{src: "T", want: "T"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.src, func(t *testing.T) {
			t.Parallel()
			src := "function f<T>(" + test.src + " x) {}"
			f := parse(t, src)
			got := f.Decls[0].(*ast.CallableDecl).Params[0].Type
			if got.String() != test.want {
				t.Errorf("got %s, want %s", got, test.want)
			}
		})
	}
}

func TestParseTemplateVar(t *testing.T) {
	t.Parallel()
	f := parse(t, "function id<T>(T x) -> (T r) { return x; }")
	d := f.Decls[0].(*ast.CallableDecl)
	if _, ok := d.Params[0].Type.(*types.Var); !ok {
		t.Errorf("param type is %T, want *types.Var", d.Params[0].Type)
	}
	g := parse(t, "function g(T x) {}")
	if _, ok := g.Decls[0].(*ast.CallableDecl).Params[0].Type.(*types.Nominal); !ok {
		t.Errorf("param type outside a template is not nominal")
	}
}

func TestParseReturnTypes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src   string
		want  []string
		names []string
	}{
		{src: "function f() -> int {}", want: []string{"int"}, names: []string{""}},
		{src: "function f() -> (int r) {}", want: []string{"int"}, names: []string{"r"}},
		{src: "function f() -> (int, bool b) {}", want: []string{"int", "bool"}, names: []string{"", "b"}},
		{src: "function f() -> (int|bool)[] {}", want: []string{"(int|bool)[]"}, names: []string{""}},
		{src: "function f() -> (int)|null;", want: []string{"int|null"}, names: []string{""}},
	}
	for _, test := range tests {
		d := parse(t, test.src).Decls[0].(*ast.CallableDecl)
		var got, names []string
		for _, r := range d.Returns {
			got = append(got, r.Type.String())
			names = append(names, r.Name)
		}
		if !cmp.Equal(got, test.want) || !cmp.Equal(names, test.names) {
			t.Errorf("%q: returns %v %v, want %v %v", test.src, got, names, test.want, test.names)
		}
	}
}

func TestParseDecls(t *testing.T) {
	t.Parallel()
	f := parse(t, `
		// Natural numbers.
		type nat is (int x) where x >= 0
		type list is null | {int data, list next}
		const int MAX = 10;
		method m<&l>(&l:int p) -> (int r)
		requires *p > 0
		ensures r > 0 {
			return *p;
		}
		function decl(int x);
	`)
	var names []string
	for _, d := range f.Decls {
		names = append(names, d.DeclName())
	}
	if diff := cmp.Diff([]string{"nat", "list", "MAX", "m", "decl"}, names); diff != "" {
		t.Fatalf("declarations (-want +got):\n%s", diff)
	}
	nat := f.Decls[0].(*ast.TypeDecl)
	if nat.Var == nil || nat.Var.Name != "x" || len(nat.Invariant) != 1 {
		t.Errorf("bad nat: %s", pretty.String(nat))
	}
	inv := nat.Invariant[0].(*ast.Binary)
	if v, ok := inv.Left.(*ast.VarAccess); !ok || v.Var != nat.Var {
		t.Errorf("invariant does not refer to the bound variable")
	}
	m := f.Decls[3].(*ast.CallableDecl)
	if m.Kind != types.Method || len(m.Lifetimes) != 1 || m.Lifetimes[0] != "l" {
		t.Errorf("bad method header: %s %v", m.Kind, m.Lifetimes)
	}
	if len(m.Requires) != 1 || len(m.Ensures) != 1 || m.Body == nil {
		t.Errorf("bad method clauses")
	}
	if got := m.Params[0].Type.String(); got != "&l:int" {
		t.Errorf("param type %s, want &l:int", got)
	}
	if d := f.Decls[4].(*ast.CallableDecl); d.Body != nil {
		t.Errorf("declaration without a body has a body")
	}
}

func TestParseStmts(t *testing.T) {
	t.Parallel()
	f := parse(t, `
		function f(int x, int[] xs) -> (int r) {
			int|null y = null;
			y = x;
			xs[0], y = 1, 2;
			if x == 0 {
				return 1;
			} else if x == 1 {
				skip;
			} else {
				fail;
			}
			while x < 10 where x >= 0 {
				x = x + 1;
				if x == 5 { break; }
				continue;
			}
			do {
				x = x - 1;
			} while x > 0 where x >= 0;
			switch x {
			case 0, 1: {
				y = 0;
			}
			default: {
				y = null;
			}
			}
			outer: {
				assert x >= 0;
				assume x < 100;
				debug "x";
			}
			g(x);
			return x;
		}
	`)
	body := f.Decls[0].(*ast.CallableDecl).Body
	var kinds []string
	for _, s := range body.Stmts {
		kinds = append(kinds, strings.TrimPrefix(fmt.Sprintf("%T", s), "*ast."))
	}
	want := []string{
		"VarDecl", "Assign", "Assign", "If", "While", "DoWhile",
		"Switch", "NamedBlock", "ExprStmt", "Return",
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("statements (-want +got):\n%s", diff)
	}
	sw := body.Stmts[6].(*ast.Switch)
	if len(sw.Cases) != 2 || len(sw.Cases[0].Values) != 2 || len(sw.Cases[1].Values) != 0 {
		t.Errorf("bad switch: %s", pretty.String(sw.Cases))
	}
	elif := body.Stmts[3].(*ast.If).Else.Stmts[0]
	if _, ok := elif.(*ast.If); !ok {
		t.Errorf("else if is %T, want *ast.If", elif)
	}
}

func TestParseExprs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src string
		// check returns whether the expression has the expected shape.
		check func(ast.Expr) bool
	}{
		{
			src: "1 + 2 * 3",
			check: func(e ast.Expr) bool {
				b, ok := e.(*ast.Binary)
				if !ok || b.Op != ast.Add {
					return false
				}
				r, ok := b.Right.(*ast.Binary)
				return ok && r.Op == ast.Mul
			},
		},
		{
			src: "x is int && y is null",
			check: func(e ast.Expr) bool {
				a, ok := e.(*ast.And)
				return ok && len(a.Exprs) == 2
			},
		},
		{
			src: "x == 1 ==> y == 2 <==> true",
			check: func(e ast.Expr) bool {
				i, ok := e.(*ast.Iff)
				if !ok {
					return false
				}
				_, ok = i.Left.(*ast.Implies)
				return ok
			},
		},
		{
			src: "(int) y",
			check: func(e ast.Expr) bool {
				c, ok := e.(*ast.Cast)
				return ok && c.To == types.Int
			},
		},
		{
			src: "(x) + 1",
			check: func(e ast.Expr) bool {
				b, ok := e.(*ast.Binary)
				if !ok {
					return false
				}
				_, ok = b.Left.(*ast.VarAccess)
				return ok
			},
		},
		{
			src: "|xs| - 1",
			check: func(e ast.Expr) bool {
				b, ok := e.(*ast.Binary)
				if !ok {
					return false
				}
				_, ok = b.Left.(*ast.ArrayLength)
				return ok
			},
		},
		{
			src: "{f: 1, g: true}.f",
			check: func(e ast.Expr) bool {
				a, ok := e.(*ast.FieldAccess)
				if !ok {
					return false
				}
				r, ok := a.Expr.(*ast.RecordInit)
				return ok && len(r.Fields) == 2
			},
		},
		{
			src: "r{f := 2}",
			check: func(e ast.Expr) bool {
				_, ok := e.(*ast.RecordUpdate)
				return ok
			},
		},
		{
			src: "xs[0 := 5]",
			check: func(e ast.Expr) bool {
				_, ok := e.(*ast.ArrayUpdate)
				return ok
			},
		},
		{
			src: "[0; 10]",
			check: func(e ast.Expr) bool {
				_, ok := e.(*ast.ArrayGen)
				return ok
			},
		},
		{
			src: "[]",
			check: func(e ast.Expr) bool {
				a, ok := e.(*ast.ArrayInit)
				return ok && len(a.Elems) == 0
			},
		},
		{
			src: "all { i in 0..|xs| | xs[i] >= 0 }",
			check: func(e ast.Expr) bool {
				q, ok := e.(*ast.Quantifier)
				if !ok || !q.Universal || q.Var.Name != "i" {
					return false
				}
				c, ok := q.Body.(*ast.Binary)
				if !ok {
					return false
				}
				a, ok := c.Left.(*ast.ArrayAccess)
				if !ok {
					return false
				}
				i, ok := a.Index.(*ast.VarAccess)
				return ok && i.Var == q.Var
			},
		},
		{
			src: "this:new 5",
			check: func(e ast.Expr) bool {
				n, ok := e.(*ast.New)
				return ok && n.Lifetime == "this"
			},
		},
		{
			src: "*new 5",
			check: func(e ast.Expr) bool {
				d, ok := e.(*ast.Deref)
				return ok && d.Expr.(*ast.New).Lifetime == ""
			},
		},
		{
			src: "MAX",
			check: func(e ast.Expr) bool {
				s, ok := e.(*ast.StaticVarAccess)
				return ok && s.Name == "MAX"
			},
		},
		{
			src: "0b0101 << 2",
			check: func(e ast.Expr) bool {
				b, ok := e.(*ast.Binary)
				return ok && b.Op == ast.Shl && b.Left.(*ast.Const).Value == byte(5)
			},
		},
		{
			src: "42",
			check: func(e ast.Expr) bool {
				c, ok := e.(*ast.Const)
				return ok && c.Value.(*big.Int).Cmp(big.NewInt(42)) == 0
			},
		},
		{
			src: `"hi"`,
			check: func(e ast.Expr) bool {
				c, ok := e.(*ast.Const)
				return ok && c.Value == "hi"
			},
		},
		{
			src: "f(x, y)",
			check: func(e ast.Expr) bool {
				i, ok := e.(*ast.Invoke)
				return ok && i.Name == "f" && len(i.Args) == 2
			},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.src, func(t *testing.T) {
			t.Parallel()
			src := "function f(int x, int|null y, int[] xs, {int f} r) -> (any a) { return " + test.src + "; }"
			f := parse(t, src)
			ret := f.Decls[0].(*ast.CallableDecl).Body.Stmts[0].(*ast.Return)
			if !test.check(ret.Values[0]) {
				t.Errorf("unexpected parse:\n%s", pretty.String(ret.Values[0]))
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		// pos and want are the offset and description of an expected failure.
		pos  int
		want string
	}{
		{name: "missing semicolon", src: "function f() { return 1 }", pos: 24, want: `";"`},
		{name: "bad token", src: "function f() { return # }", pos: 22, want: "token"},
		{name: "bad decl", src: "return 1;", pos: 0, want: `"function"`},
		{name: "not assignable", src: "function f() { 1 = 2; }", pos: 15, want: "assignable expression"},
		{name: "unterminated comment", src: "/* ", pos: 3, want: "token"},
		{name: "duplicate field", src: "type t is {int f, int f}", pos: 22, want: "unique field name"},
		{name: "missing block", src: "function f(int x) return x;", pos: 18, want: `"{"`},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewParser().Parse("test.w", strings.NewReader(test.src))
			if err == nil {
				t.Fatalf("got nil, expected a parse error")
			}
			if !strings.HasPrefix(err.Error(), "test.w:") {
				t.Errorf("got %s, expected a test.w: prefix", err)
			}
			pe, ok := err.(interface{ Tree() *peg.Fail })
			if !ok {
				t.Fatalf("error %T has no failure tree", err)
			}
			leaves := failLeaves(pe.Tree())
			want := fmt.Sprintf("%d:%s", test.pos, test.want)
			for _, l := range leaves {
				if l == want {
					return
				}
			}
			t.Errorf("failures %v, expected %s", leaves, want)
		})
	}
}

func failLeaves(f *peg.Fail) []string {
	if f.Want != "" {
		return []string{fmt.Sprintf("%d:%s", f.Pos, f.Want)}
	}
	var ls []string
	for _, k := range f.Kids {
		ls = append(ls, failLeaves(k)...)
	}
	return ls
}

func TestLocs(t *testing.T) {
	t.Parallel()
	p := NewParser()
	if _, err := p.Parse("a.w", strings.NewReader("function f() {}\n")); err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	g, err := p.Parse("b.w", strings.NewReader("\nfunction g() {}"))
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	if got := p.Locs().Loc(g.Decls[0].GetRange()).String(); got != "b.w:2.1-16" {
		t.Errorf("got %s, want b.w:2.1-16", got)
	}
	if len(p.Files()) != 2 {
		t.Errorf("got %d files, want 2", len(p.Files()))
	}
}
