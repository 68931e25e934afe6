// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/decl"
	"github.com/eaburns/flow/env"
	"github.com/eaburns/flow/types"
)

// checkConditions checks each condition in turn with the same sign,
// threading the environment from one to the next.
func checkConditions(x *state, cs []ast.Expr, sign bool, e *env.Env) (*env.Env, *Error) {
	var err *Error
	for _, c := range cs {
		if e, err = checkCondition(x, c, sign, e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// checkCondition checks a boolean expression
// and returns the environment in which it evaluates to sign.
func checkCondition(x *state, c ast.Expr, sign bool, e *env.Env) (_ *env.Env, err *Error) {
	defer x.tr("checkCondition(%v)", sign)(&err)
	switch c := c.(type) {
	case *ast.Not:
		c.SetType(types.Bool)
		return checkCondition(x, c.Expr, !sign, e)
	case *ast.And:
		c.SetType(types.Bool)
		if sign {
			return checkConditions(x, c.Exprs, true, e)
		}
		return checkEach(x, c.Exprs, false, e)
	case *ast.Or:
		c.SetType(types.Bool)
		if sign {
			return checkEach(x, c.Exprs, true, e)
		}
		return checkConditions(x, c.Exprs, false, e)
	case *ast.Implies:
		c.SetType(types.Bool)
		return checkImplies(x, c, sign, e)
	case *ast.Iff:
		c.SetType(types.Bool)
		return checkIff(x, c, sign, e)
	case *ast.Is:
		return checkIs(x, c, sign, e)
	case *ast.Quantifier:
		return checkQuantifier(x, c, e)
	default:
		t, err := checkExpr(x, c, e)
		if err != nil {
			return nil, err
		}
		if err := x.isSubtype(c, types.Bool, t, e); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// checkEach checks each condition under e and returns the union of the results.
func checkEach(x *state, cs []ast.Expr, sign bool, e *env.Env) (*env.Env, *Error) {
	var es []*env.Env
	for _, c := range cs {
		ce, err := checkCondition(x, c, sign, e)
		if err != nil {
			return nil, err
		}
		es = append(es, ce)
	}
	return env.UnionAll(es...), nil
}

// thread checks l with sign ls and then r with sign rs in the resulting environment.
func thread(x *state, l ast.Expr, ls bool, r ast.Expr, rs bool, e *env.Env) (*env.Env, *Error) {
	le, err := checkCondition(x, l, ls, e)
	if err != nil {
		return nil, err
	}
	return checkCondition(x, r, rs, le)
}

func checkImplies(x *state, c *ast.Implies, sign bool, e *env.Env) (*env.Env, *Error) {
	if !sign {
		return thread(x, c.Left, true, c.Right, false, e)
	}
	notLeft, err := checkCondition(x, c.Left, false, e)
	if err != nil {
		return nil, err
	}
	both, err := thread(x, c.Left, true, c.Right, true, e)
	if err != nil {
		return nil, err
	}
	return env.Union(notLeft, both), nil
}

func checkIff(x *state, c *ast.Iff, sign bool, e *env.Env) (*env.Env, *Error) {
	pos, err := thread(x, c.Left, true, c.Right, sign, e)
	if err != nil {
		return nil, err
	}
	neg, err := thread(x, c.Left, false, c.Right, !sign, e)
	if err != nil {
		return nil, err
	}
	return env.Union(pos, neg), nil
}

func checkIs(x *state, c *ast.Is, sign bool, e *env.Env) (*env.Env, *Error) {
	c.SetType(types.Bool)
	t, err := checkExpr(x, c.Expr, e)
	if err != nil {
		return nil, err
	}
	if err := x.nonEmpty(c, c.Test, e); err != nil {
		return nil, err
	}
	dt := declaredType(x, c.Expr, t)
	void, verr := x.op.IsVoid(types.And(dt, c.Test), e)
	switch {
	case verr != nil:
		return nil, x.wrap(c, verr)
	case void:
		return nil, x.err(c, "incomparable operands: %s and %s", dt, c.Test)
	}
	test := c.Test
	if !sign {
		test = types.Not(test)
	}
	v, test := extractTypeTest(c.Expr, test)
	if v == nil {
		return e, nil
	}
	n, err := narrow(x, c, e.Type(v), test, e)
	if err != nil {
		return nil, err
	}
	x.log("%s refined to %s", v.Name, n)
	return e.Refine(v, n), nil
}

// declaredType returns the type of expr ignoring flow refinements,
// or t if expr is not a variable or a field access chain of a variable.
// A test the refinement already excludes narrows to void.
func declaredType(x *state, expr ast.Expr, t types.Type) types.Type {
	switch expr := expr.(type) {
	case *ast.VarAccess:
		if expr.Var != nil && expr.Var.Type != nil {
			return expr.Var.Type
		}
	case *ast.FieldAccess:
		inner := declaredType(x, expr.Expr, nil)
		if inner == nil {
			break
		}
		rec, err := x.op.ExtractRecord(inner)
		if err != nil || rec == nil {
			break
		}
		if ft := rec.Field(expr.Field); ft != nil {
			return ft
		}
	}
	return t
}

// extractTypeTest returns the variable tested by a type test of expr against test
// and the type it is tested against.
// A test on a field of a variable is a test of the variable against an open record.
// It returns nil if expr is not a variable or a field access chain of a variable.
func extractTypeTest(expr ast.Expr, test types.Type) (*ast.Variable, types.Type) {
	switch expr := expr.(type) {
	case *ast.VarAccess:
		return expr.Var, test
	case *ast.FieldAccess:
		rec := &types.Record{Fields: []types.Field{{Name: expr.Field, Type: test}}, Open: true}
		return extractTypeTest(expr.Expr, rec)
	default:
		return nil, nil
	}
}

// narrow returns the part of cur that is also of type test.
func narrow(x *state, n ast.Node, cur, test types.Type, e *env.Env) (types.Type, *Error) {
	if u, ok := cur.(*types.Union); ok {
		var ts []types.Type
		for _, d := range u.Elems {
			t, err := narrow(x, n, d, test, e)
			if err != nil {
				return nil, err
			}
			if t != types.Void {
				ts = append(ts, t)
			}
		}
		return types.Or(ts...), nil
	}
	if ok, err := x.op.IsRawSubtype(test, cur, e); err != nil {
		return nil, x.wrap(n, err)
	} else if ok {
		return cur, nil
	}
	if ok, err := x.op.IsRawSubtype(cur, test, e); err != nil {
		return nil, x.wrap(n, err)
	} else if ok {
		return test, nil
	}
	if u := unfold(x, cur); u != nil {
		return narrow(x, n, u, test, e)
	}
	meet := types.And(cur, test)
	if void, err := x.op.IsVoid(meet, e); err != nil {
		return nil, x.wrap(n, err)
	} else if void {
		return types.Void, nil
	}
	cr, cok := cur.(*types.Record)
	tr, tok := test.(*types.Record)
	if cok && tok && tr.Open {
		return narrowRecord(x, n, cr, tr, e)
	}
	return meet, nil
}

// unfold returns the union defining a nominal type without an invariant, or nil.
func unfold(x *state, t types.Type) types.Type {
	nom, ok := t.(*types.Nominal)
	if !ok {
		return nil
	}
	d, err := x.resolver.ResolveExactly(nom.Name, decl.TypeKind)
	if err != nil {
		return nil
	}
	td, ok := d.(*decl.Type)
	if !ok || td.Invariant {
		return nil
	}
	if _, ok := td.Type.(*types.Union); !ok {
		return nil
	}
	return td.Type
}

// narrowRecord narrows the fields of cur by the fields of an open record test.
func narrowRecord(x *state, n ast.Node, cur, test *types.Record, e *env.Env) (types.Type, *Error) {
	rec := &types.Record{Open: cur.Open}
	for _, f := range cur.Fields {
		ft := test.Field(f.Name)
		if ft == nil {
			rec.Fields = append(rec.Fields, f)
			continue
		}
		t, err := narrow(x, n, f.Type, ft, e)
		if err != nil {
			return nil, err
		}
		if t == types.Void {
			return types.Void, nil
		}
		rec.Fields = append(rec.Fields, types.Field{Name: f.Name, Type: t})
	}
	for _, f := range test.Fields {
		if cur.Field(f.Name) != nil {
			continue
		}
		if !cur.Open {
			return types.Void, nil
		}
		rec.Fields = append(rec.Fields, f)
	}
	return rec, nil
}

func checkQuantifier(x *state, c *ast.Quantifier, e *env.Env) (*env.Env, *Error) {
	c.SetType(types.Bool)
	for _, b := range []ast.Expr{c.Low, c.High} {
		t, err := checkExpr(x, b, e)
		if err != nil {
			return nil, err
		}
		if err := x.isSubtype(b, types.Int, t, e); err != nil {
			return nil, err
		}
	}
	if _, err := checkCondition(x, c.Body, true, e); err != nil {
		return nil, err
	}
	return e, nil
}
