// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"math/big"

	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/decl"
	"github.com/eaburns/flow/env"
	"github.com/eaburns/flow/subtype"
	"github.com/eaburns/flow/types"
)

// A value is one of the values produced by an expression.
type value struct {
	expr ast.Expr
	typ  types.Type
}

// checkMultiExprs checks expressions that may each produce any number of values,
// and returns the values in order.
// Only an invocation may produce other than one value.
func checkMultiExprs(x *state, exprs []ast.Expr, e *env.Env) ([]value, *Error) {
	var vals []value
	for _, expr := range exprs {
		inv, ok := expr.(*ast.Invoke)
		if !ok {
			t, err := checkExpr(x, expr, e)
			if err != nil {
				return nil, err
			}
			vals = append(vals, value{expr: expr, typ: t})
			continue
		}
		rets, err := checkInvoke(x, inv, e)
		if err != nil {
			return nil, err
		}
		for _, r := range rets {
			vals = append(vals, value{expr: inv, typ: r})
		}
	}
	return vals, nil
}

// checkExpr checks an expression that produces a single value,
// sets its type, and returns the type.
func checkExpr(x *state, expr ast.Expr, e *env.Env) (t types.Type, err *Error) {
	defer x.tr("checkExpr(%T)", expr)(&err)
	if t, err = checkExpr1(x, expr, e); err != nil {
		return nil, err
	}
	expr.SetType(t)
	x.log("type %s", t)
	return t, nil
}

func checkExpr1(x *state, expr ast.Expr, e *env.Env) (types.Type, *Error) {
	switch expr := expr.(type) {
	case *ast.Const:
		return checkConst(x, expr)
	case *ast.VarAccess:
		return e.Type(expr.Var), nil
	case *ast.StaticVarAccess:
		d, err := x.resolver.ResolveExactly(expr.Name, decl.ConstantKind)
		if err != nil {
			return nil, x.wrap(expr, err)
		}
		c, ok := d.(*decl.Constant)
		if !ok {
			return nil, x.internal(expr, "constant %s resolved to %T", expr.Name, d)
		}
		return c.Type, nil
	case *ast.Cast:
		return checkCast(x, expr, e)
	case *ast.Invoke:
		rets, err := checkInvoke(x, expr, e)
		switch {
		case err != nil:
			return nil, err
		case len(rets) == 0:
			return nil, x.err(expr, "not enough return values provided")
		case len(rets) > 1:
			return nil, x.err(expr, "too many return values provided")
		}
		return rets[0], nil
	case *ast.Not, *ast.And, *ast.Or, *ast.Implies, *ast.Iff, *ast.Is, *ast.Quantifier:
		if _, err := checkCondition(x, expr, true, e); err != nil {
			return nil, err
		}
		return types.Bool, nil
	case *ast.Binary:
		return checkBinary(x, expr, e)
	case *ast.Unary:
		switch expr.Op {
		case ast.Neg:
			return types.Int, checkOperand(x, expr.Expr, types.Int, e)
		case ast.BitNot:
			return types.Byte, checkOperand(x, expr.Expr, types.Byte, e)
		default:
			return nil, x.internal(expr, "bad unary operator %d", expr.Op)
		}
	case *ast.RecordInit:
		return checkRecordInit(x, expr, e)
	case *ast.FieldAccess:
		_, rec, err := checkRecord(x, expr.Expr, e)
		if err != nil {
			return nil, err
		}
		ft := rec.Field(expr.Field)
		if ft == nil {
			return nil, x.err(expr, "invalid field access: %s has no field %s", expr.Expr.Type(), expr.Field)
		}
		return ft, nil
	case *ast.RecordUpdate:
		t, rec, err := checkRecord(x, expr.Expr, e)
		if err != nil {
			return nil, err
		}
		ft := rec.Field(expr.Field)
		if ft == nil {
			return nil, x.err(expr, "invalid field update: %s has no field %s", t, expr.Field)
		}
		return t, checkOperand(x, expr.Value, ft, e)
	case *ast.ArrayLength:
		if _, _, err := checkArray(x, expr.Expr, e); err != nil {
			return nil, err
		}
		return types.Int, nil
	case *ast.ArrayInit:
		var elems []types.Type
		for _, el := range expr.Elems {
			t, err := checkExpr(x, el, e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		return &types.Array{Elem: types.Or(elems...)}, nil
	case *ast.ArrayGen:
		t, err := checkExpr(x, expr.Value, e)
		if err != nil {
			return nil, err
		}
		return &types.Array{Elem: t}, checkOperand(x, expr.Length, types.Int, e)
	case *ast.ArrayAccess:
		_, arr, err := checkArray(x, expr.Expr, e)
		if err != nil {
			return nil, err
		}
		return arr.Elem, checkOperand(x, expr.Index, types.Int, e)
	case *ast.ArrayUpdate:
		t, arr, err := checkArray(x, expr.Expr, e)
		if err != nil {
			return nil, err
		}
		if err := checkOperand(x, expr.Index, types.Int, e); err != nil {
			return nil, err
		}
		return t, checkOperand(x, expr.Value, arr.Elem, e)
	case *ast.Deref:
		t, err := checkExpr(x, expr.Expr, e)
		if err != nil {
			return nil, err
		}
		ref, rerr := x.op.ExtractReference(t)
		switch {
		case rerr != nil:
			return nil, x.wrap(expr, rerr)
		case ref == nil:
			return nil, x.err(expr, "expected reference type, found %s", t)
		}
		return ref.Elem, nil
	case *ast.New:
		t, err := checkExpr(x, expr.Expr, e)
		if err != nil {
			return nil, err
		}
		lifetime := expr.Lifetime
		switch {
		case lifetime != "":
		case x.fn != nil && x.fn.Kind == types.Method:
			lifetime = "this"
		default:
			lifetime = types.Static
		}
		return &types.Reference{Elem: t, Lifetime: lifetime}, nil
	default:
		return nil, x.internal(expr, "unknown expression %T", expr)
	}
}

func checkConst(x *state, c *ast.Const) (types.Type, *Error) {
	switch c.Value.(type) {
	case nil:
		return types.Null, nil
	case bool:
		return types.Bool, nil
	case *big.Int:
		return types.Int, nil
	case byte:
		return types.Byte, nil
	case string:
		return &types.Array{Elem: types.Int}, nil
	default:
		return nil, x.internal(c, "bad constant %T", c.Value)
	}
}

// checkCast accepts a cast unless the operand is definitely not of the target type.
// A cast to a type with an invariant that may not hold is accepted.
func checkCast(x *state, c *ast.Cast, e *env.Env) (types.Type, *Error) {
	t, err := checkExpr(x, c.Expr, e)
	if err != nil {
		return nil, err
	}
	if err := x.nonEmpty(c, c.To, e); err != nil {
		return nil, err
	}
	res, serr := x.op.IsSubtype(c.To, t, e)
	switch {
	case serr != nil:
		return nil, x.wrap(c, serr)
	case res == subtype.False:
		return nil, x.err(c, "invalid cast from %s to %s", t, c.To)
	}
	return c.To, nil
}

func checkBinary(x *state, b *ast.Binary, e *env.Env) (types.Type, *Error) {
	switch b.Op {
	case ast.Eq, ast.Neq:
		if _, err := checkExpr(x, b.Left, e); err != nil {
			return nil, err
		}
		if _, err := checkExpr(x, b.Right, e); err != nil {
			return nil, err
		}
		return types.Bool, nil
	case ast.Lt, ast.LtEq, ast.Gt, ast.GtEq:
		return types.Bool, checkOperands(x, b, types.Int, types.Int, e)
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Rem:
		return types.Int, checkOperands(x, b, types.Int, types.Int, e)
	case ast.BitAnd, ast.BitOr, ast.BitXor:
		return types.Byte, checkOperands(x, b, types.Byte, types.Byte, e)
	case ast.Shl, ast.Shr:
		return types.Byte, checkOperands(x, b, types.Byte, types.Int, e)
	default:
		return nil, x.internal(b, "bad binary operator %d", b.Op)
	}
}

func checkOperands(x *state, b *ast.Binary, left, right types.Type, e *env.Env) *Error {
	if err := checkOperand(x, b.Left, left, e); err != nil {
		return err
	}
	return checkOperand(x, b.Right, right, e)
}

// checkOperand checks that expr is a raw subtype of want.
func checkOperand(x *state, expr ast.Expr, want types.Type, e *env.Env) *Error {
	t, err := checkExpr(x, expr, e)
	if err != nil {
		return err
	}
	return x.isSubtype(expr, want, t, e)
}

func checkRecordInit(x *state, r *ast.RecordInit, e *env.Env) (types.Type, *Error) {
	rec := &types.Record{}
	for _, f := range r.Fields {
		if rec.Field(f.Name) != nil {
			return nil, x.err(f.Value, "duplicate field %s", f.Name)
		}
		t, err := checkExpr(x, f.Value, e)
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, types.Field{Name: f.Name, Type: t})
	}
	return rec, nil
}

// checkRecord checks expr and returns its type and the record readable from it.
func checkRecord(x *state, expr ast.Expr, e *env.Env) (types.Type, *types.Record, *Error) {
	t, err := checkExpr(x, expr, e)
	if err != nil {
		return nil, nil, err
	}
	rec, rerr := x.op.ExtractRecord(t)
	switch {
	case rerr != nil:
		return nil, nil, x.wrap(expr, rerr)
	case rec == nil:
		return nil, nil, x.err(expr, "expected record type, found %s", t)
	}
	return t, rec, nil
}

// checkArray checks expr and returns its type and the array readable from it.
func checkArray(x *state, expr ast.Expr, e *env.Env) (types.Type, *types.Array, *Error) {
	t, err := checkExpr(x, expr, e)
	if err != nil {
		return nil, nil, err
	}
	arr, aerr := x.op.ExtractArray(t)
	switch {
	case aerr != nil:
		return nil, nil, x.wrap(expr, aerr)
	case arr == nil:
		return nil, nil, x.err(expr, "expected array type, found %s", t)
	}
	return t, arr, nil
}
