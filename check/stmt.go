// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/env"
	"github.com/eaburns/flow/types"
)

// checkBlock checks the statements of a block in order
// and returns the environment after the last one.
func checkBlock(x *state, b *ast.Block, e *env.Env) (*env.Env, *Error) {
	var err *Error
	for _, s := range b.Stmts {
		if e, err = checkStmt(x, s, e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func checkStmt(x *state, s ast.Stmt, e *env.Env) (_ *env.Env, err *Error) {
	if e == env.Bottom {
		return nil, x.err(s, "unreachable code")
	}
	switch s := s.(type) {
	case *ast.Block:
		return checkBlock(x, s, e)
	case *ast.VarDecl:
		return checkVarDecl(x, s, e)
	case *ast.Assign:
		return checkAssign(x, s, e)
	case *ast.Return:
		return checkReturn(x, s, e)
	case *ast.Break:
		return checkBreak(x, s, e)
	case *ast.Continue:
		return checkContinue(x, s, e)
	case *ast.Fail:
		return env.Bottom, nil
	case *ast.Skip:
		return e, nil
	case *ast.If:
		return checkIf(x, s, e)
	case *ast.While:
		return checkWhile(x, s, e)
	case *ast.DoWhile:
		return checkDoWhile(x, s, e)
	case *ast.Switch:
		return checkSwitch(x, s, e)
	case *ast.NamedBlock:
		return checkBlock(x, s.Body, e)
	case *ast.Assert:
		return checkCondition(x, s.Cond, true, e)
	case *ast.Assume:
		return checkCondition(x, s.Cond, true, e)
	case *ast.Debug:
		t, err := checkExpr(x, s.Value, e)
		if err != nil {
			return nil, err
		}
		if err := x.isSubtype(s.Value, &types.Array{Elem: types.Int}, t, e); err != nil {
			return nil, err
		}
		return e, nil
	case *ast.ExprStmt:
		if _, err := checkMultiExprs(x, []ast.Expr{s.Expr}, e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, x.internal(s, "unknown statement %T", s)
	}
}

func checkVarDecl(x *state, s *ast.VarDecl, e *env.Env) (*env.Env, *Error) {
	if err := x.nonEmpty(s.Var, s.Var.Type, e); err != nil {
		return nil, err
	}
	if s.Init == nil {
		return e, nil
	}
	t, err := checkExpr(x, s.Init, e)
	if err != nil {
		return nil, err
	}
	if err := x.isSubtype(s.Init, s.Var.Type, t, e); err != nil {
		return nil, err
	}
	return e, nil
}

func checkAssign(x *state, s *ast.Assign, e *env.Env) (_ *env.Env, err *Error) {
	defer x.tr("checkAssign")(&err)
	vals, err := checkMultiExprs(x, s.RHS, e)
	if err != nil {
		return nil, err
	}
	switch {
	case len(vals) > len(s.LHS):
		return nil, x.err(vals[len(s.LHS)].expr, "too many values provided on right-hand side")
	case len(vals) < len(s.LHS):
		return nil, x.err(s.LHS[len(vals)], "not enough values provided on right-hand side")
	}
	type refine struct {
		v *ast.Variable
		t types.Type
	}
	var refines []refine
	for i, lhs := range s.LHS {
		val := vals[i]
		if v, ok := lhs.(*ast.VarAccess); ok {
			// A variable may be assigned any value of its declared type,
			// whatever its refined type.
			v.SetType(v.Var.Type)
			if err := x.isSubtype(val.expr, v.Var.Type, val.typ, e); err != nil {
				return nil, err
			}
			refines = append(refines, refine{v: v.Var, t: val.typ})
			continue
		}
		t, err := checkLVal(x, lhs, e)
		if err != nil {
			return nil, err
		}
		if err := x.isSubtype(val.expr, t, val.typ, e); err != nil {
			return nil, err
		}
	}
	for _, r := range refines {
		e = e.Refine(r.v, r.t)
	}
	return e, nil
}

// checkLVal returns the type that may be written to an assignment target
// other than a variable.
func checkLVal(x *state, lhs ast.Expr, e *env.Env) (types.Type, *Error) {
	switch lhs.(type) {
	case *ast.FieldAccess, *ast.ArrayAccess, *ast.Deref:
		return checkExpr(x, lhs, e)
	default:
		return nil, x.internal(lhs, "invalid assignment target %T", lhs)
	}
}

func checkReturn(x *state, s *ast.Return, e *env.Env) (*env.Env, *Error) {
	if x.fn == nil {
		return nil, x.internal(s, "return outside of a callable")
	}
	vals, err := checkMultiExprs(x, s.Values, e)
	if err != nil {
		return nil, err
	}
	rets := x.fn.Returns
	switch {
	case len(vals) < len(rets):
		return nil, x.err(s, "not enough return values provided")
	case len(vals) > len(rets):
		return nil, x.err(vals[len(rets)].expr, "too many return values provided")
	}
	for i, val := range vals {
		if err := x.isSubtype(val.expr, rets[i].Type, val.typ, e); err != nil {
			return nil, err
		}
	}
	return env.Bottom, nil
}

func checkBreak(x *state, s *ast.Break, e *env.Env) (*env.Env, *Error) {
	if len(x.frames) == 0 {
		return nil, x.err(s, "break outside switch or loop")
	}
	f := x.frames[len(x.frames)-1]
	f.breaks = append(f.breaks, e)
	return env.Bottom, nil
}

func checkContinue(x *state, s *ast.Continue, e *env.Env) (*env.Env, *Error) {
	for i := len(x.frames) - 1; i >= 0; i-- {
		if f := x.frames[i]; f.loop {
			f.continues = append(f.continues, e)
			return env.Bottom, nil
		}
	}
	return nil, x.err(s, "continue outside loop")
}

func checkIf(x *state, s *ast.If, e *env.Env) (_ *env.Env, err *Error) {
	defer x.tr("checkIf")(&err)
	trueEnv, err := checkCondition(x, s.Cond, true, e)
	if err != nil {
		return nil, err
	}
	falseEnv, err := checkCondition(x, s.Cond, false, e)
	if err != nil {
		return nil, err
	}
	if trueEnv, err = checkBlock(x, s.Then, trueEnv); err != nil {
		return nil, err
	}
	if s.Else != nil {
		if falseEnv, err = checkBlock(x, s.Else, falseEnv); err != nil {
			return nil, err
		}
	}
	return env.Union(trueEnv, falseEnv), nil
}

// checkWhile checks a while loop to a fixed point.
// The loop head is the join of the entry environment and every back edge.
func checkWhile(x *state, s *ast.While, e *env.Env) (_ *env.Env, err *Error) {
	defer x.tr("checkWhile")(&err)
	if _, err := checkConditions(x, s.Invariants, true, e); err != nil {
		return nil, err
	}
	head := e
	for i := 0; ; i++ {
		bodyEnv, err := checkCondition(x, s.Cond, true, head)
		if err != nil {
			return nil, err
		}
		f := x.pushFrame(true)
		bodyEnv, err = checkBlock(x, s.Body, bodyEnv)
		x.popFrame()
		if err != nil {
			return nil, err
		}
		back := env.UnionAll(append(f.continues, bodyEnv)...)
		if back != env.Bottom {
			if _, err := checkConditions(x, s.Invariants, true, back); err != nil {
				return nil, err
			}
		}
		next := x.widen(i, head, env.Union(e, back))
		if next.Equal(head) {
			exit, err := checkCondition(x, s.Cond, false, head)
			if err != nil {
				return nil, err
			}
			return env.UnionAll(append(f.breaks, exit)...), nil
		}
		x.log("loop head %s", next)
		head = next
	}
}

// checkDoWhile checks a do-while loop to a fixed point.
// The body is entered from the entry environment
// and from the true-signed condition after each iteration.
func checkDoWhile(x *state, s *ast.DoWhile, e *env.Env) (_ *env.Env, err *Error) {
	defer x.tr("checkDoWhile")(&err)
	head := e
	for i := 0; ; i++ {
		f := x.pushFrame(true)
		bodyEnv, err := checkBlock(x, s.Body, head)
		x.popFrame()
		if err != nil {
			return nil, err
		}
		post := env.UnionAll(append(f.continues, bodyEnv)...)
		if post == env.Bottom {
			// The condition is never reached.
			return env.UnionAll(f.breaks...), nil
		}
		if _, err := checkConditions(x, s.Invariants, true, post); err != nil {
			return nil, err
		}
		again, err := checkCondition(x, s.Cond, true, post)
		if err != nil {
			return nil, err
		}
		next := x.widen(i, head, env.Union(e, again))
		if next.Equal(head) {
			exit, err := checkCondition(x, s.Cond, false, post)
			if err != nil {
				return nil, err
			}
			return env.UnionAll(append(f.breaks, exit)...), nil
		}
		x.log("loop head %s", next)
		head = next
	}
}

// widen returns the next loop head.
// Once the loop limit is reached, only refinements that head and next agree on are kept,
// so each further iteration either converges or drops a refinement.
func (x *state) widen(i int, head, next *env.Env) *env.Env {
	if i+1 < x.cfg.LoopLimit {
		return next
	}
	return env.Agree(head, next)
}

func checkSwitch(x *state, s *ast.Switch, e *env.Env) (_ *env.Env, err *Error) {
	defer x.tr("checkSwitch")(&err)
	if _, err := checkExpr(x, s.Value, e); err != nil {
		return nil, err
	}
	f := x.pushFrame(false)
	defer x.popFrame()
	var ends []*env.Env
	hasDefault := false
	for _, c := range s.Cases {
		if len(c.Values) == 0 {
			hasDefault = true
		}
		for _, v := range c.Values {
			if _, err := checkExpr(x, v, e); err != nil {
				return nil, err
			}
		}
		end, err := checkBlock(x, c.Body, e)
		if err != nil {
			return nil, err
		}
		ends = append(ends, end)
	}
	ends = append(ends, f.breaks...)
	if !hasDefault {
		ends = append(ends, e)
	}
	return env.UnionAll(ends...), nil
}
