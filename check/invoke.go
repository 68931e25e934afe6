// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"errors"

	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/decl"
	"github.com/eaburns/flow/env"
	"github.com/eaburns/flow/types"
	"github.com/eaburns/flow/typing"
)

// checkInvoke checks an invocation and returns the types of its results.
// The invocation's Signature and Decl are set to the selected declaration.
//
// Overloads are resolved on a typing matrix with one row per candidate.
// The argument types are in slots 0 through n-1,
// the instantiated signature is in slot n,
// and the parameter types are in slots n+1 through 2n.
// Candidates whose parameters do not accept the arguments are dropped,
// and a candidate is dropped in favor of another
// whose parameters are all subtypes of its own.
func checkInvoke(x *state, inv *ast.Invoke, e *env.Env) (_ []types.Type, err *Error) {
	defer x.tr("checkInvoke(%s)", inv.Name)(&err)
	args := make([]types.Type, len(inv.Args))
	for i, a := range inv.Args {
		if args[i], err = checkExpr(x, a, e); err != nil {
			return nil, err
		}
	}
	// A loop body is checked until its environment is stable,
	// so a selection from an earlier pass is stale.
	inv.Signature, inv.Decl = nil, nil

	ds, rerr := x.resolver.ResolveAll(inv.Name, decl.CallableKind)
	if rerr != nil {
		return nil, x.wrap(inv, rerr)
	}
	var cands []*decl.Callable
	for _, d := range ds {
		if c, ok := d.(*decl.Callable); ok && len(c.Params) == len(args) {
			cands = append(cands, c)
		}
	}
	if len(cands) == 0 {
		err := x.err(inv, "unable to resolve function %s: no candidate with %d parameters", inv.Name, len(args))
		notes(err, ds)
		return nil, err
	}

	n := len(args)
	tab := typing.New(x.op, e)
	for _, a := range args {
		tab = tab.Push(a)
	}
	tab = tab.Project(func(r typing.Row) []typing.Row {
		rows := make([]typing.Row, 0, len(cands))
		for i, c := range cands {
			s, vs := r.Fresh(len(c.Template))
			sig := instantiate(c, vs)
			s = s.Add(sig)
			for _, p := range sig.Params {
				s = s.Add(p)
			}
			s.Tag = i
			rows = append(rows, s)
		}
		return rows
	})
	slots := make([]int, n)
	for i := range args {
		i := i
		slots[i] = n + 1 + i
		var terr error
		if tab, terr = tab.Pull(slots[i], func(r typing.Row) types.Type { return r.Get(i) }); terr != nil {
			return nil, x.wrap(inv, terr)
		}
	}
	if tab.Empty() {
		as := argString(args)
		err := x.err(inv, "unable to resolve function %s: no candidate accepts %s", inv.Name, as)
		if len(cands) > 1 {
			note(err, "ambiguous between %d candidates with %d parameters", len(cands), n)
		}
		for _, c := range cands {
			note(err, "%s does not accept %s", c, as)
		}
		return nil, err
	}
	tab = tab.Concretise()
	for i := range args {
		tab = tab.Register(typing.SubtypeCheck{Parent: slots[i], Child: i})
	}
	tab, ferr := tab.Fold(typing.RowComparator(x.op, e, slots...))
	if ferr != nil {
		return nil, x.wrap(inv, ferr)
	}
	tab = tab.Register(typing.SingleRow{})
	if ferr := tab.Finalise(); ferr != nil {
		var herr *typing.HeightError
		var serr *typing.SubtypeError
		switch {
		case errors.As(ferr, &herr):
			err := x.err(inv, "ambiguous invocation of %s", inv.Name)
			for _, r := range herr.Rows {
				note(err, "%s", cands[r.Tag])
			}
			return nil, err
		case errors.As(ferr, &serr):
			return nil, x.err(inv, "%s", serr)
		default:
			return nil, x.wrap(inv, ferr)
		}
	}
	row := tab.Rows()[0]
	sig, ok := row.Get(n).(*types.Callable)
	if !ok {
		return nil, x.internal(inv, "bad signature slot %s", row.Get(n))
	}
	inv.Signature = sig
	inv.Decl = cands[row.Tag].Node
	inv.SetType(resultType(sig))
	x.log("selected %s", sig)
	return sig.Returns, nil
}

// instantiate returns the signature of c
// with its template parameters replaced by vs.
func instantiate(c *decl.Callable, vs []*types.Existential) *types.Callable {
	sig := c.Signature()
	if len(vs) == 0 {
		return sig
	}
	return types.Substitute(sig, func(t types.Type) types.Type {
		v, ok := t.(*types.Var)
		if !ok {
			return nil
		}
		for i, name := range c.Template {
			if name == v.Name {
				return vs[i]
			}
		}
		return nil
	}).(*types.Callable)
}

func resultType(sig *types.Callable) types.Type {
	if len(sig.Returns) == 1 {
		return sig.Returns[0]
	}
	return nil
}

func notes(err *Error, ds []decl.Declaration) {
	for _, d := range ds {
		note(err, "%s", d)
	}
}

func argString(args []types.Type) string {
	s := "("
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}
