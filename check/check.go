// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package check is a flow-sensitive type checker.
//
// The checker threads a typing environment through every statement and condition
// so that type tests, assignments, and control flow refine the types of variables.
// Subtyping is semantic; see package subtype.
package check

import (
	"io"
	"runtime/debug"

	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/decl"
	"github.com/eaburns/flow/env"
	"github.com/eaburns/flow/subtype"
	"github.com/eaburns/flow/types"
	"golang.org/x/sync/errgroup"
)

// Config are configuration parameters for the type checker.
type Config struct {
	// Trace is whether to enable debug tracing.
	Trace bool

	// TraceOut is where trace output is written.
	// If nil, os.Stdout is used.
	TraceOut io.Writer

	// LoopLimit is the number of times a loop body is checked
	// before variables whose types are still changing
	// revert to their declared types.
	// If zero, 4 is used.
	LoopLimit int

	// Workers is the number of declarations checked concurrently.
	// If zero, 1 is used.
	Workers int
}

// Check type-checks the declarations of a file,
// resolving names with r,
// and annotates the file's expressions with their types.
//
// The first error in a declaration stops checking that declaration;
// the other declarations are still checked.
// The returned errors are *Error values sorted by location.
func Check(file *ast.File, r decl.Resolver, cfg Config) []error {
	setConfigDefaults(&cfg)
	var opts []subtype.Option
	if cfg.Trace {
		opts = append(opts, subtype.WithTrace(cfg.TraceOut))
	}
	op := subtype.New(r, opts...)

	errs := make([]*Error, len(file.Decls))
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, d := range file.Decls {
		i, d := i, d
		g.Go(func() error {
			x := &state{cfg: cfg, file: file, resolver: r, op: op}
			errs[i] = checkDecl(x, d)
			return nil
		})
	}
	g.Wait()

	var found []*Error
	for _, err := range errs {
		if err != nil {
			found = append(found, err)
		}
	}
	return convertErrors(found)
}

// Table returns a declaration table for the declarations of files.
func Table(files ...*ast.File) *decl.Table {
	tab := decl.NewTable()
	for _, f := range files {
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.TypeDecl:
				tab.Add(&decl.Type{Name: d.Name, Type: d.Type, Invariant: len(d.Invariant) > 0})
			case *ast.ConstDecl:
				tab.Add(&decl.Constant{Name: d.Name, Type: d.Type, Value: d.Value})
			case *ast.CallableDecl:
				sig := d.Signature()
				tab.Add(&decl.Callable{
					Name:      d.Name,
					Kind:      d.Kind,
					Template:  d.Template,
					Lifetimes: d.Lifetimes,
					Params:    sig.Params,
					Returns:   sig.Returns,
					Node:      d,
				})
			}
		}
	}
	return tab
}

func checkDecl(x *state, d ast.Decl) (err *Error) {
	defer func() {
		if r := recover(); r != nil {
			err = x.internal(d, "panic checking %s: %v", d.DeclName(), r)
			if x.cfg.Trace {
				x.log("%s", debug.Stack())
			}
		}
	}()
	defer x.tr("checkDecl(%s)", d.DeclName())(&err)
	switch d := d.(type) {
	case *ast.TypeDecl:
		return checkTypeDecl(x, d)
	case *ast.ConstDecl:
		return checkConstDecl(x, d)
	case *ast.CallableDecl:
		return checkCallableDecl(x, d)
	default:
		return x.internal(d, "unknown declaration %T", d)
	}
}

func checkTypeDecl(x *state, d *ast.TypeDecl) *Error {
	e := env.New()
	if err := x.nonEmpty(d, d.Type, e); err != nil {
		return err
	}
	ok, cerr := x.op.IsContractive(d.Name, d.Type)
	switch {
	case cerr != nil:
		return x.wrap(d, cerr)
	case !ok:
		return x.err(d, "type %s is not contractive", d.Name)
	}
	if len(d.Invariant) > 0 && d.Var == nil {
		return x.internal(d, "invariant of %s binds no variable", d.Name)
	}
	_, err := checkConditions(x, d.Invariant, true, e)
	return err
}

func checkConstDecl(x *state, d *ast.ConstDecl) *Error {
	e := env.New()
	t, err := checkExpr(x, d.Value, e)
	if err != nil {
		return err
	}
	return x.isSubtype(d.Value, d.Type, t, e)
}

func checkCallableDecl(x *state, d *ast.CallableDecl) *Error {
	x.fn = d
	e := env.New()
	if d.Kind == types.Method {
		e = e.DeclareWithin("this", d.Lifetimes...)
	}
	for _, p := range d.Params {
		if err := x.nonEmpty(p, p.Type, e); err != nil {
			return err
		}
	}
	for _, r := range d.Returns {
		if err := x.nonEmpty(r, r.Type, e); err != nil {
			return err
		}
	}
	e, err := checkConditions(x, d.Requires, true, e)
	if err != nil {
		return err
	}
	if _, err := checkConditions(x, d.Ensures, true, e); err != nil {
		return err
	}
	if d.Body == nil {
		return nil
	}
	last, err := checkBlock(x, d.Body, e)
	if err != nil {
		return err
	}
	if last != env.Bottom && len(d.Returns) > 0 {
		return x.err(d, "missing return statement")
	}
	return nil
}
