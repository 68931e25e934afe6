// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"sync"

	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/decl"
	"github.com/eaburns/flow/env"
	"github.com/eaburns/flow/loc"
	"github.com/eaburns/flow/subtype"
	"github.com/eaburns/flow/types"
)

// state is the state of checking a single declaration.
type state struct {
	cfg      Config
	file     *ast.File
	resolver decl.Resolver
	op       *subtype.Operator

	// fn is the callable being checked, or nil.
	fn *ast.CallableDecl
	// frames are the enclosing loops and switches, innermost last.
	frames []*frame

	indent string
}

// A frame collects the environments that leave a loop or switch early.
type frame struct {
	loop      bool
	breaks    []*env.Env
	continues []*env.Env
}

func setConfigDefaults(cfg *Config) {
	switch {
	case cfg.LoopLimit == 0:
		cfg.LoopLimit = 4
	case cfg.LoopLimit < 0:
		panic("bad LoopLimit " + strconv.Itoa(cfg.LoopLimit))
	}
	switch {
	case cfg.Workers == 0:
		cfg.Workers = 1
	case cfg.Workers < 0:
		panic("bad Workers " + strconv.Itoa(cfg.Workers))
	}
	if cfg.TraceOut == nil {
		cfg.TraceOut = os.Stdout
	}
	if _, ok := cfg.TraceOut.(*lockedWriter); !ok {
		cfg.TraceOut = &lockedWriter{w: cfg.TraceOut}
	}
}

// lockedWriter serialises trace lines written by concurrent workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

func (x *state) err(n ast.Node, f string, vs ...interface{}) *Error {
	return &Error{Kind: TypeError, Loc: x.loc(n), Msg: fmt.Sprintf(f, vs...)}
}

func (x *state) internal(n ast.Node, f string, vs ...interface{}) *Error {
	return &Error{Kind: InternalFailure, Loc: x.loc(n), Msg: fmt.Sprintf(f, vs...)}
}

// wrap converts an error from a subtype test or a declaration lookup into an *Error.
func (x *state) wrap(n ast.Node, err error) *Error {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}
	var rerr *decl.ResolutionError
	var nerr *subtype.ContractiveError
	switch {
	case errors.As(err, &rerr), errors.As(err, &nerr):
		return &Error{Kind: TypeError, Loc: x.loc(n), Msg: err.Error(), cause: err}
	default:
		return &Error{Kind: InternalFailure, Loc: x.loc(n), Msg: err.Error(), cause: err}
	}
}

func (x *state) loc(n ast.Node) (l loc.Loc) {
	if n == nil || reflect.ValueOf(n).IsNil() || x.file.Locs == nil {
		return loc.Loc{Path: x.file.Path}
	}
	if l = x.file.Locs.Loc(n.GetRange()); l.IsZero() {
		l.Path = x.file.Path
	}
	return l
}

// isSubtype reports an error unless child is a raw subtype of parent.
func (x *state) isSubtype(n ast.Node, parent, child types.Type, e *env.Env) *Error {
	ok, err := x.op.IsRawSubtype(parent, child, e)
	switch {
	case err != nil:
		return x.wrap(n, err)
	case !ok:
		return x.err(n, "type %s not subtype of %s", child, parent)
	default:
		return nil
	}
}

// nonEmpty reports an error if t has no values.
func (x *state) nonEmpty(n ast.Node, t types.Type, e *env.Env) *Error {
	empty, err := x.op.IsEmpty(t, e)
	switch {
	case err != nil:
		return x.wrap(n, err)
	case empty:
		return x.err(n, "empty type %s", t)
	default:
		return nil
	}
}

func (x *state) pushFrame(loop bool) *frame {
	f := &frame{loop: loop}
	x.frames = append(x.frames, f)
	return f
}

func (x *state) popFrame() {
	x.frames = x.frames[:len(x.frames)-1]
}

// The argument to the returned function, if non-empty,
// must be a pointer to a type convertable to error;
// only the first argument is used.
func (x *state) tr(f string, vs ...interface{}) func(...interface{}) {
	if !x.cfg.Trace {
		return func(...interface{}) {}
	}
	x.log(f, vs...)
	olddent := x.indent
	x.indent += "---"
	return func(errs ...interface{}) {
		defer func() { x.indent = olddent }()
		if len(errs) == 0 {
			return
		}
		v := reflect.ValueOf(errs[0])
		if v.IsNil() || v.Elem().IsNil() {
			return
		}
		x.log("%v", v.Elem().Interface())
	}
}

func (x *state) log(f string, vs ...interface{}) {
	if !x.cfg.Trace {
		return
	}
	fmt.Fprintf(x.cfg.TraceOut, x.indent+f+"\n", vs...)
}
