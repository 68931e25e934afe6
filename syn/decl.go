// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/types"
)

func (x *parser) parseDecl() ast.Decl {
	defer x.enter("Decl")()
	switch {
	case x.is("type"):
		return x.parseTypeDecl()
	case x.is("const"):
		return x.parseConstDecl()
	case x.is("function"), x.is("method"), x.is("property"):
		return x.parseCallableDecl()
	default:
		x.want(`"type"`)
		x.want(`"const"`)
		x.want(`"function"`)
		x.want(`"method"`)
		x.failWant(`"property"`)
		panic("impossible")
	}
}

// 	type name is T
// 	type name is (T x) where cond where cond
func (x *parser) parseTypeDecl() *ast.TypeDecl {
	defer x.enter("TypeDecl")()
	start := x.i
	x.expect("type")
	d := &ast.TypeDecl{Name: x.ident().text}
	x.expect("is")
	x.pushScope()
	defer x.popScope()
	var typ types.Type
	var v *ast.Variable
	if !x.try(func() {
		p := x.i
		x.expect("(")
		typ = x.parseType()
		name := x.ident()
		x.expect(")")
		v = x.alloc.New(name.text, typ, x.r(p))
	}) {
		typ = x.parseType()
	}
	d.Type, d.Var = typ, v
	if v != nil {
		x.declare(v)
	}
	for x.accept("where") {
		if v == nil {
			x.failWant("(T x)")
		}
		d.Invariant = append(d.Invariant, x.parseExpr())
	}
	d.Range = x.r(start)
	return d
}

// 	const T NAME = expr;
func (x *parser) parseConstDecl() *ast.ConstDecl {
	defer x.enter("ConstDecl")()
	start := x.i
	x.expect("const")
	d := &ast.ConstDecl{Type: x.parseType()}
	d.Name = x.ident().text
	x.expect("=")
	d.Value = x.parseExpr()
	x.expect(";")
	d.Range = x.r(start)
	return d
}

// 	function name<T, &l>(T x) -> (T r) requires cond ensures cond { stmts }
func (x *parser) parseCallableDecl() *ast.CallableDecl {
	defer x.enter("CallableDecl")()
	start := x.i
	d := &ast.CallableDecl{}
	switch x.next().text {
	case "function":
		d.Kind = types.Function
	case "method":
		d.Kind = types.Method
	case "property":
		d.Kind = types.Property
	}
	d.Name = x.ident().text
	x.templates = make(map[string]bool)
	defer func() { x.templates = nil }()
	if x.accept("<") {
		for {
			if x.accept("&") {
				d.Lifetimes = append(d.Lifetimes, x.ident().text)
			} else {
				name := x.ident().text
				d.Template = append(d.Template, name)
				x.templates[name] = true
			}
			if !x.accept(",") {
				break
			}
		}
		x.expect(">")
	}
	x.pushScope()
	defer x.popScope()
	d.Params = x.parseVars()
	if x.accept("->") {
		if !x.is("(") || !x.try(func() { d.Returns = x.parseReturnVars() }) {
			p := x.i
			t := x.parseType()
			d.Returns = []*ast.Variable{x.alloc.New("", t, x.r(p))}
		}
	}
	for {
		switch {
		case x.accept("requires"):
			d.Requires = append(d.Requires, x.parseExpr())
			continue
		case x.accept("ensures"):
			d.Ensures = append(d.Ensures, x.parseExpr())
			continue
		}
		break
	}
	if !x.accept(";") {
		d.Body = x.parseBlock()
	}
	d.Range = x.r(start)
	return d
}

// parseVars parses a parenthesized list of variables, declaring each one.
// Variable names are optional.
// parseReturnVars parses a parenthesized return list.
// It bails out if the parentheses group a single type
// that continues with a postfix or binary type operator, as in (int|null)[].
func (x *parser) parseReturnVars() []*ast.Variable {
	vs := x.parseVars()
	if x.is("[") || x.is("|") || x.is("&") {
		panic(bailout{})
	}
	return vs
}

func (x *parser) parseVars() []*ast.Variable {
	var vs []*ast.Variable
	x.expect("(")
	if x.accept(")") {
		return nil
	}
	for {
		p := x.i
		t := x.parseType()
		name := ""
		if x.isIdent() {
			name = x.next().text
		}
		v := x.alloc.New(name, t, x.r(p))
		x.declare(v)
		vs = append(vs, v)
		if !x.accept(",") {
			break
		}
	}
	x.expect(")")
	return vs
}
