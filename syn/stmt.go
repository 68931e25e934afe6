// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/types"
)

func (x *parser) parseBlock() *ast.Block {
	defer x.enter("Block")()
	start := x.i
	x.expect("{")
	x.pushScope()
	defer x.popScope()
	b := &ast.Block{}
	for !x.accept("}") {
		b.Stmts = append(b.Stmts, x.parseStmt())
	}
	b.Range = x.r(start)
	return b
}

func (x *parser) parseStmt() ast.Stmt {
	defer x.enter("Stmt")()
	start := x.i
	switch {
	case x.is("{"):
		return x.parseBlock()
	case x.isIdent() && x.peek(1).text == ":" && x.peek(2).text == "{":
		name := x.next().text
		x.next()
		return &ast.NamedBlock{Name: name, Body: x.parseBlock(), Range: x.r(start)}
	case x.accept("if"):
		return x.parseIf(start)
	case x.accept("while"):
		s := &ast.While{Cond: x.parseExpr()}
		for x.accept("where") {
			s.Invariants = append(s.Invariants, x.parseExpr())
		}
		s.Body = x.parseBlock()
		s.Range = x.r(start)
		return s
	case x.accept("do"):
		s := &ast.DoWhile{Body: x.parseBlock()}
		x.expect("while")
		s.Cond = x.parseExpr()
		for x.accept("where") {
			s.Invariants = append(s.Invariants, x.parseExpr())
		}
		x.expect(";")
		s.Range = x.r(start)
		return s
	case x.accept("switch"):
		return x.parseSwitch(start)
	case x.accept("return"):
		s := &ast.Return{}
		if !x.accept(";") {
			s.Values = x.parseExprs()
			x.expect(";")
		}
		s.Range = x.r(start)
		return s
	case x.accept("break"):
		x.expect(";")
		return &ast.Break{Range: x.r(start)}
	case x.accept("continue"):
		x.expect(";")
		return &ast.Continue{Range: x.r(start)}
	case x.accept("fail"):
		x.expect(";")
		return &ast.Fail{Range: x.r(start)}
	case x.accept("skip"):
		x.expect(";")
		return &ast.Skip{Range: x.r(start)}
	case x.accept("assert"):
		s := &ast.Assert{Cond: x.parseExpr()}
		x.expect(";")
		s.Range = x.r(start)
		return s
	case x.accept("assume"):
		s := &ast.Assume{Cond: x.parseExpr()}
		x.expect(";")
		s.Range = x.r(start)
		return s
	case x.accept("debug"):
		s := &ast.Debug{Value: x.parseExpr()}
		x.expect(";")
		s.Range = x.r(start)
		return s
	}
	if s := x.tryVarDecl(); s != nil {
		return s
	}
	return x.parseSimpleStmt()
}

// parseIf parses an if statement after the if keyword.
func (x *parser) parseIf(start int) ast.Stmt {
	s := &ast.If{Cond: x.parseExpr(), Then: x.parseBlock()}
	if x.accept("else") {
		if elseStart := x.i; x.accept("if") {
			elif := x.parseIf(elseStart)
			s.Else = &ast.Block{Stmts: []ast.Stmt{elif}, Range: elif.GetRange()}
		} else {
			s.Else = x.parseBlock()
		}
	}
	s.Range = x.r(start)
	return s
}

// parseSwitch parses a switch statement after the switch keyword.
func (x *parser) parseSwitch(start int) ast.Stmt {
	s := &ast.Switch{Value: x.parseExpr()}
	x.expect("{")
	for !x.accept("}") {
		caseStart := x.i
		c := &ast.Case{}
		switch {
		case x.accept("default"):
		case x.accept("case"):
			c.Values = x.parseExprs()
		default:
			x.failWant(`"case"`)
		}
		x.expect(":")
		c.Body = x.parseBlock()
		c.Range = x.r(caseStart)
		s.Cases = append(s.Cases, c)
	}
	s.Range = x.r(start)
	return s
}

// tryVarDecl parses a variable declaration if one is next:
// 	T x;
// 	T x = e;
// It returns nil if the next statement is not a declaration.
func (x *parser) tryVarDecl() ast.Stmt {
	if x.isIdent() && x.lookup(x.tok().text) != nil {
		return nil
	}
	start := x.i
	var typ types.Type
	var name token
	if !x.try(func() {
		typ = x.parseType()
		name = x.ident()
		if !x.is("=") && !x.is(";") {
			x.failWant(`"="`)
		}
	}) {
		return nil
	}
	v := x.alloc.New(name.text, typ, x.r(start))
	s := &ast.VarDecl{Var: v}
	if x.accept("=") {
		s.Init = x.parseExpr()
	}
	x.expect(";")
	// The variable is not in scope in its own initializer.
	x.declare(v)
	s.Range = x.r(start)
	return s
}

// parseSimpleStmt parses an assignment or an expression statement.
func (x *parser) parseSimpleStmt() ast.Stmt {
	start := x.i
	lhs := x.parseExprs()
	if !x.accept("=") {
		x.expect(";")
		if len(lhs) > 1 {
			x.i--
			x.failAt(`"="`)
		}
		return &ast.ExprStmt{Expr: lhs[0], Range: x.r(start)}
	}
	for _, l := range lhs {
		switch l.(type) {
		case *ast.VarAccess, *ast.FieldAccess, *ast.ArrayAccess, *ast.Deref:
		default:
			x.i = start
			x.failAt("assignable expression")
		}
	}
	s := &ast.Assign{LHS: lhs, RHS: x.parseExprs()}
	x.expect(";")
	s.Range = x.r(start)
	return s
}

func (x *parser) parseExprs() []ast.Expr {
	es := []ast.Expr{x.parseExpr()}
	for x.accept(",") {
		es = append(es, x.parseExpr())
	}
	return es
}
