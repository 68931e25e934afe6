// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"math/big"
	"strconv"

	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/types"
)

// parseExpr parses an expression.
// From loosest to tightest binding:
// 	<==>
// 	==>
// 	||
// 	&&
// 	== != < <= > >= is
// 	|
// 	^
// 	&
// 	<< >>
// 	+ -
// 	* / %
// 	unary ! - ~ * |e| new (T)
// 	postfix .f [i] [i:=v] {f:=v}
func (x *parser) parseExpr() ast.Expr {
	defer x.enter("Expr")()
	start := x.i
	l := x.parseImplies()
	for x.accept("<==>") {
		r := x.parseImplies()
		l = &ast.Iff{Left: l, Right: r, Range: x.r(start)}
	}
	return l
}

func (x *parser) parseImplies() ast.Expr {
	start := x.i
	l := x.parseOr()
	if x.accept("==>") {
		r := x.parseImplies()
		return &ast.Implies{Left: l, Right: r, Range: x.r(start)}
	}
	return l
}

func (x *parser) parseOr() ast.Expr {
	start := x.i
	es := []ast.Expr{x.parseAnd()}
	for x.accept("||") {
		es = append(es, x.parseAnd())
	}
	if len(es) == 1 {
		return es[0]
	}
	return &ast.Or{Exprs: es, Range: x.r(start)}
}

func (x *parser) parseAnd() ast.Expr {
	start := x.i
	es := []ast.Expr{x.parseCmp()}
	for x.accept("&&") {
		es = append(es, x.parseCmp())
	}
	if len(es) == 1 {
		return es[0]
	}
	return &ast.And{Exprs: es, Range: x.r(start)}
}

var cmpOps = map[string]ast.Op{
	"==": ast.Eq,
	"!=": ast.Neq,
	"<":  ast.Lt,
	"<=": ast.LtEq,
	">":  ast.Gt,
	">=": ast.GtEq,
}

func (x *parser) parseCmp() ast.Expr {
	start := x.i
	l := x.parseBitOr()
	if x.accept("is") {
		return &ast.Is{Expr: l, Test: x.parseType(), Range: x.r(start)}
	}
	if op, ok := cmpOps[x.tok().text]; ok && x.tok().kind == tokPunct {
		x.next()
		r := x.parseBitOr()
		return &ast.Binary{Op: op, Left: l, Right: r, Range: x.r(start)}
	}
	return l
}

func (x *parser) parseBitOr() ast.Expr {
	return x.parseBinary(x.parseBitXor, map[string]ast.Op{"|": ast.BitOr})
}

func (x *parser) parseBitXor() ast.Expr {
	return x.parseBinary(x.parseBitAnd, map[string]ast.Op{"^": ast.BitXor})
}

func (x *parser) parseBitAnd() ast.Expr {
	return x.parseBinary(x.parseShift, map[string]ast.Op{"&": ast.BitAnd})
}

func (x *parser) parseShift() ast.Expr {
	return x.parseBinary(x.parseAdd, map[string]ast.Op{"<<": ast.Shl, ">>": ast.Shr})
}

func (x *parser) parseAdd() ast.Expr {
	return x.parseBinary(x.parseMul, map[string]ast.Op{"+": ast.Add, "-": ast.Sub})
}

func (x *parser) parseMul() ast.Expr {
	return x.parseBinary(x.parseUnary, map[string]ast.Op{"*": ast.Mul, "/": ast.Div, "%": ast.Rem})
}

// parseBinary parses a left-associative chain of operands separated by ops.
func (x *parser) parseBinary(operand func() ast.Expr, ops map[string]ast.Op) ast.Expr {
	start := x.i
	l := operand()
	for {
		t := x.tok()
		op, ok := ops[t.text]
		if !ok || t.kind != tokPunct {
			return l
		}
		x.next()
		r := operand()
		l = &ast.Binary{Op: op, Left: l, Right: r, Range: x.r(start)}
	}
}

func (x *parser) parseUnary() ast.Expr {
	start := x.i
	switch {
	case x.accept("!"):
		return &ast.Not{Expr: x.parseUnary(), Range: x.r(start)}
	case x.accept("-"):
		return &ast.Unary{Op: ast.Neg, Expr: x.parseUnary(), Range: x.r(start)}
	case x.accept("~"):
		return &ast.Unary{Op: ast.BitNot, Expr: x.parseUnary(), Range: x.r(start)}
	case x.accept("*"):
		return &ast.Deref{Expr: x.parseUnary(), Range: x.r(start)}
	case x.accept("|"):
		e := x.parseBitXor()
		x.expect("|")
		return &ast.ArrayLength{Expr: e, Range: x.r(start)}
	case x.accept("new"):
		return &ast.New{Expr: x.parseUnary(), Range: x.r(start)}
	case x.isIdent() && x.peek(1).text == ":" && x.peek(2).text == "new":
		lifetime := x.next().text
		x.next()
		x.next()
		return &ast.New{Expr: x.parseUnary(), Lifetime: lifetime, Range: x.r(start)}
	case x.is("("):
		var cast *ast.Cast
		if x.try(func() { cast = x.parseCast() }) {
			return cast
		}
	}
	return x.parsePostfix()
}

// parseCast parses (T) e.
// It bails out if (T) is a parenthesized variable
// or is not followed by an operand.
func (x *parser) parseCast() *ast.Cast {
	start := x.i
	x.expect("(")
	t := x.parseType()
	x.expect(")")
	if n, ok := t.(*types.Nominal); ok && x.lookup(n.Name) != nil {
		panic(bailout{})
	}
	if !x.startsOperand() {
		panic(bailout{})
	}
	e := x.parseUnary()
	return &ast.Cast{To: t, Expr: e, Range: x.r(start)}
}

func (x *parser) startsOperand() bool {
	t := x.tok()
	switch t.kind {
	case tokInt, tokByte, tokString:
		return true
	case tokIdent:
		switch t.text {
		case "true", "false", "null", "new", "all", "some":
			return true
		}
		return !keywords[t.text]
	case tokPunct:
		switch t.text {
		case "(", "{", "[", "!", "~":
			return true
		}
	}
	return false
}

func (x *parser) parsePostfix() ast.Expr {
	start := x.i
	e := x.parsePrimary()
	for {
		switch {
		case x.accept("."):
			e = &ast.FieldAccess{Expr: e, Field: x.ident().text, Range: x.r(start)}
		case x.accept("["):
			i := x.parseExpr()
			if x.accept(":=") {
				v := x.parseExpr()
				x.expect("]")
				e = &ast.ArrayUpdate{Expr: e, Index: i, Value: v, Range: x.r(start)}
				continue
			}
			x.expect("]")
			e = &ast.ArrayAccess{Expr: e, Index: i, Range: x.r(start)}
		case x.is("{") && x.peek(1).kind == tokIdent && x.peek(2).text == ":=":
			x.next()
			f := x.ident().text
			x.expect(":=")
			v := x.parseExpr()
			x.expect("}")
			e = &ast.RecordUpdate{Expr: e, Field: f, Value: v, Range: x.r(start)}
		default:
			return e
		}
	}
}

func (x *parser) parsePrimary() ast.Expr {
	defer x.enter("Primary")()
	start := x.i
	t := x.tok()
	switch t.kind {
	case tokInt:
		x.next()
		n, ok := new(big.Int).SetString(t.text, 10)
		if !ok {
			x.i--
			x.failWant("integer")
		}
		return &ast.Const{Value: n, Range: x.r(start)}
	case tokByte:
		x.next()
		b, err := strconv.ParseUint(t.text[2:], 2, 8)
		if err != nil {
			x.i--
			x.failWant("byte")
		}
		return &ast.Const{Value: byte(b), Range: x.r(start)}
	case tokString:
		x.next()
		s, err := strconv.Unquote(t.text)
		if err != nil {
			x.i--
			x.failWant("string")
		}
		return &ast.Const{Value: s, Range: x.r(start)}
	}
	switch {
	case x.accept("true"):
		return &ast.Const{Value: true, Range: x.r(start)}
	case x.accept("false"):
		return &ast.Const{Value: false, Range: x.r(start)}
	case x.accept("null"):
		return &ast.Const{Value: nil, Range: x.r(start)}
	case x.accept("("):
		e := x.parseExpr()
		x.expect(")")
		return e
	case x.accept("{"):
		return x.parseRecordInit(start)
	case x.accept("["):
		return x.parseArrayInit(start)
	case x.is("all"), x.is("some"):
		return x.parseQuantifier()
	case x.isIdent():
		name := x.next().text
		if x.accept("(") {
			inv := &ast.Invoke{Name: name}
			if !x.accept(")") {
				for {
					inv.Args = append(inv.Args, x.parseExpr())
					if !x.accept(",") {
						break
					}
				}
				x.expect(")")
			}
			inv.Range = x.r(start)
			return inv
		}
		if v := x.lookup(name); v != nil {
			return &ast.VarAccess{Var: v, Range: x.r(start)}
		}
		return &ast.StaticVarAccess{Name: name, Range: x.r(start)}
	default:
		x.failWant("expression")
		panic("impossible")
	}
}

// parseRecordInit parses a record constructor after its opening brace.
func (x *parser) parseRecordInit(start int) ast.Expr {
	rec := &ast.RecordInit{}
	for {
		name := x.ident().text
		x.expect(":")
		rec.Fields = append(rec.Fields, ast.FieldInit{Name: name, Value: x.parseExpr()})
		if !x.accept(",") {
			break
		}
	}
	x.expect("}")
	rec.Range = x.r(start)
	return rec
}

// parseArrayInit parses an array constructor after its opening bracket:
// either a list of elements or [value; length].
func (x *parser) parseArrayInit(start int) ast.Expr {
	if x.accept("]") {
		return &ast.ArrayInit{Range: x.r(start)}
	}
	first := x.parseExpr()
	if x.accept(";") {
		n := x.parseExpr()
		x.expect("]")
		return &ast.ArrayGen{Value: first, Length: n, Range: x.r(start)}
	}
	arr := &ast.ArrayInit{Elems: []ast.Expr{first}}
	for x.accept(",") {
		arr.Elems = append(arr.Elems, x.parseExpr())
	}
	x.expect("]")
	arr.Range = x.r(start)
	return arr
}

// 	all { i in lo..hi | cond }
// 	some { i in lo..hi | cond }
func (x *parser) parseQuantifier() ast.Expr {
	start := x.i
	q := &ast.Quantifier{Universal: x.next().text == "all"}
	x.expect("{")
	name := x.ident()
	x.expect("in")
	q.Low = x.parseAdd()
	x.expect("..")
	q.High = x.parseAdd()
	x.expect("|")
	x.pushScope()
	q.Var = x.alloc.New(name.text, types.Int, x.tokRange(name))
	x.declare(q.Var)
	q.Body = x.parseExpr()
	x.popScope()
	x.expect("}")
	q.Range = x.r(start)
	return q
}
