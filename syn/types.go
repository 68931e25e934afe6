// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"github.com/eaburns/flow/types"
)

// parseType parses a type.
// From loosest to tightest binding:
// 	T|U
// 	T&U
// 	!T, &T, &l:T
// 	T[]
func (x *parser) parseType() types.Type {
	defer x.enter("Type")()
	ts := []types.Type{x.parseInterType()}
	for x.accept("|") {
		ts = append(ts, x.parseInterType())
	}
	if len(ts) == 1 {
		return ts[0]
	}
	return &types.Union{Elems: ts}
}

func (x *parser) parseInterType() types.Type {
	ts := []types.Type{x.parsePrefixType()}
	for x.accept("&") {
		ts = append(ts, x.parsePrefixType())
	}
	if len(ts) == 1 {
		return ts[0]
	}
	return &types.Intersection{Elems: ts}
}

func (x *parser) parsePrefixType() types.Type {
	switch {
	case x.accept("!"):
		return &types.Negation{Elem: x.parsePrefixType()}
	case x.accept("&"):
		lifetime := types.Static
		if x.isIdent() && x.peek(1).text == ":" {
			lifetime = x.next().text
			x.next()
		}
		return &types.Reference{Elem: x.parsePrefixType(), Lifetime: lifetime}
	default:
		return x.parsePostfixType()
	}
}

func (x *parser) parsePostfixType() types.Type {
	t := x.parsePrimaryType()
	for x.is("[") && x.peek(1).text == "]" {
		x.next()
		x.next()
		t = &types.Array{Elem: t}
	}
	return t
}

var primitives = map[string]types.Primitive{
	"void": types.Void,
	"any":  types.Any,
	"null": types.Null,
	"bool": types.Bool,
	"int":  types.Int,
	"byte": types.Byte,
}

func (x *parser) parsePrimaryType() types.Type {
	t := x.tok()
	if p, ok := primitives[t.text]; ok && t.kind == tokIdent {
		x.next()
		return p
	}
	switch {
	case x.accept("("):
		typ := x.parseType()
		x.expect(")")
		return typ
	case x.accept("{"):
		return x.parseRecordType()
	case x.is("function"), x.is("method"), x.is("property"):
		return x.parseCallableType()
	case x.isIdent():
		name := x.next().text
		if x.templates[name] {
			return &types.Var{Name: name}
		}
		return &types.Nominal{Name: name}
	default:
		x.want("type")
		x.failWant("identifier")
		panic("impossible")
	}
}

// parseRecordType parses a record type after its opening brace.
func (x *parser) parseRecordType() types.Type {
	rec := &types.Record{}
	if x.accept("...") {
		rec.Open = true
		x.expect("}")
		return rec
	}
	for {
		t := x.parseType()
		name := x.ident().text
		for _, f := range rec.Fields {
			if f.Name == name {
				x.i--
				x.failAt("unique field name")
			}
		}
		rec.Fields = append(rec.Fields, types.Field{Name: name, Type: t})
		if !x.accept(",") {
			break
		}
		if x.accept("...") {
			rec.Open = true
			break
		}
	}
	x.expect("}")
	return rec
}

func (x *parser) parseCallableType() types.Type {
	c := &types.Callable{}
	switch x.next().text {
	case "function":
		c.Kind = types.Function
	case "method":
		c.Kind = types.Method
	case "property":
		c.Kind = types.Property
	}
	c.Params = x.parseTypeList()
	if x.accept("->") {
		if x.is("(") {
			c.Returns = x.parseTypeList()
		} else {
			c.Returns = []types.Type{x.parseType()}
		}
	}
	return c
}

func (x *parser) parseTypeList() []types.Type {
	x.expect("(")
	var ts []types.Type
	if x.accept(")") {
		return nil
	}
	for {
		ts = append(ts, x.parseType())
		if !x.accept(",") {
			break
		}
	}
	x.expect(")")
	return ts
}
