// Copyright © 2020 The Pea Authors under an MIT-style license.

package types

import (
	"sort"
	"strconv"
	"strings"
)

// Binding strength of each form when printed.
const (
	unionLevel = iota + 1
	intersectionLevel
	prefixLevel
	postfixLevel
	atomLevel
)

func level(t Type) int {
	switch t.(type) {
	case *Union:
		return unionLevel
	case *Intersection:
		return intersectionLevel
	case *Negation, *Reference, *Callable:
		return prefixLevel
	case *Array:
		return postfixLevel
	default:
		return atomLevel
	}
}

func (t Primitive) String() string {
	switch t {
	case Void:
		return "void"
	case Any:
		return "any"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Byte:
		return "byte"
	default:
		panic("impossible")
	}
}

func (t *Array) String() string        { return typeString(t) }
func (t *Record) String() string       { return typeString(t) }
func (t *Reference) String() string    { return typeString(t) }
func (t *Negation) String() string     { return typeString(t) }
func (t *Union) String() string        { return typeString(t) }
func (t *Intersection) String() string { return typeString(t) }
func (t *Nominal) String() string      { return t.Name }
func (t *Callable) String() string     { return typeString(t) }
func (t *Existential) String() string  { return "?" + strconv.Itoa(t.ID) }
func (t *Var) String() string          { return t.Name }

func typeString(t Type) string {
	var s strings.Builder
	buildTypeString(t, 0, &s)
	return s.String()
}

func buildTypeString(t Type, min int, s *strings.Builder) {
	if level(t) < min {
		s.WriteRune('(')
		defer s.WriteRune(')')
	}
	switch t := t.(type) {
	case *Array:
		buildTypeString(t.Elem, postfixLevel, s)
		s.WriteString("[]")
	case *Record:
		s.WriteRune('{')
		for i, f := range t.Fields {
			if i > 0 {
				s.WriteString(", ")
			}
			buildTypeString(f.Type, 0, s)
			s.WriteRune(' ')
			s.WriteString(f.Name)
		}
		if t.Open {
			if len(t.Fields) > 0 {
				s.WriteString(", ")
			}
			s.WriteString("...")
		}
		s.WriteRune('}')
	case *Reference:
		s.WriteRune('&')
		if t.Lifetime != Static && t.Lifetime != "" {
			s.WriteString(t.Lifetime)
			s.WriteRune(':')
		}
		buildTypeString(t.Elem, prefixLevel, s)
	case *Negation:
		s.WriteRune('!')
		buildTypeString(t.Elem, prefixLevel, s)
	case *Union:
		buildTypeListString(t.Elems, "|", intersectionLevel, s)
	case *Intersection:
		buildTypeListString(t.Elems, "&", prefixLevel, s)
	case *Callable:
		s.WriteString(t.Kind.String())
		s.WriteRune('(')
		buildTypeListString(t.Params, ", ", 0, s)
		s.WriteRune(')')
		if len(t.Returns) > 0 {
			s.WriteString("->(")
			buildTypeListString(t.Returns, ", ", 0, s)
			s.WriteRune(')')
		}
	default:
		s.WriteString(t.String())
	}
}

func buildTypeListString(ts []Type, sep string, min int, s *strings.Builder) {
	for i, t := range ts {
		if i > 0 {
			s.WriteString(sep)
		}
		buildTypeString(t, min, s)
	}
}

// Key returns a canonical string for t.
// Types that are Equal have the same Key.
func Key(t Type) string {
	var s strings.Builder
	buildKey(t, &s)
	return s.String()
}

func buildKey(t Type, s *strings.Builder) {
	switch t := t.(type) {
	case Primitive:
		s.WriteString(t.String())
	case *Array:
		s.WriteString("[")
		buildKey(t.Elem, s)
		s.WriteString("]")
	case *Record:
		fields := append([]Field{}, t.Fields...)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		s.WriteString("{")
		for _, f := range fields {
			s.WriteString(f.Name)
			s.WriteString(":")
			buildKey(f.Type, s)
			s.WriteString(";")
		}
		if t.Open {
			s.WriteString("...")
		}
		s.WriteString("}")
	case *Reference:
		s.WriteString("&")
		s.WriteString(t.Lifetime)
		s.WriteString(":")
		buildKey(t.Elem, s)
	case *Negation:
		s.WriteString("!")
		buildKey(t.Elem, s)
	case *Union:
		buildKeySet("|", t.Elems, s)
	case *Intersection:
		buildKeySet("&", t.Elems, s)
	case *Nominal:
		s.WriteString("N:")
		s.WriteString(t.Name)
	case *Callable:
		s.WriteString(t.Kind.String())
		s.WriteString("(")
		for _, p := range t.Params {
			buildKey(p, s)
			s.WriteString(",")
		}
		s.WriteString(")(")
		for _, r := range t.Returns {
			buildKey(r, s)
			s.WriteString(",")
		}
		s.WriteString(")")
	case *Existential:
		s.WriteString("?")
		s.WriteString(strconv.Itoa(t.ID))
	case *Var:
		s.WriteString("V:")
		s.WriteString(t.Name)
	default:
		panic("impossible")
	}
}

func buildKeySet(op string, ts []Type, s *strings.Builder) {
	keys := make([]string, len(ts))
	for i, t := range ts {
		keys[i] = Key(t)
	}
	sort.Strings(keys)
	s.WriteString(op)
	s.WriteString("(")
	s.WriteString(strings.Join(keys, ","))
	s.WriteString(")")
}
