// Copyright © 2020 The Pea Authors under an MIT-style license.

package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eaburns/flow/loc"
)

// A Kind classifies an Error.
type Kind int

const (
	// TypeError is a fault in the checked program.
	TypeError Kind = iota
	// InternalFailure is a fault of the checker or of its input tree,
	// such as an unexpected node kind.
	InternalFailure
)

func (k Kind) String() string {
	switch k {
	case TypeError:
		return "type error"
	case InternalFailure:
		return "internal failure"
	default:
		panic("impossible")
	}
}

// An Error is an error reported by the checker.
type Error struct {
	Kind  Kind
	Loc   loc.Loc
	Msg   string
	Notes []string
	cause error
}

func note(err *Error, f string, vs ...interface{}) {
	err.Notes = append(err.Notes, fmt.Sprintf(f, vs...))
}

func (err *Error) Error() string {
	var s strings.Builder
	buildError(&s, "", err)
	return s.String()
}

// Unwrap returns the lookup or subtype error that caused this one, if any.
func (err *Error) Unwrap() error { return err.cause }

func buildError(s *strings.Builder, indent string, err *Error) {
	s.WriteString(indent)
	if !err.Loc.IsZero() {
		s.WriteString(err.Loc.String())
		s.WriteString(": ")
	}
	if err.Kind == InternalFailure {
		s.WriteString("internal failure: ")
	}
	s.WriteString(err.Msg)
	indent2 := indent + "	"
	for _, n := range err.Notes {
		s.WriteRune('\n')
		s.WriteString(indent2)
		s.WriteString(n)
	}
}

// sortErrors sorts errors by location and removes duplicates
// with the same location and message.
func sortErrors(errs []*Error) []*Error {
	if len(errs) == 0 {
		return errs
	}
	sort.SliceStable(errs, func(i, j int) bool {
		switch li, lj := errs[i].Loc, errs[j].Loc; {
		case li.Path == lj.Path && li.Line[0] == lj.Line[0]:
			return li.Col[0] < lj.Col[0]
		case li.Path == lj.Path:
			return li.Line[0] < lj.Line[0]
		default:
			return li.Path < lj.Path
		}
	})
	dedup := []*Error{errs[0]}
	for _, e := range errs[1:] {
		d := dedup[len(dedup)-1]
		if e.Loc != d.Loc || e.Msg != d.Msg {
			dedup = append(dedup, e)
		}
	}
	return dedup
}

func convertErrors(errs []*Error) []error {
	var out []error
	for _, e := range sortErrors(errs) {
		out = append(out, e)
	}
	return out
}
