// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package decl defines the declarations that the checker looks up by name.
package decl

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/eaburns/flow/types"
)

// A Kind is a kind of declaration.
type Kind int

const (
	TypeKind Kind = iota
	ConstantKind
	CallableKind
)

func (k Kind) String() string {
	switch k {
	case TypeKind:
		return "type"
	case ConstantKind:
		return "constant"
	case CallableKind:
		return "function"
	default:
		panic("impossible")
	}
}

// A Declaration is one of:
// 	*Type
// 	*Constant
// 	*Callable
type Declaration interface {
	DeclName() string
	DeclKind() Kind
}

// A Type is a type declaration.
type Type struct {
	Name string
	Type types.Type
	// Invariant is whether the declaration constrains its values
	// beyond Type with a where clause.
	Invariant bool
}

// A Constant is a named constant.
type Constant struct {
	Name string
	Type types.Type
	// Value is the constant's initialiser, if known.
	Value interface{}
}

// A Callable is a function, method, or property declaration.
type Callable struct {
	Name string
	Kind types.CallableKind
	// Template are the names of the template parameters.
	// They appear in Params and Returns as *types.Var.
	Template []string
	// Lifetimes are the names of the lifetime parameters of a method.
	Lifetimes []string
	Params    []types.Type
	Returns   []types.Type
	// Node is the defining AST node, if any.
	Node interface{}
}

func (d *Type) DeclName() string     { return d.Name }
func (d *Constant) DeclName() string { return d.Name }
func (d *Callable) DeclName() string { return d.Name }

func (*Type) DeclKind() Kind     { return TypeKind }
func (*Constant) DeclKind() Kind { return ConstantKind }
func (*Callable) DeclKind() Kind { return CallableKind }

// Signature returns the callable type of the declaration.
func (d *Callable) Signature() *types.Callable {
	return &types.Callable{Kind: d.Kind, Params: d.Params, Returns: d.Returns}
}

func (d *Callable) String() string {
	s := d.Kind.String() + " " + d.Name
	if len(d.Template) > 0 {
		s += "<" + strings.Join(d.Template, ", ") + ">"
	}
	sig := d.Signature().String()
	return s + sig[len(d.Kind.String()):]
}

// A Resolver looks up declarations by name.
// Implementations must be safe for concurrent use.
type Resolver interface {
	// ResolveExactly returns the single declaration of the name and kind.
	// It returns a *ResolutionError if there are none or more than one.
	ResolveExactly(name string, kind Kind) (Declaration, error)
	// ResolveAll returns every declaration of the name and kind.
	// It returns a *ResolutionError if there are none.
	ResolveAll(name string, kind Kind) ([]Declaration, error)
}

// A ResolutionError is a failed lookup.
type ResolutionError struct {
	Name string
	Kind Kind
	// Count is the number of matching declarations: 0, or more than 1.
	Count int
}

func (err *ResolutionError) Error() string {
	if err.Count == 0 {
		return fmt.Sprintf("unable to resolve %s %s", err.Kind, err.Name)
	}
	return fmt.Sprintf("ambiguous %s %s: %d declarations", err.Kind, err.Name, err.Count)
}

// A Table is an in-memory Resolver.
// It must not be modified once it is in use by a checker.
type Table struct {
	mu    sync.RWMutex
	decls map[key][]Declaration
}

type key struct {
	name string
	kind Kind
}

// NewTable returns a Table containing ds.
func NewTable(ds ...Declaration) *Table {
	tab := &Table{decls: make(map[key][]Declaration)}
	for _, d := range ds {
		tab.Add(d)
	}
	return tab
}

// Add adds a declaration.
func (tab *Table) Add(d Declaration) {
	tab.mu.Lock()
	defer tab.mu.Unlock()
	if tab.decls == nil {
		tab.decls = make(map[key][]Declaration)
	}
	k := key{name: d.DeclName(), kind: d.DeclKind()}
	tab.decls[k] = append(tab.decls[k], d)
}

// Names returns the declared names of a kind in sorted order.
func (tab *Table) Names(kind Kind) []string {
	tab.mu.RLock()
	defer tab.mu.RUnlock()
	var names []string
	for k := range tab.decls {
		if k.kind == kind {
			names = append(names, k.name)
		}
	}
	sort.Strings(names)
	return names
}

func (tab *Table) ResolveExactly(name string, kind Kind) (Declaration, error) {
	ds, err := tab.ResolveAll(name, kind)
	if err != nil {
		return nil, err
	}
	if len(ds) > 1 {
		return nil, &ResolutionError{Name: name, Kind: kind, Count: len(ds)}
	}
	return ds[0], nil
}

func (tab *Table) ResolveAll(name string, kind Kind) ([]Declaration, error) {
	tab.mu.RLock()
	defer tab.mu.RUnlock()
	ds := tab.decls[key{name: name, kind: kind}]
	if len(ds) == 0 {
		return nil, &ResolutionError{Name: name, Kind: kind}
	}
	return append([]Declaration{}, ds...), nil
}
