// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package ast is the typed abstract syntax tree read by the checker.
//
// The checker writes the resolved type of every expression
// into the expression's type slot,
// and the selected signature of every invocation into its signature slot.
package ast

import (
	"math/big"

	"github.com/eaburns/flow/loc"
	"github.com/eaburns/flow/types"
)

// A Node is a node of the AST with location information.
type Node interface {
	GetRange() loc.Range
}

// A File is a parsed source file.
type File struct {
	loc.Range
	Path  string
	Decls []Decl
	// Locs maps the ranges of the file's nodes to locations.
	// It may be nil.
	Locs *loc.Files
}

// A Decl is one of:
// 	*TypeDecl
// 	*ConstDecl
// 	*CallableDecl
type Decl interface {
	Node
	DeclName() string
}

// A TypeDecl declares a named type.
type TypeDecl struct {
	loc.Range
	Name string
	Type types.Type
	// Var is the variable bound by the invariant clauses, or nil.
	Var       *Variable
	Invariant []Expr
}

// A ConstDecl declares a named constant.
type ConstDecl struct {
	loc.Range
	Name  string
	Type  types.Type
	Value Expr
}

// A CallableDecl declares a function, method, or property.
type CallableDecl struct {
	loc.Range
	Kind      types.CallableKind
	Name      string
	Template  []string
	Lifetimes []string
	Params    []*Variable
	Returns   []*Variable
	Requires  []Expr
	Ensures   []Expr
	Body      *Block
}

func (d *TypeDecl) DeclName() string     { return d.Name }
func (d *ConstDecl) DeclName() string    { return d.Name }
func (d *CallableDecl) DeclName() string { return d.Name }

// Signature returns the declared callable type.
func (d *CallableDecl) Signature() *types.Callable {
	sig := &types.Callable{Kind: d.Kind}
	for _, p := range d.Params {
		sig.Params = append(sig.Params, p.Type)
	}
	for _, r := range d.Returns {
		sig.Returns = append(sig.Returns, r.Type)
	}
	return sig
}

// A Variable is a declared variable: a parameter, return, local, or bound variable.
// Variables are identified by ID; names may be shadowed.
type Variable struct {
	loc.Range
	ID   int
	Name string
	Type types.Type
}

// An Allocator assigns variable IDs.
// The zero value is ready to use.
// IDs are unique only among the variables of a single Allocator.
type Allocator struct {
	next int
}

// New returns a new Variable with the next ID.
func (a *Allocator) New(name string, typ types.Type, r loc.Range) *Variable {
	v := &Variable{Range: r, ID: a.next, Name: name, Type: typ}
	a.next++
	return v
}

// A Stmt is a statement.
type Stmt interface {
	Node
	isStmt()
}

// A Block is a sequence of statements.
type Block struct {
	loc.Range
	Stmts []Stmt
}

// A VarDecl declares a local variable with an optional initialiser.
type VarDecl struct {
	loc.Range
	Var  *Variable
	Init Expr
}

// An Assign assigns each RHS value to the corresponding LHS.
// Each LHS is one of *VarAccess, *FieldAccess, *ArrayAccess, or *Deref.
type Assign struct {
	loc.Range
	LHS []Expr
	RHS []Expr
}

type Return struct {
	loc.Range
	Values []Expr
}

type Break struct{ loc.Range }

type Continue struct{ loc.Range }

type Fail struct{ loc.Range }

type Skip struct{ loc.Range }

// An If is a conditional with an optional Else.
type If struct {
	loc.Range
	Cond Expr
	Then *Block
	Else *Block
}

type While struct {
	loc.Range
	Cond       Expr
	Invariants []Expr
	Body       *Block
}

type DoWhile struct {
	loc.Range
	Body       *Block
	Cond       Expr
	Invariants []Expr
}

type Switch struct {
	loc.Range
	Value Expr
	Cases []*Case
}

// A Case is a switch case.
// A Case with no Values is the default case.
type Case struct {
	loc.Range
	Values []Expr
	Body   *Block
}

type NamedBlock struct {
	loc.Range
	Name string
	Body *Block
}

type Assert struct {
	loc.Range
	Cond Expr
}

type Assume struct {
	loc.Range
	Cond Expr
}

type Debug struct {
	loc.Range
	Value Expr
}

// An ExprStmt is an expression evaluated for its effects, typically an invocation.
type ExprStmt struct {
	loc.Range
	Expr Expr
}

func (*Block) isStmt()      {}
func (*VarDecl) isStmt()    {}
func (*Assign) isStmt()     {}
func (*Return) isStmt()     {}
func (*Break) isStmt()      {}
func (*Continue) isStmt()   {}
func (*Fail) isStmt()       {}
func (*Skip) isStmt()       {}
func (*If) isStmt()         {}
func (*While) isStmt()      {}
func (*DoWhile) isStmt()    {}
func (*Switch) isStmt()     {}
func (*NamedBlock) isStmt() {}
func (*Assert) isStmt()     {}
func (*Assume) isStmt()     {}
func (*Debug) isStmt()      {}
func (*ExprStmt) isStmt()   {}

// An Expr is an expression.
type Expr interface {
	Node
	// Type returns the resolved type, or nil if the expression is not yet checked.
	Type() types.Type
	// SetType sets the resolved type.
	SetType(types.Type)
	isExpr()
}

// Typed is the resolved-type slot embedded in every expression.
type Typed struct {
	T types.Type
}

func (t *Typed) Type() types.Type       { return t.T }
func (t *Typed) SetType(typ types.Type) { t.T = typ }

// A Const is a literal value.
type Const struct {
	loc.Range
	Typed
	// Value is one of:
	// 	nil for the null constant
	// 	bool
	// 	*big.Int
	// 	byte
	// 	string for a UTF-8 string literal
	Value interface{}
}

// NewInt returns an integer constant.
func NewInt(i int64, r loc.Range) *Const {
	return &Const{Range: r, Value: big.NewInt(i)}
}

type VarAccess struct {
	loc.Range
	Typed
	Var *Variable
}

// A StaticVarAccess reads a named constant.
type StaticVarAccess struct {
	loc.Range
	Typed
	Name string
}

type Cast struct {
	loc.Range
	Typed
	To   types.Type
	Expr Expr
}

// An Invoke calls a function, method, or property.
type Invoke struct {
	loc.Range
	Typed
	Name string
	Args []Expr
	// Signature is the signature of the selected declaration
	// with its template parameters instantiated.
	// It is overwritten each time the invocation is checked.
	Signature *types.Callable
	// Decl is the defining node of the selected declaration, if any.
	Decl interface{}
}

type Not struct {
	loc.Range
	Typed
	Expr Expr
}

type And struct {
	loc.Range
	Typed
	Exprs []Expr
}

type Or struct {
	loc.Range
	Typed
	Exprs []Expr
}

type Implies struct {
	loc.Range
	Typed
	Left, Right Expr
}

type Iff struct {
	loc.Range
	Typed
	Left, Right Expr
}

// An Is tests the runtime type of an expression.
type Is struct {
	loc.Range
	Typed
	Expr Expr
	Test types.Type
}

// A Quantifier is a universal or existential quantification
// of Body over the integers from Low up to but not including High.
type Quantifier struct {
	loc.Range
	Typed
	Universal bool
	Var       *Variable
	Low, High Expr
	Body      Expr
}

// An Op is a binary or unary operator.
type Op int

const (
	Eq Op = iota
	Neq
	Lt
	LtEq
	Gt
	GtEq
	Add
	Sub
	Mul
	Div
	Rem
	Neg
	BitAnd
	BitOr
	BitXor
	BitNot
	Shl
	Shr
)

// A Binary is a binary operation.
type Binary struct {
	loc.Range
	Typed
	Op          Op
	Left, Right Expr
}

// A Unary is a unary operation: Neg or BitNot.
type Unary struct {
	loc.Range
	Typed
	Op   Op
	Expr Expr
}

type FieldInit struct {
	Name  string
	Value Expr
}

type RecordInit struct {
	loc.Range
	Typed
	Fields []FieldInit
}

type FieldAccess struct {
	loc.Range
	Typed
	Expr  Expr
	Field string
}

// A RecordUpdate is a copy of Expr with Field replaced by Value.
type RecordUpdate struct {
	loc.Range
	Typed
	Expr  Expr
	Field string
	Value Expr
}

type ArrayLength struct {
	loc.Range
	Typed
	Expr Expr
}

type ArrayInit struct {
	loc.Range
	Typed
	Elems []Expr
}

// An ArrayGen is an array of Length copies of Value.
type ArrayGen struct {
	loc.Range
	Typed
	Value, Length Expr
}

type ArrayAccess struct {
	loc.Range
	Typed
	Expr, Index Expr
}

// An ArrayUpdate is a copy of Expr with the element at Index replaced by Value.
type ArrayUpdate struct {
	loc.Range
	Typed
	Expr, Index, Value Expr
}

type Deref struct {
	loc.Range
	Typed
	Expr Expr
}

// A New allocates a cell.
// Lifetime is "" for the default lifetime of the enclosing callable.
type New struct {
	loc.Range
	Typed
	Expr     Expr
	Lifetime string
}

func (*Const) isExpr()           {}
func (*VarAccess) isExpr()       {}
func (*StaticVarAccess) isExpr() {}
func (*Cast) isExpr()            {}
func (*Invoke) isExpr()          {}
func (*Not) isExpr()             {}
func (*And) isExpr()             {}
func (*Or) isExpr()              {}
func (*Implies) isExpr()         {}
func (*Iff) isExpr()             {}
func (*Is) isExpr()              {}
func (*Quantifier) isExpr()      {}
func (*Binary) isExpr()          {}
func (*Unary) isExpr()           {}
func (*RecordInit) isExpr()      {}
func (*FieldAccess) isExpr()     {}
func (*RecordUpdate) isExpr()    {}
func (*ArrayLength) isExpr()     {}
func (*ArrayInit) isExpr()       {}
func (*ArrayGen) isExpr()        {}
func (*ArrayAccess) isExpr()     {}
func (*ArrayUpdate) isExpr()     {}
func (*Deref) isExpr()           {}
func (*New) isExpr()             {}
