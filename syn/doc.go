// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package syn reads a small Whiley-like notation into an ast.File.
//
// The notation has type, constant, and callable declarations:
//
//	type nat is (int x) where x >= 0
//	const int MAX = 10;
//	function f(int|null x) -> (int r) {
//		if x is null {
//			return 0;
//		}
//		return x + 1;
//	}
//
// The grammar, in peggy rule notation, with the lowest precedence first.
// Each rule is read by the parse method of the same name.
//
//	File <- Decl* EOF
//	Decl <- TypeDecl / ConstDecl / CallableDecl
//	TypeDecl <- "type" Ident "is" ("(" Type Ident ")" ("where" Expr)* / Type)
//	ConstDecl <- "const" Type Ident "=" Expr ";"
//	CallableDecl <- ("function" / "method" / "property") Ident Template?
//		Vars ("->" (Vars !("[" / "|" / "&") / Type))?
//		("requires" Expr / "ensures" Expr)* (";" / Block)
//	Template <- "<" (("&" Ident) / Ident) ("," (("&" Ident) / Ident))* ">"
//	Vars <- "(" (Type Ident? ("," Type Ident?)*)? ")"
//
//	Type <- InterType ("|" InterType)*
//	InterType <- PrefixType ("&" PrefixType)*
//	PrefixType <- "!" PrefixType / "&" (Ident ":")? PrefixType / PostfixType
//	PostfixType <- PrimaryType ("[" "]")*
//	PrimaryType <- "void" / "any" / "null" / "bool" / "int" / "byte"
//		/ "(" Type ")" / RecordType / CallableType / Ident
//	RecordType <- "{" ("..." / Type Ident ("," Type Ident)* ("," "...")?) "}"
//	CallableType <- ("function" / "method" / "property") TypeList ("->" (TypeList / Type))?
//	TypeList <- "(" (Type ("," Type)*)? ")"
//
//	Block <- "{" Stmt* "}"
//	Stmt <- Block / If
//		/ "while" Expr ("where" Expr)* Block
//		/ "do" Block "while" Expr ("where" Expr)* ";"
//		/ "switch" Expr "{" (("case" Exprs / "default") ":" Stmt*)* "}"
//		/ "return" Exprs? ";" / "break" ";" / "continue" ";" / "fail" ";" / "skip" ";"
//		/ "assert" Expr ";" / "assume" Expr ";" / "debug" Expr ";"
//		/ VarDecl / Exprs ("=" Exprs)? ";"
//	If <- "if" Expr Block ("else" (If / Block))?
//	VarDecl <- Type Ident ("=" Expr)? ";"
//
//	Expr <- Implies ("<==>" Implies)*
//	Implies <- Or ("==>" Implies)?
//	Or <- And ("||" And)*
//	And <- Cmp ("&&" Cmp)*
//	Cmp <- BitOr ("is" Type / CmpOp BitOr)?
//	BitOr <- BitXor ("|" BitXor)*
//	BitXor <- BitAnd ("^" BitAnd)*
//	BitAnd <- Shift ("&" Shift)*
//	Shift <- Add (("<<" / ">>") Add)*
//	Add <- Mul (("+" / "-") Mul)*
//	Mul <- Unary (("*" / "/" / "%") Unary)*
//	Unary <- ("!" / "-" / "~" / "*") Unary / "|" Expr "|"
//		/ "new" Unary / "(" Type ")" Unary / Postfix
//	Postfix <- Primary ("." Ident / "[" Expr "]" / "[" Expr ":=" Expr "]"
//		/ "{" Ident ":=" Expr "}")*
//	Primary <- Int / Byte / String / "true" / "false" / "null" / "(" Expr ")"
//		/ "{" Ident ":" Expr ("," Ident ":" Expr)* "}"
//		/ "[" (Expr ";" Expr / Exprs)? "]"
//		/ ("all" / "some") "{" Ident "in" Expr ".." Expr "|" Expr "}"
//		/ Ident ("(" Exprs? ")")?
//
// A parenthesized type followed by an operand is a cast
// unless it names a variable in scope.
// An identifier names a template parameter within its callable,
// and a nominal type elsewhere.
package syn
