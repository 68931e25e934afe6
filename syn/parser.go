// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/eaburns/flow/ast"
	"github.com/eaburns/flow/loc"
	"github.com/eaburns/peggy/peg"
)

// A Parser parses source code files.
type Parser struct {
	files []*ast.File
	locs  *loc.Files
	alloc ast.Allocator
}

// NewParser returns a new parser.
func NewParser() *Parser {
	return &Parser{locs: new(loc.Files)}
}

// Files returns the parsed files.
func (p *Parser) Files() []*ast.File { return p.files }

// Locs returns the locations of every parsed file.
func (p *Parser) Locs() *loc.Files { return p.locs }

// Parse parses a *File from an io.Reader.
// The first argument is the file path or "" if unspecified.
func (p *Parser) Parse(path string, r io.Reader) (*ast.File, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(data)
	toks, bad := lex(text)
	if bad >= 0 {
		return nil, parseError{path: path, text: text, fail: &peg.Fail{
			Name: "File",
			Kids: []*peg.Fail{{Pos: bad, Want: "token"}},
		}}
	}
	base := p.locs.Len()
	x := &parser{
		text:  text,
		toks:  toks,
		base:  base,
		alloc: &p.alloc,
		fail:  -1,
	}
	file, ok := x.parseFile()
	if !ok {
		return nil, parseError{path: path, text: text, fail: x.failTree()}
	}
	p.locs.Add(path, text)
	file.Path = path
	file.Locs = p.locs
	p.files = append(p.files, file)
	return file, nil
}

// ParseFile parses the source in the file specified by a path.
func (p *Parser) ParseFile(path string) (*ast.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(path, f)
}

type parseError struct {
	path string
	text string
	fail *peg.Fail
}

func (err parseError) Tree() *peg.Fail { return err.fail }

func (err parseError) Error() string {
	e := peg.SimpleError(err.text, err.fail)
	e.FilePath = err.path
	return e.Error()
}

// bailout is panicked to abandon the current alternative.
type bailout struct{}

type parser struct {
	text   string
	toks   []token
	i      int
	base   int
	alloc  *ast.Allocator
	scopes []map[string]*ast.Variable
	// templates are the template type parameters of the current callable.
	templates map[string]bool

	// fail is the offset of the furthest failed expectation,
	// rule is the rule being parsed there,
	// and wants are the expectations that failed there.
	fail  int
	rule  string
	wants []string
	rules []string
}

func (x *parser) failTree() *peg.Fail {
	kid := &peg.Fail{Name: x.rule, Pos: x.fail}
	for _, w := range x.wants {
		kid.Kids = append(kid.Kids, &peg.Fail{Pos: x.fail, Want: w})
	}
	return &peg.Fail{Name: "File", Pos: 0, Kids: []*peg.Fail{kid}}
}

// enter names the rule for failures until the returned func is called.
func (x *parser) enter(rule string) func() {
	x.rules = append(x.rules, rule)
	return func() { x.rules = x.rules[:len(x.rules)-1] }
}

func (x *parser) tok() token { return x.toks[x.i] }

func (x *parser) peek(n int) token {
	if x.i+n >= len(x.toks) {
		return x.toks[len(x.toks)-1]
	}
	return x.toks[x.i+n]
}

func (x *parser) next() token {
	t := x.toks[x.i]
	if t.kind != tokEOF {
		x.i++
	}
	return t
}

// r returns the node range from the start of token i to the end of the previous token.
func (x *parser) r(i int) loc.Range {
	end := x.toks[i].end
	if x.i > i {
		end = x.toks[x.i-1].end
	}
	return loc.Range{x.base + x.toks[i].start, x.base + end}
}

func (x *parser) tokRange(t token) loc.Range {
	return loc.Range{x.base + t.start, x.base + t.end}
}

// failWant records a failed expectation at the current token and bails out.
func (x *parser) failWant(want string) {
	x.want(want)
	panic(bailout{})
}

// failAt fails at the current token, discarding any further failures.
func (x *parser) failAt(want string) {
	x.fail = -1
	x.failWant(want)
}

func (x *parser) want(want string) {
	pos := x.tok().start
	switch {
	case pos > x.fail:
		x.fail = pos
		x.wants = []string{want}
		x.rule = ""
		if len(x.rules) > 0 {
			x.rule = x.rules[len(x.rules)-1]
		}
	case pos == x.fail:
		for _, w := range x.wants {
			if w == want {
				return
			}
		}
		x.wants = append(x.wants, want)
	}
}

// is returns whether the current token is the punctuation or keyword s.
func (x *parser) is(s string) bool {
	t := x.tok()
	return (t.kind == tokPunct || t.kind == tokIdent) && t.text == s
}

// accept consumes the token s if it is next, and records it as wanted otherwise.
func (x *parser) accept(s string) bool {
	if x.is(s) {
		x.next()
		return true
	}
	x.want(fmt.Sprintf("%q", s))
	return false
}

func (x *parser) expect(s string) token {
	if !x.is(s) {
		x.failWant(fmt.Sprintf("%q", s))
	}
	return x.next()
}

// ident consumes a non-keyword identifier.
func (x *parser) ident() token {
	if t := x.tok(); t.kind != tokIdent || keywords[t.text] {
		x.failWant("identifier")
	}
	return x.next()
}

func (x *parser) isIdent() bool {
	t := x.tok()
	return t.kind == tokIdent && !keywords[t.text]
}

// try runs f, restoring the token position and returning false if it bails out.
func (x *parser) try(f func()) (ok bool) {
	i, nrules := x.i, len(x.rules)
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			x.i = i
			x.rules = x.rules[:nrules]
			ok = false
		}
	}()
	f()
	return true
}

func (x *parser) pushScope() { x.scopes = append(x.scopes, make(map[string]*ast.Variable)) }

func (x *parser) popScope() { x.scopes = x.scopes[:len(x.scopes)-1] }

func (x *parser) lookup(name string) *ast.Variable {
	for i := len(x.scopes) - 1; i >= 0; i-- {
		if v, ok := x.scopes[i][name]; ok {
			return v
		}
	}
	return nil
}

func (x *parser) declare(v *ast.Variable) {
	if v.Name != "" {
		x.scopes[len(x.scopes)-1][v.Name] = v
	}
}

func (x *parser) parseFile() (file *ast.File, ok bool) {
	ok = x.try(func() {
		file = &ast.File{}
		start := x.i
		for x.tok().kind != tokEOF {
			file.Decls = append(file.Decls, x.parseDecl())
		}
		file.Range = x.r(start)
	})
	return file, ok
}
