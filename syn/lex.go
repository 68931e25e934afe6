// Copyright © 2020 The Pea Authors under an MIT-style license.

package syn

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokInt
	tokByte
	tokString
	tokPunct
)

func (k tokKind) String() string {
	switch k {
	case tokEOF:
		return "EOF"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "integer"
	case tokByte:
		return "byte"
	case tokString:
		return "string"
	case tokPunct:
		return "punctuation"
	default:
		panic("impossible")
	}
}

type token struct {
	kind tokKind
	text string
	// start and end are byte offsets into the source text.
	start, end int
}

// Longest first.
var puncts = []string{
	"<==>",
	"==>", "...",
	"==", "!=", "<=", ">=", "<<", ">>", "&&", "||", "->", ":=", "..",
	"(", ")", "{", "}", "[", "]", ",", ";", ":", ".", "|", "&", "!", "~",
	"*", "/", "%", "+", "-", "<", ">", "=", "^",
}

// lex splits text into tokens, ending with an EOF token.
// On a malformed token, it returns the tokens before it
// and the offset of the malformed token.
func lex(text string) ([]token, int) {
	var toks []token
	pos := 0
	for {
		pos = skipSpace(text, pos)
		if pos < 0 {
			return toks, len(text)
		}
		if pos == len(text) {
			return append(toks, token{kind: tokEOF, start: pos, end: pos}), -1
		}
		tok, ok := lexToken(text, pos)
		if !ok {
			return toks, pos
		}
		toks = append(toks, tok)
		pos = tok.end
	}
}

// skipSpace returns the offset of the first non-space, non-comment byte at or after pos.
// It returns -1 on an unterminated comment.
func skipSpace(text string, pos int) int {
	for pos < len(text) {
		r, w := utf8.DecodeRuneInString(text[pos:])
		switch {
		case unicode.IsSpace(r):
			pos += w
		case strings.HasPrefix(text[pos:], "//"):
			if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
				pos += i + 1
			} else {
				pos = len(text)
			}
		case strings.HasPrefix(text[pos:], "/*"):
			i := strings.Index(text[pos+2:], "*/")
			if i < 0 {
				return -1
			}
			pos += i + 4
		default:
			return pos
		}
	}
	return pos
}

func lexToken(text string, pos int) (token, bool) {
	r, _ := utf8.DecodeRuneInString(text[pos:])
	switch {
	case r == '_' || unicode.IsLetter(r):
		end := pos
		for end < len(text) {
			r, w := utf8.DecodeRuneInString(text[end:])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			end += w
		}
		return token{kind: tokIdent, text: text[pos:end], start: pos, end: end}, true
	case strings.HasPrefix(text[pos:], "0b"):
		end := pos + 2
		for end < len(text) && (text[end] == '0' || text[end] == '1') {
			end++
		}
		if n := end - pos - 2; n == 0 || n > 8 {
			return token{}, false
		}
		return token{kind: tokByte, text: text[pos:end], start: pos, end: end}, true
	case '0' <= r && r <= '9':
		end := pos
		for end < len(text) && '0' <= text[end] && text[end] <= '9' {
			end++
		}
		return token{kind: tokInt, text: text[pos:end], start: pos, end: end}, true
	case r == '"':
		end := pos + 1
		for end < len(text) && text[end] != '"' && text[end] != '\n' {
			if text[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(text) || text[end] != '"' {
			return token{}, false
		}
		end++
		return token{kind: tokString, text: text[pos:end], start: pos, end: end}, true
	}
	for _, p := range puncts {
		if strings.HasPrefix(text[pos:], p) {
			return token{kind: tokPunct, text: p, start: pos, end: pos + len(p)}, true
		}
	}
	return token{}, false
}

var keywords = map[string]bool{
	"all":      true,
	"any":      true,
	"assert":   true,
	"assume":   true,
	"bool":     true,
	"break":    true,
	"byte":     true,
	"case":     true,
	"const":    true,
	"continue": true,
	"debug":    true,
	"default":  true,
	"do":       true,
	"else":     true,
	"ensures":  true,
	"fail":     true,
	"false":    true,
	"function": true,
	"if":       true,
	"in":       true,
	"int":      true,
	"is":       true,
	"method":   true,
	"new":      true,
	"null":     true,
	"property": true,
	"requires": true,
	"return":   true,
	"skip":     true,
	"some":     true,
	"switch":   true,
	"true":     true,
	"type":     true,
	"void":     true,
	"where":    true,
	"while":    true,
}
