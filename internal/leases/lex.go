// ===== internal/leases/lex.go =====
package leases

import (
	"strings"
)

// TokenKind classifies a lexed token
type TokenKind int

const (
	TokenParen TokenKind = iota // one of ( ) [ ] { }
	TokenEnd                    // ;
	TokenWord                   // anything not in a vocabulary
	TokenDecl                   // block declaration keyword
	TokenOption                 // lease option keyword
)

// Declaration is the closed set of block declaration keywords
type Declaration int

const (
	DeclLease Declaration = iota
)

var declarations = map[string]Declaration{
	"lease": DeclLease,
}

func (d Declaration) String() string {
	switch d {
	case DeclLease:
		return "lease"
	}
	return "unknown-declaration"
}

// Option is the closed set of keywords recognised inside and between lease
// blocks. OptIgnored covers keywords that are known but not interpreted.
type Option int

const (
	OptStarts Option = iota
	OptEnds
	OptTstp
	OptTsfp
	OptAtsfp
	OptCltt
	OptHardware
	OptUID
	OptClientHostname
	OptHostname
	OptAbandoned
	OptBinding
	OptNext
	OptRewind
	OptByteOrder
	OptIgnored
)

var optionNames = [...]string{
	OptStarts:         "starts",
	OptEnds:           "ends",
	OptTstp:           "tstp",
	OptTsfp:           "tsfp",
	OptAtsfp:          "atsfp",
	OptCltt:           "cltt",
	OptHardware:       "hardware",
	OptUID:            "uid",
	OptClientHostname: "client-hostname",
	OptHostname:       "hostname",
	OptAbandoned:      "abandoned",
	OptBinding:        "binding",
	OptNext:           "next",
	OptRewind:         "rewind",
	OptByteOrder:      "authoring-byte-order",
	OptIgnored:        "ignored",
}

var options = func() map[string]Option {
	m := make(map[string]Option, len(optionNames)+len(ignoredKeywords))
	for opt, name := range optionNames {
		if Option(opt) != OptIgnored {
			m[name] = Option(opt)
		}
	}
	for _, name := range ignoredKeywords {
		m[name] = OptIgnored
	}
	return m
}()

// Keywords that may appear in ISC/OpenBSD lease files but carry nothing a
// Lease records. Statements starting with one are skipped whole.
var ignoredKeywords = []string{
	"option",
	"set",
	"on",
	"bootp",
	"reserved",
	"failover",
	"server-duid",
}

func (o Option) String() string {
	if o >= 0 && int(o) < len(optionNames) {
		return optionNames[o]
	}
	return "unknown-option"
}

// Token is one lexed item. Text holds the source word as written.
type Token struct {
	Kind   TokenKind
	Text   string
	Decl   Declaration
	Option Option
	Line   int
}

// String renders the token the way it appeared in the source
func (t Token) String() string {
	return t.Text
}

func (t Token) isParen(c byte) bool {
	return t.Kind == TokenParen && t.Text == string(c)
}

// Lex splits a lease file into tokens. Comments and whitespace produce
// nothing. It does not fail on any input today; the error is reserved for
// stricter modes.
func Lex(input string) ([]Token, error) {
	var (
		tokens []Token
		line   = 1
		i      = 0
	)

	for i < len(input) {
		c := input[i]
		switch c {
		case '(', ')', '[', ']', '{', '}':
			tokens = append(tokens, Token{Kind: TokenParen, Text: string(c), Line: line})
			i++
		case '#':
			if end := strings.IndexByte(input[i:], '\n'); end >= 0 {
				i += end
			} else {
				i = len(input)
			}
		case '\n':
			line++
			i++
		case ' ', '\t', '\r':
			i++
		case ';':
			tokens = append(tokens, Token{Kind: TokenEnd, Text: ";", Line: line})
			i++
		default:
			start, startLine := i, line
			i, line = scanWord(input, i, line)
			tokens = append(tokens, classify(input[start:i], startLine))
		}
	}

	return tokens, nil
}

// scanWord returns the index just past the word starting at i. A word that
// opens with a quote runs to the matching unescaped quote.
func scanWord(input string, i, line int) (int, int) {
	if input[i] == '"' {
		n := line
		for j := i + 1; j < len(input); j++ {
			switch input[j] {
			case '\\':
				j++
			case '\n':
				n++
			case '"':
				return j + 1, n
			}
		}
		// unbalanced quote; fall back to a plain word
	}
	for i < len(input) && !isSpace(input[i]) && input[i] != ';' {
		i++
	}
	return i, line
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func classify(word string, line int) Token {
	if d, ok := declarations[word]; ok {
		return Token{Kind: TokenDecl, Text: word, Decl: d, Line: line}
	}
	if o, ok := options[word]; ok {
		return Token{Kind: TokenOption, Text: word, Option: o, Line: line}
	}
	return Token{Kind: TokenWord, Text: word, Line: line}
}
