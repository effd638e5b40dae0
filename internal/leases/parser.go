// ===== internal/leases/parser.go =====
package leases

import (
	"errors"
	"strings"
)

// Result is returned by a successful Parse
type Result struct {
	Leases Leases
}

// Parse reads the contents of a dhcpd.leases file, BSD or Linux (ISC)
// dialect, and returns every lease block in source order. Parsing is all
// or nothing: any error discards the leases read so far.
//
// Statements starting with a keyword in the ignored set (option, set, on,
// bootp, reserved, failover, server-duid) are skipped. Any other keyword the
// parser does not know fails with ErrUnexpectedOption.
func Parse(input string) (*Result, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	leases, err := p.parseFile()
	if err != nil {
		return nil, err
	}
	return &Result{Leases: leases}, nil
}

// parser is a cursor over the token slice with one token of lookahead
type parser struct {
	tokens    []Token
	pos       int
	byteOrder string
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

// line is the best line number for an error at the cursor
func (p *parser) line() int {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].Line
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Line
	}
	return 0
}

func (p *parser) parseFile() (Leases, error) {
	var leases Leases

	for {
		tok, ok := p.peek()
		if !ok {
			return leases, nil
		}

		switch {
		case tok.Kind == TokenDecl && tok.Decl == DeclLease:
			lease, err := p.parseBlock()
			if err != nil {
				return Leases{}, err
			}
			leases.Push(lease)

		case tok.Kind == TokenOption && tok.Option == OptByteOrder:
			p.next()
			val, err := p.value(tok, "byte order")
			if err != nil {
				return Leases{}, err
			}
			if err := p.expectEnd(tok); err != nil {
				return Leases{}, err
			}
			p.byteOrder = val.Text

		case tok.Kind == TokenOption && tok.Option == OptIgnored:
			p.next()
			if err := p.skipStatement(tok); err != nil {
				return Leases{}, err
			}

		default:
			return Leases{}, newError(ErrUnexpectedToken, tok.Line, "%q", tok.String())
		}
	}
}

// parseBlock reads "lease <ip> { ... }" with the cursor on "lease"
func (p *parser) parseBlock() (Lease, error) {
	decl, _ := p.next()

	addr, err := p.value(decl, "address")
	if err != nil {
		return Lease{}, err
	}
	if addr.Kind != TokenWord {
		return Lease{}, newError(ErrUnexpectedToken, addr.Line, "lease: expected address, found keyword %q", addr.String())
	}

	open, ok := p.next()
	if !ok {
		return Lease{}, newError(ErrUnterminatedBlock, decl.Line, "lease %s: expected '{', found end of input", addr.Text)
	}
	if !open.isParen('{') {
		return Lease{}, newError(ErrMalformedInput, open.Line, "lease %s: expected '{', found %q", addr.Text, open.String())
	}

	lease := Lease{IP: addr.Text}
	if err := p.parseBody(&lease, decl); err != nil {
		return Lease{}, err
	}

	// parseBody only returns nil with the cursor on '}'
	p.next()
	lease.ByteOrder = p.byteOrder
	return lease, nil
}

// parseBody fills lease from the statements of one block. It returns with
// the closing brace still unconsumed.
func (p *parser) parseBody(lease *Lease, decl Token) error {
	for {
		tok, ok := p.peek()
		if !ok {
			return newError(ErrUnterminatedBlock, decl.Line, "lease %s: end of input before '}'", lease.IP)
		}
		if tok.isParen('}') {
			return nil
		}
		if tok.Kind != TokenOption {
			return newError(ErrUnexpectedOption, tok.Line, "lease %s: %q", lease.IP, tok.String())
		}
		p.next()

		var err error
		switch tok.Option {
		case OptStarts, OptEnds, OptTstp, OptTsfp, OptAtsfp, OptCltt:
			var d *Date
			if d, err = p.dateStatement(tok); err == nil {
				*dateField(&lease.Dates, tok.Option) = d
			}

		case OptHardware:
			var typ, mac Token
			if typ, err = p.value(tok, "hardware type"); err != nil {
				break
			}
			if mac, err = p.value(tok, "hardware address"); err != nil {
				break
			}
			if err = p.expectEnd(tok); err == nil {
				lease.Hardware = &Hardware{Type: typ.Text, MAC: mac.Text}
			}

		case OptUID:
			lease.UID, err = p.stringStatement(tok, false)

		case OptClientHostname:
			lease.ClientHostname, err = p.stringStatement(tok, true)

		case OptHostname:
			lease.Hostname, err = p.stringStatement(tok, true)

		case OptAbandoned:
			if err = p.expectEnd(tok); err == nil {
				lease.Abandoned = true
			}

		case OptBinding:
			lease.BindingState, err = p.stateStatement(tok, "state")

		case OptNext:
			lease.NextBindingState, err = p.stateStatement(tok, "binding", "state")

		case OptRewind:
			lease.RewindBindingState, err = p.stateStatement(tok, "binding", "state")

		case OptIgnored:
			err = p.skipStatement(tok)

		default:
			// file-level settings such as authoring-byte-order
			err = newError(ErrUnexpectedOption, tok.Line, "lease %s: %q is not allowed inside a lease", lease.IP, tok.String())
		}
		if err != nil {
			return err
		}
	}
}

func dateField(dates *LeaseDates, opt Option) **Date {
	switch opt {
	case OptStarts:
		return &dates.Starts
	case OptEnds:
		return &dates.Ends
	case OptTstp:
		return &dates.Tstp
	case OptTsfp:
		return &dates.Tsfp
	case OptAtsfp:
		return &dates.Atsfp
	}
	return &dates.Cltt
}

// dateStatement reads "<weekday> <date> <time> [UTC];" or "never;". The
// latter yields a nil date.
func (p *parser) dateStatement(kw Token) (*Date, error) {
	weekday, err := p.value(kw, "weekday")
	if err != nil {
		return nil, err
	}
	if weekday.Text == "never" {
		return nil, p.expectEnd(kw)
	}
	date, err := p.value(kw, "date")
	if err != nil {
		return nil, err
	}
	clock, err := p.value(kw, "time")
	if err != nil {
		return nil, err
	}

	var tz []string
	if tok, ok := p.peek(); ok && tok.Kind == TokenWord && tok.Text == utcMarker {
		p.next()
		tz = append(tz, tok.Text)
	}

	d, err := ParseDate(weekday.Text, date.Text, clock.Text, tz...)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Line = weekday.Line
			pe.Msg = kw.String() + ": " + pe.Msg
		}
		return nil, err
	}
	if err := p.expectEnd(kw); err != nil {
		return nil, err
	}
	return &d, nil
}

func (p *parser) stringStatement(kw Token, unquote bool) (string, error) {
	val, err := p.value(kw, "value")
	if err != nil {
		return "", err
	}
	if err := p.expectEnd(kw); err != nil {
		return "", err
	}
	if unquote {
		return unquoteValue(val.Text), nil
	}
	return val.Text, nil
}

// stateStatement reads "binding state X;" style statements. The words
// after the keyword are matched by their text since "binding" is itself a
// keyword.
func (p *parser) stateStatement(kw Token, words ...string) (string, error) {
	for _, w := range words {
		tok, ok := p.next()
		if !ok {
			return "", newError(ErrMissingField, p.line(), "%s: expected %q, found end of input", kw, w)
		}
		if tok.Text != w {
			return "", newError(ErrUnexpectedToken, tok.Line, "%s: expected %q, found %q", kw, w, tok.String())
		}
	}
	val, err := p.value(kw, "binding state")
	if err != nil {
		return "", err
	}
	if err := p.expectEnd(kw); err != nil {
		return "", err
	}
	return val.Text, nil
}

// value consumes the next token as the value of kw. Terminators, brackets
// and end of input mean the value is missing. Keywords are accepted by
// their text: "binding state abandoned" is a real ISC statement.
func (p *parser) value(kw Token, what string) (Token, error) {
	tok, ok := p.peek()
	if !ok {
		return Token{}, newError(ErrMissingField, p.line(), "%s: expected %s, found end of input", kw, what)
	}
	if tok.Kind == TokenEnd || tok.Kind == TokenParen {
		return Token{}, newError(ErrMissingField, tok.Line, "%s: expected %s, found %q", kw, what, tok.String())
	}
	p.next()
	return tok, nil
}

func (p *parser) expectEnd(kw Token) error {
	tok, ok := p.next()
	if !ok {
		return newError(ErrMissingField, p.line(), "%s: expected ';', found end of input", kw)
	}
	if tok.Kind != TokenEnd {
		return newError(ErrExpectedTerminator, tok.Line, "%s: expected ';', found %q", kw, tok.String())
	}
	return nil
}

// skipStatement discards an ignored statement up to its terminator. A
// nested { } group (as in "on commit { ... }" or a failover peer) is
// skipped whole and ends the statement.
func (p *parser) skipStatement(kw Token) error {
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind == TokenEnd || tok.isParen('}') {
			return p.expectEnd(kw)
		}
		p.next()
		if tok.isParen('{') {
			if err := p.skipGroup(kw, tok); err != nil {
				return err
			}
			if next, ok := p.peek(); ok && next.Kind == TokenEnd {
				p.next()
			}
			return nil
		}
	}
}

func (p *parser) skipGroup(kw, open Token) error {
	for depth := 1; depth > 0; {
		tok, ok := p.next()
		if !ok {
			return newError(ErrUnterminatedBlock, open.Line, "%s: end of input before '}'", kw)
		}
		switch {
		case tok.isParen('{'):
			depth++
		case tok.isParen('}'):
			depth--
		}
	}
	return nil
}

// unquoteValue removes one pair of surrounding double quotes
func unquoteValue(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
