package parser

import (
	"fmt"
	"strings"

	"github.com/reoring/kdlt/kdl"
)

// Error is a single syntax problem with the byte range it covers.
type Error struct {
	Offset int
	Size   int
	Msg    string
}

func (e Error) Error() string { return fmt.Sprintf("at %d: %s", e.Offset, e.Msg) }

// Errors is every problem found in one pass.
type Errors []Error

func (es Errors) Error() string {
	if len(es) == 0 {
		return "no errors"
	}
	if len(es) == 1 {
		return es[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", es[0].Error(), len(es)-1)
}

// maxNest bounds children recursion independently of any engine option.
const maxNest = 1024

// Parse converts src into a document. Reprs and trivia are preserved
// verbatim, so a clean parse reproduces src byte for byte and the size
// arithmetic yields exact offsets. On syntax errors the returned document
// is best effort: everything before and after the bad region is kept, the
// error lists each problem, and offsets after a bad region may drift.
func Parse(src []byte) (*kdl.Document, error) {
	p := &parser{src: src, lx: newLexer(src)}
	p.advance()
	doc := p.document(true)
	if len(p.errs) > 0 {
		return doc, p.errs
	}
	return doc, nil
}

type parser struct {
	src   []byte
	lx    *lexer
	cur   token
	buf   token
	has   bool
	depth int
	errs  Errors
}

func (p *parser) advance() {
	if p.has {
		p.cur = p.buf
		p.has = false
		return
	}
	p.cur = p.lx.next()
}

func (p *parser) peek() token {
	if !p.has {
		p.buf = p.lx.next()
		p.has = true
	}
	return p.buf
}

func (p *parser) errorf(t token, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if t.kind == tokError && t.msg != "" {
		msg = t.msg
	}
	sz := len(t.text)
	if sz == 0 {
		sz = 1
	}
	p.errs = append(p.errs, Error{Offset: t.off, Size: sz, Msg: msg})
}

// document parses nodes until EOF, or until an unconsumed '}' when top is
// false. Trivia between nodes accumulates into the leading text of the next
// node; whatever is left at the end becomes the document trailing.
func (p *parser) document(top bool) *kdl.Document {
	var nodes []kdl.Node
	var trivia strings.Builder
	for {
		t := p.cur
		switch {
		case t.kind == tokEOF:
			return kdl.MakeDocument(nodes, trivia.String())
		case t.kind == tokRBrace:
			if !top {
				return kdl.MakeDocument(nodes, trivia.String())
			}
			p.errorf(t, "unmatched '}'")
			trivia.WriteString(t.text)
			p.advance()
		case t.isTrivia() || t.kind == tokSemicolon:
			trivia.WriteString(t.text)
			p.advance()
		case t.kind == tokSlashDash:
			trivia.WriteString(p.skipNode())
		case t.kind == tokLParen || t.kind == tokIdent || t.kind == tokString || t.kind == tokRawString:
			n := p.node(trivia.String())
			trivia.Reset()
			nodes = append(nodes, n)
		default:
			p.errorf(t, "expected a node name, got %q", t.text)
			trivia.WriteString(t.text)
			p.advance()
		}
	}
}

func (p *parser) node(leading string) kdl.Node {
	var ty *kdl.Ident
	if p.cur.kind == tokLParen {
		ty = p.typeAnnotation()
	}

	var name kdl.Ident
	switch p.cur.kind {
	case tokIdent, tokString, tokRawString:
		name = kdl.NewIdentRepr(p.cur.str, p.cur.text)
		p.advance()
	default:
		p.errorf(p.cur, "expected a node name after type annotation")
	}

	var (
		entries        []kdl.Entry
		beforeChildren string
		children       *kdl.Document
		trailing       strings.Builder
		pending        strings.Builder
	)
	mk := func() kdl.Node {
		return kdl.MakeNode(leading, ty, name, entries, beforeChildren, children, trailing.String())
	}

	for {
		t := p.cur
		switch {
		case t.kind == tokNewline || t.kind == tokSemicolon:
			trailing.WriteString(pending.String())
			trailing.WriteString(t.text)
			p.advance()
			return mk()
		case t.kind == tokEOF || t.kind == tokRBrace:
			// '}' stays for the enclosing document
			trailing.WriteString(pending.String())
			return mk()
		case t.isTrivia():
			pending.WriteString(t.text)
			p.advance()
		case t.kind == tokSlashDash:
			pending.WriteString(p.skipEntryOrBlock())
		case t.kind == tokLBrace:
			if children != nil {
				p.errorf(t, "a node may have only one children block")
				pending.WriteString(p.rawBlock())
				continue
			}
			if p.depth >= maxNest {
				p.errorf(t, "children nested too deeply")
				pending.WriteString(p.rawBlock())
				continue
			}
			beforeChildren = pending.String()
			pending.Reset()
			p.advance()
			p.depth++
			children = p.document(false)
			p.depth--
			if p.cur.kind == tokRBrace {
				p.advance()
			} else {
				p.errorf(p.cur, "unclosed children block")
			}
		default:
			if children != nil {
				p.errorf(t, "entries are not allowed after a children block")
				p.entry("")
				continue
			}
			e, ok := p.entry(pending.String())
			pending.Reset()
			if ok {
				entries = append(entries, e)
			}
		}
	}
}

// typeAnnotation parses "(" name ")". The caller sits on '('.
func (p *parser) typeAnnotation() *kdl.Ident {
	p.advance()
	if p.cur.kind != tokIdent && p.cur.kind != tokString && p.cur.kind != tokRawString {
		p.errorf(p.cur, "expected a type name inside '(...)'")
		for p.cur.kind != tokRParen && p.cur.kind != tokEOF && p.cur.kind != tokNewline && p.cur.kind != tokRBrace {
			p.advance()
		}
		if p.cur.kind == tokRParen {
			p.advance()
		}
		return nil
	}
	id := kdl.NewIdentRepr(p.cur.str, p.cur.text)
	p.advance()
	if p.cur.kind != tokRParen {
		p.errorf(p.cur, "expected ')' after type name")
		return &id
	}
	p.advance()
	return &id
}

// entry parses one argument or property. The caller sits on its first token.
func (p *parser) entry(leading string) (kdl.Entry, bool) {
	t := p.cur
	switch t.kind {
	case tokIdent, tokString, tokRawString:
		if p.peek().kind != tokEquals {
			// bare word or quoted string as a positional value
			v, _ := p.valueToken()
			return kdl.MakeEntry(leading, nil, nil, v), true
		}
		name := kdl.NewIdentRepr(t.str, t.text)
		p.advance()
		p.advance() // '='
		var ty *kdl.Ident
		if p.cur.kind == tokLParen {
			ty = p.typeAnnotation()
		}
		v, ok := p.valueToken()
		if !ok {
			return kdl.Entry{}, false
		}
		return kdl.MakeEntry(leading, &name, ty, v), true
	case tokLParen:
		ty := p.typeAnnotation()
		v, ok := p.valueToken()
		if !ok {
			return kdl.Entry{}, false
		}
		return kdl.MakeEntry(leading, nil, ty, v), true
	case tokInt, tokFloat, tokBool, tokNull:
		v, _ := p.valueToken()
		return kdl.MakeEntry(leading, nil, nil, v), true
	default:
		p.errorf(t, "unexpected token %q", t.text)
		p.advance()
		return kdl.Entry{}, false
	}
}

func (p *parser) valueToken() (kdl.Value, bool) {
	t := p.cur
	switch t.kind {
	case tokInt:
		p.advance()
		return kdl.IntRepr(t.num, t.text), true
	case tokFloat:
		p.advance()
		return kdl.FloatRepr(t.fl, t.text), true
	case tokBool:
		p.advance()
		return kdl.Bool(t.b), true
	case tokNull:
		p.advance()
		return kdl.Null(), true
	case tokString, tokRawString, tokIdent:
		p.advance()
		return kdl.StrRepr(t.str, t.text), true
	default:
		p.errorf(t, "expected a value")
		if t.kind != tokEOF && t.kind != tokNewline && t.kind != tokSemicolon && t.kind != tokRBrace {
			p.advance()
		}
		return kdl.Null(), false
	}
}

// skipNode consumes "/-" plus one whole node at document position and
// returns the exact source text covered, terminator included.
func (p *parser) skipNode() string {
	start := p.cur.off
	p.advance()
	for p.cur.isTrivia() {
		p.advance()
	}
	switch p.cur.kind {
	case tokEOF, tokRBrace:
		p.errorf(p.cur, "'/-' with nothing to skip")
	default:
		p.node("")
	}
	return string(p.src[start:p.cur.off])
}

// skipEntryOrBlock consumes "/-" plus one entry or one children block at
// node position and returns the exact source text covered.
func (p *parser) skipEntryOrBlock() string {
	start := p.cur.off
	p.advance()
	for p.cur.isTrivia() {
		p.advance()
	}
	switch p.cur.kind {
	case tokLBrace:
		p.rawBlockFromBrace()
	case tokEOF, tokNewline, tokSemicolon, tokRBrace:
		p.errorf(p.cur, "'/-' with nothing to skip")
	default:
		p.entry("")
	}
	return string(p.src[start:p.cur.off])
}

// rawBlock consumes a brace-balanced block without building nodes and
// returns its exact source text. The caller sits on '{'.
func (p *parser) rawBlock() string {
	start := p.cur.off
	p.rawBlockFromBrace()
	return string(p.src[start:p.cur.off])
}

func (p *parser) rawBlockFromBrace() {
	depth := 0
	for {
		switch p.cur.kind {
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		case tokEOF:
			p.errorf(p.cur, "unclosed children block")
			return
		}
		p.advance()
	}
}
