// Package parser implements the built-in document driver: a hand-written
// lexer and recursive-descent parser for the KDL-like syntax. It preserves
// the exact source text of every token and the trivia between tokens, so
// that for a cleanly parsed document the tree's size arithmetic reproduces
// byte offsets exactly. On syntax errors it recovers at node boundaries and
// returns a best-effort tree along with every problem found.
package parser

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokRawString
	tokInt
	tokFloat
	tokBool
	tokNull
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokEquals
	tokSemicolon
	tokNewline
	tokSpace
	tokLineComment
	tokBlockComment
	tokEscline
	tokSlashDash
	tokError
)

type token struct {
	kind tokenKind
	text string // exact source slice
	str  string // decoded payload for ident/string tokens
	num  int64
	fl   float64
	b    bool
	off  int // byte offset of the token start
	msg  string
}

// isTrivia reports whether the token is whitespace or a comment.
func (t token) isTrivia() bool {
	switch t.kind {
	case tokSpace, tokNewline, tokLineComment, tokBlockComment, tokEscline:
		return true
	}
	return false
}

type lexer struct {
	src []byte
	pos int
}

func newLexer(src []byte) *lexer { return &lexer{src: src} }

func (l *lexer) errorToken(start int, msg string) token {
	return token{kind: tokError, text: string(l.src[start:l.pos]), off: start, msg: msg}
}

func (l *lexer) next() token {
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, off: l.pos}
	}
	start := l.pos
	c := l.src[l.pos]

	switch {
	case c == '\n':
		l.pos++
		return token{kind: tokNewline, text: "\n", off: start}
	case c == '\r':
		l.pos++
		if l.pos < len(l.src) && l.src[l.pos] == '\n' {
			l.pos++
		}
		return token{kind: tokNewline, text: string(l.src[start:l.pos]), off: start}
	case c == ' ' || c == '\t':
		for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
			l.pos++
		}
		return token{kind: tokSpace, text: string(l.src[start:l.pos]), off: start}
	case c == '\\':
		// line continuation: backslash, optional spaces, newline
		l.pos++
		for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
			l.pos++
		}
		if l.pos < len(l.src) && (l.src[l.pos] == '\n' || l.src[l.pos] == '\r') {
			if l.src[l.pos] == '\r' {
				l.pos++
			}
			if l.pos < len(l.src) && l.src[l.pos] == '\n' {
				l.pos++
			}
			return token{kind: tokEscline, text: string(l.src[start:l.pos]), off: start}
		}
		return l.errorToken(start, "stray backslash")
	case c == '{':
		l.pos++
		return token{kind: tokLBrace, text: "{", off: start}
	case c == '}':
		l.pos++
		return token{kind: tokRBrace, text: "}", off: start}
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", off: start}
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", off: start}
	case c == '=':
		l.pos++
		return token{kind: tokEquals, text: "=", off: start}
	case c == ';':
		l.pos++
		return token{kind: tokSemicolon, text: ";", off: start}
	case c == '/':
		return l.lexSlash(start)
	case c == '"':
		return l.lexString(start)
	case c == 'r' && l.peekAt(1) == '"' || c == 'r' && l.peekAt(1) == '#':
		return l.lexRawString(start)
	case c >= '0' && c <= '9':
		return l.lexNumber(start)
	case c == '+' || c == '-':
		if n := l.peekAt(1); n >= '0' && n <= '9' {
			return l.lexNumber(start)
		}
		return l.lexIdent(start)
	default:
		if isIdentStart(rune(c)) {
			return l.lexIdent(start)
		}
		l.pos++
		return l.errorToken(start, fmt.Sprintf("unexpected character %q", rune(c)))
	}
}

func (l *lexer) peekAt(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) lexSlash(start int) token {
	switch l.peekAt(1) {
	case '/':
		l.pos += 2
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		return token{kind: tokLineComment, text: string(l.src[start:l.pos]), off: start}
	case '*':
		l.pos += 2
		depth := 1
		for l.pos < len(l.src) && depth > 0 {
			if l.src[l.pos] == '/' && l.peekAt(1) == '*' {
				depth++
				l.pos += 2
			} else if l.src[l.pos] == '*' && l.peekAt(1) == '/' {
				depth--
				l.pos += 2
			} else {
				l.pos++
			}
		}
		if depth > 0 {
			return l.errorToken(start, "unterminated block comment")
		}
		return token{kind: tokBlockComment, text: string(l.src[start:l.pos]), off: start}
	case '-':
		l.pos += 2
		return token{kind: tokSlashDash, text: "/-", off: start}
	default:
		l.pos++
		return l.errorToken(start, "unexpected character '/'")
	}
}

func (l *lexer) lexString(start int) token {
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: string(l.src[start:l.pos]), str: b.String(), off: start}
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return l.errorToken(start, "unterminated string")
			}
			esc := l.src[l.pos]
			l.pos++
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '"', '\\', '/':
				b.WriteByte(esc)
			case 'u':
				if l.pos < len(l.src) && l.src[l.pos] == '{' {
					end := l.pos + 1
					for end < len(l.src) && l.src[end] != '}' && end-l.pos <= 8 {
						end++
					}
					if end < len(l.src) && l.src[end] == '}' {
						if cp, err := strconv.ParseUint(string(l.src[l.pos+1:end]), 16, 32); err == nil {
							b.WriteRune(rune(cp))
							l.pos = end + 1
							continue
						}
					}
				}
				return l.errorToken(start, "invalid unicode escape")
			default:
				return l.errorToken(start, fmt.Sprintf("invalid escape %q", rune(esc)))
			}
		case '\n':
			return l.errorToken(start, "unterminated string")
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return l.errorToken(start, "unterminated string")
}

func (l *lexer) lexRawString(start int) token {
	l.pos++ // 'r'
	hashes := 0
	for l.pos < len(l.src) && l.src[l.pos] == '#' {
		hashes++
		l.pos++
	}
	if l.pos >= len(l.src) || l.src[l.pos] != '"' {
		return l.errorToken(start, "malformed raw string")
	}
	l.pos++
	bodyStart := l.pos
	closer := `"` + strings.Repeat("#", hashes)
	for l.pos < len(l.src) {
		if l.src[l.pos] == '"' && strings.HasPrefix(string(l.src[l.pos:]), closer) {
			body := string(l.src[bodyStart:l.pos])
			l.pos += len(closer)
			return token{kind: tokRawString, text: string(l.src[start:l.pos]), str: body, off: start}
		}
		l.pos++
	}
	return l.errorToken(start, "unterminated raw string")
}

func (l *lexer) lexNumber(start int) token {
	if l.src[l.pos] == '+' || l.src[l.pos] == '-' {
		l.pos++
	}
	base := 10
	digits := "0123456789_"
	if l.pos+1 < len(l.src) && l.src[l.pos] == '0' {
		switch l.src[l.pos+1] {
		case 'x', 'X':
			base, digits = 16, "0123456789abcdefABCDEF_"
			l.pos += 2
		case 'o', 'O':
			base, digits = 8, "01234567_"
			l.pos += 2
		case 'b', 'B':
			base, digits = 2, "01_"
			l.pos += 2
		}
	}
	isFloat := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if strings.IndexByte(digits, c) >= 0 {
			l.pos++
			continue
		}
		if base == 10 && (c == '.' || c == 'e' || c == 'E') {
			if c == '.' {
				if n := l.peekAt(1); n < '0' || n > '9' {
					break
				}
			}
			isFloat = true
			l.pos++
			if (c == 'e' || c == 'E') && l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
				l.pos++
			}
			continue
		}
		break
	}
	text := string(l.src[start:l.pos])
	clean := strings.ReplaceAll(text, "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return l.errorToken(start, "malformed number "+text)
		}
		return token{kind: tokFloat, text: text, fl: f, off: start}
	}
	digitsPart := clean
	neg := false
	if strings.HasPrefix(digitsPart, "+") {
		digitsPart = digitsPart[1:]
	} else if strings.HasPrefix(digitsPart, "-") {
		neg = true
		digitsPart = digitsPart[1:]
	}
	if base != 10 {
		digitsPart = digitsPart[2:] // strip 0x/0o/0b
	}
	if digitsPart == "" {
		return l.errorToken(start, "malformed number "+text)
	}
	n, err := strconv.ParseUint(digitsPart, base, 64)
	if err == nil && (n < 1<<63 || (neg && n == 1<<63)) {
		v := int64(n)
		if neg {
			v = -v
		}
		return token{kind: tokInt, text: text, num: v, off: start}
	}
	return l.errorToken(start, "integer out of range: "+text)
}

func (l *lexer) lexIdent(start int) token {
	for l.pos < len(l.src) && isIdentPart(rune(l.src[l.pos])) {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	switch text {
	case "true":
		return token{kind: tokBool, text: text, b: true, off: start}
	case "false":
		return token{kind: tokBool, text: text, b: false, off: start}
	case "null":
		return token{kind: tokNull, text: text, off: start}
	}
	return token{kind: tokIdent, text: text, str: text, off: start}
}

func isIdentStart(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r == '_', r == '-', r == '+', r == '.':
		return true
	case r > 0x7f:
		return true
	}
	return false
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') || r == ':'
}
