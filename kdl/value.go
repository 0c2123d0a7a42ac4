package kdl

import (
	"strconv"
	"strings"
)

// ValueKind discriminates the primitive literal kinds.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is a primitive literal: integer, float, boolean, string or null.
// The source spelling (base prefix, underscores, quoting) is preserved in
// the repr and does not affect the value.
type Value struct {
	kind ValueKind
	num  int64
	fl   float64
	b    bool
	str  string
	repr string
}

// Int returns an integer value with canonical decimal repr.
func Int(v int64) Value {
	return Value{kind: KindInt, num: v, repr: strconv.FormatInt(v, 10)}
}

// Float returns a float value with canonical repr.
func Float(v float64) Value {
	repr := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(repr, ".eE") {
		repr += ".0"
	}
	return Value{kind: KindFloat, fl: v, repr: repr}
}

// Bool returns a boolean value.
func Bool(v bool) Value {
	return Value{kind: KindBool, b: v, repr: strconv.FormatBool(v)}
}

// Str returns a string value with canonical quoted repr.
func Str(v string) Value {
	return Value{kind: KindString, str: v, repr: quoteString(v)}
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull, repr: "null"} }

// IntRepr returns an integer value preserving its source spelling
// (e.g. 0xfe, 1_000).
func IntRepr(v int64, repr string) Value {
	return Value{kind: KindInt, num: v, repr: repr}
}

// FloatRepr returns a float value preserving its source spelling.
func FloatRepr(v float64, repr string) Value {
	return Value{kind: KindFloat, fl: v, repr: repr}
}

// StrRepr returns a string value preserving its source spelling (quoted or
// raw form).
func StrRepr(v, repr string) Value {
	return Value{kind: KindString, str: v, repr: repr}
}

// Kind returns the literal kind.
func (v Value) Kind() ValueKind { return v.kind }

// Repr returns the exact source spelling of the literal.
func (v Value) Repr() string { return v.repr }

// AsInt returns the integer value when the kind is int.
func (v Value) AsInt() (int64, bool) { return v.num, v.kind == KindInt }

// AsFloat returns the float value when the kind is float.
func (v Value) AsFloat() (float64, bool) { return v.fl, v.kind == KindFloat }

// AsBool returns the boolean value when the kind is bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string value when the kind is string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// String renders the value for messages: int(3), string("x"), null.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return "int(" + strconv.FormatInt(v.num, 10) + ")"
	case KindFloat:
		return "float(" + strconv.FormatFloat(v.fl, 'g', -1, 64) + ")"
	case KindBool:
		return "bool(" + strconv.FormatBool(v.b) + ")"
	case KindString:
		return "string(" + strconv.Quote(v.str) + ")"
	default:
		return "null"
	}
}

// quoteString renders a string literal in double quotes with the escapes the
// document syntax understands.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
