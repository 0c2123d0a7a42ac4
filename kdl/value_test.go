package kdl_test

import (
	"testing"

	"github.com/reoring/kdlt/kdl"
)

func TestValueConstructors(t *testing.T) {
	if v, ok := kdl.Int(42).AsInt(); !ok || v != 42 {
		t.Errorf("Int: %v %v", v, ok)
	}
	if kdl.Int(-7).Repr() != "-7" {
		t.Errorf("Int repr = %q", kdl.Int(-7).Repr())
	}
	if kdl.Float(1.5).Repr() != "1.5" {
		t.Errorf("Float repr = %q", kdl.Float(1.5).Repr())
	}
	if kdl.Float(2).Repr() != "2.0" {
		t.Errorf("whole Float repr = %q", kdl.Float(2).Repr())
	}
	if v, ok := kdl.Bool(true).AsBool(); !ok || !v {
		t.Errorf("Bool: %v %v", v, ok)
	}
	if s, ok := kdl.Str("hi").AsString(); !ok || s != "hi" {
		t.Errorf("Str: %v %v", s, ok)
	}
	if kdl.Str("a\"b").Repr() != `"a\"b"` {
		t.Errorf("Str repr = %q", kdl.Str("a\"b").Repr())
	}
	if !kdl.Null().IsNull() {
		t.Errorf("Null not null")
	}
}

func TestValuePreservedRepr(t *testing.T) {
	v := kdl.IntRepr(254, "0xfe")
	if v.Repr() != "0xfe" {
		t.Fatalf("repr = %q", v.Repr())
	}
	if n, ok := v.AsInt(); !ok || n != 254 {
		t.Fatalf("AsInt = %v %v", n, ok)
	}
	if v.Len() != 4 {
		t.Fatalf("Len = %d", v.Len())
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    kdl.Value
		want string
	}{
		{kdl.Int(3), "int(3)"},
		{kdl.Float(2.5), "float(2.5)"},
		{kdl.Bool(false), "bool(false)"},
		{kdl.Str("x"), `string("x")`},
		{kdl.Null(), "null"},
	}
	for _, tc := range cases {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
