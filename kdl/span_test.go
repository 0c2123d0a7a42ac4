package kdl_test

import (
	"testing"

	"github.com/reoring/kdlt/kdl"
)

// buildFixture assembles the tree for the text
//
//	(ty)name arg=1 (u8)2 { child "a"; }\n
//
// with explicit trivia, the way a document driver would.
func buildFixture() *kdl.Document {
	argName := kdl.NewIdent("arg")
	u8 := kdl.NewIdent("u8")
	ty := kdl.NewIdent("ty")

	childEntry := kdl.MakeEntry(" ", nil, nil, kdl.Str("a"))
	child := kdl.MakeNode(" ", nil, kdl.NewIdent("child"), []kdl.Entry{childEntry}, "", nil, ";")
	inner := kdl.MakeDocument([]kdl.Node{child}, " ")

	entries := []kdl.Entry{
		kdl.MakeEntry(" ", &argName, nil, kdl.Int(1)),
		kdl.MakeEntry(" ", nil, &u8, kdl.Int(2)),
	}
	node := kdl.MakeNode("", &ty, kdl.NewIdent("name"), entries, " ", inner, "\n")
	return kdl.MakeDocument([]kdl.Node{node}, "")
}

const fixtureText = "(ty)name arg=1 (u8)2 { child \"a\"; }\n"

func TestDocumentRoundTripAndLen(t *testing.T) {
	doc := buildFixture()
	if got := doc.String(); got != fixtureText {
		t.Fatalf("String() = %q, want %q", got, fixtureText)
	}
	if got := doc.Len(); got != len(fixtureText) {
		t.Fatalf("Len() = %d, want %d", got, len(fixtureText))
	}
}

func TestSpans(t *testing.T) {
	doc := buildFixture()
	nodes := kdl.Spanned(doc).Nodes()
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	n := nodes[0]

	if got := n.NameSpan(); got != (kdl.Span{Offset: 4, Size: 4}) {
		t.Errorf("NameSpan = %+v", got)
	}
	tySpan, ok := n.TypeSpan()
	if !ok || tySpan != (kdl.Span{Offset: 1, Size: 2}) {
		t.Errorf("TypeSpan = %+v ok=%v", tySpan, ok)
	}
	if got := n.Span(); got != (kdl.Span{Offset: 0, Size: 35}) {
		t.Errorf("Span = %+v", got)
	}

	entries := n.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	nameSpan, ok := entries[0].NameSpan()
	if !ok || nameSpan != (kdl.Span{Offset: 9, Size: 3}) {
		t.Errorf("entry0 NameSpan = %+v ok=%v", nameSpan, ok)
	}
	if got := entries[0].ValueSpan(); got != (kdl.Span{Offset: 13, Size: 1}) {
		t.Errorf("entry0 ValueSpan = %+v", got)
	}
	tySpan, ok = entries[1].TypeSpan()
	if !ok || tySpan != (kdl.Span{Offset: 16, Size: 2}) {
		t.Errorf("entry1 TypeSpan = %+v ok=%v", tySpan, ok)
	}
	if got := entries[1].ValueSpan(); got != (kdl.Span{Offset: 19, Size: 1}) {
		t.Errorf("entry1 ValueSpan = %+v", got)
	}

	children, ok := n.Children()
	if !ok {
		t.Fatalf("expected children")
	}
	kids := children.Nodes()
	if len(kids) != 1 {
		t.Fatalf("expected 1 child, got %d", len(kids))
	}
	if got := kids[0].NameSpan(); got != (kdl.Span{Offset: 23, Size: 5}) {
		t.Errorf("child NameSpan = %+v", got)
	}
	if got := kids[0].Entries()[0].ValueSpan(); got != (kdl.Span{Offset: 29, Size: 3}) {
		t.Errorf("child ValueSpan = %+v", got)
	}
}

func TestSynthesizedNodes(t *testing.T) {
	n := kdl.NewNode("greet")
	n.AddEntry(kdl.NewProp("name", kdl.Str("world")))
	child := kdl.NewNode("msg")
	child.AddEntry(kdl.NewArg(kdl.Int(1)))
	n.AddChild(child)

	want := `greet name="world" { msg 1; }`
	if got := n.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if got := n.Len(); got != len(want) {
		t.Fatalf("Len() = %d, want %d", got, len(want))
	}
}

func TestIdentRepr(t *testing.T) {
	cases := []struct {
		value string
		repr  string
	}{
		{"plain", "plain"},
		{"with-dash", "with-dash"},
		{"true", `"true"`},
		{"two words", `"two words"`},
		{"1st", `"1st"`},
		{"", `""`},
	}
	for _, tc := range cases {
		if got := kdl.NewIdent(tc.value).Repr(); got != tc.repr {
			t.Errorf("NewIdent(%q).Repr() = %q, want %q", tc.value, got, tc.repr)
		}
	}
}
