package codec_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/reoring/kdlt/codec"
	"github.com/reoring/kdlt/deser"
	"github.com/reoring/kdlt/kdl"
	"github.com/reoring/kdlt/shape"
)

func codecRegistry(t *testing.T) *shape.Registry {
	t.Helper()
	reg := shape.NewRegistry()
	reg.MustAdd(&shape.Struct{Name: "Foo", Fields: []shape.Field{
		{Name: "weight", Type: "f32"},
		{Name: "name", Type: "string"},
	}})
	reg.MustAdd(&shape.Tuple{Name: "Triple", Fields: []shape.Field{
		{Type: "u64"}, {Type: "u32"}, {Type: "u32"},
	}})
	reg.MustAdd(&shape.TupleStruct{Name: "Coord", Fields: []shape.Field{
		{Type: "f64"}, {Type: "f64"},
	}})
	reg.MustAdd(&shape.TupleStruct{Name: "Inner", Fields: []shape.Field{{Type: "u32"}}})
	reg.MustAdd(&shape.TupleStruct{Name: "Wrapper", Fields: []shape.Field{{Type: "Inner"}}})
	reg.MustAdd(&shape.List{Name: "points", Elem: "Coord"})
	reg.MustAdd(&shape.Map{Name: "sites", Value: "Coord"})
	reg.MustAdd(&shape.Map{Name: "scores", Value: "u8"})
	return reg
}

func buildDyn(t *testing.T, reg *shape.Registry, expected, src string) shape.Dyn {
	t.Helper()
	d, err := deser.Document(context.Background(), reg, expected, []byte(src))
	if err != nil {
		t.Fatalf("Document(%q): %v", src, err)
	}
	return d
}

func encode(t *testing.T, reg *shape.Registry, d shape.Dyn, name string) string {
	t.Helper()
	n, err := codec.EncodeDyn(reg, d, name)
	if err != nil {
		t.Fatalf("EncodeDyn(%s): %v", d.Type, err)
	}
	return n.String()
}

func TestEncodeDynSpellings(t *testing.T) {
	reg := codecRegistry(t)
	cases := []struct {
		expected, src, want string
	}{
		{"Foo", "Foo weight=1.5 name=\"x\"\n", `Foo weight=1.5 name="x"`},
		{"Triple", "sizes 34 56 78\n", `sizes 34 56 78`},
		{"Wrapper", "score 9000\n", `score { .0 9000; }`},
		{"points", "pts { Coord 1.0 2.0; Coord 3.0 4.0; }\n", `pts { Coord 1.0 2.0; Coord 3.0 4.0; }`},
		{"sites", "m { .alice 1.0 2.0; }\n", `m { .alice 1.0 2.0; }`},
		{"scores", "scores alice=3 bob=5\n", `scores alice=3 bob=5`},
	}
	for _, tc := range cases {
		d := buildDyn(t, reg, tc.expected, tc.src)
		name := strings.Fields(tc.src)[0]
		if got := encode(t, reg, d, name); got != tc.want {
			t.Errorf("EncodeDyn(%s) = %q, want %q", tc.expected, got, tc.want)
		}
	}
}

func TestEncodeDynSelfLabel(t *testing.T) {
	reg := codecRegistry(t)
	d := buildDyn(t, reg, "Coord", "origin 1.0 2.0\n")
	if got := encode(t, reg, d, ""); got != `Coord 1.0 2.0` {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeDynRoundTrip(t *testing.T) {
	reg := codecRegistry(t)
	srcs := map[string]string{
		"Foo":     "Foo weight=1.5 name=\"x\"\n",
		"Triple":  "sizes 34 56 78\n",
		"Wrapper": "score 9000\n",
		"points":  "pts { Coord 1.0 2.0; Coord 3.0 4.0; }\n",
		"sites":   "m { .alice 1.0 2.0; .bob 3.0 4.0; }\n",
		"scores":  "scores alice=3 bob=5\n",
	}
	for expected, src := range srcs {
		first := buildDyn(t, reg, expected, src)
		text := encode(t, reg, first, "again") + "\n"
		second := buildDyn(t, reg, expected, text)
		if !reflect.DeepEqual(first.Value, second.Value) {
			t.Errorf("%s: %#v != %#v via %q", expected, first.Value, second.Value, text)
		}
	}
}

func TestEncodeDynDottedMapKey(t *testing.T) {
	reg := codecRegistry(t)
	d := shape.Dyn{Type: "scores", Value: map[string]any{".x": uint8(1)}}
	if got := encode(t, reg, d, "m"); got != `m { - ".x" 1; }` {
		t.Fatalf("got %q", got)
	}
	n, err := codec.EncodeDyn(reg, shape.Dyn{Type: "sites", Value: map[string]any{".x": []any{1.0, 2.0}}}, "m")
	if err == nil {
		t.Fatalf("want an error, got %q", n.String())
	}
}

func TestEncodeDynUnregistered(t *testing.T) {
	reg := codecRegistry(t)
	if _, err := codec.EncodeDyn(reg, shape.Dyn{Type: "Nope", Value: 1}, "n"); err == nil {
		t.Fatal("want an error")
	}
}

func TestNodeJSON(t *testing.T) {
	n := kdl.NewNode("cfg")
	n.SetType("Conf")
	n.AddEntry(kdl.NewArg(kdl.Int(1)))
	n.AddEntry(kdl.NewProp("port", kdl.Int(80)))
	c := kdl.NewNode("host")
	c.AddEntry(kdl.NewArg(kdl.Str("db")))
	n.AddChild(c)

	got, err := codec.NodeJSON(&n)
	if err != nil {
		t.Fatalf("NodeJSON: %v", err)
	}
	want := `{"name":"cfg","type":"Conf","args":[1],"props":{"port":80},"children":[{"name":"host","args":["db"]}]}`
	if string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestNodeJSONDuplicatePropKeepsFirst(t *testing.T) {
	n := kdl.NewNode("cfg")
	n.AddEntry(kdl.NewProp("port", kdl.Int(80)))
	n.AddEntry(kdl.NewProp("port", kdl.Int(90)))
	got, err := codec.NodeJSON(&n)
	if err != nil {
		t.Fatalf("NodeJSON: %v", err)
	}
	if want := `{"name":"cfg","props":{"port":80}}`; string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestDocumentJSON(t *testing.T) {
	doc := kdl.NewDocument()
	a := kdl.NewNode("a")
	a.AddEntry(kdl.NewArg(kdl.Bool(true)))
	doc.AddNode(a)
	doc.AddNode(kdl.NewNode("b"))

	got, err := codec.DocumentJSON(doc)
	if err != nil {
		t.Fatalf("DocumentJSON: %v", err)
	}
	if want := `[{"name":"a","args":[true]},{"name":"b"}]`; string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestDynJSON(t *testing.T) {
	d := shape.Dyn{Type: "Foo", Value: map[string]any{"weight": float32(1.5), "name": "x"}}
	got, err := codec.DynJSON(d)
	if err != nil {
		t.Fatalf("DynJSON: %v", err)
	}
	if want := `{"name":"x","weight":1.5}`; string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestDocumentYAML(t *testing.T) {
	doc := kdl.NewDocument()
	a := kdl.NewNode("a")
	a.AddEntry(kdl.NewArg(kdl.Int(1)))
	a.AddEntry(kdl.NewProp("on", kdl.Bool(true)))
	doc.AddNode(a)

	out, err := codec.DocumentYAML(doc)
	if err != nil {
		t.Fatalf("DocumentYAML: %v", err)
	}
	var back []map[string]any
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []map[string]any{{
		"name":  "a",
		"args":  []any{1},
		"props": map[string]any{"on": true},
	}}
	if !reflect.DeepEqual(back, want) {
		t.Fatalf("got %#v", back)
	}
}

func TestDynYAML(t *testing.T) {
	d := shape.Dyn{Type: "scores", Value: map[string]any{"alice": uint8(3)}}
	out, err := codec.DynYAML(d)
	if err != nil {
		t.Fatalf("DynYAML: %v", err)
	}
	var back map[string]any
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, map[string]any{"alice": 3}) {
		t.Fatalf("got %#v", back)
	}
}
