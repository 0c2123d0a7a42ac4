package deser_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/reoring/kdlt/deser"
	"github.com/reoring/kdlt/shape"
)

type server struct {
	Host string           `kdl:"host"`
	Port uint16           `kdl:"port"`
	Tags []string         `kdl:"tags"`
	Caps map[string]uint8 `kdl:"caps"`
}

func TestIntoStruct(t *testing.T) {
	reg := shape.NewRegistry()
	shape.MustRegister[server](reg)
	src := "server host=\"db1\" port=5432 { .tags \"a\" \"b\"; .caps read=1 write=2; }\n"
	d, err := deser.Document(context.Background(), reg, "server", []byte(src))
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	got, err := deser.Into[server](d)
	if err != nil {
		t.Fatalf("Into: %v", err)
	}
	want := server{
		Host: "db1",
		Port: 5432,
		Tags: []string{"a", "b"},
		Caps: map[string]uint8{"read": 1, "write": 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
}

func TestIntoPositionalStruct(t *testing.T) {
	type point struct{ X, Y float64 }
	d, err := deser.Document(context.Background(), testRegistry(t), "Point", []byte("origin 3.0 4.0\n"))
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	got, err := deser.Into[point](d)
	if err != nil {
		t.Fatalf("Into: %v", err)
	}
	if got != (point{X: 3, Y: 4}) {
		t.Fatalf("got %#v", got)
	}
}

func TestIntoUnfilledSlotKeepsZero(t *testing.T) {
	got, err := deser.Into[server](shape.Dyn{Type: "server", Value: map[string]any{"host": "a"}})
	if err != nil {
		t.Fatalf("Into: %v", err)
	}
	if got.Host != "a" || got.Port != 0 || got.Tags != nil {
		t.Fatalf("got %#v", got)
	}
}

func TestIntoKindMismatch(t *testing.T) {
	if _, err := deser.Into[int](shape.Dyn{Type: "string", Value: "x"}); err == nil {
		t.Fatal("want an error")
	}
}
