package kdlt_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/reoring/kdlt/deser"
	"github.com/reoring/kdlt/shape"
	"github.com/reoring/kdlt/template"
)

// ---- Inputs ----

// flatDoc is a wide document with no templates: n leaf children under one
// root node.
func flatDoc(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString("root {\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "    widget \"w%d\" %d\n", i, i)
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

// templatedDoc produces the same tree through n invocations of one
// two-parameter template.
func templatedDoc(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString("fn item label weight { widget label weight }\n")
	buf.WriteString("root {\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "    item \"w%d\" %d\n", i, i)
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

// numbersDoc is a single node carrying n bare integer values.
func numbersDoc(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString("nums")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, " %d", i%200)
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

func expandOrFatal(b *testing.B, src []byte) {
	b.Helper()
	out := template.Expand(context.Background(), src)
	if iss := out.Issues(); len(iss) != 0 {
		b.Fatalf("expand reported issues: %v", iss)
	}
}

// ---- Expansion ----

func Benchmark_Expand_Flat_100(b *testing.B) {
	src := flatDoc(100)
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		expandOrFatal(b, src)
	}
}

func Benchmark_Expand_Templated_100(b *testing.B) {
	src := templatedDoc(100)
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		expandOrFatal(b, src)
	}
}

func Benchmark_Expand_Templated_2000(b *testing.B) {
	src := templatedDoc(2000)
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		expandOrFatal(b, src)
	}
}

// ---- Schema-directed build ----

func Benchmark_Document_List_1000(b *testing.B) {
	ctx := context.Background()
	reg := shape.NewRegistry()
	reg.MustAdd(&shape.List{Name: "nums", Elem: "u8"})
	src := numbersDoc(1000)
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		if _, err := deser.Document(ctx, reg, "nums", src); err != nil {
			b.Fatalf("build failed: %v", err)
		}
	}
}

func Benchmark_Document_Struct_Templated(b *testing.B) {
	ctx := context.Background()
	reg := shape.NewRegistry()
	reg.MustAdd(&shape.Struct{Name: "Widget", Fields: []shape.Field{
		{Name: "label", Type: "string"},
		{Name: "weight", Type: "u32"},
	}})
	src := []byte("fn w l wt { Widget label=l weight=wt }\nw \"w0\" 7\n")
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		if _, err := deser.Document(ctx, reg, "Widget", src); err != nil {
			b.Fatalf("build failed: %v", err)
		}
	}
}
