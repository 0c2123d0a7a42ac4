package template_test

import (
	"context"
	"strings"
	"testing"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/template"
)

func expand(t *testing.T, src string, opts ...template.ReadOpt) (string, kdlt.Issues) {
	t.Helper()
	res := template.Expand(context.Background(), []byte(src), opts...)
	if !res.HasValue() {
		t.Fatalf("Expand(%q) produced no value: %v", src, res.Issues())
	}
	n := res.Value()
	return n.String(), res.Issues()
}

func expandClean(t *testing.T, src string, opts ...template.ReadOpt) string {
	t.Helper()
	out, iss := expand(t, src, opts...)
	if len(iss) != 0 {
		t.Fatalf("Expand(%q) reported issues: %v", src, iss)
	}
	return out
}

func TestGreetDefaults(t *testing.T) {
	got := expandClean(t, "fn greet name=\"world\" { Msg name }\ngreet\n")
	if got != `Msg "world"` {
		t.Fatalf("got %q", got)
	}
	got = expandClean(t, "fn greet name=\"world\" { Msg name }\ngreet name=\"Bob\"\n")
	if got != `Msg "Bob"` {
		t.Fatalf("got %q", got)
	}
}

func TestBareDeclarationForm(t *testing.T) {
	got := expandClean(t, "greet name=\"world\" { Msg name }\ngreet\n")
	if got != `Msg "world"` {
		t.Fatalf("got %q", got)
	}
}

func TestPositionalArgument(t *testing.T) {
	got := expandClean(t, "fn greet name { Msg name }\ngreet \"Bob\"\n")
	if got != `Msg "Bob"` {
		t.Fatalf("got %q", got)
	}
}

func TestParameterSubstitutesEntryName(t *testing.T) {
	got := expandClean(t, "fn kv key { Item key=1 }\nkv key=\"color\"\n")
	if got != `Item color=1` {
		t.Fatalf("got %q", got)
	}
}

func TestDeclarationOrderVisibility(t *testing.T) {
	src := "early { tpl; }\nfn tpl { Msg 1 }\nroot { early; tpl; }\n"
	got := expandClean(t, src)
	// early's body was declared before tpl existed, so its tpl reference
	// passes through; the later direct use expands.
	want := `root { tpl; Msg 1; }`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExpandSplicesRestChildren(t *testing.T) {
	src := "fn wrap items { Box { expand items } }\nwrap { a 1; b 2; }\n"
	got := expandClean(t, src)
	want := `Box { a 1; b 2; }`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNodeArgument(t *testing.T) {
	src := "fn card msg { Panel { msg; } }\ncard { msg { Text \"hi\"; } }\n"
	got := expandClean(t, src)
	want := `Panel { msg { Text "hi"; } }`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestArgumentNodesSeeCallSiteScope(t *testing.T) {
	src := strings.Join([]string{
		"fn inner { Msg \"from-inner\" }",
		"fn outer slot { Panel { slot; } }",
		"outer { slot { inner; } }",
	}, "\n") + "\n"
	got := expandClean(t, src)
	want := `Panel { slot { Msg "from-inner"; } }`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDefaultNodesSeeDefiningScope(t *testing.T) {
	src := strings.Join([]string{
		"fn helper { Msg \"early\" }",
		"fn box { slot { helper; } Panel { slot; } }",
		"helper { Msg \"late\" }",
		"box",
	}, "\n") + "\n"
	got := expandClean(t, src)
	// box's slot default captures the scope at box's declaration, where
	// helper still meant the early one.
	want := `Panel { slot { Msg "early"; } }`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExportImport(t *testing.T) {
	lib := "fn greet name=\"world\" { Msg name }\nexport greet=\"hello\"\n"
	parsed := kdlt.ParseString(context.Background(), lib)
	if !parsed.HasValue() {
		t.Fatalf("parse: %v", parsed.Issues())
	}
	read := template.ReadDocument(parsed.Value())
	if !read.HasValue() || len(read.Issues()) != 0 {
		t.Fatalf("read lib: %v", read.Issues())
	}
	table, ok := read.Value().Exports()
	if !ok {
		t.Fatalf("lib should export bindings")
	}
	if names := table.Names(); len(names) != 1 || names[0] != "hello" {
		t.Fatalf("export names = %v", names)
	}

	main := "import greet2=\"lib/hello\"\ngreet2 name=\"Bob\"\n"
	got := expandClean(t, main, template.ReadOpt{Exports: map[string]*template.Exports{"lib": table}})
	if got != `Msg "Bob"` {
		t.Fatalf("got %q", got)
	}
}

func TestExportImportSameName(t *testing.T) {
	lib := "fn greet name=\"world\" { Msg name }\nexport greet\n"
	parsed := kdlt.ParseString(context.Background(), lib)
	if !parsed.HasValue() {
		t.Fatalf("parse: %v", parsed.Issues())
	}
	read := template.ReadDocument(parsed.Value())
	if !read.HasValue() || len(read.Issues()) != 0 {
		t.Fatalf("read lib: %v", read.Issues())
	}
	table, ok := read.Value().Exports()
	if !ok {
		t.Fatalf("lib should export bindings")
	}
	if names := table.Names(); len(names) != 1 || names[0] != "greet" {
		t.Fatalf("export names = %v", names)
	}

	main := "import \"lib/greet\"\ngreet\n"
	got := expandClean(t, main, template.ReadOpt{Exports: map[string]*template.Exports{"lib": table}})
	if got != `Msg "world"` {
		t.Fatalf("got %q", got)
	}
}

func TestUnknownImportReported(t *testing.T) {
	main := "import x=\"lib/nope\"\nMsg 1\n"
	res := template.Expand(context.Background(), []byte(main))
	if !res.HasValue() {
		t.Fatalf("expected best-effort value")
	}
	iss := res.Issues()
	if len(iss) != 1 || iss[0].Code != kdlt.CodeUnknownImport {
		t.Fatalf("issues = %v", iss)
	}
}

func TestRequiredImports(t *testing.T) {
	src := "import a=\"lib/x\" b=\"other/y\"\nMsg 1\n"
	parsed := kdlt.ParseString(context.Background(), src)
	got := template.RequiredImports(parsed.Value())
	if len(got) != 2 || got[0] != "lib/x" || got[1] != "other/y" {
		t.Fatalf("RequiredImports = %v", got)
	}
}

func TestEmptyDocumentIsFatal(t *testing.T) {
	for _, src := range []string{"", "// nothing here\n"} {
		res := template.ReadSource(context.Background(), []byte(src))
		if res.HasValue() {
			t.Fatalf("ReadSource(%q) should fail", src)
		}
		iss := res.Issues()
		if len(iss) != 1 || iss[0].Code != kdlt.CodeEmptyDocument {
			t.Fatalf("issues = %v", iss)
		}
	}
}

func TestMalformedDeclarationStaysInert(t *testing.T) {
	src := "fn broken\nroot { broken; }\n"
	out, iss := expand(t, src)
	if out != `root { broken; }` {
		t.Fatalf("got %q", out)
	}
	if len(iss) != 1 || iss[0].Code != kdlt.CodeBadDeclaration {
		t.Fatalf("issues = %v", iss)
	}
}

func TestDepthLimit(t *testing.T) {
	src := strings.Join([]string{
		"fn a { Msg 1 }",
		"fn b { a }",
		"fn c { b }",
		"fn d { c }",
		"d",
	}, "\n") + "\n"

	got := expandClean(t, src, template.ReadOpt{MaxDepth: 10})
	if got != `Msg 1` {
		t.Fatalf("got %q", got)
	}

	res := template.Expand(context.Background(), []byte(src), template.ReadOpt{MaxDepth: 3})
	if !res.HasValue() {
		t.Fatalf("expected best-effort value")
	}
	iss := res.Issues()
	if len(iss) != 1 || iss[0].Code != kdlt.CodeDepthExceeded {
		t.Fatalf("issues = %v", iss)
	}
}

func TestBadArgumentReported(t *testing.T) {
	src := "fn greet name { Msg name }\ngreet oops=\"x\"\n"
	out, iss := expand(t, src)
	if out != `Msg name` {
		t.Fatalf("got %q", out)
	}
	if len(iss) != 1 || iss[0].Code != kdlt.CodeBadArgument {
		t.Fatalf("issues = %v", iss)
	}
}

func TestTemplateInvokingTemplate(t *testing.T) {
	src := strings.Join([]string{
		"fn item name { Entry name }",
		"fn menu { List { item name=\"a\"; item name=\"b\"; } }",
		"menu",
	}, "\n") + "\n"
	got := expandClean(t, src)
	want := `List { Entry "a"; Entry "b"; }`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
