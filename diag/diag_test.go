package diag_test

import (
	"context"
	"strings"
	"testing"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/deser"
	"github.com/reoring/kdlt/diag"
	"github.com/reoring/kdlt/i18n"
	"github.com/reoring/kdlt/kdl"
	"github.com/reoring/kdlt/shape"
)

func TestRenderOverflowEndToEnd(t *testing.T) {
	src := []byte("width 300\n")
	r := deser.DocumentResult(context.Background(), shape.NewRegistry(), "u8", src)
	got := diag.Render(src, r.Issues())
	want := "width 300\n" +
		"      ^^^\n" +
		"at 6: value out of range: 300 does not fit in u8\n" +
		"  hint: u8 holds 0 to 255\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderBlocks(t *testing.T) {
	src := []byte("a 1\nb 2\n")
	iss := kdlt.Issues{
		{
			Span:    kdl.Span{Offset: 2, Size: 1},
			Code:    kdlt.CodeInvalidType,
			Message: "expected string, got int(1)",
			Path:    "/k",
		},
		{
			Span:    kdl.Span{Offset: 4, Size: 3},
			Code:    kdlt.CodeRequired,
			Message: "missing field c in T",
			Hint:    "every field of the type must be declared",
		},
	}
	got := diag.Render(src, iss)
	want := "a 1\n" +
		"  ^\n" +
		"at 2 (/k): invalid type: expected string, got int(1)\n" +
		"\n" +
		"b 2\n" +
		"^^^\n" +
		"at 4: required field missing: missing field c in T\n" +
		"  hint: every field of the type must be declared\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderKeepsTabs(t *testing.T) {
	src := []byte("\tb 2\n")
	iss := kdlt.Issues{{
		Span:    kdl.Span{Offset: 1, Size: 1},
		Code:    kdlt.CodeUnknownKey,
		Message: "no such field",
	}}
	got := diag.Render(src, iss)
	want := "\tb 2\n" +
		"\t^\n" +
		"at 1: unknown key: no such field\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderSpanPastLineEnd(t *testing.T) {
	src := []byte("ab\ncd\n")
	iss := kdlt.Issues{{
		Span:    kdl.Span{Offset: 0, Size: 5},
		Code:    kdlt.CodeParseError,
		Message: "went too far",
	}}
	got := diag.Render(src, iss)
	want := "ab\n" +
		"^^\n" +
		"at 0: parse error: went too far\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderTranslatedLabel(t *testing.T) {
	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	iss := kdlt.Issues{{
		Span:    kdl.Span{Offset: 0, Size: 1},
		Code:    kdlt.CodeOverflow,
		Message: "300 does not fit in u8",
	}}
	got := diag.Render([]byte("x\n"), iss)
	if !strings.Contains(got, "値が範囲外です") {
		t.Fatalf("got %q", got)
	}
}

func TestStyledCarriesMessage(t *testing.T) {
	iss := kdlt.Issues{{
		Span:    kdl.Span{Offset: 0, Size: 1},
		Code:    kdlt.CodeArity,
		Message: "too many values",
		Hint:    "remove the extra values",
	}}
	got := diag.NewRenderer(diag.Options{Color: true}).Render([]byte("x\n"), iss)
	if !strings.Contains(got, "too many values") || !strings.Contains(got, "remove the extra values") {
		t.Fatalf("got %q", got)
	}
}
