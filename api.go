package kdlt

import (
	"context"

	"github.com/reoring/kdlt/kdl"
)

// Span re-exports the byte-range type of the document tree so that callers
// handling Issues rarely need to import kdl directly.
type Span = kdl.Span

// ParseDocument turns raw text into the primitive node tree through the
// configured document driver. The result is best-effort: on syntax errors
// it carries whatever parsed cleanly alongside one parse_error per problem,
// so a single pass can surface several syntax mistakes.
func ParseDocument(ctx context.Context, src []byte, opts ...ParseOpt) Result[*kdl.Document] {
	_ = FirstOpt(opts) // reserved; parsing itself has no tunables today
	if err := ctx.Err(); err != nil {
		return Fail[*kdl.Document](Issue{Code: CodeParseError, Message: err.Error(), Cause: err})
	}
	doc, err := getDocumentDriver().Parse(src)
	iss := driverIssues(err)
	if doc == nil {
		return FailWith[*kdl.Document](iss)
	}
	return Partial(doc, iss)
}

// ParseString is ParseDocument over a string.
func ParseString(ctx context.Context, src string, opts ...ParseOpt) Result[*kdl.Document] {
	return ParseDocument(ctx, []byte(src), opts...)
}
