package kdlt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/kdlt/kdl"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeParseError     = "parse_error"
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeDuplicateKey   = "duplicate_key"
	CodeOverflow       = "overflow"
	CodeUnknownType    = "unknown_type"
	CodeArity          = "arity"
	CodeNamedListItem  = "named_list_item"
	CodeUnnamedMapItem = "unnamed_map_item"
	// Template engine
	CodeBadDeclaration = "bad_declaration"
	CodeBadArgument    = "bad_argument"
	CodeBadExpand      = "bad_expand"
	CodeUnknownImport  = "unknown_import"
	CodeUnknownExport  = "unknown_export"
	CodeDepthExceeded  = "depth_exceeded"
	CodeEmptyDocument  = "empty_document"
)

// Issue represents a single problem found in a document.
type Issue struct {
	Path    string   // Field path inside the value being built (for example: /config/width).
	Span    kdl.Span // Byte range of the offending source text.
	Code    string   // One of the codes listed above.
	Message string
	Hint    string // Optional: suggestions, representable bounds, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":-128, "max":127, "got":300})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of problems that implements error. Order matches
// the document order of first detection.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Path != "" {
			fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		} else {
			fmt.Fprintf(b, "%s at byte %d", it.Code, it.Span.Offset)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
