package kdlt

import "github.com/reoring/kdlt/kdl"

// IssueAt creates an Issue pinned to the given span.
// This is a convenience helper to improve readability at call sites.
func IssueAt(span kdl.Span, code, msg string) Issue {
	return Issue{Span: span, Code: code, Message: msg}
}

// ErrIssues converts an arbitrary error into Issues, wrapping non-Issue
// errors as a single parse_error at the given span.
func ErrIssues(err error, span kdl.Span) Issues {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	return Issues{{Span: span, Code: CodeParseError, Message: err.Error(), Cause: err}}
}

// RebaseIssues prefixes every issue path with base (a "/name" segment),
// keeping "/" and "" rooted at base itself. Builders use it to re-anchor
// child issues under the parent field.
func RebaseIssues(base string, iss Issues) Issues {
	if base == "" || len(iss) == 0 {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out[i] = it
	}
	return out
}
