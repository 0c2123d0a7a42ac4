// Package deser builds typed dynamic values out of expanded document
// nodes. Given a registry of shapes and the name of the type a node is
// supposed to hold, it walks the node's effective fields (entries first,
// then children) and produces a shape.Dyn, accumulating one issue per
// problem instead of stopping at the first.
//
// A node declares its fields in one of two styles, decided by its first
// field: anonymous (bare values filling the declared fields in order) or
// by-field (name=value entries, .name child nodes and .N position
// markers, in any order). Single-field wrapper types are transparent: a
// bare literal satisfies an arbitrarily deep chain of them.
package deser

import (
	"context"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/shape"
	"github.com/reoring/kdlt/template"
)

// Opt adjusts the all-in-one Document entry point.
type Opt struct {
	// Exports supplies other documents' export tables for imports.
	Exports map[string]*template.Exports
	// MaxDepth caps template expansion and build recursion; 0 means the
	// default.
	MaxDepth int
}

func firstOpt(opts []Opt) Opt {
	if len(opts) > 0 {
		return opts[0]
	}
	return Opt{}
}

// Node builds the value of the registered type named expected out of a
// node thunk. The value is best effort: it is returned alongside the
// error whenever enough of the node made sense.
func Node(ctx context.Context, reg *shape.Registry, expected string, root template.NodeThunk, opts ...kdlt.ParseOpt) (shape.Dyn, error) {
	return NodeResult(ctx, reg, expected, root, opts...).Unwrap()
}

// NodeResult is Node keeping the full Result carrier.
func NodeResult(ctx context.Context, reg *shape.Registry, expected string, root template.NodeThunk, opts ...kdlt.ParseOpt) kdlt.Result[shape.Dyn] {
	if err := ctx.Err(); err != nil {
		return kdlt.Fail[shape.Dyn](kdlt.Issue{Code: kdlt.CodeParseError, Message: err.Error(), Cause: err})
	}
	b := &builder{reg: reg, limit: kdlt.FirstOpt(opts).EffectiveMaxDepth()}
	r := b.field(template.NodeField(root), expected)
	if r.HasValue() {
		return kdlt.Partial(r.Value(), rootIssues(r.Issues()))
	}
	return kdlt.FailWith[shape.Dyn](rootIssues(r.Issues()))
}

// Document is the all-in-one entry point: parse src, expand its
// templates and build the body node as the registered type named
// expected. Parse, template and build issues merge into a single
// report, in that order.
func Document(ctx context.Context, reg *shape.Registry, expected string, src []byte, opts ...Opt) (shape.Dyn, error) {
	return DocumentResult(ctx, reg, expected, src, opts...).Unwrap()
}

// DocumentResult is Document keeping the full Result carrier.
func DocumentResult(ctx context.Context, reg *shape.Registry, expected string, src []byte, opts ...Opt) kdlt.Result[shape.Dyn] {
	opt := firstOpt(opts)
	read := template.ReadSource(ctx, src, template.ReadOpt{Exports: opt.Exports, MaxDepth: opt.MaxDepth})
	if !read.HasValue() {
		return kdlt.FailWith[shape.Dyn](read.Issues())
	}
	root, ok := read.Value().Root()
	if !ok {
		iss := kdlt.AppendIssues(read.Issues(), kdlt.Issue{
			Code:    kdlt.CodeBadExpand,
			Message: "document exports bindings instead of producing a node",
		})
		return kdlt.FailWith[shape.Dyn](iss)
	}
	r := NodeResult(ctx, reg, expected, root, kdlt.ParseOpt{MaxDepth: opt.MaxDepth})
	iss := kdlt.AppendIssues(append(kdlt.Issues{}, read.Issues()...), r.Issues()...)
	if !r.HasValue() {
		return kdlt.FailWith[shape.Dyn](iss)
	}
	return kdlt.Partial(r.Value(), iss)
}

// rootIssues anchors issues recorded against the root node itself at the
// root path.
func rootIssues(iss kdlt.Issues) kdlt.Issues {
	out := append(kdlt.Issues{}, iss...)
	for i := range out {
		if out[i].Path == "" {
			out[i].Path = "/"
		}
	}
	return out
}
