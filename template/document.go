// Package template implements the macro layer of the document language:
// named, parameterized node fragments declared by earlier nodes and
// invoked by later ones, with lexical scoping, default arguments and
// document splicing.
//
// A document is read as a left-to-right fold: every top-level node except
// the last declares a template and pushes one binding onto an immutable
// scope chain; the last node is the document's body (or an export table
// when named export). Bodies are never expanded eagerly. ReadDocument
// hands back a NodeThunk, a lazy view that substitutes parameters and
// expands invocations only as its fields are walked.
package template

import (
	"context"
	"fmt"
	"strings"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/kdl"
)

// Document is what a template file evaluates to: a root node thunk, or an
// export table when the file ends in an export node.
type Document struct {
	root  *NodeThunk
	table *Exports
}

// IsExports reports whether the document exports bindings instead of
// producing a node.
func (d Document) IsExports() bool { return d.table != nil }

// Root returns the document's root thunk.
func (d Document) Root() (NodeThunk, bool) {
	if d.root == nil {
		return NodeThunk{}, false
	}
	return *d.root, true
}

// Exports returns the document's export table.
func (d Document) Exports() (*Exports, bool) { return d.table, d.table != nil }

// ReadOpt adjusts how a document is read.
type ReadOpt struct {
	// Exports supplies other documents' export tables, keyed by the file
	// name import paths refer to.
	Exports map[string]*Exports
	// MaxDepth caps template expansion depth; 0 means the default.
	MaxDepth int
}

func firstOpt(opts []ReadOpt) ReadOpt {
	if len(opts) > 0 {
		return opts[0]
	}
	return ReadOpt{}
}

// ReadDocument folds a parsed document into a scope chain and returns its
// body as a lazy thunk, or its export table. All declaration problems are
// reported together; a document without a body node is the one fatal case.
func ReadDocument(doc *kdl.Document, opts ...ReadOpt) kdlt.Result[Document] {
	opt := firstOpt(opts)
	limit := opt.MaxDepth
	if limit <= 0 {
		limit = kdlt.DefaultMaxDepth
	}
	var s kdlt.Sink

	nodes := kdl.Spanned(doc).Nodes()
	var scope Scope
	idx := 0
	if len(nodes) > 0 && nodes[0].Node().Name() == "import" {
		scope.imports = readImports(nodes[0], opt.Exports, &s)
		idx = 1
	}
	if idx >= len(nodes) {
		s.Add(kdlt.IssueAt(kdl.Span{Offset: 0, Size: uint32(doc.Len())},
			kdlt.CodeEmptyDocument, "document has no body node"))
		return kdlt.SealFail[Document](&s)
	}

	for _, n := range nodes[idx : len(nodes)-1] {
		scope = scope.push(newBinding(n, scope, &s))
	}

	last := nodes[len(nodes)-1]
	if last.Node().Name() == "export" {
		table := scope.export(readRenames(last, &s), &s)
		return kdlt.Seal(&s, Document{table: table})
	}
	root := expandFully(NodeThunk{
		body: last,
		ctx:  Context{scope: scope, args: noArgs, limit: limit},
	}, &s)
	return kdlt.Seal(&s, Document{root: &root})
}

// ReadSource parses and reads in one step, merging parse and template
// issues into a single report, parse issues first.
func ReadSource(ctx context.Context, src []byte, opts ...ReadOpt) kdlt.Result[Document] {
	parsed := kdlt.ParseDocument(ctx, src)
	if !parsed.HasValue() {
		return kdlt.FailWith[Document](parsed.Issues())
	}
	read := ReadDocument(parsed.Value(), opts...)
	iss := kdlt.AppendIssues(append(kdlt.Issues{}, parsed.Issues()...), read.Issues()...)
	if !read.HasValue() {
		return kdlt.FailWith[Document](iss)
	}
	return kdlt.Partial(read.Value(), iss)
}

// readImports resolves the import node's local="file/name" fields against
// the supplied export tables, in field order. The path splits on its last
// slash: everything before names the exporting file, the rest the binding.
func readImports(n kdl.SpannedNode, available map[string]*Exports, s *kdlt.Sink) []*Binding {
	var out []*Binding
	for _, item := range importItems(n, s) {
		slash := strings.LastIndex(item.path, "/")
		if slash < 0 {
			s.Add(kdlt.IssueAt(item.span, kdlt.CodeUnknownImport,
				fmt.Sprintf("import path %q must look like file/name", item.path)))
			continue
		}
		file, external := item.path[:slash], item.path[slash+1:]
		table, ok := available[file]
		if !ok {
			s.Add(kdlt.IssueAt(item.span, kdlt.CodeUnknownImport,
				fmt.Sprintf("no exports available for %q", file)))
			continue
		}
		b, ok := table.Get(external)
		if !ok {
			s.Add(kdlt.IssueAt(item.span, kdlt.CodeUnknownImport,
				fmt.Sprintf("%q exports nothing named %q", file, external)))
			continue
		}
		out = append(out, &Binding{name: item.local, scope: b.scope, decl: b.decl})
	}
	return out
}

type importItem struct {
	local string
	path  string
	span  kdl.Span
}

// importItems reads the import node's entries and leaf children. A named
// entry local="file/name" imports under the local name; a bare "file/name"
// argument imports under the exported name itself.
func importItems(n kdl.SpannedNode, s *kdlt.Sink) []importItem {
	var out []importItem
	for _, se := range n.Entries() {
		e := se.Entry()
		path, isStr := e.Value().AsString()
		if !isStr {
			s.Add(kdlt.IssueAt(se.Span(), kdlt.CodeUnknownImport,
				"import entries must look like local=\"file/name\" or \"file/name\""))
			continue
		}
		local, named := e.Name()
		if !named {
			local = path[strings.LastIndex(path, "/")+1:]
		}
		out = append(out, importItem{local: local, path: path, span: se.Span()})
	}
	if children, ok := n.Children(); ok {
		for _, sn := range children.Nodes() {
			node := sn.Node()
			entries := sn.Entries()
			if len(node.Entries()) != 1 {
				s.Add(kdlt.IssueAt(sn.Span(), kdlt.CodeUnknownImport,
					"import children must look like local \"file/name\""))
				continue
			}
			path, isStr := entries[0].Entry().Value().AsString()
			if _, named := entries[0].Entry().Name(); named || !isStr {
				s.Add(kdlt.IssueAt(sn.Span(), kdlt.CodeUnknownImport,
					"import children must look like local \"file/name\""))
				continue
			}
			out = append(out, importItem{local: node.Name(), path: path, span: sn.Span()})
		}
	}
	return out
}

// readRenames reads the export node's entries and leaf children. A named
// entry internal="external" renames on the way out; a bare "name" argument
// exports under the internal name unchanged.
func readRenames(n kdl.SpannedNode, s *kdlt.Sink) []rename {
	var out []rename
	for _, se := range n.Entries() {
		e := se.Entry()
		to, isStr := e.Value().AsString()
		if !isStr {
			s.Add(kdlt.IssueAt(se.Span(), kdlt.CodeUnknownExport,
				"export entries must look like internal=\"external\" or \"name\""))
			continue
		}
		from, named := e.Name()
		if !named {
			from = to
		}
		out = append(out, rename{from: from, to: to, span: se.Span()})
	}
	if children, ok := n.Children(); ok {
		for _, sn := range children.Nodes() {
			node := sn.Node()
			entries := sn.Entries()
			if len(node.Entries()) != 1 {
				s.Add(kdlt.IssueAt(sn.Span(), kdlt.CodeUnknownExport,
					"export children must look like internal \"external\""))
				continue
			}
			to, isStr := entries[0].Entry().Value().AsString()
			if _, named := entries[0].Entry().Name(); named || !isStr {
				s.Add(kdlt.IssueAt(sn.Span(), kdlt.CodeUnknownExport,
					"export children must look like internal \"external\""))
				continue
			}
			out = append(out, rename{from: node.Name(), to: to, span: sn.Span()})
		}
	}
	return out
}

// RequiredImports lists the "file/name" paths a document's import node
// asks for, so a loader can fetch and read those files first.
func RequiredImports(doc *kdl.Document) []string {
	nodes := kdl.Spanned(doc).Nodes()
	if len(nodes) == 0 || nodes[0].Node().Name() != "import" {
		return nil
	}
	var discard kdlt.Sink
	items := importItems(nodes[0], &discard)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.path)
	}
	return out
}

// Expand is the all-in-one convenience: parse, read, expand and
// materialize the document's root node.
func Expand(ctx context.Context, src []byte, opts ...ReadOpt) kdlt.Result[kdl.Node] {
	read := ReadSource(ctx, src, opts...)
	if !read.HasValue() {
		return kdlt.FailWith[kdl.Node](read.Issues())
	}
	root, ok := read.Value().Root()
	if !ok {
		iss := kdlt.AppendIssues(read.Issues(), kdlt.Issue{
			Code:    kdlt.CodeBadExpand,
			Message: "document exports bindings instead of producing a node",
		})
		return kdlt.FailWith[kdl.Node](iss)
	}
	var s kdlt.Sink
	s.Extend(read.Issues())
	node := root.Materialize(&s)
	return kdlt.Seal(&s, node)
}
