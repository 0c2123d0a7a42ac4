package template

import (
	"fmt"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/kdl"
)

// Context is the environment one expansion runs in: the lexical scope for
// further template lookups and the argument bindings of the current
// declaration. Contexts are immutable; expansion layers new ones on top.
type Context struct {
	scope Scope
	args  *arguments
	depth int
	limit int
}

// arguments maps the current declaration's parameter names to what the
// invocation (or the defaults) bound to them.
type arguments struct {
	values map[string]kdl.Value
	nodes  map[string]NodeThunk
	lists  map[string][]NodeThunk
}

// noArgs is shared by every context outside a template body.
var noArgs = &arguments{}

// substValue replaces a string value naming a bound value parameter.
func (a *arguments) substValue(v kdl.Value) kdl.Value {
	key, ok := v.AsString()
	if !ok {
		return v
	}
	if bound, ok := a.values[key]; ok {
		return bound
	}
	return v
}

// substName replaces an identifier naming a value parameter bound to a
// string; anything else passes through.
func (a *arguments) substName(name string) string {
	if bound, ok := a.values[name]; ok {
		if s, ok := bound.AsString(); ok {
			return s
		}
	}
	return name
}

func (a *arguments) node(name string) (NodeThunk, bool) {
	t, ok := a.nodes[name]
	return t, ok
}

func (a *arguments) list(name string) ([]NodeThunk, bool) {
	l, ok := a.lists[name]
	return l, ok
}

// NodeThunk pairs a node with the context it is seen through. Every
// accessor answers with the effective, post-substitution view; nothing is
// computed before it is asked for.
type NodeThunk struct {
	body kdl.SpannedNode
	ctx  Context
}

// Name is the node's effective name.
func (t NodeThunk) Name() string { return t.ctx.args.substName(t.body.Node().Name()) }

// NameSpan covers the name as written in the source.
func (t NodeThunk) NameSpan() kdl.Span { return t.body.NameSpan() }

// TypeTag is the node's declared type annotation, when present.
func (t NodeThunk) TypeTag() (string, bool) { return t.body.Node().Type() }

// TypeSpan covers the type annotation.
func (t NodeThunk) TypeSpan() (kdl.Span, bool) { return t.body.TypeSpan() }

// Span covers the node's visible text.
func (t NodeThunk) Span() kdl.Span { return t.body.Span() }

// Bare reports the node's value when it is a plain leaf: exactly one
// unnamed entry and no children.
func (t NodeThunk) Bare() (kdl.Value, kdl.Span, bool) {
	node := t.body.Node()
	if _, hasKids := node.Children(); hasKids || len(node.Entries()) != 1 {
		return kdl.Value{}, kdl.Span{}, false
	}
	entry := t.body.Entries()[0]
	if _, named := entry.Entry().Name(); named {
		return kdl.Value{}, kdl.Span{}, false
	}
	return t.ctx.args.substValue(entry.Entry().Value()), entry.ValueSpan(), true
}

// Entries returns the node's entries seen through the context.
func (t NodeThunk) Entries() []EntryThunk {
	spanned := t.body.Entries()
	out := make([]EntryThunk, len(spanned))
	for i, se := range spanned {
		out[i] = EntryThunk{entry: se, ctx: t.ctx}
	}
	return out
}

// rawChildren wraps the child nodes without testing them for expansion.
// Invocation arguments are captured this way: they expand, if at all, when
// the body walks them.
func (t NodeThunk) rawChildren() []NodeThunk {
	children, ok := t.body.Children()
	if !ok {
		return nil
	}
	spanned := children.Nodes()
	out := make([]NodeThunk, len(spanned))
	for i, sn := range spanned {
		out[i] = NodeThunk{body: sn, ctx: t.ctx}
	}
	return out
}

// Children yields the node's effective children: expand nodes are spliced,
// bare references to node arguments are substituted, invocations of
// in-scope templates are expanded, and everything else passes through.
func (t NodeThunk) Children(s *kdlt.Sink) []NodeThunk {
	children, ok := t.body.Children()
	if !ok {
		return nil
	}
	var out []NodeThunk
	for _, sn := range children.Nodes() {
		child := NodeThunk{body: sn, ctx: t.ctx}
		if sn.Node().Name() == "expand" {
			out = append(out, t.splice(child, s)...)
			continue
		}
		if sub, ok := child.shadowed(); ok {
			out = append(out, expandFully(sub, s))
			continue
		}
		out = append(out, expandFully(child, s))
	}
	return out
}

// shadowed resolves a bare reference (no entries, no children) to a node
// argument of the same name. Argument lookup runs before scope lookup so a
// parameter can share a visible template's name without re-triggering it.
func (t NodeThunk) shadowed() (NodeThunk, bool) {
	node := t.body.Node()
	if len(node.Entries()) != 0 {
		return NodeThunk{}, false
	}
	if _, hasKids := node.Children(); hasKids {
		return NodeThunk{}, false
	}
	return t.ctx.args.node(t.Name())
}

// splice resolves an `expand name` node against the node-list or node
// argument bound to name and returns the nodes to splice in place.
func (t NodeThunk) splice(ref NodeThunk, s *kdlt.Sink) []NodeThunk {
	entries := ref.body.Entries()
	if len(entries) != 1 {
		s.Add(kdlt.Issue{
			Span:    ref.Span(),
			Code:    kdlt.CodeBadExpand,
			Message: "expand takes exactly one argument, the parameter to splice",
		})
		return nil
	}
	e := entries[0].Entry()
	if _, named := e.Name(); named {
		s.Add(kdlt.Issue{
			Span:    entries[0].Span(),
			Code:    kdlt.CodeBadExpand,
			Message: "expand argument cannot be named",
		})
		return nil
	}
	name, ok := e.Value().AsString()
	if !ok {
		s.Add(kdlt.Issue{
			Span:    entries[0].ValueSpan(),
			Code:    kdlt.CodeBadExpand,
			Message: fmt.Sprintf("expand needs a parameter name, got %s", e.Value()),
		})
		return nil
	}
	if lst, ok := t.ctx.args.list(name); ok {
		out := make([]NodeThunk, 0, len(lst))
		for _, item := range lst {
			out = append(out, expandFully(item, s))
		}
		return out
	}
	if nd, ok := t.ctx.args.node(name); ok {
		return []NodeThunk{expandFully(nd, s)}
	}
	s.Add(kdlt.Issue{
		Span:    entries[0].ValueSpan(),
		Code:    kdlt.CodeBadExpand,
		Message: fmt.Sprintf("%q is not an expandable parameter here", name),
	})
	return nil
}

// expandFully tests a thunk against its scope and keeps expanding while
// the result is itself an invocation, up to the context's depth limit.
func expandFully(t NodeThunk, s *kdlt.Sink) NodeThunk {
	for {
		b, ok := t.ctx.scope.resolve(t.Name())
		if !ok {
			return t
		}
		if t.ctx.depth >= t.ctx.limit {
			s.Add(kdlt.Issue{
				Span:    t.Span(),
				Code:    kdlt.CodeDepthExceeded,
				Message: fmt.Sprintf("expansion of %q exceeds the depth limit of %d", t.Name(), t.ctx.limit),
			})
			return t
		}
		t = b.decl.call(t, b.scope, s)
	}
}

// Materialize builds the concrete node this thunk stands for, expanding
// every template reachable from it. Problems found on the way are recorded
// on the sink; the returned node is best effort.
func (t NodeThunk) Materialize(s *kdlt.Sink) kdl.Node {
	n := kdl.NewNode(t.Name())
	if ty, ok := t.TypeTag(); ok {
		n.SetType(ty)
	}
	for _, e := range t.Entries() {
		var entry kdl.Entry
		if name, named := e.Name(); named {
			entry = kdl.NewProp(name, e.Value())
		} else {
			entry = kdl.NewArg(e.Value())
		}
		if ty, ok := e.TypeTag(); ok {
			entry = entry.WithType(ty)
		}
		n.AddEntry(entry)
	}
	for _, c := range t.Children(s) {
		n.AddChild(c.Materialize(s))
	}
	return n
}

// String renders the materialized node, discarding any issues. Meant for
// diagnostics and tests; use Materialize to keep the issues.
func (t NodeThunk) String() string {
	var s kdlt.Sink
	n := t.Materialize(&s)
	return n.String()
}

// EntryThunk is one entry seen through a context: names and string values
// that match a bound value parameter are substituted.
type EntryThunk struct {
	entry kdl.SpannedEntry
	ctx   Context
}

// Name is the entry's effective name, when the entry is named.
func (e EntryThunk) Name() (string, bool) {
	name, ok := e.entry.Entry().Name()
	if !ok {
		return "", false
	}
	return e.ctx.args.substName(name), true
}

// NameSpan covers the name as written.
func (e EntryThunk) NameSpan() (kdl.Span, bool) { return e.entry.NameSpan() }

// TypeTag is the entry's type annotation, when present.
func (e EntryThunk) TypeTag() (string, bool) { return e.entry.Entry().Type() }

// Value is the entry's effective value.
func (e EntryThunk) Value() kdl.Value { return e.ctx.args.substValue(e.entry.Entry().Value()) }

// ValueSpan covers the literal value as written.
func (e EntryThunk) ValueSpan() kdl.Span { return e.entry.ValueSpan() }

// Span covers the whole entry.
func (e EntryThunk) Span() kdl.Span { return e.entry.Span() }

// Field is one effective field of a thunk: a nested node or a bare entry.
// The type-directed builder walks these without caring which it got.
type Field struct {
	isNode bool
	node   NodeThunk
	entry  EntryThunk
}

// IsNode reports whether the field is a nested node.
func (f Field) IsNode() bool { return f.isNode }

// Node returns the nested node thunk.
func (f Field) Node() (NodeThunk, bool) { return f.node, f.isNode }

// Entry returns the entry thunk.
func (f Field) Entry() (EntryThunk, bool) { return f.entry, !f.isNode }

// Name is the field's effective name: the property name for entries (absent
// for positional ones), the node name for nodes.
func (f Field) Name() (string, bool) {
	if f.isNode {
		return f.node.Name(), true
	}
	return f.entry.Name()
}

// NameSpan covers the field name as written.
func (f Field) NameSpan() (kdl.Span, bool) {
	if f.isNode {
		return f.node.NameSpan(), true
	}
	return f.entry.NameSpan()
}

// TypeTag is the field's type annotation, when present.
func (f Field) TypeTag() (string, bool) {
	if f.isNode {
		return f.node.TypeTag()
	}
	return f.entry.TypeTag()
}

// Span covers the field.
func (f Field) Span() kdl.Span {
	if f.isNode {
		return f.node.Span()
	}
	return f.entry.Span()
}

// Bare reports the field's primitive value: an entry's value directly, or
// a node's value when the node is a plain leaf.
func (f Field) Bare() (kdl.Value, kdl.Span, bool) {
	if f.isNode {
		return f.node.Bare()
	}
	return f.entry.Value(), f.entry.ValueSpan(), true
}

// NodeField wraps a node thunk as a field. The type-directed builder
// starts from one of these at the document root.
func NodeField(t NodeThunk) Field { return Field{isNode: true, node: t} }

// Fields lists the thunk's effective fields: entries first, then children,
// in source order.
func (t NodeThunk) Fields(s *kdlt.Sink) []Field {
	entries := t.Entries()
	children := t.Children(s)
	out := make([]Field, 0, len(entries)+len(children))
	for _, e := range entries {
		out = append(out, Field{entry: e})
	}
	for _, c := range children {
		out = append(out, Field{isNode: true, node: c})
	}
	return out
}
