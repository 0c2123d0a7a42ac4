// Package kdl holds the primitive document tree consumed by the template
// engine and the type-directed builder: named nodes carrying positional and
// keyword entries plus optional children. Trees are immutable once parsed.
//
// The tree stores the textual representation of every token and the trivia
// (whitespace, comments) around it, never absolute offsets. Byte spans are
// recovered on demand through the Spanned* proxies in span.go, which walk
// preceding siblings and sum their sizes.
package kdl

// Ident is a node or entry name together with the exact source text that
// spelled it (bare, quoted or raw form).
type Ident struct {
	value string
	repr  string
}

// NewIdent returns an Ident with a canonical repr: bare when the value is a
// legal bare identifier, quoted otherwise.
func NewIdent(value string) Ident {
	return Ident{value: value, repr: identRepr(value)}
}

// NewIdentRepr returns an Ident with an explicit source representation.
// The parser uses this to preserve quoting.
func NewIdentRepr(value, repr string) Ident {
	return Ident{value: value, repr: repr}
}

// Value returns the identifier's meaning, with quoting resolved.
func (i Ident) Value() string { return i.value }

// Repr returns the identifier's exact source spelling.
func (i Ident) Repr() string { return i.repr }

// Entry is a single argument of a node: either positional (`value`) or
// named (`name=value`), optionally carrying a type annotation `(ty)`.
type Entry struct {
	leading string
	name    *Ident
	ty      *Ident
	value   Value
}

// NewArg returns a positional entry.
func NewArg(v Value) Entry { return Entry{leading: " ", value: v} }

// NewProp returns a named `name=value` entry.
func NewProp(name string, v Value) Entry {
	id := NewIdent(name)
	return Entry{leading: " ", name: &id, value: v}
}

// Name returns the entry name and whether the entry is named.
func (e Entry) Name() (string, bool) {
	if e.name == nil {
		return "", false
	}
	return e.name.Value(), true
}

// Type returns the entry's type annotation, if any.
func (e Entry) Type() (string, bool) {
	if e.ty == nil {
		return "", false
	}
	return e.ty.Value(), true
}

// Value returns the entry's literal value.
func (e Entry) Value() Value { return e.value }

// WithType returns a copy of the entry annotated with `(ty)`.
func (e Entry) WithType(ty string) Entry {
	id := NewIdent(ty)
	e.ty = &id
	return e
}

// Node is a named element with ordered entries and optional children.
type Node struct {
	leading        string
	ty             *Ident
	name           Ident
	entries        []Entry
	beforeChildren string
	children       *Document
	trailing       string
}

// NewNode returns a childless node with the given name and canonical repr.
func NewNode(name string) Node {
	return Node{name: NewIdent(name)}
}

// Name returns the node's name with quoting resolved.
func (n *Node) Name() string { return n.name.Value() }

// NameIdent returns the node's name identifier.
func (n *Node) NameIdent() Ident { return n.name }

// Type returns the node's type annotation, if any.
func (n *Node) Type() (string, bool) {
	if n.ty == nil {
		return "", false
	}
	return n.ty.Value(), true
}

// Entries returns the node's entries in source order. The slice is shared;
// callers must not mutate it.
func (n *Node) Entries() []Entry { return n.entries }

// Children returns the node's children document, or false when the node has
// no `{ ... }` block at all. An empty block yields an empty document, true.
func (n *Node) Children() (*Document, bool) {
	if n.children == nil {
		return nil, false
	}
	return n.children, true
}

// SetType annotates the node with `(ty)`.
func (n *Node) SetType(ty string) {
	id := NewIdent(ty)
	n.ty = &id
}

// AddEntry appends an entry.
func (n *Node) AddEntry(e Entry) { n.entries = append(n.entries, e) }

// AddChild appends a child node, creating the children block on first use.
// Synthesized children render inline: `parent { a 1; b 2; }`.
func (n *Node) AddChild(c Node) {
	if n.children == nil {
		n.beforeChildren = " "
		n.children = &Document{trailing: " "}
	}
	c.leading = " "
	c.trailing = ";"
	n.children.nodes = append(n.children.nodes, c)
}

// Document is an ordered sequence of nodes. The top-level document owns the
// whole parsed text; every children block is itself a Document.
type Document struct {
	nodes    []Node
	trailing string
}

// NewDocument returns an empty document.
func NewDocument() *Document { return &Document{} }

// Nodes returns the document's nodes in source order. The slice is shared;
// callers must not mutate it.
func (d *Document) Nodes() []Node { return d.nodes }

// NodeCount returns the number of nodes.
func (d *Document) NodeCount() int { return len(d.nodes) }

// AddNode appends a top-level node. Synthesized top-level nodes render one
// per line.
func (d *Document) AddNode(n Node) {
	n.trailing = "\n"
	d.nodes = append(d.nodes, n)
}

// identRepr picks a representation for a value: bare when possible.
func identRepr(value string) string {
	if isBareIdent(value) {
		return value
	}
	return quoteString(value)
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	switch s {
	case "true", "false", "null":
		return false
	}
	return true
}
