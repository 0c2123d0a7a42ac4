package kdl

import "strings"

// The writer reproduces the exact original text for parsed trees (reprs and
// trivia round-trip byte for byte) and canonical text for synthesized trees.

func (e Entry) writeTo(b *strings.Builder) {
	b.WriteString(e.leading)
	if e.name != nil {
		b.WriteString(e.name.repr)
		b.WriteByte('=')
	}
	if e.ty != nil {
		b.WriteByte('(')
		b.WriteString(e.ty.repr)
		b.WriteByte(')')
	}
	b.WriteString(e.value.repr)
}

func (n *Node) writeTo(b *strings.Builder) {
	b.WriteString(n.leading)
	if n.ty != nil {
		b.WriteByte('(')
		b.WriteString(n.ty.repr)
		b.WriteByte(')')
	}
	b.WriteString(n.name.repr)
	for i := range n.entries {
		n.entries[i].writeTo(b)
	}
	if n.children != nil {
		b.WriteString(n.beforeChildren)
		b.WriteByte('{')
		n.children.writeTo(b)
		b.WriteByte('}')
	}
	b.WriteString(n.trailing)
}

func (d *Document) writeTo(b *strings.Builder) {
	for i := range d.nodes {
		d.nodes[i].writeTo(b)
	}
	b.WriteString(d.trailing)
}

// String renders the node as document text.
func (n *Node) String() string {
	var b strings.Builder
	n.writeTo(&b)
	return b.String()
}

// String renders the document as text.
func (d *Document) String() string {
	var b strings.Builder
	d.writeTo(&b)
	return b.String()
}
