package kdl

// Span is a half-open byte range into the original source text.
type Span struct {
	Offset uint32
	Size   uint32
}

func span(off, size int) Span { return Span{Offset: uint32(off), Size: uint32(size)} }

// End returns the exclusive end offset.
func (s Span) End() uint32 { return s.Offset + s.Size }

// SpannedDocument pairs a document with the absolute byte offset of its
// first byte. Offsets of everything inside are computed on demand by
// summing the sizes of preceding siblings; nothing is stored.
type SpannedDocument struct {
	doc *Document
	off int
}

// Spanned wraps a parsed top-level document, rooted at offset zero.
func Spanned(doc *Document) SpannedDocument { return SpannedDocument{doc: doc} }

// Document returns the underlying document.
func (d SpannedDocument) Document() *Document { return d.doc }

// Span covers the document's whole text.
func (d SpannedDocument) Span() Span { return span(d.off, d.doc.Len()) }

// Nodes returns the document's nodes paired with their absolute offsets.
func (d SpannedDocument) Nodes() []SpannedNode {
	out := make([]SpannedNode, len(d.doc.nodes))
	off := d.off
	for i := range d.doc.nodes {
		out[i] = SpannedNode{node: &d.doc.nodes[i], off: off}
		off += d.doc.nodes[i].Len()
	}
	return out
}

// SpannedNode pairs a node with the absolute offset of its first byte
// (which is the start of its leading trivia).
type SpannedNode struct {
	node *Node
	off  int
}

// Node returns the underlying node.
func (n SpannedNode) Node() *Node { return n.node }

func (n SpannedNode) contentOff() int { return n.off + len(n.node.leading) }

// Span covers the node's visible text, from type annotation or name through
// the end of its last entry or children block, trivia excluded.
func (n SpannedNode) Span() Span {
	size := n.node.Len() - len(n.node.leading) - len(n.node.trailing)
	return span(n.contentOff(), size)
}

// NameSpan covers the node's name.
func (n SpannedNode) NameSpan() Span {
	off := n.contentOff()
	if n.node.ty != nil {
		off += n.node.ty.Len() + parenLen
	}
	return span(off, n.node.name.Len())
}

// TypeSpan covers the node's type annotation name, inside the parentheses.
func (n SpannedNode) TypeSpan() (Span, bool) {
	if n.node.ty == nil {
		return Span{}, false
	}
	return span(n.contentOff()+1, n.node.ty.Len()), true
}

func (n SpannedNode) entriesOff() int {
	off := n.contentOff()
	if n.node.ty != nil {
		off += n.node.ty.Len() + parenLen
	}
	return off + n.node.name.Len()
}

// Entries returns the node's entries paired with their absolute offsets.
func (n SpannedNode) Entries() []SpannedEntry {
	out := make([]SpannedEntry, len(n.node.entries))
	off := n.entriesOff()
	for i := range n.node.entries {
		out[i] = SpannedEntry{entry: n.node.entries[i], off: off}
		off += n.node.entries[i].Len()
	}
	return out
}

// Children returns the children document rooted just after the opening
// brace, when the node has a children block.
func (n SpannedNode) Children() (SpannedDocument, bool) {
	if n.node.children == nil {
		return SpannedDocument{}, false
	}
	off := n.entriesOff()
	for i := range n.node.entries {
		off += n.node.entries[i].Len()
	}
	off += len(n.node.beforeChildren) + 1
	return SpannedDocument{doc: n.node.children, off: off}, true
}

// SpannedEntry pairs an entry with the absolute offset of its first byte.
type SpannedEntry struct {
	entry Entry
	off   int
}

// Entry returns the underlying entry.
func (e SpannedEntry) Entry() Entry { return e.entry }

func (e SpannedEntry) contentOff() int { return e.off + len(e.entry.leading) }

// Span covers the entry's visible text, leading trivia excluded.
func (e SpannedEntry) Span() Span {
	return span(e.contentOff(), e.entry.Len()-len(e.entry.leading))
}

// NameSpan covers the entry's name, when the entry is named.
func (e SpannedEntry) NameSpan() (Span, bool) {
	if e.entry.name == nil {
		return Span{}, false
	}
	return span(e.contentOff(), e.entry.name.Len()), true
}

// TypeSpan covers the entry's type annotation name, when present.
func (e SpannedEntry) TypeSpan() (Span, bool) {
	if e.entry.ty == nil {
		return Span{}, false
	}
	off := e.contentOff()
	if e.entry.name != nil {
		off += e.entry.name.Len() + eqLen
	}
	return span(off+1, e.entry.ty.Len()), true
}

// ValueSpan covers the entry's literal value.
func (e SpannedEntry) ValueSpan() Span {
	off := e.contentOff()
	if e.entry.name != nil {
		off += e.entry.name.Len() + eqLen
	}
	if e.entry.ty != nil {
		off += e.entry.ty.Len() + parenLen
	}
	return span(off, e.entry.value.Len())
}
