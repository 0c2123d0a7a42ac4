package kdl

// Construction surface for document drivers. A driver that adapts an
// external parser assembles trees through these functions, handing over the
// exact source text of every token and the trivia between tokens so that the
// size invariant holds: the Len of a document equals the byte length of the
// text it was parsed from.

// MakeEntry assembles an entry with explicit trivia. leading is the
// whitespace before the entry; name and ty may be nil.
func MakeEntry(leading string, name, ty *Ident, v Value) Entry {
	return Entry{leading: leading, name: name, ty: ty, value: v}
}

// MakeNode assembles a node with explicit trivia. leading covers whitespace
// and comments before the node (including the slash-dash of a following
// commented-out element when the driver chooses to attribute it here);
// beforeChildren is the gap between the last entry and the children brace;
// trailing covers the terminator and the rest of the line.
func MakeNode(leading string, ty *Ident, name Ident, entries []Entry, beforeChildren string, children *Document, trailing string) Node {
	return Node{
		leading:        leading,
		ty:             ty,
		name:           name,
		entries:        entries,
		beforeChildren: beforeChildren,
		children:       children,
		trailing:       trailing,
	}
}

// MakeDocument assembles a document. trailing is the trivia after the last
// node (the whole text for a document with no nodes).
func MakeDocument(nodes []Node, trailing string) *Document {
	return &Document{nodes: nodes, trailing: trailing}
}
