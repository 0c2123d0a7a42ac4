package kdl

// Byte-size arithmetic. Sizes are derived from reprs and trivia; fixed
// punctuation implied by structure is accounted here instead of being stored
// as text.
const (
	eqLen    = 1 // '=' between an entry name and its value
	parenLen = 2 // '(' ')' around a type annotation
	braceLen = 2 // '{' '}' around a children block
)

// Len returns the byte length of the identifier as spelled.
func (i Ident) Len() int { return len(i.repr) }

// Len returns the byte length of the literal as spelled.
func (v Value) Len() int { return len(v.repr) }

// Len returns the byte length of the entry including its leading trivia.
func (e Entry) Len() int {
	l := len(e.leading) + e.value.Len()
	if e.name != nil {
		l += e.name.Len() + eqLen
	}
	if e.ty != nil {
		l += e.ty.Len() + parenLen
	}
	return l
}

// Len returns the byte length of the node including leading and trailing
// trivia.
func (n *Node) Len() int {
	l := len(n.leading) + n.name.Len() + len(n.trailing)
	if n.ty != nil {
		l += n.ty.Len() + parenLen
	}
	for i := range n.entries {
		l += n.entries[i].Len()
	}
	if n.children != nil {
		l += len(n.beforeChildren) + braceLen + n.children.Len()
	}
	return l
}

// Len returns the byte length of the document: the sum of its nodes plus
// the trailing trivia.
func (d *Document) Len() int {
	l := len(d.trailing)
	for i := range d.nodes {
		l += d.nodes[i].Len()
	}
	return l
}
