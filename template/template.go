package template

import (
	"fmt"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/kdl"
)

// Parameter is one formal parameter of a declaration. A default is either
// a value (from a name=value entry) or a node (from a non-final child of
// the declaring node); a parameter with neither can also receive the
// invocation's leftover children as a spliceable node list.
type Parameter struct {
	name     string
	nameSpan kdl.Span
	defValue *kdl.Value
	defNode  *kdl.SpannedNode
}

func (p Parameter) bare() bool { return p.defValue == nil && p.defNode == nil }

// Declaration is a parsed template: formal parameters plus exactly one
// body node, the last child of the declaring node.
type Declaration struct {
	body   kdl.SpannedNode
	params []Parameter
}

func (d *Declaration) param(name string) *Parameter {
	for i := range d.params {
		if d.params[i].name == name {
			return &d.params[i]
		}
	}
	return nil
}

// parseDeclaration reads a declaration node. Two spellings are accepted:
//
//	fn NAME param* { ... body }
//	NAME param* { ... body }
//
// The declared name comes from the first argument in the fn spelling and
// from the node name otherwise. Problems are recorded and the declaration
// degrades to nil so the binding stays name-only.
func parseDeclaration(n kdl.SpannedNode, s *kdlt.Sink) (string, *Declaration) {
	node := n.Node()
	name := node.Name()
	entries := n.Entries()

	if name == "fn" {
		if len(entries) > 0 {
			first := entries[0].Entry()
			if _, named := first.Name(); !named {
				if tplName, ok := first.Value().AsString(); ok {
					name = tplName
					entries = entries[1:]
				}
			}
		}
		if name == "fn" {
			s.Add(kdlt.Issue{
				Span:    n.NameSpan(),
				Code:    kdlt.CodeBadDeclaration,
				Message: "fn declaration needs a template name as first argument",
			})
		}
	}

	var params []Parameter
	seen := map[string]kdl.Span{}
	addParam := func(p Parameter) {
		if prev, dup := seen[p.name]; dup {
			s.Add(kdlt.Issue{
				Span:    p.nameSpan,
				Code:    kdlt.CodeBadDeclaration,
				Message: fmt.Sprintf("parameter %q already declared at byte %d", p.name, prev.Offset),
			})
			return
		}
		seen[p.name] = p.nameSpan
		params = append(params, p)
	}

	for _, se := range entries {
		e := se.Entry()
		if pname, named := e.Name(); named {
			v := e.Value()
			span, _ := se.NameSpan()
			addParam(Parameter{name: pname, nameSpan: span, defValue: &v})
			continue
		}
		pname, ok := e.Value().AsString()
		if !ok {
			s.Add(kdlt.Issue{
				Span:    se.ValueSpan(),
				Code:    kdlt.CodeBadDeclaration,
				Message: fmt.Sprintf("parameter name must be a string, got %s", e.Value()),
			})
			continue
		}
		addParam(Parameter{name: pname, nameSpan: se.ValueSpan()})
	}

	children, ok := n.Children()
	var kids []kdl.SpannedNode
	if ok {
		kids = children.Nodes()
	}
	if len(kids) == 0 {
		s.Add(kdlt.Issue{
			Span:    n.Span(),
			Code:    kdlt.CodeBadDeclaration,
			Message: fmt.Sprintf("declaration of %q has no body; the last child is the body", name),
		})
		return name, nil
	}
	for _, kid := range kids[:len(kids)-1] {
		kid := kid
		addParam(Parameter{name: kid.Node().Name(), nameSpan: kid.NameSpan(), defNode: &kid})
	}
	return name, &Declaration{body: kids[len(kids)-1], params: params}
}

// call binds an invocation to the declaration and yields the body thunk.
// Explicit arguments override defaults; node defaults are evaluated in the
// declaring scope, argument nodes in the calling one. Leftover invocation
// children land on the first unbound default-less parameter as a node list
// for expand splicing.
func (d *Declaration) call(inv NodeThunk, declScope Scope, s *kdlt.Sink) NodeThunk {
	args := &arguments{
		values: map[string]kdl.Value{},
		nodes:  map[string]NodeThunk{},
		lists:  map[string][]NodeThunk{},
	}
	defCtx := Context{scope: declScope, args: noArgs, depth: inv.ctx.depth, limit: inv.ctx.limit}
	for _, p := range d.params {
		switch {
		case p.defValue != nil:
			args.values[p.name] = *p.defValue
		case p.defNode != nil:
			args.nodes[p.name] = NodeThunk{body: *p.defNode, ctx: defCtx}
		}
	}

	bound := map[string]bool{}
	bindValue := func(name string, v kdl.Value) {
		args.values[name] = v
		delete(args.nodes, name)
		bound[name] = true
	}

	pos := 0
	for _, e := range inv.Entries() {
		if name, named := e.Name(); named {
			if d.param(name) == nil {
				s.Add(kdlt.Issue{
					Span:    e.Span(),
					Code:    kdlt.CodeBadArgument,
					Message: fmt.Sprintf("no parameter %q to bind", name),
				})
				continue
			}
			bindValue(name, e.Value())
			continue
		}
		for pos < len(d.params) && bound[d.params[pos].name] {
			pos++
		}
		if pos >= len(d.params) {
			s.Add(kdlt.Issue{
				Span:    e.Span(),
				Code:    kdlt.CodeBadArgument,
				Message: fmt.Sprintf("too many arguments: the template takes %d", len(d.params)),
			})
			continue
		}
		bindValue(d.params[pos].name, e.Value())
		pos++
	}

	var rest []NodeThunk
	for _, c := range inv.rawChildren() {
		name := c.Name()
		if p := d.param(name); p != nil && !bound[name] {
			args.nodes[name] = c
			delete(args.values, name)
			bound[name] = true
			continue
		}
		rest = append(rest, c)
	}
	if len(rest) > 0 {
		restParam := ""
		for _, p := range d.params {
			if p.bare() && !bound[p.name] {
				restParam = p.name
				break
			}
		}
		if restParam != "" {
			args.lists[restParam] = rest
		} else {
			for _, c := range rest {
				s.Add(kdlt.Issue{
					Span:    c.Span(),
					Code:    kdlt.CodeBadArgument,
					Message: fmt.Sprintf("no parameter accepts the extra child %q", c.Name()),
				})
			}
		}
	}

	return NodeThunk{
		body: d.body,
		ctx:  Context{scope: declScope, args: args, depth: inv.ctx.depth + 1, limit: inv.ctx.limit},
	}
}
