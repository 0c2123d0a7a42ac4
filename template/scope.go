package template

import (
	"sort"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/kdl"
)

// Binding is one link in the scope chain: a template name, the scope that
// was visible at its declaration site, and the parsed declaration. A
// malformed declaration keeps its Binding so later lookups still see the
// name, but with a nil declaration that never expands.
type Binding struct {
	name  string
	scope Scope
	decl  *Declaration
}

// Name reports the name invocations are matched against.
func (b *Binding) Name() string { return b.name }

// newBinding parses one declaration node into a Binding. Declaration
// problems are recorded on the sink and degrade the binding to name-only.
func newBinding(n kdl.SpannedNode, scope Scope, s *kdlt.Sink) *Binding {
	name, decl := parseDeclaration(n, s)
	return &Binding{name: name, scope: scope, decl: decl}
}

// Scope is an immutable chain of bindings, innermost first. Pushing never
// copies: many scopes share a tail. Imported bindings sit past the local
// chain and are searched last, in import order.
type Scope struct {
	local   *Binding
	imports []*Binding
}

func (s Scope) push(b *Binding) Scope { return Scope{local: b, imports: s.imports} }

// walk visits bindings innermost first, then imports. fn returning false
// stops the walk.
func (s Scope) walk(fn func(*Binding) bool) {
	for b := s.local; b != nil; b = b.scope.local {
		if !fn(b) {
			return
		}
	}
	for _, b := range s.imports {
		if !fn(b) {
			return
		}
	}
}

// resolve finds the innermost binding for name that has a usable
// declaration. Name-only bindings are passed over so an outer declaration
// of the same name can still match.
func (s Scope) resolve(name string) (*Binding, bool) {
	var found *Binding
	s.walk(func(b *Binding) bool {
		if b.name == name && b.decl != nil {
			found = b
			return false
		}
		return true
	})
	return found, found != nil
}

// Exports is the public face of a document that ends in an export node:
// a table from external names to bindings.
type Exports struct {
	bindings []*Binding
}

// Get returns the binding exported under name.
func (e *Exports) Get(name string) (*Binding, bool) {
	for _, b := range e.bindings {
		if b.name == name {
			return b, true
		}
	}
	return nil, false
}

// Names lists the exported names, sorted.
func (e *Exports) Names() []string {
	out := make([]string, 0, len(e.bindings))
	for _, b := range e.bindings {
		out = append(out, b.name)
	}
	sort.Strings(out)
	return out
}

// export renames the selected bindings of s into an export table. renames
// maps internal binding names to external ones; every internal name must
// resolve to a binding in scope.
func (s Scope) export(renames []rename, sink *kdlt.Sink) *Exports {
	out := &Exports{}
	for _, r := range renames {
		var found *Binding
		s.walk(func(b *Binding) bool {
			if b.name == r.from {
				found = b
				return false
			}
			return true
		})
		if found == nil {
			sink.Add(kdlt.Issue{
				Span:    r.span,
				Code:    kdlt.CodeUnknownExport,
				Message: "export of " + r.from + " which is not declared",
			})
			continue
		}
		out.bindings = append(out.bindings, &Binding{name: r.to, scope: found.scope, decl: found.decl})
	}
	return out
}

type rename struct {
	from string
	to   string
	span kdl.Span
}
