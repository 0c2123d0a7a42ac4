package deser

import (
	"fmt"
	"strconv"
	"strings"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/shape"
	"github.com/reoring/kdlt/template"
)

// builder carries the registry and the recursion cap of one build.
type builder struct {
	reg   *shape.Registry
	depth int
	limit int
}

// field builds one effective field as the registered type named want.
// The field's own declaration is reconciled with want first; the chosen
// shape's wrapper chain is then tried innermost first, so a bare
// literal can satisfy a chain of single-field wrapper types.
func (b *builder) field(f template.Field, want string) kdlt.Result[shape.Dyn] {
	if b.depth >= b.limit {
		return kdlt.Fail[shape.Dyn](kdlt.Issue{
			Span:    f.Span(),
			Code:    kdlt.CodeDepthExceeded,
			Message: fmt.Sprintf("value nesting exceeds the depth limit of %d", b.limit),
		})
	}
	b.depth++
	defer func() { b.depth-- }()

	var s kdlt.Sink
	sh, ok := b.reconcile(f, want, &s)
	if !ok {
		return kdlt.SealFail[shape.Dyn](&s)
	}
	r := b.chainBuild(b.wrappers(sh), f)
	iss := append(append(kdlt.Issues{}, s.Issues()...), r.Issues()...)
	if !r.HasValue() {
		return kdlt.FailWith[shape.Dyn](iss)
	}
	return kdlt.Partial(r.Value(), iss)
}

// reconcile resolves the shape to build f as. When the field's own
// declaration and the caller's expectation both resolve and disagree,
// the declaration wins and the disagreement is recorded; the build
// aborts only when neither side names a registered type.
func (b *builder) reconcile(f template.Field, want string, s *kdlt.Sink) (shape.Shape, bool) {
	expected, expOK := b.reg.Lookup(want)
	declared := b.declared(f, s)
	if !expOK {
		s.Add(kdlt.Issue{
			Span:    f.Span(),
			Code:    kdlt.CodeUnknownType,
			Message: fmt.Sprintf("no registered type named %q", want),
			Hint:    didYouMean(want, b.reg.Names()),
		})
		if declared == nil {
			return nil, false
		}
		return declared, true
	}
	if declared == nil || declared == expected {
		return expected, true
	}
	s.Add(kdlt.Issue{
		Span:    f.Span(),
		Code:    kdlt.CodeInvalidType,
		Message: fmt.Sprintf("declared as %s where %s was expected", declared.TypeName(), expected.TypeName()),
		Params:  map[string]any{"declared": declared.TypeName(), "expected": expected.TypeName()},
	})
	return declared, true
}

// declared extracts the field's own type claim: an explicit tag, or for
// nodes a plain (undotted) name that resolves in the registry. Names
// are labels rather than assertions, so an unresolved name stays
// silent; a tag that resolves nowhere is recorded.
func (b *builder) declared(f template.Field, s *kdlt.Sink) shape.Shape {
	if tag, ok := f.TypeTag(); ok {
		if sh, ok := b.reg.Lookup(tag); ok {
			return sh
		}
		s.Add(kdlt.Issue{
			Span:    f.Span(),
			Code:    kdlt.CodeUnknownType,
			Message: fmt.Sprintf("no registered type named %q", tag),
			Hint:    didYouMean(tag, b.reg.Names()),
		})
		return nil
	}
	if f.IsNode() {
		if name, ok := f.Name(); ok && !strings.HasPrefix(name, ".") {
			if sh, ok := b.reg.Lookup(name); ok {
				return sh
			}
		}
	}
	return nil
}

// wrappers lists the chain of single-field wrapper types starting at
// sh, outermost first. The walk stops at the first non-wrapper, at an
// unregistered field type, and on cycles.
func (b *builder) wrappers(sh shape.Shape) []shape.Shape {
	chain := []shape.Shape{sh}
	seen := map[string]bool{sh.TypeName(): true}
	for {
		inner, ok := shape.Newtype(chain[len(chain)-1])
		if !ok {
			return chain
		}
		next, ok := b.reg.Lookup(inner.Type)
		if !ok || seen[next.TypeName()] {
			return chain
		}
		seen[next.TypeName()] = true
		chain = append(chain, next)
	}
}

// chainBuild tries the chain innermost first: a bare literal builds the
// innermost type and is wrapped back out; a field that fails at one
// level is retried as the next outer type. When every level fails, the
// innermost attempt's issues are kept, being the most specific.
func (b *builder) chainBuild(chain []shape.Shape, f template.Field) kdlt.Result[shape.Dyn] {
	r := b.buildAs(chain[len(chain)-1], f)
	innermost := r
	for i := len(chain) - 2; i >= 0; i-- {
		if r.HasValue() {
			r = rewrap(chain[i], r)
			continue
		}
		r = b.buildAs(chain[i], f)
	}
	if !r.HasValue() {
		return innermost
	}
	return r
}

// rewrap rebuilds one wrapper level around an inner value.
func rewrap(w shape.Shape, inner kdlt.Result[shape.Dyn]) kdlt.Result[shape.Dyn] {
	var value any
	switch w := w.(type) {
	case *shape.Struct:
		value = map[string]any{w.Fields[0].Name: inner.Value().Value}
	default:
		value = []any{inner.Value().Value}
	}
	return kdlt.Partial(shape.Dyn{Type: w.TypeName(), Value: value}, inner.Issues())
}

// buildAs builds f as one concrete shape.
func (b *builder) buildAs(sh shape.Shape, f template.Field) kdlt.Result[shape.Dyn] {
	switch sh := sh.(type) {
	case *shape.Primitive:
		return b.primitive(sh, f)
	case *shape.List:
		return b.list(sh, f)
	case *shape.Map:
		return b.mapped(sh, f)
	case shape.Fielded:
		return b.fielded(sh, f)
	default:
		return kdlt.Fail[shape.Dyn](kdlt.Issue{
			Span:    f.Span(),
			Code:    kdlt.CodeUnknownType,
			Message: fmt.Sprintf("cannot build values of %s", sh.TypeName()),
		})
	}
}

// keyKind classifies how a field addresses its slot.
type keyKind int

const (
	keyAnon keyKind = iota // bare value, or a node with a plain label
	keyPos                 // .N position marker
	keyName                // name=value, .name node, or .name=value
)

// fieldKey is a field's parsed address. label keeps a node's plain name
// for diagnostics even though it addresses nothing.
type fieldKey struct {
	kind  keyKind
	pos   int
	name  string
	label string
}

// keyOf parses how f addresses its slot. Entry names address fields
// directly; node names only do so in dotted form (.name, .N), a plain
// node name being a label, usually the value's type.
func keyOf(f template.Field) fieldKey {
	name, ok := f.Name()
	if !ok {
		return fieldKey{kind: keyAnon}
	}
	if rest, dotted := strings.CutPrefix(name, "."); dotted && rest != "" {
		if n, err := strconv.Atoi(rest); err == nil && n >= 0 {
			return fieldKey{kind: keyPos, pos: n}
		}
		return fieldKey{kind: keyName, name: rest}
	}
	if f.IsNode() {
		return fieldKey{kind: keyAnon, label: name}
	}
	return fieldKey{kind: keyName, name: name}
}

// anonymous reports whether the node declares its fields anonymously,
// decided by its first field. Field-less nodes count as anonymous.
func anonymous(fields []template.Field) bool {
	if len(fields) == 0 {
		return true
	}
	return keyOf(fields[0]).kind == keyAnon
}

// fielded builds a struct, tuple or tuple-struct.
func (b *builder) fielded(sh shape.Fielded, f template.Field) kdlt.Result[shape.Dyn] {
	node, ok := f.Node()
	if !ok {
		return kdlt.Fail[shape.Dyn](mismatchIssue(sh, f))
	}
	decl := sh.FieldList()

	var s kdlt.Sink
	fields := node.Fields(&s)
	filled := make([]bool, len(decl))
	values := make([]any, len(decl))
	has := make([]bool, len(decl))

	if anonymous(fields) {
		next := 0
		for _, fld := range fields {
			if keyOf(fld).kind != keyAnon {
				s.Add(kdlt.Issue{
					Span:    fld.Span(),
					Code:    kdlt.CodeBadArgument,
					Message: fmt.Sprintf("named field in an anonymous declaration of %s", sh.TypeName()),
					Hint:    "name every field or none",
				})
				continue
			}
			if next >= len(decl) {
				s.Add(kdlt.Issue{
					Span:    fld.Span(),
					Code:    kdlt.CodeArity,
					Message: fmt.Sprintf("%s has %d fields, this value is extra", sh.TypeName(), len(decl)),
					Hint:    "remove the extra values",
				})
				continue
			}
			idx := next
			next++
			filled[idx] = true
			b.fill(decl, idx, fld, values, has, &s)
		}
	} else {
		for _, fld := range fields {
			idx, ok := b.slotOf(sh, decl, fld, &s)
			if !ok {
				continue
			}
			if filled[idx] {
				s.Add(kdlt.Issue{
					Span:    fld.Span(),
					Code:    kdlt.CodeDuplicateKey,
					Message: fmt.Sprintf("%s is set more than once on %s", describeField(decl, idx), sh.TypeName()),
					Hint:    "the first value wins; remove the others",
				})
				continue
			}
			filled[idx] = true
			b.fill(decl, idx, fld, values, has, &s)
		}
	}

	if missing := missingFields(decl, filled); len(missing) > 0 {
		label := "fields"
		if len(missing) == 1 {
			label = "field"
		}
		s.Add(kdlt.Issue{
			Span:    node.Span(),
			Code:    kdlt.CodeRequired,
			Message: fmt.Sprintf("missing %s %s in %s", label, strings.Join(missing, ", "), sh.TypeName()),
			Hint:    "every field of the type must be declared",
			Params:  map[string]any{"missing": missing},
		})
	}

	if sh.Kind() == shape.KindStruct {
		m := make(map[string]any, len(decl))
		for i, fd := range decl {
			if has[i] {
				m[fd.Name] = values[i]
			}
		}
		return kdlt.Seal(&s, shape.Dyn{Type: sh.TypeName(), Value: m})
	}
	return kdlt.Seal(&s, shape.Dyn{Type: sh.TypeName(), Value: values})
}

// fill builds the declared field idx from fld and stores the result.
func (b *builder) fill(decl []shape.Field, idx int, fld template.Field, values []any, has []bool, s *kdlt.Sink) {
	r := b.field(fld, decl[idx].Type)
	s.Extend(kdlt.RebaseIssues("/"+segment(decl, idx), r.Issues()))
	if r.HasValue() {
		values[idx] = r.Value().Value
		has[idx] = true
	}
}

// slotOf resolves a by-field key against the declared fields.
func (b *builder) slotOf(sh shape.Fielded, decl []shape.Field, fld template.Field, s *kdlt.Sink) (int, bool) {
	key := keyOf(fld)
	switch key.kind {
	case keyPos:
		if key.pos >= len(decl) {
			s.Add(kdlt.Issue{
				Span:    fld.Span(),
				Code:    kdlt.CodeUnknownKey,
				Message: fmt.Sprintf("%s has no field at position %d", sh.TypeName(), key.pos),
			})
			return 0, false
		}
		return key.pos, true
	case keyName:
		for i, fd := range decl {
			if fd.Name == key.name {
				return i, true
			}
		}
		if sh.Kind() != shape.KindStruct {
			s.Add(kdlt.Issue{
				Span:    fld.Span(),
				Code:    kdlt.CodeBadArgument,
				Message: fmt.Sprintf("%s has positional fields only", sh.TypeName()),
				Hint:    "address them with .0, .1, ... markers",
			})
			return 0, false
		}
		s.Add(kdlt.Issue{
			Span:    fld.Span(),
			Code:    kdlt.CodeUnknownKey,
			Message: fmt.Sprintf("%q is not a field of %s", key.name, sh.TypeName()),
			Hint:    didYouMean(key.name, fieldNames(decl)),
		})
		return 0, false
	default:
		msg := fmt.Sprintf("unnamed value in a by-field declaration of %s", sh.TypeName())
		hint := "write name=value, or a .N position marker"
		if key.label != "" {
			msg = fmt.Sprintf("%q does not address a field of %s", key.label, sh.TypeName())
			hint = fmt.Sprintf("write .%s to address the field by name", key.label)
		}
		s.Add(kdlt.Issue{
			Span:    fld.Span(),
			Code:    kdlt.CodeBadArgument,
			Message: msg,
			Hint:    hint,
		})
		return 0, false
	}
}

// list builds a homogeneous sequence. Lists only accept the anonymous
// declaration style.
func (b *builder) list(sh *shape.List, f template.Field) kdlt.Result[shape.Dyn] {
	node, ok := f.Node()
	if !ok {
		return kdlt.Fail[shape.Dyn](mismatchIssue(sh, f))
	}
	var s kdlt.Sink
	fields := node.Fields(&s)
	if !anonymous(fields) {
		s.Add(kdlt.Issue{
			Span:    node.Span(),
			Code:    kdlt.CodeNamedListItem,
			Message: fmt.Sprintf("%s cannot use a named declaration", sh.TypeName()),
			Hint:    "write bare values instead of name=value",
		})
		return kdlt.SealFail[shape.Dyn](&s)
	}
	out := make([]any, 0, len(fields))
	for _, fld := range fields {
		if keyOf(fld).kind != keyAnon {
			s.Add(kdlt.Issue{
				Span:    fld.Span(),
				Code:    kdlt.CodeNamedListItem,
				Message: "list items cannot be named",
			})
			continue
		}
		r := b.field(fld, sh.Elem)
		s.Extend(kdlt.RebaseIssues("/"+strconv.Itoa(len(out)), r.Issues()))
		if r.HasValue() {
			out = append(out, r.Value().Value)
		}
	}
	return kdlt.Seal(&s, shape.Dyn{Type: sh.TypeName(), Value: out})
}

// mapped builds a string-keyed map: key=value style when the first
// field is named, pair style (two-value child nodes) when it is not.
func (b *builder) mapped(sh *shape.Map, f template.Field) kdlt.Result[shape.Dyn] {
	node, ok := f.Node()
	if !ok {
		return kdlt.Fail[shape.Dyn](mismatchIssue(sh, f))
	}
	var s kdlt.Sink
	fields := node.Fields(&s)
	out := make(map[string]any, len(fields))
	if anonymous(fields) && len(fields) > 0 {
		b.pairMap(sh, fields, out, &s)
	} else {
		b.keyedMap(sh, fields, out, &s)
	}
	return kdlt.Seal(&s, shape.Dyn{Type: sh.TypeName(), Value: out})
}

// keyedMap reads name=value entries and .name child nodes.
func (b *builder) keyedMap(sh *shape.Map, fields []template.Field, out map[string]any, s *kdlt.Sink) {
	seen := make(map[string]bool, len(fields))
	for _, fld := range fields {
		key := keyOf(fld)
		switch key.kind {
		case keyName:
		case keyPos:
			s.Add(kdlt.Issue{
				Span:    fld.Span(),
				Code:    kdlt.CodeBadArgument,
				Message: fmt.Sprintf("%s is keyed by name, not position", sh.TypeName()),
			})
			continue
		default:
			s.Add(kdlt.Issue{
				Span:    fld.Span(),
				Code:    kdlt.CodeUnnamedMapItem,
				Message: fmt.Sprintf("entries of %s must be named", sh.TypeName()),
				Hint:    "write key=value, or declare the whole map as two-value pairs",
			})
			continue
		}
		if seen[key.name] {
			s.Add(kdlt.Issue{
				Span:    fld.Span(),
				Code:    kdlt.CodeDuplicateKey,
				Message: fmt.Sprintf("key %q is set more than once", key.name),
				Hint:    "the first value wins; remove the others",
			})
			continue
		}
		seen[key.name] = true
		r := b.field(fld, sh.Value)
		s.Extend(kdlt.RebaseIssues("/"+key.name, r.Issues()))
		if r.HasValue() {
			out[key.name] = r.Value().Value
		}
	}
}

// pairMap reads child nodes carrying exactly two bare values, the
// string key and the value.
func (b *builder) pairMap(sh *shape.Map, fields []template.Field, out map[string]any, s *kdlt.Sink) {
	seen := make(map[string]bool, len(fields))
	for _, fld := range fields {
		if keyOf(fld).kind != keyAnon {
			s.Add(kdlt.Issue{
				Span:    fld.Span(),
				Code:    kdlt.CodeBadArgument,
				Message: fmt.Sprintf("named entry in a pair-style declaration of %s", sh.TypeName()),
				Hint:    "declare the whole map as key=value, or as pairs",
			})
			continue
		}
		pair, ok := fld.Node()
		if !ok {
			s.Add(kdlt.Issue{
				Span:    fld.Span(),
				Code:    kdlt.CodeArity,
				Message: "a map pair needs two values, the key and the value",
			})
			continue
		}
		items := pair.Fields(s)
		if len(items) != 2 {
			s.Add(kdlt.Issue{
				Span:    pair.Span(),
				Code:    kdlt.CodeArity,
				Message: fmt.Sprintf("a map pair needs exactly two values, got %d", len(items)),
			})
			continue
		}
		if keyOf(items[0]).kind != keyAnon || keyOf(items[1]).kind != keyAnon {
			s.Add(kdlt.Issue{
				Span:    pair.Span(),
				Code:    kdlt.CodeBadArgument,
				Message: "pair values cannot be named",
			})
			continue
		}
		kv, kspan, bare := items[0].Bare()
		if !bare {
			s.Add(kdlt.Issue{
				Span:    items[0].Span(),
				Code:    kdlt.CodeInvalidType,
				Message: "map keys must be bare strings",
			})
			continue
		}
		key, isStr := kv.AsString()
		if !isStr {
			s.Add(kdlt.Issue{
				Span:    kspan,
				Code:    kdlt.CodeInvalidType,
				Message: fmt.Sprintf("map keys must be strings, got %s", kv),
			})
			continue
		}
		if seen[key] {
			s.Add(kdlt.Issue{
				Span:    pair.Span(),
				Code:    kdlt.CodeDuplicateKey,
				Message: fmt.Sprintf("key %q is set more than once", key),
				Hint:    "the first value wins; remove the others",
			})
			continue
		}
		seen[key] = true
		r := b.field(items[1], sh.Value)
		s.Extend(kdlt.RebaseIssues("/"+key, r.Issues()))
		if r.HasValue() {
			out[key] = r.Value().Value
		}
	}
}

// mismatchIssue reports a bare literal where a compound type was
// expected.
func mismatchIssue(sh shape.Shape, f template.Field) kdlt.Issue {
	v, span, _ := f.Bare()
	return kdlt.Issue{
		Span:    span,
		Code:    kdlt.CodeInvalidType,
		Message: fmt.Sprintf("expected %s, got %s", sh.TypeName(), v),
	}
}

// segment names a declared field for issue paths.
func segment(decl []shape.Field, idx int) string {
	if decl[idx].Name != "" {
		return decl[idx].Name
	}
	return strconv.Itoa(idx)
}

// describeField renders a declared field for messages.
func describeField(decl []shape.Field, idx int) string {
	if decl[idx].Name != "" {
		return fmt.Sprintf("field %q", decl[idx].Name)
	}
	return fmt.Sprintf("field .%d", idx)
}

// missingFields lists the declared fields a node never filled.
func missingFields(decl []shape.Field, filled []bool) []string {
	var out []string
	for i, fd := range decl {
		if filled[i] {
			continue
		}
		if fd.Name != "" {
			out = append(out, fd.Name)
		} else {
			out = append(out, "."+strconv.Itoa(i))
		}
	}
	return out
}
