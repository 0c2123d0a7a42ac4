package deser

import (
	"fmt"
	"strings"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/kdl"
	"github.com/reoring/kdlt/shape"
	"github.com/reoring/kdlt/template"
)

// primitive builds a leaf value. A field carrying a bare literal
// converts directly; a node must hold exactly one unnamed value.
func (b *builder) primitive(sh *shape.Primitive, f template.Field) kdlt.Result[shape.Dyn] {
	if v, span, ok := f.Bare(); ok {
		return convert(sh.Prim, v, span)
	}
	node, ok := f.Node()
	if !ok {
		return kdlt.Fail[shape.Dyn](mismatchIssue(sh, f))
	}
	var s kdlt.Sink
	fields := node.Fields(&s)
	pick := -1
	for i, fld := range fields {
		if keyOf(fld).kind != keyAnon {
			continue
		}
		if _, _, ok := fld.Bare(); ok {
			pick = i
			break
		}
	}
	if len(fields) != 1 || pick != 0 {
		s.Add(kdlt.Issue{
			Span:    node.Span(),
			Code:    kdlt.CodeArity,
			Message: fmt.Sprintf("%s expects a single unnamed value", sh.TypeName()),
			Params:  map[string]any{"got": len(fields)},
		})
	}
	if pick < 0 {
		return kdlt.SealFail[shape.Dyn](&s)
	}
	v, span, _ := fields[pick].Bare()
	r := convert(sh.Prim, v, span)
	s.Extend(r.Issues())
	if !r.HasValue() {
		return kdlt.SealFail[shape.Dyn](&s)
	}
	return kdlt.Seal(&s, r.Value())
}

// convert coerces one literal into the exact primitive. Kinds never
// cross: an integer literal does not become a float, nor null anything.
func convert(p shape.Prim, v kdl.Value, span kdl.Span) kdlt.Result[shape.Dyn] {
	mismatch := func() kdlt.Result[shape.Dyn] {
		return kdlt.Fail[shape.Dyn](kdlt.Issue{
			Span:    span,
			Code:    kdlt.CodeInvalidType,
			Message: fmt.Sprintf("expected %s, got %s", p, v),
		})
	}
	switch {
	case p.Integer():
		i, ok := v.AsInt()
		if !ok {
			return mismatch()
		}
		return intValue(p, i, span)
	case p.Float():
		fl, ok := v.AsFloat()
		if !ok {
			return mismatch()
		}
		if p == shape.F32 {
			return kdlt.OK(shape.Dyn{Type: p.String(), Value: float32(fl)})
		}
		return kdlt.OK(shape.Dyn{Type: p.String(), Value: fl})
	case p == shape.Bool:
		bv, ok := v.AsBool()
		if !ok {
			return mismatch()
		}
		return kdlt.OK(shape.Dyn{Type: p.String(), Value: bv})
	default:
		sv, ok := v.AsString()
		if !ok {
			return mismatch()
		}
		return kdlt.OK(shape.Dyn{Type: p.String(), Value: sv})
	}
}

// intValue range-checks i against p's domain and sizes it down to the
// exact Go type.
func intValue(p shape.Prim, i int64, span kdl.Span) kdlt.Result[shape.Dyn] {
	min, max, _ := p.Range()
	if i < min || (i > 0 && uint64(i) > max) {
		return kdlt.Fail[shape.Dyn](kdlt.Issue{
			Span:    span,
			Code:    kdlt.CodeOverflow,
			Message: fmt.Sprintf("%d does not fit in %s", i, p),
			Hint:    rangeHint(p, i, min, max),
			Params:  map[string]any{"got": i, "min": min, "max": max},
		})
	}
	var out any
	switch p {
	case shape.I8:
		out = int8(i)
	case shape.I16:
		out = int16(i)
	case shape.I32:
		out = int32(i)
	case shape.I64:
		out = i
	case shape.U8:
		out = uint8(i)
	case shape.U16:
		out = uint16(i)
	case shape.U32:
		out = uint32(i)
	default:
		out = uint64(i)
	}
	return kdlt.OK(shape.Dyn{Type: p.String(), Value: out})
}

// rangeHint spells the representable domain, nudging toward a signed
// type when a negative value hit an unsigned field.
func rangeHint(p shape.Prim, i, min int64, max uint64) string {
	if i < 0 && min == 0 {
		return fmt.Sprintf("%s cannot hold negative values; use i%s or a positive value",
			p, strings.TrimPrefix(p.String(), "u"))
	}
	return fmt.Sprintf("%s holds %d to %d", p, min, max)
}
