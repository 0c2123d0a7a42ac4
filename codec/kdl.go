// Package codec renders expanded documents and built dynamic values in
// other encodings: back into document text, or out to JSON and YAML.
package codec

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/reoring/kdlt/kdl"
	"github.com/reoring/kdlt/shape"
)

// EncodeDyn renders a built value back into a document node named name,
// spelled the way the builder reads it: primitive fields inline, compound
// fields as dotted children. An empty name labels the node with the
// value's type, so the node declares itself.
func EncodeDyn(reg *shape.Registry, d shape.Dyn, name string) (*kdl.Node, error) {
	sh, ok := reg.Lookup(d.Type)
	if !ok {
		return nil, fmt.Errorf("codec: type %q is not registered", d.Type)
	}
	if name == "" {
		name = d.Type
	}
	n := kdl.NewNode(name)
	if err := encodeInto(&n, reg, sh, d.Value); err != nil {
		return nil, err
	}
	return &n, nil
}

func encodeInto(n *kdl.Node, reg *shape.Registry, sh shape.Shape, v any) error {
	switch sh := sh.(type) {
	case *shape.Primitive:
		val, err := literal(v)
		if err != nil {
			return err
		}
		n.AddEntry(kdl.NewArg(val))
		return nil
	case *shape.List:
		return encodeList(n, reg, sh, v)
	case *shape.Map:
		return encodeMap(n, reg, sh, v)
	case shape.Fielded:
		return encodeFielded(n, reg, sh, v)
	default:
		return fmt.Errorf("codec: cannot encode values of %s", sh.TypeName())
	}
}

func encodeList(n *kdl.Node, reg *shape.Registry, sh *shape.List, v any) error {
	items, ok := v.([]any)
	if !ok {
		return fmt.Errorf("codec: %s holds %T, want a slice", sh.TypeName(), v)
	}
	elem, ok := reg.Lookup(sh.Elem)
	if !ok {
		return fmt.Errorf("codec: type %q is not registered", sh.Elem)
	}
	if _, prim := elem.(*shape.Primitive); prim {
		for _, item := range items {
			val, err := literal(item)
			if err != nil {
				return err
			}
			n.AddEntry(kdl.NewArg(val))
		}
		return nil
	}
	for _, item := range items {
		c := kdl.NewNode(sh.Elem)
		if err := encodeInto(&c, reg, elem, item); err != nil {
			return err
		}
		n.AddChild(c)
	}
	return nil
}

// encodeMap spells primitive-valued maps as key=value entries and
// compound-valued ones as .key children. A key that itself starts with a
// dot would be misread that way, so such maps fall back to the pair
// spelling, which only carries primitive values.
func encodeMap(n *kdl.Node, reg *shape.Registry, sh *shape.Map, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("codec: %s holds %T, want a map", sh.TypeName(), v)
	}
	val, ok := reg.Lookup(sh.Value)
	if !ok {
		return fmt.Errorf("codec: type %q is not registered", sh.Value)
	}
	keys := make([]string, 0, len(m))
	dotted := false
	for k := range m {
		keys = append(keys, k)
		if len(k) > 0 && k[0] == '.' {
			dotted = true
		}
	}
	sort.Strings(keys)

	_, prim := val.(*shape.Primitive)
	if dotted {
		if !prim {
			return fmt.Errorf("codec: %s has a key starting with '.', not representable with compound values", sh.TypeName())
		}
		for _, k := range keys {
			lit, err := literal(m[k])
			if err != nil {
				return err
			}
			c := kdl.NewNode("-")
			c.AddEntry(kdl.NewArg(kdl.Str(k)))
			c.AddEntry(kdl.NewArg(lit))
			n.AddChild(c)
		}
		return nil
	}
	for _, k := range keys {
		if prim {
			lit, err := literal(m[k])
			if err != nil {
				return err
			}
			n.AddEntry(kdl.NewProp(k, lit))
			continue
		}
		c := kdl.NewNode("." + k)
		if err := encodeInto(&c, reg, val, m[k]); err != nil {
			return err
		}
		n.AddChild(c)
	}
	return nil
}

// encodeFielded spells an all-primitive, fully-filled positional value as
// bare arguments; anything else goes by-field, so absent slots and
// compound fields stay addressable.
func encodeFielded(n *kdl.Node, reg *shape.Registry, sh shape.Fielded, v any) error {
	decl := sh.FieldList()
	if sh.Kind() == shape.KindStruct {
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("codec: %s holds %T, want a map", sh.TypeName(), v)
		}
		for _, fd := range decl {
			fv, ok := m[fd.Name]
			if !ok {
				continue
			}
			if err := encodeField(n, reg, fd.Type, fd.Name, "."+fd.Name, fv); err != nil {
				return err
			}
		}
		return nil
	}

	items, ok := v.([]any)
	if !ok {
		return fmt.Errorf("codec: %s holds %T, want a slice", sh.TypeName(), v)
	}
	if len(items) != len(decl) {
		return fmt.Errorf("codec: %s has %d fields, value holds %d", sh.TypeName(), len(decl), len(items))
	}
	if bare := allBare(reg, decl, items); bare {
		for _, item := range items {
			val, err := literal(item)
			if err != nil {
				return err
			}
			n.AddEntry(kdl.NewArg(val))
		}
		return nil
	}
	for i, item := range items {
		if item == nil {
			continue
		}
		marker := "." + strconv.Itoa(i)
		if err := encodeField(n, reg, decl[i].Type, marker, marker, item); err != nil {
			return err
		}
	}
	return nil
}

// encodeField adds one addressed field: a property for primitives, a
// named child for compounds.
func encodeField(n *kdl.Node, reg *shape.Registry, typeName, propName, childName string, v any) error {
	sh, ok := reg.Lookup(typeName)
	if !ok {
		return fmt.Errorf("codec: type %q is not registered", typeName)
	}
	if _, prim := sh.(*shape.Primitive); prim {
		val, err := literal(v)
		if err != nil {
			return err
		}
		n.AddEntry(kdl.NewProp(propName, val))
		return nil
	}
	c := kdl.NewNode(childName)
	if err := encodeInto(&c, reg, sh, v); err != nil {
		return err
	}
	n.AddChild(c)
	return nil
}

// allBare reports whether every field is primitive and filled, the
// precondition for the anonymous spelling.
func allBare(reg *shape.Registry, decl []shape.Field, items []any) bool {
	for i, fd := range decl {
		if items[i] == nil {
			return false
		}
		sh, ok := reg.Lookup(fd.Type)
		if !ok {
			return false
		}
		if _, prim := sh.(*shape.Primitive); !prim {
			return false
		}
	}
	return true
}

// literal converts one scalar the builder produces into a document
// literal.
func literal(v any) (kdl.Value, error) {
	switch v := v.(type) {
	case nil:
		return kdl.Null(), nil
	case bool:
		return kdl.Bool(v), nil
	case string:
		return kdl.Str(v), nil
	case int8:
		return kdl.Int(int64(v)), nil
	case int16:
		return kdl.Int(int64(v)), nil
	case int32:
		return kdl.Int(int64(v)), nil
	case int64:
		return kdl.Int(v), nil
	case uint8:
		return kdl.Int(int64(v)), nil
	case uint16:
		return kdl.Int(int64(v)), nil
	case uint32:
		return kdl.Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return kdl.Value{}, fmt.Errorf("codec: %d does not fit a document integer", v)
		}
		return kdl.Int(int64(v)), nil
	case float32:
		return kdl.Float(float64(v)), nil
	case float64:
		return kdl.Float(v), nil
	default:
		return kdl.Value{}, fmt.Errorf("codec: cannot encode %T as a literal", v)
	}
}
