package codec

import (
	gojson "github.com/goccy/go-json"

	"github.com/reoring/kdlt/kdl"
	"github.com/reoring/kdlt/shape"
)

// nodeForm is the stable exported projection of a document node.
type nodeForm struct {
	Name     string         `json:"name" yaml:"name"`
	Type     string         `json:"type,omitempty" yaml:"type,omitempty"`
	Args     []any          `json:"args,omitempty" yaml:"args,omitempty"`
	Props    map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Children []nodeForm     `json:"children,omitempty" yaml:"children,omitempty"`
}

func formOf(n *kdl.Node) nodeForm {
	f := nodeForm{Name: n.Name()}
	if ty, ok := n.Type(); ok {
		f.Type = ty
	}
	for _, e := range n.Entries() {
		name, named := e.Name()
		if !named {
			f.Args = append(f.Args, plain(e.Value()))
			continue
		}
		if f.Props == nil {
			f.Props = make(map[string]any)
		}
		if _, dup := f.Props[name]; dup {
			// same rule as the builder: the first value wins
			continue
		}
		f.Props[name] = plain(e.Value())
	}
	if kids, ok := n.Children(); ok {
		nodes := kids.Nodes()
		for i := range nodes {
			f.Children = append(f.Children, formOf(&nodes[i]))
		}
	}
	return f
}

func formsOf(d *kdl.Document) []nodeForm {
	nodes := d.Nodes()
	out := make([]nodeForm, len(nodes))
	for i := range nodes {
		out[i] = formOf(&nodes[i])
	}
	return out
}

// plain lowers a document literal to its Go value.
func plain(v kdl.Value) any {
	switch v.Kind() {
	case kdl.KindInt:
		i, _ := v.AsInt()
		return i
	case kdl.KindFloat:
		f, _ := v.AsFloat()
		return f
	case kdl.KindBool:
		b, _ := v.AsBool()
		return b
	case kdl.KindString:
		s, _ := v.AsString()
		return s
	default:
		return nil
	}
}

// NodeJSON renders one node in the stable
// {name, type?, args?, props?, children?} form.
func NodeJSON(n *kdl.Node) ([]byte, error) {
	return gojson.Marshal(formOf(n))
}

// NodeJSONIndent is NodeJSON with indentation, for human-facing output.
func NodeJSONIndent(n *kdl.Node, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(formOf(n), prefix, indent)
}

// DocumentJSON renders a document as an array of node forms.
func DocumentJSON(d *kdl.Document) ([]byte, error) {
	return gojson.Marshal(formsOf(d))
}

// DocumentJSONIndent is DocumentJSON with indentation, for human-facing
// output.
func DocumentJSONIndent(d *kdl.Document, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(formsOf(d), prefix, indent)
}

// DynJSON renders a built value. The dynamic value already holds plain
// Go data, so it serializes directly.
func DynJSON(d shape.Dyn) ([]byte, error) {
	return gojson.Marshal(d.Value)
}
