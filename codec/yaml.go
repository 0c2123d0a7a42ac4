package codec

import (
	"gopkg.in/yaml.v3"

	"github.com/reoring/kdlt/kdl"
	"github.com/reoring/kdlt/shape"
)

// NodeYAML renders one node in the same stable form as NodeJSON.
func NodeYAML(n *kdl.Node) ([]byte, error) {
	return yaml.Marshal(formOf(n))
}

// DocumentYAML renders a document as a sequence of node forms.
func DocumentYAML(d *kdl.Document) ([]byte, error) {
	return yaml.Marshal(formsOf(d))
}

// DynYAML renders a built value.
func DynYAML(d shape.Dyn) ([]byte, error) {
	return yaml.Marshal(d.Value)
}
