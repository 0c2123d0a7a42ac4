package shape

// Dyn is a built dynamic value tagged with the type name it was built
// as. Value holds map[string]any for structs and maps, []any for
// tuples, tuple-structs and lists, and a plain Go scalar for
// primitives (int8..uint64, float32/float64, bool, string, or nil).
type Dyn struct {
	Type  string
	Value any
}

// Map returns the value as a field map when the built type was a
// struct or map.
func (d Dyn) Map() (map[string]any, bool) {
	m, ok := d.Value.(map[string]any)
	return m, ok
}

// Slice returns the value as a positional slice when the built type
// was a tuple, tuple-struct or list.
func (d Dyn) Slice() ([]any, bool) {
	s, ok := d.Value.([]any)
	return s, ok
}
