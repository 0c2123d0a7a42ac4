// Package shape describes the target types the builder can produce:
// structs with named fields, tuples and tuple-structs with positional
// fields, homogeneous lists and string-keyed maps, and primitive leaves.
// Shapes reference each other by registered type name, so recursive
// types are representable without eager expansion.
package shape

// Kind identifies a shape variant.
type Kind int

const (
	KindPrimitive Kind = iota
	KindStruct
	KindTuple
	KindTupleStruct
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindStruct:
		return "struct"
	case KindTuple:
		return "tuple"
	case KindTupleStruct:
		return "tuple struct"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Shape is the root schema descriptor interface.
type Shape interface {
	Kind() Kind
	// TypeName is the name the shape is registered under.
	TypeName() string
}

// Prim enumerates the primitive leaf types.
type Prim int

const (
	I8 Prim = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Bool
	String
)

func (p Prim) String() string {
	switch p {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Integer reports whether p is an integer type.
func (p Prim) Integer() bool { return p >= I8 && p <= U64 }

// Float reports whether p is a floating-point type.
func (p Prim) Float() bool { return p == F32 || p == F64 }

// Range returns the representable domain of an integer prim as
// (min, max). max is uint64 so the u64 upper bound is exact. ok is
// false for non-integer prims.
func (p Prim) Range() (min int64, max uint64, ok bool) {
	switch p {
	case I8:
		return -1 << 7, 1<<7 - 1, true
	case I16:
		return -1 << 15, 1<<15 - 1, true
	case I32:
		return -1 << 31, 1<<31 - 1, true
	case I64:
		return -1 << 63, 1<<63 - 1, true
	case U8:
		return 0, 1<<8 - 1, true
	case U16:
		return 0, 1<<16 - 1, true
	case U32:
		return 0, 1<<32 - 1, true
	case U64:
		return 0, 1<<64 - 1, true
	default:
		return 0, 0, false
	}
}

// Primitive is a leaf shape holding a single literal value.
type Primitive struct {
	Prim Prim
}

func (p *Primitive) Kind() Kind       { return KindPrimitive }
func (p *Primitive) TypeName() string { return p.Prim.String() }

// Field is one declared field of a struct, tuple or tuple-struct.
// Name is empty for positional fields. Type names another registered
// shape.
type Field struct {
	Name string
	Type string
}

// Struct is a named-field record.
type Struct struct {
	Name   string
	Fields []Field
}

func (s *Struct) Kind() Kind       { return KindStruct }
func (s *Struct) TypeName() string { return s.Name }

// Tuple is an anonymous positional record registered under a
// synthesized name.
type Tuple struct {
	Name   string
	Fields []Field
}

func (t *Tuple) Kind() Kind       { return KindTuple }
func (t *Tuple) TypeName() string { return t.Name }

// TupleStruct is a named positional record, e.g. a wrapper type.
type TupleStruct struct {
	Name   string
	Fields []Field
}

func (t *TupleStruct) Kind() Kind       { return KindTupleStruct }
func (t *TupleStruct) TypeName() string { return t.Name }

// List is a homogeneous sequence of Elem-typed values.
type List struct {
	Name string
	Elem string
}

func (l *List) Kind() Kind       { return KindList }
func (l *List) TypeName() string { return l.Name }

// Map is a string-keyed collection of Value-typed values.
type Map struct {
	Name  string
	Value string
}

func (m *Map) Kind() Kind       { return KindMap }
func (m *Map) TypeName() string { return m.Name }

// Fielded is implemented by the shapes with a fixed declared field
// list: Struct, Tuple and TupleStruct.
type Fielded interface {
	Shape
	FieldList() []Field
}

func (s *Struct) FieldList() []Field      { return s.Fields }
func (t *Tuple) FieldList() []Field       { return t.Fields }
func (t *TupleStruct) FieldList() []Field { return t.Fields }

// Newtype reports whether sh is a single-field wrapper whose sole
// field can be populated from a bare literal.
func Newtype(sh Shape) (Field, bool) {
	f, ok := sh.(Fielded)
	if !ok {
		return Field{}, false
	}
	fs := f.FieldList()
	if len(fs) != 1 {
		return Field{}, false
	}
	return fs[0], true
}
