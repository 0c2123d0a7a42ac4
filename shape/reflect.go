package shape

import (
	"fmt"
	"reflect"
	"strings"
)

// Of derives the shape of T without registering anything in a shared
// registry. Transitive dependencies are resolved through a throwaway
// registry, so Of is mainly useful for inspection and tests.
func Of[T any]() (Shape, error) {
	reg := NewRegistry()
	return Register[T](reg)
}

// Register derives the shape of T, registers it together with every
// transitively referenced type, and returns it. Go structs map to
// Struct shapes, slices and arrays to List, map[string]V to Map, and
// scalar kinds to the matching primitive. Tuple and tuple-struct
// shapes have no Go counterpart and are registered by hand.
//
// Field names follow the `kdl` struct tag when present; `kdl:"-"`
// and unexported fields are skipped.
func Register[T any](reg *Registry) (Shape, error) {
	name, err := deriveType(reflect.TypeOf((*T)(nil)).Elem(), reg)
	if err != nil {
		return nil, err
	}
	sh, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("shape: derived type %q did not register", name)
	}
	return sh, nil
}

// MustRegister is Register that panics on error, for static
// registrations at init time.
func MustRegister[T any](reg *Registry) Shape {
	sh, err := Register[T](reg)
	if err != nil {
		panic(err)
	}
	return sh
}

func deriveType(t reflect.Type, reg *Registry) (string, error) {
	if t == nil {
		return "", fmt.Errorf("shape: cannot derive an untyped nil")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if p, ok := primFor(t.Kind()); ok {
		return p.String(), nil
	}
	switch t.Kind() {
	case reflect.Struct:
		return deriveStruct(t, reg)
	case reflect.Slice, reflect.Array:
		elem, err := deriveType(t.Elem(), reg)
		if err != nil {
			return "", err
		}
		name := "[]" + elem
		if _, ok := reg.Lookup(name); !ok {
			if err := reg.Add(&List{Name: name, Elem: elem}); err != nil {
				return "", err
			}
		}
		return name, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return "", fmt.Errorf("shape: map key of %s must be string", t)
		}
		elem, err := deriveType(t.Elem(), reg)
		if err != nil {
			return "", err
		}
		name := "map[string]" + elem
		if _, ok := reg.Lookup(name); !ok {
			if err := reg.Add(&Map{Name: name, Value: elem}); err != nil {
				return "", err
			}
		}
		return name, nil
	default:
		return "", fmt.Errorf("shape: unsupported kind %s for %s", t.Kind(), t)
	}
}

func deriveStruct(t reflect.Type, reg *Registry) (string, error) {
	name := t.Name()
	if name == "" {
		return "", fmt.Errorf("shape: anonymous struct types need an explicit registration")
	}
	if _, ok := reg.Lookup(name); ok {
		return name, nil
	}
	// Register the shell first so self-referential fields resolve.
	s := &Struct{Name: name}
	if err := reg.Add(s); err != nil {
		return "", err
	}
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := FieldName(sf)
		if key == "-" {
			continue
		}
		ft, err := deriveType(sf.Type, reg)
		if err != nil {
			return "", fmt.Errorf("shape: field %s.%s: %w", name, sf.Name, err)
		}
		fields = append(fields, Field{Name: key, Type: ft})
	}
	s.Fields = fields
	return name, nil
}

// FieldName resolves a struct field's external name.
// Priority: kdl:"name" > field name; "-" disables the field.
func FieldName(sf reflect.StructField) string {
	if tag := sf.Tag.Get("kdl"); tag != "" {
		if i := strings.IndexByte(tag, ','); i >= 0 {
			tag = tag[:i]
		}
		if tag != "" {
			return tag
		}
	}
	return sf.Name
}

func primFor(k reflect.Kind) (Prim, bool) {
	switch k {
	case reflect.Int8:
		return I8, true
	case reflect.Int16:
		return I16, true
	case reflect.Int32:
		return I32, true
	case reflect.Int64, reflect.Int:
		return I64, true
	case reflect.Uint8:
		return U8, true
	case reflect.Uint16:
		return U16, true
	case reflect.Uint32:
		return U32, true
	case reflect.Uint64, reflect.Uint:
		return U64, true
	case reflect.Float32:
		return F32, true
	case reflect.Float64:
		return F64, true
	case reflect.Bool:
		return Bool, true
	case reflect.String:
		return String, true
	default:
		return 0, false
	}
}
