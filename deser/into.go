package deser

import (
	"fmt"
	"math"
	"reflect"

	"github.com/reoring/kdlt/shape"
)

// Into copies a built dynamic value into a concrete Go value of type T,
// following the same field naming rules as shape.Register: the `kdl`
// struct tag names a field, `-` and unexported fields are skipped.
// Struct targets accept both named (map) and positional (slice) dynamic
// values, so tuple-struct shapes land in ordinary Go structs.
func Into[T any](d shape.Dyn) (T, error) {
	var out T
	if err := assign(reflect.ValueOf(&out).Elem(), d.Value); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func assign(dst reflect.Value, src any) error {
	for dst.Kind() == reflect.Pointer {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		dst = dst.Elem()
	}
	if src == nil {
		// a slot the builder could not fill keeps the zero value
		return nil
	}
	switch dst.Kind() {
	case reflect.Struct:
		return assignStruct(dst, src)
	case reflect.Slice:
		items, ok := src.([]any)
		if !ok {
			return fmt.Errorf("deser: cannot assign %T to %s", src, dst.Type())
		}
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, item := range items {
			if err := assign(out.Index(i), item); err != nil {
				return fmt.Errorf("deser: index %d: %w", i, err)
			}
		}
		dst.Set(out)
		return nil
	case reflect.Array:
		items, ok := src.([]any)
		if !ok {
			return fmt.Errorf("deser: cannot assign %T to %s", src, dst.Type())
		}
		if len(items) != dst.Len() {
			return fmt.Errorf("deser: %s wants %d elements, got %d", dst.Type(), dst.Len(), len(items))
		}
		for i, item := range items {
			if err := assign(dst.Index(i), item); err != nil {
				return fmt.Errorf("deser: index %d: %w", i, err)
			}
		}
		return nil
	case reflect.Map:
		m, ok := src.(map[string]any)
		if !ok {
			return fmt.Errorf("deser: cannot assign %T to %s", src, dst.Type())
		}
		if dst.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("deser: map key of %s must be string", dst.Type())
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(m))
		for k, v := range m {
			ev := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(ev, v); err != nil {
				return fmt.Errorf("deser: key %q: %w", k, err)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(dst.Type().Key()), ev)
		}
		dst.Set(out)
		return nil
	default:
		return assignScalar(dst, src)
	}
}

func assignStruct(dst reflect.Value, src any) error {
	t := dst.Type()
	switch src := src.(type) {
	case map[string]any:
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			key := shape.FieldName(sf)
			if key == "-" {
				continue
			}
			v, ok := src[key]
			if !ok {
				continue
			}
			if err := assign(dst.Field(i), v); err != nil {
				return fmt.Errorf("deser: field %s: %w", key, err)
			}
		}
		return nil
	case []any:
		idx := 0
		for i := 0; i < t.NumField() && idx < len(src); i++ {
			sf := t.Field(i)
			if !sf.IsExported() || shape.FieldName(sf) == "-" {
				continue
			}
			if err := assign(dst.Field(i), src[idx]); err != nil {
				return fmt.Errorf("deser: field %d: %w", idx, err)
			}
			idx++
		}
		return nil
	default:
		return fmt.Errorf("deser: cannot assign %T to struct %s", src, t)
	}
}

func assignScalar(dst reflect.Value, src any) error {
	sv := reflect.ValueOf(src)
	switch {
	case sv.Type().AssignableTo(dst.Type()):
		dst.Set(sv)
		return nil
	case sv.CanInt() && dst.CanInt():
		i := sv.Int()
		if dst.OverflowInt(i) {
			return fmt.Errorf("deser: %d overflows %s", i, dst.Type())
		}
		dst.SetInt(i)
		return nil
	case sv.CanInt() && dst.CanUint():
		i := sv.Int()
		if i < 0 || dst.OverflowUint(uint64(i)) {
			return fmt.Errorf("deser: %d overflows %s", i, dst.Type())
		}
		dst.SetUint(uint64(i))
		return nil
	case sv.CanUint() && dst.CanUint():
		u := sv.Uint()
		if dst.OverflowUint(u) {
			return fmt.Errorf("deser: %d overflows %s", u, dst.Type())
		}
		dst.SetUint(u)
		return nil
	case sv.CanUint() && dst.CanInt():
		u := sv.Uint()
		if u > math.MaxInt64 || dst.OverflowInt(int64(u)) {
			return fmt.Errorf("deser: %d overflows %s", u, dst.Type())
		}
		dst.SetInt(int64(u))
		return nil
	case sv.CanFloat() && dst.CanFloat():
		dst.SetFloat(sv.Float())
		return nil
	default:
		return fmt.Errorf("deser: cannot assign %T to %s", src, dst.Type())
	}
}
