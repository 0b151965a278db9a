package docbind

import (
	"math"
	"reflect"

	"github.com/cockroachdb/errors"
)

// Assign converts a dynamically typed value, as produced by Read, into T.
//
// Scalars convert between Go types of the same family (any integer width,
// either float width, named string/bool types) when the value fits. Lists,
// sets and deques convert into slices and arrays element by element, ordered
// maps and Go maps into Go maps. A value is wrapped in a fresh pointer when T
// is a pointer to a type it converts to, and a pointer is dereferenced when T
// is its element type. nil yields the zero T.
func Assign[T any](v any) (T, error) {
	var zero T
	if tv, ok := v.(T); ok {
		return tv, nil
	}
	dst := reflect.TypeOf((*T)(nil)).Elem()
	rv, err := assignTo(dst, v)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

func assignErr(dst reflect.Type, v any) error {
	return errors.Mark(errors.Newf("docbind: cannot assign %T to %s", v, dst), ErrInvalidValue)
}

var (
	setPtrType   = reflect.TypeOf((*Set)(nil))
	dequePtrType = reflect.TypeOf((*Deque)(nil))
)

func assignTo(dst reflect.Type, v any) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(dst), nil
	}
	vv := reflect.ValueOf(v)
	if vv.Type().AssignableTo(dst) {
		out := reflect.New(dst).Elem()
		out.Set(vv)
		return out, nil
	}

	if vv.Kind() == reflect.Pointer && !vv.IsNil() && vv.Elem().Type().AssignableTo(dst) {
		out := reflect.New(dst).Elem()
		out.Set(vv.Elem())
		return out, nil
	}

	switch {
	case dst == setPtrType:
		vals, ok := sequenceOf(v)
		if !ok {
			return reflect.Value{}, assignErr(dst, v)
		}
		return reflect.ValueOf(NewSet(vals...)), nil
	case dst == dequePtrType:
		vals, ok := sequenceOf(v)
		if !ok {
			return reflect.Value{}, assignErr(dst, v)
		}
		return reflect.ValueOf(NewDeque(vals...)), nil
	}

	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return assignInt(dst, vv, v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return assignUint(dst, vv, v)
	case reflect.Float32, reflect.Float64:
		return assignFloat(dst, vv, v)
	case reflect.String, reflect.Bool:
		if vv.Kind() == dst.Kind() {
			return vv.Convert(dst), nil
		}
	case reflect.Slice:
		vals, ok := sequenceOf(v)
		if !ok {
			break
		}
		out := reflect.MakeSlice(dst, len(vals), len(vals))
		for i, e := range vals {
			ev, err := assignTo(dst.Elem(), e)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case reflect.Array:
		vals, ok := sequenceOf(v)
		if !ok || len(vals) != dst.Len() {
			break
		}
		out := reflect.New(dst).Elem()
		for i, e := range vals {
			ev, err := assignTo(dst.Elem(), e)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case reflect.Map:
		return assignMap(dst, v)
	case reflect.Pointer:
		ev, err := assignTo(dst.Elem(), v)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(dst.Elem())
		p.Elem().Set(ev)
		return p, nil
	}
	return reflect.Value{}, assignErr(dst, v)
}

func assignInt(dst reflect.Type, vv reflect.Value, v any) (reflect.Value, error) {
	out := reflect.New(dst).Elem()
	switch vv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := vv.Int()
		if out.OverflowInt(n) {
			return reflect.Value{}, assignErr(dst, v)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := vv.Uint()
		if n > math.MaxInt64 || out.OverflowInt(int64(n)) {
			return reflect.Value{}, assignErr(dst, v)
		}
		out.SetInt(int64(n))
	case reflect.Float32, reflect.Float64:
		f := vv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
			return reflect.Value{}, assignErr(dst, v)
		}
		out.SetInt(int64(f))
	default:
		return reflect.Value{}, assignErr(dst, v)
	}
	return out, nil
}

func assignUint(dst reflect.Type, vv reflect.Value, v any) (reflect.Value, error) {
	out := reflect.New(dst).Elem()
	switch vv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := vv.Int()
		if n < 0 || out.OverflowUint(uint64(n)) {
			return reflect.Value{}, assignErr(dst, v)
		}
		out.SetUint(uint64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := vv.Uint()
		if out.OverflowUint(n) {
			return reflect.Value{}, assignErr(dst, v)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f := vv.Float()
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
			return reflect.Value{}, assignErr(dst, v)
		}
		out.SetUint(uint64(f))
	default:
		return reflect.Value{}, assignErr(dst, v)
	}
	return out, nil
}

func assignFloat(dst reflect.Type, vv reflect.Value, v any) (reflect.Value, error) {
	out := reflect.New(dst).Elem()
	switch vv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.SetFloat(float64(vv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out.SetFloat(float64(vv.Uint()))
	case reflect.Float32, reflect.Float64:
		out.SetFloat(vv.Float())
	default:
		return reflect.Value{}, assignErr(dst, v)
	}
	return out, nil
}

func assignMap(dst reflect.Type, v any) (reflect.Value, error) {
	out := reflect.MakeMap(dst)
	put := func(k, e any) error {
		kv, err := assignTo(dst.Key(), k)
		if err != nil {
			return err
		}
		ev, err := assignTo(dst.Elem(), e)
		if err != nil {
			return err
		}
		out.SetMapIndex(kv, ev)
		return nil
	}
	switch src := v.(type) {
	case *OrderedMap:
		var err error
		src.Range(func(k, e any) bool {
			err = put(k, e)
			return err == nil
		})
		if err != nil {
			return reflect.Value{}, err
		}
		return out, nil
	}
	sv := reflect.ValueOf(v)
	if sv.Kind() != reflect.Map {
		return reflect.Value{}, assignErr(dst, v)
	}
	it := sv.MapRange()
	for it.Next() {
		if err := put(it.Key().Interface(), it.Value().Interface()); err != nil {
			return reflect.Value{}, err
		}
	}
	return out, nil
}

// sequenceOf flattens the sequence representations the engine understands.
func sequenceOf(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case *Set:
		return s.Values(), true
	case *Deque:
		return s.Values(), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, true
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}
