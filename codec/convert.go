package codec

import (
	"math"
	"reflect"
	"strconv"

	"github.com/wippyai/bitcodec/errors"
)

// assign stores a decoded value into a Go field, converting between integer
// widths, lists and pointers as needed.
func assign(dst reflect.Value, v any) error {
	dt := dst.Type()
	if v == nil {
		dst.Set(reflect.Zero(dt))
		return nil
	}
	sv := reflect.ValueOf(v)
	if sv.Type().AssignableTo(dt) {
		dst.Set(sv)
		return nil
	}

	switch dt.Kind() {
	case reflect.Ptr:
		if sv.Kind() == reflect.Ptr {
			if sv.IsNil() {
				dst.Set(reflect.Zero(dt))
				return nil
			}
			sv = sv.Elem()
		}
		p := reflect.New(dt.Elem())
		if err := assign(p.Elem(), sv.Interface()); err != nil {
			return err
		}
		dst.Set(p)
		return nil

	case reflect.Struct:
		if sv.Kind() == reflect.Ptr && !sv.IsNil() && sv.Elem().Type().AssignableTo(dt) {
			dst.Set(sv.Elem())
			return nil
		}

	case reflect.Interface:
		if sv.Kind() == reflect.Ptr && !sv.IsNil() && sv.Elem().Type().AssignableTo(dt) {
			dst.Set(sv.Elem())
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := intOf(sv)
		if !ok {
			break
		}
		if dst.OverflowInt(i) {
			return errors.Overflow(errors.PhaseDecode, nil, i, dt.String())
		}
		dst.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, ok := uintOf(sv)
		if !ok {
			break
		}
		if dst.OverflowUint(u) {
			return errors.Overflow(errors.PhaseDecode, nil, u, dt.String())
		}
		dst.SetUint(u)
		return nil

	case reflect.Float32, reflect.Float64:
		f, ok := floatOf(sv)
		if !ok {
			break
		}
		dst.SetFloat(f)
		return nil

	case reflect.Bool:
		if sv.Kind() == reflect.Bool {
			dst.SetBool(sv.Bool())
			return nil
		}

	case reflect.String:
		if sv.Kind() == reflect.String {
			dst.SetString(sv.String())
			return nil
		}

	case reflect.Slice:
		if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
			break
		}
		n := sv.Len()
		out := reflect.MakeSlice(dt, n, n)
		for i := 0; i < n; i++ {
			if err := assign(out.Index(i), sv.Index(i).Interface()); err != nil {
				return errors.WithPath(err, indexSegment(i))
			}
		}
		dst.Set(out)
		return nil

	case reflect.Array:
		if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
			break
		}
		if sv.Len() != dt.Len() {
			return errors.LengthMismatch(int64(dt.Len()), int64(sv.Len()))
		}
		for i := 0; i < sv.Len(); i++ {
			if err := assign(dst.Index(i), sv.Index(i).Interface()); err != nil {
				return errors.WithPath(err, indexSegment(i))
			}
		}
		return nil
	}

	return errors.TypeMismatch(errors.PhaseDecode, nil, sv.Type().String(), dt.String())
}

func intOf(v reflect.Value) (int64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := v.Uint(); u <= math.MaxInt64 {
			return int64(u), true
		}
	}
	return 0, false
}

func uintOf(v reflect.Value) (uint64, bool) {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i := v.Int(); i >= 0 {
			return uint64(i), true
		}
	}
	return 0, false
}

func floatOf(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	}
	return 0, false
}

// sliceOf exposes a list value to the list encoder.
func sliceOf(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return reflect.Value{}, false
	}
	return rv, true
}

func indexSegment(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
