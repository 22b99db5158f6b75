package expr

import (
	"math"
	"reflect"
	"sort"

	"github.com/wippyai/bitcodec/errors"
)

// OuterPrefix marks a reference that skips the current scope.
const OuterPrefix = "outer."

// Resolver looks up the value bound to a name for one decode or encode call.
type Resolver interface {
	Lookup(name string) (any, bool)
}

// MapResolver resolves names from a map, optionally chaining to Outer for
// names prefixed with "outer." or missing from the map.
type MapResolver struct {
	Values map[string]any
	Outer  Resolver
}

func (m MapResolver) Lookup(name string) (any, bool) {
	if len(name) > len(OuterPrefix) && name[:len(OuterPrefix)] == OuterPrefix {
		if m.Outer == nil {
			return nil, false
		}
		return m.Outer.Lookup(name[len(OuterPrefix):])
	}
	if v, ok := m.Values[name]; ok {
		return v, true
	}
	if m.Outer != nil {
		return m.Outer.Lookup(name)
	}
	return nil, false
}

// Expression is an immutable expression producing a V.
type Expression[V any] interface {
	// Eval computes the value. A nil resolver resolves nothing.
	Eval(r Resolver) (V, error)
	// IsParameterized reports whether the value depends on references.
	IsParameterized() bool
	// References lists referenced names, sorted and without duplicates.
	References() []string
	String() string
}

type (
	Int  = Expression[int64]
	Bool = Expression[bool]
)

// Lookup resolves name against r and converts the value to int64.
func Lookup(r Resolver, name string) (int64, error) {
	if r == nil {
		return 0, errors.UnresolvedReference(name)
	}
	v, ok := r.Lookup(name)
	if !ok {
		return 0, errors.UnresolvedReference(name)
	}
	n, err := ToInt64(v)
	if err != nil {
		return 0, errors.WithPath(err, name)
	}
	return n, nil
}

// ToInt64 converts a resolved value to int64. Any Go integer kind and bool
// are accepted; named types are unwrapped via reflection.
func ToInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		return uintToInt64(uint64(x))
	case uint64:
		return uintToInt64(x)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case nil:
		return 0, errors.NilPointer(errors.PhaseEval, nil, "<nil>")
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uintToInt64(rv.Uint())
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	return 0, errors.New(errors.PhaseEval, errors.KindTypeMismatch).
		GoType(rv.Type().String()).
		Detail("value is not an integer").
		Value(v).
		Build()
}

func uintToInt64(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, errors.Overflow(errors.PhaseEval, nil, u, "int64")
	}
	return int64(u), nil
}

func mergeRefs(a, b []string) []string {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, n := range list {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Describe renders e, or "unknown" when e is nil.
func Describe[V any](e Expression[V]) string {
	if e == nil {
		return "unknown"
	}
	return e.String()
}

// ConstValue returns the literal value of a non-parameterized expression.
func ConstValue(e Int) (int64, bool) {
	if e == nil || e.IsParameterized() {
		return 0, false
	}
	v, err := e.Eval(nil)
	if err != nil {
		return 0, false
	}
	return v, true
}
