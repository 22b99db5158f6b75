package codec

import (
	"reflect"
	"strings"

	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/schema"
)

// accessor reads and writes one field of an instance. Both functions are
// built once per struct at compile time.
type accessor struct {
	get func(inst any) (any, bool)
	set func(inst any, v any) error
}

func recordAccessor(name string) accessor {
	return accessor{
		get: func(inst any) (any, bool) {
			rec, ok := inst.(*Record)
			if !ok || rec == nil {
				return nil, false
			}
			return rec.Get(name)
		},
		set: func(inst any, v any) error {
			rec, ok := inst.(*Record)
			if !ok || rec == nil {
				return errors.TypeMismatch(errors.PhaseDecode, []string{name}, typeName(inst), "record")
			}
			rec.Set(name, v)
			return nil
		},
	}
}

func structAccessor(goType reflect.Type, field reflect.StructField) accessor {
	index := field.Index
	return accessor{
		get: func(inst any) (any, bool) {
			rv, ok := structValue(inst, goType)
			if !ok {
				return nil, false
			}
			fv := rv.FieldByIndex(index)
			switch fv.Kind() {
			case reflect.Ptr, reflect.Interface:
				if fv.IsNil() {
					return nil, false
				}
			}
			return fv.Interface(), true
		},
		set: func(inst any, v any) error {
			rv := reflect.ValueOf(inst)
			if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Type() != goType {
				return errors.TypeMismatch(errors.PhaseDecode, []string{field.Name}, typeName(inst), "*"+goType.String())
			}
			return assign(rv.Elem().FieldByIndex(index), v)
		},
	}
}

// structValue dereferences inst down to a struct of goType.
func structValue(inst any, goType reflect.Type) (reflect.Value, bool) {
	rv := reflect.ValueOf(inst)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Type() != goType {
		return reflect.Value{}, false
	}
	return rv, true
}

// findGoField matches by: 1) bits:"name" tag, 2) case-insensitive name.
func findGoField(goType reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < goType.NumField(); i++ {
		field := goType.Field(i)
		if !field.IsExported() {
			continue
		}
		if tag := field.Tag.Get("bits"); tag != "" {
			if tag == "-" {
				continue
			}
			if tag == name {
				return field, true
			}
			continue
		}
		if strings.EqualFold(field.Name, name) {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func buildAccessors(s *schema.Struct, path []string) (map[string]accessor, error) {
	out := make(map[string]accessor, len(s.Fields))
	for _, f := range s.Fields {
		if s.GoType == nil {
			out[f.Name] = recordAccessor(f.Name)
			continue
		}
		sf, ok := findGoField(s.GoType, f.Name)
		if !ok {
			return nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
				Path(append(path[:len(path):len(path)], f.Name)...).
				GoType(s.GoType.String()).
				Schema(s.Name).
				Detail("no exported Go field for %q", f.Name).
				Build()
		}
		out[f.Name] = structAccessor(s.GoType, sf)
	}
	return out, nil
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
