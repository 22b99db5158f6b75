package schema

import (
	"reflect"

	"github.com/wippyai/bitcodec/errors"
)

// Validate checks that s is well formed: fields are named uniquely, every
// node carries the sub-node its kind requires, and no struct contains itself.
func (s *Struct) Validate() error {
	return validateStruct(s, nil, map[*Struct]bool{})
}

// Validate checks a single type node and everything below it.
func (t *Type) Validate() error {
	return validateType(t, nil, map[*Struct]bool{})
}

func validateStruct(s *Struct, path []string, active map[*Struct]bool) error {
	if s == nil {
		return errors.InvalidData(errors.PhaseCompile, path, "missing struct")
	}
	if active[s] {
		return errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			Schema(s.Name).
			Detail("recursive struct").
			Build()
	}
	if s.Name == "" {
		return errors.InvalidData(errors.PhaseCompile, path, "struct has no name")
	}
	if s.GoType != nil && s.GoType.Kind() != reflect.Struct {
		return errors.TypeMismatch(errors.PhaseCompile, path, s.GoType.String(), s.Name)
	}

	active[s] = true
	defer delete(active, s)

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		fp := append(path[:len(path):len(path)], f.Name)
		if f.Name == "" {
			return errors.InvalidData(errors.PhaseCompile, fp, "field has no name")
		}
		if seen[f.Name] {
			return errors.InvalidData(errors.PhaseCompile, fp, "duplicate field name")
		}
		seen[f.Name] = true
		if err := validateType(f.Type, fp, active); err != nil {
			return err
		}
	}
	return nil
}

func validateType(t *Type, path []string, active map[*Struct]bool) error {
	if t == nil {
		return errors.InvalidData(errors.PhaseCompile, path, "missing type")
	}
	switch {
	case t.Kind.IsNumeric():
		if t.Size == nil {
			return nil
		}
		if w, ok := constSize(t); ok && (w < 1 || w > 64) {
			return errors.InvalidData(errors.PhaseCompile, path, "numeric width must be 1..64 bits")
		}
		if t.Kind.IsFloat() {
			if w, ok := constSize(t); !ok || int(w) != t.Kind.DefaultWidth() {
				return errors.InvalidData(errors.PhaseCompile, path, "float width must be 32 or 64 bits")
			}
		}
	case t.Kind.IsVarint():
		if t.Size == nil {
			return nil
		}
		w, ok := constSize(t)
		if !ok {
			return errors.InvalidData(errors.PhaseCompile, path, "varint width must be a constant")
		}
		if w < 1 || w > 64 {
			return errors.InvalidData(errors.PhaseCompile, path, "varint width must be 1..64 bits")
		}
	case t.Kind == KindEnum:
		if t.Enum == nil || len(t.Enum.Values) == 0 {
			return errors.InvalidData(errors.PhaseCompile, path, "enum has no values")
		}
		names := make(map[string]bool, len(t.Enum.Values))
		values := make(map[uint64]bool, len(t.Enum.Values))
		for _, v := range t.Enum.Values {
			if names[v.Name] || values[v.Value] {
				return errors.InvalidData(errors.PhaseCompile, path, "duplicate enum value "+v.Name)
			}
			names[v.Name] = true
			values[v.Value] = true
		}
	case t.Kind == KindString:
		if t.Encoding > UTF8 {
			return errors.Unsupported(errors.PhaseCompile, "encoding "+t.Encoding.String())
		}
	case t.Kind == KindList:
		if t.Size == nil {
			return errors.InvalidData(errors.PhaseCompile, path, "list has no count")
		}
		return validateType(t.Elem, append(path[:len(path):len(path)], "[]"), active)
	case t.Kind == KindStruct:
		return validateStruct(t.Struct, path, active)
	case t.Kind == KindUnion:
		return validateUnion(t.Union, path, active)
	default:
		return errors.Unsupported(errors.PhaseCompile, "kind "+t.Kind.String())
	}
	return nil
}

func validateUnion(u *Union, path []string, active map[*Struct]bool) error {
	if u == nil {
		return errors.InvalidData(errors.PhaseCompile, path, "missing union")
	}
	if u.Width < 1 || u.Width > 64 {
		return errors.InvalidData(errors.PhaseCompile, path, "discriminant width must be 1..64 bits")
	}
	if len(u.Variants) == 0 {
		return errors.InvalidData(errors.PhaseCompile, path, "union has no variants")
	}
	for _, v := range u.Variants {
		if u.Width < 64 && v.Discriminant >= 1<<uint(u.Width) {
			return errors.Overflow(errors.PhaseCompile, path, v.Discriminant, "discriminant width")
		}
		if err := validateStruct(v.Struct, path, active); err != nil {
			return err
		}
	}
	return nil
}

func constSize(t *Type) (int64, bool) {
	if t.Size == nil || t.Size.IsParameterized() {
		return 0, false
	}
	v, err := t.Size.Eval(nil)
	return v, err == nil
}
