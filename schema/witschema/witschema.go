// Package witschema derives packed bit layouts from WIT type definitions.
//
// The layout is not the Canonical ABI: values are packed back to back with
// no alignment, strings are null-terminated UTF-8 and lists carry an inline
// u32 element count. It is meant for wire formats and snapshots that share
// their type definitions with a component.
//
//	WIT             schema
//	──────────────────────────────────────────────
//	bool            bool, 8 bits
//	u8..u64/s8..s64 numeric, natural width, little-endian
//	f32/f64         float, little-endian
//	char            u32
//	string          null-terminated UTF-8
//	list<T>         "<field>-len" u32, then T repeated
//	enum            8-bit enum
//	variant         8-bit union, discriminant = case index
//	record          nested struct
package witschema

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

// LenSuffix names the count field synthesized before each list field.
const LenSuffix = "-len"

// PayloadField names the single field of a variant case with a payload.
const PayloadField = "value"

// TypeDef derives a struct from a record type definition.
func TypeDef(name string, td *wit.TypeDef) (*schema.Struct, error) {
	if td == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("type definition is nil").
			Build()
	}
	rec, ok := td.Kind.(*wit.Record)
	if !ok {
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Schema(name).
			Detail("top-level %T, want a record", td.Kind).
			Build()
	}
	return Record(name, rec)
}

// Record derives a struct from a WIT record.
func Record(name string, rec *wit.Record) (*schema.Struct, error) {
	return record(name, rec, nil)
}

// Type derives the schema node for a single WIT type. Lists are rejected:
// their count lives in the enclosing struct.
func Type(t wit.Type) (*schema.Type, error) {
	return typeOf(t, "type", nil)
}

func record(name string, rec *wit.Record, path []string) (*schema.Struct, error) {
	fields := make([]schema.Field, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		fs, err := fieldsFor(f.Name, f.Type, path)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fs...)
	}
	return schema.NewStruct(name, fields...), nil
}

// fieldsFor returns one field, or two for a list: its count, then the list.
func fieldsFor(name string, t wit.Type, path []string) ([]schema.Field, error) {
	fp := append(path[:len(path):len(path)], name)
	if td, ok := t.(*wit.TypeDef); ok {
		if list, ok := td.Kind.(*wit.List); ok {
			elem, err := typeOf(list.Type, name, append(fp, "[]"))
			if err != nil {
				return nil, err
			}
			count := name + LenSuffix
			return []schema.Field{
				schema.F(count, schema.U32()),
				schema.F(name, schema.ListOf(expr.Ref(count), elem)),
			}, nil
		}
	}
	ft, err := typeOf(t, name, fp)
	if err != nil {
		return nil, err
	}
	return []schema.Field{schema.F(name, ft)}, nil
}

func typeOf(t wit.Type, name string, path []string) (*schema.Type, error) {
	switch t := t.(type) {
	case wit.Bool:
		return schema.Bool(schema.Bits(8)), nil
	case wit.U8:
		return schema.U8(), nil
	case wit.S8:
		return schema.S8(), nil
	case wit.U16:
		return schema.U16(), nil
	case wit.S16:
		return schema.S16(), nil
	case wit.U32:
		return schema.U32(), nil
	case wit.S32:
		return schema.S32(), nil
	case wit.U64:
		return schema.U64(), nil
	case wit.S64:
		return schema.S64(), nil
	case wit.F32:
		return schema.F32(), nil
	case wit.F64:
		return schema.F64(), nil
	case wit.Char:
		return schema.U32(), nil
	case wit.String:
		return schema.CString(schema.WithEncoding(schema.UTF8)), nil
	case *wit.TypeDef:
		return typeDefOf(t, name, path)
	}
	return nil, unsupported(path, "%T", t)
}

func typeDefOf(td *wit.TypeDef, name string, path []string) (*schema.Type, error) {
	switch k := td.Kind.(type) {
	case *wit.Record:
		s, err := record(name, k, path)
		if err != nil {
			return nil, err
		}
		return schema.Nested(s), nil

	case *wit.Enum:
		names := make([]string, len(k.Cases))
		for i, c := range k.Cases {
			names[i] = c.Name
		}
		return schema.EnumOf(schema.NewEnum(names...)), nil

	case *wit.Variant:
		variants := make([]schema.Variant, len(k.Cases))
		for i, c := range k.Cases {
			s := schema.NewStruct(c.Name)
			if c.Type != nil {
				fields, err := fieldsFor(PayloadField, c.Type, append(path[:len(path):len(path)], c.Name))
				if err != nil {
					return nil, err
				}
				s.Fields = fields
			}
			variants[i] = schema.Case(uint64(i), s)
		}
		return schema.OneOf(schema.NewUnion(8, bitbuf.LittleEndian, variants...)), nil

	case *wit.List:
		return nil, unsupported(path, "list outside a record field")
	}

	// type aliases
	if inner, ok := td.Kind.(wit.Type); ok {
		return typeOf(inner, name, path)
	}
	return nil, unsupported(path, "%T", td.Kind)
}

func unsupported(path []string, format string, args ...any) error {
	return errors.New(errors.PhaseCompile, errors.KindUnsupported).
		Path(path...).
		Detail("WIT "+format+" has no packed layout", args...).
		Build()
}
