package schema

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/expr"
)

// Struct is an ordered list of fields. Field order is wire order.
type Struct struct {
	// GoType, when set, decodes into values of this struct type instead of
	// dynamic records.
	GoType reflect.Type
	Name   string
	Fields []Field
	// Align pads to a byte boundary after the last field.
	Align bool
}

// Field names one member of a Struct.
type Field struct {
	Type *Type
	// If, when set, makes the field conditional: it is skipped on both
	// decode and encode when the condition evaluates to false.
	If   expr.Bool
	Name string
}

// Type describes how a single value is laid out on the wire.
type Type struct {
	// Size is the bit width for numerics and enums, the character count
	// for fixed-length strings and the element count for lists. Nil means
	// the default width, a null-terminated string, or a missing count.
	Size      expr.Int
	Converter Converter
	Elem      *Type
	Struct    *Struct
	Union     *Union
	Enum      *Enum
	Match     string
	Kind      Kind
	Order     bitbuf.ByteOrder
	Encoding  Encoding
	Align     bool
}

// Union selects one of several structs by a discriminant read first.
type Union struct {
	Variants []Variant
	Width    int
	Order    bitbuf.ByteOrder
}

// Variant binds a discriminant value to the struct that follows it.
type Variant struct {
	Struct       *Struct
	Discriminant uint64
}

// Enum maps wire values to names.
type Enum struct {
	Values []EnumValue
}

type EnumValue struct {
	Name  string
	Value uint64
}

// Lookup returns the name bound to v.
func (e *Enum) Lookup(v uint64) (string, bool) {
	for _, ev := range e.Values {
		if ev.Value == v {
			return ev.Name, true
		}
	}
	return "", false
}

// ValueOf returns the wire value bound to name.
func (e *Enum) ValueOf(name string) (uint64, bool) {
	for _, ev := range e.Values {
		if ev.Name == name {
			return ev.Value, true
		}
	}
	return 0, false
}

// Field returns the named field.
func (s *Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Variant returns the variant for a discriminant.
func (u *Union) Variant(disc uint64) (Variant, bool) {
	for _, v := range u.Variants {
		if v.Discriminant == disc {
			return v, true
		}
	}
	return Variant{}, false
}

// String renders a one-line description of the node.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	switch t.Kind {
	case KindStruct:
		if t.Struct != nil {
			b.WriteString(t.Struct.Name)
		} else {
			b.WriteString("struct")
		}
	case KindUnion:
		b.WriteString("union")
		if t.Union != nil {
			b.WriteString("(")
			b.WriteString(strconv.Itoa(t.Union.Width))
			b.WriteString(" bits, ")
			b.WriteString(strconv.Itoa(len(t.Union.Variants)))
			b.WriteString(" variants)")
		}
	case KindList:
		b.WriteString("list<")
		b.WriteString(t.Elem.String())
		b.WriteString(">[")
		b.WriteString(expr.Describe(t.Size))
		b.WriteString("]")
	case KindString:
		b.WriteString(t.Encoding.String())
		if t.Size == nil {
			b.WriteString(" string, null-terminated")
		} else {
			b.WriteString(" string[")
			b.WriteString(t.Size.String())
			b.WriteString("]")
		}
	default:
		b.WriteString(t.Kind.String())
		if t.Size != nil {
			b.WriteString(":")
			b.WriteString(t.Size.String())
		}
		if t.Order == bitbuf.BigEndian {
			b.WriteString(" BE")
		}
	}
	return b.String()
}
