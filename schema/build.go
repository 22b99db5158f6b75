package schema

import (
	"reflect"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/expr"
)

// Option adjusts a Type built by the helpers below.
type Option func(*Type)

// Bits sets a literal bit width.
func Bits(n int) Option {
	return func(t *Type) { t.Size = expr.Const(int64(n)) }
}

// SizeExpr sets the size from an expression.
func SizeExpr(e expr.Int) Option {
	return func(t *Type) { t.Size = e }
}

// BigEndian switches the field to big-endian.
func BigEndian() Option {
	return func(t *Type) { t.Order = bitbuf.BigEndian }
}

// Order sets the byte order.
func Order(o bitbuf.ByteOrder) Option {
	return func(t *Type) { t.Order = o }
}

// Aligned pads to the next byte boundary after the field.
func Aligned() Option {
	return func(t *Type) { t.Align = true }
}

func WithEncoding(e Encoding) Option {
	return func(t *Type) { t.Encoding = e }
}

// Match requires decoded text to equal s exactly.
func Match(s string) Option {
	return func(t *Type) { t.Match = s }
}

func WithConverter(c Converter) Option {
	return func(t *Type) { t.Converter = c }
}

func build(t *Type, opts []Option) *Type {
	for _, o := range opts {
		o(t)
	}
	return t
}

// Num returns a numeric type of the given kind.
func Num(k Kind, opts ...Option) *Type {
	return build(&Type{Kind: k}, opts)
}

func Bool(opts ...Option) *Type { return Num(KindBool, opts...) }
func U8(opts ...Option) *Type   { return Num(KindU8, opts...) }
func S8(opts ...Option) *Type   { return Num(KindS8, opts...) }
func U16(opts ...Option) *Type  { return Num(KindU16, opts...) }
func S16(opts ...Option) *Type  { return Num(KindS16, opts...) }
func U32(opts ...Option) *Type  { return Num(KindU32, opts...) }
func S32(opts ...Option) *Type  { return Num(KindS32, opts...) }
func U64(opts ...Option) *Type  { return Num(KindU64, opts...) }
func S64(opts ...Option) *Type  { return Num(KindS64, opts...) }
func F32(opts ...Option) *Type  { return Num(KindF32, opts...) }
func F64(opts ...Option) *Type  { return Num(KindF64, opts...) }

// VarUint is an unsigned LEB128 integer. Bits limits the decoded value
// width; the default is 64.
func VarUint(opts ...Option) *Type { return build(&Type{Kind: KindVarUint}, opts) }

// VarInt is a signed LEB128 integer.
func VarInt(opts ...Option) *Type { return build(&Type{Kind: KindVarInt}, opts) }

// FixedString returns a string of count characters.
func FixedString(count expr.Int, opts ...Option) *Type {
	return build(&Type{Kind: KindString, Size: count}, opts)
}

// CString returns a null-terminated string.
func CString(opts ...Option) *Type {
	return build(&Type{Kind: KindString}, opts)
}

// ListOf returns count repetitions of elem.
func ListOf(count expr.Int, elem *Type, opts ...Option) *Type {
	return build(&Type{Kind: KindList, Size: count, Elem: elem}, opts)
}

// Nested embeds s as a field type.
func Nested(s *Struct, opts ...Option) *Type {
	return build(&Type{Kind: KindStruct, Struct: s}, opts)
}

// OneOf returns a tagged union.
func OneOf(u *Union, opts ...Option) *Type {
	return build(&Type{Kind: KindUnion, Union: u}, opts)
}

// EnumOf returns an enum stored in an 8-bit field unless sized otherwise.
func EnumOf(e *Enum, opts ...Option) *Type {
	return build(&Type{Kind: KindEnum, Enum: e}, opts)
}

// NewStruct builds a struct from fields.
func NewStruct(name string, fields ...Field) *Struct {
	return &Struct{Name: name, Fields: fields}
}

// Bind makes s decode into values of goType. It returns s for chaining.
func (s *Struct) Bind(goType reflect.Type) *Struct {
	s.GoType = goType
	return s
}

// F is shorthand for a Field.
func F(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

// When makes the field conditional on cond.
func (f Field) When(cond expr.Bool) Field {
	f.If = cond
	return f
}

// NewUnion builds a union with a discriminant of width bits.
func NewUnion(width int, order bitbuf.ByteOrder, variants ...Variant) *Union {
	return &Union{Width: width, Order: order, Variants: variants}
}

// Case is shorthand for a Variant.
func Case(disc uint64, s *Struct) Variant {
	return Variant{Discriminant: disc, Struct: s}
}

// NewEnum numbers names from 0 in order.
func NewEnum(names ...string) *Enum {
	e := &Enum{Values: make([]EnumValue, len(names))}
	for i, n := range names {
		e.Values[i] = EnumValue{Name: n, Value: uint64(i)}
	}
	return e
}
