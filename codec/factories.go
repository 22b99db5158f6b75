package codec

import (
	"strconv"

	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

// DefaultFactories returns the built-in factories in claim order.
func DefaultFactories() []Factory {
	kinds := newNumericKinds()
	return []Factory{
		&NumberFactory{kinds: kinds},
		&BoolFactory{kinds: kinds},
		EnumFactory{},
		VarintFactory{},
		StringFactory{},
		ListFactory{},
		UnionFactory{},
		ObjectFactory{},
	}
}

// NumberFactory handles integer and float kinds.
type NumberFactory struct {
	kinds map[schema.Kind]numericKind
}

func NewNumberFactory() *NumberFactory {
	return &NumberFactory{kinds: newNumericKinds()}
}

func (f *NumberFactory) Create(req *Request) (Codec, error) {
	t := req.Type
	if !t.Kind.IsNumeric() || t.Kind == schema.KindBool {
		return nil, nil
	}
	return numericCodec(f.kinds, req)
}

// BoolFactory handles booleans. The default width is one bit.
type BoolFactory struct {
	kinds map[schema.Kind]numericKind
}

func NewBoolFactory() *BoolFactory {
	return &BoolFactory{kinds: newNumericKinds()}
}

func (f *BoolFactory) Create(req *Request) (Codec, error) {
	if req.Type.Kind != schema.KindBool {
		return nil, nil
	}
	return numericCodec(f.kinds, req)
}

func numericCodec(kinds map[schema.Kind]numericKind, req *Request) (Codec, error) {
	t := req.Type
	nk, ok := kinds[t.Kind]
	if !ok {
		return nil, errors.Unsupported(errors.PhaseCompile, "numeric kind "+t.Kind.String())
	}
	size := t.Size
	if size == nil {
		size = expr.Const(int64(t.Kind.DefaultWidth()))
	}
	c := &NumericCodec{size: size, nk: nk, order: t.Order}
	if !size.IsParameterized() {
		if _, err := c.width(nil, errors.PhaseCompile); err != nil {
			return nil, atPath(err, req.Path)
		}
	}
	return c, nil
}

// EnumFactory handles enums.
type EnumFactory struct{}

func (EnumFactory) Create(req *Request) (Codec, error) {
	t := req.Type
	if t.Kind != schema.KindEnum {
		return nil, nil
	}
	size := t.Size
	if size == nil {
		size = expr.Const(int64(t.Kind.DefaultWidth()))
	}
	c := &EnumCodec{enum: t.Enum, size: size, order: t.Order}
	if !size.IsParameterized() {
		if _, err := c.width(nil, errors.PhaseCompile); err != nil {
			return nil, atPath(err, req.Path)
		}
	}
	return c, nil
}

// StringFactory handles fixed-length and null-terminated strings.
type StringFactory struct{}

func (StringFactory) Create(req *Request) (Codec, error) {
	t := req.Type
	if t.Kind != schema.KindString {
		return nil, nil
	}
	cs, err := charsetFor(t.Encoding)
	if err != nil {
		return nil, atPath(err, req.Path)
	}
	base := stringBase{
		cs:       cs,
		conv:     schema.ConverterOf(t),
		match:    t.Match,
		encoding: t.Encoding,
	}
	if t.Size == nil {
		return &NullTerminatedStringCodec{stringBase: base}, nil
	}
	return &FixedStringCodec{
		count:      t.Size,
		size:       expr.Mul(t.Size, expr.Const(8)),
		stringBase: base,
	}, nil
}

// ListFactory handles counted lists.
type ListFactory struct{}

func (ListFactory) Create(req *Request) (Codec, error) {
	t := req.Type
	if t.Kind != schema.KindList {
		return nil, nil
	}
	if t.Size == nil || t.Elem == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindValidation).
			Path(req.Path...).
			Detail("list needs a count and an element type").
			Build()
	}
	elem, err := req.Build(t.Elem, "[]")
	if err != nil {
		return nil, err
	}
	return NewListCodec(t.Size, elem), nil
}

// UnionFactory handles tagged unions. Each variant is compiled as a nested
// struct through the root factory.
type UnionFactory struct{}

func (UnionFactory) Create(req *Request) (Codec, error) {
	t := req.Type
	if t.Kind != schema.KindUnion {
		return nil, nil
	}
	u := t.Union
	if u == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Path(req.Path...).
			Detail("union has no variants").
			Build()
	}
	variants := make([]VariantCodec, 0, len(u.Variants))
	for _, v := range u.Variants {
		c, err := req.Build(schema.Nested(v.Struct), v.Struct.Name+"#"+strconv.FormatUint(v.Discriminant, 10))
		if err != nil {
			return nil, err
		}
		variants = append(variants, VariantCodec{Codec: c, Struct: v.Struct, Discriminant: v.Discriminant})
	}
	reg, err := NewDiscriminantRegistry(variants)
	if err != nil {
		return nil, atPath(err, req.Path)
	}
	return NewUnionCodec(u.Width, u.Order, reg), nil
}

// ObjectFactory handles structs.
type ObjectFactory struct{}

func (ObjectFactory) Create(req *Request) (Codec, error) {
	t := req.Type
	if t.Kind != schema.KindStruct {
		return nil, nil
	}
	s := t.Struct
	if s == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Path(req.Path...).
			Detail("struct type without a struct").
			Build()
	}
	inner, err := req.enterStruct(s)
	if err != nil {
		return nil, err
	}

	accessors, err := buildAccessors(s, req.Path)
	if err != nil {
		return nil, err
	}
	bindings := make([]*Binding, 0, len(s.Fields))
	for _, f := range s.Fields {
		c, err := inner.Build(f.Type, f.Name)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, &Binding{
			Name:  f.Name,
			Codec: c,
			If:    f.If,
			acc:   accessors[f.Name],
		})
	}
	return NewObjectCodec(s, newResolverContext(s, accessors, bindings)), nil
}

// atPath prefixes a compile error with the field path of the request.
func atPath(err error, path []string) error {
	for i := len(path) - 1; i >= 0; i-- {
		err = errors.WithPath(err, path[i])
	}
	return err
}
