package codec

import (
	"reflect"
	"strings"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

// EnumCodec stores a name as its numeric value.
type EnumCodec struct {
	enum  *schema.Enum
	size  expr.Int
	order bitbuf.ByteOrder
}

func (c *EnumCodec) width(r expr.Resolver, phase errors.Phase) (int, error) {
	n, err := c.size.Eval(r)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > 64 {
		return 0, errors.New(phase, errors.KindOutOfRange).
			Detail("enum width %d not valid", n).
			Value(n).
			Build()
	}
	return int(n), nil
}

func (c *EnumCodec) Decode(buf *bitbuf.Buffer, r expr.Resolver, _ Builder) (any, error) {
	n, err := c.width(r, errors.PhaseDecode)
	if err != nil {
		return nil, err
	}
	pos := buf.Position()
	raw, err := buf.ReadBits(n, c.order)
	if err != nil {
		return nil, err
	}
	name, ok := c.enum.Lookup(raw)
	if !ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			At(pos).
			Detail("no enum value for %d", raw).
			Value(raw).
			Build()
	}
	return name, nil
}

func (c *EnumCodec) Encode(v any, w *bitbuf.Writer, r expr.Resolver) error {
	n, err := c.width(r, errors.PhaseEncode)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	var raw uint64
	switch {
	case rv.Kind() == reflect.String:
		u, ok := c.enum.ValueOf(rv.String())
		if !ok {
			return errors.InvalidData(errors.PhaseEncode, nil, "unknown enum name "+rv.String())
		}
		raw = u
	default:
		u, ok := uintOf(rv)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, nil, typeName(v), "enum")
		}
		if _, known := c.enum.Lookup(u); !known {
			return errors.InvalidData(errors.PhaseEncode, nil, "value is not an enum member")
		}
		raw = u
	}
	if n < 64 && raw>>n != 0 {
		return errors.Overflow(errors.PhaseEncode, nil, raw, "enum width")
	}
	return w.WriteBits(raw, n, c.order)
}

func (c *EnumCodec) Size() expr.Int {
	return c.size
}

func (c *EnumCodec) Types() []reflect.Type {
	return []reflect.Type{typeString}
}

func (c *EnumCodec) Label() string {
	names := make([]string, len(c.enum.Values))
	for i, v := range c.enum.Values {
		names[i] = v.Name
	}
	return "enum (" + c.size.String() + " bits) of " + strings.Join(names, "|")
}
