package codec

import (
	"math"
	"reflect"
	"strconv"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

// numericKind describes how raw bits map to a Go value for one kind.
type numericKind struct {
	goType reflect.Type
	wrap   func(raw uint64) any // raw is already sign-extended for signed kinds
	kind   schema.Kind
	width  int
}

func newNumericKinds() map[schema.Kind]numericKind {
	return map[schema.Kind]numericKind{
		schema.KindBool: {reflect.TypeOf(false), func(u uint64) any { return u != 0 }, schema.KindBool, 1},
		schema.KindU8:   {reflect.TypeOf(uint8(0)), func(u uint64) any { return uint8(u) }, schema.KindU8, 8},
		schema.KindS8:   {reflect.TypeOf(int8(0)), func(u uint64) any { return int8(u) }, schema.KindS8, 8},
		schema.KindU16:  {reflect.TypeOf(uint16(0)), func(u uint64) any { return uint16(u) }, schema.KindU16, 16},
		schema.KindS16:  {reflect.TypeOf(int16(0)), func(u uint64) any { return int16(u) }, schema.KindS16, 16},
		schema.KindU32:  {reflect.TypeOf(uint32(0)), func(u uint64) any { return uint32(u) }, schema.KindU32, 32},
		schema.KindS32:  {reflect.TypeOf(int32(0)), func(u uint64) any { return int32(u) }, schema.KindS32, 32},
		schema.KindU64:  {reflect.TypeOf(uint64(0)), func(u uint64) any { return u }, schema.KindU64, 64},
		schema.KindS64:  {reflect.TypeOf(int64(0)), func(u uint64) any { return int64(u) }, schema.KindS64, 64},
		schema.KindF32:  {reflect.TypeOf(float32(0)), func(u uint64) any { return math.Float32frombits(uint32(u)) }, schema.KindF32, 32},
		schema.KindF64:  {reflect.TypeOf(float64(0)), func(u uint64) any { return math.Float64frombits(u) }, schema.KindF64, 64},
	}
}

// NumericCodec reads and writes integers, floats and booleans of a width
// given by an expression.
type NumericCodec struct {
	size  expr.Int
	nk    numericKind
	order bitbuf.ByteOrder
}

func (c *NumericCodec) width(r expr.Resolver, phase errors.Phase) (int, error) {
	n, err := c.size.Eval(r)
	if err != nil {
		return 0, err
	}
	limit := int64(c.nk.width)
	if c.nk.kind == schema.KindBool {
		limit = 64
	}
	if n < 1 || n > limit || (c.nk.kind.IsFloat() && n != limit) {
		return 0, errors.New(phase, errors.KindOutOfRange).
			Schema(c.nk.kind.String()).
			Detail("width %d (from %s) not valid for %s", n, c.size, c.nk.kind).
			Value(n).
			Build()
	}
	return int(n), nil
}

func (c *NumericCodec) Decode(buf *bitbuf.Buffer, r expr.Resolver, _ Builder) (any, error) {
	n, err := c.width(r, errors.PhaseDecode)
	if err != nil {
		return nil, err
	}
	raw, err := buf.ReadBits(n, c.order)
	if err != nil {
		return nil, err
	}
	if c.nk.kind.IsSigned() && n < 64 && raw&(1<<(n-1)) != 0 {
		raw |= ^uint64(0) << n
	}
	return c.nk.wrap(raw), nil
}

func (c *NumericCodec) Encode(v any, w *bitbuf.Writer, r expr.Resolver) error {
	n, err := c.width(r, errors.PhaseEncode)
	if err != nil {
		return err
	}
	raw, err := c.toBits(v, n)
	if err != nil {
		return err
	}
	return w.WriteBits(raw, n, c.order)
}

func (c *NumericCodec) toBits(v any, n int) (uint64, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() || (rv.Kind() == reflect.Ptr && rv.IsNil()) {
		return 0, errors.NilPointer(errors.PhaseEncode, nil, typeName(v))
	}

	switch c.nk.kind {
	case schema.KindBool:
		if rv.Kind() == reflect.Bool {
			if rv.Bool() {
				return 1, nil
			}
			return 0, nil
		}
		if u, ok := uintOf(rv); ok && u <= 1 {
			return u, nil
		}
	case schema.KindF32:
		if f, ok := floatOf(rv); ok {
			return uint64(math.Float32bits(float32(f))), nil
		}
	case schema.KindF64:
		if f, ok := floatOf(rv); ok {
			return math.Float64bits(f), nil
		}
	case schema.KindS8, schema.KindS16, schema.KindS32, schema.KindS64:
		i, ok := intOf(rv)
		if !ok {
			if _, isUint := uintOf(rv); isUint {
				return 0, errors.Overflow(errors.PhaseEncode, nil, rv.Interface(), c.nk.kind.String())
			}
			break
		}
		if n < 64 {
			lo, hi := -(int64(1) << (n - 1)), int64(1)<<(n-1)-1
			if i < lo || i > hi {
				return 0, errors.Overflow(errors.PhaseEncode, nil, i, strconv.Itoa(n)+"-bit "+c.nk.kind.String())
			}
		}
		return uint64(i), nil
	default:
		u, ok := uintOf(rv)
		if !ok {
			if i, isInt := intOf(rv); isInt && i < 0 {
				return 0, errors.Overflow(errors.PhaseEncode, nil, i, c.nk.kind.String())
			}
			break
		}
		if n < 64 && u>>n != 0 {
			return 0, errors.Overflow(errors.PhaseEncode, nil, u, strconv.Itoa(n)+"-bit "+c.nk.kind.String())
		}
		return u, nil
	}
	return 0, errors.TypeMismatch(errors.PhaseEncode, nil, rv.Type().String(), c.nk.kind.String())
}

func (c *NumericCodec) Size() expr.Int {
	return c.size
}

func (c *NumericCodec) Types() []reflect.Type {
	return []reflect.Type{c.nk.goType}
}

func (c *NumericCodec) Label() string {
	l := c.nk.kind.String() + " (" + c.size.String() + " bits"
	if c.nk.width > 8 || c.size.IsParameterized() {
		l += ", " + c.order.String()
	}
	return l + ")"
}
