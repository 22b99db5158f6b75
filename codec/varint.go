package codec

import (
	"reflect"
	"strconv"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

var (
	typeUint64 = reflect.TypeOf(uint64(0))
	typeInt64  = reflect.TypeOf(int64(0))
)

// VarintCodec reads and writes LEB128 integers whose value fits in width
// bits. Unsigned values decode to uint64, signed ones to int64.
type VarintCodec struct {
	width  int
	signed bool
}

func (c *VarintCodec) Decode(buf *bitbuf.Buffer, _ expr.Resolver, _ Builder) (any, error) {
	if c.signed {
		return buf.ReadVarint(c.width)
	}
	return buf.ReadUvarint(c.width)
}

func (c *VarintCodec) Encode(v any, w *bitbuf.Writer, _ expr.Resolver) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() || (rv.Kind() == reflect.Ptr && rv.IsNil()) {
		return errors.NilPointer(errors.PhaseEncode, nil, typeName(v))
	}

	if c.signed {
		i, ok := intOf(rv)
		if !ok {
			if _, isUint := uintOf(rv); isUint {
				return errors.Overflow(errors.PhaseEncode, nil, rv.Interface(), c.kind())
			}
			return errors.TypeMismatch(errors.PhaseEncode, nil, rv.Type().String(), c.kind())
		}
		if c.width < 64 {
			lo, hi := -(int64(1) << (c.width - 1)), int64(1)<<(c.width-1)-1
			if i < lo || i > hi {
				return errors.Overflow(errors.PhaseEncode, nil, i, c.kind())
			}
		}
		w.WriteVarint(i)
		return nil
	}

	u, ok := uintOf(rv)
	if !ok {
		if i, isInt := intOf(rv); isInt && i < 0 {
			return errors.Overflow(errors.PhaseEncode, nil, i, c.kind())
		}
		return errors.TypeMismatch(errors.PhaseEncode, nil, rv.Type().String(), c.kind())
	}
	if c.width < 64 && u>>c.width != 0 {
		return errors.Overflow(errors.PhaseEncode, nil, u, c.kind())
	}
	w.WriteUvarint(u)
	return nil
}

// Size is nil: the encoded length depends on the value.
func (c *VarintCodec) Size() expr.Int {
	return nil
}

func (c *VarintCodec) Types() []reflect.Type {
	if c.signed {
		return []reflect.Type{typeInt64}
	}
	return []reflect.Type{typeUint64}
}

func (c *VarintCodec) Label() string {
	return c.kind() + " (LEB128)"
}

func (c *VarintCodec) kind() string {
	name := "varuint"
	if c.signed {
		name = "varint"
	}
	return name + strconv.Itoa(c.width)
}

// VarintFactory handles LEB128 integers.
type VarintFactory struct{}

func (VarintFactory) Create(req *Request) (Codec, error) {
	t := req.Type
	if !t.Kind.IsVarint() {
		return nil, nil
	}
	width := int64(t.Kind.DefaultWidth())
	if t.Size != nil {
		w, ok := expr.ConstValue(t.Size)
		if !ok || w < 1 || w > 64 {
			return nil, atPath(errors.New(errors.PhaseCompile, errors.KindOutOfRange).
				Schema(t.Kind.String()).
				Detail("varint width %s must be a constant 1..64", t.Size).
				Build(), req.Path)
		}
		width = w
	}
	return &VarintCodec{width: int(width), signed: t.Kind == schema.KindVarInt}, nil
}
