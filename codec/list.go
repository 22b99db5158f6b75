package codec

import (
	"reflect"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
)

// ListCodec decodes count repetitions of an element codec. Elements are
// decoded with the enclosing resolver, so nested structs see the list's
// owner as their outer scope.
type ListCodec struct {
	count expr.Int
	elem  Codec
	size  expr.Int
}

func NewListCodec(count expr.Int, elem Codec) *ListCodec {
	c := &ListCodec{count: count, elem: elem}
	// Elements sized by their own fields differ from one another.
	if es := elem.Size(); es != nil && !expr.RefersToSelf(es) {
		c.size = expr.Mul(count, es)
	}
	return c
}

// Elem returns the element codec.
func (c *ListCodec) Elem() Codec {
	return c.elem
}

// Count returns the count expression.
func (c *ListCodec) Count() expr.Int {
	return c.count
}

func (c *ListCodec) Decode(buf *bitbuf.Buffer, r expr.Resolver, b Builder) (any, error) {
	n, err := c.count.Eval(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			At(buf.Position()).
			Detail("negative element count %d from %s", n, c.count).
			Build()
	}

	// Reject counts the remaining input cannot hold before allocating.
	if bits := c.elemBits(r); bits > 0 {
		if rem := buf.BitsRemaining(); n > rem/bits {
			return nil, errors.BufferUnderflow(buf.Position(), n*bits, rem)
		}
	}

	out := make([]any, 0, min(n, buf.BitsRemaining()+1))
	for i := int64(0); i < n; i++ {
		v, err := c.elem.Decode(buf, r, b)
		if err != nil {
			return nil, errors.WithPath(err, indexSegment(int(i)))
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *ListCodec) Encode(v any, w *bitbuf.Writer, r expr.Resolver) error {
	items, ok := sliceOf(v)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, nil, typeName(v), "list")
	}
	n, err := c.count.Eval(r)
	if err != nil {
		return err
	}
	if int64(items.Len()) != n {
		return errors.New(errors.PhaseEncode, errors.KindLengthMismatch).
			Detail("list has %d elements, %s gives %d", items.Len(), c.count, n).
			Value(items.Len()).
			Build()
	}
	for i := 0; i < items.Len(); i++ {
		if err := c.elem.Encode(items.Index(i).Interface(), w, r); err != nil {
			return errors.WithPath(err, indexSegment(i))
		}
	}
	return nil
}

func (c *ListCodec) elemBits(r expr.Resolver) int64 {
	if expr.RefersToSelf(c.elem.Size()) {
		return -1
	}
	return BitSize(c.elem, r)
}

func (c *ListCodec) Size() expr.Int {
	return c.size
}

func (c *ListCodec) padded() bool {
	return isPadded(c.elem)
}

func (c *ListCodec) Types() []reflect.Type {
	return []reflect.Type{typeAnys}
}

func (c *ListCodec) Label() string {
	return "list of " + c.count.String() + " " + c.elem.Label()
}
