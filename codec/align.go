package codec

import (
	"reflect"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

// AligningCodec pads to the next byte boundary after the wrapped codec.
// Padding is zero on encode and skipped on decode. Size reports the wrapped
// codec's size; the padding depends on the absolute position.
type AligningCodec struct {
	inner Codec
}

func NewAligningCodec(inner Codec) *AligningCodec {
	return &AligningCodec{inner: inner}
}

// Unwrap returns the wrapped codec.
func (c *AligningCodec) Unwrap() Codec {
	return c.inner
}

func (c *AligningCodec) Decode(buf *bitbuf.Buffer, r expr.Resolver, b Builder) (any, error) {
	v, err := c.inner.Decode(buf, r, b)
	if err != nil {
		return nil, err
	}
	if _, err := buf.Align(); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *AligningCodec) Encode(v any, w *bitbuf.Writer, r expr.Resolver) error {
	if err := c.inner.Encode(v, w, r); err != nil {
		return err
	}
	w.WriteZeros(bitbuf.PadBits(w.Position()))
	return nil
}

func (c *AligningCodec) Size() expr.Int {
	return c.inner.Size()
}

func (c *AligningCodec) Types() []reflect.Type {
	return c.inner.Types()
}

func (c *AligningCodec) Label() string {
	return c.inner.Label() + " (byte aligned)"
}

func (c *AligningCodec) padded() bool {
	return true
}

// AlignDecorator wraps codecs for nodes marked Align, and structs whose
// schema asks for trailing alignment.
type AlignDecorator struct{}

func (AlignDecorator) Decorate(req *Request, c Codec) (Codec, error) {
	t := req.Type
	if t.Align || (t.Kind == schema.KindStruct && t.Struct != nil && t.Struct.Align) {
		return NewAligningCodec(c), nil
	}
	return c, nil
}
