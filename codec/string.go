package codec

import (
	"reflect"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

// stringBase holds what fixed and null-terminated strings share.
type stringBase struct {
	cs       charset
	conv     schema.Converter
	match    string
	encoding schema.Encoding
}

func (s *stringBase) check(text string, pos int64, phase errors.Phase) error {
	if s.match == "" || text == s.match {
		return nil
	}
	if phase == errors.PhaseDecode {
		return errors.Validation(pos, s.match, text)
	}
	return errors.New(phase, errors.KindValidation).
		Detail("expected %q, got %q", s.match, text).
		Value(text).
		Build()
}

func (s *stringBase) text(v any) (string, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.String {
		return "", errors.TypeMismatch(errors.PhaseEncode, nil, typeName(v), "string")
	}
	return rv.String(), nil
}

func (s *stringBase) label(kind string) string {
	l := s.encoding.String() + " string, " + kind
	if s.match != "" {
		l += ", must equal \"" + s.match + "\""
	}
	if d := s.conv.Description(); d != "" {
		l += ", " + d
	}
	return l
}

// FixedStringCodec reads a string of a given number of bytes.
type FixedStringCodec struct {
	count expr.Int
	size  expr.Int
	stringBase
}

func (c *FixedStringCodec) Decode(buf *bitbuf.Buffer, r expr.Resolver, _ Builder) (any, error) {
	n, err := c.count.Eval(r)
	if err != nil {
		return nil, err
	}
	pos := buf.Position()
	if n < 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			At(pos).
			Detail("negative string length %d", n).
			Build()
	}
	if rem := buf.BitsRemaining(); n > rem/8 {
		return nil, errors.BufferUnderflow(pos, n*8, rem)
	}

	raw := make([]byte, n)
	for i := range raw {
		b, err := buf.ReadByte()
		if err != nil {
			return nil, err
		}
		raw[i] = c.conv.Convert(b)
	}
	text, err := c.cs.decode(raw)
	if err != nil {
		return nil, err
	}
	if err := c.check(text, pos, errors.PhaseDecode); err != nil {
		return nil, err
	}
	return text, nil
}

func (c *FixedStringCodec) Encode(v any, w *bitbuf.Writer, r expr.Resolver) error {
	text, err := c.text(v)
	if err != nil {
		return err
	}
	if err := c.check(text, errors.NoPos, errors.PhaseEncode); err != nil {
		return err
	}
	n, err := c.count.Eval(r)
	if err != nil {
		return err
	}
	raw, err := c.cs.encode(text)
	if err != nil {
		return err
	}
	if int64(len(raw)) != n {
		return errors.LengthMismatch(n, int64(len(raw)))
	}
	w.Grow(n * 8)
	for _, b := range raw {
		if err := w.WriteByte(c.conv.Revert(b)); err != nil {
			return err
		}
	}
	return nil
}

func (c *FixedStringCodec) Size() expr.Int {
	return c.size
}

func (c *FixedStringCodec) Types() []reflect.Type {
	return []reflect.Type{typeString}
}

func (c *FixedStringCodec) Label() string {
	return c.label(c.count.String() + " characters")
}

// NullTerminatedStringCodec reads bytes up to and including a zero byte.
type NullTerminatedStringCodec struct {
	stringBase
}

func (c *NullTerminatedStringCodec) Decode(buf *bitbuf.Buffer, _ expr.Resolver, _ Builder) (any, error) {
	pos := buf.Position()
	var raw []byte
	for {
		b, err := buf.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == 0 {
			break
		}
		raw = append(raw, c.conv.Convert(b))
	}
	text, err := c.cs.decode(raw)
	if err != nil {
		return nil, err
	}
	if err := c.check(text, pos, errors.PhaseDecode); err != nil {
		return nil, err
	}
	return text, nil
}

func (c *NullTerminatedStringCodec) Encode(v any, w *bitbuf.Writer, _ expr.Resolver) error {
	text, err := c.text(v)
	if err != nil {
		return err
	}
	if err := c.check(text, errors.NoPos, errors.PhaseEncode); err != nil {
		return err
	}
	raw, err := c.cs.encode(text)
	if err != nil {
		return err
	}
	w.Grow(int64(len(raw)+1) * 8)
	for i, b := range raw {
		out := c.conv.Revert(b)
		if out == 0 {
			return errors.InvalidData(errors.PhaseEncode, []string{indexSegment(i)}, "byte would be read back as the terminator")
		}
		if err := w.WriteByte(out); err != nil {
			return err
		}
	}
	return w.WriteByte(0)
}

// Size is nil: the length depends on content.
func (c *NullTerminatedStringCodec) Size() expr.Int {
	return nil
}

func (c *NullTerminatedStringCodec) Types() []reflect.Type {
	return []reflect.Type{typeString}
}

func (c *NullTerminatedStringCodec) Label() string {
	return c.label("null-terminated")
}
