package bitbuf

import (
	"github.com/wippyai/bitcodec/errors"
)

const initialWriterCap = 64

// Writer accumulates a bit stream MSB-first. The zero value is ready to use.
// Not safe for concurrent use.
type Writer struct {
	buf []byte
	pos int64
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, initialWriterCap)}
}

// Position returns the number of bits written.
func (w *Writer) Position() int64 {
	return w.pos
}

// Bytes returns the written stream. A trailing partial byte is zero padded.
// The slice aliases the writer's storage until the next write or Reset.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reset discards everything written, keeping capacity.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.pos = 0
}

// Grow ensures room for another bits bits without reallocating.
func (w *Writer) Grow(bits int64) {
	need := int((w.pos + bits + 7) / 8)
	if need > cap(w.buf) {
		nb := make([]byte, len(w.buf), need+need/2)
		copy(nb, w.buf)
		w.buf = nb
	}
}

// WriteBits writes the low n bits (0..64) of value per order. Higher bits of
// value are ignored.
func (w *Writer) WriteBits(value uint64, n int, order ByteOrder) error {
	if n == 0 {
		return nil
	}
	if n < 0 || n > MaxBits {
		return errors.New(errors.PhaseEncode, errors.KindOutOfRange).
			At(w.pos).
			Detail("cannot write %d bits in one call", n).
			Build()
	}
	if n < 64 {
		value &= 1<<n - 1
	}
	w.Grow(int64(n))

	if order == BigEndian || n <= 8 {
		w.writeRaw(value, n)
		return nil
	}

	for left := n; left > 0; left -= 8 {
		width := 8
		if left < 8 {
			width = left
		}
		w.writeRaw(value&0xFF, width)
		value >>= 8
	}
	return nil
}

// WriteByte writes 8 bits.
func (w *Writer) WriteByte(c byte) error {
	return w.WriteBits(uint64(c), 8, BigEndian)
}

// WriteZeros writes n zero bits.
func (w *Writer) WriteZeros(n int64) {
	w.Grow(n)
	for n > 0 {
		take := n
		if take > MaxBits {
			take = MaxBits
		}
		w.writeRaw(0, int(take))
		n -= take
	}
}

// writeRaw appends the low n bits of v MSB-first.
func (w *Writer) writeRaw(v uint64, n int) {
	for n > 0 {
		off := int(w.pos & 7)
		if off == 0 {
			w.buf = append(w.buf, 0)
		}
		free := 8 - off
		take := free
		if n < take {
			take = n
		}
		bits := byte(v>>(n-take)) & byte(1<<take-1)
		w.buf[len(w.buf)-1] |= bits << (free - take)
		w.pos += int64(take)
		n -= take
	}
}
