package bitbuf

import (
	"github.com/wippyai/bitcodec/errors"
)

// MaxBits is the widest value a single ReadBits or WriteBits call handles.
const MaxBits = 64

// Buffer is a bit-addressable read cursor over a byte region.
// Not safe for concurrent use.
type Buffer struct {
	data   []byte
	bitLen int64
	pos    int64
}

// NewBuffer creates a buffer over all bits of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data, bitLen: int64(len(data)) * 8}
}

// NewBufferBits creates a buffer limited to the first bitLen bits of data.
func NewBufferBits(data []byte, bitLen int64) *Buffer {
	if limit := int64(len(data)) * 8; bitLen > limit || bitLen < 0 {
		bitLen = limit
	}
	return &Buffer{data: data, bitLen: bitLen}
}

// Position returns the number of bits consumed since the start of the region.
func (b *Buffer) Position() int64 {
	return b.pos
}

// SetPosition moves the cursor. Positions past the end of the region fail.
func (b *Buffer) SetPosition(pos int64) error {
	if pos < 0 || pos > b.bitLen {
		return errors.OutOfRange(errors.PhaseDecode, pos, b.bitLen)
	}
	b.pos = pos
	return nil
}

// BitsRemaining returns the number of unread bits.
func (b *Buffer) BitsRemaining() int64 {
	return b.bitLen - b.pos
}

// Len returns the size of the region in bits.
func (b *Buffer) Len() int64 {
	return b.bitLen
}

// ReadBits reads n bits (0..64) and assembles them per order. On underflow
// the cursor does not move.
func (b *Buffer) ReadBits(n int, order ByteOrder) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > MaxBits {
		return 0, errors.New(errors.PhaseDecode, errors.KindOutOfRange).
			At(b.pos).
			Detail("cannot read %d bits in one call", n).
			Build()
	}
	if rem := b.BitsRemaining(); int64(n) > rem {
		return 0, errors.BufferUnderflow(b.pos, int64(n), rem)
	}

	if order == BigEndian || n <= 8 {
		return b.readRaw(n), nil
	}

	var v uint64
	shift := 0
	for left := n; left > 0; left -= 8 {
		w := 8
		if left < 8 {
			w = left
		}
		v |= b.readRaw(w) << shift
		shift += 8
	}
	return v, nil
}

// ReadByte reads 8 bits.
func (b *Buffer) ReadByte() (byte, error) {
	v, err := b.ReadBits(8, BigEndian)
	return byte(v), err
}

// Skip advances the cursor by n bits.
func (b *Buffer) Skip(n int64) error {
	if n < 0 {
		return errors.OutOfRange(errors.PhaseDecode, b.pos+n, b.bitLen)
	}
	if rem := b.BitsRemaining(); n > rem {
		return errors.BufferUnderflow(b.pos, n, rem)
	}
	b.pos += n
	return nil
}

// Align skips to the next byte boundary and returns the bits skipped.
func (b *Buffer) Align() (int64, error) {
	pad := PadBits(b.pos)
	return pad, b.Skip(pad)
}

// readRaw reads n bits MSB-first. Bounds are checked by the caller.
func (b *Buffer) readRaw(n int) uint64 {
	var v uint64
	for n > 0 {
		idx := b.pos >> 3
		off := int(b.pos & 7)
		avail := 8 - off
		take := avail
		if n < take {
			take = n
		}
		cur := uint64(b.data[idx])
		bits := (cur >> (avail - take)) & (1<<take - 1)
		v = v<<take | bits
		b.pos += int64(take)
		n -= take
	}
	return v
}
