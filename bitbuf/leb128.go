package bitbuf

import (
	"github.com/wippyai/bitcodec/errors"
)

// LEB128 groups are seven value bits with a continuation flag in the high
// bit, least significant group first. Groups are read and written from the
// current bit position, which need not be byte aligned.

// ReadUvarint reads an unsigned LEB128 value that must fit in width bits
// (1..64). On error the cursor does not move.
func (b *Buffer) ReadUvarint(width int) (uint64, error) {
	start := b.pos
	maxGroups := (width + 6) / 7
	var result uint64
	for i := 0; ; i++ {
		c, err := b.ReadByte()
		if err != nil {
			b.pos = start
			return 0, err
		}
		group := uint64(c & 0x7f)
		if i == maxGroups-1 {
			rem := width - 7*i
			if c&0x80 != 0 || group>>rem != 0 {
				b.pos = start
				return 0, varintOverflow(start, width)
			}
		}
		result |= group << (7 * i)
		if c&0x80 == 0 {
			return result, nil
		}
	}
}

// ReadVarint reads a signed LEB128 value that must fit in width bits
// (1..64). On error the cursor does not move.
func (b *Buffer) ReadVarint(width int) (int64, error) {
	start := b.pos
	maxGroups := (width + 6) / 7
	var result int64
	var shift int
	for i := 0; ; i++ {
		c, err := b.ReadByte()
		if err != nil {
			b.pos = start
			return 0, err
		}
		group := c & 0x7f
		if i == maxGroups-1 {
			// Bits at and above the sign bit must all agree.
			rem := width - 7*i
			mask := byte(0x7f) &^ (1<<(rem-1) - 1)
			if c&0x80 != 0 || (group&mask != 0 && group&mask != mask) {
				b.pos = start
				return 0, varintOverflow(start, width)
			}
		}
		result |= int64(group) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 64 && group&0x40 != 0 {
				result |= ^int64(0) << shift
			}
			return result, nil
		}
	}
}

// WriteUvarint writes v as unsigned LEB128.
func (w *Writer) WriteUvarint(v uint64) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		w.Grow(8)
		w.writeRaw(uint64(c), 8)
		if v == 0 {
			return
		}
	}
}

// WriteVarint writes v as signed LEB128.
func (w *Writer) WriteVarint(v int64) {
	more := true
	for more {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			more = false
		} else {
			c |= 0x80
		}
		w.Grow(8)
		w.writeRaw(uint64(c), 8)
	}
}

// UvarintLen returns the number of groups WriteUvarint emits for v.
func UvarintLen(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

func varintOverflow(pos int64, width int) *errors.Error {
	return errors.New(errors.PhaseDecode, errors.KindOverflow).
		At(pos).
		Detail("LEB128 value exceeds %d bits", width).
		Build()
}
