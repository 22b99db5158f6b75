package bitbuf

import (
	"bytes"
	"testing"

	"github.com/wippyai/bitcodec/errors"
)

func TestUvarint(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   uint64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0x80, 0x02}, 256},
		{[]byte{0xff, 0x7f}, 16383},
		{[]byte{0x80, 0x80, 0x01}, 16384},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			w := NewWriter()
			w.WriteUvarint(tt.value)
			if !bytes.Equal(w.Bytes(), tt.encoded) {
				t.Errorf("encode %d: got % x, want % x", tt.value, w.Bytes(), tt.encoded)
			}
			if n := UvarintLen(tt.value); n != len(tt.encoded) {
				t.Errorf("UvarintLen(%d) = %d, want %d", tt.value, n, len(tt.encoded))
			}

			got, err := NewBuffer(tt.encoded).ReadUvarint(32)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.value {
				t.Errorf("decode: got %d, want %d", got, tt.value)
			}
		})
	}
}

func TestVarint(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, -1},
		{[]byte{0x3f}, 63},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0x40}, -64},
		{[]byte{0xbf, 0x7f}, -65},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x78}, -2147483648},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x07}, 2147483647},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			w := NewWriter()
			w.WriteVarint(tt.value)
			if !bytes.Equal(w.Bytes(), tt.encoded) {
				t.Errorf("encode %d: got % x, want % x", tt.value, w.Bytes(), tt.encoded)
			}

			got, err := NewBuffer(tt.encoded).ReadVarint(32)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.value {
				t.Errorf("decode: got %d, want %d", got, tt.value)
			}
		})
	}
}

func TestVarint_Unaligned(t *testing.T) {
	w := NewWriter()
	if err := w.WriteBits(0x5, 3, BigEndian); err != nil {
		t.Fatal(err)
	}
	w.WriteUvarint(300)
	w.WriteVarint(-3)

	buf := NewBuffer(w.Bytes())
	if _, err := buf.ReadBits(3, BigEndian); err != nil {
		t.Fatal(err)
	}
	u, err := buf.ReadUvarint(64)
	if err != nil || u != 300 {
		t.Fatalf("ReadUvarint = %d, %v", u, err)
	}
	s, err := buf.ReadVarint(64)
	if err != nil || s != -3 {
		t.Fatalf("ReadVarint = %d, %v", s, err)
	}
	if buf.Position() != 3+24 {
		t.Errorf("Position = %d, want 27", buf.Position())
	}
}

func TestVarint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		width  int
		signed bool
		want   errors.Kind
	}{
		{"unsigned too many groups", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, 32, false, errors.KindOverflow},
		{"unsigned high bits set", []byte{0xff, 0xff, 0xff, 0xff, 0x1f}, 32, false, errors.KindOverflow},
		{"unsigned 8-bit", []byte{0x80, 0x02}, 8, false, errors.KindOverflow},
		{"signed 32 bad extension", []byte{0x80, 0x80, 0x80, 0x80, 0x70}, 32, true, errors.KindOverflow},
		{"truncated", []byte{0x80}, 32, false, errors.KindBufferUnderflow},
		{"signed truncated", []byte{0xff, 0xff}, 64, true, errors.KindBufferUnderflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewBuffer(tt.data)
			var err error
			if tt.signed {
				_, err = buf.ReadVarint(tt.width)
			} else {
				_, err = buf.ReadUvarint(tt.width)
			}
			if !errors.IsKind(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if buf.Position() != 0 {
				t.Errorf("cursor moved to %d on error", buf.Position())
			}
		})
	}
}
