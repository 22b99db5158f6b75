package bitbuf

import (
	"fmt"
	"strings"
)

// ByteOrder controls how the bytes of a multi-byte field are assembled.
// Bits inside a byte are always consumed most-significant first.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

var orderNames = [...]string{
	LittleEndian: "little-endian",
	BigEndian:    "big-endian",
}

func (o ByteOrder) String() string {
	if int(o) < len(orderNames) {
		return orderNames[o]
	}
	return fmt.Sprintf("ByteOrder(%d)", uint8(o))
}

// ParseByteOrder accepts "le", "little", "little-endian" and the big-endian
// equivalents. The empty string yields LittleEndian.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "le", "little", "little-endian", "littleendian":
		return LittleEndian, nil
	case "be", "big", "big-endian", "bigendian":
		return BigEndian, nil
	}
	return LittleEndian, fmt.Errorf("unknown byte order %q", s)
}

// PadBits returns the number of bits needed to reach the next byte boundary.
func PadBits(pos int64) int64 {
	return (8 - pos%8) % 8
}
