// Package bitbuf provides bit-addressable reading and writing.
//
// A Buffer is a read cursor over a byte region; a Writer accumulates a
// stream. Both address bits most-significant first within each byte. The
// ByteOrder of a call only matters for fields wider than 8 bits:
//
//   - BigEndian assembles the n bits as one MSB-first integer.
//   - LittleEndian splits the n bits into 8-bit groups in stream order,
//     the last group holding the n%8 leftover bits, and places group i at
//     bit offset 8*i of the result.
//
// Reading 0 bits returns 0 without moving. Reads past the end of the region
// fail with a buffer_underflow error and leave the cursor in place.
package bitbuf
