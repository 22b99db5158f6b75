// Package guestmem decodes and encodes values directly in the linear memory
// of a WebAssembly guest.
//
// A Region names a byte range of guest memory. Decoding reads from a view of
// the memory without copying; decoded strings and numbers do not alias it.
//
//	guest memory  ─┬─ Region{Offset, Length} ──► codec.Decode ──► value
//	               └─ Region{Offset, Length} ◄── codec.Encode ◄── value
package guestmem

import (
	"reflect"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/codec"
	"github.com/wippyai/bitcodec/errors"
)

// Region is a byte range in guest memory. A zero Length on decode means
// "up to the end of memory".
type Region struct {
	Offset uint32
	Length uint32
}

// End returns the first offset past the region.
func (r Region) End() uint64 {
	return uint64(r.Offset) + uint64(r.Length)
}

// Memory binds a guest memory to a compiler.
type Memory struct {
	mem  api.Memory
	comp *codec.Compiler
}

// New wraps mem. A nil compiler uses the default one.
func New(mem api.Memory, comp *codec.Compiler) *Memory {
	if comp == nil {
		comp = codec.NewDefaultCompiler()
	}
	return &Memory{mem: mem, comp: comp}
}

// Decode reads one value starting at r.Offset. It returns the value and the
// bytes it occupied.
func (m *Memory) Decode(c codec.Codec, r Region) (any, Region, error) {
	if err := m.check(errors.PhaseDecode); err != nil {
		return nil, Region{}, err
	}
	size := m.mem.Size()
	if r.Offset > size {
		return nil, Region{}, outside(errors.PhaseDecode, r, size)
	}
	if r.Length == 0 {
		r.Length = size - r.Offset
	}
	data, ok := m.mem.Read(r.Offset, r.Length)
	if !ok {
		return nil, Region{}, outside(errors.PhaseDecode, r, size)
	}

	buf := bitbuf.NewBuffer(data)
	v, err := m.comp.DecodeFrom(c, buf)
	if err != nil {
		return nil, Region{}, err
	}
	used := (buf.Position() + 7) / 8
	return v, Region{Offset: r.Offset, Length: uint32(used)}, nil
}

// Encode writes v at r.Offset. It fails when the encoding is longer than
// r.Length or does not fit in memory; nothing is written in that case.
func (m *Memory) Encode(c codec.Codec, r Region, v any) (Region, error) {
	if err := m.check(errors.PhaseEncode); err != nil {
		return Region{}, err
	}
	data, err := m.comp.Encode(c, v)
	if err != nil {
		return Region{}, err
	}
	if uint64(len(data)) > uint64(r.Length) {
		return Region{}, errors.New(errors.PhaseEncode, errors.KindOutOfRange).
			Detail("encoded %d bytes, region holds %d", len(data), r.Length).
			Value(len(data)).
			Build()
	}
	written := Region{Offset: r.Offset, Length: uint32(len(data))}
	if size := m.mem.Size(); written.End() > uint64(size) || !m.mem.Write(r.Offset, data) {
		return Region{}, outside(errors.PhaseEncode, written, size)
	}
	return written, nil
}

func (m *Memory) check(phase errors.Phase) error {
	if !isValidMemory(m.mem) {
		return errors.New(phase, errors.KindNilPointer).
			Detail("guest memory is nil").
			Build()
	}
	return nil
}

// isValidMemory rejects nil and typed-nil memories.
func isValidMemory(mem api.Memory) bool {
	if mem == nil {
		return false
	}
	v := reflect.ValueOf(mem)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !v.IsNil()
	}
	return true
}

func outside(phase errors.Phase, r Region, size uint32) error {
	return errors.New(phase, errors.KindOutOfRange).
		Detail("region %d+%d outside memory of %d bytes", r.Offset, r.Length, size).
		Value(r.End()).
		Build()
}
