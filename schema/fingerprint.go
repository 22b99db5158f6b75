package schema

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"reflect"

	"github.com/zeebo/blake3"

	"github.com/wippyai/bitcodec/expr"
)

// Hash is a 32-byte BLAKE3 digest of a schema node's structure.
type Hash [32]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 8 hex digits, for logs.
func (h Hash) Short() string {
	return hex.EncodeToString(h[:4])
}

// Fixed key for BLAKE3 keyed mode. Changing it changes every fingerprint.
var fingerprintKey = [32]byte{
	'b', 'i', 't', 'c', 'o', 'd', 'e', 'c', '.', 's', 'c', 'h', 'e', 'm', 'a', '.',
	'n', 'o', 'd', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint hashes the structure of t. Two nodes built separately but
// describing the same layout, Go binding and converters share a fingerprint.
func Fingerprint(t *Type) Hash {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("schema: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	w := fpWriter{h: hasher, active: map[*Struct]int{}}
	w.typ(t)
	var out Hash
	copy(out[:], hasher.Sum(nil))
	return out
}

// StructFingerprint hashes s as if it were wrapped in a struct type node.
func StructFingerprint(s *Struct) Hash {
	return Fingerprint(&Type{Kind: KindStruct, Struct: s})
}

type fpWriter struct {
	h      hash.Hash
	active map[*Struct]int
	buf    [8]byte
}

func (w *fpWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:], v)
	w.h.Write(w.buf[:])
}

func (w *fpWriter) str(s string) {
	w.u64(uint64(len(s)))
	w.h.Write([]byte(s))
}

func (w *fpWriter) flag(b bool) {
	if b {
		w.u64(1)
	} else {
		w.u64(0)
	}
}

func (w *fpWriter) typ(t *Type) {
	if t == nil {
		w.str("nil")
		return
	}
	w.u64(uint64(t.Kind))
	w.str(expr.Key(t.Size))
	w.u64(uint64(t.Order))
	w.flag(t.Align)
	switch t.Kind {
	case KindString:
		w.u64(uint64(t.Encoding))
		w.str(t.Match)
		w.converter(ConverterOf(t))
	case KindList:
		w.typ(t.Elem)
	case KindStruct:
		w.structure(t.Struct)
	case KindUnion:
		if t.Union == nil {
			w.str("nil")
			return
		}
		w.u64(uint64(t.Union.Width))
		w.u64(uint64(t.Union.Order))
		w.u64(uint64(len(t.Union.Variants)))
		for _, v := range t.Union.Variants {
			w.u64(v.Discriminant)
			w.structure(v.Struct)
		}
	case KindEnum:
		if t.Enum == nil {
			w.str("nil")
			return
		}
		w.u64(uint64(len(t.Enum.Values)))
		for _, v := range t.Enum.Values {
			w.str(v.Name)
			w.u64(v.Value)
		}
	}
}

func (w *fpWriter) structure(s *Struct) {
	if s == nil {
		w.str("nil")
		return
	}
	// Back-reference by depth keeps recursive structs finite.
	if depth, ok := w.active[s]; ok {
		w.str("ref")
		w.u64(uint64(depth))
		return
	}
	w.active[s] = len(w.active)
	defer delete(w.active, s)

	w.str(s.Name)
	if s.GoType != nil {
		w.str(s.GoType.PkgPath() + "." + s.GoType.String())
	} else {
		w.str("")
	}
	w.flag(s.Align)
	w.u64(uint64(len(s.Fields)))
	for _, f := range s.Fields {
		w.str(f.Name)
		w.str(expr.Key(f.If))
		w.typ(f.Type)
	}
}

// converter identifies c by concrete type and field values; descriptions
// are free text and may collide.
func (w *fpWriter) converter(c Converter) {
	if k, ok := c.(interface{ Key() string }); ok {
		w.str("key")
		w.str(k.Key())
		return
	}
	v := reflect.ValueOf(c)
	t := v.Type()
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	w.str(t.PkgPath() + "." + t.String())
	w.str(fmt.Sprintf("%#v", v.Interface()))
}
