package codec

import (
	"reflect"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/expr"
)

// Codec decodes and encodes one schema node. Codecs are immutable once
// built and safe for concurrent use; buffers, writers, resolvers and
// instances are per call.
type Codec interface {
	// Decode reads a value. r resolves size and condition references; b
	// creates composite instances.
	Decode(buf *bitbuf.Buffer, r expr.Resolver, b Builder) (any, error)
	// Encode writes v.
	Encode(v any, w *bitbuf.Writer, r expr.Resolver) error
	// Size is the encoded size in bits, in the scope of the caller's
	// resolver. Nil means the size depends on content.
	Size() expr.Int
	// Types lists the Go types Decode can produce.
	Types() []reflect.Type
	// Label is a short human-readable description.
	Label() string
}

// BitSize evaluates c's size against r. It returns -1 when the size depends
// on content, or is parameterized and r cannot resolve it. Struct sizes
// that read the struct's own fields use "self." names, which resolve
// against a resolver bound to the value (ResolverContext.Resolver).
func BitSize(c Codec, r expr.Resolver) int64 {
	s := c.Size()
	if s == nil {
		return -1
	}
	if s.IsParameterized() && r == nil {
		return -1
	}
	v, err := s.Eval(r)
	if err != nil {
		return -1
	}
	return v
}

// padded is implemented by codecs that add alignment bits not counted in
// Size.
type padded interface {
	padded() bool
}

func isPadded(c Codec) bool {
	p, ok := c.(padded)
	return ok && p.padded()
}

var (
	typeAnys   = reflect.TypeOf([]any(nil))
	typeString = reflect.TypeOf("")
	typeRecord = reflect.TypeOf((*Record)(nil))
)
