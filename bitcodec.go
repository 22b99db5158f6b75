package bitcodec

import (
	"reflect"
	"sync"

	"github.com/wippyai/bitcodec/codec"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/schema"
)

var defaultCompiler = sync.OnceValue(codec.NewDefaultCompiler)

// Compiler returns the shared compiler used by the helpers in this package.
func Compiler() *codec.Compiler {
	return defaultCompiler()
}

// Compile builds the codec for s with the shared compiler.
func Compile(s *schema.Struct) (codec.Codec, error) {
	return Compiler().Compile(s)
}

// Unmarshal decodes data into a new T. The layout is bound to T without
// modifying s.
func Unmarshal[T any](s *schema.Struct, data []byte) (*T, error) {
	if s == nil {
		return nil, errors.NilPointer(errors.PhaseCompile, nil, "*schema.Struct")
	}
	bound := *s
	bound.GoType = reflect.TypeFor[T]()

	c, err := Compile(&bound)
	if err != nil {
		return nil, err
	}
	v, err := Compiler().Decode(c, data)
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// Marshal encodes v with the layout s. When v is a Go struct (or a pointer
// to one) and s has no Go type, s is bound to v's type.
func Marshal(s *schema.Struct, v any) ([]byte, error) {
	if s == nil {
		return nil, errors.NilPointer(errors.PhaseCompile, nil, "*schema.Struct")
	}
	if _, ok := v.(*codec.Record); !ok && s.GoType == nil {
		rt := reflect.TypeOf(v)
		for rt != nil && rt.Kind() == reflect.Ptr {
			rt = rt.Elem()
		}
		if rt != nil && rt.Kind() == reflect.Struct {
			bound := *s
			bound.GoType = rt
			s = &bound
		}
	}
	c, err := Compile(s)
	if err != nil {
		return nil, err
	}
	return Compiler().Encode(c, v)
}
