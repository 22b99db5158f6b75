package codec

import (
	"reflect"

	"github.com/wippyai/bitcodec/schema"
)

// Builder creates the empty instance a struct decodes into.
type Builder interface {
	Create(s *schema.Struct) (any, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(s *schema.Struct) (any, error)

func (f BuilderFunc) Create(s *schema.Struct) (any, error) {
	return f(s)
}

// DefaultBuilder creates a pointer to a zero Go struct when the schema is
// bound to one, and a *Record otherwise.
type DefaultBuilder struct{}

func (DefaultBuilder) Create(s *schema.Struct) (any, error) {
	if s.GoType != nil {
		return reflect.New(s.GoType).Interface(), nil
	}
	return NewRecord(s.Name), nil
}
