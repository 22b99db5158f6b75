package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/schema"
)

// Factory builds the codec for one schema node. It returns nil, nil when
// it does not handle the node.
type Factory interface {
	Create(req *Request) (Codec, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(req *Request) (Codec, error)

func (f FactoryFunc) Create(req *Request) (Codec, error) {
	return f(req)
}

// Decorator may wrap every codec a Registry produces.
type Decorator interface {
	Decorate(req *Request, c Codec) (Codec, error)
}

// DecoratorFunc adapts a function to Decorator.
type DecoratorFunc func(req *Request, c Codec) (Codec, error)

func (f DecoratorFunc) Decorate(req *Request, c Codec) (Codec, error) {
	return f(req, c)
}

// Request is one node to compile. Nested nodes are built through Root so
// they pass through the same cache and decorators.
type Request struct {
	Type *schema.Type
	Root Factory
	Path []string

	building []cacheKey      // cache entries being built on this chain
	structs  []*schema.Struct // structs being compiled on this chain
}

// Child returns the request for a nested node.
func (r *Request) Child(t *schema.Type, segment string) *Request {
	path := make([]string, len(r.Path), len(r.Path)+1)
	copy(path, r.Path)
	if segment != "" {
		path = append(path, segment)
	}
	return &Request{
		Type:     t,
		Root:     r.Root,
		Path:     path,
		building: r.building,
		structs:  r.structs,
	}
}

// Build compiles a nested node through Root.
func (r *Request) Build(t *schema.Type, segment string) (Codec, error) {
	return r.Root.Create(r.Child(t, segment))
}

func (r *Request) isBuilding(key cacheKey) bool {
	for _, k := range r.building {
		if k == key {
			return true
		}
	}
	return false
}

func (r *Request) withBuilding(key cacheKey) *Request {
	cp := *r
	cp.building = append(r.building[:len(r.building):len(r.building)], key)
	return &cp
}

func (r *Request) enterStruct(s *schema.Struct) (*Request, error) {
	for _, active := range r.structs {
		if active == s {
			return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
				Path(r.Path...).
				Schema(s.Name).
				Detail("recursive struct").
				Build()
		}
	}
	cp := *r
	cp.structs = append(r.structs[:len(r.structs):len(r.structs)], s)
	return &cp, nil
}

// Registry asks its factories in order; the first codec returned wins and
// is passed through every decorator. Decorators apply in order, so the last
// one is outermost.
type Registry struct {
	factories  []Factory
	decorators []Decorator
}

func NewRegistry(factories []Factory, decorators ...Decorator) *Registry {
	return &Registry{
		factories:  append([]Factory(nil), factories...),
		decorators: append([]Decorator(nil), decorators...),
	}
}

func (r *Registry) Create(req *Request) (Codec, error) {
	if req.Type == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Path(req.Path...).
			Detail("schema type is nil").
			Build()
	}
	for _, f := range r.factories {
		c, err := f.Create(req)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		for _, d := range r.decorators {
			if c, err = d.Decorate(req, c); err != nil {
				return nil, err
			}
		}
		Logger().Debug("codec created",
			zap.Strings("path", req.Path),
			zap.Stringer("schema", req.Type),
			zap.String("codec", c.Label()),
		)
		return c, nil
	}
	return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
		Path(req.Path...).
		Schema(req.Type.String()).
		Detail("no factory for %s", req.Type.Kind).
		Build()
}
