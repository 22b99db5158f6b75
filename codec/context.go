package codec

import (
	"strings"

	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

// ResolverContext describes the names a struct exposes to expressions and
// how to read them off an instance. It is built once per compiled struct.
type ResolverContext struct {
	owner     *schema.Struct
	accessors map[string]accessor
	bindings  []*Binding
	nested    map[string]*ResolverContext // struct-valued fields, for dotted paths
}

func newResolverContext(owner *schema.Struct, accessors map[string]accessor, bindings []*Binding) *ResolverContext {
	rc := &ResolverContext{owner: owner, accessors: accessors, bindings: bindings}
	for _, b := range bindings {
		if obj := objectOf(b.Codec); obj != nil {
			if rc.nested == nil {
				rc.nested = make(map[string]*ResolverContext)
			}
			rc.nested[b.Name] = obj.ctx
		}
	}
	return rc
}

// objectOf unwraps decorators down to an ObjectCodec.
func objectOf(c Codec) *ObjectCodec {
	for {
		switch v := c.(type) {
		case *ObjectCodec:
			return v
		case interface{ Unwrap() Codec }:
			c = v.Unwrap()
		default:
			return nil
		}
	}
}

// Owns reports whether name is a field of the struct.
func (rc *ResolverContext) Owns(name string) bool {
	_, ok := rc.accessors[name]
	return ok
}

// Bindings returns the fields in wire order.
func (rc *ResolverContext) Bindings() []*Binding {
	return rc.bindings
}

// Resolver binds the context to an instance for one call. Names prefixed
// with "outer." go to outer. Field names, "self." names and dotted paths
// through struct fields ("hdr.len") read the instance. Anything else is
// delegated to outer.
func (rc *ResolverContext) Resolver(instance any, outer expr.Resolver) expr.Resolver {
	return &instanceResolver{ctx: rc, instance: instance, outer: outer}
}

type instanceResolver struct {
	ctx      *ResolverContext
	instance any
	outer    expr.Resolver
}

func (r *instanceResolver) Lookup(name string) (any, bool) {
	if rest, ok := strings.CutPrefix(name, expr.OuterPrefix); ok {
		if r.outer == nil {
			return nil, false
		}
		return r.outer.Lookup(rest)
	}
	if v, ok, mine := r.own(name); mine {
		return v, ok
	}
	if r.outer == nil {
		return nil, false
	}
	return r.outer.Lookup(name)
}

// own resolves name inside the instance. mine is false when the name does
// not belong to this scope.
func (r *instanceResolver) own(name string) (v any, ok, mine bool) {
	if rest, found := strings.CutPrefix(name, expr.SelfPrefix); found {
		v, ok, _ = r.own(rest)
		return v, ok, true
	}
	if acc, found := r.ctx.accessors[name]; found {
		v, ok = acc.get(r.instance)
		return v, ok, true
	}
	head, rest, dotted := strings.Cut(name, ".")
	if !dotted {
		return nil, false, false
	}
	acc, found := r.ctx.accessors[head]
	if !found {
		return nil, false, false
	}
	inner, ok := acc.get(r.instance)
	nested := r.ctx.nested[head]
	if !ok || nested == nil {
		return nil, false, true
	}
	child := &instanceResolver{ctx: nested, instance: inner, outer: r}
	v, ok, _ = child.own(rest)
	return v, ok, true
}
