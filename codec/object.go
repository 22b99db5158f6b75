package codec

import (
	"reflect"
	"strings"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

// ObjectCodec decodes a struct field by field. Each decoded field is stored
// into the instance before the next one is read, so later size and
// condition expressions can reference it.
type ObjectCodec struct {
	s       *schema.Struct
	ctx     *ResolverContext
	ownSize expr.Int // in the struct's own scope
	size    expr.Int // lifted into the caller's scope, own fields as "self."
	exact   bool     // no binding adds uncounted padding
}

// NewObjectCodec builds the codec for s from already compiled bindings.
func NewObjectCodec(s *schema.Struct, ctx *ResolverContext) *ObjectCodec {
	c := &ObjectCodec{s: s, ctx: ctx, exact: true}

	sizes := make([]expr.Int, 0, len(ctx.bindings))
	for _, b := range ctx.bindings {
		if isPadded(b.Codec) {
			c.exact = false
		}
		bs := b.Size()
		if bs == nil {
			sizes = nil
			break
		}
		sizes = append(sizes, bs)
	}
	if sizes != nil || len(ctx.bindings) == 0 {
		c.ownSize = expr.Sum(sizes...)
		if lifted, ok := expr.Lift(c.ownSize, ctx.Owns); ok {
			c.size = lifted
		}
	}
	return c
}

// Struct returns the schema this codec was built from.
func (c *ObjectCodec) Struct() *schema.Struct {
	return c.s
}

// Context returns the resolver context of the struct.
func (c *ObjectCodec) Context() *ResolverContext {
	return c.ctx
}

func (c *ObjectCodec) Decode(buf *bitbuf.Buffer, r expr.Resolver, b Builder) (any, error) {
	if b == nil {
		b = DefaultBuilder{}
	}
	inst, err := b.Create(c.s)
	if err != nil {
		return nil, errors.Instantiation(c.s.Name, err)
	}
	if err := c.checkInstance(inst, errors.PhaseDecode); err != nil {
		return nil, errors.Instantiation(c.s.Name, err)
	}

	ir := c.ctx.Resolver(inst, r)
	for _, binding := range c.ctx.bindings {
		if err := binding.Load(inst, buf, ir, b); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (c *ObjectCodec) Encode(v any, w *bitbuf.Writer, r expr.Resolver) error {
	if err := c.checkInstance(v, errors.PhaseEncode); err != nil {
		return err
	}
	ir := c.ctx.Resolver(v, r)

	start := w.Position()
	for _, binding := range c.ctx.bindings {
		if err := binding.Save(v, w, ir); err != nil {
			return err
		}
	}
	if c.ownSize == nil || !c.exact {
		return nil
	}

	want, err := c.ownSize.Eval(ir)
	if err != nil {
		return err
	}
	if got := w.Position() - start; got != want {
		return errors.New(errors.PhaseEncode, errors.KindSizeMismatch).
			Schema(c.s.Name).
			At(start).
			Detail("wrote %d bits, size expression %s gives %d", got, c.ownSize, want).
			Build()
	}
	return nil
}

// InstanceSize evaluates the struct's size against a populated instance.
func (c *ObjectCodec) InstanceSize(v any, outer expr.Resolver) (int64, error) {
	if c.ownSize == nil {
		return -1, nil
	}
	return c.ownSize.Eval(c.ctx.Resolver(v, outer))
}

func (c *ObjectCodec) checkInstance(v any, phase errors.Phase) error {
	if c.s.GoType != nil {
		if _, ok := structValue(v, c.s.GoType); !ok {
			return errors.TypeMismatch(phase, nil, typeName(v), c.s.GoType.String())
		}
		return nil
	}
	if rec, ok := v.(*Record); !ok || rec == nil {
		return errors.TypeMismatch(phase, nil, typeName(v), "*codec.Record "+c.s.Name)
	}
	return nil
}

func (c *ObjectCodec) Size() expr.Int {
	return c.size
}

func (c *ObjectCodec) padded() bool {
	return !c.exact
}

func (c *ObjectCodec) Types() []reflect.Type {
	if c.s.GoType != nil {
		return []reflect.Type{reflect.PointerTo(c.s.GoType)}
	}
	return []reflect.Type{typeRecord}
}

func (c *ObjectCodec) Label() string {
	names := make([]string, len(c.ctx.bindings))
	for i, b := range c.ctx.bindings {
		names[i] = b.Name
	}
	return c.s.Name + "{" + strings.Join(names, ", ") + "}"
}
