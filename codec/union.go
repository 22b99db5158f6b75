package codec

import (
	"reflect"
	"sort"
	"strconv"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

// VariantCodec is one entry of a discriminant registry.
type VariantCodec struct {
	Codec        Codec
	Struct       *schema.Struct
	Discriminant uint64
}

// DiscriminantRegistry maps discriminant values to variants and runtime
// types back to discriminants. Immutable after construction.
type DiscriminantRegistry struct {
	byDisc   map[uint64]*VariantCodec
	byName   map[string]*VariantCodec
	byGoType map[reflect.Type]*VariantCodec
	ordered  []*VariantCodec
}

// NewDiscriminantRegistry fails when two variants claim one discriminant or
// one runtime type.
func NewDiscriminantRegistry(variants []VariantCodec) (*DiscriminantRegistry, error) {
	reg := &DiscriminantRegistry{
		byDisc:   make(map[uint64]*VariantCodec, len(variants)),
		byName:   make(map[string]*VariantCodec, len(variants)),
		byGoType: make(map[reflect.Type]*VariantCodec, len(variants)),
	}
	owned := append([]VariantCodec(nil), variants...)
	for i := range owned {
		v := &owned[i]
		if prev, ok := reg.byDisc[v.Discriminant]; ok {
			return nil, errors.DuplicateDiscriminant(v.Discriminant, prev.Struct.Name, v.Struct.Name)
		}
		if v.Struct.GoType != nil {
			if prev, ok := reg.byGoType[v.Struct.GoType]; ok {
				return nil, errors.New(errors.PhaseCompile, errors.KindDuplicateDiscriminant).
					GoType(v.Struct.GoType.String()).
					Detail("type registered for discriminants %d and %d", prev.Discriminant, v.Discriminant).
					Build()
			}
			reg.byGoType[v.Struct.GoType] = v
		} else {
			if prev, ok := reg.byName[v.Struct.Name]; ok {
				return nil, errors.New(errors.PhaseCompile, errors.KindDuplicateDiscriminant).
					Schema(v.Struct.Name).
					Detail("struct registered for discriminants %d and %d", prev.Discriminant, v.Discriminant).
					Build()
			}
			reg.byName[v.Struct.Name] = v
		}
		reg.byDisc[v.Discriminant] = v
		reg.ordered = append(reg.ordered, v)
	}
	sort.Slice(reg.ordered, func(i, j int) bool {
		return reg.ordered[i].Discriminant < reg.ordered[j].Discriminant
	})
	return reg, nil
}

// Lookup returns the variant for a discriminant.
func (r *DiscriminantRegistry) Lookup(disc uint64) (*VariantCodec, bool) {
	v, ok := r.byDisc[disc]
	return v, ok
}

// For returns the variant registered for the runtime type of v.
func (r *DiscriminantRegistry) For(v any) (*VariantCodec, bool) {
	if rec, ok := v.(*Record); ok && rec != nil {
		vc, ok := r.byName[rec.Name]
		return vc, ok
	}
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	vc, ok := r.byGoType[t]
	return vc, ok
}

// Variants returns the entries ordered by discriminant.
func (r *DiscriminantRegistry) Variants() []*VariantCodec {
	return r.ordered
}

// UnionCodec reads a discriminant and dispatches the rest of the value to
// the matching variant.
type UnionCodec struct {
	reg   *DiscriminantRegistry
	size  expr.Int
	width int
	order bitbuf.ByteOrder
}

func NewUnionCodec(width int, order bitbuf.ByteOrder, reg *DiscriminantRegistry) *UnionCodec {
	c := &UnionCodec{reg: reg, width: width, order: order}

	// Known only when every variant has the same literal size.
	common := int64(-1)
	for _, v := range reg.ordered {
		n, ok := expr.ConstValue(v.Codec.Size())
		if !ok || (common >= 0 && n != common) {
			common = -1
			break
		}
		common = n
	}
	if common >= 0 {
		c.size = expr.Const(int64(width) + common)
	}
	return c
}

// Registry returns the discriminant registry.
func (c *UnionCodec) Registry() *DiscriminantRegistry {
	return c.reg
}

func (c *UnionCodec) Decode(buf *bitbuf.Buffer, r expr.Resolver, b Builder) (any, error) {
	pos := buf.Position()
	disc, err := buf.ReadBits(c.width, c.order)
	if err != nil {
		return nil, err
	}
	v, ok := c.reg.Lookup(disc)
	if !ok {
		return nil, errors.UnknownVariant(pos, disc)
	}
	out, err := v.Codec.Decode(buf, r, b)
	if err != nil {
		return nil, errors.WithPath(err, v.Struct.Name)
	}
	return out, nil
}

func (c *UnionCodec) Encode(v any, w *bitbuf.Writer, r expr.Resolver) error {
	vc, ok := c.reg.For(v)
	if !ok {
		name := typeName(v)
		if rec, isRec := v.(*Record); isRec && rec != nil {
			name = "record " + rec.Name
		}
		return errors.UnregisteredType(name)
	}
	if err := w.WriteBits(vc.Discriminant, c.width, c.order); err != nil {
		return err
	}
	if err := vc.Codec.Encode(v, w, r); err != nil {
		return errors.WithPath(err, vc.Struct.Name)
	}
	return nil
}

func (c *UnionCodec) Size() expr.Int {
	return c.size
}

func (c *UnionCodec) padded() bool {
	for _, v := range c.reg.ordered {
		if isPadded(v.Codec) {
			return true
		}
	}
	return false
}

func (c *UnionCodec) Types() []reflect.Type {
	seen := make(map[reflect.Type]bool)
	var out []reflect.Type
	for _, v := range c.reg.ordered {
		for _, t := range v.Codec.Types() {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func (c *UnionCodec) Label() string {
	return "union on " + strconv.Itoa(c.width) + "-bit " + c.order.String() + " discriminant, " +
		strconv.Itoa(len(c.reg.ordered)) + " variants"
}
