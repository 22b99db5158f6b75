package codec

import (
	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
)

// Binding is one field of a compiled struct: its codec and the accessor
// into the owning instance.
type Binding struct {
	Codec Codec
	If    expr.Bool
	acc   accessor
	Name  string
}

// Load decodes the field and stores it into inst. r must be inst's
// resolver so later fields can see this one.
func (b *Binding) Load(inst any, buf *bitbuf.Buffer, r expr.Resolver, builder Builder) error {
	if b.If != nil {
		present, err := b.If.Eval(r)
		if err != nil {
			return errors.WithPath(err, b.Name)
		}
		if !present {
			return nil
		}
	}
	v, err := b.Codec.Decode(buf, r, builder)
	if err != nil {
		return errors.WithPath(err, b.Name)
	}
	if err := b.acc.set(inst, v); err != nil {
		return errors.WithPath(err, b.Name)
	}
	return nil
}

// Save reads the field from inst and encodes it.
func (b *Binding) Save(inst any, w *bitbuf.Writer, r expr.Resolver) error {
	if b.If != nil {
		present, err := b.If.Eval(r)
		if err != nil {
			return errors.WithPath(err, b.Name)
		}
		if !present {
			return nil
		}
	}
	v, ok := b.acc.get(inst)
	if !ok {
		return errors.New(errors.PhaseEncode, errors.KindNilPointer).
			Path(b.Name).
			GoType(typeName(inst)).
			Detail("field is not set").
			Build()
	}
	if err := b.Codec.Encode(v, w, r); err != nil {
		return errors.WithPath(err, b.Name)
	}
	return nil
}

// Size is the field's size in the owning struct's scope. Conditional fields
// have a known size only when the condition is a literal.
func (b *Binding) Size() expr.Int {
	if b.If == nil {
		return b.scoped(b.Codec.Size())
	}
	if b.If.IsParameterized() {
		return nil
	}
	present, err := b.If.Eval(nil)
	if err != nil {
		return nil
	}
	if !present {
		return expr.Const(0)
	}
	return b.scoped(b.Codec.Size())
}

// scoped moves a nested value's "self." references under the field name.
func (b *Binding) scoped(size expr.Int) expr.Int {
	if !expr.RefersToSelf(size) {
		return size
	}
	return expr.Rebase(size, b.Name)
}
