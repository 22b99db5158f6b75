package codec

import (
	"strconv"

	"github.com/wippyai/bitcodec/expr"
)

// Node is one line of a codec layout description.
type Node struct {
	Name     string
	Label    string
	Size     string
	Children []Node
}

// Describe walks a compiled codec and returns its layout tree.
func Describe(c Codec) Node {
	return describe("", c)
}

func describe(name string, c Codec) Node {
	n := Node{Name: name, Label: c.Label(), Size: expr.Describe(c.Size())}
	switch v := c.(type) {
	case *AligningCodec:
		inner := describe(name, v.inner)
		inner.Label = n.Label
		return inner
	case *ObjectCodec:
		for _, b := range v.ctx.bindings {
			child := describe(b.Name, b.Codec)
			if b.If != nil {
				child.Label += " if " + b.If.String()
			}
			n.Children = append(n.Children, child)
		}
	case *ListCodec:
		n.Children = append(n.Children, describe("[]", v.elem))
	case *UnionCodec:
		for _, vc := range v.reg.ordered {
			n.Children = append(n.Children, describe(strconv.FormatUint(vc.Discriminant, 10), vc.Codec))
		}
	}
	return n
}
