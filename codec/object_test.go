package codec

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

type sample struct {
	Flag   bool
	Small  uint8
	Signed int8
	Count  uint16
	Items  []uint8
	Name   string
	Code   string
	Color  string
	Ratio  float32
	Large  int64 `bits:"big"`
}

func sampleSchema() *schema.Struct {
	return schema.NewStruct("sample",
		schema.F("flag", schema.Bool()),
		schema.F("small", schema.U8(schema.Bits(3))),
		schema.F("signed", schema.S8(schema.Bits(5))),
		schema.F("count", schema.U16()),
		schema.F("items", schema.ListOf(expr.Ref("count"), schema.U8())),
		schema.F("name", schema.CString()),
		schema.F("code", schema.FixedString(expr.Const(3))),
		schema.F("color", schema.EnumOf(schema.NewEnum("red", "green", "blue"), schema.Bits(2))),
		schema.F("ratio", schema.F32()),
		schema.F("big", schema.S64(schema.BigEndian())),
	).Bind(reflect.TypeOf(sample{}))
}

func TestObject_GoStructRoundTrip(t *testing.T) {
	comp := NewDefaultCompiler()
	c, err := comp.Compile(sampleSchema())
	if err != nil {
		t.Fatal(err)
	}

	in := sample{
		Flag:   true,
		Small:  5,
		Signed: -7,
		Count:  3,
		Items:  []uint8{1, 2, 250},
		Name:   "bits",
		Code:   "ABC",
		Color:  "blue",
		Ratio:  1.5,
		Large:  -1234567890123,
	}
	data, err := comp.Encode(c, &in)
	if err != nil {
		t.Fatal(err)
	}

	out, err := comp.Decode(c, data)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := out.(*sample)
	if !ok {
		t.Fatalf("Decode returned %T, want *sample", out)
	}
	if diff := cmp.Diff(in, *got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// A value works as well as a pointer.
	again, err := comp.Encode(c, in)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(data, again) {
		t.Errorf("Encode(value) = % x, Encode(pointer) = % x", again, data)
	}
}

func packetSchema() *schema.Struct {
	item := schema.NewStruct("item",
		schema.F("len", schema.U8()),
		schema.F("data", schema.ListOf(expr.Ref("len"), schema.U8())),
		schema.F("tag", schema.U8(schema.SizeExpr(expr.Ref("outer.bits")))),
	)
	text := schema.NewStruct("text", schema.F("s", schema.CString()))
	num := schema.NewStruct("num", schema.F("v", schema.U32(schema.BigEndian())))

	return schema.NewStruct("packet",
		schema.F("bits", schema.U8()),
		schema.F("count", schema.U8()),
		schema.F("items", schema.ListOf(expr.Ref("count"), schema.Nested(item))),
		schema.F("body", schema.OneOf(schema.NewUnion(8, bitbuf.LittleEndian,
			schema.Case(1, text),
			schema.Case(2, num),
		))),
	)
}

func TestObject_RecordRoundTrip(t *testing.T) {
	comp := NewDefaultCompiler()
	c, err := comp.Compile(packetSchema())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		body *Record
		bits int
	}{
		{"text body", NewRecord("text").With("s", "hi"), 88},
		{"num body", NewRecord("num").With("v", uint32(0xDEADBEEF)), 96},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewRecord("packet").
				With("bits", uint8(4)).
				With("count", uint8(2)).
				With("items", []any{
					NewRecord("item").With("len", uint8(2)).With("data", []any{uint8(1), uint8(2)}).With("tag", uint8(15)),
					NewRecord("item").With("len", uint8(0)).With("data", []any{}).With("tag", uint8(3)),
				}).
				With("body", tt.body)

			data, err := comp.Encode(c, in)
			if err != nil {
				t.Fatal(err)
			}
			if want := (tt.bits + 7) / 8; len(data) != want {
				t.Errorf("encoded %d bytes, want %d", len(data), want)
			}

			buf := bitbuf.NewBuffer(data)
			out, err := comp.DecodeFrom(c, buf)
			if err != nil {
				t.Fatal(err)
			}
			if buf.Position() != int64(tt.bits) {
				t.Errorf("consumed %d bits, want %d", buf.Position(), tt.bits)
			}
			if diff := cmp.Diff(in.Map(), out.(*Record).Map()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestObject_CountedList(t *testing.T) {
	s := schema.NewStruct("counted",
		schema.F("count", schema.U16()),
		schema.F("entries", schema.ListOf(expr.Ref("count"), schema.U8())),
	)
	c, err := NewDefaultCompiler().Compile(s)
	if err != nil {
		t.Fatal(err)
	}

	buf := bitbuf.NewBuffer([]byte{0x02, 0x00, 0xAA, 0xBB, 0xCC})
	out, err := NewDefaultCompiler().DecodeFrom(c, buf)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Position() != 32 {
		t.Errorf("consumed %d bits, want 32", buf.Position())
	}
	entries, _ := out.(*Record).Get("entries")
	if diff := cmp.Diff([]any{uint8(0xAA), uint8(0xBB)}, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	n, err := c.(*ObjectCodec).InstanceSize(out, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 32 {
		t.Errorf("InstanceSize = %d, want 32", n)
	}
}

func TestObject_SizeConsistency(t *testing.T) {
	s := schema.NewStruct("header",
		schema.F("a", schema.U8(schema.Bits(4))),
		schema.F("b", schema.U16(schema.Bits(12), schema.BigEndian())),
		schema.F("c", schema.S16()),
	)
	c, err := NewDefaultCompiler().Compile(s)
	if err != nil {
		t.Fatal(err)
	}
	if n := BitSize(c, nil); n != 32 {
		t.Fatalf("BitSize = %d, want 32", n)
	}

	buf := bitbuf.NewBuffer([]byte{0x12, 0x34, 0x56, 0x78, 0x9A})
	if _, err := NewDefaultCompiler().DecodeFrom(c, buf); err != nil {
		t.Fatal(err)
	}
	if buf.Position() != 32 {
		t.Errorf("consumed %d bits, want 32", buf.Position())
	}
}

func TestObject_NestedSizeScopes(t *testing.T) {
	tests := []struct {
		name     string
		s        *schema.Struct
		wantRefs []string
		res      map[string]any
		wantBits int64
	}{
		{
			name:     "outer reference becomes a caller name",
			s:        schema.NewStruct("inner", schema.F("data", schema.ListOf(expr.Ref("outer.n"), schema.U8()))),
			wantRefs: []string{"n"},
			res:      map[string]any{"n": 3},
			wantBits: 24,
		},
		{
			name:     "free name stays",
			s:        schema.NewStruct("inner", schema.F("data", schema.ListOf(expr.Ref("n"), schema.U16()))),
			wantRefs: []string{"n"},
			res:      map[string]any{"n": 2},
			wantBits: 32,
		},
		{
			name:     "literal",
			s:        schema.NewStruct("inner", schema.F("a", schema.U8()), schema.F("b", schema.U32())),
			wantRefs: nil,
			wantBits: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewDefaultCompiler().Compile(tt.s)
			if err != nil {
				t.Fatal(err)
			}
			size := c.Size()
			if size == nil {
				t.Fatal("Size() = nil, want an expression")
			}
			if diff := cmp.Diff(tt.wantRefs, size.References()); diff != "" {
				t.Errorf("References mismatch (-want +got):\n%s", diff)
			}
			if got := BitSize(c, expr.MapResolver{Values: tt.res}); got != tt.wantBits {
				t.Errorf("BitSize = %d, want %d", got, tt.wantBits)
			}
		})
	}
}

func blobSchema() *schema.Struct {
	return schema.NewStruct("blob",
		schema.F("len", schema.U8()),
		schema.F("data", schema.ListOf(expr.Ref("len"), schema.U8())),
	)
}

func TestObject_OwnedSizeStaysParameterized(t *testing.T) {
	tests := []struct {
		name     string
		s        *schema.Struct
		wantSize string
		value    *Record
		wantBits int64
	}{
		{
			name:     "own field",
			s:        blobSchema(),
			wantSize: "8 + self.len * 8",
			value:    NewRecord("blob").With("len", uint8(2)).With("data", []any{uint8(7), uint8(9)}),
			wantBits: 24,
		},
		{
			name: "nested struct field",
			s: schema.NewStruct("frame",
				schema.F("tag", schema.U8()),
				schema.F("body", schema.Nested(blobSchema())),
			),
			wantSize: "8 + 8 + self.body.len * 8",
			value: NewRecord("frame").
				With("tag", uint8(1)).
				With("body", NewRecord("blob").With("len", uint8(3)).With("data", []any{uint8(1), uint8(2), uint8(3)})),
			wantBits: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := NewDefaultCompiler()
			c, err := comp.Compile(tt.s)
			if err != nil {
				t.Fatal(err)
			}
			size := c.Size()
			if size == nil {
				t.Fatal("Size() = nil, want a parameterized expression")
			}
			if size.String() != tt.wantSize || !size.IsParameterized() {
				t.Errorf("Size() = %s, want parameterized %s", size, tt.wantSize)
			}
			if n := BitSize(c, nil); n != -1 {
				t.Errorf("BitSize(nil) = %d, want -1", n)
			}

			out, err := comp.Encode(c, tt.value)
			if err != nil {
				t.Fatal(err)
			}
			if int64(len(out)*8) != tt.wantBits {
				t.Fatalf("encoded %d bits, want %d", len(out)*8, tt.wantBits)
			}

			buf := bitbuf.NewBuffer(out)
			decoded, err := comp.DecodeFrom(c, buf)
			if err != nil {
				t.Fatal(err)
			}
			bound := c.(*ObjectCodec).Context().Resolver(decoded, nil)
			if n := BitSize(c, bound); n != buf.Position() || n != tt.wantBits {
				t.Errorf("BitSize(instance) = %d, consumed %d, want %d", n, buf.Position(), tt.wantBits)
			}
		})
	}
}

func TestObject_GoStructNestedSize(t *testing.T) {
	type blob struct {
		Len  uint8
		Data []uint8
	}
	type frame struct {
		Tag  uint8
		Body blob
	}
	s := schema.NewStruct("frame",
		schema.F("tag", schema.U8()),
		schema.F("body", schema.Nested(blobSchema().Bind(reflect.TypeOf(blob{})))),
	).Bind(reflect.TypeOf(frame{}))

	comp := NewDefaultCompiler()
	c, err := comp.Compile(s)
	if err != nil {
		t.Fatal(err)
	}
	v := &frame{Tag: 5, Body: blob{Len: 2, Data: []uint8{0xAA, 0xBB}}}
	out := encodeAll(t, c, v)
	if !cmp.Equal(out, []byte{5, 2, 0xAA, 0xBB}) {
		t.Errorf("Encode = % x", out)
	}
	n, err := c.(*ObjectCodec).InstanceSize(v, nil)
	if err != nil || n != 32 {
		t.Errorf("InstanceSize = %d, %v, want 32", n, err)
	}
}

func TestObject_ListOfSelfSizedElements(t *testing.T) {
	s := schema.NewStruct("table",
		schema.F("n", schema.U8()),
		schema.F("rows", schema.ListOf(expr.Ref("n"), schema.Nested(blobSchema()))),
	)
	comp := NewDefaultCompiler()
	c, err := comp.Compile(s)
	if err != nil {
		t.Fatal(err)
	}
	if c.Size() != nil {
		t.Errorf("Size() = %s, want nil for rows of differing sizes", c.Size())
	}

	data := []byte{2, 1, 0xAA, 2, 0xBB, 0xCC}
	rec := decodeAll(t, c, data).(*Record)
	if got := encodeAll(t, c, rec); !cmp.Equal(got, data) {
		t.Errorf("Encode = % x, want % x", got, data)
	}
}

func TestObject_NestedPaddingIsNotASizeMismatch(t *testing.T) {
	inner := schema.NewStruct("inner", schema.F("x", schema.U8(schema.Bits(3), schema.Aligned())))
	s := schema.NewStruct("outer",
		schema.F("inner", schema.Nested(inner)),
		schema.F("b", schema.U8()),
	)
	c, err := NewDefaultCompiler().Compile(s)
	if err != nil {
		t.Fatal(err)
	}
	v := NewRecord("outer").With("inner", NewRecord("inner").With("x", uint8(5))).With("b", uint8(0x42))
	if got := encodeAll(t, c, v); !cmp.Equal(got, []byte{0b1010_0000, 0x42}) {
		t.Errorf("Encode = % x", got)
	}
}

func TestObject_ConditionalField(t *testing.T) {
	s := schema.NewStruct("frame",
		schema.F("flags", schema.U8()),
		schema.F("extra", schema.U16()).When(expr.Compare(expr.Eq, expr.Ref("flags"), expr.Const(1))),
	)
	comp := NewDefaultCompiler()
	c, err := comp.Compile(s)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		want map[string]any
	}{
		{"present", []byte{0x01, 0x34, 0x12}, map[string]any{"flags": uint8(1), "extra": uint16(0x1234)}},
		{"absent", []byte{0x00}, map[string]any{"flags": uint8(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bitbuf.NewBuffer(tt.data)
			out, err := comp.DecodeFrom(c, buf)
			if err != nil {
				t.Fatal(err)
			}
			if buf.Position() != int64(len(tt.data)*8) {
				t.Errorf("consumed %d bits, want %d", buf.Position(), len(tt.data)*8)
			}
			rec := out.(*Record)
			if diff := cmp.Diff(tt.want, rec.Map()); diff != "" {
				t.Errorf("decode mismatch (-want +got):\n%s", diff)
			}
			back, err := comp.Encode(c, rec)
			if err != nil {
				t.Fatal(err)
			}
			if !cmp.Equal(back, tt.data) {
				t.Errorf("Encode = % x, want % x", back, tt.data)
			}
		})
	}
}

func TestObject_Errors(t *testing.T) {
	failing := BuilderFunc(func(s *schema.Struct) (any, error) {
		return nil, stderrors.New("no memory for " + s.Name)
	})

	tests := []struct {
		name   string
		opts   func(*Options)
		s      *schema.Struct
		data   []byte
		encode any
		kind   errors.Kind
		path   []string
	}{
		{
			name: "unresolved reference",
			s:    schema.NewStruct("s", schema.F("data", schema.ListOf(expr.Ref("missing"), schema.U8()))),
			data: []byte{1, 2, 3},
			kind: errors.KindUnresolvedReference,
			path: []string{"data"},
		},
		{
			name: "underflow in nested list",
			s: schema.NewStruct("s",
				schema.F("n", schema.U8()),
				schema.F("vals", schema.ListOf(expr.Ref("n"), schema.U16())),
			),
			data: []byte{3, 1, 0, 2, 0},
			kind: errors.KindBufferUnderflow,
			path: []string{"vals"},
		},
		{
			name: "negative count",
			s: schema.NewStruct("s",
				schema.F("n", schema.S8()),
				schema.F("vals", schema.ListOf(expr.Ref("n"), schema.U8())),
			),
			data: []byte{0xFF},
			kind: errors.KindInvalidData,
			path: []string{"vals"},
		},
		{
			name: "builder fails",
			opts: func(o *Options) { o.Builder = failing },
			s:    schema.NewStruct("s", schema.F("a", schema.U8())),
			data: []byte{1},
			kind: errors.KindInstantiation,
		},
		{
			name:   "unset field",
			s:      schema.NewStruct("s", schema.F("a", schema.U8()), schema.F("b", schema.U8())),
			encode: NewRecord("s").With("a", uint8(1)),
			kind:   errors.KindNilPointer,
			path:   []string{"b"},
		},
		{
			name:   "wrong instance type",
			s:      schema.NewStruct("s", schema.F("a", schema.U8())),
			encode: map[string]any{"a": 1},
			kind:   errors.KindTypeMismatch,
		},
		{
			name: "list length differs from count",
			s: schema.NewStruct("s",
				schema.F("n", schema.U8()),
				schema.F("vals", schema.ListOf(expr.Ref("n"), schema.U8())),
			),
			encode: NewRecord("s").With("n", uint8(2)).With("vals", []any{uint8(1)}),
			kind:   errors.KindLengthMismatch,
			path:   []string{"vals"},
		},
		{
			name:   "field overflow",
			s:      schema.NewStruct("s", schema.F("a", schema.U8(schema.Bits(4)))),
			encode: NewRecord("s").With("a", uint8(16)),
			kind:   errors.KindOverflow,
			path:   []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			comp := NewCompiler(opts)
			c, err := comp.Compile(tt.s)
			if err != nil {
				t.Fatal(err)
			}
			if tt.encode != nil {
				_, err = comp.Encode(c, tt.encode)
			} else {
				_, err = comp.Decode(c, tt.data)
			}
			wantKind(t, err, tt.kind)
			if tt.path == nil {
				return
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %T", err)
			}
			if diff := cmp.Diff(tt.path, e.Path); diff != "" {
				t.Errorf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// stretchCodec claims eight bits but writes sixteen.
type stretchCodec struct{ NumericCodec }

func (c *stretchCodec) Encode(v any, w *bitbuf.Writer, r expr.Resolver) error {
	w.WriteZeros(16)
	return nil
}

func TestObject_SizeMismatch(t *testing.T) {
	opts := DefaultOptions()
	stretch := FactoryFunc(func(req *Request) (Codec, error) {
		if req.Type.Kind != schema.KindU8 {
			return nil, nil
		}
		return &stretchCodec{NumericCodec{size: expr.Const(8), nk: newNumericKinds()[schema.KindU8]}}, nil
	})
	opts.Factories = append([]Factory{stretch}, opts.Factories...)
	comp := NewCompiler(opts)

	c, err := comp.Compile(schema.NewStruct("s", schema.F("a", schema.U8())))
	if err != nil {
		t.Fatal(err)
	}
	_, err = comp.Encode(c, NewRecord("s").With("a", uint8(1)))
	wantKind(t, err, errors.KindSizeMismatch)
}

func TestObject_CompileErrors(t *testing.T) {
	type noFields struct{ Other int }

	recursive := schema.NewStruct("node", schema.F("v", schema.U8()))
	recursive.Fields = append(recursive.Fields, schema.F("next", schema.Nested(recursive)))

	tests := []struct {
		name string
		s    *schema.Struct
		kind errors.Kind
	}{
		{"missing go field", schema.NewStruct("s", schema.F("a", schema.U8())).Bind(reflect.TypeOf(noFields{})), errors.KindTypeMismatch},
		{"recursive", recursive, errors.KindUnsupported},
		{"float width", schema.NewStruct("s", schema.F("f", schema.F32(schema.Bits(16)))), errors.KindInvalidData},
		{"duplicate field", schema.NewStruct("s", schema.F("a", schema.U8()), schema.F("a", schema.U8())), errors.KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDefaultCompiler().Compile(tt.s)
			wantKind(t, err, tt.kind)
		})
	}
}

func TestDescribe(t *testing.T) {
	c, err := NewDefaultCompiler().Compile(packetSchema())
	if err != nil {
		t.Fatal(err)
	}
	root := Describe(c)
	if len(root.Children) != 4 {
		t.Fatalf("root has %d children, want 4", len(root.Children))
	}
	items := root.Children[2]
	if items.Name != "items" || len(items.Children) != 1 || len(items.Children[0].Children) != 3 {
		t.Errorf("unexpected items node: %+v", items)
	}
	body := root.Children[3]
	if len(body.Children) != 2 || body.Children[0].Name != "1" {
		t.Errorf("unexpected body node: %+v", body)
	}
}
