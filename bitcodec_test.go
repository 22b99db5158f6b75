package bitcodec

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/bitcodec/codec"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

type header struct {
	Version uint8
	Flags   uint8
	Length  uint16
	Body    []byte
}

func headerLayout() *schema.Struct {
	return schema.NewStruct("header",
		schema.F("version", schema.U8(schema.Bits(4))),
		schema.F("flags", schema.U8(schema.Bits(4))),
		schema.F("length", schema.U16(schema.BigEndian())),
		schema.F("body", schema.ListOf(expr.Ref("length"), schema.U8())),
	)
}

func TestMarshalUnmarshal(t *testing.T) {
	layout := headerLayout()
	in := header{Version: 3, Flags: 0xA, Length: 2, Body: []byte{0xBE, 0xEF}}

	data, err := Marshal(layout, &in)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x3A, 0x00, 0x02, 0xBE, 0xEF}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("Marshal mismatch (-want +got):\n%s", diff)
	}

	out, err := Unmarshal[header](layout, data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, *out); diff != "" {
		t.Errorf("Unmarshal mismatch (-want +got):\n%s", diff)
	}
	if layout.GoType != nil {
		t.Error("Unmarshal modified the layout")
	}
}

func TestMarshal_Record(t *testing.T) {
	rec := codec.NewRecord("header").
		With("version", uint8(1)).
		With("flags", uint8(0)).
		With("length", uint16(0)).
		With("body", []any{})

	data, err := Marshal(headerLayout(), rec)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x10, 0x00, 0x00}, data); diff != "" {
		t.Errorf("Marshal mismatch (-want +got):\n%s", diff)
	}
}

func TestNilLayout(t *testing.T) {
	if _, err := Unmarshal[header](nil, nil); !errors.IsKind(err, errors.KindNilPointer) {
		t.Errorf("Unmarshal(nil) = %v, want nil_pointer", err)
	}
	if _, err := Marshal(nil, header{}); !errors.IsKind(err, errors.KindNilPointer) {
		t.Errorf("Marshal(nil) = %v, want nil_pointer", err)
	}
}
