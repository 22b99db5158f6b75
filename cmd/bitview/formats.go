package main

import (
	"sort"
	"strings"

	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/samples/classfile"
	"github.com/wippyai/bitcodec/schema"
)

// formats maps a --format name to its layout.
var formats = map[string]func() *schema.Struct{
	"classfile":     classfile.Schema,
	"wasm-preamble": wasmPreamble,
	"wasm-section":  wasmFirstSection,
}

// wasmPreamble is the eight-byte header shared by core modules and components.
func wasmPreamble() *schema.Struct {
	return schema.NewStruct("preamble",
		schema.F("magic", schema.FixedString(expr.Const(4), schema.Match("\x00asm"))),
		schema.F("version", schema.U16()),
		schema.F("layer", schema.U16()),
	)
}

func formatNames() string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// wasmFirstSection is the preamble followed by the first section.
func wasmFirstSection() *schema.Struct {
	return schema.NewStruct("module",
		schema.F("preamble", schema.Nested(wasmPreamble())),
		schema.F("section", schema.Nested(schema.NewStruct("section",
			schema.F("id", schema.U8()),
			schema.F("size", schema.VarUint(schema.Bits(32))),
			schema.F("payload", schema.ListOf(expr.Ref("size"), schema.U8())),
		))),
	)
}
