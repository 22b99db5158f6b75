// Package bitcodec compiles declarative bit-level layouts into codecs that
// decode bit streams into object graphs and encode them back bit for bit.
//
// A layout is an ordered list of fields with bit widths, byte orders,
// sizes and counts that depend on earlier fields, and tagged unions chosen
// by a discriminant read from the stream. It is compiled once into an
// immutable codec tree that is safe for concurrent use.
//
// # Architecture Overview
//
//	bitcodec/            Root package with one-call Marshal/Unmarshal helpers
//	├── bitbuf/          MSB-first bit reader and writer, byte orders, padding
//	├── expr/            Integer/boolean expressions, parser, resolvers, lifting
//	├── schema/          Layout descriptors, validation, fingerprints
//	│   └── witschema/   Layouts derived from WIT type definitions
//	├── codec/           Factories, decorators, cache, leaf and composite codecs
//	├── guestmem/        Decode/encode inside WebAssembly guest memory
//	├── errors/          Structured errors with phase, kind, path and bit position
//	├── samples/         Worked layouts (JVM class files)
//	└── cmd/bitview/     CLI that decodes files and prints trees or CBOR
//
// # Quick Start
//
//	type Header struct {
//	    Version uint8
//	    Length  uint16
//	    Body    []byte
//	}
//
//	layout := schema.NewStruct("header",
//	    schema.F("version", schema.U8(schema.Bits(4))),
//	    schema.F("length", schema.U16(schema.BigEndian())),
//	    schema.F("body", schema.ListOf(expr.Ref("length"), schema.U8())),
//	)
//
//	h, err := bitcodec.Unmarshal[Header](layout, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := bitcodec.Marshal(layout, h)
//
// Without a Go type, values decode into *codec.Record.
//
// # Thread Safety
//
// Compilers and compiled codecs are safe for concurrent use. Decoded
// instances and bit buffers belong to the caller.
package bitcodec
