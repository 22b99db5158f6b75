// Package schema describes binary layouts as plain data.
//
// A Struct is an ordered list of Fields; each Field has a Type naming its
// Kind and, depending on the kind, a size expression, byte order, string
// encoding, element type, nested Struct, Union or Enum. Schemas are built
// with the helpers in this package or produced by front-ends such as
// witschema, and are compiled into codecs by the codec package.
//
//	header := schema.NewStruct("Header",
//		schema.F("count", schema.U16()),
//		schema.F("entries", schema.ListOf(expr.Ref("count"), schema.U8())),
//	)
//
// Fingerprint gives every node a structural identity used as a cache key:
// separately built but identical nodes hash the same.
package schema
