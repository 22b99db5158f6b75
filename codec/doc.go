// Package codec compiles schemas into codecs that decode and encode
// bit-level binary data.
//
// A Compiler walks a schema through an ordered list of factories. The first
// factory that claims a node builds its codec, nested nodes are built
// through the same chain, and decorators wrap every result:
//
//	schema.Type ──► CachingFactory ──► Registry ──► factories ──► decorators
//	                    │                              │
//	                    └──── fingerprint cache ◄──────┘
//
// # Codecs
//
//	Kind            Codec                        Size (bits)
//	─────────────────────────────────────────────────────────────
//	u8..u64/s8..s64 NumericCodec                 width expression
//	f32/f64         NumericCodec                 32 / 64
//	bool            NumericCodec                 1 unless sized
//	enum            EnumCodec                    width, default 8
//	varuint/varint  VarintCodec                  unknown (LEB128)
//	string[n]       FixedStringCodec             8 * n
//	string          NullTerminatedStringCodec    unknown
//	list<T>[n]      ListCodec                    n * size(T)
//	struct          ObjectCodec                  sum of fields
//	union           UnionCodec                   width + common variant size
//
// Sizes are expressions. They stay symbolic while they depend on fields that
// are only known while decoding, and a nested struct's size is rewritten into
// the scope of its owner. A struct sized by its own fields reports them with
// a "self." prefix; the owner sees them as paths through the field:
//
//	Blob{len, data: list<u8>[len]}      size 8 + self.len * 8
//	Frame{tag: u8, body: Blob}          size 8 + 8 + self.body.len * 8
//
// Lists of such structs have no single element size and report unknown.
//
// # Scopes
//
// Each struct instance gets a resolver. A name refers to a field of the
// innermost struct when it owns one of that name, and to an enclosing struct
// otherwise. The "outer." prefix skips the current struct explicitly:
//
//	Header{count}
//	  items: list<Item>[count]
//	    Item{len, data: list<u8>[len], tag: u8[outer.count]}
//
// # Instances
//
// Structs without a Go binding decode into *Record. Structs bound with
// schema.Struct.Bind decode into pointers to the Go type; fields are matched
// by `bits:"name"` tag, then by case-insensitive name.
//
// # Concurrency
//
// Compiled codecs are immutable and safe for concurrent use. The compiler
// builds each distinct node once, even under concurrent first requests.
package codec
