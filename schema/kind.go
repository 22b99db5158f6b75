package schema

type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindEnum
	KindString
	KindList
	KindStruct
	KindUnion
	KindVarUint
	KindVarInt
)

var kindNames = [...]string{
	KindBool:   "bool",
	KindU8:     "u8",
	KindS8:     "s8",
	KindU16:    "u16",
	KindS16:    "s16",
	KindU32:    "u32",
	KindS32:    "s32",
	KindU64:    "u64",
	KindS64:    "s64",
	KindF32:    "f32",
	KindF64:    "f64",
	KindEnum:   "enum",
	KindString: "string",
	KindList:   "list",
	KindStruct: "struct",
	KindUnion:  "union",

	KindVarUint: "varuint",
	KindVarInt:  "varint",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsNumeric reports whether k is a bool, integer or float kind.
func (k Kind) IsNumeric() bool {
	return k <= KindF64
}

// IsVarint reports whether k is a LEB128 integer kind.
func (k Kind) IsVarint() bool {
	return k == KindVarUint || k == KindVarInt
}

func (k Kind) IsSigned() bool {
	switch k {
	case KindS8, KindS16, KindS32, KindS64, KindVarInt:
		return true
	}
	return false
}

func (k Kind) IsFloat() bool {
	return k == KindF32 || k == KindF64
}

// DefaultWidth is the bit width used when a numeric field declares no size.
func (k Kind) DefaultWidth() int {
	switch k {
	case KindBool:
		return 1
	case KindU8, KindS8:
		return 8
	case KindU16, KindS16:
		return 16
	case KindU32, KindS32, KindF32:
		return 32
	case KindU64, KindS64, KindF64, KindVarUint, KindVarInt:
		return 64
	case KindEnum:
		return 8
	}
	return 0
}
