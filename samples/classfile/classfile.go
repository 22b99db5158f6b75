// Package classfile describes the JVM class file format as a bit layout over
// plain Go structs.
//
// All numbers are big-endian. The constant pool holds constantPoolCount-1
// entries, each introduced by an 8-bit tag. Long and Double entries are
// read as single entries; the format's rule that they take two pool slots
// is not modeled.
package classfile

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/codec"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr"
	"github.com/wippyai/bitcodec/schema"
)

// Magic is the first word of every class file.
const Magic uint32 = 0xCAFEBABE

// Constant pool tags.
const (
	TagUtf8               uint8 = 1
	TagInteger            uint8 = 3
	TagFloat              uint8 = 4
	TagLong               uint8 = 5
	TagDouble             uint8 = 6
	TagClass              uint8 = 7
	TagString             uint8 = 8
	TagFieldRef           uint8 = 9
	TagMethodRef          uint8 = 10
	TagInterfaceMethodRef uint8 = 11
	TagNameAndType        uint8 = 12
)

type ClassFile struct {
	Magic             uint32
	MinorVersion      uint16
	MajorVersion      uint16
	ConstantPoolCount uint16
	ConstantPool      []CPInfo
	AccessFlags       uint16
	ThisClass         uint16
	SuperClass        uint16
	InterfacesCount   uint16
	Interfaces        []uint16
	FieldsCount       uint16
	Fields            []MemberInfo
	MethodsCount      uint16
	Methods           []MemberInfo
	AttributesCount   uint16
	Attributes        []AttributeInfo
}

// CPInfo is one constant pool entry.
type CPInfo interface {
	Tag() uint8
}

type Utf8Info struct {
	Length uint16
	Value  string
}

type IntegerInfo struct{ Value int32 }
type FloatInfo struct{ Value float32 }
type LongInfo struct{ Value int64 }
type DoubleInfo struct{ Value float64 }

type ClassInfo struct{ NameIndex uint16 }
type StringInfo struct{ StringIndex uint16 }

// RefInfo is shared by field, method and interface method references.
type RefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type (
	FieldRefInfo           RefInfo
	MethodRefInfo          RefInfo
	InterfaceMethodRefInfo RefInfo
)

type NameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (Utf8Info) Tag() uint8               { return TagUtf8 }
func (IntegerInfo) Tag() uint8            { return TagInteger }
func (FloatInfo) Tag() uint8              { return TagFloat }
func (LongInfo) Tag() uint8               { return TagLong }
func (DoubleInfo) Tag() uint8             { return TagDouble }
func (ClassInfo) Tag() uint8              { return TagClass }
func (StringInfo) Tag() uint8             { return TagString }
func (FieldRefInfo) Tag() uint8           { return TagFieldRef }
func (MethodRefInfo) Tag() uint8          { return TagMethodRef }
func (InterfaceMethodRefInfo) Tag() uint8 { return TagInterfaceMethodRef }
func (NameAndTypeInfo) Tag() uint8        { return TagNameAndType }

// MemberInfo describes a field or a method.
type MemberInfo struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	AttributesCount uint16
	Attributes      []AttributeInfo
}

type AttributeInfo struct {
	AttributeNameIndex uint16
	AttributeLength    uint32
	Info               []byte
}

// NewUtf8 returns a Utf8 entry with its length set.
func NewUtf8(s string) *Utf8Info {
	return &Utf8Info{Length: uint16(len(s)), Value: s}
}

// Entry returns the constant at a 1-based pool index.
func (cf *ClassFile) Entry(index uint16) (CPInfo, bool) {
	if index == 0 || int(index) > len(cf.ConstantPool) {
		return nil, false
	}
	return cf.ConstantPool[index-1], true
}

// Utf8 returns the string at a 1-based pool index.
func (cf *ClassFile) Utf8(index uint16) (string, bool) {
	e, ok := cf.Entry(index)
	if !ok {
		return "", false
	}
	switch u := e.(type) {
	case *Utf8Info:
		return u.Value, true
	case Utf8Info:
		return u.Value, true
	}
	return "", false
}

// ClassName resolves a Class entry to its name.
func (cf *ClassFile) ClassName(index uint16) (string, bool) {
	e, ok := cf.Entry(index)
	if !ok {
		return "", false
	}
	switch c := e.(type) {
	case *ClassInfo:
		return cf.Utf8(c.NameIndex)
	case ClassInfo:
		return cf.Utf8(c.NameIndex)
	}
	return "", false
}

func u16() *schema.Type { return schema.U16(schema.BigEndian()) }
func u32() *schema.Type { return schema.U32(schema.BigEndian()) }

func bind(s *schema.Struct, v any) *schema.Struct {
	return s.Bind(reflect.TypeOf(v))
}

func attributeInfo() *schema.Struct {
	return bind(schema.NewStruct("attributeInfo",
		schema.F("attributeNameIndex", u16()),
		schema.F("attributeLength", u32()),
		schema.F("info", schema.ListOf(expr.Ref("attributeLength"), schema.U8())),
	), AttributeInfo{})
}

func memberInfo() *schema.Struct {
	return bind(schema.NewStruct("memberInfo",
		schema.F("accessFlags", u16()),
		schema.F("nameIndex", u16()),
		schema.F("descriptorIndex", u16()),
		schema.F("attributesCount", u16()),
		schema.F("attributes", schema.ListOf(expr.Ref("attributesCount"), schema.Nested(attributeInfo()))),
	), MemberInfo{})
}

func refFields() []schema.Field {
	return []schema.Field{
		schema.F("classIndex", u16()),
		schema.F("nameAndTypeIndex", u16()),
	}
}

func constantPool() *schema.Union {
	return schema.NewUnion(8, bitbuf.BigEndian,
		schema.Case(uint64(TagUtf8), bind(schema.NewStruct("utf8",
			schema.F("length", u16()),
			schema.F("value", schema.FixedString(expr.Ref("length"), schema.WithEncoding(schema.UTF8))),
		), Utf8Info{})),
		schema.Case(uint64(TagInteger), bind(schema.NewStruct("integer",
			schema.F("value", schema.S32(schema.BigEndian()))), IntegerInfo{})),
		schema.Case(uint64(TagFloat), bind(schema.NewStruct("float",
			schema.F("value", schema.F32(schema.BigEndian()))), FloatInfo{})),
		schema.Case(uint64(TagLong), bind(schema.NewStruct("long",
			schema.F("value", schema.S64(schema.BigEndian()))), LongInfo{})),
		schema.Case(uint64(TagDouble), bind(schema.NewStruct("double",
			schema.F("value", schema.F64(schema.BigEndian()))), DoubleInfo{})),
		schema.Case(uint64(TagClass), bind(schema.NewStruct("class",
			schema.F("nameIndex", u16())), ClassInfo{})),
		schema.Case(uint64(TagString), bind(schema.NewStruct("string",
			schema.F("stringIndex", u16())), StringInfo{})),
		schema.Case(uint64(TagFieldRef), bind(schema.NewStruct("fieldRef", refFields()...), FieldRefInfo{})),
		schema.Case(uint64(TagMethodRef), bind(schema.NewStruct("methodRef", refFields()...), MethodRefInfo{})),
		schema.Case(uint64(TagInterfaceMethodRef), bind(schema.NewStruct("interfaceMethodRef", refFields()...), InterfaceMethodRefInfo{})),
		schema.Case(uint64(TagNameAndType), bind(schema.NewStruct("nameAndType",
			schema.F("nameIndex", u16()),
			schema.F("descriptorIndex", u16()),
		), NameAndTypeInfo{})),
	)
}

// Schema returns the class file layout bound to ClassFile.
func Schema() *schema.Struct {
	return bind(schema.NewStruct("classFile",
		schema.F("magic", u32()),
		schema.F("minorVersion", u16()),
		schema.F("majorVersion", u16()),
		schema.F("constantPoolCount", u16()),
		schema.F("constantPool", schema.ListOf(expr.MustParse("constantPoolCount - 1"), schema.OneOf(constantPool()))),
		schema.F("accessFlags", u16()),
		schema.F("thisClass", u16()),
		schema.F("superClass", u16()),
		schema.F("interfacesCount", u16()),
		schema.F("interfaces", schema.ListOf(expr.Ref("interfacesCount"), u16())),
		schema.F("fieldsCount", u16()),
		schema.F("fields", schema.ListOf(expr.Ref("fieldsCount"), schema.Nested(memberInfo()))),
		schema.F("methodsCount", u16()),
		schema.F("methods", schema.ListOf(expr.Ref("methodsCount"), schema.Nested(memberInfo()))),
		schema.F("attributesCount", u16()),
		schema.F("attributes", schema.ListOf(expr.Ref("attributesCount"), schema.Nested(attributeInfo()))),
	), ClassFile{})
}

var (
	compiler = codec.NewDefaultCompiler()
	compiled = sync.OnceValues(func() (codec.Codec, error) {
		return compiler.Compile(Schema())
	})
)

// Codec returns the compiled class file codec.
func Codec() (codec.Codec, error) {
	return compiled()
}

// Decode parses a class file.
func Decode(data []byte) (*ClassFile, error) {
	c, err := Codec()
	if err != nil {
		return nil, err
	}
	v, err := compiler.Decode(c, data)
	if err != nil {
		return nil, err
	}
	cf := v.(*ClassFile)
	if cf.Magic != Magic {
		return nil, errors.Validation(0, fmt.Sprintf("%#x", Magic), fmt.Sprintf("%#x", cf.Magic))
	}
	return cf, nil
}

// Encode serializes a class file. Counts and lengths must already agree
// with the lists they describe.
func Encode(cf *ClassFile) ([]byte, error) {
	c, err := Codec()
	if err != nil {
		return nil, err
	}
	return compiler.Encode(c, cf)
}
