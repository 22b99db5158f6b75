package schema

import "fmt"

// Converter transforms string bytes between the wire and the text
// encoding. Revert must undo Convert.
//
// Fingerprints identify a converter by its Go type and field values. A
// converter whose behavior is not captured by its fields (a closure, for
// instance) should also implement Key() string.
type Converter interface {
	// Convert maps a wire byte to a text byte (decode).
	Convert(b byte) byte
	// Revert maps a text byte to a wire byte (encode).
	Revert(b byte) byte
	Description() string
}

// NullConverter leaves bytes unchanged.
type NullConverter struct{}

func (NullConverter) Convert(b byte) byte { return b }
func (NullConverter) Revert(b byte) byte  { return b }
func (NullConverter) Description() string { return "" }

// XORConverter masks every byte with Mask.
type XORConverter struct {
	Mask byte
}

func (c XORConverter) Convert(b byte) byte { return b ^ c.Mask }
func (c XORConverter) Revert(b byte) byte  { return b ^ c.Mask }
func (c XORConverter) Description() string {
	return fmt.Sprintf("each byte XOR 0x%02X", c.Mask)
}

// ConverterOf returns t's converter, NullConverter when unset.
func ConverterOf(t *Type) Converter {
	if t == nil || t.Converter == nil {
		return NullConverter{}
	}
	return t.Converter
}
