package codec

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/schema"
)

// charset converts between wire bytes and Go strings.
type charset interface {
	decode(b []byte) (string, error)
	encode(s string) ([]byte, error)
}

func charsetFor(e schema.Encoding) (charset, error) {
	switch e {
	case schema.ASCII:
		return asciiCharset{}, nil
	case schema.ISO88591:
		return textCharset{enc: charmap.ISO8859_1, name: "iso-8859-1"}, nil
	case schema.UTF8:
		return textCharset{enc: unicode.UTF8, name: "utf-8", validate: true}, nil
	}
	return nil, errors.Unsupported(errors.PhaseCompile, "encoding "+e.String())
}

// asciiCharset rejects bytes above 0x7F. x/text has no plain 7-bit
// encoding, and treating ASCII as Latin-1 would accept invalid input.
type asciiCharset struct{}

func (asciiCharset) decode(b []byte) (string, error) {
	for i, c := range b {
		if c > 0x7F {
			return "", errors.InvalidData(errors.PhaseDecode, []string{indexSegment(i)}, "byte is not ASCII")
		}
	}
	return string(b), nil
}

func (asciiCharset) encode(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return nil, errors.InvalidData(errors.PhaseEncode, []string{indexSegment(i)}, "character is not ASCII")
		}
	}
	return []byte(s), nil
}

type textCharset struct {
	enc      encoding.Encoding
	name     string
	validate bool
}

func (c textCharset) decode(b []byte) (string, error) {
	if c.validate {
		if _, _, err := transform.Bytes(encoding.UTF8Validator, b); err != nil {
			return "", errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "invalid "+c.name)
		}
	}
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "invalid "+c.name)
	}
	return string(out), nil
}

func (c textCharset) encode(s string) ([]byte, error) {
	if c.validate {
		if _, _, err := transform.String(encoding.UTF8Validator, s); err != nil {
			return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "invalid "+c.name)
		}
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "not representable in "+c.name)
	}
	return out, nil
}
