package schema

import (
	"fmt"
	"strings"

	"github.com/wippyai/bitcodec/errors"
)

// Encoding is the character set of a string field.
type Encoding uint8

const (
	ASCII Encoding = iota
	ISO88591
	UTF8
)

var encodingNames = [...]string{
	ASCII:    "ascii",
	ISO88591: "iso-8859-1",
	UTF8:     "utf-8",
}

func (e Encoding) String() string {
	if int(e) < len(encodingNames) {
		return encodingNames[e]
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

// ParseEncoding accepts the names returned by String plus common aliases.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascii", "us-ascii":
		return ASCII, nil
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return ISO88591, nil
	case "utf-8", "utf8":
		return UTF8, nil
	}
	return ASCII, errors.Unsupported(errors.PhaseCompile, fmt.Sprintf("encoding %q", s))
}
