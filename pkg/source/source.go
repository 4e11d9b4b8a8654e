// Package source decodes raw program file bytes into the text the grid
// loader understands. Program files are usually UTF-8, but editors on
// some platforms save UTF-16 or prepend byte order marks; both are
// handled so a program round-trips regardless of the editor used.
package source

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode converts program file bytes to text: a BOM selects UTF-16 or
// UTF-8, BOM-less input must be valid UTF-8.
func Decode(data []byte) (string, error) {
	if hasUTF16BOM(data) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		text, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), decoder))
		if err != nil {
			return "", fmt.Errorf("decoding UTF-16 source: %w", err)
		}
		return string(text), nil
	}

	// Strip a UTF-8 BOM so it does not load as a grid cell.
	data = bytes.TrimPrefix(data, []byte{0xef, 0xbb, 0xbf})
	if !utf8.Valid(data) {
		return "", fmt.Errorf("source is not valid UTF-8")
	}
	return string(data), nil
}

func hasUTF16BOM(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return (data[0] == 0xff && data[1] == 0xfe) || (data[0] == 0xfe && data[1] == 0xff)
}
