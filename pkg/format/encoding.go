package format

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Normalize prepares raw input text for detection and parsing: UTF-16
// input (sniffed by BOM) is transcoded to UTF-8, and a leading UTF-8 BOM
// is stripped. Text without a BOM passes through untouched.
func Normalize(text string) string {
	if len(text) >= 2 {
		b0, b1 := text[0], text[1]
		if (b0 == 0xFF && b1 == 0xFE) || (b0 == 0xFE && b1 == 0xFF) {
			return decodeUTF16(text)
		}
	}
	return strings.TrimPrefix(text, "\uFEFF")
}

// decodeUTF16 transcodes BOM-prefixed UTF-16 text to UTF-8. On a decode
// failure the original text is returned; detection will then fail on it
// the ordinary way.
func decodeUTF16(text string) string {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, _, err := transform.String(dec, text)
	if err != nil {
		return text
	}
	return out
}
