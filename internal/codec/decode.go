package codec

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeBytes turns raw file bytes into parse-ready text: UTF-16 with a
// byte order mark first, then UTF-8 as the single fallback, with \r\n
// normalized to \n.
func decodeBytes(raw []byte) (string, error) {
	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	if out, _, err := transform.Bytes(utf16, raw); err == nil {
		return normalizeNewlines(string(out)), nil
	}

	if !utf8.Valid(raw) {
		return "", &ParseError{Message: "file is neither UTF-16 nor valid UTF-8"}
	}
	text := strings.TrimPrefix(string(raw), "\uFEFF")
	return normalizeNewlines(text), nil
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
