package codec

import (
	"errors"
	"strconv"
	"strings"
)

// errNoField signals that no further field could be extracted. Entry
// loops treat it as end-of-block; header extraction converts it into a
// ParseError with context.
var errNoField = errors.New("no further field")

// fetchRow extracts the next newline-terminated field after search,
// starting the scan at from. The field is trimmed and, when wrapped in
// double quotes, unquoted and trimmed again. An empty search string
// reads the field at the scan position itself. Returns the field and
// the offset just past its terminating newline.
//
// This is the single delimited-field primitive shared by both dialect
// parsers.
func fetchRow(data, search string, from int) (word string, next int, err error) {
	i := strings.Index(data[from:], search)
	if i < 0 {
		return "", 0, errNoField
	}
	start := from + i + len(search)
	nl := strings.Index(data[start:], "\n")
	if nl < 0 {
		return "", 0, errNoField
	}
	word = strings.TrimSpace(data[start : start+nl])
	if word == "" {
		// A blank line terminates positional extraction.
		return "", 0, errNoField
	}
	return unquote(word), start + nl + 1, nil
}

// unquote strips one layer of surrounding double quotes, trimming the
// inner text. Unquoted input passes through unchanged.
func unquote(word string) string {
	if len(word) >= 2 && word[0] == '"' && word[len(word)-1] == '"' {
		return strings.TrimSpace(word[1 : len(word)-1])
	}
	return word
}

// parseNumber parses a numeric field. Fields without a decimal point are
// parsed as integers first, preserving exact integer textual forms.
func parseNumber(s string) (float64, error) {
	if !strings.Contains(s, ".") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return float64(n), nil
		}
	}
	return strconv.ParseFloat(s, 64)
}

// findAll returns the offsets of every occurrence of sub in data.
func findAll(data, sub string) []int {
	var offsets []int
	from := 0
	for {
		i := strings.Index(data[from:], sub)
		if i < 0 {
			return offsets
		}
		offsets = append(offsets, from+i)
		from += i + len(sub)
	}
}
