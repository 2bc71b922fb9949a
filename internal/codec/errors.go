package codec

import "fmt"

// Dialect names one of the two supported textual encodings.
type Dialect string

const (
	// DialectShort is the bare positional form. Canonical write form.
	DialectShort Dialect = "short"

	// DialectNormal is the nested key-value form. Read-only.
	DialectNormal Dialect = "normal"
)

// ParseError reports that the codec could not locate an expected field
// or delimiter. It carries the dialect attempted and where extraction
// failed.
type ParseError struct {
	Dialect  Dialect
	Offset   int
	Fragment string
	Message  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Dialect == "" {
		return fmt.Sprintf("textgrid parse: %s", e.Message)
	}
	if e.Fragment != "" {
		return fmt.Sprintf("textgrid parse (%s dialect, offset %d): %s near %q",
			e.Dialect, e.Offset, e.Message, e.Fragment)
	}
	return fmt.Sprintf("textgrid parse (%s dialect, offset %d): %s", e.Dialect, e.Offset, e.Message)
}
