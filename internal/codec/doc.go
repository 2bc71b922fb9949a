// Package codec reads and writes the plain-text TextGrid file format.
//
// Two textual dialects exist: the "short" form (bare positional values)
// and the "normal" form (nested key-value blocks). Both are accepted for
// reading; writing always produces the canonical short form. Neither
// dialect has a formal grammar; both parsers are finite-state extraction
// routines over byte offsets sharing a single fetchRow field primitive,
// so the off-by-one arithmetic lives in exactly one place.
//
// Input bytes are decoded as UTF-16 (BOM required), falling back to
// UTF-8 exactly once; \r\n is normalized to \n before any parsing. The
// codec is the only package touching raw bytes.
package codec
