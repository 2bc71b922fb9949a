package codec

import (
	"os"
	"slices"
	"strings"

	"github.com/phonlab/tgkit/internal/tg"
)

const (
	intervalTierClass = "IntervalTier"
	pointTierClass    = "TextTier"

	// shortDialectMark appears in the header of short-form files.
	shortDialectMark = "ooTextFile short"

	// tierArrayKeyword introduces tier blocks in the normal form. Files
	// without it are treated as short-form.
	tierArrayKeyword = "item"
)

// Read loads and parses a TextGrid file of either dialect.
func Read(path string) (*tg.Textgrid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes and parses TextGrid file contents of either dialect.
// All empty-label entries are stripped from the result: blank labels are
// already skipped during extraction, and this pass also catches labels
// that are blank only after trimming.
func Parse(raw []byte) (*tg.Textgrid, error) {
	data, err := decodeBytes(raw)
	if err != nil {
		return nil, err
	}

	var grid *tg.Textgrid
	if strings.Contains(data, shortDialectMark) || !strings.Contains(data, tierArrayKeyword) {
		grid, err = parseShort(data)
	} else {
		grid, err = parseNormal(data)
	}
	if err != nil {
		return nil, err
	}
	return grid.RemoveLabels(""), nil
}

// parseNormal reads the key-value dialect: the text after the first
// tier-array keyword splits into one block per tier; each block carries
// a class marker, name/xmin/xmax header lines, and repeated entry
// sub-blocks extracted until extraction fails.
func parseNormal(data string) (*tg.Textgrid, error) {
	head := strings.Index(data, tierArrayKeyword)
	if head < 0 {
		return nil, &ParseError{Dialect: DialectNormal, Message: "no tier-array keyword"}
	}
	blocks := strings.Split(data[head+len(tierArrayKeyword):], tierArrayKeyword)
	if len(blocks) < 2 {
		return nil, &ParseError{Dialect: DialectNormal, Offset: head, Message: "no tier blocks"}
	}

	grid := tg.NewTextgrid()
	for _, block := range blocks[1:] {
		isInterval := strings.Contains(block, `class = "`+intervalTierClass+`"`)
		entryKeyword := "points"
		if isInterval {
			entryKeyword = "intervals"
		}

		headerEnd := strings.Index(block, entryKeyword)
		if headerEnd < 0 {
			return nil, &ParseError{
				Dialect:  DialectNormal,
				Fragment: fragment(block),
				Message:  "tier block has no " + entryKeyword + " section",
			}
		}
		header, body := block[:headerEnd], block[headerEnd+len(entryKeyword):]

		name, err := headerValue(header, "name = ")
		if err != nil {
			return nil, err
		}
		name = strings.TrimSpace(unquote(strings.TrimSpace(name)))
		minTime, err := headerNumber(header, "xmin = ")
		if err != nil {
			return nil, err
		}
		maxTime, err := headerNumber(header, "xmax = ")
		if err != nil {
			return nil, err
		}

		var tier tg.Tier
		if isInterval {
			entries, err := normalIntervals(body)
			if err != nil {
				return nil, err
			}
			tier, err = tg.NewIntervalTier(name, entries, tg.WithBounds(minTime, maxTime))
			if err != nil {
				return nil, err
			}
		} else {
			entries, err := normalPoints(body)
			if err != nil {
				return nil, err
			}
			tier, err = tg.NewPointTier(name, entries, tg.WithBounds(minTime, maxTime))
			if err != nil {
				return nil, err
			}
		}
		if err := grid.AddTier(tier); err != nil {
			return nil, err
		}
	}
	return grid, nil
}

// normalIntervals extracts (xmin, xmax, text) triples until extraction
// fails, which signals the end of the block. Blank labels are skipped.
func normalIntervals(body string) ([]tg.Interval, error) {
	var entries []tg.Interval
	pos := 0
	for {
		startWord, p, err := fetchRow(body, "xmin = ", pos)
		if err != nil {
			break
		}
		endWord, p, err := fetchRow(body, "xmax = ", p)
		if err != nil {
			break
		}
		label, p, err := fetchRow(body, "text =", p)
		if err != nil {
			break
		}
		pos = p

		start, err := parseNumber(startWord)
		if err != nil {
			return nil, &ParseError{Dialect: DialectNormal, Fragment: startWord, Message: "bad interval start"}
		}
		end, err := parseNumber(endWord)
		if err != nil {
			return nil, &ParseError{Dialect: DialectNormal, Fragment: endWord, Message: "bad interval end"}
		}
		if label == "" {
			continue
		}
		entries = append(entries, tg.Interval{Start: start, End: end, Label: label})
	}
	return entries, nil
}

// normalPoints extracts (number, mark) pairs until extraction fails.
func normalPoints(body string) ([]tg.Point, error) {
	var entries []tg.Point
	pos := 0
	for {
		timeWord, p, err := fetchRow(body, "number = ", pos)
		if err != nil {
			break
		}
		label, p, err := fetchRow(body, "mark =", p)
		if err != nil {
			break
		}
		pos = p

		time, err := parseNumber(timeWord)
		if err != nil {
			return nil, &ParseError{Dialect: DialectNormal, Fragment: timeWord, Message: "bad point time"}
		}
		if label == "" {
			continue
		}
		entries = append(entries, tg.Point{Time: time, Label: label})
	}
	return entries, nil
}

// parseShort reads the positional dialect. Tier blocks are delimited by
// the quoted tier-type markers themselves; within a block the header
// fields (marker, name, min, max, count) and then the entries are
// consumed positionally until a line cannot be parsed as expected.
func parseShort(data string) (*tg.Textgrid, error) {
	type mark struct {
		pos      int
		interval bool
	}
	var marks []mark
	for _, i := range findAll(data, `"`+intervalTierClass+`"`) {
		marks = append(marks, mark{pos: i, interval: true})
	}
	for _, i := range findAll(data, `"`+pointTierClass+`"`) {
		marks = append(marks, mark{pos: i})
	}
	slices.SortFunc(marks, func(a, b mark) int { return a.pos - b.pos })

	grid := tg.NewTextgrid()
	for k, m := range marks {
		end := len(data)
		if k+1 < len(marks) {
			end = marks[k+1].pos
		}
		block := data[m.pos:end]

		// The first row repeats the tier type, which the marker already
		// told us; the count row is consumed but unused.
		pos := 0
		var name, minWord, maxWord string
		var err error
		if _, pos, err = fetchRow(block, "", pos); err == nil {
			if name, pos, err = fetchRow(block, "", pos); err == nil {
				if minWord, pos, err = fetchRow(block, "", pos); err == nil {
					if maxWord, pos, err = fetchRow(block, "", pos); err == nil {
						_, pos, err = fetchRow(block, "", pos)
					}
				}
			}
		}
		if err != nil {
			return nil, &ParseError{
				Dialect:  DialectShort,
				Offset:   m.pos,
				Fragment: fragment(block),
				Message:  "incomplete tier header",
			}
		}

		minTime, err := parseNumber(minWord)
		if err != nil {
			return nil, &ParseError{Dialect: DialectShort, Offset: m.pos, Fragment: minWord, Message: "bad tier min time"}
		}
		maxTime, err := parseNumber(maxWord)
		if err != nil {
			return nil, &ParseError{Dialect: DialectShort, Offset: m.pos, Fragment: maxWord, Message: "bad tier max time"}
		}

		var tier tg.Tier
		if m.interval {
			entries, err := shortIntervals(block, pos, m.pos)
			if err != nil {
				return nil, err
			}
			tier, err = tg.NewIntervalTier(name, entries, tg.WithBounds(minTime, maxTime))
			if err != nil {
				return nil, err
			}
		} else {
			entries, err := shortPoints(block, pos, m.pos)
			if err != nil {
				return nil, err
			}
			tier, err = tg.NewPointTier(name, entries, tg.WithBounds(minTime, maxTime))
			if err != nil {
				return nil, err
			}
		}
		if err := grid.AddTier(tier); err != nil {
			return nil, err
		}
	}
	return grid, nil
}

// shortIntervals consumes bare (start, end, label) line triples. A line
// that is not a number where the next entry's start is expected ends the
// block; a bad number later in a triple is a parse error.
func shortIntervals(block string, pos, blockOffset int) ([]tg.Interval, error) {
	var entries []tg.Interval
	for {
		startWord, p, err := fetchRow(block, "", pos)
		if err != nil {
			break
		}
		start, err := parseNumber(startWord)
		if err != nil {
			break
		}
		endWord, p, err := fetchRow(block, "", p)
		if err != nil {
			break
		}
		label, p, err := fetchRow(block, "", p)
		if err != nil {
			break
		}
		pos = p

		end, err := parseNumber(endWord)
		if err != nil {
			return nil, &ParseError{
				Dialect:  DialectShort,
				Offset:   blockOffset,
				Fragment: endWord,
				Message:  "bad interval end",
			}
		}
		if label == "" {
			continue
		}
		entries = append(entries, tg.Interval{Start: start, End: end, Label: label})
	}
	return entries, nil
}

// shortPoints consumes bare (time, label) line pairs.
func shortPoints(block string, pos, blockOffset int) ([]tg.Point, error) {
	var entries []tg.Point
	for {
		timeWord, p, err := fetchRow(block, "", pos)
		if err != nil {
			break
		}
		time, err := parseNumber(timeWord)
		if err != nil {
			break
		}
		label, p, err := fetchRow(block, "", p)
		if err != nil {
			break
		}
		pos = p

		if label == "" {
			continue
		}
		entries = append(entries, tg.Point{Time: time, Label: label})
	}
	return entries, nil
}

// headerValue extracts the text after key up to end of line.
func headerValue(header, key string) (string, error) {
	i := strings.Index(header, key)
	if i < 0 {
		return "", &ParseError{
			Dialect:  DialectNormal,
			Fragment: fragment(header),
			Message:  "tier header missing " + strings.TrimSpace(key),
		}
	}
	value := header[i+len(key):]
	if nl := strings.Index(value, "\n"); nl >= 0 {
		value = value[:nl]
	}
	return value, nil
}

// headerNumber extracts and parses a numeric header field.
func headerNumber(header, key string) (float64, error) {
	word, err := headerValue(header, key)
	if err != nil {
		return 0, err
	}
	n, err := parseNumber(strings.TrimSpace(word))
	if err != nil {
		return 0, &ParseError{
			Dialect:  DialectNormal,
			Fragment: strings.TrimSpace(word),
			Message:  "bad numeric field " + strings.TrimSpace(key),
		}
	}
	return n, nil
}

// fragment returns a short prefix of text for error reporting.
func fragment(text string) string {
	text = strings.TrimSpace(text)
	if nl := strings.Index(text, "\n"); nl >= 0 {
		text = text[:nl]
	}
	if len(text) > 40 {
		text = text[:40]
	}
	return text
}
