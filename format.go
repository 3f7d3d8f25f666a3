package swiftxsv

import (
	"fmt"
	"strconv"
	"strings"
)

// Format describes the literal characters of a dialect.
// A Format is a value: sessions copy it and never modify it.
type Format struct {
	// Delimiter separates values. ',' for CSV, '\t' for TSV, unused by fixed width.
	Delimiter rune
	// Quote wraps CSV values that need it.
	Quote rune
	// QuoteEscape escapes a quote inside a quoted CSV value. Equal to Quote for RFC 4180 doubling.
	QuoteEscape rune
	// Escape starts a TSV escape sequence.
	Escape rune
	// Comment marks a line to skip when it is the first character. Zero disables comments.
	Comment rune
	// LineSeparator is the one- or two-character sequence ending a record.
	LineSeparator string
	// NormalizedNewline is what LineSeparator is turned into while parsing, and
	// what is turned back into LineSeparator while writing.
	NormalizedNewline rune
	// Padding fills unused space in fixed-width fields.
	Padding rune
}

// CSVFormat returns the RFC 4180 dialect with '#' comments.
func CSVFormat() Format {
	return Format{
		Delimiter:         ',',
		Quote:             '"',
		QuoteEscape:       '"',
		Escape:            '\\',
		Comment:           '#',
		LineSeparator:     "\n",
		NormalizedNewline: '\n',
		Padding:           ' ',
	}
}

// TSVFormat returns tab separated values with backslash escapes.
func TSVFormat() Format {
	f := CSVFormat()
	f.Delimiter = '\t'
	return f
}

// FixedWidthFormat returns a fixed-width dialect padded with spaces.
func FixedWidthFormat() Format {
	f := CSVFormat()
	f.Delimiter = 0
	return f
}

func (f Format) lineSeparator() []rune {
	return []rune(f.LineSeparator)
}

// isLineSeparatorChar reports whether ch is part of the line separator or is the normalized newline.
func (f Format) isLineSeparatorChar(ch rune) bool {
	return ch == f.NormalizedNewline || strings.ContainsRune(f.LineSeparator, ch)
}

// validate appends a description of every problem to errs.
func (f Format) validate(errs []string) []string {
	sep := f.lineSeparator()
	if len(sep) == 0 || len(sep) > 2 {
		errs = append(errs, fmt.Sprintf("line separator %s must have one or two characters", strconv.Quote(f.LineSeparator)))
	}
	if f.NormalizedNewline == 0 {
		errs = append(errs, "normalized newline must be set")
	}
	if f.Delimiter != 0 && f.isLineSeparatorChar(f.Delimiter) {
		errs = append(errs, fmt.Sprintf("delimiter %s cannot be part of the line separator", strconv.QuoteRune(f.Delimiter)))
	}
	if f.Delimiter != 0 && f.Delimiter == f.Quote {
		errs = append(errs, fmt.Sprintf("delimiter and quote cannot both be %s", strconv.QuoteRune(f.Delimiter)))
	}
	if f.Comment != 0 && f.isLineSeparatorChar(f.Comment) {
		errs = append(errs, fmt.Sprintf("comment %s cannot be part of the line separator", strconv.QuoteRune(f.Comment)))
	}
	return errs
}

// String renders the format with every character quoted so control characters are visible.
func (f Format) String() string {
	return fmt.Sprintf("Format{Delimiter: %s, Quote: %s, QuoteEscape: %s, Escape: %s, Comment: %s, LineSeparator: %s, NormalizedNewline: %s, Padding: %s}",
		strconv.QuoteRune(f.Delimiter),
		strconv.QuoteRune(f.Quote),
		strconv.QuoteRune(f.QuoteEscape),
		strconv.QuoteRune(f.Escape),
		strconv.QuoteRune(f.Comment),
		strconv.Quote(f.LineSeparator),
		strconv.QuoteRune(f.NormalizedNewline),
		strconv.QuoteRune(f.Padding),
	)
}
