package swiftxsv

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnescapedQuote is returned when a quoted value is followed by something other than a delimiter or newline.
	ErrUnescapedQuote = errors.New("swiftxsv: unescaped quote inside quoted value")
	// ErrNoHeaders is returned when headers are required but none were declared or extracted.
	ErrNoHeaders = errors.New("swiftxsv: no headers defined")
	// ErrNotStarted is returned by ParseNext when BeginParsing was never called.
	ErrNotStarted = errors.New("swiftxsv: parsing not started, call BeginParsing first")
	// ErrWriterClosed is returned when writing to a closed Writer.
	ErrWriterClosed = errors.New("swiftxsv: writer is closed")
	// ErrInvalidSettings wraps every Settings validation failure.
	ErrInvalidSettings = errors.New("swiftxsv: invalid settings")
)

// LimitKind names the bound a LimitError refers to.
type LimitKind int

const (
	// LimitChars is the maximum number of characters per column.
	LimitChars LimitKind = iota + 1
	// LimitColumns is the maximum number of columns per record.
	LimitColumns
)

func (k LimitKind) String() string {
	switch k {
	case LimitChars:
		return "characters per column"
	case LimitColumns:
		return "columns per record"
	default:
		return "unknown limit"
	}
}

// LimitError reports that a value or a row reached a configured maximum.
// Nothing is truncated: the value is rejected and the limit must be raised.
type LimitError struct {
	Kind  LimitKind
	Limit int
}

func (e *LimitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("swiftxsv: limit of %d %s exceeded", e.Limit, e.Kind)
}

// ParsingError carries everything needed to reproduce a parsing failure:
// where it happened, what was buffered, and the settings in effect.
type ParsingError struct {
	// Err is the underlying cause.
	Err error
	// Origin is the Go type of the cause.
	Origin string
	// Record is the number of records parsed before the failure.
	Record int64
	// Line and Char locate the failure in the input (Line is 1-based).
	Line int64
	Char int64
	// Content is the value being parsed, with line separators and NUL runes made visible.
	Content string
	// NullChars counts NUL runes in Content; a non-zero count usually means a wrong encoding.
	NullChars int
	// Separators reports line separator characters inside Content.
	Separators bool
	// Hints suggest settings that may need to change.
	Hints []string
	// Settings is the effective configuration of the session.
	Settings string
}

// Error renders the failure with its reproduction context, one item per line.
func (e *ParsingError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "swiftxsv: parse error on line %d, char %d, after %d records: %s - %v", e.Line, e.Char, e.Record, e.Origin, e.Err)
	if e.Separators {
		b.WriteString("\nIdentified line separator characters in the parsed content. Parsed content:\n\t")
		b.WriteString(e.Content)
	}
	if e.NullChars > 0 {
		fmt.Fprintf(&b, "\nIdentified %d null characters ('\\0') on parsed content. The data may be corrupt or its encoding invalid. Parsed content:\n\t%s", e.NullChars, e.Content)
	}
	for _, hint := range e.Hints {
		b.WriteString("\nHint: ")
		b.WriteString(hint)
	}
	if e.Settings != "" {
		b.WriteString("\nParser Configuration: ")
		b.WriteString(e.Settings)
	}
	return b.String()
}

// Unwrap returns the underlying Err so ParsingError participates in errors.Is and errors.As.
func (e *ParsingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// newParsingError builds the diagnostic for err from the buffered characters and settings.
func newParsingError(err error, s *Settings, buffered []rune, record, line, char int64) *ParsingError {
	pe := &ParsingError{
		Err:    err,
		Origin: fmt.Sprintf("%T", err),
		Record: record,
		Line:   line,
		Char:   char,
	}
	if len(buffered) > 0 {
		pe.Content, pe.NullChars, pe.Separators = displayContent(buffered, s.Format.LineSeparator)
	}

	var limit *LimitError
	if errors.As(err, &limit) {
		if limit.Limit == s.MaxCharsPerColumn {
			pe.Hints = append(pe.Hints, fmt.Sprintf("Number of characters processed may have exceeded limit of %d characters per column. Raise Settings.MaxCharsPerColumn to accept longer values", limit.Limit))
		}
		if limit.Limit == s.MaxColumns {
			pe.Hints = append(pe.Hints, fmt.Sprintf("Number of columns processed may have exceeded limit of %d columns. Raise Settings.MaxColumns to accept wider rows", limit.Limit))
		}
		pe.Hints = append(pe.Hints, "Ensure your configuration is correct, with delimiters, quotes and escape sequences that match the input format you are trying to parse")
	}
	pe.Settings = s.String()
	return pe
}

// displayContent makes line separators and NUL runes in buffered visible.
// It reports how many NUL runes it found and whether any separator was present.
func displayContent(buffered []rune, lineSeparator string) (content string, nulls int, separators bool) {
	var b strings.Builder
	crlf := lineSeparator == "\r\n"
	for i := 0; i < len(buffered); i++ {
		switch ch := buffered[i]; ch {
		case 0:
			b.WriteString(`\0`)
			nulls++
		case '\r':
			separators = true
			if crlf && i+1 < len(buffered) && buffered[i+1] == '\n' {
				b.WriteString("[\\r\\n]\r\n\t")
				i++
				continue
			}
			b.WriteString("[\\r]\r\t")
		case '\n':
			separators = true
			b.WriteString("[\\n]\n\t")
		default:
			b.WriteRune(ch)
		}
	}
	return b.String(), nulls, separators
}

// WritingError reports a failure while encoding one record.
// Either RecordData or RecordCharacters is set, depending on how far the record got.
type WritingError struct {
	Err error
	// RecordCount is the number of records written successfully before the failure.
	RecordCount int64
	// RecordData is the row that could not be encoded.
	RecordData []any
	// RecordCharacters holds what was already encoded for the failed record.
	RecordCharacters string
}

func (e *WritingError) Error() string {
	if e == nil {
		return ""
	}
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.RecordData != nil:
		return fmt.Sprintf("swiftxsv: error writing data: %s, recordCount=%d, recordData=%v", msg, e.RecordCount, e.RecordData)
	case e.RecordCharacters != "":
		return fmt.Sprintf("swiftxsv: error writing data: %s, recordCount=%d, recordData=[%s]", msg, e.RecordCount, e.RecordCharacters)
	default:
		return fmt.Sprintf("swiftxsv: error writing data: %s, recordCount=%d", msg, e.RecordCount)
	}
}

// Unwrap returns the underlying cause.
func (e *WritingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
