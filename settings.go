package swiftxsv

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	defaultMaxCharsPerColumn = 4096
	defaultMaxColumns        = 512
	defaultBufferSize        = 1 << 10 // 1024 bytes
)

// Settings configures a parsing or writing session.
// Sessions copy the Settings they are given; changing a Settings value afterwards has no effect on them.
type Settings struct {
	Format Format

	// MaxCharsPerColumn bounds the length of a single value.
	MaxCharsPerColumn int
	// MaxColumns bounds the number of values in a single record.
	MaxColumns int
	// NumberOfRecordsToRead stops parsing after that many records. Zero or less reads everything.
	NumberOfRecordsToRead int64

	// Headers names the columns. When parsing with HeaderExtractionEnabled they are replaced by the first record.
	Headers []string
	// HeaderExtractionEnabled treats the first parsed record as the headers.
	HeaderExtractionEnabled bool
	// HeaderWritingEnabled writes Headers before the first row.
	HeaderWritingEnabled bool

	// SelectedFields picks columns by header name. Mutually exclusive with SelectedIndexes.
	SelectedFields []string
	// SelectedIndexes picks columns by position.
	SelectedIndexes []int
	// ColumnReorderingEnabled makes parsed records hold only the selected columns, in selection order.
	// When false, records keep their full width with unselected columns set to null.
	ColumnReorderingEnabled bool

	IgnoreLeadingWhitespaces  bool
	IgnoreTrailingWhitespaces bool
	// QuoteAllFields wraps every CSV value in quotes.
	QuoteAllFields bool
	// SkipEmptyLines drops blank lines instead of producing empty records.
	SkipEmptyLines bool

	// NullValue replaces null values: when parsing, empty unquoted values; when writing, nil values.
	// A nil NullValue keeps nulls as they are.
	NullValue *string
	// EmptyValue replaces empty quoted values.
	EmptyValue *string

	// InputBufferSize is the size of the read buffer in bytes.
	InputBufferSize int

	// Logger receives session diagnostics. Nil discards them.
	Logger logrus.FieldLogger
}

// DefaultCSVSettings returns settings for RFC 4180 CSV input and output.
func DefaultCSVSettings() Settings {
	return Settings{
		Format:                    CSVFormat(),
		MaxCharsPerColumn:         defaultMaxCharsPerColumn,
		MaxColumns:                defaultMaxColumns,
		ColumnReorderingEnabled:   true,
		IgnoreLeadingWhitespaces:  true,
		IgnoreTrailingWhitespaces: true,
		SkipEmptyLines:            true,
		InputBufferSize:           defaultBufferSize,
	}
}

// DefaultTSVSettings returns settings for tab separated values.
func DefaultTSVSettings() Settings {
	s := DefaultCSVSettings()
	s.Format = TSVFormat()
	return s
}

// DefaultFixedWidthSettings returns settings for fixed-width text.
func DefaultFixedWidthSettings() Settings {
	s := DefaultCSVSettings()
	s.Format = FixedWidthFormat()
	return s
}

// String returns a pointer to s, for NullValue and EmptyValue.
func String(s string) *string {
	return &s
}

// Validate checks the settings and reports every problem found.
func (s *Settings) Validate() error {
	errs := s.Format.validate(nil)

	if s.MaxCharsPerColumn <= 0 {
		errs = append(errs, fmt.Sprintf("MaxCharsPerColumn (%d) must be positive", s.MaxCharsPerColumn))
	}
	if s.MaxColumns <= 0 {
		errs = append(errs, fmt.Sprintf("MaxColumns (%d) must be positive", s.MaxColumns))
	}
	if s.InputBufferSize < 0 {
		errs = append(errs, fmt.Sprintf("InputBufferSize (%d) must not be negative", s.InputBufferSize))
	}
	if len(s.SelectedFields) > 0 && len(s.SelectedIndexes) > 0 {
		errs = append(errs, "SelectedFields and SelectedIndexes cannot both be set")
	}
	seen := make(map[int]bool, len(s.SelectedIndexes))
	for _, idx := range s.SelectedIndexes {
		if idx < 0 {
			errs = append(errs, fmt.Sprintf("selected index %d must not be negative", idx))
		}
		if seen[idx] {
			errs = append(errs, fmt.Sprintf("selected index %d appears more than once", idx))
		}
		seen[idx] = true
	}
	names := make(map[string]bool, len(s.SelectedFields))
	for _, name := range s.SelectedFields {
		if names[name] {
			errs = append(errs, fmt.Sprintf("selected field %q appears more than once", name))
		}
		names[name] = true
	}
	if len(s.SelectedFields) > 0 && len(s.Headers) == 0 && !s.HeaderExtractionEnabled {
		errs = append(errs, "SelectedFields requires Headers or HeaderExtractionEnabled")
	}
	if s.HeaderWritingEnabled && len(s.Headers) == 0 {
		errs = append(errs, "HeaderWritingEnabled requires Headers")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidSettings, strings.Join(errs, "\n  - "))
	}
	return nil
}

// String renders the effective configuration for diagnostics.
func (s *Settings) String() string {
	var b strings.Builder
	b.WriteString("Settings{")
	fmt.Fprintf(&b, "%s, ", s.Format)
	fmt.Fprintf(&b, "MaxCharsPerColumn: %d, MaxColumns: %d, NumberOfRecordsToRead: %d, ", s.MaxCharsPerColumn, s.MaxColumns, s.NumberOfRecordsToRead)
	fmt.Fprintf(&b, "Headers: %q, HeaderExtractionEnabled: %v, HeaderWritingEnabled: %v, ", s.Headers, s.HeaderExtractionEnabled, s.HeaderWritingEnabled)
	fmt.Fprintf(&b, "SelectedFields: %q, SelectedIndexes: %v, ColumnReorderingEnabled: %v, ", s.SelectedFields, s.SelectedIndexes, s.ColumnReorderingEnabled)
	fmt.Fprintf(&b, "IgnoreLeadingWhitespaces: %v, IgnoreTrailingWhitespaces: %v, QuoteAllFields: %v, SkipEmptyLines: %v, ", s.IgnoreLeadingWhitespaces, s.IgnoreTrailingWhitespaces, s.QuoteAllFields, s.SkipEmptyLines)
	fmt.Fprintf(&b, "NullValue: %s, EmptyValue: %s, InputBufferSize: %d", optional(s.NullValue), optional(s.EmptyValue), s.InputBufferSize)
	b.WriteString("}")
	return b.String()
}

func optional(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q", *s)
}

// clone copies s so a session never shares slices with the caller.
func (s Settings) clone() Settings {
	s.Headers = append([]string(nil), s.Headers...)
	s.SelectedFields = append([]string(nil), s.SelectedFields...)
	s.SelectedIndexes = append([]int(nil), s.SelectedIndexes...)
	if s.InputBufferSize == 0 {
		s.InputBufferSize = defaultBufferSize
	}
	return s
}

func (s *Settings) logger() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	return discardLogger
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}()
