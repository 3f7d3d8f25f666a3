package swiftxsv

import (
	"fmt"
	"io"
	"strings"
)

// FixedWidthLayout gives the width of every field of a fixed-width record.
type FixedWidthLayout struct {
	Widths []int
	// Padding fills the unused part of a field. Zero uses the Format padding.
	Padding rune
}

func (l FixedWidthLayout) validate() error {
	if len(l.Widths) == 0 {
		return fmt.Errorf("%w: fixed-width layout has no fields", ErrInvalidSettings)
	}
	for i, w := range l.Widths {
		if w <= 0 {
			return fmt.Errorf("%w: width of field %d (%d) must be positive", ErrInvalidSettings, i, w)
		}
	}
	return nil
}

func (l FixedWidthLayout) padding(f Format) rune {
	if l.Padding != 0 {
		return l.Padding
	}
	return f.Padding
}

// NewFixedWidthParser creates a Parser reading fields of the widths in layout.
// Padding is trimmed from both ends of every field; a newline ends a record early
// and characters past the last field are discarded.
func NewFixedWidthParser(settings Settings, layout FixedWidthLayout) (*Parser, error) {
	if err := layout.validate(); err != nil {
		return nil, err
	}
	return NewParser(settings, &fixedWidthGrammar{
		widths:       append([]int(nil), layout.Widths...),
		padding:      layout.padding(settings.Format),
		newline:      settings.Format.NormalizedNewline,
		trimLeading:  settings.IgnoreLeadingWhitespaces,
		trimTrailing: settings.IgnoreTrailingWhitespaces,
	})
}

// NewFixedWidthWriter creates a Writer padding or truncating every value to the widths in layout.
func NewFixedWidthWriter(w io.Writer, settings Settings, layout FixedWidthLayout) (*Writer, error) {
	if err := layout.validate(); err != nil {
		return nil, err
	}
	return NewWriter(w, settings, &fixedWidthEncoder{
		widths:       append([]int(nil), layout.Widths...),
		padding:      layout.padding(settings.Format),
		trimLeading:  settings.IgnoreLeadingWhitespaces,
		trimTrailing: settings.IgnoreTrailingWhitespaces,
		nullValue:    settings.NullValue,
	})
}

type fixedWidthGrammar struct {
	widths  []int
	padding rune
	newline rune

	trimLeading  bool
	trimTrailing bool
}

func (g *fixedWidthGrammar) ParseRecord(ch rune, in CharSource, out *ParserOutput) error {
	app := out.Appender()
	var err error
	for _, width := range g.widths {
		leading := true
		for n := 0; n < width; n++ {
			if ch == g.newline {
				return out.ValueParsed()
			}
			leading = leading && (ch == g.padding || (g.trimLeading && isWhitespace(ch)))
			if !leading {
				deferred := ch == g.padding || (g.trimTrailing && isWhitespace(ch))
				if err := app.appendIgnoring(ch, deferred); err != nil {
					return err
				}
			}
			if ch, err = in.NextChar(); err != nil {
				return err
			}
		}
		if err := out.ValueParsed(); err != nil {
			return err
		}
	}

	for ch != g.newline {
		if ch, err = in.NextChar(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
	return nil
}

type fixedWidthEncoder struct {
	widths  []int
	padding rune

	trimLeading  bool
	trimTrailing bool
	nullValue    *string
}

func (e *fixedWidthEncoder) EncodeRow(row []any, out *WriterOutput) error {
	if len(row) > len(e.widths) {
		return fmt.Errorf("swiftxsv: row has %d values but the layout has %d fields", len(row), len(e.widths))
	}
	app := out.Appender()
	for i, width := range e.widths {
		var text string
		if i < len(row) {
			var null bool
			text, null = TextOf(row[i])
			if null && e.nullValue != nil {
				text = *e.nullValue
			}
		}
		if e.trimLeading {
			text = strings.TrimLeftFunc(text, isWhitespace)
		}
		if e.trimTrailing {
			text = strings.TrimRightFunc(text, isWhitespace)
		}

		n := 0
		for _, ch := range text {
			if n == width {
				break
			}
			if err := app.Append(ch); err != nil {
				return err
			}
			n++
		}
		for ; n < width; n++ {
			if err := app.Append(e.padding); err != nil {
				return err
			}
		}
		out.AppendValueToRow()
	}
	return nil
}
