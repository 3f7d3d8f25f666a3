package swiftxsv

import (
	"io"
	"strings"
)

// NewTSVParser creates a Parser for tab separated values.
// Tabs, newlines, carriage returns and the escape character itself appear in values
// as two-character escape sequences; there is no quoting.
func NewTSVParser(settings Settings) (*Parser, error) {
	return NewParser(settings, newTSVGrammar(&settings))
}

// NewTSVWriter creates a Writer emitting tab separated values into w.
// TSV has no way to tell an empty value from a null one: both are written as nothing
// unless NullValue or EmptyValue is set.
func NewTSVWriter(w io.Writer, settings Settings) (*Writer, error) {
	return NewWriter(w, settings, newTSVEncoder(&settings))
}

type tsvGrammar struct {
	delimiter rune
	escape    rune
	newline   rune

	trimLeading  bool
	trimTrailing bool
}

func newTSVGrammar(s *Settings) *tsvGrammar {
	return &tsvGrammar{
		delimiter:    s.Format.Delimiter,
		escape:       s.Format.Escape,
		newline:      s.Format.NormalizedNewline,
		trimLeading:  s.IgnoreLeadingWhitespaces,
		trimTrailing: s.IgnoreTrailingWhitespaces,
	}
}

func (g *tsvGrammar) ParseRecord(ch rune, in CharSource, out *ParserOutput) error {
	app := out.Appender()
	var err error
	for {
		if g.trimLeading {
			for ch != g.newline && ch != g.delimiter && isWhitespace(ch) {
				if ch, err = in.NextChar(); err != nil {
					return err
				}
			}
		}

		for ch != g.delimiter && ch != g.newline {
			if ch == g.escape && g.escape != 0 {
				next, err := in.NextChar()
				if err != nil {
					if err == io.EOF {
						if err := app.Append(ch); err != nil {
							return err
						}
					}
					return err
				}
				decoded, ok := g.unescape(next)
				if !ok {
					// Unknown sequence: the escape is literal and next is read as usual.
					if err := app.Append(ch); err != nil {
						return err
					}
					ch = next
					continue
				}
				if err := app.Append(decoded); err != nil {
					return err
				}
			} else {
				if g.trimTrailing {
					err = app.AppendIgnoringWhitespace(ch)
				} else {
					err = app.Append(ch)
				}
				if err != nil {
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
		if ch == g.newline {
			return nil
		}
		if ch, err = in.NextChar(); err != nil {
			return err
		}
	}
}

func (g *tsvGrammar) unescape(ch rune) (rune, bool) {
	switch ch {
	case 't':
		return '\t', true
	case 'n':
		return g.newline, true
	case 'r':
		return '\r', true
	case g.escape:
		return g.escape, true
	default:
		return 0, false
	}
}

type tsvEncoder struct {
	delimiter rune
	escape    rune
	newline   rune

	trimLeading  bool
	trimTrailing bool
	nullValue    *string
	emptyValue   *string
}

func newTSVEncoder(s *Settings) *tsvEncoder {
	return &tsvEncoder{
		delimiter:    s.Format.Delimiter,
		escape:       s.Format.Escape,
		newline:      s.Format.NormalizedNewline,
		trimLeading:  s.IgnoreLeadingWhitespaces,
		trimTrailing: s.IgnoreTrailingWhitespaces,
		nullValue:    s.NullValue,
		emptyValue:   s.EmptyValue,
	}
}

func (e *tsvEncoder) EncodeRow(row []any, out *WriterOutput) error {
	for i, v := range row {
		if i > 0 {
			out.AppendToRow(e.delimiter)
		}
		text, null := TextOf(v)
		if !null {
			if e.trimLeading {
				text = strings.TrimLeftFunc(text, isWhitespace)
			}
			if e.trimTrailing {
				text = strings.TrimRightFunc(text, isWhitespace)
			}
		}
		switch {
		case null && e.nullValue != nil:
			text = *e.nullValue
		case !null && text == "" && e.emptyValue != nil:
			text = *e.emptyValue
		case !null && text == "" && e.nullValue != nil:
			text = *e.nullValue
		}
		if err := e.escapeValue(text, out.Appender()); err != nil {
			return err
		}
		out.AppendValueToRow()
	}
	return nil
}

func (e *tsvEncoder) escapeValue(text string, app *ValueBuffer) error {
	for _, ch := range text {
		var code rune
		switch ch {
		case '\t':
			code = 't'
		case e.newline, '\n':
			code = 'n'
		case '\r':
			code = 'r'
		case e.escape:
			code = e.escape
		}
		if code != 0 {
			if err := app.Append(e.escape); err != nil {
				return err
			}
			ch = code
		}
		if err := app.Append(ch); err != nil {
			return err
		}
	}
	return nil
}
