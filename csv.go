package swiftxsv

import (
	"io"
	"strings"
)

// NewCSVParser creates a Parser for comma separated values as described by RFC 4180.
func NewCSVParser(settings Settings) (*Parser, error) {
	return NewParser(settings, newCSVGrammar(&settings))
}

// NewCSVWriter creates a Writer emitting comma separated values into w.
func NewCSVWriter(w io.Writer, settings Settings) (*Writer, error) {
	return NewWriter(w, settings, newCSVEncoder(&settings))
}

type csvGrammar struct {
	delimiter   rune
	quote       rune
	quoteEscape rune
	newline     rune

	trimLeading  bool
	trimTrailing bool
}

func newCSVGrammar(s *Settings) *csvGrammar {
	return &csvGrammar{
		delimiter:    s.Format.Delimiter,
		quote:        s.Format.Quote,
		quoteEscape:  s.Format.QuoteEscape,
		newline:      s.Format.NormalizedNewline,
		trimLeading:  s.IgnoreLeadingWhitespaces,
		trimTrailing: s.IgnoreTrailingWhitespaces,
	}
}

func (g *csvGrammar) ParseRecord(ch rune, in CharSource, out *ParserOutput) error {
	var err error
	for {
		if g.trimLeading {
			for ch != g.newline && ch != g.delimiter && isWhitespace(ch) {
				if ch, err = in.NextChar(); err != nil {
					return err
				}
			}
		}

		if ch == g.quote && g.quote != 0 {
			out.MarkQuoted()
			ch, err = g.parseQuoted(in, out.Appender())
		} else {
			ch, err = g.parseValue(ch, in, out.Appender())
		}
		if err != nil {
			return err
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

// parseValue reads an unquoted value and returns the delimiter or newline ending it.
func (g *csvGrammar) parseValue(ch rune, in CharSource, app *ValueBuffer) (rune, error) {
	var err error
	for ch != g.delimiter && ch != g.newline {
		if g.trimTrailing {
			err = app.AppendIgnoringWhitespace(ch)
		} else {
			err = app.Append(ch)
		}
		if err != nil {
			return 0, err
		}
		if ch, err = in.NextChar(); err != nil {
			return 0, err
		}
	}
	return ch, nil
}

// parseQuoted reads a value after its opening quote and returns the delimiter or
// newline following the closing quote.
func (g *csvGrammar) parseQuoted(in CharSource, app *ValueBuffer) (rune, error) {
	for {
		ch, err := in.NextChar()
		if err != nil {
			return 0, err
		}

		switch {
		case ch == g.quoteEscape && g.quoteEscape != g.quote:
			next, err := in.NextChar()
			if err != nil {
				if err == io.EOF {
					err = app.Append(ch)
					if err == nil {
						err = io.EOF
					}
				}
				return 0, err
			}
			if next != g.quote && next != g.quoteEscape {
				// Not an escape sequence; both characters are literal.
				if err := app.Append(ch); err != nil {
					return 0, err
				}
			}
			if err := app.Append(next); err != nil {
				return 0, err
			}

		case ch == g.quote:
			next, err := in.NextChar()
			if err != nil {
				return 0, err
			}
			if next == g.quote && g.quoteEscape == g.quote {
				if err := app.Append(next); err != nil {
					return 0, err
				}
				continue
			}
			for next != g.delimiter && next != g.newline && isWhitespace(next) {
				if next, err = in.NextChar(); err != nil {
					return 0, err
				}
			}
			if next == g.delimiter || next == g.newline {
				return next, nil
			}
			// Keep the offending character visible in the diagnostic.
			_ = app.Append(next)
			return 0, ErrUnescapedQuote

		default:
			if err := app.Append(ch); err != nil {
				return 0, err
			}
		}
	}
}

type csvEncoder struct {
	delimiter   rune
	quote       rune
	quoteEscape rune
	newline     rune
	comment     rune
	lineSep     string

	quoteAll     bool
	trimLeading  bool
	trimTrailing bool
	nullValue    *string
	emptyValue   *string
}

func newCSVEncoder(s *Settings) *csvEncoder {
	return &csvEncoder{
		delimiter:    s.Format.Delimiter,
		quote:        s.Format.Quote,
		quoteEscape:  s.Format.QuoteEscape,
		newline:      s.Format.NormalizedNewline,
		comment:      s.Format.Comment,
		lineSep:      s.Format.LineSeparator,
		quoteAll:     s.QuoteAllFields,
		trimLeading:  s.IgnoreLeadingWhitespaces,
		trimTrailing: s.IgnoreTrailingWhitespaces,
		nullValue:    s.NullValue,
		emptyValue:   s.EmptyValue,
	}
}

func (e *csvEncoder) EncodeRow(row []any, out *WriterOutput) error {
	for i, v := range row {
		if i > 0 {
			out.AppendToRow(e.delimiter)
		}
		if err := e.encodeValue(v, i == 0, out); err != nil {
			return err
		}
	}
	return nil
}

func (e *csvEncoder) encodeValue(v any, first bool, out *WriterOutput) error {
	text, null := TextOf(v)
	if null {
		if e.nullValue == nil {
			return nil
		}
		return e.writeValue(*e.nullValue, first, out)
	}

	if e.trimLeading {
		text = strings.TrimLeftFunc(text, isWhitespace)
	}
	if e.trimTrailing {
		text = strings.TrimRightFunc(text, isWhitespace)
	}
	if text == "" {
		switch {
		case e.quoteAll && e.emptyValue != nil:
			return e.writeValue(*e.emptyValue, first, out)
		case !e.quoteAll && e.nullValue != nil:
			return e.writeValue(*e.nullValue, first, out)
		}
		// Quoted so it reads back as empty rather than null.
		out.AppendToRow(e.quote)
		out.AppendToRow(e.quote)
		return nil
	}
	return e.writeValue(text, first, out)
}

// writeValue appends text to the row, quoted and escaped when needed.
// The first value of a row is quoted when it would read back as a comment.
func (e *csvEncoder) writeValue(text string, first bool, out *WriterOutput) error {
	quoted := e.quoteAll || e.needsQuote(text) ||
		(first && e.comment != 0 && strings.HasPrefix(text, string(e.comment)))
	app := out.Appender()
	for _, ch := range text {
		if quoted && (ch == e.quote || ch == e.quoteEscape) {
			if err := app.Append(e.quoteEscape); err != nil {
				return err
			}
		}
		if err := app.Append(ch); err != nil {
			return err
		}
	}
	if quoted {
		out.AppendToRow(e.quote)
	}
	out.AppendValueToRow()
	if quoted {
		out.AppendToRow(e.quote)
	}
	return nil
}

func (e *csvEncoder) needsQuote(text string) bool {
	for _, ch := range text {
		if ch == e.delimiter || ch == e.quote || ch == e.newline || strings.ContainsRune(e.lineSep, ch) {
			return true
		}
	}
	return false
}
