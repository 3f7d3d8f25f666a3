package launcher

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/oleg578/swiftxsv"
	"github.com/oleg578/swiftxsv/internal/logging"
)

// NewApp builds the xsvconv command line application.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "xsvconv"
	app.Usage = "Convert between CSV, TSV and fixed-width text"
	app.Version = "0.1.0"
	app.Flags = appFlags()
	app.Action = convert
	app.Writer = os.Stdout
	return app
}

// Launch parses args and runs the conversion.
func Launch(args []string) error {
	return NewApp().Run(args)
}

func convert(c *cli.Context) error {
	logger := logging.Setup(os.Stderr, c.String(logLevelFlag.Name), c.String(logFormatFlag.Name))

	from, to := strings.ToLower(c.String(fromFlag.Name)), strings.ToLower(c.String(toFlag.Name))
	readSettings, err := settingsFor(c, from, logger)
	if err != nil {
		return err
	}
	writeSettings, err := settingsFor(c, to, logger)
	if err != nil {
		return err
	}
	applySelection(c, &readSettings)
	readSettings.HeaderExtractionEnabled = c.Bool(headerFlag.Name)
	readSettings.NumberOfRecordsToRead = c.Int64(limitFlag.Name)
	if null := c.String(nullFlag.Name); null != "" {
		writeSettings.NullValue = swiftxsv.String(null)
	}

	layout, err := parseWidths(c.String(widthsFlag.Name))
	if err != nil {
		return err
	}

	parser, err := newParser(from, readSettings, layout)
	if err != nil {
		return err
	}

	in, err := openInput(c.String(inputFlag.Name))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(c.String(outputFlag.Name))
	if err != nil {
		return err
	}
	writer, err := newWriter(to, out, writeSettings, layout)
	if err != nil {
		out.Close()
		return err
	}

	// Strip a UTF-8 or UTF-16 byte order mark and decode to UTF-8.
	decoded := transform.NewReader(in, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	conv := &converter{writer: writer, header: readSettings.HeaderExtractionEnabled}
	parseErr := parser.Parse(decoded, conv)
	closeErr := writer.Close()
	if parseErr != nil {
		return parseErr
	}
	if conv.err != nil {
		return conv.err
	}
	if closeErr != nil {
		return closeErr
	}
	logger.WithFields(logrus.Fields{
		"from":    from,
		"to":      to,
		"records": writer.RecordCount(),
	}).Info("conversion finished")
	return nil
}

// converter writes every parsed record, preceded by the headers when they were extracted.
type converter struct {
	writer  *swiftxsv.Writer
	header  bool
	written bool
	err     error
}

func (c *converter) SessionStarted(*swiftxsv.ParsingContext) {}

func (c *converter) RowParsed(record swiftxsv.Record, ctx *swiftxsv.ParsingContext) error {
	if err := c.writeHeaders(ctx); err != nil {
		return err
	}
	return c.writer.WriteRecord(record)
}

func (c *converter) SessionEnded(ctx *swiftxsv.ParsingContext) {
	// Input holding nothing but headers still produces them.
	c.err = c.writeHeaders(ctx)
}

func (c *converter) writeHeaders(ctx *swiftxsv.ParsingContext) error {
	if !c.header || c.written {
		return nil
	}
	headers := ctx.Headers()
	if len(headers) == 0 {
		return nil
	}
	c.written = true
	if ctx.ColumnsReordered() {
		selected := ctx.ExtractedFieldIndexes()
		names := make([]string, 0, len(selected))
		for _, idx := range selected {
			if idx < len(headers) {
				names = append(names, headers[idx])
			}
		}
		headers = names
	}
	return c.writer.WriteHeaders(headers...)
}

func settingsFor(c *cli.Context, format string, logger *logrus.Logger) (swiftxsv.Settings, error) {
	var s swiftxsv.Settings
	switch format {
	case "csv":
		s = swiftxsv.DefaultCSVSettings()
	case "tsv":
		s = swiftxsv.DefaultTSVSettings()
	case "fixed":
		s = swiftxsv.DefaultFixedWidthSettings()
	default:
		return s, fmt.Errorf("unknown format %q, expected csv, tsv or fixed", format)
	}
	s.Logger = logger

	if format != "fixed" {
		if err := setRune(&s.Format.Delimiter, c.String(delimiterFlag.Name)); err != nil {
			return s, fmt.Errorf("--%s: %w", delimiterFlag.Name, err)
		}
	}
	if format == "csv" {
		if err := setRune(&s.Format.Quote, c.String(quoteFlag.Name)); err != nil {
			return s, fmt.Errorf("--%s: %w", quoteFlag.Name, err)
		}
		s.Format.QuoteEscape = s.Format.Quote
		if err := setRune(&s.Format.QuoteEscape, c.String(quoteEscapeFlag.Name)); err != nil {
			return s, fmt.Errorf("--%s: %w", quoteEscapeFlag.Name, err)
		}
	}
	if format == "tsv" {
		if err := setRune(&s.Format.Escape, c.String(escapeFlag.Name)); err != nil {
			return s, fmt.Errorf("--%s: %w", escapeFlag.Name, err)
		}
	}

	s.Format.Comment = 0
	if err := setRune(&s.Format.Comment, c.String(commentFlag.Name)); err != nil {
		return s, fmt.Errorf("--%s: %w", commentFlag.Name, err)
	}

	switch sep := strings.ToLower(c.String(lineSeparatorFlag.Name)); sep {
	case "lf", "":
		s.Format.LineSeparator = "\n"
	case "crlf":
		s.Format.LineSeparator = "\r\n"
	case "cr":
		s.Format.LineSeparator = "\r"
	default:
		return s, fmt.Errorf("--%s: unknown line separator %q, expected lf, crlf or cr", lineSeparatorFlag.Name, sep)
	}
	s.Format.NormalizedNewline = '\n'

	trim := c.BoolT(trimFlag.Name)
	s.IgnoreLeadingWhitespaces = trim
	s.IgnoreTrailingWhitespaces = trim
	s.QuoteAllFields = c.Bool(quoteAllFlag.Name)
	s.MaxCharsPerColumn = c.Int(maxCharsFlag.Name)
	s.MaxColumns = c.Int(maxColumnsFlag.Name)
	return s, nil
}

// applySelection reads --select as indexes when every item is a number, as header names otherwise.
func applySelection(c *cli.Context, s *swiftxsv.Settings) {
	raw := c.String(selectFlag.Name)
	if raw == "" {
		return
	}
	items := strings.Split(raw, ",")
	indexes := make([]int, 0, len(items))
	for _, item := range items {
		idx, err := strconv.Atoi(strings.TrimSpace(item))
		if err != nil {
			names := make([]string, len(items))
			for i, name := range items {
				names[i] = strings.TrimSpace(name)
			}
			s.SelectedFields = names
			return
		}
		indexes = append(indexes, idx)
	}
	s.SelectedIndexes = indexes
}

func parseWidths(raw string) (swiftxsv.FixedWidthLayout, error) {
	var layout swiftxsv.FixedWidthLayout
	if raw == "" {
		return layout, nil
	}
	for _, item := range strings.Split(raw, ",") {
		w, err := strconv.Atoi(strings.TrimSpace(item))
		if err != nil {
			return layout, fmt.Errorf("--%s: %q is not a width: %w", widthsFlag.Name, item, err)
		}
		layout.Widths = append(layout.Widths, w)
	}
	return layout, nil
}

func setRune(dst *rune, value string) error {
	if value == "" {
		return nil
	}
	switch value {
	case `\t`, "tab":
		*dst = '\t'
		return nil
	}
	r, size := utf8.DecodeRuneInString(value)
	if size != len(value) {
		return fmt.Errorf("%q must be a single character", value)
	}
	*dst = r
	return nil
}

func newParser(format string, s swiftxsv.Settings, layout swiftxsv.FixedWidthLayout) (*swiftxsv.Parser, error) {
	switch format {
	case "tsv":
		return swiftxsv.NewTSVParser(s)
	case "fixed":
		return swiftxsv.NewFixedWidthParser(s, layout)
	default:
		return swiftxsv.NewCSVParser(s)
	}
}

func newWriter(format string, w io.Writer, s swiftxsv.Settings, layout swiftxsv.FixedWidthLayout) (*swiftxsv.Writer, error) {
	switch format {
	case "tsv":
		return swiftxsv.NewTSVWriter(w, s)
	case "fixed":
		return swiftxsv.NewFixedWidthWriter(w, s, layout)
	default:
		return swiftxsv.NewCSVWriter(w, s)
	}
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

// stdout keeps the Writer from closing os.Stdout.
type stdout struct{ io.Writer }

func (stdout) Close() error { return nil }

func createOutput(name string) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return stdout{os.Stdout}, nil
	}
	return os.Create(name)
}
