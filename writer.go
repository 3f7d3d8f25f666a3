package swiftxsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	errNilWriter      = errors.New("swiftxsv: writer is nil")
	errWriterNoTarget = errors.New("swiftxsv: writer destination cannot be nil")
)

// RowEncoder renders one row into a WriterOutput, without the trailing line separator.
type RowEncoder interface {
	EncodeRow(row []any, out *WriterOutput) error
}

// WriterOutput collects the characters of the row being encoded.
// An encoder builds each value in Appender and moves it into the row with
// AppendValueToRow, writing delimiters and quotes directly with AppendToRow.
type WriterOutput struct {
	appender *ValueBuffer
	row      strings.Builder
	sep      []rune
	newline  rune
}

func newWriterOutput(s *Settings) *WriterOutput {
	return &WriterOutput{
		appender: NewValueBuffer(s.MaxCharsPerColumn),
		sep:      s.Format.lineSeparator(),
		newline:  s.Format.NormalizedNewline,
	}
}

// Appender returns the buffer for the value being encoded.
func (o *WriterOutput) Appender() *ValueBuffer {
	return o.appender
}

// AppendToRow writes ch to the row as is.
func (o *WriterOutput) AppendToRow(ch rune) {
	o.row.WriteRune(ch)
}

// AppendStringToRow writes s to the row as is.
func (o *WriterOutput) AppendStringToRow(s string) {
	o.row.WriteString(s)
}

// AppendValueToRow moves the confirmed contents of the appender into the row,
// writing every normalized newline as the line separator, and clears the appender.
func (o *WriterOutput) AppendValueToRow() {
	chars := o.appender.Chars()[:o.appender.Len()]
	for i, ch := range chars {
		if ch != o.newline {
			o.row.WriteRune(ch)
			continue
		}
		// A separator already present in the value is kept once.
		if len(o.sep) == 2 && i > 0 && chars[i-1] == o.sep[0] {
			o.row.WriteRune(o.sep[1])
			continue
		}
		for _, s := range o.sep {
			o.row.WriteRune(s)
		}
	}
	o.appender.Reset()
}

// String returns the row encoded so far.
func (o *WriterOutput) String() string {
	return o.row.String()
}

func (o *WriterOutput) reset() {
	o.appender.Reset()
	o.row.Reset()
}

// TextOf returns the text a writer emits for v and whether v counts as null.
// nil, a nil *string and a null Value are null.
func TextOf(v any) (text string, null bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, false
	case *string:
		if x == nil {
			return "", true
		}
		return *x, false
	case Value:
		return x.Text, x.Null
	case []byte:
		return string(x), false
	case int:
		return strconv.Itoa(x), false
	case int64:
		return strconv.FormatInt(x, 10), false
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), false
	case bool:
		return strconv.FormatBool(x), false
	case fmt.Stringer:
		return x.String(), false
	default:
		return fmt.Sprint(x), false
	}
}

// Writer provides buffered record emission for any RowEncoder.
// The first failure is latched: the writer closes and every later call returns it.
type Writer struct {
	dst    *bufio.Writer
	closer io.Closer

	settings Settings
	encoder  RowEncoder
	out      *WriterOutput
	columns  *columnMap
	log      logrus.FieldLogger

	headersWritten bool
	records        int64
	closed         bool

	err error
}

// NewWriter creates a Writer emitting rows through encoder into w.
// When w is an io.Closer, Close closes it.
func NewWriter(w io.Writer, settings Settings, encoder RowEncoder) (*Writer, error) {
	if w == nil {
		return nil, errWriterNoTarget
	}
	if encoder == nil {
		return nil, fmt.Errorf("%w: encoder cannot be nil", ErrInvalidSettings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := settings.clone()
	wr := &Writer{
		settings: s,
		encoder:  encoder,
		out:      newWriterOutput(&s),
		log:      s.logger(),
	}
	wr.Reset(w)
	return wr, nil
}

// Reset switches to a new destination and clears the record count, the header
// state and any latched error. The settings are kept.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, w.settings.InputBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.closer, _ = dst.(io.Closer)
	w.columns = newColumnMap(&w.settings)
	w.headersWritten = false
	w.records = 0
	w.closed = false
	w.err = nil
}

// WriteHeaders writes a header row. Without arguments the configured headers are used.
// Headers given here replace the configured ones for field selection.
func (w *Writer) WriteHeaders(headers ...string) error {
	if err := w.ready(); err != nil {
		return err
	}
	if len(headers) == 0 {
		headers = w.settings.Headers
	} else {
		w.columns.setHeaders(append([]string(nil), headers...))
	}
	if len(headers) == 0 {
		return w.fail(ErrNoHeaders, nil)
	}
	w.headersWritten = true

	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return w.emit(row, row)
}

// WriteRow encodes one row. With a field selection, values are given in
// selection order and placed at their header positions.
func (w *Writer) WriteRow(values ...any) error {
	if err := w.ready(); err != nil {
		return err
	}
	if w.settings.HeaderWritingEnabled && !w.headersWritten {
		if err := w.WriteHeaders(); err != nil {
			return err
		}
	}

	row := values
	if w.columns.selected() {
		positions, err := w.columns.writePositions(len(values))
		if err != nil {
			return w.fail(err, values)
		}
		row = make([]any, len(positions))
		for i, src := range positions {
			if src >= 0 && src < len(values) {
				row[i] = values[src]
			}
		}
	}
	if len(row) > w.settings.MaxColumns {
		return w.fail(&LimitError{Kind: LimitColumns, Limit: w.settings.MaxColumns}, values)
	}
	if err := w.emit(row, values); err != nil {
		return err
	}
	w.records++
	return nil
}

// WriteRecord writes a parsed record, keeping its nulls.
func (w *Writer) WriteRecord(record Record) error {
	return w.WriteRow(record.Row()...)
}

// Write emits a single record of strings.
func (w *Writer) Write(record []string) error {
	row := make([]any, len(record))
	for i, v := range record {
		row[i] = v
	}
	return w.WriteRow(row...)
}

// WriteAll writes multiple records of strings, stopping at the first error.
func (w *Writer) WriteAll(records [][]string) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// WriteRows writes multiple rows, stopping at the first error.
func (w *Writer) WriteRows(rows [][]any) error {
	if w == nil {
		return errNilWriter
	}
	for _, row := range rows {
		if err := w.WriteRow(row...); err != nil {
			return err
		}
	}
	return nil
}

// WriteRowsAndClose writes rows and closes the writer, even when writing fails.
func (w *Writer) WriteRowsAndClose(rows [][]any) (err error) {
	if w == nil {
		return errNilWriter
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return w.WriteRows(rows)
}

// WriteComment writes text as a comment line. Comments are not counted as records.
func (w *Writer) WriteComment(text string) error {
	if err := w.ready(); err != nil {
		return err
	}
	if w.settings.Format.Comment == 0 {
		return w.fail(fmt.Errorf("%w: no comment character configured", ErrInvalidSettings), []any{text})
	}
	w.out.reset()
	w.out.AppendToRow(w.settings.Format.Comment)
	w.out.AppendStringToRow(text)
	return w.flushRow([]any{text})
}

// RecordCount returns the number of rows written, headers excluded.
func (w *Writer) RecordCount() int64 {
	return w.records
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return nil
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

// Close flushes and closes the destination when it is an io.Closer.
// The destination is closed even after a failure. Later calls do nothing.
func (w *Writer) Close() error {
	if w == nil {
		return errNilWriter
	}
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	if w.err == nil {
		if err = w.dst.Flush(); err != nil {
			w.err = err
		}
	}
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}
	w.log.WithField("records", w.records).Debug("writer closed")
	return err
}

func (w *Writer) ready() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return ErrWriterClosed
	}
	return nil
}

// emit encodes row and writes it. values is what the caller passed, for diagnostics.
func (w *Writer) emit(row, values []any) error {
	w.out.reset()
	if err := w.encoder.EncodeRow(row, w.out); err != nil {
		return w.fail(err, values)
	}
	return w.flushRow(values)
}

func (w *Writer) flushRow(values []any) error {
	w.out.AppendStringToRow(w.settings.Format.LineSeparator)
	if _, err := w.dst.WriteString(w.out.String()); err != nil {
		werr := &WritingError{Err: err, RecordCount: w.records, RecordCharacters: w.out.String()}
		return w.latch(werr)
	}
	return nil
}

// fail wraps err with the failed row, then closes the writer and latches the error.
func (w *Writer) fail(err error, values []any) error {
	return w.latch(&WritingError{Err: err, RecordCount: w.records, RecordData: values})
}

func (w *Writer) latch(werr *WritingError) error {
	w.log.WithError(werr.Err).WithField("records", w.records).Debug("writing failed")
	if cerr := w.Close(); cerr != nil {
		w.log.WithError(cerr).Debug("ignoring error while closing failed writer")
	}
	w.err = werr
	return werr
}
