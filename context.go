package swiftxsv

import "github.com/google/uuid"

// Value is one parsed field. A null value has no text.
type Value struct {
	Text string
	Null bool
}

// Null is the null Value.
var Null = Value{Null: true}

// Text returns a non-null Value holding s.
func Text(s string) Value {
	return Value{Text: s}
}

func (v Value) String() string {
	if v.Null {
		return "<null>"
	}
	return v.Text
}

// Record is one parsed row.
type Record []Value

// Strings returns the text of every value, with nulls as empty strings.
func (r Record) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.Text
	}
	return out
}

// Row converts the record into a row for a Writer, with nulls as nil.
func (r Record) Row() []any {
	out := make([]any, len(r))
	for i, v := range r {
		if !v.Null {
			out[i] = v.Text
		}
	}
	return out
}

// Get returns the value at index i, or Null when the record is shorter.
func (r Record) Get(i int) Value {
	if i < 0 || i >= len(r) {
		return Null
	}
	return r[i]
}

// ParsingContext describes the state of a parsing session to its RowConsumer.
type ParsingContext struct {
	parser  *Parser
	session uuid.UUID
}

// Stop ends the session after the current record.
func (c *ParsingContext) Stop() {
	c.parser.stopped = true
}

// IsStopped reports whether the session was stopped.
func (c *ParsingContext) IsStopped() bool {
	return c.parser.stopped
}

// CurrentRecord is the number of records parsed so far.
func (c *ParsingContext) CurrentRecord() int64 {
	return c.parser.records
}

// CurrentLine is the 1-based line being parsed.
func (c *ParsingContext) CurrentLine() int64 {
	return c.parser.in.LineCount() + 1
}

// CurrentChar is the number of characters read so far.
func (c *ParsingContext) CurrentChar() int64 {
	return c.parser.in.CharCount()
}

// Headers returns the declared or extracted headers, or nil.
func (c *ParsingContext) Headers() []string {
	return c.parser.out.columns.headers
}

// ExtractedFieldIndexes returns the source indexes of the selected columns, or nil
// when every column is kept.
func (c *ParsingContext) ExtractedFieldIndexes() []int {
	if !c.parser.out.columns.selected() {
		return nil
	}
	sel, err := c.parser.out.columns.resolve()
	if err != nil {
		return nil
	}
	return append([]int(nil), sel...)
}

// ColumnsReordered reports whether records hold only the selected columns in selection order.
func (c *ParsingContext) ColumnsReordered() bool {
	return c.parser.out.columns.selected() && c.parser.out.columns.reorder
}

// SessionID identifies the session in logs.
func (c *ParsingContext) SessionID() string {
	return c.session.String()
}

// RowConsumer receives the records of a parsing session.
// SessionStarted is called before the first record and SessionEnded exactly once at the end,
// whether parsing succeeded or not. An error from RowParsed aborts the session.
type RowConsumer interface {
	SessionStarted(ctx *ParsingContext)
	RowParsed(record Record, ctx *ParsingContext) error
	SessionEnded(ctx *ParsingContext)
}

// RecordList is a RowConsumer that keeps every record in memory.
type RecordList struct {
	Headers []string
	Records []Record
}

func (l *RecordList) SessionStarted(*ParsingContext) {
	l.Records = l.Records[:0]
}

func (l *RecordList) RowParsed(record Record, _ *ParsingContext) error {
	l.Records = append(l.Records, record)
	return nil
}

func (l *RecordList) SessionEnded(ctx *ParsingContext) {
	l.Headers = ctx.Headers()
}

// ConsumerFuncs adapts functions to a RowConsumer. Nil functions are skipped.
type ConsumerFuncs struct {
	Started func(ctx *ParsingContext)
	Row     func(record Record, ctx *ParsingContext) error
	Ended   func(ctx *ParsingContext)
}

func (f ConsumerFuncs) SessionStarted(ctx *ParsingContext) {
	if f.Started != nil {
		f.Started(ctx)
	}
}

func (f ConsumerFuncs) RowParsed(record Record, ctx *ParsingContext) error {
	if f.Row != nil {
		return f.Row(record, ctx)
	}
	return nil
}

func (f ConsumerFuncs) SessionEnded(ctx *ParsingContext) {
	if f.Ended != nil {
		f.Ended(ctx)
	}
}
