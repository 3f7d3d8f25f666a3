package swiftxsv

// ParserOutput assembles the values reported by a Grammar into records.
// A Grammar appends characters to Appender and calls ValueParsed at every value boundary;
// the Parser turns the collected values into a Record once the grammar returns.
type ParserOutput struct {
	appender *ValueBuffer
	values   []Value
	quoted   bool
	// content is set once a value of the current row had characters or quotes.
	content bool

	maxColumns     int
	skipEmptyLines bool
	extractHeaders bool
	nullValue      Value
	emptyValue     Value

	columns *columnMap
}

func newParserOutput(s *Settings, appender *ValueBuffer, columns *columnMap, extractHeaders bool) *ParserOutput {
	out := &ParserOutput{
		appender:       appender,
		values:         make([]Value, 0, 16),
		maxColumns:     s.MaxColumns,
		skipEmptyLines: s.SkipEmptyLines,
		extractHeaders: extractHeaders,
		nullValue:      Null,
		emptyValue:     Text(""),
		columns:        columns,
	}
	if s.NullValue != nil {
		out.nullValue = Text(*s.NullValue)
	}
	if s.EmptyValue != nil {
		out.emptyValue = Text(*s.EmptyValue)
	}
	return out
}

// Appender returns the buffer holding the value being parsed.
func (o *ParserOutput) Appender() *ValueBuffer {
	return o.appender
}

// MarkQuoted records that the current value was quoted, so an empty result
// becomes the empty value rather than null.
func (o *ParserOutput) MarkQuoted() {
	o.quoted = true
}

// ValueParsed ends the current value and clears the appender.
func (o *ParserOutput) ValueParsed() error {
	if len(o.values) >= o.maxColumns {
		return &LimitError{Kind: LimitColumns, Limit: o.maxColumns}
	}
	var v Value
	switch {
	case o.appender.Len() > 0:
		v = Text(o.appender.String())
		o.content = true
	case o.quoted:
		v = o.emptyValue
		o.content = true
	default:
		v = o.nullValue
	}
	o.values = append(o.values, v)
	o.appender.Reset()
	o.quoted = false
	return nil
}

// pending reports whether a partial value or record is waiting to be assembled.
func (o *ParserOutput) pending() bool {
	return len(o.values) > 0 || o.appender.Len() > 0 || o.quoted
}

// reset drops any partial record.
func (o *ParserOutput) reset() {
	o.values = o.values[:0]
	o.content = false
	o.appender.Reset()
	o.quoted = false
}

// blank reports whether the row is an empty line: no values, or a single value
// that was neither quoted nor had any characters.
func (o *ParserOutput) blank() bool {
	return len(o.values) == 0 || (len(o.values) == 1 && !o.content)
}

// rowParsed turns the collected values into a record. ok is false when there is
// nothing to deliver: a skipped empty line or the extracted header row.
func (o *ParserOutput) rowParsed() (record Record, ok bool, err error) {
	defer func() {
		o.values = o.values[:0]
		o.content = false
	}()

	if o.skipEmptyLines && o.blank() {
		return nil, false, nil
	}

	if o.extractHeaders {
		o.extractHeaders = false
		headers := make([]string, len(o.values))
		for i, v := range o.values {
			headers[i] = v.Text
		}
		o.columns.setHeaders(headers)
		return nil, false, nil
	}

	if !o.columns.selected() {
		record = make(Record, len(o.values))
		copy(record, o.values)
		return record, true, nil
	}

	positions, err := o.columns.readPositions(len(o.values))
	if err != nil {
		return nil, false, err
	}
	record = make(Record, len(positions))
	for i, src := range positions {
		if src >= 0 && src < len(o.values) {
			record[i] = o.values[src]
		} else {
			record[i] = o.nullValue
		}
	}
	return record, true, nil
}
