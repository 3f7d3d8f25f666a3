package swiftxsv

import "fmt"

type binding[T any] struct {
	name string
	set  func(*T, Value) error
	get  func(*T) any
}

// Mapping ties the fields of T to named columns.
// Bindings are declared explicitly; their order is the column order of rows
// produced by Row and of Headers.
type Mapping[T any] struct {
	bindings []binding[T]
}

// NewMapping creates an empty Mapping.
func NewMapping[T any]() *Mapping[T] {
	return &Mapping[T]{}
}

// Bind maps the column name to a field of T. set decodes a parsed value into the
// field and may be nil for write-only columns; get returns the value to write and
// may be nil for read-only columns.
func (m *Mapping[T]) Bind(name string, set func(dst *T, v Value) error, get func(src *T) any) *Mapping[T] {
	m.bindings = append(m.bindings, binding[T]{name: name, set: set, get: get})
	return m
}

// Headers returns the bound column names in binding order.
func (m *Mapping[T]) Headers() []string {
	headers := make([]string, len(m.bindings))
	for i, b := range m.bindings {
		headers[i] = b.name
	}
	return headers
}

// Row returns the values of v in binding order, ready for Writer.WriteRow.
func (m *Mapping[T]) Row(v *T) []any {
	row := make([]any, len(m.bindings))
	for i, b := range m.bindings {
		if b.get != nil {
			row[i] = b.get(v)
		}
	}
	return row
}

// MappingConsumer is a RowConsumer decoding every record into a T.
// Columns are matched by header name when the session has headers, by binding
// order otherwise. The match is made once per session.
type MappingConsumer[T any] struct {
	mapping *Mapping[T]
	handle  func(v T, ctx *ParsingContext) error
	columns []int
}

// NewMappingConsumer creates a consumer passing each decoded value to handle.
func NewMappingConsumer[T any](m *Mapping[T], handle func(v T, ctx *ParsingContext) error) *MappingConsumer[T] {
	return &MappingConsumer[T]{mapping: m, handle: handle}
}

// Collect returns a consumer appending every decoded value to dst.
func Collect[T any](m *Mapping[T], dst *[]T) *MappingConsumer[T] {
	return NewMappingConsumer(m, func(v T, _ *ParsingContext) error {
		*dst = append(*dst, v)
		return nil
	})
}

func (c *MappingConsumer[T]) SessionStarted(*ParsingContext) {
	c.columns = nil
}

func (c *MappingConsumer[T]) RowParsed(record Record, ctx *ParsingContext) error {
	if c.columns == nil {
		columns, err := c.resolve(ctx)
		if err != nil {
			return err
		}
		c.columns = columns
	}

	var v T
	for i, b := range c.mapping.bindings {
		if b.set == nil {
			continue
		}
		if err := b.set(&v, record.Get(c.columns[i])); err != nil {
			return fmt.Errorf("swiftxsv: field %q of record %d: %w", b.name, ctx.CurrentRecord(), err)
		}
	}
	if c.handle == nil {
		return nil
	}
	return c.handle(v, ctx)
}

func (c *MappingConsumer[T]) SessionEnded(*ParsingContext) {
	c.columns = nil
}

// resolve finds the record position of every binding.
func (c *MappingConsumer[T]) resolve(ctx *ParsingContext) ([]int, error) {
	columns := make([]int, len(c.mapping.bindings))
	names := ctx.Headers()
	if len(names) == 0 {
		for i := range columns {
			columns[i] = i
		}
		return columns, nil
	}

	if ctx.ColumnsReordered() {
		selected := ctx.ExtractedFieldIndexes()
		reordered := make([]string, len(selected))
		for i, idx := range selected {
			if idx < len(names) {
				reordered[i] = names[idx]
			}
		}
		names = reordered
	}

	for i, b := range c.mapping.bindings {
		columns[i] = -1
		for j, name := range names {
			if name == b.name {
				columns[i] = j
				break
			}
		}
		if columns[i] < 0 && b.set != nil {
			return nil, fmt.Errorf("swiftxsv: mapped field %q not found in headers %q", b.name, names)
		}
	}
	return columns, nil
}
