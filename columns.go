package swiftxsv

import "fmt"

// columnMap maps output positions to source positions for a field selection.
//
// Positions depend on the headers, the selection and the width of the row.
// Headers and selection only change through setHeaders, which invalidates the
// cache; the width is checked on every call, so uniform input computes the
// mapping once.
type columnMap struct {
	headers []string
	fields  []string
	indexes []int
	reorder bool

	// cache
	valid     bool
	width     int
	selection []int
	positions []int
}

func newColumnMap(s *Settings) *columnMap {
	return &columnMap{
		headers: s.Headers,
		fields:  s.SelectedFields,
		indexes: s.SelectedIndexes,
		reorder: s.ColumnReorderingEnabled,
	}
}

func (m *columnMap) selected() bool {
	return len(m.fields) > 0 || len(m.indexes) > 0
}

func (m *columnMap) setHeaders(headers []string) {
	m.headers = headers
	m.invalidate()
}

func (m *columnMap) invalidate() {
	m.valid = false
	m.selection = nil
	m.positions = nil
}

// resolve returns the selected source indexes, translating field names through the headers.
func (m *columnMap) resolve() ([]int, error) {
	if m.selection != nil {
		return m.selection, nil
	}
	if len(m.fields) == 0 {
		m.selection = m.indexes
		return m.selection, nil
	}
	if len(m.headers) == 0 {
		return nil, fmt.Errorf("%w: cannot select fields %q", ErrNoHeaders, m.fields)
	}
	sel := make([]int, len(m.fields))
	for i, name := range m.fields {
		sel[i] = -1
		for j, h := range m.headers {
			if h == name {
				sel[i] = j
				break
			}
		}
		if sel[i] < 0 {
			return nil, fmt.Errorf("swiftxsv: could not find field %q in headers %q", name, m.headers)
		}
	}
	m.selection = sel
	return sel, nil
}

// readPositions returns, for each position of a parsed record, the source index it takes its value from.
// -1 marks a position that is always null.
func (m *columnMap) readPositions(width int) ([]int, error) {
	if m.valid && m.width == width {
		return m.positions, nil
	}
	sel, err := m.resolve()
	if err != nil {
		return nil, err
	}

	var positions []int
	if m.reorder {
		positions = append(positions, sel...)
	} else {
		n := width
		if len(m.headers) > n {
			n = len(m.headers)
		}
		positions = make([]int, n)
		for i := range positions {
			positions[i] = -1
		}
		for _, idx := range sel {
			if idx < n {
				positions[idx] = idx
			}
		}
	}

	m.width, m.positions, m.valid = width, positions, true
	return positions, nil
}

// writePositions returns, for each column of a written record, the index of the
// input value that fills it; -1 marks a column written as null. Input values are
// given in selection order and spread back to their header positions.
func (m *columnMap) writePositions(width int) ([]int, error) {
	if m.valid && m.width == width {
		return m.positions, nil
	}
	sel, err := m.resolve()
	if err != nil {
		return nil, err
	}
	if width > len(sel) {
		return nil, fmt.Errorf("swiftxsv: row has %d values but only %d columns are selected", width, len(sel))
	}

	n := len(m.headers)
	for _, idx := range sel {
		if idx+1 > n {
			n = idx + 1
		}
	}
	positions := make([]int, n)
	for i := range positions {
		positions[i] = -1
	}
	for i, idx := range sel {
		positions[idx] = i
	}

	m.width, m.positions, m.valid = width, positions, true
	return positions, nil
}
