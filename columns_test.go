package swiftxsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMapReadPositions(t *testing.T) {
	t.Parallel()

	s := DefaultCSVSettings()
	s.Headers = []string{"year", "make", "model", "price"}
	s.SelectedFields = []string{"price", "year"}

	m := newColumnMap(&s)
	pos, err := m.readPositions(4)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 0}, pos)

	m.reorder = false
	m.invalidate()
	pos, err = m.readPositions(4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, -1, -1, 3}, pos)

	// Wider rows than the headers keep their extra columns unselected.
	pos, err = m.readPositions(6)
	require.NoError(t, err)
	assert.Equal(t, []int{0, -1, -1, 3, -1, -1}, pos)
}

func TestColumnMapCache(t *testing.T) {
	t.Parallel()

	s := DefaultCSVSettings()
	s.SelectedIndexes = []int{1}
	s.ColumnReorderingEnabled = false

	m := newColumnMap(&s)
	first, err := m.readPositions(3)
	require.NoError(t, err)
	again, err := m.readPositions(3)
	require.NoError(t, err)
	assert.Same(t, &first[0], &again[0])

	other, err := m.readPositions(2)
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 1}, other)

	m.setHeaders([]string{"a", "b", "c", "d"})
	pos, err := m.readPositions(2)
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 1, -1, -1}, pos)
}

func TestColumnMapResolveErrors(t *testing.T) {
	t.Parallel()

	s := DefaultCSVSettings()
	s.SelectedFields = []string{"b"}
	m := newColumnMap(&s)

	_, err := m.readPositions(1)
	assert.ErrorIs(t, err, ErrNoHeaders)

	m.setHeaders([]string{"a", "c"})
	_, err = m.readPositions(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `could not find field "b"`)

	m.setHeaders([]string{"a", "b"})
	pos, err := m.readPositions(2)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, pos)
}

func TestColumnMapWritePositions(t *testing.T) {
	t.Parallel()

	s := DefaultCSVSettings()
	s.Headers = []string{"year", "make", "model", "description", "price"}
	s.SelectedFields = []string{"model", "price"}
	m := newColumnMap(&s)

	pos, err := m.writePositions(2)
	require.NoError(t, err)
	assert.Equal(t, []int{-1, -1, 0, -1, 1}, pos)

	_, err = m.writePositions(3)
	assert.Error(t, err)

	s = DefaultCSVSettings()
	s.SelectedIndexes = []int{3, 1}
	m = newColumnMap(&s)
	pos, err = m.writePositions(1)
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 1, -1, 0}, pos)
}
