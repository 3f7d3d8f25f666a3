package swiftxsv

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsNilSafe(t *testing.T) {
	t.Parallel()

	var pe *ParsingError
	assert.Equal(t, "", pe.Error())
	assert.Nil(t, pe.Unwrap())

	var we *WritingError
	assert.Equal(t, "", we.Error())
	assert.Nil(t, we.Unwrap())

	var le *LimitError
	assert.Equal(t, "", le.Error())
}

func TestDisplayContent(t *testing.T) {
	t.Parallel()

	content, nulls, seps := displayContent([]rune("a\x00b\x00"), "\n")
	assert.Equal(t, `a\0b\0`, content)
	assert.Equal(t, 2, nulls)
	assert.False(t, seps)

	content, nulls, seps = displayContent([]rune("x\r\ny"), "\r\n")
	assert.Equal(t, "x[\\r\\n]\r\n\ty", content)
	assert.Zero(t, nulls)
	assert.True(t, seps)

	content, _, seps = displayContent([]rune("x\ny\rz"), "\n")
	assert.Equal(t, "x[\\n]\n\ty[\\r]\r\tz", content)
	assert.True(t, seps)
}

func TestNewParsingError(t *testing.T) {
	t.Parallel()

	s := DefaultCSVSettings()
	s.MaxCharsPerColumn = 8

	pe := newParsingError(&LimitError{Kind: LimitChars, Limit: 8}, &s, []rune("abc\x00"), 3, 4, 40)
	assert.Equal(t, int64(3), pe.Record)
	assert.Equal(t, int64(4), pe.Line)
	assert.Equal(t, 1, pe.NullChars)
	assert.Equal(t, "*swiftxsv.LimitError", pe.Origin)
	require.Len(t, pe.Hints, 2)
	assert.Contains(t, pe.Hints[0], "MaxCharsPerColumn")

	msg := pe.Error()
	assert.Contains(t, msg, "line 4, char 40, after 3 records")
	assert.Contains(t, msg, "1 null characters")
	assert.Contains(t, msg, "Parser Configuration: ")

	var limit *LimitError
	assert.True(t, errors.As(pe, &limit))

	plain := newParsingError(ErrUnescapedQuote, &s, nil, 0, 1, 2)
	assert.Empty(t, plain.Hints)
	assert.Empty(t, plain.Content)
	assert.ErrorIs(t, plain, ErrUnescapedQuote)
}

func TestWritingErrorMessage(t *testing.T) {
	t.Parallel()

	err := &WritingError{Err: io.ErrShortWrite, RecordCount: 2, RecordData: []any{"a", 1}}
	assert.Equal(t, "swiftxsv: error writing data: short write, recordCount=2, recordData=[a 1]", err.Error())
	assert.ErrorIs(t, err, io.ErrShortWrite)

	err = &WritingError{Err: io.ErrShortWrite, RecordCount: 0, RecordCharacters: "x,y"}
	assert.Equal(t, "swiftxsv: error writing data: short write, recordCount=0, recordData=[x,y]", err.Error())

	assert.Equal(t, "characters per column", LimitChars.String())
	assert.Equal(t, "columns per record", LimitColumns.String())
}
