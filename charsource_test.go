package swiftxsv

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, c *CharReader) string {
	t.Helper()
	var b strings.Builder
	for {
		ch, err := c.NextChar()
		if err == io.EOF {
			return b.String()
		}
		require.NoError(t, err)
		b.WriteRune(ch)
	}
}

func TestCharReaderNormalizesSeparator(t *testing.T) {
	t.Parallel()

	c := NewCharReader("\r\n", '\n', 16)
	c.Start(strings.NewReader("a\r\nb\rc\n"))

	assert.Equal(t, "a\nb\rc\n", readAll(t, c))
	assert.Equal(t, int64(2), c.LineCount())
	assert.Equal(t, int64(7), c.CharCount())
}

func TestCharReaderCustomNewline(t *testing.T) {
	t.Parallel()

	c := NewCharReader("\r\n", '|', 0)
	c.Start(strings.NewReader("x\r\ny\r"))

	assert.Equal(t, "x|y\r", readAll(t, c))
	assert.Equal(t, int64(1), c.LineCount())
}

func TestCharReaderSkipLines(t *testing.T) {
	t.Parallel()

	c := NewCharReader("\n", '\n', 16)
	c.Start(strings.NewReader("h1\nh2\nrow\n"))

	require.NoError(t, c.SkipLines(2))
	ch, err := c.NextChar()
	require.NoError(t, err)
	assert.Equal(t, 'r', ch)
	assert.Equal(t, int64(2), c.LineCount())

	assert.ErrorIs(t, c.SkipLines(5), io.EOF)
}

type closeCounter struct {
	io.Reader
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestCharReaderStop(t *testing.T) {
	t.Parallel()

	c := NewCharReader("\n", '\n', 16)
	_, err := c.NextChar()
	assert.ErrorIs(t, err, io.EOF, "not started")

	src := &closeCounter{Reader: strings.NewReader("abc")}
	c.Start(src)
	_, err = c.NextChar()
	require.NoError(t, err)

	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())
	assert.Equal(t, 1, src.closed)

	_, err = c.NextChar()
	assert.ErrorIs(t, err, io.EOF)

	c.Start(strings.NewReader("z"))
	assert.Equal(t, int64(0), c.CharCount())
	assert.Equal(t, "z", readAll(t, c))
}
