package swiftxsv

import (
	"bufio"
	"io"
)

// CharSource hands characters to the parsing engine one at a time.
// NextChar returns io.EOF once the input is exhausted; any other error aborts parsing.
type CharSource interface {
	Start(r io.Reader)
	NextChar() (rune, error)
	// SkipLines discards characters up to and including the next n newlines.
	SkipLines(n int) error
	// Stop releases the input. It is safe to call more than once.
	Stop() error
	// LineCount is the number of newlines read so far.
	LineCount() int64
	// CharCount is the number of characters read so far.
	CharCount() int64
}

// CharReader is the default CharSource. It reads runes through a bufio.Reader and
// turns the configured line separator into a single normalized newline.
type CharReader struct {
	src        *bufio.Reader
	closer     io.Closer
	sep        []rune
	normalized rune
	size       int

	lines int64
	chars int64
}

// NewCharReader creates a CharReader for the given line separator with a read buffer of size bytes.
func NewCharReader(lineSeparator string, normalized rune, size int) *CharReader {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &CharReader{
		sep:        []rune(lineSeparator),
		normalized: normalized,
		size:       size,
	}
}

// Start begins reading from r, resetting the counters. The reader is closed by Stop when it is an io.Closer.
func (c *CharReader) Start(r io.Reader) {
	if c.src == nil {
		c.src = bufio.NewReaderSize(r, c.size)
	} else {
		c.src.Reset(r)
	}
	c.closer, _ = r.(io.Closer)
	c.lines = 0
	c.chars = 0
}

// NextChar returns the next character, or the normalized newline for a complete line separator.
func (c *CharReader) NextChar() (rune, error) {
	if c.src == nil {
		return 0, io.EOF
	}
	ch, _, err := c.src.ReadRune()
	if err != nil {
		return 0, err
	}
	c.chars++

	if len(c.sep) > 0 && ch == c.sep[0] {
		if len(c.sep) == 1 {
			c.lines++
			return c.normalized, nil
		}
		next, _, err := c.src.ReadRune()
		switch {
		case err == nil && next == c.sep[1]:
			c.chars++
			c.lines++
			return c.normalized, nil
		case err == nil:
			// Not a separator; hand the lookahead back.
			_ = c.src.UnreadRune()
		case err != io.EOF:
			return 0, err
		}
	}
	if ch == c.normalized {
		c.lines++
	}
	return ch, nil
}

// SkipLines discards input up to and including the next n newlines.
func (c *CharReader) SkipLines(n int) error {
	for n > 0 {
		ch, err := c.NextChar()
		if err != nil {
			return err
		}
		if ch == c.normalized {
			n--
		}
	}
	return nil
}

// Stop closes the input if it can be closed. Later calls do nothing.
func (c *CharReader) Stop() error {
	closer := c.closer
	c.closer = nil
	if c.src != nil {
		c.src.Reset(eofReader{})
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}

// LineCount returns the number of newlines read.
func (c *CharReader) LineCount() int64 {
	return c.lines
}

// CharCount returns the number of characters read, counting a two-character separator twice.
func (c *CharReader) CharCount() int64 {
	return c.chars
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
