package swiftxsv

// ValueBuffer accumulates the characters of the value currently being parsed or encoded.
// One buffer is reused for every value of a session: Reset clears it without releasing memory.
//
// Trailing whitespace written through AppendIgnoringWhitespace is held back until a
// following non-whitespace character confirms it, so trimming needs no second pass.
type ValueBuffer struct {
	chars []rune
	max   int
	// pending counts trailing runes written but not yet confirmed.
	pending int
}

// NewValueBuffer creates a buffer that refuses to hold more than max characters.
func NewValueBuffer(max int) *ValueBuffer {
	initial := max
	if initial > 256 {
		initial = 256
	}
	return &ValueBuffer{
		chars: make([]rune, 0, initial),
		max:   max,
	}
}

// Append adds ch, confirming any whitespace held back before it.
func (b *ValueBuffer) Append(ch rune) error {
	if len(b.chars) >= b.max {
		return &LimitError{Kind: LimitChars, Limit: b.max}
	}
	b.pending = 0
	b.chars = append(b.chars, ch)
	return nil
}

// AppendIgnoringWhitespace adds ch, holding it back if it is whitespace.
func (b *ValueBuffer) AppendIgnoringWhitespace(ch rune) error {
	return b.appendIgnoring(ch, isWhitespace(ch))
}

// AppendIgnoringPadding adds ch, holding it back if it equals padding.
func (b *ValueBuffer) AppendIgnoringPadding(ch, padding rune) error {
	return b.appendIgnoring(ch, ch == padding)
}

func (b *ValueBuffer) appendIgnoring(ch rune, deferred bool) error {
	if len(b.chars) >= b.max {
		return &LimitError{Kind: LimitChars, Limit: b.max}
	}
	b.chars = append(b.chars, ch)
	if deferred {
		b.pending++
	} else {
		b.pending = 0
	}
	return nil
}

// AppendString appends every rune of s.
func (b *ValueBuffer) AppendString(s string) error {
	for _, ch := range s {
		if err := b.Append(ch); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of confirmed characters.
func (b *ValueBuffer) Len() int {
	return len(b.chars) - b.pending
}

// String returns the confirmed characters.
func (b *ValueBuffer) String() string {
	return string(b.chars[:len(b.chars)-b.pending])
}

// Chars returns every character held, including unconfirmed trailing whitespace.
// The slice is only valid until the next call that modifies the buffer.
func (b *ValueBuffer) Chars() []rune {
	return b.chars
}

// Max returns the configured bound.
func (b *ValueBuffer) Max() int {
	return b.max
}

// Reset empties the buffer, keeping its capacity.
func (b *ValueBuffer) Reset() {
	b.chars = b.chars[:0]
	b.pending = 0
}

func isWhitespace(ch rune) bool {
	return ch <= ' '
}
