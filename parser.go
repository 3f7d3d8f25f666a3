package swiftxsv

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Grammar consumes the characters of one record.
//
// ParseRecord is called with the first character of a record, which is never a
// comment marker or a newline. It appends characters to out.Appender, calls
// out.ValueParsed after every value (the last one included) and returns once it
// has consumed the newline that ends the record. When the input ends inside the
// record it returns io.EOF without finishing the current value; the Parser
// completes it.
type Grammar interface {
	ParseRecord(ch rune, in CharSource, out *ParserOutput) error
}

// Parser drives a Grammar over a character stream.
// A Parser runs one session at a time and is not safe for concurrent use.
type Parser struct {
	settings Settings
	grammar  Grammar

	comment rune
	newline rune

	in      CharSource
	buf     *ValueBuffer
	out     *ParserOutput
	ctx     *ParsingContext
	log     logrus.FieldLogger
	handler RowConsumer

	records   int64
	stopped   bool
	exhausted bool
	active    bool
	stopErr   error
}

// NewParser creates a Parser using grammar for the record syntax.
// The settings are validated and copied.
func NewParser(settings Settings, grammar Grammar) (*Parser, error) {
	if grammar == nil {
		return nil, fmt.Errorf("%w: grammar cannot be nil", ErrInvalidSettings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := settings.clone()
	return &Parser{
		settings: s,
		grammar:  grammar,
		comment:  s.Format.Comment,
		newline:  s.Format.NormalizedNewline,
		in:       NewCharReader(s.Format.LineSeparator, s.Format.NormalizedNewline, s.InputBufferSize),
		buf:      NewValueBuffer(s.MaxCharsPerColumn),
		log:      s.logger(),
	}, nil
}

// Settings returns a copy of the settings in effect.
func (p *Parser) Settings() Settings {
	return p.settings.clone()
}

// Context returns the context of the current or last session, or nil before the first one.
func (p *Parser) Context() *ParsingContext {
	return p.ctx
}

// Parse reads every record from r and hands it to consumer.
// It returns nil once the input is exhausted or the session is stopped.
func (p *Parser) Parse(r io.Reader, consumer RowConsumer) (err error) {
	p.BeginParsing(r, consumer)
	for {
		if _, err = p.next(); err != nil {
			break
		}
	}
	if errors.Is(err, io.EOF) {
		return p.StopParsing()
	}
	return p.fail(err)
}

// ParseAll reads every record from r.
func (p *Parser) ParseAll(r io.Reader) ([]Record, error) {
	list := &RecordList{}
	if err := p.Parse(r, list); err != nil {
		return nil, err
	}
	return list.Records, nil
}

// BeginParsing starts a session over r for use with ParseNext. consumer may be nil.
// A session still running is stopped first.
func (p *Parser) BeginParsing(r io.Reader, consumer RowConsumer) {
	if p.active {
		_ = p.StopParsing()
	}
	if consumer == nil {
		consumer = ConsumerFuncs{}
	}

	p.records = 0
	p.stopped = false
	p.exhausted = false
	p.stopErr = nil
	p.handler = consumer
	p.buf.Reset()
	p.out = newParserOutput(&p.settings, p.buf, newColumnMap(&p.settings), p.settings.HeaderExtractionEnabled)
	p.ctx = &ParsingContext{parser: p, session: uuid.New()}
	p.log = p.settings.logger().WithField("session", p.ctx.SessionID())

	p.in.Start(r)
	p.active = true

	p.log.WithFields(logrus.Fields{
		"headers":   p.settings.Headers,
		"extract":   p.settings.HeaderExtractionEnabled,
		"maxRecord": p.settings.NumberOfRecordsToRead,
	}).Debug("parsing session started")
	p.handler.SessionStarted(p.ctx)
}

// ParseNext returns the next record, or io.EOF once the input is exhausted or the
// session was stopped. The session is released before io.EOF or an error is returned.
func (p *Parser) ParseNext() (Record, error) {
	if p.ctx == nil {
		return nil, ErrNotStarted
	}
	if !p.active {
		if err := p.stopErr; err != nil {
			p.stopErr = nil
			return nil, err
		}
		return nil, io.EOF
	}

	record, err := p.next()
	switch {
	case errors.Is(err, io.EOF):
		if err := p.StopParsing(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	case err != nil:
		return nil, p.fail(err)
	}
	if p.stopped {
		p.stopErr = p.StopParsing()
	}
	return record, nil
}

// StopParsing ends the session: the consumer is told the session ended and the
// input is released, each step running even when the other fails. Only the first
// call has any effect.
func (p *Parser) StopParsing() (err error) {
	if !p.active {
		return nil
	}
	p.active = false
	p.stopped = true

	defer func() {
		if cerr := p.in.Stop(); err == nil && cerr != nil {
			err = fmt.Errorf("swiftxsv: closing input: %w", cerr)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("swiftxsv: panic ending session: %v", r)
		}
	}()

	p.log.WithFields(logrus.Fields{
		"records": p.records,
		"lines":   p.in.LineCount(),
	}).Debug("parsing session ended")
	p.handler.SessionEnded(p.ctx)
	return nil
}

// next returns the next record after handing it to the consumer, or io.EOF.
func (p *Parser) next() (record Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			record, err = nil, fmt.Errorf("swiftxsv: panic while parsing: %v", r)
		}
	}()

	for !p.stopped && !p.exhausted {
		ch, err := p.in.NextChar()
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.exhausted = true
				break
			}
			return nil, err
		}

		if p.comment != 0 && ch == p.comment {
			if err := p.in.SkipLines(1); err != nil {
				if !errors.Is(err, io.EOF) {
					return nil, err
				}
				p.exhausted = true
			}
			continue
		}

		if ch != p.newline {
			if err := p.grammar.ParseRecord(ch, p.in, p.out); err != nil {
				if !errors.Is(err, io.EOF) {
					return nil, err
				}
				p.exhausted = true
				if !p.out.pending() {
					continue
				}
				if err := p.out.ValueParsed(); err != nil {
					return nil, err
				}
			}
		}

		record, ok, err := p.out.rowParsed()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		p.records++
		if err := p.handler.RowParsed(record, p.ctx); err != nil {
			return nil, err
		}
		if limit := p.settings.NumberOfRecordsToRead; limit > 0 && p.records >= limit {
			p.stopped = true
		}
		return record, nil
	}
	return nil, io.EOF
}

// fail wraps err into a ParsingError and ends the session. A failure while ending
// the session is dropped in favour of err.
func (p *Parser) fail(err error) (perr error) {
	defer func() {
		if r := recover(); r != nil {
			perr = err
		}
		if serr := p.StopParsing(); serr != nil {
			p.log.WithError(serr).Debug("ignoring error while ending failed session")
		}
	}()

	var pe *ParsingError
	if errors.As(err, &pe) {
		return pe
	}
	pe = newParsingError(err, &p.settings, p.buf.Chars(), p.records, p.in.LineCount()+1, p.in.CharCount())
	p.log.WithError(err).WithField("record", p.records).Debug("parsing failed")
	return pe
}

// LineScratch holds the buffers ParseLine works in. A scratch belongs to the
// caller and can be reused for any number of lines, but not concurrently.
type LineScratch struct {
	owner *Parser
	src   strings.Reader
	in    *CharReader
	out   *ParserOutput
	// headers last taken from the owner's session
	headers []string
}

// NewLineScratch creates a scratch for p.ParseLine.
func (p *Parser) NewLineScratch() *LineScratch {
	s := &LineScratch{}
	s.bind(p)
	return s
}

func (s *LineScratch) bind(p *Parser) {
	f := p.settings.Format
	s.owner = p
	s.in = NewCharReader(f.LineSeparator, f.NormalizedNewline, p.settings.InputBufferSize)
	s.out = newParserOutput(&p.settings, NewValueBuffer(p.settings.MaxCharsPerColumn), newColumnMap(&p.settings), false)
	s.headers = nil
}

// seed gives the scratch the headers of the owner's latest session.
func (s *LineScratch) seed(p *Parser) {
	if p.out == nil {
		return
	}
	h := p.out.columns.headers
	if len(h) == 0 || (len(s.headers) == len(h) && &s.headers[0] == &h[0]) {
		return
	}
	s.headers = h
	s.out.columns.setHeaders(h)
}

// ParseLine parses a single line without starting a session. Headers are never
// extracted and no consumer is called; field selection uses the headers of the
// latest session, so with HeaderExtractionEnabled it fails with ErrNoHeaders until
// a session has read them. A comment or empty line yields nil and no error.
// A nil scratch allocates a fresh one.
func (p *Parser) ParseLine(line string, scratch *LineScratch) (record Record, err error) {
	if scratch == nil || scratch.owner != p {
		if scratch == nil {
			scratch = &LineScratch{}
		}
		scratch.bind(p)
	}
	scratch.seed(p)
	scratch.src.Reset(line)
	scratch.in.Start(&scratch.src)
	scratch.out.reset()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("swiftxsv: panic while parsing: %v", r)
		}
		if err != nil {
			var pe *ParsingError
			if !errors.As(err, &pe) {
				pe = newParsingError(err, &p.settings, scratch.out.appender.Chars(), 0, 1, scratch.in.CharCount())
			}
			record, err = nil, pe
		}
	}()

	ch, err := scratch.in.NextChar()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if ch == p.newline || (p.comment != 0 && ch == p.comment) {
		return nil, nil
	}
	if err := p.grammar.ParseRecord(ch, scratch.in, scratch.out); err != nil {
		if !errors.Is(err, io.EOF) {
			return nil, err
		}
		if scratch.out.pending() {
			if err := scratch.out.ValueParsed(); err != nil {
				return nil, err
			}
		}
	}
	record, ok, err := scratch.out.rowParsed()
	if err != nil || !ok {
		return nil, err
	}
	return record, nil
}
