package swiftxsv

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingConsumer struct {
	started int
	ended   int
	records []Record
	stopAt  int
	fail    error
	panicOn int
}

func (c *countingConsumer) SessionStarted(*ParsingContext) { c.started++ }

func (c *countingConsumer) RowParsed(r Record, ctx *ParsingContext) error {
	c.records = append(c.records, r)
	if c.panicOn > 0 && len(c.records) == c.panicOn {
		panic("boom")
	}
	if c.fail != nil {
		return c.fail
	}
	if c.stopAt > 0 && len(c.records) == c.stopAt {
		ctx.Stop()
	}
	return nil
}

func (c *countingConsumer) SessionEnded(*ParsingContext) { c.ended++ }

type trackingReader struct {
	io.Reader
	closed int
	err    error
}

func (r *trackingReader) Close() error {
	r.closed++
	return r.err
}

func newCSV(t *testing.T, config func(*Settings)) *Parser {
	t.Helper()
	s := DefaultCSVSettings()
	if config != nil {
		config(&s)
	}
	p, err := NewCSVParser(s)
	require.NoError(t, err)
	return p
}

func TestParseNotifiesConsumerOnce(t *testing.T) {
	t.Parallel()

	p := newCSV(t, nil)
	in := &trackingReader{Reader: strings.NewReader("a\nb\n")}
	c := &countingConsumer{}
	require.NoError(t, p.Parse(in, c))

	assert.Equal(t, 1, c.started)
	assert.Equal(t, 1, c.ended)
	assert.Len(t, c.records, 2)
	assert.Equal(t, 1, in.closed)
}

func TestStopParsingIsIdempotent(t *testing.T) {
	t.Parallel()

	p := newCSV(t, nil)
	in := &trackingReader{Reader: strings.NewReader("a\nb\nc\n")}
	c := &countingConsumer{}
	p.BeginParsing(in, c)

	rec, err := p.ParseNext()
	require.NoError(t, err)
	assert.Equal(t, "a", rec[0].Text)

	require.NoError(t, p.StopParsing())
	require.NoError(t, p.StopParsing())
	assert.Equal(t, 1, c.ended)
	assert.Equal(t, 1, in.closed)
	assert.True(t, p.Context().IsStopped())

	_, err = p.ParseNext()
	assert.ErrorIs(t, err, io.EOF)
}

func TestUnterminatedTailYieldsOneRecord(t *testing.T) {
	t.Parallel()

	p := newCSV(t, nil)
	records, err := p.ParseAll(strings.NewReader("a,b\nc,\"d e"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"c", "d e"}, records[1].Strings())

	records, err = p.ParseAll(strings.NewReader("a,b,"))
	require.NoError(t, err)
	assert.Equal(t, []Record{{Text("a"), Text("b"), Null}}, records)

	records, err = p.ParseAll(strings.NewReader(`""`))
	require.NoError(t, err)
	assert.Equal(t, []Record{{Text("")}}, records)
}

func TestCommentsDoNotAdvanceRecordCounter(t *testing.T) {
	t.Parallel()

	p := newCSV(t, nil)
	var counters []int64
	err := p.Parse(strings.NewReader("#one\na\n#two\n#three\nb\n#four"), ConsumerFuncs{
		Row: func(_ Record, ctx *ParsingContext) error {
			counters = append(counters, ctx.CurrentRecord())
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, counters)
}

func TestRecordLimit(t *testing.T) {
	t.Parallel()

	p := newCSV(t, func(s *Settings) { s.NumberOfRecordsToRead = 3 })
	c := &countingConsumer{}
	require.NoError(t, p.Parse(strings.NewReader("1\n2\n3\n4\n5\n"), c))
	assert.Len(t, c.records, 3)
	assert.Equal(t, 1, c.ended)

	var stopped []bool
	require.NoError(t, p.Parse(strings.NewReader("1\n2\n3\n4\n"), ConsumerFuncs{
		Row: func(_ Record, ctx *ParsingContext) error {
			stopped = append(stopped, ctx.IsStopped())
			return nil
		},
	}))
	assert.Equal(t, []bool{false, false, false}, stopped, "the last record is delivered before the session stops")
	assert.True(t, p.Context().IsStopped())

	in := &trackingReader{Reader: strings.NewReader("1\n2\n3\n4\n5\n")}
	p.BeginParsing(in, nil)
	for i := 0; i < 3; i++ {
		_, err := p.ParseNext()
		require.NoError(t, err)
	}
	assert.True(t, p.Context().IsStopped())
	assert.Equal(t, 1, in.closed, "input released right after the last record")
	_, err := p.ParseNext()
	assert.ErrorIs(t, err, io.EOF)
}

func TestConsumerStop(t *testing.T) {
	t.Parallel()

	p := newCSV(t, nil)
	c := &countingConsumer{stopAt: 2}
	require.NoError(t, p.Parse(strings.NewReader("1\n2\n3\n"), c))
	assert.Len(t, c.records, 2)
}

func TestConsumerErrorIsWrapped(t *testing.T) {
	t.Parallel()

	exp := errors.New("rejected")
	p := newCSV(t, nil)
	in := &trackingReader{Reader: strings.NewReader("1\n2\n"), err: errors.New("close failed")}
	c := &countingConsumer{fail: exp}
	err := p.Parse(in, c)

	var perr *ParsingError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, exp, "a cleanup failure never masks the cause")
	assert.Equal(t, int64(1), perr.Record)
	assert.Equal(t, 1, c.ended)
	assert.Equal(t, 1, in.closed)
}

func TestConsumerPanicIsRecovered(t *testing.T) {
	t.Parallel()

	p := newCSV(t, nil)
	c := &countingConsumer{panicOn: 1}
	err := p.Parse(strings.NewReader("1\n"), c)

	var perr *ParsingError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "boom")
	assert.Equal(t, 1, c.ended)
}

func TestCloseErrorReportedOnSuccess(t *testing.T) {
	t.Parallel()

	p := newCSV(t, nil)
	exp := errors.New("close failed")
	err := p.Parse(&trackingReader{Reader: strings.NewReader("1\n"), err: exp}, nil)
	assert.ErrorIs(t, err, exp)
}

func TestHeaderExtractionAndSelection(t *testing.T) {
	t.Parallel()

	input := "Year,Make,Model,Description,Price\n1997,Ford,E350,\"ac, abs, moon\",3000.00\n1999,Chevy,Venture,,4900.00\n"

	t.Run("reordered", func(t *testing.T) {
		t.Parallel()

		p := newCSV(t, func(s *Settings) {
			s.HeaderExtractionEnabled = true
			s.SelectedFields = []string{"Price", "Model"}
		})
		list := &RecordList{}
		require.NoError(t, p.Parse(strings.NewReader(input), list))

		assert.Equal(t, []string{"Year", "Make", "Model", "Description", "Price"}, list.Headers)
		require.Len(t, list.Records, 2)
		assert.Equal(t, []string{"3000.00", "E350"}, list.Records[0].Strings())
		assert.Equal(t, []string{"4900.00", "Venture"}, list.Records[1].Strings())
		assert.True(t, p.Context().ColumnsReordered())
		assert.Equal(t, []int{4, 2}, p.Context().ExtractedFieldIndexes())
	})

	t.Run("fullWidth", func(t *testing.T) {
		t.Parallel()

		p := newCSV(t, func(s *Settings) {
			s.HeaderExtractionEnabled = true
			s.SelectedIndexes = []int{0, 3}
			s.ColumnReorderingEnabled = false
		})
		records, err := p.ParseAll(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, Record{Text("1997"), Null, Null, Text("ac, abs, moon"), Null}, records[0])
		assert.Equal(t, Record{Text("1999"), Null, Null, Null, Null}, records[1])
		assert.False(t, p.Context().ColumnsReordered())
	})

	t.Run("unknownField", func(t *testing.T) {
		t.Parallel()

		p := newCSV(t, func(s *Settings) {
			s.HeaderExtractionEnabled = true
			s.SelectedFields = []string{"Color"}
		})
		_, err := p.ParseAll(strings.NewReader(input))
		var perr *ParsingError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, err.Error(), `"Color"`)
	})
}

func TestColumnMapIsCachedPerWidth(t *testing.T) {
	t.Parallel()

	p := newCSV(t, func(s *Settings) {
		s.SelectedIndexes = []int{1}
		s.ColumnReorderingEnabled = false
	})
	p.BeginParsing(strings.NewReader("a,b\nc,d\ne,f,g\n"), nil)

	_, err := p.ParseNext()
	require.NoError(t, err)
	first := p.out.columns.positions

	_, err = p.ParseNext()
	require.NoError(t, err)
	assert.Same(t, &first[0], &p.out.columns.positions[0], "uniform width reuses the mapping")

	rec, err := p.ParseNext()
	require.NoError(t, err)
	assert.Equal(t, Record{Null, Text("f"), Null}, rec)
	assert.Equal(t, 3, p.out.columns.width)
}

func TestParseLine(t *testing.T) {
	t.Parallel()

	p := newCSV(t, func(s *Settings) {
		s.HeaderExtractionEnabled = true
		s.Headers = []string{"a", "b", "c"}
		s.SelectedFields = []string{"c", "a"}
	})
	scratch := p.NewLineScratch()

	rec, err := p.ParseLine(`1,"x,y",3`, scratch)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, rec.Strings())

	rec, err = p.ParseLine("4,5,6\n7,8,9", scratch)
	require.NoError(t, err)
	assert.Equal(t, []string{"6", "4"}, rec.Strings())

	rec, err = p.ParseLine("# comment", scratch)
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = p.ParseLine("", nil)
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = p.ParseLine(`"a"b`, scratch)
	var perr *ParsingError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrUnescapedQuote)

	rec, err = p.ParseLine("x,y,z", scratch)
	require.NoError(t, err, "a scratch is reusable after a failure")
	assert.Equal(t, []string{"z", "x"}, rec.Strings())
}

func TestParseLineUsesExtractedHeaders(t *testing.T) {
	t.Parallel()

	p := newCSV(t, func(s *Settings) {
		s.HeaderExtractionEnabled = true
		s.SelectedFields = []string{"b"}
	})
	scratch := p.NewLineScratch()

	_, err := p.ParseLine("1,2", scratch)
	assert.ErrorIs(t, err, ErrNoHeaders)

	_, err = p.ParseAll(strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)

	rec, err := p.ParseLine("3,4", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, rec.Strings())

	rec, err = p.ParseLine("5,6", scratch)
	require.NoError(t, err)
	assert.Equal(t, []string{"6"}, rec.Strings())

	// A later session with other headers is picked up by the same scratch.
	_, err = p.ParseAll(strings.NewReader("b,a\n1,2\n"))
	require.NoError(t, err)
	rec, err = p.ParseLine("7,8", scratch)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, rec.Strings())
}

func TestSessionLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	p := newCSV(t, func(s *Settings) { s.Logger = logger })
	require.NoError(t, p.Parse(strings.NewReader("a\n"), nil))

	out := buf.String()
	assert.Contains(t, out, "parsing session started")
	assert.Contains(t, out, "parsing session ended")
	assert.Contains(t, out, "session="+p.Context().SessionID())
	assert.Contains(t, out, "records=1")
}

func TestNewParserValidatesSettings(t *testing.T) {
	t.Parallel()

	s := DefaultCSVSettings()
	s.MaxColumns = 0
	s.Format.Delimiter = '"'
	s.SelectedFields = []string{"a"}
	s.SelectedIndexes = []int{0}

	_, err := NewCSVParser(s)
	require.ErrorIs(t, err, ErrInvalidSettings)
	msg := err.Error()
	assert.Contains(t, msg, "MaxColumns")
	assert.Contains(t, msg, "delimiter and quote")
	assert.Contains(t, msg, "cannot both be set")
	assert.Contains(t, msg, "requires Headers")

	_, err = NewParser(DefaultCSVSettings(), nil)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestSettingsAreCopied(t *testing.T) {
	t.Parallel()

	s := DefaultCSVSettings()
	s.Headers = []string{"a", "b"}
	p, err := NewCSVParser(s)
	require.NoError(t, err)

	s.Headers[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, p.Settings().Headers)
}
