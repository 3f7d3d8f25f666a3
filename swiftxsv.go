// # SwiftXSV: Streaming Delimited and Fixed-Width Text for Go
//
// SwiftXSV parses and writes CSV, TSV and fixed-width text through one shared engine. A Parser drives a per-format Grammar character by character; a Writer drives a per-format RowEncoder. Everything else (buffering, comments, limits, header handling, column selection and diagnostics) is shared.
//
// # Features
//
// - Three parsing modes: bulk (`Parser.Parse` pushing records to a `RowConsumer`), pull (`Parser.BeginParsing` + `Parser.ParseNext`) and single line (`Parser.ParseLine` with a caller-owned `LineScratch`).
// - Explicit nulls: unquoted empty values parse as null, quoted empty values as the empty string, with `Settings.NullValue` and `Settings.EmptyValue` substitutions.
// - Bounded memory: `Settings.MaxCharsPerColumn` and `Settings.MaxColumns` reject oversized input with a `LimitError` instead of growing.
// - Column selection by name or index, with or without reordering, on both the read and the write path.
// - Structured diagnostics via `ParsingError` and `WritingError`, reproducing the offending content and the effective settings.
// - Explicit object mapping with the generic `Mapping` and `MappingConsumer`, without reflection.
// - Session logging through logrus (`Settings.Logger`), each session tagged with its own ID.
//
// # Getting Started
//
//	p, err := swiftxsv.NewCSVParser(swiftxsv.DefaultCSVSettings())
//	if err != nil {
//		return err
//	}
//	records, err := p.ParseAll(strings.NewReader("a,b\n1,2\n"))
//
// The `cmd/xsvconv` command converts between the supported formats.
package swiftxsv
