package launcher

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	fromFlag = cli.StringFlag{
		Name:   "from",
		Usage:  "Input format (csv|tsv|fixed)",
		Value:  "csv",
		EnvVar: "XSV_FROM",
	}
	toFlag = cli.StringFlag{
		Name:   "to",
		Usage:  "Output format (csv|tsv|fixed)",
		Value:  "csv",
		EnvVar: "XSV_TO",
	}
	inputFlag = cli.StringFlag{
		Name:   "input",
		Usage:  "Input file, - for stdin",
		Value:  "-",
		EnvVar: "XSV_INPUT",
	}
	outputFlag = cli.StringFlag{
		Name:   "output",
		Usage:  "Output file, - for stdout",
		Value:  "-",
		EnvVar: "XSV_OUTPUT",
	}
	delimiterFlag = cli.StringFlag{
		Name:   "delimiter",
		Usage:  "Value delimiter, defaults to the format's own",
		EnvVar: "XSV_DELIMITER",
	}
	quoteFlag = cli.StringFlag{
		Name:   "quote",
		Usage:  "CSV quote character",
		Value:  `"`,
		EnvVar: "XSV_QUOTE",
	}
	quoteEscapeFlag = cli.StringFlag{
		Name:   "quote-escape",
		Usage:  "CSV character escaping a quote inside quoted values, defaults to the quote",
		EnvVar: "XSV_QUOTE_ESCAPE",
	}
	escapeFlag = cli.StringFlag{
		Name:   "escape",
		Usage:  "TSV escape character",
		EnvVar: "XSV_ESCAPE",
	}
	commentFlag = cli.StringFlag{
		Name:   "comment",
		Usage:  "Comment character, empty to disable comments",
		Value:  "#",
		EnvVar: "XSV_COMMENT",
	}
	lineSeparatorFlag = cli.StringFlag{
		Name:   "line-separator",
		Usage:  "Line separator (lf|crlf|cr)",
		Value:  "lf",
		EnvVar: "XSV_LINE_SEPARATOR",
	}
	headerFlag = cli.BoolFlag{
		Name:   "header",
		Usage:  "Treat the first record as headers and write them to the output",
		EnvVar: "XSV_HEADER",
	}
	selectFlag = cli.StringFlag{
		Name:   "select",
		Usage:  "Comma-separated header names or zero-based indexes of the columns to keep",
		EnvVar: "XSV_SELECT",
	}
	quoteAllFlag = cli.BoolFlag{
		Name:   "quote-all",
		Usage:  "Quote every CSV value",
		EnvVar: "XSV_QUOTE_ALL",
	}
	trimFlag = cli.BoolTFlag{
		Name:   "trim",
		Usage:  "Trim leading and trailing whitespace of unquoted values",
		EnvVar: "XSV_TRIM",
	}
	nullFlag = cli.StringFlag{
		Name:   "null",
		Usage:  "Text written in place of null values",
		EnvVar: "XSV_NULL",
	}
	maxCharsFlag = cli.IntFlag{
		Name:   "max-chars",
		Usage:  "Maximum characters per value",
		Value:  4096,
		EnvVar: "XSV_MAX_CHARS",
	}
	maxColumnsFlag = cli.IntFlag{
		Name:   "max-columns",
		Usage:  "Maximum values per record",
		Value:  512,
		EnvVar: "XSV_MAX_COLUMNS",
	}
	limitFlag = cli.Int64Flag{
		Name:   "limit",
		Usage:  "Stop after this many records, 0 for all",
		EnvVar: "XSV_LIMIT",
	}
	widthsFlag = cli.StringFlag{
		Name:   "widths",
		Usage:  "Comma-separated field widths for fixed-width input or output",
		EnvVar: "XSV_WIDTHS",
	}
	logLevelFlag = cli.StringFlag{
		Name:   "log.level",
		Usage:  "Log level (debug|info|warn|error)",
		Value:  "info",
		EnvVar: "XSV_LOG_LEVEL",
	}
	logFormatFlag = cli.StringFlag{
		Name:   "log.format",
		Usage:  "Log output format (text|json)",
		Value:  "text",
		EnvVar: "XSV_LOG_FORMAT",
	}
)

func appFlags() []cli.Flag {
	return []cli.Flag{
		fromFlag,
		toFlag,
		inputFlag,
		outputFlag,
		delimiterFlag,
		quoteFlag,
		quoteEscapeFlag,
		escapeFlag,
		commentFlag,
		lineSeparatorFlag,
		headerFlag,
		selectFlag,
		quoteAllFlag,
		trimFlag,
		nullFlag,
		maxCharsFlag,
		maxColumnsFlag,
		limitFlag,
		widthsFlag,
		logLevelFlag,
		logFormatFlag,
	}
}
