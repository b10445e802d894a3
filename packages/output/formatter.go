package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
	"github.com/abdul-hamid-achik/apidoc/packages/store"
)

// Formatter displays examples and stored example listings.
type Formatter interface {
	FormatExample(meta *recorder.Metadata)
	FormatSummaries(summaries []store.Summary)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that write on Flush.
type Flushable interface {
	Flush() error
}

// Format names accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
)

// New returns the formatter for name writing to w.
func New(name string, w io.Writer, noColor bool) (Formatter, error) {
	switch name {
	case FormatConsole, "":
		return NewConsoleFormatter(WithWriter(w), WithNoColor(noColor)), nil
	case FormatJSON:
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case FormatYAML:
		return NewYAMLFormatter(YAMLWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", name)
	}
}

// Flush flushes f when it accumulates output.
func Flush(f Formatter) error {
	if fl, ok := f.(Flushable); ok {
		return fl.Flush()
	}
	return nil
}
