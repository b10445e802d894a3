package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
	"github.com/abdul-hamid-achik/apidoc/packages/store"
)

// Document is the machine-readable output shared by the JSON and YAML
// formatters
type Document struct {
	Version   string               `json:"version,omitempty" yaml:"version,omitempty"`
	Examples  []*recorder.Metadata `json:"examples,omitempty" yaml:"examples,omitempty"`
	Summaries []Summary            `json:"summaries,omitempty" yaml:"summaries,omitempty"`
	Errors    []string             `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Summary is a stored example listing entry
type Summary struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Requests    int    `json:"requests" yaml:"requests"`
	CreatedAt   string `json:"created_at" yaml:"created_at"`
	UpdatedAt   string `json:"updated_at" yaml:"updated_at"`
}

func toSummaries(summaries []store.Summary) []Summary {
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, Summary{
			ID:          s.ID,
			Description: s.Description,
			Requests:    s.Records,
			CreatedAt:   s.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out
}

// JSONFormatter formats examples as JSON
type JSONFormatter struct {
	writer io.Writer
	doc    Document
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatExample(meta *recorder.Metadata) {
	f.doc.Examples = append(f.doc.Examples, meta)
}

func (f *JSONFormatter) FormatSummaries(summaries []store.Summary) {
	f.doc.Summaries = append(f.doc.Summaries, toSummaries(summaries)...)
}

func (f *JSONFormatter) FormatError(err error) {
	f.doc.Errors = append(f.doc.Errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	f.doc.Version = version
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush() error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.doc)
}
