package output

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
	"github.com/abdul-hamid-achik/apidoc/packages/store"
)

// YAMLFormatter formats examples as YAML
type YAMLFormatter struct {
	writer io.Writer
	doc    Document
}

type YAMLOption func(*YAMLFormatter)

func NewYAMLFormatter(opts ...YAMLOption) *YAMLFormatter {
	f := &YAMLFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func YAMLWithWriter(w io.Writer) YAMLOption {
	return func(f *YAMLFormatter) {
		f.writer = w
	}
}

func (f *YAMLFormatter) FormatExample(meta *recorder.Metadata) {
	f.doc.Examples = append(f.doc.Examples, meta)
}

func (f *YAMLFormatter) FormatSummaries(summaries []store.Summary) {
	f.doc.Summaries = append(f.doc.Summaries, toSummaries(summaries)...)
}

func (f *YAMLFormatter) FormatError(err error) {
	f.doc.Errors = append(f.doc.Errors, err.Error())
}

func (f *YAMLFormatter) FormatHeader(version string) {
	f.doc.Version = version
}

// Flush writes the accumulated YAML output
func (f *YAMLFormatter) Flush() error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(f.doc); err != nil {
		return err
	}
	return encoder.Close()
}
