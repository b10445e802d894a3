package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
	"github.com/abdul-hamid-achik/apidoc/packages/store"
)

// truncate shortens s to maxLen runes for single-line display
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return s
}

type ConsoleFormatter struct {
	writer  io.Writer
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func statusColor(code int) *color.Color {
	switch {
	case code < 300:
		return color.New(color.FgGreen)
	case code < 400:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func (f *ConsoleFormatter) FormatExample(meta *recorder.Metadata) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s %s\n", bold(meta.Description), faint("("+meta.ID+")"))
	if len(meta.Requests) == 0 {
		fmt.Fprintf(f.writer, "  %s\n", faint("no requests documented"))
		return
	}

	for _, rec := range meta.Requests {
		status := statusColor(rec.ResponseStatus).Sprintf("%d %s", rec.ResponseStatus, rec.ResponseStatusText)
		fmt.Fprintf(f.writer, "\n  %s %s\n", cyan(rec.Method+" "+rec.Route), status)

		f.section("Request headers", rec.RequestHeaders)
		f.section("Query parameters", rec.RequestQueryParameters)
		f.section("Request body", rec.RequestBody)
		f.section("Response headers", rec.ResponseHeaders)
		f.section("Response body", rec.ResponseBody)
		f.section("cURL", rec.Curl)
	}
	fmt.Fprintf(f.writer, "\n")
}

// section prints an indented block, skipping empty content
func (f *ConsoleFormatter) section(title, content string) {
	if content == "" {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "    %s\n", bold(title+":"))
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(f.writer, "      %s\n", line)
	}
}

func (f *ConsoleFormatter) FormatSummaries(summaries []store.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintf(f.writer, "No examples stored\n")
		return
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	for _, s := range summaries {
		fmt.Fprintf(f.writer, "%s  %3d requests  %s  %s\n",
			cyan(s.ID), s.Records, s.UpdatedAt.Format("2006-01-02 15:04"), truncate(s.Description, 60))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("apidoc"), version)
}
