package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/apidoc/packages/recorder"
	"github.com/abdul-hamid-achik/apidoc/packages/store"
)

func sampleExample() *recorder.Metadata {
	return &recorder.Metadata{
		ID:          "ex-1",
		Description: "creates an order",
		Document:    true,
		Requests: []recorder.RequestRecord{{
			Method:             "POST",
			Route:              "/orders",
			RequestBody:        "{\n  \"qty\": 2\n}",
			RequestHeaders:     "Content-Type: application/json\nHost: example.org",
			ResponseStatus:     422,
			ResponseStatusText: "Unprocessable Entity",
			ResponseBody:       "<b>invalid</b>",
			ResponseHeaders:    "Content-Type: text/html",
			Curl:               `curl http://example.org/orders -X POST -d '{"qty":2}'`,
		}},
	}
}

func sampleSummaries() []store.Summary {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []store.Summary{{ID: "ex-1", Description: "creates an order", Records: 1, CreatedAt: at, UpdatedAt: at}}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", FormatConsole, FormatJSON, FormatYAML} {
		f, err := New(name, &bytes.Buffer{}, true)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := New("html", &bytes.Buffer{}, true)
	assert.Error(t, err)
}

func TestConsoleFormatter_FormatExample(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatExample(sampleExample())
	out := buf.String()

	assert.Contains(t, out, "creates an order (ex-1)")
	assert.Contains(t, out, "POST /orders 422 Unprocessable Entity")
	assert.Contains(t, out, "    Request body:\n      {\n        \"qty\": 2\n      }\n")
	assert.Contains(t, out, "      Host: example.org\n")
	assert.Contains(t, out, "cURL:")
	assert.NotContains(t, out, "Query parameters:")
}

func TestConsoleFormatter_EmptyExample(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatExample(&recorder.Metadata{ID: "x", Description: "nothing"})
	assert.Contains(t, buf.String(), "no requests documented")
}

func TestConsoleFormatter_FormatSummaries(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatSummaries(nil)
	assert.Equal(t, "No examples stored\n", buf.String())

	buf.Reset()
	f.FormatSummaries(sampleSummaries())
	assert.Equal(t, "ex-1    1 requests  2024-05-01 12:00  creates an order\n", buf.String())
}

func TestConsoleFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatHeader("1.2.3")
	f.FormatExample(sampleExample())
	f.FormatSummaries(sampleSummaries())
	require.NoError(t, Flush(f))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "1.2.3", doc.Version)
	require.Len(t, doc.Examples, 1)
	assert.Equal(t, sampleExample(), doc.Examples[0])
	require.Len(t, doc.Summaries, 1)
	assert.Equal(t, "2024-05-01T12:00:00Z", doc.Summaries[0].UpdatedAt)
	assert.Empty(t, doc.Errors)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewYAMLFormatter(YAMLWithWriter(&buf))

	f.FormatExample(sampleExample())
	f.FormatError(errors.New("partial failure"))
	require.NoError(t, Flush(f))

	assert.Contains(t, buf.String(), "response_status: 422")

	var doc Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Examples, 1)
	assert.Equal(t, sampleExample(), doc.Examples[0])
	assert.Equal(t, []string{"partial failure"}, doc.Errors)
}

func TestFlush_ConsoleIsNoop(t *testing.T) {
	assert.NoError(t, Flush(NewConsoleFormatter(WithWriter(&bytes.Buffer{}))))
}
