package format

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderKey(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"HTTP_ACCEPT_CHARSET", "Accept-Charset"},
		{"CONTENT_TYPE", "Content-Type"},
		{"HTTP_ACCEPT", "Accept"},
		{"HTTP_X_API_KEY", "X-Api-Key"},
		{"Content-Type", "Content-Type"},
		{"x-request-id", "X-Request-Id"},
		{"HTTP_ÉTAG_X", "Étag-X"},
		{"x-ünicode-key", "X-Ünicode-Key"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, HeaderKey(tt.key))
		})
	}
}

func TestHeaders(t *testing.T) {
	fields := []Field{
		{Key: "HTTP_ACCEPT_CHARSET", Value: "utf-8"},
		{Key: "CONTENT_TYPE", Value: "application/json"},
	}

	assert.Equal(t, "Accept-Charset: utf-8\nContent-Type: application/json", Headers(fields))
	assert.Equal(t, "", Headers(nil))
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"decodes values", "a=1&b=hello%20world", "a: 1\nb: hello world"},
		{"empty", "", ""},
		{"plus is space", "q=foo+bar", "q: foo bar"},
		{"splits on first equals", "filter=a=b", "filter: a=b"},
		{"missing value", "flag", "flag: "},
		{"invalid escape kept", "p=100%", "p: 100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Query(tt.raw))
		})
	}
}

func TestPrettyJSON(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		out, ok := PrettyJSON(`{"a":1,"b":"x"}`)
		require.True(t, ok)
		assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": \"x\"\n}", out)
	})

	t.Run("nested object keeps key order", func(t *testing.T) {
		out, ok := PrettyJSON(`{"z":{"b":1},"a":true}`)
		require.True(t, ok)
		assert.Equal(t, "{\n  \"z\": {\n    \"b\": 1\n  },\n  \"a\": true\n}", out)
	})

	t.Run("invalid", func(t *testing.T) {
		out, ok := PrettyJSON(`a=1&b=2`)
		assert.False(t, ok)
		assert.Empty(t, out)
	})

	t.Run("empty string", func(t *testing.T) {
		_, ok := PrettyJSON("")
		assert.False(t, ok)
	})
}

func TestPrettyJSON_RoundTrip(t *testing.T) {
	docs := []string{
		`{"a":1}`,
		`[1,2,{"x":[true,false,null]}]`,
		`{"name":"Order","items":[{"id":1,"tags":["a","b"]}],"total":12.5}`,
		`"just a string"`,
		`42`,
	}

	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			out, ok := PrettyJSON(doc)
			require.True(t, ok)

			var original, reparsed any
			require.NoError(t, json.Unmarshal([]byte(doc), &original))
			require.NoError(t, json.Unmarshal([]byte(out), &reparsed))
			assert.Equal(t, original, reparsed)
		})
	}
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "OK", StatusText(200))
	assert.Equal(t, "Created", StatusText(201))
	assert.Equal(t, "Unprocessable Entity", StatusText(422))
	assert.Equal(t, "", StatusText(999))
	assert.Equal(t, "Early Hints", StatusText(103))
	assert.Equal(t, "Client Closed Request", StatusText(499))
	assert.Equal(t, "Web Server Is Down", StatusText(521))
	assert.Equal(t, "Network Connect Timeout Error", StatusText(599))
}
