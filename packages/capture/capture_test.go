package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/apidoc/packages/http"
)

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: 201,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
			"Location":     "/orders/7",
		},
		Body:     []byte(body),
		Duration: 42 * time.Millisecond,
	}
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		directive string
		expected  *Capture
	}{
		{"@capture id body data.id", &Capture{Name: "id", Source: SourceBody, Path: "data.id"}},
		{"@capture all body", &Capture{Name: "all", Source: SourceBody}},
		{"@capture next HEADER Location", &Capture{Name: "next", Source: SourceHeader, Path: "Location"}},
		{"@capture code status", &Capture{Name: "code", Source: SourceStatus}},
		{"@capture took duration", &Capture{Name: "took", Source: SourceDuration}},
	}

	for _, tt := range tests {
		t.Run(tt.directive, func(t *testing.T) {
			c, ok, err := ParseDirective(tt.directive)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestParseDirective_Other(t *testing.T) {
	c, ok, err := ParseDirective("@skip")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, c)
}

func TestParseDirective_Errors(t *testing.T) {
	for _, d := range []string{"@capture", "@capture id", "@capture id cookie x", "@capture next header"} {
		_, ok, err := ParseDirective(d)
		assert.True(t, ok, d)
		assert.Error(t, err, d)
	}
}

func TestParseDirectives(t *testing.T) {
	captures, err := ParseDirectives([]string{"@capture id body id", "@skip", "@capture code status"})
	require.NoError(t, err)
	require.Len(t, captures, 2)
	assert.Equal(t, "id", captures[0].Name)
	assert.Equal(t, "code", captures[1].Name)
}

func TestExtractor(t *testing.T) {
	e := NewExtractor(jsonResponse(`{"data":{"id":7,"name":"widget","tags":["a","b"]}}`))

	v, ok := e.Extract(&Capture{Source: SourceBody, Path: "data.id"})
	assert.True(t, ok)
	assert.Equal(t, float64(7), v)

	v, ok = e.Extract(&Capture{Source: SourceBody, Path: "data.tags"})
	assert.True(t, ok)
	assert.Equal(t, `["a","b"]`, v)

	_, ok = e.Extract(&Capture{Source: SourceBody, Path: "data.missing"})
	assert.False(t, ok)

	v, ok = e.Extract(&Capture{Source: SourceHeader, Path: "location"})
	assert.True(t, ok)
	assert.Equal(t, "/orders/7", v)

	v, _ = e.Extract(&Capture{Source: SourceStatus})
	assert.Equal(t, 201, v)

	v, _ = e.Extract(&Capture{Source: SourceDuration})
	assert.Equal(t, int64(42), v)
}

func TestExtractor_NonJSONBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "text/plain"},
		Body:       []byte("pong"),
	}
	e := NewExtractor(resp)

	v, ok := e.Extract(&Capture{Source: SourceBody})
	assert.True(t, ok)
	assert.Equal(t, "pong", v)

	_, ok = e.Extract(&Capture{Source: SourceBody, Path: "id"})
	assert.False(t, ok)
}

func TestExtractAll(t *testing.T) {
	values, missing := ExtractAll(jsonResponse(`{"id":"ord_1"}`), []*Capture{
		{Name: "id", Source: SourceBody, Path: "id"},
		{Name: "etag", Source: SourceHeader, Path: "ETag"},
		{Name: "code", Source: SourceStatus},
	})

	assert.Equal(t, map[string]any{"id": "ord_1", "code": 201}, values)
	assert.Equal(t, []string{"etag"}, missing)
}
