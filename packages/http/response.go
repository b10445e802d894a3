package http

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apidoc/packages/format"
)

type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration

	// Request is the outgoing request, when the response came from a Client.
	Request *http.Request
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// HeaderFields returns the headers sorted by key.
func (r *Response) HeaderFields() []format.Field {
	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]format.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, format.Field{Key: k, Value: r.Headers[k]})
	}
	return fields
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json")
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
