package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	neturl "net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/apidoc/packages/body"
	"github.com/abdul-hamid-achik/apidoc/packages/curl"
	"github.com/abdul-hamid-achik/apidoc/packages/format"
	"github.com/abdul-hamid-achik/apidoc/packages/http"
)

// RedactedValue replaces the value of redacted headers.
const RedactedValue = "[REDACTED]"

// ErrNoExchange is returned when the session has not performed a call yet.
var ErrNoExchange = errors.New("no request has been performed")

// Session is the source of the exchange being documented.
type Session interface {
	Do(ctx context.Context, method, route string, params any, headers map[string]string) (*http.Response, error)
	LastRequest() *http.CapturedRequest
	LastResponse() *http.Response
}

// Recorder documents exchanges performed through a Session.
type Recorder struct {
	session   Session
	sanitizer *body.Sanitizer
	host      string
	redact    []string
	logger    *zap.Logger
}

// Option is a functional option for Recorder.
type Option func(*Recorder)

// WithSanitizer sets the sanitizer used for request bodies.
func WithSanitizer(s *body.Sanitizer) Option {
	return func(r *Recorder) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

// WithHost overrides the scheme and host used in curl commands.
func WithHost(host string) Option {
	return func(r *Recorder) {
		r.host = strings.TrimRight(host, "/")
	}
}

// WithRedactedHeaders replaces the values of the named request headers in
// records and curl commands.
func WithRedactedHeaders(names ...string) Option {
	return func(r *Recorder) {
		r.redact = append(r.redact, names...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Recorder reading exchanges from session.
func New(session Session, opts ...Option) *Recorder {
	r := &Recorder{
		session:   session,
		sanitizer: body.NewSanitizer(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Document appends a record of the session's last exchange to meta. It does
// nothing unless meta has opted in to documentation.
func (r *Recorder) Document(meta *Metadata, method, route string) error {
	if meta == nil || !meta.Document {
		return nil
	}

	rec, err := r.Capture(method, route)
	if err != nil {
		r.logger.Warn("failed to document request",
			zap.String("example", meta.ID),
			zap.String("method", method),
			zap.String("route", route),
			zap.Error(err),
		)
		return err
	}

	meta.Requests = append(meta.Requests, rec)

	r.logger.Debug("documented request",
		zap.String("example", meta.ID),
		zap.String("method", rec.Method),
		zap.String("route", rec.Route),
		zap.Int("status", rec.ResponseStatus),
		zap.Int("records", len(meta.Requests)),
	)
	return nil
}

// Capture builds the record for the session's last exchange without
// attaching it to an example.
func (r *Recorder) Capture(method, route string) (RequestRecord, error) {
	method = strings.ToUpper(method)

	req := r.session.LastRequest()
	resp := r.session.LastResponse()
	if req == nil || resp == nil {
		return RequestRecord{}, &CaptureError{Method: method, Route: route, Err: ErrNoExchange}
	}

	raw, err := readInput(req.Input)
	if err != nil {
		return RequestRecord{}, &CaptureError{Method: method, Route: route, Err: err}
	}

	requestBody, err := r.sanitizer.Render(raw)
	if err != nil {
		return RequestRecord{}, &CaptureError{Method: method, Route: route, Err: err}
	}

	headers := r.requestHeaders(req.Env)

	return RequestRecord{
		Method:                 method,
		Route:                  route,
		RequestBody:            requestBody,
		RequestHeaders:         format.Headers(headers),
		RequestQueryParameters: format.Query(req.Env.Get("QUERY_STRING")),
		ResponseStatus:         resp.StatusCode,
		ResponseStatusText:     format.StatusText(resp.StatusCode),
		ResponseBody:           responseBody(resp.BodyString()),
		ResponseHeaders:        format.Headers(resp.HeaderFields()),
		Curl:                   r.curl(method, req.URL, headers, raw, requestBody),
	}, nil
}

// requestHeaders keeps the HTTP_* and CONTENT_TYPE entries of env.
func (r *Recorder) requestHeaders(env http.Env) []format.Field {
	selected := env.Select(func(key string) bool {
		return strings.HasPrefix(key, "HTTP_") || key == "CONTENT_TYPE"
	})

	fields := make([]format.Field, 0, len(selected))
	for _, f := range selected {
		if r.redacted(format.HeaderKey(f.Key)) {
			f.Value = RedactedValue
		}
		fields = append(fields, f)
	}
	return fields
}

func (r *Recorder) redacted(header string) bool {
	for _, name := range r.redact {
		if strings.EqualFold(name, header) {
			return true
		}
	}
	return false
}

func (r *Recorder) curl(method, requestURL string, headers []format.Field, raw, rendered string) string {
	target := requestURL
	if r.host != "" {
		if u, err := neturl.Parse(requestURL); err == nil {
			target = r.host + u.RequestURI()
		}
	}

	curlHeaders := make([]format.Field, 0, len(headers))
	for _, f := range headers {
		key := format.HeaderKey(f.Key)
		if key == "Host" {
			continue
		}
		curlHeaders = append(curlHeaders, format.Field{Key: key, Value: f.Value})
	}

	data := raw
	if body.IsMultipart(raw) {
		data = rendered
	}

	return curl.Build(method, target, curlHeaders, data)
}

func readInput(in io.ReadSeeker) (string, error) {
	if in == nil {
		return "", nil
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind request body: %w", err)
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	return string(data), nil
}

func responseBody(raw string) string {
	if out, ok := format.PrettyJSON(raw); ok {
		return out
	}
	return raw
}
