package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultHandlerHost is the host used for in-process handler requests.
const DefaultHandlerHost = "example.org"

// CapturedRequest is the last request a Session performed.
type CapturedRequest struct {
	Method string
	URL    string
	Env    Env

	// Input holds the raw body. The transport may already have read it, so
	// readers must seek to the start first.
	Input io.ReadSeeker
}

// Session performs calls either in-process against an http.Handler or over
// the network with a Client, and remembers the last exchange.
type Session struct {
	client  *Client
	baseURL string
	handler http.Handler
	host    string
	baseDir string
	logger  *zap.Logger

	lastRequest  *CapturedRequest
	lastResponse *Response
}

// SessionOption is a functional option for Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger used for completed calls.
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBaseDir sets the directory relative file parts are resolved against.
func WithBaseDir(dir string) SessionOption {
	return func(s *Session) {
		s.baseDir = dir
	}
}

// WithHost sets the host for handler sessions.
func WithHost(host string) SessionOption {
	return func(s *Session) {
		s.host = host
	}
}

// NewHandlerSession serves every call in-process through h.
func NewHandlerSession(h http.Handler, opts ...SessionOption) *Session {
	s := &Session{
		handler: h,
		host:    DefaultHandlerHost,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClientSession sends every call to baseURL through client.
func NewClientSession(client *Client, baseURL string, opts ...SessionOption) *Session {
	if client == nil {
		client = NewClient()
	}
	s := &Session{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseURL returns the scheme and host routes are resolved against.
func (s *Session) BaseURL() string {
	if s.handler != nil {
		return "http://" + s.host
	}
	return s.baseURL
}

// LastRequest returns the last request performed, or nil.
func (s *Session) LastRequest() *CapturedRequest {
	return s.lastRequest
}

// LastResponse returns the last response received, or nil.
func (s *Session) LastResponse() *Response {
	return s.lastResponse
}

// Do performs method against route. Params may be nil, a string, []byte,
// url.Values, []*MultipartField, or any value to be sent as JSON.
func (s *Session) Do(ctx context.Context, method, route string, params any, headers map[string]string) (*Response, error) {
	method = strings.ToUpper(method)

	encoded, err := encodeParams(method, params, s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params for %s %s: %w", method, route, err)
	}

	target := route
	if encoded.query != "" {
		if strings.Contains(target, "?") {
			target += "&" + encoded.query
		} else {
			target += "?" + encoded.query
		}
	}

	reqHeaders := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		reqHeaders[k] = v
	}
	if encoded.contentType != "" && !hasHeader(reqHeaders, "Content-Type") {
		reqHeaders["Content-Type"] = encoded.contentType
	}

	input := bytes.NewReader(encoded.body)

	var resp *Response
	var env Env
	if s.handler != nil {
		resp, env, err = s.serve(ctx, method, s.BaseURL()+target, input, reqHeaders)
	} else {
		resp, env, err = s.send(ctx, method, s.baseURL+target, input, reqHeaders)
	}
	if err != nil {
		return nil, err
	}

	s.lastRequest = &CapturedRequest{
		Method: method,
		URL:    s.BaseURL() + target,
		Env:    env,
		Input:  input,
	}
	s.lastResponse = resp

	s.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("route", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration),
	)

	return resp, nil
}

func (s *Session) serve(ctx context.Context, method, url string, input *bytes.Reader, headers map[string]string) (*Response, Env, error) {
	var body io.Reader
	if input.Len() > 0 {
		body = input
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, nil, err
	}
	req.RequestURI = req.URL.RequestURI()
	req.RemoteAddr = "192.0.2.1:1234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	env := NewEnv(req)

	rec := httptest.NewRecorder()
	start := time.Now()
	s.handler.ServeHTTP(rec, req)
	duration := time.Since(start)

	httpResp := rec.Result()
	defer httpResp.Body.Close()

	resp, err := ReadResponse(httpResp, duration)
	if err != nil {
		return nil, nil, err
	}
	resp.Request = req
	return resp, env, nil
}

func (s *Session) send(ctx context.Context, method, url string, input *bytes.Reader, headers map[string]string) (*Response, Env, error) {
	req := NewRequest(method, url).SetHeaders(headers)
	if input.Len() > 0 {
		req.SetBody(input)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return resp, NewEnv(resp.Request), nil
}

type encodedParams struct {
	query       string
	body        []byte
	contentType string
}

func encodeParams(method string, params any, baseDir string) (encodedParams, error) {
	switch p := params.(type) {
	case nil:
		return encodedParams{}, nil
	case string:
		return encodedParams{body: []byte(p)}, nil
	case []byte:
		return encodedParams{body: p}, nil
	case neturl.Values:
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodDelete {
			return encodedParams{query: p.Encode()}, nil
		}
		return encodedParams{
			body:        []byte(p.Encode()),
			contentType: "application/x-www-form-urlencoded",
		}, nil
	case []*MultipartField:
		buf, contentType, err := BuildMultipartBody(p, baseDir)
		if err != nil {
			return encodedParams{}, err
		}
		return encodedParams{body: buf.Bytes(), contentType: contentType}, nil
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return encodedParams{}, err
		}
		return encodedParams{body: data, contentType: "application/json"}, nil
	}
}

func hasHeader(headers map[string]string, key string) bool {
	for k := range headers {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}
