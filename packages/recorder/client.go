package recorder

import (
	"context"
	"net/http"
	"strings"

	"github.com/abdul-hamid-achik/apidoc/packages/format"
	apihttp "github.com/abdul-hamid-achik/apidoc/packages/http"
)

// Client performs calls for one example and documents each of them.
type Client struct {
	session  Session
	recorder *Recorder
	example  *Metadata
	headers  map[string]string
	user     any
}

// ClientOption is a functional option for Client.
type ClientOption func(*Client)

// WithHeaders sets headers sent with every call.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithRecorder sets the recorder used to document calls.
func WithRecorder(r *Recorder) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewClient creates a Client bound to session and example.
func NewClient(session Session, example *Metadata, opts ...ClientOption) *Client {
	c := &Client{
		session: session,
		example: example,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.recorder == nil {
		c.recorder = New(session)
	}
	return c
}

// Example returns the metadata calls are documented into.
func (c *Client) Example() *Metadata {
	return c.example
}

// Headers returns a copy of the headers sent with every call.
func (c *Client) Headers() map[string]string {
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

func (c *Client) Get(ctx context.Context, route string, params any) (*apihttp.Response, error) {
	return c.process(ctx, http.MethodGet, route, params)
}

func (c *Client) Post(ctx context.Context, route string, params any) (*apihttp.Response, error) {
	return c.process(ctx, http.MethodPost, route, params)
}

func (c *Client) Put(ctx context.Context, route string, params any) (*apihttp.Response, error) {
	return c.process(ctx, http.MethodPut, route, params)
}

func (c *Client) Patch(ctx context.Context, route string, params any) (*apihttp.Response, error) {
	return c.process(ctx, http.MethodPatch, route, params)
}

func (c *Client) Delete(ctx context.Context, route string, params any) (*apihttp.Response, error) {
	return c.process(ctx, http.MethodDelete, route, params)
}

// process performs the call and documents it. A documentation failure is
// returned alongside the response.
func (c *Client) process(ctx context.Context, method, route string, params any) (*apihttp.Response, error) {
	resp, err := c.session.Do(ctx, method, route, params, c.Headers())
	if err != nil {
		return nil, err
	}
	if err := c.recorder.Document(c.example, method, route); err != nil {
		return resp, err
	}
	return resp, nil
}

// SignIn remembers the user the example acts as.
func (c *Client) SignIn(user any) {
	c.user = user
}

// User returns the signed-in user, or nil.
func (c *Client) User() any {
	return c.user
}

// LastHeaders returns the HTTP_* and CONTENT_TYPE entries of the last
// request.
func (c *Client) LastHeaders() []format.Field {
	req := c.session.LastRequest()
	if req == nil {
		return nil
	}
	return c.recorder.requestHeaders(req.Env)
}

// LastQueryString returns the raw query string of the last request.
func (c *Client) LastQueryString() string {
	req := c.session.LastRequest()
	if req == nil {
		return ""
	}
	return req.Env.Get("QUERY_STRING")
}

// LastQuery returns the decoded query parameters of the last request.
func (c *Client) LastQuery() map[string]string {
	query := make(map[string]string)
	for _, segment := range strings.Split(c.LastQueryString(), "&") {
		if segment == "" {
			continue
		}
		key, value, _ := strings.Cut(segment, "=")
		query[format.Unescape(key)] = format.Unescape(value)
	}
	return query
}
