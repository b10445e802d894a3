package http

import (
	"io"
	"strings"
)

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    io.Reader
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// SetHeaders copies headers onto the request
func (r *Request) SetHeaders(headers map[string]string) *Request {
	for k, v := range headers {
		r.Headers[k] = v
	}
	return r
}

// SetBody sets the body reader. The reader is consumed when the request is sent.
func (r *Request) SetBody(body io.Reader) *Request {
	r.Body = body
	return r
}

func (r *Request) SetBodyString(body string) *Request {
	if body != "" {
		r.Body = strings.NewReader(body)
	}
	return r
}
