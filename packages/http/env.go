package http

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/apidoc/packages/format"
)

// Env is a CGI-style view of a request, sorted by key.
type Env []format.Field

// Get returns the value for key, or "" when absent.
func (e Env) Get(key string) string {
	for _, f := range e {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Select returns the entries whose key satisfies keep, in order.
func (e Env) Select(keep func(key string) bool) Env {
	var out Env
	for _, f := range e {
		if keep(f.Key) {
			out = append(out, f)
		}
	}
	return out
}

// EnvKey maps a header name to its CGI variable name.
// Content-Type => CONTENT_TYPE, Accept-Charset => HTTP_ACCEPT_CHARSET.
func EnvKey(header string) string {
	key := strings.ToUpper(strings.ReplaceAll(header, "-", "_"))
	switch key {
	case "CONTENT_TYPE", "CONTENT_LENGTH":
		return key
	}
	return "HTTP_" + key
}

// NewEnv builds the environment for an outgoing or incoming request.
func NewEnv(req *http.Request) Env {
	vars := map[string]string{
		"REQUEST_METHOD": req.Method,
		"PATH_INFO":      req.URL.Path,
		"QUERY_STRING":   req.URL.RawQuery,
	}

	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	if host != "" {
		vars["HTTP_HOST"] = host
		vars["SERVER_NAME"] = req.URL.Hostname()
	}

	if req.ContentLength > 0 {
		vars["CONTENT_LENGTH"] = strconv.FormatInt(req.ContentLength, 10)
	}

	for k, values := range req.Header {
		vars[EnvKey(k)] = strings.Join(values, ", ")
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make(Env, 0, len(keys))
	for _, k := range keys {
		env = append(env, format.Field{Key: k, Value: vars[k]})
	}
	return env
}
