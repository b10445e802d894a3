package format

import (
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Field is a single header or environment entry. Order is significant.
type Field struct {
	Key   string
	Value string
}

var prettyOptions = &pretty.Options{
	Width:    0, // never collapse arrays onto one line
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// HeaderKey converts a raw header key into its display form.
// HTTP_ACCEPT_CHARSET => Accept-Charset, CONTENT_TYPE => Content-Type.
func HeaderKey(key string) string {
	key = strings.TrimPrefix(key, "HTTP_")
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, "-")
}

// Headers renders fields as "Key: Value" lines in the given order.
func Headers(fields []Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, HeaderKey(f.Key)+": "+f.Value)
	}
	return strings.Join(lines, "\n")
}

// Query renders a raw query string as "key: value" lines. An empty query
// renders as "".
func Query(raw string) string {
	if raw == "" {
		return ""
	}

	var lines []string
	for _, segment := range strings.Split(raw, "&") {
		if segment == "" {
			continue
		}
		key, value, _ := strings.Cut(segment, "=")
		lines = append(lines, key+": "+Unescape(value))
	}
	return strings.Join(lines, "\n")
}

// Unescape percent-decodes s, treating '+' as a space. Input that is not
// valid percent-encoding is returned unchanged.
func Unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// PrettyJSON re-indents a JSON document with two spaces. The second return
// value is false when s is not valid JSON.
func PrettyJSON(s string) (string, bool) {
	if !gjson.Valid(s) {
		return "", false
	}
	out := pretty.PrettyOptions([]byte(s), prettyOptions)
	return strings.TrimRight(string(out), "\n"), true
}

// extraStatusText covers registered or widely deployed codes net/http has no
// phrase for.
var extraStatusText = map[int]string{
	306: "Switch Proxy",
	419: "Page Expired",
	420: "Enhance Your Calm",
	440: "Login Time-out",
	444: "No Response",
	449: "Retry With",
	499: "Client Closed Request",
	509: "Bandwidth Limit Exceeded",
	520: "Web Server Returned an Unknown Error",
	521: "Web Server Is Down",
	522: "Connection Timed Out",
	523: "Origin Is Unreachable",
	524: "A Timeout Occurred",
	525: "SSL Handshake Failed",
	526: "Invalid SSL Certificate",
	527: "Railgun Error",
	598: "Network Read Timeout Error",
	599: "Network Connect Timeout Error",
}

// StatusText returns the reason phrase for an HTTP status code, or "" for an
// unknown code.
func StatusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return extraStatusText[code]
}
