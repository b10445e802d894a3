// Package format renders captured request and response parts into stable,
// human-readable text for documentation.
//
// It provides:
//   - Header rendering from CGI-style keys (HTTP_ACCEPT_CHARSET => Accept-Charset)
//   - Query string decoding into "key: value" lines
//   - JSON pretty-printing with preserved key order
//   - HTTP status reason phrases
package format
