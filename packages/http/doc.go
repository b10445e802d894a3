// Package http provides the transport side of documentation capture.
//
// It wraps the standard library's http package with:
//   - A configurable client (timeouts, redirects, TLS, proxy, default headers)
//   - Sessions that perform a call and remember the last request and response
//   - CGI-style request environments (HTTP_*, CONTENT_TYPE, QUERY_STRING)
//   - Request parameter encoding, including multipart bodies with file parts
package http
