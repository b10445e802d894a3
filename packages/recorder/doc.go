// Package recorder turns a completed HTTP exchange into a documentation
// record.
//
// A Recorder reads the last request and response from a Session, renders
// the request body (pretty JSON, decoded form, or sanitized multipart),
// formats headers and query parameters, synthesizes a curl command, and
// appends the resulting RequestRecord to the example's Metadata. Examples
// that have not opted in with Metadata.Document are left untouched.
//
// Client wraps a Session with verb helpers (Get, Post, Put, Patch, Delete)
// that perform the call and document it in one step.
package recorder
