// Package body classifies raw HTTP bodies and renders them safely for
// documentation.
//
// Bodies are classified as JSON, multipart, URL-encoded or opaque (blank).
// JSON is pretty-printed, URL-encoded forms are decoded one pair per line,
// and multipart bodies are passed through a line scanner that replaces
// binary part payloads with a placeholder while keeping the boundary framing
// and text parts intact.
package body
