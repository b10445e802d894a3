// Package output provides formatters for displaying documented examples.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//   - YAML: The same document as JSON, in YAML
//
// Each formatter implements the Formatter interface and can optionally
// implement Flushable for formats that accumulate examples before output.
package output
