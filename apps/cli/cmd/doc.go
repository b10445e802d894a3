// Package cmd implements the apidoc CLI commands using Cobra.
//
// Available commands:
//   - capture: Perform curl commands and document the exchanges
//   - record: Document traffic through a reverse proxy
//   - sanitize: Classify and render a request body
//   - list: Display stored examples
//   - show: Print the records of a stored example
//   - delete: Remove a stored example
//   - version: Show apidoc version information
//
// Global flags select the config file, the log level and colored output.
package cmd
