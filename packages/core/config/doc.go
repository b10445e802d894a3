// Package config handles configuration loading and management for apidoc.
//
// It provides functionality for:
//   - Loading configuration from .apidoc.json, apidoc.json, .apidoc.yml or
//     .apidoc.yaml files
//   - Default configuration values
//   - Merging command-line overrides into file settings
package config
