package recorder

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed record.schema.json
var recordSchema []byte

// Validate checks the record against the record JSON schema.
func (r RequestRecord) Validate() error {
	document, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(recordSchema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("invalid record %s %s: %s", r.Method, r.Route, strings.Join(problems, "; "))
}

// Validate checks every record of the example.
func (m *Metadata) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("example has no id")
	}
	for i, rec := range m.Requests {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
