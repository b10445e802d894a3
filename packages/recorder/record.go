package recorder

import (
	"github.com/google/uuid"
)

// RequestRecord is the documentation view of one exchange.
type RequestRecord struct {
	Method                 string `json:"method" yaml:"method"`
	Route                  string `json:"route" yaml:"route"`
	RequestBody            string `json:"request_body,omitempty" yaml:"request_body,omitempty"`
	RequestHeaders         string `json:"request_headers" yaml:"request_headers"`
	RequestQueryParameters string `json:"request_query_parameters,omitempty" yaml:"request_query_parameters,omitempty"`
	ResponseStatus         int    `json:"response_status" yaml:"response_status"`
	ResponseStatusText     string `json:"response_status_text" yaml:"response_status_text"`
	ResponseBody           string `json:"response_body,omitempty" yaml:"response_body,omitempty"`
	ResponseHeaders        string `json:"response_headers" yaml:"response_headers"`
	Curl                   string `json:"curl" yaml:"curl"`
}

// Metadata is the per-example documentation state. The test harness owns it
// and passes it to the recorder explicitly.
type Metadata struct {
	ID          string          `json:"id" yaml:"id"`
	Description string          `json:"description" yaml:"description"`
	Document    bool            `json:"document" yaml:"document"`
	Requests    []RequestRecord `json:"requests,omitempty" yaml:"requests,omitempty"`
}

// NewMetadata creates metadata for one example with a fresh ID.
func NewMetadata(description string, document bool) *Metadata {
	return &Metadata{
		ID:          uuid.NewString(),
		Description: description,
		Document:    document,
	}
}
