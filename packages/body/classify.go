package body

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the classification of a raw body.
type Kind int

const (
	// KindOpaque is a blank body. It renders as nothing.
	KindOpaque Kind = iota
	// KindJSON is any body that parses as JSON.
	KindJSON
	// KindMultipart is a non-JSON body starting with "--".
	KindMultipart
	// KindURLEncoded is everything else, decoded as key=value pairs.
	KindURLEncoded
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindMultipart:
		return "multipart"
	case KindURLEncoded:
		return "urlencoded"
	default:
		return "opaque"
	}
}

// Classify decides how a body should be rendered. JSON is detected by a
// successful parse, not by the declared content type.
func Classify(s string) Kind {
	if gjson.Valid(s) {
		return KindJSON
	}
	if IsMultipart(s) {
		return KindMultipart
	}
	if strings.TrimSpace(s) == "" {
		return KindOpaque
	}
	return KindURLEncoded
}

// IsMultipart reports whether s starts like a multipart body.
func IsMultipart(s string) bool {
	return strings.HasPrefix(s, "--")
}
