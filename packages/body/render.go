package body

import (
	"strings"

	"github.com/abdul-hamid-achik/apidoc/packages/format"
)

// Render renders a request body with the default sanitizer.
func Render(s string) (string, error) {
	return defaultSanitizer.Render(s)
}

// Render renders a body according to its classification. Blank bodies
// render as "". Only a malformed multipart body returns an error.
func (s *Sanitizer) Render(raw string) (string, error) {
	switch Classify(raw) {
	case KindJSON:
		out, _ := format.PrettyJSON(raw)
		return out, nil
	case KindMultipart:
		return s.Sanitize(raw)
	case KindURLEncoded:
		return DecodeForm(raw), nil
	default:
		return "", nil
	}
}

// DecodeForm renders a URL-encoded body one percent-decoded pair per line.
func DecodeForm(raw string) string {
	pairs := strings.Split(raw, "&")
	for i, pair := range pairs {
		pairs[i] = format.Unescape(pair)
	}
	return strings.Join(pairs, "\n")
}
