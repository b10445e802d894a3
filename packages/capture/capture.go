package capture

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/apidoc/packages/http"
)

// Directive is the keyword that introduces a capture.
const Directive = "@capture"

// Source is the part of a response a value is read from.
type Source string

const (
	SourceBody     Source = "body"
	SourceHeader   Source = "header"
	SourceStatus   Source = "status"
	SourceDuration Source = "duration"
)

// Capture names a value to read from a response.
type Capture struct {
	Name   string
	Source Source
	Path   string
}

// ParseDirective parses "@capture name source [path]". It reports false
// for directives that are not captures.
func ParseDirective(directive string) (*Capture, bool, error) {
	fields := strings.Fields(directive)
	if len(fields) == 0 || fields[0] != Directive {
		return nil, false, nil
	}
	fields = fields[1:]
	if len(fields) < 2 {
		return nil, true, fmt.Errorf("invalid capture %q: expected name and source", directive)
	}

	c := &Capture{Name: fields[0], Source: Source(strings.ToLower(fields[1]))}
	if len(fields) > 2 {
		c.Path = strings.Join(fields[2:], " ")
	}

	switch c.Source {
	case SourceBody, SourceStatus, SourceDuration:
	case SourceHeader:
		if c.Path == "" {
			return nil, true, fmt.Errorf("invalid capture %q: header name required", directive)
		}
	default:
		return nil, true, fmt.Errorf("invalid capture %q: unknown source %q", directive, c.Source)
	}
	return c, true, nil
}

// ParseDirectives returns the captures among directives.
func ParseDirectives(directives []string) ([]*Capture, error) {
	var captures []*Capture
	for _, d := range directives {
		c, ok, err := ParseDirective(d)
		if err != nil {
			return nil, err
		}
		if ok {
			captures = append(captures, c)
		}
	}
	return captures, nil
}

type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if resp.IsJSON() && gjson.ValidBytes(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
	}
	return e
}

// Extract reads the value c names. It reports false when the value is
// absent.
func (e *Extractor) Extract(c *Capture) (any, bool) {
	switch c.Source {
	case SourceBody:
		return e.extractFromBody(c.Path)
	case SourceHeader:
		return e.extractFromHeader(c.Path)
	case SourceStatus:
		return e.response.StatusCode, true
	case SourceDuration:
		return e.response.DurationMs(), true
	default:
		return nil, false
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path == "" {
			return e.response.BodyString(), true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	// objects and arrays are substituted as JSON text
	if result.IsObject() || result.IsArray() {
		return result.Raw, true
	}
	return result.Value(), true
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	value := e.response.Header(name)
	if value == "" {
		return nil, false
	}
	return value, true
}

// ExtractAll extracts every capture present in resp. Missing values are
// left out and reported by name.
func ExtractAll(resp *http.Response, captures []*Capture) (map[string]any, []string) {
	extractor := NewExtractor(resp)
	results := make(map[string]any, len(captures))
	var missing []string

	for _, c := range captures {
		if value, ok := extractor.Extract(c); ok {
			results[c.Name] = value
		} else {
			missing = append(missing, c.Name)
		}
	}

	return results, missing
}
