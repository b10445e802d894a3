// Package curl builds example curl commands for documented requests and
// parses curl commands back into requests.
package curl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/abdul-hamid-achik/apidoc/packages/format"
)

// Command represents a curl invocation.
type Command struct {
	Method          string
	URL             string
	Headers         []format.Field
	Body            string
	Form            []FormPart
	BasicAuth       string
	Insecure        bool
	FollowRedirects bool
}

// FormPart is one -F field. A part with File set uploads that file.
type FormPart struct {
	Name        string
	Value       string
	File        string
	Filename    string
	ContentType string
}

// String renders the part the way -F takes it.
func (p FormPart) String() string {
	if p.File == "" {
		return p.Name + "=" + p.Value
	}
	s := p.Name + "=@" + p.File
	if p.ContentType != "" {
		s += ";type=" + p.ContentType
	}
	if p.Filename != "" {
		s += ";filename=" + p.Filename
	}
	return s
}

// parseFormPart parses name=value, or name=@path with optional ;type= and
// ;filename= attributes.
func parseFormPart(s string) (FormPart, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return FormPart{}, fmt.Errorf("invalid form field %q: expected name=value", s)
	}
	if !strings.HasPrefix(value, "@") {
		return FormPart{Name: name, Value: value}, nil
	}

	attrs := strings.Split(strings.TrimPrefix(value, "@"), ";")
	part := FormPart{Name: name, File: attrs[0]}
	if part.File == "" {
		return FormPart{}, fmt.Errorf("invalid form field %q: missing file path", s)
	}
	for _, attr := range attrs[1:] {
		key, val, _ := strings.Cut(attr, "=")
		switch strings.TrimSpace(key) {
		case "type":
			part.ContentType = val
		case "filename":
			part.Filename = val
		}
	}
	return part, nil
}

var safeWord = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

// Build renders an equivalent curl command. The same inputs always produce
// the same string: flags come in a fixed order and headers keep their order.
func Build(method, url string, headers []format.Field, body string) string {
	cmd := &Command{
		Method:  method,
		URL:     url,
		Headers: headers,
		Body:    body,
	}
	return cmd.String()
}

// String renders the command as a single shell line.
func (c *Command) String() string {
	args := []string{"curl", quote(c.URL), "-X", quote(strings.ToUpper(c.Method))}

	if c.BasicAuth != "" {
		args = append(args, "-u", quote(c.BasicAuth))
	}
	if c.Insecure {
		args = append(args, "-k")
	}
	if c.FollowRedirects {
		args = append(args, "-L")
	}
	for _, h := range c.Headers {
		args = append(args, "-H", quote(h.Key+": "+h.Value))
	}
	for _, p := range c.Form {
		args = append(args, "-F", quote(p.String()))
	}
	if c.Body != "" {
		args = append(args, "-d", quote(c.Body))
	}

	return strings.Join(args, " ")
}

// Header returns the value of the first header matching key, case-insensitively.
func (c *Command) Header(key string) string {
	for _, h := range c.Headers {
		if strings.EqualFold(h.Key, key) {
			return h.Value
		}
	}
	return ""
}

// quote wraps s in single quotes unless it is made only of shell-safe
// characters. Embedded single quotes become '\''.
func quote(s string) string {
	if s != "" && safeWord.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// JoinArgs rebuilds a command line from arguments the shell already split,
// quoting them so Parse recovers the same tokens.
func JoinArgs(args []string) string {
	return shellquote.Join(args...)
}

// Parse parses a curl command string.
func Parse(curlCmd string) (*Command, error) {
	parsed := &Command{
		Method: "GET",
	}

	tokens, err := shellquote.Split(strings.TrimSpace(curlCmd))
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize curl command: %w", err)
	}
	if len(tokens) > 0 && tokens[0] == "curl" {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no URL specified")
	}

	methodSet := false
	i := 0
	for i < len(tokens) {
		token := tokens[i]

		switch {
		case token == "-X" || token == "--request":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("missing value for %s", token)
			}
			parsed.Method = strings.ToUpper(tokens[i+1])
			methodSet = true
			i += 2

		case token == "-H" || token == "--header":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("missing value for %s", token)
			}
			key, value, ok := strings.Cut(tokens[i+1], ":")
			if ok {
				parsed.Headers = append(parsed.Headers, format.Field{
					Key:   strings.TrimSpace(key),
					Value: strings.TrimSpace(value),
				})
			}
			i += 2

		case token == "-d" || token == "--data" || token == "--data-raw" || token == "--data-binary":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("missing value for %s", token)
			}
			parsed.Body = tokens[i+1]
			// A body without -X implies POST
			if !methodSet {
				parsed.Method = "POST"
			}
			i += 2

		case token == "-F" || token == "--form":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("missing value for %s", token)
			}
			part, err := parseFormPart(tokens[i+1])
			if err != nil {
				return nil, err
			}
			parsed.Form = append(parsed.Form, part)
			if !methodSet {
				parsed.Method = "POST"
			}
			i += 2

		case token == "-u" || token == "--user":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("missing value for %s", token)
			}
			parsed.BasicAuth = tokens[i+1]
			i += 2

		case token == "-k" || token == "--insecure":
			parsed.Insecure = true
			i++

		case token == "-L" || token == "--location":
			parsed.FollowRedirects = true
			i++

		case token == "-A" || token == "--user-agent":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("missing value for %s", token)
			}
			parsed.Headers = append(parsed.Headers, format.Field{Key: "User-Agent", Value: tokens[i+1]})
			i += 2

		case token == "-e" || token == "--referer":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("missing value for %s", token)
			}
			parsed.Headers = append(parsed.Headers, format.Field{Key: "Referer", Value: tokens[i+1]})
			i += 2

		case token == "-b" || token == "--cookie":
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("missing value for %s", token)
			}
			parsed.Headers = append(parsed.Headers, format.Field{Key: "Cookie", Value: tokens[i+1]})
			i += 2

		case strings.HasPrefix(token, "-"):
			// Skip unknown flags with potential values
			if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
				i += 2
			} else {
				i++
			}

		default:
			if parsed.URL == "" && isURL(token) {
				parsed.URL = token
			}
			i++
		}
	}

	if parsed.URL == "" {
		return nil, fmt.Errorf("no URL found in curl command")
	}
	if parsed.Body != "" && len(parsed.Form) > 0 {
		return nil, fmt.Errorf("-d and -F cannot be combined")
	}

	return parsed, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
