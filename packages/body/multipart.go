package body

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPlaceholder replaces the payload of every binary part.
const DefaultPlaceholder = "{ Put binary contents that you want to upload }"

var (
	lineBreak = regexp.MustCompile(`\r\n|\n|\r`)

	// RFC 2046 boundary: 1 to 70 bchars, not ending in a space.
	boundaryLine = regexp.MustCompile(`^--[0-9A-Za-z'()+_,\-./:=? ]{0,69}[0-9A-Za-z'()+_,\-./:=?]$`)

	contentTypeLine = regexp.MustCompile(`(?i)^content-type\s*:\s*([-\w.+]+)/[-\w.+]+\s*(?:;.*)?$`)
)

// ScanState is the position of the multipart scanner within a part.
type ScanState int

const (
	// StateBegin expects a boundary or the terminator.
	StateBegin ScanState = iota
	// StateHeader is inside a part's header block.
	StateHeader
	// StateBody is inside a part's payload.
	StateBody
)

func (s ScanState) String() string {
	switch s {
	case StateBegin:
		return "begin"
	case StateHeader:
		return "header"
	case StateBody:
		return "body"
	default:
		return fmt.Sprintf("ScanState(%d)", int(s))
	}
}

// MalformedMultipartError reports a body that does not follow multipart
// framing. Line is the zero-based index of the offending line.
type MalformedMultipartError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedMultipartError) Error() string {
	return fmt.Sprintf("malformed multipart body: %s at line %d: %q", e.Reason, e.Line, e.Text)
}

// Sanitizer rewrites multipart bodies for documentation.
type Sanitizer struct {
	placeholder      string
	strictTerminator bool
}

// SanitizerOption is a functional option for Sanitizer.
type SanitizerOption func(*Sanitizer)

// WithPlaceholder sets the line written in place of binary payloads.
func WithPlaceholder(placeholder string) SanitizerOption {
	return func(s *Sanitizer) {
		if placeholder != "" {
			s.placeholder = placeholder
		}
	}
}

// WithStrictTerminator makes a body that ends without "boundary--" an error.
// By default the end of input is accepted as an implicit terminator.
func WithStrictTerminator(strict bool) SanitizerOption {
	return func(s *Sanitizer) {
		s.strictTerminator = strict
	}
}

// NewSanitizer creates a new Sanitizer.
func NewSanitizer(opts ...SanitizerOption) *Sanitizer {
	s := &Sanitizer{
		placeholder: DefaultPlaceholder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultSanitizer = NewSanitizer()

// Sanitize rewrites a multipart body with the default settings.
func Sanitize(s string) (string, error) {
	return defaultSanitizer.Sanitize(s)
}

// Sanitize replaces the payload of every non-text part with the placeholder.
// Boundary lines, part headers and text payloads pass through unchanged.
// The terminator line ends the scan and is not emitted.
func (s *Sanitizer) Sanitize(body string) (string, error) {
	sc := newScanner(SplitLines(body), s.placeholder)
	if len(sc.lines) == 0 {
		return "", nil
	}
	if !boundaryLine.MatchString(sc.boundary) {
		return "", &MalformedMultipartError{Line: 0, Text: sc.boundary, Reason: "invalid boundary"}
	}

	state := StateBegin
	terminated := false
	for n := 0; n < len(sc.lines); {
		t, err := sc.step(state, n)
		if err != nil {
			return "", err
		}
		if t.stop {
			terminated = true
			break
		}
		state = t.next
		n += t.consumed
	}

	if s.strictTerminator && !terminated {
		return "", &MalformedMultipartError{
			Line:   len(sc.lines),
			Text:   sc.boundary + "--",
			Reason: "missing terminator",
		}
	}

	return strings.Join(sc.out, "\n"), nil
}

// SplitLines splits on CRLF, LF or CR. Trailing empty lines are kept: a
// blank line closing the last text part is payload. Empty input has no
// lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	return lineBreak.Split(s, -1)
}

type transition struct {
	next     ScanState
	consumed int
	stop     bool
}

type scanner struct {
	lines       []string
	boundary    string
	terminator  string
	placeholder string
	binary      bool
	out         []string
}

func newScanner(lines []string, placeholder string) *scanner {
	sc := &scanner{
		lines:       lines,
		placeholder: placeholder,
		out:         make([]string, 0, len(lines)),
	}
	if len(lines) > 0 {
		sc.boundary = lines[0]
		sc.terminator = lines[0] + "--"
	}
	return sc
}

// isBoundary is true past the end of input, so a missing terminator ends
// the last part.
func (sc *scanner) isBoundary(n int) bool {
	return n >= len(sc.lines) || sc.lines[n] == sc.boundary || sc.lines[n] == sc.terminator
}

// step consumes lines[n] in the given state.
func (sc *scanner) step(state ScanState, n int) (transition, error) {
	line := sc.lines[n]

	switch state {
	case StateBegin:
		switch line {
		case sc.boundary:
			sc.out = append(sc.out, line)
			sc.binary = false
			return transition{next: StateHeader, consumed: 1}, nil
		case sc.terminator:
			return transition{stop: true}, nil
		default:
			return transition{}, &MalformedMultipartError{Line: n, Text: line, Reason: "expected boundary"}
		}

	case StateHeader:
		sc.out = append(sc.out, line)
		if m := contentTypeLine.FindStringSubmatch(line); m != nil {
			sc.binary = !strings.EqualFold(m[1], "text")
			return transition{next: StateHeader, consumed: 1}, nil
		}
		if line == "" {
			if sc.isBoundary(n + 1) {
				return transition{next: StateBegin, consumed: 1}, nil
			}
			return transition{next: StateBody, consumed: 1}, nil
		}
		return transition{next: StateHeader, consumed: 1}, nil

	case StateBody:
		if sc.binary {
			sc.out = append(sc.out, sc.placeholder)
			end := n + 1
			for !sc.isBoundary(end) {
				end++
			}
			return transition{next: StateBegin, consumed: end - n}, nil
		}
		sc.out = append(sc.out, line)
		if sc.isBoundary(n + 1) {
			return transition{next: StateBegin, consumed: 1}, nil
		}
		return transition{next: StateBody, consumed: 1}, nil

	default:
		return transition{}, fmt.Errorf("multipart scanner: unknown state %s", state)
	}
}
