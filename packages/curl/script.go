package curl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// directivePrefix marks a comment that belongs to the preceding command.
const directivePrefix = "# @"

// Entry is one command of a script, before variables are resolved.
type Entry struct {
	// Line is the line the command starts on.
	Line int
	Text string

	// Directives are the "# @..." comments following the command, without
	// the leading "# ".
	Directives []string
}

// ReadScript splits r into curl commands, one per line. Lines ending in a
// backslash continue on the next line; blank lines and # comments are
// skipped, except directives which attach to the command before them.
func ReadScript(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var current strings.Builder
	start := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, directivePrefix) && current.Len() == 0 {
			if len(entries) == 0 {
				return nil, fmt.Errorf("line %d: directive before any command", lineNo)
			}
			last := &entries[len(entries)-1]
			last.Directives = append(last.Directives, strings.TrimPrefix(line, "# "))
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if current.Len() == 0 {
			start = lineNo
		}
		if strings.HasSuffix(line, "\\") {
			current.WriteString(strings.TrimSuffix(line, "\\"))
			current.WriteString(" ")
			continue
		}

		current.WriteString(line)
		entries = append(entries, Entry{Line: start, Text: current.String()})
		current.Reset()
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	if current.Len() > 0 {
		entries = append(entries, Entry{Line: start, Text: strings.TrimSpace(current.String())})
	}

	return entries, nil
}

// ReadScriptFile reads the script at path.
func ReadScriptFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadScript(file)
}

// ParseFile parses a file of curl commands. Directives are ignored.
func ParseFile(path string) ([]*Command, error) {
	entries, err := ReadScriptFile(path)
	if err != nil {
		return nil, err
	}

	commands := make([]*Command, 0, len(entries))
	for i, e := range entries {
		cmd, err := Parse(e.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse command %d (line %d): %w", i+1, e.Line, err)
		}
		commands = append(commands, cmd)
	}

	return commands, nil
}
