package env

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is called for every placeholder that cannot be resolved.
type WarnFunc func(format string, args ...any)

// Resolver substitutes {{name}} placeholders. It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	captures  map[string]any
	lookupEnv func(string) (string, bool)
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		captures:  make(map[string]any),
		lookupEnv: os.LookupEnv,
	}
}

func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// SetCaptures stores values captured from a response. Captures shadow
// variables of the same name.
func (r *Resolver) SetCaptures(values map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range values {
		r.captures[k] = v
	}
}

// Lookup returns the value of name without the surrounding braces.
func (r *Resolver) Lookup(name string) (string, bool) {
	name = strings.TrimSpace(name)

	if envVar, ok := strings.CutPrefix(name, "$"); ok {
		return r.lookupEnv(envVar)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.captures[name]; ok {
		return fmt.Sprintf("%v", v), true
	}
	if v, ok := r.variables[name]; ok {
		return fmt.Sprintf("%v", v), true
	}
	return "", false
}

// Resolve replaces every resolvable placeholder in input.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := match[2 : len(match)-2]
		if val, ok := r.Lookup(expr); ok {
			return val
		}
		r.warn("unresolved variable: %s", strings.TrimSpace(expr))
		return match
	})
}

// ResolveAll resolves every value of values.
func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// Unresolved returns the names in input that cannot be resolved, in order
// of first appearance.
func (r *Resolver) Unresolved(input string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		name := strings.TrimSpace(m[1])
		if seen[name] {
			continue
		}
		if _, ok := r.Lookup(name); !ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	return names
}

// Names returns the known variable and capture names, sorted.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.variables)+len(r.captures))
	for k := range r.variables {
		seen[k] = true
	}
	for k := range r.captures {
		seen[k] = true
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
