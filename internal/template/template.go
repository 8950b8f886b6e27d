// Package template implements the placeholder substitution used to render
// boot configuration artifacts.
//
// Placeholders are "__NAME__" tokens. A token bound to a scalar value is
// replaced in place; a token bound to a list value expands into one rendered
// line per item. The list form exists because a scalar substitution can only
// produce a single value, while formats like the proxy-DHCP configuration
// need one directive line per DNS server.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches placeholder tokens. Token names are uppercase with
// single underscores; the double underscore is the delimiter.
var tokenPattern = regexp.MustCompile(`__[A-Z0-9]+(?:_[A-Z0-9]+)*__`)

// Value is a template variable binding: either a scalar string or a list
// expanded line-by-line through a directive pattern.
type Value struct {
	scalar  string
	items   []string
	pattern string
	isList  bool
}

// String binds a scalar value.
func String(s string) Value {
	return Value{scalar: s}
}

// List binds a list value. Each item is rendered through linePattern
// (a fmt pattern with a single %s verb) and the lines are newline-joined
// in item order.
func List(items []string, linePattern string) Value {
	return Value{items: items, pattern: linePattern, isList: true}
}

// Vars maps token names (without the delimiters) to their bindings.
type Vars map[string]Value

// UnresolvedError reports every token in a document that has no binding.
type UnresolvedError struct {
	Tokens []string
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved template tokens: %s", strings.Join(e.Tokens, ", "))
}

// Render substitutes every placeholder token in doc and returns the result.
// A token without a binding is an error, never an empty substitution; all
// unresolved tokens are reported together. The output always ends with
// exactly one trailing newline. Render is pure and performs no I/O.
func Render(doc string, vars Vars) (string, error) {
	unresolved := make(map[string]bool)

	out := tokenPattern.ReplaceAllStringFunc(doc, func(token string) string {
		name := strings.Trim(token, "_")
		v, ok := vars[name]
		if !ok {
			unresolved[name] = true
			return token
		}
		if v.isList {
			lines := make([]string, len(v.items))
			for i, item := range v.items {
				lines[i] = fmt.Sprintf(v.pattern, item)
			}
			return strings.Join(lines, "\n")
		}
		return v.scalar
	})

	if len(unresolved) > 0 {
		tokens := make([]string, 0, len(unresolved))
		for name := range unresolved {
			tokens = append(tokens, name)
		}
		sort.Strings(tokens)
		return "", &UnresolvedError{Tokens: tokens}
	}

	return strings.TrimRight(out, "\n") + "\n", nil
}
