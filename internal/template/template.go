// Package template implements {{name}} variable substitution for task
// description templates.
package template

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// varPattern matches {{name}} references. Names are word characters;
// surrounding whitespace inside the braces is tolerated.
var varPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// StringifyValue converts any value to its substitution string.
// Maps and slices are JSON-marshaled so outputs stay machine-readable
// instead of Go's %v map[...] format.
func StringifyValue(val any) string {
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(val)
	kind := rv.Kind()
	if kind == reflect.Map || kind == reflect.Slice || kind == reflect.Array {
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", val)
	}

	return fmt.Sprintf("%v", val)
}

// Substitute replaces every {{name}} reference in input with the
// stringified value from vars. References with no entry in vars are
// replaced with the empty string. This is the canonical pass.
func Substitute(input string, vars map[string]any) string {
	return varPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := varName(match)
		val, ok := vars[name]
		if !ok {
			return ""
		}
		return StringifyValue(val)
	})
}

// Vars returns the distinct reference names in input, in order of first
// appearance.
func Vars(input string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range varPattern.FindAllStringSubmatch(input, -1) {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Validate reports the reference names in input that have no entry in
// vars. An empty result means the template is fully resolvable.
func Validate(input string, vars map[string]any) []string {
	var missing []string
	for _, name := range Vars(input) {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func varName(match string) string {
	return strings.TrimSpace(match[2 : len(match)-2])
}
