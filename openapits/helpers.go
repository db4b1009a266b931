package openapits

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// collectSchemas returns a sorted list of schema names
func collectSchemas(schemas openapi3.Schemas) []string {
	keys := make([]string, 0, len(schemas))
	for k := range schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedKeys returns the keys of any string-keyed map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isLocalRef(ref string) bool {
	return strings.HasPrefix(ref, "#/")
}

// refToTS turns a local reference such as "#/components/schemas/Pet" into the
// TypeScript indexed access `components["schemas"]["Pet"]`.
func refToTS(ref string) string {
	if !isLocalRef(ref) {
		// Remote references are not followed; the target is unknown here.
		return "unknown"
	}

	var parts []string
	for _, part := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
		if part != "" {
			parts = append(parts, unescapePointer(part))
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}

	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		b.WriteString("[")
		b.WriteString(quote(part))
		b.WriteString("]")
	}
	return b.String()
}

func unescapePointer(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// quote renders a TypeScript string literal.
func quote(s string) string {
	return strconv.Quote(s)
}

// propertyKey renders an object key, quoting it only when required.
func propertyKey(name string) string {
	if identifierPattern.MatchString(name) {
		return name
	}
	return quote(name)
}

func isRequired(schema *openapi3.Schema, name string) bool {
	for _, req := range schema.Required {
		if req == name {
			return true
		}
	}
	return false
}
