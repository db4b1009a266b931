package openapits

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ConvertTypeToTS maps a primitive OpenAPI type to a TypeScript type
func ConvertTypeToTS(oapiType string) string {
	switch oapiType {
	case openapi3.TypeString:
		return "string"
	case openapi3.TypeInteger, openapi3.TypeNumber:
		return "number"
	case openapi3.TypeBoolean:
		return "boolean"
	case openapi3.TypeNull:
		return "null"
	case openapi3.TypeArray:
		return "unknown[]"
	case openapi3.TypeObject:
		return "{ [key: string]: unknown }"
	default:
		return "unknown"
	}
}

// SchemaToTS renders a schema reference as a TypeScript type expression.
// Multi-line results are indented for a position nested indent levels deep.
func SchemaToTS(ref *openapi3.SchemaRef, indent int) string {
	if ref == nil {
		return "unknown"
	}
	if ref.Ref != "" {
		return refToTS(ref.Ref)
	}
	if ref.Value == nil {
		return "unknown"
	}
	return schemaValueToTS(ref.Value, indent)
}

func schemaValueToTS(schema *openapi3.Schema, indent int) string {
	var tsType string

	switch {
	case len(schema.Enum) > 0:
		tsType = enumToTS(schema.Enum)
	case len(schema.OneOf) > 0:
		tsType = composeTS(schema.OneOf, " | ", indent)
	case len(schema.AnyOf) > 0:
		tsType = composeTS(schema.AnyOf, " | ", indent)
	case len(schema.AllOf) > 0:
		tsType = composeTS(schema.AllOf, " & ", indent)
		if len(schema.Properties) > 0 {
			tsType += " & " + objectToTS(schema, indent)
		}
	default:
		tsType = typedToTS(schema, indent)
	}

	if schema.Nullable && tsType != "null" && !strings.HasSuffix(tsType, "| null") {
		tsType = wrapUnion(tsType) + " | null"
	}
	return tsType
}

// typedToTS handles schemas driven by their type keyword. OpenAPI 3.1 type
// arrays become unions.
func typedToTS(schema *openapi3.Schema, indent int) string {
	var types []string
	if schema.Type != nil {
		types = schema.Type.Slice()
	}

	if len(types) == 0 {
		if len(schema.Properties) > 0 || schema.AdditionalProperties.Has != nil || schema.AdditionalProperties.Schema != nil {
			return objectToTS(schema, indent)
		}
		if schema.Items != nil {
			return arrayToTS(schema, indent)
		}
		return "unknown"
	}

	rendered := make([]string, 0, len(types))
	for _, t := range types {
		switch t {
		case openapi3.TypeArray:
			rendered = append(rendered, arrayToTS(schema, indent))
		case openapi3.TypeObject:
			rendered = append(rendered, objectToTS(schema, indent))
		default:
			rendered = append(rendered, ConvertTypeToTS(t))
		}
	}
	return strings.Join(rendered, " | ")
}

func arrayToTS(schema *openapi3.Schema, indent int) string {
	if schema.Items == nil {
		return "unknown[]"
	}
	return wrapUnion(SchemaToTS(schema.Items, indent)) + "[]"
}

func objectToTS(schema *openapi3.Schema, indent int) string {
	additional := additionalToTS(schema, indent+1)
	if len(schema.Properties) == 0 {
		if additional == "" {
			return "{ [key: string]: unknown }"
		}
		return "{ " + additional + " }"
	}

	pad := strings.Repeat("  ", indent+1)
	var b strings.Builder
	b.WriteString("{\n")
	for _, name := range sortedKeys(schema.Properties) {
		prop := schema.Properties[name]
		if prop != nil && prop.Ref == "" && prop.Value != nil {
			writeDoc(&b, FormatDocumentation(prop.Value), pad)
		}
		optional := "?"
		if isRequired(schema, name) {
			optional = ""
		}
		fmt.Fprintf(&b, "%s%s%s: %s;\n", pad, propertyKey(name), optional, SchemaToTS(prop, indent+1))
	}
	if additional != "" {
		fmt.Fprintf(&b, "%s%s;\n", pad, additional)
	}
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString("}")
	return b.String()
}

// additionalToTS renders the index signature for additionalProperties, or ""
// when the schema does not allow extra keys.
func additionalToTS(schema *openapi3.Schema, indent int) string {
	ap := schema.AdditionalProperties
	switch {
	case ap.Schema != nil:
		return "[key: string]: " + SchemaToTS(ap.Schema, indent)
	case ap.Has != nil && *ap.Has:
		return "[key: string]: unknown"
	}
	return ""
}

func composeTS(refs openapi3.SchemaRefs, sep string, indent int) string {
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, wrapUnion(SchemaToTS(ref, indent)))
	}
	return strings.Join(parts, sep)
}

func enumToTS(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		switch value := v.(type) {
		case string:
			parts = append(parts, quote(value))
		case nil:
			parts = append(parts, "null")
		default:
			encoded, err := json.Marshal(value)
			if err != nil {
				parts = append(parts, "unknown")
				continue
			}
			parts = append(parts, string(encoded))
		}
	}
	return strings.Join(parts, " | ")
}

// wrapUnion parenthesises top-level unions and intersections.
func wrapUnion(tsType string) string {
	depth := 0
	inString, escaped := false, false
	for _, r := range tsType {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		case '|', '&':
			if depth == 0 {
				return "(" + tsType + ")"
			}
		}
	}
	return tsType
}

// FormatDocumentation generates JSDoc lines (without comment markers) for a schema
func FormatDocumentation(schema *openapi3.Schema) string {
	var doc strings.Builder

	if schema.Title != "" && schema.Description == "" {
		doc.WriteString(schema.Title + "\n")
	}

	if schema.Description != "" {
		for _, line := range strings.Split(strings.TrimSpace(schema.Description), "\n") {
			doc.WriteString(strings.TrimRight(line, " ") + "\n")
		}
	}

	if schema.Format != "" {
		doc.WriteString("Format: " + schema.Format + "\n")
	}

	if schema.Default != nil {
		if encoded, err := json.Marshal(schema.Default); err == nil {
			doc.WriteString("@default " + string(encoded) + "\n")
		}
	}

	if schema.Deprecated {
		doc.WriteString("@deprecated\n")
	}

	return doc.String()
}

// writeDoc renders documentation lines as a JSDoc block at the given padding.
func writeDoc(b *strings.Builder, doc string, pad string) {
	if doc == "" {
		return
	}
	lines := strings.Split(strings.TrimSuffix(doc, "\n"), "\n")
	if len(lines) == 1 {
		fmt.Fprintf(b, "%s/** %s */\n", pad, escapeComment(lines[0]))
		return
	}
	fmt.Fprintf(b, "%s/**\n", pad)
	for _, line := range lines {
		if line == "" {
			fmt.Fprintf(b, "%s *\n", pad)
			continue
		}
		fmt.Fprintf(b, "%s * %s\n", pad, escapeComment(line))
	}
	fmt.Fprintf(b, "%s */\n", pad)
}

func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}
