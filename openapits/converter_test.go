package openapits

import (
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
)

func TestConvertTypeToTS(t *testing.T) {
	tests := []struct {
		name     string
		oapiType string
		expected string
	}{
		{"String", "string", "string"},
		{"Integer", "integer", "number"},
		{"Number", "number", "number"},
		{"Boolean", "boolean", "boolean"},
		{"Null", "null", "null"},
		{"Array", "array", "unknown[]"},
		{"Object", "object", "{ [key: string]: unknown }"},
		{"Unknown", "unknown", "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ConvertTypeToTS(tc.oapiType))
		})
	}
}

func TestSchemaToTS(t *testing.T) {
	ref := func(name string) *openapi3.SchemaRef {
		return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
	}
	value := func(s *openapi3.Schema) *openapi3.SchemaRef {
		return openapi3.NewSchemaRef("", s)
	}

	tests := []struct {
		name     string
		schema   *openapi3.SchemaRef
		expected string
	}{
		{
			name:     "nil",
			schema:   nil,
			expected: "unknown",
		},
		{
			name:     "reference",
			schema:   ref("ItemsArticles"),
			expected: `components["schemas"]["ItemsArticles"]`,
		},
		{
			name:     "string",
			schema:   value(openapi3.NewStringSchema()),
			expected: "string",
		},
		{
			name:     "nullable integer",
			schema:   value(openapi3.NewIntegerSchema().WithNullable()),
			expected: "number | null",
		},
		{
			name:     "string enum",
			schema:   value(openapi3.NewStringSchema().WithEnum("draft", "published")),
			expected: `"draft" | "published"`,
		},
		{
			name:     "mixed enum",
			schema:   value(&openapi3.Schema{Enum: []any{1.0, true, nil}}),
			expected: "1 | true | null",
		},
		{
			name:     "array",
			schema:   value(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())),
			expected: "string[]",
		},
		{
			name: "array of union",
			schema: value(openapi3.NewArraySchema().WithItems(
				openapi3.NewOneOfSchema(openapi3.NewIntegerSchema(), openapi3.NewStringSchema()),
			)),
			expected: "(number | string)[]",
		},
		{
			name:     "array without items",
			schema:   value(openapi3.NewArraySchema()),
			expected: "unknown[]",
		},
		{
			name: "nullable relation",
			schema: value(&openapi3.Schema{
				Nullable: true,
				OneOf:    openapi3.SchemaRefs{value(openapi3.NewIntegerSchema()), ref("ItemsAuthors")},
			}),
			expected: `(number | components["schemas"]["ItemsAuthors"]) | null`,
		},
		{
			name: "anyOf",
			schema: value(&openapi3.Schema{
				AnyOf: openapi3.SchemaRefs{value(openapi3.NewStringSchema()), value(openapi3.NewBoolSchema())},
			}),
			expected: "string | boolean",
		},
		{
			name: "allOf",
			schema: value(&openapi3.Schema{
				AllOf: openapi3.SchemaRefs{ref("A"), ref("B")},
			}),
			expected: `components["schemas"]["A"] & components["schemas"]["B"]`,
		},
		{
			name:     "empty object",
			schema:   value(openapi3.NewObjectSchema()),
			expected: "{ [key: string]: unknown }",
		},
		{
			name:     "map",
			schema:   value(openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema())),
			expected: "{ [key: string]: string }",
		},
		{
			name: "object",
			schema: value(openapi3.NewObjectSchema().
				WithProperty("name", openapi3.NewStringSchema()).
				WithProperty("id", openapi3.NewIntegerSchema()).
				WithRequired([]string{"id"})),
			expected: "{\n  id: number;\n  name?: string;\n}",
		},
		{
			name: "quoted property keys",
			schema: value(openapi3.NewObjectSchema().
				WithProperty("first-name", openapi3.NewStringSchema())),
			expected: "{\n  \"first-name\"?: string;\n}",
		},
		{
			name: "documented property",
			schema: value(openapi3.NewObjectSchema().
				WithProperty("email", &openapi3.Schema{
					Type:        &openapi3.Types{openapi3.TypeString},
					Description: "Unique email address for the user.",
				})),
			expected: "{\n  /** Unique email address for the user. */\n  email?: string;\n}",
		},
		{
			name:     "type array",
			schema:   value(&openapi3.Schema{Type: &openapi3.Types{openapi3.TypeString, openapi3.TypeNull}}),
			expected: "string | null",
		},
		{
			name:     "untyped properties",
			schema:   value(&openapi3.Schema{Properties: openapi3.Schemas{"a": value(openapi3.NewBoolSchema())}}),
			expected: "{\n  a?: boolean;\n}",
		},
		{
			name:     "untyped",
			schema:   value(&openapi3.Schema{}),
			expected: "unknown",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SchemaToTS(tc.schema, 0))
		})
	}
}

func TestSchemaToTSIndent(t *testing.T) {
	schema := openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("nested", openapi3.NewObjectSchema().WithProperty("x", openapi3.NewStringSchema())))

	expected := strings.Join([]string{
		"{",
		"      nested?: {",
		"        x?: string;",
		"      };",
		"    }",
	}, "\n")
	assert.Equal(t, expected, SchemaToTS(schema, 2))
}

func TestWrapUnion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"string", "string"},
		{"string | number", "(string | number)"},
		{"A & B", "(A & B)"},
		{"{ a: string | number }", "{ a: string | number }"},
		{`"a|b"`, `"a|b"`},
		{`"a\"|" | "b"`, `("a\"|" | "b")`},
		{`components["schemas"]["A|B"]`, `components["schemas"]["A|B"]`},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, wrapUnion(tc.input))
		})
	}
}

func TestFormatDocumentation(t *testing.T) {
	tests := []struct {
		name     string
		schema   *openapi3.Schema
		expected string
	}{
		{
			name:     "empty",
			schema:   &openapi3.Schema{},
			expected: "",
		},
		{
			name:     "title without description",
			schema:   &openapi3.Schema{Title: "Article"},
			expected: "Article\n",
		},
		{
			name:     "description wins over title",
			schema:   &openapi3.Schema{Title: "Article", Description: "A blog article."},
			expected: "A blog article.\n",
		},
		{
			name: "everything",
			schema: &openapi3.Schema{
				Description: "First line\nSecond line  ",
				Format:      "date-time",
				Default:     "now",
				Deprecated:  true,
			},
			expected: "First line\nSecond line\nFormat: date-time\n@default \"now\"\n@deprecated\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatDocumentation(tc.schema))
		})
	}
}

func TestWriteDoc(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		pad      string
		expected string
	}{
		{"empty", "", "  ", ""},
		{"single line", "hello\n", "  ", "  /** hello */\n"},
		{"multi line", "a\n\nb\n", "", "/**\n * a\n *\n * b\n */\n"},
		{"comment terminator", "a */ b", "", "/** a *\\/ b */\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b strings.Builder
			writeDoc(&b, tc.doc, tc.pad)
			assert.Equal(t, tc.expected, b.String())
		})
	}
}

func TestRefToTS(t *testing.T) {
	tests := []struct {
		ref      string
		expected string
	}{
		{"#/components/schemas/Users", `components["schemas"]["Users"]`},
		{"#/components/parameters/Fields", `components["parameters"]["Fields"]`},
		{"#/components/schemas/a~1b~0c", `components["schemas"]["a/b~c"]`},
		{"other.json#/components/schemas/X", "unknown"},
		{"#/", "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.ref, func(t *testing.T) {
			assert.Equal(t, tc.expected, refToTS(tc.ref))
		})
	}
}

func TestPropertyKey(t *testing.T) {
	assert.Equal(t, "id", propertyKey("id"))
	assert.Equal(t, "$meta", propertyKey("$meta"))
	assert.Equal(t, `"first-name"`, propertyKey("first-name"))
	assert.Equal(t, `"200"`, propertyKey("200"))
	assert.Equal(t, `"x-collection"`, propertyKey("x-collection"))
}
