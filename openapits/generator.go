package openapits

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
)

// DefaultHeader opens every generated declarations file.
const DefaultHeader = `/**
 * This file was auto-generated by directus-typescript-gen.
 * Do not make direct changes to the file.
 */
`

// GenerateOptions configures base declaration generation.
type GenerateOptions struct {
	// Header replaces DefaultHeader when non-empty.
	Header string
	// SchemaOrder orders components.schemas; unknown names follow sorted.
	SchemaOrder []string
	Logger      *zap.Logger
}

// methodOrder is the order operations are listed within a path item.
var methodOrder = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// GenerateBase converts an OpenAPI document into TypeScript declarations:
// paths, components and operations interfaces.
func GenerateBase(doc *openapi3.T, opts GenerateOptions) (string, error) {
	if doc == nil {
		return "", errors.New("no OpenAPI document provided")
	}
	logger := loggerOrNop(opts.Logger)
	logger.Info("generating base declarations")

	header := opts.Header
	if header == "" {
		header = DefaultHeader
	}

	g := &generator{logger: logger}
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(g.paths(doc))
	b.WriteString("\n")
	b.WriteString(g.components(doc, opts.SchemaOrder))
	b.WriteString("\n")
	b.WriteString(g.operations())

	logger.Info("generated base declarations",
		zap.Int("paths", g.pathCount),
		zap.Int("operations", len(g.ops)),
	)
	return b.String(), nil
}

// generator accumulates operations while paths are rendered.
type generator struct {
	logger    *zap.Logger
	ops       map[string]*openapi3.Operation
	opParams  map[string]openapi3.Parameters
	pathCount int
}

func (g *generator) paths(doc *openapi3.T) string {
	var b strings.Builder
	b.WriteString("export interface paths {\n")

	if doc.Paths != nil {
		pathMap := doc.Paths.Map()
		for _, path := range sortedKeys(pathMap) {
			item := pathMap[path]
			if item == nil {
				continue
			}
			g.pathCount++
			fmt.Fprintf(&b, "  %s: {\n", quote(path))
			for _, method := range methodOrder {
				op := item.GetOperation(strings.ToUpper(method))
				if op == nil {
					continue
				}
				writeDoc(&b, operationDoc(op), "    ")
				params := mergeParameters(item.Parameters, op.Parameters)
				if op.OperationID != "" {
					g.addOperation(op, params)
					fmt.Fprintf(&b, "    %s: operations[%s];\n", method, quote(op.OperationID))
					continue
				}
				fmt.Fprintf(&b, "    %s: %s;\n", method, operationBody(op, params, 2))
			}
			if len(item.Parameters) > 0 {
				fmt.Fprintf(&b, "    parameters: %s;\n", parametersToTS(item.Parameters, 2))
			}
			b.WriteString("  };\n")
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func (g *generator) addOperation(op *openapi3.Operation, params openapi3.Parameters) {
	if g.ops == nil {
		g.ops = make(map[string]*openapi3.Operation)
		g.opParams = make(map[string]openapi3.Parameters)
	}
	if _, dup := g.ops[op.OperationID]; dup {
		g.logger.Warn("duplicate operationId", zap.String("operation_id", op.OperationID))
	}
	g.ops[op.OperationID] = op
	g.opParams[op.OperationID] = params
}

func (g *generator) components(doc *openapi3.T, order []string) string {
	var b strings.Builder
	b.WriteString("export interface components {\n")

	if c := doc.Components; c != nil {
		if len(c.Schemas) > 0 {
			b.WriteString("  schemas: {\n")
			for _, name := range completeOrder(order, c.Schemas) {
				ref := c.Schemas[name]
				if ref != nil && ref.Ref == "" && ref.Value != nil {
					writeDoc(&b, FormatDocumentation(ref.Value), "    ")
				}
				fmt.Fprintf(&b, "    %s: %s;\n", propertyKey(name), SchemaToTS(ref, 2))
			}
			b.WriteString("  };\n")
		}

		if len(c.Responses) > 0 {
			b.WriteString("  responses: {\n")
			for _, name := range sortedKeys(c.Responses) {
				fmt.Fprintf(&b, "    %s: %s;\n", propertyKey(name), responseToTS(c.Responses[name], 2))
			}
			b.WriteString("  };\n")
		}

		if len(c.Parameters) > 0 {
			b.WriteString("  parameters: {\n")
			for _, name := range sortedKeys(c.Parameters) {
				ref := c.Parameters[name]
				if ref != nil && ref.Value != nil {
					writeDoc(&b, ref.Value.Description, "    ")
				}
				fmt.Fprintf(&b, "    %s: %s;\n", propertyKey(name), parameterSchemaToTS(ref, 2))
			}
			b.WriteString("  };\n")
		}

		if len(c.RequestBodies) > 0 {
			b.WriteString("  requestBodies: {\n")
			for _, name := range sortedKeys(c.RequestBodies) {
				fmt.Fprintf(&b, "    %s: %s;\n", propertyKey(name), requestBodyToTS(c.RequestBodies[name], 2))
			}
			b.WriteString("  };\n")
		}

		if len(c.Headers) > 0 {
			b.WriteString("  headers: {\n")
			for _, name := range sortedKeys(c.Headers) {
				fmt.Fprintf(&b, "    %s: %s;\n", propertyKey(name), headerToTS(c.Headers[name], 2))
			}
			b.WriteString("  };\n")
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func (g *generator) operations() string {
	var b strings.Builder
	b.WriteString("export interface operations {\n")
	for _, id := range sortedKeys(g.ops) {
		op := g.ops[id]
		writeDoc(&b, operationDoc(op), "  ")
		fmt.Fprintf(&b, "  %s: %s;\n", propertyKey(id), operationBody(op, g.opParams[id], 1))
	}
	b.WriteString("}\n")
	return b.String()
}

// operationBody renders the parameters, requestBody and responses of an operation.
func operationBody(op *openapi3.Operation, params openapi3.Parameters, indent int) string {
	pad := strings.Repeat("  ", indent+1)
	var b strings.Builder
	b.WriteString("{\n")
	if len(params) > 0 {
		fmt.Fprintf(&b, "%sparameters: %s;\n", pad, parametersToTS(params, indent+1))
	}
	if op.RequestBody != nil {
		optional := "?"
		if op.RequestBody.Value != nil && op.RequestBody.Value.Required {
			optional = ""
		}
		fmt.Fprintf(&b, "%srequestBody%s: %s;\n", pad, optional, requestBodyToTS(op.RequestBody, indent+1))
	}
	b.WriteString(pad + "responses: {\n")
	if op.Responses != nil {
		responses := op.Responses.Map()
		for _, code := range sortedKeys(responses) {
			ref := responses[code]
			if ref != nil && ref.Ref == "" && ref.Value != nil && ref.Value.Description != nil {
				writeDoc(&b, *ref.Value.Description, pad+"  ")
			}
			fmt.Fprintf(&b, "%s  %s: %s;\n", pad, propertyKey(code), responseToTS(ref, indent+2))
		}
	}
	b.WriteString(pad + "};\n")
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString("}")
	return b.String()
}

// parametersToTS groups parameters by location: { query: {...}; path: {...} }.
func parametersToTS(params openapi3.Parameters, indent int) string {
	byLocation := make(map[string][]*openapi3.ParameterRef)
	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		byLocation[ref.Value.In] = append(byLocation[ref.Value.In], ref)
	}
	if len(byLocation) == 0 {
		return "{}"
	}

	pad := strings.Repeat("  ", indent+1)
	var b strings.Builder
	b.WriteString("{\n")
	for _, in := range sortedKeys(byLocation) {
		refs := byLocation[in]
		sort.SliceStable(refs, func(i, j int) bool { return refs[i].Value.Name < refs[j].Value.Name })
		fmt.Fprintf(&b, "%s%s: {\n", pad, propertyKey(in))
		for _, ref := range refs {
			p := ref.Value
			optional := "?"
			if p.Required || p.In == openapi3.ParameterInPath {
				optional = ""
			}
			if ref.Ref == "" {
				writeDoc(&b, p.Description, pad+"  ")
			}
			fmt.Fprintf(&b, "%s  %s%s: %s;\n", pad, propertyKey(p.Name), optional, parameterSchemaToTS(ref, indent+2))
		}
		fmt.Fprintf(&b, "%s};\n", pad)
	}
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString("}")
	return b.String()
}

// parameterSchemaToTS references a component parameter or renders its schema.
func parameterSchemaToTS(ref *openapi3.ParameterRef, indent int) string {
	if ref == nil {
		return "unknown"
	}
	if ref.Ref != "" {
		return refToTS(ref.Ref)
	}
	if ref.Value == nil {
		return "unknown"
	}
	if ref.Value.Schema != nil {
		return SchemaToTS(ref.Value.Schema, indent)
	}
	for _, mediaType := range sortedKeys(ref.Value.Content) {
		if mt := ref.Value.Content[mediaType]; mt != nil {
			return SchemaToTS(mt.Schema, indent)
		}
	}
	return "unknown"
}

func requestBodyToTS(ref *openapi3.RequestBodyRef, indent int) string {
	if ref == nil {
		return "unknown"
	}
	if ref.Ref != "" {
		return refToTS(ref.Ref)
	}
	if ref.Value == nil {
		return "unknown"
	}
	return contentToTS(ref.Value.Content, nil, indent)
}

func responseToTS(ref *openapi3.ResponseRef, indent int) string {
	if ref == nil {
		return "unknown"
	}
	if ref.Ref != "" {
		return refToTS(ref.Ref)
	}
	if ref.Value == nil {
		return "unknown"
	}
	return contentToTS(ref.Value.Content, ref.Value.Headers, indent)
}

func headerToTS(ref *openapi3.HeaderRef, indent int) string {
	if ref == nil {
		return "unknown"
	}
	if ref.Ref != "" {
		return refToTS(ref.Ref)
	}
	if ref.Value == nil {
		return "unknown"
	}
	return parameterSchemaToTS(&openapi3.ParameterRef{Value: &ref.Value.Parameter}, indent)
}

// contentToTS renders { headers: {...}; content: { "<media type>": T } }.
func contentToTS(content openapi3.Content, headers openapi3.Headers, indent int) string {
	if len(content) == 0 && len(headers) == 0 {
		return "unknown"
	}

	pad := strings.Repeat("  ", indent+1)
	var b strings.Builder
	b.WriteString("{\n")
	if len(headers) > 0 {
		fmt.Fprintf(&b, "%sheaders: {\n", pad)
		for _, name := range sortedKeys(headers) {
			fmt.Fprintf(&b, "%s  %s?: %s;\n", pad, propertyKey(name), headerToTS(headers[name], indent+2))
		}
		fmt.Fprintf(&b, "%s};\n", pad)
	}
	if len(content) > 0 {
		fmt.Fprintf(&b, "%scontent: {\n", pad)
		for _, mediaType := range sortedKeys(content) {
			var schema *openapi3.SchemaRef
			if mt := content[mediaType]; mt != nil {
				schema = mt.Schema
			}
			fmt.Fprintf(&b, "%s  %s: %s;\n", pad, quote(mediaType), SchemaToTS(schema, indent+2))
		}
		fmt.Fprintf(&b, "%s};\n", pad)
	}
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString("}")
	return b.String()
}

// mergeParameters lets operation parameters override path-level ones with the
// same name and location.
func mergeParameters(pathParams, opParams openapi3.Parameters) openapi3.Parameters {
	if len(pathParams) == 0 {
		return opParams
	}
	merged := make(openapi3.Parameters, 0, len(pathParams)+len(opParams))
	merged = append(merged, opParams...)
	for _, p := range pathParams {
		if p == nil || p.Value == nil {
			continue
		}
		if opParams.GetByInAndName(p.Value.In, p.Value.Name) == nil {
			merged = append(merged, p)
		}
	}
	return merged
}

func operationDoc(op *openapi3.Operation) string {
	var doc strings.Builder
	if op.Summary != "" {
		doc.WriteString(op.Summary + "\n")
	}
	if op.Description != "" && op.Description != op.Summary {
		doc.WriteString(strings.TrimSpace(op.Description) + "\n")
	}
	if op.Deprecated {
		doc.WriteString("@deprecated\n")
	}
	return doc.String()
}
