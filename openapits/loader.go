package openapits

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	k8syaml "sigs.k8s.io/yaml"
)

// ErrNoSchemaRegistry is returned when a document has no components.schemas.
var ErrNoSchemaRegistry = errors.New("OpenAPI document has no schema registry (components.schemas)")

// LoadOptions configures the loading process
type LoadOptions struct {
	// Validate runs kin-openapi document validation after parsing.
	Validate bool
	Logger   *zap.Logger
}

// Spec is a parsed OpenAPI document together with what Go maps lose on the way.
type Spec struct {
	Doc     *openapi3.T
	Version OpenAPIVersion
	// SchemaOrder lists the schema registry keys in document order.
	SchemaOrder []string
	// Raw is the document exactly as it was received.
	Raw []byte
}

// LoadSpecFile reads an OpenAPI document from disk and loads it.
func LoadSpecFile(path string, opts LoadOptions) (*Spec, error) {
	logger := loggerOrNop(opts.Logger)
	logger.Info("reading OpenAPI schema file", zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	return LoadSpec(data, opts)
}

// LoadSpec parses, optionally validates, and indexes an OpenAPI document.
func LoadSpec(data []byte, opts LoadOptions) (*Spec, error) {
	logger := loggerOrNop(opts.Logger)

	version, err := DetectOpenAPIVersion(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("detected OpenAPI version", zap.String("version", string(version)))

	var doc *openapi3.T
	if IsSwaggerVersion(version) {
		doc, err = convertSwagger(data)
	} else {
		logger.Debug("parsing OpenAPI schema")
		loader := openapi3.NewLoader()
		doc, err = loader.LoadFromData(data)
		if err == nil && opts.Validate {
			logger.Info("validating OpenAPI document")
			if verr := doc.Validate(loader.Context); verr != nil {
				err = fmt.Errorf("schema validation failed: %w", verr)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}

	if doc.Components == nil || doc.Components.Schemas == nil {
		return nil, ErrNoSchemaRegistry
	}

	order, err := schemaKeyOrder(data, registryPath(version))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema order: %w", err)
	}

	spec := &Spec{
		Doc:         doc,
		Version:     version,
		SchemaOrder: completeOrder(order, doc.Components.Schemas),
		Raw:         data,
	}
	logger.Info("loaded OpenAPI schema",
		zap.String("version", string(version)),
		zap.Int("schemas", len(spec.SchemaOrder)),
	)
	return spec, nil
}

// convertSwagger upgrades an OpenAPI 2.0 document to 3.0.
func convertSwagger(data []byte) (*openapi3.T, error) {
	var doc2 openapi2.T
	if isJSON(data) {
		if err := json.Unmarshal(data, &doc2); err != nil {
			return nil, fmt.Errorf("failed to parse OpenAPI 2.0 document: %w", err)
		}
	} else {
		// openapi2.T only knows JSON.
		asJSON, err := k8syaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse OpenAPI 2.0 document: %w", err)
		}
		if err := json.Unmarshal(asJSON, &doc2); err != nil {
			return nil, fmt.Errorf("failed to parse OpenAPI 2.0 document: %w", err)
		}
	}

	doc, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, fmt.Errorf("failed to convert OpenAPI 2.0 document: %w", err)
	}
	return doc, nil
}

// completeOrder keeps the document order and appends, sorted, any registry
// key the raw scan did not see.
func completeOrder(order []string, schemas openapi3.Schemas) []string {
	seen := make(map[string]bool, len(order))
	result := make([]string, 0, len(schemas))
	for _, key := range order {
		if _, ok := schemas[key]; ok && !seen[key] {
			seen[key] = true
			result = append(result, key)
		}
	}
	for _, key := range collectSchemas(schemas) {
		if !seen[key] {
			result = append(result, key)
		}
	}
	return result
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
