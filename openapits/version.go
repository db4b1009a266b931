package openapits

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// OpenAPIVersion represents supported OpenAPI specification versions
type OpenAPIVersion string

const (
	OpenAPIV2  OpenAPIVersion = "2.0"
	OpenAPIV3  OpenAPIVersion = "3.0"
	OpenAPIV31 OpenAPIVersion = "3.1"
)

// versionProbe holds just enough of a document to tell its version apart.
type versionProbe struct {
	Swagger string `json:"swagger" yaml:"swagger"` // OpenAPI 2.0
	OpenAPI string `json:"openapi" yaml:"openapi"` // OpenAPI 3.x
}

// DetectOpenAPIVersion detects the OpenAPI version from raw JSON or YAML data
func DetectOpenAPIVersion(data []byte) (OpenAPIVersion, error) {
	var probe versionProbe

	// Try JSON first, then fallback to YAML
	jsonErr := json.Unmarshal(data, &probe)
	if jsonErr != nil {
		if yamlErr := yaml.Unmarshal(data, &probe); yamlErr != nil {
			return "", fmt.Errorf("failed to parse document as JSON (%v) or YAML (%w)", jsonErr, yamlErr)
		}
	}

	switch {
	case probe.Swagger == "2.0":
		return OpenAPIV2, nil
	case strings.HasPrefix(probe.OpenAPI, "3.0"):
		return OpenAPIV3, nil
	case strings.HasPrefix(probe.OpenAPI, "3.1"):
		return OpenAPIV31, nil
	}

	return "", fmt.Errorf("unsupported OpenAPI version: swagger=%q, openapi=%q", probe.Swagger, probe.OpenAPI)
}

// IsSwaggerVersion checks if the given version is OpenAPI 2.0
func IsSwaggerVersion(version OpenAPIVersion) bool {
	return version == OpenAPIV2
}

// isJSON reports whether data looks like a JSON document rather than YAML.
func isJSON(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{") && json.Valid(data)
}
