package openapits

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// registryPath returns the document path of the schema registry for a version.
func registryPath(version OpenAPIVersion) []string {
	if IsSwaggerVersion(version) {
		return []string{"definitions"}
	}
	return []string{"components", "schemas"}
}

// schemaKeyOrder returns the schema registry keys in the order they appear in
// the raw document. A nil slice with a nil error means the registry is absent.
func schemaKeyOrder(data []byte, path []string) ([]string, error) {
	if isJSON(data) {
		return jsonKeyOrder(data, path)
	}
	return yamlKeyOrder(data, path)
}

// jsonKeyOrder walks the JSON token stream down path and collects the keys of
// the object found there.
func jsonKeyOrder(data []byte, path []string) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	depth := 0
	for {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		if depth == len(path) {
			break
		}

		found := false
		for dec.More() {
			key, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			if key == path[depth] {
				found = true
				break
			}
			if err := skipValue(dec); err != nil {
				return nil, err
			}
		}
		if !found {
			return nil, nil
		}

		// The target may not be an object; the loader reports that later.
		if !nextIsObject(dec, data) {
			return nil, nil
		}
		depth++
	}

	var keys []string
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read JSON token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q in JSON document, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("failed to read JSON key: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

// nextIsObject peeks at the next non-space byte of the input.
func nextIsObject(dec *json.Decoder, data []byte) bool {
	offset := int(dec.InputOffset())
	for offset < len(data) {
		switch data[offset] {
		case ' ', '\t', '\r', '\n', ':':
			offset++
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// skipValue consumes one complete JSON value.
func skipValue(dec *json.Decoder) error {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to skip JSON value: %w", err)
	}
	return nil
}

// yamlKeyOrder finds the mapping at path in a YAML node tree.
func yamlKeyOrder(data []byte, path []string) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML document: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}

	node := root.Content[0]
	for _, segment := range path {
		node = mappingValue(node, segment)
		if node == nil {
			return nil, nil
		}
	}
	if node.Kind != yaml.MappingNode {
		return nil, nil
	}

	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
