package openapits

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

// Document joins the base declarations and the collection declarations. The
// combined type refers to the two before it, so the order is fixed.
func Document(base string, decls Declarations) string {
	return strings.Join(append([]string{base}, decls.Blocks()...), "\n")
}

// WriteDocument writes the generated declarations to path with a single write.
func WriteDocument(path, content string) error {
	return writeFile(path, []byte(content))
}

// WriteSpecFile writes the raw spec pretty-printed with a two-space indent.
// A .yaml or .yml extension selects YAML instead of JSON.
func WriteSpecFile(path string, raw []byte) error {
	var (
		out []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err = specYAML(raw)
	default:
		out, err = specJSON(raw)
	}
	if err != nil {
		return err
	}
	return writeFile(path, out)
}

// specJSON re-indents the document without reordering its keys.
func specJSON(raw []byte) ([]byte, error) {
	if !isJSON(raw) {
		// YAML input has no JSON text to indent; keys come out sorted.
		converted, err := k8syaml.YAMLToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to convert spec to JSON: %w", err)
		}
		raw = converted
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent spec JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// specYAML converts the document to block-style YAML, keeping key order.
func specYAML(raw []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("failed to parse spec: %w", err)
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("failed to encode spec as YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode spec as YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// clearStyle drops the flow and quoting styles JSON input carries into the
// node tree so the encoder picks block style.
func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}

func writeFile(path string, data []byte) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	if dir := filepath.Dir(abs); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", abs, err)
	}
	return nil
}
