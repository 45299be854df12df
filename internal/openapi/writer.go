// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ngxspec/ngxspec/pkg/types"
)

// Writer handles writing OpenAPI documents to various outputs. A document
// is either a *types.OpenAPI built from sources or a *yaml.Node read from
// an existing file.
type Writer struct {
	// Indent specifies the indentation for JSON output (default: 2 spaces)
	Indent int
}

// NewWriter creates a new Writer with default settings.
func NewWriter() *Writer {
	return &Writer{
		Indent: 2,
	}
}

// FormatFor infers "yaml" or "json" from a file extension. YAML is the
// default.
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

// WriteYAML writes a document as YAML to the given writer.
func (w *Writer) WriteYAML(doc any, out io.Writer) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// WriteJSON writes a document as JSON to the given writer.
func (w *Writer) WriteJSON(doc any, out io.Writer) error {
	if node, ok := doc.(*yaml.Node); ok {
		v, err := nodeValue(node)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		doc = v
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", strings.Repeat(" ", w.Indent))

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// Write writes doc in format ("yaml" or "json").
func (w *Writer) Write(doc any, out io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return w.WriteYAML(doc, out)
	case "json":
		return w.WriteJSON(doc, out)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteFile writes a document to a file.
// If format is empty, it is inferred from the file extension.
func (w *Writer) WriteFile(doc any, path string, format string) error {
	if format == "" {
		format = FormatFor(path)
	}

	// render first so a failed encode leaves the old file in place
	var buf bytes.Buffer
	if err := w.Write(doc, &buf, format); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ToYAML returns the YAML representation of a document as a string.
func (w *Writer) ToYAML(doc any) (string, error) {
	var buf strings.Builder
	if err := w.WriteYAML(doc, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToJSON returns the JSON representation of a document as a string.
func (w *Writer) ToJSON(doc any) (string, error) {
	var buf strings.Builder
	if err := w.WriteJSON(doc, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReadFile reads an OpenAPI document from a file.
// The format is inferred from the file extension.
func ReadFile(path string) (*types.OpenAPI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc types.OpenAPI
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		// Try YAML first, then JSON
		if err := yaml.Unmarshal(data, &doc); err != nil {
			if err := json.Unmarshal(data, &doc); err != nil {
				return nil, fmt.Errorf("failed to parse file as YAML or JSON")
			}
		}
	}

	return &doc, nil
}

// ReadNode reads a YAML or JSON document without binding it to
// types.OpenAPI, so fields this tool does not model survive a rewrite.
func ReadNode(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse %s: not an OpenAPI document", path)
	}
	return &node, nil
}

// nodeValue converts a node for JSON encoding. Mapping keys are always
// strings, so response codes like 200 stay object keys.
func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
