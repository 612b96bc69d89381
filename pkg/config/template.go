package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full includes every setting with its documentation.
	// If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Full {
		return generateFullTemplate(opts)
	}
	return generateMinimalTemplate(opts)
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate(opts TemplateOptions) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`# armakit configuration
# See: https://github.com/armakit/armakit

# Workspace layers in priority order (lower rank wins path conflicts)
layers:
  - name: project
    path: .
    rank: 0

# Macros defined before every run
# defines:
#   DEBUG: "1"

# Entry files to preprocess (virtual paths or glob patterns)
# entries:
#   - "addons/*/config.cpp"

# Entry patterns to skip
# ignore:
#   - "**/legacy/**"
`)

	if opts.Format == "json" {
		return templateToJSON()
	}

	return buf.Bytes(), nil
}

// generateFullTemplate creates a full template with every setting
// documented.
func generateFullTemplate(opts TemplateOptions) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`# armakit configuration - Full Template
# See: https://github.com/armakit/armakit
#
# This template includes all available settings with their defaults.
# Uncomment and modify settings as needed.

# Workspace layers in priority order. Each layer is a root directory or
# storage URL; lower ranks win path conflicts.
layers:
  - name: project
    path: .
    rank: 0
  # - name: dependencies
  #   path: ./deps
  #   rank: 1

# Macros defined before every run, as if written at the top of each
# entry file.
defines: {}
#  DEBUG: "1"
#  VERSION: "3"

# Entry files to preprocess (virtual paths or glob patterns).
# Empty selects every preprocessable file in the top layer.
entries: []

# Entry patterns to skip (glob patterns)
ignore: []

# Maximum nested macro expansion depth (0 = engine default)
max_depth: 0

# Optional lowest-priority root, typically a game install directory
# system_mount: "C:/Program Files/Game"
enable_system_mount: false
`)

	if opts.Format == "json" {
		return templateToJSON()
	}

	return buf.Bytes(), nil
}

// templateToJSON renders the template defaults as JSON.
func templateToJSON() ([]byte, error) {
	cfg := map[string]any{
		"layers": []map[string]any{
			{"name": "project", "path": ".", "rank": 0},
		},
		"defines":             map[string]any{},
		"entries":             []string{},
		"ignore":              []string{},
		"max_depth":           0,
		"enable_system_mount": false,
	}

	jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}

	return jsonBytes, nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# armakit configuration
# See: https://github.com/armakit/armakit`
}
