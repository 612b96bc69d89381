package configloader

import (
	"fmt"
	"path"
	"strings"

	"github.com/armakit/armakit/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "layers[0].path").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// knownFormats lists valid output format values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText:    true,
	config.FormatTable:   true,
	config.FormatJSON:    true,
	config.FormatSARIF:   true,
	config.FormatSummary: true,
}

// knownPathFormats lists valid path format values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownPathFormats = map[config.PathFormat]bool{
	config.PathFormatVirtual: true,
	config.PathFormatLayered: true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := &ValidationResult{}

	// Validate format
	if cfg.Format != "" && !knownFormats[cfg.Format] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "format",
			Value:   cfg.Format,
			Message: fmt.Sprintf("invalid format %q; must be one of: text, table, json, sarif, summary", cfg.Format),
		})
	}

	// Validate path_format
	if cfg.PathFormat != "" && !knownPathFormats[cfg.PathFormat] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "path_format",
			Value:   cfg.PathFormat,
			Message: fmt.Sprintf("invalid path format %q; must be one of: virtual, layered", cfg.PathFormat),
		})
	}

	// Validate jobs
	if cfg.Jobs < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "jobs",
			Value:   cfg.Jobs,
			Message: "jobs must be >= 0 (0 means auto)",
		})
	}

	// Validate max_depth
	if cfg.MaxDepth < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "max_depth",
			Value:   cfg.MaxDepth,
			Message: "max_depth must be >= 0 (0 means engine default)",
		})
	}

	// Validate layers
	validateLayers(cfg, result)

	// Validate macro names in defines
	validateDefines(cfg, result)

	// Validate glob patterns
	validatePatterns(cfg.Entries, "entries", result)
	validatePatterns(cfg.Ignore, "ignore", result)

	return result
}

// validateLayers checks layer definitions for errors and warnings.
func validateLayers(cfg *config.Config, result *ValidationResult) {
	seenNames := make(map[string]int, len(cfg.Layers))
	seenRanks := make(map[int]string, len(cfg.Layers))

	for i, layer := range cfg.Layers {
		if layer.Name == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("layers[%d].name", i),
				Value:   layer.Name,
				Message: "layer name must not be empty",
			})
		}
		if layer.Path == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("layers[%d].path", i),
				Value:   layer.Path,
				Message: "layer path must not be empty",
			})
		}

		if layer.Name != "" {
			if prev, dup := seenNames[layer.Name]; dup {
				result.Errors = append(result.Errors, ValidationError{
					Field:   fmt.Sprintf("layers[%d].name", i),
					Value:   layer.Name,
					Message: fmt.Sprintf("duplicate layer name %q (also used by layers[%d])", layer.Name, prev),
				})
			} else {
				seenNames[layer.Name] = i
			}
		}

		if other, dup := seenRanks[layer.Rank]; dup {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("layers[%d].rank", i),
				Value:   layer.Rank,
				Message: fmt.Sprintf("layers %q and %q share rank %d; ranks must be unique", other, layer.Name, layer.Rank),
			})
		} else {
			seenRanks[layer.Rank] = layer.Name
		}
	}
}

// validateDefines checks that seeded macro names are valid identifiers.
func validateDefines(cfg *config.Config, result *ValidationResult) {
	for name := range cfg.Defines {
		if !isValidMacroName(name) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "defines." + name,
				Value:   name,
				Message: fmt.Sprintf("invalid macro name %q; must start with a letter or underscore and contain only letters, digits, and underscores", name),
			})
		}
	}
}

// isValidMacroName reports whether name is a valid preprocessor identifier.
func isValidMacroName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// validatePatterns checks that glob patterns are well formed.
func validatePatterns(patterns []string, field string, result *ValidationResult) {
	for i, pattern := range patterns {
		// Patterns match against slash-normalized virtual paths.
		normalized := strings.ReplaceAll(pattern, `\`, "/")

		// path.Match returns an error only for malformed patterns
		_, err := path.Match(normalized, "")
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	// Add file path to all errors and warnings
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidFormat returns true if the format is valid.
func IsValidFormat(f config.OutputFormat) bool {
	return knownFormats[f]
}

// IsValidPathFormat returns true if the path format is valid.
func IsValidPathFormat(f config.PathFormat) bool {
	return knownPathFormats[f]
}
