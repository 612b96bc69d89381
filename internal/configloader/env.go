package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/armakit/armakit/pkg/config"
)

// envVarPrefix is the prefix for all armakit environment variables.
const envVarPrefix = "ARMAKIT_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
	envTypeMap
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FORMAT":              {field: "format", typ: envTypeString},
	"PATH_FORMAT":         {field: "path_format", typ: envTypeString},
	"OUTPUT":              {field: "output", typ: envTypeString},
	"SYSTEM_MOUNT":        {field: "system_mount", typ: envTypeString},
	"JOBS":                {field: "jobs", typ: envTypeInt},
	"MAX_DEPTH":           {field: "max_depth", typ: envTypeInt},
	"STRICT":              {field: "strict", typ: envTypeBool},
	"ENABLE_SYSTEM_MOUNT": {field: "enable_system_mount", typ: envTypeBool},
	"ENTRIES":             {field: "entries", typ: envTypeSlice},
	"IGNORE":              {field: "ignore", typ: envTypeSlice},
	"DEFINES":             {field: "defines", typ: envTypeMap},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with ARMAKIT_ (e.g., ARMAKIT_FORMAT).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		parts := parseSliceValue(value)
		return setSliceField(cfg, mapping.field, parts)
	case envTypeMap:
		pairs, err := parseMapValue(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", envVar, err)
		}
		return setMapField(cfg, mapping.field, pairs)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseMapValue parses comma-separated NAME=VALUE pairs. A bare NAME
// defines the macro with an empty body, matching -DNAME on the CLI.
func parseMapValue(value string) (map[string]string, error) {
	result := make(map[string]string)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, body, _ := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty macro name in %q", part)
		}
		result[name] = body
	}
	return result, nil
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "path_format":
		cfg.PathFormat = config.PathFormat(value)
	case "output":
		cfg.Output = value
	case "system_mount":
		cfg.SystemMount = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "strict":
		cfg.Strict = value
	case "enable_system_mount":
		cfg.EnableSystemMount = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	case "max_depth":
		cfg.MaxDepth = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// setSliceField sets a slice field on the config by field path.
func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "entries":
		cfg.Entries = value
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// setMapField sets a map field on the config by field path.
func setMapField(cfg *config.Config, field string, value map[string]string) error {
	switch field {
	case "defines":
		if cfg.Defines == nil {
			cfg.Defines = make(map[string]string, len(value))
		}
		for name, body := range value {
			cfg.Defines[name] = body
		}
	default:
		return fmt.Errorf("unknown map field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns a list of all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	return map[string]string{
		"ARMAKIT_FORMAT":              "Output format: text, table, json, sarif, or summary",
		"ARMAKIT_PATH_FORMAT":         "Path format in output: virtual or layered",
		"ARMAKIT_OUTPUT":              "Directory to write rendered entry files to",
		"ARMAKIT_SYSTEM_MOUNT":        "Lowest-priority workspace root (game install directory)",
		"ARMAKIT_JOBS":                "Number of parallel workers (0 = auto)",
		"ARMAKIT_MAX_DEPTH":           "Maximum nested macro expansion depth (0 = default)",
		"ARMAKIT_STRICT":              "Treat warnings as errors: true or false",
		"ARMAKIT_ENABLE_SYSTEM_MOUNT": "Enable the system mount: true or false",
		"ARMAKIT_ENTRIES":             "Comma-separated list of entry paths or glob patterns",
		"ARMAKIT_IGNORE":              "Comma-separated list of ignore patterns",
		"ARMAKIT_DEFINES":             "Comma-separated NAME=VALUE macro definitions",
	}
}
