package configloader

import "github.com/armakit/armakit/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Maps: deep merge, with override's values taking precedence
//   - Slices: override replaces base entirely if override is non-nil
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	// Start with a shallow copy of base
	result := *base

	// Scalars: override overwrites base if set (non-zero value)
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.PathFormat != "" {
		result.PathFormat = override.PathFormat
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.SystemMount != "" {
		result.SystemMount = override.SystemMount
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}

	// Booleans: these are tricky because false is the zero value.
	// This means CLI --strict will override, but config file cannot unset.
	if override.Strict {
		result.Strict = override.Strict
	}
	if override.EnableSystemMount {
		result.EnableSystemMount = override.EnableSystemMount
	}

	// Maps: deep merge
	result.Defines = mergeDefines(base.Defines, override.Defines)

	// Slices: override replaces base entirely if non-nil
	if override.Layers != nil {
		result.Layers = override.Layers
	}
	if override.Entries != nil {
		result.Entries = override.Entries
	}
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	return &result
}

// mergeDefines performs deep merge of macro define maps.
// Both maps are iterated, with override's values taking precedence.
func mergeDefines(base, override map[string]string) map[string]string {
	if base == nil && override == nil {
		return nil
	}

	result := make(map[string]string, len(base)+len(override))
	for key, val := range base {
		result[key] = val
	}
	for key, val := range override {
		result[key] = val
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
