package config

// FormatPath renders a file path for output based on the given format.
// Falls back to the bare path when the layer is unknown.
func FormatPath(format PathFormat, layer, path string) string {
	if layer == "" {
		return path
	}

	switch format {
	case PathFormatLayered:
		return layer + ":" + path
	case PathFormatVirtual:
		return path
	default:
		// Default to the virtual path
		return path
	}
}
