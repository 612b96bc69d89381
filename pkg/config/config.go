// Package config defines core configuration types for armakit.
// These types are pure data structures with no dependency on the YAML
// loader or any other configuration machinery.
package config

// LayerConfig describes one root of the layered workspace.
type LayerConfig struct {
	// Name identifies the layer in diagnostics.
	Name string `yaml:"name"`

	// Path is the layer root: a directory path or a storage URL.
	Path string `yaml:"path"`

	// Rank is the priority rank; lower ranks win path conflicts.
	Rank int `yaml:"rank"`
}

// OutputFormat specifies the output format for diagnostics.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatSARIF   OutputFormat = "sarif"
	FormatSummary OutputFormat = "summary"
)

// PathFormat controls how file paths appear in output.
type PathFormat string

const (
	// PathFormatVirtual shows the workspace virtual path.
	PathFormatVirtual PathFormat = "virtual"
	// PathFormatLayered prefixes the virtual path with the owning layer.
	PathFormatLayered PathFormat = "layered"
)

// Config is the root configuration structure for armakit.
type Config struct {
	// Layers are the workspace roots in priority order.
	Layers []LayerConfig `yaml:"layers"`

	// Defines seeds every preprocessing run with object-like macros,
	// keyed by macro name.
	Defines map[string]string `yaml:"defines"`

	// Entries are virtual paths or glob patterns selecting the entry
	// files to preprocess. Empty selects every preprocessable file under
	// the highest-priority layer.
	Entries []string `yaml:"entries"`

	// Ignore contains glob patterns for entry files to skip.
	Ignore []string `yaml:"ignore"`

	// MaxDepth bounds nested macro expansion. Zero selects the engine
	// default.
	MaxDepth int `yaml:"max_depth"`

	// SystemMount is an optional lowest-priority root, typically a game
	// install directory.
	SystemMount string `yaml:"system_mount"`

	// EnableSystemMount gates the system mount.
	EnableSystemMount bool `yaml:"enable_system_mount"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// PathFormat controls how file paths appear in output.
	PathFormat PathFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// Strict promotes warnings to errors for exit-code purposes.
	Strict bool `yaml:"-"`

	// Output writes rendered entry files to the given directory instead
	// of discarding them after diagnosis.
	Output string `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Defines:    make(map[string]string),
		Format:     FormatText,
		PathFormat: PathFormatVirtual,
		Jobs:       0, // 0 means use GOMAXPROCS
	}
}
