package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armakit/armakit/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var c *config.Config
		clone := c.Clone()
		assert.Nil(t, clone)
	})

	t.Run("empty config", func(t *testing.T) {
		c := &config.Config{}
		clone := c.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, c, clone)
	})

	t.Run("deep copies Defines map", func(t *testing.T) {
		original := &config.Config{
			Defines: map[string]string{
				"DEBUG":   "1",
				"VERSION": "3",
			},
		}

		clone := original.Clone()
		require.NotNil(t, clone)

		require.Contains(t, clone.Defines, "DEBUG")
		assert.Equal(t, "1", clone.Defines["DEBUG"])

		// Verify modifying clone doesn't affect original
		clone.Defines["DEBUG"] = "0"
		assert.Equal(t, "1", original.Defines["DEBUG"])
	})

	t.Run("deep copies Ignore slice", func(t *testing.T) {
		original := &config.Config{
			Ignore: []string{"*.bak", "legacy/**"},
		}

		clone := original.Clone()
		require.NotNil(t, clone)

		assert.Equal(t, original.Ignore, clone.Ignore)

		// Verify modifying clone doesn't affect original
		clone.Ignore[0] = "changed"
		assert.Equal(t, "*.bak", original.Ignore[0])
	})

	t.Run("preserves all fields", func(t *testing.T) {
		original := &config.Config{
			Layers: []config.LayerConfig{
				{Name: "project", Path: ".", Rank: 0},
				{Name: "deps", Path: "./deps", Rank: 1},
			},
			Defines:           map[string]string{"DEBUG": "1"},
			Entries:           []string{"addons/*/config.cpp"},
			Ignore:            []string{"**/legacy/**"},
			MaxDepth:          64,
			SystemMount:       "/opt/game",
			EnableSystemMount: true,
			Format:            config.FormatJSON,
			PathFormat:        config.PathFormatLayered,
			Jobs:              4,
			Strict:            true,
			Output:            "out",
		}

		clone := original.Clone()
		require.NotNil(t, clone)

		assert.Equal(t, original.Layers, clone.Layers)
		assert.Equal(t, original.Entries, clone.Entries)
		assert.Equal(t, original.MaxDepth, clone.MaxDepth)
		assert.Equal(t, original.SystemMount, clone.SystemMount)
		assert.Equal(t, original.EnableSystemMount, clone.EnableSystemMount)
		assert.Equal(t, original.Format, clone.Format)
		assert.Equal(t, original.PathFormat, clone.PathFormat)
		assert.Equal(t, original.Jobs, clone.Jobs)
		assert.Equal(t, original.Strict, clone.Strict)
		assert.Equal(t, original.Output, clone.Output)
	})
}

func TestConfigToYAML(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var cfg *config.Config
		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("basic config serializes", func(t *testing.T) {
		cfg := &config.Config{
			Layers:   []config.LayerConfig{{Name: "project", Path: ".", Rank: 0}},
			MaxDepth: 64,
		}

		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Contains(t, string(data), "name: project")
		assert.Contains(t, string(data), "max_depth: 64")
	})
}

func TestFromYAML(t *testing.T) {
	t.Run("parses valid YAML", func(t *testing.T) {
		yaml := []byte(`
layers:
  - name: project
    path: .
    rank: 0
defines:
  DEBUG: "1"
entries:
  - "addons/*/config.cpp"
`)
		cfg, err := config.FromYAML(yaml)
		require.NoError(t, err)
		require.Len(t, cfg.Layers, 1)
		assert.Equal(t, "project", cfg.Layers[0].Name)
		assert.Equal(t, "1", cfg.Defines["DEBUG"])
		assert.Equal(t, []string{"addons/*/config.cpp"}, cfg.Entries)
	})

	t.Run("initializes empty Defines map", func(t *testing.T) {
		yaml := []byte(`max_depth: 0`)
		cfg, err := config.FromYAML(yaml)
		require.NoError(t, err)
		assert.NotNil(t, cfg.Defines)
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		_, err := config.FromYAML([]byte("layers: [unclosed"))
		require.Error(t, err)
	})
}
