package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armakit/armakit/pkg/config"
)

func TestFormatPath(t *testing.T) {
	tests := []struct {
		name   string
		format config.PathFormat
		layer  string
		path   string
		want   string
	}{
		{"virtual format", config.PathFormatVirtual, "project", `addons\main\config.cpp`, `addons\main\config.cpp`},
		{"layered format", config.PathFormatLayered, "project", `addons\main\config.cpp`, `project:addons\main\config.cpp`},
		{"layered format unknown layer", config.PathFormatLayered, "", `config.cpp`, `config.cpp`},
		{"default to virtual", config.PathFormat(""), "project", `config.cpp`, `config.cpp`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := config.FormatPath(tt.format, tt.layer, tt.path)
			assert.Equal(t, tt.want, got)
		})
	}
}
