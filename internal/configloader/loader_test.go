package configloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/armakit/armakit/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	// Create temp directory with no config files
	tmpDir := t.TempDir()

	ctx := context.Background()
	opts := LoadOptions{
		WorkingDir:         tmpDir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}

	result, err := Load(ctx, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}

	// Check defaults are applied
	if result.Config.Format != config.FormatText {
		t.Errorf("expected format %q, got %q", config.FormatText, result.Config.Format)
	}
	if result.Config.PathFormat != config.PathFormatVirtual {
		t.Errorf("expected path format %q, got %q", config.PathFormatVirtual, result.Config.PathFormat)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	// Create a project config
	// Note: format is a CLI-only option (yaml:"-"), so it won't be loaded from file
	configContent := `
layers:
  - name: project
    path: ./addons
    rank: 0
defines:
  DEBUG: "1"
max_depth: 128
`
	configPath := filepath.Join(tmpDir, ".armakit.yml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx := context.Background()
	opts := LoadOptions{
		WorkingDir:         tmpDir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}

	result, err := Load(ctx, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(result.Config.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(result.Config.Layers))
	}
	if result.Config.Layers[0].Name != "project" {
		t.Errorf("expected layer name %q, got %q", "project", result.Config.Layers[0].Name)
	}

	if result.Config.Defines["DEBUG"] != "1" {
		t.Errorf("expected DEBUG define %q, got %q", "1", result.Config.Defines["DEBUG"])
	}

	if result.Config.MaxDepth != 128 {
		t.Errorf("expected max_depth 128, got %d", result.Config.MaxDepth)
	}

	if len(result.LoadedFrom) != 1 {
		t.Errorf("expected 1 loaded file, got %d", len(result.LoadedFrom))
	}
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	configContent := `
entries:
  - "addons/*/config.cpp"
ignore:
  - "**/legacy/**"
`
	customPath := filepath.Join(tmpDir, "custom-config.yml")
	if err := os.WriteFile(customPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx := context.Background()
	opts := LoadOptions{
		WorkingDir:         tmpDir,
		ExplicitPath:       customPath,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}

	result, err := Load(ctx, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(result.Config.Entries) != 1 || result.Config.Entries[0] != "addons/*/config.cpp" {
		t.Errorf("unexpected entries: %v", result.Config.Entries)
	}

	if len(result.Config.Ignore) != 1 {
		t.Errorf("unexpected ignore patterns: %v", result.Config.Ignore)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	// Create a project config
	configContent := `
defines:
  DEBUG: "1"
max_depth: 64
`
	configPath := filepath.Join(tmpDir, ".armakit.yml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx := context.Background()
	cliCfg := &config.Config{
		Format:   config.FormatJSON,
		Jobs:     8,
		MaxDepth: 256,
		Strict:   true,
		Defines:  map[string]string{"VERSION": "3"},
	}
	opts := LoadOptions{
		WorkingDir:         tmpDir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
		CLIConfig:          cliCfg,
	}

	result, err := Load(ctx, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// CLI should override project config
	if result.Config.Format != config.FormatJSON {
		t.Errorf("expected format %q (CLI override), got %q", config.FormatJSON, result.Config.Format)
	}

	if result.Config.Jobs != 8 {
		t.Errorf("expected jobs 8 (CLI override), got %d", result.Config.Jobs)
	}

	if result.Config.MaxDepth != 256 {
		t.Errorf("expected max_depth 256 (CLI override), got %d", result.Config.MaxDepth)
	}

	if !result.Config.Strict {
		t.Error("expected strict true (CLI override)")
	}

	// Defines merge rather than replace
	if result.Config.Defines["DEBUG"] != "1" {
		t.Error("expected DEBUG define to survive CLI merge")
	}
	if result.Config.Defines["VERSION"] != "3" {
		t.Error("expected VERSION define from CLI")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	// Layer without a path fails validation
	configContent := `
layers:
  - name: broken
    rank: 0
`
	configPath := filepath.Join(tmpDir, ".armakit.yml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx := context.Background()
	opts := LoadOptions{
		WorkingDir:         tmpDir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}

	_, err := Load(ctx, opts)
	if err == nil {
		t.Fatal("expected validation error for layer without path")
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	opts := LoadOptions{
		WorkingDir:         t.TempDir(),
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}

	_, err := Load(ctx, opts)
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestLoad_DuplicateRankRejected(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	configContent := `
layers:
  - name: core
    path: ./core
    rank: 0
  - name: mods
    path: ./mods
    rank: 0
`
	configPath := filepath.Join(tmpDir, ".armakit.yml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx := context.Background()
	opts := LoadOptions{
		WorkingDir:         tmpDir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}

	_, err := Load(ctx, opts)
	if err == nil {
		t.Fatal("expected error for layers sharing a rank")
	}
	if !strings.Contains(err.Error(), "rank") {
		t.Errorf("expected rank error, got: %v", err)
	}
}

func TestFindProjectConfig_SearchesUpward(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "addons", "main")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	configPath := filepath.Join(tmpDir, ".armakit.yml")
	if err := os.WriteFile(configPath, []byte("max_depth: 1\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	found, err := FindProjectConfig(context.Background(), nested)
	if err != nil {
		t.Fatalf("FindProjectConfig() error = %v", err)
	}
	if found != configPath {
		t.Errorf("expected %q, got %q", configPath, found)
	}
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	// Config above the VCS root must not be found
	if err := os.WriteFile(filepath.Join(tmpDir, ".armakit.yml"), []byte("max_depth: 1\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	repo := filepath.Join(tmpDir, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	nested := filepath.Join(repo, "addons")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := FindProjectConfig(context.Background(), nested)
	if err != nil {
		t.Fatalf("FindProjectConfig() error = %v", err)
	}
	if found != "" {
		t.Errorf("expected no config past VCS root, got %q", found)
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	outPath := filepath.Join(tmpDir, ".armakit.yml")

	cfg := config.NewConfig()
	cfg.Layers = []config.LayerConfig{{Name: "project", Path: ".", Rank: 0}}
	cfg.Defines["DEBUG"] = "1"

	if err := WriteConfig(cfg, outPath); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	loaded, err := loadConfigFile(outPath)
	if err != nil {
		t.Fatalf("loadConfigFile() error = %v", err)
	}

	if len(loaded.Layers) != 1 || loaded.Layers[0].Name != "project" {
		t.Errorf("unexpected layers after round trip: %v", loaded.Layers)
	}
	if loaded.Defines["DEBUG"] != "1" {
		t.Errorf("unexpected defines after round trip: %v", loaded.Defines)
	}
}
