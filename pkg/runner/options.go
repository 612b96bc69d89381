// Package runner provides multi-entry preprocessing orchestration.
package runner

import "github.com/armakit/armakit/pkg/config"

// Options controls multi-entry preprocessing behavior.
type Options struct {
	// Entries are the user-specified virtual paths or glob patterns to
	// preprocess. If empty, every preprocessable file in the top layer is
	// selected.
	Entries []string

	// Extensions is the set of file extensions (lowercase, with leading
	// dot) considered preprocessable entry points. Defaults to
	// DefaultExtensions().
	Extensions []string

	// ExcludeGlobs are glob patterns used to skip entries. These merge
	// ignore rules from config and CLI (e.g. --ignore).
	ExcludeGlobs []string

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Config is the resolved configuration for this run.
	Config *config.Config
}

// DefaultExtensions returns the default entry-point extensions. Headers
// are pulled in through includes rather than preprocessed standalone.
func DefaultExtensions() []string {
	return []string{".cpp", ".ext", ".rvmat", ".bikb"}
}

// effectiveExtensions returns the extensions to use, defaulting if empty.
func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

// maxDepth returns the configured expansion depth bound, or zero for the
// engine default.
func (o Options) maxDepth() int {
	if o.Config == nil {
		return 0
	}
	return o.Config.MaxDepth
}

// defines returns the configured predefines.
func (o Options) defines() map[string]string {
	if o.Config == nil {
		return nil
	}
	return o.Config.Defines
}
