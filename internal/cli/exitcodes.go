package cli

import "github.com/armakit/armakit/pkg/runner"

// Exit codes for armakit.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitErrors indicates preprocessing completed but produced errors.
	ExitErrors = 1

	// ExitWarnings indicates preprocessing produced warnings (when strict mode).
	ExitWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	errors := result.Stats.DiagnosticsBySeverity["error"]
	warnings := result.Stats.DiagnosticsBySeverity["warning"]

	if errors > 0 || result.Stats.EntriesErrored > 0 {
		return ExitErrors
	}

	if strict && warnings > 0 {
		return ExitWarnings
	}

	return ExitSuccess
}
