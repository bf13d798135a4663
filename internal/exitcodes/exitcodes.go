// Package exitcodes defines the process exit codes of suiterun.
package exitcodes

import "errors"

// Exit codes:
//
// * Success (0): every selected suite passed, possibly after recovery
// * SuiteFailure (1): at least one suite failed after recovery
// * OrchestratorError (2): configuration, registry or logger failure
const (
	Success           = 0
	SuiteFailure      = 1
	OrchestratorError = 2
)

// SuiteFailureSignal is implemented by errors that report ordinary suite
// failures rather than orchestrator faults.
type SuiteFailureSignal interface {
	error
	SuiteFailure() bool
}

// ForError maps an error returned by the command tree to an exit code.
func ForError(err error) int {
	if err == nil {
		return Success
	}
	var signal SuiteFailureSignal
	if errors.As(err, &signal) && signal.SuiteFailure() {
		return SuiteFailure
	}
	return OrchestratorError
}

// IsOrchestratorError reports whether the error is catastrophic.
func IsOrchestratorError(err error) bool {
	return ForError(err) == OrchestratorError
}
