package taskrunner

import (
	"fmt"
	"strings"
)

const suiteFailureMessageTemplateConstant = "%d of %d suites failed: %s"

// SuiteFailureError reports that at least one suite failed after recovery.
// It maps to exit code 1 rather than an orchestrator error.
type SuiteFailureError struct {
	FailedSuites []string
	Total        int
}

// Error lists the failed suites.
func (failureError SuiteFailureError) Error() string {
	return fmt.Sprintf(suiteFailureMessageTemplateConstant, len(failureError.FailedSuites), failureError.Total, strings.Join(failureError.FailedSuites, ", "))
}

// SuiteFailure marks the error as an ordinary test failure.
func (failureError SuiteFailureError) SuiteFailure() bool {
	return len(failureError.FailedSuites) > 0
}
