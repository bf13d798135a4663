// Package retry drives a single suite through at most one recovery-and-retry
// cycle and produces its final outcome.
package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/suiterun/internal/execshell"
	"github.com/tyemirov/suiterun/internal/recovery"
	"github.com/tyemirov/suiterun/internal/suites"
)

// RetryBudget is the number of extra attempts granted after recovery.
const RetryBudget = 1

const (
	loggerNotConfiguredMessageConstant     = "retry controller logger not configured"
	executorNotConfiguredMessageConstant   = "retry controller executor not configured"
	classifierNotConfiguredMessageConstant = "retry controller classifier not configured"
	recovererNotConfiguredMessageConstant  = "retry controller recovery invoker not configured"
	suiteStartingMessageConstant           = "suite starting"
	suitePassedMessageConstant             = "suite passed"
	suiteFailedMessageConstant             = "suite failed"
	suiteRetryingMessageConstant           = "suite failed; running recovery and retrying once"
	suiteEnvironmentMessageConstant        = "suite skipped: working directory unavailable"
	suiteCancelledMessageConstant          = "suite interrupted: run cancelled"
	suiteFieldNameConstant                 = "suite"
	attemptFieldNameConstant               = "attempt"
	timedOutFieldNameConstant              = "timed_out"
	recoverySucceededFieldNameConstant     = "recovery_succeeded"
	failureFieldNameConstant               = "failure"
)

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrExecutorNotConfigured indicates the executor dependency was missing.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrClassifierNotConfigured indicates the classifier dependency was missing.
	ErrClassifierNotConfigured = errors.New(classifierNotConfiguredMessageConstant)
	// ErrRecovererNotConfigured indicates the recovery dependency was missing.
	ErrRecovererNotConfigured = errors.New(recovererNotConfiguredMessageConstant)
)

// State is the controller state of a suite.
type State string

const (
	// StateInitial precedes the first attempt.
	StateInitial State = "INITIAL"
	// StateDone is terminal.
	StateDone State = "DONE"
)

// FailureKind names why a suite ended in failure.
type FailureKind string

const (
	// FailureNone marks a passing suite.
	FailureNone FailureKind = ""
	// FailureClassified marks output the classifier rejected.
	FailureClassified FailureKind = "classified"
	// FailureTimeout marks a killed run.
	FailureTimeout FailureKind = "timeout"
	// FailureEnvironment marks a run that never started.
	FailureEnvironment FailureKind = "environment"
	// FailureCancelled marks a suite skipped or interrupted by cancellation.
	FailureCancelled FailureKind = "cancelled"
)

// Verdict decides whether an execution result counts as a pass.
type Verdict interface {
	Classify(result execshell.ExecutionResult) bool
}

// Recoverer runs the remediation step between attempts.
type Recoverer interface {
	Recover(executionContext context.Context) recovery.Result
}

// SuiteOutcome is the final verdict for one suite.
type SuiteOutcome struct {
	Suite             suites.Definition
	State             State
	Succeeded         bool
	RecoveryAttempted bool
	FinalOutput       string
	Failure           FailureKind
	Attempts          int
	Duration          time.Duration
	Recovery          *recovery.Result
	Err               error
}

// Controller executes suites with one recovery-and-retry cycle.
type Controller struct {
	logger    *zap.Logger
	executor  execshell.Executor
	verdict   Verdict
	recoverer Recoverer
	options   Options
}

// Options carries optional per-suite execution settings.
type Options struct {
	// Timeout applies to each attempt; zero disables it.
	Timeout              time.Duration
	EnvironmentVariables map[string]string
}

// NewController wires the controller collaborators.
func NewController(logger *zap.Logger, executor execshell.Executor, verdict Verdict, recoverer Recoverer, options Options) (*Controller, error) {
	switch {
	case logger == nil:
		return nil, ErrLoggerNotConfigured
	case executor == nil:
		return nil, ErrExecutorNotConfigured
	case verdict == nil:
		return nil, ErrClassifierNotConfigured
	case recoverer == nil:
		return nil, ErrRecovererNotConfigured
	}
	return &Controller{
		logger:    logger,
		executor:  executor,
		verdict:   verdict,
		recoverer: recoverer,
		options:   options,
	}, nil
}

// Run drives the suite from StateInitial to StateDone.
func (controller *Controller) Run(executionContext context.Context, suite suites.Definition) (outcome SuiteOutcome) {
	suiteLogger := controller.logger.With(zap.String(suiteFieldNameConstant, suite.Name))
	suiteLogger.Info(suiteStartingMessageConstant)

	startedAt := time.Now()
	outcome = SuiteOutcome{Suite: suite, State: StateInitial}
	defer func() {
		outcome.State = StateDone
		outcome.Duration = time.Since(startedAt)
	}()

	passed, failure, output, attemptError := controller.attempt(executionContext, suite)
	outcome.Attempts = 1
	outcome.FinalOutput = output

	if passed {
		suiteLogger.Info(suitePassedMessageConstant, zap.Int(attemptFieldNameConstant, outcome.Attempts))
		outcome.Succeeded = true
		return outcome
	}
	if failure == FailureEnvironment {
		suiteLogger.Error(suiteEnvironmentMessageConstant, zap.Error(attemptError))
		outcome.Failure = failure
		outcome.Err = attemptError
		return outcome
	}
	if failure == FailureCancelled || cancellation(executionContext) != nil {
		return markCancelled(suiteLogger, outcome, cancellation(executionContext))
	}

	suiteLogger.Warn(suiteRetryingMessageConstant, zap.Bool(timedOutFieldNameConstant, failure == FailureTimeout))
	recoveryResult := controller.recoverer.Recover(executionContext)
	outcome.RecoveryAttempted = true
	outcome.Recovery = &recoveryResult

	for retry := 0; retry < RetryBudget; retry++ {
		if cancellationCause := cancellation(executionContext); cancellationCause != nil {
			return markCancelled(suiteLogger, outcome, cancellationCause)
		}
		passed, failure, output, attemptError = controller.attempt(executionContext, suite)
		outcome.Attempts++
		outcome.FinalOutput = output
	}

	if passed {
		suiteLogger.Info(suitePassedMessageConstant,
			zap.Int(attemptFieldNameConstant, outcome.Attempts),
			zap.Bool(recoverySucceededFieldNameConstant, recoveryResult.Succeeded),
		)
		outcome.Succeeded = true
		return outcome
	}

	outcome.Failure = failure
	outcome.Err = attemptError
	suiteLogger.Error(suiteFailedMessageConstant,
		zap.Int(attemptFieldNameConstant, outcome.Attempts),
		zap.String(failureFieldNameConstant, string(failure)),
	)
	return outcome
}

func (controller *Controller) attempt(executionContext context.Context, suite suites.Definition) (bool, FailureKind, string, error) {
	result, executionError := controller.executor.Execute(executionContext, execshell.ShellCommand{
		Label:  suite.Name,
		Script: suite.Command,
		Details: execshell.CommandDetails{
			WorkingDirectory:     suite.WorkingDirectory,
			EnvironmentVariables: controller.options.EnvironmentVariables,
			Timeout:              controller.options.Timeout,
		},
	})
	if executionError != nil {
		if _, isEnvironment := execshell.IsEnvironmentError(executionError); isEnvironment {
			return false, FailureEnvironment, "", executionError
		}
		return false, FailureClassified, result.CombinedOutput, executionError
	}
	if result.Cancelled {
		return false, FailureCancelled, result.CombinedOutput, cancellation(executionContext)
	}
	if result.TimedOut {
		return false, FailureTimeout, result.CombinedOutput, nil
	}
	if !controller.verdict.Classify(result) {
		return false, FailureClassified, result.CombinedOutput, nil
	}
	return true, FailureNone, result.CombinedOutput, nil
}

// markCancelled ends the suite without further recovery or attempts once the
// run context is gone.
func markCancelled(suiteLogger *zap.Logger, outcome SuiteOutcome, cause error) SuiteOutcome {
	outcome.Succeeded = false
	outcome.Failure = FailureCancelled
	outcome.Err = cause
	suiteLogger.Warn(suiteCancelledMessageConstant,
		zap.Int(attemptFieldNameConstant, outcome.Attempts),
		zap.Error(cause),
	)
	return outcome
}

func cancellation(executionContext context.Context) error {
	if executionContext == nil {
		return nil
	}
	return executionContext.Err()
}
