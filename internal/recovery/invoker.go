// Package recovery runs the workspace-wide remediation command invoked after a
// suite fails. The command takes no suite-specific parameters; it repairs
// shared state such as dependency caches and lockfiles. Its failure is
// reported to the caller and logged but never stops the pipeline.
package recovery

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/suiterun/internal/execshell"
)

const (
	recoveryCommandLabelConstant              = "recovery"
	loggerNotConfiguredMessageConstant        = "recovery invoker logger not configured"
	executorNotConfiguredMessageConstant      = "recovery invoker executor not configured"
	recoveryNotConfiguredMessageConstant      = "recovery command not configured"
	recoveryStartingMessageConstant           = "running recovery command"
	recoverySucceededMessageConstant          = "recovery command completed"
	recoveryFailedMessageConstant             = "recovery command failed; continuing with retry"
	recoveryCommandFieldNameConstant          = "command"
	recoveryWorkingDirectoryFieldNameConstant = "working_directory"
	recoveryExitCodeFieldNameConstant         = "exit_code"
	recoveryTimedOutFieldNameConstant         = "timed_out"
	recoveryDurationFieldNameConstant         = "duration"
)

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrExecutorNotConfigured indicates the executor dependency was missing.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrRecoveryNotConfigured indicates no recovery command is available.
	ErrRecoveryNotConfigured = errors.New(recoveryNotConfiguredMessageConstant)
)

// Configuration describes the fixed recovery command.
type Configuration struct {
	Command              string
	WorkingDirectory     string
	Timeout              time.Duration
	EnvironmentVariables map[string]string
}

// Result describes a single recovery invocation.
type Result struct {
	Succeeded bool
	Execution execshell.ExecutionResult
	Err       error
}

// Invoker runs the recovery command.
type Invoker struct {
	logger        *zap.Logger
	executor      execshell.Executor
	configuration Configuration
}

// NewInvoker constructs an Invoker.
func NewInvoker(logger *zap.Logger, executor execshell.Executor, configuration Configuration) (*Invoker, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	configuration.Command = strings.TrimSpace(configuration.Command)
	return &Invoker{logger: logger, executor: executor, configuration: configuration}, nil
}

// Command returns the configured recovery command.
func (invoker *Invoker) Command() string {
	return invoker.configuration.Command
}

// Recover runs the recovery command once. It never returns an error; the
// outcome, including configuration and environment problems, is carried in
// the Result.
func (invoker *Invoker) Recover(executionContext context.Context) Result {
	if len(invoker.configuration.Command) == 0 {
		invoker.logger.Warn(recoveryFailedMessageConstant, zap.Error(ErrRecoveryNotConfigured))
		return Result{Err: ErrRecoveryNotConfigured}
	}

	invoker.logger.Info(recoveryStartingMessageConstant,
		zap.String(recoveryCommandFieldNameConstant, invoker.configuration.Command),
		zap.String(recoveryWorkingDirectoryFieldNameConstant, invoker.configuration.WorkingDirectory),
	)

	executionResult, executionError := invoker.executor.Execute(executionContext, execshell.ShellCommand{
		Label:  recoveryCommandLabelConstant,
		Script: invoker.configuration.Command,
		Details: execshell.CommandDetails{
			WorkingDirectory:     invoker.configuration.WorkingDirectory,
			EnvironmentVariables: invoker.configuration.EnvironmentVariables,
			Timeout:              invoker.configuration.Timeout,
		},
	})
	if executionError != nil {
		invoker.logger.Warn(recoveryFailedMessageConstant,
			zap.String(recoveryCommandFieldNameConstant, invoker.configuration.Command),
			zap.Error(executionError),
		)
		return Result{Execution: executionResult, Err: executionError}
	}

	succeeded := executionResult.ExitSucceeded && !executionResult.TimedOut
	if !succeeded {
		invoker.logger.Warn(recoveryFailedMessageConstant,
			zap.String(recoveryCommandFieldNameConstant, invoker.configuration.Command),
			zap.Int(recoveryExitCodeFieldNameConstant, executionResult.ExitCode),
			zap.Bool(recoveryTimedOutFieldNameConstant, executionResult.TimedOut),
		)
		return Result{Execution: executionResult}
	}

	invoker.logger.Info(recoverySucceededMessageConstant,
		zap.String(recoveryCommandFieldNameConstant, invoker.configuration.Command),
		zap.Duration(recoveryDurationFieldNameConstant, executionResult.Duration),
	)
	return Result{Succeeded: true, Execution: executionResult}
}
