package execshell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandScriptMissingMessageConstant       = "shell command script not provided"
	commandStartMessageConstant               = "command execution starting"
	commandSuccessMessageConstant             = "command execution completed"
	commandFailureMessageConstant             = "command returned non-zero status"
	commandTimeoutMessageConstant             = "command exceeded timeout"
	commandCancelledMessageConstant           = "command cancelled"
	commandRunnerErrorMessageConstant         = "command execution error"
	environmentErrorMessageConstant           = "command working directory unavailable"
	commandLabelFieldNameConstant             = "label"
	commandScriptFieldNameConstant            = "command"
	workingDirectoryFieldNameConstant         = "working_directory"
	exitCodeFieldNameConstant                 = "exit_code"
	standardErrorFieldNameConstant            = "stderr"
	durationFieldNameConstant                 = "duration"
	timeoutFieldNameConstant                  = "timeout"
	timeoutMarkerTemplateConstant             = "suiterun: command timed out after %s"
	startFailureMarkerTemplateConstant        = "suiterun: unable to start command: %v"
	cancellationMarkerTemplateConstant        = "suiterun: command cancelled: %v"
	environmentErrorTemplateConstant          = "working directory %q unavailable: %v"
	notDirectoryErrorTemplateConstant         = "%s is not a directory"
	unknownExitCodeConstant                   = -1
	standardErrorLogLimitConstant             = 2048
)

// CommandDetails describes command invocation properties.
type CommandDetails struct {
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	Timeout              time.Duration
}

// ShellCommand represents a fully qualified command invocation. Script is
// handed to the platform shell verbatim.
type ShellCommand struct {
	Label   string
	Script  string
	Details CommandDetails
}

// ExecutionResult captures observable command results.
type ExecutionResult struct {
	ExitSucceeded  bool
	ExitCode       int
	StandardOutput string
	ErrorOutput    string
	CombinedOutput string
	Duration       time.Duration
	TimedOut       bool
	Cancelled      bool
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// Executor is the contract consumed by the retry controller and recovery invoker.
type Executor interface {
	Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor orchestrates running shell commands with logging.
type ShellExecutor struct {
	commandRunner        CommandRunner
	logger               *zap.Logger
	humanReadableLogging bool
	messageFormatter     CommandMessageFormatter
}

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCommandScriptMissing indicates the command script was not provided.
	ErrCommandScriptMissing = errors.New(commandScriptMissingMessageConstant)
)

// EnvironmentError reports that a command could not be attempted because its
// working directory is missing or inaccessible.
type EnvironmentError struct {
	WorkingDirectory string
	Cause            error
}

// Error describes the unavailable directory.
func (environmentError EnvironmentError) Error() string {
	return fmt.Sprintf(environmentErrorTemplateConstant, environmentError.WorkingDirectory, environmentError.Cause)
}

// Unwrap exposes the underlying filesystem error.
func (environmentError EnvironmentError) Unwrap() error {
	return environmentError.Cause
}

// IsEnvironmentError reports whether the error chain carries an EnvironmentError.
func IsEnvironmentError(err error) (EnvironmentError, bool) {
	var environmentError EnvironmentError
	if errors.As(err, &environmentError) {
		return environmentError, true
	}
	return EnvironmentError{}, false
}

// CommandExecutionError wraps unexpected execution failures from the runner.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

const commandExecutionErrorMessageTemplateConstant = "%s command execution failed"

// Error describes the underlying runner failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorMessageTemplateConstant, executionError.Command.Label)
}

// Unwrap exposes the underlying error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// NewShellExecutor builds an executor for the provided runner and logger.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		commandRunner:        commandRunner,
		logger:               logger,
		humanReadableLogging: humanReadableLogging,
		messageFormatter:     CommandMessageFormatter{},
	}, nil
}

// Execute runs the provided shell command and logs lifecycle events.
//
// The only errors returned are pre-flight failures (missing script, unavailable
// working directory). A command that starts and exits non-zero, is killed, or
// cannot be started at all is reported through the result with
// ExitSucceeded=false.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(strings.TrimSpace(command.Script)) == 0 {
		return ExecutionResult{}, ErrCommandScriptMissing
	}

	if directoryError := checkWorkingDirectory(command.Details.WorkingDirectory); directoryError != nil {
		environmentError := EnvironmentError{WorkingDirectory: command.Details.WorkingDirectory, Cause: directoryError}
		if executor.humanReadableLogging {
			executor.logger.Error(executor.messageFormatter.BuildEnvironmentFailureMessage(command, directoryError))
		} else {
			executor.logger.Error(environmentErrorMessageConstant,
				zap.String(commandLabelFieldNameConstant, command.Label),
				zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
				zap.Error(directoryError),
			)
		}
		return ExecutionResult{}, environmentError
	}

	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildStartedMessage(command))
	} else {
		executor.logger.Info(commandStartMessageConstant,
			zap.String(commandLabelFieldNameConstant, command.Label),
			zap.String(commandScriptFieldNameConstant, command.Script),
			zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
			zap.Duration(timeoutFieldNameConstant, command.Details.Timeout),
		)
	}

	runContext := executionContext
	if runContext == nil {
		runContext = context.Background()
	}
	cancelRun := func() {}
	if command.Details.Timeout > 0 {
		runContext, cancelRun = context.WithTimeout(runContext, command.Details.Timeout)
	}
	defer cancelRun()

	startedAt := time.Now()
	executionResult, runnerError := executor.commandRunner.Run(runContext, command)
	if executionResult.Duration == 0 {
		executionResult.Duration = time.Since(startedAt)
	}

	if command.Details.Timeout > 0 && errors.Is(runContext.Err(), context.DeadlineExceeded) {
		executionResult = markTimedOut(executionResult, command.Details.Timeout)
		if executor.humanReadableLogging {
			executor.logger.Warn(executor.messageFormatter.BuildTimeoutMessage(command))
		} else {
			executor.logger.Warn(commandTimeoutMessageConstant,
				zap.String(commandLabelFieldNameConstant, command.Label),
				zap.Duration(timeoutFieldNameConstant, command.Details.Timeout),
				zap.Duration(durationFieldNameConstant, executionResult.Duration),
			)
		}
		return executionResult, nil
	}

	if cancellationCause := runContext.Err(); cancellationCause != nil {
		executionResult = markCancelled(executionResult, cancellationCause)
		if executor.humanReadableLogging {
			executor.logger.Warn(executor.messageFormatter.BuildCancelledMessage(command, executionResult, cancellationCause))
		} else {
			executor.logger.Warn(commandCancelledMessageConstant,
				zap.String(commandLabelFieldNameConstant, command.Label),
				zap.Duration(durationFieldNameConstant, executionResult.Duration),
				zap.Error(cancellationCause),
			)
		}
		return executionResult, nil
	}

	if runnerError != nil {
		wrappedError := CommandExecutionError{Command: command, Cause: runnerError}
		if executor.humanReadableLogging {
			executor.logger.Error(executor.messageFormatter.BuildExecutionFailureMessage(command, runnerError))
		} else {
			executor.logger.Error(commandRunnerErrorMessageConstant,
				zap.String(commandLabelFieldNameConstant, command.Label),
				zap.Error(wrappedError),
			)
		}
		return markStartFailure(executionResult, runnerError), nil
	}

	if !executionResult.ExitSucceeded {
		if executor.humanReadableLogging {
			executor.logger.Warn(executor.messageFormatter.BuildFailureMessage(command, executionResult))
		} else {
			executor.logger.Warn(commandFailureMessageConstant,
				zap.String(commandLabelFieldNameConstant, command.Label),
				zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
				zap.String(standardErrorFieldNameConstant, truncateForLog(executionResult.ErrorOutput)),
			)
		}
		return executionResult, nil
	}

	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildSuccessMessage(command, executionResult))
	} else {
		executor.logger.Info(commandSuccessMessageConstant,
			zap.String(commandLabelFieldNameConstant, command.Label),
			zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
			zap.Duration(durationFieldNameConstant, executionResult.Duration),
		)
	}
	return executionResult, nil
}

func checkWorkingDirectory(workingDirectory string) error {
	trimmedDirectory := strings.TrimSpace(workingDirectory)
	if len(trimmedDirectory) == 0 {
		return nil
	}
	directoryInfo, statError := os.Stat(trimmedDirectory)
	if statError != nil {
		return statError
	}
	if !directoryInfo.IsDir() {
		return fmt.Errorf(notDirectoryErrorTemplateConstant, trimmedDirectory)
	}
	return nil
}

func markTimedOut(result ExecutionResult, timeout time.Duration) ExecutionResult {
	marker := fmt.Sprintf(timeoutMarkerTemplateConstant, timeout)
	result.TimedOut = true
	result.ExitSucceeded = false
	if result.ExitCode == 0 {
		result.ExitCode = unknownExitCodeConstant
	}
	result.ErrorOutput = appendLine(result.ErrorOutput, marker)
	result.CombinedOutput = appendLine(result.CombinedOutput, marker)
	return result
}

// markCancelled reports a command interrupted by its caller. Whatever the
// process managed to write is kept, but the result never counts as a success.
func markCancelled(result ExecutionResult, cause error) ExecutionResult {
	marker := fmt.Sprintf(cancellationMarkerTemplateConstant, cause)
	result.Cancelled = true
	result.ExitSucceeded = false
	if result.ExitCode == 0 {
		result.ExitCode = unknownExitCodeConstant
	}
	result.ErrorOutput = appendLine(result.ErrorOutput, marker)
	result.CombinedOutput = appendLine(result.CombinedOutput, marker)
	return result
}

func markStartFailure(result ExecutionResult, cause error) ExecutionResult {
	marker := fmt.Sprintf(startFailureMarkerTemplateConstant, cause)
	result.ExitSucceeded = false
	if result.ExitCode == 0 {
		result.ExitCode = unknownExitCodeConstant
	}
	result.ErrorOutput = appendLine(result.ErrorOutput, marker)
	result.CombinedOutput = appendLine(result.CombinedOutput, marker)
	return result
}

func appendLine(text string, line string) string {
	if len(text) == 0 {
		return line + "\n"
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + line + "\n"
}

func truncateForLog(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= standardErrorLogLimitConstant {
		return trimmed
	}
	return trimmed[len(trimmed)-standardErrorLogLimitConstant:]
}
