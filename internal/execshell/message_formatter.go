package execshell

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultCommandLabelConstant          = "command"
	startedMessageTemplateConstant       = "Running %s: %s"
	startedInMessageTemplateConstant     = "Running %s: %s (in %s)"
	successMessageTemplateConstant       = "%s completed in %s"
	failureMessageTemplateConstant       = "%s failed (exit code %d)"
	failureDetailMessageTemplateConstant = "%s failed (exit code %d: %s)"
	timeoutMessageTemplateConstant       = "%s timed out after %s"
	cancelledMessageTemplateConstant     = "%s cancelled after %s: %v"
	executionFailureTemplateConstant     = "Unable to run %s: %v"
	environmentFailureTemplateConstant   = "Unable to run %s: working directory %s unavailable: %v"
	failureDetailLineLimitConstant       = 3
)

// CommandMessageFormatter renders human-readable lifecycle messages for console logging.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		return fmt.Sprintf(startedMessageTemplateConstant, formatter.label(command), command.Script)
	}
	return fmt.Sprintf(startedInMessageTemplateConstant, formatter.label(command), command.Script, workingDirectory)
}

// BuildSuccessMessage describes a command that exited zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return fmt.Sprintf(successMessageTemplateConstant, formatter.label(command), result.Duration.Round(time.Millisecond))
}

// BuildFailureMessage describes a command that exited non-zero.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	detail := summarizeDetail(result.ErrorOutput)
	if len(detail) == 0 {
		detail = summarizeDetail(result.StandardOutput)
	}
	if len(detail) == 0 {
		return fmt.Sprintf(failureMessageTemplateConstant, formatter.label(command), result.ExitCode)
	}
	return fmt.Sprintf(failureDetailMessageTemplateConstant, formatter.label(command), result.ExitCode, detail)
}

// BuildTimeoutMessage describes a command killed after its timeout.
func (formatter CommandMessageFormatter) BuildTimeoutMessage(command ShellCommand) string {
	return fmt.Sprintf(timeoutMessageTemplateConstant, formatter.label(command), command.Details.Timeout)
}

// BuildCancelledMessage describes a command interrupted by its caller.
func (formatter CommandMessageFormatter) BuildCancelledMessage(command ShellCommand, result ExecutionResult, cause error) string {
	return fmt.Sprintf(cancelledMessageTemplateConstant, formatter.label(command), result.Duration.Round(time.Millisecond), cause)
}

// BuildExecutionFailureMessage describes a command the runner could not start.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, cause error) string {
	return fmt.Sprintf(executionFailureTemplateConstant, formatter.label(command), cause)
}

// BuildEnvironmentFailureMessage describes a command skipped because its directory is unavailable.
func (formatter CommandMessageFormatter) BuildEnvironmentFailureMessage(command ShellCommand, cause error) string {
	return fmt.Sprintf(environmentFailureTemplateConstant, formatter.label(command), command.Details.WorkingDirectory, cause)
}

func (formatter CommandMessageFormatter) label(command ShellCommand) string {
	trimmedLabel := strings.TrimSpace(command.Label)
	if len(trimmedLabel) == 0 {
		return defaultCommandLabelConstant
	}
	return trimmedLabel
}

func summarizeDetail(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > failureDetailLineLimitConstant {
		lines = lines[len(lines)-failureDetailLineLimitConstant:]
	}
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		normalized = append(normalized, trimmedLine)
	}
	return strings.Join(normalized, " | ")
}
