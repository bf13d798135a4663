package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"
)

const processWaitDelayConstant = 2 * time.Second

// OSCommandRunner runs shell commands as operating system subprocesses.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs the default subprocess runner.
func NewOSCommandRunner() OSCommandRunner {
	return OSCommandRunner{}
}

// Run starts the command through the platform shell and waits for it to exit.
// A non-zero exit is reported through the result, not the error.
func (runner OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	shellPath, shellArguments := shellInvocation(command.Script)
	osCommand := exec.CommandContext(executionContext, shellPath, shellArguments...)
	osCommand.Dir = command.Details.WorkingDirectory
	osCommand.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	osCommand.WaitDelay = processWaitDelayConstant
	configureProcessGroup(osCommand)

	capture := newOutputCapture()
	osCommand.Stdout = capture.standardOutputWriter()
	osCommand.Stderr = capture.standardErrorWriter()

	startedAt := time.Now()
	runError := osCommand.Run()
	result := capture.result()
	result.Duration = time.Since(startedAt)

	if runError == nil {
		result.ExitSucceeded = true
		result.ExitCode = 0
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}

	if errors.Is(runError, exec.ErrWaitDelay) && osCommand.ProcessState != nil {
		result.ExitCode = osCommand.ProcessState.ExitCode()
		result.ExitSucceeded = osCommand.ProcessState.Success()
		return result, nil
	}

	if executionContext.Err() != nil {
		result.ExitCode = unknownExitCodeConstant
		return result, nil
	}

	result.ExitCode = unknownExitCodeConstant
	return result, runError
}

func mergeEnvironment(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	merged := make([]string, 0, len(base)+len(overrides))
	for _, entry := range base {
		key, _, _ := strings.Cut(entry, "=")
		if _, overridden := overrides[key]; overridden {
			continue
		}
		merged = append(merged, entry)
	}
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		merged = append(merged, key+"="+overrides[key])
	}
	return merged
}

// outputCapture keeps stdout and stderr apart while also recording both
// streams interleaved in arrival order.
type outputCapture struct {
	mutex          sync.Mutex
	standardOutput bytes.Buffer
	errorOutput    bytes.Buffer
	combinedOutput bytes.Buffer
}

type captureStreamWriter struct {
	capture *outputCapture
	stream  *bytes.Buffer
}

func newOutputCapture() *outputCapture {
	return &outputCapture{}
}

func (capture *outputCapture) standardOutputWriter() *captureStreamWriter {
	return &captureStreamWriter{capture: capture, stream: &capture.standardOutput}
}

func (capture *outputCapture) standardErrorWriter() *captureStreamWriter {
	return &captureStreamWriter{capture: capture, stream: &capture.errorOutput}
}

func (writer *captureStreamWriter) Write(payload []byte) (int, error) {
	writer.capture.mutex.Lock()
	defer writer.capture.mutex.Unlock()
	writer.stream.Write(payload)
	writer.capture.combinedOutput.Write(payload)
	return len(payload), nil
}

func (capture *outputCapture) result() ExecutionResult {
	capture.mutex.Lock()
	defer capture.mutex.Unlock()
	return ExecutionResult{
		StandardOutput: capture.standardOutput.String(),
		ErrorOutput:    capture.errorOutput.String(),
		CombinedOutput: capture.combinedOutput.String(),
	}
}
