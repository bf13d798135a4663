// Package version resolves the suiterun version string from build metadata,
// falling back to git tags when the binary was built from a checkout.
package version

import (
	"context"
	"errors"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/tyemirov/suiterun/internal/execshell"
)

const (
	unknownVersionFallbackConstant            = "unknown"
	buildInfoDevelVersionValue                = "(devel)"
	gitDescribeExactScriptConstant            = "git describe --tags --exact-match"
	gitDescribeLongScriptConstant             = "git describe --tags --long --dirty"
	gitDescribeLabelConstant                  = "version"
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentValueConstant = "0"
	gitDescribeTimeoutConstant                = 5 * time.Second
	executorMissingMessageConstant            = "version executor not configured"
)

// ErrExecutorNotConfigured indicates the shell executor was missing.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

// Detector resolves application version strings.
type Detector struct {
	buildInfoProvider BuildInfoProvider
	executor          execshell.Executor
	workingDirectory  string
}

// Dependencies describes the collaborators required for version detection.
type Dependencies struct {
	BuildInfoProvider BuildInfoProvider
	Executor          execshell.Executor
	WorkingDirectory  string
}

// NewDetector constructs a Detector with the supplied dependencies or sensible defaults.
func NewDetector(dependencies Dependencies) (*Detector, error) {
	provider := dependencies.BuildInfoProvider
	if provider == nil {
		provider = runtimeBuildInfoProvider{}
	}

	executor := dependencies.Executor
	if executor == nil {
		shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner(), false)
		if creationError != nil {
			return nil, creationError
		}
		executor = shellExecutor
	}

	workingDirectory := strings.TrimSpace(dependencies.WorkingDirectory)
	if len(workingDirectory) == 0 {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError == nil {
			workingDirectory = currentDirectory
		}
	}

	return &Detector{
		buildInfoProvider: provider,
		executor:          executor,
		workingDirectory:  workingDirectory,
	}, nil
}

// Detect resolves the application version using the supplied dependencies.
func Detect(executionContext context.Context, dependencies Dependencies) string {
	detector, detectorError := NewDetector(dependencies)
	if detectorError != nil {
		return unknownVersionFallbackConstant
	}
	return detector.Version(executionContext)
}

// Version returns the detected application version string.
func (detector *Detector) Version(executionContext context.Context) string {
	if detector == nil {
		return unknownVersionFallbackConstant
	}

	if buildVersion := detector.versionFromBuildInfo(); len(buildVersion) > 0 {
		return buildVersion
	}

	if exactVersion := detector.describeVersion(executionContext, gitDescribeExactScriptConstant); semver.IsValid(exactVersion) {
		return exactVersion
	}

	if longVersion := detector.describeVersion(executionContext, gitDescribeLongScriptConstant); len(longVersion) > 0 {
		return longVersion
	}

	return unknownVersionFallbackConstant
}

func (detector *Detector) versionFromBuildInfo() string {
	if detector.buildInfoProvider == nil {
		return ""
	}

	buildInfo, available := detector.buildInfoProvider.Read()
	if !available || buildInfo == nil {
		return ""
	}

	trimmedVersion := strings.TrimSpace(buildInfo.Main.Version)
	if trimmedVersion == buildInfoDevelVersionValue || !semver.IsValid(trimmedVersion) {
		return ""
	}

	return trimmedVersion
}

func (detector *Detector) describeVersion(executionContext context.Context, script string) string {
	if detector.executor == nil {
		return ""
	}

	executionResult, executionError := detector.executor.Execute(executionContext, execshell.ShellCommand{
		Label:  gitDescribeLabelConstant,
		Script: script,
		Details: execshell.CommandDetails{
			WorkingDirectory:     detector.workingDirectory,
			EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentValueConstant},
			Timeout:              gitDescribeTimeoutConstant,
		},
	})
	if executionError != nil || !executionResult.ExitSucceeded {
		return ""
	}

	return strings.TrimSpace(executionResult.StandardOutput)
}

type runtimeBuildInfoProvider struct{}

func (runtimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}
