package taskrunner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/suiterun/internal/classifier"
	"github.com/tyemirov/suiterun/internal/execshell"
	"github.com/tyemirov/suiterun/internal/recovery"
	"github.com/tyemirov/suiterun/internal/retry"
)

// ErrSuiteRunnerNotConfigured indicates the run has no suite runner.
var ErrSuiteRunnerNotConfigured = errors.New("taskrunner suite runner not configured")

// DependenciesConfig captures providers and settings required to build run dependencies.
type DependenciesConfig struct {
	LoggerProvider               func() *zap.Logger
	HumanReadableLoggingProvider func() bool
	CommandRunner                execshell.CommandRunner
	Executor                     execshell.Executor
	PassMarkers                  []string
	SuiteTimeout                 time.Duration
	RecoveryCommand              string
	RecoveryWorkingDirectory     string
	RecoveryTimeout              time.Duration
	EnvironmentVariables         map[string]string
}

// DependenciesOptions allows per-command overrides when resolving run dependencies.
type DependenciesOptions struct {
	Command         *cobra.Command
	Output          io.Writer
	Errors          io.Writer
	RunID           string
	OutputTailLines int
	DisableReport   bool
}

// DependenciesResult exposes resolved collaborators along with their run wrapper.
type DependenciesResult struct {
	Run        Dependencies
	Executor   execshell.Executor
	Classifier classifier.Classifier
	Recovery   *recovery.Invoker
	Controller *retry.Controller
}

// BuildDependencies resolves the executor, classifier, recovery invoker and
// retry controller for a run.
func BuildDependencies(config DependenciesConfig, options DependenciesOptions) (DependenciesResult, error) {
	logger := resolveLogger(nil)
	if config.LoggerProvider != nil {
		logger = resolveLogger(config.LoggerProvider())
	}
	humanReadable := false
	if config.HumanReadableLoggingProvider != nil {
		humanReadable = config.HumanReadableLoggingProvider()
	}

	executor := config.Executor
	if executor == nil {
		commandRunner := config.CommandRunner
		if commandRunner == nil {
			commandRunner = execshell.NewOSCommandRunner()
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, humanReadable)
		if executorError != nil {
			return DependenciesResult{}, fmt.Errorf("taskrunner.dependencies.executor: %w", executorError)
		}
		executor = shellExecutor
	}

	verdict := classifier.New(config.PassMarkers)

	invoker, invokerError := recovery.NewInvoker(logger, executor, recovery.Configuration{
		Command:              config.RecoveryCommand,
		WorkingDirectory:     config.RecoveryWorkingDirectory,
		Timeout:              config.RecoveryTimeout,
		EnvironmentVariables: config.EnvironmentVariables,
	})
	if invokerError != nil {
		return DependenciesResult{}, fmt.Errorf("taskrunner.dependencies.recovery: %w", invokerError)
	}

	controller, controllerError := retry.NewController(logger, executor, verdict, invoker, retry.Options{
		Timeout:              config.SuiteTimeout,
		EnvironmentVariables: config.EnvironmentVariables,
	})
	if controllerError != nil {
		return DependenciesResult{}, fmt.Errorf("taskrunner.dependencies.retry: %w", controllerError)
	}

	runDependencies := Dependencies{
		Logger:          logger,
		SuiteRunner:     controller,
		RunID:           options.RunID,
		Output:          resolveWriter(options.Output, options.Command, true),
		Errors:          resolveWriter(options.Errors, options.Command, false),
		OutputTailLines: options.OutputTailLines,
		DisableReport:   options.DisableReport,
	}

	return DependenciesResult{
		Run:        runDependencies,
		Executor:   executor,
		Classifier: verdict,
		Recovery:   invoker,
		Controller: controller,
	}, nil
}

func resolveLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveWriter(provided io.Writer, command *cobra.Command, useStdout bool) io.Writer {
	if provided != nil {
		return provided
	}
	if command != nil {
		if useStdout {
			if writer := command.OutOrStdout(); writer != nil && writer != io.Discard {
				return writer
			}
		} else {
			if writer := command.ErrOrStderr(); writer != nil && writer != io.Discard {
				return writer
			}
		}
	}
	if useStdout {
		return os.Stdout
	}
	return os.Stderr
}
