package taskrunner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tyemirov/suiterun/internal/retry"
	"github.com/tyemirov/suiterun/internal/suites"
	"github.com/tyemirov/suiterun/internal/utils"
)

const (
	runStartingMessageConstant      = "suite run starting"
	runCompletedMessageConstant     = "suite run completed"
	suiteCancelledMessageConstant   = "suite skipped: run cancelled"
	cancelledOutputTemplateConstant = "suiterun: run cancelled before suite started: %v\n"
	runIDFieldNameConstant          = "run_id"
	selectionFieldNameConstant      = "selection"
	unknownSelectorsFieldConstant   = "unknown_selectors"
	configurationFileFieldConstant  = "configuration_file"
	logLevelFieldNameConstant       = "log_level"
	suiteCountFieldNameConstant     = "suites"
	failedCountFieldNameConstant    = "failed"
	suiteFieldNameConstant          = "suite"
	durationFieldNameConstant       = "duration"
)

// SuiteRunner drives one suite to its final outcome.
type SuiteRunner interface {
	Run(executionContext context.Context, suite suites.Definition) retry.SuiteOutcome
}

// Executor runs the selected suites and reports the aggregate verdict.
type Executor interface {
	Run(ctx context.Context, definitions []suites.Definition) (RunSummary, error)
}

// Factory constructs an Executor given run dependencies.
type Factory func(Dependencies) Executor

// Dependencies are the collaborators of a run.
type Dependencies struct {
	Logger          *zap.Logger
	SuiteRunner     SuiteRunner
	RunID           string
	Output          io.Writer
	Errors          io.Writer
	OutputTailLines int
	DisableReport   bool
}

// Resolve returns either the provided factory result or the default sequential
// runner, wrapped so the report is printed after every run.
func Resolve(factory Factory, dependencies Dependencies) Executor {
	var base Executor
	if factory != nil {
		base = factory(dependencies)
	}
	if base == nil {
		base = sequentialRunner{dependencies: dependencies}
	}
	return summaryExecutor{
		delegate:     base,
		dependencies: dependencies,
	}
}

type sequentialRunner struct {
	dependencies Dependencies
}

// Run executes suites strictly in order; suite N+1 starts only after suite N
// reached its final state. Cancellation marks the remaining suites failed.
func (runner sequentialRunner) Run(ctx context.Context, definitions []suites.Definition) (RunSummary, error) {
	if runner.dependencies.SuiteRunner == nil {
		return RunSummary{}, ErrSuiteRunnerNotConfigured
	}
	logger := resolveLogger(runner.dependencies.Logger)
	runID := resolveRunID(ctx, runner.dependencies.RunID)

	logger.Info(runStartingMessageConstant, runContextFields(ctx, runID, len(definitions))...)

	startedAt := time.Now()
	summary := RunSummary{RunID: runID, Outcomes: make([]retry.SuiteOutcome, 0, len(definitions))}
	for _, definition := range definitions {
		if cancellationError := ctx.Err(); cancellationError != nil {
			logger.Warn(suiteCancelledMessageConstant, zap.String(suiteFieldNameConstant, definition.Name), zap.Error(cancellationError))
			summary.Outcomes = append(summary.Outcomes, cancelledOutcome(definition, cancellationError))
			continue
		}
		summary.Outcomes = append(summary.Outcomes, runner.dependencies.SuiteRunner.Run(ctx, definition))
	}
	summary.Duration = time.Since(startedAt)

	logger.Info(runCompletedMessageConstant,
		zap.String(runIDFieldNameConstant, runID),
		zap.Int(failedCountFieldNameConstant, summary.FailedCount()),
		zap.Duration(durationFieldNameConstant, summary.Duration),
	)
	return summary, nil
}

// resolveRunID prefers the explicit identifier, then the one carried by the
// command context, and generates a fresh one otherwise.
func resolveRunID(ctx context.Context, configuredRunID string) string {
	if len(configuredRunID) > 0 {
		return configuredRunID
	}
	if contextRunID, available := utils.NewCommandContextAccessor().RunIdentifier(ctx); available {
		return contextRunID
	}
	return uuid.New().String()
}

func runContextFields(ctx context.Context, runID string, suiteCount int) []zap.Field {
	accessor := utils.NewCommandContextAccessor()
	fields := []zap.Field{
		zap.String(runIDFieldNameConstant, runID),
		zap.Int(suiteCountFieldNameConstant, suiteCount),
	}
	if selection, available := accessor.Selection(ctx); available {
		fields = append(fields, zap.Strings(selectionFieldNameConstant, selection.Tokens))
		if len(selection.Unknown) > 0 {
			fields = append(fields, zap.Strings(unknownSelectorsFieldConstant, selection.Unknown))
		}
	}
	if configurationFilePath, available := accessor.ConfigurationFilePath(ctx); available && len(configurationFilePath) > 0 {
		fields = append(fields, zap.String(configurationFileFieldConstant, configurationFilePath))
	}
	if logLevel, available := accessor.LogLevel(ctx); available {
		fields = append(fields, zap.String(logLevelFieldNameConstant, logLevel))
	}
	return fields
}

func cancelledOutcome(definition suites.Definition, cause error) retry.SuiteOutcome {
	return retry.SuiteOutcome{
		Suite:       definition,
		State:       retry.StateDone,
		Failure:     retry.FailureCancelled,
		FinalOutput: fmt.Sprintf(cancelledOutputTemplateConstant, cause),
		Err:         cause,
	}
}

type summaryExecutor struct {
	delegate     Executor
	dependencies Dependencies
}

// Run delegates, prints the report and converts suite failures into a
// SuiteFailureError.
func (executor summaryExecutor) Run(ctx context.Context, definitions []suites.Definition) (RunSummary, error) {
	summary, err := executor.delegate.Run(ctx, definitions)
	if err != nil {
		return summary, err
	}
	executor.printReport(summary)
	return summary, summary.Err()
}

func (executor summaryExecutor) printReport(summary RunSummary) {
	if executor.dependencies.DisableReport {
		return
	}
	writer := executor.reportWriter()
	if writer == nil {
		return
	}

	for _, line := range RenderStatusLines(summary) {
		fmt.Fprintln(writer, line)
	}
	if len(summary.Outcomes) > 0 {
		fmt.Fprint(writer, RenderSummaryTable(summary, executor.dependencies.OutputTailLines))
	}
	fmt.Fprintln(writer, RenderSummaryLine(summary))
}

func (executor summaryExecutor) reportWriter() io.Writer {
	if executor.dependencies.Output != nil {
		return executor.dependencies.Output
	}
	if executor.dependencies.Errors != nil {
		return executor.dependencies.Errors
	}
	return nil
}
