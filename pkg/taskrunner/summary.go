package taskrunner

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tyemirov/suiterun/internal/exitcodes"
	"github.com/tyemirov/suiterun/internal/retry"
)

const (
	statusPassedNoRecoveryConstant    = "PASSED (no recovery)"
	statusPassedAfterRecoveryConstant = "PASSED (after recovery)"
	statusFailedConstant              = "FAILED"
	statusFailedAfterRecoveryConstant = "FAILED (after recovery)"
	statusLineTemplateConstant        = "%s %s: %s"
	recoveryNotAttemptedConstant      = "-"
	recoverySucceededConstant         = "ok"
	recoveryFailedConstant            = "failed"
	tableHeaderSuiteConstant          = "SUITE"
	tableHeaderStatusConstant         = "STATUS"
	tableHeaderRecoveryConstant       = "RECOVERY"
	tableHeaderAttemptsConstant       = "ATTEMPTS"
	tableHeaderDurationConstant       = "DURATION"
	tableFooterTotalConstant          = "TOTAL"
	tableFooterStatusTemplateConstant = "%d/%d PASSED"
	outputTailHeaderTemplateConstant  = "--- %s output (last %d lines) ---"
	zeroDurationConstant              = "0s"
)

// RunSummary is the ordered set of outcomes of one invocation.
type RunSummary struct {
	RunID    string
	Outcomes []retry.SuiteOutcome
	Duration time.Duration
}

// PassedCount counts suites that ultimately succeeded.
func (summary RunSummary) PassedCount() int {
	passed := 0
	for _, outcome := range summary.Outcomes {
		if outcome.Succeeded {
			passed++
		}
	}
	return passed
}

// FailedCount counts suites that never reached success.
func (summary RunSummary) FailedCount() int {
	return len(summary.Outcomes) - summary.PassedCount()
}

// RecoveredCount counts suites that passed only after recovery.
func (summary RunSummary) RecoveredCount() int {
	recovered := 0
	for _, outcome := range summary.Outcomes {
		if outcome.Succeeded && outcome.RecoveryAttempted {
			recovered++
		}
	}
	return recovered
}

// FailedSuiteNames lists failed suites in run order.
func (summary RunSummary) FailedSuiteNames() []string {
	names := make([]string, 0)
	for _, outcome := range summary.Outcomes {
		if !outcome.Succeeded {
			names = append(names, outcome.Suite.Name)
		}
	}
	return names
}

// ExitCode is 0 when every suite passed and 1 otherwise.
func (summary RunSummary) ExitCode() int {
	if summary.FailedCount() == 0 {
		return exitcodes.Success
	}
	return exitcodes.SuiteFailure
}

// Err returns a SuiteFailureError when any suite failed.
func (summary RunSummary) Err() error {
	if summary.FailedCount() == 0 {
		return nil
	}
	return SuiteFailureError{FailedSuites: summary.FailedSuiteNames(), Total: len(summary.Outcomes)}
}

// StatusLabel renders the verdict of one outcome.
func StatusLabel(outcome retry.SuiteOutcome) string {
	switch {
	case outcome.Succeeded && !outcome.RecoveryAttempted:
		return statusPassedNoRecoveryConstant
	case outcome.Succeeded:
		return statusPassedAfterRecoveryConstant
	case outcome.RecoveryAttempted:
		return statusFailedAfterRecoveryConstant
	default:
		return statusFailedConstant
	}
}

// RenderStatusLines returns one "<icon> <name>: <status>" line per suite.
func RenderStatusLines(summary RunSummary) []string {
	lines := make([]string, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		lines = append(lines, fmt.Sprintf(statusLineTemplateConstant, outcome.Suite.DisplayIcon(), outcome.Suite.Name, StatusLabel(outcome)))
	}
	return lines
}

// RenderSummaryTable renders the outcome table followed by the output tail of
// each failed suite. tailLines <= 0 omits the tails.
func RenderSummaryTable(summary RunSummary, tailLines int) string {
	var buffer bytes.Buffer

	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(&buffer)
	tableWriter.AppendHeader(table.Row{
		tableHeaderSuiteConstant,
		tableHeaderStatusConstant,
		tableHeaderRecoveryConstant,
		tableHeaderAttemptsConstant,
		tableHeaderDurationConstant,
	})
	tableWriter.SetColumnConfigs([]table.ColumnConfig{
		{Name: tableHeaderAttemptsConstant, Align: text.AlignRight},
		{Name: tableHeaderDurationConstant, Align: text.AlignRight},
	})

	for _, outcome := range summary.Outcomes {
		tableWriter.AppendRow(table.Row{
			outcome.Suite.DisplayTitle(),
			StatusLabel(outcome),
			recoveryColumn(outcome),
			outcome.Attempts,
			formatDuration(outcome.Duration),
		})
	}
	tableWriter.AppendFooter(table.Row{
		tableFooterTotalConstant,
		fmt.Sprintf(tableFooterStatusTemplateConstant, summary.PassedCount(), len(summary.Outcomes)),
		"",
		"",
		formatDuration(summary.Duration),
	})
	tableWriter.SetStyle(table.StyleLight)
	tableWriter.Style().Format.Footer = text.FormatDefault
	tableWriter.Render()

	if tailLines <= 0 {
		return buffer.String()
	}
	for _, outcome := range summary.Outcomes {
		if outcome.Succeeded {
			continue
		}
		tail := outputTail(outcome.FinalOutput, tailLines)
		if len(tail) == 0 {
			continue
		}
		fmt.Fprintf(&buffer, outputTailHeaderTemplateConstant+"\n", outcome.Suite.Name, tailLines)
		for _, line := range tail {
			fmt.Fprintln(&buffer, line)
		}
	}
	return buffer.String()
}

// RenderSummaryLine returns the machine-greppable summary printed after a run.
func RenderSummaryLine(summary RunSummary) string {
	parts := []string{fmt.Sprintf("Summary: total.suites=%d", len(summary.Outcomes))}
	parts = append(parts, fmt.Sprintf("passed=%d", summary.PassedCount()))
	parts = append(parts, fmt.Sprintf("failed=%d", summary.FailedCount()))
	parts = append(parts, fmt.Sprintf("recovered=%d", summary.RecoveredCount()))
	parts = append(parts, fmt.Sprintf("duration_human=%s", formatDuration(summary.Duration)))
	parts = append(parts, fmt.Sprintf("duration_ms=%d", summary.Duration.Milliseconds()))
	return strings.Join(parts, " ")
}

func recoveryColumn(outcome retry.SuiteOutcome) string {
	if !outcome.RecoveryAttempted || outcome.Recovery == nil {
		return recoveryNotAttemptedConstant
	}
	if outcome.Recovery.Succeeded {
		return recoverySucceededConstant
	}
	return recoveryFailedConstant
}

func outputTail(output string, limit int) []string {
	cleaned := strings.TrimRight(stripansi.Strip(output), "\n")
	if len(strings.TrimSpace(cleaned)) == 0 {
		return nil
	}
	lines := strings.Split(cleaned, "\n")
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}

func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return zeroDurationConstant
	}
	return duration.Round(time.Millisecond).String()
}
