//go:build unix

package taskrunner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/suiterun/internal/exitcodes"
	"github.com/tyemirov/suiterun/internal/retry"
	"github.com/tyemirov/suiterun/internal/suites"
)

const (
	passingSuiteScriptConstant     = `echo "3 passed"`
	healableSuiteScriptConstant    = `if [ -f healed ]; then echo "ok"; else echo "cache corrupted" >&2; exit 1; fi`
	brokenSuiteScriptConstant      = `echo "fatal: cannot build" >&2; exit 1`
	healingRecoveryScriptConstant  = `touch healed`
	recoveryCountingScriptConstant = `echo x >> recovery.log`
)

func buildRun(t *testing.T, workspace string, recoveryCommand string, output *bytes.Buffer) Executor {
	t.Helper()
	result, err := BuildDependencies(
		DependenciesConfig{
			LoggerProvider:           func() *zap.Logger { return zap.NewNop() },
			RecoveryCommand:          recoveryCommand,
			RecoveryWorkingDirectory: workspace,
			SuiteTimeout:             10 * time.Second,
		},
		DependenciesOptions{Output: output, Errors: &bytes.Buffer{}, OutputTailLines: 5},
	)
	require.NoError(t, err)
	require.NotNil(t, result.Controller)
	require.NotNil(t, result.Recovery)
	return Resolve(nil, result.Run)
}

func TestBuildDependenciesWiresCollaborators(t *testing.T) {
	result, err := BuildDependencies(
		DependenciesConfig{PassMarkers: []string{"OK"}, RecoveryCommand: "true"},
		DependenciesOptions{Output: &bytes.Buffer{}, Errors: &bytes.Buffer{}, RunID: "run"},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"OK"}, result.Classifier.PassMarkers())
	require.Equal(t, "true", result.Recovery.Command())
	require.Equal(t, "run", result.Run.RunID)
	require.Same(t, result.Controller, result.Run.SuiteRunner)
}

func TestEndToEndPassAndRecoveredPass(t *testing.T) {
	workspace := t.TempDir()
	output := &bytes.Buffer{}
	executor := buildRun(t, workspace, healingRecoveryScriptConstant, output)

	summary, err := executor.Run(context.Background(), []suites.Definition{
		{Name: "X", Command: passingSuiteScriptConstant, WorkingDirectory: workspace},
		{Name: "Y", Command: healableSuiteScriptConstant, WorkingDirectory: workspace},
	})

	require.NoError(t, err)
	require.Equal(t, exitcodes.Success, summary.ExitCode())
	require.Contains(t, output.String(), "X: PASSED (no recovery)")
	require.Contains(t, output.String(), "Y: PASSED (after recovery)")
}

func TestEndToEndFailureAfterRecovery(t *testing.T) {
	workspace := t.TempDir()
	output := &bytes.Buffer{}
	executor := buildRun(t, workspace, recoveryCountingScriptConstant, output)

	summary, err := executor.Run(context.Background(), []suites.Definition{
		{Name: "X", Command: passingSuiteScriptConstant, WorkingDirectory: workspace},
		{Name: "Y", Command: brokenSuiteScriptConstant, WorkingDirectory: workspace},
	})

	require.Equal(t, exitcodes.SuiteFailure, exitcodes.ForError(err))
	require.Equal(t, exitcodes.SuiteFailure, summary.ExitCode())
	require.Contains(t, output.String(), "Y: FAILED")
	require.Contains(t, output.String(), "fatal: cannot build")
	require.Equal(t, 2, summary.Outcomes[1].Attempts)

	recoveryLog, readError := os.ReadFile(filepath.Join(workspace, "recovery.log"))
	require.NoError(t, readError)
	require.Equal(t, "x\n", string(recoveryLog))
}

func TestEndToEndMissingDirectoryDoesNotAbortRun(t *testing.T) {
	workspace := t.TempDir()
	output := &bytes.Buffer{}
	executor := buildRun(t, workspace, recoveryCountingScriptConstant, output)

	summary, err := executor.Run(context.Background(), []suites.Definition{
		{Name: "gone", Command: passingSuiteScriptConstant, WorkingDirectory: filepath.Join(workspace, "missing")},
		{Name: "X", Command: passingSuiteScriptConstant, WorkingDirectory: workspace},
	})

	require.Equal(t, exitcodes.SuiteFailure, exitcodes.ForError(err))
	require.False(t, summary.Outcomes[0].Succeeded)
	require.False(t, summary.Outcomes[0].RecoveryAttempted)
	require.True(t, summary.Outcomes[1].Succeeded)
	require.NoFileExists(t, filepath.Join(workspace, "recovery.log"))
}

func TestSuitesRunSequentially(t *testing.T) {
	workspace := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "counter"), []byte("0\n"), 0o600))
	output := &bytes.Buffer{}
	executor := buildRun(t, workspace, "true", output)

	_, err := executor.Run(context.Background(), []suites.Definition{
		{Name: "A", Command: `sleep 0.1; echo "A saw $(cat counter)" >> observations`, WorkingDirectory: workspace},
		{Name: "B", Command: `value=$(cat counter); sleep 0.2; echo $((value + 1)) > counter; echo "B wrote" >> observations`, WorkingDirectory: workspace},
		{Name: "C", Command: `echo "C saw $(cat counter)" >> observations`, WorkingDirectory: workspace},
	})
	require.NoError(t, err)

	observations, readError := os.ReadFile(filepath.Join(workspace, "observations"))
	require.NoError(t, readError)
	require.Equal(t, "A saw 0\nB wrote\nC saw 1\n", string(observations))
}

func TestEndToEndCancellationNeverReportsPass(t *testing.T) {
	testCases := []struct {
		name            string
		suiteScript     string
		recoveryCommand string
		cancelAfter     time.Duration
		expectedStatus  string
		expectRecovery  bool
	}{
		{
			name:            "suite_interrupted_mid_run",
			suiteScript:     "sleep 5",
			recoveryCommand: recoveryCountingScriptConstant,
			cancelAfter:     300 * time.Millisecond,
			expectedStatus:  "suite: FAILED",
		},
		{
			name:            "run_interrupted_during_recovery",
			suiteScript:     brokenSuiteScriptConstant,
			recoveryCommand: "sleep 1",
			cancelAfter:     500 * time.Millisecond,
			expectedStatus:  "suite: FAILED (after recovery)",
			expectRecovery:  true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			workspace := t.TempDir()
			output := &bytes.Buffer{}
			executor := buildRun(t, workspace, testCase.recoveryCommand, output)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			time.AfterFunc(testCase.cancelAfter, cancel)

			summary, err := executor.Run(ctx, []suites.Definition{
				{Name: "suite", Command: testCase.suiteScript, WorkingDirectory: workspace},
			})

			require.Equal(t, exitcodes.SuiteFailure, exitcodes.ForError(err))
			require.Len(t, summary.Outcomes, 1)
			outcome := summary.Outcomes[0]
			require.False(t, outcome.Succeeded)
			require.Equal(t, retry.FailureCancelled, outcome.Failure)
			require.Equal(t, 1, outcome.Attempts)
			require.Equal(t, testCase.expectRecovery, outcome.RecoveryAttempted)
			require.Contains(t, output.String(), testCase.expectedStatus)
			require.NotContains(t, output.String(), "PASSED (")
			require.NoFileExists(t, filepath.Join(workspace, "recovery.log"))
		})
	}
}
