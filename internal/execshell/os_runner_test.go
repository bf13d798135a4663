//go:build unix

package execshell_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/suiterun/internal/execshell"
)

func TestOSCommandRunnerSeparatesStreams(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()

	result, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Script: "echo first; echo second >&2; echo third",
	})
	require.NoError(testInstance, runError)
	require.True(testInstance, result.ExitSucceeded)
	require.Equal(testInstance, 0, result.ExitCode)
	require.Equal(testInstance, "first\nthird\n", result.StandardOutput)
	require.Equal(testInstance, "second\n", result.ErrorOutput)
	require.Equal(testInstance, "first\nsecond\nthird\n", result.CombinedOutput)
}

func TestOSCommandRunnerReportsNonZeroExit(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()

	result, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Script: "echo broken >&2; exit 3",
	})
	require.NoError(testInstance, runError)
	require.False(testInstance, result.ExitSucceeded)
	require.Equal(testInstance, 3, result.ExitCode)
	require.Equal(testInstance, "broken\n", result.ErrorOutput)
}

func TestOSCommandRunnerUsesWorkingDirectoryAndEnvironment(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(workingDirectory, "marker.txt"), []byte("present"), 0o600))

	runner := execshell.NewOSCommandRunner()
	result, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Script: "cat marker.txt; printf ' %s' \"$SUITERUN_TEST_VALUE\"",
		Details: execshell.CommandDetails{
			WorkingDirectory:     workingDirectory,
			EnvironmentVariables: map[string]string{"SUITERUN_TEST_VALUE": "configured"},
		},
	})
	require.NoError(testInstance, runError)
	require.True(testInstance, result.ExitSucceeded)
	require.Equal(testInstance, "present configured", result.StandardOutput)
}

func TestShellExecutorKillsProcessTreeOnTimeout(testInstance *testing.T) {
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner(), false)
	require.NoError(testInstance, creationError)

	startedAt := time.Now()
	result, executionError := shellExecutor.Execute(context.Background(), execshell.ShellCommand{
		Label:  "slow",
		Script: "echo started; sleep 30 & wait",
		Details: execshell.CommandDetails{
			WorkingDirectory: testInstance.TempDir(),
			Timeout:          200 * time.Millisecond,
		},
	})
	require.NoError(testInstance, executionError)
	require.Less(testInstance, time.Since(startedAt), 10*time.Second)
	require.True(testInstance, result.TimedOut)
	require.False(testInstance, result.ExitSucceeded)
	require.True(testInstance, strings.HasPrefix(result.CombinedOutput, "started\n"))
	require.Contains(testInstance, result.ErrorOutput, "timed out after 200ms")
}

func TestShellExecutorStopsProcessWhenCallerCancels(testInstance *testing.T) {
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner(), false)
	require.NoError(testInstance, creationError)

	executionContext, cancelExecution := context.WithCancel(context.Background())
	defer cancelExecution()
	time.AfterFunc(300*time.Millisecond, cancelExecution)

	startedAt := time.Now()
	result, executionError := shellExecutor.Execute(executionContext, execshell.ShellCommand{
		Label:   "slow",
		Script:  "sleep 5",
		Details: execshell.CommandDetails{WorkingDirectory: testInstance.TempDir()},
	})
	require.NoError(testInstance, executionError)
	require.Less(testInstance, time.Since(startedAt), 4*time.Second)
	require.True(testInstance, result.Cancelled)
	require.False(testInstance, result.ExitSucceeded)
	require.Contains(testInstance, result.ErrorOutput, "command cancelled")
}
