package flags_test

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/tyemirov/suiterun/internal/utils/flags"
)

func newSelectorCommand(suiteNames ...string) (*cobra.Command, flags.SelectorFlagDefinition) {
	command := &cobra.Command{Use: "suiterun", RunE: func(*cobra.Command, []string) error { return nil }}
	definition := flags.SelectorFlagDefinition{SuiteNames: suiteNames}
	flags.BindSelectorFlags(command, definition)
	return command, definition
}

func TestCollectSelectionTokens(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		positional     []string
		expectedTokens []string
	}{
		{name: "nothing_selected", expectedTokens: []string{}},
		{name: "all_flag", arguments: []string{"--all"}, expectedTokens: []string{"all"}},
		{name: "suite_toggle", arguments: []string{"--python"}, expectedTokens: []string{"python"}},
		{name: "toggles_follow_registry_order", arguments: []string{"--rust", "--python"}, expectedTokens: []string{"python", "rust"}},
		{name: "suite_flag_repeatable", arguments: []string{"--suite", "rust", "--suite", "python"}, expectedTokens: []string{"rust", "python"}},
		{name: "positional_last", arguments: []string{"--python"}, positional: []string{"cli"}, expectedTokens: []string{"python", "cli"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command, definition := newSelectorCommand("python", "rust")
			require.NoError(testInstance, command.ParseFlags(testCase.arguments))
			tokens := flags.CollectSelectionTokens(command, definition, testCase.positional)
			require.Equal(testInstance, testCase.expectedTokens, tokens)
		})
	}
}

func TestBindSelectorFlagsSkipsCollisions(testInstance *testing.T) {
	command, _ := newSelectorCommand("Python", "all", " ")
	require.NotNil(testInstance, command.Flags().Lookup("python"))
	require.Equal(testInstance, flags.AllFlagUsage, command.Flags().Lookup("all").Usage)
}

func TestFlagAccessors(testInstance *testing.T) {
	command := &cobra.Command{Use: "root"}
	command.PersistentFlags().String("config", "", "")
	command.PersistentFlags().Duration("timeout", 0, "")
	child := &cobra.Command{Use: "child"}
	command.AddCommand(child)
	require.NoError(testInstance, command.PersistentFlags().Parse([]string{"--config", "a.yaml", "--timeout", "2m"}))

	configPath, configChanged, configError := flags.StringFlag(child, "config")
	require.NoError(testInstance, configError)
	require.True(testInstance, configChanged)
	require.Equal(testInstance, "a.yaml", configPath)

	timeout, timeoutChanged, timeoutError := flags.DurationFlag(child, "timeout")
	require.NoError(testInstance, timeoutError)
	require.True(testInstance, timeoutChanged)
	require.Equal(testInstance, 2*time.Minute, timeout)

	_, _, missingError := flags.BoolFlag(child, "missing")
	require.ErrorIs(testInstance, missingError, flags.ErrFlagNotDefined)
}
