package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	// AllFlagName selects every registered suite.
	AllFlagName = "all"
	// AllFlagUsage describes the all selector.
	AllFlagUsage = "Run every registered suite"
	// SuiteFlagName selects suites by name.
	SuiteFlagName = "suite"
	// SuiteFlagUsage describes the suite selector.
	SuiteFlagUsage = "Suite to run (repeatable)"

	suiteToggleUsageTemplateConstant = "Run the %s suite"
)

// SelectorFlagDefinition lists the suites that receive a dedicated boolean flag.
type SelectorFlagDefinition struct {
	SuiteNames []string
}

// BindSelectorFlags attaches --all, --suite and one boolean flag per suite
// name. Names colliding with an existing flag are skipped.
func BindSelectorFlags(command *cobra.Command, definition SelectorFlagDefinition) {
	if command == nil {
		return
	}
	flagSet := command.Flags()
	if flagSet.Lookup(AllFlagName) == nil {
		flagSet.Bool(AllFlagName, false, AllFlagUsage)
	}
	if flagSet.Lookup(SuiteFlagName) == nil {
		flagSet.StringSlice(SuiteFlagName, nil, SuiteFlagUsage)
	}
	for _, suiteName := range definition.SuiteNames {
		flagName := strings.ToLower(strings.TrimSpace(suiteName))
		if len(flagName) == 0 || flagSet.Lookup(flagName) != nil {
			continue
		}
		flagSet.Bool(flagName, false, fmt.Sprintf(suiteToggleUsageTemplateConstant, flagName))
	}
}

// CollectSelectionTokens gathers selection tokens from the selector flags and
// positional arguments, in that order.
func CollectSelectionTokens(command *cobra.Command, definition SelectorFlagDefinition, positional []string) []string {
	tokens := make([]string, 0, len(positional))
	if selectAll, _, allError := BoolFlag(command, AllFlagName); allError == nil && selectAll {
		tokens = append(tokens, AllFlagName)
	}
	for _, suiteName := range definition.SuiteNames {
		flagName := strings.ToLower(strings.TrimSpace(suiteName))
		if len(flagName) == 0 {
			continue
		}
		if selected, _, toggleError := BoolFlag(command, flagName); toggleError == nil && selected {
			tokens = append(tokens, flagName)
		}
	}
	if suiteNames, _, suiteError := StringSliceFlag(command, SuiteFlagName); suiteError == nil {
		tokens = append(tokens, suiteNames...)
	}
	return append(tokens, positional...)
}
