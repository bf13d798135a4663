package main

import (
	"fmt"
	"os"

	"github.com/tyemirov/suiterun/cmd/cli"
	"github.com/tyemirov/suiterun/internal/exitcodes"
)

const (
	exitErrorTemplateConstant = "suiterun: orchestrator error: %v\n"
)

// main executes the suiterun command-line application.
func main() {
	executionError := cli.Execute()
	if exitcodes.IsOrchestratorError(executionError) {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(exitcodes.ForError(executionError))
}
