// Package classifier decides whether a suite run passed by inspecting its
// captured output.
//
// The verdict is a textual heuristic, not a parse of any test framework's
// results: a run passes when it wrote nothing to stderr, or when its merged
// output contains one of the pass markers. Markers match case-sensitively as
// plain substrings, so a failure message that happens to contain a marker is
// classified as a pass. The process exit status is not consulted.
package classifier

import (
	"strings"

	"github.com/tyemirov/suiterun/internal/execshell"
)

const (
	// PassMarkerWord is the textual pass marker emitted by most runners ("pass", "passed", "passing").
	PassMarkerWord = "pass"
	// PassMarkerCheck is the check-mark pass marker emitted by bun, vitest and jest reporters.
	PassMarkerCheck = "✓"
)

// DefaultPassMarkers lists the markers used when none are configured.
func DefaultPassMarkers() []string {
	return []string{PassMarkerWord, PassMarkerCheck}
}

// Classifier holds an immutable pass marker set.
type Classifier struct {
	passMarkers []string
}

// New builds a Classifier. Blank markers are dropped; an empty set falls back to DefaultPassMarkers.
func New(passMarkers []string) Classifier {
	normalized := make([]string, 0, len(passMarkers))
	for _, marker := range passMarkers {
		if len(marker) == 0 || len(strings.TrimSpace(marker)) == 0 {
			continue
		}
		normalized = append(normalized, marker)
	}
	if len(normalized) == 0 {
		normalized = DefaultPassMarkers()
	}
	return Classifier{passMarkers: normalized}
}

// PassMarkers returns a copy of the configured markers.
func (classifier Classifier) PassMarkers() []string {
	return append([]string(nil), classifier.passMarkers...)
}

// Classify reports whether the run counts as a success.
func (classifier Classifier) Classify(result execshell.ExecutionResult) bool {
	if len(result.ErrorOutput) == 0 {
		return true
	}
	markers := classifier.passMarkers
	if len(markers) == 0 {
		markers = DefaultPassMarkers()
	}
	for _, marker := range markers {
		if strings.Contains(result.CombinedOutput, marker) {
			return true
		}
	}
	return false
}

// Classify applies the default marker set.
func Classify(result execshell.ExecutionResult) bool {
	return New(nil).Classify(result)
}
