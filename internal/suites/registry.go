// Package suites holds the registry of known test suites and resolves
// selection tokens into the ordered list of suites to run.
package suites

import (
	"fmt"
	"strings"
)

// SelectAllToken selects every registered suite.
const SelectAllToken = "all"

const (
	registryEmptyMessageConstant          = "registry defines no suites"
	suiteNameMissingTemplateConstant      = "suite #%d has no name"
	suiteNameDuplicateTemplateConstant    = "suite %q is defined more than once"
	suiteCommandMissingTemplateConstant   = "suite %q has no command"
	suiteDirectoryMissingTemplateConstant = "suite %q has no working directory"
	registryErrorTemplateConstant         = "invalid suite registry: %s"
	registryErrorCauseTemplateConstant    = "invalid suite registry: %s: %v"
)

// RegistryError reports a malformed or unreadable suite registry.
type RegistryError struct {
	Reason string
	Cause  error
}

// Error describes the registry problem.
func (registryError RegistryError) Error() string {
	if registryError.Cause == nil {
		return fmt.Sprintf(registryErrorTemplateConstant, registryError.Reason)
	}
	return fmt.Sprintf(registryErrorCauseTemplateConstant, registryError.Reason, registryError.Cause)
}

// Unwrap exposes the underlying cause.
func (registryError RegistryError) Unwrap() error {
	return registryError.Cause
}

// Registry is an immutable ordered set of suite definitions.
type Registry struct {
	definitions []Definition
	indexByName map[string]int
}

// Selection is the result of resolving selection tokens.
type Selection struct {
	Suites []Definition
	// Unknown lists tokens that named no registered suite.
	Unknown []string
	// Fallback is true when tokens were given but none matched.
	Fallback bool
}

// NewRegistry validates the definitions and builds a Registry.
func NewRegistry(definitions []Definition) (*Registry, error) {
	if len(definitions) == 0 {
		return nil, RegistryError{Reason: registryEmptyMessageConstant}
	}

	ordered := make([]Definition, 0, len(definitions))
	indexByName := make(map[string]int, len(definitions))
	for definitionIndex, definition := range definitions {
		definition.Name = strings.TrimSpace(definition.Name)
		definition.Command = strings.TrimSpace(definition.Command)
		definition.WorkingDirectory = strings.TrimSpace(definition.WorkingDirectory)

		if len(definition.Name) == 0 {
			return nil, RegistryError{Reason: fmt.Sprintf(suiteNameMissingTemplateConstant, definitionIndex+1)}
		}
		normalizedName := normalizeToken(definition.Name)
		if _, exists := indexByName[normalizedName]; exists {
			return nil, RegistryError{Reason: fmt.Sprintf(suiteNameDuplicateTemplateConstant, definition.Name)}
		}
		if len(definition.Command) == 0 {
			return nil, RegistryError{Reason: fmt.Sprintf(suiteCommandMissingTemplateConstant, definition.Name)}
		}
		if len(definition.WorkingDirectory) == 0 {
			return nil, RegistryError{Reason: fmt.Sprintf(suiteDirectoryMissingTemplateConstant, definition.Name)}
		}

		indexByName[normalizedName] = len(ordered)
		ordered = append(ordered, definition)
	}

	return &Registry{definitions: ordered, indexByName: indexByName}, nil
}

// Definitions returns a copy of the registered suites in registry order.
func (registry *Registry) Definitions() []Definition {
	return append([]Definition(nil), registry.definitions...)
}

// Names returns the registered suite names in registry order.
func (registry *Registry) Names() []string {
	names := make([]string, 0, len(registry.definitions))
	for _, definition := range registry.definitions {
		names = append(names, definition.Name)
	}
	return names
}

// Lookup finds a suite by name, ignoring case.
func (registry *Registry) Lookup(name string) (Definition, bool) {
	index, exists := registry.indexByName[normalizeToken(name)]
	if !exists {
		return Definition{}, false
	}
	return registry.definitions[index], true
}

// Select resolves selection tokens. No tokens, or the token "all", selects
// every suite. Otherwise the named suites are returned in registry order; when
// no token names a registered suite the full list is returned.
func (registry *Registry) Select(tokens []string) Selection {
	selected := make(map[string]struct{}, len(tokens))
	unknown := make([]string, 0)
	meaningfulTokens := 0
	selectAll := false

	for _, token := range tokens {
		normalizedToken := normalizeToken(token)
		if len(normalizedToken) == 0 {
			continue
		}
		meaningfulTokens++
		if normalizedToken == SelectAllToken {
			selectAll = true
			continue
		}
		definition, exists := registry.Lookup(normalizedToken)
		if !exists {
			unknown = append(unknown, strings.TrimSpace(token))
			continue
		}
		selected[definition.Name] = struct{}{}
	}

	if meaningfulTokens == 0 || selectAll {
		return Selection{Suites: registry.Definitions(), Unknown: unknown}
	}
	if len(selected) == 0 {
		return Selection{Suites: registry.Definitions(), Unknown: unknown, Fallback: true}
	}

	chosen := make([]Definition, 0, len(selected))
	for _, definition := range registry.definitions {
		if _, isSelected := selected[definition.Name]; isSelected {
			chosen = append(chosen, definition)
		}
	}
	return Selection{Suites: chosen, Unknown: unknown}
}

// ResolveWorkingDirectories returns a registry whose relative working
// directories are joined onto root.
func (registry *Registry) ResolveWorkingDirectories(root string) *Registry {
	resolved := make([]Definition, 0, len(registry.definitions))
	for _, definition := range registry.definitions {
		resolved = append(resolved, definition.withWorkingDirectoryUnder(root))
	}
	indexByName := make(map[string]int, len(registry.indexByName))
	for name, index := range registry.indexByName {
		indexByName[name] = index
	}
	return &Registry{definitions: resolved, indexByName: indexByName}
}

func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
