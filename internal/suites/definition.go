package suites

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultIconConstant = "•"

// Definition describes one registered test suite.
type Definition struct {
	Name             string
	Icon             string
	Title            string
	WorkingDirectory string
	Command          string
}

// DisplayIcon returns the icon, or a neutral bullet when none is set.
func (definition Definition) DisplayIcon() string {
	trimmedIcon := strings.TrimSpace(definition.Icon)
	if len(trimmedIcon) == 0 {
		return defaultIconConstant
	}
	return trimmedIcon
}

// DisplayTitle returns the configured title or the title-cased name.
func (definition Definition) DisplayTitle() string {
	trimmedTitle := strings.TrimSpace(definition.Title)
	if len(trimmedTitle) > 0 {
		return trimmedTitle
	}
	return cases.Title(language.English).String(definition.Name)
}

func (definition Definition) withWorkingDirectoryUnder(root string) Definition {
	if len(strings.TrimSpace(root)) == 0 || filepath.IsAbs(definition.WorkingDirectory) {
		return definition
	}
	definition.WorkingDirectory = filepath.Join(root, definition.WorkingDirectory)
	return definition
}
