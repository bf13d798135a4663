package utils

import (
	"context"
	"strings"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	logLevelContextKeyConstant              = commandContextKey("logLevel")
	runIdentifierContextKeyConstant         = commandContextKey("runIdentifier")
	selectionContextKeyConstant             = commandContextKey("selection")
)

type commandContextKey string

// SelectionContext describes how the suites of a run were chosen.
type SelectionContext struct {
	Tokens  []string
	Unknown []string
}

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// WithLogLevel attaches the effective log level to the provided context.
func (accessor CommandContextAccessor) WithLogLevel(parentContext context.Context, logLevel string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	trimmedLogLevel := strings.TrimSpace(logLevel)
	if len(trimmedLogLevel) == 0 {
		return parentContext
	}
	return context.WithValue(parentContext, logLevelContextKeyConstant, trimmedLogLevel)
}

// WithRunIdentifier attaches the run identifier to the provided context.
func (accessor CommandContextAccessor) WithRunIdentifier(parentContext context.Context, runIdentifier string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	trimmedIdentifier := strings.TrimSpace(runIdentifier)
	if len(trimmedIdentifier) == 0 {
		return parentContext
	}
	return context.WithValue(parentContext, runIdentifierContextKeyConstant, trimmedIdentifier)
}

// WithSelection attaches the resolved suite selection when any tokens were given.
func (accessor CommandContextAccessor) WithSelection(parentContext context.Context, selection SelectionContext) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	if len(selection.Tokens) == 0 && len(selection.Unknown) == 0 {
		return parentContext
	}
	normalized := SelectionContext{
		Tokens:  append([]string(nil), selection.Tokens...),
		Unknown: append([]string(nil), selection.Unknown...),
	}
	return context.WithValue(parentContext, selectionContextKeyConstant, normalized)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !configurationFilePathAvailable {
		return "", false
	}
	return configurationFilePath, true
}

// LogLevel extracts the effective log level from the provided context.
func (accessor CommandContextAccessor) LogLevel(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, valueAvailable := executionContext.Value(logLevelContextKeyConstant).(string)
	if !valueAvailable {
		return "", false
	}
	return value, true
}

// RunIdentifier extracts the run identifier from the provided context.
func (accessor CommandContextAccessor) RunIdentifier(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, valueAvailable := executionContext.Value(runIdentifierContextKeyConstant).(string)
	if !valueAvailable {
		return "", false
	}
	return value, true
}

// Selection extracts the suite selection from the provided context.
func (accessor CommandContextAccessor) Selection(executionContext context.Context) (SelectionContext, bool) {
	if executionContext == nil {
		return SelectionContext{}, false
	}
	value, valueAvailable := executionContext.Value(selectionContextKeyConstant).(SelectionContext)
	if !valueAvailable {
		return SelectionContext{}, false
	}
	return value, true
}
