package cli

import (
	_ "embed"
	"path/filepath"
	"strings"
	"time"

	"github.com/tyemirov/suiterun/internal/suites"
)

//go:embed config.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns the built-in configuration document and its type.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), embeddedDefaultConfiguration...), configurationTypeConstant
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common        ApplicationCommonConfiguration        `mapstructure:"common"`
	Orchestration ApplicationOrchestrationConfiguration `mapstructure:"orchestration"`
}

// ApplicationCommonConfiguration stores logging defaults.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationOrchestrationConfiguration stores the suite run settings.
type ApplicationOrchestrationConfiguration struct {
	WorkspaceRoot   string        `mapstructure:"workspace_root"`
	Registry        string        `mapstructure:"registry"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RecoveryCommand string        `mapstructure:"recovery_command"`
	RecoveryTimeout time.Duration `mapstructure:"recovery_timeout"`
	PassMarkers     []string      `mapstructure:"pass_markers"`
	OutputTailLines int           `mapstructure:"output_tail_lines"`
}

// LoadRegistry returns the configured registry, or the built-in one when no
// registry path is set.
func (configuration ApplicationOrchestrationConfiguration) LoadRegistry() (*suites.Registry, error) {
	registryPath := strings.TrimSpace(configuration.Registry)
	if len(registryPath) == 0 {
		return suites.DefaultRegistry()
	}
	return suites.LoadRegistry(registryPath)
}

// ResolveWorkspaceRoot returns the absolute workspace root, defaulting to the
// supplied working directory.
func (configuration ApplicationOrchestrationConfiguration) ResolveWorkspaceRoot(workingDirectory string) (string, error) {
	workspaceRoot := strings.TrimSpace(configuration.WorkspaceRoot)
	if len(workspaceRoot) == 0 {
		workspaceRoot = workingDirectory
	}
	if !filepath.IsAbs(workspaceRoot) {
		workspaceRoot = filepath.Join(workingDirectory, workspaceRoot)
	}
	return filepath.Abs(workspaceRoot)
}

func defaultConfigurationValues() map[string]any {
	return map[string]any{
		commonLogLevelConfigKeyConstant:               "info",
		commonLogFormatConfigKeyConstant:              "console",
		orchestrationWorkspaceRootConfigKeyConstant:   "",
		orchestrationRegistryConfigKeyConstant:        "",
		orchestrationTimeoutConfigKeyConstant:         "0s",
		orchestrationRecoveryCommandConfigKeyConstant: "",
		orchestrationRecoveryTimeoutConfigKeyConstant: "0s",
		orchestrationPassMarkersConfigKeyConstant:     []string{},
		orchestrationOutputTailLinesConfigKeyConstant: defaultOutputTailLinesConstant,
	}
}
