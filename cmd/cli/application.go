package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tyemirov/suiterun/internal/exitcodes"
	"github.com/tyemirov/suiterun/internal/suites"
	"github.com/tyemirov/suiterun/internal/utils"
	flagutils "github.com/tyemirov/suiterun/internal/utils/flags"
	"github.com/tyemirov/suiterun/internal/version"
	"github.com/tyemirov/suiterun/pkg/taskrunner"
)

const (
	applicationNameConstant                                          = "suiterun"
	applicationUsageConstant                                         = "suiterun [flags] [suite...]"
	applicationShortDescriptionConstant                              = "Run test suites sequentially with one automated recovery retry"
	applicationLongDescriptionConstant                               = "suiterun runs each selected test suite in its own working directory, one after another. A failing suite triggers the recovery command once and is then retried once. Suites are selected with --all, per-suite flags, --suite or positional names; with no selection, or when nothing matches, every suite runs. The process exits 0 when every suite passed, 1 when at least one failed and 2 on orchestrator errors."
	versionCommandUseConstant                                        = "version"
	versionCommandShortDescriptionConstant                           = "Print the suiterun version"
	configurationNameConstant                                        = "config"
	configurationTypeConstant                                        = "yaml"
	configurationFileNameConstant                                    = "config.yaml"
	environmentPrefixConstant                                        = "SUITERUN"
	configurationSearchPathEnvironmentVariableConstant               = "SUITERUN_CONFIG_SEARCH_PATH"
	xdgConfigHomeEnvironmentVariableConstant                         = "XDG_CONFIG_HOME"
	defaultConfigurationSearchPathConstant                           = "."
	xdgConfigurationDirectoryNameConstant                            = "suiterun"
	userConfigurationDirectoryNameConstant                           = ".suiterun"
	commonLogLevelConfigKeyConstant                                  = "common.log_level"
	commonLogFormatConfigKeyConstant                                 = "common.log_format"
	orchestrationWorkspaceRootConfigKeyConstant                      = "orchestration.workspace_root"
	orchestrationRegistryConfigKeyConstant                           = "orchestration.registry"
	orchestrationTimeoutConfigKeyConstant                            = "orchestration.timeout"
	orchestrationRecoveryCommandConfigKeyConstant                    = "orchestration.recovery_command"
	orchestrationRecoveryTimeoutConfigKeyConstant                    = "orchestration.recovery_timeout"
	orchestrationPassMarkersConfigKeyConstant                        = "orchestration.pass_markers"
	orchestrationOutputTailLinesConfigKeyConstant                    = "orchestration.output_tail_lines"
	defaultOutputTailLinesConstant                                   = 20
	configFileFlagNameConstant                                       = "config"
	configFileFlagUsageConstant                                      = "Path to a configuration file"
	logLevelFlagNameConstant                                         = "log-level"
	logLevelFlagUsageConstant                                        = "Log level (debug, info, warn, error)"
	logFormatFlagNameConstant                                        = "log-format"
	logFormatFlagUsageConstant                                       = "Log format (structured, console)"
	registryFlagNameConstant                                         = "registry"
	registryFlagUsageConstant                                        = "Path to a suite registry document (defaults to the built-in registry)"
	workspaceFlagNameConstant                                        = "workspace"
	workspaceFlagUsageConstant                                       = "Directory suite working directories are resolved against"
	timeoutFlagNameConstant                                          = "timeout"
	timeoutFlagUsageConstant                                         = "Per-attempt suite timeout (0 disables)"
	recoveryCommandFlagNameConstant                                  = "recovery-command"
	recoveryCommandFlagUsageConstant                                 = "Command run once after a suite fails, before its retry"
	versionFlagNameConstant                                          = "version"
	versionFlagUsageConstant                                         = "Print the suiterun version and exit"
	configurationInitializationFlagNameConstant                      = "init"
	configurationInitializationFlagUsageConstant                     = "Write the embedded default configuration to LOCAL (./config.yaml) or user ($HOME/.suiterun/config.yaml)"
	configurationInitializationForceFlagNameConstant                 = "force"
	configurationInitializationForceFlagUsageConstant                = "Overwrite an existing configuration file when used with --init"
	configurationInitializationScopeLocalConstant                    = "local"
	configurationInitializationScopeUserConstant                     = "user"
	configurationInitializationDefaultScopeConstant                  = configurationInitializationScopeLocalConstant
	configurationInitializationSuccessMessageConstant                = "configuration initialized"
	configurationInitializationContentUnavailableErrorConstant       = "embedded configuration content is unavailable"
	configurationInitializationWorkingDirectoryErrorTemplateConstant = "unable to resolve working directory: %w"
	configurationInitializationHomeDirectoryErrorTemplateConstant    = "unable to resolve home directory: %w"
	configurationInitializationUnsupportedScopeTemplateConstant      = "unsupported initialization scope %q"
	configurationInitializationDirectoryErrorTemplateConstant        = "unable to prepare configuration directory %s: %w"
	configurationInitializationDirectoryConflictTemplateConstant     = "configuration directory %s is a file"
	configurationInitializationExistingFileTemplateConstant          = "configuration file %s already exists (use --force to overwrite)"
	configurationInitializationExistingDirectoryTemplateConstant     = "configuration path %s is a directory"
	configurationInitializationWriteErrorTemplateConstant            = "unable to write configuration file %s: %w"
	configurationDirectoryPermissionConstant                         = 0o755
	configurationFilePermissionConstant                              = 0o644
	configurationLoadErrorTemplateConstant                           = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                              = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                                  = "unable to flush logs: %w"
	workingDirectoryErrorTemplateConstant                            = "unable to resolve working directory: %w"
	workspaceRootErrorTemplateConstant                               = "unable to resolve workspace root: %w"
	dependenciesErrorTemplateConstant                                = "unable to assemble suite run: %w"
	configurationInitializedMessageConstant                          = "configuration initialized"
	configurationInitializedConsoleTemplateConstant                  = "%s | log level=%s | log format=%s | config file=%s"
	configurationLogLevelFieldConstant                               = "log_level"
	configurationLogFormatFieldConstant                              = "log_format"
	configurationFileFieldConstant                                   = "config_file"
	orchestratorErrorMessageConstant                                 = "orchestrator error"
	unknownSuitesMessageConstant                                     = "ignoring unknown suite selectors"
	selectionFallbackMessageConstant                                 = "no suite matched the selection; running every suite"
	runIdentifierFieldConstant                                       = "run_id"
	unknownSelectorsFieldConstant                                    = "unknown"
	workspaceRootFieldConstant                                       = "workspace_root"
	selectedSuitesFieldConstant                                      = "suites"
	runStartingMessageConstant                                       = "suite run configured"
	versionOutputTemplateConstant                                    = "%s %s\n"
)

type loggerOutputsFactory interface {
	CreateLoggerOutputs(utils.LogLevel, utils.LogFormat) (utils.LoggerOutputs, error)
}

type configurationInitializationPlan struct {
	DirectoryPath string
	FilePath      string
}

// Application wires the root command, configuration, logging and the suite run.
type Application struct {
	rootCommand                       *cobra.Command
	configurationLoader               *utils.ConfigurationLoader
	loggerFactory                     loggerOutputsFactory
	logger                            *zap.Logger
	consoleLogger                     *zap.Logger
	configuration                     ApplicationConfiguration
	configurationMetadata             utils.LoadedConfiguration
	configurationFilePath             string
	logLevelFlagValue                 string
	logFormatFlagValue                string
	registryFlagValue                 string
	workspaceFlagValue                string
	timeoutFlagValue                  time.Duration
	recoveryCommandFlagValue          string
	commandContextAccessor            utils.CommandContextAccessor
	selectorDefinition                flagutils.SelectorFlagDefinition
	configurationInitializationScope  string
	configurationInitializationForced bool
	versionFlag                       bool
	versionResolver                   func(context.Context) string
	runIdentifierProvider             func() string
	taskRunnerFactory                 taskrunner.Factory
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		runIdentifierProvider:  uuid.NewString,
	}
	application.versionResolver = application.resolveVersion

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	if defaultRegistry, registryError := suites.DefaultRegistry(); registryError == nil {
		application.selectorDefinition = flagutils.SelectorFlagDefinition{SuiteNames: defaultRegistry.Names()}
	}

	cobraCommand := &cobra.Command{
		Use:                applicationUsageConstant,
		Short:              applicationShortDescriptionConstant,
		Long:               applicationLongDescriptionConstant,
		Args:               cobra.ArbitraryArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.registryFlagValue, registryFlagNameConstant, "", registryFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.workspaceFlagValue, workspaceFlagNameConstant, "", workspaceFlagUsageConstant)
	cobraCommand.PersistentFlags().DurationVar(&application.timeoutFlagValue, timeoutFlagNameConstant, 0, timeoutFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.recoveryCommandFlagValue, recoveryCommandFlagNameConstant, "", recoveryCommandFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)
	cobraCommand.Flags().StringVar(
		&application.configurationInitializationScope,
		configurationInitializationFlagNameConstant,
		"",
		configurationInitializationFlagUsageConstant,
	)
	if initializationFlag := cobraCommand.Flags().Lookup(configurationInitializationFlagNameConstant); initializationFlag != nil {
		initializationFlag.NoOptDefVal = configurationInitializationDefaultScopeConstant
	}
	cobraCommand.Flags().BoolVar(
		&application.configurationInitializationForced,
		configurationInitializationForceFlagNameConstant,
		false,
		configurationInitializationForceFlagUsageConstant,
	)

	flagutils.BindSelectorFlags(cobraCommand, application.selectorDefinition)

	cobraCommand.AddCommand(&cobra.Command{
		Use:   versionCommandUseConstant,
		Short: versionCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			application.printVersion(command.Context(), command.OutOrStdout())
			return nil
		},
	})

	application.rootCommand = cobraCommand

	return application
}

// SetOutput redirects the report and error streams of the command tree.
func (application *Application) SetOutput(output io.Writer, errorOutput io.Writer) {
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(errorOutput)
}

// Execute runs the command tree with the process arguments.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command tree with the supplied arguments,
// logs orchestrator errors and flushes the loggers.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	executionContext, stopSignals := interruptContext(context.Background())
	defer stopSignals()

	application.rootCommand.SetArgs(arguments)
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if exitcodes.IsOrchestratorError(executionError) {
		application.logger.Error(orchestratorErrorMessageConstant, zap.Error(executionError))
	}

	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// interruptContext is cancelled by the first SIGINT or SIGTERM. Default signal
// handling is restored as soon as the context ends, so a second signal
// terminates the process while suites drain.
func interruptContext(parentContext context.Context) (context.Context, context.CancelFunc) {
	executionContext, stopSignals := signal.NotifyContext(parentContext, os.Interrupt, syscall.SIGTERM)
	releaseSignalsWhenDone(executionContext, stopSignals)
	return executionContext, stopSignals
}

func releaseSignalsWhenDone(executionContext context.Context, stopSignals context.CancelFunc) {
	go func() {
		<-executionContext.Done()
		stopSignals()
	}()
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) == 0 {
		return append([]string{defaultConfigurationSearchPathConstant}, application.resolveUserConfigurationDirectoryPaths()...)
	}

	overridePaths := strings.FieldsFunc(overrideValue, func(candidate rune) bool {
		return candidate == os.PathListSeparator
	})

	cleanedPaths := make([]string, 0, len(overridePaths))
	for _, pathCandidate := range overridePaths {
		trimmedCandidate := strings.TrimSpace(pathCandidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		cleanedPaths = append(cleanedPaths, trimmedCandidate)
	}

	if len(cleanedPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}

	return cleanedPaths
}

func (application *Application) resolveUserConfigurationDirectoryPaths() []string {
	userConfigurationDirectoryPaths := make([]string, 0, 3)

	appendConfigurationDirectory := func(baseDirectoryPath string, directoryName string) {
		trimmedBaseDirectoryPath := strings.TrimSpace(baseDirectoryPath)
		if len(trimmedBaseDirectoryPath) == 0 {
			return
		}

		candidateDirectoryPath := filepath.Join(trimmedBaseDirectoryPath, directoryName)
		for _, existingDirectoryPath := range userConfigurationDirectoryPaths {
			if existingDirectoryPath == candidateDirectoryPath {
				return
			}
		}

		userConfigurationDirectoryPaths = append(userConfigurationDirectoryPaths, candidateDirectoryPath)
	}

	appendConfigurationDirectory(os.Getenv(xdgConfigHomeEnvironmentVariableConstant), xdgConfigurationDirectoryNameConstant)

	if userConfigurationBaseDirectoryPath, userConfigurationDirectoryError := os.UserConfigDir(); userConfigurationDirectoryError == nil {
		appendConfigurationDirectory(userConfigurationBaseDirectoryPath, xdgConfigurationDirectoryNameConstant)
	}

	if userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir(); userHomeDirectoryError == nil {
		appendConfigurationDirectory(userHomeDirectoryPath, userConfigurationDirectoryNameConstant)
	}

	return userConfigurationDirectoryPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.applyFlagOverrides(command)

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}

	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	application.logConfigurationInitialization()

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithLogLevel(updatedContext, application.configuration.Common.LogLevel)

		command.SetContext(updatedContext)
	}

	return nil
}

// applyFlagOverrides gives explicitly set flags precedence over every other
// configuration source.
func (application *Application) applyFlagOverrides(command *cobra.Command) {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, registryFlagNameConstant) {
		application.configuration.Orchestration.Registry = application.registryFlagValue
	}
	if application.persistentFlagChanged(command, workspaceFlagNameConstant) {
		application.configuration.Orchestration.WorkspaceRoot = application.workspaceFlagValue
	}
	if application.persistentFlagChanged(command, timeoutFlagNameConstant) {
		application.configuration.Orchestration.Timeout = application.timeoutFlagValue
	}
	if application.persistentFlagChanged(command, recoveryCommandFlagNameConstant) {
		application.configuration.Orchestration.RecoveryCommand = application.recoveryCommandFlagValue
	}
}

// InitializeForCommand prepares application state for the provided command name without executing command logic.
func (application *Application) InitializeForCommand(commandUse string) error {
	command := &cobra.Command{Use: commandUse}
	command.SetContext(context.Background())
	return application.initializeConfiguration(command)
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

// Configuration returns the resolved configuration.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	if !strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	if application.humanReadableLoggingEnabled() {
		bannerMessage := fmt.Sprintf(
			configurationInitializedConsoleTemplateConstant,
			configurationInitializedMessageConstant,
			application.configuration.Common.LogLevel,
			application.configuration.Common.LogFormat,
			application.configurationMetadata.ConfigFileUsed,
		)
		application.consoleLogger.Debug(bannerMessage)
		return
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
}

func (application *Application) resolveVersion(executionContext context.Context) string {
	return version.Detect(executionContext, version.Dependencies{})
}

func (application *Application) printVersion(executionContext context.Context, output io.Writer) {
	fmt.Fprintf(output, versionOutputTemplateConstant, applicationNameConstant, application.versionResolver(executionContext))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	initializationHandled, initializationError := application.handleConfigurationInitialization(command)
	if initializationError != nil {
		return initializationError
	}
	if initializationHandled {
		return nil
	}

	if application.versionFlag {
		application.printVersion(command.Context(), command.OutOrStdout())
		return nil
	}

	orchestration := application.configuration.Orchestration

	registry, registryError := orchestration.LoadRegistry()
	if registryError != nil {
		return registryError
	}

	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	workspaceRoot, workspaceRootError := orchestration.ResolveWorkspaceRoot(workingDirectory)
	if workspaceRootError != nil {
		return fmt.Errorf(workspaceRootErrorTemplateConstant, workspaceRootError)
	}
	registry = registry.ResolveWorkingDirectories(workspaceRoot)

	selectionTokens := flagutils.CollectSelectionTokens(command, application.selectorDefinition, arguments)
	selection := registry.Select(selectionTokens)

	runIdentifier := application.runIdentifierProvider()
	runLogger := application.logger.With(zap.String(runIdentifierFieldConstant, runIdentifier))
	if len(selection.Unknown) > 0 {
		runLogger.Warn(unknownSuitesMessageConstant, zap.Strings(unknownSelectorsFieldConstant, selection.Unknown))
	}
	if selection.Fallback {
		runLogger.Warn(selectionFallbackMessageConstant)
	}

	selectedNames := make([]string, 0, len(selection.Suites))
	for _, definition := range selection.Suites {
		selectedNames = append(selectedNames, definition.Name)
	}
	runLogger.Debug(
		runStartingMessageConstant,
		zap.String(workspaceRootFieldConstant, workspaceRoot),
		zap.Strings(selectedSuitesFieldConstant, selectedNames),
	)

	executionContext := application.commandContextAccessor.WithRunIdentifier(command.Context(), runIdentifier)
	executionContext = application.commandContextAccessor.WithSelection(executionContext, utils.SelectionContext{
		Tokens:  selectionTokens,
		Unknown: selection.Unknown,
	})

	dependencies, dependenciesError := taskrunner.BuildDependencies(
		taskrunner.DependenciesConfig{
			LoggerProvider:               func() *zap.Logger { return runLogger },
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			PassMarkers:                  orchestration.PassMarkers,
			SuiteTimeout:                 orchestration.Timeout,
			RecoveryCommand:              orchestration.RecoveryCommand,
			RecoveryWorkingDirectory:     workspaceRoot,
			RecoveryTimeout:              orchestration.RecoveryTimeout,
		},
		taskrunner.DependenciesOptions{
			Command:         command,
			RunID:           runIdentifier,
			OutputTailLines: orchestration.OutputTailLines,
		},
	)
	if dependenciesError != nil {
		return fmt.Errorf(dependenciesErrorTemplateConstant, dependenciesError)
	}

	_, runError := taskrunner.Resolve(application.taskRunnerFactory, dependencies.Run).Run(executionContext, selection.Suites)
	return runError
}

func (application *Application) handleConfigurationInitialization(command *cobra.Command) (bool, error) {
	if !application.localFlagChanged(command, configurationInitializationFlagNameConstant) {
		return false, nil
	}

	initializationScope := strings.TrimSpace(application.configurationInitializationScope)
	if len(initializationScope) == 0 {
		initializationScope = configurationInitializationDefaultScopeConstant
	}

	initializationPlan, planError := application.resolveConfigurationInitializationPlan(initializationScope)
	if planError != nil {
		return true, planError
	}

	configurationContent, _ := EmbeddedDefaultConfiguration()
	if writeError := application.writeConfigurationFile(initializationPlan, configurationContent); writeError != nil {
		return true, writeError
	}

	application.logger.Info(
		configurationInitializationSuccessMessageConstant,
		zap.String(configurationFileFieldConstant, initializationPlan.FilePath),
	)

	return true, nil
}

func (application *Application) resolveConfigurationInitializationPlan(initializationScope string) (configurationInitializationPlan, error) {
	switch strings.ToLower(strings.TrimSpace(initializationScope)) {
	case configurationInitializationScopeLocalConstant:
		workingDirectoryPath, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return configurationInitializationPlan{}, fmt.Errorf(configurationInitializationWorkingDirectoryErrorTemplateConstant, workingDirectoryError)
		}

		return configurationInitializationPlan{
			DirectoryPath: workingDirectoryPath,
			FilePath:      filepath.Join(workingDirectoryPath, configurationFileNameConstant),
		}, nil
	case configurationInitializationScopeUserConstant:
		userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir()
		if userHomeDirectoryError != nil {
			return configurationInitializationPlan{}, fmt.Errorf(configurationInitializationHomeDirectoryErrorTemplateConstant, userHomeDirectoryError)
		}

		configurationDirectoryPath := filepath.Join(userHomeDirectoryPath, userConfigurationDirectoryNameConstant)

		return configurationInitializationPlan{
			DirectoryPath: configurationDirectoryPath,
			FilePath:      filepath.Join(configurationDirectoryPath, configurationFileNameConstant),
		}, nil
	default:
		return configurationInitializationPlan{}, fmt.Errorf(configurationInitializationUnsupportedScopeTemplateConstant, initializationScope)
	}
}

func (application *Application) writeConfigurationFile(initializationPlan configurationInitializationPlan, configurationContent []byte) error {
	if len(configurationContent) == 0 {
		return errors.New(configurationInitializationContentUnavailableErrorConstant)
	}

	directoryPath := initializationPlan.DirectoryPath
	directoryInfo, directoryStatError := os.Stat(directoryPath)
	switch {
	case directoryStatError == nil:
		if !directoryInfo.IsDir() {
			return fmt.Errorf(configurationInitializationDirectoryConflictTemplateConstant, directoryPath)
		}
	case errors.Is(directoryStatError, os.ErrNotExist):
		if createError := os.MkdirAll(directoryPath, configurationDirectoryPermissionConstant); createError != nil {
			return fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, directoryPath, createError)
		}
	default:
		return fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, directoryPath, directoryStatError)
	}

	fileInfo, fileStatError := os.Stat(initializationPlan.FilePath)
	switch {
	case fileStatError == nil:
		if fileInfo.IsDir() {
			return fmt.Errorf(configurationInitializationExistingDirectoryTemplateConstant, initializationPlan.FilePath)
		}
		if !application.configurationInitializationForced {
			return fmt.Errorf(configurationInitializationExistingFileTemplateConstant, initializationPlan.FilePath)
		}
	case errors.Is(fileStatError, os.ErrNotExist):
	default:
		return fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, initializationPlan.FilePath, fileStatError)
	}

	if writeError := os.WriteFile(initializationPlan.FilePath, configurationContent, configurationFilePermissionConstant); writeError != nil {
		return fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, initializationPlan.FilePath, writeError)
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}

	if syncError := application.syncLoggerInstance(application.consoleLogger); syncError != nil {
		return syncError
	}

	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.EBADF):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func (application *Application) localFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	return command.Flags().Changed(flagName)
}
