package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant            = "."
	environmentKeyReplacementConstant          = "_"
	listSeparatorConstant                      = ","
	embeddedConfigurationErrorTemplateConstant = "configuration.embedded: %w"
	configurationFileErrorTemplateConstant     = "configuration.file %s: %w"
	configurationSearchErrorTemplateConstant   = "configuration.search: %w"
	configurationDecodeErrorTemplateConstant   = "configuration.decode: %w"
)

// LoadedConfiguration describes where configuration values came from.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader layers embedded defaults, an optional configuration
// file, and environment variables into a typed configuration. Later layers
// win: defaults < embedded < file < environment.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// NewConfigurationLoader constructs a loader that searches searchPaths in
// order for configurationName.configurationType.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string(nil), searchPaths...),
	}
}

// SetEmbeddedConfiguration registers configuration contents compiled into the binary.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(contents []byte, configurationType string) {
	loader.embeddedConfiguration = append([]byte(nil), contents...)
	loader.embeddedConfigurationType = configurationType
}

// LoadConfiguration decodes the layered configuration into target. An explicit
// configurationFilePath must exist; otherwise the search paths are consulted
// and a missing file is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	configurationReader := viper.New()
	for key, value := range defaultValues {
		configurationReader.SetDefault(key, value)
	}

	if len(loader.embeddedConfiguration) > 0 {
		configurationReader.SetConfigType(loader.embeddedConfigurationType)
		if mergeError := configurationReader.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationErrorTemplateConstant, mergeError)
		}
	}

	trimmedPath := strings.TrimSpace(configurationFilePath)
	if len(trimmedPath) > 0 {
		configurationReader.SetConfigFile(trimmedPath)
		if mergeError := configurationReader.MergeInConfig(); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationFileErrorTemplateConstant, trimmedPath, mergeError)
		}
	} else if len(loader.searchPaths) > 0 {
		configurationReader.SetConfigName(loader.configurationName)
		configurationReader.SetConfigType(loader.configurationType)
		for _, searchPath := range loader.searchPaths {
			configurationReader.AddConfigPath(searchPath)
		}
		if mergeError := configurationReader.MergeInConfig(); mergeError != nil {
			var notFoundError viper.ConfigFileNotFoundError
			if !errors.As(mergeError, &notFoundError) {
				return LoadedConfiguration{}, fmt.Errorf(configurationSearchErrorTemplateConstant, mergeError)
			}
		}
	}

	if len(loader.environmentPrefix) > 0 {
		configurationReader.SetEnvPrefix(loader.environmentPrefix)
	}
	configurationReader.SetEnvKeyReplacer(strings.NewReplacer(environmentKeySeparatorConstant, environmentKeyReplacementConstant))
	configurationReader.AutomaticEnv()

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listSeparatorConstant),
	))
	if decodeError := configurationReader.Unmarshal(target, decodeHook); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: configurationReader.ConfigFileUsed()}, nil
}
