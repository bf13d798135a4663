package suites

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const (
	registrySchemaResourceConstant     = "registry.schema.json"
	readRegistryReasonTemplateConstant = "read %s"
	parseRegistryReasonConstant        = "parse registry document"
	schemaRegistryReasonConstant       = "registry document does not match schema"
	compileSchemaReasonConstant        = "compile registry schema"
	emptyDocumentReasonConstant        = "registry document is empty"
)

//go:embed registry.schema.json
var registrySchemaDocument []byte

//go:embed default_registry.yaml
var defaultRegistryDocument []byte

var (
	registrySchema      *jsonschema.Schema
	registrySchemaOnce  sync.Once
	registrySchemaError error
)

type registryDocument struct {
	Suites []suiteDocument `yaml:"suites"`
}

type suiteDocument struct {
	Name             string `yaml:"name"`
	Icon             string `yaml:"icon"`
	Title            string `yaml:"title"`
	WorkingDirectory string `yaml:"working_directory"`
	Command          string `yaml:"command"`
}

// DefaultRegistryDocument returns the embedded registry YAML.
func DefaultRegistryDocument() []byte {
	return append([]byte(nil), defaultRegistryDocument...)
}

// DefaultRegistry parses the embedded registry.
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultRegistryDocument)
}

// LoadRegistry reads a registry document from disk.
func LoadRegistry(path string) (*Registry, error) {
	contents, readError := os.ReadFile(path)
	if readError != nil {
		return nil, RegistryError{Reason: fmt.Sprintf(readRegistryReasonTemplateConstant, path), Cause: readError}
	}
	return ParseRegistry(contents)
}

// ParseRegistry validates a YAML registry document against the embedded
// schema and builds a Registry from it.
func ParseRegistry(contents []byte) (*Registry, error) {
	if len(bytes.TrimSpace(contents)) == 0 {
		return nil, RegistryError{Reason: emptyDocumentReasonConstant}
	}

	var generic any
	if decodeError := yaml.Unmarshal(contents, &generic); decodeError != nil {
		return nil, RegistryError{Reason: parseRegistryReasonConstant, Cause: decodeError}
	}
	if validationError := validateRegistryDocument(generic); validationError != nil {
		return nil, validationError
	}

	var document registryDocument
	if decodeError := yaml.Unmarshal(contents, &document); decodeError != nil {
		return nil, RegistryError{Reason: parseRegistryReasonConstant, Cause: decodeError}
	}

	definitions := make([]Definition, 0, len(document.Suites))
	for _, suite := range document.Suites {
		definitions = append(definitions, Definition{
			Name:             suite.Name,
			Icon:             suite.Icon,
			Title:            strings.TrimSpace(suite.Title),
			WorkingDirectory: suite.WorkingDirectory,
			Command:          suite.Command,
		})
	}
	return NewRegistry(definitions)
}

func validateRegistryDocument(generic any) error {
	schema, compileError := compiledRegistrySchema()
	if compileError != nil {
		return RegistryError{Reason: compileSchemaReasonConstant, Cause: compileError}
	}

	// Round-trip through JSON so the validator sees JSON types only.
	encoded, encodeError := json.Marshal(generic)
	if encodeError != nil {
		return RegistryError{Reason: parseRegistryReasonConstant, Cause: encodeError}
	}
	instance, unmarshalError := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if unmarshalError != nil {
		return RegistryError{Reason: parseRegistryReasonConstant, Cause: unmarshalError}
	}
	if validationError := schema.Validate(instance); validationError != nil {
		return RegistryError{Reason: schemaRegistryReasonConstant, Cause: validationError}
	}
	return nil
}

func compiledRegistrySchema() (*jsonschema.Schema, error) {
	registrySchemaOnce.Do(func() {
		schemaDocument, unmarshalError := jsonschema.UnmarshalJSON(bytes.NewReader(registrySchemaDocument))
		if unmarshalError != nil {
			registrySchemaError = fmt.Errorf("unmarshal registry schema: %w", unmarshalError)
			return
		}
		compiler := jsonschema.NewCompiler()
		if addError := compiler.AddResource(registrySchemaResourceConstant, schemaDocument); addError != nil {
			registrySchemaError = fmt.Errorf("add registry schema resource: %w", addError)
			return
		}
		registrySchema, registrySchemaError = compiler.Compile(registrySchemaResourceConstant)
	})
	return registrySchema, registrySchemaError
}
