package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigLoader handles loading and parsing YAML configuration files
type ConfigLoader struct {
	configDir string
}

// NewConfigLoader creates a new config loader with the specified directory
func NewConfigLoader(configDir string) *ConfigLoader {
	return &ConfigLoader{
		configDir: configDir,
	}
}

// LoadResourceDocs loads the documentation hints the documentation
// agent serves for CloudFormation resource types
func (c *ConfigLoader) LoadResourceDocs() (*ResourceDocsConfig, error) {
	var config ResourceDocsConfig
	err := c.loadYAMLFile("resource-docs.yaml", &config)
	if err != nil {
		return nil, fmt.Errorf("failed to load resource docs: %w", err)
	}
	return &config, nil
}

// loadYAMLFile loads and unmarshals a YAML file into the provided structure
func (c *ConfigLoader) loadYAMLFile(filename string, target interface{}) error {
	filePath := filepath.Join(c.configDir, filename)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	err = yaml.Unmarshal(data, target)
	if err != nil {
		return fmt.Errorf("failed to parse YAML in %s: %w", filePath, err)
	}

	return nil
}

// ResourceDocsConfig represents the resource documentation hint file
type ResourceDocsConfig struct {
	BaseURL   string             `yaml:"base_url"`
	Resources []ResourceDocEntry `yaml:"resources"`
}

// ResourceDocEntry is one documented resource type
type ResourceDocEntry struct {
	TypeName         string   `yaml:"type_name"`
	Summary          string   `yaml:"summary"`
	DocumentationURL string   `yaml:"documentation_url"`
	CommonProperties []string `yaml:"common_properties"`
}

// LookupResourceDoc returns the documentation entry for a resource
// type, if one is configured
func (c *ResourceDocsConfig) LookupResourceDoc(typeName string) (*ResourceDocEntry, bool) {
	for i := range c.Resources {
		if c.Resources[i].TypeName == typeName {
			return &c.Resources[i], true
		}
	}
	return nil, false
}
