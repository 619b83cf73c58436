package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quocvuong92/johnathan-agent/internal/constants"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// ProjectConfigDir is the per-project config directory
const ProjectConfigDir = ".agent"

// FileConfig represents the configuration file structure
type FileConfig struct {
	APIKey        string          `yaml:"api_key,omitempty"`
	BaseURL       string          `yaml:"base_url,omitempty"`
	APIVersion    string          `yaml:"api_version,omitempty"`
	Model         string          `yaml:"model,omitempty"`
	MaxTokens     int             `yaml:"max_tokens,omitempty"`
	MaxToolRounds int             `yaml:"max_tool_rounds,omitempty"`
	SystemPrompt  string          `yaml:"system_prompt,omitempty"`
	LogLevel      string          `yaml:"log_level,omitempty"`
	MetricsAddr   string          `yaml:"metrics_addr,omitempty"`
	Defaults      *DefaultsConfig `yaml:"defaults,omitempty"`
}

// DefaultsConfig holds default flag values
type DefaultsConfig struct {
	Stream *bool `yaml:"stream,omitempty"`
	Render *bool `yaml:"render,omitempty"`
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	paths := []string{filepath.Join(".", ProjectConfigDir, ConfigFileName)}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, constants.AppName, ConfigFileName))
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", constants.AppName, ConfigFileName))
	}

	return paths
}

// LoadConfigFile loads the first config file found, or an empty config when there is none.
func LoadConfigFile() (*FileConfig, error) {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return loadConfigFromPath(path)
		}
	}
	return &FileConfig{}, nil
}

func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyFileConfig fills settings that flags and the environment left unset.
func (c *Config) ApplyFileConfig(fc *FileConfig) {
	if fc == nil {
		return
	}

	setString := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}
	setString(&c.APIKey, fc.APIKey)
	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.APIVersion, fc.APIVersion)
	setString(&c.Model, fc.Model)
	setString(&c.SystemPrompt, fc.SystemPrompt)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.MetricsAddr, fc.MetricsAddr)

	if c.MaxTokens == 0 && fc.MaxTokens > 0 {
		c.MaxTokens = fc.MaxTokens
	}
	if c.MaxToolRounds == 0 && fc.MaxToolRounds > 0 {
		c.MaxToolRounds = fc.MaxToolRounds
	}

	if fc.Defaults != nil {
		if fc.Defaults.Stream != nil && !c.isExplicit("stream") {
			c.Stream = *fc.Defaults.Stream
		}
		if fc.Defaults.Render != nil && !c.isExplicit("render") {
			c.Render = *fc.Defaults.Render
		}
	}
}

// CreateDefaultConfigFile creates a commented config file in the user config directory
func CreateDefaultConfigFile() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, constants.AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	defaultConfig := `# Johnathan Agent configuration
# Location: ~/.config/johnathan-agent/config.yaml
# Flags and environment variables override these values.

# model: claude-sonnet-4-20250514
# max_tokens: 1024
# max_tool_rounds: 10
# base_url: https://api.anthropic.com
# api_version: "2023-06-01"
# system_prompt: "Be precise and concise."
# log_level: warn
# metrics_addr: 127.0.0.1:9464

# Prefer ANTHROPIC_API_KEY or 'agent key set' over storing the key here.
# api_key: sk-ant-...

# defaults:
#   stream: true
#   render: false
`

	if err := os.WriteFile(path, []byte(defaultConfig), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
