// Package config loads the agent configuration from flags, environment,
// .env files, the YAML config file and the system keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/quocvuong92/johnathan-agent/internal/constants"
)

// Environment variable names
const (
	EnvAPIKey        = "ANTHROPIC_API_KEY"
	EnvBaseURL       = "ANTHROPIC_BASE_URL"
	EnvModel         = "AGENT_MODEL"
	EnvMaxTokens     = "AGENT_MAX_TOKENS"
	EnvMaxToolRounds = "AGENT_MAX_TOOL_ROUNDS"
	EnvSystemPrompt  = "AGENT_SYSTEM_PROMPT"
	EnvLogLevel      = "AGENT_LOG_LEVEL"
)

// DotEnvFile is loaded from the working directory when present.
const DotEnvFile = ".env"

// Errors
var (
	ErrAPIKeyNotFound   = errors.New("API key not found. Set ANTHROPIC_API_KEY, add it to .env, or run 'agent key set'")
	ErrInvalidMaxTokens = errors.New("max tokens must be positive")
	ErrInvalidMaxRounds = errors.New("max tool rounds must be positive")
	ErrInvalidBaseURL   = errors.New("base URL must start with http:// or https://")
)

// Config holds the application configuration. It is built once and injected
// into the client and the agent.
type Config struct {
	// Completion service
	APIKey     string
	BaseURL    string
	APIVersion string
	Model      string
	MaxTokens  int
	Timeout    time.Duration

	// Agent behaviour
	MaxToolRounds int
	SystemPrompt  string

	// Output and diagnostics
	LogLevel    string
	MetricsAddr string

	// Flags
	Stream      bool
	Render      bool
	Verbose     bool
	Interactive bool

	explicit map[string]bool
}

// NewConfig creates a new Config with flag defaults
func NewConfig() *Config {
	return &Config{Stream: true}
}

// MarkExplicit records settings chosen on the command line so lower-priority
// sources leave them alone.
func (c *Config) MarkExplicit(names ...string) {
	if c.explicit == nil {
		c.explicit = make(map[string]bool)
	}
	for _, n := range names {
		c.explicit[n] = true
	}
}

func (c *Config) isExplicit(name string) bool {
	return c.explicit[name]
}

// Validate fills unset values from the environment, .env, the config file,
// the keyring and defaults, in that order, then checks the result.
func (c *Config) Validate() error {
	// Existing environment variables win over .env entries.
	if _, err := os.Stat(DotEnvFile); err == nil {
		if err := godotenv.Load(DotEnvFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
		}
	}

	c.applyEnv()

	// Errors loading the config file are ignored; env vars and flags take precedence.
	if fileConfig, err := LoadConfigFile(); err == nil {
		c.ApplyFileConfig(fileConfig)
	}

	if c.APIKey == "" {
		if key, err := LoadAPIKey(); err == nil {
			c.APIKey = key
		}
	}

	c.applyDefaults()

	if c.APIKey == "" {
		return ErrAPIKeyNotFound
	}
	if c.MaxTokens <= 0 {
		return ErrInvalidMaxTokens
	}
	if c.MaxToolRounds <= 0 {
		return ErrInvalidMaxRounds
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return ErrInvalidBaseURL
	}
	return nil
}

func (c *Config) applyEnv() {
	if c.APIKey == "" {
		c.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	}
	if c.BaseURL == "" {
		c.BaseURL = strings.TrimSpace(os.Getenv(EnvBaseURL))
	}
	if c.Model == "" {
		c.Model = strings.TrimSpace(os.Getenv(EnvModel))
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = envInt(EnvMaxTokens)
	}
	if c.MaxToolRounds == 0 {
		c.MaxToolRounds = envInt(EnvMaxToolRounds)
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = os.Getenv(EnvSystemPrompt)
	}
	if c.LogLevel == "" {
		c.LogLevel = strings.TrimSpace(os.Getenv(EnvLogLevel))
	}
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultBaseURL
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.APIVersion == "" {
		c.APIVersion = constants.DefaultAPIVersion
	}
	if c.Model == "" {
		c.Model = constants.DefaultModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = constants.DefaultMaxTokens
	}
	if c.MaxToolRounds == 0 {
		c.MaxToolRounds = constants.DefaultMaxToolRounds
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = constants.DefaultSystemMessage
	}
	if c.LogLevel == "" {
		c.LogLevel = constants.DefaultLogLevel
	}
	if c.Verbose {
		c.LogLevel = "debug"
	}
	if c.Timeout == 0 {
		c.Timeout = constants.DefaultAPITimeout
	}
}

// envInt parses a positive integer variable; malformed values count as unset.
func envInt(name string) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// MessagesURL builds the full URL of the Messages endpoint
func (c *Config) MessagesURL() string {
	return c.BaseURL + constants.MessagesPath
}

// MaskedAPIKey returns the key with everything but its last four characters hidden.
func (c *Config) MaskedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", 8) + c.APIKey[len(c.APIKey)-4:]
}
