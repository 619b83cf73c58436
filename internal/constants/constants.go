// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// Timeout constants used across the application
const (
	// DefaultAPITimeout is the timeout for completion requests (streaming can take a while)
	DefaultAPITimeout = 120 * time.Second
	// DefaultToolTimeout bounds a single tool execution
	DefaultToolTimeout = 30 * time.Second
)

// Completion service defaults
const (
	DefaultBaseURL    = "https://api.anthropic.com"
	MessagesPath      = "/v1/messages"
	DefaultAPIVersion = "2023-06-01"
	DefaultModel      = "claude-sonnet-4-20250514"
	DefaultMaxTokens  = 1024
)

// Application defaults
const (
	AppName              = "johnathan-agent"
	AppVersion           = "0.1.0"
	DefaultMaxToolRounds = 10
	DefaultLogLevel      = "warn"
	DefaultSystemMessage = "You are Johnathan, a helpful assistant running in a terminal. " +
		"Answer precisely and concisely. Use the available tools when they help answer the question."
)

// KnownModels are offered for completion in the interactive /model command.
var KnownModels = []string{
	"claude-sonnet-4-20250514",
	"claude-opus-4-20250514",
	"claude-3-7-sonnet-latest",
	"claude-3-5-haiku-latest",
}
