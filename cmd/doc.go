// Package cmd implements the command-line interface of the agent.
//
// # Layout
//
//   - root.go: App struct, cobra root command and flags
//   - run.go: one-shot query execution and turn error reporting
//   - interactive.go: REPL session built on go-prompt
//   - slash_commands.go: /model, /tools, /history, /clear and friends
//   - tool_handlers.go: turnPrinter (spinner, streamed text, tool activity)
//     and agent wiring
//   - key.go: keyring management (key set, key delete, key status)
//   - config_cmd.go: config init and config show
//
// # Turns
//
// Every question is handed to an agent.Agent, which runs the tool loop
// against the Messages API. The turnPrinter is registered as the agent's
// chunk, round and tool hooks so output appears as the loop progresses.
// In interactive mode each turn gets its own interrupt context: Ctrl+C
// cancels the running turn and leaves the conversation as it was.
package cmd
