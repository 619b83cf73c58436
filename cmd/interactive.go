package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"

	"github.com/quocvuong92/johnathan-agent/internal/agent"
	"github.com/quocvuong92/johnathan-agent/internal/constants"
	"github.com/quocvuong92/johnathan-agent/internal/display"
)

// InteractiveSession holds the state for an interactive chat session.
type InteractiveSession struct {
	app         *App
	agent       *agent.Agent
	printer     *turnPrinter
	exitFlag    bool
	inputBuffer []string // Buffer for multiline input
}

func (app *App) newSession() *InteractiveSession {
	printer := newTurnPrinter(app.cfg.Stream, app.cfg.Render)
	return &InteractiveSession{
		app:     app,
		agent:   app.newAgent(printer),
		printer: printer,
	}
}

// completer provides auto-completion suggestions for slash commands.
func (s *InteractiveSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()
	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	// Only show suggestions when input starts with "/"
	if !strings.HasPrefix(text, "/") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	// /model <name> - suggest known models
	if strings.HasPrefix(strings.ToLower(text), "/model ") {
		var suggestions []prompt.Suggest
		for _, model := range constants.KnownModels {
			desc := ""
			if model == s.agent.Model() {
				desc = "(current)"
			}
			suggestions = append(suggestions, prompt.Suggest{Text: model, Description: desc})
		}
		return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
	}

	return prompt.FilterHasPrefix(commandSuggestions(s.agent.Model()), w, true), startIndex, endIndex
}

func commandSuggestions(model string) []prompt.Suggest {
	return []prompt.Suggest{
		{Text: "/model", Description: "Show/switch model (current: " + model + ")"},
		{Text: "/clear", Description: "Start a new conversation"},
		{Text: "/tools", Description: "List the tools the model can use"},
		{Text: "/history", Description: "Show the current conversation"},
		{Text: "/help", Description: "Show all available commands"},
		{Text: "/exit", Description: "Exit interactive mode"},

		// Aliases
		{Text: "/q", Description: "Exit (alias)"},
		{Text: "/c", Description: "Clear (alias)"},
		{Text: "/h", Description: "Help (alias)"},
	}
}

// runInteractive starts the interactive chat mode with a REPL interface.
// Supports multiline input with backslash continuation and slash commands.
func (app *App) runInteractive() {
	session := app.newSession()

	display.Println("Johnathan - Interactive Mode")
	display.Printf("Model: %s\n", app.cfg.Model)
	display.Printf("Tools: %s\n", strings.Join(session.agent.Registry().Names(), ", "))
	display.Println("Type /help for commands, 'quit' or Ctrl+D to leave")
	display.Println("End a line with \\ for multiline input")
	display.Println()

	p := prompt.New(
		session.executor,
		prompt.WithCompleter(session.completer),
		prompt.WithPrefix("> "),
		prompt.WithTitle("Johnathan"),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithSuggestionBGColor(prompt.DarkBlue),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkBlue),
		prompt.WithDescriptionTextColor(prompt.LightGray),
		prompt.WithSelectedDescriptionBGColor(prompt.Cyan),
		prompt.WithSelectedDescriptionTextColor(prompt.Black),
		prompt.WithMaxSuggestion(10),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return session.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				display.Println("\nGoodbye!")
				session.exitFlag = true
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					display.Println("Goodbye!")
					session.exitFlag = true
				}
				return false
			},
		}),
	)

	p.Run()
}

// isQuit reports whether input is one of the bare words that end the session.
func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// executor handles each input line of the REPL: multiline continuation,
// quit words, slash commands and questions for the agent.
func (s *InteractiveSession) executor(input string) {
	if s.exitFlag {
		return
	}

	// Handle multiline input with backslash continuation
	if strings.HasSuffix(input, "\\") {
		s.inputBuffer = append(s.inputBuffer, strings.TrimSuffix(input, "\\"))
		display.Printf("... ")
		return
	}

	if len(s.inputBuffer) > 0 {
		s.inputBuffer = append(s.inputBuffer, input)
		input = strings.Join(s.inputBuffer, "\n")
		s.inputBuffer = nil
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	if isQuit(input) {
		display.Println("Goodbye!")
		s.exitFlag = true
		return
	}

	// First line determines whether the input is a command
	if strings.HasPrefix(input, "/") {
		if s.handleCommand(input) {
			s.exitFlag = true
		}
		return
	}

	display.Println()
	if _, err := s.ask(input); err != nil {
		if !errors.Is(err, context.Canceled) {
			display.ShowError(err.Error())
		}
	}
	display.Println()
}

// ask runs one turn; Ctrl+C while waiting cancels the turn, not the session.
func (s *InteractiveSession) ask(input string) (string, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runTurn(ctx, s.agent, s.printer, input)
}
