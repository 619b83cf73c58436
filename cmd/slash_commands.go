package cmd

import (
	"strings"

	"github.com/quocvuong92/johnathan-agent/internal/constants"
	"github.com/quocvuong92/johnathan-agent/internal/display"
)

// handleCommand processes slash commands in interactive mode.
// Returns true if the session should exit, false otherwise.
func (s *InteractiveSession) handleCommand(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "/exit", "/quit", "/q":
		display.Println("Goodbye!")
		return true

	case "/clear", "/c":
		s.agent.Reset()
		display.Println("Conversation cleared.")

	case "/help", "/h":
		showHelp()

	case "/tools":
		display.ShowTools(s.agent.Registry().Definitions())

	case "/history":
		display.ShowHistory(s.agent.History().Messages())

	case "/model":
		s.handleModelCommand(parts[1:])

	default:
		display.ShowError("Unknown command: " + cmd + " (type /help for commands)")
	}

	return false
}

// handleModelCommand shows or switches the model.
func (s *InteractiveSession) handleModelCommand(args []string) {
	if len(args) == 0 {
		display.ShowModels(constants.KnownModels, s.agent.Model())
		return
	}
	s.agent.SetModel(args[0])
	display.Printf("Switched to model: %s\n", args[0])
}

func showHelp() {
	display.Println(`Commands:
  /model [name]   Show or switch the model
  /clear, /c      Start a new conversation
  /tools          List the tools the model can use
  /history        Show the current conversation
  /help, /h       Show this help
  /exit, /q       Exit (also: quit, exit, q, Ctrl+D)

End a line with \ to continue typing on the next line.
Press Ctrl+C while the model is working to cancel the current question.`)
}
