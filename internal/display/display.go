// Package display handles terminal output: streamed text, rendered markdown,
// tool activity and errors.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/quocvuong92/johnathan-agent/internal/api"
)

// maxResultPreview caps how much of a tool result is echoed to the terminal.
const maxResultPreview = 300

var (
	outMu sync.Mutex
	out   io.Writer = os.Stdout
	errW  io.Writer = os.Stderr
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	toolStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	resultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

// SetOutput redirects normal and error output. Used by tests.
func SetOutput(stdout, stderr io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	out = stdout
	errW = stderr
}

func printf(format string, a ...interface{}) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintf(out, format, a...)
}

func eprintf(format string, a ...interface{}) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintf(errW, format, a...)
}

// Printf writes formatted text to standard output.
func Printf(format string, a ...interface{}) {
	printf(format, a...)
}

// Println writes a line to standard output.
func Println(a ...interface{}) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintln(out, a...)
}

// ShowChunk prints a streamed text fragment as is.
func ShowChunk(content string) {
	printf("%s", content)
}

// ShowContent prints a complete answer.
func ShowContent(content string) {
	printf("%s\n", content)
}

// ShowContentRendered prints content as terminal-rendered markdown, falling
// back to plain text when rendering fails.
func ShowContentRendered(content string) {
	rendered, err := Render(content)
	if err != nil {
		ShowContent(content)
		return
	}
	printf("%s", rendered)
}

// ShowError prints an error message
func ShowError(msg string) {
	eprintf("%s %s\n", errorStyle.Render("Error:"), msg)
}

// ShowWarning prints a warning message
func ShowWarning(msg string) {
	eprintf("%s %s\n", warningStyle.Render("Warning:"), msg)
}

// ShowInfo prints a labelled informational line
func ShowInfo(label, msg string) {
	printf("%s %s\n", labelStyle.Render(label), msg)
}

// ShowToolCall announces a tool the model asked to run.
func ShowToolCall(call api.ToolCall) {
	input := string(call.Input)
	if input == "" || input == "{}" {
		input = ""
	} else {
		input = " " + input
	}
	printf("\n%s%s\n", toolStyle.Render("⚙ "+call.Name), input)
}

// ShowToolResult prints a shortened tool result.
func ShowToolResult(call api.ToolCall, result string, isError bool) {
	preview := Preview(result, maxResultPreview)
	if isError {
		printf("  %s\n", errorStyle.Render(preview))
		return
	}
	printf("  %s\n", resultStyle.Render(preview))
}

// ShowTools lists tool definitions.
func ShowTools(tools []api.Tool) {
	if len(tools) == 0 {
		printf("No tools registered.\n")
		return
	}
	printf("%s\n", labelStyle.Render("Available tools:"))
	for _, t := range tools {
		printf("  %s  %s\n", toolStyle.Render(t.Name), t.Description)
	}
}

// ShowHistory prints a conversation, one line per message.
func ShowHistory(msgs []api.Message) {
	if len(msgs) == 0 {
		printf("Conversation is empty.\n")
		return
	}
	for i, m := range msgs {
		printf("%s %s\n", labelStyle.Render(fmt.Sprintf("[%d] %s:", i+1, m.Role)), Preview(m.Content.String(), 200))
	}
}

// ShowModels lists known models, marking the current one.
func ShowModels(models []string, current string) {
	printf("%s\n", labelStyle.Render("Models:"))
	for _, m := range models {
		marker := "  "
		if m == current {
			marker = "* "
		}
		printf("%s%s\n", marker, m)
	}
}

// Preview collapses whitespace and truncates s to at most n runes.
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
