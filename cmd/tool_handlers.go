package cmd

import (
	"strconv"
	"strings"

	"github.com/quocvuong92/johnathan-agent/internal/agent"
	"github.com/quocvuong92/johnathan-agent/internal/api"
	"github.com/quocvuong92/johnathan-agent/internal/display"
	"github.com/quocvuong92/johnathan-agent/internal/tools"
)

// spinnerControl is the part of display.Spinner the printer drives.
type spinnerControl interface {
	Start()
	Stop()
	UpdateMessage(msg string)
}

// turnPrinter renders one turn: spinner while waiting, streamed or buffered
// text, and tool activity between rounds.
type turnPrinter struct {
	stream     bool
	render     bool
	spinner    spinnerControl
	newSpinner func(msg string) spinnerControl

	buf      strings.Builder
	streamed bool
}

func newTurnPrinter(stream, render bool) *turnPrinter {
	return &turnPrinter{
		stream: stream,
		render: render,
		newSpinner: func(msg string) spinnerControl {
			return display.NewSpinner(msg)
		},
	}
}

func (p *turnPrinter) stopSpinner() {
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}

// onRound starts the spinner for a new round.
func (p *turnPrinter) onRound(round int) {
	p.stopSpinner()
	msg := "Thinking..."
	if round > 1 {
		msg = "Thinking (round " + strconv.Itoa(round) + ")..."
	}
	p.spinner = p.newSpinner(msg)
	p.spinner.Start()
}

// onChunk prints or buffers a streamed fragment.
func (p *turnPrinter) onChunk(content string) {
	if p.render {
		if p.spinner != nil {
			p.spinner.UpdateMessage("Receiving...")
		}
		p.buf.WriteString(content)
		return
	}
	p.stopSpinner()
	display.ShowChunk(content)
	p.streamed = true
}

// onToolCall flushes any text the model wrote before asking for the tool.
func (p *turnPrinter) onToolCall(call api.ToolCall) {
	p.stopSpinner()
	if p.render && p.buf.Len() > 0 {
		display.ShowContentRendered(p.buf.String())
		p.buf.Reset()
	}
	if p.streamed {
		display.Println()
		p.streamed = false
	}
	display.ShowToolCall(call)
}

func (p *turnPrinter) onToolResult(call api.ToolCall, result string, isError bool) {
	display.ShowToolResult(call, result, isError)
}

// finish prints the final answer unless it was already streamed.
func (p *turnPrinter) finish(answer string) {
	p.stopSpinner()
	switch {
	case p.render:
		display.ShowContentRendered(answer)
	case p.stream && p.streamed:
		display.Println()
	case !p.stream:
		display.ShowContent(answer)
	}
	p.reset()
}

// abort cleans up after a failed turn.
func (p *turnPrinter) abort() {
	p.stopSpinner()
	if p.streamed {
		display.Println()
	}
	p.reset()
}

func (p *turnPrinter) reset() {
	p.buf.Reset()
	p.streamed = false
}

// newAgent wires the completion client, the built-in tools and the printer.
func (app *App) newAgent(p *turnPrinter) *agent.Agent {
	client := app.newClient(app.cfg, api.WithEventObserver(func(ev api.Event) {
		app.metrics.ObserveEvent(string(ev.Type()))
	}))

	return agent.New(client, tools.Builtin(), app.cfg,
		agent.WithChunkHandler(p.onChunk),
		agent.WithRoundHandler(p.onRound),
		agent.WithToolCallHandler(p.onToolCall),
		agent.WithToolResultHandler(p.onToolResult),
		agent.WithMetrics(app.metrics),
	)
}
