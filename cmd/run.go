package cmd

import (
	"context"
	"errors"

	"github.com/quocvuong92/johnathan-agent/internal/agent"
	"github.com/quocvuong92/johnathan-agent/internal/display"
)

// runQuery answers a single question and prints the result.
func (app *App) runQuery(ctx context.Context, query string) (string, error) {
	printer := newTurnPrinter(app.cfg.Stream, app.cfg.Render)
	a := app.newAgent(printer)
	return runTurn(ctx, a, printer, query)
}

// runTurn runs one question through the agent and settles the printer.
func runTurn(ctx context.Context, a *agent.Agent, printer *turnPrinter, input string) (string, error) {
	answer, err := a.Run(ctx, input)
	if err != nil {
		printer.abort()
		var loopErr *agent.ToolLoopExceededError
		if errors.As(err, &loopErr) {
			display.ShowWarning("stopping: the model kept requesting tools; raise --max-rounds to allow more")
		}
		return "", err
	}
	printer.finish(answer)
	return answer, nil
}
