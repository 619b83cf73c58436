package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/johnathan-agent/internal/api"
	"github.com/quocvuong92/johnathan-agent/internal/config"
	"github.com/quocvuong92/johnathan-agent/internal/constants"
	"github.com/quocvuong92/johnathan-agent/internal/display"
	"github.com/quocvuong92/johnathan-agent/internal/logging"
	"github.com/quocvuong92/johnathan-agent/internal/metrics"
)

// errUsage is returned when no query was given outside interactive mode;
// the help text has already been printed.
var errUsage = errors.New("a query is required unless running with --interactive")

// App holds the application state
type App struct {
	cfg        *config.Config
	metrics    *metrics.Recorder
	listModels bool

	// newClient builds the completion client; replaced in tests.
	newClient func(cfg *config.Config, opts ...api.ClientOption) api.Completer
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg:     config.NewConfig(),
		metrics: metrics.New(),
		newClient: func(cfg *config.Config, opts ...api.ClientOption) api.Completer {
			return api.NewClient(cfg, opts...)
		},
	}
}

// Execute runs the root command
func Execute() {
	app := NewApp()
	if err := app.newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errUsage) {
			display.ShowError(err.Error())
		}
		os.Exit(1)
	}
}

func (app *App) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agent [query]",
		Short: "A terminal assistant that can use local tools",
		Long: `Johnathan is a command-line assistant backed by the Anthropic Messages API.
The model can call local tools (current time, reading files, listing
directories); their results are fed back until it produces an answer.

The API key is read from ANTHROPIC_API_KEY, a .env file in the current
directory, the config file, or the system keyring ('agent key set').

Examples:
  agent "What time is it?"
  agent -m claude-3-5-haiku-latest "Summarise README.md"
  agent --max-rounds 3 "List the files here"
  agent -i                              # Interactive mode
  agent -ir                             # Interactive with markdown rendering`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, args)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&app.cfg.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVarP(&app.cfg.Stream, "stream", "s", true, "Stream output in real-time")
	flags.BoolVarP(&app.cfg.Render, "render", "r", false, "Render markdown with colors and formatting")
	flags.BoolVarP(&app.cfg.Interactive, "interactive", "i", false, "Interactive chat mode")
	flags.StringVarP(&app.cfg.Model, "model", "m", "", "Model name (default: "+constants.DefaultModel+")")
	flags.IntVar(&app.cfg.MaxToolRounds, "max-rounds", 0, "Maximum tool rounds per question (default 10)")
	flags.IntVar(&app.cfg.MaxTokens, "max-tokens", 0, "Maximum tokens per response (default 1024)")
	flags.StringVar(&app.cfg.SystemPrompt, "system", "", "Override the system prompt")
	flags.StringVar(&app.cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	flags.BoolVar(&app.listModels, "list-models", false, "List known models")

	rootCmd.AddCommand(NewKeyCmd())
	rootCmd.AddCommand(NewConfigCmd(app))

	return rootCmd
}

func (app *App) run(cmd *cobra.Command, args []string) error {
	for _, name := range []string{"stream", "render"} {
		if cmd.Flags().Changed(name) {
			app.cfg.MarkExplicit(name)
		}
	}

	if app.listModels {
		current := app.cfg.Model
		if current == "" {
			current = constants.DefaultModel
		}
		display.ShowModels(constants.KnownModels, current)
		return nil
	}

	if err := app.cfg.Validate(); err != nil {
		return err
	}
	app.setupLogging()

	if app.cfg.MetricsAddr != "" {
		if _, err := app.metrics.Serve(context.Background(), app.cfg.MetricsAddr); err != nil {
			display.ShowWarning("metrics server disabled: " + err.Error())
		}
	}

	// Initialize markdown renderer if render flag is set
	if app.cfg.Render {
		if err := display.InitRenderer(); err != nil {
			logging.Warn("Failed to initialize renderer", logging.Fields{"error": err.Error()})
		}
	}

	if app.cfg.Interactive {
		app.runInteractive()
		return nil
	}

	if len(args) == 0 {
		_ = cmd.Help()
		return errUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logging.Debug("One-shot query", logging.Fields{
		"model":      app.cfg.Model,
		"stream":     app.cfg.Stream,
		"max_rounds": app.cfg.MaxToolRounds,
	})
	_, err := app.runQuery(ctx, args[0])
	return err
}

func (app *App) setupLogging() {
	level := logging.ParseLevel(app.cfg.LogLevel)
	logging.SetLevel(level)
	if app.cfg.Verbose {
		logging.SetFormat(logging.FormatText)
	}
}
