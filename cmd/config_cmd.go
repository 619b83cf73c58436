package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/johnathan-agent/internal/config"
	"github.com/quocvuong92/johnathan-agent/internal/display"
)

// NewConfigCmd creates the config command
func NewConfigCmd(app *App) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a commented config file to the user config directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfigFile()
			if err != nil {
				return err
			}
			display.Printf("Created %s\n", path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.cfg.Validate(); err != nil {
				return err
			}
			showConfig(app.cfg)
			return nil
		},
	})

	return configCmd
}

func showConfig(cfg *config.Config) {
	display.ShowInfo("Endpoint:   ", cfg.MessagesURL())
	display.ShowInfo("API version:", cfg.APIVersion)
	display.ShowInfo("API key:    ", cfg.MaskedAPIKey())
	display.ShowInfo("Model:      ", cfg.Model)
	display.ShowInfo("Max tokens: ", strconv.Itoa(cfg.MaxTokens))
	display.ShowInfo("Max rounds: ", strconv.Itoa(cfg.MaxToolRounds))
	display.ShowInfo("Log level:  ", cfg.LogLevel)
	display.Printf("Config files searched:\n")
	for _, p := range config.GetConfigPaths() {
		display.Printf("  %s\n", p)
	}
}
