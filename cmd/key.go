package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/johnathan-agent/internal/config"
	"github.com/quocvuong92/johnathan-agent/internal/display"
)

// NewKeyCmd creates the key command
func NewKeyCmd() *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the API key stored in the system keyring",
		Long: `Manage the Anthropic API key stored in the system keyring.

A key in ANTHROPIC_API_KEY, .env or the config file takes precedence over
the stored key.

Examples:
  agent key set
  echo "$KEY" | agent key set
  agent key status
  agent key delete`,
	}

	keyCmd.AddCommand(&cobra.Command{
		Use:   "set [key]",
		Short: "Store the API key",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runKeySet,
	})
	keyCmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE:  runKeyDelete,
	})
	keyCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is stored",
		Args:  cobra.NoArgs,
		RunE:  runKeyStatus,
	})

	return keyCmd
}

func runKeySet(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		display.Printf("Enter API key: ")
		var err error
		key, err = readLine(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
	}

	if err := config.SaveAPIKey(key); err != nil {
		return err
	}
	display.Println("API key stored in the system keyring.")
	return nil
}

func runKeyDelete(cmd *cobra.Command, args []string) error {
	if err := config.DeleteAPIKey(); err != nil {
		if errors.Is(err, config.ErrKeyNotFound) {
			display.Println("No API key stored.")
			return nil
		}
		return err
	}
	display.Println("API key removed from the system keyring.")
	return nil
}

func runKeyStatus(cmd *cobra.Command, args []string) error {
	key, err := config.LoadAPIKey()
	switch {
	case err == nil:
		masked := (&config.Config{APIKey: key}).MaskedAPIKey()
		display.Printf("Keyring: API key stored (%s)\n", masked)
	case errors.Is(err, config.ErrKeyNotFound):
		display.Println("Keyring: no API key stored")
		display.Println("Run 'agent key set' to store one")
	default:
		return err
	}
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
