package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/menhir-tech/dratio-go/internal/constants"
	"github.com/menhir-tech/dratio-go/pkg/dratio"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key for the marketplace",
		Long:  "Validate an API key against the marketplace and store it in the CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				fmt.Print("API key: ")

				byteKey, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read API key: %w", err)
				}

				key = string(byteKey)

				fmt.Println()
			}

			client, err := dratio.New(&dratio.Config{
				APIKey:   key,
				Endpoint: viper.GetString("endpoint"),
			})
			if err != nil {
				return err
			}

			// A one-result dataset listing verifies the key before it is
			// stored.
			if _, err := client.ListDatasets(cmd.Context(), &dratio.ListOptions{
				Format:  dratio.FormatFlat,
				Filters: map[string]string{"limit": "1"},
			}); err != nil {
				return fmt.Errorf("API key validation failed: %w", err)
			}

			viper.Set("key", key)

			if err := writeConfig(); err != nil {
				return err
			}

			fmt.Println("Logged in, API key stored.")

			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "API key (prompted when omitted)")

	return cmd
}

// writeConfig persists the current configuration to the active config file,
// creating ~/.dratio/config.yml when none is in use.
func writeConfig() error {
	if used := viper.ConfigFileUsed(); used != "" {
		if err := viper.WriteConfig(); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to locate home directory: %w", err)
	}

	configDir := filepath.Join(home, ".dratio")
	if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.yml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return os.Chmod(path, constants.ConfigFilePerm)
}
