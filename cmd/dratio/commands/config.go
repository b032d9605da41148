package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errUnknownConfigKey = errors.New("unknown configuration key")

// configKeys are the keys the config command manages.
var configKeys = []string{"key", "endpoint", "output"}

func isConfigKey(key string) bool {
	for _, known := range configKeys {
		if known == key {
			return true
		}
	}

	return false
}

// NewConfigCommand creates the config command with its subcommands.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := make(map[string]interface{}, len(configKeys))
			for _, key := range configKeys {
				value := viper.GetString(key)
				if key == "key" && value != "" {
					value = "***"
				}

				settings[key] = value
			}

			return renderMetadata(settings)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: "Show a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !isConfigKey(key) {
				return fmt.Errorf("%w: %q", errUnknownConfigKey, key)
			}

			fmt.Println(viper.GetString(key))

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !isConfigKey(key) {
				return fmt.Errorf("%w: %q", errUnknownConfigKey, key)
			}

			viper.Set(key, args[1])

			return writeConfig()
		},
	})

	return cmd
}
