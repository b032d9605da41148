package commands

import (
	"github.com/spf13/cobra"

	"github.com/menhir-tech/dratio-go/pkg/dratio"
)

// NewFeaturesCommand creates the features command with its subcommands.
func NewFeaturesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "features",
		Aliases: []string{"feature"},
		Short:   "Browse dataset features",
	}

	cmd.AddCommand(newFeaturesListCommand())
	cmd.AddCommand(newFeaturesShowCommand())

	return cmd
}

func newFeaturesListCommand() *cobra.Command {
	var dataset, publisher string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List features",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			result, err := client.ListFeatures(cmd.Context(), &dratio.ListOptions{
				Format: dratio.FormatFlat,
				Filters: map[string]string{
					"dataset":   dataset,
					"publisher": publisher,
				},
			})
			if err != nil {
				return err
			}

			return renderRecords(result.Records, dratio.ListFields(dratio.KindFeature))
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "filter by dataset code")
	cmd.Flags().StringVar(&publisher, "publisher", "", "filter by publisher code")

	return cmd
}

func newFeaturesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show CODE",
		Short: "Show feature metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			metadata, err := client.Feature(args[0]).Metadata(cmd.Context())
			if err != nil {
				return err
			}

			return renderMetadata(metadata)
		},
	}
}
