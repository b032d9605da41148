package commands

import (
	"github.com/spf13/cobra"

	"github.com/menhir-tech/dratio-go/pkg/dratio"
)

// NewPublishersCommand creates the publishers command with its subcommands.
func NewPublishersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "publishers",
		Aliases: []string{"publisher"},
		Short:   "Browse data publishers",
	}

	cmd.AddCommand(newPublishersListCommand())
	cmd.AddCommand(newPublishersShowCommand())
	cmd.AddCommand(newPublishersDatasetsCommand())

	return cmd
}

func newPublishersListCommand() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List publishers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			result, err := client.ListPublishers(cmd.Context(), &dratio.ListOptions{
				Format:  dratio.FormatFlat,
				Filters: map[string]string{"scope": scope},
			})
			if err != nil {
				return err
			}

			return renderRecords(result.Records, dratio.ListFields(dratio.KindPublisher))
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "filter by scope code")

	return cmd
}

func newPublishersShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show CODE",
		Short: "Show publisher metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			metadata, err := client.Publisher(args[0]).Metadata(cmd.Context())
			if err != nil {
				return err
			}

			return renderMetadata(metadata)
		},
	}
}

func newPublishersDatasetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets CODE",
		Short: "List the datasets of a publisher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			result, err := client.Publisher(args[0]).ListDatasets(cmd.Context(), dratio.FormatFlat)
			if err != nil {
				return err
			}

			return renderRecords(result.Records, dratio.ListFields(dratio.KindDataset))
		},
	}
}
