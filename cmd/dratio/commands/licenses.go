package commands

import (
	"github.com/spf13/cobra"

	"github.com/menhir-tech/dratio-go/pkg/dratio"
)

// NewLicensesCommand creates the licenses command with its subcommands.
func NewLicensesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "licenses",
		Aliases: []string{"license"},
		Short:   "Browse licenses",
	}

	cmd.AddCommand(newLicensesListCommand())
	cmd.AddCommand(newLicensesShowCommand())
	cmd.AddCommand(newLicensesItemsCommand())

	return cmd
}

func newLicensesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List licenses",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			result, err := client.ListLicenses(cmd.Context(), &dratio.ListOptions{
				Format: dratio.FormatFlat,
			})
			if err != nil {
				return err
			}

			return renderRecords(result.Records, dratio.ListFields(dratio.KindLicense))
		},
	}
}

func newLicensesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show CODE",
		Short: "Show license metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			metadata, err := client.License(args[0]).Metadata(cmd.Context())
			if err != nil {
				return err
			}

			return renderMetadata(metadata)
		},
	}
}

func newLicensesItemsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "items CODE",
		Short: "List the grants and restrictions of a license",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			result, err := client.License(args[0]).ListItems(cmd.Context(), dratio.FormatFlat)
			if err != nil {
				return err
			}

			return renderRecords(result.Records, dratio.ListFields(dratio.KindLicenseItem))
		},
	}
}
