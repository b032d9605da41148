package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/menhir-tech/dratio-go/pkg/dratio"
)

// NewDatasetsCommand creates the datasets command with its subcommands.
func NewDatasetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"dataset", "ds"},
		Short:   "Browse and download datasets",
	}

	cmd.AddCommand(newDatasetsListCommand())
	cmd.AddCommand(newDatasetsShowCommand())
	cmd.AddCommand(newDatasetsFilesCommand())
	cmd.AddCommand(newDatasetsDownloadCommand())

	return cmd
}

func newDatasetsListCommand() *cobra.Command {
	var publisher, category, scope, level string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			result, err := client.ListDatasets(cmd.Context(), &dratio.ListOptions{
				Format: dratio.FormatFlat,
				Filters: map[string]string{
					"publisher": publisher,
					"category":  category,
					"scope":     scope,
					"level":     level,
				},
			})
			if err != nil {
				return err
			}

			return renderRecords(result.Records, dratio.ListFields(dratio.KindDataset))
		},
	}

	cmd.Flags().StringVar(&publisher, "publisher", "", "filter by publisher code")
	cmd.Flags().StringVar(&category, "category", "", "filter by category code")
	cmd.Flags().StringVar(&scope, "scope", "", "filter by scope code")
	cmd.Flags().StringVar(&level, "level", "", "filter by data level code")

	return cmd
}

func newDatasetsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show CODE",
		Short: "Show dataset metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			metadata, err := client.Dataset(args[0]).Metadata(cmd.Context())
			if err != nil {
				return err
			}

			return renderMetadata(metadata)
		},
	}
}

func newDatasetsFilesCommand() *cobra.Command {
	var filetype string

	cmd := &cobra.Command{
		Use:   "files CODE",
		Short: "List the files of the current dataset version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			result, err := client.Dataset(args[0]).ListFiles(cmd.Context(),
				dratio.FileType(filetype), dratio.FormatFlat)
			if err != nil {
				return err
			}

			return renderRecords(result.Records, dratio.ListFields(dratio.KindFile))
		},
	}

	cmd.Flags().StringVar(&filetype, "type", "", "filter by file type (parquet, geoparquet, csv, json)")

	return cmd
}

func newDatasetsDownloadCommand() *cobra.Command {
	var dir, filetype string

	cmd := &cobra.Command{
		Use:   "download CODE",
		Short: "Download the files of the current dataset version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			code := args[0]

			version, err := client.Dataset(code).Version(ctx)
			if err != nil {
				return err
			}

			files, err := version.Files(ctx, dratio.FileType(filetype))
			if err != nil {
				return err
			}

			if len(files) == 0 {
				return fmt.Errorf("dataset %q has no files to download: %w", code, os.ErrNotExist)
			}

			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			for _, file := range files {
				contents, err := file.Content(ctx)
				if err != nil {
					return err
				}

				extension, err := file.Filetype(ctx)
				if err != nil {
					return err
				}

				name := fmt.Sprintf("%s.%s", file.Code(), extension)

				path := filepath.Join(dir, name)
				if err := os.WriteFile(path, contents, 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}

				fmt.Printf("Downloaded %s (%d bytes)\n", path, len(contents))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	cmd.Flags().StringVar(&filetype, "type", string(dratio.FileTypeParquet), "file type to download")

	return cmd
}
