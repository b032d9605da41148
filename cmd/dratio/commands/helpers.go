package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/menhir-tech/dratio-go/internal/tabular"
	"github.com/menhir-tech/dratio-go/pkg/dratio"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	NotAvailable = "N/A"
)

// Common static errors used throughout the commands package.
var ErrAPIKeyNotConfigured = errors.New("no API key configured, run 'dratio login' or pass --key")

// newClient builds a client from the CLI configuration.
func newClient() (*dratio.Client, error) {
	key := viper.GetString("key")
	if key == "" {
		return nil, ErrAPIKeyNotConfigured
	}

	return dratio.New(&dratio.Config{
		APIKey:   key,
		Endpoint: viper.GetString("endpoint"),
		Debug:    viper.GetBool("verbose"),
	})
}

// renderRecords prints listing records in the configured output format.
// Table output shows the given fields as columns.
func renderRecords(records []map[string]interface{}, fields []string) error {
	output := viper.GetString("output")

	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(records)
	case OutputFormatYAML:
		return yaml.NewEncoder(os.Stdout).Encode(records)
	default:
		table := tablewriter.NewWriter(os.Stdout)

		header := make([]interface{}, 0, len(fields))
		for _, field := range fields {
			header = append(header, field)
		}

		table.Header(header...)

		for _, record := range records {
			// Columns address nested objects by flattened name.
			flat := tabular.Flatten(record)

			row := make([]interface{}, 0, len(fields))
			for _, field := range fields {
				row = append(row, cellText(flat[field]))
			}

			_ = table.Append(row...)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// renderMetadata prints a single metadata map as sorted key/value pairs, or
// as a document in json/yaml output.
func renderMetadata(metadata map[string]interface{}) error {
	output := viper.GetString("output")

	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(metadata)
	case OutputFormatYAML:
		return yaml.NewEncoder(os.Stdout).Encode(metadata)
	default:
		keys := make([]string, 0, len(metadata))
		for key := range metadata {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Field", "Value")

		for _, key := range keys {
			_ = table.Append(key, cellText(metadata[key]))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func cellText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return NotAvailable
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}

		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}
