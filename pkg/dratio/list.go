package dratio

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/menhir-tech/dratio-go/internal/tabular"
)

// ListOptions shapes a collection listing.
type ListOptions struct {
	// Format selects the result shape. Defaults to FormatTable.
	Format Format
	// Fields overrides the default columns of a FormatTable result.
	Fields []string
	// Filters are passed as query parameters. Empty values are dropped.
	Filters map[string]string
}

// ListResult holds a collection listing in the requested shape. Only the
// field matching the format is populated.
type ListResult struct {
	Format Format

	// Records holds the raw decoded records for FormatFlat.
	Records []map[string]interface{}
	// Table holds the tabular result for FormatTable. Columns follow the
	// requested fields, missing values are null.
	Table arrow.Record
	// Handles holds lazy resources for FormatTyped. Metadata is fetched
	// on first access, not seeded from the listing projection.
	Handles []Handle
}

// Len returns the number of listed entries regardless of format.
func (r *ListResult) Len() int {
	switch r.Format {
	case FormatFlat:
		return len(r.Records)
	case FormatTable:
		if r.Table == nil {
			return 0
		}

		return int(r.Table.NumRows())
	case FormatTyped:
		return len(r.Handles)
	default:
		return 0
	}
}

// shapeListing converts raw listing records into the requested shape.
func shapeListing(client *Client, kind Kind, records []map[string]interface{}, format Format, fields []string) (*ListResult, error) {
	result := &ListResult{Format: format}

	switch format {
	case FormatFlat:
		result.Records = records

	case FormatTable:
		table, err := tabular.RecordFromMaps(fields, records)
		if err != nil {
			return nil, fmt.Errorf("building %s listing table: %w", kind, err)
		}

		result.Table = table

	case FormatTyped:
		handles := make([]Handle, 0, len(records))

		for _, record := range records {
			code := referenceCode(record["code"])
			if code == "" {
				continue
			}

			handle, err := client.Resolve(kind, code)
			if err != nil {
				return nil, err
			}

			handles = append(handles, handle)
		}

		result.Handles = handles

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return result, nil
}
