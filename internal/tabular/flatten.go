package tabular

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// Flatten collapses nested objects into a single-level record. Nested keys
// are joined with dots and then normalized to underscores, so
// {"scope": {"code": "es"}} becomes {"scope_code": "es"}.
func Flatten(record map[string]interface{}) map[string]interface{} {
	flat := make(map[string]interface{}, len(record))
	flattenInto(flat, "", record)

	return flat
}

func flattenInto(flat map[string]interface{}, prefix string, record map[string]interface{}) {
	for key, value := range record {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		if nested, ok := value.(map[string]interface{}); ok {
			flattenInto(flat, name, nested)

			continue
		}

		flat[strings.ReplaceAll(name, ".", "_")] = value
	}
}

// RecordFromMaps builds a string-typed Arrow record from flattened listing
// records. When fields is non-empty the record has exactly those columns, in
// that order, with nulls for values no record carries. Otherwise columns are
// the sorted union of keys across records.
func RecordFromMaps(fields []string, records []map[string]interface{}) (arrow.Record, error) {
	flattened := make([]map[string]interface{}, len(records))
	for i, record := range records {
		flattened[i] = Flatten(record)
	}

	if len(fields) == 0 {
		fields = unionKeys(flattened)
	}

	schemaFields := make([]arrow.Field, len(fields))
	columns := make([]arrow.Array, len(fields))

	for i, name := range fields {
		schemaFields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}

		builder := array.NewStringBuilder(memory.DefaultAllocator)

		for _, record := range flattened {
			value, ok := record[name]
			if !ok || value == nil {
				builder.AppendNull()

				continue
			}

			text, err := formatCell(value)
			if err != nil {
				builder.Release()

				return nil, err
			}

			builder.Append(text)
		}

		columns[i] = builder.NewArray()
		builder.Release()
	}

	schema := arrow.NewSchema(schemaFields, nil)
	record := array.NewRecord(schema, columns, int64(len(records)))

	for _, col := range columns {
		col.Release()
	}

	return record, nil
}

func unionKeys(records []map[string]interface{}) []string {
	var keys []string

	seen := make(map[string]bool)

	for _, record := range records {
		for key := range record {
			if !seen[key] {
				seen[key] = true

				keys = append(keys, key)
			}
		}
	}

	sort.Strings(keys)

	return keys
}

func formatCell(value interface{}) (string, error) {
	switch typed := value.(type) {
	case string:
		return typed, nil
	case bool:
		return strconv.FormatBool(typed), nil
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64), nil
	case int:
		return strconv.Itoa(typed), nil
	case int64:
		return strconv.FormatInt(typed, 10), nil
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return "", fmt.Errorf("encoding cell value: %w", err)
		}

		return string(encoded), nil
	}
}
