// Package tabular holds the columnar plumbing for materialized datasets:
// decoding remote file contents into Arrow tables, row-wise concatenation,
// the left join used by the geometry cross, and the flattening used for
// tabular listings.
package tabular

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	"github.com/menhir-tech/dratio-go/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrEmptyFile          = errors.New("file contains no data")
	ErrUnsupportedContent = errors.New("unsupported file content type")
)

// ReadParquet decodes parquet (or geoparquet) contents into an Arrow table.
func ReadParquet(ctx context.Context, data []byte) (arrow.Table, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	reader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening parquet file: %w", err)
	}

	arrowReader, err := pqarrow.NewFileReader(
		reader,
		pqarrow.ArrowReadProperties{BatchSize: constants.ParquetBatchSize},
		memory.DefaultAllocator,
	)
	if err != nil {
		return nil, fmt.Errorf("creating parquet arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading parquet table: %w", err)
	}

	return table, nil
}

// ReadCSV decodes CSV contents into an Arrow table, inferring column types
// from the data.
func ReadCSV(data []byte) (arrow.Table, error) {
	reader := csv.NewInferringReader(
		bytes.NewReader(data),
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithAllocator(memory.DefaultAllocator),
	)
	defer reader.Release()

	if !reader.Next() {
		if err := reader.Err(); err != nil {
			return nil, fmt.Errorf("reading csv contents: %w", err)
		}

		return nil, ErrEmptyFile
	}

	record := reader.Record()
	record.Retain()
	defer record.Release()

	return array.NewTableFromRecords(record.Schema(), []arrow.Record{record}), nil
}

// ReadJSON decodes a JSON array of objects into an Arrow table. Column types
// are inferred from the first non-null value of each column (numbers decode
// as float64, per encoding/json).
func ReadJSON(data []byte) (arrow.Table, error) {
	var rows []map[string]interface{}

	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding json contents: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	fields := jsonFields(rows)
	columns := make([]arrow.Array, 0, len(fields))
	schemaFields := make([]arrow.Field, 0, len(fields))

	for _, name := range fields {
		arr, field, err := buildJSONColumn(name, rows)
		if err != nil {
			return nil, err
		}

		columns = append(columns, arr)
		schemaFields = append(schemaFields, field)
	}

	schema := arrow.NewSchema(schemaFields, nil)
	record := array.NewRecord(schema, columns, int64(len(rows)))
	defer record.Release()

	for _, col := range columns {
		defer col.Release()
	}

	return array.NewTableFromRecords(schema, []arrow.Record{record}), nil
}

// jsonFields returns the union of keys across rows: first-row order first,
// then any stragglers sorted for determinism.
func jsonFields(rows []map[string]interface{}) []string {
	fields := make([]string, 0, len(rows[0]))
	seen := make(map[string]bool, len(rows[0]))

	firstRow := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		firstRow = append(firstRow, key)
	}

	sort.Strings(firstRow)

	for _, key := range firstRow {
		fields = append(fields, key)
		seen[key] = true
	}

	var extra []string

	for _, row := range rows[1:] {
		for key := range row {
			if !seen[key] {
				seen[key] = true

				extra = append(extra, key)
			}
		}
	}

	sort.Strings(extra)

	return append(fields, extra...)
}

func buildJSONColumn(name string, rows []map[string]interface{}) (arrow.Array, arrow.Field, error) {
	var dataType arrow.DataType = arrow.BinaryTypes.String

	for _, row := range rows {
		value, ok := row[name]
		if !ok || value == nil {
			continue
		}

		switch value.(type) {
		case float64:
			dataType = arrow.PrimitiveTypes.Float64
		case bool:
			dataType = arrow.FixedWidthTypes.Boolean
		case string:
			dataType = arrow.BinaryTypes.String
		default:
			// Nested values are kept as their JSON encoding.
			dataType = arrow.BinaryTypes.String
		}

		break
	}

	builder := array.NewBuilder(memory.DefaultAllocator, dataType)
	defer builder.Release()

	for _, row := range rows {
		value, ok := row[name]
		if !ok || value == nil {
			builder.AppendNull()

			continue
		}

		switch typed := builder.(type) {
		case *array.Float64Builder:
			number, ok := value.(float64)
			if !ok {
				return nil, arrow.Field{}, fmt.Errorf("%w: column %q mixes numbers and %T", ErrUnsupportedContent, name, value)
			}

			typed.Append(number)
		case *array.BooleanBuilder:
			flag, ok := value.(bool)
			if !ok {
				return nil, arrow.Field{}, fmt.Errorf("%w: column %q mixes booleans and %T", ErrUnsupportedContent, name, value)
			}

			typed.Append(flag)
		case *array.StringBuilder:
			text, ok := value.(string)
			if !ok {
				encoded, err := json.Marshal(value)
				if err != nil {
					return nil, arrow.Field{}, fmt.Errorf("encoding column %q value: %w", name, err)
				}

				text = string(encoded)
			}

			typed.Append(text)
		default:
			return nil, arrow.Field{}, fmt.Errorf("%w: column %q", ErrUnsupportedContent, name)
		}
	}

	return builder.NewArray(), arrow.Field{Name: name, Type: dataType, Nullable: true}, nil
}
