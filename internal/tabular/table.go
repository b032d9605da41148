package tabular

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// Static errors for err113 compliance.
var (
	ErrNoTables         = errors.New("no tables to concatenate")
	ErrSchemaMismatch   = errors.New("table schemas do not match")
	ErrColumnNotFound   = errors.New("column not found")
	ErrUnsupportedValue = errors.New("unsupported column value type")
)

// Concat stacks tables row-wise. A single table is returned as-is, without
// copying.
func Concat(tables []arrow.Table) (arrow.Table, error) {
	if len(tables) == 0 {
		return nil, ErrNoTables
	}

	if len(tables) == 1 {
		return tables[0], nil
	}

	schema := tables[0].Schema()

	var records []arrow.Record

	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	for _, table := range tables {
		if !table.Schema().Equal(schema) {
			return nil, fmt.Errorf("%w: %s vs %s", ErrSchemaMismatch, schema, table.Schema())
		}

		reader := array.NewTableReader(table, -1)

		for reader.Next() {
			rec := reader.Record()
			rec.Retain()
			records = append(records, rec)
		}

		reader.Release()
	}

	return array.NewTableFromRecords(schema, records), nil
}

// ColumnIndex returns the index of the named column.
func ColumnIndex(table arrow.Table, name string) (int, error) {
	indices := table.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	return indices[0], nil
}

// CellValue returns the Go value of a cell, walking the column's chunks.
// The second return is false for null cells.
func CellValue(column *arrow.Column, row int) (interface{}, bool) {
	chunk, offset := locate(column, row)
	if chunk == nil || chunk.IsNull(offset) {
		return nil, false
	}

	return arrayValue(chunk, offset), true
}

// CellKey returns a cell rendered as a join key. Null cells return false.
func CellKey(column *arrow.Column, row int) (string, bool) {
	value, ok := CellValue(column, row)
	if !ok {
		return "", false
	}

	switch typed := value.(type) {
	case string:
		return typed, true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	case []byte:
		return string(typed), true
	default:
		return fmt.Sprint(typed), true
	}
}

// Rows returns up to limit rows as generic maps, in column order of the
// schema. limit < 0 returns every row.
func Rows(table arrow.Table, limit int) []map[string]interface{} {
	total := int(table.NumRows())
	if limit >= 0 && limit < total {
		total = limit
	}

	rows := make([]map[string]interface{}, total)
	schema := table.Schema()

	for i := range rows {
		rows[i] = make(map[string]interface{}, schema.NumFields())
	}

	for colIdx := 0; colIdx < schema.NumFields(); colIdx++ {
		column := table.Column(colIdx)
		name := schema.Field(colIdx).Name

		for row := 0; row < total; row++ {
			value, ok := CellValue(column, row)
			if !ok {
				rows[row][name] = nil

				continue
			}

			rows[row][name] = value
		}
	}

	return rows
}

func locate(column *arrow.Column, row int) (arrow.Array, int) {
	for _, chunk := range column.Data().Chunks() {
		if row < chunk.Len() {
			return chunk, row
		}

		row -= chunk.Len()
	}

	return nil, 0
}

//nolint:cyclop // one case per supported arrow type
func arrayValue(arr arrow.Array, i int) interface{} {
	switch typed := arr.(type) {
	case *array.String:
		return typed.Value(i)
	case *array.LargeString:
		return typed.Value(i)
	case *array.Int64:
		return typed.Value(i)
	case *array.Int32:
		return int64(typed.Value(i))
	case *array.Int16:
		return int64(typed.Value(i))
	case *array.Int8:
		return int64(typed.Value(i))
	case *array.Uint64:
		return int64(typed.Value(i))
	case *array.Uint32:
		return int64(typed.Value(i))
	case *array.Uint16:
		return int64(typed.Value(i))
	case *array.Uint8:
		return int64(typed.Value(i))
	case *array.Float64:
		return typed.Value(i)
	case *array.Float32:
		return float64(typed.Value(i))
	case *array.Boolean:
		return typed.Value(i)
	case *array.Binary:
		return typed.Value(i)
	case *array.LargeBinary:
		return typed.Value(i)
	case *array.Timestamp:
		return typed.Value(i).ToTime(arr.DataType().(*arrow.TimestampType).Unit)
	case *array.Date32:
		return typed.Value(i).ToTime()
	case *array.Date64:
		return typed.Value(i).ToTime()
	default:
		return typed.ValueStr(i)
	}
}
