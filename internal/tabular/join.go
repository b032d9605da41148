package tabular

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// LeftJoin joins right onto left, matching left[leftKey] against
// right[rightKey]. Every left row is kept in order; unmatched rows get nulls
// for the appended columns. Only the listed right columns are appended. When
// rightKey has duplicate values the first occurrence wins.
func LeftJoin(left, right arrow.Table, leftKey, rightKey string, rightColumns []string) (arrow.Table, error) {
	leftIdx, err := ColumnIndex(left, leftKey)
	if err != nil {
		return nil, fmt.Errorf("left join key: %w", err)
	}

	rightIdx, err := ColumnIndex(right, rightKey)
	if err != nil {
		return nil, fmt.Errorf("right join key: %w", err)
	}

	lookup := make(map[string]int, right.NumRows())

	rightKeyColumn := right.Column(rightIdx)
	for row := 0; row < int(right.NumRows()); row++ {
		key, ok := CellKey(rightKeyColumn, row)
		if !ok {
			continue
		}

		if _, seen := lookup[key]; !seen {
			lookup[key] = row
		}
	}

	numRows := int(left.NumRows())
	fields := make([]arrow.Field, 0, left.Schema().NumFields()+len(rightColumns))
	columns := make([]arrow.Column, 0, cap(fields))

	for i := 0; i < left.Schema().NumFields(); i++ {
		fields = append(fields, left.Schema().Field(i))
		columns = append(columns, *left.Column(i))
	}

	leftKeyColumn := left.Column(leftIdx)

	for _, name := range rightColumns {
		colIdx, err := ColumnIndex(right, name)
		if err != nil {
			return nil, fmt.Errorf("right join column: %w", err)
		}

		field := right.Schema().Field(colIdx)
		field.Nullable = true

		arr, err := gatherColumn(right.Column(colIdx), leftKeyColumn, lookup, numRows)
		if err != nil {
			return nil, err
		}

		chunked := arrow.NewChunked(field.Type, []arrow.Array{arr})
		arr.Release()

		column := arrow.NewColumn(field, chunked)
		chunked.Release()

		fields = append(fields, field)
		columns = append(columns, *column)
	}

	schema := arrow.NewSchema(fields, nil)

	return array.NewTable(schema, columns, int64(numRows)), nil
}

// gatherColumn builds an array holding, for each left row, the right column
// value of the matching right row (null when unmatched).
func gatherColumn(source, leftKeys *arrow.Column, lookup map[string]int, numRows int) (arrow.Array, error) {
	builder := array.NewBuilder(memory.DefaultAllocator, source.DataType())
	defer builder.Release()

	for row := 0; row < numRows; row++ {
		key, ok := CellKey(leftKeys, row)
		if !ok {
			builder.AppendNull()

			continue
		}

		sourceRow, ok := lookup[key]
		if !ok {
			builder.AppendNull()

			continue
		}

		if err := appendCell(builder, source, sourceRow); err != nil {
			return nil, err
		}
	}

	return builder.NewArray(), nil
}

//nolint:cyclop // one case per supported arrow type
func appendCell(builder array.Builder, column *arrow.Column, row int) error {
	chunk, offset := locate(column, row)
	if chunk == nil || chunk.IsNull(offset) {
		builder.AppendNull()

		return nil
	}

	switch typed := builder.(type) {
	case *array.StringBuilder:
		typed.Append(chunk.(*array.String).Value(offset))
	case *array.LargeStringBuilder:
		typed.Append(chunk.(*array.LargeString).Value(offset))
	case *array.Int64Builder:
		typed.Append(chunk.(*array.Int64).Value(offset))
	case *array.Int32Builder:
		typed.Append(chunk.(*array.Int32).Value(offset))
	case *array.Float64Builder:
		typed.Append(chunk.(*array.Float64).Value(offset))
	case *array.Float32Builder:
		typed.Append(chunk.(*array.Float32).Value(offset))
	case *array.BooleanBuilder:
		typed.Append(chunk.(*array.Boolean).Value(offset))
	case *array.BinaryBuilder:
		typed.Append(chunk.(*array.Binary).Value(offset))
	case *array.TimestampBuilder:
		typed.Append(chunk.(*array.Timestamp).Value(offset))
	case *array.Date32Builder:
		typed.Append(chunk.(*array.Date32).Value(offset))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedValue, column.DataType())
	}

	return nil
}
