package tabular_test

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menhir-tech/dratio-go/internal/tabular"
)

// makeGeoside builds a right-side table with a key column and a binary
// geometry column.
func makeGeoSide(t *testing.T, keys []string, geometries []string) arrow.Table {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "mun_id", Type: arrow.BinaryTypes.String},
		{Name: "geometry", Type: arrow.BinaryTypes.Binary},
	}, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	builder.Field(0).(*array.StringBuilder).AppendValues(keys, nil)

	geoBuilder := builder.Field(1).(*array.BinaryBuilder)
	for _, geometry := range geometries {
		geoBuilder.Append([]byte(geometry))
	}

	record := builder.NewRecord()
	defer record.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{record})
}

func TestLeftJoin_MatchesAndPreservesOrder(t *testing.T) {
	t.Parallel()

	left := makeTable(t, []string{"m1", "m2", "m1"}, []int64{10, 20, 30})
	right := makeGeoSide(t, []string{"m2", "m1"}, []string{"POINT(2 2)", "POINT(1 1)"})

	joined, err := tabular.LeftJoin(left, right, "code", "mun_id", []string{"mun_id", "geometry"})
	require.NoError(t, err)

	require.Equal(t, int64(3), joined.NumRows())
	require.Equal(t, int64(4), joined.NumCols())

	// Left columns keep their order and values.
	code, ok := tabular.CellValue(joined.Column(0), 2)
	require.True(t, ok)
	assert.Equal(t, "m1", code)

	// Appended key column holds the matched right value.
	matched, ok := tabular.CellValue(joined.Column(2), 0)
	require.True(t, ok)
	assert.Equal(t, "m1", matched)

	geometry, ok := tabular.CellValue(joined.Column(3), 1)
	require.True(t, ok)
	assert.Equal(t, []byte("POINT(2 2)"), geometry)
}

func TestLeftJoin_UnmatchedRowsGetNulls(t *testing.T) {
	t.Parallel()

	left := makeTable(t, []string{"m1", "m9"}, []int64{1, 2})
	right := makeGeoSide(t, []string{"m1"}, []string{"POINT(1 1)"})

	joined, err := tabular.LeftJoin(left, right, "code", "mun_id", []string{"geometry"})
	require.NoError(t, err)

	_, ok := tabular.CellValue(joined.Column(2), 0)
	assert.True(t, ok)

	_, ok = tabular.CellValue(joined.Column(2), 1)
	assert.False(t, ok, "unmatched row should carry a null geometry")
}

func TestLeftJoin_DuplicateRightKeysFirstWins(t *testing.T) {
	t.Parallel()

	left := makeTable(t, []string{"m1"}, []int64{1})
	right := makeGeoSide(t, []string{"m1", "m1"}, []string{"first", "second"})

	joined, err := tabular.LeftJoin(left, right, "code", "mun_id", []string{"geometry"})
	require.NoError(t, err)

	geometry, ok := tabular.CellValue(joined.Column(2), 0)
	require.True(t, ok)
	assert.Equal(t, []byte("first"), geometry)
}

func TestLeftJoin_MissingKeyColumn(t *testing.T) {
	t.Parallel()

	left := makeTable(t, []string{"m1"}, []int64{1})
	right := makeGeoSide(t, []string{"m1"}, []string{"g"})

	_, err := tabular.LeftJoin(left, right, "missing", "mun_id", []string{"geometry"})
	require.ErrorIs(t, err, tabular.ErrColumnNotFound)
}
