package dratio_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menhir-tech/dratio-go/pkg/dratio"
)

func ingestTable(t *testing.T) arrow.Table {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "municipality_id", Type: arrow.BinaryTypes.String},
		{Name: "population", Type: arrow.PrimitiveTypes.Int64},
		{Name: "timestamp", Type: arrow.BinaryTypes.String},
		{Name: "geometry", Type: arrow.BinaryTypes.String},
	}, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	builder.Field(0).(*array.StringBuilder).AppendValues([]string{"m1", "m2", "m3"}, nil)
	builder.Field(1).(*array.Int64Builder).AppendValues([]int64{100, 200, 100}, nil)
	builder.Field(2).(*array.StringBuilder).AppendValues(
		[]string{"2024-01-01", "2024-02-01", "2024-03-01"}, nil)
	builder.Field(3).(*array.StringBuilder).AppendValues(
		[]string{"POINT(0 0)", "POINT(1 1)", "POINT(2 2)"}, nil)

	record := builder.NewRecord()
	defer record.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{record})
	t.Cleanup(table.Release)

	return table
}

func TestMetadataFromTable_StagesFeaturesAndCoverage(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	client := api.client(t, nil)
	dataset := client.Dataset("spain-example")

	ctx := context.Background()

	err := client.MetadataFromTable(ctx, dataset, ingestTable(t), dratio.IngestOptions{
		Publisher: "ine",
		License:   "cc-by",
	})
	require.NoError(t, err)

	columns, err := dataset.Columns(ctx)
	require.NoError(t, err)
	// The geometry feature goes last.
	assert.Equal(t, []string{"municipality_id", "population", "timestamp", "geometry"}, columns)

	features, err := dataset.Features(ctx)
	require.NoError(t, err)
	require.Len(t, features, 4)

	assert.Equal(t, "spain-example__municipality-id", features[0].Code())
	assert.Equal(t, "spain-example__geometry", features[3].Code())

	name, err := features[0].Get(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "Municipality id", name)

	// Strings stay categorical even when unique.
	featureType, err := features[0].Get(ctx, "feature_type")
	require.NoError(t, err)
	assert.Equal(t, "cat", featureType)

	dataType, err := features[1].Get(ctx, "data_type")
	require.NoError(t, err)
	assert.Equal(t, "int", dataType)

	featureType, err = features[1].Get(ctx, "feature_type")
	require.NoError(t, err)
	assert.Equal(t, "number", featureType)

	values, err := features[1].NValues(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), values)

	featureType, err = features[3].Get(ctx, "feature_type")
	require.NoError(t, err)
	assert.Equal(t, "geo", featureType)

	for _, feature := range features {
		publisher, err := feature.Get(ctx, "publisher")
		require.NoError(t, err)
		assert.Equal(t, "ine", publisher)

		license, err := feature.Get(ctx, "license")
		require.NoError(t, err)
		assert.Equal(t, "cc-by", license)
	}

	metadata, err := dataset.Metadata(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01T00:00:00Z", metadata["start_data"])
	assert.Equal(t, "2024-03-01T00:00:00Z", metadata["last_data"])
	assert.Equal(t, int64(3), metadata["n_time_slices"])
	assert.Equal(t, "Monthly", metadata["granularity"])

	preview, ok := metadata["preview"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, preview, 3)
	assert.Equal(t, "<geometry>", preview[0]["geometry"])
	assert.Equal(t, int64(0), preview[0]["id"])
	assert.Equal(t, int64(100), preview[0]["population"])
}

func TestMetadataFromTable_RequiresPublisher(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	client := api.client(t, nil)

	err := client.MetadataFromTable(context.Background(), client.Dataset("spain-example"),
		ingestTable(t), dratio.IngestOptions{})
	require.Error(t, err)
	assert.True(t, dratio.IsValidation(err))
}

func TestMetadataFromTable_RejectsEmptyTable(t *testing.T) {
	t.Parallel()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "municipality_id", Type: arrow.BinaryTypes.String},
	}, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	record := builder.NewRecord()
	defer record.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer table.Release()

	api := newAPIServer(t)
	client := api.client(t, nil)

	err := client.MetadataFromTable(context.Background(), client.Dataset("spain-example"),
		table, dratio.IngestOptions{Publisher: "ine"})
	require.ErrorIs(t, err, dratio.ErrEmptyTable)
}

func TestMetadataFromTable_DefaultLicenseFromPublisher(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	api.respond(http.MethodGet, "/publisher/ine/", map[string]interface{}{
		"code":    "ine",
		"license": "ine-license",
	})

	client := api.client(t, nil)
	dataset := client.Dataset("spain-example")

	ctx := context.Background()

	err := client.MetadataFromTable(ctx, dataset, ingestTable(t), dratio.IngestOptions{
		Publisher: "ine",
	})
	require.NoError(t, err)

	features, err := dataset.Features(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, features)

	license, err := features[0].Get(ctx, "license")
	require.NoError(t, err)
	assert.Equal(t, "ine-license", license)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "municipality-id", dratio.Slugify("Municipality ID"))
	assert.Equal(t, "municipality-id", dratio.Slugify("municipality_id"))
	assert.Equal(t, "a-b-c", dratio.Slugify("  A  b__C "))
}
