package dratio_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menhir-tech/dratio-go/pkg/dratio"
)

func municipalitiesAPI(t *testing.T) *apiServer {
	t.Helper()

	api := newAPIServer(t)
	api.respond(http.MethodGet, "/dataset/ine-municipalities/", map[string]interface{}{
		"code":             "ine-municipalities",
		"name":             "Municipalities",
		"granularity":      "daily",
		"update_frequency": "Monthly",
		"n_values":         8131,
		"publisher":        map[string]interface{}{"code": "ine", "name": "INE"},
		"scope":            "spain",
		"categories":       []interface{}{"demographics", map[string]interface{}{"code": "geography"}},
	})
	api.respond(http.MethodGet, "/feature/", []map[string]interface{}{
		{"code": "ine-municipalities__municipality-id", "column": "municipality_id", "feature_type": "id"},
		{"code": "ine-municipalities__population", "column": "population", "feature_type": "number"},
	})

	return api
}

func TestDataset_Accessors(t *testing.T) {
	t.Parallel()

	api := municipalitiesAPI(t)
	client := api.client(t, nil)
	dataset := client.Dataset("ine-municipalities")

	ctx := context.Background()

	granularity, err := dataset.Granularity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Daily", granularity)

	frequency, err := dataset.UpdateFrequency(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Monthly", frequency)

	values, err := dataset.NValues(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8131), values)

	publisher, err := dataset.Publisher(ctx)
	require.NoError(t, err)
	require.NotNil(t, publisher)
	assert.Equal(t, "ine", publisher.Code())

	scope, err := dataset.Scope(ctx)
	require.NoError(t, err)
	require.NotNil(t, scope)
	assert.Equal(t, "spain", scope.Code())

	license, err := dataset.License(ctx)
	require.NoError(t, err)
	assert.Nil(t, license)

	categories, err := dataset.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "demographics", categories[0].Code())
	assert.Equal(t, "geography", categories[1].Code())

	// Every accessor reads from the single fetched document.
	assert.Equal(t, 1, api.requests(http.MethodGet, "/dataset/ine-municipalities/"))
}

func TestDataset_FeaturesListedOnce(t *testing.T) {
	t.Parallel()

	api := municipalitiesAPI(t)
	client := api.client(t, nil)
	dataset := client.Dataset("ine-municipalities")

	ctx := context.Background()

	features, err := dataset.Features(ctx)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "ine-municipalities__municipality-id", features[0].Code())

	// The handles are hydrated from the listing.
	column, err := features[1].Column(ctx)
	require.NoError(t, err)
	assert.Equal(t, "population", column)

	columns, err := dataset.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"municipality_id", "population"}, columns)

	assert.Equal(t, 1, api.requests(http.MethodGet, "/feature/"))
	assert.Equal(t, 0, api.requests(http.MethodGet, "/feature/ine-municipalities__population/"))
}

func TestDataset_TimestampColumnValidated(t *testing.T) {
	t.Parallel()

	api := municipalitiesAPI(t)
	client := api.client(t, nil)
	dataset := client.Dataset("ine-municipalities")

	ctx := context.Background()

	err := dataset.Set(ctx, "timestamp_column", "observed_at")
	require.Error(t, err)

	validation := &dratio.ValidationError{}
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, []string{"municipality_id", "population"}, validation.Allowed)

	require.NoError(t, dataset.Set(ctx, "timestamp_column", "population"))
}

func TestDataset_VersionIsLatest(t *testing.T) {
	t.Parallel()

	api := municipalitiesAPI(t)
	api.respond(http.MethodGet, "/version/", []map[string]interface{}{
		{"code": "v20240101", "name": "January"},
		{"code": "v20240201", "name": "February"},
	})

	client := api.client(t, nil)
	dataset := client.Dataset("ine-municipalities")

	ctx := context.Background()

	version, err := dataset.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v20240201", version.Code())

	name, err := version.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "February", name)

	again, err := dataset.Version(ctx)
	require.NoError(t, err)
	assert.Same(t, version, again)
	assert.Equal(t, 1, api.requests(http.MethodGet, "/version/"))
}

func TestDataset_SetVersion(t *testing.T) {
	t.Parallel()

	api := municipalitiesAPI(t)
	api.respond(http.MethodGet, "/version/", []map[string]interface{}{
		{"code": "v20240101", "name": "January"},
		{"code": "v20240201", "name": "February"},
	})

	client := api.client(t, nil)
	dataset := client.Dataset("ine-municipalities")

	ctx := context.Background()

	version, err := dataset.SetVersion(ctx, "January")
	require.NoError(t, err)
	assert.Equal(t, "v20240101", version.Code())

	pinned, err := dataset.Version(ctx)
	require.NoError(t, err)
	assert.Same(t, version, pinned)

	version, err = dataset.SetVersion(ctx, "v20240201")
	require.NoError(t, err)
	assert.Equal(t, "v20240201", version.Code())

	_, err = dataset.SetVersion(ctx, "March")
	require.Error(t, err)
	assert.True(t, dratio.IsNotFound(err))
}

func TestDataset_VersionMissing(t *testing.T) {
	t.Parallel()

	api := municipalitiesAPI(t)
	api.respond(http.MethodGet, "/version/", []map[string]interface{}{})

	client := api.client(t, nil)

	_, err := client.Dataset("ine-municipalities").Version(context.Background())
	require.Error(t, err)
	assert.True(t, dratio.IsNotFound(err))
}

func TestDataset_AddFeatureRequiresColumn(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	client := api.client(t, nil)

	ctx := context.Background()

	dataset := client.Dataset("new-dataset")
	feature := client.Feature("new-dataset__population")
	require.NoError(t, feature.Set(ctx, "name", "Population"))

	err := dataset.AddFeature(ctx, feature)
	require.Error(t, err)
	assert.True(t, dratio.IsValidation(err))
}

func TestDataset_AddFeatureSkipsDuplicates(t *testing.T) {
	t.Parallel()

	api := municipalitiesAPI(t)
	client := api.client(t, nil)
	dataset := client.Dataset("ine-municipalities")

	ctx := context.Background()

	// Resolve the dataset so the duplicate check runs against the server
	// features.
	_, err := dataset.Metadata(ctx)
	require.NoError(t, err)

	duplicate := client.Feature("ine-municipalities__head-count")
	require.NoError(t, duplicate.Set(ctx, "column", "population"))

	require.NoError(t, dataset.AddFeature(ctx, duplicate))

	features, err := dataset.Features(ctx)
	require.NoError(t, err)
	assert.Len(t, features, 2)

	fresh := client.Feature("ine-municipalities__area")
	require.NoError(t, fresh.Set(ctx, "column", "area"))

	require.NoError(t, dataset.AddFeature(ctx, fresh))

	features, err = dataset.Features(ctx)
	require.NoError(t, err)
	assert.Len(t, features, 3)

	bound, err := fresh.Get(ctx, "dataset")
	require.NoError(t, err)
	assert.Equal(t, "ine-municipalities", bound)
}
