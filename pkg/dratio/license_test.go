package dratio_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menhir-tech/dratio-go/pkg/dratio"
)

func TestLicense_ItemsKeyedByCodeSuffix(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	api.respond(http.MethodGet, "/license-item/", []map[string]interface{}{
		{"code": "cc-by--attribution", "name": "Attribution", "grant": false},
		{"code": "cc-by--commercial-use", "name": "Commercial use", "grant": true},
	})

	client := api.client(t, nil)
	license := client.License("cc-by")

	ctx := context.Background()

	items, err := license.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	item, ok := items["commercial-use"]
	require.True(t, ok)
	assert.Equal(t, "cc-by--commercial-use", item.Code())

	grant, err := item.Grant(ctx)
	require.NoError(t, err)
	assert.True(t, grant)

	// The handles come hydrated from one listing.
	assert.Equal(t, 1, api.requests(http.MethodGet, "/license-item/"))
	assert.Equal(t, 0, api.requests(http.MethodGet, "/license-item/cc-by--commercial-use/"))
}

func TestLicense_AddItem(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	api.respond(http.MethodGet, "/license-item/", []map[string]interface{}{
		{"code": "cc-by--attribution", "name": "Attribution"},
	})

	client := api.client(t, nil)
	license := client.License("cc-by")

	ctx := context.Background()

	grant := true

	item, err := license.AddItem(ctx, dratio.LicenseItemParams{
		Code:  "cc-by--commercial-use",
		Name:  "Commercial use",
		Grant: &grant,
	})
	require.NoError(t, err)
	assert.Equal(t, "cc-by--commercial-use", item.Code())

	staged, err := item.Get(ctx, "license")
	require.NoError(t, err)
	assert.Equal(t, "cc-by", staged)

	items, err := license.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// Staging an item with an existing suffix updates it in place.
	updated, err := license.AddItem(ctx, dratio.LicenseItemParams{
		Code: "cc-by--attribution",
		Name: "Attribution required",
	})
	require.NoError(t, err)
	assert.Same(t, items["attribution"], updated)

	name, err := updated.Get(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "Attribution required", name)
}

func TestLicense_AddItemRequiresCode(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	client := api.client(t, nil)

	_, err := client.License("cc-by").AddItem(context.Background(), dratio.LicenseItemParams{
		Name: "Unnamed",
	})
	require.ErrorIs(t, err, dratio.ErrLicenseItemRequired)
}

func TestFeature_LicenseFallsBackToDataset(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	api.respond(http.MethodGet, "/feature/ine-municipalities__population/", map[string]interface{}{
		"code":            "ine-municipalities__population",
		"dataset_license": map[string]interface{}{"code": "cc-by"},
	})

	client := api.client(t, nil)

	license, err := client.Feature("ine-municipalities__population").License(context.Background())
	require.NoError(t, err)
	require.NotNil(t, license)
	assert.Equal(t, "cc-by", license.Code())
}
