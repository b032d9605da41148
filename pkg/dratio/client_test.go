package dratio_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menhir-tech/dratio-go/pkg/dratio"
)

// apiServer is a fake marketplace API: handlers are registered per method
// and path, every request is counted, and unregistered paths answer with the
// API's not-found payload.
type apiServer struct {
	server *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	handlers map[string]http.HandlerFunc
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()

	api := &apiServer{
		hits:     make(map[string]int),
		handlers: make(map[string]http.HandlerFunc),
	}

	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		api.mu.Lock()
		api.hits[key]++
		handler, ok := api.handlers[key]
		api.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "Not found."}`))

			return
		}

		handler(w, r)
	}))
	t.Cleanup(api.server.Close)

	return api
}

func (a *apiServer) handle(method, path string, handler http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.handlers[method+" "+path] = handler
}

// respond registers a handler answering with a fixed JSON value.
func (a *apiServer) respond(method, path string, value interface{}) {
	a.handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(value)
	})
}

func (a *apiServer) requests(method, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.hits[method+" "+path]
}

func (a *apiServer) client(t *testing.T, config *dratio.Config) *dratio.Client {
	t.Helper()

	if config == nil {
		config = &dratio.Config{}
	}

	if config.APIKey == "" {
		config.APIKey = "test-key"
	}

	config.Endpoint = a.server.URL

	client, err := dratio.New(config)
	require.NoError(t, err)

	return client
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := dratio.New(nil)
	require.ErrorIs(t, err, dratio.ErrConfigRequired)

	_, err = dratio.New(&dratio.Config{})
	require.ErrorIs(t, err, dratio.ErrAPIKeyRequired)
}

func TestClient_HandlesAreLazy(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	client := api.client(t, nil)

	dataset := client.Dataset("ine-municipalities")
	feature := client.Feature("ine-municipalities__population")
	publisher := client.Publisher("ine")

	assert.Equal(t, "ine-municipalities", dataset.Code())
	assert.Equal(t, dratio.KindDataset, dataset.Kind())
	assert.Equal(t, dratio.KindFeature, feature.Kind())
	assert.Equal(t, dratio.KindPublisher, publisher.Kind())
	assert.False(t, dataset.Fetched())

	_, known := dataset.Exists()
	assert.False(t, known)

	assert.Equal(t, 0, api.requests(http.MethodGet, "/dataset/ine-municipalities/"))
}

func TestClient_Resolve(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	client := api.client(t, nil)

	handle, err := client.Resolve(dratio.KindScope, "spain")
	require.NoError(t, err)
	assert.Equal(t, "spain", handle.Code())
	assert.Equal(t, dratio.KindScope, handle.Kind())

	handle, err = client.Resolve(dratio.KindScope, "")
	require.NoError(t, err)
	assert.Nil(t, handle)

	_, err = client.Resolve(dratio.Kind("planet"), "earth")
	require.ErrorIs(t, err, dratio.ErrUnknownKind)
}

func TestList_FlatKeepsRecordsUnmodified(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	api.respond(http.MethodGet, "/dataset/", []map[string]interface{}{
		{
			"code":  "ine-municipalities",
			"name":  "Municipalities",
			"scope": map[string]interface{}{"code": "es", "name": "Spain"},
		},
	})

	client := api.client(t, nil)

	result, err := client.ListDatasets(context.Background(), &dratio.ListOptions{Format: dratio.FormatFlat})
	require.NoError(t, err)

	require.Equal(t, 1, result.Len())
	assert.Equal(t, "ine-municipalities", result.Records[0]["code"])

	scope, ok := result.Records[0]["scope"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "es", scope["code"])
	assert.NotContains(t, result.Records[0], "scope_code")
}

func TestList_TableColumnsAndNulls(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	api.respond(http.MethodGet, "/license/", []map[string]interface{}{
		{"code": "cc-by", "name": "Creative Commons BY", "url": "https://creativecommons.org"},
		{"code": "custom-ine"},
	})

	client := api.client(t, nil)

	result, err := client.ListLicenses(context.Background(), &dratio.ListOptions{
		Fields: []string{"code", "name"},
	})
	require.NoError(t, err)

	require.NotNil(t, result.Table)
	assert.Equal(t, int64(2), result.Table.NumRows())
	assert.Equal(t, int64(2), result.Table.NumCols())
	assert.Equal(t, "code", result.Table.ColumnName(0))
	assert.Equal(t, "name", result.Table.ColumnName(1))

	names := result.Table.Column(1)
	assert.False(t, names.IsNull(0))
	assert.True(t, names.IsNull(1))
}

func TestList_TypedHandlesAreLazy(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	// The list projection omits fields the item document carries.
	api.respond(http.MethodGet, "/dataset/", []map[string]interface{}{
		{"code": "ine-municipalities", "name": "Municipalities"},
	})
	api.respond(http.MethodGet, "/dataset/ine-municipalities/", map[string]interface{}{
		"code":        "ine-municipalities",
		"name":        "Municipalities",
		"description": "Municipal boundaries of Spain.",
	})

	client := api.client(t, nil)

	result, err := client.ListDatasets(context.Background(), &dratio.ListOptions{Format: dratio.FormatTyped})
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())

	dataset, ok := result.Handles[0].(*dratio.Dataset)
	require.True(t, ok)
	assert.False(t, dataset.Fetched())
	assert.Equal(t, 0, api.requests(http.MethodGet, "/dataset/ine-municipalities/"))

	// First access fetches the canonical item document, so fields absent
	// from the listing are still available.
	description, err := dataset.Get(context.Background(), "description")
	require.NoError(t, err)
	assert.Equal(t, "Municipal boundaries of Spain.", description)
	assert.Equal(t, 1, api.requests(http.MethodGet, "/dataset/ine-municipalities/"))
}

func TestList_UnknownFormat(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	client := api.client(t, nil)

	_, err := client.ListDatasets(context.Background(), &dratio.ListOptions{Format: dratio.Format("csv")})
	require.ErrorIs(t, err, dratio.ErrUnknownFormat)
}

func TestList_Filters(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	api.handle(http.MethodGet, "/feature/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ine", r.URL.Query().Get("publisher"))
		assert.False(t, r.URL.Query().Has("dataset"))

		_, _ = w.Write([]byte(`[]`))
	})

	client := api.client(t, nil)

	result, err := client.ListFeatures(context.Background(), &dratio.ListOptions{
		Format:  dratio.FormatFlat,
		Filters: map[string]string{"publisher": "ine", "dataset": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
}

func TestClient_PermissionDenied(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	api.handle(http.MethodGet, "/dataset/private/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": "You do not have access to this dataset."}`))
	})

	client := api.client(t, nil)

	_, err := client.Dataset("private").Metadata(context.Background())
	require.Error(t, err)
	assert.True(t, dratio.IsPermissionDenied(err))
	assert.Contains(t, err.Error(), "You do not have access to this dataset.")
}

func TestClient_InvalidRequest(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	api.handle(http.MethodGet, "/dataset/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Unknown filter."}`))
	})

	client := api.client(t, nil)

	_, err := client.ListDatasets(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, dratio.IsInvalidRequest(err))
}

func TestClient_ServerErrorKeepsStatus(t *testing.T) {
	t.Parallel()

	api := newAPIServer(t)
	api.handle(http.MethodGet, "/dataset/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := api.client(t, &dratio.Config{
		RetryMax:     1,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	})

	_, err := client.ListDatasets(context.Background(), nil)
	require.Error(t, err)

	status, ok := dratio.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, status)
}
