package http_test

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menhir-tech/dratio-go/internal/auth"
	"github.com/menhir-tech/dratio-go/internal/http"
)

func TestClient_AuthorizationHeader(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte(`{"code": "spain"}`))
	}))
	defer server.Close()

	client := http.NewClient(server.URL, auth.NewStaticTokenManager("test-key"))

	resp, err := client.Get(context.Background(), "scope/spain/", nil)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, resp.JSON(&body))
	assert.Equal(t, "spain", body["code"])
}

func TestClient_QueryAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPost, r.Method)
		assert.Equal(t, "/dataset/", r.URL.Path)
		assert.Equal(t, "census", r.URL.Query().Get("publisher"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "population", payload["code"])

		w.WriteHeader(nethttp.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := http.NewClient(server.URL, auth.NewStaticTokenManager("test-key"))

	resp, err := client.Do(context.Background(), &http.Request{
		Method: nethttp.MethodPost,
		Path:   "dataset/",
		Query:  url.Values{"publisher": []string{"census"}},
		Body:   map[string]string{"code": "population"},
	})
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusCreated, resp.StatusCode)
}

func TestClient_ErrorDetail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": "Invalid token."}`))
	}))
	defer server.Close()

	client := http.NewClient(server.URL, auth.NewStaticTokenManager("bad-key"))

	_, err := client.Get(context.Background(), "dataset/", nil)
	require.Error(t, err)

	var httpErr *http.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, nethttp.StatusForbidden, httpErr.StatusCode)
	assert.Equal(t, "Invalid token.", httpErr.Detail)
	assert.Equal(t, "HTTP 403: Invalid token.", httpErr.Error())
}

func TestClient_AllowedStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Not found."}`))
	}))
	defer server.Close()

	client := http.NewClient(server.URL, auth.NewStaticTokenManager("test-key"))

	resp, err := client.Do(context.Background(), &http.Request{
		Method:        nethttp.MethodGet,
		Path:          "dataset/missing/",
		AllowedStatus: []int{nethttp.StatusNotFound},
	})
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(nethttp.StatusInternalServerError)

			return
		}

		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := http.NewClient(server.URL, auth.NewStaticTokenManager("test-key"),
		http.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

	resp, err := client.Get(context.Background(), "dataset/", nil)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, attempts)
}

func TestClient_DownloadSkipsAuth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))

		_, _ = w.Write([]byte("file contents"))
	}))
	defer server.Close()

	client := http.NewClient("https://api.example.com", auth.NewStaticTokenManager("test-key"))

	data, err := client.Download(context.Background(), server.URL+"/signed")
	require.NoError(t, err)
	assert.Equal(t, "file contents", string(data))
}

func TestClient_Upload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPut, r.Method)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "parquet bytes", string(data))

		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	client := http.NewClient("https://api.example.com", auth.NewStaticTokenManager("test-key"))

	err := client.Upload(context.Background(), server.URL+"/signed", strings.NewReader("parquet bytes"))
	require.NoError(t, err)
}
