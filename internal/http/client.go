// Package http implements the transport gateway used by the marketplace
// client: base-URL resolution, authentication headers, retries, and the
// allowed-status policy. Status codes outside 2xx that are not explicitly
// allowed surface as *http.Error.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/menhir-tech/dratio-go/internal/auth"
	"github.com/menhir-tech/dratio-go/internal/constants"
)

// Logger mirrors the client-level logger so this package stays free of
// dependencies on pkg/dratio.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Error is a transport-level failure: a status code outside 2xx that was not
// in the request's allowed list.
type Error struct {
	StatusCode int
	Detail     string
	Body       []byte
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	}

	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Request describes a single API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string

	// AllowedStatus lists non-2xx codes that must not produce an error.
	AllowedStatus []int
}

// Response is the decoded-enough result of a request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

// Client performs authenticated requests against the marketplace API.
type Client struct {
	baseURL        string
	tokenManager   auth.TokenManager
	httpClient     *retryablehttp.Client
	downloadClient *retryablehttp.Client
	logger         Logger
	debug          bool
	userAgent      string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRetryConfig tunes transport retries for 5xx and 429 responses.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
		c.downloadClient.RetryMax = retryMax
		c.downloadClient.RetryWaitMin = waitMin
		c.downloadClient.RetryWaitMax = waitMax
	}
}

// NewClient creates a transport client for the given base URL. tokenManager
// may be nil for unauthenticated use.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	apiClient := retryablehttp.NewClient()
	apiClient.Logger = nil
	apiClient.RetryMax = constants.DefaultRetryMax
	apiClient.RetryWaitMin = constants.DefaultRetryWaitMin
	apiClient.RetryWaitMax = constants.DefaultRetryWaitMax
	apiClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	// Keep the last response when retries are exhausted so the status code
	// reaches the error taxonomy.
	apiClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	downloadClient := retryablehttp.NewClient()
	downloadClient.Logger = nil
	downloadClient.RetryMax = constants.DefaultRetryMax
	downloadClient.HTTPClient.Timeout = constants.DownloadHTTPTimeout
	downloadClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		tokenManager:   tokenManager,
		httpClient:     apiClient,
		downloadClient: downloadClient,
		userAgent:      "dratio-go",
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do performs a request against the API.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var body io.Reader

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		httpReq.Header.Set("Authorization", constants.AuthScheme+" "+token)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         fullURL,
			"status_code": resp.StatusCode,
		})
	}

	if !statusOK(resp.StatusCode) && !slices.Contains(req.AllowedStatus, resp.StatusCode) {
		return resp, newStatusError(resp)
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Download fetches the contents of a signed URL. No Authorization header is
// sent: the URL itself is the capability.
func (c *Client) Download(ctx context.Context, absoluteURL string) ([]byte, error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, absoluteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	httpReq.Header.Set("User-Agent", c.userAgent)

	httpResp, err := c.downloadClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading file contents: %w", err)
	}

	if !statusOK(httpResp.StatusCode) {
		return nil, &Error{StatusCode: httpResp.StatusCode, Detail: "file download failed"}
	}

	return data, nil
}

// Upload sends raw contents to a signed URL with a PUT, as required by the
// upload grant returned from the API.
func (c *Client) Upload(ctx context.Context, absoluteURL string, contents io.Reader) error {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, absoluteURL, contents)
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/octet-stream")
	httpReq.Header.Set("User-Agent", c.userAgent)

	httpResp, err := c.downloadClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("uploading file: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if !statusOK(httpResp.StatusCode) {
		return &Error{StatusCode: httpResp.StatusCode, Detail: "file upload failed"}
	}

	return nil
}

func statusOK(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

func newStatusError(resp *Response) *Error {
	detail := ""

	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}

	if err := json.Unmarshal(resp.Body, &payload); err == nil {
		if payload.Detail != "" {
			detail = payload.Detail
		} else {
			detail = payload.Error
		}
	}

	return &Error{StatusCode: resp.StatusCode, Detail: detail, Body: resp.Body}
}
