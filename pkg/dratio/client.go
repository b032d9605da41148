package dratio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/menhir-tech/dratio-go/internal/auth"
	"github.com/menhir-tech/dratio-go/internal/constants"
	internalhttp "github.com/menhir-tech/dratio-go/internal/http"
)

// DefaultEndpoint is the production API endpoint.
const DefaultEndpoint = "https://api.dratio.io/api/"

// Config holds the client configuration.
type Config struct {
	// APIKey authenticates every request. Required.
	APIKey string
	// Endpoint overrides the API base URL. Defaults to DefaultEndpoint.
	Endpoint string
	// UserAgent overrides the User-Agent header.
	UserAgent string

	// RetryMax, RetryWaitMin and RetryWaitMax tune the transport retry
	// policy. Zero values select the defaults.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Logger receives structured client logs. Defaults to a no-op logger.
	Logger Logger
	// Debug enables request and response logging.
	Debug bool

	// Cache configures response caching for listing requests. Nil disables
	// caching entirely.
	Cache *CacheConfig

	// DisableGeospatial makes geometry-producing operations fail fast, for
	// environments without geospatial tooling.
	DisableGeospatial bool
}

// Client is the entry point to the marketplace API. Handles returned by the
// client are lazy: constructing them performs no request.
type Client struct {
	http        *internalhttp.Client
	logger      Logger
	cache       Cache
	cacheTTL    time.Duration
	geoDisabled bool
}

// New creates a client from the configuration. No request is performed.
func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	if config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	logger := config.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	opts := []internalhttp.Option{
		internalhttp.WithLogger(httpLogger{logger}),
	}

	if config.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.Debug {
		opts = append(opts, internalhttp.WithDebug(true))
	}

	if config.RetryMax > 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := config.RetryMax
		if retryMax == 0 {
			retryMax = constants.DefaultRetryMax
		}

		waitMin := config.RetryWaitMin
		if waitMin == 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax == 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, internalhttp.WithRetryConfig(retryMax, waitMin, waitMax))
	}

	cache, ttl, err := NewCacheFromConfig(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	tokenManager := auth.NewStaticTokenManager(config.APIKey)

	return &Client{
		http:        internalhttp.NewClient(strings.TrimSuffix(endpoint, "/"), tokenManager, opts...),
		logger:      logger,
		cache:       cache,
		cacheTTL:    ttl,
		geoDisabled: config.DisableGeospatial,
	}, nil
}

// httpLogger adapts the public Logger to the transport logger.
type httpLogger struct {
	logger Logger
}

func (l httpLogger) Debug(msg string, fields map[string]interface{}) { l.logger.Debug(msg, fields) }
func (l httpLogger) Info(msg string, fields map[string]interface{})  { l.logger.Info(msg, fields) }
func (l httpLogger) Warn(msg string, fields map[string]interface{})  { l.logger.Warn(msg, fields) }
func (l httpLogger) Error(msg string, fields map[string]interface{}) { l.logger.Error(msg, fields) }

// perform executes a request and maps transport errors onto the client
// error taxonomy.
func (c *Client) perform(ctx context.Context, req *internalhttp.Request) (*internalhttp.Response, error) {
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return resp, classifyError(err)
	}

	return resp, nil
}

// listRecords performs a collection GET and decodes the result. Successful
// responses are cached when a cache is configured.
func (c *Client) listRecords(ctx context.Context, path string, filters map[string]string) ([]map[string]interface{}, error) {
	query := url.Values{}
	for key, value := range filters {
		if value != "" {
			query.Set(key, value)
		}
	}

	cacheKey := path
	if encoded := query.Encode(); encoded != "" {
		cacheKey = path + "?" + encoded
	}

	var records []map[string]interface{}

	if c.cache != nil {
		if entry, err := c.cache.Get(ctx, cacheKey); err == nil {
			if err := decodeCached(entry, &records); err == nil {
				return records, nil
			}
		}
	}

	resp, err := c.perform(ctx, &internalhttp.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	if err := resp.JSON(&records); err != nil {
		return nil, fmt.Errorf("decoding listing %q: %w", path, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, newCacheEntry(resp.Body, c.cacheTTL)); err != nil {
			c.logger.Warn("failed to cache listing", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
	}

	return records, nil
}

// List retrieves a collection listing for a kind, shaped by the options.
func (c *Client) List(ctx context.Context, kind Kind, opts *ListOptions) (*ListResult, error) {
	spec, err := specFor(kind)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &ListOptions{}
	}

	format := opts.Format
	if format == "" {
		format = FormatTable
	}

	switch format {
	case FormatFlat, FormatTable, FormatTyped:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	records, err := c.listRecords(ctx, spec.path, opts.Filters)
	if err != nil {
		return nil, err
	}

	fields := opts.Fields
	if fields == nil {
		fields = spec.listFields
	}

	return shapeListing(c, kind, records, format, fields)
}

// Typed handle constructors. None of these perform a request.

// Dataset returns a lazy handle to a dataset.
func (c *Client) Dataset(code string) *Dataset { return newDataset(c, code, nil) }

// Feature returns a lazy handle to a feature.
func (c *Client) Feature(code string) *Feature { return newFeature(c, code, nil) }

// File returns a lazy handle to a dataset file.
func (c *Client) File(code string) *File { return newFile(c, code, nil) }

// Version returns a lazy handle to a dataset version.
func (c *Client) Version(code string) *Version { return newVersion(c, code, nil) }

// Publisher returns a lazy handle to a publisher.
func (c *Client) Publisher(code string) *Publisher { return newPublisher(c, code, nil) }

// License returns a lazy handle to a license.
func (c *Client) License(code string) *License { return newLicense(c, code, nil) }

// LicenseItem returns a lazy handle to a license item.
func (c *Client) LicenseItem(code string) *LicenseItem { return newLicenseItem(c, code, nil) }

// Category returns a lazy handle to a category tag.
func (c *Client) Category(code string) *Category { return newCategory(c, code, nil) }

// Scope returns a lazy handle to a scope tag.
func (c *Client) Scope(code string) *Scope { return newScope(c, code, nil) }

// Unit returns a lazy handle to a unit tag.
func (c *Client) Unit(code string) *Unit { return newUnit(c, code, nil) }

// PublisherType returns a lazy handle to a publisher type tag.
func (c *Client) PublisherType(code string) *PublisherType { return newPublisherType(c, code, nil) }

// DataLevel returns a lazy handle to a data level tag.
func (c *Client) DataLevel(code string) *DataLevel { return newDataLevel(c, code, nil) }

// ListDatasets lists datasets.
func (c *Client) ListDatasets(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	return c.List(ctx, KindDataset, opts)
}

// ListFeatures lists features.
func (c *Client) ListFeatures(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	return c.List(ctx, KindFeature, opts)
}

// ListPublishers lists publishers.
func (c *Client) ListPublishers(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	return c.List(ctx, KindPublisher, opts)
}

// ListLicenses lists licenses.
func (c *Client) ListLicenses(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	return c.List(ctx, KindLicense, opts)
}
