package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DownloadHTTPTimeout is used when fetching file contents from signed URLs.
	DownloadHTTPTimeout = 5 * time.Minute

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits for the transport layer.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Cache defaults.
const (
	// DefaultCacheSize is the maximum number of entries in the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default expiration for cached responses.
	DefaultCacheTTL = 5 * time.Minute
)

// Materialization defaults.
const (
	// PreviewRows is the number of rows extracted as a dataset preview.
	PreviewRows = 50

	// ParquetBatchSize is the record batch size used when reading parquet.
	ParquetBatchSize = 64 * 1024
)

// AuthScheme is the Authorization header scheme used by the marketplace API.
const AuthScheme = "Token"
