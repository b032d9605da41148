package dratio

import (
	"context"
	"fmt"
	"net/http"

	"github.com/apache/arrow/go/v17/arrow"

	internalhttp "github.com/menhir-tech/dratio-go/internal/http"
	"github.com/menhir-tech/dratio-go/internal/tabular"
)

// File is a lazy handle to a data file of a dataset version.
type File struct {
	*Resource
}

func newFile(client *Client, code string, seed map[string]interface{}) *File {
	return &File{Resource: newResource(client, KindFile, code, seed)}
}

// Filetype returns the storage format of the file.
func (f *File) Filetype(ctx context.Context) (FileType, error) {
	raw, err := f.metaString(ctx, "filetype")

	return FileType(raw), err
}

// Size returns the size of the file in bytes.
func (f *File) Size(ctx context.Context) (int64, error) {
	return f.metaInt(ctx, "size")
}

// StartTime returns the start time covered by the file.
func (f *File) StartTime(ctx context.Context) (string, error) {
	return f.metaString(ctx, "start_time")
}

// EndTime returns the end time covered by the file.
func (f *File) EndTime(ctx context.Context) (string, error) {
	return f.metaString(ctx, "end_time")
}

// UpdatedAt returns the date the file was last updated.
func (f *File) UpdatedAt(ctx context.Context) (string, error) {
	return f.metaString(ctx, "updated_at")
}

// Version returns a handle to the version the file belongs to, or nil when
// unset.
func (f *File) Version(ctx context.Context) (*Version, error) {
	code, err := f.refCode(ctx, "version")
	if err != nil || code == "" {
		return nil, err
	}

	return f.client.Version(code), nil
}

// Dataset returns a handle to the dataset the file belongs to, or nil when
// the chain is incomplete.
func (f *File) Dataset(ctx context.Context) (*Dataset, error) {
	version, err := f.Version(ctx)
	if err != nil || version == nil {
		return nil, err
	}

	return version.Dataset(ctx)
}

// downloadGrant is the server response to a download request.
type downloadGrant struct {
	URL     string `json:"url"`
	Preview bool   `json:"preview"`
}

// DownloadURL requests a fresh signed URL for the file contents. The URLs
// expire after a short period, so every call performs a new request. When
// the plan only grants a preview, a warning is logged.
func (f *File) DownloadURL(ctx context.Context) (string, error) {
	resp, err := f.client.perform(ctx, &internalhttp.Request{
		Method: http.MethodGet,
		Path:   f.itemPath() + "download/",
	})
	if err != nil {
		return "", fmt.Errorf("requesting download URL for file %q: %w", f.code, err)
	}

	var grant downloadGrant
	if err := resp.JSON(&grant); err != nil {
		return "", fmt.Errorf("decoding download grant: %w", err)
	}

	if grant.URL == "" {
		return "", fmt.Errorf("file %q: %w", f.code, ErrDownloadURLMissing)
	}

	if grant.Preview {
		f.client.logger.Warn("downloading a preview with a few example rows, the full file is not available in your plan",
			map[string]interface{}{"file": f.code})
	}

	return grant.URL, nil
}

// Content downloads the file contents through a fresh signed URL.
func (f *File) Content(ctx context.Context) ([]byte, error) {
	url, err := f.DownloadURL(ctx)
	if err != nil {
		return nil, err
	}

	contents, err := f.client.http.Download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("downloading file %q: %w", f.code, err)
	}

	return contents, nil
}

// ToTable downloads the file and decodes it into an in-memory table
// according to its file type.
func (f *File) ToTable(ctx context.Context) (arrow.Table, error) {
	filetype, err := f.Filetype(ctx)
	if err != nil {
		return nil, err
	}

	contents, err := f.Content(ctx)
	if err != nil {
		return nil, err
	}

	switch filetype {
	case FileTypeCSV:
		return tabular.ReadCSV(contents)
	case FileTypeJSON:
		return tabular.ReadJSON(contents)
	default:
		// Parquet is the native storage format.
		return tabular.ReadParquet(ctx, contents)
	}
}

// ToGeoTable downloads a geocoded file and decodes it into a table with a
// geometry column. Files of any other type are rejected.
func (f *File) ToGeoTable(ctx context.Context) (*GeoTable, error) {
	if f.client.geoDisabled {
		return nil, ErrGeospatialDisabled
	}

	filetype, err := f.Filetype(ctx)
	if err != nil {
		return nil, err
	}

	if filetype != FileTypeGeoParquet {
		return nil, &NotFoundError{Detail: fmt.Sprintf(
			"file %q does not contain geospatial information, use ToTable instead", f.code)}
	}

	contents, err := f.Content(ctx)
	if err != nil {
		return nil, err
	}

	table, err := tabular.ReadParquet(ctx, contents)
	if err != nil {
		return nil, err
	}

	return newGeoTable(table)
}

// checkAvailability asks the server to refresh the availability state of
// the file after an upload.
func (f *File) checkAvailability(ctx context.Context) error {
	if _, err := f.client.perform(ctx, &internalhttp.Request{
		Method: http.MethodPost,
		Path:   f.itemPath() + "check/",
	}); err != nil {
		return fmt.Errorf("checking availability of file %q: %w", f.code, err)
	}

	return nil
}
