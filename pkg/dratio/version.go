package dratio

import (
	"context"
	"fmt"
	"io"
	"net/http"

	internalhttp "github.com/menhir-tech/dratio-go/internal/http"
)

// Version is a lazy handle to a dataset version. Files are attached to
// versions, so downloading a dataset always goes through one.
type Version struct {
	*Resource
}

func newVersion(client *Client, code string, seed map[string]interface{}) *Version {
	return &Version{Resource: newResource(client, KindVersion, code, seed)}
}

// Name returns the version name.
func (v *Version) Name(ctx context.Context) (string, error) {
	return v.metaString(ctx, "name")
}

// UpdatedAt returns the date the version was last updated.
func (v *Version) UpdatedAt(ctx context.Context) (string, error) {
	return v.metaString(ctx, "updated_at")
}

// Dataset returns a handle to the dataset the version belongs to, or nil
// when unset.
func (v *Version) Dataset(ctx context.Context) (*Dataset, error) {
	code, err := v.refCode(ctx, "dataset")
	if err != nil || code == "" {
		return nil, err
	}

	return v.client.Dataset(code), nil
}

// Files returns handles to the files of the version, optionally filtered by
// file type. The handles are hydrated from the listing.
func (v *Version) Files(ctx context.Context, filetype FileType) ([]*File, error) {
	spec := kindSpecs[KindFile]

	records, err := v.client.listRecords(ctx, spec.path, map[string]string{
		"version":  v.code,
		"filetype": string(filetype),
	})
	if err != nil {
		return nil, err
	}

	files := make([]*File, 0, len(records))

	for _, record := range records {
		code := referenceCode(record["code"])
		if code == "" {
			continue
		}

		file := newFile(v.client, code, record)
		file.markListed()
		files = append(files, file)
	}

	return files, nil
}

// ListFiles lists the files of the version, optionally filtered by file
// type.
func (v *Version) ListFiles(ctx context.Context, filetype FileType, format Format) (*ListResult, error) {
	return v.client.List(ctx, KindFile, &ListOptions{
		Format: format,
		Filters: map[string]string{
			"version":  v.code,
			"filetype": string(filetype),
		},
	})
}

// uploadGrant is the server response to an upload request: a signed URL
// plus the identity of the file being created.
type uploadGrant struct {
	URL     string `json:"url"`
	Code    string `json:"code"`
	Version string `json:"version"`
}

// UploadFile uploads a data file to the version. The server issues a signed
// upload URL, the contents are sent there, and the availability of the
// resulting file is checked before it is returned. With update false the
// server rejects replacing an existing file.
func (v *Version) UploadFile(ctx context.Context, contents io.Reader, filetype FileType, update bool) (*File, error) {
	switch filetype {
	case FileTypeParquet, FileTypeGeoParquet, FileTypeCSV, FileTypeJSON:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFileType, filetype)
	}

	resp, err := v.client.perform(ctx, &internalhttp.Request{
		Method: http.MethodPost,
		Path:   v.itemPath() + "upload/",
		Body: map[string]interface{}{
			"update":   update,
			"filetype": string(filetype),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("requesting upload for version %q: %w", v.code, err)
	}

	var grant uploadGrant
	if err := resp.JSON(&grant); err != nil {
		return nil, fmt.Errorf("decoding upload grant: %w", err)
	}

	if grant.URL == "" {
		return nil, fmt.Errorf("version %q: %w", v.code, ErrUploadNotPermitted)
	}

	if err := v.client.http.Upload(ctx, grant.URL, contents); err != nil {
		return nil, fmt.Errorf("uploading file to version %q: %w", v.code, err)
	}

	file := v.client.File(grant.Code)
	if err := file.checkAvailability(ctx); err != nil {
		return nil, err
	}

	return file, nil
}
