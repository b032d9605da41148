package dratio

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	internalhttp "github.com/menhir-tech/dratio-go/internal/http"
)

// Resource is the lazy binding shared by every typed handle. It holds the
// code, the metadata map and the fetch state. No request is performed until
// metadata is actually needed.
type Resource struct {
	client *Client
	kind   Kind
	spec   *kindSpec
	code   string

	metadata map[string]interface{}
	fetched  bool
	exists   *bool

	// checkValue validates field writes that need instance state, such as
	// a dataset checking timestamp_column against its feature columns.
	checkValue func(ctx context.Context, key string, value interface{}) error
	// saveRelated persists dependent sub-resources after the resource
	// itself has been written.
	saveRelated func(ctx context.Context) error
}

func newResource(client *Client, kind Kind, code string, seed map[string]interface{}) *Resource {
	spec := kindSpecs[kind]

	metadata := map[string]interface{}{"code": code}
	for key, value := range seed {
		metadata[key] = value
	}

	return &Resource{
		client:   client,
		kind:     kind,
		spec:     spec,
		code:     code,
		metadata: metadata,
	}
}

// markListed records that the metadata came from a listing, so access
// performs no further request.
func (r *Resource) markListed() {
	r.fetched = true
	r.markExists(true)
}

// Code returns the unique identifier of the resource.
func (r *Resource) Code() string { return r.code }

// Kind returns the resource family of the handle.
func (r *Resource) Kind() Kind { return r.kind }

// Fetched reports whether metadata has been retrieved from the server.
func (r *Resource) Fetched() bool { return r.fetched }

// Exists reports whether the resource is present in the database. The known
// result is false until a fetch or delete has resolved the state.
func (r *Resource) Exists() (exists, known bool) {
	if r.exists == nil {
		return false, false
	}

	return *r.exists, true
}

func (r *Resource) markExists(exists bool) {
	r.exists = &exists
}

func (r *Resource) itemPath() string {
	return r.spec.path + r.code + "/"
}

// Fetch retrieves the metadata from the server, replacing any local state.
// When failNotFound is false a missing resource is recorded instead of
// reported, which lets callers stage metadata for a later create.
func (r *Resource) Fetch(ctx context.Context, failNotFound bool) error {
	resp, err := r.client.perform(ctx, &internalhttp.Request{
		Method:        http.MethodGet,
		Path:          r.itemPath(),
		AllowedStatus: []int{http.StatusNotFound},
	})
	if err != nil {
		return err
	}

	r.fetched = true

	if resp.StatusCode == http.StatusNotFound {
		r.markExists(false)

		if failNotFound {
			return &NotFoundError{Kind: r.kind, Code: r.code}
		}

		return nil
	}

	var metadata map[string]interface{}
	if err := resp.JSON(&metadata); err != nil {
		return fmt.Errorf("decoding %s %q: %w", r.kind, r.code, err)
	}

	r.metadata = metadata
	r.markExists(true)

	return nil
}

// Metadata returns the metadata map, fetching it on first access.
func (r *Resource) Metadata(ctx context.Context) (map[string]interface{}, error) {
	if !r.fetched {
		if err := r.Fetch(ctx, true); err != nil {
			return nil, err
		}
	}

	return r.metadata, nil
}

// Get returns a single metadata field, fetching on first access. A missing
// field is reported through ErrFieldNotFound.
func (r *Resource) Get(ctx context.Context, key string) (interface{}, error) {
	metadata, err := r.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	value, ok := metadata[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q on %s %q", ErrFieldNotFound, key, r.kind, r.code)
	}

	return value, nil
}

// Set stages a metadata write. The field must be editable for the kind, the
// current server state is loaded first so that a later Save sends a complete
// document, and handle values are normalized to their codes.
func (r *Resource) Set(ctx context.Context, key string, value interface{}) error {
	if !r.spec.allowsEdit(key) {
		return &NotEditableError{Kind: r.kind, Field: key, Editable: r.spec.editable}
	}

	if !r.fetched {
		if err := r.Fetch(ctx, false); err != nil {
			return err
		}
	}

	// References are stored by code.
	if handle, ok := value.(Handle); ok {
		if handle == nil {
			value = nil
		} else {
			value = handle.Code()
		}
	}

	if r.spec.checkValue != nil {
		if err := r.spec.checkValue(key, value); err != nil {
			return err
		}
	}

	if r.checkValue != nil {
		if err := r.checkValue(ctx, key, value); err != nil {
			return err
		}
	}

	r.metadata[key] = value

	return nil
}

// Save persists the staged metadata: an update when the resource exists, a
// create otherwise. Dependent sub-resources are saved afterwards and the
// metadata is refetched so the local state reflects the server.
func (r *Resource) Save(ctx context.Context) error {
	if !r.fetched {
		if err := r.Fetch(ctx, false); err != nil {
			return err
		}
	}

	exists, _ := r.Exists()

	req := &internalhttp.Request{Body: r.metadata}
	if exists {
		req.Method = http.MethodPatch
		req.Path = r.itemPath()
	} else {
		r.metadata["code"] = r.code
		req.Method = http.MethodPost
		req.Path = r.spec.path
	}

	if _, err := r.client.perform(ctx, req); err != nil {
		return fmt.Errorf("saving %s %q: %w", r.kind, r.code, err)
	}

	r.markExists(true)

	if r.saveRelated != nil {
		if err := r.saveRelated(ctx); err != nil {
			return err
		}
	}

	return r.Fetch(ctx, true)
}

// Delete removes the resource from the database.
func (r *Resource) Delete(ctx context.Context) error {
	if _, err := r.client.perform(ctx, &internalhttp.Request{
		Method: http.MethodDelete,
		Path:   r.itemPath(),
	}); err != nil {
		return fmt.Errorf("deleting %s %q: %w", r.kind, r.code, err)
	}

	r.markExists(false)

	return nil
}

// Keys returns the sorted metadata field names, fetching on first access.
func (r *Resource) Keys(ctx context.Context) ([]string, error) {
	metadata, err := r.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys, nil
}

// metaString reads a string field, returning the zero value when the field
// is absent or null.
func (r *Resource) metaString(ctx context.Context, key string) (string, error) {
	metadata, err := r.Metadata(ctx)
	if err != nil {
		return "", err
	}

	if text, ok := metadata[key].(string); ok {
		return text, nil
	}

	return "", nil
}

// metaInt reads a numeric field. JSON numbers decode as float64.
func (r *Resource) metaInt(ctx context.Context, key string) (int64, error) {
	metadata, err := r.Metadata(ctx)
	if err != nil {
		return 0, err
	}

	switch number := metadata[key].(type) {
	case float64:
		return int64(number), nil
	case int64:
		return number, nil
	case int:
		return int64(number), nil
	default:
		return 0, nil
	}
}

// refCode reads a reference field that may be either a bare code or a
// nested object with a code field.
func (r *Resource) refCode(ctx context.Context, key string) (string, error) {
	metadata, err := r.Metadata(ctx)
	if err != nil {
		return "", err
	}

	return referenceCode(metadata[key]), nil
}

func referenceCode(value interface{}) string {
	switch ref := value.(type) {
	case string:
		return ref
	case map[string]interface{}:
		if code, ok := ref["code"].(string); ok {
			return code
		}
	}

	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
