package dratio

import (
	"context"
	"strings"
)

// License is a lazy handle to a license. A license owns a set of license
// items describing the individual grants and restrictions.
type License struct {
	*Resource

	items map[string]*LicenseItem
}

func newLicense(client *Client, code string, seed map[string]interface{}) *License {
	license := &License{Resource: newResource(client, KindLicense, code, seed)}
	license.Resource.saveRelated = license.saveItems

	return license
}

// Name returns the license name.
func (l *License) Name(ctx context.Context) (string, error) {
	return l.metaString(ctx, "name")
}

// Description returns the license description.
func (l *License) Description(ctx context.Context) (string, error) {
	return l.metaString(ctx, "description")
}

// URL returns the URL of the license text.
func (l *License) URL(ctx context.Context) (string, error) {
	return l.metaString(ctx, "url")
}

// itemKey derives the map key of a license item from its code: the part
// after the last "--" separator.
func itemKey(code string) string {
	parts := strings.Split(code, "--")

	return parts[len(parts)-1]
}

// Items returns the license items keyed by the suffix of their code. The
// listing is retrieved once per handle.
func (l *License) Items(ctx context.Context) (map[string]*LicenseItem, error) {
	if l.items != nil {
		return l.items, nil
	}

	spec := kindSpecs[KindLicenseItem]

	records, err := l.client.listRecords(ctx, spec.path, map[string]string{"license": l.code})
	if err != nil {
		return nil, err
	}

	items := make(map[string]*LicenseItem, len(records))

	for _, record := range records {
		code := referenceCode(record["code"])
		if code == "" {
			continue
		}

		item := newLicenseItem(l.client, code, record)
		item.markListed()
		items[itemKey(code)] = item
	}

	l.items = items

	return l.items, nil
}

// LicenseItemParams holds the fields of a license item staged through
// AddItem.
type LicenseItemParams struct {
	Code          string
	Name          string
	Description   string
	Grant         *bool
	NameES        string
	DescriptionES string
	IsPublic      bool
}

// AddItem stages a license item, overriding an existing item with the same
// code suffix. The item is persisted when the license is saved.
func (l *License) AddItem(ctx context.Context, params LicenseItemParams) (*LicenseItem, error) {
	if params.Code == "" {
		return nil, ErrLicenseItemRequired
	}

	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}

	key := itemKey(params.Code)

	item, ok := items[key]
	if !ok {
		item = l.client.LicenseItem(params.Code)
	}

	fields := map[string]interface{}{
		"name":           params.Name,
		"description":    params.Description,
		"name_es":        params.NameES,
		"description_es": params.DescriptionES,
		"is_public":      params.IsPublic,
		"license":        l.code,
	}

	if params.Grant != nil {
		fields["grant"] = *params.Grant
	}

	for field, value := range fields {
		if err := item.Set(ctx, field, value); err != nil {
			return nil, err
		}
	}

	items[key] = item

	return item, nil
}

// saveItems persists the license items after the license is written.
func (l *License) saveItems(ctx context.Context) error {
	for _, item := range l.items {
		if err := item.Set(ctx, "license", l.code); err != nil {
			return err
		}

		if err := item.Save(ctx); err != nil {
			return err
		}
	}

	return nil
}

// ListItems lists the items of the license.
func (l *License) ListItems(ctx context.Context, format Format) (*ListResult, error) {
	return l.client.List(ctx, KindLicenseItem, &ListOptions{
		Format:  format,
		Filters: map[string]string{"license": l.code},
	})
}

// ListDatasets lists the datasets covered by the license.
func (l *License) ListDatasets(ctx context.Context, format Format) (*ListResult, error) {
	return l.client.List(ctx, KindDataset, &ListOptions{
		Format:  format,
		Filters: map[string]string{"license": l.code},
	})
}

// ListFeatures lists the features covered by the license.
func (l *License) ListFeatures(ctx context.Context, format Format) (*ListResult, error) {
	return l.client.List(ctx, KindFeature, &ListOptions{
		Format:  format,
		Filters: map[string]string{"license": l.code},
	})
}

// ListPublishers lists the publishers using the license.
func (l *License) ListPublishers(ctx context.Context, format Format) (*ListResult, error) {
	return l.client.List(ctx, KindPublisher, &ListOptions{
		Format:  format,
		Filters: map[string]string{"license": l.code},
	})
}

// LicenseItem is a lazy handle to a single grant or restriction of a
// license.
type LicenseItem struct {
	*Resource
}

func newLicenseItem(client *Client, code string, seed map[string]interface{}) *LicenseItem {
	return &LicenseItem{Resource: newResource(client, KindLicenseItem, code, seed)}
}

// Name returns the item name.
func (i *LicenseItem) Name(ctx context.Context) (string, error) {
	return i.metaString(ctx, "name")
}

// Description returns the item description.
func (i *LicenseItem) Description(ctx context.Context) (string, error) {
	return i.metaString(ctx, "description")
}

// Grant reports whether the item grants a permission rather than imposing
// a restriction.
func (i *LicenseItem) Grant(ctx context.Context) (bool, error) {
	metadata, err := i.Metadata(ctx)
	if err != nil {
		return false, err
	}

	grant, _ := metadata["grant"].(bool)

	return grant, nil
}

// License returns a handle to the owning license, or nil when unset.
func (i *LicenseItem) License(ctx context.Context) (*License, error) {
	code, err := i.refCode(ctx, "license")
	if err != nil || code == "" {
		return nil, err
	}

	return i.client.License(code), nil
}
