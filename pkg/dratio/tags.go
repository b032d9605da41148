package dratio

import "context"

// Category is a tag describing the nature of the data.
type Category struct {
	*Resource
}

func newCategory(client *Client, code string, seed map[string]interface{}) *Category {
	return &Category{Resource: newResource(client, KindCategory, code, seed)}
}

// Name returns the category name.
func (c *Category) Name(ctx context.Context) (string, error) {
	return c.metaString(ctx, "name")
}

// Description returns the category description.
func (c *Category) Description(ctx context.Context) (string, error) {
	return c.metaString(ctx, "description")
}

// ListDatasets lists the datasets tagged with the category.
func (c *Category) ListDatasets(ctx context.Context, format Format) (*ListResult, error) {
	return c.client.List(ctx, KindDataset, &ListOptions{
		Format:  format,
		Filters: map[string]string{"category": c.code},
	})
}

// ListFeatures lists the features tagged with the category.
func (c *Category) ListFeatures(ctx context.Context, format Format) (*ListResult, error) {
	return c.client.List(ctx, KindFeature, &ListOptions{
		Format:  format,
		Filters: map[string]string{"category": c.code},
	})
}

// Scope is a tag describing the geographical scope of the data.
type Scope struct {
	*Resource
}

func newScope(client *Client, code string, seed map[string]interface{}) *Scope {
	return &Scope{Resource: newResource(client, KindScope, code, seed)}
}

// Name returns the scope name.
func (s *Scope) Name(ctx context.Context) (string, error) {
	return s.metaString(ctx, "name")
}

// Description returns the scope description.
func (s *Scope) Description(ctx context.Context) (string, error) {
	return s.metaString(ctx, "description")
}

// ListDatasets lists the datasets within the scope.
func (s *Scope) ListDatasets(ctx context.Context, format Format) (*ListResult, error) {
	return s.client.List(ctx, KindDataset, &ListOptions{
		Format:  format,
		Filters: map[string]string{"scope": s.code},
	})
}

// Unit is a tag describing the unit of measurement of the data.
type Unit struct {
	*Resource
}

func newUnit(client *Client, code string, seed map[string]interface{}) *Unit {
	return &Unit{Resource: newResource(client, KindUnit, code, seed)}
}

// Name returns the unit name.
func (u *Unit) Name(ctx context.Context) (string, error) {
	return u.metaString(ctx, "name")
}

// Symbol returns the unit symbol.
func (u *Unit) Symbol(ctx context.Context) (string, error) {
	return u.metaString(ctx, "symbol")
}

// PublisherType is a tag describing the kind of organization behind a
// publisher.
type PublisherType struct {
	*Resource
}

func newPublisherType(client *Client, code string, seed map[string]interface{}) *PublisherType {
	return &PublisherType{Resource: newResource(client, KindPublisherType, code, seed)}
}

// Name returns the publisher type name.
func (p *PublisherType) Name(ctx context.Context) (string, error) {
	return p.metaString(ctx, "name")
}

// DataLevel is a tag describing the aggregation level of the data, such as
// municipality or census tract.
type DataLevel struct {
	*Resource
}

func newDataLevel(client *Client, code string, seed map[string]interface{}) *DataLevel {
	return &DataLevel{Resource: newResource(client, KindDataLevel, code, seed)}
}

// Name returns the data level name.
func (d *DataLevel) Name(ctx context.Context) (string, error) {
	return d.metaString(ctx, "name")
}

// Description returns the data level description.
func (d *DataLevel) Description(ctx context.Context) (string, error) {
	return d.metaString(ctx, "description")
}

// ListFeatures lists the features available at the data level.
func (d *DataLevel) ListFeatures(ctx context.Context, format Format) (*ListResult, error) {
	return d.client.List(ctx, KindFeature, &ListOptions{
		Format:  format,
		Filters: map[string]string{"level": d.code},
	})
}
