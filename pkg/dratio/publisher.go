package dratio

import "context"

// Publisher is a lazy handle to a data publisher.
type Publisher struct {
	*Resource
}

func newPublisher(client *Client, code string, seed map[string]interface{}) *Publisher {
	return &Publisher{Resource: newResource(client, KindPublisher, code, seed)}
}

// Name returns the publisher name.
func (p *Publisher) Name(ctx context.Context) (string, error) {
	return p.metaString(ctx, "name")
}

// Description returns the publisher description.
func (p *Publisher) Description(ctx context.Context) (string, error) {
	return p.metaString(ctx, "description")
}

// URL returns the publisher website URL.
func (p *Publisher) URL(ctx context.Context) (string, error) {
	return p.metaString(ctx, "url")
}

// LastUpdate returns the date the publisher information was last updated.
func (p *Publisher) LastUpdate(ctx context.Context) (string, error) {
	return p.metaString(ctx, "last_update")
}

// StartData returns the start date of the data provided by the publisher.
func (p *Publisher) StartData(ctx context.Context) (string, error) {
	return p.metaString(ctx, "start_data")
}

// LastData returns the last date of the data provided by the publisher.
func (p *Publisher) LastData(ctx context.Context) (string, error) {
	return p.metaString(ctx, "last_data")
}

// NDatasets returns the number of datasets of the publisher.
func (p *Publisher) NDatasets(ctx context.Context) (int64, error) {
	return p.metaInt(ctx, "n_datasets")
}

// NVariables returns the number of variables of the publisher.
func (p *Publisher) NVariables(ctx context.Context) (int64, error) {
	return p.metaInt(ctx, "n_variables")
}

// NFeatures returns the number of features of the publisher.
func (p *Publisher) NFeatures(ctx context.Context) (int64, error) {
	return p.metaInt(ctx, "n_features")
}

// Scope returns a handle to the geographical scope tag, or nil when unset.
func (p *Publisher) Scope(ctx context.Context) (*Scope, error) {
	code, err := p.refCode(ctx, "scope")
	if err != nil || code == "" {
		return nil, err
	}

	return p.client.Scope(code), nil
}

// License returns a handle to the default license of the publisher, or nil
// when unset.
func (p *Publisher) License(ctx context.Context) (*License, error) {
	code, err := p.refCode(ctx, "license")
	if err != nil || code == "" {
		return nil, err
	}

	return p.client.License(code), nil
}

// PublisherType returns a handle to the publisher type tag, or nil when
// unset.
func (p *Publisher) PublisherType(ctx context.Context) (*PublisherType, error) {
	code, err := p.refCode(ctx, "publisher_type")
	if err != nil || code == "" {
		return nil, err
	}

	return p.client.PublisherType(code), nil
}

// Categories returns handles to the category tags of the publisher.
func (p *Publisher) Categories(ctx context.Context) ([]*Category, error) {
	metadata, err := p.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	entries, _ := metadata["categories"].([]interface{})
	categories := make([]*Category, 0, len(entries))

	for _, entry := range entries {
		if code := referenceCode(entry); code != "" {
			categories = append(categories, p.client.Category(code))
		}
	}

	return categories, nil
}

// ListDatasets lists the datasets of the publisher.
func (p *Publisher) ListDatasets(ctx context.Context, format Format) (*ListResult, error) {
	return p.client.List(ctx, KindDataset, &ListOptions{
		Format:  format,
		Filters: map[string]string{"publisher": p.code},
	})
}

// ListFeatures lists the features of the publisher.
func (p *Publisher) ListFeatures(ctx context.Context, format Format) (*ListResult, error) {
	return p.client.List(ctx, KindFeature, &ListOptions{
		Format:  format,
		Filters: map[string]string{"publisher": p.code},
	})
}
