package dratio

import "context"

// Feature is a lazy handle to a feature: a column of a dataset together
// with its typing and licensing metadata.
type Feature struct {
	*Resource
}

func newFeature(client *Client, code string, seed map[string]interface{}) *Feature {
	return &Feature{Resource: newResource(client, KindFeature, code, seed)}
}

// Name returns the feature name.
func (f *Feature) Name(ctx context.Context) (string, error) {
	return f.metaString(ctx, "name")
}

// Description returns the feature description.
func (f *Feature) Description(ctx context.Context) (string, error) {
	return f.metaString(ctx, "description")
}

// Column returns the column name representing the feature in the dataset.
func (f *Feature) Column(ctx context.Context) (string, error) {
	return f.metaString(ctx, "column")
}

// FeatureType returns the human readable feature type, such as "Category"
// or "Identifier".
func (f *Feature) FeatureType(ctx context.Context) (string, error) {
	raw, err := f.metaString(ctx, "feature_type")
	if err != nil {
		return "", err
	}

	return FeatureTypes[raw], nil
}

// DataType returns the human readable data type, such as "String" or
// "Float".
func (f *Feature) DataType(ctx context.Context) (string, error) {
	raw, err := f.metaString(ctx, "data_type")
	if err != nil {
		return "", err
	}

	return DataTypes[raw], nil
}

// LastUpdate returns the date of the last update of the feature.
func (f *Feature) LastUpdate(ctx context.Context) (string, error) {
	return f.metaString(ctx, "last_update")
}

// NextUpdate returns the date of the next scheduled update.
func (f *Feature) NextUpdate(ctx context.Context) (string, error) {
	return f.metaString(ctx, "next_update")
}

// UpdateFrequency returns the update frequency code of the feature.
func (f *Feature) UpdateFrequency(ctx context.Context) (string, error) {
	return f.metaString(ctx, "update_frequency")
}

// StartData returns the date of the first observation of the feature.
func (f *Feature) StartData(ctx context.Context) (string, error) {
	return f.metaString(ctx, "start_data")
}

// LastData returns the date of the last observation of the feature.
func (f *Feature) LastData(ctx context.Context) (string, error) {
	return f.metaString(ctx, "last_data")
}

// NValues returns the number of distinct values of the feature.
func (f *Feature) NValues(ctx context.Context) (int64, error) {
	return f.metaInt(ctx, "n_values")
}

// Dataset returns a handle to the dataset the feature belongs to, or nil
// when unset.
func (f *Feature) Dataset(ctx context.Context) (*Dataset, error) {
	code, err := f.refCode(ctx, "dataset")
	if err != nil || code == "" {
		return nil, err
	}

	return f.client.Dataset(code), nil
}

// Publisher returns a handle to the feature publisher, or nil when unset.
func (f *Feature) Publisher(ctx context.Context) (*Publisher, error) {
	code, err := f.refCode(ctx, "publisher")
	if err != nil || code == "" {
		return nil, err
	}

	return f.client.Publisher(code), nil
}

// License returns a handle to the feature license. A feature without its
// own license inherits the license of its dataset. Nil when neither is set.
func (f *Feature) License(ctx context.Context) (*License, error) {
	code, err := f.refCode(ctx, "license")
	if err != nil {
		return nil, err
	}

	if code == "" {
		code, err = f.refCode(ctx, "dataset_license")
		if err != nil {
			return nil, err
		}
	}

	if code == "" {
		return nil, nil
	}

	return f.client.License(code), nil
}

// Scope returns a handle to the geographical scope tag, or nil when unset.
func (f *Feature) Scope(ctx context.Context) (*Scope, error) {
	code, err := f.refCode(ctx, "scope")
	if err != nil || code == "" {
		return nil, err
	}

	return f.client.Scope(code), nil
}

// DataLevel returns a handle to the data level tag, or nil when unset.
func (f *Feature) DataLevel(ctx context.Context) (*DataLevel, error) {
	code, err := f.refCode(ctx, "level")
	if err != nil || code == "" {
		return nil, err
	}

	return f.client.DataLevel(code), nil
}

// ReferenceFeature returns the feature this feature references in another
// dataset, or nil when the feature references nothing. A set reference
// makes the feature usable as a join key.
func (f *Feature) ReferenceFeature(ctx context.Context) (*Feature, error) {
	code, err := f.refCode(ctx, "reference_feature")
	if err != nil || code == "" {
		return nil, err
	}

	return f.client.Feature(code), nil
}

// Reference returns the dataset referenced by this feature, or nil when the
// feature references nothing.
func (f *Feature) Reference(ctx context.Context) (*Dataset, error) {
	code, err := f.refCode(ctx, "reference")
	if err != nil || code == "" {
		return nil, err
	}

	return f.client.Dataset(code), nil
}
