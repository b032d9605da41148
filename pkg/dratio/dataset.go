package dratio

import (
	"context"
	"io"
)

// Dataset is a lazy handle to a dataset: a table published in the
// marketplace together with its features, versions and files.
type Dataset struct {
	*Resource

	features []*Feature
	version  *Version
}

func newDataset(client *Client, code string, seed map[string]interface{}) *Dataset {
	dataset := &Dataset{Resource: newResource(client, KindDataset, code, seed)}
	dataset.Resource.checkValue = dataset.checkField
	dataset.Resource.saveRelated = dataset.saveFeatures

	return dataset
}

// checkField validates writes that depend on the dataset's features.
func (d *Dataset) checkField(ctx context.Context, key string, value interface{}) error {
	if key != "timestamp_column" {
		return nil
	}

	columns, err := d.Columns(ctx)
	if err != nil {
		return err
	}

	column, _ := value.(string)
	for _, candidate := range columns {
		if candidate == column {
			return nil
		}
	}

	return &ValidationError{Field: key, Value: value, Allowed: columns}
}

// Name returns the dataset name.
func (d *Dataset) Name(ctx context.Context) (string, error) {
	return d.metaString(ctx, "name")
}

// Description returns the dataset description.
func (d *Dataset) Description(ctx context.Context) (string, error) {
	return d.metaString(ctx, "description")
}

// TimestampColumn returns the name of the column used as timestamp.
func (d *Dataset) TimestampColumn(ctx context.Context) (string, error) {
	return d.metaString(ctx, "timestamp_column")
}

// StartData returns the date of the first observation.
func (d *Dataset) StartData(ctx context.Context) (string, error) {
	return d.metaString(ctx, "start_data")
}

// LastData returns the date of the last observation.
func (d *Dataset) LastData(ctx context.Context) (string, error) {
	return d.metaString(ctx, "last_data")
}

// LastUpdate returns the date of the last dataset update.
func (d *Dataset) LastUpdate(ctx context.Context) (string, error) {
	return d.metaString(ctx, "last_update")
}

// NextUpdate returns the date of the next scheduled update.
func (d *Dataset) NextUpdate(ctx context.Context) (string, error) {
	return d.metaString(ctx, "next_update")
}

// NValues returns the number of values in the dataset.
func (d *Dataset) NValues(ctx context.Context) (int64, error) {
	return d.metaInt(ctx, "n_values")
}

// NVariables returns the number of variables in the dataset.
func (d *Dataset) NVariables(ctx context.Context) (int64, error) {
	return d.metaInt(ctx, "n_variables")
}

// NFeatures returns the number of features in the dataset.
func (d *Dataset) NFeatures(ctx context.Context) (int64, error) {
	return d.metaInt(ctx, "n_features")
}

// NTimeSlices returns the number of time slices in the dataset.
func (d *Dataset) NTimeSlices(ctx context.Context) (int64, error) {
	return d.metaInt(ctx, "n_time_slices")
}

// Granularity returns the human readable granularity of the dataset.
func (d *Dataset) Granularity(ctx context.Context) (string, error) {
	raw, err := d.metaString(ctx, "granularity")
	if err != nil {
		return "", err
	}

	return GranularityTypes[raw], nil
}

// UpdateFrequency returns the human readable update frequency.
func (d *Dataset) UpdateFrequency(ctx context.Context) (string, error) {
	raw, err := d.metaString(ctx, "update_frequency")
	if err != nil {
		return "", err
	}

	return GranularityTypes[raw], nil
}

// Publisher returns a handle to the dataset publisher, or nil when unset.
func (d *Dataset) Publisher(ctx context.Context) (*Publisher, error) {
	code, err := d.refCode(ctx, "publisher")
	if err != nil || code == "" {
		return nil, err
	}

	return d.client.Publisher(code), nil
}

// License returns a handle to the dataset license, or nil when unset.
func (d *Dataset) License(ctx context.Context) (*License, error) {
	code, err := d.refCode(ctx, "license")
	if err != nil || code == "" {
		return nil, err
	}

	return d.client.License(code), nil
}

// Scope returns a handle to the geographical scope tag, or nil when unset.
func (d *Dataset) Scope(ctx context.Context) (*Scope, error) {
	code, err := d.refCode(ctx, "scope")
	if err != nil || code == "" {
		return nil, err
	}

	return d.client.Scope(code), nil
}

// Level returns a handle to the data level tag, or nil when unset.
func (d *Dataset) Level(ctx context.Context) (*DataLevel, error) {
	code, err := d.refCode(ctx, "level")
	if err != nil || code == "" {
		return nil, err
	}

	return d.client.DataLevel(code), nil
}

// Categories returns handles to the category tags of the dataset.
func (d *Dataset) Categories(ctx context.Context) ([]*Category, error) {
	metadata, err := d.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	entries, _ := metadata["categories"].([]interface{})
	categories := make([]*Category, 0, len(entries))

	for _, entry := range entries {
		if code := referenceCode(entry); code != "" {
			categories = append(categories, d.client.Category(code))
		}
	}

	return categories, nil
}

// Features returns the features of the dataset. The listing is retrieved
// once and the returned handles are hydrated from it.
func (d *Dataset) Features(ctx context.Context) ([]*Feature, error) {
	if d.features != nil {
		return d.features, nil
	}

	spec := kindSpecs[KindFeature]

	records, err := d.client.listRecords(ctx, spec.path, map[string]string{"dataset": d.code})
	if err != nil {
		return nil, err
	}

	features := make([]*Feature, 0, len(records))

	for _, record := range records {
		code := referenceCode(record["code"])
		if code == "" {
			continue
		}

		feature := newFeature(d.client, code, record)
		feature.markListed()
		features = append(features, feature)
	}

	d.features = features

	return d.features, nil
}

// Columns returns the column names of the dataset features.
func (d *Dataset) Columns(ctx context.Context) ([]string, error) {
	features, err := d.Features(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(features))

	for _, feature := range features {
		column, err := feature.Column(ctx)
		if err != nil {
			return nil, err
		}

		if column != "" {
			columns = append(columns, column)
		}
	}

	return columns, nil
}

// AddFeature stages a feature as part of the dataset. The feature is
// persisted when the dataset is saved. Features whose code or column is
// already present are skipped with a warning.
func (d *Dataset) AddFeature(ctx context.Context, feature *Feature) error {
	column, err := feature.Column(ctx)
	if err != nil {
		return err
	}

	if column == "" {
		return &ValidationError{Field: "column", Value: column,
			Detail: "the feature must have a column associated with it"}
	}

	if exists, known := d.Exists(); known && exists {
		existing, err := d.Features(ctx)
		if err != nil {
			return err
		}

		for _, present := range existing {
			presentColumn, err := present.Column(ctx)
			if err != nil {
				return err
			}

			if present.Code() == feature.Code() || presentColumn == column {
				d.client.logger.Warn("feature already in dataset, update it instead of adding a new one",
					map[string]interface{}{
						"dataset": d.code,
						"feature": feature.Code(),
						"column":  column,
					})

				return nil
			}
		}
	}

	if err := feature.Set(ctx, "dataset", d.code); err != nil {
		return err
	}

	d.features = append(d.features, feature)

	return nil
}

// saveFeatures persists the staged features after the dataset is written.
func (d *Dataset) saveFeatures(ctx context.Context) error {
	for _, feature := range d.features {
		if err := feature.Save(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Version returns the current version of the dataset, which is the most
// recent entry of the version listing.
func (d *Dataset) Version(ctx context.Context) (*Version, error) {
	if d.version != nil {
		return d.version, nil
	}

	spec := kindSpecs[KindVersion]

	records, err := d.client.listRecords(ctx, spec.path, map[string]string{"dataset": d.code})
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, &NotFoundError{Kind: KindVersion, Code: d.code}
	}

	record := records[len(records)-1]

	code := referenceCode(record["code"])
	version := newVersion(d.client, code, record)
	version.markListed()

	d.version = version

	return d.version, nil
}

// SetVersion pins the dataset to the version matching the given name or
// code and returns it.
func (d *Dataset) SetVersion(ctx context.Context, nameOrCode string) (*Version, error) {
	spec := kindSpecs[KindVersion]

	records, err := d.client.listRecords(ctx, spec.path, map[string]string{"dataset": d.code})
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		name, _ := record["name"].(string)
		code := referenceCode(record["code"])

		if name == nameOrCode || code == nameOrCode {
			version := newVersion(d.client, code, record)
			version.markListed()
			d.version = version

			return version, nil
		}
	}

	return nil, &NotFoundError{Kind: KindVersion, Code: nameOrCode}
}

// ListVersions lists the versions of the dataset.
func (d *Dataset) ListVersions(ctx context.Context, format Format) (*ListResult, error) {
	return d.client.List(ctx, KindVersion, &ListOptions{
		Format:  format,
		Filters: map[string]string{"dataset": d.code},
	})
}

// ListFiles lists the files of the current version, optionally filtered by
// file type.
func (d *Dataset) ListFiles(ctx context.Context, filetype FileType, format Format) (*ListResult, error) {
	version, err := d.Version(ctx)
	if err != nil {
		return nil, err
	}

	return version.ListFiles(ctx, filetype, format)
}

// ListFeatures lists the features of the dataset.
func (d *Dataset) ListFeatures(ctx context.Context, format Format) (*ListResult, error) {
	return d.client.List(ctx, KindFeature, &ListOptions{
		Format:  format,
		Filters: map[string]string{"dataset": d.code},
	})
}

// UploadFile uploads a data file to the current version of the dataset.
// The cached version is discarded so the next access sees the new file.
func (d *Dataset) UploadFile(ctx context.Context, contents io.Reader, filetype FileType, update bool) (*File, error) {
	version, err := d.Version(ctx)
	if err != nil {
		return nil, err
	}

	file, err := version.UploadFile(ctx, contents, filetype, update)
	if err != nil {
		return nil, err
	}

	d.version = nil

	return file, nil
}
