package dratio

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/menhir-tech/dratio-go/internal/constants"
	"github.com/menhir-tech/dratio-go/internal/tabular"
)

// IngestOptions configures MetadataFromTable.
type IngestOptions struct {
	// Publisher is the code of the publisher of the dataset. Required.
	Publisher string
	// License is the code of the license. When empty the default license
	// of the publisher is used.
	License string
	// TimestampColumn names the column holding observation timestamps.
	// Defaults to "timestamp".
	TimestampColumn string
}

// MetadataFromTable stages dataset and feature metadata inferred from a
// table: one feature per column with inferred typing, a row preview and,
// when a timestamp column is present, the time coverage and granularity.
// The staged metadata is persisted on the next dataset save.
func (c *Client) MetadataFromTable(ctx context.Context, dataset *Dataset, table arrow.Table, opts IngestOptions) error {
	if opts.Publisher == "" {
		return &ValidationError{Field: "publisher", Detail: "a publisher code is required"}
	}

	if table.NumRows() == 0 {
		return fmt.Errorf("profiling dataset %q: %w", dataset.code, ErrEmptyTable)
	}

	timestampColumn := opts.TimestampColumn
	if timestampColumn == "" {
		timestampColumn = "timestamp"
	}

	schema := table.Schema()

	var geometryField *arrow.Field

	for i := range schema.Fields() {
		field := schema.Field(i)

		if field.Name == GeometryColumn {
			geometryField = &field

			continue
		}

		feature, err := c.columnFeature(ctx, dataset, table, i)
		if err != nil {
			return err
		}

		if err := dataset.AddFeature(ctx, feature); err != nil {
			return err
		}
	}

	// The geometry feature goes last so tabular columns keep their order.
	if geometryField != nil {
		feature, err := c.geometryFeature(ctx, dataset)
		if err != nil {
			return err
		}

		if err := dataset.AddFeature(ctx, feature); err != nil {
			return err
		}
	}

	preview := tablePreview(table)
	if err := dataset.Set(ctx, "preview", preview); err != nil {
		return err
	}

	if index, err := tabular.ColumnIndex(table, timestampColumn); err == nil {
		if err := stageTimeMetadata(ctx, dataset, table.Column(index)); err != nil {
			return err
		}
	}

	license := opts.License
	if license == "" {
		publisher := c.Publisher(opts.Publisher)

		defaultLicense, err := publisher.License(ctx)
		if err != nil {
			return err
		}

		if defaultLicense != nil {
			license = defaultLicense.Code()
		}
	}

	for _, feature := range dataset.features {
		if err := feature.Set(ctx, "publisher", opts.Publisher); err != nil {
			return err
		}

		if err := feature.Set(ctx, "license", license); err != nil {
			return err
		}
	}

	return nil
}

// columnFeature stages a feature describing one table column.
func (c *Client) columnFeature(ctx context.Context, dataset *Dataset, table arrow.Table, index int) (*Feature, error) {
	field := table.Schema().Field(index)
	column := table.Column(index)

	subcode := Slugify(field.Name)
	feature := c.Feature(fmt.Sprintf("%s__%s", dataset.Code(), subcode))

	unique := columnIsUnique(column)
	dataType := inferDataType(field.Type)
	featureType := inferFeatureType(dataType, unique)

	fields := map[string]interface{}{
		"name":     titleize(subcode),
		"column":   field.Name,
		"n_values": int64(table.NumRows()),
	}

	if dataType != "" {
		fields["data_type"] = dataType
	}

	if featureType != "" {
		fields["feature_type"] = featureType
	}

	for key, value := range fields {
		if err := feature.Set(ctx, key, value); err != nil {
			return nil, err
		}
	}

	return feature, nil
}

// geometryFeature stages the feature describing the geometry column.
func (c *Client) geometryFeature(ctx context.Context, dataset *Dataset) (*Feature, error) {
	feature := c.Feature(fmt.Sprintf("%s__%s", dataset.Code(), GeometryColumn))

	fields := map[string]interface{}{
		"name":         titleize(GeometryColumn),
		"column":       GeometryColumn,
		"data_type":    "geo",
		"feature_type": "geo",
	}

	for key, value := range fields {
		if err := feature.Set(ctx, key, value); err != nil {
			return nil, err
		}
	}

	return feature, nil
}

// tablePreview extracts the first rows of the table as JSON-shaped records.
// Geometry values are masked and an id column is added when absent.
func tablePreview(table arrow.Table) []map[string]interface{} {
	rows := tabular.Rows(table, constants.PreviewRows)

	_, idErr := tabular.ColumnIndex(table, "id")

	for i, row := range rows {
		if _, ok := row[GeometryColumn]; ok {
			row[GeometryColumn] = "<geometry>"
		}

		if idErr != nil {
			row["id"] = int64(i)
		}
	}

	return rows
}

// stageTimeMetadata stages the time coverage of the dataset from its
// timestamp column.
func stageTimeMetadata(ctx context.Context, dataset *Dataset, column *arrow.Column) error {
	timestamps := columnTimestamps(column)
	if len(timestamps) == 0 {
		return nil
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	unique := timestamps[:1]
	for _, timestamp := range timestamps[1:] {
		if !timestamp.Equal(unique[len(unique)-1]) {
			unique = append(unique, timestamp)
		}
	}

	fields := map[string]interface{}{
		"start_data":    unique[0].Format(time.RFC3339),
		"last_data":     unique[len(unique)-1].Format(time.RFC3339),
		"n_time_slices": int64(len(unique)),
	}

	if len(unique) > 1 {
		fields["granularity"] = inferGranularity(unique)
	}

	for key, value := range fields {
		if err := dataset.Set(ctx, key, value); err != nil {
			return err
		}
	}

	return nil
}

// columnTimestamps collects the parseable timestamps of a column.
func columnTimestamps(column *arrow.Column) []time.Time {
	timestamps := make([]time.Time, 0, column.Len())

	for row := 0; row < column.Len(); row++ {
		value, ok := tabular.CellValue(column, row)
		if !ok {
			continue
		}

		switch v := value.(type) {
		case time.Time:
			timestamps = append(timestamps, v)
		case string:
			if parsed, err := parseTimestamp(v); err == nil {
				timestamps = append(timestamps, parsed)
			}
		}
	}

	return timestamps
}

func parseTimestamp(value string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

	var err error
	for _, layout := range layouts {
		var parsed time.Time
		if parsed, err = time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, err
}

// inferGranularity maps the median spacing between consecutive unique
// timestamps onto a granularity code.
func inferGranularity(unique []time.Time) string {
	diffs := make([]time.Duration, 0, len(unique)-1)
	for i := 1; i < len(unique); i++ {
		diffs = append(diffs, unique[i].Sub(unique[i-1]))
	}

	sort.Slice(diffs, func(i, j int) bool { return diffs[i] < diffs[j] })
	median := diffs[len(diffs)/2]

	seconds := median.Seconds()
	days := median.Hours() / 24

	switch {
	case seconds < 500:
		return "everyminute"
	case seconds < 5000:
		return "hourly"
	case days < 1.1:
		return "daily"
	case days < 2.1:
		return "dailybusiness"
	case days < 10:
		return "weekly"
	case days < 20:
		return "twicemonthly"
	case days < 40:
		return "Monthly"
	case days < 80:
		return "every2months"
	case days < 100:
		return "quarterly"
	case days < 150:
		return "4monthly"
	case days < 200:
		return "semiannual"
	case days < 400:
		return "annual"
	case days < 800:
		return "biennial"
	case days < 1200:
		return "triennial"
	case days < 1600:
		return "quadrennial"
	default:
		return "custom"
	}
}

// columnIsUnique reports whether every non-null value of the column is
// distinct.
func columnIsUnique(column *arrow.Column) bool {
	seen := make(map[string]struct{}, column.Len())

	for row := 0; row < column.Len(); row++ {
		key, ok := tabular.CellKey(column, row)
		if !ok {
			continue
		}

		if _, duplicate := seen[key]; duplicate {
			return false
		}

		seen[key] = struct{}{}
	}

	return true
}

// inferDataType maps an arrow type onto a data type code. Unknown types
// yield an empty code.
func inferDataType(dt arrow.DataType) string {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return "int"
	case arrow.FLOAT32, arrow.FLOAT64:
		return "float"
	case arrow.STRING, arrow.LARGE_STRING:
		return "str"
	case arrow.BOOL:
		return "str"
	case arrow.TIMESTAMP, arrow.DATE64:
		return "datetime"
	case arrow.DATE32:
		return "date"
	default:
		return ""
	}
}

// inferFeatureType maps a data type code and uniqueness onto a feature type
// code. Unique non-string columns are identifiers.
func inferFeatureType(dataType string, unique bool) string {
	switch {
	case dataType == "interval":
		return "inter"
	case dataType == "float":
		return "number"
	case dataType == "str":
		return "cat"
	case unique:
		return "id"
	case dataType == "int":
		return "number"
	default:
		return ""
	}
}

var multiDash = regexp.MustCompile(`-+`)

// Slugify normalizes a column name into a code fragment: lowercase with
// single dashes.
func Slugify(text string) string {
	slug := strings.ToLower(strings.TrimSpace(text))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	return multiDash.ReplaceAllString(slug, "-")
}

// titleize turns a code fragment into a display name.
func titleize(slug string) string {
	name := strings.ReplaceAll(slug, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")

	if name == "" {
		return name
	}

	return strings.ToUpper(name[:1]) + name[1:]
}
