package dratio

// Kind identifies a resource family in the marketplace database. The kind
// determines the API path, the default list columns and the editable fields
// of a resource.
type Kind string

// Resource kinds.
const (
	KindDataset       Kind = "dataset"
	KindFeature       Kind = "feature"
	KindFile          Kind = "file"
	KindVersion       Kind = "version"
	KindPublisher     Kind = "publisher"
	KindLicense       Kind = "license"
	KindLicenseItem   Kind = "license-item"
	KindCategory      Kind = "category"
	KindScope         Kind = "scope"
	KindUnit          Kind = "unit"
	KindPublisherType Kind = "publisher-type"
	KindDataLevel     Kind = "data-level"
)

// Format selects the shape of a listing result.
type Format string

// Listing formats.
const (
	// FormatFlat returns the decoded records as-is, nested objects included.
	FormatFlat Format = "flat"
	// FormatTable returns a tabular record with one column per list field.
	FormatTable Format = "table"
	// FormatTyped returns lazy resource handles for the listed codes.
	FormatTyped Format = "typed"
)

// FileType identifies the storage format of a dataset file.
type FileType string

// File types.
const (
	FileTypeParquet    FileType = "parquet"
	FileTypeGeoParquet FileType = "geoparquet"
	FileTypeCSV        FileType = "csv"
	FileTypeJSON       FileType = "json"
)

// CrossStrategy controls whether a geospatial materialization may fall back
// to joining against a referenced geographic dataset when the dataset has no
// geocoded files of its own.
type CrossStrategy string

// Cross strategies.
const (
	CrossAuto CrossStrategy = "auto"
	CrossNone CrossStrategy = "none"
)

// GranularityTypes maps granularity and update frequency codes to their
// human readable names.
var GranularityTypes = map[string]string{
	"without":       "Without periodicity",
	"custom":        "Custom",
	"quinquennial":  "Quinquennial (Every 5 years)",
	"quadrennial":   "Quadrennial (Every 4 years)",
	"triennial":     "Triennial (every 3 years)",
	"biennial":      "Biennial (every 2 years)",
	"annual":        "Annual",
	"semiannual":    "Semiannual (every 6 months)",
	"4monthly":      "Every four months",
	"quarterly":     "Quarterly (every 3 months)",
	"every2months":  "Every two months",
	"Monthly":       "Monthly",
	"twicemonthly":  "Twice a month",
	"weekly":        "Weekly",
	"daily":         "Daily",
	"dailybusiness": "Daily Business",
	"hourly":        "Every hour",
	"everyminute":   "Every minute",
}

// DataTypes maps feature data type codes to their human readable names.
var DataTypes = map[string]string{
	"str":      "String",
	"int":      "Integer",
	"float":    "Float",
	"text":     "Text",
	"interval": "Interval",
	"date":     "Date",
	"datetime": "Datetime",
	"geo":      "Geometry",
}

// FeatureTypes maps feature type codes to their human readable names.
var FeatureTypes = map[string]string{
	"cat":    "Category",
	"geo":    "Geometry",
	"stat":   "Statistic",
	"inter":  "Interval",
	"id":     "Identifier",
	"number": "Number",
	"perc":   "Percentage",
}

// Logger is the interface for client logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// noopLogger discards all log messages.
type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}

// Handle is the common surface of all lazy resource references.
type Handle interface {
	// Code returns the unique identifier of the resource.
	Code() string
	// Kind returns the resource family the handle belongs to.
	Kind() Kind
}
