package dratio

import "fmt"

// kindSpec describes the API binding of a resource kind: where it lives,
// which columns its listings expose and which fields accept writes. A nil
// editable slice means every field accepts writes.
type kindSpec struct {
	path          string
	filterKeyword string
	listFields    []string
	editable      []string
	checkValue    func(key string, value interface{}) error
}

// allowsEdit reports whether key may be written on resources of this kind.
func (s *kindSpec) allowsEdit(key string) bool {
	if s.editable == nil {
		return true
	}

	for _, field := range s.editable {
		if field == key {
			return true
		}
	}

	return false
}

func checkVocabulary(vocabulary map[string]string, key string, value interface{}) error {
	text, ok := value.(string)
	if !ok || text == "" {
		return nil
	}

	if _, ok := vocabulary[text]; !ok {
		return &ValidationError{Field: key, Value: value, Allowed: sortedKeys(vocabulary)}
	}

	return nil
}

func checkDatasetValue(key string, value interface{}) error {
	switch key {
	case "granularity", "update_frequency":
		return checkVocabulary(GranularityTypes, key, value)
	default:
		return nil
	}
}

func checkFeatureValue(key string, value interface{}) error {
	switch key {
	case "feature_type":
		return checkVocabulary(FeatureTypes, key, value)
	case "data_type":
		return checkVocabulary(DataTypes, key, value)
	default:
		return nil
	}
}

var kindSpecs = map[Kind]*kindSpec{
	KindDataset: {
		path:          "dataset/",
		filterKeyword: "dataset",
		listFields: []string{
			"code", "name", "dataset_type", "last_update", "n_values",
			"start_data", "last_data", "granularity", "scope_code",
			"scope_name", "level_code", "level_name", "publisher_code",
			"publisher_name", "categories",
		},
		editable: []string{
			"code", "name", "name_es", "is_public", "description",
			"description_es", "order", "last_update", "preview",
			"timestamp_column", "start_data", "last_data", "n_time_slices",
			"n_values", "n_variables", "n_features", "next_update",
			"update_frequency", "granularity", "categories", "level",
			"license", "scope", "publisher", "related_datasets",
			"dataset_documentation",
		},
		checkValue: checkDatasetValue,
	},
	KindFeature: {
		path:          "feature/",
		filterKeyword: "feature",
		listFields: []string{
			"code", "name", "column", "dataset_code", "dataset_name",
			"publisher_code", "publisher_name", "n_values", "granularity",
			"last_update", "start_data", "last_data", "scope_code",
			"scope_name", "level_code", "level_name", "categories",
		},
		editable: []string{
			"code", "name", "column", "description", "publisher", "dataset",
			"n_values", "feature_type", "data_type", "license", "name_es",
			"description_es", "reference_feature",
		},
		checkValue: checkFeatureValue,
	},
	KindFile: {
		path:          "file/",
		filterKeyword: "file",
		listFields:    []string{"code", "filetype", "size", "start_time", "end_time", "updated_at"},
	},
	KindVersion: {
		path:          "version/",
		filterKeyword: "version",
		listFields:    []string{"code", "name", "dataset", "updated_at"},
	},
	KindPublisher: {
		path:          "publisher/",
		filterKeyword: "publisher",
		listFields: []string{
			"code", "name", "url", "last_update", "n_datasets",
			"n_variables", "n_features", "start_data", "last_data",
			"scope_code", "scope_name", "publisher_type_code",
			"publisher_type_name", "categories",
		},
		editable: []string{
			"code", "name", "is_public", "scope", "license", "order",
			"last_update", "description", "categories", "url",
			"publisher_type", "name_es", "description_es",
		},
	},
	KindLicense: {
		path:          "license/",
		filterKeyword: "license",
		listFields:    []string{"code", "name", "url"},
		editable: []string{
			"code", "name", "url", "description", "name_es",
			"description_es", "is_public",
		},
	},
	KindLicenseItem: {
		path:          "license-item/",
		filterKeyword: "license_item",
		listFields:    []string{"code", "name", "license", "grant"},
		editable: []string{
			"code", "name", "description", "grant", "name_es",
			"description_es", "is_public", "license", "order",
		},
	},
	KindCategory: {
		path:          "category/",
		filterKeyword: "category",
		listFields:    []string{"code", "name"},
		editable: []string{
			"code", "name", "description", "icon", "name_es",
			"description_es", "is_public",
		},
	},
	KindScope: {
		path:          "scope/",
		filterKeyword: "scope",
		listFields:    []string{"code", "name"},
		editable: []string{
			"code", "name", "description", "icon", "name_es",
			"description_es", "is_public",
		},
	},
	KindUnit: {
		path:          "unit/",
		filterKeyword: "unit",
		listFields:    []string{"code", "name", "symbol"},
		editable:      []string{"code", "name", "symbol", "name_es", "is_public"},
	},
	KindPublisherType: {
		path:          "publisher-type/",
		filterKeyword: "publisher_type",
		listFields:    []string{"code", "name"},
		editable:      []string{"code", "name", "icon", "name_es", "is_public"},
	},
	KindDataLevel: {
		path:          "data-level/",
		filterKeyword: "level",
		listFields:    []string{"code", "name"},
		editable: []string{
			"code", "name", "description", "icon", "name_es",
			"description_es", "is_public",
		},
	},
}

// ListFields returns the default listing columns of a kind.
func ListFields(kind Kind) []string {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil
	}

	fields := make([]string, len(spec.listFields))
	copy(fields, spec.listFields)

	return fields
}

// specFor resolves the binding for a kind.
func specFor(kind Kind) (*kindSpec, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return spec, nil
}

// Resolve returns a typed handle for the given kind and code without
// performing any request. An empty code yields a nil handle.
func (c *Client) Resolve(kind Kind, code string) (Handle, error) {
	if code == "" {
		return nil, nil
	}

	switch kind {
	case KindDataset:
		return c.Dataset(code), nil
	case KindFeature:
		return c.Feature(code), nil
	case KindFile:
		return c.File(code), nil
	case KindVersion:
		return c.Version(code), nil
	case KindPublisher:
		return c.Publisher(code), nil
	case KindLicense:
		return c.License(code), nil
	case KindLicenseItem:
		return c.LicenseItem(code), nil
	case KindCategory:
		return c.Category(code), nil
	case KindScope:
		return c.Scope(code), nil
	case KindUnit:
		return c.Unit(code), nil
	case KindPublisherType:
		return c.PublisherType(code), nil
	case KindDataLevel:
		return c.DataLevel(code), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
