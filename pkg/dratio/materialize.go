package dratio

import (
	"context"

	"github.com/apache/arrow/go/v17/arrow"

	"github.com/menhir-tech/dratio-go/internal/tabular"
)

// GeometryColumn is the conventional name of the geometry column in
// geocoded datasets.
const GeometryColumn = "geometry"

// GeoTable is a table carrying a geometry column.
type GeoTable struct {
	arrow.Table

	// Geometry is the name of the geometry column.
	Geometry string
}

func newGeoTable(table arrow.Table) (*GeoTable, error) {
	if _, err := tabular.ColumnIndex(table, GeometryColumn); err != nil {
		return nil, &NotFoundError{Detail: "table has no geometry column"}
	}

	return &GeoTable{Table: table, Geometry: GeometryColumn}, nil
}

// ToTable downloads the dataset as a single in-memory table. All parquet
// files of the current version are downloaded and concatenated.
func (d *Dataset) ToTable(ctx context.Context) (arrow.Table, error) {
	version, err := d.Version(ctx)
	if err != nil {
		return nil, err
	}

	files, err := version.Files(ctx, FileTypeParquet)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, &NotFoundError{Detail: "there are no files available for this dataset, " +
			"use ListFiles to see the available files for this version"}
	}

	tables := make([]arrow.Table, 0, len(files))

	for _, file := range files {
		table, err := file.ToTable(ctx)
		if err != nil {
			return nil, err
		}

		tables = append(tables, table)
	}

	return tabular.Concat(tables)
}

// hasGeometries reports whether the current version carries geocoded files.
func (d *Dataset) hasGeometries(ctx context.Context) (bool, error) {
	version, err := d.Version(ctx)
	if err != nil {
		return false, err
	}

	files, err := version.Files(ctx, FileTypeGeoParquet)
	if err != nil {
		return false, err
	}

	return len(files) > 0, nil
}

// availableCrosses returns the features that reference a feature of another
// dataset, optionally restricted to references whose dataset is geocoded.
func (d *Dataset) availableCrosses(ctx context.Context, geometries bool) ([]*Feature, error) {
	features, err := d.Features(ctx)
	if err != nil {
		return nil, err
	}

	var crosses []*Feature

	for _, feature := range features {
		reference, err := feature.ReferenceFeature(ctx)
		if err != nil {
			return nil, err
		}

		if reference == nil {
			continue
		}

		if geometries {
			referenced, err := feature.Reference(ctx)
			if err != nil {
				return nil, err
			}

			if referenced == nil {
				continue
			}

			geocoded, err := referenced.hasGeometries(ctx)
			if err != nil {
				return nil, err
			}

			if !geocoded {
				continue
			}
		}

		crosses = append(crosses, feature)
	}

	return crosses, nil
}

// selectCross picks the cross whose referenced dataset has the highest
// cardinality, which is the finest available geographic level. Ties keep
// the first candidate.
func selectCross(ctx context.Context, crosses []*Feature) (*Feature, error) {
	if len(crosses) == 0 {
		return nil, nil
	}

	if len(crosses) == 1 {
		return crosses[0], nil
	}

	selected := crosses[0]

	var best int64 = -1

	for _, cross := range crosses {
		referenced, err := cross.Reference(ctx)
		if err != nil {
			return nil, err
		}

		var cardinality int64
		if referenced != nil {
			cardinality, err = referenced.NValues(ctx)
			if err != nil {
				return nil, err
			}
		}

		if cardinality > best {
			best = cardinality
			selected = cross
		}
	}

	return selected, nil
}

// ToGeoTable downloads the dataset as a table with a geometry column. When
// the dataset has no geocoded files and the strategy allows it, the data is
// joined against the geometries of a referenced geographic dataset.
func (d *Dataset) ToGeoTable(ctx context.Context, strategy CrossStrategy) (*GeoTable, error) {
	if d.client.geoDisabled {
		return nil, ErrGeospatialDisabled
	}

	version, err := d.Version(ctx)
	if err != nil {
		return nil, err
	}

	files, err := version.Files(ctx, FileTypeGeoParquet)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return d.crossGeoTable(ctx, strategy)
	}

	tables := make([]arrow.Table, 0, len(files))

	for _, file := range files {
		geo, err := file.ToGeoTable(ctx)
		if err != nil {
			return nil, err
		}

		tables = append(tables, geo.Table)
	}

	table, err := tabular.Concat(tables)
	if err != nil {
		return nil, err
	}

	return newGeoTable(table)
}

// crossGeoTable builds a geocoded table by joining the dataset against the
// geometries of a referenced dataset. The referenced side is materialized
// with the cross disabled to avoid recursion.
func (d *Dataset) crossGeoTable(ctx context.Context, strategy CrossStrategy) (*GeoTable, error) {
	notGeocoded := &NotFoundError{Detail: "there are no files with geometries for this dataset, " +
		"has this dataset been geocoded? Use ListFiles to see the available files for this version"}

	if strategy != CrossAuto {
		return nil, notGeocoded
	}

	crosses, err := d.availableCrosses(ctx, true)
	if err != nil {
		return nil, err
	}

	if len(crosses) == 0 {
		return nil, notGeocoded
	}

	cross, err := selectCross(ctx, crosses)
	if err != nil {
		return nil, err
	}

	selfColumn, err := cross.Column(ctx)
	if err != nil {
		return nil, err
	}

	referenceFeature, err := cross.ReferenceFeature(ctx)
	if err != nil {
		return nil, err
	}

	otherColumn, err := referenceFeature.Column(ctx)
	if err != nil {
		return nil, err
	}

	table, err := d.ToTable(ctx)
	if err != nil {
		return nil, err
	}

	referenced, err := cross.Reference(ctx)
	if err != nil {
		return nil, err
	}

	geo, err := referenced.ToGeoTable(ctx, CrossNone)
	if err != nil {
		return nil, err
	}

	joined, err := tabular.LeftJoin(table, geo.Table, selfColumn, otherColumn,
		[]string{otherColumn, geo.Geometry})
	if err != nil {
		return nil, err
	}

	return newGeoTable(joined)
}
