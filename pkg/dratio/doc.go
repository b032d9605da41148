// Package dratio provides a typed client for the dratio.io data
// marketplace API.
//
// # Overview
//
// The package exposes the marketplace catalog as a graph of lazy handles
// (Dataset, Feature, Publisher, Version, File, License and the tag kinds).
// Constructing a handle performs no request: metadata is fetched on first
// access and kept for the lifetime of the handle.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/menhir-tech/dratio-go/pkg/dratio"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  client, err := dratio.New(&dratio.Config{APIKey: "your-api-key"})
//	  if err != nil { log.Fatal(err) }
//
//	  dataset := client.Dataset("municipalities")
//	  name, err := dataset.Name(ctx) // first request happens here
//	  if err != nil { log.Fatal(err) }
//	  _ = name
//	}
//
// # Listings
//
// Collections are retrieved with List or the typed helpers, in one of
// three shapes: FormatFlat returns the decoded records as-is, FormatTable
// returns an Arrow record with one column per list field, and FormatTyped
// returns lazy handles that fetch their metadata on first access.
//
// # Downloading data
//
// Dataset.ToTable downloads every file of the current version and
// concatenates them into a single Arrow table. Dataset.ToGeoTable returns
// a table with a geometry column, falling back to a join against a
// referenced geographic dataset when the dataset itself has no geocoded
// files.
//
// # Errors
//
// Failures are represented by typed errors (NotFoundError,
// PermissionDeniedError, ValidationError, NotEditableError) with matching
// helpers such as IsNotFound and IsPermissionDenied.
package dratio
