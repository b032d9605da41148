package dratio

import (
	"errors"
	"fmt"
	"strings"

	internalhttp "github.com/menhir-tech/dratio-go/internal/http"
)

// NotFoundError reports that a resource does not exist in the marketplace
// database, or that a lookup produced no usable result.
type NotFoundError struct {
	Kind   Kind
	Code   string
	Detail string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}

	if e.Code != "" {
		return fmt.Sprintf("%s with code %q not found in the database", e.Kind, e.Code)
	}

	return fmt.Sprintf("%s not found in the database", e.Kind)
}

// PermissionDeniedError reports that the API key lacks access to the
// requested resource or operation.
type PermissionDeniedError struct {
	Detail string
}

// Error implements the error interface.
func (e *PermissionDeniedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("permission denied: %s", e.Detail)
	}

	return "permission denied: your API key does not grant access to this resource"
}

// InvalidRequestError reports that the API rejected the request as malformed.
type InvalidRequestError struct {
	Detail string
}

// Error implements the error interface.
func (e *InvalidRequestError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid request: %s", e.Detail)
	}

	return "invalid request"
}

// ValidationError reports a value rejected by a field validator before any
// request is sent.
type ValidationError struct {
	Field   string
	Value   interface{}
	Allowed []string
	Detail  string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid value for %q: %s", e.Field, e.Detail)
	}

	return fmt.Sprintf("invalid value %v for %q, allowed values: %s",
		e.Value, e.Field, strings.Join(e.Allowed, ", "))
}

// NotEditableError reports an attempt to set a field outside the editable
// set of a resource kind.
type NotEditableError struct {
	Kind     Kind
	Field    string
	Editable []string
}

// Error implements the error interface.
func (e *NotEditableError) Error() string {
	return fmt.Sprintf("field %q of %s is not editable, editable fields: %s",
		e.Field, e.Kind, strings.Join(e.Editable, ", "))
}

// Static errors that can be wrapped with context (err113 compliance).
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIKeyRequired      = errors.New("API key is required")
	ErrUnknownKind         = errors.New("unknown resource kind")
	ErrUnknownFormat       = errors.New("unknown list format")
	ErrUnknownFileType     = errors.New("unknown file type")
	ErrFieldNotFound       = errors.New("field not present in metadata")
	ErrGeospatialDisabled  = errors.New("geospatial support is disabled for this client")
	ErrEmptyTable          = errors.New("table has no rows")
	ErrDownloadURLMissing  = errors.New("download response did not include a URL")
	ErrUploadNotPermitted  = errors.New("file already uploaded, pass update to replace it")
	ErrLicenseItemRequired = errors.New("license item requires a code suffix")
)

// IsNotFound checks if the error reports a missing resource.
func IsNotFound(err error) bool {
	notFound := &NotFoundError{}

	return errors.As(err, &notFound)
}

// IsPermissionDenied checks if the error reports denied access.
func IsPermissionDenied(err error) bool {
	denied := &PermissionDeniedError{}

	return errors.As(err, &denied)
}

// IsInvalidRequest checks if the error reports a malformed request.
func IsInvalidRequest(err error) bool {
	invalid := &InvalidRequestError{}

	return errors.As(err, &invalid)
}

// IsValidation checks if the error reports a rejected field value.
func IsValidation(err error) bool {
	validation := &ValidationError{}

	return errors.As(err, &validation)
}

// IsNotEditable checks if the error reports a write to a read-only field.
func IsNotEditable(err error) bool {
	notEditable := &NotEditableError{}

	return errors.As(err, &notEditable)
}

// StatusCode extracts the HTTP status code from a transport error, if the
// error carries one.
func StatusCode(err error) (int, bool) {
	httpErr := &internalhttp.Error{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}

	return 0, false
}

// classifyError maps transport errors onto the client error taxonomy.
// Other statuses propagate unchanged so callers can inspect them.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	httpErr := &internalhttp.Error{}
	if !errors.As(err, &httpErr) {
		return err
	}

	switch httpErr.StatusCode {
	case 400:
		return &InvalidRequestError{Detail: httpErr.Detail}
	case 401, 403:
		return &PermissionDeniedError{Detail: httpErr.Detail}
	default:
		return err
	}
}
