package errors

// Transport wraps a remote call failure.
func Transport(endpoint string, cause error) *Error {
	return Wrap(cause, CategoryTransport, "remote request failed").
		WithContext("endpoint", endpoint)
}

// RemoteStatus reports a non-success envelope or HTTP status from the remote service.
func RemoteStatus(endpoint string, code int, message string) *Error {
	if message == "" {
		message = "remote returned an error"
	}
	return New(CategoryTransport, message).
		WithContext("endpoint", endpoint).
		WithContext("code", code)
}

// Storage wraps a local cache failure.
func Storage(operation, kind string, cause error) *Error {
	return Wrap(cause, CategoryStorage, operation+" failed").
		WithContext("kind", kind)
}

// NotFound reports a missing entity.
func NotFound(kind string, id int64) *Error {
	return New(CategoryNotFound, kind+" not found").
		WithContext("kind", kind).
		WithContext("id", id)
}

// Superseded reports that a newer request owns the slot at path.
func Superseded(path string) *Error {
	return New(CategorySuperseded, "request superseded").
		WithContext("slot", path)
}

// Validation reports invalid caller input for field.
func Validation(field, reason string) *Error {
	return New(CategoryValidation, reason).
		WithContext("field", field)
}
