package errs

import (
	"fmt"
	"net/http"
)

// Machine-readable codes for the 500-class failures the service can name.
const (
	CodeStoreError     = "STORE_ERROR"
	CodePredictorError = "PREDICTOR_ERROR"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// This supports extra payload:
//   - code: optional custom code string (if nil, defaults to "BAD_REQUEST")
//   - errors: optional slice of field errors (validation errors)
func NewBadRequestError(message string, override bool, code *string, errors []FieldError) *HTTPError {
	// http.StatusText(400) => "Bad Request" => "BAD_REQUEST"
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))

	// The caller is expected to pass an already formatted code.
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
//
// Supports optional custom code override similar to NewBadRequestError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewMethodNotAllowedError creates a 405 for a method/resource pair that no
// route serves. The message names the resource path that was requested.
func NewMethodNotAllowedError(resource string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusMethodNotAllowed)),
		Message: fmt.Sprintf("method not allowed for resource %s", resource),
		Status:  http.StatusMethodNotAllowed,
	}
}

// NewStoreError wraps a RecordStore failure into a 500.
//
// Unlike NewInternalServerError the underlying message is passed through to
// the client, since it is the only diagnostic a caller gets for a failed write.
func NewStoreError(err error) *HTTPError {
	return &HTTPError{
		Code:    CodeStoreError,
		Message: fmt.Sprintf("internal server error: %s", err.Error()),
		Status:  http.StatusInternalServerError,
		cause:   err,
	}
}

// NewPredictorError wraps an inference failure into a 500.
func NewPredictorError(err error) *HTTPError {
	return &HTTPError{
		Code:    CodePredictorError,
		Message: fmt.Sprintf("prediction failed: %s", err.Error()),
		Status:  http.StatusInternalServerError,
		cause:   err,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// Note:
//   - message is the generic status text, not the real internal error message.
//   - clients don't need stack traces; the real error goes to the logs.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ValidationError converts a generic validation error into a 400 Bad Request HTTPError.
//
// This is a helper so you can do:
//
//	return errs.ValidationError(err)
//
// and clients get consistent error structure.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil)
}
