package types

import (
	"errors"
	"net/http"

	appErr "github.com/apex-platform/tf-forge/pkg/errors"
)

// FromAppError converts an error into the API error shape, surfacing any
// metadata (validation messages, rendered configuration) as details.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var ae *appErr.AppError
	if errors.As(err, &ae) {
		out := &APIError{Code: string(ae.Code), Message: ae.Message}
		if len(ae.Meta) > 0 {
			out.Details = ae.Meta
		}
		return out
	}
	return &APIError{Code: string(appErr.CodeUnknown), Message: err.Error()}
}

// HTTPStatus maps an error's code to the response status. Upstream faults
// deliberately collapse to 500 with the error's short message only.
func HTTPStatus(err error) int {
	switch appErr.CodeOf(err) {
	case appErr.CodeInvalid:
		return http.StatusBadRequest
	case appErr.CodeNotFound:
		return http.StatusNotFound
	case appErr.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
