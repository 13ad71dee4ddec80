package errs

import (
	"context"
	"errors"
	"net/http"
)

// Error kinds surfaced by the quiz pipeline. Callers wrap them with %w so
// the kind survives propagation and can be tested with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrUnsupportedType   = errors.New("unsupported media type")
	ErrEmptyContent      = errors.New("empty content")
	ErrGenerationService = errors.New("generation service error")
	ErrSchemaValidation  = errors.New("schema validation error")
	ErrPersistence       = errors.New("persistence error")
	ErrNotFound          = errors.New("not found")
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnsupportedType   = "UNSUPPORTED_TYPE"
	CodeEmptyContent      = "EMPTY_CONTENT"
	CodeGenerationService = "GENERATION_SERVICE_ERROR"
	CodeSchemaValidation  = "SCHEMA_VALIDATION_ERROR"
	CodePersistence       = "PERSISTENCE_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeCanceled          = "CANCELED"
	CodeInternal          = "INTERNAL_ERROR"
)

// Code returns the stable error code for err, INTERNAL_ERROR if no kind matches.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUnsupportedType):
		return CodeUnsupportedType
	case errors.Is(err, ErrEmptyContent):
		return CodeEmptyContent
	case errors.Is(err, ErrSchemaValidation):
		return CodeSchemaValidation
	case errors.Is(err, ErrGenerationService):
		return CodeGenerationService
	case errors.Is(err, ErrPersistence):
		return CodePersistence
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeInternal
	}
}

// HTTPStatus maps an error kind to the status returned at the HTTP boundary.
func HTTPStatus(err error) int {
	switch Code(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnsupportedType:
		return http.StatusUnsupportedMediaType
	case CodeEmptyContent:
		return http.StatusUnprocessableEntity
	case CodeSchemaValidation:
		return http.StatusBadGateway
	case CodeGenerationService:
		return http.StatusServiceUnavailable
	case CodeNotFound:
		return http.StatusNotFound
	case CodeCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
