package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeAndStatusSurviveWrapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "validation", err: fmt.Errorf("acquire: %w", ErrValidation), code: CodeValidation, status: http.StatusBadRequest},
		{name: "unsupported", err: fmt.Errorf("extract: %w", ErrUnsupportedType), code: CodeUnsupportedType, status: http.StatusUnsupportedMediaType},
		{name: "empty", err: fmt.Errorf("extract: %w", ErrEmptyContent), code: CodeEmptyContent, status: http.StatusUnprocessableEntity},
		{name: "schema", err: fmt.Errorf("generate: %w", ErrSchemaValidation), code: CodeSchemaValidation, status: http.StatusBadGateway},
		{name: "generation", err: fmt.Errorf("generate: %w", ErrGenerationService), code: CodeGenerationService, status: http.StatusServiceUnavailable},
		{name: "persistence keeps cause", err: fmt.Errorf("%w: %w", ErrPersistence, errors.New("unique violation")), code: CodePersistence, status: http.StatusInternalServerError},
		{name: "not found", err: ErrNotFound, code: CodeNotFound, status: http.StatusNotFound},
		{name: "canceled", err: fmt.Errorf("generate: %w", context.Canceled), code: CodeCanceled, status: http.StatusRequestTimeout},
		{name: "unknown", err: errors.New("boom"), code: CodeInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.code {
				t.Fatalf("Code() = %q, want %q", got, tt.code)
			}
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestCodeNil(t *testing.T) {
	if got := Code(nil); got != "" {
		t.Fatalf("expected empty code for nil, got %q", got)
	}
}
