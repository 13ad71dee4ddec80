package respond

import (
	"github.com/gin-gonic/gin"

	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if isGuest, ok := c.Get("isGuest"); ok {
		fields["is_guest"] = isGuest
	}
	telemetry.Error("http.error", fields)
	c.Set("errorCode", code)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Fault maps a domain error onto the standardized error response. Only the
// error kind is exposed to the client; wrapped causes stay in the logs.
func Fault(c *gin.Context, err error) {
	code := errs.Code(err)
	_ = c.Error(err)
	Error(c, errs.HTTPStatus(err), code, faultMessage(code), nil)
}

func faultMessage(code string) string {
	switch code {
	case errs.CodeValidation:
		return "request is invalid"
	case errs.CodeUnsupportedType:
		return "document type is not supported"
	case errs.CodeEmptyContent:
		return "document has no usable text"
	case errs.CodeSchemaValidation:
		return "generated quiz was malformed"
	case errs.CodeGenerationService:
		return "quiz generation service unavailable"
	case errs.CodePersistence:
		return "failed to save"
	case errs.CodeNotFound:
		return "resource not found"
	case errs.CodeCanceled:
		return "request canceled"
	default:
		return "internal error"
	}
}
