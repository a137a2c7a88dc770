package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the JSON body of every failed API request.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ParamError describes one rejected query parameter.
type ParamError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s=%q: %s", e.Field, e.Value, e.Message)
}

func errChartNotFound(chart string) *APIError {
	return &APIError{
		StatusCode: http.StatusNotFound,
		ErrorCode:  "CHART_NOT_FOUND",
		Message:    fmt.Sprintf("chart %q not found", chart),
		Details:    chart,
	}
}

func errInvalidParameter(pe *ParamError) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		ErrorCode:  "INVALID_PARAMETER",
		Message:    "Invalid parameter value",
		Details:    pe,
	}
}

func errUnsupportedFormat(chart, format string) *APIError {
	return &APIError{
		StatusCode: http.StatusNotAcceptable,
		ErrorCode:  "UNSUPPORTED_FORMAT",
		Message:    fmt.Sprintf("chart %q cannot be served as %s", chart, format),
		Details:    format,
	}
}

func errInternal(err error) *APIError {
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		Details:    err.Error(),
	}
}
