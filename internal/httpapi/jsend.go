package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/textra/internal/textra"
)

// JSend statuses. "fail" blames the request, "error" blames this service
// or the translation service behind it.
const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// failureDetail describes a translation that produced no text.
type failureDetail struct {
	Kind           string `json:"kind"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func newFailureDetail(kind textra.FailureKind, upstreamStatus int) failureDetail {
	return failureDetail{Kind: kind.String(), UpstreamStatus: upstreamStatus}
}

func respond(c echo.Context, httpStatus int, body envelope) error {
	if body.Status == statusError {
		body.Code = httpStatus
	}
	return c.JSON(httpStatus, body)
}

func success(c echo.Context, data any) error {
	return respond(c, http.StatusOK, envelope{Status: statusSuccess, Data: data})
}

func fail(c echo.Context, httpStatus int, message string, data any) error {
	return respond(c, httpStatus, envelope{Status: statusFail, Message: message, Data: data})
}

func failValidation(c echo.Context, fieldErrors map[string]string) error {
	return fail(c, http.StatusBadRequest, "Request validation failed", map[string]any{
		"validation_errors": fieldErrors,
	})
}

func failNotFound(c echo.Context, message string) error {
	return fail(c, http.StatusNotFound, message, nil)
}

func internalError(c echo.Context, message string) error {
	return upstreamError(c, http.StatusInternalServerError, message, nil)
}

// upstreamError reports a failure outside the caller's control, such as
// the translation service being unreachable.
func upstreamError(c echo.Context, httpStatus int, message string, data any) error {
	return respond(c, httpStatus, envelope{Status: statusError, Message: message, Data: data})
}
