package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/weiye465/Kindle-Transfer-App/internal"
	"github.com/weiye465/Kindle-Transfer-App/middlewares"
	"github.com/weiye465/Kindle-Transfer-App/pkg/pipeline"
	"github.com/weiye465/Kindle-Transfer-App/pkg/settings"
)

// Client-facing messages.
const (
	msgInternal          = "internal server error"
	msgNotFound          = "not found"
	msgMethodNotAllowed  = "method not allowed"
	msgTooLarge          = "file is too large"
	msgInvalidBody       = "invalid request body"
	msgConversionFailed  = "conversion failed"
	msgSettingsCorrupted = "stored configuration is unreadable"
)

// errorResponse is the body of every failed API request.
type errorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

var messages = []struct {
	err error
	msg string
}{
	{pipeline.ErrNoFile, "no file provided"},
	{pipeline.ErrEmptyFilename, "no file selected"},
	{pipeline.ErrDisallowedExtension, "unsupported file format, supported: " + strings.Join(pipeline.AllowedExtensions(), ", ")},
	{pipeline.ErrSourceNotFound, "file not found"},
	{settings.ErrMissingDestination, "configure the Kindle email first"},
	{settings.ErrMissingSender, "configure the sender email and password first"},
	{settings.ErrInvalidPort, "invalid SMTP port"},
}

// ErrorHandler renders handler errors as JSON.
// Validation and configuration errors are 400, conversion and delivery
// failures are 500 with a generic message; causes are only logged.
func ErrorHandler(c internal.Context, err error) error {
	code, msg := Classify(err)

	attrs := []any{slog.Int("status", code), slog.Any("error", err)}
	if code >= http.StatusInternalServerError {
		c.LogError("request failed", attrs...)
	} else {
		c.LogWarn("request rejected", attrs...)
	}

	return c.JSON(code, errorResponse{
		Success:   false,
		Message:   msg,
		Error:     msg,
		RequestID: middlewares.GetRequestID(c),
	})
}

// NotFound renders unknown routes in the same envelope.
func NotFound(c internal.Context) error {
	return internal.ErrNotFound(msgNotFound)
}

// MethodNotAllowed renders wrong-method requests in the same envelope.
func MethodNotAllowed(c internal.Context) error {
	return internal.NewHTTPError(http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// Classify maps an error to a status code and the message shown to users.
// Causes of 5xx errors never reach the message.
func Classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, msgTooLarge
	case middlewares.IsPanicError(err):
		return http.StatusInternalServerError, msgInternal
	case errors.Is(err, pipeline.ErrDeliveryFailed):
		return http.StatusInternalServerError, pipeline.ErrDeliveryFailed.Error()
	case errors.Is(err, pipeline.ErrConversionFailed):
		return http.StatusInternalServerError, msgConversionFailed
	case errors.Is(err, settings.ErrCorrupt):
		return http.StatusInternalServerError, msgSettingsCorrupted
	case errors.Is(err, internal.ErrEmptyBody):
		return http.StatusBadRequest, msgInvalidBody
	}

	if pipeline.IsValidation(err) {
		for _, m := range messages {
			if errors.Is(err, m.err) {
				return http.StatusBadRequest, m.msg
			}
		}
	}

	if he := internal.AsHTTPError(err); he != nil {
		return he.Code, he.Message
	}
	return http.StatusInternalServerError, msgInternal
}
