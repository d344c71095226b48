package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/delivery/http/response"
	domainerrors "accounts/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)

	// Try to parse as AppError
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			logger.Error("Request failed",
				slog.String("code", appErr.ErrorCode()),
				slog.Any("error", err),
				slog.String("path", c.Request().URL.Path),
				slog.String("method", c.Request().Method),
			)
		}
		_ = response.Error(c, appErr.HTTPCode(), appErr.Message())

		return
	}

	// Check if it's Echo's HTTPError. A 5xx wrapping another error (as the
	// access log middleware produces) is reported with the wrapped message.
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Internal == nil || httpErr.Code < http.StatusInternalServerError {
			message, ok := httpErr.Message.(string)
			if !ok {
				message = fmt.Sprint(httpErr.Message)
			}
			_ = response.Error(c, httpErr.Code, message)

			return
		}
		err = httpErr.Internal
	}

	// Anything unanticipated is a 500 carrying the raw failure message.
	logger.Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	message := err.Error()
	if message == "" {
		message = domainerrors.ErrInternalError.Message()
	}
	_ = response.Error(c, http.StatusInternalServerError, message)
}
