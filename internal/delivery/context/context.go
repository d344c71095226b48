// Package context carries request-scoped values (request id, logger and the
// authenticated account) across echo handlers and the layers below them.
package context

import (
	"context"
	"log/slog"

	"accounts/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey namespaces values stored by this package.
type ContextKey string

const (
	KeyRequestID ContextKey = "request_id"
	KeyLogger    ContextKey = "logger"
	KeyAccountID ContextKey = "account_id"

	// HeaderXRequestID is the HTTP header name for request ID.
	HeaderXRequestID = "X-Request-Id"
)

// GetRequestID returns the request id stored on c, then the one on the
// request context, and generates a fresh UUID when neither is set.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(KeyRequestID)).(string); ok && id != "" {
		return id
	}
	if id := GetRequestIDFromContext(c.Request().Context()); id != "" {
		return id
	}

	return uuid.New().String()
}

// SetRequestID sets the request ID in echo.Context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(KeyRequestID), requestID)
}

// GetRequestIDFromContext returns "" when no request id is set.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)

	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// GetLoggerOrDefault returns the request-scoped logger, or fallback when the
// context has none.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}

// SetAccountID binds the authenticated account to both the echo.Context and
// the request's context.Context, and tags the request logger with it.
func SetAccountID(c echo.Context, accountID entity.AccountID) {
	c.Set(string(KeyAccountID), accountID)

	ctx := WithAccountID(c.Request().Context(), accountID)
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok && logger != nil {
		ctx = WithLogger(ctx, logger.With(slog.String("account_id", accountID.String())))
	}
	c.SetRequest(c.Request().WithContext(ctx))
}

// GetAccountID returns the account bound by the auth gate, if any.
func GetAccountID(c echo.Context) (entity.AccountID, bool) {
	accountID, ok := c.Get(string(KeyAccountID)).(entity.AccountID)
	if !ok || accountID.IsZero() {
		return entity.NilAccountID, false
	}

	return accountID, true
}

func WithAccountID(ctx context.Context, accountID entity.AccountID) context.Context {
	return context.WithValue(ctx, KeyAccountID, accountID)
}

// AccountIDFromContext extracts the authenticated account ID from context.Context.
func AccountIDFromContext(ctx context.Context) (entity.AccountID, bool) {
	accountID, ok := ctx.Value(KeyAccountID).(entity.AccountID)
	if !ok || accountID.IsZero() {
		return entity.NilAccountID, false
	}

	return accountID, true
}
