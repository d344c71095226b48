package context

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"accounts/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newEchoContext() echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestAccountID_EchoAndRequestContext(t *testing.T) {
	c := newEchoContext()

	_, ok := GetAccountID(c)
	assert.False(t, ok)

	id := entity.NewAccountID()
	SetAccountID(c, id)

	got, ok := GetAccountID(c)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	fromCtx, ok := AccountIDFromContext(c.Request().Context())
	assert.True(t, ok)
	assert.Equal(t, id, fromCtx)
}

func TestAccountIDFromContext_IgnoresNilID(t *testing.T) {
	ctx := WithAccountID(context.Background(), entity.NilAccountID)

	_, ok := AccountIDFromContext(ctx)
	assert.False(t, ok)
}

func TestRequestID(t *testing.T) {
	c := newEchoContext()
	assert.NotEmpty(t, GetRequestID(c))

	SetRequestID(c, "req-1")
	assert.Equal(t, "req-1", GetRequestID(c))

	ctx := WithRequestID(context.Background(), "req-2")
	assert.Equal(t, "req-2", GetRequestIDFromContext(ctx))
	assert.Empty(t, GetRequestIDFromContext(context.Background()))
}

func TestGetLoggerOrDefault(t *testing.T) {
	fallback := slog.Default()
	assert.Same(t, fallback, GetLoggerOrDefault(context.Background(), fallback))

	scoped := slog.Default().With(slog.String("request_id", "req-1"))
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, GetLoggerOrDefault(ctx, fallback))
}

func TestGetRequestID_FallsBackToRequestContext(t *testing.T) {
	c := newEchoContext()
	c.SetRequest(c.Request().WithContext(WithRequestID(c.Request().Context(), "req-ctx")))

	assert.Equal(t, "req-ctx", GetRequestID(c))
}

func TestSetAccountID_TagsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	c := newEchoContext()
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	c.SetRequest(c.Request().WithContext(WithLogger(c.Request().Context(), logger)))

	id := entity.NewAccountID()
	SetAccountID(c, id)
	GetLoggerOrDefault(c.Request().Context(), nil).Info("tagged")

	assert.Contains(t, buf.String(), `"account_id":"`+id.String()+`"`)
}
