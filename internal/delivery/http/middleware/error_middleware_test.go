package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "accounts/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "domain error",
			err:      domainerrors.ErrForbidden.WrapMessage("ownership check failed"),
			wantCode: http.StatusForbidden,
			wantBody: `{"status":false,"message":"You are not authorized"}`,
		},
		{
			name:     "validation error with message",
			err:      errors.WithStack(domainerrors.ErrValidationFailed.WithMessage("name is required")),
			wantCode: http.StatusBadRequest,
			wantBody: `{"status":false,"message":"name is required"}`,
		},
		{
			name:     "missing credential",
			err:      errors.WithStack(domainerrors.ErrMissingCredential),
			wantCode: http.StatusForbidden,
			wantBody: `{"status":false,"message":"Token is missing in cookies"}`,
		},
		{
			name:     "echo http error",
			err:      echo.ErrNotFound,
			wantCode: http.StatusNotFound,
			wantBody: `{"status":false,"message":"Not Found"}`,
		},
		{
			name:     "echo error wrapping domain error",
			err:      echo.NewHTTPError(http.StatusInternalServerError).SetInternal(domainerrors.ErrDuplicateEmail),
			wantCode: http.StatusBadRequest,
			wantBody: `{"status":false,"message":"Email already registered"}`,
		},
		{
			name:     "echo 500 wrapping unexpected error",
			err:      echo.NewHTTPError(http.StatusInternalServerError).SetInternal(errors.New("disk full")),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"status":false,"message":"disk full"}`,
		},
		{
			name:     "unexpected error",
			err:      errors.New("connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"status":false,"message":"connection refused"}`,
		},
		{
			name:     "unexpected error without message",
			err:      errors.New(""),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"status":false,"message":"Internal server error"}`,
		},
	}

	m := NewErrorMiddleware(slog.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			m.HandleHTTPError(tt.err, c)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
