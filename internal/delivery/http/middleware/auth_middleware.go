package middleware

import (
	"log/slog"
	"net/http"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// AuthMiddleware authenticates requests by the access token cookie.
type AuthMiddleware struct {
	tokenSvc   service.TokenService
	cookieName string
	logger     *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc:   params.TokenService,
		cookieName: params.Config.Cookie.Name,
		logger:     params.Logger,
	}
}

// Authenticate verifies the access token cookie and binds the account it
// names to the request. The next handler only runs on success.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)

		cookie, err := c.Cookie(m.cookieName)
		if errors.Is(err, http.ErrNoCookie) || (err == nil && cookie.Value == "") {
			logger.Debug("Access token cookie missing", slog.String("path", c.Path()))

			return errors.WithStack(domainerrors.ErrMissingCredential)
		}
		if err != nil {
			return errors.WithStack(domainerrors.ErrMissingCredential)
		}

		accountID, err := m.tokenSvc.Verify(cookie.Value)
		if err != nil {
			logger.Warn("Access token rejected", slog.String("path", c.Path()), slog.Any("error", err))

			return domainerrors.ErrInvalidCredential.WrapMessage(err.Error())
		}

		deliverycontext.SetAccountID(c, accountID)

		return next(c)
	}
}
