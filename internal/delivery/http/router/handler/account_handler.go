// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/delivery/http/response"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const accountIDParam = "accountId"

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
	Config    *config.Config
	Logger    *slog.Logger
}

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	accountUC usecase.AccountUsecase
	cookie    config.CookieConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewAccountHandler is the constructor for AccountHandler.
func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		accountUC: params.AccountUC,
		cookie:    *params.Config.Cookie,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// LoginResponse is the body returned after a successful login. The token
// itself only travels in the HttpOnly cookie.
type LoginResponse struct {
	AccountID entity.AccountID `json:"accountId"`
	ExpiresIn int64            `json:"expiresIn"` // seconds
}

// Register handles the account registration request.
func (h *AccountHandler) Register(c echo.Context) error {
	var input usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed)
	}
	if input == (usecase.RegisterInput{}) {
		return errors.WithStack(domainerrors.ErrValidationFailed)
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.accountUC.Register(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output.Profile, "User created successfully")
}

// Login handles the login request and sets the access token cookie.
func (h *AccountHandler) Login(c echo.Context) error {
	var input usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed)
	}
	if input == (usecase.LoginInput{}) {
		return errors.WithStack(domainerrors.ErrValidationFailed)
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.accountUC.Login(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(h.accessTokenCookie(output.Token, output.ExpiresIn))

	return response.Success(c, http.StatusOK, LoginResponse{
		AccountID: output.AccountID,
		ExpiresIn: int64(output.ExpiresIn / time.Second),
	}, "Success")
}

// GetProfile returns the profile named in the path, which must belong to the caller.
func (h *AccountHandler) GetProfile(c echo.Context) error {
	accountID, callerID, err := h.resolveIDs(c)
	if err != nil {
		return err
	}

	profile, err := h.accountUC.GetProfile(c.Request().Context(), accountID, callerID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "User Profile")
}

// UpdateProfile applies a partial update to the caller's own profile.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	accountID, callerID, err := h.resolveIDs(c)
	if err != nil {
		return err
	}

	var input usecase.UpdateProfileInput
	if err := c.Bind(&input); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed)
	}

	profile, err := h.accountUC.UpdateProfile(c.Request().Context(), accountID, callerID, &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "UserDetails updated successfully")
}

// Logout clears the access token cookie. Issued tokens stay valid until they expire.
func (h *AccountHandler) Logout(c echo.Context) error {
	if err := h.accountUC.Logout(c.Request().Context()); err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(h.expiredCookie())

	return response.Success(c, http.StatusOK, nil, "User logout successfully")
}

// resolveIDs parses the path account ID and reads the caller bound by the auth gate.
func (h *AccountHandler) resolveIDs(c echo.Context) (entity.AccountID, entity.AccountID, error) {
	callerID, ok := deliverycontext.GetAccountID(c)
	if !ok {
		return entity.NilAccountID, entity.NilAccountID, errors.WithStack(domainerrors.ErrMissingCredential)
	}

	accountID, err := entity.ParseAccountID(c.Param(accountIDParam))
	if err != nil {
		return entity.NilAccountID, entity.NilAccountID,
			errors.WithStack(domainerrors.ErrValidationFailed.WithMessage("accountId must be a valid account id"))
	}

	return accountID, callerID, nil
}

func (h *AccountHandler) accessTokenCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		Expires:  h.now().Add(ttl),
		MaxAge:   int(ttl / time.Second),
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AccountHandler) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
