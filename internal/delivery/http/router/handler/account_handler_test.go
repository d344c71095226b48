package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/delivery/http/middleware"
	"accounts/internal/delivery/http/validator"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	mockUsecase "accounts/internal/mocks/usecase"
	"accounts/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type handlerFixtures struct {
	echo      *echo.Echo
	accountUC *mockUsecase.MockAccountUsecase
	callerID  entity.AccountID
}

// createTestHandler wires the handler on a bare echo instance. The caller
// identity normally bound by the auth gate is injected directly.
func createTestHandler(t *testing.T) handlerFixtures {
	accountUC := mockUsecase.NewMockAccountUsecase(t)
	cfg := &config.Config{Cookie: &config.CookieConfig{Name: "accessToken"}}
	h := NewAccountHandler(AccountHandlerParams{
		AccountUC: accountUC,
		Config:    cfg,
		Logger:    slog.Default(),
	})
	h.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	callerID := entity.NewAccountID()
	bindCaller := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deliverycontext.SetAccountID(c, callerID)

			return next(c)
		}
	}

	e := echo.New()
	e.Validator = validator.New(nil)
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(slog.Default()).HandleHTTPError
	e.GET("/health", HealthCheck)
	e.POST("/users", h.Register)
	e.POST("/login", h.Login)
	e.GET("/logout", h.Logout)
	e.GET("/:accountId/profile", h.GetProfile, bindCaller)
	e.PUT("/:accountId/update", h.UpdateProfile, bindCaller)

	return handlerFixtures{echo: e, accountUC: accountUC, callerID: callerID}
}

func (f handlerFixtures) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}

	return nil
}

func TestAccountHandler_Register(t *testing.T) {
	f := createTestHandler(t)
	id := entity.NewAccountID()

	f.accountUC.EXPECT().
		Register(mock.Anything, &usecase.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "Abcd123!"}).
		Return(&usecase.RegisterOutput{Profile: &usecase.Profile{ID: id, Name: "Ann", Email: "ann@x.com"}}, nil)

	rec := f.do(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com","password":"Abcd123!"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":true,"message":"User created successfully","data":{"id":"`+id.String()+`","name":"Ann","email":"ann@x.com"}}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAccountHandler_Register_InvalidBodies(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "empty body", body: "", message: domainerrors.ErrValidationFailed.Message()},
		{name: "empty object", body: "{}", message: domainerrors.ErrValidationFailed.Message()},
		{name: "malformed json", body: "{", message: domainerrors.ErrValidationFailed.Message()},
		{name: "missing name", body: `{"email":"ann@x.com","password":"Abcd123!"}`, message: "name is required"},
		{name: "bad email", body: `{"name":"Ann","email":"nope","password":"Abcd123!"}`, message: "email should be a valid email"},
		{name: "weak password", body: `{"name":"Ann","email":"ann@x.com","password":"short1!"}`, message: "password should be valid password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTestHandler(t)

			rec := f.do(http.MethodPost, "/users", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"status":false,"message":"`+tt.message+`"}`, rec.Body.String())
		})
	}
}

func TestAccountHandler_Register_Duplicate(t *testing.T) {
	f := createTestHandler(t)

	f.accountUC.EXPECT().
		Register(mock.Anything, mock.AnythingOfType("*usecase.RegisterInput")).
		Return(nil, domainerrors.ErrDuplicateEmail.WrapMessage("registration rejected"))

	rec := f.do(http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com","password":"Abcd123!"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":false,"message":"Email already registered"}`, rec.Body.String())
}

func TestAccountHandler_Login_SetsCookie(t *testing.T) {
	f := createTestHandler(t)
	id := entity.NewAccountID()

	f.accountUC.EXPECT().
		Login(mock.Anything, &usecase.LoginInput{Email: "ann@x.com", Password: "Abcd123!"}).
		Return(&usecase.LoginOutput{Token: "signed.jwt", AccountID: id, ExpiresIn: time.Hour}, nil)

	rec := f.do(http.MethodPost, "/login", `{"email":"ann@x.com","password":"Abcd123!"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":true,"message":"Success","data":{"accountId":"`+id.String()+`","expiresIn":3600}}`, rec.Body.String())

	cookie := findCookie(rec, "accessToken")
	require.NotNil(t, cookie)
	assert.Equal(t, "signed.jwt", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestAccountHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		message  string
	}{
		{name: "unknown email", err: domainerrors.ErrAccountNotFound, wantCode: http.StatusNotFound, message: "User doesn't exists. Please register first"},
		{name: "wrong password", err: domainerrors.ErrUnauthorized, wantCode: http.StatusUnauthorized, message: "Password not matched"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTestHandler(t)
			f.accountUC.EXPECT().
				Login(mock.Anything, mock.AnythingOfType("*usecase.LoginInput")).
				Return(nil, tt.err)

			rec := f.do(http.MethodPost, "/login", `{"email":"ann@x.com","password":"Abcd123!"}`)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, `{"status":false,"message":"`+tt.message+`"}`, rec.Body.String())
			assert.Nil(t, findCookie(rec, "accessToken"))
		})
	}
}

func TestAccountHandler_GetProfile(t *testing.T) {
	f := createTestHandler(t)
	profile := &usecase.Profile{ID: f.callerID, Name: "Ann", Email: "ann@x.com"}

	f.accountUC.EXPECT().GetProfile(mock.Anything, f.callerID, f.callerID).Return(profile, nil)

	rec := f.do(http.MethodGet, "/"+f.callerID.String()+"/profile", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":true,"message":"User Profile","data":{"id":"`+f.callerID.String()+`","name":"Ann","email":"ann@x.com"}}`, rec.Body.String())
}

func TestAccountHandler_GetProfile_InvalidID(t *testing.T) {
	f := createTestHandler(t)

	rec := f.do(http.MethodGet, "/not-a-uuid/profile", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountHandler_GetProfile_Forbidden(t *testing.T) {
	f := createTestHandler(t)
	other := entity.NewAccountID()

	f.accountUC.EXPECT().GetProfile(mock.Anything, other, f.callerID).Return(nil, domainerrors.ErrForbidden)

	rec := f.do(http.MethodGet, "/"+other.String()+"/profile", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"status":false,"message":"You are not authorized"}`, rec.Body.String())
}

func TestAccountHandler_UpdateProfile(t *testing.T) {
	f := createTestHandler(t)
	name := "Annie"

	f.accountUC.EXPECT().
		UpdateProfile(mock.Anything, f.callerID, f.callerID, &usecase.UpdateProfileInput{Name: &name}).
		Return(&usecase.Profile{ID: f.callerID, Name: "Annie", Email: "ann@x.com"}, nil)

	rec := f.do(http.MethodPut, "/"+f.callerID.String()+"/update", `{"name":"Annie"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "UserDetails updated successfully")
}

func TestAccountHandler_UpdateProfile_PasswordMismatch(t *testing.T) {
	f := createTestHandler(t)

	f.accountUC.EXPECT().
		UpdateProfile(mock.Anything, f.callerID, f.callerID, mock.AnythingOfType("*usecase.UpdateProfileInput")).
		Return(nil, domainerrors.ErrPasswordMismatch.WrapMessage("current password check failed"))

	rec := f.do(http.MethodPut, "/"+f.callerID.String()+"/update", `{"password":"Wrong123!","newPassword":"Wxyz789$"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":false,"message":"Password not matched"}`, rec.Body.String())
}

func TestAccountHandler_Logout_ClearsCookie(t *testing.T) {
	f := createTestHandler(t)
	f.accountUC.EXPECT().Logout(mock.Anything).Return(nil)

	rec := f.do(http.MethodGet, "/logout", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":true,"message":"User logout successfully"}`, rec.Body.String())

	cookie := findCookie(rec, "accessToken")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestHealthCheck(t *testing.T) {
	f := createTestHandler(t)

	rec := f.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
