package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/constants"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/domain/service"
	mockRepo "accounts/internal/mocks/repository"
	mockSvc "accounts/internal/mocks/service"
	"accounts/internal/usecase"
	"accounts/internal/validation"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// accountServiceFixtures holds all test dependencies for account service tests.
type accountServiceFixtures struct {
	service        usecase.AccountUsecase
	txManager      *mockRepo.MockTransactionManager
	accountRepo    *mockRepo.MockAccountRepository
	hasher         *mockSvc.MockPasswordHasher
	tokenService   *mockSvc.MockTokenService
	eventPublisher *mockSvc.MockEventPublisher
}

func createTestAccountService(t *testing.T) accountServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	accountRepo := mockRepo.NewMockAccountRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)
	eventPublisher := mockSvc.NewMockEventPublisher(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewAccountService(AccountServiceParams{
		TxManager:      txManager,
		AccountRepo:    accountRepo,
		Hasher:         hasher,
		TokenService:   tokenService,
		EventPublisher: eventPublisher,
		Validate:       validation.New(),
		Logger:         logger,
	})

	return accountServiceFixtures{
		service:        svc,
		txManager:      txManager,
		accountRepo:    accountRepo,
		hasher:         hasher,
		tokenService:   tokenService,
		eventPublisher: eventPublisher,
	}
}

// expectTransaction makes the tx manager run its callback against txRepo.
func (f accountServiceFixtures) expectTransaction(t *testing.T, txRepo repository.AccountRepository) {
	t.Helper()

	f.txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			factory.EXPECT().AccountRepo().Return(txRepo)

			return fn(factory)
		})
}

func strPtr(s string) *string {
	return &s
}

func testAccount() *entity.Account {
	return &entity.Account{
		ID:           entity.NewAccountID(),
		Name:         "Ann",
		Email:        "ann@x.com",
		PasswordHash: "stored_hash",
	}
}

func assertDomainError(t *testing.T, err error, target *domainerrors.BaseError) {
	t.Helper()

	require.Error(t, err)
	assert.Truef(t, errors.Is(err, target), "expected %s, got %v", target.ErrorCode(), err)
}

// --- Register ---

func TestAccountService_Register_Success(t *testing.T) {
	f := createTestAccountService(t)
	ctx := deliverycontext.WithRequestID(context.Background(), "req-1")
	input := &usecase.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "Abcd123!"}

	f.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound)
	f.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	f.accountRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.Account")).
		Run(func(_ context.Context, account *entity.Account) {
			assert.Equal(t, "hashed_password", account.PasswordHash)
			account.ID = entity.NewAccountID()
		}).
		Return(nil)
	f.eventPublisher.EXPECT().
		PublishAccountEvent(mock.Anything, mock.MatchedBy(func(event *service.AccountEvent) bool {
			return event.Type == constants.EventAccountRegistered &&
				event.Email == input.Email &&
				event.RequestID == "req-1" &&
				event.EventID != ""
		})).
		Return(nil)

	output, err := f.service.Register(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output.Profile)
	assert.False(t, output.Profile.ID.IsZero())
	assert.Equal(t, "Ann", output.Profile.Name)
	assert.Equal(t, "ann@x.com", output.Profile.Email)
}

func TestAccountService_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   *usecase.RegisterInput
		message string
	}{
		{
			name:    "nil input",
			input:   nil,
			message: domainerrors.ErrValidationFailed.Message(),
		},
		{
			name:    "blank name",
			input:   &usecase.RegisterInput{Name: "   ", Email: "ann@x.com", Password: "Abcd123!"},
			message: "name is required",
		},
		{
			name:    "missing email",
			input:   &usecase.RegisterInput{Name: "Ann", Password: "Abcd123!"},
			message: "email is required",
		},
		{
			name:    "malformed email",
			input:   &usecase.RegisterInput{Name: "Ann", Email: "ann-at-x", Password: "Abcd123!"},
			message: "email should be a valid email",
		},
		{
			name:    "weak password",
			input:   &usecase.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "short1!"},
			message: "password should be valid password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTestAccountService(t)

			output, err := f.service.Register(context.Background(), tt.input)

			assert.Nil(t, output)
			assertDomainError(t, err, domainerrors.ErrValidationFailed)

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.message, appErr.Message())
		})
	}
}

func TestAccountService_Register_DuplicateEmail(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	input := &usecase.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "Abcd123!"}

	f.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(testAccount(), nil)

	output, err := f.service.Register(ctx, input)

	assert.Nil(t, output)
	assertDomainError(t, err, domainerrors.ErrDuplicateEmail)
}

func TestAccountService_Register_DuplicateEmailOnCreate(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	input := &usecase.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "Abcd123!"}

	f.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound)
	f.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	f.accountRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.Account")).
		Return(domainerrors.ErrDuplicateEmail.WrapMessage("email already exists"))

	_, err := f.service.Register(ctx, input)

	assertDomainError(t, err, domainerrors.ErrDuplicateEmail)
}

func TestAccountService_Register_LookupFailure(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	input := &usecase.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "Abcd123!"}
	dbErr := errors.New("connection refused")

	f.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, dbErr)

	_, err := f.service.Register(ctx, input)

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}

func TestAccountService_Register_PublishFailureIsIgnored(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	input := &usecase.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "Abcd123!"}

	f.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound)
	f.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)
	f.accountRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).Return(nil)
	f.eventPublisher.EXPECT().
		PublishAccountEvent(mock.Anything, mock.AnythingOfType("*service.AccountEvent")).
		Return(errors.New("broker down"))

	output, err := f.service.Register(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", output.Profile.Email)
}

// --- Login ---

func TestAccountService_Login_Success(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	account := testAccount()
	input := &usecase.LoginInput{Email: account.Email, Password: "Abcd123!"}

	f.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(account, nil)
	f.hasher.EXPECT().Check(input.Password, account.PasswordHash).Return(true)
	f.tokenService.EXPECT().Issue(account.ID).Return("signed.jwt.token", nil)
	f.tokenService.EXPECT().TTL().Return(time.Hour)

	output, err := f.service.Login(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", output.Token)
	assert.Equal(t, account.ID, output.AccountID)
	assert.Equal(t, time.Hour, output.ExpiresIn)
}

func TestAccountService_Login_UnknownEmail(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	input := &usecase.LoginInput{Email: "nobody@x.com", Password: "Abcd123!"}

	f.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrAccountNotFound)

	output, err := f.service.Login(ctx, input)

	assert.Nil(t, output)
	assertDomainError(t, err, domainerrors.ErrAccountNotFound)
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	account := testAccount()
	input := &usecase.LoginInput{Email: account.Email, Password: "Wrong123!"}

	f.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(account, nil)
	f.hasher.EXPECT().Check(input.Password, account.PasswordHash).Return(false)

	output, err := f.service.Login(ctx, input)

	assert.Nil(t, output)
	assertDomainError(t, err, domainerrors.ErrUnauthorized)
}

func TestAccountService_Login_Validation(t *testing.T) {
	f := createTestAccountService(t)

	_, err := f.service.Login(context.Background(), &usecase.LoginInput{Email: "ann@x.com"})

	assertDomainError(t, err, domainerrors.ErrValidationFailed)
}

func TestAccountService_Login_TokenFailure(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	account := testAccount()
	input := &usecase.LoginInput{Email: account.Email, Password: "Abcd123!"}

	f.accountRepo.EXPECT().FindByEmail(ctx, input.Email).Return(account, nil)
	f.hasher.EXPECT().Check(input.Password, account.PasswordHash).Return(true)
	f.tokenService.EXPECT().Issue(account.ID).Return("", errors.New("signing failed"))

	_, err := f.service.Login(ctx, input)

	assertDomainError(t, err, domainerrors.ErrTokenIssueFailed)
}

// --- GetProfile ---

func TestAccountService_GetProfile_Success(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	account := testAccount()

	f.accountRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)

	profile, err := f.service.GetProfile(ctx, account.ID, account.ID)

	require.NoError(t, err)
	assert.Equal(t, &usecase.Profile{ID: account.ID, Name: "Ann", Email: "ann@x.com"}, profile)
}

func TestAccountService_GetProfile_Forbidden(t *testing.T) {
	f := createTestAccountService(t)

	profile, err := f.service.GetProfile(context.Background(), entity.NewAccountID(), entity.NewAccountID())

	assert.Nil(t, profile)
	assertDomainError(t, err, domainerrors.ErrForbidden)
}

func TestAccountService_GetProfile_NilCaller(t *testing.T) {
	f := createTestAccountService(t)

	_, err := f.service.GetProfile(context.Background(), entity.NilAccountID, entity.NilAccountID)

	assertDomainError(t, err, domainerrors.ErrForbidden)
}

func TestAccountService_GetProfile_NotFound(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	id := entity.NewAccountID()

	f.accountRepo.EXPECT().FindByID(ctx, id).Return(nil, repository.ErrAccountNotFound)

	_, err := f.service.GetProfile(ctx, id, id)

	assertDomainError(t, err, domainerrors.ErrAccountNotFound)
}

// --- UpdateProfile ---

func TestAccountService_UpdateProfile_Name(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	account := testAccount()
	txRepo := mockRepo.NewMockAccountRepository(t)

	f.expectTransaction(t, txRepo)
	txRepo.EXPECT().
		UpdateByID(ctx, account.ID, entity.AccountUpdate{Name: strPtr("Annie")}).
		Return(&entity.Account{ID: account.ID, Name: "Annie", Email: account.Email}, nil)

	profile, err := f.service.UpdateProfile(ctx, account.ID, account.ID, &usecase.UpdateProfileInput{Name: strPtr("Annie")})

	require.NoError(t, err)
	assert.Equal(t, "Annie", profile.Name)
	assert.Equal(t, account.Email, profile.Email)
}

func TestAccountService_UpdateProfile_Password(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	account := testAccount()
	txRepo := mockRepo.NewMockAccountRepository(t)

	f.expectTransaction(t, txRepo)
	txRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
	f.hasher.EXPECT().Check("Abcd123!", account.PasswordHash).Return(true)
	f.hasher.EXPECT().Hash("Wxyz789$").Return("new_hash", nil)
	txRepo.EXPECT().
		UpdateByID(ctx, account.ID, mock.MatchedBy(func(update entity.AccountUpdate) bool {
			return update.Name == nil && update.PasswordHash != nil && *update.PasswordHash == "new_hash"
		})).
		Return(account, nil)
	f.eventPublisher.EXPECT().
		PublishAccountEvent(mock.Anything, mock.MatchedBy(func(event *service.AccountEvent) bool {
			return event.Type == constants.EventAccountPasswordChanged && event.AccountID == account.ID.String()
		})).
		Return(nil)

	_, err := f.service.UpdateProfile(ctx, account.ID, account.ID, &usecase.UpdateProfileInput{
		Password:    strPtr("Abcd123!"),
		NewPassword: strPtr("Wxyz789$"),
	})

	require.NoError(t, err)
}

func TestAccountService_UpdateProfile_PasswordMismatch(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	account := testAccount()
	txRepo := mockRepo.NewMockAccountRepository(t)

	f.expectTransaction(t, txRepo)
	txRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
	f.hasher.EXPECT().Check("Wrong123!", account.PasswordHash).Return(false)

	_, err := f.service.UpdateProfile(ctx, account.ID, account.ID, &usecase.UpdateProfileInput{
		Password:    strPtr("Wrong123!"),
		NewPassword: strPtr("Wxyz789$"),
	})

	assertDomainError(t, err, domainerrors.ErrPasswordMismatch)
}

func TestAccountService_UpdateProfile_WeakNewPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		matches  bool
		wantErr  *domainerrors.BaseError
	}{
		{name: "current password verified first", password: "Abcd123!", matches: true, wantErr: domainerrors.ErrValidationFailed},
		{name: "wrong current password wins", password: "Wrong123!", matches: false, wantErr: domainerrors.ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTestAccountService(t)
			ctx := context.Background()
			account := testAccount()
			txRepo := mockRepo.NewMockAccountRepository(t)

			f.expectTransaction(t, txRepo)
			txRepo.EXPECT().FindByID(ctx, account.ID).Return(account, nil)
			f.hasher.EXPECT().Check(tt.password, account.PasswordHash).Return(tt.matches)

			_, err := f.service.UpdateProfile(ctx, account.ID, account.ID, &usecase.UpdateProfileInput{
				Password:    strPtr(tt.password),
				NewPassword: strPtr("weak"),
			})

			assertDomainError(t, err, tt.wantErr)
			if tt.matches {
				var appErr domainerrors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, "newPassword should be valid password", appErr.Message())
			}
		})
	}
}

func TestAccountService_UpdateProfile_Forbidden(t *testing.T) {
	f := createTestAccountService(t)

	_, err := f.service.UpdateProfile(context.Background(), entity.NewAccountID(), entity.NewAccountID(),
		&usecase.UpdateProfileInput{Name: strPtr("Mallory")})

	assertDomainError(t, err, domainerrors.ErrForbidden)
}

func TestAccountService_UpdateProfile_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		input   *usecase.UpdateProfileInput
		message string
	}{
		{name: "nil input", input: nil, message: domainerrors.ErrValidationFailed.Message()},
		{name: "no fields", input: &usecase.UpdateProfileInput{}, message: domainerrors.ErrValidationFailed.Message()},
		{name: "blank name", input: &usecase.UpdateProfileInput{Name: strPtr(" ")}, message: "name is required"},
		{name: "blank password", input: &usecase.UpdateProfileInput{Password: strPtr("")}, message: "password is required"},
		{
			name:    "missing new password",
			input:   &usecase.UpdateProfileInput{Password: strPtr("Abcd123!")},
			message: "newPassword is required",
		},
		{
			name:    "new password without current",
			input:   &usecase.UpdateProfileInput{NewPassword: strPtr("Wxyz789$")},
			message: "password is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTestAccountService(t)
			id := entity.NewAccountID()

			_, err := f.service.UpdateProfile(context.Background(), id, id, tt.input)

			assertDomainError(t, err, domainerrors.ErrValidationFailed)

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.message, appErr.Message())
		})
	}
}

func TestAccountService_UpdateProfile_NotFound(t *testing.T) {
	f := createTestAccountService(t)
	ctx := context.Background()
	id := entity.NewAccountID()
	txRepo := mockRepo.NewMockAccountRepository(t)

	f.expectTransaction(t, txRepo)
	txRepo.EXPECT().
		UpdateByID(ctx, id, mock.AnythingOfType("entity.AccountUpdate")).
		Return(nil, repository.ErrAccountNotFound)

	_, err := f.service.UpdateProfile(ctx, id, id, &usecase.UpdateProfileInput{Name: strPtr("Annie")})

	assertDomainError(t, err, domainerrors.ErrAccountNotFound)
}

// --- Logout ---

func TestAccountService_Logout(t *testing.T) {
	f := createTestAccountService(t)

	assert.NoError(t, f.service.Logout(context.Background()))
}
