// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/constants"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/lifecycle"
	"accounts/internal/domain/repository"
	"accounts/internal/domain/service"
	"accounts/internal/usecase"
	"accounts/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager      repository.TransactionManager
	accountRepo    repository.AccountRepository
	hasher         service.PasswordHasher
	tokenService   service.TokenService
	eventPublisher service.EventPublisher
	validate       *validator.Validate
	logger         *slog.Logger
	now            func() time.Time
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	AccountRepo    repository.AccountRepository
	Hasher         service.PasswordHasher
	TokenService   service.TokenService
	EventPublisher service.EventPublisher
	Validate       *validator.Validate
	Logger         *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	validate := params.Validate
	if validate == nil {
		validate = validation.New()
	}

	return &accountService{
		txManager:      params.TxManager,
		accountRepo:    params.AccountRepo,
		hasher:         params.Hasher,
		tokenService:   params.TokenService,
		eventPublisher: params.EventPublisher,
		validate:       validate,
		logger:         params.Logger,
		now:            time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register validates the input, rejects a known email and stores the hashed credentials.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	if input == nil {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed)
	}
	if err := srv.validateInput(input); err != nil {
		srv.log(ctx).Warn("Registration rejected", slog.String("email", input.Email), slog.String("reason", err.Error()))

		return nil, err
	}
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	_, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		srv.log(ctx).Warn("Email already registered", slog.String("email", input.Email))

		return nil, domainerrors.ErrDuplicateEmail.WrapMessage("registration rejected")
	case !errors.Is(err, repository.ErrAccountNotFound):
		return nil, errors.Wrap(err, "failed to look up email during registration")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	account := &entity.Account{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}
	// Create enforces email uniqueness again for registrations racing past the lookup.
	if err := srv.accountRepo.Create(ctx, account); err != nil {
		srv.log(ctx).Warn("Failed to create account", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create account during registration")
	}

	srv.publish(ctx, constants.EventAccountRegistered, account)
	srv.log(ctx).Debug("Registration completed", slog.Any("accountID", account.ID))

	return &usecase.RegisterOutput{Profile: usecase.NewProfile(account)}, nil
}

// Login checks the credentials and issues an access token.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if input == nil {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed)
	}
	if err := srv.validateInput(input); err != nil {
		return nil, err
	}
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	account, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

			return nil, domainerrors.ErrAccountNotFound.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to load account for login")
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrUnauthorized))

		return nil, domainerrors.ErrUnauthorized.WrapMessage("login failed")
	}

	token, err := srv.tokenService.Issue(account.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Any("accountID", account.ID), slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed.WrapMessage(err.Error())
	}
	srv.log(ctx).Debug("Account logged in successfully", slog.Any("accountID", account.ID))

	return &usecase.LoginOutput{
		Token:     token,
		AccountID: account.ID,
		ExpiresIn: srv.tokenService.TTL(),
	}, nil
}

// GetProfile returns the caller's own profile.
func (srv *accountService) GetProfile(ctx context.Context, accountID, callerID entity.AccountID) (*usecase.Profile, error) {
	if err := srv.authorize(ctx, accountID, callerID); err != nil {
		return nil, err
	}

	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound.WrapMessage("profile lookup failed")
		}

		return nil, errors.Wrap(err, "failed to load profile")
	}

	return usecase.NewProfile(account), nil
}

// UpdateProfile changes the caller's name and/or password. The current
// password is re-checked before a new one is stored.
func (srv *accountService) UpdateProfile(
	ctx context.Context,
	accountID, callerID entity.AccountID,
	input *usecase.UpdateProfileInput,
) (*usecase.Profile, error) {
	if err := srv.authorize(ctx, accountID, callerID); err != nil {
		return nil, err
	}
	if err := checkUpdateInput(input); err != nil {
		srv.log(ctx).Warn("Profile update rejected", slog.Any("accountID", accountID), slog.String("reason", err.Error()))

		return nil, err
	}

	var updated *entity.Account
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		update, err := srv.buildUpdate(ctx, accountRepo, accountID, input)
		if err != nil {
			return err
		}

		updated, err = accountRepo.UpdateByID(ctx, accountID, update)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound.WrapMessage("profile update failed")
			}

			return errors.Wrap(err, "failed to update account")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to update profile", slog.Any("accountID", accountID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute profile update transaction")
	}

	if input.Password != nil {
		srv.publish(ctx, constants.EventAccountPasswordChanged, updated)
	}
	srv.log(ctx).Debug("Profile updated", slog.Any("accountID", accountID))

	return usecase.NewProfile(updated), nil
}

// buildUpdate turns the request into an AccountUpdate. A new password is only
// checked against the policy once the current one has been verified.
func (srv *accountService) buildUpdate(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	accountID entity.AccountID,
	input *usecase.UpdateProfileInput,
) (entity.AccountUpdate, error) {
	var update entity.AccountUpdate
	if input.Name != nil {
		update.Name = input.Name
	}
	if input.Password == nil {
		return update, nil
	}

	account, err := accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return update, domainerrors.ErrAccountNotFound.WrapMessage("profile update failed")
		}

		return update, errors.Wrap(err, "failed to load account for password change")
	}

	if !srv.hasher.Check(*input.Password, account.PasswordHash) {
		return update, domainerrors.ErrPasswordMismatch.WrapMessage("current password check failed")
	}
	if !validation.ValidPassword(*input.NewPassword) {
		return update, errors.WithStack(domainerrors.ErrValidationFailed.WithMessage("newPassword should be valid password"))
	}

	hashedPassword, err := srv.hasher.Hash(*input.NewPassword)
	if err != nil {
		return update, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}
	update.PasswordHash = &hashedPassword

	return update, nil
}

// Logout is stateless: the transport clears the cookie and the token stays
// valid until it expires.
func (srv *accountService) Logout(ctx context.Context) error {
	srv.log(ctx).Debug("Logout requested")

	return nil
}

func (srv *accountService) authorize(ctx context.Context, accountID, callerID entity.AccountID) error {
	if callerID.Owns(accountID) {
		return nil
	}

	srv.log(ctx).Warn("Caller does not own account", slog.Any("accountID", accountID), slog.Any("callerID", callerID))

	return domainerrors.ErrForbidden.WrapMessage("ownership check failed")
}

func (srv *accountService) validateInput(input any) error {
	if err := srv.validate.Struct(input); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithMessage(validation.Message(err)))
	}

	return nil
}

// checkUpdateInput mirrors the field rules of registration for a partial update.
func checkUpdateInput(input *usecase.UpdateProfileInput) error {
	invalid := func(message string) error {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithMessage(message))
	}

	if input.IsEmpty() {
		return errors.WithStack(domainerrors.ErrValidationFailed)
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return invalid("name is required")
	}
	if input.Password == nil {
		if input.NewPassword != nil {
			return invalid("password is required")
		}

		return nil
	}
	if strings.TrimSpace(*input.Password) == "" {
		return invalid("password is required")
	}
	if input.NewPassword == nil || strings.TrimSpace(*input.NewPassword) == "" {
		return invalid("newPassword is required")
	}

	return nil
}

// publish emits an account event. Failures are logged and never fail the caller.
func (srv *accountService) publish(ctx context.Context, eventType string, account *entity.Account) {
	if srv.eventPublisher == nil {
		return
	}

	event := &service.AccountEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		EventID:    uuid.NewString(),
		Type:       eventType,
		AccountID:  account.ID.String(),
		Email:      account.Email,
		OccurredAt: srv.now().UTC(),
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lifecycle.DefaultTimeout)
	defer cancel()

	if err := srv.eventPublisher.PublishAccountEvent(publishCtx, event); err != nil {
		srv.log(ctx).Error("Failed to publish account event",
			slog.String("event_type", eventType),
			slog.Any("accountID", account.ID),
			slog.Any("error", err),
		)
	}
}
