// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"accounts/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// LoginInput defines the data required for an account to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput carries a partial profile update. A nil field is not
// part of the request. NewPassword is only read when Password is present.
type UpdateProfileInput struct {
	Name        *string `json:"name"`
	Password    *string `json:"password"`
	NewPassword *string `json:"newPassword"`
}

// IsEmpty reports whether the request names no updatable field.
func (in *UpdateProfileInput) IsEmpty() bool {
	return in == nil || (in.Name == nil && in.Password == nil && in.NewPassword == nil)
}

// --- Output DTOs ---

// Profile is the public view of an account. It never carries credentials.
type Profile struct {
	ID    entity.AccountID `json:"id"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
}

// NewProfile projects an account onto its public fields.
func NewProfile(account *entity.Account) *Profile {
	return &Profile{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
	}
}

// RegisterOutput returns the newly created account's profile.
type RegisterOutput struct {
	Profile *Profile
}

// LoginOutput returns the issued access token.
type LoginOutput struct {
	Token     string
	AccountID entity.AccountID
	ExpiresIn time.Duration
}

// AccountUsecase defines the interface for account-related business operations.
// This is the contract that the delivery layer will depend on.
type AccountUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	// GetProfile returns the profile of accountID on behalf of callerID.
	GetProfile(ctx context.Context, accountID, callerID entity.AccountID) (*Profile, error)
	// UpdateProfile applies input to accountID on behalf of callerID.
	UpdateProfile(ctx context.Context, accountID, callerID entity.AccountID, input *UpdateProfileInput) (*Profile, error)
	// Logout has no server-side effect; tokens stay valid until they expire.
	Logout(ctx context.Context) error
}
