// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"accounts/internal/domain/entity"
)

// ErrAccountNotFound is returned when no account matches the lookup.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines the standard operations for account persistence.
// Implementations must enforce email uniqueness on Create and report a
// violation as domainerrors.ErrDuplicateEmail.
type AccountRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id entity.AccountID) (*entity.Account, error)

	// FindByEmail retrieves a single account by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// Create persists a new account and fills in its ID and timestamps.
	Create(ctx context.Context, account *entity.Account) error

	// UpdateByID applies a partial update and returns the stored account.
	UpdateByID(ctx context.Context, id entity.AccountID, update entity.AccountUpdate) (*entity.Account, error)
}
