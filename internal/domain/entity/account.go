// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// AccountID identifies an Account. It is assigned at creation and never reused.
type AccountID uuid.UUID

// NilAccountID is the zero AccountID.
var NilAccountID AccountID

// NewAccountID returns a fresh, time-ordered AccountID.
func NewAccountID() AccountID {
	id, err := uuid.NewV7()
	if err != nil {
		return AccountID(uuid.New())
	}

	return AccountID(id)
}

// ParseAccountID parses the textual form of an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilAccountID, errors.Wrapf(err, "invalid account id %q", s)
	}

	return AccountID(id), nil
}

// UUID returns the underlying UUID.
func (id AccountID) UUID() uuid.UUID {
	return uuid.UUID(id)
}

// String returns the canonical textual form.
func (id AccountID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is unset.
func (id AccountID) IsZero() bool {
	return id == NilAccountID
}

// Owns reports whether the caller identified by id may act on the account
// identified by target. The nil ID owns nothing.
func (id AccountID) Owns(target AccountID) bool {
	return !id.IsZero() && id == target
}

// MarshalText implements encoding.TextMarshaler.
func (id AccountID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *AccountID) UnmarshalText(data []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(data); err != nil {
		return errors.WithStack(err)
	}
	*id = AccountID(u)

	return nil
}

// Account is a registered user of the service.
type Account struct {
	ID           AccountID // Assigned by the persistence layer on Create.
	Name         string    // Display name, never blank.
	Email        string    // Login identifier, unique across accounts.
	PasswordHash string    // bcrypt hash; plaintext is never stored.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountUpdate describes a partial update. Nil fields are left untouched.
type AccountUpdate struct {
	Name         *string
	PasswordHash *string
}

// IsEmpty reports whether the update changes nothing.
func (u AccountUpdate) IsEmpty() bool {
	return u.Name == nil && u.PasswordHash == nil
}
