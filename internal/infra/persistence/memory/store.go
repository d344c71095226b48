// Package memory provides an in-memory account store used as the default
// storage driver and by end-to-end tests.
package memory

import (
	"context"
	"sync"
	"time"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
)

// Store keeps accounts in maps guarded by a single RWMutex.
type Store struct {
	mu sync.RWMutex

	accounts map[entity.AccountID]*entity.Account
	byEmail  map[string]entity.AccountID

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[entity.AccountID]*entity.Account),
		byEmail:  make(map[string]entity.AccountID),
		now:      time.Now,
	}
}

// NewAccountRepository returns the store as a repository.AccountRepository.
func NewAccountRepository(store *Store) repository.AccountRepository {
	return store
}

// FindByID retrieves a copy of the account with the given ID.
func (s *Store) FindByID(_ context.Context, id entity.AccountID) (*entity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return cloneAccount(account), nil
}

// FindByEmail retrieves a copy of the account registered with email.
func (s *Store) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return cloneAccount(s.accounts[id]), nil
}

// Create stores a new account. The email check and the insert happen under
// the same lock, so two concurrent registrations cannot both succeed.
func (s *Store) Create(_ context.Context, account *entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[account.Email]; exists {
		return domainerrors.ErrDuplicateEmail.WrapMessage("email already exists")
	}

	if account.ID.IsZero() {
		account.ID = entity.NewAccountID()
	}
	if _, exists := s.accounts[account.ID]; exists {
		return domainerrors.ErrAccountCreationFailed.WrapMessage("account id already exists")
	}

	now := s.now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	s.accounts[account.ID] = cloneAccount(account)
	s.byEmail[account.Email] = account.ID

	return nil
}

// UpdateByID applies the non-nil fields of update and returns the stored account.
func (s *Store) UpdateByID(_ context.Context, id entity.AccountID, update entity.AccountUpdate) (*entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	if update.IsEmpty() {
		return cloneAccount(account), nil
	}

	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.PasswordHash != nil {
		account.PasswordHash = *update.PasswordHash
	}
	account.UpdatedAt = s.now().UTC()

	return cloneAccount(account), nil
}

// Len reports how many accounts are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.accounts)
}

func cloneAccount(account *entity.Account) *entity.Account {
	cloned := *account

	return &cloned
}
