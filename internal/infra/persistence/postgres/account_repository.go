// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/repository"
	"accounts/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// accountRepository implements repository.AccountRepository using GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
// It returns the repository as a repository.AccountRepository interface, adhering to dependency inversion.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// FindByID retrieves a single account by its unique ID.
func (repo *accountRepository) FindByID(ctx context.Context, id entity.AccountID) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id.UUID()).
		First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by id")
	}

	return toAccountDomain(&accountM), nil
}

// FindByEmail retrieves a single account by its email address.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by email")
	}

	return toAccountDomain(&accountM), nil
}

// Create persists a new account. The unique index on email is the final
// guard against concurrent registrations of the same address.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	if account.ID.IsZero() {
		account.ID = entity.NewAccountID()
	}
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrDuplicateEmail.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrAccountCreationFailed.WrapMessage("missing required account information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	account.CreatedAt = accountM.CreatedAt
	account.UpdatedAt = accountM.UpdatedAt

	return nil
}

// UpdateByID applies the non-nil fields of update and returns the stored row.
func (repo *accountRepository) UpdateByID(ctx context.Context, id entity.AccountID, update entity.AccountUpdate) (*entity.Account, error) {
	columns := make(map[string]any, 2)
	if update.Name != nil {
		columns["name"] = *update.Name
	}
	if update.PasswordHash != nil {
		columns["password_hash"] = *update.PasswordHash
	}

	if len(columns) > 0 {
		result := repo.db.WithContext(ctx).
			Model(&model.AccountModel{}).
			Where("id = ?", id.UUID()).
			Updates(columns)
		if result.Error != nil {
			if isNotNullConstraintViolation(result.Error) {
				return nil, domainerrors.ErrAccountUpdateFailed.WrapMessage("missing required account information")
			}

			return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update account")
		}
		if result.RowsAffected == 0 {
			return nil, repository.ErrAccountNotFound
		}
	}

	return repo.FindByID(ctx, id)
}

// --- Mapper Functions ---

// toAccountDomain converts a GORM AccountModel to a domain Account entity.
func toAccountDomain(data *model.AccountModel) *entity.Account {
	if data == nil {
		return nil
	}

	return &entity.Account{
		ID:           entity.AccountID(data.ID),
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromAccountDomain converts a domain Account entity to a GORM AccountModel for persistence.
func fromAccountDomain(data *entity.Account) *model.AccountModel {
	if data == nil {
		return nil
	}

	return &model.AccountModel{
		ID:           data.ID.UUID(),
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
