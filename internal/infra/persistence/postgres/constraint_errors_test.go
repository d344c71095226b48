package postgres

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueConstraintViolation(t *testing.T) {
	assert.True(t, isUniqueConstraintViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueConstraintViolation(errors.Wrap(gorm.ErrDuplicatedKey, "insert")))
	assert.True(t, isUniqueConstraintViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_accounts_email" (SQLSTATE 23505)`)))
	assert.False(t, isUniqueConstraintViolation(errors.New("connection refused")))
}

func TestIsNotNullConstraintViolation(t *testing.T) {
	assert.True(t, isNotNullConstraintViolation(errors.New(`ERROR: null value in column "name" violates not-null constraint (SQLSTATE 23502)`)))
	assert.False(t, isNotNullConstraintViolation(errors.New("connection refused")))
}

func TestAccountMappers(t *testing.T) {
	assert.Nil(t, toAccountDomain(nil))
	assert.Nil(t, fromAccountDomain(nil))
}
