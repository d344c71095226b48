package memory

import (
	"context"
	"sync"

	"accounts/internal/domain/repository"
)

// transactionManager serializes units of work against a Store. There is no
// rollback: every unit of work in this service performs at most one write,
// and that write is the last step.
type transactionManager struct {
	mu    sync.Mutex
	store *Store
}

type repositoryFactory struct {
	store *Store
}

func (f *repositoryFactory) AccountRepo() repository.AccountRepository {
	return f.store
}

// NewTransactionManager creates a TransactionManager backed by store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// Execute runs fn while holding the manager's lock.
func (tm *transactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	return fn(&repositoryFactory{store: tm.store})
}
