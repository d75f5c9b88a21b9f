// Package mocks provides in-memory implementations of the store interfaces
// for service and handler tests.
//
// A Memory holds users, boards and tasks behind one mutex and hands out
// store views that behave like the PostgreSQL stores: the same sentinel
// errors, cascade rules, uniqueness checks and ordering. RunInTx snapshots
// the data and restores it if the function fails, and rejects a commit
// that would leave two tasks sharing a column position.
//
// Each store view also carries optional function fields (CreateFn,
// GetByIDFn, ...) that override the in-memory behaviour when set:
//
//	mem := mocks.NewMemory()
//	mem.Users().GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
//	    return nil, errors.New("database down")
//	}
package mocks
