package repositories

import (
	"context"
)

// UnitOfWork runs repository operations in one transaction. Repositories
// invoked with the context passed to fn share that transaction, so a request
// status change and its side effects commit or roll back together.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
