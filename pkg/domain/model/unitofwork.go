package model

import "context"

type RepositoryProvider interface {
	ProductRepository() ProductRepository
	OrderRepository() OrderRepository
}

// UnitOfWork runs f inside one transaction. It commits when f returns nil
// and rolls back on an error or a panic.
type UnitOfWork interface {
	Execute(ctx context.Context, f func(provider RepositoryProvider) error) error
}
