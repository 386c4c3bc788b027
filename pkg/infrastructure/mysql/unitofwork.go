package mysql

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

// NewRepositoryProvider returns repositories bound to the connection pool,
// each statement runs in its own implicit transaction.
func NewRepositoryProvider(db *sqlx.DB) model.RepositoryProvider {
	return &repositoryProvider{db: db}
}

func NewUnitOfWork(db *sqlx.DB) model.UnitOfWork {
	return &unitOfWork{db: db}
}

type repositoryProvider struct {
	db sqlx.ExtContext
	// lock makes reads take row locks, only set inside a transaction.
	lock bool
}

func (p *repositoryProvider) ProductRepository() model.ProductRepository {
	return &productRepository{db: p.db, lock: p.lock}
}

func (p *repositoryProvider) OrderRepository() model.OrderRepository {
	return &orderRepository{db: p.db, lock: p.lock}
}

type unitOfWork struct {
	db *sqlx.DB
}

func (u *unitOfWork) Execute(ctx context.Context, f func(provider model.RepositoryProvider) error) (err error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.WithError(rollbackErr).Error("failed to rollback transaction")
			}
			return
		}
		err = errors.Wrap(tx.Commit(), "failed to commit transaction")
	}()

	return f(&repositoryProvider{db: tx, lock: true})
}
