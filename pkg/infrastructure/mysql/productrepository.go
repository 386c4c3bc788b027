package mysql

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/pkg/domain/model"
)

type sqlxProduct struct {
	ID          uuid.UUID       `db:"product_id"`
	Name        string          `db:"name"`
	Description sql.NullString  `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Inventory   int             `db:"inventory"`
}

func (p sqlxProduct) toModel() model.Product {
	return model.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description.String,
		Price:       p.Price,
		Inventory:   p.Inventory,
	}
}

const selectProduct = `SELECT product_id, name, description, price, inventory FROM product`

type productRepository struct {
	db   sqlx.ExtContext
	lock bool
}

func (r *productRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	const query = `INSERT INTO product (product_id, name, description, price, inventory) VALUES (?, ?, ?, ?, ?)`
	description := sql.NullString{String: product.Description, Valid: product.Description != ""}
	_, err := r.db.ExecContext(ctx, query, product.ID, product.Name, description, product.Price, product.Inventory)
	return errors.Wrap(err, "failed to insert product")
}

func (r *productRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	var rows []sqlxProduct
	if err := sqlx.SelectContext(ctx, r.db, &rows, selectProduct+` ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "failed to select products")
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toModel())
	}
	return products, nil
}

func (r *productRepository) Find(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := selectProduct + ` WHERE product_id = ?`
	if r.lock {
		query += ` FOR UPDATE`
	}

	var row sqlxProduct
	err := sqlx.GetContext(ctx, r.db, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to select product")
	}

	product := row.toModel()
	return &product, nil
}

func (r *productRepository) DecreaseInventory(ctx context.Context, id uuid.UUID, quantity int) error {
	const query = `UPDATE product SET inventory = inventory - ? WHERE product_id = ? AND inventory >= ?`
	result, err := r.db.ExecContext(ctx, query, quantity, id, quantity)
	if err != nil {
		return errors.Wrap(err, "failed to decrease inventory")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return model.ErrInsufficientInventory
	}
	return nil
}

func (r *productRepository) RaiseInventory(ctx context.Context, floor int) (int64, error) {
	const query = `UPDATE product SET inventory = ? WHERE inventory < ?`
	result, err := r.db.ExecContext(ctx, query, floor, floor)
	if err != nil {
		return 0, errors.Wrap(err, "failed to raise inventory")
	}

	affected, err := result.RowsAffected()
	return affected, errors.WithStack(err)
}
