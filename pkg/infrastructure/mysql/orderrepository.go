package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/pkg/domain/model"
)

type sqlxOrder struct {
	ID          uuid.UUID       `db:"order_id"`
	CreatedAt   time.Time       `db:"created_at"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Status      string          `db:"status"`
}

type sqlxOrderItem struct {
	ID        uuid.UUID       `db:"order_item_id"`
	OrderID   uuid.UUID       `db:"order_id"`
	ProductID uuid.UUID       `db:"product_id"`
	LineNo    int             `db:"line_no"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

type orderRepository struct {
	db   sqlx.ExtContext
	lock bool
}

func (r *orderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const orderQuery = `INSERT INTO orders (order_id, created_at, total_amount, status) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, orderQuery, order.ID, order.CreatedAt, order.TotalAmount, order.Status.String())
	if err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	if len(order.Items) == 0 {
		return nil
	}

	items := make([]sqlxOrderItem, 0, len(order.Items))
	for i, item := range order.Items {
		items = append(items, sqlxOrderItem{
			ID:        item.ID,
			OrderID:   order.ID,
			ProductID: item.ProductID,
			LineNo:    i,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	const itemQuery = `INSERT INTO order_item (order_item_id, order_id, product_id, line_no, quantity, unit_price)
		VALUES (:order_item_id, :order_id, :product_id, :line_no, :quantity, :unit_price)`
	_, err = sqlx.NamedExecContext(ctx, r.db, itemQuery, items)
	return errors.Wrap(err, "failed to insert order items")
}

func (r *orderRepository) Find(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT order_id, created_at, total_amount, status FROM orders WHERE order_id = ?`
	if r.lock {
		query += ` FOR UPDATE`
	}

	var row sqlxOrder
	err := sqlx.GetContext(ctx, r.db, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to select order")
	}

	var itemRows []sqlxOrderItem
	const itemsQuery = `SELECT order_item_id, order_id, product_id, line_no, quantity, unit_price
		FROM order_item WHERE order_id = ? ORDER BY line_no`
	if err := sqlx.SelectContext(ctx, r.db, &itemRows, itemsQuery, id); err != nil {
		return nil, errors.Wrap(err, "failed to select order items")
	}

	items := make([]model.OrderItem, 0, len(itemRows))
	for _, item := range itemRows {
		items = append(items, model.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return &model.Order{
		ID:          row.ID,
		CreatedAt:   row.CreatedAt.UTC(),
		TotalAmount: row.TotalAmount,
		Status:      model.ParseOrderStatus(row.Status),
		Items:       items,
	}, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	const query = `UPDATE orders SET status = ? WHERE order_id = ?`
	result, err := r.db.ExecContext(ctx, query, status.String(), id)
	if err != nil {
		return errors.Wrap(err, "failed to update order status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}
