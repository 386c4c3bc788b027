package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyOrder      = errors.New("no items provided")
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
)

type Order struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	TotalAmount decimal.Decimal
	Status      OrderStatus
	Items       []OrderItem
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderLine is a requested product/quantity pair before it becomes an OrderItem.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type OrderRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, order *Order) error
	Find(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}
