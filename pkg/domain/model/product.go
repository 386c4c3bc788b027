package model

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
)

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Inventory   int
}

type ProductRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, product *Product) error
	FindAll(ctx context.Context) ([]Product, error)
	Find(ctx context.Context, id uuid.UUID) (*Product, error)
	// DecreaseInventory removes quantity units only if that many are in stock,
	// otherwise it fails with ErrInsufficientInventory and changes nothing.
	DecreaseInventory(ctx context.Context, id uuid.UUID, quantity int) error
	// RaiseInventory lifts every product below floor up to floor and
	// returns how many products were touched.
	RaiseInventory(ctx context.Context, floor int) (int64, error)
}
