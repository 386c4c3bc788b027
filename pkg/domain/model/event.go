package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderPlaced struct {
	OrderID     uuid.UUID
	TotalAmount decimal.Decimal
	ItemCount   int
}

func (e OrderPlaced) Type() string { return "OrderPlaced" }
func (e OrderPlaced) Key() string  { return e.OrderID.String() }

type InventoryDecreased struct {
	ProductID    uuid.UUID
	OrderID      uuid.UUID
	Quantity     int
	NewInventory int
}

func (e InventoryDecreased) Type() string { return "InventoryDecreased" }
func (e InventoryDecreased) Key() string  { return e.ProductID.String() }

type PaymentRecorded struct {
	OrderID        uuid.UUID
	PreviousStatus OrderStatus
}

func (e PaymentRecorded) Type() string { return "PaymentRecorded" }
func (e PaymentRecorded) Key() string  { return e.OrderID.String() }

type OrderStatusChanged struct {
	OrderID   uuid.UUID
	OldStatus OrderStatus
	NewStatus OrderStatus
}

func (e OrderStatusChanged) Type() string { return "OrderStatusChanged" }
func (e OrderStatusChanged) Key() string  { return e.OrderID.String() }

type CatalogSeeded struct {
	ProductCount int
	Inventory    int
}

func (e CatalogSeeded) Type() string { return "CatalogSeeded" }

type InventoryRestocked struct {
	Floor            int
	ProductsAffected int64
}

func (e InventoryRestocked) Type() string { return "InventoryRestocked" }
