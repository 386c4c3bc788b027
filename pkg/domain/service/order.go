package service

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/pkg/common/domain"
	"storefront/pkg/domain/model"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, lines []model.OrderLine) (*model.Order, error)
	TrackOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	// RecordPayment always moves the order to Packed, whatever its current
	// status is, including a status further down the flow.
	RecordPayment(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	AdvanceStatus(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
}

func NewOrderService(repo model.OrderRepository, uow model.UnitOfWork, dispatcher domain.EventDispatcher) OrderService {
	return &orderService{repo: repo, uow: uow, dispatcher: dispatcher}
}

type orderService struct {
	repo       model.OrderRepository
	uow        model.UnitOfWork
	dispatcher domain.EventDispatcher
}

func (s *orderService) PlaceOrder(ctx context.Context, lines []model.OrderLine) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, errors.Wrapf(model.ErrInvalidQuantity, "product %s", line.ProductID)
		}
	}

	var (
		order  *model.Order
		events []domain.Event
	)
	err := s.uow.Execute(ctx, func(provider model.RepositoryProvider) error {
		products := provider.ProductRepository()
		orders := provider.OrderRepository()

		// Rows are locked in id order so that concurrent orders over the same
		// products cannot deadlock. Nothing is written until every line fits.
		catalog := make(map[uuid.UUID]*model.Product, len(lines))
		productOrder := lockOrder(lines)
		for _, productID := range productOrder {
			product, err := products.Find(ctx, productID)
			if err != nil {
				return errors.Wrapf(err, "product %s", productID)
			}
			catalog[productID] = product
		}

		demand := make(map[uuid.UUID]int, len(productOrder))
		for _, line := range lines {
			product := catalog[line.ProductID]
			demand[line.ProductID] += line.Quantity
			if demand[line.ProductID] > product.Inventory {
				return errors.Wrapf(model.ErrInsufficientInventory, "not enough inventory for %s", product.Name)
			}
		}

		orderID, err := orders.NextID()
		if err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]model.OrderItem, 0, len(lines))
		for _, line := range lines {
			itemID, err := orders.NextID()
			if err != nil {
				return err
			}
			item := model.OrderItem{
				ID:        itemID,
				OrderID:   orderID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: catalog[line.ProductID].Price,
			}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}

		order = &model.Order{
			ID:          orderID,
			CreatedAt:   time.Now().UTC(),
			TotalAmount: total,
			Status:      model.Pending,
			Items:       items,
		}
		if err := orders.Create(ctx, order); err != nil {
			return err
		}

		events = append(events, model.OrderPlaced{OrderID: orderID, TotalAmount: total, ItemCount: len(items)})
		for _, productID := range productOrder {
			quantity := demand[productID]
			err := products.DecreaseInventory(ctx, productID, quantity)
			if errors.Is(err, model.ErrInsufficientInventory) {
				return errors.Wrapf(err, "not enough inventory for %s", catalog[productID].Name)
			}
			if err != nil {
				return err
			}
			events = append(events, model.InventoryDecreased{
				ProductID:    productID,
				OrderID:      orderID,
				Quantity:     quantity,
				NewInventory: catalog[productID].Inventory - quantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dispatchEvents(s.dispatcher, events...)
	return order, nil
}

// lockOrder returns the distinct product ids of lines sorted by id.
func lockOrder(lines []model.OrderLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids
}

func (s *orderService) TrackOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	return s.repo.Find(ctx, orderID)
}

func (s *orderService) RecordPayment(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	var previous model.OrderStatus
	order, err := s.changeStatus(ctx, orderID, func(o *model.Order) model.OrderStatus {
		previous = o.Status
		return model.Packed
	})
	if err != nil {
		return nil, err
	}

	events := []domain.Event{model.PaymentRecorded{OrderID: orderID, PreviousStatus: previous}}
	if previous != model.Packed {
		events = append(events, model.OrderStatusChanged{OrderID: orderID, OldStatus: previous, NewStatus: model.Packed})
	}
	dispatchEvents(s.dispatcher, events...)
	return order, nil
}

func (s *orderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	var previous model.OrderStatus
	order, err := s.changeStatus(ctx, orderID, func(o *model.Order) model.OrderStatus {
		previous = o.Status
		return o.Status.Next()
	})
	if err != nil {
		return nil, err
	}

	if previous != order.Status {
		dispatchEvents(s.dispatcher, model.OrderStatusChanged{OrderID: orderID, OldStatus: previous, NewStatus: order.Status})
	}
	return order, nil
}

func (s *orderService) changeStatus(ctx context.Context, orderID uuid.UUID, next func(o *model.Order) model.OrderStatus) (*model.Order, error) {
	var order *model.Order
	err := s.uow.Execute(ctx, func(provider model.RepositoryProvider) error {
		orders := provider.OrderRepository()

		var err error
		order, err = orders.Find(ctx, orderID)
		if err != nil {
			return err
		}

		newStatus := next(order)
		if newStatus == order.Status {
			return nil
		}
		order.Status = newStatus
		return orders.UpdateStatus(ctx, orderID, newStatus)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
