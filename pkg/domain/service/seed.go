package service

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/common/domain"
	"storefront/pkg/domain/model"
)

const DefaultInventoryFloor = 50

type StarterProduct struct {
	Name  string
	Price decimal.Decimal
}

var StarterCatalog = []StarterProduct{
	{Name: "Laptop", Price: decimal.NewFromInt(60000)},
	{Name: "Smartphone", Price: decimal.NewFromInt(15000)},
	{Name: "Headphones", Price: decimal.NewFromInt(2000)},
	{Name: "Keyboard", Price: decimal.NewFromInt(1200)},
}

// SeedService fills an empty catalog and tops up low inventory at startup.
// Inventory only ever moves up on this path.
type SeedService interface {
	Seed(ctx context.Context) error
}

func NewSeedService(uow model.UnitOfWork, floor int, dispatcher domain.EventDispatcher) SeedService {
	if floor < 0 {
		floor = DefaultInventoryFloor
	}
	return &seedService{uow: uow, floor: floor, dispatcher: dispatcher}
}

type seedService struct {
	uow        model.UnitOfWork
	floor      int
	dispatcher domain.EventDispatcher
}

func (s *seedService) Seed(ctx context.Context) error {
	var event domain.Event
	err := s.uow.Execute(ctx, func(provider model.RepositoryProvider) error {
		products := provider.ProductRepository()

		existing, err := products.FindAll(ctx)
		if err != nil {
			return err
		}

		if len(existing) > 0 {
			affected, err := products.RaiseInventory(ctx, s.floor)
			if err != nil {
				return err
			}
			event = model.InventoryRestocked{Floor: s.floor, ProductsAffected: affected}
			return nil
		}

		for _, starter := range StarterCatalog {
			id, err := products.NextID()
			if err != nil {
				return err
			}
			err = products.Create(ctx, &model.Product{
				ID:        id,
				Name:      starter.Name,
				Price:     starter.Price,
				Inventory: s.floor,
			})
			if err != nil {
				return err
			}
		}
		event = model.CatalogSeeded{ProductCount: len(StarterCatalog), Inventory: s.floor}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithField("event", event.Type()).Info("catalog bootstrap complete")
	dispatchEvents(s.dispatcher, event)
	return nil
}
