package tests

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"storefront/pkg/common/domain"
	"storefront/pkg/domain/model"
)

type mockStore struct {
	products    map[uuid.UUID]*model.Product
	orders      map[uuid.UUID]*model.Order
	decreaseErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		products: make(map[uuid.UUID]*model.Product),
		orders:   make(map[uuid.UUID]*model.Order),
	}
}

func (s *mockStore) clone() *mockStore {
	c := newMockStore()
	c.decreaseErr = s.decreaseErr
	for id, p := range s.products {
		product := *p
		c.products[id] = &product
	}
	for id, o := range s.orders {
		order := *o
		order.Items = append([]model.OrderItem(nil), o.Items...)
		c.orders[id] = &order
	}
	return c
}

func (s *mockStore) addProduct(name string, price int64, inventory int) *model.Product {
	p := &model.Product{ID: uuid.New(), Name: name, Price: decimalOf(price), Inventory: inventory}
	s.products[p.ID] = p
	return p
}

var _ model.UnitOfWork = &mockUnitOfWork{}

type mockUnitOfWork struct {
	store     *mockStore
	commits   int
	rollbacks int
	// locked lists product ids in the order they were read inside a transaction.
	locked []uuid.UUID
}

func (u *mockUnitOfWork) Execute(_ context.Context, f func(provider model.RepositoryProvider) error) error {
	working := u.store.clone()
	if err := f(&mockProvider{store: working, locked: &u.locked}); err != nil {
		u.rollbacks++
		return err
	}
	*u.store = *working
	u.commits++
	return nil
}

type mockProvider struct {
	store  *mockStore
	locked *[]uuid.UUID
}

func (p *mockProvider) ProductRepository() model.ProductRepository {
	return &mockProductRepository{store: p.store, locked: p.locked}
}

func (p *mockProvider) OrderRepository() model.OrderRepository {
	return &mockOrderRepository{store: p.store}
}

var _ model.ProductRepository = &mockProductRepository{}

type mockProductRepository struct {
	store  *mockStore
	locked *[]uuid.UUID
}

func (m *mockProductRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockProductRepository) Create(_ context.Context, p *model.Product) error {
	if _, exists := m.store.products[p.ID]; exists {
		return errors.New("product with this ID already exists")
	}
	product := *p
	m.store.products[p.ID] = &product
	return nil
}

func (m *mockProductRepository) FindAll(_ context.Context) ([]model.Product, error) {
	products := make([]model.Product, 0, len(m.store.products))
	for _, p := range m.store.products {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (m *mockProductRepository) Find(_ context.Context, id uuid.UUID) (*model.Product, error) {
	if m.locked != nil {
		*m.locked = append(*m.locked, id)
	}
	if p, ok := m.store.products[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, model.ErrProductNotFound
}

func (m *mockProductRepository) DecreaseInventory(_ context.Context, id uuid.UUID, quantity int) error {
	if m.store.decreaseErr != nil {
		return m.store.decreaseErr
	}
	p, ok := m.store.products[id]
	if !ok {
		return model.ErrProductNotFound
	}
	if p.Inventory < quantity {
		return model.ErrInsufficientInventory
	}
	p.Inventory -= quantity
	return nil
}

func (m *mockProductRepository) RaiseInventory(_ context.Context, floor int) (int64, error) {
	var affected int64
	for _, p := range m.store.products {
		if p.Inventory < floor {
			p.Inventory = floor
			affected++
		}
	}
	return affected, nil
}

var _ model.OrderRepository = &mockOrderRepository{}

type mockOrderRepository struct {
	store *mockStore
}

func (m *mockOrderRepository) NextID() (uuid.UUID, error) { return uuid.NewRandom() }

func (m *mockOrderRepository) Create(_ context.Context, o *model.Order) error {
	if _, exists := m.store.orders[o.ID]; exists {
		return errors.New("order with this ID already exists")
	}
	order := *o
	order.Items = append([]model.OrderItem(nil), o.Items...)
	m.store.orders[o.ID] = &order
	return nil
}

func (m *mockOrderRepository) Find(_ context.Context, id uuid.UUID) (*model.Order, error) {
	if o, ok := m.store.orders[id]; ok {
		clone := *o
		clone.Items = append([]model.OrderItem(nil), o.Items...)
		return &clone, nil
	}
	return nil, model.ErrOrderNotFound
}

func (m *mockOrderRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	o, ok := m.store.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

var _ domain.EventDispatcher = &mockEventDispatcher{}

type mockEventDispatcher struct {
	events []domain.Event
}

func (m *mockEventDispatcher) Dispatch(event domain.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) Reset() {
	m.events = nil
}
