package rpc

import (
	"context"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"storefront/pkg/domain/model"
)

func setup(t *testing.T) (*grpc.ClientConn, *stubOrders) {
	lis := bufconn.Listen(1024 * 1024)
	catalog := &stubCatalog{products: []model.Product{
		{ID: uuid.New(), Name: "Headphones", Price: decimal.NewFromInt(2000), Inventory: 50},
	}}
	orders := &stubOrders{store: make(map[uuid.UUID]*model.Order)}

	srv := NewServer(catalog, orders)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, orders
}

func method(name string) string { return "/" + ServiceName + "/" + name }

func TestListProducts(t *testing.T) {
	conn, _ := setup(t)

	out := new(structpb.ListValue)
	require.NoError(t, conn.Invoke(context.Background(), method("ListProducts"), &emptypb.Empty{}, out))

	require.Len(t, out.GetValues(), 1)
	product := out.GetValues()[0].GetStructValue().GetFields()
	assert.Equal(t, "Headphones", product["name"].GetStringValue())
	assert.Equal(t, 2000.0, product["price"].GetNumberValue())
	assert.Equal(t, 50.0, product["inventory"].GetNumberValue())
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	conn, orders := setup(t)
	productID := uuid.New()

	in, err := structpb.NewStruct(map[string]any{
		"items": []any{map[string]any{"product_id": productID.String(), "quantity": 2}},
	})
	require.NoError(t, err)

	out := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, method("PlaceOrder"), in, out))
	assert.Equal(t, "Pending", out.GetFields()["status"].GetStringValue())
	require.Len(t, orders.placed, 1)
	assert.Equal(t, 2, orders.placed[0][0].Quantity)

	t.Run("Insufficient inventory", func(t *testing.T) {
		orders.err = model.ErrInsufficientInventory
		defer func() { orders.err = nil }()

		err := conn.Invoke(ctx, method("PlaceOrder"), in, new(structpb.Struct))
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})

	t.Run("Quantity is not a whole int32", func(t *testing.T) {
		for _, quantity := range []any{2.9, 1e12} {
			bad, err := structpb.NewStruct(map[string]any{
				"items": []any{map[string]any{"product_id": productID.String(), "quantity": quantity}},
			})
			require.NoError(t, err)

			err = conn.Invoke(ctx, method("PlaceOrder"), bad, new(structpb.Struct))
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		}
		assert.Len(t, orders.placed, 1)
	})

	t.Run("Malformed product id", func(t *testing.T) {
		bad, err := structpb.NewStruct(map[string]any{
			"items": []any{map[string]any{"product_id": "1", "quantity": 1}},
		})
		require.NoError(t, err)

		err = conn.Invoke(ctx, method("PlaceOrder"), bad, new(structpb.Struct))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	conn, orders := setup(t)
	order := &model.Order{
		ID:          uuid.New(),
		TotalAmount: decimal.NewFromInt(4000),
		Status:      model.Pending,
		Items:       []model.OrderItem{{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.NewFromInt(2000)}},
	}
	orders.store[order.ID] = order
	id := wrapperspb.String(order.ID.String())

	out := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, method("RecordPayment"), id, out))
	assert.Equal(t, "Packed", out.GetFields()["status"].GetStringValue())

	require.NoError(t, conn.Invoke(ctx, method("AdvanceStatus"), id, out))
	assert.Equal(t, "Shipped", out.GetFields()["status"].GetStringValue())

	require.NoError(t, conn.Invoke(ctx, method("TrackOrder"), id, out))
	fields := out.GetFields()
	assert.Equal(t, "Shipped", fields["status"].GetStringValue())
	assert.Equal(t, 4000.0, fields["total_amount"].GetNumberValue())
	assert.Len(t, fields["items"].GetListValue().GetValues(), 1)

	err := conn.Invoke(ctx, method("TrackOrder"), wrapperspb.String(uuid.New().String()), out)
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = conn.Invoke(ctx, method("AdvanceStatus"), wrapperspb.String("not-an-id"), out)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

type stubCatalog struct {
	products []model.Product
}

func (s *stubCatalog) ListProducts(context.Context) ([]model.Product, error) {
	return s.products, nil
}

type stubOrders struct {
	store  map[uuid.UUID]*model.Order
	placed [][]model.OrderLine
	err    error
}

func (s *stubOrders) PlaceOrder(_ context.Context, lines []model.OrderLine) (*model.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.placed = append(s.placed, lines)
	return &model.Order{ID: uuid.New(), Status: model.Pending}, nil
}

func (s *stubOrders) TrackOrder(_ context.Context, id uuid.UUID) (*model.Order, error) {
	order, ok := s.store[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *stubOrders) RecordPayment(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.TrackOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = model.Packed
	return order, nil
}

func (s *stubOrders) AdvanceStatus(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.TrackOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = order.Status.Next()
	return order, nil
}
