package rpc

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

const ServiceName = "storefront.v1.Storefront"

// StorefrontServer exposes the catalog and order workflow over gRPC using
// protobuf well-known types as messages.
type StorefrontServer interface {
	ListProducts(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error)
	PlaceOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	TrackOrder(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	RecordPayment(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	AdvanceStatus(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StorefrontServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListProducts", func() *emptypb.Empty { return new(emptypb.Empty) }, StorefrontServer.ListProducts),
		unary("PlaceOrder", func() *structpb.Struct { return new(structpb.Struct) }, StorefrontServer.PlaceOrder),
		unary("TrackOrder", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, StorefrontServer.TrackOrder),
		unary("RecordPayment", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, StorefrontServer.RecordPayment),
		unary("AdvanceStatus", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, StorefrontServer.AdvanceStatus),
	},
	Streams: []grpc.StreamDesc{},
}

func unary[Req, Resp proto.Message](
	method string,
	newReq func() Req,
	call func(StorefrontServer, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StorefrontServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(StorefrontServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func NewServer(catalog service.CatalogService, orders service.OrderService) *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(logInterceptor))
	srv.RegisterService(&ServiceDesc, &storefrontServer{catalog: catalog, orders: orders})
	return srv
}

func logInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	entry := log.WithFields(log.Fields{
		"method":   info.FullMethod,
		"duration": time.Since(start).String(),
		"code":     status.Code(err).String(),
	})
	if err != nil {
		entry.WithError(err).Warn("rpc failed")
	} else {
		entry.Info("rpc handled")
	}
	return resp, err
}

type storefrontServer struct {
	catalog service.CatalogService
	orders  service.OrderService
}

func (s *storefrontServer) ListProducts(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	values := make([]any, 0, len(products))
	for _, p := range products {
		values = append(values, map[string]any{
			"id":          p.ID.String(),
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price.InexactFloat64(),
			"inventory":   float64(p.Inventory),
		})
	}
	list, err := structpb.NewList(values)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

func (s *storefrontServer) PlaceOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var lines []model.OrderLine
	for _, value := range in.GetFields()["items"].GetListValue().GetValues() {
		fields := value.GetStructValue().GetFields()
		productID, err := uuid.Parse(fields["product_id"].GetStringValue())
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "malformed product id: %v", err)
		}
		quantity, err := quantityOf(fields["quantity"])
		if err != nil {
			return nil, err
		}
		lines = append(lines, model.OrderLine{ProductID: productID, Quantity: quantity})
	}

	order, err := s.orders.PlaceOrder(ctx, lines)
	if err != nil {
		return nil, toStatus(err)
	}
	return statusStruct(order)
}

func (s *storefrontServer) TrackOrder(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	orderID, err := parseOrderID(in)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.TrackOrder(ctx, orderID)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID.String(),
			"quantity":   float64(item.Quantity),
			"unit_price": item.UnitPrice.InexactFloat64(),
		})
	}
	return structpb.NewStruct(map[string]any{
		"id":           order.ID.String(),
		"created_at":   order.CreatedAt.Format(time.RFC3339Nano),
		"total_amount": order.TotalAmount.InexactFloat64(),
		"status":       order.Status.String(),
		"items":        items,
	})
}

func (s *storefrontServer) RecordPayment(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	orderID, err := parseOrderID(in)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.RecordPayment(ctx, orderID)
	if err != nil {
		return nil, toStatus(err)
	}
	return statusStruct(order)
}

func (s *storefrontServer) AdvanceStatus(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	orderID, err := parseOrderID(in)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.AdvanceStatus(ctx, orderID)
	if err != nil {
		return nil, toStatus(err)
	}
	return statusStruct(order)
}

// quantityOf accepts only whole numbers that fit the quantity column.
func quantityOf(v *structpb.Value) (int, error) {
	n := v.GetNumberValue()
	if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "quantity must be a whole number, got %v", n)
	}
	return int(n), nil
}

func parseOrderID(in *wrapperspb.StringValue) (uuid.UUID, error) {
	orderID, err := uuid.Parse(in.GetValue())
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "malformed order id %q", in.GetValue())
	}
	return orderID, nil
}

func statusStruct(order *model.Order) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"order_id": order.ID.String(),
		"status":   order.Status.String(),
	})
}

var kindCodes = map[model.ErrorKind]codes.Code{
	model.ValidationError:            codes.InvalidArgument,
	model.NotFoundError:              codes.NotFound,
	model.InsufficientInventoryError: codes.FailedPrecondition,
	model.StorageError:               codes.Internal,
}

func toStatus(err error) error {
	kind := model.KindOf(err)
	if kind == model.StorageError {
		log.WithError(err).Error("rpc storage failure")
		return status.Error(codes.Internal, "storage is unavailable")
	}
	return status.Error(kindCodes[kind], err.Error())
}
