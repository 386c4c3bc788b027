package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type Handler struct {
	catalog service.CatalogService
	orders  service.OrderService
}

type productResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Inventory   int     `json:"inventory"`
}

type orderLineRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type placeOrderRequest struct {
	Items []orderLineRequest `json:"items"`
}

type paymentRequest struct {
	OrderID uuid.UUID `json:"order_id"`
}

type statusResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type orderItemResponse struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	TotalAmount float64             `json:"total_amount"`
	Status      string              `json:"status"`
	Items       []orderItemResponse `json:"items"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, productResponse{
			ID:          p.ID.String(),
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price.InexactFloat64(),
			Inventory:   p.Inventory,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(model.ErrInvalidRequest, err.Error()))
		return
	}

	lines := make([]model.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, model.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orders.PlaceOrder(r.Context(), lines)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, statusResponse{OrderID: order.ID.String(), Status: order.Status.String()})
}

func (h *Handler) trackOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.TrackOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := orderResponse{
		ID:          order.ID.String(),
		CreatedAt:   order.CreatedAt,
		TotalAmount: order.TotalAmount.InexactFloat64(),
		Status:      order.Status.String(),
		Items:       make([]orderItemResponse, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.InexactFloat64(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(model.ErrInvalidRequest, err.Error()))
		return
	}

	order, err := h.orders.RecordPayment(r.Context(), req.OrderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{OrderID: order.ID.String(), Status: order.Status.String()})
}

func (h *Handler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.AdvanceStatus(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{OrderID: order.ID.String(), Status: order.Status.String()})
}

func orderIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["orderID"]
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrapf(model.ErrInvalidRequest, "malformed order id %q", raw)
	}
	return orderID, nil
}

var kindStatus = map[model.ErrorKind]int{
	model.ValidationError:            http.StatusBadRequest,
	model.NotFoundError:              http.StatusNotFound,
	model.InsufficientInventoryError: http.StatusBadRequest,
	model.StorageError:               http.StatusInternalServerError,
}

func writeError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	message := err.Error()
	if kind == model.StorageError {
		log.WithError(err).Error("request failed")
		message = "storage is unavailable"
	}
	writeJSON(w, kindStatus[kind], errorResponse{Error: message, Category: kind.String()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("write response")
	}
}
