package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fitwell/fitwell-api/internal/domain/models"
	"github.com/fitwell/fitwell-api/internal/service"
	"github.com/fitwell/fitwell-api/internal/storage"
)

// OrderItemRequest is one cart line of a checkout request.
type OrderItemRequest struct {
	ProductID int64 `json:"id" validate:"required"`
	Quantity  int   `json:"cantidad" validate:"required,gt=0"`
}

// CreateOrderRequest is the checkout payload. The required tags mirror
// the storefront contract: a zero total is as invalid as a missing one.
type CreateOrderRequest struct {
	UserID   int64              `json:"usuario_id" validate:"required"`
	Total    float64            `json:"total" validate:"required,gt=0"`
	Products []OrderItemRequest `json:"productos" validate:"required,min=1,dive"`
}

type createOrderResponse struct {
	Message string        `json:"message"`
	Order   *models.Order `json:"pedido"`
}

type insufficientStockResponse struct {
	Error     string `json:"error"`
	ProductID int64  `json:"producto_id"`
}

// CreateOrderHandler handles POST /api/pedidos. The whole cart commits
// or nothing does; an out-of-stock line rejects the order with 409.
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "Faltan datos: usuario_id, total o productos")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "Faltan datos: usuario_id, total o productos")
			return
		}

		items := make([]models.OrderItem, 0, len(req.Products))
		for _, p := range req.Products {
			items = append(items, models.OrderItem{ProductID: p.ProductID, Quantity: p.Quantity})
		}

		order, err := orderService.PlaceOrder(r.Context(), req.UserID, req.Total, items)
		if err != nil {
			var stockErr *service.InsufficientStockError
			if errors.As(err, &stockErr) {
				writeJSON(w, http.StatusConflict, insufficientStockResponse{
					Error:     "Stock insuficiente",
					ProductID: stockErr.ProductID,
				})
				return
			}
			logger.Error("failed to place order", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createOrderResponse{
			Message: "Pedido registrado correctamente",
			Order:   order,
		})
	}
}

// ListOrdersHandler handles GET /api/pedidos/{usuario_id}. An empty
// history answers 404, which the storefront relies on.
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, err := strconv.ParseInt(chi.URLParam(r, "usuario_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "usuario_id inválido")
			return
		}

		orders, err := orderService.GetOrdersByUserID(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get orders", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		if len(orders) == 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"message": "No se encontraron pedidos para este usuario.",
			})
			return
		}

		writeJSON(w, http.StatusOK, orders)
	}
}

type orderDetailResponse struct {
	Order *models.Order      `json:"pedido"`
	Items []models.OrderItem `json:"productos"`
}

// OrderDetailHandler handles GET /api/pedidos/detalle/{id}: one order
// with the line items persisted at checkout.
func OrderDetailHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderDetailHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id inválido")
			return
		}

		order, items, err := orderService.GetOrderDetail(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				writeError(w, http.StatusNotFound, "Pedido no encontrado")
				return
			}
			logger.Error("failed to get order detail", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, orderDetailResponse{Order: order, Items: items})
	}
}
