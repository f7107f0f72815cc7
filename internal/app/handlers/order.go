package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/service"
	"github.com/shopspring/decimal"
)

// OrderItemRequest — позиция корзины. Цена из корзины игнорируется,
// в заказ попадает цена из каталога.
type OrderItemRequest struct {
	Product string          `json:"product" validate:"required,uuid"`
	Name    string          `json:"name"`
	Qty     int             `json:"qty" validate:"gt=0,lte=2147483647"`
	Price   decimal.Decimal `json:"price"`
}

type ShippingAddressRequest struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// PlaceOrderRequest — тело POST /api/orders.
// Пустой список позиций проверяет сервис, чтобы вернуть собственное сообщение.
type PlaceOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"orderItems" validate:"dive"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
	TotalPrice      decimal.Decimal        `json:"totalPrice" validate:"money"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// PlaceOrderHandler обрабатывает POST /api/orders
func PlaceOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PlaceOrderHandler"
		logger := log.With(slog.String("op", op))

		// userID установлен JWT middleware
		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			respondMessage(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req PlaceOrderRequest
		if err := decodeAndValidate(r, &req); err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		in := service.PlaceOrderInput{
			Items: make([]service.LineItem, 0, len(req.OrderItems)),
			ShippingAddress: models.ShippingAddress{
				Address:    req.ShippingAddress.Address,
				City:       req.ShippingAddress.City,
				PostalCode: req.ShippingAddress.PostalCode,
				Country:    req.ShippingAddress.Country,
			},
			TotalPrice: req.TotalPrice,
		}
		for _, item := range req.OrderItems {
			// формат уже проверен тегом uuid
			productID, _ := uuid.Parse(item.Product)
			in.Items = append(in.Items, service.LineItem{ProductID: productID, Name: item.Name, Qty: item.Qty})
		}

		order, err := orderService.PlaceOrder(r.Context(), identity.UserID, in)
		if err != nil {
			logger.Error("failed to place order", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}
		respondData(w, logger, http.StatusCreated, order)
	}
}

// MyOrdersHandler обрабатывает GET /api/orders/myorders
func MyOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MyOrdersHandler"
		logger := log.With(slog.String("op", op))

		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			respondMessage(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		orders, err := orderService.GetMyOrders(r.Context(), identity.UserID)
		if err != nil {
			respondError(w, logger, err)
			return
		}
		respondList(w, logger, orders)
	}
}

// ListOrdersHandler обрабатывает GET /api/orders (только администратор)
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.ListOrdersHandler"))

		orders, err := orderService.GetOrders(r.Context())
		if err != nil {
			respondError(w, logger, err)
			return
		}
		respondList(w, logger, orders)
	}
}

// UpdateOrderStatusHandler обрабатывает PUT /api/orders/{id}/status
func UpdateOrderStatusHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r)
		if err != nil {
			respondError(w, logger, err)
			return
		}

		var req UpdateStatusRequest
		if err := decodeAndValidate(r, &req); err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		order, err := orderService.UpdateOrderStatus(r.Context(), id, req.Status)
		if err != nil {
			logger.Error("failed to update order status", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}
		respondData(w, logger, http.StatusOK, order)
	}
}
