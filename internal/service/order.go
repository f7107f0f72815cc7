package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/lib/validate"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// LineItem — позиция корзины, как её прислал клиент
type LineItem struct {
	ProductID uuid.UUID
	Name      string // имя из корзины клиента, нужно для сообщения об удалённом товаре
	Qty       int
}

type PlaceOrderInput struct {
	Items           []LineItem
	ShippingAddress models.ShippingAddress
	TotalPrice      decimal.Decimal
}

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*models.Order, error)
	GetMyOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	GetOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, productRepo storage.ProductStorage, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// PlaceOrder проверяет наличие всех позиций, создаёт заказ и списывает остатки.
// Всё выполняется в одной транзакции: строки товаров блокируются до коммита,
// поэтому параллельные заказы не могут продать больше, чем есть на складе.
// Проблемы с наличием собираются по всем позициям сразу и возвращаются как *StockError.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*models.Order, error) {
	const op = "service.OrderService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.String("userID", userID.String()))

	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%s: %w", op, NewValidationError("No order items provided"))
	}

	// суммарное количество по каждому товару; порядок ids — порядок первого упоминания
	requested := make(map[uuid.UUID]int, len(in.Items))
	ids := make([]uuid.UUID, 0, len(in.Items))
	var invalid []string
	for i, item := range in.Items {
		if item.Qty <= 0 {
			invalid = append(invalid, fmt.Sprintf("orderItems[%d].qty must be greater than 0", i))
			continue
		}
		if _, seen := requested[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		requested[item.ProductID] += item.Qty
	}
	if !validate.IsMoney(in.TotalPrice) {
		invalid = append(invalid, fmt.Sprintf("totalPrice must be between 0 and %s with at most %d decimal places",
			validate.MaxMoney, validate.MaxMoneyScale))
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%s: %w", op, NewValidationError("invalid order items", invalid...))
	}

	logger.Info("starting order transaction", slog.Int("items", len(in.Items)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
	}

	products, err := s.productRepo.LockProductsTx(ctx, tx, ids)
	if err != nil {
		rollback()
		logger.Error("failed to lock products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock products: %w", op, err)
	}

	if stockErrors := checkStock(in.Items, products, requested); len(stockErrors) > 0 {
		rollback()
		logger.Warn("order rejected: stock check failed", slog.String("errors", strings.Join(stockErrors, "; ")))
		return nil, fmt.Errorf("%s: %w", op, &StockError{Items: stockErrors})
	}

	order := &models.Order{
		UserID:          userID,
		Items:           make([]models.OrderItem, 0, len(in.Items)),
		ShippingAddress: in.ShippingAddress,
		TotalPrice:      in.TotalPrice,
		Status:          models.StatusPending,
	}
	for _, item := range in.Items {
		p := products[item.ProductID]
		order.Items = append(order.Items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       item.Qty,
			Price:     p.Price,
		})
	}

	if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
		rollback()
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	for _, id := range ids {
		if err := s.productRepo.DecrementStockTx(ctx, tx, id, requested[id]); err != nil {
			rollback()
			logger.Error("failed to decrement stock", slog.String("productID", id.String()), slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to decrement stock: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order placed", slog.String("orderID", order.ID.String()))
	return order, nil
}

// checkStock возвращает по одному сообщению на каждый отсутствующий товар
// и на каждый товар, которого меньше, чем запрошено суммарно.
func checkStock(items []LineItem, products map[uuid.UUID]*models.Product, requested map[uuid.UUID]int) []string {
	var errs []string
	reported := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if reported[item.ProductID] {
			continue
		}
		p, ok := products[item.ProductID]
		if !ok {
			errs = append(errs, fmt.Sprintf("Product \"%s\" no longer exists.", item.Name))
			reported[item.ProductID] = true
			continue
		}
		if qty := requested[item.ProductID]; p.Stock < qty {
			errs = append(errs, fmt.Sprintf("\"%s\" only has %d left in stock (you requested %d).", p.Name, p.Stock, qty))
			reported[item.ProductID] = true
		}
	}
	return errs
}

func (s *orderService) GetMyOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	const op = "service.OrderService.GetMyOrders"

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) GetOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "service.OrderService.GetOrders"

	orders, err := s.orderRepo.GetAllOrders(ctx)
	if err != nil {
		s.log.Error("failed to get orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// UpdateOrderStatus переводит заказ в новый статус, если переход разрешён.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	const op = "service.OrderService.UpdateOrderStatus"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID.String()), slog.String("status", string(status)))

	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, NewValidationError("invalid status",
			"status must be one of [pending processing shipped delivered cancelled]"))
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !order.Status.CanTransitionTo(status) {
		logger.Warn("illegal status transition", slog.String("from", string(order.Status)))
		return nil, fmt.Errorf("%s: %w: %s -> %s", op, ErrInvalidStatusTransition, order.Status, status)
	}

	updated, err := s.orderRepo.UpdateOrderStatus(ctx, orderID, order.Status, status)
	if err != nil {
		logger.Error("failed to update order status", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("order status updated", slog.String("from", string(order.Status)))
	return updated, nil
}
