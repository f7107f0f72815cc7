package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/linemk/storefront/internal/domain/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderStatusChanged — статус заказа успели поменять между чтением и записью.
	ErrOrderStatusChanged = errors.New("order status was changed concurrently")
)

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrderTx вставляет заказ вместе с позициями в рамках транзакции.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// GetOrdersByUserID возвращает заказы пользователя, новые первыми.
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	// GetAllOrders возвращает все заказы с данными владельца, новые первыми.
	GetAllOrders(ctx context.Context) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// UpdateOrderStatus меняет статус, только если текущий статус равен from.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (*models.Order, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = `o.id, o.user_id, o.shipping_address, o.shipping_city, o.shipping_postal_code, o.shipping_country,
	o.total_price, o.status, o.created_at, o.updated_at`

func scanOrder(row rowScanner, extra ...any) (*models.Order, error) {
	o := &models.Order{}
	dest := []any{
		&o.ID, &o.UserID,
		&o.ShippingAddress.Address, &o.ShippingAddress.City, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	o.Items = []models.OrderItem{}
	return o, nil
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	query := `INSERT INTO orders (id, user_id, shipping_address, shipping_city, shipping_postal_code, shipping_country,
	                              total_price, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          RETURNING created_at, updated_at`
	err := tx.QueryRowContext(ctx, query,
		order.ID, order.UserID,
		order.ShippingAddress.Address, order.ShippingAddress.City, order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.TotalPrice, string(order.Status),
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, position, product_id, name, qty, price)
	              VALUES ($1, $2, $3, $4, $5, $6)`
	for i, item := range order.Items {
		if _, err := tx.ExecContext(ctx, itemQuery, order.ID, i, item.ProductID, item.Name, item.Qty, item.Price); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetAllOrders возвращает все заказы с JOIN, чтобы получить имя и email владельца.
func (r *orderRepository) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `, u.id, u.name, u.email
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		u := &models.OrderUser{}
		o, err := scanOrder(rows, &u.ID, &u.Name, &u.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.User = u
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, []*models.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (*models.Order, error) {
	query := `UPDATE orders o SET status = $1, updated_at = NOW()
	          WHERE o.id = $2 AND o.status = $3
	          RETURNING ` + orderColumns
	row := r.db.QueryRowContext(ctx, query, string(to), id, string(from))
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderStatusChanged
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if err := r.attachItems(ctx, []*models.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// attachItems одним запросом подгружает позиции для набора заказов.
func (r *orderRepository) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query := `SELECT order_id, product_id, name, qty, price
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var item models.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Qty, &item.Price); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}
