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
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductStorage описывает методы для работы с таблицей товаров.
type ProductStorage interface {
	// ListProducts возвращает товары, новые первыми; пустая категория — без фильтра.
	ListProducts(ctx context.Context, category models.Category) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// LockProductsTx блокирует строки товаров до конца транзакции (SELECT ... FOR UPDATE).
	// Отсутствующие товары просто не попадают в результат.
	LockProductsTx(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	// DecrementStockTx списывает qty единиц, только если остатка хватает.
	DecrementStockTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, qty int) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий товаров.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = `id, user_id, name, description, price, category, stock, image_url, images, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	var images []string
	if err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.Stock, &p.ImageURL, pq.Array(&images), &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if images == nil {
		images = []string{}
	}
	p.Images = images
	return p, nil
}

func (r *productRepository) ListProducts(ctx context.Context, category models.Category) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, string(category))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// CreateProduct вставляет товар; ID генерируется здесь, timestamps — в БД.
func (r *productRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	query := `INSERT INTO products (id, user_id, name, description, price, category, stock, image_url, images, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.Name, p.Description, p.Price, string(p.Category), p.Stock, p.ImageURL, pq.Array(p.Images),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct перезаписывает все изменяемые поля товара.
func (r *productRepository) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `UPDATE products
	          SET name = $1, description = $2, price = $3, category = $4, stock = $5,
	              image_url = $6, images = $7, updated_at = NOW()
	          WHERE id = $8
	          RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, string(p.Category), p.Stock, p.ImageURL, pq.Array(p.Images), p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) LockProductsTx(ctx context.Context, tx *sql.Tx, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	// порядок блокировки фиксирован (ORDER BY id), чтобы параллельные заказы не ловили deadlock
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`
	rows, err := tx.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	products := make(map[uuid.UUID]*models.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, qty int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`,
		qty, id,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
