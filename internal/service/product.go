package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/lib/validate"
	"github.com/linemk/storefront/internal/storage"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	List(ctx context.Context, category models.Category) ([]*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, adminID uuid.UUID, in ProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductInput — поля нового товара
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    models.Category
	Stock       int
	ImageURL    string
	Images      []string
}

// ProductPatch — частичное обновление; nil означает "не менять"
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *models.Category
	Stock       *int
	ImageURL    *string
	Images      *[]string
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
	validate    *validator.Validate
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage) ProductService {
	return &productService{
		log:         log,
		productRepo: productRepo,
		validate:    validate.New(),
	}
}

func (s *productService) List(ctx context.Context, category models.Category) ([]*models.Product, error) {
	const op = "service.ProductService.List"

	products, err := s.productRepo.ListProducts(ctx, category)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	const op = "service.ProductService.Get"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, adminID uuid.UUID, in ProductInput) (*models.Product, error) {
	const op = "service.ProductService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("adminID", adminID.String()))

	product := &models.Product{
		UserID:      adminID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		Images:      in.Images,
	}
	if product.ImageURL == "" {
		product.ImageURL = models.DefaultImageURL
	}
	if err := s.check(product); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product created", slog.String("productID", product.ID.String()))
	return product, nil
}

// Update заменяет только переданные поля и перепроверяет товар целиком.
func (s *productService) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	const op = "service.ProductService.Update"
	logger := s.log.With(slog.String("op", op), slog.String("productID", id.String()))

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if patch.Name != nil {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.Stock != nil {
		product.Stock = *patch.Stock
	}
	if patch.ImageURL != nil {
		product.ImageURL = *patch.ImageURL
	}
	if patch.Images != nil {
		product.Images = *patch.Images
	}

	if err := s.check(product); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product updated")
	return product, nil
}

// Delete удаляет товар безусловно; заказы хранят собственный снимок имени и цены.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.ProductService.Delete"

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product deleted", slog.String("op", op), slog.String("productID", id.String()))
	return nil
}

func (s *productService) check(p *models.Product) error {
	if err := s.validate.Struct(p); err != nil {
		return NewValidationError("invalid product", validate.Messages(err)...)
	}
	return nil
}
