package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/service"
	"github.com/shopspring/decimal"
)

const categories = "Electronics Clothing Books Home Other"

// ProductRequest — тело POST /api/products
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"money"`
	Category    models.Category `json:"category" validate:"required,oneof=Electronics Clothing Books Home Other"`
	Stock       int             `json:"stock" validate:"gte=0,lte=2147483647"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url"`
	Images      []string        `json:"images" validate:"omitempty,dive,url"`
}

// ProductUpdateRequest — тело PUT /api/products/{id}; отсутствующие поля не меняются
type ProductUpdateRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,money"`
	Category    *models.Category `json:"category" validate:"omitempty,oneof=Electronics Clothing Books Home Other"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0,lte=2147483647"`
	ImageURL    *string          `json:"imageUrl" validate:"omitempty,url"`
	Images      *[]string        `json:"images" validate:"omitempty,dive,url"`
}

// ListProductsHandler обрабатывает GET /api/products (опционально ?category=)
func ListProductsHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		category := models.Category(r.URL.Query().Get("category"))
		if err := requestValidator.Var(string(category), "omitempty,oneof="+categories); err != nil {
			respondError(w, logger, service.NewValidationError("invalid category",
				"category must be one of ["+categories+"]"))
			return
		}

		products, err := productService.List(r.Context(), category)
		if err != nil {
			respondError(w, logger, err)
			return
		}
		respondList(w, logger, products)
	}
}

// GetProductHandler обрабатывает GET /api/products/{id}
func GetProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r)
		if err != nil {
			respondError(w, logger, err)
			return
		}

		product, err := productService.Get(r.Context(), id)
		if err != nil {
			respondError(w, logger, err)
			return
		}
		respondData(w, logger, http.StatusOK, product)
	}
}

// CreateProductHandler обрабатывает POST /api/products; владельцем становится текущий администратор
func CreateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			respondMessage(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req ProductRequest
		if err := decodeAndValidate(r, &req); err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		product, err := productService.Create(r.Context(), identity.UserID, service.ProductInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Category:    req.Category,
			Stock:       req.Stock,
			ImageURL:    req.ImageURL,
			Images:      req.Images,
		})
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}
		respondData(w, logger, http.StatusCreated, product)
	}
}

// UpdateProductHandler обрабатывает PUT /api/products/{id}
func UpdateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r)
		if err != nil {
			respondError(w, logger, err)
			return
		}

		var req ProductUpdateRequest
		if err := decodeAndValidate(r, &req); err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		product, err := productService.Update(r.Context(), id, service.ProductPatch{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Category:    req.Category,
			Stock:       req.Stock,
			ImageURL:    req.ImageURL,
			Images:      req.Images,
		})
		if err != nil {
			logger.Error("failed to update product", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}
		respondData(w, logger, http.StatusOK, product)
	}
}

// DeleteProductHandler обрабатывает DELETE /api/products/{id}
func DeleteProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := pathID(r)
		if err != nil {
			respondError(w, logger, err)
			return
		}

		if err := productService.Delete(r.Context(), id); err != nil {
			logger.Error("failed to delete product", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}
		respondMessage(w, logger, http.StatusOK, "Product removed")
	}
}
