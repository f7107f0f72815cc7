package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/linemk/storefront/internal/app/handlers"
	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/lib/logger/handlers/urllog"
	"github.com/linemk/storefront/internal/service"
)

// Services — всё, что нужно роутеру от слоя бизнес-логики
type Services struct {
	Auth     service.AuthServiceInterface
	Products service.ProductService
	Orders   service.OrderService
	Uploads  service.UploadService
	Users    jwtmiddleware.UserLookup
}

// NewRouter собирает chi-роутер со всеми маршрутами API
func NewRouter(log *slog.Logger, cfg *config.Config, svc Services) *chi.Mux {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	// роль берётся из БД на каждом запросе, токен подтверждает только личность
	protect := chi.Chain(
		jwtmiddleware.NewJWTMiddleware(cfg.JWT.Secret),
		jwtmiddleware.LoadUser(svc.Users),
	)
	adminOnly := jwtmiddleware.RequireRole(models.RoleAdmin)
	protectAdmin := chi.Chain(
		jwtmiddleware.NewJWTMiddleware(cfg.JWT.Secret),
		jwtmiddleware.LoadUser(svc.Users),
		adminOnly,
	)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("API is running..."))
	})

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", handlers.SignupHandler(log, svc.Auth))
			r.Post("/login", handlers.LoginHandler(log, svc.Auth))
			r.With(protect...).Get("/me", handlers.MeHandler(log, svc.Auth))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handlers.ListProductsHandler(log, svc.Products))
			r.Get("/{id}", handlers.GetProductHandler(log, svc.Products))

			r.Group(func(r chi.Router) {
				r.Use(protectAdmin...)
				r.Post("/", handlers.CreateProductHandler(log, svc.Products))
				r.Put("/{id}", handlers.UpdateProductHandler(log, svc.Products))
				r.Delete("/{id}", handlers.DeleteProductHandler(log, svc.Products))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(protect...)
			r.Post("/", handlers.PlaceOrderHandler(log, svc.Orders))
			r.Get("/myorders", handlers.MyOrdersHandler(log, svc.Orders))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", handlers.ListOrdersHandler(log, svc.Orders))
				r.Put("/{id}/status", handlers.UpdateOrderStatusHandler(log, svc.Orders))
			})
		})

		r.Route("/upload", func(r chi.Router) {
			r.Use(protectAdmin...)
			r.Post("/", handlers.UploadHandler(log, svc.Uploads))
			r.Post("/multiple", handlers.UploadMultipleHandler(log, svc.Uploads))
		})
	})

	return router
}
