package app

import (
	"database/sql"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/media"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
	"github.com/pkg/errors"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	Router http.Handler
}

// NewApp создаёт новый экземпляр App: подключение к БД, репозитории, сервисы и роутер
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	if cfg.Database.Password == "" {
		return nil, errors.New("DB_PASSWORD environment variable is not set")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	uploader, err := media.NewCloudinary(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret, cfg.Media.Folder)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to init media uploader")
	}

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(db)
	productRepo := storage.NewProductRepository(db)
	orderRepo := storage.NewOrderRepository(db)

	services := Services{
		Auth:     service.NewAuthService(log, userRepo, cfg.JWT.Secret, cfg.JWT.TTL()),
		Products: service.NewProductService(log, productRepo),
		Orders:   service.NewOrderService(log, db, productRepo, orderRepo),
		Uploads:  service.NewUploadService(log, uploader),
		Users:    userRepo,
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
		Router: NewRouter(log, cfg, services),
	}

	return app, nil
}
