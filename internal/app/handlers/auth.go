package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/service"
)

// SignupRequest представляет структуру запроса на регистрацию с тегами валидации
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest представляет структуру запроса для аутентификации
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse — пользователь и JWT-токен
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// SignupHandler обрабатывает POST /api/auth/signup
func SignupHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SignupHandler"
		logger := log.With(slog.String("op", op))

		var req SignupRequest
		if err := decodeAndValidate(r, &req); err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		res, err := authService.Signup(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			logger.Error("signup failed", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		respondData(w, logger, http.StatusCreated, AuthResponse{User: res.User, Token: res.Token})
	}
}

// LoginHandler – HTTP-обработчик для аутентификации
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if err := decodeAndValidate(r, &req); err != nil {
			logger.Error("invalid request", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		res, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			logger.Error("login failed", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		respondData(w, logger, http.StatusOK, AuthResponse{User: res.User, Token: res.Token})
	}
}

// MeHandler возвращает текущего пользователя
func MeHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MeHandler"
		logger := log.With(slog.String("op", op))

		identity, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("identity not found in context")
			respondMessage(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := authService.Me(r.Context(), identity.UserID)
		if err != nil {
			logger.Error("failed to get user", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		respondData(w, logger, http.StatusOK, user)
	}
}
