package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/linemk/storefront/internal/lib/validate"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
)

// Response — единый конверт всех ответов API
type Response struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Count   *int     `json:"count,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	File    string   `json:"file,omitempty"`
	Files   []string `json:"files,omitempty"`
}

var requestValidator = validate.New()

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func respondData(w http.ResponseWriter, log *slog.Logger, status int, data any) {
	writeJSON(w, log, status, Response{Success: true, Data: data})
}

func respondList[T any](w http.ResponseWriter, log *slog.Logger, items []T) {
	count := len(items)
	writeJSON(w, log, http.StatusOK, Response{Success: true, Data: items, Count: &count})
}

func respondMessage(w http.ResponseWriter, log *slog.Logger, status int, message string) {
	writeJSON(w, log, status, Response{Success: status < 400, Message: message})
}

// respondError переводит ошибку сервиса в HTTP-статус и тело ответа.
// Неизвестные ошибки отдаются как 500 без подробностей.
func respondError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		validationErr *service.ValidationError
		stockErr      *service.StockError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, log, http.StatusBadRequest, Response{Message: validationErr.Message, Errors: validationErr.Errors})
	case errors.As(err, &stockErr):
		writeJSON(w, log, http.StatusBadRequest, Response{Message: "Some items are out of stock", Errors: stockErr.Items})
	case errors.Is(err, storage.ErrInsufficientStock):
		respondMessage(w, log, http.StatusBadRequest, "Some items are out of stock")
	case errors.Is(err, storage.ErrProductNotFound):
		respondMessage(w, log, http.StatusNotFound, "Product not found")
	case errors.Is(err, storage.ErrOrderNotFound):
		respondMessage(w, log, http.StatusNotFound, "Order not found")
	case errors.Is(err, storage.ErrUserNotFound):
		respondMessage(w, log, http.StatusNotFound, "User not found")
	case errors.Is(err, storage.ErrUserExists):
		respondMessage(w, log, http.StatusConflict, "User already exists")
	case errors.Is(err, storage.ErrOrderStatusChanged):
		respondMessage(w, log, http.StatusConflict, "Order status was changed by another request")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondMessage(w, log, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrInvalidStatusTransition):
		writeJSON(w, log, http.StatusBadRequest, Response{Message: "Invalid status transition", Errors: []string{err.Error()}})
	case errors.Is(err, service.ErrNoFiles):
		respondMessage(w, log, http.StatusBadRequest, "No file uploaded")
	case errors.Is(err, service.ErrTooManyFiles),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrUnsupportedMediaType):
		writeJSON(w, log, http.StatusBadRequest, Response{Message: "Error uploading file", Errors: []string{err.Error()}})
	default:
		log.Error("unhandled error", slog.Any("error", err))
		respondMessage(w, log, http.StatusInternalServerError, "Server Error")
	}
}

// decodeAndValidate читает JSON-тело в req и прогоняет теги validate.
func decodeAndValidate(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return service.NewValidationError("invalid request body", err.Error())
	}
	if err := requestValidator.Struct(req); err != nil {
		return service.NewValidationError("validation error", validate.Messages(err)...)
	}
	return nil
}

// pathID разбирает {id} из пути; кривой идентификатор — ошибка валидации.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, service.NewValidationError("invalid id", "id must be a valid identifier")
	}
	return id, nil
}
