package service

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrUnsupportedMediaType    = errors.New("only image files are allowed")
	ErrFileTooLarge            = errors.New("file is too large")
	ErrNoFiles                 = errors.New("no file uploaded")
	ErrTooManyFiles            = errors.New("too many files")
)

// ValidationError — некорректный или неполный ввод; Errors перечисляет все нарушения.
type ValidationError struct {
	Message string
	Errors  []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Errors, "; ")
}

// NewValidationError создаёт ValidationError с общим сообщением и списком нарушений
func NewValidationError(message string, errs ...string) *ValidationError {
	return &ValidationError{Message: message, Errors: errs}
}

// StockError собирает все проблемы с наличием товаров в одном заказе.
type StockError struct {
	Items []string
}

func (e *StockError) Error() string {
	return "some items are out of stock: " + strings.Join(e.Items, "; ")
}
