package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category — допустимые категории каталога
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategoryHome        Category = "Home"
	CategoryOther       Category = "Other"
)

// DefaultImageURL подставляется, если администратор не передал картинку
const DefaultImageURL = "https://via.placeholder.com/150"

// Product представляет товар каталога
type Product struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user"` // администратор, создавший товар
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"money"`
	Category    Category        `json:"category" validate:"required,oneof=Electronics Clothing Books Home Other"`
	Stock       int             `json:"stock" validate:"gte=0,lte=2147483647"`
	ImageURL    string          `json:"imageUrl" validate:"required,url"`
	Images      []string        `json:"images" validate:"dive,url"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
