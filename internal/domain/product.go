package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:180;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	ImageURL     string          `gorm:"size:2048" json:"image_url"`
	CategoryID   *uint           `gorm:"index" json:"category_id,omitempty"`
	PriceHistory []PriceHistory  `gorm:"constraint:OnDelete:CASCADE" json:"price_history,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PriceHistory rows are append-only: one row per price mutation, stamped at
// the time the mutation happened. They die with their product.
type PriceHistory struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	ChangedAt time.Time       `json:"changed_at"`
}

type Category struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"size:140;not null" json:"name"`
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

type ProductRepo interface {
	// CreateWithHistory persists the product and its initial history entry
	// in one transaction.
	CreateWithHistory(ctx context.Context, p *Product, h *PriceHistory) error
	// SaveWithHistory persists field changes; when h is non-nil it is
	// appended in the same transaction.
	SaveWithHistory(ctx context.Context, p *Product, h *PriceHistory) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Delete(ctx context.Context, id uint) error
	History(ctx context.Context, productID uint) ([]PriceHistory, error)
}

type CategoryRepo interface {
	Save(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id uint) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Delete(ctx context.Context, id uint) error
}
