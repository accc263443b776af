package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartStatusPending   CartStatus = "PENDING"
	CartStatusCompleted CartStatus = "COMPLETED"
	CartStatusAbandoned CartStatus = "ABANDONED"
	CartStatusCancelled CartStatus = "CANCELLED"
)

// Cart is the per-user order-in-progress. Items are exclusively owned:
// clearing the cart or deleting it removes them. Mutations are only legal
// while the status is PENDING.
type Cart struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	UserID              uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Items               []CartItem      `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_amount"`
	Status              CartStatus      `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	PaymentInstructions string          `gorm:"type:text" json:"payment_instructions,omitempty"`
	OrderID             *uint           `gorm:"index" json:"order_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// CartItem records the unit price the product had when it entered the cart.
// The stored price is refreshed only when the quantity is explicitly edited,
// never when the live product price changes on its own.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartID    uint            `gorm:"index;not null" json:"cart_id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
}

// ItemForProduct returns the cart's line for productID, or nil.
func (c *Cart) ItemForProduct(productID uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// RecomputeTotal sets TotalAmount to Σ(unit price × quantity) over the
// current items, in decimal arithmetic.
func (c *Cart) RecomputeTotal() {
	total := decimal.Zero
	for i := range c.Items {
		line := c.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity)))
		total = total.Add(line)
	}
	c.TotalAmount = total
}

type CartRepo interface {
	Create(ctx context.Context, c *Cart) error
	// FindByUser loads the user's cart with its items.
	FindByUser(ctx context.Context, userID uint) (*Cart, error)
	// Mutate loads and locks the user's cart, applies fn to it, then
	// persists the surviving items, deletes the dropped ones and writes the
	// cart row back, all inside one transaction. The updated cart is
	// returned on success.
	Mutate(ctx context.Context, userID uint, fn func(c *Cart) error) (*Cart, error)
}
