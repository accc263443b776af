package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCanceled   OrderStatus = "CANCELED"
	OrderStatusReturned   OrderStatus = "RETURNED"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodPix        PaymentMethod = "PIX"
	PaymentMethodBankSlip   PaymentMethod = "BANK_SLIP"
	PaymentMethodOther      PaymentMethod = "OTHER"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefused  PaymentStatus = "REFUSED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Order is the immutable result of a checkout. The delivery fields and the
// item snapshots are point-in-time copies; only Status, PaymentStatus and
// TransactionID evolve after creation.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"index;not null" json:"user_id"`
	CartID        *uint           `gorm:"uniqueIndex" json:"cart_id,omitempty"`
	Items         []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	OrderDate     time.Time       `gorm:"not null" json:"order_date"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null" json:"status"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	TransactionID string          `gorm:"size:140" json:"transaction_id,omitempty"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	DeliveryStreet       string `gorm:"size:180;not null" json:"delivery_street"`
	DeliveryNumber       string `gorm:"size:30" json:"delivery_number"`
	DeliveryComplement   string `gorm:"size:140" json:"delivery_complement"`
	DeliveryNeighborhood string `gorm:"size:140;not null" json:"delivery_neighborhood"`
	DeliveryCity         string `gorm:"size:140;not null" json:"delivery_city"`
	DeliveryState        string `gorm:"size:2;not null" json:"delivery_state"`
	DeliveryZipCode      string `gorm:"size:10;not null" json:"delivery_zip_code"`
	DeliveryCountry      string `gorm:"size:80;not null" json:"delivery_country"`
}

// OrderItem freezes what was bought. It is never re-synced with the live
// product.
type OrderItem struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	OrderID            uint            `gorm:"index;not null" json:"order_id"`
	ProductID          uint            `gorm:"not null" json:"product_id"`
	ProductName        string          `gorm:"size:180;not null" json:"product_name"`
	PurchasedPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"purchased_price"`
	ProductDescription string          `gorm:"type:text" json:"product_description"`
	ProductImageURL    string          `gorm:"size:2048" json:"product_image_url"`
	Quantity           int             `gorm:"not null" json:"quantity"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
}

type OrderRepo interface {
	// CreateFromCart persists the order with its items, links the cart to
	// it and removes exactly the cart lines named by itemIDs, as a single
	// transaction holding the cart row lock. Lines added to the cart after
	// the caller's snapshot survive, and the cart total is recomputed from
	// them. A failure anywhere leaves neither a partial order nor a
	// half-cleared cart.
	CreateFromCart(ctx context.Context, o *Order, cartID uint, itemIDs []uint) error
	FindByID(ctx context.Context, id uint) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	Save(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uint) error
}
