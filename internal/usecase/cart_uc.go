package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openmercado/shopapi/internal/domain"
)

// CartUC is the cart engine. Every mutating operation runs inside a single
// repo transaction with the cart row locked, and leaves the cart total equal
// to Σ(unit price × quantity) over the surviving items.
type CartUC struct {
	Carts    domain.CartRepo
	Products domain.ProductRepo
	Users    domain.UserRepo
}

// GetOrCreate returns the user's cart, creating an empty PENDING one on
// first access.
func (uc *CartUC) GetOrCreate(ctx context.Context, userID uint) (*domain.Cart, error) {
	if _, err := uc.Users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: user %d", errUnwrap(err), userID)
	}
	cart, err := uc.Carts.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	cart = &domain.Cart{
		UserID:      userID,
		Status:      domain.CartStatusPending,
		TotalAmount: decimal.Zero,
		Items:       []domain.CartItem{},
	}
	if err := uc.Carts.Create(ctx, cart); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// lost a create race; the winner's cart is the cart
			return uc.Carts.FindByUser(ctx, userID)
		}
		return nil, err
	}
	return cart, nil
}

// AddItem puts quantity units of the product into the cart. An existing line
// for the same product has its quantity incremented and keeps its recorded
// unit price; a new line captures the product's current price.
func (uc *CartUC) AddItem(ctx context.Context, userID, productID uint, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", domain.ErrInvalidArgument)
	}
	product, err := uc.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: product %d", errUnwrap(err), productID)
	}
	if _, err := uc.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	return uc.Carts.Mutate(ctx, userID, func(c *domain.Cart) error {
		if err := requirePending(c); err != nil {
			return err
		}
		if item := c.ItemForProduct(productID); item != nil {
			item.Quantity += quantity
		} else {
			c.Items = append(c.Items, domain.CartItem{
				ProductID: productID,
				Quantity:  quantity,
				UnitPrice: product.Price,
			})
		}
		c.RecomputeTotal()
		return nil
	})
}

// UpdateItemQuantity sets the line's quantity. Zero removes the line; any
// other value also refreshes the stored unit price from the product's
// current price. The price is never refreshed outside an explicit edit.
func (uc *CartUC) UpdateItemQuantity(ctx context.Context, userID, productID uint, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidArgument)
	}
	var product *domain.Product
	if quantity > 0 {
		var err error
		product, err = uc.Products.FindByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d", errUnwrap(err), productID)
		}
	}
	return uc.Carts.Mutate(ctx, userID, func(c *domain.Cart) error {
		if err := requirePending(c); err != nil {
			return err
		}
		item := c.ItemForProduct(productID)
		if item == nil {
			return fmt.Errorf("%w: product %d is not in the cart", domain.ErrNotFound, productID)
		}
		if quantity == 0 {
			c.Items = removeItem(c.Items, productID)
		} else {
			item.Quantity = quantity
			item.UnitPrice = product.Price
		}
		c.RecomputeTotal()
		return nil
	})
}

// RemoveItem drops the product's line from the cart.
func (uc *CartUC) RemoveItem(ctx context.Context, userID, productID uint) (*domain.Cart, error) {
	return uc.Carts.Mutate(ctx, userID, func(c *domain.Cart) error {
		if err := requirePending(c); err != nil {
			return err
		}
		if c.ItemForProduct(productID) == nil {
			return fmt.Errorf("%w: product %d is not in the cart", domain.ErrNotFound, productID)
		}
		c.Items = removeItem(c.Items, productID)
		c.RecomputeTotal()
		return nil
	})
}

// Clear empties the cart and zeroes the total.
func (uc *CartUC) Clear(ctx context.Context, userID uint) (*domain.Cart, error) {
	return uc.Carts.Mutate(ctx, userID, func(c *domain.Cart) error {
		if err := requirePending(c); err != nil {
			return err
		}
		c.Items = nil
		c.RecomputeTotal()
		return nil
	})
}

// UpdateStatus moves the cart through its lifecycle. COMPLETED and ABANDONED
// are terminal; completing requires payment instructions.
func (uc *CartUC) UpdateStatus(ctx context.Context, userID uint, status domain.CartStatus, paymentInstructions string) (*domain.Cart, error) {
	switch status {
	case domain.CartStatusPending, domain.CartStatusCompleted,
		domain.CartStatusAbandoned, domain.CartStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown cart status %q", domain.ErrInvalidArgument, status)
	}
	return uc.Carts.Mutate(ctx, userID, func(c *domain.Cart) error {
		if c.Status == domain.CartStatusCompleted || c.Status == domain.CartStatusAbandoned {
			return fmt.Errorf("%w: cart %d is already %s", domain.ErrInvalidArgument, c.ID, c.Status)
		}
		if status == domain.CartStatusCompleted {
			if strings.TrimSpace(paymentInstructions) == "" {
				return fmt.Errorf("%w: payment instructions are required to complete a cart", domain.ErrInvalidArgument)
			}
			c.PaymentInstructions = paymentInstructions
		} else {
			c.PaymentInstructions = ""
		}
		c.Status = status
		return nil
	})
}

func requirePending(c *domain.Cart) error {
	if c.Status != domain.CartStatusPending {
		return fmt.Errorf("%w: cart %d is %s, only PENDING carts can be modified", domain.ErrInvalidArgument, c.ID, c.Status)
	}
	return nil
}

func removeItem(items []domain.CartItem, productID uint) []domain.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

// errUnwrap keeps domain sentinels intact when re-wrapping with context and
// falls back to the original error otherwise.
func errUnwrap(err error) error {
	for _, sentinel := range []error{domain.ErrNotFound, domain.ErrInvalidArgument, domain.ErrConflict} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return err
}
