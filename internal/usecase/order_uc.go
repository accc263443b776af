package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openmercado/shopapi/internal/domain"
)

// OrderUC owns the checkout conversion and the order store.
type OrderUC struct {
	Orders    domain.OrderRepo
	Carts     domain.CartRepo
	Users     domain.UserRepo
	Products  domain.ProductRepo
	Addresses domain.AddressRepo
}

// CreateFromCart snapshots the user's cart into an immutable order and
// empties the cart. The caller supplies the cart id it believes it is
// checking out; a mismatch with the user's actual cart means the client is
// acting on stale state and the request is rejected.
func (uc *OrderUC) CreateFromCart(ctx context.Context, userID, cartID, deliveryAddressID uint, method domain.PaymentMethod) (*domain.Order, error) {
	user, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d", errUnwrap(err), userID)
	}
	cart, err := uc.Carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d has no cart", errUnwrap(err), userID)
	}
	if cart.ID != cartID {
		return nil, fmt.Errorf("%w: cart id %d does not match the user's cart", domain.ErrInvalidArgument, cartID)
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrInvalidArgument)
	}
	addr, err := uc.Addresses.FindByID(ctx, deliveryAddressID)
	if err != nil {
		return nil, fmt.Errorf("%w: address %d", errUnwrap(err), deliveryAddressID)
	}
	if addr.UserID != user.ID {
		return nil, fmt.Errorf("%w: address %d does not belong to user %d", domain.ErrInvalidArgument, deliveryAddressID, userID)
	}
	if method == "" {
		method = domain.PaymentMethodOther
	}

	order := &domain.Order{
		UserID:        user.ID,
		CartID:        &cart.ID,
		OrderDate:     time.Now(),
		Status:        domain.OrderStatusPending,
		PaymentMethod: method,
		PaymentStatus: domain.PaymentStatusPending,
		TotalAmount:   cart.TotalAmount,

		DeliveryStreet:       addr.Street,
		DeliveryNumber:       addr.Number,
		DeliveryComplement:   addr.Complement,
		DeliveryNeighborhood: addr.Neighborhood,
		DeliveryCity:         addr.City,
		DeliveryState:        addr.State,
		DeliveryZipCode:      addr.ZipCode,
		DeliveryCountry:      addr.Country,
	}
	itemIDs := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, err := uc.Products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d", errUnwrap(err), item.ProductID)
		}
		order.Items = append(order.Items, snapshotItem(product, item.Quantity))
		itemIDs = append(itemIDs, item.ID)
	}

	if err := uc.Orders.CreateFromCart(ctx, order, cart.ID, itemIDs); err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser returns the user's orders, newest first.
func (uc *OrderUC) ListByUser(ctx context.Context, userID uint) ([]domain.Order, error) {
	if _, err := uc.Users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: user %d", errUnwrap(err), userID)
	}
	return uc.Orders.ListByUser(ctx, userID)
}

// Get returns the order iff it belongs to the user.
func (uc *OrderUC) Get(ctx context.Context, userID, orderID uint) (*domain.Order, error) {
	order, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order %d", errUnwrap(err), orderID)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %d does not belong to user %d", domain.ErrNotFound, orderID, userID)
	}
	return order, nil
}

func (uc *OrderUC) UpdateStatus(ctx context.Context, userID, orderID uint, status domain.OrderStatus) (*domain.Order, error) {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusProcessing, domain.OrderStatusShipped,
		domain.OrderStatusDelivered, domain.OrderStatusCanceled, domain.OrderStatusReturned:
	default:
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidArgument, status)
	}
	order, err := uc.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	order.Status = status
	if err := uc.Orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// RecordPayment updates the payment outcome. When the gateway gave us no
// transaction id one is minted so the payment stays traceable.
func (uc *OrderUC) RecordPayment(ctx context.Context, userID, orderID uint, status domain.PaymentStatus, transactionID string) (*domain.Order, error) {
	switch status {
	case domain.PaymentStatusPending, domain.PaymentStatusPaid,
		domain.PaymentStatusRefused, domain.PaymentStatusRefunded:
	default:
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidArgument, status)
	}
	order, err := uc.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if transactionID == "" {
		transactionID = uuid.NewString()
	}
	order.PaymentStatus = status
	order.TransactionID = transactionID
	if err := uc.Orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (uc *OrderUC) Delete(ctx context.Context, userID, orderID uint) error {
	if _, err := uc.Get(ctx, userID, orderID); err != nil {
		return err
	}
	return uc.Orders.Delete(ctx, orderID)
}

// snapshotItem freezes the product as sold: current price, name, description
// and image at checkout time, with subtotal = price × quantity.
func snapshotItem(p *domain.Product, quantity int) domain.OrderItem {
	return domain.OrderItem{
		ProductID:          p.ID,
		ProductName:        p.Name,
		PurchasedPrice:     p.Price,
		ProductDescription: p.Description,
		ProductImageURL:    p.ImageURL,
		Quantity:           quantity,
		Subtotal:           p.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
