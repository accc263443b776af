package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openmercado/shopapi/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateFromCart is the commit point of a checkout: order + items go in,
// the cart gets linked to the order and the snapshotted lines come out. Only
// the item ids the caller snapshotted are deleted, so a line added to the
// cart while the checkout was in flight is kept and priced back into the
// cart total. One transaction end to end, cart row locked first.
func (r *OrderRepo) CreateFromCart(ctx context.Context, o *domain.Order, cartID uint, itemIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			var locked domain.Cart
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&locked, "id = ?", cartID).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		if len(itemIDs) > 0 {
			if err := tx.Where("cart_id = ? AND id IN ?", cartID, itemIDs).
				Delete(&domain.CartItem{}).Error; err != nil {
				return err
			}
		}
		var remaining []domain.CartItem
		if err := tx.Where("cart_id = ?", cartID).Find(&remaining).Error; err != nil {
			return err
		}
		total := decimal.Zero
		for _, it := range remaining {
			total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		return tx.Model(&domain.Cart{}).Where("id = ?", cartID).Updates(map[string]any{
			"order_id":     o.ID,
			"total_amount": total,
		}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: cart %d already has an order", domain.ErrConflict, cartID)
	}
	return err
}

func (r *OrderRepo) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID uint) ([]domain.Order, error) {
	var list []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("user_id = ?", userID).Order("id desc").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OrderRepo) Save(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(o).Error
}

func (r *OrderRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		// a cart may still point at this order
		if err := tx.Model(&domain.Cart{}).Where("order_id = ?", id).
			Update("order_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Order{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
