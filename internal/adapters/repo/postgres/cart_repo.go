package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openmercado/shopapi/internal/domain"
)

type CartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) Create(ctx context.Context, c *domain.Cart) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *CartRepo) FindByUser(ctx context.Context, userID uint) (*domain.Cart, error) {
	var c domain.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&c, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Mutate runs fn against the user's cart under a row lock so two concurrent
// mutations of the same cart cannot interleave item writes. SQLite has no
// FOR UPDATE; there the transaction itself serializes.
func (r *CartRepo) Mutate(ctx context.Context, userID uint, fn func(c *domain.Cart) error) (*domain.Cart, error) {
	var out *domain.Cart
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var cart domain.Cart
		if err := q.First(&cart, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Order("id asc").Find(&cart.Items).Error; err != nil {
			return err
		}

		if err := fn(&cart); err != nil {
			return err
		}

		kept := make([]uint, 0, len(cart.Items))
		for i := range cart.Items {
			item := &cart.Items[i]
			item.CartID = cart.ID
			if err := tx.Save(item).Error; err != nil {
				return err
			}
			kept = append(kept, item.ID)
		}
		del := tx.Where("cart_id = ?", cart.ID)
		if len(kept) > 0 {
			del = del.Where("id NOT IN ?", kept)
		}
		if err := del.Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&cart).Updates(map[string]any{
			"total_amount":         cart.TotalAmount,
			"status":               cart.Status,
			"payment_instructions": cart.PaymentInstructions,
		}).Error; err != nil {
			return err
		}
		out = &cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
