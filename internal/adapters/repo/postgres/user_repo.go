package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/openmercado/shopapi/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	u.PrimaryEmail = strings.ToLower(strings.TrimSpace(u.PrimaryEmail))
	err := r.db.WithContext(ctx).Omit("Phones", "Emails", "Addresses", "Cart", "Orders").Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	u.PrimaryEmail = strings.ToLower(strings.TrimSpace(u.PrimaryEmail))
	err := r.db.WithContext(ctx).Omit("Phones", "Emails", "Addresses", "Cart", "Orders").Save(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Preload("Phones").Preload("Emails").Preload("Addresses").Preload("Cart.Items").
		First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByPrimaryEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	e := strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).First(&u, "primary_email = ?", e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var list []domain.User
	if err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orderIDs []uint
		if err := tx.Model(&domain.Order{}).Where("user_id = ?", id).
			Pluck("id", &orderIDs).Error; err != nil {
			return err
		}
		if len(orderIDs) > 0 {
			if err := tx.Where("order_id IN ?", orderIDs).Delete(&domain.OrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", orderIDs).Delete(&domain.Order{}).Error; err != nil {
				return err
			}
		}
		var cart domain.Cart
		if err := tx.First(&cart, "user_id = ?", id).Error; err == nil {
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&cart).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		for _, m := range []any{&domain.Phone{}, &domain.Email{}, &domain.Address{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&domain.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// EmailInUse treats users.primary_email and emails.address as one namespace,
// which is what makes a primary/secondary collision detectable before the
// unique indexes reject the write.
func (r *UserRepo) EmailInUse(ctx context.Context, address string, excludeUserID uint) (bool, error) {
	e := strings.ToLower(strings.TrimSpace(address))
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("primary_email = ? AND id <> ?", e, excludeUserID).Count(&n).Error
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	err = r.db.WithContext(ctx).Model(&domain.Email{}).
		Where("address = ? AND user_id <> ?", e, excludeUserID).Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReplaceContacts implements the update-by-replacement semantics for nested
// contact collections: everything the user owns is dropped and recreated
// from the payload. When several incoming addresses claim the primary flag
// only the last one keeps it.
func (r *UserRepo) ReplaceContacts(ctx context.Context, userID uint, phones []domain.Phone, emails []domain.Email, addresses []domain.Address) error {
	lastPrimary := -1
	for i := range addresses {
		if addresses[i].IsPrimary {
			lastPrimary = i
		}
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&domain.Phone{}, &domain.Email{}, &domain.Address{}} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}
		for i := range phones {
			phones[i].ID = 0
			phones[i].UserID = userID
			if err := tx.Create(&phones[i]).Error; err != nil {
				return err
			}
		}
		for i := range emails {
			emails[i].ID = 0
			emails[i].UserID = userID
			emails[i].Address = strings.ToLower(strings.TrimSpace(emails[i].Address))
			if err := tx.Create(&emails[i]).Error; err != nil {
				return err
			}
		}
		for i := range addresses {
			addresses[i].ID = 0
			addresses[i].UserID = userID
			addresses[i].IsPrimary = i == lastPrimary
			if err := tx.Create(&addresses[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

type AddressRepo struct{ db *gorm.DB }

func NewAddressRepo(db *gorm.DB) *AddressRepo { return &AddressRepo{db: db} }

func (r *AddressRepo) Create(ctx context.Context, a *domain.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.IsPrimary {
			if err := demoteOtherPrimaries(tx, a.UserID, 0); err != nil {
				return err
			}
		}
		return tx.Create(a).Error
	})
}

func (r *AddressRepo) Save(ctx context.Context, a *domain.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.IsPrimary {
			if err := demoteOtherPrimaries(tx, a.UserID, a.ID); err != nil {
				return err
			}
		}
		return tx.Save(a).Error
	})
}

func (r *AddressRepo) FindByID(ctx context.Context, id uint) (*domain.Address, error) {
	var a domain.Address
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AddressRepo) ListByUser(ctx context.Context, userID uint) ([]domain.Address, error) {
	var list []domain.Address
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func demoteOtherPrimaries(tx *gorm.DB, userID, keepID uint) error {
	return tx.Model(&domain.Address{}).
		Where("user_id = ? AND is_primary = ? AND id <> ?", userID, true, keepID).
		Update("is_primary", false).Error
}
