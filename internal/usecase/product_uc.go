package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openmercado/shopapi/internal/domain"
)

type ProductUC struct {
	Products   domain.ProductRepo
	Categories domain.CategoryRepo
}

// Create persists the product and immediately appends one price-history
// entry equal to its initial price.
func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := uc.validate(ctx, p); err != nil {
		return nil, err
	}
	h := &domain.PriceHistory{Price: p.Price, ChangedAt: time.Now()}
	if err := uc.Products.CreateWithHistory(ctx, p, h); err != nil {
		return nil, err
	}
	p.PriceHistory = []domain.PriceHistory{*h}
	return p, nil
}

// Update overwrites the product's mutable fields. Iff the price changed, one
// history entry with the new price is appended in the same transaction;
// history itself is never edited or reordered.
func (uc *ProductUC) Update(ctx context.Context, id uint, details *domain.Product) (*domain.Product, error) {
	existing, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: product %d", errUnwrap(err), id)
	}
	if err := uc.validate(ctx, details); err != nil {
		return nil, err
	}
	var h *domain.PriceHistory
	if !existing.Price.Equal(details.Price) {
		h = &domain.PriceHistory{Price: details.Price, ChangedAt: time.Now()}
	}
	existing.Name = details.Name
	existing.Description = details.Description
	existing.Price = details.Price
	existing.ImageURL = details.ImageURL
	existing.CategoryID = details.CategoryID
	if err := uc.Products.SaveWithHistory(ctx, existing, h); err != nil {
		return nil, err
	}
	return existing, nil
}

func (uc *ProductUC) Get(ctx context.Context, id uint) (*domain.Product, error) {
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: product %d", errUnwrap(err), id)
	}
	return p, nil
}

func (uc *ProductUC) List(ctx context.Context) ([]domain.Product, error) {
	return uc.Products.List(ctx)
}

func (uc *ProductUC) Delete(ctx context.Context, id uint) error {
	return uc.Products.Delete(ctx, id)
}

// History returns the product's price log in insertion order.
func (uc *ProductUC) History(ctx context.Context, id uint) ([]domain.PriceHistory, error) {
	if _, err := uc.Products.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("%w: product %d", errUnwrap(err), id)
	}
	return uc.Products.History(ctx, id)
}

func (uc *ProductUC) validate(ctx context.Context, p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", domain.ErrInvalidArgument)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidArgument)
	}
	if p.CategoryID != nil {
		if _, err := uc.Categories.FindByID(ctx, *p.CategoryID); err != nil {
			return fmt.Errorf("%w: category %d", errUnwrap(err), *p.CategoryID)
		}
	}
	return nil
}

type CategoryUC struct {
	Categories domain.CategoryRepo
}

func (uc *CategoryUC) Create(ctx context.Context, c *domain.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", domain.ErrInvalidArgument)
	}
	return uc.Categories.Save(ctx, c)
}

func (uc *CategoryUC) Update(ctx context.Context, id uint, name string) (*domain.Category, error) {
	c, err := uc.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: category %d", errUnwrap(err), id)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalidArgument)
	}
	c.Name = name
	if err := uc.Categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *CategoryUC) Get(ctx context.Context, id uint) (*domain.Category, error) {
	c, err := uc.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: category %d", errUnwrap(err), id)
	}
	return c, nil
}

func (uc *CategoryUC) List(ctx context.Context) ([]domain.Category, error) {
	return uc.Categories.List(ctx)
}

func (uc *CategoryUC) Delete(ctx context.Context, id uint) error {
	return uc.Categories.Delete(ctx, id)
}
