package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/openmercado/shopapi/internal/adapters/httpserver"
	"github.com/openmercado/shopapi/internal/adapters/repo/postgres"
	"github.com/openmercado/shopapi/internal/auth"
	"github.com/openmercado/shopapi/internal/domain"
	"github.com/openmercado/shopapi/internal/usecase"
)

type App struct {
	DB         *gorm.DB
	ProductUC  *usecase.ProductUC
	CategoryUC *usecase.CategoryUC
	UserUC     *usecase.UserUC
	CartUC     *usecase.CartUC
	OrderUC    *usecase.OrderUC
	JWT        *auth.JWTService
}

func NewApp(db *gorm.DB) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	catRepo := postgres.NewCategoryRepo(db)
	userRepo := postgres.NewUserRepo(db)
	addrRepo := postgres.NewAddressRepo(db)
	cartRepo := postgres.NewCartRepo(db)
	orderRepo := postgres.NewOrderRepo(db)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	expiry := 24 * time.Hour
	if raw := os.Getenv("JWT_EXPIRY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
		}
		expiry = d
	}

	app := &App{
		DB:         db,
		ProductUC:  &usecase.ProductUC{Products: prodRepo, Categories: catRepo},
		CategoryUC: &usecase.CategoryUC{Categories: catRepo},
		UserUC:     &usecase.UserUC{Users: userRepo, Addresses: addrRepo},
		CartUC:     &usecase.CartUC{Carts: cartRepo, Products: prodRepo, Users: userRepo},
		OrderUC: &usecase.OrderUC{
			Orders:    orderRepo,
			Carts:     cartRepo,
			Users:     userRepo,
			Products:  prodRepo,
			Addresses: addrRepo,
		},
		JWT: auth.NewJWTService(secret, expiry),
	}
	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	srv := httpserver.New(a.ProductUC, a.CategoryUC, a.UserUC, a.CartUC, a.OrderUC, a.JWT)
	return srv.Router()
}

func (a *App) Migrate() error {
	return a.DB.AutoMigrate(
		&domain.Category{}, &domain.Product{}, &domain.PriceHistory{},
		&domain.User{}, &domain.Phone{}, &domain.Email{}, &domain.Address{},
		&domain.Cart{}, &domain.CartItem{},
		&domain.Order{}, &domain.OrderItem{},
	)
}

// Seed loads a small demo catalog. It only runs against an empty product
// table, so restarting a seeded instance is a no-op.
func (a *App) Seed() error {
	ctx := context.Background()
	var n int64
	if err := a.DB.Model(&domain.Product{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	peripherals := &domain.Category{Name: "Peripherals"}
	audio := &domain.Category{Name: "Audio"}
	for _, c := range []*domain.Category{peripherals, audio} {
		if err := a.CategoryUC.Create(ctx, c); err != nil {
			return err
		}
	}

	demo := []*domain.Product{
		{Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Price: decimal.RequireFromString("129.90"), CategoryID: &peripherals.ID},
		{Name: "Wireless Mouse", Description: "2.4GHz, six buttons", Price: decimal.RequireFromString("59.90"), CategoryID: &peripherals.ID},
		{Name: "USB Headset", Description: "Closed back, boom mic", Price: decimal.RequireFromString("89.90"), CategoryID: &audio.ID},
	}
	for _, p := range demo {
		if _, err := a.ProductUC.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
