package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openmercado/shopapi/internal/adapters/repo/postgres"
	"github.com/openmercado/shopapi/internal/domain"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:uctest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Category{}, &domain.Product{}, &domain.PriceHistory{},
		&domain.User{}, &domain.Phone{}, &domain.Email{}, &domain.Address{},
		&domain.Cart{}, &domain.CartItem{},
		&domain.Order{}, &domain.OrderItem{},
	))
	return db
}

type testEnv struct {
	db         *gorm.DB
	products   *ProductUC
	categories *CategoryUC
	users      *UserUC
	carts      *CartUC
	orders     *OrderUC
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	prodRepo := postgres.NewProductRepo(db)
	catRepo := postgres.NewCategoryRepo(db)
	userRepo := postgres.NewUserRepo(db)
	addrRepo := postgres.NewAddressRepo(db)
	cartRepo := postgres.NewCartRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	return &testEnv{
		db:         db,
		products:   &ProductUC{Products: prodRepo, Categories: catRepo},
		categories: &CategoryUC{Categories: catRepo},
		users:      &UserUC{Users: userRepo, Addresses: addrRepo},
		carts:      &CartUC{Carts: cartRepo, Products: prodRepo, Users: userRepo},
		orders: &OrderUC{
			Orders:    orderRepo,
			Carts:     cartRepo,
			Users:     userRepo,
			Products:  prodRepo,
			Addresses: addrRepo,
		},
	}
}

func (e *testEnv) seedUser(t *testing.T, email, username string) *domain.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), NewUserInput{
		PrimaryEmail: email,
		Username:     username,
		Password:     "s3cret-pass",
		FullName:     "Test User",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) seedProduct(t *testing.T, name, price string) *domain.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), &domain.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) seedAddress(t *testing.T, userID uint, primary bool) *domain.Address {
	t.Helper()
	a, err := e.users.AddAddress(context.Background(), userID, &domain.Address{
		Street:       "Rua das Flores",
		Number:       "100",
		Neighborhood: "Centro",
		City:         "Sao Paulo",
		State:        "SP",
		ZipCode:      "01000-000",
		Country:      "Brazil",
		IsPrimary:    primary,
	})
	require.NoError(t, err)
	return a
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)),
		"want amount %s, got %s", want, got.String())
}
