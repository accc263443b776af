package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openmercado/shopapi/internal/domain"
)

func newAppDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestNewAppRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := NewApp(newAppDB(t, "appsecret"))
	assert.Error(t, err)
}

func TestMigrateAndSeed(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newAppDB(t, "appseed")
	a, err := NewApp(db)
	require.NoError(t, err)
	require.NoError(t, a.Migrate())
	require.NoError(t, a.Seed())

	var products, history, categories int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&domain.PriceHistory{}).Count(&history).Error)
	require.NoError(t, db.Model(&domain.Category{}).Count(&categories).Error)
	assert.NotZero(t, products)
	assert.NotZero(t, categories)
	assert.Equal(t, products, history)

	// seeding a non-empty catalog is a no-op
	require.NoError(t, a.Seed())
	var again int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&again).Error)
	assert.Equal(t, products, again)

	assert.NotNil(t, a.HTTPHandler())
}
