package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openmercado/shopapi/internal/adapters/repo/postgres"
	"github.com/openmercado/shopapi/internal/auth"
	"github.com/openmercado/shopapi/internal/domain"
	"github.com/openmercado/shopapi/internal/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var testDBSeq atomic.Int64

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	dsn := fmt.Sprintf("file:httptest%d?mode=memory&cache=shared", testDBSeq.Add(1))
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

	prodRepo := postgres.NewProductRepo(db)
	catRepo := postgres.NewCategoryRepo(db)
	userRepo := postgres.NewUserRepo(db)
	addrRepo := postgres.NewAddressRepo(db)
	cartRepo := postgres.NewCartRepo(db)
	orderRepo := postgres.NewOrderRepo(db)

	srv := New(
		&usecase.ProductUC{Products: prodRepo, Categories: catRepo},
		&usecase.CategoryUC{Categories: catRepo},
		&usecase.UserUC{Users: userRepo, Addresses: addrRepo},
		&usecase.CartUC{Carts: cartRepo, Products: prodRepo, Users: userRepo},
		&usecase.OrderUC{
			Orders:    orderRepo,
			Carts:     cartRepo,
			Users:     userRepo,
			Products:  prodRepo,
			Addresses: addrRepo,
		},
		auth.NewJWTService("test-secret", time.Hour),
	)
	return srv.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createTestUser(t *testing.T, r *gin.Engine, email, username string) uint {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/users", gin.H{
		"primary_email": email,
		"username":      username,
		"password":      "s3cret-pass",
		"full_name":     "Test User",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode(t, w)["id"].(float64))
}

func createTestProduct(t *testing.T, r *gin.Engine, name, price string) uint {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/products", gin.H{
		"name":  name,
		"price": price,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode(t, w)["id"].(float64))
}

func createTestAddress(t *testing.T, r *gin.Engine, userID uint) uint {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/users/%d/addresses", userID), gin.H{
		"street":       "Rua das Flores",
		"number":       "100",
		"neighborhood": "Centro",
		"city":         "Sao Paulo",
		"state":        "SP",
		"zip_code":     "01000-000",
		"country":      "Brazil",
		"is_primary":   true,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode(t, w)["id"].(float64))
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProductEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/products", gin.H{"price": "10.00"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := createTestProduct(t, r, "Keyboard", "10.00")

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Keyboard", decode(t, w)["name"])

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/products/%d", id), gin.H{
		"name":  "Keyboard",
		"price": "12.50",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/products/%d/price-history", id), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history, 2)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w), "error")
}

func TestProductExport(t *testing.T) {
	r := newTestRouter(t)
	createTestProduct(t, r, "Keyboard", "10.00")

	w := doJSON(t, r, http.MethodGet, "/api/products/export", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestUserConflictMapsTo409(t *testing.T) {
	r := newTestRouter(t)
	createTestUser(t, r, "alice@test.com", "alice")

	w := doJSON(t, r, http.MethodPost, "/api/users", gin.H{
		"primary_email": "alice@test.com",
		"username":      "alice2",
		"password":      "s3cret-pass",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w), "error")
}

func TestCartFlow(t *testing.T) {
	r := newTestRouter(t)
	userID := createTestUser(t, r, "alice@test.com", "alice")
	productID := createTestProduct(t, r, "Keyboard", "10.00")

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/users/%d/cart", userID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PENDING", decode(t, w)["status"])

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/users/%d/cart/items", userID), gin.H{
		"product_id": productID,
		"quantity":   2,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "20", decode(t, w)["total_amount"])

	// quantity zero removes the line
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/users/%d/cart/items/%d", userID, productID), gin.H{
		"quantity": 0,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "0", decode(t, w)["total_amount"])

	// missing quantity fails binding
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/users/%d/cart/items/%d", userID, productID), gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/users/%d/cart/status", userID), gin.H{
		"status": "ABANDONED",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ABANDONED", decode(t, w)["status"])

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/users/%d/cart/items", userID), gin.H{
		"product_id": productID,
		"quantity":   1,
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutAndOrderAuth(t *testing.T) {
	r := newTestRouter(t)
	userID := createTestUser(t, r, "buyer@test.com", "buyer")
	addressID := createTestAddress(t, r, userID)
	productID := createTestProduct(t, r, "Keyboard", "10.00")

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/users/%d/cart/items", userID), gin.H{
		"product_id": productID,
		"quantity":   2,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	cartID := uint(decode(t, w)["id"].(float64))

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/users/%d/checkout", userID), gin.H{
		"cart_id":    cartID,
		"address_id": addressID,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(t, w)
	orderID := uint(order["id"].(float64))
	assert.Equal(t, "OTHER", order["payment_method"])
	assert.Equal(t, "20", order["total_amount"])

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/users/%d/orders", userID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)

	statusPath := fmt.Sprintf("/api/users/%d/orders/%d/status", userID, orderID)

	// status changes need a token
	w = doJSON(t, r, http.MethodPatch, statusPath, gin.H{"status": "SHIPPED"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "buyer@test.com",
		"password": "wrong-pass",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "buyer@test.com",
		"password": "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = doJSON(t, r, http.MethodPatch, statusPath, gin.H{"status": "SHIPPED"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "SHIPPED", decode(t, w)["status"])

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/users/%d/orders/%d/payment", userID, orderID), gin.H{
		"payment_status": "PAID",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode(t, w)
	assert.Equal(t, "PAID", paid["payment_status"])
	assert.NotEmpty(t, paid["transaction_id"])
}
