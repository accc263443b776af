// Package httpserver exposes the store over a JSON REST API.
package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/openmercado/shopapi/internal/auth"
	"github.com/openmercado/shopapi/internal/domain"
	"github.com/openmercado/shopapi/internal/usecase"
)

type Server struct {
	products   *usecase.ProductUC
	categories *usecase.CategoryUC
	users      *usecase.UserUC
	carts      *usecase.CartUC
	orders     *usecase.OrderUC
	jwt        *auth.JWTService
}

func New(
	products *usecase.ProductUC,
	categories *usecase.CategoryUC,
	users *usecase.UserUC,
	carts *usecase.CartUC,
	orders *usecase.OrderUC,
	jwtSvc *auth.JWTService,
) *Server {
	return &Server{
		products:   products,
		categories: categories,
		users:      users,
		carts:      carts,
		orders:     orders,
		jwt:        jwtSvc,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.POST("/auth/login", s.login)

	api.GET("/products", s.listProducts)
	api.GET("/products/export", s.exportProducts)
	api.POST("/products", s.createProduct)
	api.GET("/products/:productID", s.getProduct)
	api.PUT("/products/:productID", s.updateProduct)
	api.DELETE("/products/:productID", s.deleteProduct)
	api.GET("/products/:productID/price-history", s.productPriceHistory)

	api.GET("/categories", s.listCategories)
	api.POST("/categories", s.createCategory)
	api.GET("/categories/:categoryID", s.getCategory)
	api.PUT("/categories/:categoryID", s.updateCategory)
	api.DELETE("/categories/:categoryID", s.deleteCategory)

	api.GET("/users", s.listUsers)
	api.POST("/users", s.createUser)
	api.GET("/users/:userID", s.getUser)
	api.PUT("/users/:userID", s.updateUser)
	api.DELETE("/users/:userID", s.deleteUser)
	api.POST("/users/:userID/addresses", s.addAddress)
	api.PUT("/users/:userID/addresses/:addressID", s.updateAddress)

	api.GET("/users/:userID/cart", s.getCart)
	api.POST("/users/:userID/cart/items", s.addCartItem)
	api.PUT("/users/:userID/cart/items/:productID", s.updateCartItem)
	api.DELETE("/users/:userID/cart/items/:productID", s.removeCartItem)
	api.DELETE("/users/:userID/cart/items", s.clearCart)
	api.PUT("/users/:userID/cart/status", s.updateCartStatus)

	api.POST("/users/:userID/checkout", s.checkout)
	api.GET("/users/:userID/orders", s.listOrders)
	api.GET("/users/:userID/orders/:orderID", s.getOrder)
	api.DELETE("/users/:userID/orders/:orderID", s.deleteOrder)
	api.PATCH("/users/:userID/orders/:orderID/status", s.requireAuth, s.updateOrderStatus)
	api.PATCH("/users/:userID/orders/:orderID/payment", s.requireAuth, s.recordOrderPayment)

	return r
}

// respondError translates the domain taxonomy into HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
		return
	}
	claims, err := s.jwt.ValidateToken(strings.TrimPrefix(header, prefix))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.Set("claims", claims)
	c.Next()
}

// uintParam parses a numeric path segment; a malformed id reads as 0, which
// no row ever has, so lookups fall through to not-found.
func uintParam(c *gin.Context, name string) uint {
	v, _ := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(v)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}
