package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmercado/shopapi/internal/domain"
)

func (s *Server) getCart(c *gin.Context) {
	cart, err := s.carts.GetOrCreate(c.Request.Context(), uintParam(c, "userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type addItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart, err := s.carts.AddItem(c.Request.Context(), uintParam(c, "userID"), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type updateItemRequest struct {
	// Pointer so an explicit zero survives binding; zero removes the line.
	Quantity *int `json:"quantity" binding:"required"`
}

func (s *Server) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart, err := s.carts.UpdateItemQuantity(c.Request.Context(), uintParam(c, "userID"), uintParam(c, "productID"), *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (s *Server) removeCartItem(c *gin.Context) {
	cart, err := s.carts.RemoveItem(c.Request.Context(), uintParam(c, "userID"), uintParam(c, "productID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (s *Server) clearCart(c *gin.Context) {
	cart, err := s.carts.Clear(c.Request.Context(), uintParam(c, "userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type cartStatusRequest struct {
	Status              domain.CartStatus `json:"status" binding:"required"`
	PaymentInstructions string            `json:"payment_instructions"`
}

func (s *Server) updateCartStatus(c *gin.Context) {
	var req cartStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart, err := s.carts.UpdateStatus(c.Request.Context(), uintParam(c, "userID"), req.Status, req.PaymentInstructions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
