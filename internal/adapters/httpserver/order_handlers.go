package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmercado/shopapi/internal/domain"
)

type checkoutRequest struct {
	CartID        uint                 `json:"cart_id" binding:"required"`
	AddressID     uint                 `json:"address_id" binding:"required"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

func (s *Server) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := s.orders.CreateFromCart(c.Request.Context(), uintParam(c, "userID"), req.CartID, req.AddressID, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.orders.ListByUser(c.Request.Context(), uintParam(c, "userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := s.orders.Get(c.Request.Context(), uintParam(c, "userID"), uintParam(c, "orderID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) deleteOrder(c *gin.Context) {
	if err := s.orders.Delete(c.Request.Context(), uintParam(c, "userID"), uintParam(c, "orderID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type orderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := s.orders.UpdateStatus(c.Request.Context(), uintParam(c, "userID"), uintParam(c, "orderID"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type orderPaymentRequest struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status" binding:"required"`
	TransactionID string               `json:"transaction_id"`
}

func (s *Server) recordOrderPayment(c *gin.Context) {
	var req orderPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := s.orders.RecordPayment(c.Request.Context(), uintParam(c, "userID"), uintParam(c, "orderID"), req.PaymentStatus, req.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
