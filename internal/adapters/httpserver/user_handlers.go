package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmercado/shopapi/internal/domain"
	"github.com/openmercado/shopapi/internal/usecase"
)

type userRequest struct {
	PrimaryEmail string           `json:"primary_email" binding:"required"`
	Username     string           `json:"username" binding:"required"`
	Password     string           `json:"password"`
	FullName     string           `json:"full_name"`
	Phones       []domain.Phone   `json:"phones"`
	Emails       []domain.Email   `json:"emails"`
	Addresses    []domain.Address `json:"addresses"`
}

func (s *Server) createUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.users.Create(c.Request.Context(), usecase.NewUserInput{
		PrimaryEmail: req.PrimaryEmail,
		Username:     req.Username,
		Password:     req.Password,
		FullName:     req.FullName,
		Phones:       req.Phones,
		Emails:       req.Emails,
		Addresses:    req.Addresses,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// updateUser replaces scalar fields and swaps the contact collections
// wholesale for the payload's ones. Omitting phones/emails/addresses from
// the body therefore deletes them.
func (s *Server) updateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.users.Update(c.Request.Context(), uintParam(c, "userID"), usecase.UpdateUserInput{
		PrimaryEmail: req.PrimaryEmail,
		Username:     req.Username,
		Password:     req.Password,
		FullName:     req.FullName,
		Phones:       req.Phones,
		Emails:       req.Emails,
		Addresses:    req.Addresses,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.Get(c.Request.Context(), uintParam(c, "userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.users.Delete(c.Request.Context(), uintParam(c, "userID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addAddress(c *gin.Context) {
	var a domain.Address
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := s.users.AddAddress(c.Request.Context(), uintParam(c, "userID"), &a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateAddress(c *gin.Context) {
	var a domain.Address
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := s.users.UpdateAddress(c.Request.Context(), uintParam(c, "userID"), uintParam(c, "addressID"), &a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
