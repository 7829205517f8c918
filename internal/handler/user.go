package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"upcheck/internal/account"
	"upcheck/internal/middleware"
)

type UserHandler struct {
	Accounts *account.Service
}

func (h *UserHandler) Create(c *gin.Context) {
	var body account.NewUser
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.Accounts.Create(c.Request.Context(), body)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ownerPhone extracts the :phone path param and rejects the request unless it
// matches the authenticated token's owner.
func ownerPhone(c *gin.Context) (string, bool) {
	phone := c.Param("phone")
	authPhone, ok := middleware.PhoneFromContext(c)
	if !ok || phone != authPhone {
		c.JSON(http.StatusForbidden, gin.H{"error": "Missing required token in header or token invalid"})
		return "", false
	}
	return phone, true
}

func (h *UserHandler) Get(c *gin.Context) {
	phone, ok := ownerPhone(c)
	if !ok {
		return
	}

	user, err := h.Accounts.Get(c.Request.Context(), phone)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	phone, ok := ownerPhone(c)
	if !ok {
		return
	}

	var body account.Patch
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.Accounts.Update(c.Request.Context(), phone, body); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) Delete(c *gin.Context) {
	phone, ok := ownerPhone(c)
	if !ok {
		return
	}

	if err := h.Accounts.Delete(c.Request.Context(), phone); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
