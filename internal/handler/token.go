package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"upcheck/internal/token"
)

type TokenHandler struct {
	Tokens *token.Service
}

type loginBody struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *TokenHandler) Create(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Phone == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	tok, err := h.Tokens.Issue(c.Request.Context(), body.Phone, body.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

func (h *TokenHandler) Get(c *gin.Context) {
	tok, err := h.Tokens.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

func (h *TokenHandler) Extend(c *gin.Context) {
	if err := h.Tokens.Extend(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *TokenHandler) Delete(c *gin.Context) {
	if err := h.Tokens.Revoke(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
