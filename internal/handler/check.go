package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"upcheck/internal/middleware"
	"upcheck/internal/model"
	"upcheck/internal/registry"
)

type CheckHandler struct {
	Registry *registry.Registry
}

type checkBody struct {
	Protocol       string `json:"protocol"`
	URL            string `json:"url"`
	Method         string `json:"method"`
	SuccessCodes   []int  `json:"successCodes"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

func (h *CheckHandler) Create(c *gin.Context) {
	phone, ok := middleware.PhoneFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Missing required token in header or token invalid"})
		return
	}

	var body checkBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	chk, err := h.Registry.Create(c.Request.Context(), phone, model.Check{
		Protocol:       body.Protocol,
		URL:            body.URL,
		Method:         body.Method,
		SuccessCodes:   body.SuccessCodes,
		TimeoutSeconds: body.TimeoutSeconds,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chk)
}

func (h *CheckHandler) Get(c *gin.Context) {
	phone, ok := middleware.PhoneFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Missing required token in header or token invalid"})
		return
	}

	chk, err := h.Registry.Read(c.Request.Context(), phone, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chk)
}

func (h *CheckHandler) Update(c *gin.Context) {
	phone, ok := middleware.PhoneFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Missing required token in header or token invalid"})
		return
	}

	var patch registry.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	chk, err := h.Registry.Update(c.Request.Context(), phone, c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chk)
}

func (h *CheckHandler) Delete(c *gin.Context) {
	phone, ok := middleware.PhoneFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Missing required token in header or token invalid"})
		return
	}

	if err := h.Registry.Delete(c.Request.Context(), phone, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
