package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"upcheck/internal/account"
	"upcheck/internal/model"
	"upcheck/internal/registry"
	"upcheck/internal/storage"
	"upcheck/internal/token"
)

// fail maps a service error onto the HTTP boundary. Store failures and index
// inconsistencies surface as 500s; they are never masked as success.
func fail(c *gin.Context, err error) {
	var partial *registry.PartialFailureError
	switch {
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, registry.ErrQuotaExceeded),
		errors.Is(err, account.ErrExists),
		errors.Is(err, token.ErrInvalidCredential),
		errors.Is(err, token.ErrExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, registry.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &partial):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Some checks could not be deleted",
			"failedIds": partial.FailedIDs,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
