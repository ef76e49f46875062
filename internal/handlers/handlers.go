package handlers

import (
	"errors"
	"net/http"

	apperrors "kassa/internal/errors"
	"kassa/internal/middleware"
	"kassa/internal/models"
	"kassa/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// respondError maps a service error to an HTTP status. Precondition
// violations are invariant breaches and surface as 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// identity reads the authenticated identity set by the auth middleware.
func identity(c *gin.Context) (models.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.Username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return models.Identity{}, false
	}
	return id, true
}
