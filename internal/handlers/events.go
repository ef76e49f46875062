package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"kassa/internal/models"

	"github.com/gin-gonic/gin"
)

// Events handlers

// CreateEvent - POST /api/events
// Создать событие
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Events.Create(c.Request.Context(), &req)
	if err != nil {
		slog.Error("Failed to create event", "error", err, "name", req.Name)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListEvents - GET /api/events
// Список событий
func (h *Handlers) ListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Events.List(c.Request.Context()))
}

// GetEvent - GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		return
	}

	response, err := h.services.Events.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ChangeEventPrice - PATCH /api/events/:id/price
// Изменить базовую цену билета
func (h *Handlers) ChangeEventPrice(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		return
	}

	var req models.ChangePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Events.ChangePrice(c.Request.Context(), id, &req); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteEvent - DELETE /api/events/:id
func (h *Handlers) DeleteEvent(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		return
	}

	if err := h.services.Events.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// EventAnalytics - GET /api/events/analytics
// Сводная аналитика по всем событиям
func (h *Handlers) EventAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Events.Analytics(c.Request.Context()))
}

func eventIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return 0, err
	}
	return id, nil
}
