package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Seats and waitlist handlers

// GetSeatMap - GET /api/seats?event_id=N
// Карта зала со свободными и занятыми местами
func (h *Handlers) GetSeatMap(c *gin.Context) {
	eventID, ok := eventIDQuery(c)
	if !ok {
		return
	}

	response, err := h.services.Seats.SeatMap(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetAvailability - GET /api/seats/availability?event_id=N
func (h *Handlers) GetAvailability(c *gin.Context) {
	eventID, ok := eventIDQuery(c)
	if !ok {
		return
	}

	response, err := h.services.Seats.Availability(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetWaitlist - GET /api/waitlist?event_id=N
// Снимок очереди ожидания в порядке обслуживания
func (h *Handlers) GetWaitlist(c *gin.Context) {
	eventID, ok := eventIDQuery(c)
	if !ok {
		return
	}

	response, err := h.services.Seats.Waitlist(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func eventIDQuery(c *gin.Context) (int64, bool) {
	raw := c.Query("event_id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id is required"})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
		return 0, false
	}
	return id, true
}
