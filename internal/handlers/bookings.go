package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"kassa/internal/models"

	"github.com/gin-gonic/gin"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
// Забронировать места
func (h *Handlers) CreateBooking(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req models.BookSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Bookings.Book(c.Request.Context(), id, c.GetString("display_name"), &req)
	if err != nil {
		slog.Error("Failed to create booking", "error", err, "username", id.Username)
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if response.Status != models.StatusConfirmed {
		// Ничего не зафиксировано, запрос в очереди или требует решения
		status = http.StatusOK
	}
	c.JSON(status, response)
}

// QuoteBooking - POST /api/bookings/quote
// Предпросмотр цены без бронирования
func (h *Handlers) QuoteBooking(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Bookings.Quote(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListBookings - GET /api/bookings
// Брони текущего пользователя
func (h *Handlers) ListBookings(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.services.Bookings.ListFor(c.Request.Context(), id.Username))
}

// CancelBookings - PATCH /api/bookings/cancel
// Отменить выбранные брони
func (h *Handlers) CancelBookings(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req models.CancelBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Bookings.Cancel(c.Request.Context(), id, &req)
	if err != nil {
		slog.Error("Failed to cancel bookings", "error", err, "username", id.Username)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CancelBookingByID - PATCH /api/bookings/:id/cancel
// Административная отмена одной брони по идентификатору
func (h *Handlers) CancelBookingByID(c *gin.Context) {
	bookingID := c.Param("id")
	if bookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id required"})
		return
	}

	response, err := h.services.Bookings.CancelByID(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchBookings - GET /api/bookings/search
// Поиск броней в индексе
func (h *Handlers) SearchBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	response, err := h.services.Bookings.Search(
		c.Request.Context(),
		c.Query("booking_id"),
		c.Query("username"),
		c.Query("phone"),
		c.Query("query"),
		page, pageSize,
	)
	if err != nil {
		slog.Error("Failed to search bookings", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
