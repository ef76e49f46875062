package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kassa/internal/engine"
	"kassa/internal/middleware"
	"kassa/internal/models"
	"kassa/internal/service"
	"kassa/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRouter wires the real engine and services behind the API routes.
// External collaborators (DB, NATS, Valkey, Elasticsearch) stay nil, so
// auth passes through and messaging is a no-op.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New(store.Config{Dir: t.TempDir()})
	require.NoError(t, err)

	services := service.NewServices(service.Deps{
		Engine: engine.New(engine.NewRegistry()),
		Store:  st,
	})
	h := NewHandlers(services)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.BasicAuth(nil))
	{
		events := api.Group("/events")
		{
			events.POST("", h.CreateEvent)
			events.GET("", h.ListEvents)
			events.GET("/analytics", h.EventAnalytics)
			events.GET("/:id", h.GetEvent)
			events.PATCH("/:id/price", h.ChangeEventPrice)
			events.DELETE("/:id", h.DeleteEvent)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.POST("/quote", h.QuoteBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/search", h.SearchBookings)
			bookings.PATCH("/cancel", h.CancelBookings)
			bookings.PATCH("/:id/cancel", h.CancelBookingByID)
		}

		seats := api.Group("/seats")
		{
			seats.GET("", h.GetSeatMap)
			seats.GET("/availability", h.GetAvailability)
		}

		api.GET("/waitlist", h.GetWaitlist)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.SetBasicAuth(user, "password")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func createEvent(t *testing.T, r *gin.Engine, rows, cols int) int64 {
	t.Helper()
	w := doJSON(t, r, "POST", "/api/events", "admin", models.CreateEventRequest{
		Name:            "Концерт",
		BasePrice:       100,
		Rows:            rows,
		Cols:            cols,
		DiscountCode:    "SAVE10",
		DiscountPercent: 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.CreateEventResponse](t, w).ID
}

func TestAuthRequired(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "GET", "/api/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndListEvents(t *testing.T) {
	r := setupRouter(t)
	id := createEvent(t, r, 3, 4)

	w := doJSON(t, r, "GET", "/api/events", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[models.ListEventsResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "Концерт", list[0].Name)
	assert.Equal(t, 0.0, list[0].OccupancyPercent)
}

func TestCreateEventValidationError(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "POST", "/api/events", "admin", models.CreateEventRequest{
		Name: "bad", BasePrice: 100, Rows: 30, Cols: 4,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingLifecycle(t *testing.T) {
	r := setupRouter(t)
	id := createEvent(t, r, 2, 3)

	// Quote first.
	w := doJSON(t, r, "POST", "/api/bookings/quote", "alice", models.QuoteRequest{
		EventID: id, NumSeats: 2, DiscountCode: "SAVE10",
	})
	require.Equal(t, http.StatusOK, w.Code)
	quote := decode[models.QuoteResponse](t, w)
	assert.Equal(t, 90.0, quote.PricePerSeat)
	assert.Equal(t, 180.0, quote.TotalPrice)

	// Book auto.
	w = doJSON(t, r, "POST", "/api/bookings", "alice", models.BookSeatsRequest{
		EventID: id, NumSeats: 2, DiscountCode: "SAVE10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booked := decode[models.BookSeatsResponse](t, w)
	assert.Equal(t, models.StatusConfirmed, booked.Status)
	assert.Equal(t, []string{"A1", "A2"}, booked.Seats)
	assert.Equal(t, 180.0, booked.TotalPrice)

	// Listing shows both seats.
	w = doJSON(t, r, "GET", "/api/bookings", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]models.MyBookingItem](t, w)
	require.Len(t, mine, 2)
	assert.Equal(t, booked.BookingID, mine[0].BookingID)

	// Availability reflects the booking.
	w = doJSON(t, r, "GET", "/api/seats/availability?event_id=1", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	avail := decode[models.AvailabilityResponse](t, w)
	assert.Equal(t, 6, avail.TotalSeats)
	assert.Equal(t, 2, avail.BookedSeats)
	assert.Equal(t, 4, avail.AvailableSeats)

	// Cancel one seat.
	w = doJSON(t, r, "PATCH", "/api/bookings/cancel", "alice", models.CancelBookingsRequest{
		EventID: id,
		Refs:    []models.BookingRefRequest{{BookingID: booked.BookingID, Seat: "A1"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled := decode[models.CancelBookingsResponse](t, w)
	assert.Equal(t, []string{"A1"}, cancelled.CancelledSeats)
	assert.InDelta(t, 90.0*0.875, cancelled.RefundedTotal, 1e-9)
}

func TestManualBookingWithSeatLabels(t *testing.T) {
	r := setupRouter(t)
	id := createEvent(t, r, 2, 3)

	w := doJSON(t, r, "POST", "/api/bookings", "bob", models.BookSeatsRequest{
		EventID: id, NumSeats: 2, Seats: []string{"B1", "B3"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booked := decode[models.BookSeatsResponse](t, w)
	assert.Equal(t, []string{"B1", "B3"}, booked.Seats)

	// Second attempt on a taken seat conflicts.
	w = doJSON(t, r, "POST", "/api/bookings", "carol", models.BookSeatsRequest{
		EventID: id, NumSeats: 1, Seats: []string{"B1"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Garbage label is a bad request.
	w = doJSON(t, r, "POST", "/api/bookings", "carol", models.BookSeatsRequest{
		EventID: id, NumSeats: 1, Seats: []string{"nope"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShortfallDecisionFlow(t *testing.T) {
	r := setupRouter(t)
	id := createEvent(t, r, 1, 3)

	w := doJSON(t, r, "POST", "/api/bookings", "alice", models.BookSeatsRequest{
		EventID: id, NumSeats: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// No policy: shortfall surfaces as a decision point, nothing committed.
	w = doJSON(t, r, "POST", "/api/bookings", "bob", models.BookSeatsRequest{
		EventID: id, NumSeats: 2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[models.BookSeatsResponse](t, w)
	assert.Equal(t, models.StatusShortfall, out.Status)
	assert.Equal(t, 1, out.AvailableSeats)

	// Retry with a policy.
	w = doJSON(t, r, "POST", "/api/bookings", "bob", models.BookSeatsRequest{
		EventID: id, NumSeats: 2, ShortfallPolicy: models.ShortfallBookPartial,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	out = decode[models.BookSeatsResponse](t, w)
	assert.Equal(t, models.StatusConfirmed, out.Status)
	assert.Len(t, out.Seats, 1)
	assert.Equal(t, 1, out.QueuedSeats)

	// The remainder shows up on the waitlist.
	w = doJSON(t, r, "GET", "/api/waitlist?event_id=1", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	wl := decode[models.WaitlistResponse](t, w)
	require.Equal(t, 1, wl.Waiting)
	assert.Equal(t, "bob", wl.Entries[0].Username)
	assert.Equal(t, 1, wl.Entries[0].RequestedSeats)
}

func TestCancelPromotesWaiter(t *testing.T) {
	r := setupRouter(t)
	id := createEvent(t, r, 1, 2)

	w := doJSON(t, r, "POST", "/api/bookings", "alice", models.BookSeatsRequest{
		EventID: id, NumSeats: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	booked := decode[models.BookSeatsResponse](t, w)

	w = doJSON(t, r, "POST", "/api/bookings", "bob", models.BookSeatsRequest{
		EventID: id, NumSeats: 1, ShortfallPolicy: models.ShortfallQueueAll,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "PATCH", "/api/bookings/cancel", "alice", models.CancelBookingsRequest{
		EventID: id,
		Refs:    []models.BookingRefRequest{{BookingID: booked.BookingID, Seat: "A1"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled := decode[models.CancelBookingsResponse](t, w)
	require.NotNil(t, cancelled.ReassignedWaiter)
	assert.Equal(t, "bob", cancelled.ReassignedWaiter.Username)
	assert.Equal(t, []string{"A1"}, cancelled.ReassignedWaiter.Seats)
}

func TestCancelByID(t *testing.T) {
	r := setupRouter(t)
	id := createEvent(t, r, 1, 2)

	w := doJSON(t, r, "POST", "/api/bookings", "alice", models.BookSeatsRequest{
		EventID: id, NumSeats: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	booked := decode[models.BookSeatsResponse](t, w)

	w = doJSON(t, r, "PATCH", "/api/bookings/"+booked.BookingID+"/cancel", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[models.CancelByIDResponse](t, w)
	assert.True(t, out.Removed)
	assert.Equal(t, "A1", out.SeatFreed)

	w = doJSON(t, r, "PATCH", "/api/bookings/BK404-E9-0/cancel", "admin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelForeignBookingFails(t *testing.T) {
	r := setupRouter(t)
	id := createEvent(t, r, 1, 2)

	w := doJSON(t, r, "POST", "/api/bookings", "alice", models.BookSeatsRequest{
		EventID: id, NumSeats: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	booked := decode[models.BookSeatsResponse](t, w)

	w = doJSON(t, r, "PATCH", "/api/bookings/cancel", "mallory", models.CancelBookingsRequest{
		EventID: id,
		Refs:    []models.BookingRefRequest{{BookingID: booked.BookingID, Seat: "A1"}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeatMap(t *testing.T) {
	r := setupRouter(t)
	id := createEvent(t, r, 2, 2)

	w := doJSON(t, r, "POST", "/api/bookings", "alice", models.BookSeatsRequest{
		EventID: id, NumSeats: 1, Seats: []string{"B2"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "GET", "/api/seats?event_id=1", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sm := decode[models.SeatMapResponse](t, w)
	require.Len(t, sm.SeatMap, 2)
	assert.Equal(t, "A", sm.SeatMap[0].RowLabel)
	assert.Equal(t, []string{"A1", "A2"}, sm.SeatMap[0].Free)
	assert.Empty(t, sm.SeatMap[0].Booked)
	assert.Equal(t, []string{"B1"}, sm.SeatMap[1].Free)
	assert.Equal(t, []string{"B2"}, sm.SeatMap[1].Booked)

	w = doJSON(t, r, "GET", "/api/seats", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "GET", "/api/seats?event_id=42", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventPriceAndDelete(t *testing.T) {
	r := setupRouter(t)
	createEvent(t, r, 2, 2)

	w := doJSON(t, r, "PATCH", "/api/events/1/price", "admin", models.ChangePriceRequest{BasePrice: 250})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/api/events/1", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	item := decode[models.ListEventsResponseItem](t, w)
	assert.Equal(t, 250.0, item.BasePrice)

	w = doJSON(t, r, "DELETE", "/api/events/1", "admin", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, "GET", "/api/events/1", "admin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalytics(t *testing.T) {
	r := setupRouter(t)
	id := createEvent(t, r, 1, 4)

	w := doJSON(t, r, "POST", "/api/bookings", "alice", models.BookSeatsRequest{
		EventID: id, NumSeats: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "GET", "/api/events/analytics", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	a := decode[models.AnalyticsResponse](t, w)
	require.Len(t, a.Events, 1)
	assert.Equal(t, 1, a.Events[0].TotalBookings)
	assert.Equal(t, 2, a.Events[0].SeatsBooked)
	assert.Equal(t, 200.0, a.TotalRevenue)
	assert.Equal(t, "Концерт", a.MostPopularEvent)
}

func TestSearchUnavailableWithoutElasticsearch(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "GET", "/api/bookings/search?username=alice", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
