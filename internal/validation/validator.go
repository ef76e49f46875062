package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"kassa/internal/models"
)

// SpecValidator - сквозная проверка работающего API: событие, цена,
// бронирование, отмена, повторное использование мест
type SpecValidator struct {
	baseURL  string
	client   *http.Client
	username string
	password string
}

// NewSpecValidator создает новый валидатор
func NewSpecValidator(baseURL string) *SpecValidator {
	return &SpecValidator{
		baseURL:  baseURL,
		client:   &http.Client{},
		username: "validator",
		password: "validator",
	}
}

// RunValidation запускает валидацию с настройками по умолчанию
func RunValidation() {
	baseURL := os.Getenv("VALIDATE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8081"
	}

	log.Printf("Starting API validation against: %s", baseURL)

	validator := NewSpecValidator(baseURL)
	if err := validator.ValidateAll(); err != nil {
		log.Fatalf("Валидация не пройдена: %v", err)
	}

	log.Println("Валидация успешно пройдена")
}

// ValidateAll проверяет полный жизненный цикл бронирования
func (v *SpecValidator) ValidateAll() error {
	log.Println("Начинаю сквозную проверку API...")

	eventID, err := v.validateEventLifecycle()
	if err != nil {
		return fmt.Errorf("events validation failed: %w", err)
	}

	bookingID, err := v.validateBookingFlow(eventID)
	if err != nil {
		return fmt.Errorf("bookings validation failed: %w", err)
	}

	if err := v.validateCancellation(eventID, bookingID); err != nil {
		return fmt.Errorf("cancellation validation failed: %w", err)
	}

	log.Println("Все проверки пройдены")
	return nil
}

func (v *SpecValidator) validateEventLifecycle() (int64, error) {
	log.Println("Проверяю Events endpoints...")

	var created models.CreateEventResponse
	err := v.do("POST", "/api/events", models.CreateEventRequest{
		Name:      "Проверочное событие",
		BasePrice: 100,
		Rows:      3,
		Cols:      4,
	}, http.StatusCreated, &created)
	if err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("created event has no id")
	}

	var list models.ListEventsResponse
	if err := v.do("GET", "/api/events", nil, http.StatusOK, &list); err != nil {
		return 0, err
	}
	found := false
	for _, item := range list {
		if item.ID == created.ID {
			found = true
		}
	}
	if !found {
		return 0, fmt.Errorf("event %d missing from list", created.ID)
	}

	return created.ID, nil
}

func (v *SpecValidator) validateBookingFlow(eventID int64) (string, error) {
	log.Println("Проверяю Bookings endpoints...")

	var quote models.QuoteResponse
	err := v.do("POST", "/api/bookings/quote", models.QuoteRequest{
		EventID:  eventID,
		NumSeats: 2,
	}, http.StatusOK, &quote)
	if err != nil {
		return "", err
	}
	if quote.TotalPrice != quote.PricePerSeat*2 {
		return "", fmt.Errorf("quote total %.2f does not match per-seat %.2f", quote.TotalPrice, quote.PricePerSeat)
	}

	var booked models.BookSeatsResponse
	err = v.do("POST", "/api/bookings", models.BookSeatsRequest{
		EventID:  eventID,
		NumSeats: 2,
		Mode:     models.ModeAuto,
	}, http.StatusCreated, &booked)
	if err != nil {
		return "", err
	}
	if booked.Status != models.StatusConfirmed || len(booked.Seats) != 2 {
		return "", fmt.Errorf("unexpected booking outcome %+v", booked)
	}

	var avail models.AvailabilityResponse
	path := fmt.Sprintf("/api/seats/availability?event_id=%d", eventID)
	if err := v.do("GET", path, nil, http.StatusOK, &avail); err != nil {
		return "", err
	}
	if avail.BookedSeats < 2 {
		return "", fmt.Errorf("availability does not reflect booking: %+v", avail)
	}

	return booked.BookingID, nil
}

func (v *SpecValidator) validateCancellation(eventID int64, bookingID string) error {
	log.Println("Проверяю отмену бронирования...")

	var mine []models.MyBookingItem
	if err := v.do("GET", "/api/bookings", nil, http.StatusOK, &mine); err != nil {
		return err
	}

	refs := make([]models.BookingRefRequest, 0, 2)
	for _, b := range mine {
		if b.BookingID == bookingID {
			refs = append(refs, models.BookingRefRequest{BookingID: b.BookingID, Seat: b.Seat})
		}
	}
	if len(refs) == 0 {
		return fmt.Errorf("booking %s not visible in listing", bookingID)
	}

	var cancelled models.CancelBookingsResponse
	err := v.do("PATCH", "/api/bookings/cancel", models.CancelBookingsRequest{
		EventID: eventID,
		Refs:    refs,
	}, http.StatusOK, &cancelled)
	if err != nil {
		return err
	}
	if len(cancelled.CancelledSeats) != len(refs) {
		return fmt.Errorf("cancelled %d of %d seats", len(cancelled.CancelledSeats), len(refs))
	}
	if cancelled.RefundedTotal <= 0 {
		return fmt.Errorf("refund not reported")
	}

	return nil
}

func (v *SpecValidator) do(method, path string, body interface{}, wantStatus int, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, v.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(v.username, v.password)

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s %s returned %d, expected %d", method, path, resp.StatusCode, wantStatus)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}
