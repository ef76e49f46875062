package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type NotifierConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// NotifierClient delivers waitlist promotion notices to an external webhook.
// Delivery is best-effort: consumers log failures and never retry the NATS
// message just because the webhook is down.
type NotifierClient struct {
	webhookURL string
	httpClient *http.Client
}

// PromotionNotice is the payload posted to the webhook when a queued group
// gets seats after a cancellation.
type PromotionNotice struct {
	EventID       int64    `json:"eventId"`
	Username      string   `json:"username"`
	Phone         string   `json:"phone,omitempty"`
	Email         string   `json:"email,omitempty"`
	BookingID     string   `json:"bookingId"`
	Seats         []string `json:"seats"`
	TotalPrice    float64  `json:"totalPrice"`
	SeatsStillDue int      `json:"seatsStillDue,omitempty"`
	Timestamp     int64    `json:"timestamp"`
}

func NewNotifierClient(cfg NotifierConfig) *NotifierClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &NotifierClient{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NotifyPromotion posts the notice to the configured webhook.
func (c *NotifierClient) NotifyPromotion(ctx context.Context, notice PromotionNotice) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal promotion notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post promotion notice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	slog.Debug("Delivered promotion notice",
		"event_id", notice.EventID,
		"username", notice.Username,
		"booking_id", notice.BookingID)
	return nil
}
