package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyClient caches read-heavy per-event views (seat map, availability).
// Entries are invalidated on every booking commit and cancellation, so the
// cache is only ever a bounded-staleness copy of the engine state.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	TTL      time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 30 * time.Second
	}

	slog.Info("Connected to Valkey", "addr", cfg.Addr, "ttl", ttl)
	return &ValkeyClient{client: client, ttl: ttl}, nil
}

func seatMapKey(eventID int64) string      { return fmt.Sprintf("seatmap:%d", eventID) }
func availabilityKey(eventID int64) string { return fmt.Sprintf("availability:%d", eventID) }

// GetSeatMapRaw returns the cached seat-map JSON for the event, or an error
// on miss. Raw bytes avoid a decode/encode round trip in the handler.
func (c *ValkeyClient) GetSeatMapRaw(ctx context.Context, eventID int64) ([]byte, error) {
	return c.client.Get(ctx, seatMapKey(eventID)).Bytes()
}

func (c *ValkeyClient) SetSeatMap(ctx context.Context, eventID int64, v any) {
	c.set(ctx, seatMapKey(eventID), v)
}

func (c *ValkeyClient) GetAvailabilityRaw(ctx context.Context, eventID int64) ([]byte, error) {
	return c.client.Get(ctx, availabilityKey(eventID)).Bytes()
}

func (c *ValkeyClient) SetAvailability(ctx context.Context, eventID int64, v any) {
	c.set(ctx, availabilityKey(eventID), v)
}

func (c *ValkeyClient) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal cache entry", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Error("Failed to set cache entry", "key", key, "error", err)
	}
}

// InvalidateEvent drops every cached view of the event. Called after each
// commit/cancel, outside the event lock.
func (c *ValkeyClient) InvalidateEvent(ctx context.Context, eventID int64) {
	if err := c.client.Del(ctx, seatMapKey(eventID), availabilityKey(eventID)).Err(); err != nil {
		slog.Error("Failed to invalidate event cache", "event_id", eventID, "error", err)
	}
}

func (c *ValkeyClient) Close() error {
	return c.client.Close()
}
