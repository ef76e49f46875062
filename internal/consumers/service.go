package consumers

import (
	"context"
	"log/slog"

	"kassa/internal/config"
	"kassa/internal/external"
	"kassa/internal/messaging"
	"kassa/internal/models"
	"kassa/internal/search"
)

// ConsumerService owns the NATS subscriptions that keep the booking search
// index current and deliver waitlist notifications.
type ConsumerService struct {
	nats     *messaging.NATSClient
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	// Индекс поиска (опционально)
	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		slog.Warn("Elasticsearch unavailable, booking index will not be maintained", "error", err)
		esClient = nil
	}

	// Вебхук уведомлений (опционально)
	var notifier *external.NotifierClient
	if cfg.Notifier.WebhookURL != "" {
		notifier = external.NewNotifierClient(cfg.Notifier)
	}

	return &ConsumerService{
		nats:     natsClient,
		handlers: NewHandlers(esClient, notifier),
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	if _, err := cs.nats.SubscribeQueue(models.EventBookingConfirmed, "consumers", cs.handlers.HandleBookingConfirmed); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventBookingCancelled, "consumers", cs.handlers.HandleBookingCancelled); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventWaitlistJoined, "consumers", cs.handlers.HandleWaitlistJoined); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventWaitlistPromoted, "consumers", cs.handlers.HandleWaitlistPromoted); err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
			return err
		}
	}

	return nil
}
