package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"kassa/internal/config"
	"kassa/internal/logger"
	"kassa/internal/models"
	"kassa/internal/search"
	"kassa/internal/store"
)

// Rebuilds the Elasticsearch booking index from the on-disk snapshot. Used
// after index loss or mapping changes; the snapshot is the source of truth.
func main() {
	var batchLog int
	flag.IntVar(&batchLog, "log-every", 100, "Log progress every N documents")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting booking index rebuild", "dir", cfg.Store.Dir, "index", cfg.Elasticsearch.Index)

	st, err := store.New(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}

	configs, err := st.LoadEvents()
	if err != nil {
		log.Fatalf("Failed to load events snapshot: %v", err)
	}
	bookings, err := st.LoadBookings()
	if err != nil {
		log.Fatalf("Failed to load bookings snapshot: %v", err)
	}

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		log.Fatalf("Failed to connect to Elasticsearch: %v", err)
	}

	// Events get sequential ids from 1 in snapshot order, same as the API
	// process assigns them on restore.
	names := make(map[int64]string, len(configs))
	for i, c := range configs {
		names[int64(i+1)] = c.Name
	}

	ctx := context.Background()
	indexed := 0
	for _, b := range bookings {
		doc := models.BookingDoc{
			DocID:       b.BookingID + "-" + b.Seat.Label(),
			BookingID:   b.BookingID,
			EventID:     b.EventID,
			EventName:   names[b.EventID],
			Username:    b.Username,
			DisplayName: b.DisplayName,
			Phone:       b.Phone,
			Email:       b.Email,
			SeatLabel:   b.Seat.Label(),
			Row:         b.Seat.Row,
			Col:         b.Seat.Col,
			PricePaid:   b.PricePaid,
			BookedAt:    b.BookedAt,
			GroupSize:   b.GroupSize,
		}

		indexCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		err := esClient.IndexDocs(indexCtx, []models.BookingDoc{doc})
		cancel()
		if err != nil {
			log.Fatalf("Failed to index %s: %v", doc.DocID, err)
		}

		indexed++
		if batchLog > 0 && indexed%batchLog == 0 {
			slog.Info("Reindex progress", "indexed", indexed, "total", len(bookings))
		}
	}

	slog.Info("Booking index rebuild completed", "indexed", indexed, "events", len(configs))
}
