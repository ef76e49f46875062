package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"kassa/internal/config"
	"kassa/internal/database"
	"kassa/internal/logger"
	"kassa/internal/models"
	"kassa/internal/repository"
	"kassa/internal/store"
)

var (
	numUsers   = flag.Int("users", 20, "Number of demo users to seed")
	numEvents  = flag.Int("events", 3, "Number of demo events to write to the snapshot")
	skipUsers  = flag.Bool("skip-users", false, "Do not touch the user directory")
	skipEvents = flag.Bool("skip-events", false, "Do not write the events snapshot")
	dryRun     = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

var eventNames = []string{
	"Симфонический вечер",
	"Рок-фестиваль",
	"Стендап-концерт",
	"Балет",
	"Джазовый квартет",
	"Опера",
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting demo data generator...", "users", *numUsers, "events", *numEvents)

	if !*skipUsers {
		if err := seedUsers(cfg, *numUsers); err != nil {
			slog.Error("Failed to seed users", "error", err)
			os.Exit(1)
		}
	}

	if !*skipEvents {
		if err := seedEvents(cfg, *numEvents); err != nil {
			slog.Error("Failed to seed events", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Demo data generation completed successfully!")
}

func seedUsers(cfg *config.Config, n int) error {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	users := repository.NewUserRepository(db)
	ctx := context.Background()

	for i := 1; i <= n; i++ {
		username := fmt.Sprintf("user%d", i)
		// Пароль совпадает с логином, это демо-данные
		hash := sha256.Sum256([]byte(username))

		user := &models.User{
			Username:     username,
			DisplayName:  fmt.Sprintf("Демо пользователь %d", i),
			Email:        fmt.Sprintf("%s@example.com", username),
			Phone:        fmt.Sprintf("+7700%07d", rand.Intn(10000000)),
			PasswordHash: fmt.Sprintf("%x", hash),
			RegisteredAt: time.Now(),
			IsActive:     true,
		}

		if *dryRun {
			slog.Info("Would create user", "username", user.Username, "email", user.Email)
			continue
		}

		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user %s: %w", username, err)
		}
	}

	slog.Info("Seeded user directory", "count", n)
	return nil
}

func seedEvents(cfg *config.Config, n int) error {
	st, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}

	existing, err := st.LoadEvents()
	if err != nil {
		return fmt.Errorf("failed to load existing snapshot: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("Events snapshot already present, leaving it alone", "events", len(existing))
		return nil
	}

	configs := make([]models.EventConfig, 0, n)
	for i := 0; i < n; i++ {
		cfg := models.EventConfig{
			Name:      eventNames[i%len(eventNames)],
			BasePrice: float64(100 * (1 + rand.Intn(10))),
			Rows:      5 + rand.Intn(10),
			Cols:      8 + rand.Intn(12),
			Date:      time.Now().AddDate(0, 0, 7+i).Format("2006-01-02"),
			Time:      "19:00",
		}
		if rand.Intn(2) == 0 {
			cfg.DiscountCode = "EARLYBIRD"
			cfg.DiscountPercent = 10 + 5*rand.Intn(4)
		}
		configs = append(configs, cfg)

		if *dryRun {
			slog.Info("Would create event", "name", cfg.Name, "rows", cfg.Rows, "cols", cfg.Cols, "base_price", cfg.BasePrice)
		}
	}

	if *dryRun {
		return nil
	}

	if err := st.SaveEvents(configs); err != nil {
		return fmt.Errorf("failed to write events snapshot: %w", err)
	}

	slog.Info("Seeded events snapshot", "count", n, "path", st.EventsPath())
	return nil
}
