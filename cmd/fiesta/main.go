package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/fiesta-dev/fiesta/db"
	"github.com/fiesta-dev/fiesta/internal/auth"
	"github.com/fiesta-dev/fiesta/internal/config"
	"github.com/fiesta-dev/fiesta/internal/handlers"
	"github.com/fiesta-dev/fiesta/internal/notify"
	"github.com/fiesta-dev/fiesta/internal/planner"
	"github.com/fiesta-dev/fiesta/internal/router"
	"github.com/fiesta-dev/fiesta/internal/scheduler"
	"github.com/fiesta-dev/fiesta/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment")
	}

	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.Migrate(conn); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready")

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	hub := notify.NewHub()
	push := notify.NewPushClient(cfg.PushEndpoint, cfg.PushAPIKey)
	if !push.Enabled() {
		slog.Warn("PUSH_ENDPOINT not set, push delivery disabled")
	}
	dispatcher := notify.NewDispatcher(conn, push, hub)

	engine := planner.NewEngine(conn, dispatcher)

	reminders := scheduler.New(conn, dispatcher, cfg.ReminderInterval)
	reminders.Start()
	defer reminders.Stop()

	h := handlers.New(conn, engine, jwtManager, hub)
	r := router.NewRouter(h, jwtManager, conn)

	slog.Info("Server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
