package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "golfwatch/internal/api/http"
	"golfwatch/internal/config"
	"golfwatch/internal/forecast"
	"golfwatch/internal/forecast/feed"
	"golfwatch/internal/notify"
	"golfwatch/internal/scheduler"
	"golfwatch/internal/settings"
	"golfwatch/internal/store"
	"golfwatch/internal/watch"
)

func main() {
	cfgPath := os.Getenv("GOLFWATCH_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Shared HTTP client for all outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Forecast source: local file takes precedence when configured.
	var source forecast.Source
	if cfg.Course.FeedFile != "" {
		source = feed.NewFileFeed(cfg.Course.FeedFile)
	} else {
		source = feed.NewJSONFeed(httpClient, cfg.Course.FeedURL)
	}

	memStore := store.NewMemoryStore()

	// Settings backend.
	var settingsStore settings.Store
	switch cfg.Settings.Backend {
	case "github":
		settingsStore = settings.NewGitHubStore(httpClient, settings.GitHubConfig{
			Repo:             cfg.Settings.GitHub.Repo,
			Path:             cfg.Settings.GitHub.Path,
			Branch:           cfg.Settings.GitHub.Branch,
			Token:            cfg.Settings.GitHub.Token,
			DefaultRecipient: cfg.Settings.DefaultRecipient,
		})
	default:
		sqliteStore, err := settings.NewSQLiteStore(cfg.Settings.SQLitePath, cfg.Settings.DefaultRecipient)
		if err != nil {
			log.Fatalf("failed to open settings store: %v", err)
		}
		defer sqliteStore.Close()
		settingsStore = sqliteStore
	}

	// Notification transports.
	var transports []notify.Transport
	if cfg.Notify.NtfyTopic != "" {
		transports = append(transports, notify.NewNtfyTransport(httpClient, cfg.Notify.NtfyBaseURL, cfg.Notify.NtfyTopic))
	}
	if cfg.Notify.SMTP.Host != "" {
		transports = append(transports, notify.NewEmailTransport(notify.EmailConfig{
			Host:     cfg.Notify.SMTP.Host,
			Port:     cfg.Notify.SMTP.Port,
			Username: cfg.Notify.SMTP.Username,
			Password: cfg.Notify.SMTP.Password,
			From:     cfg.Notify.SMTP.From,
			UseTLS:   cfg.Notify.SMTP.UseTLS,
		}))
	}
	dispatcher := notify.NewDispatcher(transports...)

	// Core service running the evaluation cycle.
	service := watch.NewService(source, cfg.ForecastRules(), memStore, settingsStore, dispatcher, cfg.Course.Name)

	// Warm up the cache so the API has a table before the first tick.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if _, err := service.RunCycle(ctx); err != nil {
			log.Printf("initial evaluation cycle failed: %v", err)
		}
	}()

	sched := scheduler.New(cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "golfwatch",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":  "ok",
			"service": "golfwatch",
		}
		if snap, err := service.Latest(); err == nil {
			resp["lastFetch"] = snap.FetchedAt
		}
		return c.JSON(resp)
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
