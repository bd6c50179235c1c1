// Package main is the entry point for the Boutique API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/boutique/internal/auth"
	"github.com/pkordes/boutique/internal/config"
	"github.com/pkordes/boutique/internal/handler"
	"github.com/pkordes/boutique/internal/logging"
	"github.com/pkordes/boutique/internal/middleware"
	"github.com/pkordes/boutique/internal/notify"
	"github.com/pkordes/boutique/internal/ratelimit"
	"github.com/pkordes/boutique/internal/repo"
	"github.com/pkordes/boutique/internal/service"
	"github.com/pkordes/boutique/internal/storage"
	"github.com/pkordes/boutique/internal/validation"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger, logCloser := logging.New(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
		Service: "boutique-api",
	}, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
	logCloser.Close()
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("database connection established")

	// --- Collaborators ----------------------------------------------------
	images, err := storage.Open(ctx, cfg.UploadBucket, logger)
	if err != nil {
		return fmt.Errorf("open upload bucket: %w", err)
	}
	defer images.Close()

	creds, err := auth.NewCredentials(cfg.AdminUser, cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		return err
	}
	issuer, err := auth.NewIssuer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}

	limiter := ratelimit.New(cfg.LoginRate, cfg.LoginBurst)
	defer limiter.Stop()

	// --- Services ---------------------------------------------------------
	products := repo.NewProductRepo(pool)
	tags := repo.NewTagRepo(pool)
	orders := repo.NewOrderRepo(pool)

	categories := service.Categories(cfg.TagCategories)
	server := handler.NewServer(handler.Deps{
		Products:   service.NewProductService(products, images, categories, logger),
		Tags:       service.NewTagService(tags, categories),
		Orders:     service.NewOrderService(orders, products, notifier, logger),
		Export:     service.NewExportService(orders),
		Auth:       service.NewAuthService(creds, issuer),
		Storefront: service.NewStorefrontService(products),
		Images:     images,

		Validator:  validation.New(),
		Logger:     logger,
		LoginLimit: middleware.NewRateLimitHandler(limiter, retryAfter(cfg.LoginRate)),

		MaxBodyBytes:   cfg.MaxBodyBytes,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookies:  cfg.SecureCookies,
	})

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(reg)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP, which the
	// login rate limiter keys on.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(metrics.Handler)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout leaves room for image uploads and CSV exports.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newNotifier mails orders when SMTP is configured and logs them otherwise.
func newNotifier(cfg config.Config, logger *slog.Logger) (notify.Notifier, error) {
	if !cfg.SMTPEnabled() {
		logger.Warn("SMTP_HOST not set; order notifications will only be logged")
		return notify.NewLogNotifier(logger), nil
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		From:      cfg.MailFrom,
		Recipient: cfg.OrderRecipient,
	})
}

// retryAfter is the whole seconds until one more login token is available.
func retryAfter(rate float64) int {
	return int(math.Ceil(1 / rate))
}
