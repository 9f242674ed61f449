package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/co2-offset-dashboard/internal/api/http"
	"github.com/i474232898/co2-offset-dashboard/internal/catalog"
	"github.com/i474232898/co2-offset-dashboard/internal/config"
	"github.com/i474232898/co2-offset-dashboard/internal/environment"
	"github.com/i474232898/co2-offset-dashboard/internal/environment/providers"
	"github.com/i474232898/co2-offset-dashboard/internal/logging"
	"github.com/i474232898/co2-offset-dashboard/internal/scheduler"
	"github.com/i474232898/co2-offset-dashboard/internal/session"
	"github.com/i474232898/co2-offset-dashboard/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.LogLevel)

	cat, err := catalog.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer cat.Close()

	if cfg.SeedFile != "" {
		if _, err := importSeed(ctx, cat, cfg.SeedFile); err != nil {
			return err
		}
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	loc := cfg.Location
	if loc.Lat == nil && cfg.GeocoderAPIKey != "" {
		if loc, err = providers.ResolveCoordinates(loc, cfg.GeocoderAPIKey); err != nil {
			log.Warn().Err(err).Msg("geocoding failed; coordinate-based providers disabled")
		}
	}

	// Providers with resilience (backoff + circuit breaker).
	provs := []environment.Provider{providers.NewHydroProvider(httpClient, cfg.HydroStation)}
	if loc.Lat != nil {
		provs = append(provs, providers.NewOpenMeteoProvider(httpClient))
	} else {
		log.Warn().Str("location", loc.Key()).Msg("no coordinates; open-meteo sunshine provider disabled")
	}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}

	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	envService := environment.NewService(memStore, provs)
	sessions := session.NewRegistry()

	// Scheduler that periodically refreshes readings and purges stale simulations.
	sched := scheduler.New(loc, cfg.FetchInterval, envService, sessions, cfg.SessionMaxAge)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "co2-offset-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// No write timeout: simulation streams stay open for the whole animation.
		ErrorHandler: httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "co2-offset-dashboard",
			"sessions": sessions.Len(),
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Catalog:      cat,
		Environment:  envService,
		Sessions:     sessions,
		Location:     loc,
		DefaultTrees: cfg.DefaultTrees,
		Offset:       cfg.Offset,
		Pacing:       cfg.Pacing,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Int("providers", len(provs)).Msg("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	return nil
}
