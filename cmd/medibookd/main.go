package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"medibook/internal/api"
	"medibook/internal/appointments"
	"medibook/internal/config"
	"medibook/internal/events"
	"medibook/internal/metrics"
	"medibook/internal/providerapi"
	"medibook/internal/wizard"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("MEDIBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	client := providerapi.New(cfg.ProviderAPI.BaseURL, cfg.ProviderAPI.APIKey, cfg.ProviderTimeout())
	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.ProviderAPI.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		client.UseRedisCache(rdb, cfg.CacheTTL())
	}
	if cfg.ProviderAPI.RateLimitRPS > 0 {
		burst := cfg.ProviderAPI.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		client.UseRateLimit(cfg.ProviderAPI.RateLimitRPS, burst)
	}

	bus := events.NewBus()
	bus.Subscribe(events.TypeBookingSubmitted, func(event events.Event) error {
		logger.Info().RawJSON("payload", event.Payload).Msg("booking submitted")
		return nil
	})
	bus.Subscribe(events.TypeBookingConflict, func(event events.Event) error {
		logger.Warn().RawJSON("payload", event.Payload).Msg("booking conflict")
		return nil
	})

	wizards := wizard.NewStore(cfg.SessionTimeout())
	apptSvc := appointments.NewService(client, bus, &logger)

	metrics.Register()

	server := api.NewHTTPServer(api.Options{
		Provider:       client,
		Wizards:        wizards,
		Appointments:   apptSvc,
		Bus:            bus,
		Redis:          rdb,
		Logger:         &logger,
		Location:       cfg.Location(),
		HorizonMonths:  cfg.HorizonMonths(),
		MaxMonthsAhead: cfg.MaxMonthsAhead(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessionCleanupLoop(ctx, wizards, cfg.CleanupInterval(), &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: server.Handler()}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("medibook gateway started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("gateway server error")
	}
}

func sessionCleanupLoop(ctx context.Context, wizards *wizard.Store, interval time.Duration, logger *zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := wizards.Cleanup(); removed > 0 {
				for i := 0; i < removed; i++ {
					metrics.IncWizardSession("expired")
				}
				logger.Info().Int("removed", removed).Msg("expired wizard sessions cleaned up")
			}
		case <-ctx.Done():
			return
		}
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
