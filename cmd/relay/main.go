package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"search-telemetry/internal/adapters/env"
	"search-telemetry/internal/adapters/perfsource"
	"search-telemetry/internal/adapters/relayhttp"
	"search-telemetry/internal/adapters/storage"
	"search-telemetry/internal/adapters/sysid"
	"search-telemetry/internal/adapters/transport"
	"search-telemetry/internal/domain"
	"search-telemetry/internal/infra/config"
	apphttp "search-telemetry/internal/infra/http"
	applog "search-telemetry/internal/infra/log"
	"search-telemetry/internal/infra/metrics"
	"search-telemetry/internal/usecase/collector"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	if cfg.Collector.Endpoint == "" {
		logger.Fatal().Msg("relay: не указан endpoint приёма событий (EVENTS_ENDPOINT)")
	}
	if cfg.Collector.MetricsEndpoint == "" {
		logger.Fatal().Msg("relay: не указан endpoint приёма метрик (METRICS_ENDPOINT)")
	}

	// Неработающее хранилище фатально: без него не вывести идентичность.
	var store domain.Storage
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("relay: нет подключения к Redis")
		}
		store = storage.NewRedis(client, "relay:")
	} else {
		logger.Warn().Msg("relay: REDIS_ADDR не задан, идентичность живёт в памяти процесса")
		store = storage.NewMemory()
	}

	envAdapter := env.NewStatic(env.Handshake{})
	feed := perfsource.NewFeed()

	c, err := collector.New(ctx, collector.Options{
		Endpoint:                 cfg.Collector.Endpoint,
		MetricsEndpoint:          cfg.Collector.MetricsEndpoint,
		Selector:                 cfg.Collector.Selector,
		DataAttribute:            cfg.Collector.DataAttribute,
		SearchRequestIDAttribute: cfg.Collector.SearchRequestIDAttribute,
		SessionTimeout:           cfg.Collector.SessionTimeout,
		BatchSize:                cfg.Collector.BatchSize,
		SendInterval:             cfg.Collector.SendInterval,
		SessionID:                cfg.Collector.SessionID,
		SearchRequestID:          cfg.Collector.SearchRequestID,
		PerformanceMetrics:       cfg.Collector.PerformanceMetrics,
		BearerToken:              cfg.Collector.BearerToken,
	}, collector.Deps{
		Storage:   store,
		Clock:     sysid.Clock{},
		Rand:      sysid.Random{},
		Transport: transport.NewHTTP(cfg.Collector.HTTPTimeout),
		Env:       envAdapter,
		Source:    feed,
		Log:       logger.With().Str("component", "collector").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("relay: не удалось создать сборщик")
	}
	defer c.Destroy()

	server := apphttp.NewServer(logger)
	handler := relayhttp.NewHandler(c, envAdapter, feed, logger.With().Str("component", "relay").Logger())
	handler.Routes(server.Router)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("relay: graceful shutdown не удался")
		}
	}()

	logger.Info().Int("port", cfg.Port).Msg("relay: запуск")
	if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("relay: HTTP сервер остановился")
	}
	logger.Info().Msg("relay: остановлен")
}
