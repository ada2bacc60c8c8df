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

	"search-telemetry/internal/adapters/repo"
	"search-telemetry/internal/adapters/sinkhttp"
	"search-telemetry/internal/domain"
	"search-telemetry/internal/infra/config"
	"search-telemetry/internal/infra/db"
	apphttp "search-telemetry/internal/infra/http"
	applog "search-telemetry/internal/infra/log"
	"search-telemetry/internal/infra/metrics"
	"search-telemetry/internal/infra/queue"
	"search-telemetry/internal/usecase/ingest"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	var batchRepo domain.BatchRepo
	if cfg.PGDSN != "" {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("sink: нет подключения к БД")
		}
		defer pool.Close()
		batchRepo = repo.NewPostgres(pool)
	} else {
		logger.Warn().Msg("sink: PG_DSN не задан, конверты не сохраняются")
	}

	var publisher domain.BatchPublisher
	if cfg.RabbitURL != "" {
		amqpPublisher, err := queue.NewAMQPPublisher(cfg.RabbitURL, cfg.Exchange)
		if err != nil {
			logger.Fatal().Err(err).Msg("sink: не удалось подключить раздачу")
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	service := ingest.NewService(batchRepo, publisher, logger.With().Str("component", "ingest").Logger())

	server := apphttp.NewServer(logger)
	handler := sinkhttp.NewHandler(service, cfg.Sink.BearerToken, logger.With().Str("component", "sink").Logger())
	handler.Routes(server.Router)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("sink: graceful shutdown не удался")
		}
	}()

	logger.Info().Int("port", cfg.Port).Msg("sink: запуск")
	if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("sink: HTTP сервер остановился")
	}
	logger.Info().Msg("sink: остановлен")
}
