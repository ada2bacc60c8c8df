package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"search-telemetry/internal/adapters/enrich"
	"search-telemetry/internal/domain"
	"search-telemetry/internal/infra/metrics"
)

// ErrEmptyBatch возвращается для конверта без событий или метрик.
var ErrEmptyBatch = errors.New("пустой конверт")

// ErrNoSession возвращается для конверта без идентификатора сессии.
var ErrNoSession = errors.New("конверт без идентификатора сессии")

// Service принимает конверты телеметрии: проверяет, обогащает,
// сохраняет и раздаёт дальше по конвейеру обучения. Репозиторий и
// издатель необязательны — приёмник умеет работать как чистый стенд.
type Service struct {
	repo      domain.BatchRepo
	publisher domain.BatchPublisher
	log       zerolog.Logger
}

// NewService создаёт сервис приёма.
func NewService(repo domain.BatchRepo, publisher domain.BatchPublisher, log zerolog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, log: log}
}

// AcceptEvents обрабатывает конверт событий.
func (s *Service) AcceptEvents(ctx context.Context, batch domain.EventBatch) error {
	if len(batch.Events) == 0 {
		metrics.IngestBatchesTotal.WithLabelValues("events", "rejected").Inc()
		return ErrEmptyBatch
	}
	if batch.SessionID == "" {
		metrics.IngestBatchesTotal.WithLabelValues("events", "rejected").Inc()
		return ErrNoSession
	}

	agent := enrich.ParseAgent(batch.BrowserInfo.UserAgent)
	if s.repo != nil {
		if err := s.repo.SaveEventBatch(ctx, batch, agent); err != nil {
			metrics.IngestBatchesTotal.WithLabelValues("events", "error").Inc()
			return fmt.Errorf("сохранение конверта событий: %w", err)
		}
	}
	// Раздача — негарантированная: конверт уже принят и сохранён.
	if s.publisher != nil {
		if err := s.publisher.PublishEvents(ctx, batch); err != nil {
			s.log.Error().Err(err).Msg("ingest: раздача конверта событий не удалась")
		}
	}
	metrics.IngestBatchesTotal.WithLabelValues("events", "accepted").Inc()
	return nil
}

// AcceptMetrics обрабатывает конверт метрик производительности.
func (s *Service) AcceptMetrics(ctx context.Context, batch domain.MetricBatch) error {
	if len(batch.Metrics) == 0 {
		metrics.IngestBatchesTotal.WithLabelValues("metrics", "rejected").Inc()
		return ErrEmptyBatch
	}
	if batch.SessionID == "" {
		metrics.IngestBatchesTotal.WithLabelValues("metrics", "rejected").Inc()
		return ErrNoSession
	}

	if s.repo != nil {
		if err := s.repo.SaveMetricBatch(ctx, batch); err != nil {
			metrics.IngestBatchesTotal.WithLabelValues("metrics", "error").Inc()
			return fmt.Errorf("сохранение конверта метрик: %w", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishMetrics(ctx, batch); err != nil {
			s.log.Error().Err(err).Msg("ingest: раздача конверта метрик не удалась")
		}
	}
	metrics.IngestBatchesTotal.WithLabelValues("metrics", "accepted").Inc()
	return nil
}
