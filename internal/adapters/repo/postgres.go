package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"search-telemetry/internal/domain"
)

// Postgres сохраняет принятые конверты для выгрузки обучающих данных.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.BatchRepo = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

// SaveEventBatch кладёт конверт событий одной строкой: события и срез
// окружения хранятся как jsonb, разобранный User-Agent — отдельными
// колонками для фильтрации выборки.
func (p *Postgres) SaveEventBatch(ctx context.Context, batch domain.EventBatch, agent domain.EnrichedAgent) error {
	events, err := json.Marshal(batch.Events)
	if err != nil {
		return fmt.Errorf("сериализация событий: %w", err)
	}
	browserInfo, err := json.Marshal(batch.BrowserInfo)
	if err != nil {
		return fmt.Errorf("сериализация среза окружения: %w", err)
	}
	utm, err := json.Marshal(batch.UTMParams)
	if err != nil {
		return fmt.Errorf("сериализация меток атрибуции: %w", err)
	}

	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err = p.pool.Exec(ctx, `
		INSERT INTO telemetry_batches
			(session_id, color_identifier, events, browser_info, utm_params,
			 browser, browser_version, os, is_mobile, is_bot, client_ts, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())`,
		batch.SessionID, batch.ColorIdentifier, events, browserInfo, utm,
		agent.Browser, agent.BrowserVersion, agent.OS, agent.Mobile, agent.Bot,
		batch.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("вставка конверта событий: %w", err)
	}
	return nil
}

// SaveMetricBatch кладёт конверт метрик производительности.
func (p *Postgres) SaveMetricBatch(ctx context.Context, batch domain.MetricBatch) error {
	payload, err := json.Marshal(batch.Metrics)
	if err != nil {
		return fmt.Errorf("сериализация метрик: %w", err)
	}

	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err = p.pool.Exec(ctx, `
		INSERT INTO telemetry_metrics (session_id, metrics, client_ts, received_at)
		VALUES ($1, $2, $3, now())`,
		batch.SessionID, payload, batch.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("вставка конверта метрик: %w", err)
	}
	return nil
}
