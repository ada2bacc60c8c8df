package collector

import (
	"context"
	"encoding/json"
	"errors"

	"search-telemetry/internal/domain"
	"search-telemetry/internal/infra/metrics"
)

var errBeaconRejected = errors.New("beacon отклонил отправку")

// sendEvents атомарно изымает содержимое очереди событий и доставляет
// пачку целиком. Очередь обнуляется до сетевой попытки: события,
// пришедшие во время доставки, попадают в новую пустую очередь, а не в
// пачку в полёте. При неудаче пачка возвращается в начало очереди и
// повтор происходит по следующему триггеру — без своего backoff.
func (c *Collector) sendEvents(forceBeacon bool) {
	c.mu.Lock()
	if len(c.events) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.events
	c.events = nil
	envelope := domain.EventBatch{
		Events:          batch,
		SessionID:       c.sessionID,
		ColorIdentifier: c.colorID,
		BrowserInfo:     c.snap,
		UTMParams:       c.utm,
		Timestamp:       c.clock.Now(),
	}
	c.mu.Unlock()

	start := c.clock.Now()
	err := c.deliverEvents(envelope, forceBeacon)
	metrics.ObserveBatchSend("events", start, err)
	if err != nil {
		c.requeueEvents(batch)
		c.log.Error().Err(err).Int("batch", len(batch)).Msg("collector: доставка событий не удалась")
	}
}

func (c *Collector) deliverEvents(envelope domain.EventBatch, forceBeacon bool) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	if forceBeacon {
		if beacon, ok := c.transport.(domain.BeaconSender); ok {
			if !beacon.Beacon(c.opts.Endpoint, body) {
				return errBeaconRejected
			}
			return nil
		}
	}
	return c.transport.Post(context.Background(), c.opts.Endpoint, body, c.opts.BearerToken)
}

func (c *Collector) requeueEvents(batch []domain.Event) {
	c.mu.Lock()
	restored := make([]domain.Event, 0, len(batch)+len(c.events))
	restored = append(restored, batch...)
	restored = append(restored, c.events...)
	c.events = restored
	c.mu.Unlock()
	metrics.BatchRequeueTotal.WithLabelValues("events").Inc()
}

// sendPerformanceMetrics следует тому же контракту изъятия и возврата,
// но всегда использует обычный POST и отдельный endpoint. Токен
// авторизации к метрикам не применяется.
func (c *Collector) sendPerformanceMetrics() {
	c.mu.Lock()
	if len(c.perfQueue) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.perfQueue
	c.perfQueue = nil
	envelope := domain.MetricBatch{
		Metrics:   batch,
		SessionID: c.sessionID,
		Timestamp: c.clock.Now(),
	}
	c.mu.Unlock()

	start := c.clock.Now()
	body, err := json.Marshal(envelope)
	if err == nil {
		err = c.transport.Post(context.Background(), c.opts.MetricsEndpoint, body, "")
	}
	metrics.ObserveBatchSend("perf", start, err)
	if err != nil {
		c.mu.Lock()
		restored := make([]domain.PerformanceMetric, 0, len(batch)+len(c.perfQueue))
		restored = append(restored, batch...)
		restored = append(restored, c.perfQueue...)
		c.perfQueue = restored
		c.mu.Unlock()
		metrics.BatchRequeueTotal.WithLabelValues("perf").Inc()
		c.log.Error().Err(err).Int("batch", len(batch)).Msg("collector: доставка метрик не удалась")
	}
}
