package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	EventsTrackedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_events_tracked_total",
		Help: "Количество принятых в очередь событий",
	}, []string{"type"})

	BatchSendTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_batch_send_total",
		Help: "Попытки доставки пачек по очередям",
	}, []string{"queue", "status"})

	BatchRequeueTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_batch_requeue_total",
		Help: "Возвраты неотправленных пачек в очередь",
	}, []string{"queue"})

	BatchSendSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "telemetry_batch_send_seconds",
		Help:    "Длительность доставки пачки",
		Buckets: prometheus.DefBuckets,
	}, []string{"queue"})

	SessionResetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_session_resets_total",
		Help: "Пересоздания сессии (истечение, сброс, конверсия)",
	})

	IngestBatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_ingest_batches_total",
		Help: "Принятые приёмником конверты",
	}, []string{"kind", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		EventsTrackedTotal,
		BatchSendTotal,
		BatchRequeueTotal,
		BatchSendSeconds,
		SessionResetsTotal,
		IngestBatchesTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveBatchSend записывает исход и длительность доставки пачки.
func ObserveBatchSend(queue string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	BatchSendTotal.WithLabelValues(queue, status).Inc()
	BatchSendSeconds.WithLabelValues(queue).Observe(time.Since(start).Seconds())
}
