package sinkhttp

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"search-telemetry/internal/domain"
	"search-telemetry/internal/usecase/ingest"
)

// Handler — HTTP-вход приёмника: два независимых endpoint-а, для
// событий и для метрик. Токен авторизации проверяется только на
// событиях; метрики исторически ходят без него.
type Handler struct {
	service *ingest.Service
	bearer  string
	log     zerolog.Logger
}

// NewHandler создаёт обработчик приёмника. Пустой bearer отключает
// проверку авторизации.
func NewHandler(service *ingest.Service, bearer string, log zerolog.Logger) *Handler {
	return &Handler{service: service, bearer: bearer, log: log}
}

// Routes регистрирует маршруты приёмника.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/v1/events", h.handleEvents)
	r.Post("/v1/metrics", h.handleMetrics)
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.bearer == "" {
		return true
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.bearer)) == 1
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		http.Error(w, "неверный токен", http.StatusUnauthorized)
		return
	}
	var batch domain.EventBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "неразборчивый конверт", http.StatusBadRequest)
		return
	}
	if err := h.service.AcceptEvents(r.Context(), batch); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var batch domain.MetricBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "неразборчивый конверт", http.StatusBadRequest)
		return
	}
	if err := h.service.AcceptMetrics(r.Context(), batch); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ingest.ErrEmptyBatch) || errors.Is(err, ingest.ErrNoSession) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.log.Error().Err(err).Msg("sink: приём конверта не удался")
	http.Error(w, "внутренняя ошибка", http.StatusInternalServerError)
}
