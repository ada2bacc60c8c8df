package relayhttp

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"search-telemetry/internal/adapters/env"
	"search-telemetry/internal/adapters/perfsource"
	"search-telemetry/internal/domain"
	"search-telemetry/internal/usecase/collector"
)

// Handler связывает HTTP-вход relay с операциями сборщика. Страница
// шлёт сюда сырые сигналы; пачкование и доставку до endpoint приёма
// выполняет сборщик.
type Handler struct {
	collector *collector.Collector
	env       *env.Static
	feed      *perfsource.Feed
	log       zerolog.Logger
}

// NewHandler создаёт обработчик relay.
func NewHandler(c *collector.Collector, e *env.Static, f *perfsource.Feed, log zerolog.Logger) *Handler {
	return &Handler{collector: c, env: e, feed: f, log: log}
}

// Routes регистрирует маршруты relay.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/v1/session", h.handleSession)
	r.Post("/v1/events", h.handleEvents)
	r.Post("/v1/clicks", h.handleClicks)
	r.Post("/v1/conversions", h.handleConversions)
	r.Post("/v1/perf/entries", h.handlePerfEntries)
	r.Post("/v1/navigate", h.handleNavigate)
	r.Post("/v1/flush", h.handleFlush)
	r.Post("/v1/search-request", h.handleSearchRequest)
	r.Post("/v1/session/reset", h.handleReset)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "неразборчивое тело запроса", http.StatusBadRequest)
		return false
	}
	return true
}

type sessionResponse struct {
	SessionID       string `json:"session_id"`
	ColorIdentifier string `json:"color_identifier"`
}

// Рукопожатие: страница присылает факты окружения, relay отвечает
// действующей идентичностью.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	var handshake env.Handshake
	if !decode(w, r, &handshake) {
		return
	}
	h.env.Update(handshake)
	h.collector.RefreshEnvironment()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sessionResponse{
		SessionID:       h.collector.SessionID(),
		ColorIdentifier: h.collector.ColorIdentifier(),
	})
}

type eventRequest struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		http.Error(w, "событие без имени", http.StatusBadRequest)
		return
	}
	h.collector.TrackEvent(req.Name, req.Data)
	w.WriteHeader(http.StatusAccepted)
}

type clickRequest struct {
	ItemID          string `json:"item_id"`
	Position        int    `json:"position"`
	SearchRequestID string `json:"search_request_id"`
}

func (h *Handler) handleClicks(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ItemID == "" {
		http.Error(w, "клик без item-id", http.StatusBadRequest)
		return
	}
	h.collector.TrackClick(domain.ClickData{
		ItemID:          req.ItemID,
		Position:        req.Position,
		SearchRequestID: req.SearchRequestID,
	})
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleConversions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data map[string]any `json:"data"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.collector.TrackConversion(req.Data)
	w.WriteHeader(http.StatusAccepted)
}

type perfEntriesRequest struct {
	Entries    []domain.PerformanceEntry `json:"entries"`
	Navigation *domain.NavigationTiming  `json:"navigation,omitempty"`
}

func (h *Handler) handlePerfEntries(w http.ResponseWriter, r *http.Request) {
	var req perfEntriesRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Navigation != nil {
		h.feed.SetNavigationTiming(*req.Navigation)
	}
	h.feed.Publish(req.Entries)
	w.WriteHeader(http.StatusAccepted)
}

type navigateRequest struct {
	Path     string `json:"path"`
	RawQuery string `json:"raw_query"`
}

// Явная точка уведомления о навигации: и мутации истории, и переходы
// назад/вперёд страница сводит к этому вызову.
func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !decode(w, r, &req) {
		return
	}
	h.env.UpdatePath(req.Path, req.RawQuery)
	h.collector.NotifyNavigation(req.Path)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleFlush(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Beacon bool `json:"beacon"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.collector.Flush(req.Beacon)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleSearchRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SearchRequestID string `json:"search_request_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.collector.UpdateSearchRequestID(req.SearchRequestID)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.collector.ResetSession(); err != nil {
		h.log.Error().Err(err).Msg("relay: сброс сессии не удался")
		http.Error(w, "сброс сессии не удался", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sessionResponse{
		SessionID:       h.collector.SessionID(),
		ColorIdentifier: h.collector.ColorIdentifier(),
	})
}
