package relayhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"search-telemetry/internal/adapters/env"
	"search-telemetry/internal/adapters/perfsource"
	"search-telemetry/internal/adapters/storage"
	"search-telemetry/internal/adapters/sysid"
	"search-telemetry/internal/domain"
	"search-telemetry/internal/usecase/collector"
)

type recordingTransport struct {
	mu     sync.Mutex
	bodies [][]byte
}

func (t *recordingTransport) Post(_ context.Context, _ string, body []byte, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bodies = append(t.bodies, body)
	return nil
}

func (t *recordingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bodies)
}

func newRelay(t *testing.T, batchSize int) (*httptest.Server, *recordingTransport) {
	t.Helper()
	transport := &recordingTransport{}
	// Как в боевой сборке: окружение пустое до первого рукопожатия.
	envAdapter := env.NewStatic(env.Handshake{})
	feed := perfsource.NewFeed()
	c, err := collector.New(context.Background(), collector.Options{
		Endpoint:           "https://ingest.example/v1/events",
		MetricsEndpoint:    "https://ingest.example/v1/metrics",
		BatchSize:          batchSize,
		SendInterval:       time.Hour,
		PerformanceMetrics: true,
	}, collector.Deps{
		Storage:   storage.NewMemory(),
		Clock:     sysid.Clock{},
		Rand:      sysid.Random{},
		Transport: transport,
		Env:       envAdapter,
		Source:    feed,
		Log:       zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	t.Cleanup(c.Destroy)

	handler := NewHandler(c, envAdapter, feed, zerolog.Nop())
	r := chi.NewRouter()
	handler.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, transport
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	resp.Body.Close()
	return resp
}

func TestSessionHandshakeReturnsIdentity(t *testing.T) {
	srv, _ := newRelay(t, 100)

	resp, err := http.Post(srv.URL+"/v1/session", "application/json",
		strings.NewReader(`{"user_agent":"Mozilla/5.0 Chrome/120","path":"/search"}`))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	defer resp.Body.Close()

	var payload struct {
		SessionID       string `json:"session_id"`
		ColorIdentifier string `json:"color_identifier"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("неразборчивый ответ: %v", err)
	}
	if payload.SessionID == "" || payload.ColorIdentifier == "" {
		t.Fatalf("рукопожатие без идентичности: %+v", payload)
	}
}

func TestSessionHandshakeRefreshesEnvironment(t *testing.T) {
	srv, transport := newRelay(t, 1)

	postJSON(t, srv.URL+"/v1/session",
		`{"user_agent":"Mozilla/5.0 Chrome/120","domain":"shop.example","path":"/search","raw_query":"utm_source=yandex"}`)
	postJSON(t, srv.URL+"/v1/events", `{"name":"view","data":{}}`)

	if transport.count() != 1 {
		t.Fatalf("событие после рукопожатия должно отправиться")
	}
	var envelope domain.EventBatch
	if err := json.Unmarshal(transport.bodies[0], &envelope); err != nil {
		t.Fatalf("неразборчивый конверт: %v", err)
	}
	if envelope.BrowserInfo.UserAgent != "Mozilla/5.0 Chrome/120" {
		t.Fatalf("срез окружения должен браться из рукопожатия: %+v", envelope.BrowserInfo)
	}
	if envelope.BrowserInfo.BrowserFamily != "Chrome" || envelope.BrowserInfo.Path != "/search" {
		t.Fatalf("срез окружения не обновился: %+v", envelope.BrowserInfo)
	}
	if envelope.UTMParams == nil || envelope.UTMParams.Source != "yandex" {
		t.Fatalf("метки атрибуции из рукопожатия потеряны: %+v", envelope.UTMParams)
	}
}

func TestClickFlowsThroughCollector(t *testing.T) {
	srv, transport := newRelay(t, 1)

	resp := postJSON(t, srv.URL+"/v1/clicks", `{"item_id":"42","position":3,"search_request_id":"req-1"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("ожидали 202, получили %d", resp.StatusCode)
	}
	if transport.count() != 1 {
		t.Fatalf("клик должен дойти до транспорта")
	}
	var envelope domain.EventBatch
	if err := json.Unmarshal(transport.bodies[0], &envelope); err != nil {
		t.Fatalf("неразборчивый конверт: %v", err)
	}
	if len(envelope.Events) != 1 || envelope.Events[0].ItemID != "42" || envelope.Events[0].Position != 3 {
		t.Fatalf("неверный конверт клика: %+v", envelope.Events)
	}
}

func TestPerfEntriesReachMetricsEndpoint(t *testing.T) {
	srv, transport := newRelay(t, 100)

	resp := postJSON(t, srv.URL+"/v1/perf/entries",
		`{"entries":[{"entry_type":"layout-shift","value":0.05,"had_recent_input":false}]}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("ожидали 202, получили %d", resp.StatusCode)
	}
	if transport.count() != 1 {
		t.Fatalf("метрика должна отправляться немедленно")
	}
	var envelope domain.MetricBatch
	if err := json.Unmarshal(transport.bodies[0], &envelope); err != nil {
		t.Fatalf("неразборчивый конверт: %v", err)
	}
	if len(envelope.Metrics) != 1 || envelope.Metrics[0].Type != domain.MetricCLS || envelope.Metrics[0].Value != 0.05 {
		t.Fatalf("неверная метрика: %+v", envelope.Metrics)
	}
}

func TestBadRequests(t *testing.T) {
	srv, _ := newRelay(t, 100)

	if resp := postJSON(t, srv.URL+"/v1/events", `{"name":""}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("событие без имени должно давать 400, получили %d", resp.StatusCode)
	}
	if resp := postJSON(t, srv.URL+"/v1/clicks", `{не json`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("кривой JSON должен давать 400, получили %d", resp.StatusCode)
	}
}

func TestNavigateUpdatesEnvironment(t *testing.T) {
	srv, transport := newRelay(t, 1)

	postJSON(t, srv.URL+"/v1/navigate", `{"path":"/item/42","raw_query":"utm_source=yandex"}`)
	postJSON(t, srv.URL+"/v1/events", `{"name":"view","data":{}}`)

	if transport.count() != 1 {
		t.Fatalf("событие после навигации должно отправиться")
	}
	var envelope domain.EventBatch
	if err := json.Unmarshal(transport.bodies[0], &envelope); err != nil {
		t.Fatalf("неразборчивый конверт: %v", err)
	}
	if envelope.BrowserInfo.Path != "/item/42" {
		t.Fatalf("срез окружения должен отражать новый путь: %s", envelope.BrowserInfo.Path)
	}
	if envelope.UTMParams == nil || envelope.UTMParams.Source != "yandex" {
		t.Fatalf("метки атрибуции должны обновиться: %+v", envelope.UTMParams)
	}
}
