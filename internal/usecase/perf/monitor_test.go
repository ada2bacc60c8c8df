package perf

import (
	"testing"

	"search-telemetry/internal/domain"
)

type fakeSub struct{ disconnected *int }

func (s fakeSub) Disconnect() { *s.disconnected++ }

type fakeSource struct {
	callbacks    map[string]func([]domain.PerformanceEntry)
	disconnected int
	observed     int
	timing       *domain.NavigationTiming
}

func newFakeSource() *fakeSource {
	return &fakeSource{callbacks: map[string]func([]domain.PerformanceEntry){}}
}

func (s *fakeSource) Observe(entryType string, fn func([]domain.PerformanceEntry)) domain.PerformanceSubscription {
	s.callbacks[entryType] = fn
	s.observed++
	return fakeSub{disconnected: &s.disconnected}
}

func (s *fakeSource) NavigationTiming() (domain.NavigationTiming, bool) {
	if s.timing == nil {
		return domain.NavigationTiming{}, false
	}
	return *s.timing, true
}

func collect(emitted *[]domain.PerformanceMetric) func(domain.PerformanceMetric) {
	return func(m domain.PerformanceMetric) { *emitted = append(*emitted, m) }
}

func TestSetupIsIdempotent(t *testing.T) {
	source := newFakeSource()
	var emitted []domain.PerformanceMetric
	monitor := New(source, collect(&emitted))

	monitor.Setup()
	monitor.Setup()

	if source.observed != 10 {
		t.Fatalf("ожидали 10 подписок за два вызова, получили %d", source.observed)
	}
	if source.disconnected != 5 {
		t.Fatalf("прежние подписки должны быть отключены: %d", source.disconnected)
	}
}

func TestLCPUsesLastEntry(t *testing.T) {
	source := newFakeSource()
	var emitted []domain.PerformanceMetric
	New(source, collect(&emitted)).Setup()

	source.callbacks[domain.EntryLargestContentfulPaint]([]domain.PerformanceEntry{
		{StartTime: 100, Element: "img", Size: 1000},
		{StartTime: 250, Size: 2000, URL: "https://cdn/pic.webp"},
	})
	if len(emitted) != 1 {
		t.Fatalf("ожидали 1 метрику, получили %d", len(emitted))
	}
	m := emitted[0]
	if m.Type != domain.MetricLCP || m.Value != 250 {
		t.Fatalf("ожидали последний кандидат, получили %+v", m)
	}
	if m.Element != "unknown" {
		t.Fatalf("пустой тег должен заменяться на unknown, получили %s", m.Element)
	}
}

func TestCLSExcludesRecentInput(t *testing.T) {
	source := newFakeSource()
	var emitted []domain.PerformanceMetric
	New(source, collect(&emitted)).Setup()

	source.callbacks[domain.EntryLayoutShift]([]domain.PerformanceEntry{
		{Value: 0.1, HadRecentInput: true},
		{Value: 0.05, HadRecentInput: false},
	})
	if len(emitted) != 1 || emitted[0].Value != 0.05 {
		t.Fatalf("ожидали CLS = 0.05, получили %+v", emitted)
	}

	// Пустая сумма всё равно публикуется.
	source.callbacks[domain.EntryLayoutShift]([]domain.PerformanceEntry{
		{Value: 0.2, HadRecentInput: true},
	})
	if len(emitted) != 2 || emitted[1].Value != 0 {
		t.Fatalf("ожидали нулевую метрику CLS, получили %+v", emitted)
	}
}

func TestFIDAndFCPExtraction(t *testing.T) {
	source := newFakeSource()
	var emitted []domain.PerformanceMetric
	New(source, collect(&emitted)).Setup()

	source.callbacks[domain.EntryFirstInput]([]domain.PerformanceEntry{
		{Name: "pointerdown", StartTime: 120, ProcessingStart: 145},
	})
	source.callbacks[domain.EntryPaint]([]domain.PerformanceEntry{
		{Name: "first-paint", StartTime: 80},
		{Name: "first-contentful-paint", StartTime: 90},
	})

	if len(emitted) != 2 {
		t.Fatalf("ожидали 2 метрики, получили %d", len(emitted))
	}
	if emitted[0].Type != domain.MetricFID || emitted[0].Value != 25 || emitted[0].InputName != "pointerdown" {
		t.Fatalf("неверная метрика FID: %+v", emitted[0])
	}
	if emitted[1].Type != domain.MetricFCP || emitted[1].Value != 90 {
		t.Fatalf("неверная метрика FCP: %+v", emitted[1])
	}
}

func TestNavigationTimingOnSetup(t *testing.T) {
	source := newFakeSource()
	source.timing = &domain.NavigationTiming{
		StartTime:                0,
		RequestStart:             10,
		ResponseStart:            60,
		ResponseEnd:              80,
		DomainLookupStart:        2,
		DomainLookupEnd:          6,
		ConnectStart:             6,
		ConnectEnd:               9,
		DOMContentLoadedEventEnd: 200,
		LoadEventEnd:             400,
	}
	var emitted []domain.PerformanceMetric
	New(source, collect(&emitted)).Setup()

	if len(emitted) != 1 || emitted[0].Type != domain.MetricNavigation {
		t.Fatalf("ожидали метрику навигации, получили %+v", emitted)
	}
	nav := emitted[0].Navigation
	if nav.TTFB != 50 || nav.DNS != 4 || nav.TCP != 3 || nav.Request != 70 || nav.Load != 400 || nav.DOMContentLoaded != 200 {
		t.Fatalf("неверные дельты: %+v", nav)
	}
}

func TestResourceEntriesEmitPerEntry(t *testing.T) {
	source := newFakeSource()
	var emitted []domain.PerformanceMetric
	New(source, collect(&emitted)).Setup()

	source.callbacks[domain.EntryResource]([]domain.PerformanceEntry{
		{Name: "https://cdn/app.js", Duration: 120, TransferSize: 5000, InitiatorType: "script"},
		{Name: "https://cdn/app.css", Duration: 40, TransferSize: 900, InitiatorType: "link"},
	})
	if len(emitted) != 2 {
		t.Fatalf("ожидали 2 метрики ресурсов, получили %d", len(emitted))
	}
	if emitted[0].Resource == nil || emitted[0].Resource.InitiatorType != "script" {
		t.Fatalf("неверная метрика ресурса: %+v", emitted[0])
	}
}
