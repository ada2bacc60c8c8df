package perf

import (
	"sync"

	"search-telemetry/internal/domain"
)

// Monitor подписывается на записи производительности страницы и
// преобразует их в метрики. Временную метку и идентификатор сессии
// проставляет приёмник emit.
type Monitor struct {
	source domain.PerformanceSource
	emit   func(domain.PerformanceMetric)

	mu   sync.Mutex
	subs []domain.PerformanceSubscription
}

// New создаёт монитор производительности.
func New(source domain.PerformanceSource, emit func(domain.PerformanceMetric)) *Monitor {
	return &Monitor{source: source, emit: emit}
}

// Setup устанавливает по одной подписке на каждое семейство записей и
// один раз снимает тайминги навигации. Вызов идемпотентен: прежние
// подписки отключаются до создания новых, что используется при сбросе
// на смене пути.
func (m *Monitor) Setup() {
	m.Disconnect()

	m.mu.Lock()
	m.subs = []domain.PerformanceSubscription{
		m.source.Observe(domain.EntryLargestContentfulPaint, m.handleLCP),
		m.source.Observe(domain.EntryPaint, m.handlePaint),
		m.source.Observe(domain.EntryFirstInput, m.handleFirstInput),
		m.source.Observe(domain.EntryLayoutShift, m.handleLayoutShift),
		m.source.Observe(domain.EntryResource, m.handleResource),
	}
	m.mu.Unlock()

	if timing, ok := m.source.NavigationTiming(); ok {
		m.emit(navigationMetric(timing))
	}
}

// Disconnect отключает все активные подписки.
func (m *Monitor) Disconnect() {
	m.mu.Lock()
	subs := m.subs
	m.subs = nil
	m.mu.Unlock()
	for _, sub := range subs {
		sub.Disconnect()
	}
}

// Наблюдатель может накопить несколько кандидатов отрисовки;
// записывается только последний на момент вызова.
func (m *Monitor) handleLCP(entries []domain.PerformanceEntry) {
	if len(entries) == 0 {
		return
	}
	last := entries[len(entries)-1]
	element := last.Element
	if element == "" {
		element = "unknown"
	}
	m.emit(domain.PerformanceMetric{
		Type:        domain.MetricLCP,
		Value:       last.StartTime,
		Element:     element,
		Size:        last.Size,
		ResourceURL: last.URL,
	})
}

func (m *Monitor) handlePaint(entries []domain.PerformanceEntry) {
	for _, entry := range entries {
		if entry.Name != "first-contentful-paint" {
			continue
		}
		m.emit(domain.PerformanceMetric{
			Type:  domain.MetricFCP,
			Value: entry.StartTime,
		})
		return
	}
}

func (m *Monitor) handleFirstInput(entries []domain.PerformanceEntry) {
	for _, entry := range entries {
		m.emit(domain.PerformanceMetric{
			Type:      domain.MetricFID,
			Value:     entry.ProcessingStart - entry.StartTime,
			InputName: entry.Name,
		})
	}
}

// Сдвиги с недавним вводом исключаются из суммы; метрика публикуется
// даже при нулевой сумме.
func (m *Monitor) handleLayoutShift(entries []domain.PerformanceEntry) {
	var total float64
	for _, entry := range entries {
		if entry.HadRecentInput {
			continue
		}
		total += entry.Value
	}
	m.emit(domain.PerformanceMetric{
		Type:  domain.MetricCLS,
		Value: total,
	})
}

func (m *Monitor) handleResource(entries []domain.PerformanceEntry) {
	for _, entry := range entries {
		m.emit(domain.PerformanceMetric{
			Type: domain.MetricResource,
			Resource: &domain.ResourceTiming{
				Name:          entry.Name,
				Duration:      entry.Duration,
				TransferSize:  entry.TransferSize,
				InitiatorType: entry.InitiatorType,
			},
		})
	}
}

func navigationMetric(t domain.NavigationTiming) domain.PerformanceMetric {
	return domain.PerformanceMetric{
		Type: domain.MetricNavigation,
		Navigation: &domain.NavigationDeltas{
			TTFB:             t.ResponseStart - t.RequestStart,
			DOMContentLoaded: t.DOMContentLoadedEventEnd - t.StartTime,
			Load:             t.LoadEventEnd - t.StartTime,
			DNS:              t.DomainLookupEnd - t.DomainLookupStart,
			TCP:              t.ConnectEnd - t.ConnectStart,
			Request:          t.ResponseEnd - t.RequestStart,
		},
	}
}
