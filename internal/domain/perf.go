package domain

import "time"

// MetricType различает варианты метрики производительности.
type MetricType string

const (
	// MetricLCP — Largest Contentful Paint.
	MetricLCP MetricType = "LCP"
	// MetricFCP — First Contentful Paint.
	MetricFCP MetricType = "FCP"
	// MetricFID — First Input Delay.
	MetricFID MetricType = "FID"
	// MetricCLS — Cumulative Layout Shift.
	MetricCLS MetricType = "CLS"
	// MetricResource — загрузка одного ресурса.
	MetricResource MetricType = "RESOURCE"
	// MetricNavigation — тайминги навигации.
	MetricNavigation MetricType = "NAVIGATION"
)

// PerformanceMetric представляет одно наблюдение производительности.
// Поля заполняются в зависимости от Type; Resource и Navigation несут
// собственные структуры, остальные варианты используют плоские поля.
type PerformanceMetric struct {
	Type        MetricType        `json:"type"`
	Timestamp   time.Time         `json:"timestamp"`
	SessionID   string            `json:"session_id"`
	Value       float64           `json:"value,omitempty"`
	Element     string            `json:"element,omitempty"`
	Size        int64             `json:"size,omitempty"`
	ResourceURL string            `json:"resource_url,omitempty"`
	InputName   string            `json:"input_name,omitempty"`
	Resource    *ResourceTiming   `json:"resource,omitempty"`
	Navigation  *NavigationDeltas `json:"navigation,omitempty"`
}

// ResourceTiming описывает загрузку одного ресурса страницы.
type ResourceTiming struct {
	Name          string  `json:"name"`
	Duration      float64 `json:"duration"`
	TransferSize  int64   `json:"transfer_size"`
	InitiatorType string  `json:"initiator_type"`
}

// NavigationDeltas содержит дельты таймингов единственной навигационной
// записи, доступной на момент установки наблюдателей.
type NavigationDeltas struct {
	TTFB             float64 `json:"ttfb"`
	DOMContentLoaded float64 `json:"dom_content_loaded"`
	Load             float64 `json:"load"`
	DNS              float64 `json:"dns"`
	TCP              float64 `json:"tcp"`
	Request          float64 `json:"request"`
}

// Имена семейств записей производительности, на которые подписывается монитор.
const (
	EntryLargestContentfulPaint = "largest-contentful-paint"
	EntryPaint                  = "paint"
	EntryFirstInput             = "first-input"
	EntryLayoutShift            = "layout-shift"
	EntryResource               = "resource"
)

// PerformanceEntry — сырая запись наблюдателя производительности.
// Набор значимых полей зависит от EntryType.
type PerformanceEntry struct {
	EntryType       string  `json:"entry_type"`
	Name            string  `json:"name"`
	StartTime       float64 `json:"start_time"`
	Duration        float64 `json:"duration"`
	Element         string  `json:"element,omitempty"`
	Size            int64   `json:"size,omitempty"`
	URL             string  `json:"url,omitempty"`
	ProcessingStart float64 `json:"processing_start,omitempty"`
	Value           float64 `json:"value,omitempty"`
	HadRecentInput  bool    `json:"had_recent_input,omitempty"`
	TransferSize    int64   `json:"transfer_size,omitempty"`
	InitiatorType   string  `json:"initiator_type,omitempty"`
}

// NavigationTiming — тайминги навигационной записи страницы.
type NavigationTiming struct {
	StartTime                float64 `json:"start_time"`
	RequestStart             float64 `json:"request_start"`
	ResponseStart            float64 `json:"response_start"`
	ResponseEnd              float64 `json:"response_end"`
	DomainLookupStart        float64 `json:"domain_lookup_start"`
	DomainLookupEnd          float64 `json:"domain_lookup_end"`
	ConnectStart             float64 `json:"connect_start"`
	ConnectEnd               float64 `json:"connect_end"`
	DOMContentLoadedEventEnd float64 `json:"dom_content_loaded_event_end"`
	LoadEventEnd             float64 `json:"load_event_end"`
}
