package domain

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound возвращается хранилищем, если ключ отсутствует.
var ErrKeyNotFound = errors.New("ключ не найден в хранилище")

// Storage — строковое key/value хранилище для идентификаторов.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Clock отдаёт текущее время; подменяется в тестах.
type Clock interface {
	Now() time.Time
}

// RandomSource порождает идентификаторы.
type RandomSource interface {
	SessionID() string
	HexColor() string
}

// Transport доставляет сериализованную пачку на endpoint приёма.
type Transport interface {
	Post(ctx context.Context, endpoint string, body []byte, bearer string) error
}

// BeaconSender — транспорт «последнего шанса» при выгрузке страницы.
// Возвращает false, если отправка не была принята.
type BeaconSender interface {
	Beacon(endpoint string, body []byte) bool
}

// Environment отдаёт факты об окружении хост-страницы. Network и Device
// возвращают nil, если браузер не предоставляет соответствующий API.
type Environment interface {
	UserAgent() string
	Language() string
	Platform() string
	Screen() (width, height int)
	Viewport() (width, height int)
	PixelRatio() float64
	Timezone() string
	Location() (domain, path, rawQuery string)
	Network() *NetworkInfo
	Device() *DeviceInfo
}

// Element — отслеживаемый элемент хост-страницы.
type Element interface {
	Attr(name string) (string, bool)
}

// Document абстрагирует DOM хост-страницы: выборку отслеживаемых
// элементов и сигналы жизненного цикла. Подписки возвращают функцию
// отсоединения.
type Document interface {
	QueryAll(selector string) []Element
	OnClick(fn func(Element)) (detach func())
	OnVisibilityHidden(fn func()) (detach func())
	OnUnload(fn func()) (detach func())
}

// PerformanceSubscription — активная подписка на записи производительности.
type PerformanceSubscription interface {
	Disconnect()
}

// PerformanceSource абстрагирует наблюдателей производительности браузера.
// NavigationTiming возвращает запись навигации, доступную на момент
// установки наблюдателей, и false, если её нет.
type PerformanceSource interface {
	Observe(entryType string, fn func(entries []PerformanceEntry)) PerformanceSubscription
	NavigationTiming() (NavigationTiming, bool)
}

// Collector — публичные операции сборщика телеметрии.
type Collector interface {
	TrackEvent(name string, data map[string]any)
	TrackClick(click ClickData)
	TrackConversion(data map[string]any)
	TrackPerformanceMetric(metric PerformanceMetric)
	UpdateSearchRequestID(id string)
	ResetSession() error
	Destroy()
}

// BatchRepo сохраняет принятые конверты на стороне приёмника.
type BatchRepo interface {
	SaveEventBatch(ctx context.Context, batch EventBatch, enriched EnrichedAgent) error
	SaveMetricBatch(ctx context.Context, batch MetricBatch) error
}

// BatchPublisher раздаёт принятые конверты дальше по конвейеру обучения.
type BatchPublisher interface {
	PublishEvents(ctx context.Context, batch EventBatch) error
	PublishMetrics(ctx context.Context, batch MetricBatch) error
}

// EnrichedAgent — разобранные сведения о браузере из User-Agent.
type EnrichedAgent struct {
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version"`
	OS             string `json:"os"`
	Mobile         bool   `json:"mobile"`
	Bot            bool   `json:"bot"`
}
