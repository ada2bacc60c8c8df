package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"search-telemetry/internal/domain"
	"search-telemetry/internal/infra/metrics"
	"search-telemetry/internal/usecase/identity"
	"search-telemetry/internal/usecase/nav"
	"search-telemetry/internal/usecase/perf"
	"search-telemetry/internal/usecase/snapshot"
)

const expirationSweepInterval = time.Minute

// Options — конфигурация сборщика. После конструирования неизменна,
// единственное исключение — SearchRequestID (см. UpdateSearchRequestID).
type Options struct {
	Endpoint                 string
	MetricsEndpoint          string
	Selector                 string
	DataAttribute            string
	SearchRequestIDAttribute string
	SessionTimeout           time.Duration
	BatchSize                int
	SendInterval             time.Duration
	SessionID                string
	SearchRequestID          string
	PerformanceMetrics       bool
	BearerToken              string
}

func (o *Options) applyDefaults() {
	if o.Selector == "" {
		o.Selector = "[data-item-id]"
	}
	if o.DataAttribute == "" {
		o.DataAttribute = "data-item-id"
	}
	if o.SearchRequestIDAttribute == "" {
		o.SearchRequestIDAttribute = "data-search-request-id"
	}
	if o.SessionTimeout <= 0 {
		o.SessionTimeout = 30 * time.Minute
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.SendInterval <= 0 {
		o.SendInterval = 5 * time.Second
	}
}

// Deps — внедряемые возможности окружения. Source необязателен:
// без него метрики производительности отключены.
type Deps struct {
	Storage   domain.Storage
	Clock     domain.Clock
	Rand      domain.RandomSource
	Transport domain.Transport
	Env       domain.Environment
	Source    domain.PerformanceSource
	Log       zerolog.Logger
}

// Collector реализует захват и доставку телеметрии: очередь событий с
// пачечной отправкой и очередь метрик с немедленной отправкой.
type Collector struct {
	opts      Options
	log       zerolog.Logger
	identity  *identity.Store
	env       domain.Environment
	transport domain.Transport
	clock     domain.Clock

	mu              sync.Mutex
	sessionID       string
	colorID         string
	snap            domain.ContextSnapshot
	utm             *domain.UTMParams
	searchRequestID string
	events          []domain.Event
	perfQueue       []domain.PerformanceMetric
	detach          []func()
	destroyed       bool

	monitor *perf.Monitor
	tracker *nav.Tracker
	stop    chan struct{}
	done    sync.Once
}

var _ domain.Collector = (*Collector)(nil)

// New создаёт сборщик. Ошибка хранилища при выводе идентичности фатальна
// и возвращается вызывающему.
func New(ctx context.Context, opts Options, deps Deps) (*Collector, error) {
	opts.applyDefaults()

	store := identity.New(deps.Storage, deps.Clock, deps.Rand, opts.SessionTimeout, opts.SessionID)
	sessionID, err := store.GetOrCreateSessionID(ctx)
	if err != nil {
		return nil, fmt.Errorf("вывод сессии: %w", err)
	}
	colorID, err := store.GetOrCreateColorIdentifier(ctx)
	if err != nil {
		return nil, fmt.Errorf("вывод цветового идентификатора: %w", err)
	}

	c := &Collector{
		opts:            opts,
		log:             deps.Log,
		identity:        store,
		env:             deps.Env,
		transport:       deps.Transport,
		clock:           deps.Clock,
		sessionID:       sessionID,
		colorID:         colorID,
		searchRequestID: opts.SearchRequestID,
		stop:            make(chan struct{}),
	}
	c.refreshSnapshot()

	c.tracker = nav.New(c.snap.Path, c.onNavigate)
	if opts.PerformanceMetrics && deps.Source != nil {
		c.monitor = perf.New(deps.Source, c.TrackPerformanceMetric)
		c.monitor.Setup()
	}

	go c.runTimers()
	return c, nil
}

// SessionID возвращает идентификатор текущей сессии.
func (c *Collector) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// ColorIdentifier возвращает бессрочный анонимный идентификатор.
func (c *Collector) ColorIdentifier() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.colorID
}

// TrackEvent ставит произвольное событие в очередь в порядке поступления.
func (c *Collector) TrackEvent(name string, data map[string]any) {
	c.append(domain.Event{
		Type: domain.EventCustom,
		Name: name,
		Data: data,
	})
}

// TrackClick ставит клик в очередь. Пустой SearchRequestID заполняется
// текущим значением конфигурации.
func (c *Collector) TrackClick(click domain.ClickData) {
	c.mu.Lock()
	searchRequestID := click.SearchRequestID
	if searchRequestID == "" {
		searchRequestID = c.searchRequestID
	}
	c.mu.Unlock()
	c.append(domain.Event{
		Type:            domain.EventClick,
		ItemID:          click.ItemID,
		Position:        click.Position,
		SearchRequestID: searchRequestID,
	})
}

// TrackConversion фиксирует событие конверсии и принудительно
// пересоздаёт сессию.
func (c *Collector) TrackConversion(data map[string]any) {
	c.TrackEvent("conversion", data)
	if err := c.ResetSession(); err != nil {
		c.log.Error().Err(err).Msg("collector: сброс сессии после конверсии")
	}
}

// TrackPerformanceMetric ставит метрику в очередь и немедленно запускает
// доставку: метрики чувствительны к задержке и не копятся в пачку.
func (c *Collector) TrackPerformanceMetric(metric domain.PerformanceMetric) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	metric.Timestamp = c.clock.Now()
	metric.SessionID = c.sessionID
	c.perfQueue = append(c.perfQueue, metric)
	c.mu.Unlock()

	metrics.EventsTrackedTotal.WithLabelValues(string(metric.Type)).Inc()
	c.sendPerformanceMetrics()
}

// UpdateSearchRequestID обновляет идентификатор поискового запроса —
// единственное изменяемое поле конфигурации.
func (c *Collector) UpdateSearchRequestID(id string) {
	c.mu.Lock()
	c.searchRequestID = id
	c.mu.Unlock()
}

// ResetSession пересоздаёт сессию немедленно.
func (c *Collector) ResetSession() error {
	id, err := c.identity.ResetSession(context.Background())
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
	metrics.SessionResetsTotal.Inc()
	return nil
}

// NotifyNavigation — явная точка уведомления о смене пути. Хост-страница
// вызывает её и при мутации истории, и при переходе назад/вперёд.
func (c *Collector) NotifyNavigation(path string) {
	c.tracker.HandlePathChange(path)
}

// RefreshEnvironment перечитывает срез окружения и метки атрибуции.
// Нужен при рукопожатии: окружение хост-страницы становится известно
// позже создания сборщика, и без обновления конверты уходят с пустым
// срезом. Путь из окружения синхронизируется с трекером навигации.
func (c *Collector) RefreshEnvironment() {
	c.refreshSnapshot()
	_, path, _ := c.env.Location()
	c.tracker.HandlePathChange(path)
}

// Destroy останавливает таймеры, отключает наблюдателей и слушателей
// документа. Запросы в полёте не прерываются.
func (c *Collector) Destroy() {
	c.done.Do(func() { close(c.stop) })
	if c.monitor != nil {
		c.monitor.Disconnect()
	}
	c.mu.Lock()
	detach := c.detach
	c.detach = nil
	c.destroyed = true
	c.mu.Unlock()
	for _, fn := range detach {
		fn()
	}
}

// Flush принудительно выталкивает обе очереди. forceBeacon переключает
// события на транспорт «последнего шанса» (выгрузка страницы).
func (c *Collector) Flush(forceBeacon bool) {
	c.sendEvents(forceBeacon)
	c.sendPerformanceMetrics()
}

func (c *Collector) append(event domain.Event) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	event.Timestamp = c.clock.Now()
	event.SessionID = c.sessionID
	c.events = append(c.events, event)
	// Порог проверяется после добавления, не до.
	full := len(c.events) >= c.opts.BatchSize
	c.mu.Unlock()

	metrics.EventsTrackedTotal.WithLabelValues(string(event.Type)).Inc()
	if err := c.identity.Touch(context.Background()); err != nil {
		c.log.Error().Err(err).Msg("collector: обновление активности сессии")
	}
	if full {
		c.sendEvents(false)
	}
}

func (c *Collector) refreshSnapshot() {
	snap := snapshot.Capture(c.env)
	_, _, rawQuery := c.env.Location()
	utm := snapshot.ParseUTM(rawQuery)
	c.mu.Lock()
	c.snap = snap
	c.utm = utm
	c.mu.Unlock()
}

func (c *Collector) onNavigate(path string) {
	c.refreshSnapshot()
	// Новая навигационная запись наблюдается на каждый путь SPA-перехода.
	if c.monitor != nil {
		c.monitor.Setup()
	}
	c.log.Debug().Str("path", path).Msg("collector: смена пути")
}

func (c *Collector) runTimers() {
	send := time.NewTicker(c.opts.SendInterval)
	expiry := time.NewTicker(expirationSweepInterval)
	defer send.Stop()
	defer expiry.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-send.C:
			c.sendEvents(false)
		case <-expiry.C:
			c.checkExpiration()
		}
	}
}

func (c *Collector) checkExpiration() {
	id, reset, err := c.identity.CheckExpiration(context.Background())
	if err != nil {
		c.log.Error().Err(err).Msg("collector: проверка истечения сессии")
		return
	}
	if !reset {
		return
	}
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
	metrics.SessionResetsTotal.Inc()
}
