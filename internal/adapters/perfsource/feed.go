package perfsource

import (
	"sync"

	"search-telemetry/internal/domain"
)

// Feed реализует domain.PerformanceSource для relay: сырые записи
// приходят по HTTP от хост-страницы и раздаются подписчикам по
// семейству записи.
type Feed struct {
	mu     sync.Mutex
	subs   map[string]map[int]func([]domain.PerformanceEntry)
	nextID int
	timing *domain.NavigationTiming
}

// NewFeed создаёт пустой источник.
func NewFeed() *Feed {
	return &Feed{subs: map[string]map[int]func([]domain.PerformanceEntry){}}
}

var _ domain.PerformanceSource = (*Feed)(nil)

type subscription struct {
	feed      *Feed
	entryType string
	id        int
}

func (s subscription) Disconnect() {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	delete(s.feed.subs[s.entryType], s.id)
}

// Observe подписывает fn на записи указанного семейства.
func (f *Feed) Observe(entryType string, fn func([]domain.PerformanceEntry)) domain.PerformanceSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[entryType] == nil {
		f.subs[entryType] = map[int]func([]domain.PerformanceEntry){}
	}
	f.nextID++
	f.subs[entryType][f.nextID] = fn
	return subscription{feed: f, entryType: entryType, id: f.nextID}
}

// NavigationTiming возвращает запись навигации, присланную страницей.
func (f *Feed) NavigationTiming() (domain.NavigationTiming, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timing == nil {
		return domain.NavigationTiming{}, false
	}
	return *f.timing, true
}

// SetNavigationTiming сохраняет тайминги очередной навигации; монитор
// прочитает их при ближайшей установке наблюдателей.
func (f *Feed) SetNavigationTiming(t domain.NavigationTiming) {
	f.mu.Lock()
	f.timing = &t
	f.mu.Unlock()
}

// Publish раздаёт пришедшие записи активным подписчикам, группируя по
// семейству и сохраняя порядок внутри группы.
func (f *Feed) Publish(entries []domain.PerformanceEntry) {
	grouped := map[string][]domain.PerformanceEntry{}
	for _, entry := range entries {
		grouped[entry.EntryType] = append(grouped[entry.EntryType], entry)
	}

	f.mu.Lock()
	dispatch := make([]func(), 0, len(grouped))
	for entryType, batch := range grouped {
		for _, fn := range f.subs[entryType] {
			fn := fn
			batch := batch
			dispatch = append(dispatch, func() { fn(batch) })
		}
	}
	f.mu.Unlock()

	for _, call := range dispatch {
		call()
	}
}
