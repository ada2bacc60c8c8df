package env

import (
	"sync"

	"search-telemetry/internal/domain"
)

// Handshake — факты окружения, присылаемые хост-страницей при
// рукопожатии с relay.
type Handshake struct {
	UserAgent      string              `json:"user_agent"`
	Language       string              `json:"language"`
	Platform       string              `json:"platform"`
	ScreenWidth    int                 `json:"screen_width"`
	ScreenHeight   int                 `json:"screen_height"`
	ViewportWidth  int                 `json:"viewport_width"`
	ViewportHeight int                 `json:"viewport_height"`
	PixelRatio     float64             `json:"pixel_ratio"`
	Timezone       string              `json:"timezone"`
	Domain         string              `json:"domain"`
	Path           string              `json:"path"`
	RawQuery       string              `json:"raw_query"`
	Network        *domain.NetworkInfo `json:"network,omitempty"`
	Device         *domain.DeviceInfo  `json:"device,omitempty"`
}

// Static реализует domain.Environment поверх последнего рукопожатия.
type Static struct {
	mu sync.RWMutex
	h  Handshake
}

// NewStatic создаёт окружение из рукопожатия.
func NewStatic(h Handshake) *Static { return &Static{h: h} }

var _ domain.Environment = (*Static)(nil)

// Update заменяет окружение целиком (повторное рукопожатие).
func (s *Static) Update(h Handshake) {
	s.mu.Lock()
	s.h = h
	s.mu.Unlock()
}

// UpdatePath обновляет путь и строку запроса при SPA-навигации.
func (s *Static) UpdatePath(path, rawQuery string) {
	s.mu.Lock()
	s.h.Path = path
	s.h.RawQuery = rawQuery
	s.mu.Unlock()
}

func (s *Static) UserAgent() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.UserAgent
}

func (s *Static) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.Language
}

func (s *Static) Platform() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.Platform
}

func (s *Static) Screen() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.ScreenWidth, s.h.ScreenHeight
}

func (s *Static) Viewport() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.ViewportWidth, s.h.ViewportHeight
}

func (s *Static) PixelRatio() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.PixelRatio
}

func (s *Static) Timezone() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.Timezone
}

func (s *Static) Location() (string, string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.Domain, s.h.Path, s.h.RawQuery
}

func (s *Static) Network() *domain.NetworkInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.Network
}

func (s *Static) Device() *domain.DeviceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h.Device
}
