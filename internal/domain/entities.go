package domain

import "time"

// Session описывает анонимную сессию сбора телеметрии.
type Session struct {
	ID            string
	CreatedAt     time.Time
	LastTouchedAt time.Time
}

// UTMParams содержит метки атрибуции из строки запроса страницы.
type UTMParams struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Term     string `json:"term,omitempty"`
	Content  string `json:"content,omitempty"`
}

// NetworkInfo содержит необязательные сведения о сетевом подключении.
type NetworkInfo struct {
	EffectiveType string  `json:"effective_type"`
	DownlinkMbps  float64 `json:"downlink"`
	RTTMillis     int     `json:"rtt"`
	SaveData      bool    `json:"save_data"`
}

// DeviceInfo содержит необязательные сведения об устройстве.
type DeviceInfo struct {
	MemoryGB float64 `json:"memory_gb"`
	Cores    int     `json:"cores"`
}

// ContextSnapshot фиксирует окружение страницы на момент сессии или навигации.
type ContextSnapshot struct {
	UserAgent      string       `json:"user_agent"`
	Language       string       `json:"language"`
	Platform       string       `json:"platform"`
	ScreenWidth    int          `json:"screen_width"`
	ScreenHeight   int          `json:"screen_height"`
	ViewportWidth  int          `json:"viewport_width"`
	ViewportHeight int          `json:"viewport_height"`
	PixelRatio     float64      `json:"pixel_ratio"`
	Timezone       string       `json:"timezone"`
	BrowserFamily  string       `json:"browser_family"`
	Domain         string       `json:"domain"`
	Path           string       `json:"path"`
	Network        *NetworkInfo `json:"network,omitempty"`
	Device         *DeviceInfo  `json:"device,omitempty"`
}

// EventType различает варианты события.
type EventType string

const (
	// EventClick — клик по отслеживаемому элементу выдачи.
	EventClick EventType = "click"
	// EventCustom — произвольное событие, объявленное хост-страницей.
	EventCustom EventType = "custom_event"
)

// Event представляет одно событие взаимодействия. Поля заполняются
// в зависимости от Type: клик несёт ItemID/Position, произвольное
// событие — Name/Data.
type Event struct {
	Type            EventType      `json:"type"`
	Timestamp       time.Time      `json:"timestamp"`
	SessionID       string         `json:"session_id"`
	ItemID          string         `json:"item_id,omitempty"`
	Position        int            `json:"position,omitempty"`
	SearchRequestID string         `json:"search_request_id,omitempty"`
	Name            string         `json:"name,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
}

// ClickData описывает клик до обогащения сессионными полями.
type ClickData struct {
	ItemID          string
	Position        int
	SearchRequestID string
}

// EventBatch — конверт доставки пачки событий.
type EventBatch struct {
	Events          []Event         `json:"events"`
	SessionID       string          `json:"session_id"`
	ColorIdentifier string          `json:"color_identifier"`
	BrowserInfo     ContextSnapshot `json:"browser_info"`
	UTMParams       *UTMParams      `json:"utm_params,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// MetricBatch — конверт доставки метрик производительности.
type MetricBatch struct {
	Metrics   []PerformanceMetric `json:"metrics"`
	SessionID string              `json:"session_id"`
	Timestamp time.Time           `json:"timestamp"`
}
