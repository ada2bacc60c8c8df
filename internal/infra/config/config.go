package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	PGDSN     string `envconfig:"PG_DSN"`
	RabbitURL string `envconfig:"RABBITMQ_URL"`
	Exchange  string `envconfig:"TELEMETRY_EXCHANGE" default:"telemetry"`

	Collector struct {
		Endpoint                 string        `envconfig:"EVENTS_ENDPOINT"`
		MetricsEndpoint          string        `envconfig:"METRICS_ENDPOINT"`
		Selector                 string        `envconfig:"TRACK_SELECTOR" default:"[data-item-id]"`
		DataAttribute            string        `envconfig:"DATA_ATTRIBUTE" default:"data-item-id"`
		SearchRequestIDAttribute string        `envconfig:"SEARCH_REQUEST_ID_ATTRIBUTE" default:"data-search-request-id"`
		SessionTimeout           time.Duration `envconfig:"SESSION_TIMEOUT" default:"30m"`
		BatchSize                int           `envconfig:"BATCH_SIZE" default:"10"`
		SendInterval             time.Duration `envconfig:"SEND_INTERVAL" default:"5s"`
		SessionID                string        `envconfig:"SESSION_ID"`
		SearchRequestID          string        `envconfig:"SEARCH_REQUEST_ID"`
		PerformanceMetrics       bool          `envconfig:"PERFORMANCE_METRICS" default:"true"`
		BearerToken              string        `envconfig:"BEARER_TOKEN"`
		HTTPTimeout              time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	} `envconfig:""`

	Sink struct {
		BearerToken string `envconfig:"SINK_BEARER_TOKEN"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
