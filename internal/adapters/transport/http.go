package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"search-telemetry/internal/domain"
)

const beaconTimeout = 2 * time.Second

// HTTP доставляет пачки обычным POST с JSON-телом и поддерживает
// beacon-режим «последнего шанса» при выгрузке страницы.
type HTTP struct {
	client *http.Client
}

// NewHTTP создаёт транспорт с указанным таймаутом запроса.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{client: &http.Client{Timeout: timeout}}
}

var (
	_ domain.Transport    = (*HTTP)(nil)
	_ domain.BeaconSender = (*HTTP)(nil)
)

// Post отправляет тело на endpoint. Непустой bearer добавляется в
// заголовок авторизации. Неуспешный статус — ошибка доставки.
func (t *HTTP) Post(ctx context.Context, endpoint string, body []byte, bearer string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("выполнение запроса: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("доставка отклонена: статус %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

// Beacon — негарантированная отправка с коротким таймаутом: ответ не
// читается, важен лишь факт принятия запроса.
func (t *HTTP) Beacon(endpoint string, body []byte) bool {
	ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 300
}
