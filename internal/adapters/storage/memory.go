package storage

import (
	"context"
	"sync"

	"search-telemetry/internal/domain"
)

// Memory реализует domain.Storage в памяти процесса — сессионный
// вариант хранилища: идентичность живёт не дольше процесса.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

var _ domain.Storage = (*Memory)(nil)

// Get возвращает значение ключа.
func (s *Memory) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

// Set задаёт значение.
func (s *Memory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove удаляет ключ.
func (s *Memory) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
