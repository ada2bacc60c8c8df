package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"search-telemetry/internal/domain"
)

// Redis реализует domain.Storage поверх Redis — долговременный вариант
// хранилища идентификаторов, переживающий перезапуски страницы.
// Ключи дополняются префиксом клиента, чтобы реплики relay не делили
// идентичность между разными страницами.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis создаёт хранилище.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

var _ domain.Storage = (*Redis)(nil)

// Get возвращает значение ключа.
func (s *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrKeyNotFound
	}
	return v, err
}

// Set задаёт значение без срока жизни: истечение сессии — забота
// хранилища идентичности, а не Redis.
func (s *Redis) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

// Remove удаляет ключ.
func (s *Redis) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
