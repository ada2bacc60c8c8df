package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"search-telemetry/internal/domain"
)

// Ключи долговременного хранилища идентификаторов.
const (
	keySessionID = "telemetry:session:id"
	keySessionTS = "telemetry:session:ts"
	keyColor     = "telemetry:color"
)

// Store управляет анонимной идентичностью: сессией с истечением по
// неактивности и бессрочным цветовым идентификатором.
type Store struct {
	storage  domain.Storage
	clock    domain.Clock
	rand     domain.RandomSource
	timeout  time.Duration
	injected string
}

// New создаёт хранилище идентичности. Непустой injectedSessionID
// используется безусловно, минуя проверку истечения.
func New(storage domain.Storage, clock domain.Clock, rand domain.RandomSource, timeout time.Duration, injectedSessionID string) *Store {
	return &Store{storage: storage, clock: clock, rand: rand, timeout: timeout, injected: injectedSessionID}
}

// GetOrCreateSessionID выводит действующий идентификатор сессии:
// внедрённый, сохранённый и не истёкший, либо свежесгенерированный.
func (s *Store) GetOrCreateSessionID(ctx context.Context) (string, error) {
	if s.injected != "" {
		if err := s.persist(ctx, s.injected); err != nil {
			return "", err
		}
		return s.injected, nil
	}

	id, err := s.storage.Get(ctx, keySessionID)
	switch {
	case err == nil && id != "":
		ts, tsErr := s.storage.Get(ctx, keySessionTS)
		if tsErr == nil {
			if stamp, parseErr := strconv.ParseInt(ts, 10, 64); parseErr == nil {
				if s.clock.Now().Sub(time.UnixMilli(stamp)) < s.timeout {
					return id, nil
				}
			}
		} else if !errors.Is(tsErr, domain.ErrKeyNotFound) {
			return "", fmt.Errorf("чтение метки времени сессии: %w", tsErr)
		}
	case err != nil && !errors.Is(err, domain.ErrKeyNotFound):
		return "", fmt.Errorf("чтение идентификатора сессии: %w", err)
	}

	fresh := s.rand.SessionID()
	if err := s.persist(ctx, fresh); err != nil {
		return "", err
	}
	return fresh, nil
}

// ResetSession сбрасывает сохранённое состояние и выводит идентификатор
// заново. Без внедрения результат всегда новый.
func (s *Store) ResetSession(ctx context.Context) (string, error) {
	if err := s.storage.Remove(ctx, keySessionID); err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
		return "", fmt.Errorf("сброс идентификатора сессии: %w", err)
	}
	if err := s.storage.Remove(ctx, keySessionTS); err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
		return "", fmt.Errorf("сброс метки времени сессии: %w", err)
	}
	return s.GetOrCreateSessionID(ctx)
}

// CheckExpiration — идемпотентная проверка по таймеру: при превышении
// таймаута неактивности сессия пересоздаётся. Возвращает действующий
// идентификатор и признак того, что произошёл сброс.
func (s *Store) CheckExpiration(ctx context.Context) (string, bool, error) {
	ts, err := s.storage.Get(ctx, keySessionTS)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("чтение метки времени сессии: %w", err)
	}
	stamp, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		stamp = 0
	}
	if s.clock.Now().Sub(time.UnixMilli(stamp)) < s.timeout {
		return "", false, nil
	}
	id, resetErr := s.ResetSession(ctx)
	if resetErr != nil {
		return "", false, resetErr
	}
	return id, true, nil
}

// Touch обновляет метку последней активности текущей сессии.
func (s *Store) Touch(ctx context.Context) error {
	now := strconv.FormatInt(s.clock.Now().UnixMilli(), 10)
	if err := s.storage.Set(ctx, keySessionTS, now); err != nil {
		return fmt.Errorf("обновление метки времени сессии: %w", err)
	}
	return nil
}

// GetOrCreateColorIdentifier возвращает бессрочный анонимный идентификатор
// вида #RRGGBB-#RRGGBB, создавая его при первом обращении.
func (s *Store) GetOrCreateColorIdentifier(ctx context.Context) (string, error) {
	color, err := s.storage.Get(ctx, keyColor)
	if err == nil && color != "" {
		return color, nil
	}
	if err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
		return "", fmt.Errorf("чтение цветового идентификатора: %w", err)
	}
	color = fmt.Sprintf("%s-%s", s.rand.HexColor(), s.rand.HexColor())
	if err := s.storage.Set(ctx, keyColor, color); err != nil {
		return "", fmt.Errorf("сохранение цветового идентификатора: %w", err)
	}
	return color, nil
}

func (s *Store) persist(ctx context.Context, id string) error {
	if err := s.storage.Set(ctx, keySessionID, id); err != nil {
		return fmt.Errorf("сохранение идентификатора сессии: %w", err)
	}
	return s.Touch(ctx)
}
