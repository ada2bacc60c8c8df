package sysid

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"search-telemetry/internal/domain"
)

// Clock реализует domain.Clock через системное время.
type Clock struct{}

// Now возвращает текущее время.
func (Clock) Now() time.Time { return time.Now() }

// Random реализует domain.RandomSource через crypto/rand и UUID v4.
type Random struct{}

var (
	_ domain.Clock        = Clock{}
	_ domain.RandomSource = Random{}
)

// SessionID генерирует UUID v4.
func (Random) SessionID() string { return uuid.NewString() }

// HexColor генерирует случайный цвет вида #A1B2C3.
func (Random) HexColor() string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("#%02X%02X%02X", b[0], b[1], b[2])
}
