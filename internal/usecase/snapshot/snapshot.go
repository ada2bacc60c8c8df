package snapshot

import (
	"net/url"
	"strings"

	"search-telemetry/internal/domain"
)

// Порядок проверки важен: подстрока "Safari" встречается и в UA Chrome,
// поэтому Chrome проверяется первым, Edge — последним.
var browserFamilies = []struct {
	needle string
	family string
}{
	{"Chrome", "Chrome"},
	{"Firefox", "Firefox"},
	{"Safari", "Safari"},
	{"Edge", "Edge"},
}

// BrowserFamily определяет семейство браузера упорядоченным поиском
// подстроки в User-Agent. Неопознанные агенты получают "Unknown".
func BrowserFamily(userAgent string) string {
	for _, candidate := range browserFamilies {
		if strings.Contains(userAgent, candidate.needle) {
			return candidate.family
		}
	}
	return "Unknown"
}

// Capture снимает срез окружения хост-страницы. Функция чистая:
// читает окружение и ничего не меняет. Отсутствующие возможности
// браузера дают nil-поля, а не ошибку.
func Capture(env domain.Environment) domain.ContextSnapshot {
	screenW, screenH := env.Screen()
	viewportW, viewportH := env.Viewport()
	pageDomain, path, _ := env.Location()
	return domain.ContextSnapshot{
		UserAgent:      env.UserAgent(),
		Language:       env.Language(),
		Platform:       env.Platform(),
		ScreenWidth:    screenW,
		ScreenHeight:   screenH,
		ViewportWidth:  viewportW,
		ViewportHeight: viewportH,
		PixelRatio:     env.PixelRatio(),
		Timezone:       env.Timezone(),
		BrowserFamily:  BrowserFamily(env.UserAgent()),
		Domain:         pageDomain,
		Path:           path,
		Network:        env.Network(),
		Device:         env.Device(),
	}
}

// ParseUTM извлекает метки атрибуции из строки запроса страницы.
// Возвращает nil, если ни одной метки нет.
func ParseUTM(rawQuery string) *domain.UTMParams {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil
	}
	params := domain.UTMParams{
		Source:   values.Get("utm_source"),
		Medium:   values.Get("utm_medium"),
		Campaign: values.Get("utm_campaign"),
		Term:     values.Get("utm_term"),
		Content:  values.Get("utm_content"),
	}
	if params == (domain.UTMParams{}) {
		return nil
	}
	return &params
}
