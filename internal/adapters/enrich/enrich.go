package enrich

import (
	"github.com/mssola/useragent"

	"search-telemetry/internal/domain"
)

// ParseAgent разбирает User-Agent конверта: обучающей выборке нужны
// нормализованные сведения о браузере, а не сырая строка.
func ParseAgent(uaString string) domain.EnrichedAgent {
	ua := useragent.New(uaString)
	name, version := ua.Browser()
	return domain.EnrichedAgent{
		Browser:        name,
		BrowserVersion: version,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		Bot:            ua.Bot(),
	}
}
