package snapshot

import (
	"testing"

	"search-telemetry/internal/domain"
)

type stubEnv struct {
	ua      string
	query   string
	network *domain.NetworkInfo
	device  *domain.DeviceInfo
}

func (e *stubEnv) UserAgent() string            { return e.ua }
func (e *stubEnv) Language() string             { return "ru-RU" }
func (e *stubEnv) Platform() string             { return "Linux x86_64" }
func (e *stubEnv) Screen() (int, int)           { return 1920, 1080 }
func (e *stubEnv) Viewport() (int, int)         { return 1200, 800 }
func (e *stubEnv) PixelRatio() float64          { return 2 }
func (e *stubEnv) Timezone() string             { return "Europe/Amsterdam" }
func (e *stubEnv) Network() *domain.NetworkInfo { return e.network }
func (e *stubEnv) Device() *domain.DeviceInfo   { return e.device }
func (e *stubEnv) Location() (string, string, string) {
	return "example.com", "/search", e.query
}

func TestBrowserFamilyOrder(t *testing.T) {
	cases := map[string]string{
		"Mozilla/5.0 Chrome/120 Safari/537": "Chrome",
		"Mozilla/5.0 Gecko Firefox/119":     "Firefox",
		"Mozilla/5.0 Version/17 Safari/605": "Safari",
		"Mozilla/5.0 Edge/118":              "Edge",
		"curl/8.0":                          "Unknown",
	}
	for ua, expected := range cases {
		if got := BrowserFamily(ua); got != expected {
			t.Fatalf("для %q ожидали %s, получили %s", ua, expected, got)
		}
	}
}

func TestCaptureToleratesMissingCapabilities(t *testing.T) {
	snap := Capture(&stubEnv{ua: "curl/8.0"})
	if snap.Network != nil || snap.Device != nil {
		t.Fatalf("отсутствующие возможности должны давать nil")
	}
	if snap.BrowserFamily != "Unknown" {
		t.Fatalf("ожидали Unknown, получили %s", snap.BrowserFamily)
	}
	if snap.Domain != "example.com" || snap.Path != "/search" {
		t.Fatalf("неверная локация: %s%s", snap.Domain, snap.Path)
	}
}

func TestCaptureKeepsOptionalInfo(t *testing.T) {
	env := &stubEnv{
		ua:      "Mozilla/5.0 Chrome/120",
		network: &domain.NetworkInfo{EffectiveType: "4g", DownlinkMbps: 10},
		device:  &domain.DeviceInfo{MemoryGB: 8, Cores: 4},
	}
	snap := Capture(env)
	if snap.Network == nil || snap.Network.EffectiveType != "4g" {
		t.Fatalf("сведения о сети потеряны")
	}
	if snap.Device == nil || snap.Device.Cores != 4 {
		t.Fatalf("сведения об устройстве потеряны")
	}
}

func TestParseUTM(t *testing.T) {
	params := ParseUTM("utm_source=yandex&utm_medium=cpc&q=boots")
	if params == nil {
		t.Fatalf("ожидали метки атрибуции")
	}
	if params.Source != "yandex" || params.Medium != "cpc" {
		t.Fatalf("неверные метки: %+v", params)
	}
	if ParseUTM("q=boots") != nil {
		t.Fatalf("без utm-меток ожидали nil")
	}
}
