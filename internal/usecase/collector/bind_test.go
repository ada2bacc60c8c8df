package collector

import (
	"testing"

	"search-telemetry/internal/domain"
)

type fakeElement struct {
	attrs map[string]string
}

func (e *fakeElement) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

type fakeDocument struct {
	elements []domain.Element
	click    func(domain.Element)
	hidden   func()
	unload   func()
	detached int
}

func (d *fakeDocument) QueryAll(string) []domain.Element { return d.elements }

func (d *fakeDocument) OnClick(fn func(domain.Element)) func() {
	d.click = fn
	return func() { d.detached++ }
}

func (d *fakeDocument) OnVisibilityHidden(fn func()) func() {
	d.hidden = fn
	return func() { d.detached++ }
}

func (d *fakeDocument) OnUnload(fn func()) func() {
	d.unload = fn
	return func() { d.detached++ }
}

func trackableElement(itemID string) domain.Element {
	return &fakeElement{attrs: map[string]string{"data-item-id": itemID}}
}

func TestClickPositionIsOneBased(t *testing.T) {
	transport := &postTransport{}
	c := newCollector(t, Options{BatchSize: 100}, transport)

	doc := &fakeDocument{}
	for i := 0; i < 5; i++ {
		doc.elements = append(doc.elements, trackableElement("item"))
	}
	target := &fakeElement{attrs: map[string]string{
		"data-item-id":           "42",
		"data-search-request-id": "req-9",
	}}
	doc.elements[2] = target
	c.Bind(doc)

	doc.click(target)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) != 1 {
		t.Fatalf("ожидали одно событие клика, получили %d", len(c.events))
	}
	event := c.events[0]
	if event.Type != domain.EventClick || event.ItemID != "42" {
		t.Fatalf("неверное событие клика: %+v", event)
	}
	if event.Position != 3 {
		t.Fatalf("ожидали позицию 3, получили %d", event.Position)
	}
	if event.SearchRequestID != "req-9" {
		t.Fatalf("идентификатор запроса должен читаться с элемента")
	}
}

func TestClickWithoutItemIDIgnored(t *testing.T) {
	transport := &postTransport{}
	c := newCollector(t, Options{BatchSize: 100}, transport)

	doc := &fakeDocument{}
	c.Bind(doc)
	doc.click(&fakeElement{attrs: map[string]string{}})

	if queueLen(c) != 0 {
		t.Fatalf("клик без item-id не должен попадать в очередь")
	}
}

func TestVisibilityHiddenFlushesViaBeacon(t *testing.T) {
	transport := &beaconTransport{beaconOK: true}
	c := newCollector(t, Options{BatchSize: 100}, transport)

	doc := &fakeDocument{}
	c.Bind(doc)
	c.TrackEvent("a", nil)
	doc.hidden()

	if len(transport.beacons) != 1 {
		t.Fatalf("скрытие вкладки должно выталкивать очередь beacon-ом")
	}
}

func TestDestroyDetachesDocumentListeners(t *testing.T) {
	transport := &postTransport{}
	c := newCollector(t, Options{BatchSize: 100}, transport)

	doc := &fakeDocument{}
	c.Bind(doc)
	c.Destroy()

	if doc.detached != 3 {
		t.Fatalf("ожидали отсоединение трёх слушателей, получили %d", doc.detached)
	}
}
