package collector

import "search-telemetry/internal/domain"

// Bind подключает сборщик к документу хост-страницы: клики по
// отслеживаемым элементам, скрытие вкладки и выгрузка страницы.
// Скрытие и выгрузка — последний шанс доставки, поэтому очередь
// выталкивается beacon-транспортом.
func (c *Collector) Bind(doc domain.Document) {
	detachClick := doc.OnClick(func(el domain.Element) { c.handleElementClick(doc, el) })
	detachHidden := doc.OnVisibilityHidden(func() { c.sendEvents(true) })
	detachUnload := doc.OnUnload(func() { c.Flush(true) })

	c.mu.Lock()
	c.detach = append(c.detach, detachClick, detachHidden, detachUnload)
	c.mu.Unlock()
}

func (c *Collector) handleElementClick(doc domain.Document, el domain.Element) {
	itemID, ok := el.Attr(c.opts.DataAttribute)
	if !ok || itemID == "" {
		return
	}
	// Позиция — единица плюс индекс среди элементов, подходящих под
	// селектор на момент клика; ноль, если элемент уже не в выборке.
	position := 0
	for i, candidate := range doc.QueryAll(c.opts.Selector) {
		if candidate == el {
			position = i + 1
			break
		}
	}
	searchRequestID, _ := el.Attr(c.opts.SearchRequestIDAttribute)
	c.TrackClick(domain.ClickData{
		ItemID:          itemID,
		Position:        position,
		SearchRequestID: searchRequestID,
	})
}
