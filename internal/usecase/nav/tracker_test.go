package nav

import "testing"

func TestHandlePathChangeFiresOnce(t *testing.T) {
	var resets int
	tracker := New("/search", func(string) { resets++ })

	if !tracker.HandlePathChange("/item/42") {
		t.Fatalf("ожидали смену пути")
	}
	if tracker.HandlePathChange("/item/42") {
		t.Fatalf("повторное уведомление не должно давать смену")
	}
	if resets != 1 {
		t.Fatalf("ожидали ровно один сброс, получили %d", resets)
	}
	if tracker.CurrentPath() != "/item/42" {
		t.Fatalf("путь не обновился: %s", tracker.CurrentPath())
	}
}

func TestHandlePathChangeSamePathNoop(t *testing.T) {
	var resets int
	tracker := New("/search", func(string) { resets++ })

	if tracker.HandlePathChange("/search") {
		t.Fatalf("тот же путь не должен считаться сменой")
	}
	if resets != 0 {
		t.Fatalf("побочных эффектов быть не должно, получили %d", resets)
	}
}
