package hotkey

import "testing"

func TestEmitNeverBlocks(t *testing.T) {
	l := NewListener([]string{"ctrl", "alt", "space"}, "toggle")

	// Nobody is draining the channel; overfilling it must not block.
	for i := 0; i < 100; i++ {
		l.emit(Event{Type: EventToggle})
	}

	if got := len(l.ch); got != cap(l.ch) {
		t.Errorf("buffered events = %d, want %d", got, cap(l.ch))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	l := NewListener([]string{"f9"}, "hold")
	l.Close()
	l.Close()
}
