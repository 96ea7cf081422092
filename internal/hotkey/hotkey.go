// Package hotkey provides a global hotkey listener using gohook.
//
// In "hold" mode the combo maps key down/up to start/stop events. In
// "toggle" mode every press emits a single toggle event; deciding what a
// toggle means (and ignoring repeats while busy) is left to the consumer,
// which keeps repeat-suppression out of the input layer.
package hotkey

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// EventType classifies a hotkey event.
type EventType int

const (
	// EventStart signals the combo was pressed in hold mode.
	EventStart EventType = iota
	// EventStop signals the combo was released in hold mode.
	EventStop
	// EventToggle signals a combo press in toggle mode.
	EventToggle
)

// Event is emitted on the listener's channel.
type Event struct {
	Type EventType
}

// Listener manages a global hotkey and emits events for it.
type Listener struct {
	keys []string
	mode string // "hold" or "toggle"
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// NewListener creates a Listener for the given key combo and mode.
// keys are lowercase key names (e.g., ["ctrl", "alt", "space"]).
func NewListener(keys []string, mode string) *Listener {
	return &Listener{
		keys: keys,
		mode: mode,
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
	}
}

// Events returns the channel receiving hotkey events. It is closed when
// the underlying hook terminates.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

// Run blocks listening for the global hotkey until Close is called.
// Run it in a goroutine.
func (l *Listener) Run() {
	if l.mode == "toggle" {
		hook.Register(hook.KeyDown, l.keys, func(e hook.Event) {
			l.emit(Event{Type: EventToggle})
		})
	} else {
		hook.Register(hook.KeyDown, l.keys, func(e hook.Event) {
			l.emit(Event{Type: EventStart})
		})
		hook.Register(hook.KeyUp, l.keys, func(e hook.Event) {
			l.emit(Event{Type: EventStop})
		})
	}

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// emit never blocks; a full channel drops the event. The consumer's own
// state guards make a dropped or repeated event harmless.
func (l *Listener) emit(ev Event) {
	select {
	case l.ch <- ev:
	default:
		slog.Debug("hotkey event dropped, channel full", "type", ev.Type)
	}
}

// Close terminates the listener. Safe to call multiple times.
func (l *Listener) Close() {
	l.once.Do(func() {
		close(l.done)
	})
}
