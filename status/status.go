// Package status carries lifecycle and progress events from board
// components to whoever renders them: an example's labels, the log, or both.
package status

import (
	"log/slog"
	"sync"
)

// Kind classifies an Event.
type Kind uint8

const (
	Info Kind = iota
	Progress
	Success
	Failure
)

func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Progress:
		return "progress"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// Event is one status change reported by a component.
type Event struct {
	Source  string
	Kind    Kind
	Message string
	Err     error
}

// Observer receives status events. Notify may be called from any goroutine
// and must not block on the display lock for long.
type Observer interface {
	Notify(ev Event)
}

// Func adapts a function to an Observer.
type Func func(ev Event)

func (f Func) Notify(ev Event) {
	if f != nil {
		f(ev)
	}
}

// Nop discards events.
var Nop Observer = Func(nil)

// Multi fans events out to every non-nil observer in order.
func Multi(obs ...Observer) Observer {
	var out multi
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multi []Observer

func (m multi) Notify(ev Event) {
	for _, o := range m {
		o.Notify(ev)
	}
}

// Log returns an observer that writes events to l.
func Log(l *slog.Logger) Observer {
	return Func(func(ev Event) {
		if l == nil {
			return
		}
		args := []any{"source", ev.Source}
		if ev.Err != nil {
			args = append(args, "err", ev.Err)
		}
		switch ev.Kind {
		case Failure:
			l.Error(ev.Message, args...)
		case Progress:
			l.Debug(ev.Message, args...)
		default:
			l.Info(ev.Message, args...)
		}
	})
}

// Recorder keeps every event; tests use it to assert on emitted sequences.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many recorded events have the given kind.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}
