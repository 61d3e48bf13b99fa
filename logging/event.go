package logging

import "time"

// Event is a pooled log record. Events are preallocated by the manager and
// overwritten in place, lap after lap.
type Event struct {
	Time   time.Time
	Source string
	Level  Level
	Msg    string
	Err    error
}

func (e *Event) text() string {
	if e.Err != nil {
		return e.Msg + e.Err.Error()
	}
	return e.Msg
}

// EventLogger writes records into the manager's Event pool instead of
// formatting a string on the caller's goroutine. Formatting happens on the
// drain goroutine.
//
// The pool does not guard the handoff: the drain may read an Event while its
// producer is still filling it in, and an Event left undrained for a whole
// lap is overwritten. Size pool_capacity for the burst you expect. Without a
// pool configured, EventLogger falls back to the line queue.
type EventLogger struct {
	name string
	m    *Manager
}

// Log records msg and err at level.
func (l *EventLogger) Log(level Level, msg string, err error) {
	now := l.m.now()
	if l.m.events == nil {
		e := Event{Time: now, Source: l.name, Level: level, Msg: msg, Err: err}
		l.m.enqueue(l.m.format(now, l.name, level, e.text()))
		return
	}

	e := l.m.events.Retrieve()
	e.Time = now
	e.Source = l.name
	e.Level = level
	e.Msg = msg
	e.Err = err
	l.m.metrics.recordQueued()
}
