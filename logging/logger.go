package logging

import "time"

// Logger formats lines and hands them to the manager's queue. It never blocks
// on I/O; when the queue is full the oldest undrained line is dropped.
// Safe for concurrent use.
type Logger struct {
	name string
	m    *Manager
}

// Name returns the tag written in front of every line.
func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) Debug(text string) { l.Log(LevelDebug, text) }
func (l *Logger) Info(text string)  { l.Log(LevelInfo, text) }
func (l *Logger) Warn(text string)  { l.Log(LevelWarn, text) }
func (l *Logger) Error(text string) { l.Log(LevelError, text) }
func (l *Logger) Fatal(text string) { l.Log(LevelFatal, text) }

// Log queues text at level.
func (l *Logger) Log(level Level, text string) {
	l.logAt(l.m.now(), level, text)
}

// LogErr queues text at level with err's message appended.
func (l *Logger) LogErr(level Level, text string, err error) {
	if err != nil {
		text += err.Error()
	}
	l.Log(level, text)
}

func (l *Logger) logAt(t time.Time, level Level, text string) {
	l.m.enqueue(l.m.format(t, l.name, level, text))
}
