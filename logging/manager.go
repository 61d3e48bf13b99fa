package logging

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xenon-dev/ringbuffer"
)

// ErrClosed is returned by Run once the manager has been closed.
var ErrClosed = errors.New("log manager closed")

// idleYields is how many times Run yields on an empty queue before it makes
// another pass anyway; pooled events do not show up in IsEmpty.
const idleYields = 64

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	logger   *slog.Logger
	registry prometheus.Registerer
	now      func() time.Time
}

// WithLogger sets where the manager reports its own failures.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *managerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics registers the manager's counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *managerOptions) {
		o.registry = reg
	}
}

// WithClock replaces time.Now for line timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *managerOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// Manager owns a log file and the ring buffers that feed it. Producers hand
// lines to the rings through Logger, EventLogger or Handler and never touch
// the file; a single drain goroutine (Run) moves them to disk.
type Manager struct {
	cfg     Config
	path    string
	queue   *ringbuffer.LockingTorus[string]
	events  *ringbuffer.Pool[Event] // nil unless cfg.PoolCapacity > 0
	logger  *slog.Logger
	metrics *metrics
	now     func() time.Time

	mu     sync.Mutex // guards the writer and the pool's consumer side
	file   io.WriteCloser
	w      *bufio.Writer
	closed bool
}

// NewManager validates cfg, opens the log file for appending (creating the
// directory and file as needed) and builds the rings.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := managerOptions{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	m := &Manager{
		cfg:    cfg,
		path:   filepath.Join(cfg.Directory, cfg.FileName),
		logger: o.logger.With("component", "logging", "file", cfg.FileName),
		now:    o.now,
	}

	var err error
	// The drain relies on ConsumeAll stopping at the first empty slot, which
	// keeps the tail next to the oldest line across partial drains.
	if m.queue, err = ringbuffer.NewLockingTorus[string](cfg.Capacity); err != nil {
		return nil, err
	}

	if cfg.PoolCapacity > 0 {
		if m.events, err = ringbuffer.NewPool[Event](cfg.PoolCapacity, nil); err != nil {
			return nil, err
		}
	}

	if o.registry != nil {
		if m.metrics, err = newMetrics(o.registry, cfg.FileName); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	m.file = f
	m.w = bufio.NewWriter(f)

	return m, nil
}

// Path returns the log file path.
func (m *Manager) Path() string {
	return m.path
}

// Logger returns a Logger whose lines are tagged with name.
func (m *Manager) Logger(name string) *Logger {
	return &Logger{name: name, m: m}
}

// EventLogger returns an EventLogger whose events are tagged with name.
func (m *Manager) EventLogger(name string) *EventLogger {
	return &EventLogger{name: name, m: m}
}

// format builds "<time> [name/LEVEL] : text".
func (m *Manager) format(t time.Time, name string, level Level, text string) string {
	return "<" + t.Format(m.cfg.TimeFormat) + "> [" + name + "/" + level.String() + "] : " + text
}

func (m *Manager) enqueue(line string) {
	m.queue.Add(line)
	m.metrics.recordQueued()
}

// Drain makes one pass: every queued line and every polled event is appended
// to the file, then the file is flushed. It returns the number of records
// drained. Safe to call concurrently with producers.
func (m *Manager) Drain() int {
	n, _ := m.drain()
	return n
}

// drain is Drain that also reports whether the manager was still open.
func (m *Manager) drain() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, false
	}
	return m.drainLocked(), true
}

func (m *Manager) drainLocked() int {
	records, lines := 0, 0
	m.queue.ConsumeAll(func(line string) {
		records++
		lines += m.appendLine(line)
	})
	if m.events != nil {
		m.events.PollAll(func(e *Event) {
			records++
			lines += m.appendLine(m.format(e.Time, e.Source, e.Level, e.text()))
		})
	}

	m.metrics.recordDrain()
	if records == 0 {
		return 0
	}

	if err := m.w.Flush(); err != nil {
		// bufio keeps the first error forever; drop the unwritten lines so
		// the next pass gets a fresh attempt.
		m.w.Reset(m.file)
		m.metrics.recordWriteError()
		m.logger.Error("failed to append to log file, lines dropped", "path", m.path, "records", records, "error", err)
		return records
	}
	m.metrics.recordWritten(lines)
	return records
}

// appendLine writes line, wrapped every MaxLineWidth characters; continuation
// lines start with a tab. It returns the number of physical lines.
func (m *Manager) appendLine(line string) int {
	parts := wrap(line, m.cfg.MaxLineWidth)
	for i, part := range parts {
		if i > 0 {
			m.w.WriteByte('\t')
		}
		m.w.WriteString(part)
		m.w.WriteByte('\n')
	}
	return len(parts)
}

func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var parts []string
	for len(line) > 0 {
		cut, n := 0, 0
		for cut < len(line) && n < width {
			_, size := utf8.DecodeRuneInString(line[cut:])
			cut += size
			n++
		}
		parts = append(parts, line[:cut])
		line = line[cut:]
	}
	return parts
}

// Run drains until ctx is done, then makes a final pass and returns
// ctx.Err(). If the manager is closed first, Run returns ErrClosed. Between
// passes it yields while the queue looks empty, sleeping IdleWait if
// configured. Run is the single drain goroutine; start it once.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Debug("log drain started", "path", m.path)
	for {
		n, open := m.drain()
		if !open {
			m.logger.Debug("log drain stopped, manager closed", "path", m.path)
			return ErrClosed
		}
		if n == 0 && m.cfg.IdleWait > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(m.cfg.IdleWait):
			}
		}
		for idle := 0; idle < idleYields && m.queue.IsEmpty(); idle++ {
			if ctx.Err() != nil {
				break
			}
			runtime.Gosched()
		}

		if err := ctx.Err(); err != nil {
			m.Drain()
			m.logger.Debug("log drain stopped", "path", m.path)
			return err
		}
	}
}

// Close drains what is left, flushes and closes the file. Lines added after
// Close are never written. Calling Close twice is a no-op.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.drainLocked()
	m.closed = true

	flushErr := m.w.Flush()
	closeErr := m.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flush log file: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close log file: %w", closeErr)
	}
	return nil
}
