package logging

import "github.com/prometheus/client_golang/prometheus"

// metrics is nil when no registerer was given; every method tolerates that.
type metrics struct {
	queued      prometheus.Counter
	written     prometheus.Counter
	writeErrors prometheus.Counter
	drains      prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, file string) (*metrics, error) {
	labels := prometheus.Labels{"file": file}
	m := &metrics{
		queued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "log",
			Name:        "records_queued_total",
			ConstLabels: labels,
			Help:        "Total number of log records handed to the ring buffers",
		}),
		written: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "log",
			Name:        "lines_written_total",
			ConstLabels: labels,
			Help:        "Total number of physical lines appended to the log file",
		}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "log",
			Name:        "write_errors_total",
			ConstLabels: labels,
			Help:        "Total number of failed flushes to the log file",
		}),
		drains: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ringbuffer",
			Subsystem:   "log",
			Name:        "drain_passes_total",
			ConstLabels: labels,
			Help:        "Total number of drain passes over the ring buffers",
		}),
	}

	for _, c := range []prometheus.Collector{m.queued, m.written, m.writeErrors, m.drains} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) recordQueued() {
	if m != nil {
		m.queued.Inc()
	}
}

func (m *metrics) recordWritten(lines int) {
	if m != nil {
		m.written.Add(float64(lines))
	}
}

func (m *metrics) recordWriteError() {
	if m != nil {
		m.writeErrors.Inc()
	}
}

func (m *metrics) recordDrain() {
	if m != nil {
		m.drains.Inc()
	}
}
