// Package logging appends log lines to a file from a single background
// goroutine, fed by the ring buffers of package ringbuffer.
//
// Producers never wait on the file. A Logger formats the line on the calling
// goroutine and adds it to a LockingTorus; an EventLogger
// fills a pooled Event in place and leaves formatting to the drain. When
// producers outrun the drain the oldest lines are overwritten.
//
//	m, err := logging.NewManager(logging.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//	go m.Run(ctx) // returns ctx.Err(), or ErrClosed once m is closed
//
//	log := m.Logger("worker-1")
//	log.Info("started")
//
//	slog.SetDefault(slog.New(logging.NewHandler(m.Logger("app"), nil)))
//
// Lines look like
//
//	<15:04:05> [worker-1/INFO] : started
//
// and are wrapped every MaxLineWidth characters, continuation lines starting
// with a tab.
package logging
