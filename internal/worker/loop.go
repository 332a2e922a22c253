// Package worker runs the periodic background jobs: the expiry sweeper and the
// refund retry worker.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// loop calls tick every interval until Stop. A tick that overruns delays the next one.
type loop struct {
	name     string
	interval time.Duration
	tick     func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func newLoop(name string, interval time.Duration, tick func(ctx context.Context)) *loop {
	return &loop{name: name, interval: interval, tick: tick}
}

func (l *loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		slog.Info("worker started", "worker", l.name, "interval", l.interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.tick(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the running tick, bounded by ctx.
func (l *loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel = nil
	l.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		slog.Info("worker stopped", "worker", l.name)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
