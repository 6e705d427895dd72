package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/krew-solutions/ascetic-signals-go/asceticsig/signals"
)

// FireFunc fires one scheduled deferred call and reports whether it was still pending.
type FireFunc func(id int64) bool

// Loop is a single-goroutine event loop. Other goroutines hand it work
// through Schedule and Post; the loop goroutine runs it in Flush.
type Loop struct {
	mu     sync.Mutex
	ids    []int64
	inbox  []func()
	tick   time.Duration
	logger zerolog.Logger
}

func NewLoop(tick time.Duration, logger zerolog.Logger) *Loop {
	return &Loop{
		tick:   tick,
		logger: logger.With().Str("component", "loop").Logger(),
	}
}

// Bind makes registry schedule its deferred calls on the loop.
func (l *Loop) Bind(registry *signals.DeferredRegistry) {
	registry.SetScheduler(l.Schedule)
}

// Schedule queues a deferred call id. Safe for concurrent use.
func (l *Loop) Schedule(id int64) {
	l.mu.Lock()
	l.ids = append(l.ids, id)
	l.mu.Unlock()
}

// Post queues fn to run on the loop goroutine. Safe for concurrent use.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.inbox = append(l.inbox, fn)
	l.mu.Unlock()
}

// Len returns the number of queued ids and posted funcs.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids) + len(l.inbox)
}

// Flush runs the posted funcs and then fires the ids queued before it
// started. Work queued while flushing waits for the next Flush. Returns the
// number of calls that were fired.
func (l *Loop) Flush(fire FireFunc) int {
	l.mu.Lock()
	inbox := l.inbox
	l.inbox = nil
	l.mu.Unlock()

	for _, fn := range inbox {
		fn()
	}

	l.mu.Lock()
	ids := l.ids
	l.ids = nil
	l.mu.Unlock()

	fired := 0
	for _, id := range ids {
		if fire(id) {
			fired++
		}
	}
	if len(inbox) > 0 || len(ids) > 0 {
		l.logger.Trace().
			Int("posted", len(inbox)).
			Int("scheduled", len(ids)).
			Int("fired", fired).
			Msg("flushed")
	}
	return fired
}

// Run flushes on every tick until ctx is done, on the calling goroutine.
func (l *Loop) Run(ctx context.Context, fire FireFunc) error {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	l.logger.Debug().Dur("tick", l.tick).Msg("loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug().Int("queued", l.Len()).Msg("loop stopped")
			return ctx.Err()
		case <-ticker.C:
			l.Flush(fire)
		}
	}
}
