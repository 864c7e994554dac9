package match

import (
	"context"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/takoyaki/services/tycoon/internal/session"
)

// Runner drives the timers of every live session from one ticker.
type Runner struct {
	cache    *SessionCache
	hub      *SnapshotHub
	interval time.Duration
	now      func() time.Time
	logger   apt.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	shown  map[uuid.UUID]string
}

func NewRunner(cache *SessionCache, hub *SnapshotHub, interval time.Duration, logger apt.Logger) *Runner {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if interval <= 0 {
		interval = session.DefaultCookingTick
	}
	return &Runner{
		cache:    cache,
		hub:      hub,
		interval: interval,
		now:      time.Now,
		logger:   logger,
		shown:    make(map[uuid.UUID]string),
	}
}

// Start launches the tick loop. It is detached from ctx, use Stop to end it.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(loopCtx, r.done)
	r.logger.Info("match runner started", "interval", r.interval.String())
	return nil
}

func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		r.logger.Info("match runner stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.TickAll(ctx)
		}
	}
}

// TickAll advances every running session to the current time and pushes a
// snapshot to viewers when something they can see changed.
func (r *Runner) TickAll(ctx context.Context) {
	now := r.now()
	live := make(map[uuid.UUID]struct{})

	for _, id := range r.cache.IDs() {
		live[id] = struct{}{}

		var (
			snap    session.Snapshot
			changed bool
		)
		err := r.cache.Update(ctx, id, func(s *session.Session) {
			if !s.Running() {
				return
			}
			report := s.Tick(now)
			snap = s.Snapshot(now)
			changed = report.Ended || report.Spawned || len(report.Changes) > 0
		})
		if err != nil {
			continue
		}
		if snap.ID == uuid.Nil {
			continue
		}

		if r.shown[id] != snap.Remaining {
			r.shown[id] = snap.Remaining
			changed = true
		}
		if changed && r.hub != nil {
			r.hub.Broadcast(id, snap)
		}
	}

	for id := range r.shown {
		if _, ok := live[id]; !ok {
			delete(r.shown, id)
		}
	}
}
