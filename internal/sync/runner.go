package sync

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/omnipos-edge-agent/internal/outbox"
	"go.uber.org/zap"
)

type RunnerConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// Status is the informational signal the presentation layer displays.
// Sync never gates local operations; this is all it gets to show.
type Status struct {
	Online     bool       `json:"online"`
	Syncing    bool       `json:"syncing"`
	Pending    int        `json:"pending"`
	Dead       int        `json:"dead"` // Entries needing operator attention
	LastSyncAt *time.Time `json:"last_sync_at"`
	LastError  string     `json:"last_error"`
}

// Runner owns the background sync loop: a periodic tick while online, an
// immediate cycle on the offline-to-online transition, and a manual trigger.
// It starts and stops deterministically so tests can drive it directly.
type Runner struct {
	cfg    RunnerConfig
	pusher *Pusher
	puller *Puller
	outbox outbox.Repository
	client Client
	logger *zap.Logger

	trigger chan struct{}
	done    chan struct{}

	mu     sync.Mutex
	status Status
}

func NewRunner(cfg RunnerConfig, pusher *Pusher, puller *Puller, ob outbox.Repository, client Client, log *zap.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		pusher:  pusher,
		puller:  puller,
		outbox:  ob,
		client:  client,
		logger:  log,
		trigger: make(chan struct{}, 1),
	}
}

// Start launches the drain loop. Stop it by cancelling ctx or calling Stop.
func (r *Runner) Start(ctx context.Context) {
	r.done = make(chan struct{})
	go r.loop(ctx)
}

func (r *Runner) Stop() {
	if r.done != nil {
		<-r.done
	}
}

// TriggerSync requests an immediate cycle. Non-blocking: if a trigger is
// already queued the request coalesces into it.
func (r *Runner) TriggerSync() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	r.logger.Info("sync runner started", zap.Duration("interval", r.cfg.Interval))

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	// First probe right away so the UI shows connectivity without waiting
	// a full interval.
	r.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("sync runner stopped")
			return
		case <-ticker.C:
			r.cycle(ctx)
		case <-r.trigger:
			r.cycle(ctx)
		}
	}
}

// cycle probes connectivity, then pushes and pulls if online. Local writes
// keep flowing while this runs; everything here works on snapshots.
func (r *Runner) cycle(ctx context.Context) {
	wasOnline := r.Status().Online
	online := r.client.Ping(ctx) == nil

	r.setOnline(online)
	if !online {
		r.refreshCounts(ctx)
		return
	}
	if !wasOnline {
		r.logger.Info("back online, syncing")
	}

	r.setSyncing(true)
	defer r.setSyncing(false)

	var lastErr string
	if err := r.pusher.Drain(ctx); err != nil {
		lastErr = err.Error()
		r.logger.Error("push cycle failed", zap.Error(err))
	}
	if err := r.puller.IncrementalSync(ctx); err != nil {
		lastErr = err.Error()
		r.logger.Error("pull cycle failed", zap.Error(err))
	}

	now := time.Now().UTC()
	r.mu.Lock()
	r.status.LastError = lastErr
	if lastErr == "" {
		r.status.LastSyncAt = &now
	}
	r.mu.Unlock()

	r.refreshCounts(ctx)
}

func (r *Runner) refreshCounts(ctx context.Context) {
	pending, err := r.outbox.PendingCount(ctx)
	if err != nil {
		r.logger.Warn("failed to count pending entries", zap.Error(err))
		return
	}
	dead, err := r.outbox.DeadCount(ctx, r.cfg.MaxAttempts)
	if err != nil {
		r.logger.Warn("failed to count dead entries", zap.Error(err))
		return
	}

	r.mu.Lock()
	r.status.Pending = pending
	r.status.Dead = dead
	r.mu.Unlock()
}

func (r *Runner) setOnline(online bool) {
	r.mu.Lock()
	r.status.Online = online
	r.mu.Unlock()
}

func (r *Runner) setSyncing(s bool) {
	r.mu.Lock()
	r.status.Syncing = s
	r.mu.Unlock()
}
