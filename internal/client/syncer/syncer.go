// Package syncer coordinates the download→reconcile→store→upload cycle
// across all five data domains.
//
// # Concurrency
//
// A single worker goroutine drains a FIFO job queue; every sync-triggering
// operation (manual full sync, upload-only, download-only, initial sync,
// periodic tick) is enqueued and processed one at a time. At most one sync
// is ever in flight against the backend, so a user-triggered sync can never
// interleave its read-modify-write with a background tick.
//
// There is no mid-flight cancellation: stopping periodic sync only prevents
// future ticks from being enqueued.
//
// # Consistency model
//
// Concurrency across devices is resolved by reconciliation, not mutual
// exclusion: each device writes its own remote record and conflicts are
// merged deterministically from timestamps. There are no vector clocks or
// per-field versions; this is an inherited limitation, not an oversight —
// upgrading it would change observable merge outcomes.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
	"github.com/dmitrijs2005/tripsync/internal/client/store"
	"github.com/dmitrijs2005/tripsync/internal/logging"
)

// Gateway is the remote side the orchestrator talks to. The concrete HTTP
// implementation lives in the gateway package; tests substitute fakes.
type Gateway interface {
	Save(ctx context.Context, userID, deviceID string, domain models.Domain, payload any) bool
	Get(ctx context.Context, userID, deviceID string, domain models.Domain) *models.Envelope
	Delete(ctx context.Context, userID, deviceID string, domain models.Domain) bool
	GetAll(ctx context.Context, userID string) map[models.Domain]*models.Envelope
	DeleteAll(ctx context.Context, userID string) bool
	IsAvailable(ctx context.Context) bool
}

// Options tune the orchestrator's timers and queue. Zero values select the
// defaults.
type Options struct {
	PeriodicInterval    time.Duration // default 5m
	StatusRevertDelay   time.Duration // default 3s
	OnlineCheckInterval time.Duration // default 30s
	QueueSize           int           // default 16
}

func (o Options) withDefaults() Options {
	out := o
	if out.PeriodicInterval <= 0 {
		out.PeriodicInterval = 5 * time.Minute
	}
	if out.StatusRevertDelay <= 0 {
		out.StatusRevertDelay = 3 * time.Second
	}
	if out.OnlineCheckInterval <= 0 {
		out.OnlineCheckInterval = 30 * time.Second
	}
	if out.QueueSize <= 0 {
		out.QueueSize = 16
	}
	return out
}

// job is one queued sync operation. The result channel is buffered so the
// worker never blocks on a caller that gave up waiting.
type job struct {
	name   string
	run    func(ctx context.Context) error
	result chan error
}

// Orchestrator sequences sync operations for one user session. Construct it
// once at app start and inject it into consumers; its queue and timers are
// private instance state.
type Orchestrator struct {
	store *store.LocalStore
	gw    Gateway
	log   logging.Logger
	opts  Options

	jobs chan job

	mu           sync.Mutex
	state        State
	stateGen     uint64
	online       bool
	periodicStop chan struct{}
	subscribers  map[int]chan Event
	nextSubID    int

	startOnce sync.Once
	wg        sync.WaitGroup
}

// New builds an Orchestrator. Call Start before using the sync operations.
func New(st *store.LocalStore, gw Gateway, log logging.Logger, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		store:       st,
		gw:          gw,
		log:         log,
		opts:        opts,
		jobs:        make(chan job, opts.QueueSize),
		state:       State{Status: StatusIdle},
		online:      true,
		subscribers: make(map[int]chan Event),
	}
}

// Start launches the queue worker and the online-status watcher. Both exit
// when ctx is cancelled. Calling Start more than once is a no-op.
func (o *Orchestrator) Start(ctx context.Context) {
	o.startOnce.Do(func() {
		o.wg.Add(2)
		go o.drainLoop(ctx)
		go o.onlineWatcher(ctx)
	})
}

// Wait blocks until the worker goroutines have exited.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// drainLoop is the single consumer of the job queue.
func (o *Orchestrator) drainLoop(ctx context.Context) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-o.jobs:
			err := j.run(ctx)
			if j.result != nil {
				j.result <- err
			}
		}
	}
}

// enqueue schedules a job and waits for its result. Waiting respects ctx,
// but an already-running job is never aborted.
func (o *Orchestrator) enqueue(ctx context.Context, name string, run func(ctx context.Context) error) error {
	j := job{name: name, run: run, result: make(chan error, 1)}
	select {
	case o.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tryEnqueue schedules a fire-and-forget job, dropping it when the queue is
// full. Periodic ticks use this so a slow sync never piles up ticks.
func (o *Orchestrator) tryEnqueue(name string, run func(ctx context.Context) error) bool {
	j := job{name: name, run: run}
	select {
	case o.jobs <- j:
		return true
	default:
		o.log.Warn(context.Background(), "sync queue full, dropping job", "job", name)
		return false
	}
}

// onlineWatcher probes backend availability on a fixed interval and flips
// the online flag. Going offline pauses periodic ticks; coming back online
// resumes them without triggering an immediate sync, to avoid sync storms
// when connectivity flaps.
func (o *Orchestrator) onlineWatcher(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.opts.OnlineCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			available := o.gw.IsAvailable(probeCtx)
			cancel()
			o.setOnline(ctx, available)
		}
	}
}

func (o *Orchestrator) setOnline(ctx context.Context, online bool) {
	o.mu.Lock()
	changed := o.online != online
	o.online = online
	o.mu.Unlock()

	if changed {
		o.log.Info(ctx, "connectivity changed", "online", online)
		o.publish(Event{Type: EventOnlineChanged, Online: online, At: time.Now()})
	}
}

// Online reports the last observed connectivity state.
func (o *Orchestrator) Online() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.online
}
