package syncer

import (
	"context"
	"time"
)

// StartPeriodicSync schedules a repeating full sync for userID. Starting
// when already started is a no-op. Ticks are skipped while the device is
// offline or the backend reports itself unavailable, so a started-but-
// offline periodic sync performs no network calls beyond the availability
// probe until connectivity returns.
func (o *Orchestrator) StartPeriodicSync(userID string) {
	o.mu.Lock()
	if o.periodicStop != nil {
		o.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	o.periodicStop = stop
	o.mu.Unlock()

	o.publish(Event{Type: EventPeriodicStarted, At: time.Now()})
	o.log.Info(context.Background(), "periodic sync started", "interval", o.opts.PeriodicInterval)

	o.wg.Add(1)
	go o.periodicLoop(userID, stop)
}

// StopPeriodicSync clears the timer. Always safe to call, including when
// periodic sync is not running. A tick already being processed by the
// worker is not aborted; only future ticks are prevented.
func (o *Orchestrator) StopPeriodicSync() {
	o.mu.Lock()
	stop := o.periodicStop
	o.periodicStop = nil
	o.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	o.publish(Event{Type: EventPeriodicStopped, At: time.Now()})
	o.log.Info(context.Background(), "periodic sync stopped")
}

// IsPeriodicSyncActive reports whether the periodic timer is set.
func (o *Orchestrator) IsPeriodicSyncActive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.periodicStop != nil
}

func (o *Orchestrator) periodicLoop(userID string, stop <-chan struct{}) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.opts.PeriodicInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !o.Online() {
				continue
			}
			probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			available := o.gw.IsAvailable(probeCtx)
			cancel()
			if !available {
				continue
			}
			o.tryEnqueue("periodic-sync", func(ctx context.Context) error {
				return o.fullSync(ctx, userID)
			})
		}
	}
}
