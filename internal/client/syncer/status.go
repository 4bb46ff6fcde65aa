package syncer

import "time"

// Status is the orchestrator's user-visible state. The UI surfaces it as a
// non-blocking badge, never as a dialog.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is the observable sync state: current status, the time of the last
// successful sync, and the last error message.
type State struct {
	Status    Status
	LastSync  time.Time
	LastError string
}

// State returns a copy of the current sync state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// setStatus transitions the state machine. Terminal statuses (success,
// error) auto-revert to idle after a short delay so the UI never shows a
// stale badge; the generation counter makes a stale revert timer harmless.
func (o *Orchestrator) setStatus(status Status, errMsg string) {
	o.mu.Lock()
	o.stateGen++
	gen := o.stateGen
	o.state.Status = status
	if status == StatusSuccess {
		o.state.LastSync = time.Now()
		o.state.LastError = ""
	}
	if status == StatusError {
		o.state.LastError = errMsg
	}
	snapshot := o.state
	o.mu.Unlock()

	o.publish(Event{Type: EventStatusChanged, State: snapshot, At: time.Now()})

	if status == StatusSuccess || status == StatusError {
		time.AfterFunc(o.opts.StatusRevertDelay, func() {
			o.mu.Lock()
			if o.stateGen != gen {
				o.mu.Unlock()
				return
			}
			o.stateGen++
			o.state.Status = StatusIdle
			snapshot := o.state
			o.mu.Unlock()
			o.publish(Event{Type: EventStatusChanged, State: snapshot, At: time.Now()})
		})
	}
}
