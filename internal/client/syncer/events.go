package syncer

import "time"

// EventType labels orchestrator notifications.
type EventType string

const (
	EventStatusChanged   EventType = "status-changed"
	EventSyncCompleted   EventType = "sync-completed"
	EventOnlineChanged   EventType = "online-changed"
	EventPeriodicStarted EventType = "periodic-started"
	EventPeriodicStopped EventType = "periodic-stopped"
)

// Event is one orchestrator notification. UI components subscribe instead
// of the orchestrator calling back into them.
type Event struct {
	Type      EventType
	State     State
	Online    bool
	Conflicts int
	At        time.Time
}

// Subscribe registers an event channel and returns its id for Unsubscribe.
// Delivery is best-effort: events to a full subscriber channel are dropped
// rather than blocking the sync worker.
func (o *Orchestrator) Subscribe() (int, <-chan Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextSubID
	o.nextSubID++
	ch := make(chan Event, 16)
	o.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes and closes the subscription with the given id.
// Unknown ids are ignored.
func (o *Orchestrator) Unsubscribe(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if ch, ok := o.subscribers[id]; ok {
		delete(o.subscribers, id)
		close(ch)
	}
}

func (o *Orchestrator) publish(event Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, ch := range o.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
