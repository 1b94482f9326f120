package engine

import "sync"

// EventType names an engine notification
type EventType string

const (
	EventStageStarted   EventType = "stage_started"
	EventPhaseChanged   EventType = "phase_changed"
	EventTileEffect     EventType = "tile_effect"
	EventEnemyDefeated  EventType = "enemy_defeated"
	EventEnemyRelocated EventType = "enemy_relocated"
	EventEnemyAction    EventType = "enemy_action"
	EventTilesChanged   EventType = "tiles_changed"
	EventStageCleared   EventType = "stage_cleared"
	EventRewardOffered  EventType = "reward_offered"
	EventRewardApplied  EventType = "reward_applied"
	EventGameOver       EventType = "game_over"
)

// Event is emitted by the engine as the turn progresses
type Event struct {
	Type  EventType   `json:"type"`
	Stage int         `json:"stage"`
	Turn  int         `json:"turn"`
	Data  interface{} `json:"data,omitempty"`
}

// EventSink receives engine events
type EventSink interface {
	OnEvent(event Event)
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(e Event) { f(e) }

// Dispatcher fans events out to subscribers. Subscribing to the empty type
// receives every event. Sinks run synchronously on the engine's goroutine.
type Dispatcher struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[EventType][]subscription
}

type subscription struct {
	id   int
	sink EventSink
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[EventType][]subscription)}
}

// Subscribe registers sink for eventType and returns a function that removes
// it again
func (d *Dispatcher) Subscribe(eventType EventType, sink EventSink) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.listeners[eventType] = append(d.listeners[eventType], subscription{id: id, sink: sink})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		subs := d.listeners[eventType]
		for i, s := range subs {
			if s.id == id {
				d.listeners[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// OnEvent delivers e to the sinks of its type, then to the catch-all sinks
func (d *Dispatcher) OnEvent(e Event) {
	d.mu.RLock()
	subs := append([]subscription{}, d.listeners[e.Type]...)
	if e.Type != "" {
		subs = append(subs, d.listeners[""]...)
	}
	d.mu.RUnlock()
	for _, s := range subs {
		s.sink.OnEvent(e)
	}
}

// EventRecorder collects events in order
type EventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *EventRecorder) OnEvent(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Drain returns the recorded events and forgets them
func (r *EventRecorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}
