// Package notify implements the progress broadcaster: an in-process fan-out
// of generation events to per-session and wildcard subscribers, with
// forwarding to an external room-scoped transport and a bounded rolling log
// for late joiners.
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"scribe/pkg/docboard"
)

// subscriberBuffer is the per-subscription channel capacity. A subscriber
// that falls this far behind starts losing events rather than blocking the
// emitter.
const subscriberBuffer = 10

// EventTransport delivers events to external observers, scoped to a room.
// The docboard-backed RedisTransport is the production implementation;
// tests use NopTransport or a recording fake.
type EventTransport interface {
	Emit(ctx context.Context, room string, event *docboard.Event) error
}

// RoomForSession returns the transport room name for a session.
// Convention: session:{sessionID}.
func RoomForSession(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// RedisTransport forwards events to the session's Pub/Sub channel on the
// docboard.
type RedisTransport struct {
	board *docboard.Client
}

// NewRedisTransport creates a transport publishing through the given client.
func NewRedisTransport(board *docboard.Client) *RedisTransport {
	return &RedisTransport{board: board}
}

// Emit publishes the event to the session channel. The room argument is
// informational here; the channel is derived from the event's session.
func (t *RedisTransport) Emit(ctx context.Context, room string, event *docboard.Event) error {
	return t.board.PublishSessionEvent(ctx, event)
}

// NopTransport discards every event.
type NopTransport struct{}

// Emit does nothing.
func (NopTransport) Emit(ctx context.Context, room string, event *docboard.Event) error {
	return nil
}

// Subscription is a live feed of events for one session (or for every
// session, when created via SubscribeAll). Consume Events() until it closes;
// call Close() when done.
type Subscription struct {
	events chan *docboard.Event
	detach func()
	once   sync.Once
}

// Events returns the channel of delivered events. The channel is closed when
// the subscription is closed.
func (s *Subscription) Events() <-chan *docboard.Event {
	return s.events
}

// Close detaches the subscription and closes its event channel.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.detach)
	return nil
}

// Broadcaster fans out generation events. Emit appends to the session's
// rolling log, forwards to the external transport, and delivers to every
// session-scoped and wildcard subscriber. A slow or closed subscriber never
// blocks delivery to the others.
type Broadcaster struct {
	board     *docboard.Client
	transport EventTransport

	mu       sync.RWMutex
	sessions map[string]map[*Subscription]bool
	wildcard map[*Subscription]bool
}

// New creates a broadcaster. The transport may be NopTransport when no
// external delivery is wanted.
func New(board *docboard.Client, transport EventTransport) *Broadcaster {
	if transport == nil {
		transport = NopTransport{}
	}
	return &Broadcaster{
		board:     board,
		transport: transport,
		sessions:  make(map[string]map[*Subscription]bool),
		wildcard:  make(map[*Subscription]bool),
	}
}

// Emit distributes one event. The event is validated and stamped, appended
// to the session's rolling log, forwarded to the transport, and delivered to
// subscribers. Log and transport failures are logged and do not abort
// delivery; per-subscriber drops are logged individually.
func (b *Broadcaster) Emit(ctx context.Context, event *docboard.Event) error {
	if event.TimestampMs == 0 {
		event.TimestampMs = time.Now().UnixMilli()
	}

	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	if err := b.board.AppendEvent(ctx, event); err != nil {
		log.Printf("[Broadcaster] Failed to append event to log for session %s: %v", event.SessionID, err)
	}

	room := RoomForSession(event.SessionID)
	if err := b.transport.Emit(ctx, room, event); err != nil {
		log.Printf("[Broadcaster] Transport emit failed for room %s: %v", room, err)
	}

	b.deliver(event)

	return nil
}

// deliver pushes the event to the session's subscribers and the wildcard
// set. The read lock is held across the sends so a concurrent Close cannot
// close a channel mid-delivery; sends are non-blocking, so holding it is
// cheap.
func (b *Broadcaster) deliver(event *docboard.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	send := func(sub *Subscription) {
		select {
		case sub.events <- event:
		default:
			log.Printf("[Broadcaster] Dropped %s event for session %s: subscriber not keeping up",
				event.Type, event.SessionID)
		}
	}

	for sub := range b.sessions[event.SessionID] {
		send(sub)
	}
	for sub := range b.wildcard {
		send(sub)
	}
}

// Subscribe returns a subscription receiving every event emitted for the
// given session. Close the subscription to detach; closing the last
// subscription for a session removes the session's subscriber set entirely.
func (b *Broadcaster) Subscribe(sessionID string) *Subscription {
	sub := &Subscription{events: make(chan *docboard.Event, subscriberBuffer)}
	sub.detach = func() {
		// The write lock excludes in-flight deliveries, so closing the
		// channel here cannot race with a send.
		b.mu.Lock()
		if set, ok := b.sessions[sessionID]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(b.sessions, sessionID)
			}
		}
		close(sub.events)
		b.mu.Unlock()
	}

	b.mu.Lock()
	if b.sessions[sessionID] == nil {
		b.sessions[sessionID] = make(map[*Subscription]bool)
	}
	b.sessions[sessionID][sub] = true
	b.mu.Unlock()

	return sub
}

// SubscribeAll returns a subscription receiving every event for every
// session.
func (b *Broadcaster) SubscribeAll() *Subscription {
	sub := &Subscription{events: make(chan *docboard.Event, subscriberBuffer)}
	sub.detach = func() {
		b.mu.Lock()
		delete(b.wildcard, sub)
		close(sub.events)
		b.mu.Unlock()
	}

	b.mu.Lock()
	b.wildcard[sub] = true
	b.mu.Unlock()

	return sub
}

// RecentEvents returns up to limit of the newest retained events for a
// session, oldest first. Late joiners use this to catch up before
// subscribing.
func (b *Broadcaster) RecentEvents(ctx context.Context, sessionID string, limit int) ([]*docboard.Event, error) {
	return b.board.RecentEvents(ctx, sessionID, limit)
}

// SubscriberCount reports how many subscribers are attached for a session,
// wildcard subscribers included.
func (b *Broadcaster) SubscriberCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions[sessionID]) + len(b.wildcard)
}
