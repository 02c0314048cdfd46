package pubsub

import (
	"context"
	"sync"

	msgdomain "github.com/yuizumi/chatspace/internal/message/domain"
	"github.com/yuizumi/chatspace/internal/observability/metrics"
	userdomain "github.com/yuizumi/chatspace/internal/user/domain"
)

// Topic fans events out to current subscribers. Delivery is best-effort: a
// subscriber whose buffer is full misses the event, and nothing is replayed
// to late subscribers.
type Topic[T any] struct {
	name    string
	bufSize int

	mu   sync.Mutex
	next int
	subs map[int]chan T
}

func NewTopic[T any](name string, bufSize int) *Topic[T] {
	if bufSize <= 0 {
		bufSize = 16
	}
	return &Topic[T]{
		name:    name,
		bufSize: bufSize,
		subs:    make(map[int]chan T),
	}
}

// Subscribe registers a receiver until ctx is cancelled, at which point the
// returned channel is closed.
func (t *Topic[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, t.bufSize)

	t.mu.Lock()
	key := t.next
	t.next++
	t.subs[key] = ch
	t.mu.Unlock()

	metrics.EventSubscribers.WithLabelValues(t.name).Inc()

	go func() {
		<-ctx.Done()

		t.mu.Lock()
		delete(t.subs, key)
		t.mu.Unlock()

		metrics.EventSubscribers.WithLabelValues(t.name).Dec()
		close(ch)
	}()

	return ch
}

// Publish hands the event to every current subscriber without blocking.
func (t *Topic[T]) Publish(event T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ch := range t.subs {
		select {
		case ch <- event:
		default:
		}
	}

	metrics.EventsPublishedTotal.WithLabelValues(t.name).Inc()
}

func (t *Topic[T]) SubscriberCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Bus is the process-wide event bus. It is constructed once and injected
// wherever events are published or consumed; there is no package-level
// instance.
type Bus struct {
	MessageAdded *Topic[msgdomain.Message]
	UserJoined   *Topic[userdomain.User]
}

func NewBus(bufSize int) *Bus {
	return &Bus{
		MessageAdded: NewTopic[msgdomain.Message]("message_added", bufSize),
		UserJoined:   NewTopic[userdomain.User]("user_joined", bufSize),
	}
}
