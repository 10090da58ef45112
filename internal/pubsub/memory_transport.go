package pubsub

import (
	"context"
	"regexp"
	"sync"
)

// MemoryTransport is an in-process broker fake used by tests: publishes are
// matched against subscribed filters and handed directly to whichever
// Client instances share this broker, with no network involved.
type MemoryTransport struct {
	bus *memoryBus
}

type compiledFilter struct {
	pattern string
	matcher *regexp.Regexp
}

// memoryBus is the shared hub every MemoryTransport created from the same
// NewMemoryBroker call publishes through, modeled on the retained-message
// and subscriber bookkeeping the teacher/example in-memory brokers keep.
type memoryBus struct {
	mu      sync.Mutex
	clients map[*MemoryTransport]chan<- Message
	filters map[*MemoryTransport][]compiledFilter
	retain  map[string]string
}

// NewMemoryBroker returns a factory producing transports that all share one
// in-process broker, so tests can connect an arbitrary number of Clients.
func NewMemoryBroker() func() *MemoryTransport {
	bus := &memoryBus{
		clients: make(map[*MemoryTransport]chan<- Message),
		filters: make(map[*MemoryTransport][]compiledFilter),
		retain:  make(map[string]string),
	}
	return func() *MemoryTransport {
		return &MemoryTransport{bus: bus}
	}
}

func (t *MemoryTransport) Connect(ctx context.Context, incoming chan<- Message) error {
	t.bus.mu.Lock()
	t.bus.clients[t] = incoming
	t.bus.mu.Unlock()
	go func() {
		<-ctx.Done()
		t.Disconnect()
	}()
	return nil
}

func (t *MemoryTransport) SubscribeFilter(filter string) error {
	matcher, err := compilePattern(filter)
	if err != nil {
		return err
	}
	t.bus.mu.Lock()
	t.bus.filters[t] = append(t.bus.filters[t], compiledFilter{pattern: filter, matcher: matcher})
	retained := make(map[string]string, len(t.bus.retain))
	for topic, payload := range t.bus.retain {
		if filter == topic || matcher.MatchString(topic) {
			retained[topic] = payload
		}
	}
	incoming := t.bus.clients[t]
	t.bus.mu.Unlock()

	for topic, payload := range retained {
		if incoming != nil {
			incoming <- Message{Topic: topic, Payload: payload}
		}
	}
	return nil
}

func (t *MemoryTransport) UnsubscribeFilter(filter string) error {
	t.bus.mu.Lock()
	defer t.bus.mu.Unlock()
	kept := t.bus.filters[t][:0]
	for _, f := range t.bus.filters[t] {
		if f.pattern != filter {
			kept = append(kept, f)
		}
	}
	t.bus.filters[t] = kept
	return nil
}

func (t *MemoryTransport) Publish(topic, payload string, retain bool) error {
	t.bus.mu.Lock()
	if retain {
		if payload == "" {
			delete(t.bus.retain, topic)
		} else {
			t.bus.retain[topic] = payload
		}
	}
	type delivery struct {
		incoming chan<- Message
	}
	var targets []delivery
	for client, filters := range t.bus.filters {
		for _, f := range filters {
			if f.pattern == topic || f.matcher.MatchString(topic) {
				targets = append(targets, delivery{incoming: t.bus.clients[client]})
				break
			}
		}
	}
	t.bus.mu.Unlock()

	for _, target := range targets {
		if target.incoming != nil {
			target.incoming <- Message{Topic: topic, Payload: payload}
		}
	}
	return nil
}

func (t *MemoryTransport) Disconnect() {
	t.bus.mu.Lock()
	defer t.bus.mu.Unlock()
	delete(t.bus.clients, t)
	delete(t.bus.filters, t)
}
