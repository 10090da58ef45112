// Package pubsub is the messaging adapter: a topic-based publish/subscribe
// client sitting in front of an MQTT-compatible broker. It mirrors the
// three-task shape of the reference mosquitto wrapper it was translated
// from: the Transport delivers inbound broker packets onto a channel, one
// goroutine serves subscribe/unsubscribe/publish requests against the live
// Transport, and one goroutine dispatches received (topic, payload) pairs to
// matching callbacks. They communicate over bounded channels, so a slow
// subscriber callback does not hold up inbound delivery until the inbound
// buffer is full.
package pubsub

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"driftpursuit/broker/internal/logging"
)

// Callback receives every (topic, payload) pair matching a subscription's
// pattern. Callbacks run on the dispatch task; a callback must not block for
// long or it will delay delivery to other subscribers.
type Callback func(topic, payload string)

// Message is one inbound (topic, payload) delivery.
type Message struct {
	Topic   string
	Payload string
}

// Transport abstracts the underlying broker connection so the adapter can
// run against a real MQTT broker or an in-memory fake during tests.
type Transport interface {
	// Connect establishes the session and starts delivering inbound
	// publishes onto incoming until ctx is canceled or Disconnect is called.
	Connect(ctx context.Context, incoming chan<- Message) error
	// SubscribeFilter asks the broker to start routing topic filter to us.
	SubscribeFilter(filter string) error
	// UnsubscribeFilter asks the broker to stop routing topic filter to us.
	UnsubscribeFilter(filter string) error
	// Publish sends topic/payload, retained if requested.
	Publish(topic, payload string, retain bool) error
	// Disconnect tears down the session.
	Disconnect()
}

type request struct {
	kind     requestKind
	topic    string
	payload  string
	retain   bool
	callback Callback
	done     chan struct{}
}

type requestKind int

const (
	reqSubscribe requestKind = iota
	reqUnsubscribe
	reqPublish
)

type subscription struct {
	pattern   string
	matcher   *regexp.Regexp
	callbacks []Callback
}

// Client is the messaging adapter. It is safe for concurrent use by
// multiple goroutines once Run has been started.
type Client struct {
	transport Transport
	log       *logging.Logger

	requests chan request
	incoming chan Message

	subMu sync.Mutex
	subs  map[string]*subscription

	cancel context.CancelFunc
	done   chan struct{}
}

const requestQueueSize = 64
const incomingQueueSize = 64

// New constructs a Client bound to transport. Call Run to start its three
// background tasks before Subscribe/Publish/AwaitTopic are used.
func New(transport Transport, log *logging.Logger) *Client {
	if log == nil {
		log = logging.NewTestLogger()
	}
	return &Client{
		transport: transport,
		log:       log,
		requests:  make(chan request, requestQueueSize),
		incoming:  make(chan Message, incomingQueueSize),
		subs:      make(map[string]*subscription),
		done:      make(chan struct{}),
	}
}

// Run connects the transport, which feeds inbound messages to the dispatch
// task, and starts the control and dispatch tasks. It blocks until ctx is
// canceled, then tears the transport down.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	defer close(c.done)

	if err := c.transport.Connect(ctx, c.incoming); err != nil {
		cancel()
		return fmt.Errorf("pubsub: connect: %w", err)
	}
	defer c.transport.Disconnect()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.controlTask(ctx)
	}()
	go func() {
		defer wg.Done()
		c.dispatchTask(ctx)
	}()

	<-ctx.Done()
	wg.Wait()
	return nil
}

// Stop cancels Run and waits for its tasks to exit.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
}

// controlTask serializes subscribe/unsubscribe/publish requests against the
// transport so broker calls never race each other.
func (c *Client) controlTask(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.requests:
			switch req.kind {
			case reqSubscribe:
				c.log.Debug("subscribing to topic", logging.String("pattern", req.topic))
				c.subMu.Lock()
				sub, ok := c.subs[req.topic]
				if !ok {
					matcher, err := compilePattern(req.topic)
					if err != nil {
						c.log.Error("invalid subscription pattern", logging.String("pattern", req.topic), logging.Error(err))
						c.subMu.Unlock()
						close(req.done)
						continue
					}
					sub = &subscription{pattern: req.topic, matcher: matcher}
					c.subs[req.topic] = sub
				}
				sub.callbacks = append(sub.callbacks, req.callback)
				c.subMu.Unlock()
				if err := c.transport.SubscribeFilter(req.topic); err != nil {
					c.log.Error("subscribe failed", logging.String("pattern", req.topic), logging.Error(err))
				}
			case reqUnsubscribe:
				c.log.Debug("unsubscribing from topic", logging.String("pattern", req.topic))
				c.subMu.Lock()
				delete(c.subs, req.topic)
				c.subMu.Unlock()
				if err := c.transport.UnsubscribeFilter(req.topic); err != nil {
					c.log.Error("unsubscribe failed", logging.String("pattern", req.topic), logging.Error(err))
				}
			case reqPublish:
				c.log.Debug("publishing to topic", logging.String("topic", req.topic))
				if err := c.transport.Publish(req.topic, req.payload, req.retain); err != nil {
					c.log.Error("publish failed", logging.String("topic", req.topic), logging.Error(err))
				}
			}
			if req.done != nil {
				close(req.done)
			}
		}
	}
}

// dispatchTask fans each inbound message out to every subscription whose
// pattern matches, running callbacks synchronously in delivery order the way
// the reference implementation's poller thread does.
func (c *Client) dispatchTask(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.incoming:
			c.subMu.Lock()
			var callbacks []Callback
			for _, sub := range c.subs {
				if sub.pattern == msg.Topic || sub.matcher.MatchString(msg.Topic) {
					callbacks = append(callbacks, sub.callbacks...)
				}
			}
			c.subMu.Unlock()
			for _, cb := range callbacks {
				cb(msg.Topic, msg.Payload)
			}
		}
	}
}

// Subscribe registers callback against every topic matching pattern
// (supporting the single-level + and multi-level # wildcards).
func (c *Client) Subscribe(pattern string, callback Callback) {
	req := request{kind: reqSubscribe, topic: pattern, callback: callback, done: make(chan struct{})}
	c.requests <- req
	<-req.done
}

// Unsubscribe removes every callback registered for pattern.
func (c *Client) Unsubscribe(pattern string) {
	req := request{kind: reqUnsubscribe, topic: pattern, done: make(chan struct{})}
	c.requests <- req
	<-req.done
}

// Publish sends payload on topic, retained on the broker when retain is true.
func (c *Client) Publish(topic, payload string, retain bool) {
	req := request{kind: reqPublish, topic: topic, payload: payload, retain: retain, done: make(chan struct{})}
	c.requests <- req
	<-req.done
}

// Clear publishes an empty retained message, removing any previously
// retained value for topic.
func (c *Client) Clear(topic string) {
	c.Publish(topic, "", true)
}

// AwaitTopic subscribes to pattern, blocks until the first matching message
// arrives (or ctx is canceled), unsubscribes, and returns the message.
func (c *Client) AwaitTopic(ctx context.Context, pattern string) (Message, error) {
	results := make(chan Message, 1)
	c.Subscribe(pattern, func(topic, payload string) {
		select {
		case results <- Message{Topic: topic, Payload: payload}:
		default:
		}
	})
	defer c.Unsubscribe(pattern)

	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case msg := <-results:
		return msg, nil
	}
}

// AwaitResponse publishes payloadOut on topicOut and then awaits the first
// message matching topicInPattern, the request/reply idiom the client driver
// uses to join a game.
func (c *Client) AwaitResponse(ctx context.Context, topicOut, payloadOut, topicInPattern string) (Message, error) {
	c.Publish(topicOut, payloadOut, false)
	return c.AwaitTopic(ctx, topicInPattern)
}

// compilePattern turns an MQTT-style topic filter into an anchored regular
// expression: '+' matches exactly one path segment, '#' matches one or more
// trailing segments, and every other regex metacharacter is escaped.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	segments := strings.Split(pattern, "/")
	quoted := make([]string, len(segments))
	for i, seg := range segments {
		switch seg {
		case "+":
			quoted[i] = "[^/]+"
		case "#":
			quoted[i] = ".+"
		default:
			quoted[i] = regexp.QuoteMeta(seg)
		}
	}
	return regexp.Compile("^" + strings.Join(quoted, "/") + "$")
}
