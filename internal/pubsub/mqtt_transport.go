package pubsub

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTTransport backs Client with a real broker connection over
// paho.mqtt.golang, the way the reference implementation's MosquittoArc
// wraps an AsyncClient: credentials are username/empty-password, keepalive
// is a fixed 5 seconds, and every publish uses QoS 1 (at-least-once).
type MQTTTransport struct {
	opts *mqtt.ClientOptions
	cli  mqtt.Client
}

const mqttQoS = 1
const mqttKeepAlive = 5 * time.Second

// NewMQTTTransport builds a transport that connects clientID to broker
// host:port using user for authentication (no password, matching the
// reference client's set_credentials(user, "")).
func NewMQTTTransport(host string, port int, user, clientID string) *MQTTTransport {
	return newMQTTTransport(fmt.Sprintf("tcp://%s:%d", host, port), user, clientID)
}

// NewMQTTWebsocketTransport is the same connection, dialed over ws:// instead
// of raw TCP. paho.mqtt.golang's ws:// brokers are dialed through
// gorilla/websocket internally, the same library the reference broker's own
// binary-frame listener is built on; routing through it lets the client sit
// behind an HTTP(S) load balancer that only forwards upgraded connections.
func NewMQTTWebsocketTransport(host string, port int, user, clientID string) *MQTTTransport {
	return newMQTTTransport(fmt.Sprintf("ws://%s:%d/mqtt", host, port), user, clientID)
}

func newMQTTTransport(broker, user, clientID string) *MQTTTransport {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetUsername(user)
	opts.SetPassword("")
	opts.SetKeepAlive(mqttKeepAlive)
	opts.SetAutoReconnect(true)
	return &MQTTTransport{opts: opts}
}

func (t *MQTTTransport) Connect(ctx context.Context, incoming chan<- Message) error {
	t.opts.SetDefaultPublishHandler(func(_ mqtt.Client, msg mqtt.Message) {
		incoming <- Message{Topic: msg.Topic(), Payload: string(msg.Payload())}
	})
	t.opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		// paho's auto-reconnect takes over; nothing else to do here.
	})
	t.cli = mqtt.NewClient(t.opts)
	token := t.cli.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	go func() {
		<-ctx.Done()
		t.Disconnect()
	}()
	return nil
}

func (t *MQTTTransport) SubscribeFilter(filter string) error {
	token := t.cli.Subscribe(filter, mqttQoS, nil)
	token.Wait()
	return token.Error()
}

func (t *MQTTTransport) UnsubscribeFilter(filter string) error {
	token := t.cli.Unsubscribe(filter)
	token.Wait()
	return token.Error()
}

func (t *MQTTTransport) Publish(topic, payload string, retain bool) error {
	token := t.cli.Publish(topic, mqttQoS, retain, payload)
	token.Wait()
	return token.Error()
}

func (t *MQTTTransport) Disconnect() {
	if t.cli != nil && t.cli.IsConnected() {
		t.cli.Disconnect(250)
	}
}
