// Package gateway owns the MQTT connection. It subscribes to the
// configured topics, decodes inbound payloads into the store, and
// delivers the outbound publish queue. Nothing else in the daemon
// touches the broker.
package gateway

import (
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/state"
)

const (
	publishQoS     = 1
	queueCapacity  = 64
	publishTimeout = 5 * time.Second
)

// Gateway is the sole owner of the broker connection. Outbound
// messages from the sensor poller and button dispatcher are enqueued
// and delivered with an at-least-once attempt: they queue while
// disconnected and the oldest are dropped on overflow.
type Gateway struct {
	cfg   config.MQTT
	subs  map[string]config.Subscription // keyed by topic
	store *state.Store
	now   func() time.Time

	client paho.Client

	mu    sync.Mutex
	queue *ringQueue
}

// New builds the gateway. Start establishes the connection.
func New(cfg *config.Config, store *state.Store) *Gateway {
	g := &Gateway{
		cfg:   cfg.MQTT,
		subs:  make(map[string]config.Subscription, len(cfg.Subscriptions)),
		store: store,
		now:   time.Now,
		queue: newRingQueue(queueCapacity),
	}
	for _, s := range cfg.Subscriptions {
		g.subs[s.Topic] = s
	}

	opts := paho.NewClientOptions().
		AddBroker(g.cfg.BrokerURL()).
		SetClientID(g.cfg.ClientID).
		SetKeepAlive(time.Duration(g.cfg.Keepalive) * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(g.onConnect).
		SetConnectionLostHandler(g.onConnectionLost)
	if g.cfg.Username != "" {
		opts.SetUsername(g.cfg.Username)
		opts.SetPassword(g.cfg.Password)
	}
	if g.cfg.AvailabilityTopic != "" {
		opts.SetWill(g.cfg.AvailabilityTopic, "offline", publishQoS, true)
	}
	g.client = paho.NewClient(opts)
	return g
}

// Start connects asynchronously. The client's own retry loop keeps
// trying until Stop; subscriptions are (re)established by the connect
// handler on every successful connect.
func (g *Gateway) Start() {
	g.client.Connect()
}

// Stop announces unavailability and disconnects.
func (g *Gateway) Stop() {
	if g.cfg.AvailabilityTopic != "" && g.client.IsConnected() {
		t := g.client.Publish(g.cfg.AvailabilityTopic, publishQoS, true, "offline")
		t.WaitTimeout(publishTimeout)
	}
	g.client.Disconnect(1000)
	log.Printf("gateway: disconnected")
}

// Publish enqueues one outbound message and delivers immediately when
// connected. Safe to call from any task.
func (g *Gateway) Publish(topic, payload string) {
	g.mu.Lock()
	g.queue.push(outMsg{topic: topic, payload: payload})
	g.mu.Unlock()
	if g.client.IsConnected() {
		g.drain()
	}
}

// Connected reports broker health.
func (g *Gateway) Connected() bool {
	return g.client.IsConnected()
}

func (g *Gateway) onConnect(c paho.Client) {
	log.Printf("gateway: connected to %s", g.cfg.BrokerURL())
	for topic := range g.subs {
		t := c.Subscribe(topic, 1, g.handleMessage)
		if !t.WaitTimeout(publishTimeout) {
			log.Printf("gateway: subscribe %s: timeout", topic)
			continue
		}
		if err := t.Error(); err != nil {
			log.Printf("gateway: subscribe %s: %v", topic, err)
		}
	}
	if g.cfg.AvailabilityTopic != "" {
		c.Publish(g.cfg.AvailabilityTopic, publishQoS, true, "online")
	}
	g.drain()
}

func (g *Gateway) onConnectionLost(_ paho.Client, err error) {
	log.Printf("gateway: connection lost: %v (reconnecting)", err)
}

// handleMessage runs on the client's network goroutine for every
// inbound message on a subscribed topic.
func (g *Gateway) handleMessage(_ paho.Client, msg paho.Message) {
	sub, ok := g.subs[msg.Topic()]
	if !ok {
		return
	}
	v, err := extract(msg.Payload(), sub.ValuePath)
	if err != nil {
		log.Printf("gateway: %s: %v", msg.Topic(), err)
		return
	}
	g.store.SetSubscription(sub.ID, state.SubscriptionValue{Value: v, At: g.now()})
}

// drain hands every queued message to the client. Token waits happen
// off the caller's goroutine so a slow broker never stalls a producer.
func (g *Gateway) drain() {
	g.mu.Lock()
	msgs := g.queue.drainAll()
	g.mu.Unlock()
	for _, m := range msgs {
		t := g.client.Publish(m.topic, publishQoS, false, m.payload)
		go func(topic string, t paho.Token) {
			if !t.WaitTimeout(publishTimeout) {
				log.Printf("gateway: publish %s: timeout", topic)
				return
			}
			if err := t.Error(); err != nil {
				log.Printf("gateway: publish %s: %v", topic, err)
			}
		}(m.topic, t)
	}
}
