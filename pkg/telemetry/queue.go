package telemetry

import (
	"net/url"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// Queue wraps the MQTT client with prefixed topics and local handler
// dispatch. Handlers stay registered for the life of the queue.
type Queue struct {
	Client       paho.Client
	TopicPrefix  string
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	subsLock     sync.RWMutex
	subs         map[string][]Handler
	wildcardSubs map[string][]Handler
}

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Queue)

// MatchTopic matches topic with pattern.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	if len(tokensP) > len(tokensT) {
		return false
	}
	for i, token := range tokensP {
		if token == "+" {
			continue
		}
		if token == "#" && i+1 == len(tokensP) {
			break
		}
		if token != tokensT[i] {
			return false
		}
	}
	return true
}

// ClientOptionsFromURL creates ClientOptions from URL. The path
// becomes the topic prefix, e.g. mqtt://localhost:1883/wificar/
// prefixes every topic with "wificar/".
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}

	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}

	return opts, topicPrefix, nil
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix}
	options.SetOnConnectHandler(q.OnConnectHandler)
	options.SetConnectionLostHandler(q.ConnectionLostHandler)
	q.Client = paho.NewClient(options)
	return q
}

// NewQueueFromURL creates Queue from URL.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewQueue(opts, topicPrefix), nil
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(0)
	return nil
}

// Sub subscribes a topic. Before the client connects the broker-side
// subscription is deferred to Resubscribe.
func (q *Queue) Sub(topic string, handler Handler) paho.Token {
	wildcard := strings.Contains(topic, "+") || strings.HasSuffix(topic, "#")
	var newSub bool
	q.subsLock.Lock()
	if q.subs == nil {
		q.subs = make(map[string][]Handler)
	}
	if q.wildcardSubs == nil {
		q.wildcardSubs = make(map[string][]Handler)
	}
	subs := q.subs
	if wildcard {
		subs = q.wildcardSubs
	}
	newSub = len(subs[topic]) == 0
	subs[topic] = append(subs[topic], handler)
	q.subsLock.Unlock()

	if newSub {
		if glog.V(2) {
			glog.Infof("SUB %q", q.TopicPrefix+topic)
		}
		return q.Client.Subscribe(q.TopicPrefix+topic, 0, q.dispatch)
	}
	return &paho.DummyToken{}
}

// Pub publishes to a topic.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, 0, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

// Resubscribe is used in OnConnect handler to subscribe all existing topics.
func (q *Queue) Resubscribe() paho.Token {
	filters := make(map[string]byte)
	q.subsLock.RLock()
	for topic := range q.subs {
		filters[q.TopicPrefix+topic] = 0
	}
	for topic := range q.wildcardSubs {
		filters[q.TopicPrefix+topic] = 0
	}
	q.subsLock.RUnlock()
	if len(filters) > 0 {
		if glog.V(2) {
			for key := range filters {
				glog.Infof("SUB %q", key)
			}
		}
		return q.Client.SubscribeMultiple(filters, q.dispatch)
	}
	return &paho.DummyToken{}
}

// OnConnectHandler is the default implementation of paho.OnConnectHandler.
func (q *Queue) OnConnectHandler(paho.Client) {
	glog.Info("connected")
	q.Resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

// ConnectionLostHandler is the default implementation of paho.ConnectionLostHandler.
func (q *Queue) ConnectionLostHandler(c paho.Client, err error) {
	glog.Warningf("connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}

func (q *Queue) dispatch(c paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.TopicPrefix) {
		return
	}
	glog.V(2).Infof("RCV %q", topic)
	topic = topic[len(q.TopicPrefix):]
	var handlers []Handler
	q.subsLock.RLock()
	handlers = append(handlers, q.subs[topic]...)
	for key, hs := range q.wildcardSubs {
		if MatchTopic(topic, key) {
			handlers = append(handlers, hs...)
		}
	}
	q.subsLock.RUnlock()
	payload := msg.Payload()
	for _, h := range handlers {
		h(topic, payload)
	}
}
