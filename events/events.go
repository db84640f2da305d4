// Package events is a small named-topic message bus. Marker popups publish
// intents on it and the dialog layer subscribes, so the two never hold
// references to each other: markers belong to the map surface, dialogs to
// the view layer.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// Topics broadcast from rendered markers.
const (
	TopicCheckIn     = "checkin"
	TopicViewReviews = "viewreviews"
)

// CheckInIntent asks the UI layer to open the check-in dialog for a place.
type CheckInIntent struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Address  string  `json:"address,omitempty"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// ViewReviewsIntent asks the UI layer to open the reviews dialog.
type ViewReviewsIntent struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Message is one published event.
type Message struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

type subscriber struct {
	id    string
	topic string
	ch    chan Message
}

// Bus delivers messages to topic subscribers. Publishing is fire and
// forget: a subscriber that cannot keep up drops messages rather than
// blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs []subscriber
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers interest in a topic and returns the subscription id
// and delivery channel. An empty topic receives every message.
func (b *Bus) Subscribe(topic string) (string, <-chan Message) {
	id := uuid.New().String()
	ch := make(chan Message, 16)
	b.mu.Lock()
	b.subs = append(b.subs, subscriber{id: id, topic: topic, ch: ch})
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			close(s.ch)
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish broadcasts a message to every matching subscriber.
func (b *Bus) Publish(topic string, payload interface{}) {
	msg := Message{Topic: topic, Payload: payload}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.topic != "" && s.topic != topic {
			continue
		}
		select {
		case s.ch <- msg:
		default:
			// slow subscriber, drop
		}
	}
}
