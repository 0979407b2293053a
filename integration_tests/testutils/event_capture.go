package testutils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventCapture records every message published on a set of topics.
type EventCapture struct {
	messages map[string][]*message.Message
	mutex    sync.RWMutex
}

// NewEventCapture subscribes to topics on sub. Subscriptions end when the
// test finishes.
func NewEventCapture(t *testing.T, sub message.Subscriber, topics ...string) *EventCapture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	ec := &EventCapture{messages: make(map[string][]*message.Message)}
	for _, topic := range topics {
		ch, err := sub.Subscribe(ctx, topic)
		if err != nil {
			t.Fatalf("failed to subscribe to %q: %v", topic, err)
		}
		wg.Add(1)
		go func(topic string, ch <-chan *message.Message) {
			defer wg.Done()
			for {
				select {
				case msg, ok := <-ch:
					if !ok {
						return
					}
					ec.mutex.Lock()
					ec.messages[topic] = append(ec.messages[topic], msg)
					ec.mutex.Unlock()
					msg.Ack()
				case <-ctx.Done():
					return
				}
			}
		}(topic, ch)
	}
	return ec
}

// Messages returns a copy of what has arrived on topic so far.
func (ec *EventCapture) Messages(topic string) []*message.Message {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	msgs := make([]*message.Message, len(ec.messages[topic]))
	copy(msgs, ec.messages[topic])
	return msgs
}

// WaitFor polls until count messages arrived on topic or timeout passes.
// It returns whatever arrived.
func (ec *EventCapture) WaitFor(topic string, count int, timeout time.Duration) []*message.Message {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if msgs := ec.Messages(topic); len(msgs) >= count {
			return msgs
		}
		time.Sleep(10 * time.Millisecond)
	}
	return ec.Messages(topic)
}
