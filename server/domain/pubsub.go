package domain

import (
	"context"
	"log/slog"
	"sync"
)

type Topic string

func SessionTopic(id SessionID) Topic { return Topic("session:" + id.String()) }
func RoomTopic(id RoomID) Topic       { return Topic("room:" + id.String()) }
func RoomCtrlTopic(id RoomID) Topic   { return Topic("room:" + id.String() + ":ctrl") }

type ControlKind uint8

const (
	ControlNone ControlKind = iota
	ControlJoin
	ControlLeave
)

func (k ControlKind) String() string {
	switch k {
	case ControlJoin:
		return "join"
	case ControlLeave:
		return "leave"
	default:
		return "none"
	}
}

// Message は PubSub を流れる単位です。ctrl トピックでは Control だけを使います。
type Message struct {
	SessionID SessionID
	Control   ControlKind
	Data      []byte
}

//go:generate go tool mockgen -destination=./mocks/pubsub_mock.go -package=mocks . PubSub

type PubSub interface {
	Publish(ctx context.Context, topic Topic, msg Message)
	Subscribe(topic Topic) <-chan Message
	Unsubscribe(topic Topic, ch <-chan Message)
}

const subscriberBuffer = 256

// SimplePubSub はプロセス内のトピック購読を管理します。
// Publish はブロックせず、購読者のバッファが満杯ならそのメッセージを捨てます。
type SimplePubSub struct {
	mu     sync.RWMutex
	topics map[Topic][]chan Message
}

func NewSimplePubSub() *SimplePubSub {
	return &SimplePubSub{topics: make(map[Topic][]chan Message)}
}

func (ps *SimplePubSub) Publish(ctx context.Context, topic Topic, msg Message) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, ch := range ps.topics[topic] {
		select {
		case ch <- msg:
		default:
			slog.WarnContext(ctx, "pubsub: subscriber full, message dropped", "topic", topic, "sessionID", msg.SessionID)
		}
	}
}

func (ps *SimplePubSub) Subscribe(topic Topic) <-chan Message {
	ch := make(chan Message, subscriberBuffer)
	ps.mu.Lock()
	ps.topics[topic] = append(ps.topics[topic], ch)
	ps.mu.Unlock()
	return ch
}

// Unsubscribe は購読を解除してチャネルを閉じます。
func (ps *SimplePubSub) Unsubscribe(topic Topic, ch <-chan Message) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	subs := ps.topics[topic]
	for i, c := range subs {
		if c == ch {
			close(c)
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(ps.topics, topic)
		return
	}
	ps.topics[topic] = subs
}

// Subscribers は topic の購読者数を返します。
func (ps *SimplePubSub) Subscribers(topic Topic) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.topics[topic])
}
