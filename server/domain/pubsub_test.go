package domain_test

import (
	"context"
	"testing"

	domain "dasharena/server/domain"
)

func TestSimplePubSub_FanOutAndUnsubscribe(t *testing.T) {
	ps := domain.NewSimplePubSub()
	topic := domain.Topic("room:x")
	a := ps.Subscribe(topic)
	b := ps.Subscribe(topic)

	ps.Publish(context.Background(), topic, domain.Message{Data: []byte("hi")})
	if string((<-a).Data) != "hi" || string((<-b).Data) != "hi" {
		t.Fatal("message not delivered to all subscribers")
	}

	ps.Unsubscribe(topic, a)
	if _, ok := <-a; ok {
		t.Fatal("unsubscribed channel still open")
	}
	if ps.Subscribers(topic) != 1 {
		t.Fatalf("subscribers = %d, want 1", ps.Subscribers(topic))
	}
}

func TestSimplePubSub_FullSubscriberDoesNotBlock(t *testing.T) {
	ps := domain.NewSimplePubSub()
	topic := domain.Topic("session:slow")
	ch := ps.Subscribe(topic)

	for range 1000 {
		ps.Publish(context.Background(), topic, domain.Message{Data: []byte("x")})
	}
	if len(ch) != cap(ch) {
		t.Fatalf("buffered = %d, want %d", len(ch), cap(ch))
	}
}
