package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	domain "dasharena/server/domain"
	"dasharena/server/domain/mocks"
)

func TestNewRoomID_IsShortHex(t *testing.T) {
	id := domain.NewRoomID()
	if len(id) != 8 {
		t.Fatalf("room id %q length = %d, want 8", id, len(id))
	}
	for _, c := range id.String() {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			t.Fatalf("room id %q is not hex", id)
		}
	}
}

func TestRoom_ControlMessageTickOrdering(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ps := domain.NewSimplePubSub()
	app := mocks.NewMockApplication(ctrl)
	roomID := domain.RoomID("room0001")
	member := domain.SessionID("member")
	stranger := domain.SessionID("stranger")

	var sender domain.Sender
	room := domain.NewRoom(roomID, ps, func(id domain.RoomID, out domain.Sender) domain.Application {
		if id != roomID {
			t.Errorf("factory room id = %q", id)
		}
		sender = out
		return app
	}, 5*time.Millisecond)
	if sender == nil {
		t.Fatal("factory did not receive a sender")
	}

	memberCh := ps.Subscribe(domain.SessionTopic(member))
	handled := make(chan []byte, 4)

	ticked := make(chan struct{}, 1)
	app.EXPECT().OnJoin(gomock.Any(), member).Return(nil)
	app.EXPECT().OnJoin(gomock.Any(), stranger).Return(domain.ErrRoomFull)
	app.EXPECT().HandleMessage(gomock.Any(), member, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.SessionID, data []byte) error {
			handled <- data
			return errors.New("ignored")
		})
	app.EXPECT().OnLeave(gomock.Any(), member)
	app.EXPECT().Tick(gomock.Any()).DoAndReturn(func(context.Context) []byte {
		select {
		case ticked <- struct{}{}:
		default:
		}
		return []byte("sync")
	}).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- room.Run(ctx) }()

	// Run より前に publish しても取りこぼさない
	bg := context.Background()
	ps.Publish(bg, domain.RoomCtrlTopic(roomID), domain.Message{SessionID: member, Control: domain.ControlJoin})
	ps.Publish(bg, domain.RoomCtrlTopic(roomID), domain.Message{SessionID: stranger, Control: domain.ControlJoin})
	recv(t, ticked, "first tick")

	ps.Publish(bg, domain.RoomTopic(roomID), domain.Message{SessionID: stranger, Data: []byte("x")})
	ps.Publish(bg, domain.RoomTopic(roomID), domain.Message{SessionID: member, Data: []byte("state")})
	if data := recv(t, handled, "member message"); string(data) != "state" {
		t.Fatalf("handled = %s", data)
	}
	if msg := recv(t, memberCh, "tick broadcast"); string(msg.Data) != "sync" {
		t.Fatalf("broadcast = %s", msg.Data)
	}

	ps.Publish(bg, domain.RoomCtrlTopic(roomID), domain.Message{SessionID: member, Control: domain.ControlLeave})
	ps.Publish(bg, domain.RoomCtrlTopic(roomID), domain.Message{SessionID: member, Control: domain.ControlLeave})
	time.Sleep(30 * time.Millisecond)

	cancel()
	if err := recv(t, done, "room stop"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := ps.Subscribers(domain.RoomTopic(roomID)); n != 0 {
		t.Fatalf("room topic still has %d subscribers", n)
	}
}
