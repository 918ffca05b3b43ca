package domain_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	domain "dasharena/server/domain"
	"dasharena/server/domain/mocks"
)

type fakeTransport struct {
	reads  chan []byte
	writes chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		reads:  make(chan []byte, 16),
		writes: make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) Read(ctx context.Context) ([]byte, error) {
	select {
	case b, ok := <-f.reads:
		if !ok {
			return nil, io.EOF
		}
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) Write(ctx context.Context, data []byte) error {
	select {
	case f.writes <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeTransport) Ping(context.Context) error { return nil }

func (f *fakeTransport) Close(int32, string) error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func recv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

// 初期化時にリソースが正しくセットアップされることを確認
func TestNewSessionEndpoint_InitializesDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := domain.NewSession()
	tr := mocks.NewMockTransport(ctrl)
	c := domain.NewConnection(s.ID(), tr)
	ps := mocks.NewMockPubSub(ctrl)
	rm := mocks.NewMockRoomManager(ctrl)

	se, err := domain.NewSessionEndpoint(s, c, ps, rm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if se == nil {
		t.Fatalf("endpoint is nil")
	}
}

func TestNewSessionEndpoint_RejectsMissingDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := domain.NewSession()
	c := domain.NewConnection(s.ID(), mocks.NewMockTransport(ctrl))

	if _, err := domain.NewSessionEndpoint(s, c, nil, mocks.NewMockRoomManager(ctrl)); !errors.Is(err, domain.ErrInitializationFailed) {
		t.Fatalf("err = %v, want ErrInitializationFailed", err)
	}
	if _, err := domain.NewSessionEndpoint(nil, c, domain.NewSimplePubSub(), mocks.NewMockRoomManager(ctrl)); !errors.Is(err, domain.ErrInitializationFailed) {
		t.Fatalf("err = %v, want ErrInitializationFailed", err)
	}
}

func TestSessionEndpoint_RoutesMessagesAndLobbyTransitions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := domain.NewSession()
	tr := newFakeTransport()
	ps := domain.NewSimplePubSub()
	rm := mocks.NewMockRoomManager(ctrl)
	roomID := domain.RoomID("abcd1234")

	roomCh := ps.Subscribe(domain.RoomTopic(roomID))
	drops := make(chan string, 4)

	gomock.InOrder(
		rm.EXPECT().Join(gomock.Any(), s.ID()).Return(roomID, nil),
		rm.EXPECT().Leave(gomock.Any(), s.ID()).Return(roomID, nil),
		rm.EXPECT().EnterLobby(s.ID()),
	)
	rm.EXPECT().LobbyCount().Return(1)
	rm.EXPECT().RoomCount().Return(0)
	rm.EXPECT().Forget(gomock.Any(), s.ID())

	se, err := domain.NewSessionEndpoint(s, domain.NewConnection(s.ID(), tr), ps, rm,
		domain.WithPingInterval(0),
		domain.WithOnDrop(func(_ context.Context, reason string) { drops <- reason }),
	)
	if err != nil {
		t.Fatalf("NewSessionEndpoint: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- se.Run() }()

	state := []byte(`{"type":"state","data":{"x":1,"y":2,"angle":0}}`)
	tr.reads <- state
	msg := recv(t, roomCh, "forwarded state")
	if msg.SessionID != s.ID() || string(msg.Data) != string(state) {
		t.Fatalf("forwarded = %+v", msg)
	}

	tr.reads <- []byte(`{"type":`)
	if reason := recv(t, drops, "malformed drop"); reason != "malformed" {
		t.Fatalf("drop reason = %q", reason)
	}

	tr.reads <- []byte(`{"type":"leave_room","data":{}}`)
	if frame := recv(t, tr.writes, "lobby info"); string(frame) != `{"type":"lobby_info","data":{"lobbyCount":1,"roomCount":0}}` {
		t.Fatalf("lobby frame = %s", frame)
	}

	tr.reads <- state
	if reason := recv(t, drops, "lobby drop"); reason != "not_in_room" {
		t.Fatalf("drop reason = %q", reason)
	}

	ps.Publish(context.Background(), domain.SessionTopic(s.ID()), domain.Message{Data: []byte("hello")})
	if frame := recv(t, tr.writes, "session topic frame"); string(frame) != "hello" {
		t.Fatalf("frame = %s", frame)
	}

	close(tr.reads)
	if err := recv(t, done, "Run to return"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	recv(t, tr.closed, "transport close")
	if !s.IsClosed() {
		t.Fatal("session not closed")
	}
}
