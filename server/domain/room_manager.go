package domain

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"
)

var (
	// ErrRoomFull はアプリケーションがこれ以上プレイヤーを受け付けられない場合に返されるエラーです。
	ErrRoomFull = errors.New("room is full")
	// ErrNotInRoom はセッションがどのルームにも属していない場合に返されるエラーです。
	ErrNotInRoom = errors.New("session is not in a room")
	// ErrManagerClosed は Close 後の Join で返されるエラーです。
	ErrManagerClosed = errors.New("room manager is closed")
)

//go:generate go tool mockgen -destination=./mocks/room_manager_mock.go -package=mocks . RoomManager

// RoomManager はセッションをルームとロビーに割り当てます。
type RoomManager interface {
	// Join は空きのある最初のルーム、なければ新しいルームにセッションを入れます。
	Join(ctx context.Context, sessionID SessionID) (RoomID, error)
	// Leave はセッションをルームから外します。空になったルームは停止して破棄します。
	Leave(ctx context.Context, sessionID SessionID) (RoomID, error)
	EnterLobby(sessionID SessionID)
	// Forget はセッションをルームとロビーの両方から取り除きます。切断時に呼びます。
	Forget(ctx context.Context, sessionID SessionID)
	LobbySessions() []SessionID
	RoomCount() int
	LobbyCount() int
}

type managedRoom struct {
	room    *Room
	members map[SessionID]struct{}
	cancel  context.CancelFunc
}

type SimpleRoomManager struct {
	baseCtx      context.Context
	pubsub       PubSub
	factory      ApplicationFactory
	capacity     int
	tickInterval time.Duration

	mu          sync.Mutex
	rooms       map[RoomID]*managedRoom
	order       []RoomID // 作成順
	sessionRoom map[SessionID]RoomID
	lobby       map[SessionID]struct{}
	closed      bool

	wg sync.WaitGroup
}

type RoomManagerOption func(*SimpleRoomManager)

func WithRoomCapacity(n int) RoomManagerOption {
	return func(m *SimpleRoomManager) {
		if n > 0 {
			m.capacity = n
		}
	}
}

func WithTickInterval(d time.Duration) RoomManagerOption {
	return func(m *SimpleRoomManager) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// NewSimpleRoomManager は ctx を親としてルームのゴルーチンを起動するマネージャを作ります。
func NewSimpleRoomManager(ctx context.Context, pubsub PubSub, factory ApplicationFactory, opts ...RoomManagerOption) (*SimpleRoomManager, error) {
	if ctx == nil || pubsub == nil || factory == nil {
		return nil, ErrInitializationFailed
	}
	m := &SimpleRoomManager{
		baseCtx:      ctx,
		pubsub:       pubsub,
		factory:      factory,
		capacity:     2,
		tickInterval: time.Second / 60,
		rooms:        make(map[RoomID]*managedRoom),
		sessionRoom:  make(map[SessionID]RoomID),
		lobby:        make(map[SessionID]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *SimpleRoomManager) Join(ctx context.Context, sessionID SessionID) (RoomID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrManagerClosed
	}
	if roomID, ok := m.sessionRoom[sessionID]; ok {
		return roomID, nil
	}

	mr := m.findVacantLocked()
	if mr == nil {
		mr = m.createLocked()
		slog.InfoContext(ctx, "room created", "roomID", mr.room.ID)
	}
	mr.members[sessionID] = struct{}{}
	m.sessionRoom[sessionID] = mr.room.ID
	delete(m.lobby, sessionID)

	m.pubsub.Publish(ctx, RoomCtrlTopic(mr.room.ID), Message{SessionID: sessionID, Control: ControlJoin})
	return mr.room.ID, nil
}

func (m *SimpleRoomManager) findVacantLocked() *managedRoom {
	for _, id := range m.order {
		if mr := m.rooms[id]; len(mr.members) < m.capacity {
			return mr
		}
	}
	return nil
}

func (m *SimpleRoomManager) createLocked() *managedRoom {
	id := NewRoomID()
	for m.rooms[id] != nil {
		id = NewRoomID()
	}
	ctx, cancel := context.WithCancel(m.baseCtx)
	room := NewRoom(id, m.pubsub, m.factory, m.tickInterval)
	mr := &managedRoom{
		room:    room,
		members: make(map[SessionID]struct{}),
		cancel:  cancel,
	}
	m.rooms[id] = mr
	m.order = append(m.order, id)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := room.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "room error", "roomID", id, "err", err)
		}
	}()
	return mr
}

func (m *SimpleRoomManager) Leave(ctx context.Context, sessionID SessionID) (RoomID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(ctx, sessionID)
}

func (m *SimpleRoomManager) leaveLocked(ctx context.Context, sessionID SessionID) (RoomID, error) {
	roomID, ok := m.sessionRoom[sessionID]
	if !ok {
		return "", ErrNotInRoom
	}
	delete(m.sessionRoom, sessionID)

	mr := m.rooms[roomID]
	if mr == nil {
		return roomID, nil
	}
	delete(mr.members, sessionID)
	m.pubsub.Publish(ctx, RoomCtrlTopic(roomID), Message{SessionID: sessionID, Control: ControlLeave})

	if len(mr.members) == 0 {
		mr.cancel()
		delete(m.rooms, roomID)
		m.order = slices.DeleteFunc(m.order, func(id RoomID) bool { return id == roomID })
		slog.InfoContext(ctx, "room destroyed", "roomID", roomID)
	}
	return roomID, nil
}

func (m *SimpleRoomManager) EnterLobby(sessionID SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lobby[sessionID] = struct{}{}
}

func (m *SimpleRoomManager) Forget(ctx context.Context, sessionID SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lobby, sessionID)
	_, _ = m.leaveLocked(ctx, sessionID)
}

func (m *SimpleRoomManager) LobbySessions() []SessionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SessionID, 0, len(m.lobby))
	for id := range m.lobby {
		out = append(out, id)
	}
	return out
}

func (m *SimpleRoomManager) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

func (m *SimpleRoomManager) LobbyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lobby)
}

// Close は全ルームを停止し、ゴルーチンの終了を待ちます。
func (m *SimpleRoomManager) Close() {
	m.mu.Lock()
	m.closed = true
	for id, mr := range m.rooms {
		mr.cancel()
		delete(m.rooms, id)
	}
	m.order = nil
	m.mu.Unlock()
	m.wg.Wait()
}
