package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
	// ErrInitializationFailed は必須の依存が欠けていて初期化できない場合に返されるエラーです。
	ErrInitializationFailed = errors.New("failed to initialize")
)

const (
	defaultIdleTimeout  = 30 * time.Second
	defaultPingInterval = 10 * time.Second
)

type SessionEndpoint struct {
	ctx    context.Context
	cancel context.CancelFunc

	session     *Session
	connection  *Connection
	pubsub      PubSub
	roomManager RoomManager
	heartbeat   *HeartbeatService
	roomID      RoomID // readLoop だけが更新する

	idleTimeout  time.Duration
	pingInterval time.Duration
	onDrop       func(ctx context.Context, reason string)

	ctrlCh  chan endpointEvent // 制御用チャネル
	writeCh chan []byte        // 書き込み用チャネル

	// lifecycle
	closed atomic.Bool
}

type EndpointOption func(*SessionEndpoint)

// WithIdleTimeout は受信と pong の両方が途絶えてから切断するまでの時間です。0 で無効になります。
func WithIdleTimeout(d time.Duration) EndpointOption {
	return func(se *SessionEndpoint) { se.idleTimeout = d }
}

// WithPingInterval は ping の送信間隔です。0 で無効になります。
func WithPingInterval(d time.Duration) EndpointOption {
	return func(se *SessionEndpoint) { se.pingInterval = d }
}

// WithOnDrop はエンドポイントで捨てたメッセージの通知先を設定します。
func WithOnDrop(fn func(ctx context.Context, reason string)) EndpointOption {
	return func(se *SessionEndpoint) {
		if fn != nil {
			se.onDrop = fn
		}
	}
}

func NewSessionEndpoint(session *Session, connection *Connection, pubsub PubSub, roomManager RoomManager, opts ...EndpointOption) (*SessionEndpoint, error) {
	if session == nil {
		return nil, ErrInitializationFailed
	}
	if connection == nil {
		return nil, ErrInitializationFailed
	}
	if pubsub == nil {
		return nil, ErrInitializationFailed
	}
	if roomManager == nil {
		return nil, ErrInitializationFailed
	}
	ctx, cancel := context.WithCancel(context.Background())
	se := &SessionEndpoint{
		ctx:          ctx,
		cancel:       cancel,
		session:      session,
		connection:   connection,
		pubsub:       pubsub,
		roomManager:  roomManager,
		idleTimeout:  defaultIdleTimeout,
		pingInterval: defaultPingInterval,
		onDrop:       func(context.Context, string) {},
		ctrlCh:       make(chan endpointEvent, 16),
		writeCh:      make(chan []byte, 1024),
	}
	for _, opt := range opts {
		opt(se)
	}
	se.heartbeat = NewHeartbeatService(se.pingInterval, session, connection)
	return se, nil
}

// Run はセッションをルームに自動で参加させ、切断されるまでブロックします。
// 終了時にはルームとロビーからセッションを取り除きます。
func (se *SessionEndpoint) Run() error {
	// 自分宛のメッセージを購読
	sessionTopic := SessionTopic(se.session.ID())
	msgCh := se.pubsub.Subscribe(sessionTopic)
	defer se.pubsub.Unsubscribe(sessionTopic, msgCh)
	defer se.roomManager.Forget(context.Background(), se.session.ID())
	defer se.close()

	se.joinRoom(se.ctx)

	eg, ctx := errgroup.WithContext(se.ctx)
	eg.Go(func() error {
		se.ownerLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.readLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.writeLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.subscribeLoop(ctx, msgCh)
		return nil
	})
	eg.Go(func() error {
		se.heartbeat.Run(ctx, func() {
			se.sendCtrlEvent(ctx, endpointEvent{kind: evPong})
		})
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	return nil
}

func (se *SessionEndpoint) Send(data []byte) error {
	select {
	case se.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (se *SessionEndpoint) Close(ctx context.Context) {
	se.sendCtrlEvent(ctx, endpointEvent{kind: evClose})
}

func (se *SessionEndpoint) ForceClose() {
	se.close()
}

// ownerLoop は論理セッションの状態を監視し、必要に応じて接続の管理を行います。
func (se *SessionEndpoint) ownerLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-se.ctrlCh:
			se.handleControlEvent(ctx, ev)
		case <-ticker.C:
			if _, reason := se.session.IsIdle(se.idleTimeout); reason.Dead() {
				se.handleControlEvent(ctx, endpointEvent{
					kind: evClose,
					err:  fmt.Errorf("idle: %s", reason),
				})
			}
		}
	}
}

func (se *SessionEndpoint) readLoop(ctx context.Context) {
	for {
		data, err := se.connection.Read(ctx)
		if err != nil {
			se.sendCtrlEvent(ctx, endpointEvent{kind: evReadError, err: err})
			return
		}
		se.session.TouchRead()
		se.handleData(ctx, data)
	}
}

func (se *SessionEndpoint) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-se.writeCh:
			if err := se.connection.Write(ctx, data); err != nil {
				se.sendCtrlEvent(ctx, endpointEvent{kind: evWriteError, err: err})
				return
			}
			se.session.TouchWrite()
		}
	}
}

// subscribeLoop はpubsubからのメッセージをwriteChに転送します。
func (se *SessionEndpoint) subscribeLoop(ctx context.Context, msgCh <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			select {
			case se.writeCh <- msg.Data:
			default:
				slog.WarnContext(ctx, "subscribeLoop: writeCh full, message dropped", "sessionID", se.session.ID())
				se.onDrop(ctx, "backpressure")
			}
		}
	}
}

func (se *SessionEndpoint) close() {
	if !se.closed.CompareAndSwap(false, true) {
		return
	}
	se.cancel()
	se.session.Close()
	se.connection.Close()
}

func (se *SessionEndpoint) handleData(ctx context.Context, data []byte) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		slog.WarnContext(ctx, "dropping message", "sessionID", se.session.ID(), "err", err)
		se.onDrop(ctx, "malformed")
		return
	}

	switch env.Type {
	case TypeJoinRoom:
		se.joinRoom(ctx)
	case TypeLeaveRoom:
		se.leaveRoom(ctx)
	default:
		if se.roomID.IsEmpty() {
			slog.DebugContext(ctx, "received room message while in lobby", "sessionID", se.session.ID(), "type", env.Type)
			se.onDrop(ctx, "not_in_room")
			return
		}
		se.pubsub.Publish(ctx, RoomTopic(se.roomID), Message{
			SessionID: se.session.ID(),
			Data:      data,
		})
	}
}

func (se *SessionEndpoint) joinRoom(ctx context.Context) {
	if !se.roomID.IsEmpty() {
		slog.DebugContext(ctx, "session already in a room", "sessionID", se.session.ID(), "roomID", se.roomID)
		return
	}
	roomID, err := se.roomManager.Join(ctx, se.session.ID())
	if err != nil {
		slog.ErrorContext(ctx, "failed to join room", "sessionID", se.session.ID(), "err", err)
		return
	}
	se.roomID = roomID
	slog.InfoContext(ctx, "session joined room", "sessionID", se.session.ID(), "roomID", roomID)
}

func (se *SessionEndpoint) leaveRoom(ctx context.Context) {
	roomID, err := se.roomManager.Leave(ctx, se.session.ID())
	if err != nil {
		slog.WarnContext(ctx, "cannot leave room", "sessionID", se.session.ID(), "err", err)
		return
	}
	se.roomID = ""
	se.roomManager.EnterLobby(se.session.ID())
	slog.InfoContext(ctx, "session moved to lobby", "sessionID", se.session.ID(), "roomID", roomID)

	if data, err := EncodeLobbyInfo(se.roomManager); err == nil {
		if err := se.Send(data); err != nil {
			slog.WarnContext(ctx, "failed to send lobby info", "sessionID", se.session.ID(), "err", err)
		}
	}
}

// handleControlEvent は制御チャネルからのイベントを処理し論理セッションの状態を更新する唯一の関数です。
func (se *SessionEndpoint) handleControlEvent(ctx context.Context, ev endpointEvent) {
	switch ev.kind {
	case evClose:
		slog.InfoContext(ctx, "closing session", "sessionID", se.session.ID(), "err", ev.err)
		se.close()
	case evPong:
		se.session.TouchPong()
	case evReadError, evWriteError:
		slog.DebugContext(ctx, "connection lost", "sessionID", se.session.ID(), "kind", ev.kind, "err", ev.err)
		se.close()
	default:
		slog.WarnContext(ctx, "unknown endpoint event kind", "kind", ev.kind)
	}
}

func (se *SessionEndpoint) sendCtrlEvent(ctx context.Context, ev endpointEvent) {
	select {
	case se.ctrlCh <- ev:
	case <-ctx.Done():
	}
}
