package domain

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RoomID string

// NewRoomID は uuid の先頭8桁から短いルームIDを作ります。
func NewRoomID() RoomID {
	return RoomID(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (id RoomID) String() string { return string(id) }

func (id RoomID) IsEmpty() bool { return id == "" }

type Room struct {
	ID       RoomID
	sessions map[SessionID]struct{}

	pubsub      PubSub
	application Application // 外部からアプリケーションロジックを注入できる

	msgCh  <-chan Message
	ctrlCh <-chan Message

	tickInterval time.Duration
}

// NewRoom はルームを作成し、その場で room トピックを購読します。
// Run より前に publish された join も取りこぼしません。
func NewRoom(id RoomID, pubsub PubSub, factory ApplicationFactory, tickInterval time.Duration) *Room {
	if tickInterval <= 0 {
		tickInterval = time.Second / 60
	}
	r := &Room{
		ID:           id,
		sessions:     make(map[SessionID]struct{}),
		pubsub:       pubsub,
		msgCh:        pubsub.Subscribe(RoomTopic(id)),
		ctrlCh:       pubsub.Subscribe(RoomCtrlTopic(id)),
		tickInterval: tickInterval,
	}
	r.application = factory(id, r)
	return r
}

func (r *Room) Broadcast(ctx context.Context, data []byte) {
	for sessionID := range r.sessions {
		r.pubsub.Publish(ctx, SessionTopic(sessionID), Message{Data: data})
	}
}

func (r *Room) SendTo(ctx context.Context, sessionID SessionID, data []byte) {
	r.pubsub.Publish(ctx, SessionTopic(sessionID), Message{Data: data})
}

// Run は ctx がキャンセルされるまでルームのtickループを回します。
func (r *Room) Run(ctx context.Context) error {
	defer r.pubsub.Unsubscribe(RoomTopic(r.ID), r.msgCh)
	defer r.pubsub.Unsubscribe(RoomCtrlTopic(r.ID), r.ctrlCh)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	slog.DebugContext(ctx, "room started", "roomID", r.ID)
	defer slog.DebugContext(ctx, "room stopped", "roomID", r.ID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.step(ctx)
		}
	}
}

// step は1tick分の処理です。制御 → 受信 → Tick の順に処理します。
func (r *Room) step(ctx context.Context) {
CTRL_LOOP:
	for {
		select {
		case ctrl := <-r.ctrlCh:
			r.handleControlMessage(ctx, ctrl)
		default:
			break CTRL_LOOP
		}
	}
RECEIVE_LOOP:
	for {
		select {
		case msg := <-r.msgCh:
			if _, ok := r.sessions[msg.SessionID]; !ok {
				slog.DebugContext(ctx, "message from non-member dropped", "roomID", r.ID, "sessionID", msg.SessionID)
				continue
			}
			if err := r.application.HandleMessage(ctx, msg.SessionID, msg.Data); err != nil {
				slog.WarnContext(ctx, "room handle message failed", "roomID", r.ID, "sessionID", msg.SessionID, "err", err)
			}
		default:
			break RECEIVE_LOOP
		}
	}
	if data := r.application.Tick(ctx); data != nil {
		r.Broadcast(ctx, data)
	}
}

func (r *Room) handleControlMessage(ctx context.Context, msg Message) {
	switch msg.Control {
	case ControlJoin:
		if _, ok := r.sessions[msg.SessionID]; ok {
			return
		}
		r.sessions[msg.SessionID] = struct{}{}
		if err := r.application.OnJoin(ctx, msg.SessionID); err != nil {
			slog.WarnContext(ctx, "room join rejected", "roomID", r.ID, "sessionID", msg.SessionID, "err", err)
			delete(r.sessions, msg.SessionID)
		}
	case ControlLeave:
		if _, ok := r.sessions[msg.SessionID]; !ok {
			return
		}
		delete(r.sessions, msg.SessionID)
		r.application.OnLeave(ctx, msg.SessionID)
	default:
		slog.WarnContext(ctx, "unknown room control", "roomID", r.ID, "control", msg.Control)
	}
}
