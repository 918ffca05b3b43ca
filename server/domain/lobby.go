package domain

import (
	"context"
	"log/slog"
	"time"
)

// LobbyBroadcaster はロビーにいるセッションへ定期的に lobby_info を送ります。
type LobbyBroadcaster struct {
	roomManager RoomManager
	pubsub      PubSub
	interval    time.Duration
}

func NewLobbyBroadcaster(roomManager RoomManager, pubsub PubSub, interval time.Duration) (*LobbyBroadcaster, error) {
	if roomManager == nil || pubsub == nil || interval <= 0 {
		return nil, ErrInitializationFailed
	}
	return &LobbyBroadcaster{roomManager: roomManager, pubsub: pubsub, interval: interval}, nil
}

func (b *LobbyBroadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Broadcast(ctx)
		}
	}
}

// Broadcast は現在のロビー人数とルーム数をロビーの全セッションに送ります。
func (b *LobbyBroadcaster) Broadcast(ctx context.Context) {
	sessions := b.roomManager.LobbySessions()
	if len(sessions) == 0 {
		return
	}
	data, err := EncodeLobbyInfo(b.roomManager)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode lobby info", "err", err)
		return
	}
	for _, id := range sessions {
		b.pubsub.Publish(ctx, SessionTopic(id), Message{Data: data})
	}
}

func EncodeLobbyInfo(rm RoomManager) ([]byte, error) {
	return Encode(TypeLobbyInfo, LobbyInfoPayload{
		LobbyCount: rm.LobbyCount(),
		RoomCount:  rm.RoomCount(),
	})
}
