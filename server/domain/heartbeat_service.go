package domain

import (
	"context"
	"log/slog"
	"time"
)

// Pinger は pong が返るまでブロックする ping の送信口です。
type Pinger interface {
	Ping(ctx context.Context) error
}

// HeartbeatService は定期的に ping を送信する死活監視サービスです。
type HeartbeatService struct {
	pingInterval time.Duration
	session      *Session
	pinger       Pinger
}

// NewHeartbeatService は新しいHeartbeatServiceを生成します。
func NewHeartbeatService(pingInterval time.Duration, session *Session, pinger Pinger) *HeartbeatService {
	return &HeartbeatService{
		pingInterval: pingInterval,
		session:      session,
		pinger:       pinger,
	}
}

// Run はpingInterval間隔でpingを送信し、pong を受け取るたびに onPong を呼びます。
// ctxがキャンセルされると終了します。pingInterval が0以下なら何もしません。
func (h *HeartbeatService) Run(ctx context.Context, onPong func()) {
	if h.pingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.pingInterval)
			err := h.pinger.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					slog.WarnContext(ctx, "heartbeat: ping failed", "sessionID", h.session.ID(), "err", err)
				}
				continue
			}
			slog.DebugContext(ctx, "heartbeat: pong received", "sessionID", h.session.ID())
			onPong()
		}
	}
}
