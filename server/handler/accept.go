package handler

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"dasharena/server/adapter/websocket"
	"dasharena/server/application"
	"dasharena/server/domain"
)

type AcceptHandler struct {
	pubsub      domain.PubSub
	roomManager domain.RoomManager
	metrics     application.MetricsRecorder
	endpointOps []domain.EndpointOption
}

// NewAcceptHandler は metrics が nil なら記録しません。opts は接続ごとの SessionEndpoint に渡されます。
func NewAcceptHandler(pubsub domain.PubSub, roomManager domain.RoomManager, metrics application.MetricsRecorder, opts ...domain.EndpointOption) *AcceptHandler {
	if metrics == nil {
		metrics = application.NopMetrics{}
	}
	return &AcceptHandler{pubsub: pubsub, roomManager: roomManager, metrics: metrics, endpointOps: opts}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // 開発用: Origin チェックをスキップ
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to accept", "err", err)
		return
	}

	session := domain.NewSession()
	transport := adapterwebsocket.NewTransportFrom(conn)
	connection := domain.NewConnection(session.ID(), transport)
	opts := append([]domain.EndpointOption{domain.WithOnDrop(h.metrics.MessageDropped)}, h.endpointOps...)
	endpoint, err := domain.NewSessionEndpoint(session, connection, h.pubsub, h.roomManager, opts...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create session endpoint", "err", err)
		conn.Close(websocket.StatusInternalError, "initialization failed")
		return
	}
	slog.DebugContext(ctx, "accepted new connection", "sessionID", session.ID())
	if err := endpoint.Run(); err != nil {
		slog.ErrorContext(ctx, "failed to run session endpoint", "sessionID", session.ID(), "err", err)
		return
	}
	slog.DebugContext(ctx, "connection closed", "sessionID", session.ID())
}
