package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"dasharena/server/domain"
	"dasharena/server/handler"
)

// Route は /ws と /health を登録します。どちらも otelhttp で計測されます。
func Route(accept *handler.AcceptHandler, roomManager domain.RoomManager) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", otelhttp.NewHandler(accept, "ws"))
	mux.Handle("GET /health", otelhttp.NewHandler(handler.NewHealthHandler(roomManager), "health"))
	return mux
}
