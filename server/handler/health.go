package handler

import (
	"encoding/json"
	"net/http"

	"dasharena/server/domain"
)

type healthResponse struct {
	Status     string `json:"status"`
	RoomCount  int    `json:"roomCount"`
	LobbyCount int    `json:"lobbyCount"`
}

func NewHealthHandler(roomManager domain.RoomManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(healthResponse{
			Status:     "ok",
			RoomCount:  roomManager.RoomCount(),
			LobbyCount: roomManager.LobbyCount(),
		})
	}
}
