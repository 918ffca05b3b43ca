package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dasharena/config"
	"dasharena/server"
	"dasharena/server/application"
	"dasharena/server/domain"
	"dasharena/server/handler"
)

func main() {
	env, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: env.LogLevel}))
	slog.SetDefault(logger)

	tuning, err := config.LoadTuning(env.TuningFile)
	if err != nil {
		slog.Error("invalid tuning file", "path", env.TuningFile, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pubsub := domain.NewSimplePubSub()

	metrics, err := application.NewOtelMetrics(application.Meter())
	if err != nil {
		slog.Error("failed to register metrics", "err", err)
		os.Exit(1)
	}

	settings := application.Settings{MaxHP: tuning.Robot.MaxHP, MatchTimeout: env.MatchTimeout}
	roomManager, err := domain.NewSimpleRoomManager(ctx, pubsub,
		application.Factory(settings, application.WithMetrics(metrics)),
		domain.WithTickInterval(env.TickInterval()),
	)
	if err != nil {
		slog.Error("failed to create room manager", "err", err)
		os.Exit(1)
	}
	defer roomManager.Close()
	if err := metrics.ObserveActiveRooms(roomManager.RoomCount); err != nil {
		slog.Error("failed to register room gauge", "err", err)
		os.Exit(1)
	}

	lobby, err := domain.NewLobbyBroadcaster(roomManager, pubsub, env.LobbyInfoInterval)
	if err != nil {
		slog.Error("failed to create lobby broadcaster", "err", err)
		os.Exit(1)
	}
	go lobby.Run(ctx)

	accept := handler.NewAcceptHandler(pubsub, roomManager, metrics,
		domain.WithIdleTimeout(env.IdleTimeout),
		domain.WithPingInterval(env.PingInterval),
	)
	s := server.NewServer(env.ListenAddr(), server.Route(accept, roomManager))

	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "err", err)
			stop()
		}
	}()
	slog.InfoContext(ctx, "server listening", "addr", s.Addr(), "syncHz", env.SyncHz, "matchTimeout", env.MatchTimeout)

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "err", err)
		if err := s.Close(); err != nil {
			slog.Error("forced close failed", "err", err)
		}
	}
	slog.Info("server shutdown complete")
}
