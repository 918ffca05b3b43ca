package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/sync/errgroup"

	"dasharena/client"
	"dasharena/config"
	"dasharena/server/domain"
	"dasharena/sim"
)

const reconnectDelay = 2 * time.Second

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

	slog.Info("starting bots", "count", env.BotCount, "server", env.ServerURL)

	eg, ctx := errgroup.WithContext(ctx)
	for i := range env.BotCount {
		eg.Go(func() error {
			runBot(ctx, env.ServerURL, tuning, i)
			return nil
		})
	}
	eg.Wait()
	slog.Info("all bots stopped")
}

func runBot(ctx context.Context, serverURL string, tuning sim.Config, id int) {
	logger := slog.With("botID", id)

	for {
		if ctx.Err() != nil {
			return
		}
		err := botSession(ctx, serverURL, tuning, logger)
		if err != nil && ctx.Err() == nil {
			logger.Warn("bot session ended, reconnecting", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(reconnectDelay):
			}
		}
	}
}

func botSession(ctx context.Context, serverURL string, tuning sim.Config, logger *slog.Logger) error {
	conn, _, err := websocket.Dial(ctx, serverURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()
	logger.Info("connected")

	game, err := client.NewGame(tuning, nil, client.WithLogger(logger))
	if err != nil {
		return err
	}
	controller := client.NewRuleBotController(nil)

	eg, ctx := errgroup.WithContext(ctx)
	frames := make(chan []byte, 256)

	// 受信ループ
	eg.Go(func() error {
		defer close(frames)
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}
			select {
			case frames <- data:
			case <-ctx.Done():
				return nil
			}
		}
	})

	// Game を所有するループ
	eg.Go(func() error {
		ticker := time.NewTicker(tuning.TickDuration())
		defer ticker.Stop()
		dt := tuning.TickDuration().Seconds()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "shutdown")
				return nil
			case data, ok := <-frames:
				if !ok {
					return nil
				}
				if err := handleFrame(game, data); err != nil {
					logger.Debug("dropping frame", "err", err)
				}
			case <-ticker.C:
				client.Drive(game, controller)
				game.Tick(dt)
			}
			if err := flush(ctx, conn, game); err != nil {
				return err
			}
		}
	})

	err = eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleFrame は参加直後と対戦終了後に準備完了を送り、ロビーに戻されたら再参加します。
func handleFrame(game *client.Game, data []byte) error {
	if err := game.Handle(data); err != nil {
		return err
	}
	env, err := domain.DecodeEnvelope(data)
	if err != nil {
		return err
	}
	switch env.Type {
	case domain.TypeJoined, domain.TypeEndGame:
		return game.SetReady(true)
	case domain.TypeLobbyInfo:
		game.JoinRoom()
	}
	return nil
}

func flush(ctx context.Context, conn *websocket.Conn, game *client.Game) error {
	for _, data := range game.Outbox() {
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}
