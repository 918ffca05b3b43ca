package application

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"time"

	"dasharena/server/domain"
)

const (
	maxPlayers = 2
	// hostPlayerID の衝突報告だけを受け付けます。
	hostPlayerID = 1
)

var ErrUnknownPlayer = errors.New("session is not a player in this room")

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Settings はルーム単位の対戦ルールです。
type Settings struct {
	MaxHP        float64
	MatchTimeout time.Duration // 0 以下で無効
}

type Option func(*ArenaApplication)

func WithClock(c Clock) Option {
	return func(app *ArenaApplication) {
		if c != nil {
			app.clock = c
		}
	}
}

func WithMetrics(m MetricsRecorder) Option {
	return func(app *ArenaApplication) {
		if m != nil {
			app.metrics = m
		}
	}
}

// ArenaApplication は1ルーム分の中継と HP 台帳です。
// HP、準備状態、スコア、プレイ中フラグの正はサーバー側にあり、位置と充電はクライアントの値を中継します。
type ArenaApplication struct {
	roomID   domain.RoomID
	out      domain.Sender
	settings Settings
	clock    Clock
	metrics  MetricsRecorder

	players  map[domain.SessionID]int
	sessions map[int]domain.SessionID
	ready    map[int]bool
	hp       map[int]float64
	score    map[int]int
	states   map[int]domain.PlayerState

	isPlaying bool
	deadline  time.Time // ゼロ値なら未設定
}

func NewArenaApplication(roomID domain.RoomID, out domain.Sender, settings Settings, opts ...Option) *ArenaApplication {
	app := &ArenaApplication{
		roomID:   roomID,
		out:      out,
		settings: settings,
		clock:    systemClock{},
		metrics:  NopMetrics{},
		players:  make(map[domain.SessionID]int),
		sessions: make(map[int]domain.SessionID),
		ready:    make(map[int]bool),
		hp:       make(map[int]float64),
		score:    make(map[int]int),
		states:   make(map[int]domain.PlayerState),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Factory は RoomManager に渡す ApplicationFactory を返します。
func Factory(settings Settings, opts ...Option) domain.ApplicationFactory {
	return func(roomID domain.RoomID, out domain.Sender) domain.Application {
		return NewArenaApplication(roomID, out, settings, opts...)
	}
}

func (app *ArenaApplication) IsPlaying() bool { return app.isPlaying }

func (app *ArenaApplication) HP(playerID int) (float64, bool) {
	hp, ok := app.hp[playerID]
	return hp, ok
}

func (app *ArenaApplication) Score(playerID int) int { return app.score[playerID] }

// OnJoin は空いている最小のプレイヤーIDを割り当てます。
func (app *ArenaApplication) OnJoin(ctx context.Context, sessionID domain.SessionID) error {
	if _, ok := app.players[sessionID]; ok {
		return nil
	}
	playerID := 0
	for id := 1; id <= maxPlayers; id++ {
		if _, taken := app.sessions[id]; !taken {
			playerID = id
			break
		}
	}
	if playerID == 0 {
		return domain.ErrRoomFull
	}

	app.players[sessionID] = playerID
	app.sessions[playerID] = sessionID
	app.ready[playerID] = false
	app.hp[playerID] = app.settings.MaxHP
	app.score[playerID] = 0

	slog.InfoContext(ctx, "player joined", "roomID", app.roomID, "sessionID", sessionID, "playerID", playerID)
	app.sendTo(ctx, sessionID, domain.TypeJoined, domain.JoinedPayload{RoomID: app.roomID.String(), PlayerID: playerID})
	app.broadcast(ctx, domain.TypeRoomUpdate, app.roomInfo())
	return nil
}

// OnLeave はプレイヤーを外します。対戦中なら勝者なしでマッチを打ち切ります。
func (app *ArenaApplication) OnLeave(ctx context.Context, sessionID domain.SessionID) {
	playerID, ok := app.players[sessionID]
	if !ok {
		return
	}
	delete(app.players, sessionID)
	delete(app.sessions, playerID)
	delete(app.ready, playerID)
	delete(app.hp, playerID)
	delete(app.score, playerID)
	delete(app.states, playerID)

	slog.InfoContext(ctx, "player left", "roomID", app.roomID, "sessionID", sessionID, "playerID", playerID)
	if app.isPlaying {
		app.endGame(ctx, 0, "disconnect")
		return
	}
	app.broadcast(ctx, domain.TypeRoomUpdate, app.roomInfo())
}

func (app *ArenaApplication) HandleMessage(ctx context.Context, sessionID domain.SessionID, data []byte) error {
	playerID, ok := app.players[sessionID]
	if !ok {
		app.metrics.MessageDropped(ctx, "unknown_player")
		return ErrUnknownPlayer
	}
	env, err := domain.DecodeEnvelope(data)
	if err != nil {
		app.metrics.MessageDropped(ctx, "malformed")
		return err
	}
	app.metrics.MessageReceived(ctx, env.Type)

	switch env.Type {
	case domain.TypeState:
		return app.handleState(ctx, playerID, env)
	case domain.TypeChargeStart, domain.TypeChargeRelease:
		return app.relayWithPlayerID(ctx, playerID, env)
	case domain.TypeDamage:
		p, err := domain.DecodePayload[domain.DamagePayload](env)
		if err != nil {
			app.metrics.MessageDropped(ctx, "malformed")
			return err
		}
		app.applyDamage(ctx, playerID, p.TargetID, p.Amount)
	case domain.TypeZoneDamage:
		p, err := domain.DecodePayload[domain.ZoneDamagePayload](env)
		if err != nil {
			app.metrics.MessageDropped(ctx, "malformed")
			return err
		}
		app.applyDamage(ctx, playerID, p.TargetID, p.Amount)
	case domain.TypeReady:
		p, err := domain.DecodePayload[domain.ReadyPayload](env)
		if err != nil {
			app.metrics.MessageDropped(ctx, "malformed")
			return err
		}
		app.setReady(ctx, playerID, p.IsReady)
	case domain.TypeCollision:
		if playerID != hostPlayerID {
			slog.DebugContext(ctx, "collision from non-host ignored", "roomID", app.roomID, "playerID", playerID)
			app.metrics.MessageDropped(ctx, "not_host")
			return nil
		}
		app.broadcast(ctx, domain.TypeCollision, nil)
	default:
		slog.DebugContext(ctx, "unexpected message from client", "roomID", app.roomID, "playerID", playerID, "type", env.Type)
		app.metrics.MessageDropped(ctx, "unexpected_type")
	}
	return nil
}

// handleState は位置をそのまま保存します。値の妥当性は検証しません。
func (app *ArenaApplication) handleState(ctx context.Context, playerID int, env domain.Envelope) error {
	st, err := domain.DecodePayload[domain.PlayerState](env)
	if err != nil {
		app.metrics.MessageDropped(ctx, "malformed")
		return err
	}
	app.states[playerID] = st
	return nil
}

func (app *ArenaApplication) relayWithPlayerID(ctx context.Context, playerID int, env domain.Envelope) error {
	data, err := domain.WithPlayerID(env, playerID)
	if err != nil {
		app.metrics.MessageDropped(ctx, "malformed")
		return err
	}
	app.out.Broadcast(ctx, data)
	return nil
}

func (app *ArenaApplication) applyDamage(ctx context.Context, from, targetID int, amount float64) {
	hp, ok := app.hp[targetID]
	switch {
	case !app.isPlaying:
		app.metrics.MessageDropped(ctx, "not_playing")
		return
	case !ok:
		app.metrics.MessageDropped(ctx, "unknown_target")
		return
	case !(amount >= 0) || math.IsInf(amount, 0):
		app.metrics.MessageDropped(ctx, "invalid_amount")
		return
	}

	hp = math.Max(0, hp-amount)
	app.hp[targetID] = hp
	slog.DebugContext(ctx, "hp updated", "roomID", app.roomID, "reporter", from, "targetID", targetID, "amount", amount, "hp", hp)
	app.broadcast(ctx, domain.TypeHPUpdate, domain.HPUpdatePayload{TargetID: targetID, HP: hp})

	if hp <= 0 {
		app.endGame(ctx, otherPlayer(targetID), "knockout")
	}
}

// setReady は準備状態を記録し、この変更で全員が揃ったときだけ開始します。
func (app *ArenaApplication) setReady(ctx context.Context, playerID int, isReady bool) {
	changed := app.ready[playerID] != isReady
	app.ready[playerID] = isReady
	app.broadcast(ctx, domain.TypeReadyUpdate, domain.ReadyUpdatePayload{ReadyStatus: app.readyStatus()})

	if app.isPlaying || !changed || len(app.players) < maxPlayers {
		return
	}
	for _, r := range app.ready {
		if !r {
			return
		}
	}
	app.startGame(ctx)
}

func (app *ArenaApplication) startGame(ctx context.Context) {
	ids := app.playerIDs()
	for _, id := range ids {
		app.hp[id] = app.settings.MaxHP
	}
	for _, id := range ids {
		app.broadcast(ctx, domain.TypeHPUpdate, domain.HPUpdatePayload{TargetID: id, HP: app.hp[id]})
	}
	app.broadcast(ctx, domain.TypeGameStart, nil)
	app.isPlaying = true
	if app.settings.MatchTimeout > 0 {
		app.deadline = app.clock.Now().Add(app.settings.MatchTimeout)
	}
	app.metrics.MatchStarted(ctx, app.roomID)
	slog.InfoContext(ctx, "match started", "roomID", app.roomID)
}

// endGame は winner が0なら勝者なしで終了します。
func (app *ArenaApplication) endGame(ctx context.Context, winner int, reason string) {
	if !app.isPlaying {
		return
	}
	app.deadline = time.Time{}
	if _, ok := app.score[winner]; ok {
		app.score[winner]++
	}
	app.isPlaying = false
	for id := range app.ready {
		app.ready[id] = false
	}

	var w *int
	if winner != 0 {
		w = &winner
	}
	app.broadcast(ctx, domain.TypeRoomUpdate, app.roomInfo())
	app.broadcast(ctx, domain.TypeScoreUpdate, domain.ScoreUpdatePayload{Score: cloneMap(app.score)})
	app.broadcast(ctx, domain.TypeEndGame, domain.EndGamePayload{Winner: w})
	app.metrics.MatchEnded(ctx, app.roomID, reason)
	slog.InfoContext(ctx, "match ended", "roomID", app.roomID, "winner", winner, "reason", reason)
}

// Tick はルームのtickごとに呼ばれ、対戦中のみ sync を返します。
func (app *ArenaApplication) Tick(ctx context.Context) []byte {
	if !app.isPlaying {
		return nil
	}
	if !app.deadline.IsZero() && !app.clock.Now().Before(app.deadline) {
		app.endGame(ctx, 0, "timeout")
		return nil
	}
	data, err := domain.Encode(domain.TypeSync, domain.SyncPayload(cloneMap(app.states)))
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode sync", "roomID", app.roomID, "err", err)
		return nil
	}
	return data
}

func (app *ArenaApplication) roomInfo() domain.RoomUpdatePayload {
	return domain.RoomUpdatePayload{Room: domain.RoomInfo{
		ID:          app.roomID.String(),
		Players:     app.playerIDs(),
		ReadyStatus: app.readyStatus(),
		HP:          cloneMap(app.hp),
		Score:       cloneMap(app.score),
		IsPlaying:   app.isPlaying,
	}}
}

func (app *ArenaApplication) readyStatus() map[int]bool { return cloneMap(app.ready) }

func (app *ArenaApplication) playerIDs() []int {
	ids := make([]int, 0, len(app.sessions))
	for id := range app.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (app *ArenaApplication) broadcast(ctx context.Context, t domain.MessageType, payload any) {
	data, err := domain.Encode(t, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode message", "roomID", app.roomID, "type", t, "err", err)
		return
	}
	app.out.Broadcast(ctx, data)
}

func (app *ArenaApplication) sendTo(ctx context.Context, sessionID domain.SessionID, t domain.MessageType, payload any) {
	data, err := domain.Encode(t, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode message", "roomID", app.roomID, "type", t, "err", err)
		return
	}
	app.out.SendTo(ctx, sessionID, data)
}

func otherPlayer(id int) int { return maxPlayers + 1 - id }

// cloneMap は送信用にコピーを作ります。
func cloneMap[V any](m map[int]V) map[int]V {
	out := make(map[int]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
