package client

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"dasharena/server/domain"
	"dasharena/sim"
	"dasharena/utils"
)

// hostPlayerID のクライアントだけが衝突ダメージをサーバーへ報告します。
const hostPlayerID = 1

var (
	ErrNotJoined    = errors.New("client has not joined a room")
	ErrUnknownRobot = errors.New("unknown robot")
)

// Status はサーバーから届いた表示用の情報です。
type Status struct {
	Room        domain.RoomInfo
	ReadyStatus map[int]bool
	Score       map[int]int
	LobbyCount  int
	RoomCount   int
	InLobby     bool
}

type Option func(*Game)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Game はサーバー権威モードの sim.Match をネットワーク対戦用に包みます。
// 自機は即座にシミュレートし、相手は sync と充電イベントで補正します。
// 送信するフレームは Outbox に溜まり、呼び出し側が接続へ書き出します。
// Game はゴルーチンセーフではありません。
type Game struct {
	match  *sim.Match
	logger *slog.Logger

	localID int
	roomID  string
	status  Status

	outbox     [][]byte
	pending    []domain.DamagePayload // ホストが次の collision と一緒に送るダメージ
	wasDashing [2]bool
}

func NewGame(cfg sim.Config, rng *rand.Rand, opts ...Option) (*Game, error) {
	g := &Game{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	m, err := sim.NewMatch(cfg, rng, sim.WithMode(sim.ServerAuthority), sim.WithLogger(g.logger))
	if err != nil {
		return nil, err
	}
	g.match = m
	for _, r := range m.Robots() {
		r.SetHooks(gameHooks{g: g})
	}
	return g, nil
}

func (g *Game) Match() *sim.Match { return g.match }
func (g *Game) LocalID() int      { return g.localID }
func (g *Game) RoomID() string    { return g.roomID }
func (g *Game) Status() Status    { return g.status }
func (g *Game) IsHost() bool      { return g.localID == hostPlayerID }

// Local は自機を返します。参加前は nil です。
func (g *Game) Local() *sim.Robot { return g.match.Robot(g.localID) }

// Remote は相手のロボットを返します。参加前は nil です。
func (g *Game) Remote() *sim.Robot {
	if g.localID == 0 {
		return nil
	}
	return g.match.Opponent(g.localID)
}

// Outbox は溜まった送信フレームを取り出して空にします。
func (g *Game) Outbox() [][]byte {
	out := g.outbox
	g.outbox = nil
	return out
}

func (g *Game) Press() {
	if g.localID != 0 {
		g.match.Press(g.localID)
	}
}

func (g *Game) Release() {
	if g.localID != 0 {
		g.match.Release(g.localID)
	}
}

func (g *Game) SetReady(ready bool) error {
	if g.localID == 0 {
		return ErrNotJoined
	}
	g.send(domain.TypeReady, domain.ReadyPayload{IsReady: ready})
	return nil
}

func (g *Game) JoinRoom()  { g.send(domain.TypeJoinRoom, nil) }
func (g *Game) LeaveRoom() { g.send(domain.TypeLeaveRoom, nil) }

// Tick はマッチを dt 秒進め、自機の位置を送ります。ホストは衝突も報告します。
func (g *Game) Tick(dt float64) {
	if g.localID == 0 || !g.match.IsPlaying() {
		return
	}
	g.flushContacts(g.match.Tick(dt))
	if !g.match.IsPlaying() {
		return
	}
	g.smoothRemote()

	if r := g.Local(); r != nil {
		g.send(domain.TypeState, domain.PlayerState{X: r.X, Y: r.Y, Angle: r.Angle})
	}
}

// flushContacts はホストなら collision と各ヒットの damage を送ります。
func (g *Game) flushContacts(contacts []sim.Contact) {
	pending := g.pending
	g.pending = nil
	if !g.IsHost() || len(contacts) == 0 {
		return
	}
	g.send(domain.TypeCollision, nil)
	for _, d := range pending {
		g.send(domain.TypeDamage, d)
	}
}

func (g *Game) smoothRemote() {
	r := g.Remote()
	if r == nil {
		return
	}
	idx := r.ID - 1
	if g.wasDashing[idx] && !r.IsDashing() {
		r.SkipSyncTicks = g.match.Config().Network.SyncSkipTicks
	}
	g.wasDashing[idx] = r.IsDashing()
	r.FollowTarget(g.match.Config().Network.SmoothingAlpha)
}

// Handle はサーバーからの1フレームを適用します。不正なフレームはエラーを返して何もしません。
func (g *Game) Handle(data []byte) error {
	env, err := domain.DecodeEnvelope(data)
	if err != nil {
		return err
	}

	switch env.Type {
	case domain.TypeJoined:
		p, err := domain.DecodePayload[domain.JoinedPayload](env)
		if err != nil {
			return err
		}
		if g.match.Robot(p.PlayerID) == nil {
			return fmt.Errorf("%w: %d", ErrUnknownRobot, p.PlayerID)
		}
		g.localID, g.roomID = p.PlayerID, p.RoomID
		g.status.InLobby = false
		g.logger.Info("joined room", "roomID", p.RoomID, "playerID", p.PlayerID)
	case domain.TypeRoomUpdate:
		p, err := domain.DecodePayload[domain.RoomUpdatePayload](env)
		if err != nil {
			return err
		}
		g.status.Room = p.Room
		g.status.ReadyStatus = p.Room.ReadyStatus
		g.status.Score = p.Room.Score
	case domain.TypeReadyUpdate:
		p, err := domain.DecodePayload[domain.ReadyUpdatePayload](env)
		if err != nil {
			return err
		}
		g.status.ReadyStatus = p.ReadyStatus
	case domain.TypeScoreUpdate:
		p, err := domain.DecodePayload[domain.ScoreUpdatePayload](env)
		if err != nil {
			return err
		}
		g.status.Score = p.Score
	case domain.TypeLobbyInfo:
		p, err := domain.DecodePayload[domain.LobbyInfoPayload](env)
		if err != nil {
			return err
		}
		g.status.LobbyCount, g.status.RoomCount = p.LobbyCount, p.RoomCount
		g.status.InLobby = true
		g.localID, g.roomID = 0, ""
	case domain.TypeSync:
		p, err := domain.DecodePayload[domain.SyncPayload](env)
		if err != nil {
			return err
		}
		g.applySync(p)
	case domain.TypeChargeStart:
		p, err := domain.DecodePayload[domain.ChargeStartPayload](env)
		if err != nil {
			return err
		}
		if r := g.remoteByID(p.PlayerID); r != nil {
			r.ForceCharge(time.Duration(p.Timestamp * float64(time.Millisecond)))
		}
	case domain.TypeChargeRelease:
		p, err := domain.DecodePayload[domain.ChargeReleasePayload](env)
		if err != nil {
			return err
		}
		g.applyRelease(p)
	case domain.TypeHPUpdate:
		p, err := domain.DecodePayload[domain.HPUpdatePayload](env)
		if err != nil {
			return err
		}
		if !g.match.SetHP(p.TargetID, p.HP) {
			return fmt.Errorf("%w: %d", ErrUnknownRobot, p.TargetID)
		}
	case domain.TypeCollision:
		g.flushContacts(g.match.ResolveCollisions())
	case domain.TypeGameStart:
		g.wasDashing = [2]bool{}
		g.match.Start()
	case domain.TypeEndGame:
		p, err := domain.DecodePayload[domain.EndGamePayload](env)
		if err != nil {
			return err
		}
		outcome := sim.Draw()
		if p.Winner != nil {
			outcome = sim.WinnerIs(*p.Winner)
		}
		g.match.End(outcome)
	default:
		g.logger.Debug("ignoring message", "type", env.Type)
	}
	return nil
}

func (g *Game) applySync(states domain.SyncPayload) {
	for id, st := range states {
		r := g.remoteByID(id)
		if r == nil || !utils.FinitePoint(st.X, st.Y) || !utils.IsFinite(st.Angle) {
			continue
		}
		r.TargetX, r.TargetY, r.TargetAngle = st.X, st.Y, st.Angle
	}
}

func (g *Game) applyRelease(p domain.ChargeReleasePayload) {
	r := g.remoteByID(p.PlayerID)
	if r == nil || !utils.FinitePoint(p.X, p.Y) || !utils.FinitePoint(p.VX, p.VY) {
		return
	}
	r.ApplyLaunch(sim.Launch{
		Ratio:  p.ChargeRatio,
		X:      p.X,
		Y:      p.Y,
		Angle:  p.Angle,
		VX:     p.VX,
		VY:     p.VY,
		Damage: p.DashDamage,
	})
	g.wasDashing[r.ID-1] = true
}

// remoteByID は自機以外のロボットだけを返します。
func (g *Game) remoteByID(id int) *sim.Robot {
	if id == g.localID {
		return nil
	}
	return g.match.Robot(id)
}

func (g *Game) send(t domain.MessageType, payload any) {
	data, err := domain.Encode(t, payload)
	if err != nil {
		g.logger.Error("failed to encode message", "type", t, "err", err)
		return
	}
	g.outbox = append(g.outbox, data)
}

// gameHooks は自機の状態遷移を送信フレームに変換します。
type gameHooks struct {
	g *Game
}

func (h gameHooks) ChargeStarted(r *sim.Robot, now time.Duration) {
	if r.ID != h.g.localID {
		return
	}
	h.g.send(domain.TypeChargeStart, domain.ChargeStartPayload{
		Timestamp: float64(now) / float64(time.Millisecond),
	})
}

func (h gameHooks) ChargeReleased(r *sim.Robot, l sim.Launch) {
	if r.ID != h.g.localID {
		return
	}
	h.g.send(domain.TypeChargeRelease, domain.ChargeReleasePayload{
		X:           l.X,
		Y:           l.Y,
		Angle:       l.Angle,
		VX:          l.VX,
		VY:          l.VY,
		DashDamage:  l.Damage,
		ChargeRatio: l.Ratio,
	})
}

func (h gameHooks) DamageDealt(r *sim.Robot, d sim.Damage) {
	switch d.Cause {
	case sim.CauseZone:
		if r.ID == h.g.localID {
			h.g.send(domain.TypeZoneDamage, domain.ZoneDamagePayload{TargetID: r.ID, Amount: d.Amount})
		}
	case sim.CauseCollision:
		if h.g.IsHost() {
			h.g.pending = append(h.g.pending, domain.DamagePayload{
				TargetID:      r.ID,
				Amount:        d.Amount,
				FromX:         d.FromX,
				FromY:         d.FromY,
				KnockbackMult: d.KnockbackMult,
			})
		}
	}
}
