package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

type Phase uint8

const (
	NotStarted Phase = iota
	Playing
	Ended
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case Playing:
		return "playing"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Mode は HP の扱いを切り替えます。
type Mode uint8

func (m Mode) String() string {
	if m == ServerAuthority {
		return "server"
	}
	return "local"
}

const (
	// LocalAuthority はローカル対戦用。HP をこのマッチ内で減らし勝敗も判定します。
	LocalAuthority Mode = iota
	// ServerAuthority はネットワーク対戦用。HP は SetHP でのみ更新され、勝敗はサーバーが決めます。
	ServerAuthority
)

type OutcomeKind uint8

const (
	OutcomeNone OutcomeKind = iota
	OutcomeWinner
	OutcomeDraw
)

type Outcome struct {
	Kind   OutcomeKind
	Winner int
}

func WinnerIs(id int) Outcome { return Outcome{Kind: OutcomeWinner, Winner: id} }
func Draw() Outcome           { return Outcome{Kind: OutcomeDraw} }

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeWinner:
		return fmt.Sprintf("winner:%d", o.Winner)
	case OutcomeDraw:
		return "draw"
	default:
		return "none"
	}
}

var robotColors = [2]string{"red", "blue"}

// Match は2体のロボット、安全地帯、粒子をまとめたマッチの状態です。
// 全ての更新は呼び出し側の単一のループから行います。
type Match struct {
	cfg    Config
	mode   Mode
	rng    *rand.Rand
	logger *slog.Logger

	phase   Phase
	elapsed time.Duration
	outcome Outcome
	ready   [2]bool

	robots    [2]*Robot
	zone      *Zone
	particles *Particles

	deaths []int
}

type Option func(*Match)

func WithMode(mode Mode) Option {
	return func(m *Match) { m.mode = mode }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Match) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMatch は設定を検証してマッチを作成します。rng が nil の場合はランダムなシードを使います。
func NewMatch(cfg Config, rng *rand.Rand, opts ...Option) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	m := &Match{
		cfg:    cfg,
		rng:    rng,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.zone = NewZone(&m.cfg)
	m.particles = NewParticles(&m.cfg.Particle, rng)
	for i := range m.robots {
		x, y := m.spawnPoint(i + 1)
		m.robots[i] = newRobot(i+1, x, y, robotColors[i], &m.cfg, m.logger)
	}
	return m, nil
}

func (m *Match) spawnPoint(id int) (float64, float64) {
	a := m.cfg.Arena
	if id == 1 {
		return a.SpawnPadding, a.Height / 2
	}
	return a.Width - a.SpawnPadding, a.Height / 2
}

func (m *Match) Config() Config         { return m.cfg }
func (m *Match) Mode() Mode             { return m.mode }
func (m *Match) Phase() Phase           { return m.phase }
func (m *Match) Elapsed() time.Duration { return m.elapsed }
func (m *Match) Outcome() Outcome       { return m.outcome }
func (m *Match) Zone() *Zone            { return m.zone }
func (m *Match) Particles() *Particles  { return m.particles }
func (m *Match) Robots() [2]*Robot      { return m.robots }
func (m *Match) IsPlaying() bool        { return m.phase == Playing }
func (m *Match) Ready(id int) bool      { return validID(id) && m.ready[id-1] }
func (m *Match) Opponent(id int) *Robot { return m.Robot(3 - id) }

func validID(id int) bool { return id == 1 || id == 2 }

func (m *Match) ChargeRatio(id int) float64 {
	r := m.Robot(id)
	if r == nil {
		return 0
	}
	return r.ChargeRatio(m.elapsed)
}

// Robot は id (1 または 2) のロボットを返します。範囲外なら nil です。
func (m *Match) Robot(id int) *Robot {
	if !validID(id) {
		return nil
	}
	return m.robots[id-1]
}

// SetReady は準備完了フラグを更新し、両者が揃えばマッチを開始します。プレイ中は無視します。
func (m *Match) SetReady(id int, ready bool) bool {
	if !validID(id) || m.phase == Playing {
		return false
	}
	m.ready[id-1] = ready
	if m.ready[0] && m.ready[1] {
		m.Start()
		return true
	}
	return false
}

// Start は全状態をリセットしてマッチを開始します。
func (m *Match) Start() {
	m.phase = Playing
	m.elapsed = 0
	m.outcome = Outcome{}
	m.ready = [2]bool{}
	m.deaths = m.deaths[:0]
	m.zone.Reset()
	m.particles.Clear()
	for i, r := range m.robots {
		x, y := m.spawnPoint(i + 1)
		r.reset(x, y, m.rng.Float64()*2*math.Pi)
	}
	m.logger.Info("match started", "mode", m.mode)
}

func (r *Robot) reset(x, y, angle float64) {
	*r = Robot{
		ID:         r.ID,
		Binding:    r.Binding,
		Color:      r.Color,
		X:          x,
		Y:          y,
		Radius:     r.cfg.Robot.Radius,
		Angle:      angle,
		HP:         r.cfg.Robot.MaxHP,
		InSafeZone: true,
		cfg:        r.cfg,
		hooks:      r.hooks,
		logger:     r.logger,
	}
	r.TargetX, r.TargetY, r.TargetAngle = x, y, angle
}

// Press は入力の押下エッジです。押しっぱなしの間の再押下は無視します。
func (m *Match) Press(id int) {
	r := m.Robot(id)
	if m.phase != Playing || r == nil || r.ControlDown {
		return
	}
	r.ControlDown = true
	r.StartCharge(m.elapsed)
}

// Release は入力の解放エッジです。
func (m *Match) Release(id int) {
	r := m.Robot(id)
	if m.phase != Playing || r == nil || !r.ControlDown {
		return
	}
	r.ControlDown = false
	r.ReleaseCharge(m.elapsed)
}

// Tick はマッチを dt 秒進めます。
// 順序は 経過時間 → 安全地帯 → ロボット → 安全地帯ダメージ → 衝突 → 時間切れ判定 → 粒子 です。
func (m *Match) Tick(dt float64) []Contact {
	if m.phase != Playing {
		return nil
	}
	m.elapsed += time.Duration(dt * float64(time.Second))
	m.zone.Update(m.elapsed)

	angular := m.zone.AngularSpeedAt(m.elapsed)
	for _, r := range m.robots {
		r.Update(dt, m.elapsed, angular, m.particles)
	}

	var contacts []Contact
	m.applyZoneDamage()
	if !m.settleDeaths() {
		contacts = m.ResolveCollisions()
	}
	if m.phase == Playing {
		m.checkTimeUp()
	}
	m.particles.Update()
	return contacts
}

// checkTimeUp は制限時間を過ぎたら HP の多い方を勝者にします。同値なら引き分けです。
// ServerAuthority ではサーバーの end_game を待ちます。
func (m *Match) checkTimeUp() {
	if m.mode != LocalAuthority || m.elapsed < m.cfg.Zone.TotalGameTime {
		return
	}
	a, b := m.robots[0], m.robots[1]
	switch {
	case a.HP > b.HP:
		m.End(WinnerIs(a.ID))
	case b.HP > a.HP:
		m.End(WinnerIs(b.ID))
	default:
		m.End(Draw())
	}
}

// End はマッチを終了します。入力・充電・ダッシュ・ノックバックを即座に打ち切ります。
func (m *Match) End(o Outcome) {
	if m.phase != Playing {
		return
	}
	m.phase = Ended
	m.outcome = o
	m.ready = [2]bool{}
	m.deaths = m.deaths[:0]
	for _, r := range m.robots {
		r.halt()
	}
	m.logger.Info("match ended", "outcome", o.String(), "elapsed", m.elapsed)
}

// SetHP はサーバーから届いた HP で上書きします。位置などには触れません。
func (m *Match) SetHP(id int, hp float64) bool {
	r := m.Robot(id)
	if r == nil || math.IsNaN(hp) {
		return false
	}
	r.HP = clamp(hp, 0, m.cfg.Robot.MaxHP)
	return true
}
