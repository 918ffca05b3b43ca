package sim

import (
	"log/slog"
	"math"
	"time"
)

// ChargeState はロボットの入力状態です。Charging と Dashing は同時に成立しません。
type ChargeState uint8

const (
	Idle ChargeState = iota
	Charging
	Dashing
)

func (s ChargeState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Charging:
		return "charging"
	case Dashing:
		return "dashing"
	default:
		return "unknown"
	}
}

// Launch はチャージ解放の結果です。
type Launch struct {
	Ratio     float64
	Power     float64
	Speed     float64
	Damage    float64
	Direction float64
	X, Y      float64
	Angle     float64
	VX, VY    float64
}

// Robot はアリーナ上の1体のロボットです。
type Robot struct {
	ID      int
	Binding string
	Color   string

	X, Y       float64
	Radius     float64
	Angle      float64 // 向き [0, 2π)
	ImageAngle float64

	HP float64

	State       ChargeState
	ChargeStart time.Duration // マッチ経過時間
	ChargePower float64
	DashDamage  float64
	VX, VY      float64

	ControlDown bool
	InSafeZone  bool

	Knockback Knockback
	Flash     HitFlash

	// リモートロボットの補間先 (client が利用)
	TargetX, TargetY, TargetAngle float64
	SkipSyncTicks                 int

	cfg    *Config
	hooks  Hooks
	logger *slog.Logger
}

func newRobot(id int, x, y float64, color string, cfg *Config, logger *slog.Logger) *Robot {
	r := &Robot{
		ID:         id,
		Color:      color,
		X:          x,
		Y:          y,
		Radius:     cfg.Robot.Radius,
		HP:         cfg.Robot.MaxHP,
		InSafeZone: true,
		cfg:        cfg,
		hooks:      NopHooks{},
		logger:     logger,
	}
	r.TargetX, r.TargetY = x, y
	return r
}

// SetHooks は充電/解放/被ダメージの通知先を差し替えます。nil で無効化します。
func (r *Robot) SetHooks(h Hooks) {
	if h == nil {
		h = NopHooks{}
	}
	r.hooks = h
}

func (r *Robot) IsCharging() bool { return r.State == Charging }
func (r *Robot) IsDashing() bool  { return r.State == Dashing }
func (r *Robot) IsAlive() bool    { return r.HP > 0 }

// InKnockback はノックバック中かどうかを返します。
func (r *Robot) InKnockback() bool { return r.Knockback.Active() }

func (r *Robot) Speed() float64 { return math.Hypot(r.VX, r.VY) }

// StartCharge は Idle のときだけ充電を開始します。
func (r *Robot) StartCharge(now time.Duration) bool {
	if r.State != Idle {
		return false
	}
	r.State = Charging
	r.ChargeStart = now
	r.ChargePower = 0
	r.DashDamage = 0
	r.logger.Debug("charge started", "playerID", r.ID)
	r.hooks.ChargeStarted(r, now)
	return true
}

// ChargeRatio は充電率を [0, 1] で返します。MaxChargeTime 以上保持しても 1 で頭打ちです。
func (r *Robot) ChargeRatio(now time.Duration) float64 {
	if r.State != Charging {
		return 0
	}
	held := now - r.ChargeStart
	if held <= 0 {
		return 0
	}
	return math.Min(1, float64(held)/float64(r.cfg.Charge.MaxChargeTime))
}

// ReleaseCharge は充電を解放してダッシュに移行します。Charging 以外では何もしません。
func (r *Robot) ReleaseCharge(now time.Duration) (Launch, bool) {
	if r.State != Charging {
		return Launch{}, false
	}
	l := r.computeLaunch(r.ChargeRatio(now))
	r.ChargePower = l.Power
	r.DashDamage = l.Damage
	r.VX, r.VY = l.VX, l.VY
	r.State = Dashing
	r.logger.Debug("charge released",
		"playerID", r.ID,
		"power", l.Power,
		"damage", l.Damage,
		"direction", l.Direction,
	)
	r.hooks.ChargeReleased(r, l)
	return l, true
}

func (r *Robot) computeLaunch(ratio float64) Launch {
	c := r.cfg.Charge
	power := c.MinPower + (c.MaxPower-c.MinPower)*math.Sqrt(ratio)
	speed := r.cfg.Dash.BaseSpeed * power
	dir := r.Angle + math.Pi
	return Launch{
		Ratio:     ratio,
		Power:     power,
		Speed:     speed,
		Damage:    c.MinDamage + (c.MaxDamage-c.MinDamage)*ratio,
		Direction: dir,
		X:         r.X,
		Y:         r.Y,
		Angle:     r.Angle,
		VX:        math.Cos(dir) * speed,
		VY:        math.Sin(dir) * speed,
	}
}

// ApplyLaunch は相手側から届いた解放結果でダッシュ状態を上書きします。フックは呼びません。
func (r *Robot) ApplyLaunch(l Launch) {
	r.X, r.Y = l.X, l.Y
	r.Angle = wrapAngle(l.Angle)
	r.VX, r.VY = l.VX, l.VY
	r.DashDamage = l.Damage
	r.ChargePower = l.Power
	r.State = Dashing
}

// ForceCharge は相手側の充電開始を反映します。ダッシュ中でも上書きします。
func (r *Robot) ForceCharge(start time.Duration) {
	r.State = Charging
	r.ChargeStart = start
	r.ChargePower = 0
	r.DashDamage = 0
	r.VX, r.VY = 0, 0
}

// EndDash はダッシュを終了します。入力が押されたままなら即座に充電を再開します。
func (r *Robot) EndDash(now time.Duration) {
	if r.State != Dashing {
		return
	}
	r.State = Idle
	r.VX, r.VY = 0, 0
	r.DashDamage = 0
	r.logger.Debug("dash ended", "playerID", r.ID)
	if r.ControlDown {
		r.StartCharge(now)
	}
}

// Update は1tick分ロボットを進めます。dt は秒です。
func (r *Robot) Update(dt float64, now time.Duration, angularSpeed float64, particles *Particles) {
	if r.State != Dashing {
		r.Angle = wrapAngle(r.Angle + angularSpeed*dt)
		r.ImageAngle = wrapAngle(r.ImageAngle + angularSpeed*r.cfg.Robot.ImageSpinFactor*dt)
	}

	if r.State == Dashing {
		r.X += r.VX * dt
		r.Y += r.VY * dt
		r.reflect()

		f := math.Pow(r.cfg.Dash.Friction, dt*r.cfg.Timing.ReferenceFrameRate)
		r.VX *= f
		r.VY *= f

		if particles != nil {
			particles.SpawnTrail(r, dt)
		}
		if r.Speed() < r.cfg.Dash.MinSpeedThreshold {
			r.EndDash(now)
		}
	}

	r.stepKnockback()
	r.Flash.step(&r.cfg.Robot)
}

// FollowTarget はリモートロボットを TargetX/TargetY/TargetAngle へ alpha の割合だけ近づけます。
// ダッシュ中とノックバック中は何もせず、SkipSyncTicks が残っていれば1減らすだけです。
func (r *Robot) FollowTarget(alpha float64) {
	if r.IsDashing() || r.InKnockback() {
		return
	}
	if r.SkipSyncTicks > 0 {
		r.SkipSyncTicks--
		return
	}
	r.X += (r.TargetX - r.X) * alpha
	r.Y += (r.TargetY - r.Y) * alpha
	r.Angle = wrapAngle(r.Angle + shortestArc(r.Angle, r.TargetAngle)*alpha)
}

// reflect は軸ごとに境界でクランプし、その軸の速度だけ符号を反転します。
func (r *Robot) reflect() {
	w, h := r.cfg.Arena.Width, r.cfg.Arena.Height
	if r.X < r.Radius {
		r.X = r.Radius
		r.VX = math.Abs(r.VX)
	} else if r.X > w-r.Radius {
		r.X = w - r.Radius
		r.VX = -math.Abs(r.VX)
	}
	if r.Y < r.Radius {
		r.Y = r.Radius
		r.VY = math.Abs(r.VY)
	} else if r.Y > h-r.Radius {
		r.Y = h - r.Radius
		r.VY = -math.Abs(r.VY)
	}
}

func (r *Robot) clampToArena() {
	r.X = clamp(r.X, r.Radius, r.cfg.Arena.Width-r.Radius)
	r.Y = clamp(r.Y, r.Radius, r.cfg.Arena.Height-r.Radius)
}

// halt は充電とダッシュを打ち切り、入力とノックバックも解除します。
func (r *Robot) halt() {
	r.State = Idle
	r.VX, r.VY = 0, 0
	r.DashDamage = 0
	r.ChargePower = 0
	r.ControlDown = false
	r.Knockback = Knockback{}
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// shortestArc は from から to への最短回転量を [-π, π) で返します。
func shortestArc(from, to float64) float64 {
	d := math.Mod(to-from+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
