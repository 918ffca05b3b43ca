package sim

import (
	"math"
	"time"
)

// Knockback はtick数で管理される押し出し状態です。
type Knockback struct {
	Remaining    int
	Steps        int
	DirX, DirY   float64
	InitialSpeed float64
}

func (k Knockback) Active() bool { return k.Remaining > 0 }

// startKnockback は (dirX, dirY) 方向へ distance だけ押し出す状態をセットします。
// 速度は initialSpeed から線形に 0 へ減衰し、合計移動量が distance になります。
func (r *Robot) startKnockback(dirX, dirY, distance float64) {
	steps := r.cfg.Dash.KnockbackTicks
	r.Knockback = Knockback{
		Remaining:    steps,
		Steps:        steps,
		DirX:         dirX,
		DirY:         dirY,
		InitialSpeed: 2 * distance / float64(steps),
	}
	r.logger.Debug("knockback started", "playerID", r.ID, "distance", distance)
}

func (r *Robot) stepKnockback() {
	k := &r.Knockback
	if !k.Active() {
		return
	}
	frame := k.Steps - k.Remaining
	speed := k.InitialSpeed * (1 - float64(frame)/float64(k.Steps))
	r.X += k.DirX * speed
	r.Y += k.DirY * speed
	r.clampToArena()
	k.Remaining--
}

// knockbackDirection は source から target への単位ベクトルです。重なっている場合は (1, 0)。
func knockbackDirection(srcX, srcY, dstX, dstY float64) (float64, float64) {
	dx, dy := dstX-srcX, dstY-srcY
	d := math.Hypot(dx, dy)
	if d == 0 {
		return 1, 0
	}
	return dx / d, dy / d
}

// HitFlash は被弾時の点滅表示です。ゲーム進行には影響しません。
type HitFlash struct {
	Remaining    int // 残りトグル回数
	TicksLeft    int
	White        bool
	OverlayAlpha float64

	lastHit time.Duration
	hit     bool
}

func (f *HitFlash) trigger(now time.Duration, rc *RobotConfig) {
	if f.hit && now-f.lastHit < rc.HitFlashCooldown {
		return
	}
	f.hit = true
	f.lastHit = now
	f.OverlayAlpha = 1
	f.Remaining = rc.HitFlashes
	f.TicksLeft = rc.HitFlashTicks
}

func (f *HitFlash) step(rc *RobotConfig) {
	if f.OverlayAlpha > 0 {
		f.OverlayAlpha *= rc.HitOverlayDecay
		if f.OverlayAlpha < 0.01 {
			f.OverlayAlpha = 0
		}
	}
	if f.Remaining <= 0 {
		return
	}
	f.TicksLeft--
	if f.TicksLeft > 0 {
		return
	}
	f.White = !f.White
	f.Remaining--
	f.TicksLeft = rc.HitFlashTicks
	if f.Remaining == 0 {
		f.White = false
	}
}
