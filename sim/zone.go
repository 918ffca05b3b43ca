package sim

import (
	"fmt"
	"math"
	"time"
)

// Zone は時間とともに縮む安全地帯です。Radius は Update 以外から書き換えません。
type Zone struct {
	CenterX, CenterY float64
	InitialRadius    float64
	Radius           float64

	cfg *Config
}

func NewZone(cfg *Config) *Zone {
	z := &Zone{
		CenterX:       cfg.Arena.Width / 2,
		CenterY:       cfg.Arena.Height / 2,
		InitialRadius: cfg.InitialZoneRadius(),
		cfg:           cfg,
	}
	z.Radius = z.InitialRadius
	return z
}

// ShrinkProgress は収縮の進み具合を [0, 1] で返します。
func (z *Zone) ShrinkProgress(elapsed time.Duration) float64 {
	zc := z.cfg.Zone
	if elapsed <= zc.ShrinkStartTime {
		return 0
	}
	if elapsed >= zc.ShrinkStartTime+zc.ShrinkDuration {
		return 1
	}
	return float64(elapsed-zc.ShrinkStartTime) / float64(zc.ShrinkDuration)
}

// RadiusAt は経過時間に対する半径を返します。開始前は初期値、収縮中は線形補間、以降は MinRadius です。
func (z *Zone) RadiusAt(elapsed time.Duration) float64 {
	p := z.ShrinkProgress(elapsed)
	if p >= 1 {
		return z.cfg.Zone.MinRadius
	}
	return z.InitialRadius - (z.InitialRadius-z.cfg.Zone.MinRadius)*p
}

// AngularSpeedAt は収縮率に応じて回転速度を AngularSpeed から AngularSpeedFast へ補間します。
func (z *Zone) AngularSpeedAt(elapsed time.Duration) float64 {
	rc := z.cfg.Robot
	return rc.AngularSpeed + (rc.AngularSpeedFast-rc.AngularSpeed)*z.ShrinkProgress(elapsed)
}

func (z *Zone) Update(elapsed time.Duration) {
	z.Radius = z.RadiusAt(elapsed)
}

func (z *Zone) Reset() {
	z.Radius = z.InitialRadius
}

// Contains は中心距離が半径以内かどうかを返します。
func (z *Zone) Contains(x, y float64) bool {
	dx, dy := x-z.CenterX, y-z.CenterY
	return dx*dx+dy*dy <= z.Radius*z.Radius
}

// Status は収縮カウントダウン表示用のラベルです。
func (z *Zone) Status(elapsed time.Duration) string {
	zc := z.cfg.Zone
	if remaining := zc.ShrinkStartTime - elapsed; remaining > 0 {
		return fmt.Sprintf("Shrink In: %ds", ceilSeconds(remaining))
	}
	if elapsed < zc.ShrinkStartTime+zc.ShrinkDuration {
		return "Shrinking..."
	}
	return "Zone Closed!"
}

// TimeLeft はマッチ終了までの残り時間です。
func (z *Zone) TimeLeft(elapsed time.Duration) time.Duration {
	return max(0, z.cfg.Zone.TotalGameTime-elapsed)
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
