package sim

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig は Config.Validate が返す全てのエラーにラップされます。
var ErrInvalidConfig = errors.New("sim: invalid config")

// Config はアリーナの全チューニング値を列挙します。
// ゲームロジックはここに無い値を独自に持ちません。
type Config struct {
	Arena    ArenaConfig    `mapstructure:"arena" json:"arena"`
	Robot    RobotConfig    `mapstructure:"robot" json:"robot"`
	Charge   ChargeConfig   `mapstructure:"charge" json:"charge"`
	Dash     DashConfig     `mapstructure:"dash" json:"dash"`
	Zone     ZoneConfig     `mapstructure:"zone" json:"zone"`
	Timing   TimingConfig   `mapstructure:"timing" json:"timing"`
	Network  NetworkConfig  `mapstructure:"network" json:"network"`
	Particle ParticleConfig `mapstructure:"particle" json:"particle"`
}

type ArenaConfig struct {
	Width        float64 `mapstructure:"width" json:"width"`
	Height       float64 `mapstructure:"height" json:"height"`
	SpawnPadding float64 `mapstructure:"spawnPadding" json:"spawnPadding"`
}

type RobotConfig struct {
	Radius           float64       `mapstructure:"radius" json:"radius"`
	MaxHP            float64       `mapstructure:"maxHp" json:"maxHp"`
	AngularSpeed     float64       `mapstructure:"angularSpeed" json:"angularSpeed"`         // rad/s (収縮前)
	AngularSpeedFast float64       `mapstructure:"angularSpeedFast" json:"angularSpeedFast"` // rad/s (収縮完了後)
	ImageSpinFactor  float64       `mapstructure:"imageSpinFactor" json:"imageSpinFactor"`
	HitFlashes       int           `mapstructure:"hitFlashes" json:"hitFlashes"`
	HitFlashTicks    int           `mapstructure:"hitFlashTicks" json:"hitFlashTicks"`
	HitFlashCooldown time.Duration `mapstructure:"hitFlashCooldown" json:"hitFlashCooldown"`
	HitOverlayDecay  float64       `mapstructure:"hitOverlayDecay" json:"hitOverlayDecay"`
}

type ChargeConfig struct {
	MinPower      float64       `mapstructure:"minPower" json:"minPower"`
	MaxPower      float64       `mapstructure:"maxPower" json:"maxPower"`
	MinDamage     float64       `mapstructure:"minDamage" json:"minDamage"`
	MaxDamage     float64       `mapstructure:"maxDamage" json:"maxDamage"`
	MaxChargeTime time.Duration `mapstructure:"maxChargeTime" json:"maxChargeTime"`
}

type DashConfig struct {
	BaseSpeed         float64 `mapstructure:"baseSpeed" json:"baseSpeed"` // power=1 のときの units/s
	Friction          float64 `mapstructure:"friction" json:"friction"`   // 基準フレームあたりの速度減衰率
	MinSpeedThreshold float64 `mapstructure:"minSpeedThreshold" json:"minSpeedThreshold"`
	KnockbackForce    float64 `mapstructure:"knockbackForce" json:"knockbackForce"`
	KnockbackTicks    int     `mapstructure:"knockbackTicks" json:"knockbackTicks"`
}

type ZoneConfig struct {
	TotalGameTime   time.Duration `mapstructure:"totalGameTime" json:"totalGameTime"`
	ShrinkStartTime time.Duration `mapstructure:"shrinkStartTime" json:"shrinkStartTime"`
	ShrinkDuration  time.Duration `mapstructure:"shrinkDuration" json:"shrinkDuration"`
	MinRadius       float64       `mapstructure:"minRadius" json:"minRadius"`
	DamagePerSecond float64       `mapstructure:"damagePerSecond" json:"damagePerSecond"`
}

type TimingConfig struct {
	TickRate           float64 `mapstructure:"tickRate" json:"tickRate"`
	ReferenceFrameRate float64 `mapstructure:"referenceFrameRate" json:"referenceFrameRate"`
}

// NetworkConfig はリモートロボットの補間パラメータです。
type NetworkConfig struct {
	SmoothingAlpha float64 `mapstructure:"smoothingAlpha" json:"smoothingAlpha"`
	SyncSkipTicks  int     `mapstructure:"syncSkipTicks" json:"syncSkipTicks"`
}

type ParticleConfig struct {
	MaxCount            int     `mapstructure:"maxCount" json:"maxCount"`
	BaseLife            int     `mapstructure:"baseLife" json:"baseLife"`
	RandomLifeBoost     int     `mapstructure:"randomLifeBoost" json:"randomLifeBoost"`
	BaseSize            float64 `mapstructure:"baseSize" json:"baseSize"`
	RandomSizeBoost     float64 `mapstructure:"randomSizeBoost" json:"randomSizeBoost"`
	DistanceSizeFactor  float64 `mapstructure:"distanceSizeFactor" json:"distanceSizeFactor"`
	VelocityFactor      float64 `mapstructure:"velocityFactor" json:"velocityFactor"`
	SpreadAngle         float64 `mapstructure:"spreadAngle" json:"spreadAngle"`
	SpawnDistanceBase   float64 `mapstructure:"spawnDistanceBase" json:"spawnDistanceBase"`
	SpawnDistanceRandom float64 `mapstructure:"spawnDistanceRandom" json:"spawnDistanceRandom"`
	DistancePerParticle float64 `mapstructure:"distancePerParticle" json:"distancePerParticle"`
}

// DefaultConfig は標準のチューニング値を返します。
func DefaultConfig() Config {
	return Config{
		Arena: ArenaConfig{
			Width:        960,
			Height:       640,
			SpawnPadding: 100,
		},
		Robot: RobotConfig{
			Radius:           20,
			MaxHP:            100,
			AngularSpeed:     1.8,
			AngularSpeedFast: 3.6,
			ImageSpinFactor:  0.4,
			HitFlashes:       5,
			HitFlashTicks:    3,
			HitFlashCooldown: 100 * time.Millisecond,
			HitOverlayDecay:  0.8,
		},
		Charge: ChargeConfig{
			MinPower:      0.2,
			MaxPower:      1.0,
			MinDamage:     20,
			MaxDamage:     60,
			MaxChargeTime: time.Second,
		},
		Dash: DashConfig{
			BaseSpeed:         1500,
			Friction:          0.90,
			MinSpeedThreshold: 30,
			KnockbackForce:    100,
			KnockbackTicks:    20,
		},
		Zone: ZoneConfig{
			TotalGameTime:   100 * time.Second,
			ShrinkStartTime: 30 * time.Second,
			ShrinkDuration:  5 * time.Second,
			MinRadius:       100,
			DamagePerSecond: 10,
		},
		Timing: TimingConfig{
			TickRate:           60,
			ReferenceFrameRate: 60,
		},
		Network: NetworkConfig{
			SmoothingAlpha: 0.1,
			SyncSkipTicks:  10,
		},
		Particle: ParticleConfig{
			MaxCount:            300,
			BaseLife:            25,
			RandomLifeBoost:     20,
			BaseSize:            15,
			RandomSizeBoost:     15,
			DistanceSizeFactor:  0.2,
			VelocityFactor:      0.1,
			SpreadAngle:         1.5,
			SpawnDistanceBase:   10,
			SpawnDistanceRandom: 25,
			DistancePerParticle: 5,
		},
	}
}

// InitialZoneRadius はアリーナ対角線の半分で、アリーナ全体を覆います。
func (c Config) InitialZoneRadius() float64 {
	return math.Hypot(c.Arena.Width, c.Arena.Height) / 2
}

// ZoneDamagePerTick は毎秒のゾーンダメージを1tick分に換算します。
func (c Config) ZoneDamagePerTick() float64 {
	return c.Zone.DamagePerSecond / c.Timing.TickRate
}

// TickDuration は1tickの長さです。
func (c Config) TickDuration() time.Duration {
	return time.Duration(float64(time.Second) / c.Timing.TickRate)
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Arena.Width > 0 && c.Arena.Height > 0, "arena size %vx%v", c.Arena.Width, c.Arena.Height)
	check(c.Robot.Radius > 0, "robot radius %v", c.Robot.Radius)
	check(c.Arena.SpawnPadding >= c.Robot.Radius && c.Arena.SpawnPadding <= c.Arena.Width/2,
		"spawn padding %v", c.Arena.SpawnPadding)
	check(c.Robot.MaxHP > 0, "max hp %v", c.Robot.MaxHP)
	check(c.Robot.AngularSpeed >= 0 && c.Robot.AngularSpeedFast >= 0, "angular speed")
	check(c.Robot.HitFlashes >= 0 && c.Robot.HitFlashTicks > 0, "hit flash")
	check(c.Robot.HitOverlayDecay >= 0 && c.Robot.HitOverlayDecay < 1, "hit overlay decay %v", c.Robot.HitOverlayDecay)
	check(c.Charge.MinPower >= 0 && c.Charge.MinPower <= c.Charge.MaxPower,
		"charge power [%v, %v]", c.Charge.MinPower, c.Charge.MaxPower)
	check(c.Charge.MinDamage >= 0 && c.Charge.MinDamage <= c.Charge.MaxDamage && c.Charge.MaxDamage > 0,
		"charge damage [%v, %v]", c.Charge.MinDamage, c.Charge.MaxDamage)
	check(c.Charge.MaxChargeTime > 0, "max charge time %v", c.Charge.MaxChargeTime)
	check(c.Dash.BaseSpeed > 0, "dash base speed %v", c.Dash.BaseSpeed)
	check(c.Dash.Friction > 0 && c.Dash.Friction < 1, "friction %v", c.Dash.Friction)
	check(c.Dash.MinSpeedThreshold > 0, "min speed threshold %v", c.Dash.MinSpeedThreshold)
	check(c.Dash.KnockbackForce >= 0 && c.Dash.KnockbackTicks > 0, "knockback")
	check(c.Zone.TotalGameTime > 0, "total game time %v", c.Zone.TotalGameTime)
	check(c.Zone.ShrinkStartTime >= 0 && c.Zone.ShrinkDuration > 0, "zone shrink timing")
	check(c.Zone.MinRadius >= 0 && c.Zone.MinRadius <= c.InitialZoneRadius(), "zone min radius %v", c.Zone.MinRadius)
	check(c.Zone.DamagePerSecond >= 0, "zone damage %v", c.Zone.DamagePerSecond)
	check(c.Timing.TickRate > 0 && c.Timing.ReferenceFrameRate > 0, "tick rates")
	check(c.Network.SmoothingAlpha > 0 && c.Network.SmoothingAlpha <= 1, "smoothing alpha %v", c.Network.SmoothingAlpha)
	check(c.Network.SyncSkipTicks >= 0, "sync skip ticks %v", c.Network.SyncSkipTicks)
	check(c.Particle.MaxCount >= 0 && c.Particle.BaseLife >= 0 && c.Particle.RandomLifeBoost >= 0, "particle counts")
	check(c.Particle.DistancePerParticle > 0, "particle spacing %v", c.Particle.DistancePerParticle)

	return errors.Join(errs...)
}
