package sim

import "time"

// DamageCause はダメージの発生源です。
type DamageCause uint8

const (
	CauseCollision DamageCause = iota + 1
	CauseZone
)

func (c DamageCause) String() string {
	switch c {
	case CauseCollision:
		return "collision"
	case CauseZone:
		return "zone"
	default:
		return "unknown"
	}
}

// Damage は ApplyDamage に渡された1件のダメージです。
type Damage struct {
	TargetID      int
	Amount        float64
	FromX, FromY  float64
	KnockbackMult float64
	Cause         DamageCause
}

//go:generate go tool mockgen -destination=./mocks/hooks_mock.go -package=mocks . Hooks

// Hooks はロボット単位の状態遷移通知です。ネットワーク対戦ではクライアントが送信処理を差し込みます。
type Hooks interface {
	ChargeStarted(r *Robot, now time.Duration)
	ChargeReleased(r *Robot, l Launch)
	// DamageDealt はこのロボットがダメージを受けたときに呼ばれます。
	DamageDealt(r *Robot, d Damage)
}

// NopHooks は何もしない Hooks です。
type NopHooks struct{}

var _ Hooks = NopHooks{}

func (NopHooks) ChargeStarted(*Robot, time.Duration) {}
func (NopHooks) ChargeReleased(*Robot, Launch)       {}
func (NopHooks) DamageDealt(*Robot, Damage)          {}
