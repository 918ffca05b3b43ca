package client

import (
	"math"
	"math/rand/v2"

	"dasharena/sim"
)

const defaultRushChance float64 = 0.01 // 充電中に毎tick 1% の確率で照準を無視して解放

// BotAction はボットの1tick分の入力です。
type BotAction struct {
	Press   bool
	Release bool
}

// BotController はボットの意思決定インターフェースです。
type BotController interface {
	Decide(self, opponent *sim.Robot, chargeRatio float64) BotAction
}

// RuleBotController はルールベースのボットAIです。
// 相手の方向へダッシュできる向きになるまで充電を続けます。
type RuleBotController struct {
	AimTolerance float64 // 解放を許す照準誤差 (rad)
	MinRatio     float64 // 解放前に溜める充電率
	RushChance   float64
	rng          *rand.Rand
}

// NewRuleBotController はランダムな個性を持つボットAIを生成します。rng が nil ならランダムなシードを使います。
func NewRuleBotController(rng *rand.Rand) *RuleBotController {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RuleBotController{
		AimTolerance: 0.15 + rng.Float64()*0.25, // 0.15〜0.4
		MinRatio:     0.3 + rng.Float64()*0.6,   // 0.3〜0.9
		RushChance:   defaultRushChance,
		rng:          rng,
	}
}

func (b *RuleBotController) Decide(self, opponent *sim.Robot, chargeRatio float64) BotAction {
	if self == nil || opponent == nil || self.IsDashing() {
		return BotAction{}
	}
	if !self.ControlDown {
		return BotAction{Press: true}
	}
	if !self.IsCharging() {
		// 押しっぱなしのまま充電できていないので離し直す
		return BotAction{Release: true}
	}

	if b.rng.Float64() < b.RushChance {
		return BotAction{Release: true}
	}
	if chargeRatio < b.MinRatio {
		return BotAction{}
	}
	if aimError(self, opponent) <= b.AimTolerance {
		return BotAction{Release: true}
	}
	return BotAction{}
}

// aimError はダッシュ方向 (向き+π) と相手方向のずれを [0, π] で返します。
func aimError(self, opponent *sim.Robot) float64 {
	want := math.Atan2(opponent.Y-self.Y, opponent.X-self.X)
	return math.Abs(math.Remainder(self.Angle+math.Pi-want, 2*math.Pi))
}

// Drive は Decide の結果を Game の入力に反映します。
func Drive(g *Game, bot BotController) {
	self, opponent := g.Local(), g.Remote()
	if self == nil || !g.Match().IsPlaying() {
		return
	}
	act := bot.Decide(self, opponent, self.ChargeRatio(g.Match().Elapsed()))
	switch {
	case act.Press:
		g.Press()
	case act.Release:
		g.Release()
	}
}
