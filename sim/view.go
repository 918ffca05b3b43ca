package sim

import "time"

// RobotView は描画層に渡す読み取り専用のロボット状態です。
type RobotView struct {
	ID              int
	X, Y            float64
	Angle           float64
	ImageAngle      float64
	HP              float64
	ChargeRatio     float64
	Color           string
	HitOverlayAlpha float64
	State           ChargeState
	InKnockback     bool
}

// MatchView は1tick分のスナップショットです。
type MatchView struct {
	Robots      [2]RobotView
	ZoneCenterX float64
	ZoneCenterY float64
	ZoneRadius  float64
	Elapsed     time.Duration
	TimeLeft    time.Duration
	ZoneLabel   string
	Phase       Phase
	Outcome     Outcome
	Ready       [2]bool
	Particles   []Particle
}

func (m *Match) View() MatchView {
	v := MatchView{
		ZoneCenterX: m.zone.CenterX,
		ZoneCenterY: m.zone.CenterY,
		ZoneRadius:  m.zone.Radius,
		Elapsed:     m.elapsed,
		TimeLeft:    m.zone.TimeLeft(m.elapsed),
		ZoneLabel:   m.zone.Status(m.elapsed),
		Phase:       m.phase,
		Outcome:     m.outcome,
		Ready:       m.ready,
		Particles:   m.particles.Items(),
	}
	for i, r := range m.robots {
		color := r.Color
		if r.Flash.White {
			color = "white"
		}
		v.Robots[i] = RobotView{
			ID:              r.ID,
			X:               r.X,
			Y:               r.Y,
			Angle:           r.Angle,
			ImageAngle:      r.ImageAngle,
			HP:              r.HP,
			ChargeRatio:     r.ChargeRatio(m.elapsed),
			Color:           color,
			HitOverlayAlpha: r.Flash.OverlayAlpha,
			State:           r.State,
			InKnockback:     r.InKnockback(),
		}
	}
	return v
}
