package sim_test

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"dasharena/sim"
)

func TestNewMatch_RejectsInvalidConfig(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Charge.MinPower = 2
	cfg.Dash.Friction = 1.5

	_, err := sim.NewMatch(cfg, rand.New(rand.NewPCG(1, 2)))
	if !errors.Is(err, sim.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestMatch_StartsWhenBothReady(t *testing.T) {
	m := newTestMatch(t, sim.DefaultConfig())

	if m.SetReady(1, true) {
		t.Fatal("started with one player ready")
	}
	if m.Phase() != sim.NotStarted {
		t.Fatalf("phase = %v, want not started", m.Phase())
	}
	if !m.SetReady(2, true) {
		t.Fatal("did not start with both ready")
	}
	if m.Phase() != sim.Playing {
		t.Fatalf("phase = %v, want playing", m.Phase())
	}
	if m.Ready(1) || m.Ready(2) {
		t.Fatal("ready flags not cleared on start")
	}
}

func TestMatch_StartResetsState(t *testing.T) {
	m := startedMatch(t)
	cfg := m.Config()
	a, b := m.Robot(1), m.Robot(2)
	a.X, a.Y = 10, 10
	m.SetHP(2, 3)
	for range 30 {
		m.Tick(tick)
	}
	m.End(sim.WinnerIs(1))

	m.Start()

	if a.X != cfg.Arena.SpawnPadding || a.Y != cfg.Arena.Height/2 {
		t.Errorf("robot 1 spawn = (%v,%v)", a.X, a.Y)
	}
	if b.X != cfg.Arena.Width-cfg.Arena.SpawnPadding || b.Y != cfg.Arena.Height/2 {
		t.Errorf("robot 2 spawn = (%v,%v)", b.X, b.Y)
	}
	if b.HP != cfg.Robot.MaxHP {
		t.Errorf("hp = %v, want full", b.HP)
	}
	if m.Elapsed() != 0 || m.Outcome() != (sim.Outcome{}) {
		t.Errorf("elapsed=%v outcome=%v", m.Elapsed(), m.Outcome())
	}
	if m.Zone().Radius != m.Zone().InitialRadius {
		t.Errorf("zone radius = %v, want initial", m.Zone().Radius)
	}
	if m.Particles().Len() != 0 {
		t.Errorf("particles = %d, want 0", m.Particles().Len())
	}
}

func TestMatch_TimeUpHigherHPWins(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Zone.TotalGameTime = 100 * time.Millisecond
	m := newTestMatch(t, cfg)
	m.Start()
	m.SetHP(1, 40)

	for i := 0; i < 20 && m.IsPlaying(); i++ {
		m.Tick(tick)
	}

	if m.Outcome() != sim.WinnerIs(2) {
		t.Fatalf("outcome = %v, want winner 2", m.Outcome())
	}
}

func TestMatch_TimeUpEqualHPIsDraw(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Zone.TotalGameTime = 100 * time.Millisecond
	m := newTestMatch(t, cfg)
	m.Start()

	for i := 0; i < 20 && m.IsPlaying(); i++ {
		m.Tick(tick)
	}

	if m.Outcome() != sim.Draw() {
		t.Fatalf("outcome = %v, want draw", m.Outcome())
	}
}

func TestMatch_ServerAuthorityIgnoresTimeUp(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Zone.TotalGameTime = 100 * time.Millisecond
	m := newTestMatch(t, cfg, sim.WithMode(sim.ServerAuthority))
	m.Start()

	for range 20 {
		m.Tick(tick)
	}
	if m.Phase() != sim.Playing {
		t.Fatalf("phase = %v, want playing until the server ends it", m.Phase())
	}
}

func TestMatch_EndHaltsRobots(t *testing.T) {
	m := startedMatch(t)
	a, b := m.Robot(1), m.Robot(2)

	m.Press(1)
	m.ApplyDamage(sim.Damage{TargetID: 2, Amount: 30, FromX: b.X - 10, FromY: b.Y, KnockbackMult: 1})
	if !b.InKnockback() {
		t.Fatal("expected knockback before end")
	}

	m.End(sim.WinnerIs(1))

	if a.State != sim.Idle || a.ControlDown {
		t.Errorf("robot 1 state=%v controlDown=%v", a.State, a.ControlDown)
	}
	if b.InKnockback() {
		t.Error("knockback not cancelled on end")
	}
	x := b.X
	m.Tick(tick)
	if b.X != x {
		t.Error("robot moved after match end")
	}

	m.Press(1)
	if a.IsCharging() {
		t.Error("input accepted after match end")
	}
}

func TestMatch_InputIgnoredBeforeStart(t *testing.T) {
	m := newTestMatch(t, sim.DefaultConfig())

	m.Press(1)
	if m.Robot(1).IsCharging() {
		t.Fatal("charging before match start")
	}
	if contacts := m.Tick(tick); contacts != nil || m.Elapsed() != 0 {
		t.Fatal("tick advanced a match that has not started")
	}
}

func TestMatch_UnknownRobotIDs(t *testing.T) {
	m := startedMatch(t)

	if m.Robot(0) != nil || m.Robot(3) != nil {
		t.Fatal("unexpected robot for invalid id")
	}
	if m.ApplyDamage(sim.Damage{TargetID: 7, Amount: 10}) {
		t.Fatal("damage applied to unknown robot")
	}
	if m.SetHP(3, 10) {
		t.Fatal("SetHP accepted unknown robot")
	}
	m.Press(9)
	m.Release(9)
}

func TestApplyDamage_KnockbackDistance(t *testing.T) {
	m := startedMatch(t)
	cfg := m.Config()
	r := m.Robot(2)
	r.X, r.Y = 480, 320
	m.Robot(1).X, m.Robot(1).Y = 100, 100

	if !m.ApplyDamage(sim.Damage{TargetID: 2, Amount: cfg.Charge.MaxDamage, FromX: 470, FromY: 320, KnockbackMult: 1}) {
		t.Fatal("damage not applied")
	}

	for range cfg.Dash.KnockbackTicks {
		if !r.InKnockback() {
			t.Fatal("knockback ended early")
		}
		r.Update(tick, m.Elapsed(), 0, nil)
	}
	if r.InKnockback() {
		t.Fatal("knockback did not end")
	}
	// 線形減衰: 2d/n * Σ(1 - i/n) = d * (n+1)/n
	n := float64(cfg.Dash.KnockbackTicks)
	want := 480 + cfg.Dash.KnockbackForce*(n+1)/n
	if !near(r.X, want, 1e-9) || r.Y != 320 {
		t.Fatalf("position = (%v,%v), want (%v,320)", r.X, r.Y, want)
	}
}

func TestApplyDamage_MinimumKnockbackAndCoincidentSource(t *testing.T) {
	m := startedMatch(t)
	r := m.Robot(2)
	r.X, r.Y = 480, 320

	m.ApplyDamage(sim.Damage{TargetID: 2, Amount: 1, FromX: 480, FromY: 320, KnockbackMult: 1})

	k := r.Knockback
	if k.DirX != 1 || k.DirY != 0 {
		t.Fatalf("direction = (%v,%v), want (1,0)", k.DirX, k.DirY)
	}
	cfg := m.Config()
	wantDist := cfg.Dash.KnockbackForce * 0.1
	if got := k.InitialSpeed * float64(k.Steps) / 2; !near(got, wantDist, 1e-9) {
		t.Fatalf("knockback distance = %v, want %v", got, wantDist)
	}
}

func TestApplyDamage_NeverIncreasesHPOrRevives(t *testing.T) {
	m := startedMatch(t)
	r := m.Robot(1)

	if m.ApplyDamage(sim.Damage{TargetID: 1, Amount: -50}) {
		t.Fatal("negative damage applied")
	}
	if r.HP != 100 {
		t.Fatalf("hp = %v after negative damage", r.HP)
	}

	m.ApplyDamage(sim.Damage{TargetID: 1, Amount: 250})
	if r.HP != 0 {
		t.Fatalf("hp = %v, want clamped to 0", r.HP)
	}
	if m.Outcome() != sim.WinnerIs(2) {
		t.Errorf("outcome = %v, want winner 2 after settle", m.Outcome())
	}
}

func TestApplyDamage_HitFlashDebounced(t *testing.T) {
	m := startedMatch(t)
	r := m.Robot(1)

	m.ApplyDamage(sim.Damage{TargetID: 1, Amount: 1})
	r.Update(tick, m.Elapsed(), 0, nil)
	ticksLeft := r.Flash.TicksLeft
	m.ApplyDamage(sim.Damage{TargetID: 1, Amount: 1})

	if r.Flash.TicksLeft != ticksLeft {
		t.Fatalf("flash retriggered within cooldown: %d -> %d", ticksLeft, r.Flash.TicksLeft)
	}
	if r.Flash.OverlayAlpha >= 1 {
		t.Fatalf("overlay alpha = %v, want decayed", r.Flash.OverlayAlpha)
	}
}

func TestMatch_ViewReflectsState(t *testing.T) {
	m := startedMatch(t)
	m.Press(2)
	for range 30 {
		m.Tick(tick)
	}

	v := m.View()
	if v.Phase != sim.Playing {
		t.Fatalf("phase = %v", v.Phase)
	}
	if v.Robots[1].State != sim.Charging || v.Robots[1].ChargeRatio <= 0 {
		t.Errorf("robot 2 view = %+v", v.Robots[1])
	}
	if v.Robots[0].Color != "red" || v.Robots[1].Color != "blue" {
		t.Errorf("colors = %q %q", v.Robots[0].Color, v.Robots[1].Color)
	}
	if v.ZoneRadius != m.Zone().InitialRadius || v.ZoneLabel != "Shrink In: 30s" {
		t.Errorf("zone view = r%v %q", v.ZoneRadius, v.ZoneLabel)
	}
	if v.TimeLeft != m.Config().Zone.TotalGameTime-m.Elapsed() {
		t.Errorf("time left = %v", v.TimeLeft)
	}
}
