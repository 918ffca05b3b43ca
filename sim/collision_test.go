package sim_test

import (
	"testing"

	"go.uber.org/mock/gomock"

	"dasharena/sim"
	"dasharena/sim/mocks"
)

func placeDashing(r *sim.Robot, x, y, vx, damage float64) {
	r.X, r.Y = x, y
	r.State = sim.Dashing
	r.VX, r.VY = vx, 0
	r.DashDamage = damage
}

// A(0,0) が B(30,0) にダッシュで重なった場合の基本シナリオ
func TestResolveCollisions_SingleAttacker(t *testing.T) {
	m := startedMatch(t)
	a, b := m.Robot(1), m.Robot(2)
	placeDashing(a, 0, 0, 200, 40)
	b.X, b.Y = 30, 0

	contacts := m.ResolveCollisions()

	if len(contacts) != 1 {
		t.Fatalf("contacts = %d, want 1", len(contacts))
	}
	c := contacts[0]
	if c.AttackerID != 1 || c.DefenderID != 2 || c.Damage != 40 || c.HeadOn {
		t.Errorf("contact = %+v", c)
	}
	if b.HP != 60 {
		t.Errorf("defender hp = %v, want 60", b.HP)
	}
	if a.IsDashing() {
		t.Error("attacker still dashing")
	}
	if a.HP != 100 {
		t.Errorf("attacker hp = %v, want 100", a.HP)
	}
	if !b.InKnockback() {
		t.Error("defender not in knockback")
	}
}

func TestTick_SingleAttackerInsideArena(t *testing.T) {
	m := startedMatch(t)
	a, b := m.Robot(1), m.Robot(2)
	placeDashing(a, 200, 320, 300, 40)
	b.X, b.Y = 230, 320

	contacts := m.Tick(tick)

	if len(contacts) != 1 {
		t.Fatalf("contacts = %d, want 1", len(contacts))
	}
	if b.HP != 60 {
		t.Errorf("defender hp = %v, want 60", b.HP)
	}
	if a.IsDashing() {
		t.Error("attacker still dashing")
	}
}

func TestResolveCollisions_AttackerWithHeldInputBuffersCharge(t *testing.T) {
	m := startedMatch(t)
	a, b := m.Robot(1), m.Robot(2)
	placeDashing(a, 300, 300, 200, 25)
	a.ControlDown = true
	b.X, b.Y = 320, 300

	m.ResolveCollisions()

	if !a.IsCharging() {
		t.Fatalf("attacker state = %v, want charging", a.State)
	}
}

func TestResolveCollisions_NeitherDashingOverlapsHarmlessly(t *testing.T) {
	m := startedMatch(t)
	a, b := m.Robot(1), m.Robot(2)
	a.X, a.Y = 300, 300
	b.X, b.Y = 300, 300

	if contacts := m.ResolveCollisions(); contacts != nil {
		t.Fatalf("contacts = %+v, want none", contacts)
	}
	if a.HP != 100 || b.HP != 100 {
		t.Fatalf("hp changed: %v %v", a.HP, b.HP)
	}
	if a.X != 300 || b.X != 300 {
		t.Fatal("robots were separated")
	}
}

func TestResolveCollisions_TouchingIsNotOverlapping(t *testing.T) {
	m := startedMatch(t)
	a, b := m.Robot(1), m.Robot(2)
	placeDashing(a, 300, 300, 200, 40)
	b.X, b.Y = 340, 300 // 中心距離 = 半径の和

	if contacts := m.ResolveCollisions(); contacts != nil {
		t.Fatalf("contacts = %+v, want none", contacts)
	}
}

func TestResolveCollisions_HeadOnBothDeadIsDraw(t *testing.T) {
	m := startedMatch(t)
	a, b := m.Robot(1), m.Robot(2)
	placeDashing(a, 300, 300, 400, 40)
	placeDashing(b, 330, 300, -400, 40)
	m.SetHP(1, 20)
	m.SetHP(2, 40)

	contacts := m.ResolveCollisions()

	if len(contacts) != 2 || !contacts[0].HeadOn || !contacts[1].HeadOn {
		t.Fatalf("contacts = %+v, want two head-on contacts", contacts)
	}
	if a.HP != 0 || b.HP != 0 {
		t.Fatalf("hp = %v, %v, want 0, 0", a.HP, b.HP)
	}
	if m.Phase() != sim.Ended {
		t.Fatalf("phase = %v, want ended", m.Phase())
	}
	if m.Outcome() != sim.Draw() {
		t.Fatalf("outcome = %v, want draw", m.Outcome())
	}
}

func TestResolveCollisions_HeadOnSurvivorWins(t *testing.T) {
	m := startedMatch(t)
	a, b := m.Robot(1), m.Robot(2)
	placeDashing(a, 300, 300, 400, 50)
	placeDashing(b, 330, 300, -400, 20)
	m.SetHP(2, 30)

	m.ResolveCollisions()

	if a.HP != 80 {
		t.Errorf("hp1 = %v, want 80", a.HP)
	}
	if m.Outcome() != sim.WinnerIs(1) {
		t.Fatalf("outcome = %v, want winner 1", m.Outcome())
	}
	if a.InKnockback() || b.InKnockback() {
		t.Error("dashing robots must not be knocked back")
	}
}

func TestResolveCollisions_HeadOnUsesPreCollisionDamage(t *testing.T) {
	m := startedMatch(t)
	a, b := m.Robot(1), m.Robot(2)
	placeDashing(a, 300, 300, 400, 35)
	placeDashing(b, 330, 300, -400, 15)

	m.ResolveCollisions()

	if a.HP != 85 || b.HP != 65 {
		t.Fatalf("hp = %v, %v, want 85, 65", a.HP, b.HP)
	}
	if a.IsDashing() || b.IsDashing() {
		t.Fatal("dashes not terminated")
	}
}

func TestResolveCollisions_IdempotentOnceResolved(t *testing.T) {
	m := startedMatch(t)
	a, b := m.Robot(1), m.Robot(2)
	placeDashing(a, 300, 300, 200, 40)
	b.X, b.Y = 320, 300

	m.ResolveCollisions()
	m.ResolveCollisions()

	if b.HP != 60 {
		t.Fatalf("hp = %v, want 60 after repeated resolution", b.HP)
	}
}

func TestResolveCollisions_ServerAuthorityReportsWithoutDecrement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := startedMatch(t, sim.WithMode(sim.ServerAuthority))
	a, b := m.Robot(1), m.Robot(2)
	hooks := mocks.NewMockHooks(ctrl)
	b.SetHooks(hooks)
	placeDashing(a, 300, 300, 200, 40)
	b.X, b.Y = 320, 300

	hooks.EXPECT().DamageDealt(b, gomock.Any()).DoAndReturn(func(_ *sim.Robot, d sim.Damage) {
		if d.TargetID != 2 || d.Amount != 40 || d.Cause != sim.CauseCollision {
			t.Errorf("damage = %+v", d)
		}
		if d.FromX != 300 || d.FromY != 300 || d.KnockbackMult != 1 {
			t.Errorf("damage source = (%v,%v) mult %v", d.FromX, d.FromY, d.KnockbackMult)
		}
	}).Times(1)

	m.ResolveCollisions()

	if b.HP != 100 {
		t.Fatalf("hp = %v, want 100 under server authority", b.HP)
	}
	if m.Phase() != sim.Playing {
		t.Fatalf("phase = %v, want playing", m.Phase())
	}
}
