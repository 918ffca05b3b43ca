package client_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"dasharena/client"
	"dasharena/sim"
)

func botRobots(t *testing.T) (*sim.Match, *sim.Robot, *sim.Robot) {
	t.Helper()
	m, err := sim.NewMatch(sim.DefaultConfig(), rand.New(rand.NewPCG(3, 4)))
	if err != nil {
		t.Fatal(err)
	}
	m.Start()
	return m, m.Robot(1), m.Robot(2)
}

func TestRuleBot_PersonalityRanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	for range 100 {
		b := client.NewRuleBotController(rng)
		if b.AimTolerance < 0.15 || b.AimTolerance > 0.4 {
			t.Fatalf("aim tolerance = %v", b.AimTolerance)
		}
		if b.MinRatio < 0.3 || b.MinRatio > 0.9 {
			t.Fatalf("min ratio = %v", b.MinRatio)
		}
	}
}

func TestRuleBot_PressHoldRelease(t *testing.T) {
	m, self, opp := botRobots(t)
	b := client.NewRuleBotController(rand.New(rand.NewPCG(5, 6)))
	b.RushChance = 0
	b.MinRatio = 0.5
	b.AimTolerance = 0.2

	if act := b.Decide(self, opp, 0); !act.Press {
		t.Fatalf("idle action = %+v, want press", act)
	}
	m.Press(1)

	// 相手は右側、ダッシュ方向は向き+π なので向き π で照準が合う
	self.X, self.Y = 100, 320
	opp.X, opp.Y = 800, 320
	self.Angle = math.Pi
	if act := b.Decide(self, opp, 0.2); act.Release {
		t.Fatal("released below MinRatio")
	}
	if act := b.Decide(self, opp, 0.6); !act.Release {
		t.Fatal("did not release when aimed and charged")
	}

	self.Angle = 0
	if act := b.Decide(self, opp, 1); act.Release || act.Press {
		t.Fatalf("action while misaimed = %+v, want hold", act)
	}

	m.Release(1)
	if act := b.Decide(self, opp, 0); act != (client.BotAction{}) {
		t.Fatalf("action while dashing = %+v", act)
	}
}

func TestDrive_SendsChargeFrames(t *testing.T) {
	g := playing(t, 1)
	b := client.NewRuleBotController(rand.New(rand.NewPCG(8, 9)))
	b.RushChance = 0

	client.Drive(g, b)
	if !g.Local().IsCharging() {
		t.Fatalf("state = %v, want charging", g.Local().State)
	}
}
