package sim_test

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"dasharena/sim"
)

const tick = 1.0 / 60

type fatalHelper interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newTestMatch(t fatalHelper, cfg sim.Config, opts ...sim.Option) *sim.Match {
	t.Helper()
	opts = append([]sim.Option{sim.WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	m, err := sim.NewMatch(cfg, rand.New(rand.NewPCG(1, 2)), opts...)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return m
}

func startedMatch(t fatalHelper, opts ...sim.Option) *sim.Match {
	t.Helper()
	m := newTestMatch(t, sim.DefaultConfig(), opts...)
	m.Start()
	return m
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func near(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}
