package sim

import (
	"math"
	"math/rand/v2"
)

// Particle はダッシュの軌跡に出る表示用の粒子です。
type Particle struct {
	X, Y     float64
	VX, VY   float64
	Size     float64
	Rotation float64
	Life     int
}

// Particles は粒子の集合です。MaxCount を超えた分は古い順に捨てます。
type Particles struct {
	items []Particle
	rng   *rand.Rand
	cfg   *ParticleConfig
}

func NewParticles(cfg *ParticleConfig, rng *rand.Rand) *Particles {
	return &Particles{
		items: make([]Particle, 0, cfg.MaxCount),
		rng:   rng,
		cfg:   cfg,
	}
}

func (p *Particles) Len() int { return len(p.items) }

// Items は現在の粒子のコピーを返します。
func (p *Particles) Items() []Particle {
	out := make([]Particle, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Particles) Clear() { p.items = p.items[:0] }

// SpawnTrail はダッシュ中のロボットの後方に、そのtickの移動距離に応じた数の粒子を出します。
func (p *Particles) SpawnTrail(r *Robot, dt float64) {
	c := p.cfg
	speed := r.Speed()
	n := int(math.Floor(speed * dt / c.DistancePerParticle))
	if n <= 0 {
		return
	}
	back := math.Atan2(r.VY, r.VX) + math.Pi
	for range n {
		angle := back + (p.rng.Float64()-0.5)*c.SpreadAngle
		dist := c.SpawnDistanceBase + p.rng.Float64()*c.SpawnDistanceRandom
		p.items = append(p.items, Particle{
			X:        r.X + math.Cos(angle)*dist,
			Y:        r.Y + math.Sin(angle)*dist,
			VX:       math.Cos(angle) * speed * c.VelocityFactor,
			VY:       math.Sin(angle) * speed * c.VelocityFactor,
			Size:     c.BaseSize + p.rng.Float64()*c.RandomSizeBoost + dist*c.DistanceSizeFactor,
			Rotation: p.rng.Float64() * 2 * math.Pi,
			Life:     c.BaseLife + int(p.rng.Float64()*float64(c.RandomLifeBoost)),
		})
	}
	if over := len(p.items) - c.MaxCount; over > 0 {
		p.items = append(p.items[:0], p.items[over:]...)
	}
}

// Update は粒子を1tick進め、寿命が尽きたものを取り除きます。
func (p *Particles) Update() {
	alive := p.items[:0]
	for _, it := range p.items {
		it.X += it.VX
		it.Y += it.VY
		it.Life--
		if it.Life > 0 {
			alive = append(alive, it)
		}
	}
	p.items = alive
}
