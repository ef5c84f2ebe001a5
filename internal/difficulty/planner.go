// Package difficulty plans the per-question difficulty sequence of a quiz
// from the learner's current mastery.
package difficulty

import (
	"math/rand/v2"
	"sync"
)

// DefaultMastery is assumed for a concept the learner has never been
// assessed on.
const DefaultMastery = 0.5

// Difficulty bounds shared by planning and adaptive adjustment.
const (
	Min = 0.1
	Max = 1.0
)

// band is a half-open difficulty range [lo, lo+width).
type band struct {
	lo, width float64
}

// tier describes the easy/medium/hard mix for a mastery range. Shares are
// percentages; hard takes whatever easy and medium leave over.
type tier struct {
	easyPct, mediumPct  int
	easy, medium, hard band
}

var (
	novice = tier{
		easyPct: 60, mediumPct: 30,
		easy:   band{0.2, 0.2},
		medium: band{0.4, 0.2},
		hard:   band{0.6, 0.3},
	}
	developing = tier{
		easyPct: 30, mediumPct: 50,
		easy:   band{0.3, 0.2},
		medium: band{0.5, 0.2},
		hard:   band{0.7, 0.2},
	}
	proficient = tier{
		easyPct: 20, mediumPct: 30,
		easy:   band{0.4, 0.2},
		medium: band{0.6, 0.2},
		hard:   band{0.8, 0.2},
	}
)

func tierFor(mastery float64) tier {
	switch {
	case mastery < 0.3:
		return novice
	case mastery < 0.7:
		return developing
	default:
		return proficient
	}
}

// Buckets is the number of easy, medium and hard questions in a plan.
type Buckets struct {
	Easy, Medium, Hard int
}

// Bucketize splits n questions across difficulty buckets for the given
// mastery. Easy and medium counts are floored; hard gets the remainder.
func Bucketize(mastery float64, n int) Buckets {
	if n <= 0 {
		return Buckets{}
	}
	t := tierFor(mastery)
	easy := n * t.easyPct / 100
	medium := n * t.mediumPct / 100
	return Buckets{Easy: easy, Medium: medium, Hard: n - easy - medium}
}

// Planner draws difficulty plans from an injected random source so that a
// fixed seed reproduces the same plan. It is safe for concurrent use.
type Planner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlanner returns a Planner backed by rng.
func NewPlanner(rng *rand.Rand) *Planner {
	return &Planner{rng: rng}
}

// NewSeededPlanner returns a Planner with a PCG source seeded by seed.
func NewSeededPlanner(seed uint64) *Planner {
	return NewPlanner(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Plan returns n difficulties for a learner at the given mastery, in
// shuffled order. Every value lies in its bucket's range.
func (p *Planner) Plan(mastery float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	t := tierFor(mastery)
	b := Bucketize(mastery, n)

	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]float64, 0, n)
	out = p.draw(out, t.easy, b.Easy)
	out = p.draw(out, t.medium, b.Medium)
	out = p.draw(out, t.hard, b.Hard)

	p.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (p *Planner) draw(out []float64, b band, count int) []float64 {
	for range count {
		out = append(out, b.lo+p.rng.Float64()*b.width)
	}
	return out
}

// Clamp bounds d to [Min, Max].
func Clamp(d float64) float64 {
	switch {
	case d < Min:
		return Min
	case d > Max:
		return Max
	default:
		return d
	}
}
