package engine

import (
	mathrand "math/rand"
	"sort"
	"sync"
)

// RankEngine assigns a total order over companies by valuation.
type RankEngine struct {
	mu    sync.Mutex
	noise func() float64
}

func NewRankEngine(seed int64) *RankEngine {
	r := mathrand.New(mathrand.NewSource(seed))
	return &RankEngine{noise: r.Float64}
}

// NewRankEngineWithNoise constructs a rank engine with a fixed noise
// source. Used by tests that need deterministic valueChange figures.
func NewRankEngineWithNoise(noise func() float64) *RankEngine {
	return &RankEngine{noise: noise}
}

// Recompute orders companies by valuation descending and assigns
// 1-indexed ranks. Equal valuations tie-break on company id ascending so
// the ordering is deterministic. The input slice is not modified.
func (e *RankEngine) Recompute(companies []Company) []Company {
	out := make([]Company, len(companies))
	copy(out, companies)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value == out[j].Value {
			return out[i].ID < out[j].ID
		}
		return out[i].Value > out[j].Value
	})
	for i := range out {
		out[i].Rank = i + 1
		out[i].ValueChange = e.valueChange(out[i].Value)
	}
	return out
}

// valueChange synthesizes a previous value from fresh noise each pass.
// It is an estimated volatility display, not audited history: the figure
// changes between passes even when the valuation does not.
func (e *RankEngine) valueChange(value float64) float64 {
	if value <= 0 {
		return 0
	}
	e.mu.Lock()
	n := e.noise()
	e.mu.Unlock()
	previous := value / (1 + n*0.1)
	return (value - previous) / value * 100
}
