package engine

import (
	mathrand "math/rand"
	"sync"
	"time"
)

// Outcome is one discrete result of the investment dice: a share
// multiplier, a valuation penalty charged to the buyer, and a cooldown
// during which the buyer may not start another investment.
type Outcome struct {
	Label       string
	Probability float64
	Multiplier  float64
	Penalty     float64
	Cooldown    time.Duration
}

var outcomeTable = []Outcome{
	{Label: "full", Probability: 1.0 / 12, Multiplier: 1.0},
	{Label: "high-partial", Probability: 2.0 / 12, Multiplier: 0.5},
	{Label: "low-partial", Probability: 3.0 / 12, Multiplier: 0.35},
	{Label: "small-penalty", Probability: 3.0 / 12, Penalty: 5_000, Cooldown: 10 * time.Minute},
	{Label: "medium-penalty", Probability: 2.0 / 12, Penalty: 25_000, Cooldown: 20 * time.Minute},
	{Label: "large-penalty", Probability: 1.0 / 12, Penalty: 50_000, Cooldown: 30 * time.Minute},
}

// Outcomes returns a copy of the fixed outcome table.
func Outcomes() []Outcome {
	out := make([]Outcome, len(outcomeTable))
	copy(out, outcomeTable)
	return out
}

func (o Outcome) Result() InvestmentResult {
	switch {
	case o.Multiplier == 1:
		return ResultFull
	case o.Multiplier > 0:
		return ResultPartial
	default:
		return ResultNegative
	}
}

// OutcomeSource draws one outcome per call. Implementations must be safe
// for concurrent use.
type OutcomeSource interface {
	Resolve() Outcome
}

type Resolver struct {
	mu   sync.Mutex
	rand *mathrand.Rand
}

func NewResolver(seed int64) *Resolver {
	return &Resolver{rand: mathrand.New(mathrand.NewSource(seed))}
}

func (r *Resolver) Resolve() Outcome {
	r.mu.Lock()
	draw := r.rand.Float64()
	r.mu.Unlock()
	return pickOutcome(draw)
}

// pickOutcome walks the table accumulating probability mass and returns
// the first entry whose cumulative mass reaches the draw. The masses sum
// to 1 but the walk can come up short of the draw by a rounding epsilon;
// the first entry is the defined fallback in that case.
func pickOutcome(draw float64) Outcome {
	cumulative := 0.0
	for _, o := range outcomeTable {
		cumulative += o.Probability
		if draw <= cumulative {
			return o
		}
	}
	return outcomeTable[0]
}
