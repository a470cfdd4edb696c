package engine

const (
	investorWeight = 0.3
	shareWeight    = 0.002
)

// Revalue recomputes a company's valuation from its investment history.
// investorCount is the number of completed incoming investments including
// the one just resolved; sharesCommitted is cumulative shares sold across
// all time. Callers must pass post-investment counts so a single event is
// reflected exactly once.
func Revalue(baseValue float64, investorCount int, sharesCommitted int64) float64 {
	return baseValue * (1 + float64(investorCount)*investorWeight) * (1 + float64(sharesCommitted)*shareWeight)
}

// SharePrice derives the per-share price from the valuation and the fixed
// total-share constant. It is never independently authoritative.
func SharePrice(value float64, totalShares int64) float64 {
	if totalShares <= 0 {
		return 0
	}
	return value / float64(totalShares)
}
