// Package odds reduces per-bookmaker quotes for one matchup into a
// single consensus number. Spread consensus weights bookmakers by a
// fixed reliability ranking; totals use an unweighted mean. Both are
// rounded to the nearest 0.5, the market's quoting increment.
package odds

import (
	"github.com/shopspring/decimal"
)

// SpreadQuote is one bookmaker's point spread for the home side
// (negative = home favored).
type SpreadQuote struct {
	Bookmaker string  `json:"bookmaker"`
	Spread    float64 `json:"spread"`
}

// TotalQuote is one bookmaker's over/under line.
type TotalQuote struct {
	Bookmaker string  `json:"bookmaker"`
	Total     float64 `json:"total"`
}

// Line is a consensus value. Available distinguishes "no quotes at all"
// from a true pick-em of 0.0; callers must not conflate the two.
type Line struct {
	Points    float64 `json:"points"`
	Available bool    `json:"available"`
	Books     int     `json:"books"`
}

// unrankedWeight is applied to quotes from bookmakers outside the
// reliability ranking.
const unrankedWeight = 0.1

// DefaultBookmakerRanking is the reliability order used for consensus
// weighting: a quote's weight is 1/(rank+1), rank being the 0-based
// position in this list.
func DefaultBookmakerRanking() []string {
	return []string{
		"fanduel", "draftkings", "pointsbet_us", "betmgm", "caesars",
		"barstool", "unibet_us", "betrivers", "sugarhouse",
	}
}

// Aggregator computes consensus lines from bookmaker quotes.
type Aggregator struct {
	rank map[string]int
}

// NewAggregator creates an aggregator with the given reliability
// ranking. A nil ranking uses DefaultBookmakerRanking.
func NewAggregator(ranking []string) *Aggregator {
	if ranking == nil {
		ranking = DefaultBookmakerRanking()
	}
	rank := make(map[string]int, len(ranking))
	for i, book := range ranking {
		rank[book] = i
	}
	return &Aggregator{rank: rank}
}

// Weight returns the consensus weight for a bookmaker.
func (a *Aggregator) Weight(bookmaker string) float64 {
	if i, ok := a.rank[bookmaker]; ok {
		return 1.0 / float64(i+1)
	}
	return unrankedWeight
}

// ConsensusSpread reduces spread quotes into a reliability-weighted
// average rounded to the nearest 0.5. An empty quote set yields an
// unavailable Line.
func (a *Aggregator) ConsensusSpread(quotes []SpreadQuote) Line {
	if len(quotes) == 0 {
		return Line{}
	}

	weightedSum := decimal.Zero
	weightTotal := decimal.Zero
	for _, q := range quotes {
		w := decimal.NewFromFloat(a.Weight(q.Bookmaker))
		weightedSum = weightedSum.Add(decimal.NewFromFloat(q.Spread).Mul(w))
		weightTotal = weightTotal.Add(w)
	}
	if weightTotal.IsZero() {
		return Line{}
	}

	consensus := roundToHalf(weightedSum.Div(weightTotal))
	return Line{Points: consensus, Available: true, Books: len(quotes)}
}

// ConsensusTotal reduces over/under quotes into an unweighted mean
// rounded to the nearest 0.5.
func (a *Aggregator) ConsensusTotal(quotes []TotalQuote) Line {
	if len(quotes) == 0 {
		return Line{}
	}

	sum := decimal.Zero
	for _, q := range quotes {
		sum = sum.Add(decimal.NewFromFloat(q.Total))
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(quotes))))
	return Line{Points: roundToHalf(mean), Available: true, Books: len(quotes)}
}

// roundToHalf rounds to the nearest 0.5 increment.
func roundToHalf(d decimal.Decimal) float64 {
	half := d.Mul(decimal.NewFromInt(2)).Round(0).Div(decimal.NewFromInt(2))
	f, _ := half.Float64()
	return f
}
