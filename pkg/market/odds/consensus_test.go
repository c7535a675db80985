package odds

import (
	"math"
	"testing"
)

func TestConsensusSpread(t *testing.T) {
	agg := NewAggregator(nil)

	tests := []struct {
		name   string
		quotes []SpreadQuote
		want   float64
	}{
		{
			name: "reliability weighted average",
			// (-3.5*1.0 + -3.0*0.5 + -4.0*0.1) / 1.6 = -3.375 -> -3.5
			quotes: []SpreadQuote{
				{Bookmaker: "fanduel", Spread: -3.5},
				{Bookmaker: "draftkings", Spread: -3.0},
				{Bookmaker: "localbook", Spread: -4.0},
			},
			want: -3.5,
		},
		{
			name: "single book passes through",
			quotes: []SpreadQuote{
				{Bookmaker: "betmgm", Spread: -7.0},
			},
			want: -7.0,
		},
		{
			name: "rounds to nearest half point",
			quotes: []SpreadQuote{
				{Bookmaker: "fanduel", Spread: -6.5},
				{Bookmaker: "fanduel", Spread: -6.0},
			},
			want: -6.5, // -6.25 rounds away from zero at the tie
		},
		{
			name: "home dog positive spread",
			quotes: []SpreadQuote{
				{Bookmaker: "fanduel", Spread: 3.0},
				{Bookmaker: "draftkings", Spread: 3.5},
				{Bookmaker: "caesars", Spread: 3.0},
			},
			want: 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := agg.ConsensusSpread(tt.quotes)
			if !line.Available {
				t.Fatal("expected available consensus line")
			}
			if line.Points != tt.want {
				t.Errorf("consensus = %v, want %v", line.Points, tt.want)
			}
			if line.Books != len(tt.quotes) {
				t.Errorf("books = %d, want %d", line.Books, len(tt.quotes))
			}
		})
	}
}

func TestConsensusSpread_Empty(t *testing.T) {
	agg := NewAggregator(nil)

	line := agg.ConsensusSpread(nil)
	if line.Available {
		t.Fatal("empty quote set must be unavailable, not a 0.0 pick-em")
	}
	if line.Points != 0 || line.Books != 0 {
		t.Errorf("unavailable line should be zero-valued, got %+v", line)
	}
}

func TestConsensusSpread_HalfIncrement(t *testing.T) {
	agg := NewAggregator(nil)

	// Any mix of quotes must land on a 0.5 boundary.
	quotes := []SpreadQuote{
		{Bookmaker: "fanduel", Spread: -2.5},
		{Bookmaker: "draftkings", Spread: -3.0},
		{Bookmaker: "betmgm", Spread: -3.5},
		{Bookmaker: "offshore", Spread: -1.5},
	}
	line := agg.ConsensusSpread(quotes)
	if rem := math.Mod(math.Abs(line.Points*2), 1); rem != 0 {
		t.Errorf("consensus %v is not on a 0.5 increment", line.Points)
	}
}

func TestConsensusTotal(t *testing.T) {
	agg := NewAggregator(nil)

	tests := []struct {
		name   string
		quotes []TotalQuote
		want   float64
	}{
		{
			name: "unweighted mean",
			quotes: []TotalQuote{
				{Bookmaker: "fanduel", Total: 51.5},
				{Bookmaker: "draftkings", Total: 52.5},
				{Bookmaker: "nobody", Total: 53.5},
			},
			want: 52.5,
		},
		{
			name: "rounds to half point",
			quotes: []TotalQuote{
				{Bookmaker: "fanduel", Total: 48.0},
				{Bookmaker: "betmgm", Total: 48.5},
			},
			want: 48.5, // 48.25 -> 48.5
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := agg.ConsensusTotal(tt.quotes)
			if !line.Available {
				t.Fatal("expected available total line")
			}
			if line.Points != tt.want {
				t.Errorf("total = %v, want %v", line.Points, tt.want)
			}
		})
	}

	if agg.ConsensusTotal(nil).Available {
		t.Error("empty totals must be unavailable")
	}
}

func TestWeightRanking(t *testing.T) {
	agg := NewAggregator([]string{"alpha", "beta"})

	if w := agg.Weight("alpha"); w != 1.0 {
		t.Errorf("rank 0 weight = %v, want 1.0", w)
	}
	if w := agg.Weight("beta"); w != 0.5 {
		t.Errorf("rank 1 weight = %v, want 0.5", w)
	}
	if w := agg.Weight("unknown"); w != unrankedWeight {
		t.Errorf("unranked weight = %v, want %v", w, unrankedWeight)
	}
}
