// Package core defines the shared domain types exchanged between the
// scoring components: game context in, prediction / confidence / edge
// records out. All result types are plain values constructed fresh per
// request and carry no cross-request state.
package core

import (
	"errors"
	"time"
)

// Sentinel errors for identity-level input problems. These never escape
// the engine boundary; they are converted into ERROR results.
var (
	ErrMissingTeam = errors.New("both home and away teams must be provided")
	ErrSameTeam    = errors.New("home and away teams cannot be the same")
)

// Category is one of the three fixed factor groupings.
type Category string

const (
	CategoryCoaching    Category = "coaching_edge"
	CategorySituational Category = "situational_context"
	CategoryMomentum    Category = "momentum_factors"
)

// Categories lists the fixed groupings in reporting order.
func Categories() []Category {
	return []Category{CategoryCoaching, CategorySituational, CategoryMomentum}
}

// EdgeDirection indicates which side the accumulated adjustment favors
// relative to the market consensus.
type EdgeDirection string

const (
	DirectionHome    EdgeDirection = "home"
	DirectionAway    EdgeDirection = "away"
	DirectionNeutral EdgeDirection = "neutral"
)

// PredictionType is the engine's coarse classification band.
type PredictionType string

const (
	StrongContrarian   PredictionType = "STRONG_CONTRARIAN"
	ModerateContrarian PredictionType = "MODERATE_CONTRARIAN"
	SlightContrarian   PredictionType = "SLIGHT_CONTRARIAN"
	ConsensusAlignment PredictionType = "CONSENSUS_ALIGNMENT"
	NoBettingData      PredictionType = "NO_BETTING_DATA"
	PredictionError    PredictionType = "ERROR"
)

// EdgeType is the edge detector's final state for a prediction.
type EdgeType string

const (
	EdgeStrongContrarian   EdgeType = "strong_contrarian"
	EdgeModerateContrarian EdgeType = "moderate_contrarian"
	EdgeSlightContrarian   EdgeType = "slight_contrarian"
	EdgeConsensusPlay      EdgeType = "consensus_play"
	EdgeNone               EdgeType = "no_edge"
	EdgeInsufficientData   EdgeType = "insufficient_data"
)

// Severity ranks edge states so the risk gate can be checked for
// monotonicity: a downgrade must never increase the rank.
func (t EdgeType) Severity() int {
	switch t {
	case EdgeStrongContrarian:
		return 5
	case EdgeModerateContrarian:
		return 4
	case EdgeSlightContrarian:
		return 3
	case EdgeConsensusPlay:
		return 2
	case EdgeNone:
		return 1
	default:
		return 0
	}
}

// ConfidenceLevel is the five-tier label for a confidence score.
type ConfidenceLevel string

const (
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceVeryLow  ConfidenceLevel = "very_low"
)

// WinRecord is a win/loss tally with a derived win percentage.
type WinRecord struct {
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	WinPct float64 `json:"win_pct"`
}

// Games returns the number of decided games in the record.
func (r WinRecord) Games() int { return r.Wins + r.Losses }

// VenueSplit separates a team's record by venue.
type VenueSplit struct {
	Home WinRecord `json:"home"`
	Away WinRecord `json:"away"`
}

// GameResult is a single game on a team's schedule. Completed games
// carry final scores; future games carry only the opponent.
type GameResult struct {
	Week          int    `json:"week"`
	Opponent      string `json:"opponent"`
	Completed     bool   `json:"completed"`
	TeamScore     int    `json:"team_score"`
	OpponentScore int    `json:"opponent_score"`
	Result        string `json:"result,omitempty"` // "W" or "L"
	CoveredSpread *bool  `json:"covered_spread,omitempty"`
}

// Margin returns the signed point differential for a completed game.
func (g GameResult) Margin() float64 {
	return float64(g.TeamScore - g.OpponentScore)
}

// CoachProfile describes a head coach as the factor calculators see one.
type CoachProfile struct {
	Name        string `json:"name,omitempty"`
	SeasonsAsHC int    `json:"seasons_as_hc"`
	TenureYears int    `json:"tenure_years"`
}

// HeadToHead is the record between the two current head coaches.
type HeadToHead struct {
	HomeWins   int `json:"home_wins"`
	AwayWins   int `json:"away_wins"`
	TotalGames int `json:"total_games"`
}

// CoachingComparison carries the coaching inputs for one matchup.
type CoachingComparison struct {
	Home       CoachProfile `json:"home"`
	Away       CoachProfile `json:"away"`
	HeadToHead HeadToHead   `json:"head_to_head"`
}

// TeamContext is the per-team context record. Its shape is a stable
// contract all factor calculators depend on; fields may be zero when a
// collaborator could not resolve them.
type TeamContext struct {
	Name       string       `json:"name"`
	Conference string       `json:"conference,omitempty"`
	Record     WinRecord    `json:"record"`
	Venue      VenueSplit   `json:"venue"`
	Schedule   []GameResult `json:"schedule,omitempty"`
}

// GameContext is the fully resolved input for one matchup. Team names
// are expected to be normalized and distinct; the market spread uses
// the convention negative = home favored and is nil when no line is
// available, which is distinct from a true pick-em of 0.0.
type GameContext struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Week     int    `json:"week,omitempty"` // 0 = unknown

	MarketSpread *float64 `json:"market_spread,omitempty"`
	MarketTotal  *float64 `json:"market_total,omitempty"`

	DataQuality float64  `json:"data_quality"`
	DataSources []string `json:"data_sources,omitempty"`

	Home     TeamContext         `json:"home"`
	Away     TeamContext         `json:"away"`
	Coaching *CoachingComparison `json:"coaching,omitempty"`
}

// FactorResult is the outcome of one factor calculation. A failed
// factor is neutralized: Value and WeightedValue are zero and Err
// records the cause.
type FactorResult struct {
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	Value         float64  `json:"value"`
	Weight        float64  `json:"weight"`
	WeightedValue float64  `json:"weighted_value"`
	Success       bool     `json:"success"`
	Explanation   string   `json:"explanation,omitempty"`
	Err           string   `json:"error,omitempty"`
}

// FactorSummary aggregates a batch of factor results.
type FactorSummary struct {
	TotalAdjustment     float64              `json:"total_adjustment"`
	CategoryAdjustments map[Category]float64 `json:"category_adjustments"`
	FactorsCalculated   int                  `json:"factors_calculated"`
	FactorsSuccessful   int                  `json:"factors_successful"`
}

// FactorReport is the registry's full output for one matchup.
type FactorReport struct {
	HomeTeam string         `json:"home_team"`
	AwayTeam string         `json:"away_team"`
	Factors  []FactorResult `json:"factors"`
	Summary  FactorSummary  `json:"summary"`
}

// SuccessRate returns the fraction of factors that calculated cleanly.
func (r FactorReport) SuccessRate() float64 {
	if r.Summary.FactorsCalculated == 0 {
		return 0
	}
	return float64(r.Summary.FactorsSuccessful) / float64(r.Summary.FactorsCalculated)
}

// PredictionResult is the engine's complete output for one matchup.
// ConsensusSpread and ContrarianSpread are nil when no market line was
// available (the NO_BETTING_DATA branch) or on ERROR.
type PredictionResult struct {
	ID       string `json:"id"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Week     int    `json:"week,omitempty"`

	ConsensusSpread  *float64       `json:"consensus_spread,omitempty"`
	ContrarianSpread *float64       `json:"contrarian_spread,omitempty"`
	EdgeSize         float64        `json:"edge_size"`
	EdgeDirection    EdgeDirection  `json:"edge_direction"`
	PredictionType   PredictionType `json:"prediction_type"`
	HasEdge          bool           `json:"has_edge"`

	TotalAdjustment     float64              `json:"total_adjustment"`
	CategoryAdjustments map[Category]float64 `json:"category_adjustments,omitempty"`
	Factors             []FactorResult       `json:"factors,omitempty"`
	FactorsCalculated   int                  `json:"factors_calculated"`
	FactorsSuccessful   int                  `json:"factors_successful"`

	DataQuality float64  `json:"data_quality"`
	DataSources []string `json:"data_sources,omitempty"`

	Confidence     float64   `json:"confidence"`
	Recommendation string    `json:"recommendation"`
	Err            string    `json:"error,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// ConfidenceAssessment is the full six-component confidence breakdown.
type ConfidenceAssessment struct {
	Score       float64            `json:"confidence_score"`
	Level       ConfidenceLevel    `json:"confidence_level"`
	Components  map[string]float64 `json:"components"`
	Weights     map[string]float64 `json:"weights"`
	Explanation string             `json:"explanation"`
}

// EdgeClassification is the edge detector's final verdict.
type EdgeClassification struct {
	Type              EdgeType `json:"edge_type"`
	EdgeSize          float64  `json:"edge_size"`
	Confidence        float64  `json:"confidence"`
	Explanation       string   `json:"explanation"`
	RecommendedAction string   `json:"recommended_action"`
}

// Float64Ptr returns a pointer to v. Convenience for optional lines.
func Float64Ptr(v float64) *float64 { return &v }
