package scheduler

import (
	"time"

	"vocabdrill/internal/models"
)

// Params holds the tunable constants of the priority formula
type Params struct {
	// Linear-combination weights for the three signals and the due bonus
	AccuracyWeight  float64
	LatencyWeight   float64
	StabilityWeight float64
	DueWeight       float64

	// TargetResponseMs is the latency above which answers count as slow
	TargetResponseMs float64

	// DueLookahead caps the horizon of the due bonus; items due further
	// out than this receive no bonus at all
	DueLookahead time.Duration

	// FrequencyNudge scales a small priority boost for common items
	FrequencyNudge float64
}

// DefaultParams returns the production scoring constants
func DefaultParams() Params {
	return Params{
		AccuracyWeight:   0.35,
		LatencyWeight:    0.20,
		StabilityWeight:  0.25,
		DueWeight:        0.20,
		TargetResponseMs: 4000,
		DueLookahead:     72 * time.Hour,
		FrequencyNudge:   0.02,
	}
}

// Score is the output of the priority engine: the ranking key plus the
// three sub-signals that compose it, each in [0,1].
type Score struct {
	Priority        float64
	AccuracyWeight  float64
	LatencyWeight   float64
	StabilityWeight float64
}

// ScoreState maps a scheduling-state snapshot and item metadata to a
// priority score. Pure: no I/O, deterministic for identical inputs.
//
// Urgency rises with errors (low correct ratio), slow answers (mean latency
// past target), instability (low Leitner box) and proximity of the due time.
func ScoreState(state *models.SchedulingState, item *models.Item, now time.Time, params Params) Score {
	accuracy := accuracySignal(state.CorrectAttempts, state.TotalAttempts)
	latency := latencySignal(state.AverageResponseMs, params.TargetResponseMs)
	stability := stabilitySignal(state.LeitnerBox)
	due := dueBonus(state.DueAt, now, params.DueLookahead)

	priority := params.AccuracyWeight*accuracy +
		params.LatencyWeight*latency +
		params.StabilityWeight*stability +
		params.DueWeight*due +
		params.FrequencyNudge*commonness(item.FrequencyRank)

	return Score{
		Priority:        priority,
		AccuracyWeight:  accuracy,
		LatencyWeight:   latency,
		StabilityWeight: stability,
	}
}

// accuracySignal is 1 - correct/total; items never attempted score maximal
// urgency so they surface early
func accuracySignal(correct, total int) float64 {
	if total <= 0 {
		return 1
	}
	return clamp01(1 - float64(correct)/float64(total))
}

// latencySignal measures how far the running mean exceeds the target
// response time, saturating at one full target beyond it
func latencySignal(averageMs, targetMs float64) float64 {
	if targetMs <= 0 || averageMs <= targetMs {
		return 0
	}
	return clamp01((averageMs - targetMs) / targetMs)
}

// stabilitySignal is the inverse of the Leitner box: box 1 scores 1.0,
// higher boxes decay toward zero
func stabilitySignal(box int) float64 {
	if box < 1 {
		box = 1
	}
	return 1 / float64(box)
}

// dueBonus is maximal for overdue items and decays linearly to zero across
// the look-ahead window
func dueBonus(dueAt, now time.Time, lookahead time.Duration) float64 {
	if !now.Before(dueAt) {
		return 1
	}
	if lookahead <= 0 {
		return 0
	}
	remaining := dueAt.Sub(now)
	if remaining >= lookahead {
		return 0
	}
	return clamp01(1 - float64(remaining)/float64(lookahead))
}

// commonness maps a frequency rank (lower = more common) into [0,1]
func commonness(rank int) float64 {
	if rank < 0 {
		rank = 0
	}
	return 1 / (1 + float64(rank)/1000)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
