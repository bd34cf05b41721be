package scheduler

import (
	"encoding/binary"
	"hash/fnv"
	"time"

	"vocabdrill/internal/models"
)

// fallbackBaseline sits just above a neutral priority so unseen items rank
// ahead of well-practiced ones but below genuinely urgent state
const fallbackBaseline = 0.55

// FallbackScore estimates a priority for items without usable adaptive
// state: cold-start pairs (state == nil) and categories where adaptive
// scheduling is switched off. It uses only item metadata, the last persisted
// score if one exists, and a deterministic per-item offset; repeated calls
// with the same inputs always produce the same ordering.
func FallbackScore(state *models.SchedulingState, item *models.Item, now time.Time, params Params) float64 {
	jitter := tieBreakOffset(item.ID)

	if state == nil {
		return fallbackBaseline + 0.1*commonness(item.FrequencyRank) + jitter
	}

	// Known but non-adaptive: blend the stale persisted score with a
	// recomputed accuracy penalty and the same due bonus shape the engine
	// uses.
	accuracy := accuracySignal(state.CorrectAttempts, state.TotalAttempts)
	due := dueBonus(state.DueAt, now, params.DueLookahead)

	return 0.5*state.PriorityScore + 0.3*accuracy + 0.2*due + jitter
}

// tieBreakOffset derives a small stable offset in [0, 0.01) from the item
// identifier, so equal-priority items keep a reproducible order instead of
// flickering between calls
func tieBreakOffset(itemID int64) float64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(itemID))
	h.Write(buf[:])
	return float64(h.Sum64()%10000) / 1e6
}
