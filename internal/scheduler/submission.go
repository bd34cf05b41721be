package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"vocabdrill/internal/models"
)

// conflictRetries bounds how often a submission re-reads after a versioned
// update lost a race with an out-of-process writer
const conflictRetries = 3

// Processor applies one practice result to the per-(device, item)
// scheduling state. Submissions for the same pair are serialized; submissions
// for different pairs run independently.
type Processor struct {
	states  StateStore
	catalog Catalog
	params  Params
	clock   Clock
	locks   *keyedMutex
}

// NewProcessor creates a submission processor
func NewProcessor(states StateStore, catalog Catalog, params Params, clock Clock) *Processor {
	return &Processor{
		states:  states,
		catalog: catalog,
		params:  params,
		clock:   clock,
		locks:   newKeyedMutex(),
	}
}

// Process validates and applies a single submission, returning the updated
// scheduling summary. No state is mutated when validation fails, and success
// is only reported after the write is persisted.
func (p *Processor) Process(ctx context.Context, deviceID string, itemID int64, result string, responseMs int64, submittedAt time.Time) (*models.SubmissionSummary, error) {
	if err := validateSubmission(deviceID, result, responseMs, submittedAt); err != nil {
		return nil, err
	}

	item, err := p.catalog.Get(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up item %d: %w", itemID, err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	unlock := p.locks.lock(deviceID + ":" + strconv.FormatInt(itemID, 10))
	defer unlock()

	var state *models.SchedulingState
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		state, err = p.states.Get(deviceID, itemID)
		if err != nil {
			return nil, fmt.Errorf("failed to read scheduling state: %w", err)
		}

		created := false
		if state == nil {
			// First-ever submission for this pair starts from box 1
			state = newState(deviceID, itemID, p.clock.Now())
			created = true
		}

		p.applySubmission(state, item, result, responseMs, submittedAt)

		if created {
			err = p.states.Create(state)
		} else {
			err = p.states.Update(state)
		}
		if err == nil {
			break
		}
		if err == ErrConflict && attempt < conflictRetries {
			continue
		}
		return nil, fmt.Errorf("failed to persist scheduling state: %w", err)
	}

	summary := &models.SubmissionSummary{
		DeviceID:          deviceID,
		ItemID:            itemID,
		LeitnerBox:        state.LeitnerBox,
		TotalAttempts:     state.TotalAttempts,
		CorrectAttempts:   state.CorrectAttempts,
		AverageResponseMs: state.AverageResponseMs,
		DueAt:             state.DueAt,
		PriorityScore:     state.PriorityScore,
	}

	// Coverage is progress telemetry; a counting failure must not undo an
	// already-persisted submission.
	if total, due, err := p.states.Counts(deviceID, p.clock.Now()); err == nil && total > 0 {
		summary.CoverageScore = 1 - float64(due)/float64(total)
	}

	return summary, nil
}

// applySubmission mutates state with the Leitner transition, counters,
// running latency mean and a fresh score
func (p *Processor) applySubmission(state *models.SchedulingState, item *models.Item, result string, responseMs int64, submittedAt time.Time) {
	correct := result == models.ResultCorrect

	state.TotalAttempts++
	if correct {
		state.CorrectAttempts++
	}

	// Incremental running mean of response latency
	state.AverageResponseMs += (float64(responseMs) - state.AverageResponseMs) / float64(state.TotalAttempts)

	state.LeitnerBox = nextBox(state.LeitnerBox, correct)

	// Due times are computed from now when a submission arrives late, so a
	// correct answer never lands already overdue
	base := p.clock.Now()
	if submittedAt.After(base) {
		base = submittedAt
	}
	state.DueAt = nextDue(base, state.LeitnerBox, correct)

	state.LastResult = result
	state.LastPracticedAt = submittedAt
	state.UpdatedAt = p.clock.Now()

	score := ScoreState(state, item, p.clock.Now(), p.params)
	state.PriorityScore = score.Priority
	state.AccuracyWeight = score.AccuracyWeight
	state.LatencyWeight = score.LatencyWeight
	state.StabilityWeight = score.StabilityWeight
}

func newState(deviceID string, itemID int64, now time.Time) *models.SchedulingState {
	return &models.SchedulingState{
		DeviceID:   deviceID,
		ItemID:     itemID,
		LeitnerBox: 1,
		DueAt:      now,
		CreatedAt:  now,
	}
}

func validateSubmission(deviceID, result string, responseMs int64, submittedAt time.Time) error {
	if deviceID == "" {
		return fmt.Errorf("%w: missing device id", ErrInvalidSubmission)
	}
	if result != models.ResultCorrect && result != models.ResultIncorrect {
		return fmt.Errorf("%w: result must be %q or %q", ErrInvalidSubmission, models.ResultCorrect, models.ResultIncorrect)
	}
	if responseMs < 0 {
		return fmt.Errorf("%w: negative response time", ErrInvalidSubmission)
	}
	if submittedAt.IsZero() {
		return fmt.Errorf("%w: missing submission time", ErrInvalidSubmission)
	}
	return nil
}
