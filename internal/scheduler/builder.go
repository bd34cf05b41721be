package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"vocabdrill/internal/models"

	"github.com/google/uuid"
)

// oversampleFactor widens the candidate fetch so per-type caps and
// de-duplication still leave a full queue
const oversampleFactor = 3

// Builder turns current scheduling state plus the item catalog into an
// ordered, immutable queue snapshot for one device.
type Builder struct {
	states    StateStore
	snapshots SnapshotStore
	catalog   Catalog
	flags     FlagSource
	params    Params
	clock     Clock

	queueLimit int
	freshness  time.Duration
}

// NewBuilder creates a queue builder. queueLimit bounds the snapshot length;
// freshness sets how long a built snapshot stays servable.
func NewBuilder(states StateStore, snapshots SnapshotStore, catalog Catalog, flags FlagSource, params Params, clock Clock, queueLimit int, freshness time.Duration) *Builder {
	return &Builder{
		states:     states,
		snapshots:  snapshots,
		catalog:    catalog,
		flags:      flags,
		params:     params,
		clock:      clock,
		queueLimit: queueLimit,
		freshness:  freshness,
	}
}

type scoredItem struct {
	item     models.Item
	priority float64
}

// Build fetches candidates, scores them, orders them and persists the
// resulting snapshot as the device's current queue. An empty catalog yields
// an empty snapshot, not an error. There is no partial result: cancellation
// aborts the build before anything is persisted.
func (b *Builder) Build(ctx context.Context, deviceID, levelHint string) (*models.QueueSnapshot, error) {
	started := b.clock.Now()

	candidates, err := b.catalog.Candidates(models.ItemFilter{
		Level: levelHint,
		Limit: b.queueLimit * oversampleFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate items: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	states, err := b.states.MapForDevice(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scheduling state: %w", err)
	}

	// One capability check per category for this build, reused for every
	// candidate instead of being re-queried per item
	adaptiveByPOS := make(map[string]bool)

	scored := make([]scoredItem, 0, len(candidates))
	for _, item := range candidates {
		adaptive, ok := adaptiveByPOS[item.POS]
		if !ok {
			adaptive, err = b.flags.AdaptiveEnabled(item.POS)
			if err != nil {
				return nil, fmt.Errorf("failed to check adaptive flag for %s: %w", item.POS, err)
			}
			adaptiveByPOS[item.POS] = adaptive
		}

		state := states[item.ID]
		var priority float64
		if adaptive && state != nil {
			priority = ScoreState(state, &item, started, b.params).Priority
		} else {
			priority = FallbackScore(state, &item, started, b.params)
		}
		scored = append(scored, scoredItem{item: item, priority: priority})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Descending by priority; exact ties fall back to the item ID so the
	// order never depends on map iteration
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].priority != scored[j].priority {
			return scored[i].priority > scored[j].priority
		}
		return scored[i].item.ID < scored[j].item.ID
	})

	items := b.applyCaps(scored)

	now := b.clock.Now()
	snapshot := &models.QueueSnapshot{
		DeviceID:             deviceID,
		Version:              uuid.New().String(),
		GeneratedAt:          now,
		ValidUntil:           now.Add(b.freshness),
		GenerationDurationMs: now.Sub(started).Milliseconds(),
		Items:                items,
		ItemCount:            len(items),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := b.snapshots.Replace(snapshot); err != nil {
		return nil, fmt.Errorf("failed to persist queue snapshot: %w", err)
	}

	return snapshot, nil
}

// applyCaps enforces each item's per-queue task-type cap and the overall
// queue length limit, preserving the sorted order
func (b *Builder) applyCaps(scored []scoredItem) []models.QueueItem {
	items := make([]models.QueueItem, 0, b.queueLimit)
	perType := make(map[string]int)

	for _, s := range scored {
		if len(items) >= b.queueLimit {
			break
		}
		typeCap := s.item.QueueCap
		if typeCap > 0 && perType[s.item.TaskType] >= typeCap {
			continue
		}
		perType[s.item.TaskType]++
		items = append(items, models.QueueItem{
			ItemID:   s.item.ID,
			Lemma:    s.item.Lemma,
			POS:      s.item.POS,
			TaskType: s.item.TaskType,
			Prompt:   s.item.Prompt,
			Level:    s.item.Level,
			Priority: s.priority,
		})
	}

	return items
}
