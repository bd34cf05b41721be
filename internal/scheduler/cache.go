package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"vocabdrill/internal/models"
)

// Controller serves queue snapshots with an explicit freshness window: a
// fresh cached snapshot is returned untouched, a stale or missing one
// triggers a synchronous rebuild. Snapshots are swapped wholesale; readers
// holding the previous snapshot are unaffected.
type Controller struct {
	builder   *Builder
	snapshots SnapshotStore
	flags     FlagSource
	devices   DeviceSource
	clock     Clock

	mu      sync.RWMutex
	current map[string]*models.QueueSnapshot

	// buildLocks collapses concurrent rebuilds for one device without
	// blocking builds for other devices
	buildLocks *keyedMutex
}

// NewController creates a queue cache / freshness controller
func NewController(builder *Builder, snapshots SnapshotStore, flags FlagSource, devices DeviceSource, clock Clock) *Controller {
	return &Controller{
		builder:    builder,
		snapshots:  snapshots,
		flags:      flags,
		devices:    devices,
		clock:      clock,
		current:    make(map[string]*models.QueueSnapshot),
		buildLocks: newKeyedMutex(),
	}
}

// GetQueue returns the device's current queue snapshot, rebuilding it only
// when stale. Returns ErrAdaptiveDisabled when the feature is globally off,
// so callers can distinguish "unavailable" from "nothing due".
func (c *Controller) GetQueue(ctx context.Context, deviceID, levelHint string) (*models.QueueSnapshot, error) {
	enabled, err := c.flags.AdaptiveEnabled("")
	if err != nil {
		return nil, fmt.Errorf("failed to check adaptive flag: %w", err)
	}
	if !enabled {
		return nil, ErrAdaptiveDisabled
	}

	if snapshot := c.cached(deviceID); snapshot != nil {
		return snapshot, nil
	}

	// Survive restarts: a persisted snapshot may still be fresh
	if snapshot, err := c.snapshots.Current(deviceID); err == nil && snapshot != nil && snapshot.Fresh(c.clock.Now()) {
		c.store(snapshot)
		return snapshot, nil
	}

	unlock := c.buildLocks.lock(deviceID)
	defer unlock()

	// A concurrent request may have finished the build while we waited
	if snapshot := c.cached(deviceID); snapshot != nil {
		return snapshot, nil
	}

	snapshot, err := c.builder.Build(ctx, deviceID, levelHint)
	if err != nil {
		return nil, err
	}

	c.store(snapshot)
	return snapshot, nil
}

// SweepResult summarizes one regenerate-all pass
type SweepResult struct {
	Processed int
	Failed    int
}

// RegenerateAll force-rebuilds queues for every active device regardless of
// freshness. Intended for periodic background use; each device is its own
// unit of work, and one device's failure never aborts the sweep.
func (c *Controller) RegenerateAll(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	deviceIDs, err := c.devices.ActiveDeviceIDs()
	if err != nil {
		return result, fmt.Errorf("failed to list active devices: %w", err)
	}

	for _, deviceID := range deviceIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := c.rebuild(ctx, deviceID); err != nil {
			log.Printf("Queue sweep: rebuild failed for device %s: %v", deviceID, err)
			result.Failed++
			continue
		}
		result.Processed++
	}

	return result, nil
}

func (c *Controller) rebuild(ctx context.Context, deviceID string) error {
	unlock := c.buildLocks.lock(deviceID)
	defer unlock()

	snapshot, err := c.builder.Build(ctx, deviceID, "")
	if err != nil {
		return err
	}

	c.store(snapshot)
	return nil
}

// cached returns the in-memory snapshot if it is still fresh
func (c *Controller) cached(deviceID string) *models.QueueSnapshot {
	c.mu.RLock()
	snapshot := c.current[deviceID]
	c.mu.RUnlock()

	if snapshot != nil && snapshot.Fresh(c.clock.Now()) {
		return snapshot
	}
	return nil
}

func (c *Controller) store(snapshot *models.QueueSnapshot) {
	c.mu.Lock()
	c.current[snapshot.DeviceID] = snapshot
	c.mu.Unlock()
}
