package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"MissionSentinel/internal/feed"
	"MissionSentinel/internal/model"
	"MissionSentinel/internal/normalize"
	"MissionSentinel/internal/recorder"
)

// Feed resource keys for deep dives embed the rotation start with dashes in
// the time part, e.g. DD_2024-01-04T11-00-00Z.json.
const rotationStampLayout = "2006-01-02T15-04-05Z"

// DeepDiveSnapshot holds both variants of one rotation.
type DeepDiveSnapshot struct {
	Dives  model.DeepDivePair
	Window model.RefreshWindow
}

// DeepDiveCache holds the current deep dive snapshot and rebuilds it once
// per rotation.
type DeepDiveCache struct {
	fetcher feed.Fetcher
	rec     recorder.Recorder

	mu   sync.RWMutex
	snap *DeepDiveSnapshot

	refreshMu sync.Mutex
}

// NewDeepDiveCache creates an empty cache; the first Current call or
// scheduler tick populates it.
func NewDeepDiveCache(fetcher feed.Fetcher, rec recorder.Recorder) *DeepDiveCache {
	return &DeepDiveCache{fetcher: fetcher, rec: rec}
}

func (c *DeepDiveCache) snapshot() *DeepDiveSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Current returns the snapshot for the rotation containing now, refreshing
// first when a new rotation has started. A failed refresh serves the prior
// rotation's snapshot; ErrNotReady only when none was ever built.
func (c *DeepDiveCache) Current(ctx context.Context, now time.Time) (*DeepDiveSnapshot, error) {
	if snap := c.snapshot(); snap != nil && !snap.Window.Expired(now) {
		return snap, nil
	}
	if err := c.Refresh(ctx, now); err != nil {
		if snap := c.snapshot(); snap != nil {
			log.Printf("[WARN] deep dive refresh failed, serving stale snapshot: %v", err)
			return snap, nil
		}
		log.Printf("[ERROR] initial deep dive refresh failed: %v", err)
		return nil, ErrNotReady
	}
	return c.snapshot(), nil
}

// Refresh fetches the document for the current rotation and swaps in a new
// snapshot. The existing snapshot stays untouched on any error.
func (c *DeepDiveCache) Refresh(ctx context.Context, now time.Time) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if snap := c.snapshot(); snap != nil && !snap.Window.Expired(now) {
		return nil
	}

	rotation := model.RotationStart(now)
	doc, err := c.fetcher.FetchDeepDives(ctx, rotation.Format(rotationStampLayout))
	if err != nil {
		c.recordRefresh(rotation, err)
		return err
	}
	pair, err := normalize.DeepDives(doc)
	if err != nil {
		c.recordRefresh(rotation, err)
		return err
	}

	snap := &DeepDiveSnapshot{
		Dives:  pair,
		Window: model.RefreshWindow{Kind: model.DatasetDeepDives, IssuedAt: rotation},
	}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	log.Printf("[INFO] deep dive snapshot refreshed for rotation %s (%s / %s)",
		rotation.Format(time.RFC3339), pair.Normal.CodeName, pair.Elite.CodeName)
	c.recordRefresh(rotation, nil)
	if err := c.rec.RecordDeepDive(rotation, "normal", &pair.Normal); err != nil {
		log.Printf("[ERROR] record deep dive: %v", err)
	}
	if err := c.rec.RecordDeepDive(rotation, "elite", &pair.Elite); err != nil {
		log.Printf("[ERROR] record deep dive: %v", err)
	}
	return nil
}

func (c *DeepDiveCache) recordRefresh(rotation time.Time, refreshErr error) {
	evt := &recorder.RefreshEvent{
		Kind:     model.DatasetDeepDives,
		IssuedAt: rotation,
		OK:       refreshErr == nil,
	}
	if refreshErr != nil {
		evt.Error = refreshErr.Error()
	}
	if err := c.rec.RecordRefresh(evt); err != nil {
		log.Printf("[ERROR] record refresh: %v", err)
	}
}
