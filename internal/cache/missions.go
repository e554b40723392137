// Package cache owns the currently valid normalized snapshots and their
// refresh cadences. Each dataset kind has one cache with a single accessor:
// Current returns the latest valid snapshot, refreshing first if expired.
// A failed refresh keeps the stale snapshot in place; readers never block
// on an in-flight refresh beyond the snapshot pointer swap.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"MissionSentinel/internal/feed"
	"MissionSentinel/internal/model"
	"MissionSentinel/internal/normalize"
	"MissionSentinel/internal/query"
	"MissionSentinel/internal/recorder"
)

// ErrNotReady is returned when no snapshot exists yet and the first refresh
// could not complete.
var ErrNotReady = errors.New("feed data not ready")

const dateLayout = "2006-01-02"

// MissionSnapshot is one complete normalized mission dataset, valid for one
// UTC calendar day.
type MissionSnapshot struct {
	Missions query.MissionSet
	Deal     model.DailyDeal
	Window   model.RefreshWindow
}

// MissionCache holds the current mission snapshot and rebuilds it daily.
type MissionCache struct {
	fetcher feed.Fetcher
	rec     recorder.Recorder

	mu   sync.RWMutex // guards snap pointer only
	snap *MissionSnapshot

	refreshMu sync.Mutex // serializes refresh attempts
}

// NewMissionCache creates an empty cache; the first Current call or
// scheduler tick populates it.
func NewMissionCache(fetcher feed.Fetcher, rec recorder.Recorder) *MissionCache {
	return &MissionCache{fetcher: fetcher, rec: rec}
}

func (c *MissionCache) snapshot() *MissionSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Current returns the latest valid snapshot, refreshing first when expired
// or absent. On refresh failure the prior snapshot is served unchanged;
// ErrNotReady is returned only when no snapshot has ever been built.
func (c *MissionCache) Current(ctx context.Context, now time.Time) (*MissionSnapshot, error) {
	if snap := c.snapshot(); snap != nil && !snap.Window.Expired(now) {
		return snap, nil
	}
	if err := c.Refresh(ctx, now); err != nil {
		if snap := c.snapshot(); snap != nil {
			log.Printf("[WARN] mission refresh failed, serving stale snapshot: %v", err)
			return snap, nil
		}
		log.Printf("[ERROR] initial mission refresh failed: %v", err)
		return nil, ErrNotReady
	}
	return c.snapshot(), nil
}

// Refresh fetches and normalizes today's and tomorrow's documents and swaps
// in a new snapshot. The existing snapshot stays untouched on any error.
func (c *MissionCache) Refresh(ctx context.Context, now time.Time) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have refreshed while this one waited.
	if snap := c.snapshot(); snap != nil && !snap.Window.Expired(now) {
		return nil
	}

	now = now.UTC()
	issuedAt := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	snap, recordCount, err := c.build(ctx, now, issuedAt)
	if err != nil {
		c.recordRefresh(issuedAt, 0, err)
		return err
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	log.Printf("[INFO] mission snapshot refreshed for %s (%d records)",
		issuedAt.Format(dateLayout), recordCount)
	c.recordRefresh(issuedAt, recordCount, nil)
	if err := c.rec.RecordDailyDeal(&snap.Deal); err != nil {
		log.Printf("[ERROR] record daily deal: %v", err)
	}
	return nil
}

func (c *MissionCache) build(ctx context.Context, now, issuedAt time.Time) (*MissionSnapshot, int, error) {
	today := now.Format(dateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(dateLayout)

	todayDoc, err := c.fetcher.FetchMissions(ctx, today)
	if err != nil {
		return nil, 0, err
	}
	tomorrowDoc, err := c.fetcher.FetchMissions(ctx, tomorrow)
	if err != nil {
		return nil, 0, err
	}

	records, err := normalize.Missions(map[string]map[string]json.RawMessage{
		today:    todayDoc,
		tomorrow: tomorrowDoc,
	})
	if err != nil {
		return nil, 0, err
	}
	deal, err := normalize.DailyDeal(todayDoc)
	if err != nil {
		return nil, 0, err
	}

	snap := &MissionSnapshot{
		Missions: query.NewMissionSet(records),
		Deal:     deal,
		Window:   model.RefreshWindow{Kind: model.DatasetMissions, IssuedAt: issuedAt},
	}
	return snap, len(records), nil
}

func (c *MissionCache) recordRefresh(issuedAt time.Time, count int, refreshErr error) {
	evt := &recorder.RefreshEvent{
		Kind:     model.DatasetMissions,
		IssuedAt: issuedAt,
		Missions: count,
		OK:       refreshErr == nil,
	}
	if refreshErr != nil {
		evt.Error = refreshErr.Error()
	}
	if err := c.rec.RecordRefresh(evt); err != nil {
		log.Printf("[ERROR] record refresh: %v", err)
	}
}
