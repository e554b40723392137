package recorder

import (
	"time"

	"MissionSentinel/internal/model"
)

// RefreshEvent describes one refresh attempt of a cached dataset.
type RefreshEvent struct {
	Kind     model.DatasetKind
	IssuedAt time.Time
	Missions int // flat record count, mission refreshes only
	OK       bool
	Error    string // empty on success
}

// Recorder persists feed history for later analysis.
type Recorder interface {
	RecordRefresh(evt *RefreshEvent) error
	RecordDailyDeal(deal *model.DailyDeal) error
	RecordDeepDive(rotation time.Time, variant string, dd *model.DeepDive) error
	Close() error
}
