package recorder

import (
	"time"

	"MissionSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRefresh(_ *RefreshEvent) error         { return nil }
func (n *NoopRecorder) RecordDailyDeal(_ *model.DailyDeal) error    { return nil }
func (n *NoopRecorder) RecordDeepDive(_ time.Time, _ string, _ *model.DeepDive) error {
	return nil
}
func (n *NoopRecorder) Close() error { return nil }
