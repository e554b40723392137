package model

import "time"

// DatasetKind names one independently refreshed dataset.
type DatasetKind string

const (
	DatasetMissions  DatasetKind = "missions"
	DatasetDeepDives DatasetKind = "deepdives"
)

// Deep dive rotation boundary: Thursday 11:00 UTC.
const (
	RotationWeekday = time.Thursday
	RotationHour    = 11
)

// RefreshWindow is the validity metadata attached to a cached snapshot.
type RefreshWindow struct {
	Kind     DatasetKind
	IssuedAt time.Time
}

// Expired reports whether a snapshot issued at w.IssuedAt is stale at now.
// Mission snapshots are valid for one UTC calendar day; deep dive snapshots
// for one rotation.
func (w RefreshWindow) Expired(now time.Time) bool {
	switch w.Kind {
	case DatasetMissions:
		y1, m1, d1 := w.IssuedAt.UTC().Date()
		y2, m2, d2 := now.UTC().Date()
		return y1 != y2 || m1 != m2 || d1 != d2
	case DatasetDeepDives:
		return !RotationStart(now).Equal(w.IssuedAt)
	default:
		return true
	}
}

// RotationStart returns the start of the deep dive rotation containing now:
// the most recent Thursday 11:00 UTC at or before now. The naive same-week
// boundary can land in the future (e.g. Wednesday, or Thursday before 11:00);
// in that case the start is one week earlier.
func RotationStart(now time.Time) time.Time {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), RotationHour, 0, 0, 0, time.UTC)
	start = start.AddDate(0, 0, int(RotationWeekday-now.Weekday()))
	if start.After(now) {
		start = start.AddDate(0, 0, -7)
	}
	return start
}
