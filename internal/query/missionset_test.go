package query

import (
	"testing"
	"time"

	"MissionSentinel/internal/model"
)

func ts(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}

func rec(season string, t time.Time, id int64) model.MissionRecord {
	return model.MissionRecord{
		Timestamp:  t,
		Season:     season,
		Biome:      "Salt Pits",
		CodeName:   "Mission",
		Primary:    "Mining Expedition",
		Secondary:  "Kill Glyphids",
		Length:     1,
		Complexity: 1,
		MissionID:  id,
	}
}

func TestFloorTo30Min(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{ts(0, 0), ts(0, 0)},
		{ts(0, 5), ts(0, 0)},
		{ts(0, 29).Add(59 * time.Second), ts(0, 0)},
		{ts(0, 30), ts(0, 30)},
		{ts(0, 45).Add(123 * time.Millisecond), ts(0, 30)},
		{ts(23, 59), ts(23, 30)},
	}
	for _, tt := range tests {
		got := FloorTo30Min(tt.in)
		if !got.Equal(tt.want) {
			t.Errorf("FloorTo30Min(%v) = %v, want %v", tt.in, got, tt.want)
		}
		// Idempotent: flooring a floored value changes nothing.
		if again := FloorTo30Min(got); !again.Equal(got) {
			t.Errorf("FloorTo30Min not idempotent: %v -> %v", got, again)
		}
	}
}

func TestTimeWindowScenario(t *testing.T) {
	// One mission at 00:00 in two seasons; now is 00:05.
	set := NewMissionSet([]model.MissionRecord{
		rec("s1", ts(0, 0), 1),
		rec("s2", ts(0, 0), 1),
	})
	now := ts(0, 5)

	if got := set.ExcludePast(now).Len(); got != 2 {
		t.Errorf("ExcludePast at 00:05 should keep the 00:00 slot, got %d records", got)
	}
	if got := set.FilterCurrent(now).Len(); got != 2 {
		t.Errorf("FilterCurrent at 00:05 should keep the 00:00 slot, got %d records", got)
	}
	if got := set.FilterUpcoming(now).Len(); got != 0 {
		t.Errorf("FilterUpcoming at 00:05 targets 00:30, got %d records", got)
	}
}

func TestExcludePast_Idempotent(t *testing.T) {
	set := NewMissionSet([]model.MissionRecord{
		rec("s0", ts(0, 0), 1),
		rec("s0", ts(1, 0), 2),
		rec("s0", ts(2, 30), 3),
	})
	now := ts(0, 45)
	once := set.ExcludePast(now)
	twice := once.ExcludePast(now)
	if once.Len() != twice.Len() {
		t.Errorf("second ExcludePast removed records: %d -> %d", once.Len(), twice.Len())
	}
	if once.Len() != 2 {
		t.Errorf("expected 2 future records, got %d", once.Len())
	}
}

func TestEqualityFilters(t *testing.T) {
	a := rec("s0", ts(1, 0), 1)
	a.Biome = "Magma Core"
	a.Mutator = "Gold Rush"
	b := rec("s1", ts(1, 30), 2)
	b.Primary = "Egg Hunt"
	b.Secondary = "Mine Morkite"
	set := NewMissionSet([]model.MissionRecord{a, b})

	tests := []struct {
		name string
		got  int
	}{
		{"season", set.FilterSeason("s1").Len()},
		{"biome", set.FilterBiome("Magma Core").Len()},
		{"primary", set.FilterPrimary("Egg Hunt").Len()},
		{"secondary", set.FilterSecondary("Mine Morkite").Len()},
		{"mutator", set.FilterMutator("Gold Rush").Len()},
	}
	for _, tt := range tests {
		if tt.got != 1 {
			t.Errorf("%s filter: expected 1 record, got %d", tt.name, tt.got)
		}
	}
}

func TestFilterWarnings(t *testing.T) {
	none := rec("s0", ts(1, 0), 1)
	single := rec("s0", ts(1, 0), 2)
	single.Warnings = []string{"Low Oxygen"}
	double := rec("s0", ts(1, 0), 3)
	double.Warnings = []string{"Low Oxygen", "Shield Disruption"}
	set := NewMissionSet([]model.MissionRecord{none, single, double})

	if got := set.FilterWarning("Low Oxygen").Len(); got != 2 {
		t.Errorf("FilterWarning: expected 2 records, got %d", got)
	}
	doubles := set.FilterDoubleWarning()
	if doubles.Len() != 1 {
		t.Fatalf("FilterDoubleWarning: expected 1 record, got %d", doubles.Len())
	}
	if doubles.Records()[0].MissionID != 3 {
		t.Errorf("FilterDoubleWarning selected the wrong record")
	}
}

func TestTopN(t *testing.T) {
	// 8 distinct missions, inserted out of order.
	var records []model.MissionRecord
	for _, id := range []int64{7, 3, 8, 1, 5, 2, 6, 4} {
		records = append(records, rec("s0", ts(1, 0), id))
	}
	set := NewMissionSet(records)

	top := set.TopN(5)
	keys := make(map[model.MissionKey]struct{})
	for _, r := range top.Records() {
		keys[r.Key()] = struct{}{}
		if r.MissionID > 5 {
			t.Errorf("TopN kept mission %d, want the 5 smallest keys", r.MissionID)
		}
	}
	if len(keys) != 5 {
		t.Errorf("expected 5 distinct missions, got %d", len(keys))
	}
}

func TestTopN_KeepsAllRowsOfKeptMissions(t *testing.T) {
	// Two rows sharing one identity key plus one other mission: the cap
	// bounds distinct missions, not rows.
	dup1 := rec("s0", ts(1, 0), 1)
	dup2 := rec("s0", ts(1, 0), 1)
	dup2.Warnings = []string{"Low Oxygen"}
	other := rec("s0", ts(1, 0), 2)
	set := NewMissionSet([]model.MissionRecord{dup1, dup2, other})

	if got := set.TopN(1).Len(); got != 2 {
		t.Errorf("TopN(1) should keep both rows of mission 1, got %d rows", got)
	}
}

func TestSummary(t *testing.T) {
	empty := NewMissionSet(nil)
	if s := empty.Summary(); s.Missions != 0 || len(s.Biomes) != 0 {
		t.Errorf("empty summary should report zero: %+v", s)
	}

	a := rec("s0", ts(1, 0), 1)
	a.Mutator = "Gold Rush"
	a.Warnings = []string{"Parasites"}
	b := rec("s0", ts(1, 30), 2)
	b.Biome = "Dense Biozone"
	b.Warnings = []string{"Parasites", "Low Oxygen"}
	// Same mission as a, second season: one distinct mission key each.
	c := rec("s1", ts(1, 0), 1)

	sum := NewMissionSet([]model.MissionRecord{a, b, c}).Summary()
	if sum.Missions != 3 {
		t.Errorf("expected 3 distinct keys, got %d", sum.Missions)
	}
	if len(sum.Biomes) != 2 {
		t.Errorf("expected 2 distinct biomes, got %v", sum.Biomes)
	}
	if len(sum.Mutators) != 1 || sum.Mutators[0] != "Gold Rush" {
		t.Errorf("expected 1 mutator, got %v", sum.Mutators)
	}
	if len(sum.Warnings) != 2 {
		t.Errorf("expected 2 distinct warnings, got %v", sum.Warnings)
	}
}

func TestFiltersDoNotMutateReceiver(t *testing.T) {
	set := NewMissionSet([]model.MissionRecord{
		rec("s0", ts(0, 0), 1),
		rec("s1", ts(1, 0), 2),
	})
	_ = set.FilterSeason("s1").ExcludePast(ts(0, 45)).TopN(1)
	if set.Len() != 2 {
		t.Errorf("receiver mutated: %d records left", set.Len())
	}
}
