package notifier

import (
	"strings"
	"testing"
	"time"

	"MissionSentinel/internal/model"
	"MissionSentinel/internal/query"
)

func sampleRecord(id int64, min int) model.MissionRecord {
	return model.MissionRecord{
		Timestamp:  time.Date(2024, 1, 1, 10, min, 0, 0, time.UTC),
		Season:     "s0",
		Biome:      "Salt Pits",
		CodeName:   "Open Trench",
		Primary:    "Mining Expedition",
		Secondary:  "Kill Glyphids",
		Length:     1,
		Complexity: 2,
		MissionID:  id,
	}
}

func TestFormatTimeUntil(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		ts   time.Time
		want string
	}{
		{now.Add(-time.Minute), "Right now!"},
		{now, "0h0m0s"},
		{now.Add(90*time.Minute + 15*time.Second), "1h30m15s"},
		{now.Add(45 * time.Second), "0h0m45s"},
	}
	for _, tt := range tests {
		if got := FormatTimeUntil(tt.ts, now); got != tt.want {
			t.Errorf("FormatTimeUntil(%v) = %q, want %q", tt.ts, got, tt.want)
		}
	}
}

func TestFormatDailyDeal(t *testing.T) {
	sell := &model.DailyDeal{DealType: model.DealSell, Amount: 120, Resource: "Morkite", Credits: 7500, ChangePercent: 24.6}
	if got := FormatDailyDeal(sell); got != "Sell 120 Morkite for 7500 credits (25% profit!)" {
		t.Errorf("unexpected sell line: %q", got)
	}
	buy := &model.DailyDeal{DealType: model.DealBuy, Amount: 50, Resource: "Croppa", Credits: 300, ChangePercent: 12.5}
	if got := FormatDailyDeal(buy); !strings.Contains(got, "savings") {
		t.Errorf("buy deals are savings: %q", got)
	}
}

func TestFormatMissionBullets(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	if got := FormatMissionBullets(query.NewMissionSet(nil), now); got != NoMissionsMsg {
		t.Errorf("empty set: got %q", got)
	}

	var records []model.MissionRecord
	for i := 0; i < 7; i++ {
		records = append(records, sampleRecord(int64(i), 0))
	}
	out := FormatMissionBullets(query.NewMissionSet(records), now)
	if !strings.Contains(out, "...and 2 more missions") {
		t.Errorf("expected an overflow line for 7 missions, got %q", out)
	}
	if got := strings.Count(out, "Open Trench"); got != MaxMissionDisplay {
		t.Errorf("expected %d rendered missions, got %d", MaxMissionDisplay, got)
	}
}

func TestFormatMissionTable(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	a := sampleRecord(1, 0)
	a.Warnings = []string{"Low Oxygen", "Parasites"}
	b := sampleRecord(2, 30)
	// Duplicate row of a: tables dedupe by identity key.
	set := query.NewMissionSet([]model.MissionRecord{a, b, a})

	out := FormatMissionTable(set, now, []string{"Season", "Mutator"})
	if !strings.HasPrefix(out, "```") || !strings.HasSuffix(out, "```") {
		t.Errorf("table must be code-fenced: %q", out)
	}
	if strings.Contains(out, "Season") || strings.Contains(out, "Mutator") {
		t.Errorf("dropped columns still present: %q", out)
	}
	if !strings.Contains(out, "Low Oxygen, Parasites") {
		t.Errorf("warnings column missing: %q", out)
	}
	// Opening fence + header + separator + 2 deduped rows.
	if got := strings.Count(strings.TrimSpace(out), "\n"); got != 5 {
		t.Errorf("expected 4 line breaks in fenced table, got %d: %q", got, out)
	}

	if got := FormatMissionTable(query.NewMissionSet(nil), now, nil); got != NoMissionsMsg {
		t.Errorf("empty set: got %q", got)
	}
}

func TestFormatSummary(t *testing.T) {
	if got := FormatSummary(query.Summary{}); got != NoMissionsMsg {
		t.Errorf("empty summary: got %q", got)
	}
	sum := query.Summary{
		Missions: 3,
		Biomes:   []string{"Salt Pits", "Magma Core"},
		Warnings: []string{"Parasites"},
	}
	out := FormatSummary(sum)
	if !strings.Contains(out, "3 missions in range") {
		t.Errorf("missing count: %q", out)
	}
	if !strings.Contains(out, "Unique mutators: None") {
		t.Errorf("empty mutators should render as None: %q", out)
	}
}

func TestFormatDeepDive(t *testing.T) {
	dd := &model.DeepDive{
		CodeName: "Morning Star",
		Biome:    "Crystalline Caverns",
		Stages: []model.Stage{
			{Primary: "Mining", Secondary: "Eggs", Length: 1, Complexity: 1},
			{Primary: "Eggs", Secondary: "Mining", Warnings: []string{"Parasites"}, Length: 2, Complexity: 2},
			{Primary: "Refinery", Secondary: "Mules", Length: 3, Complexity: 3},
		},
	}
	out := FormatDeepDive("Deep Dive", dd)
	if !strings.Contains(out, "Deep Dive | Morning Star") {
		t.Errorf("missing header: %q", out)
	}
	for _, stage := range []string{"Stage 1", "Stage 2", "Stage 3"} {
		if !strings.Contains(out, stage) {
			t.Errorf("missing %s: %q", stage, out)
		}
	}
	if !strings.Contains(out, "Warning(s): Parasites") {
		t.Errorf("stage warnings missing: %q", out)
	}
}
