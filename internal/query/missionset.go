package query

import (
	"sort"
	"time"

	"MissionSentinel/internal/model"
)

// MissionSet is an immutable, chainable view over mission records. Every
// operation returns a new set and never mutates its receiver, so many
// readers can chain filters over the same cached snapshot concurrently.
type MissionSet struct {
	records []model.MissionRecord
}

// NewMissionSet builds a set over a copy of records.
func NewMissionSet(records []model.MissionRecord) MissionSet {
	cp := make([]model.MissionRecord, len(records))
	copy(cp, records)
	return MissionSet{records: cp}
}

// Len returns the number of records in the set.
func (s MissionSet) Len() int { return len(s.records) }

// Records returns a copy of the set's records.
func (s MissionSet) Records() []model.MissionRecord {
	cp := make([]model.MissionRecord, len(s.records))
	copy(cp, s.records)
	return cp
}

func (s MissionSet) filter(keep func(*model.MissionRecord) bool) MissionSet {
	out := make([]model.MissionRecord, 0, len(s.records))
	for i := range s.records {
		if keep(&s.records[i]) {
			out = append(out, s.records[i])
		}
	}
	return MissionSet{records: out}
}

// FloorTo30Min truncates t down to the feed's native 30-minute grid,
// zeroing seconds and sub-second precision. Idempotent.
func FloorTo30Min(t time.Time) time.Time {
	t = t.UTC()
	return t.Add(-(time.Duration(t.Minute()%30)*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())))
}

// ExcludePast keeps records at or after the current 30-minute slot.
func (s MissionSet) ExcludePast(now time.Time) MissionSet {
	slot := FloorTo30Min(now)
	return s.filter(func(m *model.MissionRecord) bool {
		return !m.Timestamp.Before(slot)
	})
}

// FilterCurrent keeps records in the single active 30-minute slot.
func (s MissionSet) FilterCurrent(now time.Time) MissionSet {
	slot := FloorTo30Min(now)
	return s.filter(func(m *model.MissionRecord) bool {
		return m.Timestamp.Equal(slot)
	})
}

// FilterUpcoming keeps records in the next 30-minute slot.
func (s MissionSet) FilterUpcoming(now time.Time) MissionSet {
	slot := FloorTo30Min(now.Add(30 * time.Minute))
	return s.filter(func(m *model.MissionRecord) bool {
		return m.Timestamp.Equal(slot)
	})
}

// FilterSeason keeps records belonging to the given season code.
func (s MissionSet) FilterSeason(season string) MissionSet {
	return s.filter(func(m *model.MissionRecord) bool { return m.Season == season })
}

// FilterBiome keeps records in the given biome.
func (s MissionSet) FilterBiome(biome string) MissionSet {
	return s.filter(func(m *model.MissionRecord) bool { return m.Biome == biome })
}

// FilterPrimary keeps records with the given primary objective.
func (s MissionSet) FilterPrimary(primary string) MissionSet {
	return s.filter(func(m *model.MissionRecord) bool { return m.Primary == primary })
}

// FilterSecondary keeps records with the given secondary objective.
func (s MissionSet) FilterSecondary(secondary string) MissionSet {
	return s.filter(func(m *model.MissionRecord) bool { return m.Secondary == secondary })
}

// FilterMutator keeps records with the given mutator.
func (s MissionSet) FilterMutator(mutator string) MissionSet {
	return s.filter(func(m *model.MissionRecord) bool { return m.Mutator == mutator })
}

// FilterWarning keeps records carrying the given warning tag.
func (s MissionSet) FilterWarning(tag string) MissionSet {
	return s.filter(func(m *model.MissionRecord) bool {
		for _, w := range m.Warnings {
			if w == tag {
				return true
			}
		}
		return false
	})
}

// FilterDoubleWarning keeps records with exactly two distinct warning tags.
func (s MissionSet) FilterDoubleWarning() MissionSet {
	return s.filter(func(m *model.MissionRecord) bool { return len(m.Warnings) == 2 })
}

// TopN keeps the n distinct missions whose identity keys sort lowest, along
// with every record belonging to them. The cap bounds distinct missions
// shown, not rows returned.
func (s MissionSet) TopN(n int) MissionSet {
	if n <= 0 {
		return MissionSet{records: []model.MissionRecord{}}
	}
	seen := make(map[model.MissionKey]struct{}, len(s.records))
	keys := make([]model.MissionKey, 0, len(s.records))
	for i := range s.records {
		k := s.records[i].Key()
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	if len(keys) > n {
		keys = keys[:n]
	}
	keep := make(map[model.MissionKey]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}
	return s.filter(func(m *model.MissionRecord) bool {
		_, ok := keep[m.Key()]
		return ok
	})
}

// Summary aggregates a set: distinct mission count and the distinct biomes,
// mutators and warning tags present, in first-seen order.
type Summary struct {
	Missions int
	Biomes   []string
	Mutators []string
	Warnings []string
}

// Summary computes the set's aggregate counts. Safe on an empty set.
func (s MissionSet) Summary() Summary {
	keys := make(map[model.MissionKey]struct{}, len(s.records))
	var sum Summary
	for i := range s.records {
		m := &s.records[i]
		keys[m.Key()] = struct{}{}
		sum.Biomes = appendDistinct(sum.Biomes, m.Biome)
		if m.Mutator != "" {
			sum.Mutators = appendDistinct(sum.Mutators, m.Mutator)
		}
		for _, w := range m.Warnings {
			sum.Warnings = appendDistinct(sum.Warnings, w)
		}
	}
	sum.Missions = len(keys)
	return sum
}

func appendDistinct(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
