package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"MissionSentinel/internal/model"
)

// MalformedFeedError reports a schema violation in a feed document: a
// required key missing or a value of the wrong type. It is fatal for the
// refresh attempt that produced it; the refresh cache keeps serving the
// previous snapshot.
type MalformedFeedError struct {
	Detail string
}

func (e *MalformedFeedError) Error() string {
	return fmt.Sprintf("malformed feed: %s", e.Detail)
}

func malformedf(format string, args ...interface{}) error {
	return &MalformedFeedError{Detail: fmt.Sprintf(format, args...)}
}

const timestampLayout = "2006-01-02T15:04:05Z"

// rawEntry is one timestamp-keyed entry of a bulk mission document.
type rawEntry struct {
	Timestamp string                  `json:"timestamp"`
	Biomes    map[string][]rawMission `json:"Biomes"`
}

// rawMission is the expected JSON shape of a single mission row.
// Length, Complexity and id arrive as numbers or numeric strings.
type rawMission struct {
	CodeName   string          `json:"CodeName"`
	Primary    string          `json:"PrimaryObjective"`
	Secondary  string          `json:"SecondaryObjective"`
	Mutator    string          `json:"MissionMutator"`
	Warnings   []string        `json:"MissionWarnings"`
	Length     json.RawMessage `json:"Length"`
	Complexity json.RawMessage `json:"Complexity"`
	ID         json.RawMessage `json:"id"`
	IncludedIn []string        `json:"included_in"`
}

// Missions converts per-day bulk documents into a flat, sorted record set.
// docs maps the expected calendar date (YYYY-MM-DD) to the raw document
// fetched for it; only entries whose key carries that date prefix are kept,
// so stray adjacent-day entries and the dailyDeal key are discarded rather
// than rejected. Each retained row fans out into one record per season it
// belongs to.
func Missions(docs map[string]map[string]json.RawMessage) ([]model.MissionRecord, error) {
	var records []model.MissionRecord
	for date, doc := range docs {
		for key, raw := range doc {
			if !strings.HasPrefix(key, date) {
				continue
			}
			var entry rawEntry
			if err := json.Unmarshal(raw, &entry); err != nil {
				return nil, malformedf("entry %s: %v", key, err)
			}
			if entry.Timestamp == "" {
				return nil, malformedf("entry %s: missing timestamp", key)
			}
			if entry.Biomes == nil {
				return nil, malformedf("entry %s: missing Biomes", key)
			}
			ts, err := time.Parse(timestampLayout, entry.Timestamp)
			if err != nil {
				return nil, malformedf("entry %s: bad timestamp %q", key, entry.Timestamp)
			}
			for biome, missions := range entry.Biomes {
				for i := range missions {
					recs, err := flatten(&missions[i], biome, ts.UTC())
					if err != nil {
						return nil, fmt.Errorf("entry %s, biome %s: %w", key, biome, err)
					}
					records = append(records, recs...)
				}
			}
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key().Less(records[j].Key())
	})
	return records, nil
}

// flatten expands one raw row into one record per season. Warnings stay a
// single list on each record; duplicate tags collapse so the list length is
// a distinct count. A row belonging to no season produces no records.
func flatten(m *rawMission, biome string, ts time.Time) ([]model.MissionRecord, error) {
	if m.CodeName == "" {
		return nil, malformedf("missing CodeName")
	}
	if m.Primary == "" || m.Secondary == "" {
		return nil, malformedf("mission %s: missing objective", m.CodeName)
	}
	length, err := intValue(m.Length, "Length")
	if err != nil {
		return nil, err
	}
	complexity, err := intValue(m.Complexity, "Complexity")
	if err != nil {
		return nil, err
	}
	id, err := int64Value(m.ID, "id")
	if err != nil {
		return nil, err
	}

	var warnings []string
	for _, w := range m.Warnings {
		if !contains(warnings, w) {
			warnings = append(warnings, w)
		}
	}

	records := make([]model.MissionRecord, 0, len(m.IncludedIn))
	for _, season := range m.IncludedIn {
		records = append(records, model.MissionRecord{
			Timestamp:  ts,
			Season:     season,
			Biome:      biome,
			CodeName:   m.CodeName,
			Primary:    m.Primary,
			Secondary:  m.Secondary,
			Mutator:    m.Mutator,
			Warnings:   warnings,
			Length:     length,
			Complexity: complexity,
			MissionID:  id,
		})
	}
	return records, nil
}

// rawDeal is the expected JSON shape of the dailyDeal object.
type rawDeal struct {
	DealType      string  `json:"DealType"`
	Amount        float64 `json:"ResourceAmount"`
	Resource      string  `json:"Resource"`
	Credits       float64 `json:"Credits"`
	ChangePercent float64 `json:"ChangePercent"`
}

// DailyDeal extracts the daily deal from a bulk mission document.
func DailyDeal(doc map[string]json.RawMessage) (model.DailyDeal, error) {
	raw, ok := doc["dailyDeal"]
	if !ok {
		return model.DailyDeal{}, malformedf("missing dailyDeal")
	}
	var d rawDeal
	if err := json.Unmarshal(raw, &d); err != nil {
		return model.DailyDeal{}, malformedf("dailyDeal: %v", err)
	}
	if d.DealType == "" || d.Resource == "" {
		return model.DailyDeal{}, malformedf("dailyDeal: missing DealType or Resource")
	}
	return model.DailyDeal{
		DealType:      model.DealType(d.DealType),
		Amount:        int(d.Amount),
		Resource:      d.Resource,
		Credits:       int(d.Credits),
		ChangePercent: d.ChangePercent,
	}, nil
}

type rawStage struct {
	Primary    string          `json:"PrimaryObjective"`
	Secondary  string          `json:"SecondaryObjective"`
	Warnings   []string        `json:"MissionWarnings"`
	Length     json.RawMessage `json:"Length"`
	Complexity json.RawMessage `json:"Complexity"`
}

type rawDive struct {
	CodeName string     `json:"CodeName"`
	Biome    string     `json:"Biome"`
	Stages   []rawStage `json:"Stages"`
}

type rawDiveDoc struct {
	DeepDives struct {
		Normal *rawDive `json:"Deep Dive Normal"`
		Elite  *rawDive `json:"Deep Dive Elite"`
	} `json:"Deep Dives"`
}

// DeepDives converts a deep dive document into both rotation variants.
func DeepDives(doc json.RawMessage) (model.DeepDivePair, error) {
	var d rawDiveDoc
	if err := json.Unmarshal(doc, &d); err != nil {
		return model.DeepDivePair{}, malformedf("deep dives: %v", err)
	}
	if d.DeepDives.Normal == nil || d.DeepDives.Elite == nil {
		return model.DeepDivePair{}, malformedf("deep dives: missing variant")
	}
	normal, err := deepDive(d.DeepDives.Normal, "Deep Dive Normal")
	if err != nil {
		return model.DeepDivePair{}, err
	}
	elite, err := deepDive(d.DeepDives.Elite, "Deep Dive Elite")
	if err != nil {
		return model.DeepDivePair{}, err
	}
	return model.DeepDivePair{Normal: normal, Elite: elite}, nil
}

func deepDive(d *rawDive, label string) (model.DeepDive, error) {
	if d.CodeName == "" {
		return model.DeepDive{}, malformedf("%s: missing CodeName", label)
	}
	if len(d.Stages) != model.NumStages {
		return model.DeepDive{}, malformedf("%s: expected %d stages, got %d", label, model.NumStages, len(d.Stages))
	}
	dive := model.DeepDive{
		CodeName: d.CodeName,
		Biome:    d.Biome,
		Stages:   make([]model.Stage, 0, len(d.Stages)),
	}
	for i, s := range d.Stages {
		length, err := intValue(s.Length, "Length")
		if err != nil {
			return model.DeepDive{}, fmt.Errorf("%s stage %d: %w", label, i+1, err)
		}
		complexity, err := intValue(s.Complexity, "Complexity")
		if err != nil {
			return model.DeepDive{}, fmt.Errorf("%s stage %d: %w", label, i+1, err)
		}
		dive.Stages = append(dive.Stages, model.Stage{
			Primary:    s.Primary,
			Secondary:  s.Secondary,
			Warnings:   s.Warnings,
			Length:     length,
			Complexity: complexity,
		})
	}
	return dive, nil
}

// intValue coerces a JSON number or numeric string to an int. A missing or
// non-numeric value is a schema violation, never a silent default.
func intValue(raw json.RawMessage, field string) (int, error) {
	v, err := int64Value(raw, field)
	return int(v), err
}

func int64Value(raw json.RawMessage, field string) (int64, error) {
	if len(raw) == 0 {
		return 0, malformedf("missing %s", field)
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, malformedf("%s: %v", field, err)
	}
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, malformedf("%s: non-integer %q", field, t.String())
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, malformedf("%s: non-numeric %q", field, t)
		}
		return n, nil
	default:
		return 0, malformedf("%s: unexpected type %T", field, v)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
