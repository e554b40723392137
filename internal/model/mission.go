package model

import "time"

// MissionRecord is one mission occurrence at one timestamp, in one season.
// A single physical mission fans out into one record per season it belongs
// to; all records sharing a MissionKey agree on every other field.
type MissionRecord struct {
	Timestamp  time.Time // UTC, on the feed's 30-minute grid
	Season     string
	Biome      string
	CodeName   string
	Primary    string
	Secondary  string
	Mutator    string   // empty means no mutator
	Warnings   []string // 0-2 distinct tags, kept as one list
	Length     int
	Complexity int
	MissionID  int64
}

// MissionKey uniquely identifies a mission record.
type MissionKey struct {
	Season    string
	Timestamp time.Time
	MissionID int64
}

// Key returns the record's identity key.
func (m *MissionRecord) Key() MissionKey {
	return MissionKey{Season: m.Season, Timestamp: m.Timestamp, MissionID: m.MissionID}
}

// Less orders keys ascending by (season, timestamp, mission id).
func (k MissionKey) Less(other MissionKey) bool {
	if k.Season != other.Season {
		return k.Season < other.Season
	}
	if !k.Timestamp.Equal(other.Timestamp) {
		return k.Timestamp.Before(other.Timestamp)
	}
	return k.MissionID < other.MissionID
}
