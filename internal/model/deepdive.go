package model

// NumStages is the fixed stage count of a deep dive.
const NumStages = 3

// Stage is one stage of a deep dive.
type Stage struct {
	Primary    string
	Secondary  string
	Warnings   []string // 0-2 tags
	Length     int
	Complexity int
}

// DeepDive is one variant of the weekly rotating event.
type DeepDive struct {
	CodeName string
	Biome    string
	Stages   []Stage // index = stage number, length NumStages
}

// DeepDivePair holds both variants of one rotation.
type DeepDivePair struct {
	Normal DeepDive
	Elite  DeepDive
}
