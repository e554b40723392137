package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"MissionSentinel/internal/model"
	"MissionSentinel/internal/query"
)

// NoMissionsMsg is returned for any query that matches nothing.
const NoMissionsMsg = "No missions found 😔"

// MaxMissionDisplay caps the bullet-list rendering; overflow is summarized.
const MaxMissionDisplay = 5

// FormatTimeUntil renders the time remaining before a mission slot starts.
func FormatTimeUntil(ts, now time.Time) string {
	delta := ts.Sub(now).Round(time.Second)
	if delta < 0 {
		return "Right now!"
	}
	secs := int(delta.Seconds())
	return fmt.Sprintf("%dh%dm%ds", secs/3600, (secs%3600)/60, secs%60)
}

// FormatDailyDeal renders the daily deal as a single line.
func FormatDailyDeal(deal *model.DailyDeal) string {
	return fmt.Sprintf("%s %d %s for %d credits (%.0f%% %s!)",
		deal.DealType, deal.Amount, deal.Resource, deal.Credits,
		deal.ChangePercent, deal.Direction())
}

// FormatMissionBullets renders up to MaxMissionDisplay missions as nested
// bullets, one block per record.
func FormatMissionBullets(set query.MissionSet, now time.Time) string {
	records := set.Records()
	if len(records) == 0 {
		return NoMissionsMsg
	}

	var b strings.Builder
	shown := len(records)
	if shown > MaxMissionDisplay {
		shown = MaxMissionDisplay
	}
	for i := 0; i < shown; i++ {
		m := &records[i]
		b.WriteString(fmt.Sprintf("* %s (Time to mission: %s)\n", m.CodeName, FormatTimeUntil(m.Timestamp, now)))
		b.WriteString(fmt.Sprintf("  * Biome: %s\n", m.Biome))
		b.WriteString(fmt.Sprintf("  * Length %d / Complexity %d\n", m.Length, m.Complexity))
		b.WriteString(fmt.Sprintf("  * Primary: %s\n", m.Primary))
		b.WriteString(fmt.Sprintf("  * Secondary: %s\n", m.Secondary))
		b.WriteString(fmt.Sprintf("  * Warning(s): %s\n", joinOrNone(m.Warnings)))
	}
	if len(records) > MaxMissionDisplay {
		b.WriteString(fmt.Sprintf("...and %d more missions", len(records)-MaxMissionDisplay))
	}
	return b.String()
}

// Table column names, in display order.
var tableColumns = []string{
	"Season", "Biome", "Code Name", "Primary", "Secondary",
	"Length", "Complexity", "Mutator", "Warning(s)", "Time Until",
}

// FormatMissionTable renders a set as a monospace table inside a code
// fence. dropCols names columns to omit. Rows are deduplicated by identity
// key and sorted ascending by it.
func FormatMissionTable(set query.MissionSet, now time.Time, dropCols []string) string {
	records := set.Records()
	if len(records) == 0 {
		return NoMissionsMsg
	}

	seen := make(map[model.MissionKey]struct{}, len(records))
	rows := make([]model.MissionRecord, 0, len(records))
	for i := range records {
		k := records[i].Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, records[i])
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key().Less(rows[j].Key()) })

	dropped := make(map[string]bool, len(dropCols))
	for _, c := range dropCols {
		dropped[c] = true
	}
	var headers []string
	for _, c := range tableColumns {
		if !dropped[c] {
			headers = append(headers, c)
		}
	}

	cells := make([][]string, 0, len(rows))
	for i := range rows {
		m := &rows[i]
		byCol := map[string]string{
			"Season":     m.Season,
			"Biome":      m.Biome,
			"Code Name":  m.CodeName,
			"Primary":    m.Primary,
			"Secondary":  m.Secondary,
			"Length":     fmt.Sprintf("%d", m.Length),
			"Complexity": fmt.Sprintf("%d", m.Complexity),
			"Mutator":    orNA(m.Mutator),
			"Warning(s)": joinOrNA(m.Warnings),
			"Time Until": FormatTimeUntil(m.Timestamp, now),
		}
		row := make([]string, 0, len(headers))
		for _, h := range headers {
			row = append(row, byCol[h])
		}
		cells = append(cells, row)
	}

	return "```\n" + renderTable(headers, cells) + "```"
}

// FormatSummary renders the aggregate view of a set.
func FormatSummary(sum query.Summary) string {
	if sum.Missions == 0 {
		return NoMissionsMsg
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("* %d missions in range\n", sum.Missions))
	b.WriteString(fmt.Sprintf("* Biomes in range: %s\n", strings.Join(sum.Biomes, ", ")))
	b.WriteString(fmt.Sprintf("* Unique mutators: %s\n", joinOrNone(sum.Mutators)))
	b.WriteString(fmt.Sprintf("* Unique warnings: %s\n", joinOrNone(sum.Warnings)))
	return b.String()
}

// FormatDeepDive renders one deep dive variant as nested bullets.
func FormatDeepDive(label string, dd *model.DeepDive) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s | %s\n", label, dd.CodeName))
	b.WriteString(fmt.Sprintf("* Biome: %s\n", dd.Biome))
	for i, s := range dd.Stages {
		b.WriteString(fmt.Sprintf("* Stage %d\n", i+1))
		b.WriteString(fmt.Sprintf("  * Length %d / Complexity %d\n", s.Length, s.Complexity))
		b.WriteString(fmt.Sprintf("  * Primary: %s\n", s.Primary))
		b.WriteString(fmt.Sprintf("  * Secondary: %s\n", s.Secondary))
		b.WriteString(fmt.Sprintf("  * Warning(s): %s\n", joinOrNone(s.Warnings)))
	}
	return b.String()
}

// renderTable lays out rows in pipe-delimited columns padded to equal width.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i, cell := range cells {
			b.WriteString(" " + cell + strings.Repeat(" ", widths[i]-len(cell)) + " |")
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2) + "|")
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "None"
	}
	return strings.Join(list, ", ")
}

func joinOrNA(list []string) string {
	if len(list) == 0 {
		return "N/A"
	}
	return strings.Join(list, ", ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
