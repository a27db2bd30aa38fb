package tracker

import (
	"github.com/mesh-intelligence/trackora/internal/engine"
	"github.com/mesh-intelligence/trackora/pkg/types"
)

// Protocols returns the protocols of the current month.
func (t *Tracker) Protocols() []types.Protocol {
	doc, target := t.snapshot()
	return engine.Protocols(doc, target)
}

// GetCellValue reports whether a protocol was completed on day.
func (t *Tracker) GetCellValue(day int, protocolID string) bool {
	doc, target := t.snapshot()
	return engine.GetCellValue(doc, target, day, protocolID)
}

// GetSleepHours returns the sleep label of day, if one is stored.
func (t *Tracker) GetSleepHours(day int) (string, bool) {
	doc, target := t.snapshot()
	return engine.GetSleepHours(doc, target, day)
}

// GetCellNote returns a protocol's note for day.
func (t *Tracker) GetCellNote(day int, protocolID string) string {
	doc, target := t.snapshot()
	return engine.GetCellNote(doc, target, day, protocolID)
}

// GetCompletionCount returns how often a protocol was completed this month.
func (t *Tracker) GetCompletionCount(protocolID string) int {
	doc, target := t.snapshot()
	return engine.GetCompletionCount(doc, target, protocolID)
}

// Score returns the discipline score of the current month and its tier.
func (t *Tracker) Score() (float64, engine.Tier) {
	doc, target := t.snapshot()
	score := engine.DisciplineScore(doc, target)
	return score, engine.ScoreTier(score)
}

// Streak returns the current completion streak.
func (t *Tracker) Streak() int {
	doc, target := t.snapshot()
	return engine.Streak(doc, target, t.now())
}

// Monthly returns the analysis of the current month.
func (t *Tracker) Monthly() engine.MonthlySummary {
	doc, target := t.snapshot()
	return engine.Monthly(doc, target, t.now())
}

// Weekly returns the analysis of the last seven days.
func (t *Tracker) Weekly() engine.WeeklySummary {
	doc, target := t.snapshot()
	return engine.Weekly(doc, target, t.now())
}
