package engine

import "github.com/mesh-intelligence/trackora/pkg/types"

// GetCellValue reports whether protocolID is marked completed on day.
// Unset cells and days outside the month read as false.
func GetCellValue(doc types.TrackerDocument, t Target, day int, protocolID string) bool {
	if !t.Month.Contains(day) {
		return false
	}
	c, ok := monthData(doc, t).Cell(types.CompletionKey(protocolID, t.Month.Date(day)))
	return ok && c.Completed
}

// GetSleepHours returns the sleep label stored for day. The boolean is
// false when nothing is stored.
func GetSleepHours(doc types.TrackerDocument, t Target, day int) (string, bool) {
	if !t.Month.Contains(day) {
		return "", false
	}
	c, ok := monthData(doc, t).Cell(types.SleepKey(t.Month.Date(day)))
	if !ok {
		return "", false
	}
	return c.Text, true
}

// GetCellNote returns the note of protocolID on day, or "".
func GetCellNote(doc types.TrackerDocument, t Target, day int, protocolID string) string {
	if !t.Month.Contains(day) {
		return ""
	}
	c, _ := monthData(doc, t).Cell(types.NoteKey(protocolID, t.Month.Date(day)))
	return c.Text
}

// GetCompletionCount returns the number of completed cells of protocolID
// in the target month.
func GetCompletionCount(doc types.TrackerDocument, t Target, protocolID string) int {
	n := 0
	for k, c := range monthData(doc, t).Cells {
		if k.Kind == types.CellCompletion && k.ProtocolID == protocolID && c.Kind == types.CellCompletion && c.Completed {
			n++
		}
	}
	return n
}

// Protocols returns a copy of the target month's protocols in display
// order.
func Protocols(doc types.TrackerDocument, t Target) []types.Protocol {
	return types.CloneProtocols(monthData(doc, t).Protocols)
}

// completedOn counts the protocols of m marked completed on day.
func completedOn(m types.MonthData, month types.Month, day int) int {
	date := month.Date(day)
	n := 0
	for _, p := range m.Protocols {
		if c, ok := m.Cell(types.CompletionKey(p.ID, date)); ok && c.Completed {
			n++
		}
	}
	return n
}
