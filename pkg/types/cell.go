package types

import "strings"

// CellKind tags the three kinds of data points stored per month.
type CellKind int

// Cell kinds.
const (
	CellCompletion CellKind = iota + 1
	CellSleep
	CellNote
)

// String implements fmt.Stringer.
func (k CellKind) String() string {
	switch k {
	case CellCompletion:
		return "completion"
	case CellSleep:
		return "sleep"
	case CellNote:
		return "note"
	default:
		return "unknown"
	}
}

// Wire-format key segments.
const (
	keySep      = "::"
	sleepPrefix = "sleep" + keySep
	notePrefix  = "note" + keySep
)

// CellKey addresses one cell within a month. ProtocolID is empty for
// sleep cells. Date is a YYYY-MM-DD string.
type CellKey struct {
	Kind       CellKind
	ProtocolID string
	Date       string
}

// CompletionKey returns the key of a protocol's completion on date.
func CompletionKey(protocolID, date string) CellKey {
	return CellKey{Kind: CellCompletion, ProtocolID: protocolID, Date: date}
}

// SleepKey returns the key of the sleep entry on date.
func SleepKey(date string) CellKey {
	return CellKey{Kind: CellSleep, Date: date}
}

// NoteKey returns the key of a protocol's note on date.
func NoteKey(protocolID, date string) CellKey {
	return CellKey{Kind: CellNote, ProtocolID: protocolID, Date: date}
}

// String encodes the key in its persisted form:
// "<protocolId>::<date>", "sleep::<date>" or "note::<protocolId>::<date>".
func (k CellKey) String() string {
	switch k.Kind {
	case CellSleep:
		return sleepPrefix + k.Date
	case CellNote:
		return notePrefix + k.ProtocolID + keySep + k.Date
	default:
		return k.ProtocolID + keySep + k.Date
	}
}

// ParseCellKey decodes a persisted cell key. The date is always the last
// segment, so protocol ids may themselves contain the separator. Keys
// without a well-formed date or protocol id do not parse.
func ParseCellKey(s string) (CellKey, bool) {
	i := strings.LastIndex(s, keySep)
	if i < 0 {
		return CellKey{}, false
	}
	head, date := s[:i+len(keySep)], s[i+len(keySep):]
	if !IsDate(date) {
		return CellKey{}, false
	}
	switch {
	case head == sleepPrefix:
		return SleepKey(date), true
	case strings.HasPrefix(head, notePrefix):
		id := strings.TrimSuffix(strings.TrimPrefix(head, notePrefix), keySep)
		if id == "" {
			return CellKey{}, false
		}
		return NoteKey(id, date), true
	default:
		id := strings.TrimSuffix(head, keySep)
		if id == "" {
			return CellKey{}, false
		}
		return CompletionKey(id, date), true
	}
}

// Cell is a tagged cell value. Completion cells carry Completed; sleep and
// note cells carry Text.
type Cell struct {
	Kind      CellKind
	Completed bool
	Text      string
}

// Completion returns a completion cell.
func Completion(done bool) Cell {
	return Cell{Kind: CellCompletion, Completed: done}
}

// Sleep returns a sleep cell holding a duration label such as "8hr".
func Sleep(label string) Cell {
	return Cell{Kind: CellSleep, Text: label}
}

// Note returns a note cell.
func Note(text string) Cell {
	return Cell{Kind: CellNote, Text: text}
}

// CellMap holds the cells of one month.
type CellMap map[CellKey]Cell

// Clone returns a copy of m. A nil map clones to an empty map.
func (m CellMap) Clone() CellMap {
	out := make(CellMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
