package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/trackora/pkg/types"
)

// ProtocolInput carries the user-editable fields of a protocol.
type ProtocolInput struct {
	Label  string
	Color  string
	Weight float64
}

// protocolIDPrefix prefixes every generated protocol id.
const protocolIDPrefix = "protocol-"

// newProtocolID returns a fresh protocol id. Tests replace it to force
// collisions.
var newProtocolID = func() string {
	id, err := uuid.NewV7()
	if err != nil {
		return protocolIDPrefix + uuid.New().String()
	}
	return protocolIDPrefix + id.String()
}

// EnsureMonth returns a copy of doc in which profileID has a month under
// monthKey. A new month is seeded with a copy of the protocols of the
// latest existing month (by key) and no cells. Existing months are left
// as they are. A missing profile is created. A created profile or month
// replaces any undecoded entry stored under the same key.
func EnsureMonth(doc types.TrackerDocument, profileID, monthKey string) types.TrackerDocument {
	out := doc.Clone()
	if out.Profiles == nil {
		out.Profiles = map[string]types.Profile{}
	}
	p, ok := out.Profiles[profileID]
	if !ok {
		p = types.Profile{ID: profileID, Name: profileID}
		delete(out.RawProfiles, profileID)
	}
	if p.Months == nil {
		p.Months = map[string]types.MonthData{}
	}
	if _, ok := p.Months[monthKey]; ok {
		out.Profiles[profileID] = p
		return out
	}

	seed := []types.Protocol{}
	if latest, ok := latestMonthKey(p.Months); ok {
		seed = types.CloneProtocols(p.Months[latest].Protocols)
	}
	p.Months[monthKey] = types.MonthData{Protocols: seed, Cells: types.CellMap{}}
	delete(p.RawMonths, monthKey)
	out.Profiles[profileID] = p
	return out
}

func latestMonthKey(months map[string]types.MonthData) (string, bool) {
	if len(months) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys[0], true
}

// updateMonth ensures the target month exists and applies fn to a copy of
// it. When fn fails the original document is returned with the error.
func updateMonth(doc types.TrackerDocument, t Target, fn func(m *types.MonthData) error) (types.TrackerDocument, error) {
	key := t.Month.Key()
	out := EnsureMonth(doc, t.ProfileID, key)
	p := out.Profiles[t.ProfileID]
	m := p.Months[key]
	if m.Cells == nil {
		m.Cells = types.CellMap{}
	}
	if err := fn(&m); err != nil {
		return doc, err
	}
	p.Months[key] = m
	out.Profiles[t.ProfileID] = p
	return out, nil
}

func validLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("%w: protocol label must not be blank", types.ErrValidation)
	}
	return label, nil
}

func validDay(m types.Month, day int) error {
	if !m.Contains(day) {
		return fmt.Errorf("%w: day %d is outside %s (1-%d)", types.ErrValidation, day, m, m.Days())
	}
	return nil
}

// validCellKey rejects protocol ids whose persisted key would read back
// as a different cell, such as "sleep", "note" or "note::x".
func validCellKey(k types.CellKey) error {
	if parsed, ok := types.ParseCellKey(k.String()); !ok || parsed != k {
		return fmt.Errorf("%w: protocol id %q cannot be stored as a cell key", types.ErrValidation, k.ProtocolID)
	}
	return nil
}

func weightOrDefault(w float64) float64 {
	if w == 0 {
		return 1
	}
	return w
}

// AddProtocol appends a protocol to the target month and returns it with
// the new document. The label is trimmed and must not be blank. An empty
// color picks the next palette color; a zero weight becomes 1.
func AddProtocol(doc types.TrackerDocument, t Target, in ProtocolInput) (types.TrackerDocument, types.Protocol, error) {
	label, err := validLabel(in.Label)
	if err != nil {
		return doc, types.Protocol{}, err
	}

	var added types.Protocol
	out, err := updateMonth(doc, t, func(m *types.MonthData) error {
		id := newProtocolID()
		for m.ProtocolIndex(id) >= 0 {
			id = newProtocolID()
		}
		color := strings.TrimSpace(in.Color)
		if color == "" {
			color = types.DefaultColors[len(m.Protocols)%len(types.DefaultColors)]
		}
		added = types.Protocol{
			ID:     id,
			Label:  label,
			Color:  color,
			Weight: weightOrDefault(in.Weight),
		}
		m.Protocols = append(m.Protocols, added)
		return nil
	})
	if err != nil {
		return doc, types.Protocol{}, err
	}
	return out, added, nil
}

// EditProtocol replaces the label, color and weight of the protocol with
// id, keeping its position and notes. An unknown id leaves the document
// unchanged. An empty color keeps the current one.
func EditProtocol(doc types.TrackerDocument, t Target, id string, in ProtocolInput) (types.TrackerDocument, error) {
	label, err := validLabel(in.Label)
	if err != nil {
		return doc, err
	}
	return updateMonth(doc, t, func(m *types.MonthData) error {
		i := m.ProtocolIndex(id)
		if i < 0 {
			return nil
		}
		p := &m.Protocols[i]
		p.Label = label
		if c := strings.TrimSpace(in.Color); c != "" {
			p.Color = c
		}
		p.Weight = weightOrDefault(in.Weight)
		return nil
	})
}

// RemoveProtocol deletes the protocol with id from the target month along
// with its completion and note cells. Sleep cells are kept.
func RemoveProtocol(doc types.TrackerDocument, t Target, id string) (types.TrackerDocument, error) {
	return updateMonth(doc, t, func(m *types.MonthData) error {
		kept := make([]types.Protocol, 0, len(m.Protocols))
		for _, p := range m.Protocols {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		m.Protocols = kept

		for k := range m.Cells {
			if k.Kind != types.CellSleep && k.ProtocolID == id {
				delete(m.Cells, k)
			}
		}
		completion := id + "::"
		note := "note::" + id + "::"
		for raw := range m.RawCells {
			if strings.HasPrefix(raw, completion) || strings.HasPrefix(raw, note) {
				delete(m.RawCells, raw)
			}
		}
		return nil
	})
}

// SetCellValue records whether protocolID was completed on day.
func SetCellValue(doc types.TrackerDocument, t Target, day int, protocolID string, value bool) (types.TrackerDocument, error) {
	if err := validDay(t.Month, day); err != nil {
		return doc, err
	}
	k := types.CompletionKey(protocolID, t.Month.Date(day))
	if err := validCellKey(k); err != nil {
		return doc, err
	}
	return updateMonth(doc, t, func(m *types.MonthData) error {
		m.SetCell(k, types.Completion(value))
		return nil
	})
}

// ToggleCell flips the completion of protocolID on day. An unset cell
// becomes completed.
func ToggleCell(doc types.TrackerDocument, t Target, day int, protocolID string) (types.TrackerDocument, error) {
	return SetCellValue(doc, t, day, protocolID, !GetCellValue(doc, t, day, protocolID))
}

// SetCellRange sets the completion of protocolID on every day between
// from and to inclusive. The endpoints may be given in either order.
func SetCellRange(doc types.TrackerDocument, t Target, from, to int, protocolID string, value bool) (types.TrackerDocument, error) {
	if from > to {
		from, to = to, from
	}
	if err := validDay(t.Month, from); err != nil {
		return doc, err
	}
	if err := validDay(t.Month, to); err != nil {
		return doc, err
	}
	if err := validCellKey(types.CompletionKey(protocolID, t.Month.Date(from))); err != nil {
		return doc, err
	}
	return updateMonth(doc, t, func(m *types.MonthData) error {
		for d := from; d <= to; d++ {
			m.SetCell(types.CompletionKey(protocolID, t.Month.Date(d)), types.Completion(value))
		}
		return nil
	})
}

// SetSleepHours stores the sleep label for day as given. An empty label
// is stored too.
func SetSleepHours(doc types.TrackerDocument, t Target, day int, label string) (types.TrackerDocument, error) {
	if err := validDay(t.Month, day); err != nil {
		return doc, err
	}
	return updateMonth(doc, t, func(m *types.MonthData) error {
		m.SetCell(types.SleepKey(t.Month.Date(day)), types.Sleep(label))
		return nil
	})
}

// SetCellNote stores the note of protocolID on day. An empty note reads
// back the same as no note.
func SetCellNote(doc types.TrackerDocument, t Target, day int, protocolID, note string) (types.TrackerDocument, error) {
	if err := validDay(t.Month, day); err != nil {
		return doc, err
	}
	k := types.NoteKey(protocolID, t.Month.Date(day))
	if err := validCellKey(k); err != nil {
		return doc, err
	}
	return updateMonth(doc, t, func(m *types.MonthData) error {
		m.SetCell(k, types.Note(note))
		return nil
	})
}

// ClearMonthData removes every cell of the target month and keeps its
// protocols.
func ClearMonthData(doc types.TrackerDocument, t Target) (types.TrackerDocument, error) {
	return updateMonth(doc, t, func(m *types.MonthData) error {
		m.Cells = types.CellMap{}
		m.RawCells = nil
		return nil
	})
}

// ClearAllData returns the default document skeleton.
func ClearAllData() types.TrackerDocument {
	return types.DefaultDocument()
}

// AddProfile adds an empty profile. The id must be a non-blank unused
// key; a blank name defaults to the id.
func AddProfile(doc types.TrackerDocument, id, name string) (types.TrackerDocument, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return doc, fmt.Errorf("%w: profile id must not be blank", types.ErrValidation)
	}
	_, typed := doc.Profiles[id]
	_, raw := doc.RawProfiles[id]
	if typed || raw {
		return doc, fmt.Errorf("%w: profile %q already exists", types.ErrValidation, id)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = id
	}
	out := doc.Clone()
	if out.Profiles == nil {
		out.Profiles = map[string]types.Profile{}
	}
	out.Profiles[id] = types.Profile{ID: id, Name: name, Months: map[string]types.MonthData{}}
	return out, nil
}

// SetActiveProfile makes id the profile that unqualified operations
// address.
func SetActiveProfile(doc types.TrackerDocument, id string) (types.TrackerDocument, error) {
	if _, ok := doc.Profiles[id]; !ok {
		return doc, fmt.Errorf("%w: profile %q does not exist", types.ErrValidation, id)
	}
	out := doc.Clone()
	out.Settings.ActiveProfile = id
	return out, nil
}

// SetTheme records the display theme preference.
func SetTheme(doc types.TrackerDocument, theme string) (types.TrackerDocument, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return doc, fmt.Errorf("%w: theme must not be blank", types.ErrValidation)
	}
	out := doc.Clone()
	out.Settings.Theme = theme
	return out, nil
}
