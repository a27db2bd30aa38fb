package types

import "encoding/json"

// CurrentSchemaVersion is the schema generation written by this package.
const CurrentSchemaVersion = 1

// Default identifiers of the document skeleton.
const (
	DefaultProfileID   = "default"
	DefaultProfileName = "My Tracker"
	DefaultTheme       = "dark"
)

// DefaultColors is the palette assigned to protocols added without a color.
var DefaultColors = []string{
	"#06b6d4", "#8b5cf6", "#ec4899", "#10b981", "#f59e0b",
	"#ef4444", "#14b8a6", "#6366f1", "#84cc16", "#f97316",
}

// TrackerDocument is the root of all persisted tracking data.
// Fields unknown to this version are kept in Extra and written back out,
// as are known fields whose value did not decode. RawProfiles keeps
// profile entries that are not JSON objects.
type TrackerDocument struct {
	SchemaVersion int
	Profiles      map[string]Profile
	RawProfiles   map[string]json.RawMessage
	Settings      Settings
	Extra         map[string]json.RawMessage
}

// Settings holds document-wide preferences.
type Settings struct {
	ActiveProfile string
	Theme         string
	Extra         map[string]json.RawMessage
}

// Profile is an independent set of months. RawMonths keeps month entries
// that are not JSON objects.
type Profile struct {
	ID        string
	Name      string
	Months    map[string]MonthData
	RawMonths map[string]json.RawMessage
	Extra     map[string]json.RawMessage
}

// MonthData holds the protocols and cells of one month. RawCells keeps
// persisted cell entries that do not decode into a typed Cell, either
// because the key is malformed or because the value has the wrong type
// for the key kind.
type MonthData struct {
	Protocols []Protocol
	Cells     CellMap
	RawCells  map[string]json.RawMessage
	Extra     map[string]json.RawMessage
}

// Protocol is a habit tracked per calendar day.
type Protocol struct {
	ID     string
	Label  string
	Color  string
	Weight float64 // Reserved; not used by any score.
	Notes  string  // Reserved; distinct from per-cell notes.
	Extra  map[string]json.RawMessage
}

// DefaultDocument returns the document skeleton used on first run and
// after a full reset.
func DefaultDocument() TrackerDocument {
	return TrackerDocument{
		SchemaVersion: CurrentSchemaVersion,
		Profiles: map[string]Profile{
			DefaultProfileID: defaultProfile(),
		},
		Settings: Settings{
			ActiveProfile: DefaultProfileID,
			Theme:         DefaultTheme,
		},
	}
}

func defaultProfile() Profile {
	return Profile{
		ID:     DefaultProfileID,
		Name:   DefaultProfileName,
		Months: map[string]MonthData{},
	}
}

// SetCell stores c under k, replacing any undecoded entry with the same
// persisted key.
func (m *MonthData) SetCell(k CellKey, c Cell) {
	if m.Cells == nil {
		m.Cells = CellMap{}
	}
	m.Cells[k] = c
	delete(m.RawCells, k.String())
}

// Cell returns the cell stored under k.
func (m MonthData) Cell(k CellKey) (Cell, bool) {
	c, ok := m.Cells[k]
	if !ok || c.Kind != k.Kind {
		return Cell{}, false
	}
	return c, true
}

// ProtocolIndex returns the position of the protocol with id, or -1.
func (m MonthData) ProtocolIndex(id string) int {
	for i, p := range m.Protocols {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the document.
func (d TrackerDocument) Clone() TrackerDocument {
	out := TrackerDocument{
		SchemaVersion: d.SchemaVersion,
		RawProfiles:   cloneRaw(d.RawProfiles),
		Settings:      d.Settings.clone(),
		Extra:         cloneRaw(d.Extra),
	}
	if d.Profiles != nil {
		out.Profiles = make(map[string]Profile, len(d.Profiles))
		for id, p := range d.Profiles {
			out.Profiles[id] = p.Clone()
		}
	}
	return out
}

func (s Settings) clone() Settings {
	s.Extra = cloneRaw(s.Extra)
	return s
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	out := Profile{
		ID:        p.ID,
		Name:      p.Name,
		RawMonths: cloneRaw(p.RawMonths),
		Extra:     cloneRaw(p.Extra),
	}
	if p.Months != nil {
		out.Months = make(map[string]MonthData, len(p.Months))
		for k, m := range p.Months {
			out.Months[k] = m.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the month.
func (m MonthData) Clone() MonthData {
	out := MonthData{
		RawCells: cloneRaw(m.RawCells),
		Extra:    cloneRaw(m.Extra),
	}
	if m.Protocols != nil {
		out.Protocols = CloneProtocols(m.Protocols)
	}
	if m.Cells != nil {
		out.Cells = m.Cells.Clone()
	}
	return out
}

// CloneProtocols returns a deep copy of ps. The result is never nil.
func CloneProtocols(ps []Protocol) []Protocol {
	out := make([]Protocol, len(ps))
	for i, p := range ps {
		p.Extra = cloneRaw(p.Extra)
		out[i] = p
	}
	return out
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
