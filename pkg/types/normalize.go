package types

// Normalize repairs a decoded document so that every sub-structure the
// engine relies on exists:
//
//   - a zero schema version becomes CurrentSchemaVersion;
//   - missing profiles become the skeleton profiles, and a missing
//     "default" profile is synthesized;
//   - each profile's ID equals its key, and nil months, protocol lists and
//     cell maps become empty;
//   - an empty theme becomes DefaultTheme, and an active profile that does
//     not exist falls back to "default";
//   - raw values kept for a field that now holds a repaired value are
//     dropped, since the repaired value is what gets written.
//
// Normalize never modifies its argument and is idempotent.
func Normalize(doc TrackerDocument) TrackerDocument {
	out := doc.Clone()
	if out.SchemaVersion == 0 {
		out.SchemaVersion = CurrentSchemaVersion
	}
	if out.Profiles == nil {
		out.Profiles = DefaultDocument().Profiles
	}
	if _, ok := out.Profiles[DefaultProfileID]; !ok {
		out.Profiles[DefaultProfileID] = defaultProfile()
	}
	out.RawProfiles = dropRaw(out.RawProfiles, DefaultProfileID)
	out.Extra = dropRaw(out.Extra, fieldSchemaVersion, fieldProfiles, fieldSettings)
	for id, p := range out.Profiles {
		out.Profiles[id] = normalizeProfile(id, p)
	}
	if out.Settings.Theme == "" {
		out.Settings.Theme = DefaultTheme
	}
	if _, ok := out.Profiles[out.Settings.ActiveProfile]; !ok {
		out.Settings.ActiveProfile = DefaultProfileID
	}
	out.Settings.Extra = dropRaw(out.Settings.Extra, fieldTheme, fieldActiveProfile)
	return out
}

func normalizeProfile(id string, p Profile) Profile {
	p.ID = id
	p.Extra = dropRaw(p.Extra, fieldID)
	if p.Months == nil {
		p.Months = map[string]MonthData{}
	}
	for key, m := range p.Months {
		if m.Protocols == nil {
			m.Protocols = []Protocol{}
		}
		if m.Cells == nil {
			m.Cells = CellMap{}
		}
		p.Months[key] = m
	}
	return p
}
