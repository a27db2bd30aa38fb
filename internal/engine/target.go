package engine

import "github.com/mesh-intelligence/trackora/pkg/types"

// Target selects the profile and month an operation reads or writes.
type Target struct {
	ProfileID string
	Month     types.Month
}

// ResolveTarget returns the target for month in the document's active
// profile. An active profile that does not exist resolves to the default
// profile.
func ResolveTarget(doc types.TrackerDocument, month types.Month) Target {
	id := doc.Settings.ActiveProfile
	if _, ok := doc.Profiles[id]; !ok {
		id = types.DefaultProfileID
	}
	return Target{ProfileID: id, Month: month}
}

// monthData returns the month addressed by t, or an empty month.
func monthData(doc types.TrackerDocument, t Target) types.MonthData {
	return doc.Profiles[t.ProfileID].Months[t.Month.Key()]
}
