package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/trackora/pkg/types"
)

// april is a 30-day month.
var april = types.Month{Year: 2024, Month: time.April}

func day(m types.Month, d int) time.Time {
	return time.Date(m.Year, m.Month, d, 9, 30, 0, 0, time.Local)
}

// setupDoc returns a normalized document whose active month holds one
// protocol per label.
func setupDoc(t *testing.T, month types.Month, labels ...string) (types.TrackerDocument, Target, []types.Protocol) {
	t.Helper()
	doc := types.Normalize(types.DefaultDocument())
	target := ResolveTarget(doc, month)
	doc = EnsureMonth(doc, target.ProfileID, month.Key())

	protocols := make([]types.Protocol, 0, len(labels))
	for _, label := range labels {
		var p types.Protocol
		var err error
		doc, p, err = AddProtocol(doc, target, ProtocolInput{Label: label})
		require.NoError(t, err)
		protocols = append(protocols, p)
	}
	return doc, target, protocols
}

// mark sets protocolID completed on each of days.
func mark(t *testing.T, doc types.TrackerDocument, target Target, protocolID string, days ...int) types.TrackerDocument {
	t.Helper()
	for _, d := range days {
		var err error
		doc, err = SetCellValue(doc, target, d, protocolID, true)
		require.NoError(t, err)
	}
	return doc
}
