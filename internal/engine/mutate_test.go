package engine

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/trackora/pkg/types"
)

func TestEnsureMonth(t *testing.T) {
	doc, target, protocols := setupDoc(t, april, "Read", "Run")
	doc = mark(t, doc, target, protocols[0].ID, 3)

	t.Run("seeds a new month from the latest one", func(t *testing.T) {
		may := april.Next()
		out := EnsureMonth(doc, target.ProfileID, may.Key())

		got := out.Profiles[target.ProfileID].Months[may.Key()]
		assert.Equal(t, protocols, got.Protocols)
		assert.Empty(t, got.Cells)
		assert.NotContains(t, doc.Profiles[target.ProfileID].Months, may.Key(), "input must not change")
	})

	t.Run("seeded protocols are independent copies", func(t *testing.T) {
		may := april.Next()
		out := EnsureMonth(doc, target.ProfileID, may.Key())
		out, err := EditProtocol(out, Target{ProfileID: target.ProfileID, Month: may}, protocols[0].ID, ProtocolInput{Label: "Write"})
		require.NoError(t, err)

		assert.Equal(t, "Read", out.Profiles[target.ProfileID].Months[april.Key()].Protocols[0].Label)
	})

	t.Run("existing month is kept", func(t *testing.T) {
		once := EnsureMonth(doc, target.ProfileID, april.Key())
		twice := EnsureMonth(once, target.ProfileID, april.Key())
		assert.Equal(t, doc, twice)
		assert.True(t, GetCellValue(twice, target, 3, protocols[0].ID))
	})

	t.Run("first month starts empty", func(t *testing.T) {
		out := EnsureMonth(types.DefaultDocument(), types.DefaultProfileID, "2024-01")
		m := out.Profiles[types.DefaultProfileID].Months["2024-01"]
		assert.NotNil(t, m.Protocols)
		assert.Empty(t, m.Protocols)
		assert.NotNil(t, m.Cells)
	})

	t.Run("seeds from the latest key even when it is later", func(t *testing.T) {
		out := EnsureMonth(doc, target.ProfileID, "2023-12")
		assert.Len(t, out.Profiles[target.ProfileID].Months["2023-12"].Protocols, 2)
	})
}

func TestAddProtocol(t *testing.T) {
	doc, target, _ := setupDoc(t, april)

	t.Run("trims label and fills defaults", func(t *testing.T) {
		out, p, err := AddProtocol(doc, target, ProtocolInput{Label: "  Meditate  "})
		require.NoError(t, err)

		assert.Equal(t, "Meditate", p.Label)
		assert.Equal(t, types.DefaultColors[0], p.Color)
		assert.Equal(t, 1.0, p.Weight)
		assert.Equal(t, []types.Protocol{p}, Protocols(out, target))
		assert.Empty(t, Protocols(doc, target), "input must not change")
	})

	t.Run("id is a prefixed v7 uuid", func(t *testing.T) {
		_, p, err := AddProtocol(doc, target, ProtocolInput{Label: "Read"})
		require.NoError(t, err)

		require.True(t, strings.HasPrefix(p.ID, protocolIDPrefix))
		parsed, err := uuid.Parse(strings.TrimPrefix(p.ID, protocolIDPrefix))
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	})

	t.Run("palette follows protocol count", func(t *testing.T) {
		out := doc
		var p types.Protocol
		var err error
		for i := 0; i < 11; i++ {
			out, p, err = AddProtocol(out, target, ProtocolInput{Label: "P"})
			require.NoError(t, err)
		}
		assert.Equal(t, types.DefaultColors[0], p.Color)
	})

	t.Run("keeps explicit color and weight", func(t *testing.T) {
		_, p, err := AddProtocol(doc, target, ProtocolInput{Label: "Lift", Color: "#000000", Weight: 2.5})
		require.NoError(t, err)
		assert.Equal(t, "#000000", p.Color)
		assert.Equal(t, 2.5, p.Weight)
	})

	t.Run("blank label is rejected", func(t *testing.T) {
		out, _, err := AddProtocol(doc, target, ProtocolInput{Label: " \t "})
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.Equal(t, doc, out)
	})

	t.Run("colliding ids are regenerated", func(t *testing.T) {
		ids := []string{"protocol-x", "protocol-x", "protocol-y"}
		orig := newProtocolID
		newProtocolID = func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}
		t.Cleanup(func() { newProtocolID = orig })

		out, first, err := AddProtocol(doc, target, ProtocolInput{Label: "A"})
		require.NoError(t, err)
		_, second, err := AddProtocol(out, target, ProtocolInput{Label: "B"})
		require.NoError(t, err)

		assert.Equal(t, "protocol-x", first.ID)
		assert.Equal(t, "protocol-y", second.ID)
	})

	t.Run("only the target month changes", func(t *testing.T) {
		base := EnsureMonth(doc, target.ProfileID, april.Prev().Key())
		out, _, err := AddProtocol(base, target, ProtocolInput{Label: "Read"})
		require.NoError(t, err)
		assert.Empty(t, out.Profiles[target.ProfileID].Months[april.Prev().Key()].Protocols)
	})
}

func TestEditProtocol(t *testing.T) {
	doc, target, protocols := setupDoc(t, april, "Read", "Run", "Sleep early")

	t.Run("updates in place", func(t *testing.T) {
		out, err := EditProtocol(doc, target, protocols[1].ID, ProtocolInput{Label: " Jog ", Color: "#111111", Weight: 3})
		require.NoError(t, err)

		got := Protocols(out, target)
		require.Len(t, got, 3)
		assert.Equal(t, protocols[1].ID, got[1].ID)
		assert.Equal(t, "Jog", got[1].Label)
		assert.Equal(t, "#111111", got[1].Color)
		assert.Equal(t, 3.0, got[1].Weight)
		assert.Equal(t, protocols[0], got[0])
		assert.Equal(t, protocols[2], got[2])
	})

	t.Run("empty color keeps the current one", func(t *testing.T) {
		out, err := EditProtocol(doc, target, protocols[0].ID, ProtocolInput{Label: "Books"})
		require.NoError(t, err)
		assert.Equal(t, protocols[0].Color, Protocols(out, target)[0].Color)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		out, err := EditProtocol(doc, target, "protocol-missing", ProtocolInput{Label: "X"})
		require.NoError(t, err)
		assert.Equal(t, Protocols(doc, target), Protocols(out, target))
	})

	t.Run("blank label is rejected", func(t *testing.T) {
		_, err := EditProtocol(doc, target, protocols[0].ID, ProtocolInput{Label: ""})
		assert.ErrorIs(t, err, types.ErrValidation)
	})
}

func TestRemoveProtocolCascades(t *testing.T) {
	doc, target, protocols := setupDoc(t, april, "Read", "Run")
	victim, other := protocols[0], protocols[1]

	doc = mark(t, doc, target, victim.ID, 1, 2, 3, 4, 5)
	doc = mark(t, doc, target, other.ID, 1)
	var err error
	doc, err = SetCellNote(doc, target, 1, victim.ID, "first")
	require.NoError(t, err)
	doc, err = SetCellNote(doc, target, 2, victim.ID, "second")
	require.NoError(t, err)
	doc, err = SetSleepHours(doc, target, 1, "7hr")
	require.NoError(t, err)

	m := doc.Profiles[target.ProfileID].Months[april.Key()]
	m.RawCells = map[string]json.RawMessage{
		victim.ID + "::2024-04-09":         json.RawMessage(`"yes"`),
		"note::" + victim.ID + "::bad-day": json.RawMessage(`"x"`),
		"unrelated":                        json.RawMessage(`1`),
	}
	doc.Profiles[target.ProfileID].Months[april.Key()] = m

	out, err := RemoveProtocol(doc, target, victim.ID)
	require.NoError(t, err)

	got := out.Profiles[target.ProfileID].Months[april.Key()]
	assert.Equal(t, []types.Protocol{other}, got.Protocols)
	for k := range got.Cells {
		assert.NotEqual(t, victim.ID, k.ProtocolID, "cell %s survived", k)
	}
	for raw := range got.RawCells {
		assert.NotContains(t, raw, victim.ID)
	}
	assert.Contains(t, got.RawCells, "unrelated")

	hours, ok := GetSleepHours(out, target, 1)
	assert.True(t, ok)
	assert.Equal(t, "7hr", hours)
	assert.True(t, GetCellValue(out, target, 1, other.ID))
	assert.Len(t, got.Cells, 2)
}

func TestSetCellValue(t *testing.T) {
	doc, target, protocols := setupDoc(t, april, "Read")
	id := protocols[0].ID

	out, err := SetCellValue(doc, target, 15, id, true)
	require.NoError(t, err)
	assert.True(t, GetCellValue(out, target, 15, id))
	assert.False(t, GetCellValue(doc, target, 15, id), "input must not change")

	c, ok := out.Profiles[target.ProfileID].Months[april.Key()].Cell(types.CompletionKey(id, "2024-04-15"))
	require.True(t, ok)
	assert.Equal(t, types.Completion(true), c)

	out, err = SetCellValue(out, target, 15, id, false)
	require.NoError(t, err)
	assert.False(t, GetCellValue(out, target, 15, id))
	assert.Zero(t, GetCompletionCount(out, target, id))
}

func TestSetCellValueReplacesRawEntry(t *testing.T) {
	doc, target, protocols := setupDoc(t, april, "Read")
	id := protocols[0].ID
	m := doc.Profiles[target.ProfileID].Months[april.Key()]
	m.RawCells = map[string]json.RawMessage{id + "::2024-04-02": json.RawMessage(`"yes"`)}
	doc.Profiles[target.ProfileID].Months[april.Key()] = m

	out, err := SetCellValue(doc, target, 2, id, true)
	require.NoError(t, err)
	assert.Empty(t, out.Profiles[target.ProfileID].Months[april.Key()].RawCells)
}

func TestDayOutsideMonthIsRejected(t *testing.T) {
	doc, target, protocols := setupDoc(t, april, "Read")
	id := protocols[0].ID

	for _, d := range []int{0, -1, 31} {
		_, err := SetCellValue(doc, target, d, id, true)
		assert.ErrorIs(t, err, types.ErrValidation, "day %d", d)
		_, err = SetSleepHours(doc, target, d, "8")
		assert.ErrorIs(t, err, types.ErrValidation, "day %d", d)
		_, err = SetCellNote(doc, target, d, id, "n")
		assert.ErrorIs(t, err, types.ErrValidation, "day %d", d)
		_, err = ToggleCell(doc, target, d, id)
		assert.ErrorIs(t, err, types.ErrValidation, "day %d", d)
	}
	_, err := SetCellRange(doc, target, 28, 31, id, true)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestCreatingMonthOrProfileReplacesRawEntry(t *testing.T) {
	doc, err := types.DecodeDocument([]byte(`{
	  "profiles": {
	    "default": {"id": "default", "name": "Mine", "months": {"2024-04": "archived", "2024-05": 3}},
	    "travel": "packed"
	  }
	}`))
	require.NoError(t, err)
	doc = types.Normalize(doc)

	_, err = AddProfile(doc, "travel", "Travel")
	assert.ErrorIs(t, err, types.ErrValidation)

	target := ResolveTarget(doc, april)
	doc, err = SetSleepHours(doc, target, 1, "8hr")
	require.NoError(t, err)
	p := doc.Profiles[types.DefaultProfileID]
	assert.NotContains(t, p.RawMonths, april.Key())
	assert.Contains(t, p.RawMonths, "2024-05")

	doc = EnsureMonth(doc, "travel", april.Key())
	assert.NotContains(t, doc.RawProfiles, "travel")
	assert.Contains(t, doc.Profiles, "travel")
}

func TestProtocolIDsThatDoNotRoundTripAreRejected(t *testing.T) {
	doc, target, _ := setupDoc(t, april, "Read")

	for _, id := range []string{"", "sleep", "note", "note::x"} {
		_, err := SetCellValue(doc, target, 1, id, true)
		assert.ErrorIs(t, err, types.ErrValidation, "set %q", id)
		_, err = ToggleCell(doc, target, 1, id)
		assert.ErrorIs(t, err, types.ErrValidation, "toggle %q", id)
		_, err = SetCellRange(doc, target, 1, 3, id, true)
		assert.ErrorIs(t, err, types.ErrValidation, "range %q", id)
	}
	_, err := SetCellNote(doc, target, 1, "", "n")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestAcceptedProtocolIDsSurviveExport(t *testing.T) {
	doc, target, _ := setupDoc(t, april)

	ids := []string{"a::b", "x::2024-04-01", "sleepy", "notes"}
	var err error
	for _, id := range ids {
		doc, err = SetCellValue(doc, target, 5, id, true)
		require.NoError(t, err, id)
		doc, err = SetCellNote(doc, target, 5, id, "kept")
		require.NoError(t, err, id)
	}
	doc, err = SetCellNote(doc, target, 6, "sleep", "a note on a protocol named sleep")
	require.NoError(t, err)

	text, err := ExportData(doc)
	require.NoError(t, err)
	again, err := ImportData(text)
	require.NoError(t, err)
	for _, id := range ids {
		assert.True(t, GetCellValue(again, target, 5, id), id)
		assert.Equal(t, "kept", GetCellNote(again, target, 5, id), id)
	}
	assert.Equal(t, "a note on a protocol named sleep", GetCellNote(again, target, 6, "sleep"))
	assert.Empty(t, again.Profiles[target.ProfileID].Months[april.Key()].RawCells)
}

func TestToggleCell(t *testing.T) {
	doc, target, protocols := setupDoc(t, april, "Read")
	id := protocols[0].ID

	on, err := ToggleCell(doc, target, 7, id)
	require.NoError(t, err)
	assert.True(t, GetCellValue(on, target, 7, id))

	off, err := ToggleCell(on, target, 7, id)
	require.NoError(t, err)
	assert.False(t, GetCellValue(off, target, 7, id))
}

func TestSetCellRange(t *testing.T) {
	doc, target, protocols := setupDoc(t, april, "Read")
	id := protocols[0].ID

	out, err := SetCellRange(doc, target, 12, 10, id, true)
	require.NoError(t, err)
	assert.Equal(t, 3, GetCompletionCount(out, target, id))
	for d := 10; d <= 12; d++ {
		assert.True(t, GetCellValue(out, target, d, id), "day %d", d)
	}

	out, err = SetCellRange(out, target, 11, 11, id, false)
	require.NoError(t, err)
	assert.Equal(t, 2, GetCompletionCount(out, target, id))
}

func TestSetSleepHoursStoresEmptyLabel(t *testing.T) {
	doc, target, _ := setupDoc(t, april)

	out, err := SetSleepHours(doc, target, 3, "")
	require.NoError(t, err)
	got, ok := GetSleepHours(out, target, 3)
	assert.True(t, ok)
	assert.Equal(t, "", got)
}

func TestClearMonthData(t *testing.T) {
	doc, target, protocols := setupDoc(t, april, "Read")
	doc = mark(t, doc, target, protocols[0].ID, 1, 2)

	out, err := ClearMonthData(doc, target)
	require.NoError(t, err)
	assert.Equal(t, protocols, Protocols(out, target))
	assert.Empty(t, out.Profiles[target.ProfileID].Months[april.Key()].Cells)
	assert.Equal(t, 2, GetCompletionCount(doc, target, protocols[0].ID))
}

func TestClearAllData(t *testing.T) {
	assert.Equal(t, types.DefaultDocument(), ClearAllData())
}

func TestProfiles(t *testing.T) {
	doc := types.DefaultDocument()

	out, err := AddProfile(doc, "work", "  ")
	require.NoError(t, err)
	assert.Equal(t, "work", out.Profiles["work"].Name)
	assert.NotContains(t, doc.Profiles, "work")

	_, err = AddProfile(out, "work", "Again")
	assert.ErrorIs(t, err, types.ErrValidation)
	_, err = AddProfile(out, " ", "Blank")
	assert.ErrorIs(t, err, types.ErrValidation)

	out, err = SetActiveProfile(out, "work")
	require.NoError(t, err)
	assert.Equal(t, "work", ResolveTarget(out, april).ProfileID)

	_, err = SetActiveProfile(out, "missing")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestResolveTargetFallsBackToDefault(t *testing.T) {
	doc := types.DefaultDocument()
	doc.Settings.ActiveProfile = "gone"
	assert.Equal(t, Target{ProfileID: types.DefaultProfileID, Month: april}, ResolveTarget(doc, april))
}

func TestSetTheme(t *testing.T) {
	out, err := SetTheme(types.DefaultDocument(), "light")
	require.NoError(t, err)
	assert.Equal(t, "light", out.Settings.Theme)

	_, err = SetTheme(out, "")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestMutationsAcrossMonthsKeepDatesInMonth(t *testing.T) {
	feb := types.Month{Year: 2024, Month: time.February}
	doc, target, protocols := setupDoc(t, feb, "Read")

	out, err := SetCellValue(doc, target, 29, protocols[0].ID, true)
	require.NoError(t, err)
	_, ok := out.Profiles[target.ProfileID].Months[feb.Key()].Cell(types.CompletionKey(protocols[0].ID, "2024-02-29"))
	assert.True(t, ok)
}
