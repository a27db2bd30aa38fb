package tracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/trackora/internal/engine"
	"github.com/mesh-intelligence/trackora/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// now is the fixed clock used by every test: Wednesday 10 April 2024.
var now = time.Date(2024, time.April, 10, 21, 0, 0, 0, time.Local)

func clock() time.Time { return now }

func fileConfig(dir string) types.Config {
	return types.Config{Backend: types.BackendFile, DataDir: dir}
}

func openTracker(t *testing.T, cfg types.Config, opts ...Option) *Tracker {
	t.Helper()
	opts = append([]Option{WithClock(clock), WithLogger(zaptest.NewLogger(t))}, opts...)
	tr, err := Open(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestOpenCreatesCurrentMonth(t *testing.T) {
	for _, backend := range []string{types.BackendSQLite, types.BackendFile} {
		t.Run(backend, func(t *testing.T) {
			tr := openTracker(t, types.Config{Backend: backend, DataDir: t.TempDir()})

			assert.Equal(t, types.Month{Year: 2024, Month: time.April}, tr.CurrentMonth())
			doc := tr.Document()
			assert.Contains(t, doc.Profiles[types.DefaultProfileID].Months, "2024-04")
			assert.Equal(t, types.DefaultTheme, tr.Theme())
		})
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(types.Config{Backend: "cloud"})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	_, err = Open(types.Config{Backend: types.BackendFile, DataDir: t.TempDir(), StoreKey: "../escape"})
	assert.ErrorIs(t, err, types.ErrInvalidKey)
}

func TestMutationsPersist(t *testing.T) {
	dir := t.TempDir()
	tr := openTracker(t, fileConfig(dir))

	p, err := tr.AddProtocol(engine.ProtocolInput{Label: "Read"})
	require.NoError(t, err)
	require.NoError(t, tr.SetCellValue(9, p.ID, true))
	require.NoError(t, tr.FillRange(1, 3, p.ID, true))
	require.NoError(t, tr.SetSleepHours(9, "7hr"))
	require.NoError(t, tr.SetCellNote(9, p.ID, "short"))
	value, err := tr.ToggleCell(10, p.ID)
	require.NoError(t, err)
	assert.True(t, value)
	require.NoError(t, tr.Close())

	again := openTracker(t, fileConfig(dir))
	assert.Equal(t, []types.Protocol{p}, again.Protocols())
	assert.Equal(t, 5, again.GetCompletionCount(p.ID))
	assert.True(t, again.GetCellValue(10, p.ID))
	hours, ok := again.GetSleepHours(9)
	assert.True(t, ok)
	assert.Equal(t, "7hr", hours)
	assert.Equal(t, "short", again.GetCellNote(9, p.ID))
	assert.Equal(t, 2, again.Streak())
}

func TestMutationsRebaseOnPersistedDocument(t *testing.T) {
	dir := t.TempDir()
	first := openTracker(t, fileConfig(dir))
	second := openTracker(t, fileConfig(dir))

	a, err := first.AddProtocol(engine.ProtocolInput{Label: "A"})
	require.NoError(t, err)
	b, err := second.AddProtocol(engine.ProtocolInput{Label: "B"})
	require.NoError(t, err)

	assert.Equal(t, []types.Protocol{a, b}, second.Protocols())
	assert.Equal(t, []types.Protocol{a}, first.Protocols(), "snapshot is only refreshed by its own writes")

	require.NoError(t, first.SetCellValue(1, b.ID, true))
	assert.Equal(t, []types.Protocol{a, b}, first.Protocols())
}

func TestRejectedMutationKeepsDocument(t *testing.T) {
	tr := openTracker(t, fileConfig(t.TempDir()))
	before := tr.Document()

	_, err := tr.AddProtocol(engine.ProtocolInput{Label: "   "})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.ErrorIs(t, tr.SetSleepHours(31, "8"), types.ErrValidation)
	assert.Equal(t, before, tr.Document())
}

func TestSetCurrentMonthSeedsProtocols(t *testing.T) {
	tr := openTracker(t, fileConfig(t.TempDir()))
	p, err := tr.AddProtocol(engine.ProtocolInput{Label: "Read"})
	require.NoError(t, err)
	require.NoError(t, tr.SetCellValue(2, p.ID, true))

	may := types.Month{Year: 2024, Month: time.May}
	require.NoError(t, tr.SetCurrentMonth(may))
	assert.Equal(t, may, tr.CurrentMonth())
	assert.Equal(t, []types.Protocol{p}, tr.Protocols())
	assert.Zero(t, tr.GetCompletionCount(p.ID))
	assert.False(t, tr.Weekly().Available)

	require.NoError(t, tr.SetCurrentMonth(may.Prev()))
	assert.Equal(t, 1, tr.GetCompletionCount(p.ID), "revisiting keeps existing cells")
}

func TestImportData(t *testing.T) {
	tr := openTracker(t, fileConfig(t.TempDir()))
	p, err := tr.AddProtocol(engine.ProtocolInput{Label: "Read"})
	require.NoError(t, err)
	before := tr.Document()

	err = tr.ImportData(`{"profiles": `)
	assert.ErrorIs(t, err, types.ErrImport)
	assert.Equal(t, before, tr.Document())

	text, err := tr.ExportData()
	require.NoError(t, err)
	require.NoError(t, tr.ClearAllData())
	assert.Empty(t, tr.Protocols())

	require.NoError(t, tr.ImportData(text))
	assert.Equal(t, []types.Protocol{p}, tr.Protocols())
}

func TestClearMonthData(t *testing.T) {
	tr := openTracker(t, fileConfig(t.TempDir()))
	p, err := tr.AddProtocol(engine.ProtocolInput{Label: "Read"})
	require.NoError(t, err)
	require.NoError(t, tr.SetCellValue(3, p.ID, true))

	require.NoError(t, tr.ClearMonthData())
	assert.Equal(t, []types.Protocol{p}, tr.Protocols())
	assert.Zero(t, tr.GetCompletionCount(p.ID))
}

func TestPurge(t *testing.T) {
	dir := t.TempDir()
	tr := openTracker(t, fileConfig(dir))
	_, err := tr.AddProtocol(engine.ProtocolInput{Label: "Read"})
	require.NoError(t, err)

	require.NoError(t, tr.Purge())
	assert.Empty(t, tr.Protocols())
	_, err = os.Stat(filepath.Join(dir, types.DefaultStoreKey+".json"))
	assert.True(t, os.IsNotExist(err))
}

func TestProfiles(t *testing.T) {
	tr := openTracker(t, fileConfig(t.TempDir()))
	_, err := tr.AddProtocol(engine.ProtocolInput{Label: "Home habit"})
	require.NoError(t, err)

	require.NoError(t, tr.AddProfile("work", "Work"))
	require.NoError(t, tr.UseProfile("work"))
	assert.Equal(t, "work", tr.ActiveProfile().ID)
	assert.Contains(t, tr.ActiveProfile().Months, "2024-04")
	assert.Empty(t, tr.Protocols())

	ids := []string{}
	for _, p := range tr.Profiles() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"default", "work"}, ids)

	assert.ErrorIs(t, tr.UseProfile("missing"), types.ErrValidation)
	require.NoError(t, tr.SetTheme("light"))
	assert.Equal(t, "light", tr.Theme())
}

func TestSummaries(t *testing.T) {
	tr := openTracker(t, fileConfig(t.TempDir()))
	p, err := tr.AddProtocol(engine.ProtocolInput{Label: "Read"})
	require.NoError(t, err)
	require.NoError(t, tr.FillRange(1, 30, p.ID, true))

	score, tier := tr.Score()
	assert.Equal(t, 100.0, score)
	assert.Equal(t, engine.TierElite, tier)
	assert.Equal(t, 100, tr.Monthly().OverallCompletion)
	assert.Equal(t, 100, tr.Weekly().AverageCompletion)
	assert.Equal(t, 10, tr.Streak())
}

func TestOpenRecoversCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, types.DefaultStoreKey+".json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	tr := openTracker(t, fileConfig(dir), WithLogger(zap.New(core)))

	assert.Empty(t, tr.Protocols())
	assert.Equal(t, 1, logs.FilterMessage("discarding unreadable document").Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = types.DecodeDocument(data)
	assert.NoError(t, err, "slot holds a valid document after recovery")
}
