// Package tracker owns the live tracker document for one process. It pairs
// the store adapter with a month cursor and routes every call through the
// pure engine: mutations run as one read-transform-write cycle against the
// persisted document, and queries read the last committed snapshot.
package tracker

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/trackora/internal/engine"
	"github.com/mesh-intelligence/trackora/internal/store"
	"github.com/mesh-intelligence/trackora/pkg/types"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// WithClock sets the source of the current time. It decides the initial
// month cursor and the day streaks and weekly summaries end on.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// Tracker is the stateful front of the engine.
type Tracker struct {
	mu    sync.Mutex
	slot  types.Slot
	store *store.Store
	key   string
	doc   types.TrackerDocument
	month types.Month
	now   func() time.Time
	log   *zap.Logger
}

// Open attaches the slot described by cfg and loads the tracker document
// from it. The cursor starts on the current month, which is created if the
// document has no data for it yet. Close releases the slot.
func Open(cfg types.Config, opts ...Option) (*Tracker, error) {
	slot, err := store.OpenSlot(cfg)
	if err != nil {
		return nil, err
	}
	t, err := New(slot, cfg.Key(), opts...)
	if err != nil {
		slot.Detach()
		return nil, err
	}
	return t, nil
}

// New returns a Tracker over an attached slot. The caller keeps ownership
// of the slot unless it calls Close.
func New(slot types.Slot, key string, opts ...Option) (*Tracker, error) {
	if err := types.ValidateKey(key); err != nil {
		return nil, err
	}
	t := &Tracker{
		slot: slot,
		key:  key,
		now:  time.Now,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.Named("tracker")
	t.store = store.New(slot, t.log)
	t.month = types.MonthOf(t.now())
	t.doc = types.Normalize(t.store.Load(t.key, types.DefaultDocument()))

	if err := t.SetCurrentMonth(t.month); err != nil {
		return nil, err
	}
	t.log.Debug("tracker opened",
		zap.String("key", key),
		zap.String("month", t.month.Key()),
		zap.Int("profiles", len(t.doc.Profiles)))
	return t, nil
}

// Close detaches the underlying slot.
func (t *Tracker) Close() error {
	return t.slot.Detach()
}

// mutation computes a new document from the freshest persisted one,
// addressed at the current profile and month.
type mutation func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error)

// apply runs m as one read-transform-write cycle and caches the result.
func (t *Tracker) apply(op string, m mutation) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applyLocked(op, m)
}

func (t *Tracker) applyLocked(op string, m mutation) error {
	doc, err := t.store.Update(t.key, types.DefaultDocument(), func(cur types.TrackerDocument) (types.TrackerDocument, error) {
		cur = types.Normalize(cur)
		return m(cur, engine.ResolveTarget(cur, t.month))
	})
	if err != nil {
		t.log.Debug("mutation rejected", zap.String("op", op), zap.Error(err))
		return err
	}
	t.doc = doc
	t.log.Debug("mutation applied", zap.String("op", op), zap.String("month", t.month.Key()))
	return nil
}

// snapshot returns the cached document and the current target.
func (t *Tracker) snapshot() (types.TrackerDocument, engine.Target) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doc, engine.ResolveTarget(t.doc, t.month)
}

// CurrentMonth returns the month cursor.
func (t *Tracker) CurrentMonth() types.Month {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.month
}

// SetCurrentMonth moves the cursor and makes sure the month exists in the
// active profile.
func (t *Tracker) SetCurrentMonth(m types.Month) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.month = m
	return t.applyLocked("ensure-month", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		return engine.EnsureMonth(doc, target.ProfileID, target.Month.Key()), nil
	})
}

// Today returns the current time from the tracker's clock.
func (t *Tracker) Today() time.Time {
	return t.now()
}

// Document returns a deep copy of the current document.
func (t *Tracker) Document() types.TrackerDocument {
	doc, _ := t.snapshot()
	return doc.Clone()
}

// AddProtocol appends a protocol to the current month.
func (t *Tracker) AddProtocol(in engine.ProtocolInput) (types.Protocol, error) {
	var added types.Protocol
	err := t.apply("add-protocol", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		out, p, err := engine.AddProtocol(doc, target, in)
		added = p
		return out, err
	})
	return added, err
}

// EditProtocol updates a protocol of the current month in place.
func (t *Tracker) EditProtocol(id string, in engine.ProtocolInput) error {
	return t.apply("edit-protocol", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		return engine.EditProtocol(doc, target, id, in)
	})
}

// RemoveProtocol deletes a protocol and its cells from the current month.
func (t *Tracker) RemoveProtocol(id string) error {
	return t.apply("remove-protocol", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		return engine.RemoveProtocol(doc, target, id)
	})
}

// SetCellValue records a completion for day of the current month.
func (t *Tracker) SetCellValue(day int, protocolID string, value bool) error {
	return t.apply("set-cell", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		return engine.SetCellValue(doc, target, day, protocolID, value)
	})
}

// ToggleCell flips a completion and returns the new value.
func (t *Tracker) ToggleCell(day int, protocolID string) (bool, error) {
	var value bool
	err := t.apply("toggle-cell", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		out, err := engine.ToggleCell(doc, target, day, protocolID)
		value = engine.GetCellValue(out, target, day, protocolID)
		return out, err
	})
	return value, err
}

// FillRange sets a completion on every day from one endpoint to the other.
func (t *Tracker) FillRange(from, to int, protocolID string, value bool) error {
	return t.apply("fill-range", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		return engine.SetCellRange(doc, target, from, to, protocolID, value)
	})
}

// SetSleepHours stores the sleep label of day.
func (t *Tracker) SetSleepHours(day int, label string) error {
	return t.apply("set-sleep", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		return engine.SetSleepHours(doc, target, day, label)
	})
}

// SetCellNote stores a protocol's note for day.
func (t *Tracker) SetCellNote(day int, protocolID, note string) error {
	return t.apply("set-note", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		return engine.SetCellNote(doc, target, day, protocolID, note)
	})
}

// ClearMonthData removes every cell of the current month.
func (t *Tracker) ClearMonthData() error {
	return t.apply("clear-month", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		return engine.ClearMonthData(doc, target)
	})
}

// ClearAllData resets the document to its default skeleton.
func (t *Tracker) ClearAllData() error {
	return t.apply("clear-all", func(types.TrackerDocument, engine.Target) (types.TrackerDocument, error) {
		return engine.ClearAllData(), nil
	})
}

// Purge deletes the persisted document. The tracker continues with the
// default skeleton.
func (t *Tracker) Purge() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Purge(t.key); err != nil {
		return err
	}
	t.doc = types.Normalize(types.DefaultDocument())
	return nil
}

// ExportData encodes the current document.
func (t *Tracker) ExportData() (string, error) {
	doc, _ := t.snapshot()
	return engine.ExportData(doc)
}

// ImportData replaces the whole document with one parsed from text. Text
// that does not parse leaves the document untouched and returns an error
// wrapping types.ErrImport.
func (t *Tracker) ImportData(text string) error {
	imported, err := engine.ImportData(text)
	if err != nil {
		return err
	}
	return t.apply("import", func(types.TrackerDocument, engine.Target) (types.TrackerDocument, error) {
		return imported, nil
	})
}

// AddProfile creates an empty profile.
func (t *Tracker) AddProfile(id, name string) error {
	return t.apply("add-profile", func(doc types.TrackerDocument, _ engine.Target) (types.TrackerDocument, error) {
		return engine.AddProfile(doc, id, name)
	})
}

// UseProfile makes id the active profile and makes sure it has the
// current month.
func (t *Tracker) UseProfile(id string) error {
	return t.apply("use-profile", func(doc types.TrackerDocument, target engine.Target) (types.TrackerDocument, error) {
		out, err := engine.SetActiveProfile(doc, id)
		if err != nil {
			return doc, err
		}
		return engine.EnsureMonth(out, id, target.Month.Key()), nil
	})
}

// ActiveProfile returns the profile the tracker addresses.
func (t *Tracker) ActiveProfile() types.Profile {
	doc, target := t.snapshot()
	return doc.Profiles[target.ProfileID].Clone()
}

// Profiles returns every profile ordered by id.
func (t *Tracker) Profiles() []types.Profile {
	doc, _ := t.snapshot()
	out := make([]types.Profile, 0, len(doc.Profiles))
	for _, p := range doc.Profiles {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetTheme records the display theme.
func (t *Tracker) SetTheme(theme string) error {
	return t.apply("set-theme", func(doc types.TrackerDocument, _ engine.Target) (types.TrackerDocument, error) {
		return engine.SetTheme(doc, theme)
	})
}

// Theme returns the display theme.
func (t *Tracker) Theme() string {
	doc, _ := t.snapshot()
	return doc.Settings.Theme
}
