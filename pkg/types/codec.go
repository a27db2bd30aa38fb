package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/spf13/cast"
)

// JSON field names of the persisted document.
const (
	fieldSchemaVersion = "schemaVersion"
	fieldProfiles      = "profiles"
	fieldSettings      = "settings"
	fieldActiveProfile = "activeProfile"
	fieldTheme         = "theme"
	fieldID            = "id"
	fieldName          = "name"
	fieldMonths        = "months"
	fieldProtocols     = "protocols"
	fieldCells         = "cells"
	fieldLabel         = "label"
	fieldColor         = "color"
	fieldWeight        = "weight"
	fieldNotes         = "notes"
)

// DecodeDocument parses persisted or imported text into a document. The
// result is not normalized. Text that is not a JSON object returns an
// error wrapping ErrImport.
//
// A known field holding a value of the wrong type does not fail the
// decode. Scalars are converted when the value converts cleanly ("2" for
// a weight, 1.0 for the schema version). Anything else is kept raw, in
// Extra or in the RawProfiles and RawMonths side maps, and written back
// on encode.
func DecodeDocument(data []byte) (TrackerDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return TrackerDocument{}, fmt.Errorf("%w: document must be a JSON object", ErrImport)
	}
	var doc TrackerDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return TrackerDocument{}, fmt.Errorf("%w: %v", ErrImport, err)
	}
	return doc, nil
}

// MarshalJSON implements json.Marshaler.
func (d TrackerDocument) MarshalJSON() ([]byte, error) {
	return encodeObject(d.Extra, map[string]any{
		fieldSchemaVersion: d.SchemaVersion,
		fieldProfiles:      mergeEntries(d.Profiles, d.RawProfiles),
		fieldSettings:      d.Settings,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *TrackerDocument) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil || obj == nil {
		return err
	}
	takeField(obj, fieldSchemaVersion, &d.SchemaVersion)
	d.Profiles, d.RawProfiles = takeEntries[Profile](obj, fieldProfiles)
	takeField(obj, fieldSettings, &d.Settings)
	d.Extra = restFields(obj)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Settings) MarshalJSON() ([]byte, error) {
	return encodeObject(s.Extra, map[string]any{
		fieldActiveProfile: s.ActiveProfile,
		fieldTheme:         s.Theme,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Settings) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil || obj == nil {
		return err
	}
	takeField(obj, fieldActiveProfile, &s.ActiveProfile)
	takeField(obj, fieldTheme, &s.Theme)
	s.Extra = restFields(obj)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Profile) MarshalJSON() ([]byte, error) {
	months := mergeEntries(p.Months, p.RawMonths)
	if months == nil {
		months = map[string]any{}
	}
	return encodeObject(p.Extra, map[string]any{
		fieldID:     p.ID,
		fieldName:   p.Name,
		fieldMonths: months,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Profile) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil || obj == nil {
		return err
	}
	takeField(obj, fieldID, &p.ID)
	takeField(obj, fieldName, &p.Name)
	p.Months, p.RawMonths = takeEntries[MonthData](obj, fieldMonths)
	p.Extra = restFields(obj)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m MonthData) MarshalJSON() ([]byte, error) {
	protocols := m.Protocols
	if protocols == nil {
		protocols = []Protocol{}
	}
	cells := make(map[string]json.RawMessage, len(m.Cells)+len(m.RawCells))
	for k, v := range m.RawCells {
		cells[k] = v
	}
	for k, c := range m.Cells {
		var v any = c.Text
		if k.Kind == CellCompletion {
			v = c.Completed
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		cells[k.String()] = b
	}
	return encodeObject(m.Extra, map[string]any{
		fieldProtocols: protocols,
		fieldCells:     cells,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *MonthData) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil || obj == nil {
		return err
	}
	// A protocol list with a non-object entry stays raw as a whole.
	var protocols []Protocol
	if takeField(obj, fieldProtocols, &protocols) {
		m.Protocols = protocols
	}
	var cells map[string]json.RawMessage
	takeField(obj, fieldCells, &cells)
	m.Cells = make(CellMap, len(cells))
	for raw, v := range cells {
		k, c, ok := decodeCell(raw, v)
		if !ok {
			if m.RawCells == nil {
				m.RawCells = map[string]json.RawMessage{}
			}
			m.RawCells[raw] = compact(v)
			continue
		}
		m.Cells[k] = c
	}
	m.Extra = restFields(obj)
	return nil
}

// decodeCell types a persisted cell entry. Completion keys need a boolean
// value; sleep and note keys need a string.
func decodeCell(raw string, v json.RawMessage) (CellKey, Cell, bool) {
	k, ok := ParseCellKey(raw)
	if !ok {
		return CellKey{}, Cell{}, false
	}
	switch k.Kind {
	case CellCompletion:
		var b bool
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) || json.Unmarshal(v, &b) != nil {
			return CellKey{}, Cell{}, false
		}
		return k, Completion(b), true
	default:
		var s string
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) || json.Unmarshal(v, &s) != nil {
			return CellKey{}, Cell{}, false
		}
		return k, Cell{Kind: k.Kind, Text: s}, true
	}
}

// MarshalJSON implements json.Marshaler.
func (p Protocol) MarshalJSON() ([]byte, error) {
	return encodeObject(p.Extra, map[string]any{
		fieldID:     p.ID,
		fieldLabel:  p.Label,
		fieldColor:  p.Color,
		fieldWeight: p.Weight,
		fieldNotes:  p.Notes,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Protocol) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil || obj == nil {
		return err
	}
	for name, dst := range map[string]any{
		fieldID:     &p.ID,
		fieldLabel:  &p.Label,
		fieldColor:  &p.Color,
		fieldWeight: &p.Weight,
		fieldNotes:  &p.Notes,
	} {
		takeField(obj, name, dst)
	}
	p.Extra = restFields(obj)
	return nil
}

// decodeObject splits a JSON object into its raw fields. JSON null
// decodes to a nil map so the target keeps its zero value.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// takeField decodes and removes the named field when it is present and
// reports whether it did. A value of the wrong type is converted into a
// scalar destination when it converts cleanly; otherwise the field stays
// in obj and restFields keeps it raw.
func takeField(obj map[string]json.RawMessage, name string, dst any) bool {
	raw, ok := obj[name]
	if !ok {
		return false
	}
	if json.Unmarshal(raw, dst) != nil && !convertScalar(raw, dst) {
		return false
	}
	delete(obj, name)
	return true
}

// convertScalar stores a JSON string, number or boolean into a string,
// float64 or int destination. Numbers arrive as strings and text as
// numbers in hand-edited files; an int only takes integral values.
func convertScalar(raw json.RawMessage, dst any) bool {
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return false
	}
	switch v.(type) {
	case string, float64, bool:
	default:
		return false
	}
	switch d := dst.(type) {
	case *string:
		s, err := cast.ToStringE(v)
		if err != nil {
			return false
		}
		*d = s
	case *float64:
		if _, isBool := v.(bool); isBool {
			return false
		}
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
		*d = f
	case *int:
		if _, isBool := v.(bool); isBool {
			return false
		}
		f, err := cast.ToFloat64E(v)
		if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return false
		}
		*d = int(f)
	default:
		return false
	}
	return true
}

// takeEntries decodes an object-valued field entry by entry. Entries that
// do not decode are returned raw so they survive a rewrite. A field that
// is not an object stays in obj.
func takeEntries[T any](obj map[string]json.RawMessage, name string) (map[string]T, map[string]json.RawMessage) {
	var entries map[string]json.RawMessage
	if !takeField(obj, name, &entries) || entries == nil {
		return nil, nil
	}
	typed := make(map[string]T, len(entries))
	var raw map[string]json.RawMessage
	for k, v := range entries {
		var t T
		if err := json.Unmarshal(v, &t); err != nil {
			if raw == nil {
				raw = map[string]json.RawMessage{}
			}
			raw[k] = compact(v)
			continue
		}
		typed[k] = t
	}
	return typed, raw
}

// mergeEntries is the encode side of takeEntries. Typed entries win over
// raw ones with the same key.
func mergeEntries[T any](typed map[string]T, raw map[string]json.RawMessage) map[string]any {
	if typed == nil && raw == nil {
		return nil
	}
	out := make(map[string]any, len(typed)+len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for k, v := range typed {
		out[k] = v
	}
	return out
}

// restFields returns the fields left after the known ones were taken,
// compacted so re-encoding does not depend on the original layout.
func restFields(obj map[string]json.RawMessage) map[string]json.RawMessage {
	if len(obj) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(obj))
	for k, v := range obj {
		out[k] = compact(v)
	}
	return out
}

func compact(v json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return append(json.RawMessage(nil), v...)
	}
	return json.RawMessage(buf.Bytes())
}

// encodeObject writes known fields over extra ones. An extra field named
// like an empty known field holds a value that did not decode, and is
// written back unchanged. Map keys are sorted by encoding/json, so the
// output is deterministic.
func encodeObject(extra map[string]json.RawMessage, known map[string]any) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(extra)+len(known))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range known {
		if _, raw := extra[k]; raw && isEmpty(v) {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return json.Marshal(out)
}

func isEmpty(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	default:
		return rv.IsZero()
	}
}

// dropRaw removes names from m and returns nil once m is empty.
func dropRaw(m map[string]json.RawMessage, names ...string) map[string]json.RawMessage {
	for _, n := range names {
		delete(m, n)
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
