package types

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
  "schemaVersion": 1,
  "profiles": {
    "default": {
      "id": "default",
      "name": "My Tracker",
      "months": {
        "2024-03": {
          "protocols": [
            {"id": "p1", "label": "Read", "color": "#06b6d4", "weight": 1, "notes": "", "icon": "book"}
          ],
          "cells": {
            "p1::2024-03-01": true,
            "p1::2024-03-02": false,
            "sleep::2024-03-01": "8hr",
            "note::p1::2024-03-01": "chapter 3",
            "p1::2024-03-03": "yes",
            "legacy-key": 42
          },
          "pinned": true
        }
      },
      "avatar": {"kind": "emoji", "value": "x"}
    }
  },
  "settings": {"activeProfile": "default", "theme": "light", "locale": "en"},
  "exportedBy": "trackora"
}`

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, 1, doc.SchemaVersion)
	assert.Equal(t, "light", doc.Settings.Theme)
	require.Contains(t, doc.Profiles, "default")

	month := doc.Profiles["default"].Months["2024-03"]
	require.Len(t, month.Protocols, 1)
	assert.Equal(t, "Read", month.Protocols[0].Label)
	assert.Equal(t, 1.0, month.Protocols[0].Weight)

	assert.Equal(t, Completion(true), month.Cells[CompletionKey("p1", "2024-03-01")])
	assert.Equal(t, Completion(false), month.Cells[CompletionKey("p1", "2024-03-02")])
	assert.Equal(t, Sleep("8hr"), month.Cells[SleepKey("2024-03-01")])
	assert.Equal(t, Note("chapter 3"), month.Cells[NoteKey("p1", "2024-03-01")])

	// Mistyped and malformed entries are kept verbatim, not typed.
	assert.NotContains(t, month.Cells, CompletionKey("p1", "2024-03-03"))
	assert.JSONEq(t, `"yes"`, string(month.RawCells["p1::2024-03-03"]))
	assert.JSONEq(t, `42`, string(month.RawCells["legacy-key"]))

	// Unknown fields survive at every level.
	assert.JSONEq(t, `"trackora"`, string(doc.Extra["exportedBy"]))
	assert.JSONEq(t, `"en"`, string(doc.Settings.Extra["locale"]))
	assert.JSONEq(t, `{"kind":"emoji","value":"x"}`, string(doc.Profiles["default"].Extra["avatar"]))
	assert.JSONEq(t, `true`, string(month.Extra["pinned"]))
	assert.JSONEq(t, `"book"`, string(month.Protocols[0].Extra["icon"]))
}

func TestDecodeDocumentRejectsNonObjects(t *testing.T) {
	for _, text := range []string{"", "   ", "null", "[]", `"text"`, "42", "{not json"} {
		_, err := DecodeDocument([]byte(text))
		assert.ErrorIs(t, err, ErrImport, text)
	}
}

const mistypedDocument = `{
  "schemaVersion": "1",
  "profiles": {
    "default": {
      "id": "default",
      "name": 5,
      "months": {
        "2024-03": {
          "protocols": [{"id": "p1", "label": "Read", "color": ["x"], "weight": "2", "notes": ""}],
          "cells": {"p1::2024-03-01": true}
        },
        "2024-04": "gone",
        "2024-05": {"protocols": ["bad"], "cells": []}
      }
    },
    "travel": 7
  },
  "settings": {"activeProfile": "default", "theme": "light"}
}`

func TestDecodeDocumentToleratesMistypedFields(t *testing.T) {
	doc, err := DecodeDocument([]byte(mistypedDocument))
	require.NoError(t, err)

	assert.Equal(t, 1, doc.SchemaVersion)
	p := doc.Profiles[DefaultProfileID]
	assert.Equal(t, "5", p.Name)

	march := p.Months["2024-03"]
	require.Len(t, march.Protocols, 1)
	assert.Equal(t, 2.0, march.Protocols[0].Weight)
	assert.Empty(t, march.Protocols[0].Color)
	assert.JSONEq(t, `["x"]`, string(march.Protocols[0].Extra["color"]))
	assert.Equal(t, Completion(true), march.Cells[CompletionKey("p1", "2024-03-01")])

	assert.JSONEq(t, `"gone"`, string(p.RawMonths["2024-04"]))
	assert.NotContains(t, p.Months, "2024-04")

	may := p.Months["2024-05"]
	assert.Empty(t, may.Protocols)
	assert.JSONEq(t, `["bad"]`, string(may.Extra["protocols"]))
	assert.JSONEq(t, `[]`, string(may.Extra["cells"]))

	assert.JSONEq(t, `7`, string(doc.RawProfiles["travel"]))
	assert.NotContains(t, doc.Profiles, "travel")
}

func TestMistypedFieldsAreWrittenBack(t *testing.T) {
	doc, err := DecodeDocument([]byte(mistypedDocument))
	require.NoError(t, err)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
	  "schemaVersion": 1,
	  "profiles": {
	    "default": {
	      "id": "default",
	      "name": "5",
	      "months": {
	        "2024-03": {
	          "protocols": [{"id": "p1", "label": "Read", "color": ["x"], "weight": 2, "notes": ""}],
	          "cells": {"p1::2024-03-01": true}
	        },
	        "2024-04": "gone",
	        "2024-05": {"protocols": ["bad"], "cells": []}
	      }
	    },
	    "travel": 7
	  },
	  "settings": {"activeProfile": "default", "theme": "light"}
	}`, string(out))

	again, err := DecodeDocument(out)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, again, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("document changed across encode/decode (-want +got):\n%s", diff)
	}
}

func TestScalarConversion(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		weight float64
		label  string
		raw    []string
	}{
		{"number as text", `{"weight": "2.5", "label": "Run"}`, 2.5, "Run", nil},
		{"text as number", `{"weight": 1, "label": 42}`, 1, "42", nil},
		{"boolean label", `{"label": true}`, 0, "true", nil},
		{"boolean weight stays raw", `{"weight": true}`, 0, "", []string{"weight"}},
		{"non-numeric text stays raw", `{"weight": "heavy"}`, 0, "", []string{"weight"}},
		{"object label stays raw", `{"label": {"en": "Run"}}`, 0, "", []string{"label"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Protocol
			require.NoError(t, json.Unmarshal([]byte(tt.text), &p))
			assert.Equal(t, tt.weight, p.Weight)
			assert.Equal(t, tt.label, p.Label)
			for _, name := range tt.raw {
				assert.Contains(t, p.Extra, name)
			}
			if tt.raw == nil {
				assert.Empty(t, p.Extra)
			}
		})
	}
}

func TestSchemaVersionMustBeIntegral(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"schemaVersion": 1.5}`))
	require.NoError(t, err)
	assert.Zero(t, doc.SchemaVersion)
	assert.JSONEq(t, `1.5`, string(doc.Extra["schemaVersion"]))

	doc, err = DecodeDocument([]byte(`{"schemaVersion": 1.0}`))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.SchemaVersion)
	assert.Empty(t, doc.Extra)
}

func TestNormalizeReplacesUndecodedFields(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{
	  "schemaVersion": "next",
	  "profiles": "nope",
	  "settings": {"theme": {"mode": "auto"}, "activeProfile": ["x"]}
	}`))
	require.NoError(t, err)
	require.Contains(t, doc.Extra, "profiles")

	norm := Normalize(doc)
	assert.Equal(t, CurrentSchemaVersion, norm.SchemaVersion)
	assert.Empty(t, norm.Extra)
	assert.Empty(t, norm.Settings.Extra)
	assert.Equal(t, DefaultTheme, norm.Settings.Theme)
	assert.Contains(t, norm.Profiles, DefaultProfileID)

	out, err := json.Marshal(norm)
	require.NoError(t, err)
	again, err := DecodeDocument(out)
	require.NoError(t, err)
	if diff := cmp.Diff(norm, Normalize(again), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("normalized document changed across encode/decode (-want +got):\n%s", diff)
	}
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc, err := DecodeDocument([]byte(sampleDocument))
	require.NoError(t, err)

	out, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	assert.JSONEq(t, sampleDocument, string(out))

	again, err := DecodeDocument(out)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, again, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("document changed across encode/decode (-want +got):\n%s", diff)
	}
}

func TestMonthDataMarshalEmitsEmptyCollections(t *testing.T) {
	out, err := json.Marshal(MonthData{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"protocols": [], "cells": {}}`, string(out))
}

func TestSetCellReplacesRawEntry(t *testing.T) {
	doc, err := DecodeDocument([]byte(sampleDocument))
	require.NoError(t, err)
	month := doc.Profiles["default"].Months["2024-03"]

	month.SetCell(CompletionKey("p1", "2024-03-03"), Completion(true))

	assert.NotContains(t, month.RawCells, "p1::2024-03-03")
	out, err := json.Marshal(month)
	require.NoError(t, err)
	var decoded MonthData
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, Completion(true), decoded.Cells[CompletionKey("p1", "2024-03-03")])
}

func TestCloneIsDeep(t *testing.T) {
	doc, err := DecodeDocument([]byte(sampleDocument))
	require.NoError(t, err)

	clone := doc.Clone()
	month := clone.Profiles["default"].Months["2024-03"]
	month.Protocols[0].Label = "changed"
	month.Cells[SleepKey("2024-03-09")] = Sleep("5hr")
	clone.Profiles["default"].Months["2024-03"] = month

	orig := doc.Profiles["default"].Months["2024-03"]
	assert.Equal(t, "Read", orig.Protocols[0].Label)
	assert.NotContains(t, orig.Cells, SleepKey("2024-03-09"))
}
