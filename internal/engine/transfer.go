package engine

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/trackora/pkg/types"
)

// ExportData encodes the whole document as indented JSON. Object keys are
// sorted, so equal documents export identically.
func ExportData(doc types.TrackerDocument) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return string(data), nil
}

// ImportData parses exported text into a normalized document. Text that
// does not parse returns an error wrapping types.ErrImport; the caller's
// document is not involved.
func ImportData(text string) (types.TrackerDocument, error) {
	doc, err := types.DecodeDocument([]byte(text))
	if err != nil {
		return types.TrackerDocument{}, err
	}
	return types.Normalize(doc), nil
}
