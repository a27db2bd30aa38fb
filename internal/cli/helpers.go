package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackora/internal/tracker"
	"github.com/mesh-intelligence/trackora/pkg/types"
)

// printJSON writes v as indented JSON followed by a newline.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out(cmd), string(data))
	return err
}

// parseDay parses a day-of-month argument.
func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: day %q is not a number", errUsage, s)
	}
	return day, nil
}

// resolveProtocol finds a protocol of the current month by exact id, or
// by a label that matches exactly one protocol ignoring case.
func resolveProtocol(t *tracker.Tracker, ref string) (types.Protocol, error) {
	protocols := t.Protocols()
	for _, p := range protocols {
		if p.ID == ref {
			return p, nil
		}
	}

	var matches []types.Protocol
	for _, p := range protocols {
		if strings.EqualFold(strings.TrimSpace(p.Label), strings.TrimSpace(ref)) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return types.Protocol{}, fmt.Errorf("%w: %q in %s", types.ErrProtocolNotFound, ref, t.CurrentMonth())
	default:
		return types.Protocol{}, fmt.Errorf("%w: label %q matches %d protocols, use the id", errUsage, ref, len(matches))
	}
}
