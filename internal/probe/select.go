package probe

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Selection narrows a matrix. No groups means every group; an empty filter
// matches every name.
type Selection struct {
	Groups []Group
	Filter string
}

// Select returns the probes matching sel, keeping matrix order.
func Select(probes []Probe, sel Selection) ([]Probe, error) {
	if sel.Filter != "" && !doublestar.ValidatePattern(sel.Filter) {
		return nil, fmt.Errorf("invalid filter pattern %q", sel.Filter)
	}

	var out []Probe
	for _, p := range probes {
		if !inGroups(p.Group, sel.Groups) {
			continue
		}
		if sel.Filter != "" {
			ok, err := doublestar.Match(sel.Filter, p.Name)
			if err != nil {
				return nil, fmt.Errorf("match %q: %w", sel.Filter, err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func inGroups(g Group, groups []Group) bool {
	if len(groups) == 0 {
		return true
	}
	for _, want := range groups {
		if g == want {
			return true
		}
	}
	return false
}
