package catalog

import (
	"context"
	"strings"
)

// ComponentDef - a pay component definition usable in ad-hoc adjustments.
type ComponentDef struct {
	ComponentID   string `json:"component_id"`
	ComponentName string `json:"component_name"`
}

// Source is the external catalog read contract.
type Source interface {
	Components(ctx context.Context) ([]ComponentDef, error)
}

// protectedNames are computed automatically by the calculation engine and
// must never be double-entered as manual adjustments.
var protectedNames = []string{
	"basic salary",
	"housing allowance",
	"dearness allowance",
	"provident fund",
}

// Protected reports whether a component name is on the denylist.
func Protected(name string) bool {
	folded := strings.ToLower(strings.TrimSpace(name))
	for _, p := range protectedNames {
		if folded == p {
			return true
		}
	}
	return false
}
