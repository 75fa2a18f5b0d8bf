package workflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
)

// RoleRule routing for submissions and appeals raised by Role.
type RoleRule struct {
	Role          string   `json:"role" yaml:"role"`
	SubmitToRoles []string `json:"submit_to_roles" yaml:"submit_to_roles"`
	AppealToRoles []string `json:"appeal_to_roles" yaml:"appeal_to_roles"`
}

// RoutingTable immutable per-operation snapshot of the workflow rules.
type RoutingTable struct {
	rules map[string]RoleRule
}

// NewRoutingTable indexes rules by role key. A later rule for the same key wins.
func NewRoutingTable(rules []RoleRule) *RoutingTable {
	t := &RoutingTable{rules: make(map[string]RoleRule, len(rules))}
	for _, r := range rules {
		key := NormalizeRoleKey(r.Role)
		if key == "" {
			continue
		}
		t.rules[key] = RoleRule{
			Role:          strings.TrimSpace(r.Role),
			SubmitToRoles: NormalizeRoleList(r.SubmitToRoles),
			AppealToRoles: NormalizeRoleList(r.AppealToRoles),
		}
	}
	return t
}

// Resolve the ordered reviewer labels for roleKey in flow. Empty means terminal.
func (t *RoutingTable) Resolve(roleKey, flow string) []string {
	if t == nil {
		return nil
	}
	rule, ok := t.rules[NormalizeRoleKey(roleKey)]
	if !ok {
		return nil
	}
	var roles []string
	if flow == model.FlowAppeal {
		roles = rule.AppealToRoles
	} else {
		roles = rule.SubmitToRoles
	}
	return append([]string(nil), roles...)
}

// Rules returns the rules ordered by role key.
func (t *RoutingTable) Rules() []RoleRule {
	keys := make([]string, 0, len(t.rules))
	for k := range t.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]RoleRule, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.rules[k])
	}
	return out
}

// ValidateRules every role a rule names, as owner or as target, must be in registry.
func ValidateRules(rules []RoleRule, registry []string) error {
	known := make(map[string]struct{}, len(registry))
	for _, name := range registry {
		known[NormalizeRoleKey(name)] = struct{}{}
	}

	var missing []string
	seen := make(map[string]struct{})
	check := func(label string) {
		key := NormalizeRoleKey(label)
		if key == "" {
			return
		}
		if _, ok := known[key]; ok {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		missing = append(missing, strings.TrimSpace(label))
	}

	for _, r := range rules {
		if NormalizeRoleKey(r.Role) == "" {
			return fmt.Errorf("%w: rule without a role", ErrInvalidRules)
		}
		check(r.Role)
		for _, s := range r.SubmitToRoles {
			check(s)
		}
		for _, a := range r.AppealToRoles {
			check(a)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRules, strings.Join(missing, ", "))
	}
	return nil
}
