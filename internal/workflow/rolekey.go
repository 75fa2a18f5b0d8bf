package workflow

import "strings"

// Canonical keys of the synonym families.
const (
	RoleKeyPrinciple     = "principle"
	RoleKeyVicePrinciple = "viceprinciple"
	RoleKeyCommittee     = "committee"
	RoleKeyDean          = "dean"
	RoleKeyHOD           = "hod"
	RoleKeyFaculty       = "faculty"
	RoleKeySuperAdmin    = "superadmin"
)

var roleKeySynonyms = map[string]string{
	"principal":     RoleKeyPrinciple,
	"principle":     RoleKeyPrinciple,
	"admin":         RoleKeyPrinciple,
	"viceprincipal": RoleKeyVicePrinciple,
	"viceprinciple": RoleKeyVicePrinciple,
	"committee":     RoleKeyCommittee,
	"commitee":      RoleKeyCommittee,
}

// NormalizeRoleKey canonicalizes a free-text role label into a comparison key.
// Total: unknown labels come back lowercased with everything outside [a-z0-9]
// removed. Dean labels keep their own key ("Dean of Science" -> "deanofscience").
func NormalizeRoleKey(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	key := b.String()
	if canonical, ok := roleKeySynonyms[key]; ok {
		return canonical
	}
	return key
}

// IsDeanRole reports whether label names a dean role of any kind.
func IsDeanRole(label string) bool {
	return strings.HasPrefix(NormalizeRoleKey(label), RoleKeyDean)
}

// RoleAdmits reports whether an actor with actorKey satisfies a grant to
// allowed. Both are role keys; the generic dean key admits every dean.
func RoleAdmits(allowed, actorKey string) bool {
	if actorKey == "" {
		return false
	}
	return allowed == actorKey || (allowed == RoleKeyDean && IsDeanRole(actorKey))
}

// DisplayRole the label shown to users for a role.
func DisplayRole(label string) string {
	switch NormalizeRoleKey(label) {
	case RoleKeyPrinciple:
		return "principle"
	case RoleKeyVicePrinciple:
		return "vice principle"
	case RoleKeyCommittee:
		return "committee"
	}
	return strings.TrimSpace(label)
}

// InferRoleFromEmail last-resort role guess from address conventions.
func InferRoleFromEmail(email string) string {
	e := strings.ToLower(strings.TrimSpace(email))
	switch {
	case e == "":
		return ""
	case strings.Contains(e, "superadmin"):
		return RoleKeySuperAdmin
	case strings.Contains(e, "committee"):
		return RoleKeyCommittee
	case strings.Contains(e, "principle"), strings.Contains(e, "principal"), strings.Contains(e, "admin"):
		return RoleKeyPrinciple
	case strings.Contains(e, "dean"):
		return RoleKeyDean
	case strings.Contains(e, "hod"):
		return RoleKeyHOD
	default:
		return RoleKeyFaculty
	}
}

// NormalizeRoleList trims labels, drops empties and duplicate keys, keeps order.
func NormalizeRoleList(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		key := NormalizeRoleKey(l)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}
