package workflow

import "strings"

// Where an actor's role came from, highest precedence first.
const (
	RoleSourceClaim   = "claim"
	RoleSourceProfile = "profile"
	RoleSourceEmail   = "email"
)

// Actor the resolved identity acting on a submission.
type Actor struct {
	UserID     string `json:"user_id"`
	UID        string `json:"uid"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	RoleKey    string `json:"role_key"`
	RoleSource string `json:"role_source"`
	College    string `json:"college"`
	Department string `json:"department"`
}

// RoleCandidate one source in the actor role precedence chain.
type RoleCandidate struct {
	Source string
	Label  string
}

// ResolveActorRole picks the first candidate carrying a usable role label.
// Candidates are expected in precedence order: claim, profile, email.
func ResolveActorRole(candidates ...RoleCandidate) (label, key, source string) {
	for _, c := range candidates {
		l := strings.TrimSpace(c.Label)
		if k := NormalizeRoleKey(l); k != "" {
			return DisplayRole(l), k, c.Source
		}
	}
	return "", "", ""
}

// RefineRole swaps a generic dean / principle key for the profile's specific
// label when the profile carries one ("dean" -> "Dean of Engineering").
func RefineRole(label, key, profileLabel string) (string, string) {
	profileKey := NormalizeRoleKey(profileLabel)
	if profileKey == "" || profileKey == key {
		return label, key
	}
	switch {
	case key == RoleKeyDean && IsDeanRole(profileLabel):
		return strings.TrimSpace(profileLabel), profileKey
	case (key == RoleKeyPrinciple || key == RoleKeyVicePrinciple) &&
		(profileKey == RoleKeyPrinciple || profileKey == RoleKeyVicePrinciple):
		return DisplayRole(profileLabel), profileKey
	}
	return label, key
}

// Owns reports whether the actor is the submission's faculty owner.
// Any of the stored identifiers may match, case-insensitively.
func (a Actor) Owns(facultyID, facultyUID, facultyEmail string) bool {
	mine := []string{a.UserID, a.UID, a.Email}
	theirs := []string{facultyID, facultyUID, facultyEmail}
	for _, m := range mine {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		for _, t := range theirs {
			if m == strings.ToLower(strings.TrimSpace(t)) {
				return true
			}
		}
	}
	return false
}
