package workflow

import "testing"

func TestResolveActorRole_Precedence(t *testing.T) {
	label, key, source := ResolveActorRole(
		RoleCandidate{Source: RoleSourceClaim, Label: "HOD"},
		RoleCandidate{Source: RoleSourceProfile, Label: "faculty"},
		RoleCandidate{Source: RoleSourceEmail, Label: InferRoleFromEmail("jane@college.edu")},
	)
	if key != RoleKeyHOD || source != RoleSourceClaim || label != "HOD" {
		t.Fatalf("got (%q, %q, %q)", label, key, source)
	}

	_, key, source = ResolveActorRole(
		RoleCandidate{Source: RoleSourceClaim, Label: " "},
		RoleCandidate{Source: RoleSourceProfile, Label: "Principal"},
	)
	if key != RoleKeyPrinciple || source != RoleSourceProfile {
		t.Fatalf("profile fallback got (%q, %q)", key, source)
	}

	_, key, source = ResolveActorRole(
		RoleCandidate{Source: RoleSourceClaim},
		RoleCandidate{Source: RoleSourceProfile},
		RoleCandidate{Source: RoleSourceEmail, Label: InferRoleFromEmail("hod.cse@college.edu")},
	)
	if key != RoleKeyHOD || source != RoleSourceEmail {
		t.Fatalf("email fallback got (%q, %q)", key, source)
	}

	if _, key, _ := ResolveActorRole(); key != "" {
		t.Fatalf("no candidates should resolve empty, got %q", key)
	}
}

func TestRefineRole(t *testing.T) {
	label, key := RefineRole("dean", RoleKeyDean, "Dean of Engineering")
	if key != "deanofengineering" || label != "Dean of Engineering" {
		t.Fatalf("dean refine got (%q, %q)", label, key)
	}

	label, key = RefineRole("principle", RoleKeyPrinciple, "Vice Principal")
	if key != RoleKeyVicePrinciple || label != "vice principle" {
		t.Fatalf("principle refine got (%q, %q)", label, key)
	}

	label, key = RefineRole("hod", RoleKeyHOD, "Dean of Engineering")
	if key != RoleKeyHOD || label != "hod" {
		t.Fatalf("unrelated profile must not refine, got (%q, %q)", label, key)
	}

	if _, key = RefineRole("dean", RoleKeyDean, ""); key != RoleKeyDean {
		t.Fatalf("empty profile changed key to %q", key)
	}
}

func TestActorOwns(t *testing.T) {
	a := Actor{UserID: "u-1", UID: "firebase-1", Email: "Jane@College.edu"}
	if !a.Owns("u-1", "", "") {
		t.Error("match on user id")
	}
	if !a.Owns("other", "FIREBASE-1", "") {
		t.Error("match on uid, case-insensitive")
	}
	if !a.Owns("", "", "jane@college.edu") {
		t.Error("match on email")
	}
	if a.Owns("u-2", "firebase-2", "bob@college.edu") {
		t.Error("stranger matched")
	}
	if (Actor{}).Owns("", "", "") {
		t.Error("empty identifiers must never match")
	}
}
