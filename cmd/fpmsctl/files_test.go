package main

import (
	"strings"
	"testing"
)

func TestDecodeRulesFile(t *testing.T) {
	src := `
roles:
  - name: HOD
    level: 2
  - name: Dean of Engineering
    level: 3
rules:
  - role: Faculty
    submit_to_roles: [HOD]
    appeal_to_roles: [Dean of Engineering]
`
	var f rulesFile
	if err := decodeYAML(strings.NewReader(src), &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(f.Roles) != 2 || f.Roles[1].Level != 3 {
		t.Errorf("unexpected roles: %+v", f.Roles)
	}
	if len(f.Rules) != 1 || f.Rules[0].AppealToRoles[0] != "Dean of Engineering" {
		t.Errorf("unexpected rules: %+v", f.Rules)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var f rulesFile
	err := decodeYAML(strings.NewReader("rules:\n  - role: Faculty\n    submit_to: [HOD]\n"), &f)
	if err == nil {
		t.Fatal("expected an error for a misspelled key")
	}
}

func TestFormFileToModel(t *testing.T) {
	src := `
id: f1
title: Annual appraisal
applicable_roles: [Faculty, HOD]
criteria:
  - id: c1
    title: Teaching
    modules:
      - id: m1
        title: Courses
        tasks:
          - {id: t1, title: Lectures, marks: 10}
          - {id: t2, title: Labs, marks: 5}
`
	var f formFile
	if err := decodeYAML(strings.NewReader(src), &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	form := f.toModel()
	if form.FormID != "f1" || len(form.Criteria) != 1 || len(form.ApplicableRoles) != 2 {
		t.Fatalf("unexpected form: %+v", form)
	}
	tasks := form.Criteria[0].Modules[0].Tasks
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[1].Position != 1 || tasks[1].FormID != "f1" || tasks[1].CriteriaID != "c1" || tasks[1].Marks != 5 {
		t.Errorf("task not linked to its parents: %+v", tasks[1])
	}
}
