package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
)

// rulesFile role registry plus routing rules.
//
//	roles:
//	  - {name: HOD, level: 2}
//	rules:
//	  - role: Faculty
//	    submit_to_roles: [HOD]
//	    appeal_to_roles: [Dean of Engineering]
type rulesFile struct {
	Roles []service.RoleSeed  `yaml:"roles"`
	Rules []workflow.RoleRule `yaml:"rules"`
}

// formFile rubric tree as authored by the examination cell.
type formFile struct {
	ID              string   `yaml:"id"`
	Title           string   `yaml:"title"`
	ApplicableRoles []string `yaml:"applicable_roles"`
	Criteria        []struct {
		ID      string `yaml:"id"`
		Title   string `yaml:"title"`
		Modules []struct {
			ID    string `yaml:"id"`
			Title string `yaml:"title"`
			Tasks []struct {
				ID    string  `yaml:"id"`
				Title string  `yaml:"title"`
				Marks float64 `yaml:"marks"`
			} `yaml:"tasks"`
		} `yaml:"modules"`
	} `yaml:"criteria"`
}

type usersFile struct {
	Users []service.UserSeed `yaml:"users"`
}

func decodeYAML(r io.Reader, out interface{}) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func readYAML(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return decodeYAML(f, out)
}

// toModel flattens the tree into rows, positions following file order.
func (f *formFile) toModel() *model.Form {
	form := &model.Form{FormID: f.ID, Title: f.Title, ApplicableRoles: f.ApplicableRoles}
	for ci, c := range f.Criteria {
		criteria := model.FormCriteria{CriteriaID: c.ID, FormID: f.ID, Title: c.Title, Position: ci}
		for mi, m := range c.Modules {
			module := model.FormModule{ModuleID: m.ID, CriteriaID: c.ID, Title: m.Title, Position: mi}
			for ti, t := range m.Tasks {
				module.Tasks = append(module.Tasks, model.FormTask{
					TaskID:     t.ID,
					ModuleID:   m.ID,
					CriteriaID: c.ID,
					FormID:     f.ID,
					Title:      t.Title,
					Marks:      t.Marks,
					Position:   ti,
				})
			}
			criteria.Modules = append(criteria.Modules, module)
		}
		form.Criteria = append(form.Criteria, criteria)
	}
	return form
}
