package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/internal/dto"
	"github.com/MRsanjuedit/FPMS-Backend/internal/model"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
)

// ── reference data errors ──

var ErrFormNotFound = errors.New("form not found")

// RoleSeed registry entry as provisioned by an administrator.
type RoleSeed struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

// RuleService role registry, workflow rules and rubric forms
type RuleService interface {
	ListRules(ctx context.Context) ([]dto.WorkflowRuleResponse, error)
	// ImportRules validates rules against the registry (stored roles plus
	// roles) and replaces the whole rule set.
	ImportRules(ctx context.Context, roles []RoleSeed, rules []workflow.RoleRule, by string) error
	// ApplicableForms forms whose applicable roles admit the actor.
	ApplicableForms(ctx context.Context, actor *workflow.Actor) ([]dto.FormSummary, error)
	GetForm(ctx context.Context, formID string) (*dto.FormResponse, error)
	ImportForm(ctx context.Context, form *model.Form, by string) error
}

type ruleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRuleService creates a RuleService.
func NewRuleService(repo *repository.Repository, logger *zap.Logger) RuleService {
	return &ruleService{repo: repo, logger: logger}
}

func (s *ruleService) ListRules(ctx context.Context) ([]dto.WorkflowRuleResponse, error) {
	rows, err := s.repo.WorkflowRule.List(ctx)
	if err != nil {
		s.logger.Error("list workflow rules failed", zap.Error(err))
		return nil, err
	}
	out := make([]dto.WorkflowRuleResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.WorkflowRuleResponse{
			Role:          r.Role,
			RoleKey:       r.RoleKey,
			SubmitToRoles: nonNil(r.SubmitToRoles),
			AppealToRoles: nonNil(r.AppealToRoles),
		})
	}
	return out, nil
}

func (s *ruleService) ImportRules(ctx context.Context, roles []RoleSeed, rules []workflow.RoleRule, by string) error {
	existing, err := s.repo.Role.List(ctx)
	if err != nil {
		return err
	}
	registry := make([]string, 0, len(existing)+len(roles))
	for _, r := range existing {
		registry = append(registry, r.Name)
	}
	for _, r := range roles {
		registry = append(registry, r.Name)
	}
	if err := workflow.ValidateRules(rules, registry); err != nil {
		return err
	}

	var author *string
	if by != "" {
		author = &by
	}

	roleRows := make([]model.Role, 0, len(roles))
	for _, r := range roles {
		key := workflow.NormalizeRoleKey(r.Name)
		if key == "" {
			continue
		}
		row := model.Role{RoleID: key, Name: strings.TrimSpace(r.Name), Level: r.Level}
		row.CreatedBy, row.UpdatedBy = author, author
		roleRows = append(roleRows, row)
	}
	if err := s.repo.Role.Upsert(ctx, roleRows); err != nil {
		s.logger.Error("upsert roles failed", zap.Error(err))
		return err
	}

	// normalized through a routing table so a later duplicate wins
	table := workflow.NewRoutingTable(rules)
	ruleRows := make([]model.WorkflowRule, 0, len(rules))
	for _, r := range table.Rules() {
		row := model.WorkflowRule{
			RoleKey:       workflow.NormalizeRoleKey(r.Role),
			Role:          r.Role,
			SubmitToRoles: r.SubmitToRoles,
			AppealToRoles: r.AppealToRoles,
		}
		row.CreatedBy, row.UpdatedBy = author, author
		ruleRows = append(ruleRows, row)
	}
	if err := s.repo.WorkflowRule.ReplaceAll(ctx, ruleRows); err != nil {
		s.logger.Error("replace workflow rules failed", zap.Error(err))
		return err
	}

	s.logger.Info("workflow rules imported",
		zap.Int("roles", len(roleRows)),
		zap.Int("rules", len(ruleRows)),
	)
	return nil
}

func (s *ruleService) ApplicableForms(ctx context.Context, actor *workflow.Actor) ([]dto.FormSummary, error) {
	forms, err := s.repo.Form.List(ctx)
	if err != nil {
		s.logger.Error("list forms failed", zap.Error(err))
		return nil, err
	}
	out := []dto.FormSummary{}
	for _, f := range forms {
		if !formAdmits(f.ApplicableRoles, actor.RoleKey) {
			continue
		}
		out = append(out, dto.FormSummary{
			ID:              f.FormID,
			Title:           f.Title,
			ApplicableRoles: nonNil(f.ApplicableRoles),
			UpdatedAt:       formatTime(f.UpdatedAt),
		})
	}
	return out, nil
}

func formAdmits(roles model.RoleKeySet, roleKey string) bool {
	for _, r := range roles {
		if workflow.RoleAdmits(r, roleKey) {
			return true
		}
	}
	return false
}

func (s *ruleService) GetForm(ctx context.Context, formID string) (*dto.FormResponse, error) {
	form, err := s.repo.Form.GetTree(ctx, formID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		s.logger.Error("load form failed", zap.String("form_id", formID), zap.Error(err))
		return nil, err
	}

	resp := &dto.FormResponse{ID: form.FormID, Title: form.Title, Criteria: []dto.CriteriaResponse{}}
	for _, c := range form.Criteria {
		cr := dto.CriteriaResponse{ID: c.CriteriaID, Title: c.Title, Modules: []dto.ModuleResponse{}}
		for _, m := range c.Modules {
			mr := dto.ModuleResponse{ID: m.ModuleID, Title: m.Title, Tasks: []dto.TaskResponse{}}
			for _, t := range m.Tasks {
				mr.Tasks = append(mr.Tasks, dto.TaskResponse{ID: t.TaskID, Title: t.Title, Marks: t.Marks})
			}
			cr.Modules = append(cr.Modules, mr)
		}
		resp.Criteria = append(resp.Criteria, cr)
	}
	return resp, nil
}

func (s *ruleService) ImportForm(ctx context.Context, form *model.Form, by string) error {
	if form == nil || strings.TrimSpace(form.FormID) == "" || strings.TrimSpace(form.Title) == "" {
		return ErrValidation
	}
	for _, c := range form.Criteria {
		if c.CriteriaID == "" {
			return ErrValidation
		}
		for _, m := range c.Modules {
			if m.ModuleID == "" {
				return ErrValidation
			}
			for _, t := range m.Tasks {
				if t.TaskID == "" || t.Marks < 0 {
					return ErrValidation
				}
			}
		}
	}
	roles := model.RoleKeySet{}
	for _, label := range workflow.NormalizeRoleList(form.ApplicableRoles) {
		if key := workflow.NormalizeRoleKey(label); key != "" {
			roles = append(roles, key)
		}
	}
	form.ApplicableRoles = roles
	if by != "" {
		form.CreatedBy = &by
		form.UpdatedBy = &by
	}
	if err := s.repo.Form.Save(ctx, form); err != nil {
		s.logger.Error("save form failed", zap.String("form_id", form.FormID), zap.Error(err))
		return err
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
