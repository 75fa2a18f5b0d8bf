package service

import (
	"context"

	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
)

// RoutingSource yields the routing rules in force for one operation.
// Callers take a fresh snapshot per operation and never keep it.
type RoutingSource interface {
	Snapshot(ctx context.Context) (*workflow.RoutingTable, error)
}

type repoRoutingSource struct {
	repo *repository.Repository
}

// NewRoutingSource reads rules from the workflow_rules table.
func NewRoutingSource(repo *repository.Repository) RoutingSource {
	return &repoRoutingSource{repo: repo}
}

func (s *repoRoutingSource) Snapshot(ctx context.Context) (*workflow.RoutingTable, error) {
	rows, err := s.repo.WorkflowRule.List(ctx)
	if err != nil {
		return nil, err
	}
	rules := make([]workflow.RoleRule, 0, len(rows))
	for _, r := range rows {
		rules = append(rules, workflow.RoleRule{
			Role:          r.Role,
			SubmitToRoles: r.SubmitToRoles,
			AppealToRoles: r.AppealToRoles,
		})
	}
	return workflow.NewRoutingTable(rules), nil
}
