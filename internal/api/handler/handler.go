package handler

import "github.com/MRsanjuedit/FPMS-Backend/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth     *AuthHandler
	Workflow *WorkflowHandler
	Score    *ScoreHandler
	Module   *ModuleHandler
	Rule     *RuleHandler
	Export   *ExportHandler
}

// NewHandler wires the handlers onto the services.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		Workflow: NewWorkflowHandler(svc.Workflow),
		Score:    NewScoreHandler(svc.Score),
		Module:   NewModuleHandler(svc.Module),
		Rule:     NewRuleHandler(svc.Rule),
		Export:   NewExportHandler(svc.Export),
	}
}
