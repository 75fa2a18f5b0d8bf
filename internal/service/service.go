package service

import (
	"go.uber.org/zap"

	"github.com/MRsanjuedit/FPMS-Backend/config"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/jwt"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/metrics"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/storage"
)

// Service aggregates every service of the application.
type Service struct {
	Auth     AuthService
	Identity IdentityService
	Rule     RuleService
	Workflow WorkflowService
	Score    ScoreService
	Module   ModuleService
	Export   ExportService
}

// Deps external collaborators handed to the services. Blacklist, Evidence and
// Metrics may be nil; the features behind them are then disabled.
type Deps struct {
	JWT       *jwt.Manager
	Blacklist TokenBlacklist
	Evidence  storage.EvidenceStore
	Metrics   *metrics.Workflow
}

// NewService wires every service.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	routes := NewRoutingSource(repo)
	return &Service{
		Auth:     NewAuthService(cfg, repo, deps.JWT, deps.Blacklist, logger),
		Identity: NewIdentityService(repo, logger),
		Rule:     NewRuleService(repo, logger),
		Workflow: NewWorkflowService(cfg, repo, routes, deps.Evidence, deps.Metrics, logger),
		Score:    NewScoreService(repo, deps.Metrics, logger),
		Module:   NewModuleService(repo, deps.Metrics, logger),
		Export:   NewExportService(repo, logger),
	}
}
