package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/MRsanjuedit/FPMS-Backend/config"
	"github.com/MRsanjuedit/FPMS-Backend/internal/api/handler"
	"github.com/MRsanjuedit/FPMS-Backend/internal/api/middleware"
	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/internal/workflow"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/metrics"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/redis"
)

// Options collaborators of the router. Redis, Metrics and UploadsDir are optional.
type Options struct {
	Auth       service.AuthProvider
	Redis      *redis.Client
	Identity   service.IdentityService
	Metrics    *prometheus.Registry
	UploadsDir string
}

// Setup builds the Gin engine with every route.
func Setup(cfg *config.Config, h *handler.Handler, opts Options, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled && opts.Metrics != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler(opts.Metrics)))
	}
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	roleCommittee := workflow.RoleKeyCommittee
	rolePrinciple := workflow.RoleKeyPrinciple

	v1 := r.Group("/api/v1")
	{
		// public
		v1.POST("/auth/login",
			middleware.RateLimit(opts.Redis, cfg.Server.RateLimit.Login, cfg.Server.RateLimit.Window),
			h.Auth.Login)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(opts.Auth, opts.Redis, opts.Identity, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// reference data
			authorized.GET("/workflow/rules", h.Rule.ListRules)
			authorized.GET("/forms", h.Rule.ListForms)
			authorized.GET("/forms/:id", h.Rule.GetForm)

			// submission workflow; reviewer and owner checks live in the service
			submissions := authorized.Group("/workflow/submissions")
			{
				submissions.POST("/task", h.Workflow.SubmitTask)
				submissions.GET("/review-queue", h.Workflow.ReviewQueue)
				submissions.GET("/my-statuses", h.Workflow.MyStatuses)
				submissions.GET("/my-reviewed", h.Workflow.Reviewed)
				submissions.GET("/:id", h.Workflow.GetSubmission)
				submissions.GET("/:id/history", h.Workflow.History)
				submissions.POST("/:id/review", h.Workflow.Review)
				submissions.POST("/:id/appeal", h.Workflow.Appeal)
				submissions.POST("/:id/accept", h.Score.Accept)
			}

			// score ledger
			authorized.GET("/scores/me", h.Score.Total)
			authorized.POST("/scores/me/recompute", h.Score.Recompute)

			// per-module criteria
			modules := authorized.Group("/modules/:ns")
			{
				modules.POST("/criteria", h.Module.SubmitCriteria)
				modules.GET("/criteria", h.Module.ListCriteria)
				modules.GET("/total", h.Module.Total)
				modules.GET("/submissions",
					middleware.RoleAuth(workflow.RoleKeyHOD, rolePrinciple), h.Module.ListForReview)
				modules.PUT("/criteria/:faculty_id/:subsection_id/:name/verify",
					middleware.RoleAuth(workflow.RoleKeyHOD, rolePrinciple), h.Module.VerifyCriterion)
				modules.POST("/criteria/:subsection_id/:name/appeal", h.Module.RaiseAppeal)
			}

			// committee appeals
			appeals := authorized.Group("/appeals")
			{
				appeals.GET("/mine", h.Module.MyAppeals)
				appeals.GET("", middleware.RoleAuth(roleCommittee), h.Module.ListAppeals)
				appeals.PUT("/:id/verify", middleware.RoleAuth(roleCommittee), h.Module.VerifyAppeal)
			}

			export := authorized.Group("/export")
			{
				export.GET("/forms/:id/submissions",
					middleware.RoleAuth(roleCommittee, rolePrinciple), h.Export.ExportFormSubmissions)
			}
		}
	}

	return r
}
