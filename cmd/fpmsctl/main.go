package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/config"
	"github.com/MRsanjuedit/FPMS-Backend/internal/repository"
	"github.com/MRsanjuedit/FPMS-Backend/internal/service"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/database"
	"github.com/MRsanjuedit/FPMS-Backend/pkg/jwt"
	applogger "github.com/MRsanjuedit/FPMS-Backend/pkg/logger"
)

const programName = "fpmsctl"

var globalFlags = struct {
	configFile string
	actor      string
}{}

// app is the wiring shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	repo   *repository.Repository
	svc    *service.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load(globalFlags.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	repo := repository.NewRepository(db, repository.Options{MaxSaveAttempts: cfg.Workflow.MaxSaveAttempts})
	svc := service.NewService(cfg, repo, service.Deps{JWT: jwt.NewManager(&cfg.Auth)}, logger)
	return &app{cfg: cfg, logger: logger, db: db, repo: repo, svc: svc}, nil
}

func (a *app) close() {
	if sqlDB, _ := a.db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
	a.logger.Sync()
}

// withApp runs fn against a freshly wired app.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Administration tool for the FPMS backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().
		StringVar(&globalFlags.configFile, "config", "", "path to config.yaml (default ./config.yaml)")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.actor, "as", "fpmsctl", "user id recorded as created_by/updated_by")

	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(rulesCommand())
	rootCmd.AddCommand(formsCommand())
	rootCmd.AddCommand(usersCommand())
	rootCmd.AddCommand(ledgerCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
