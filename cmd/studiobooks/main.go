package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atelierhq/studiobooks/internal/application/service"
	"github.com/atelierhq/studiobooks/internal/config"
	"github.com/atelierhq/studiobooks/internal/infrastructure/export"
	"github.com/atelierhq/studiobooks/internal/infrastructure/notify"
	"github.com/atelierhq/studiobooks/internal/infrastructure/persistence/repository"
	"github.com/atelierhq/studiobooks/internal/infrastructure/persistence/sqlite"
	serverhttp "github.com/atelierhq/studiobooks/internal/interfaces/http"
	"github.com/atelierhq/studiobooks/pkg/database"
	"github.com/atelierhq/studiobooks/pkg/utils"
)

func main() {
	root := &cobra.Command{
		Use:   "studiobooks",
		Short: "Financial core for design studio project management",
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to configuration file")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(sweepCmd(&configPath))
	root.AddCommand(remindCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// app wires configuration, storage, and services for a command run.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *sqlite.DB
	invoices service.InvoiceService
	server   *serverhttp.Server
}

func bootstrap(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db := sqlite.NewDB(sqlDB, logger)
	svcLogger := utils.NewSugarAdapter(logger)

	projectRepo := repository.NewProjectRepository(sqlDB, logger)
	budgetRepo := repository.NewBudgetRepository(sqlDB, logger)
	expenseRepo := repository.NewExpenseRepository(sqlDB, logger)
	invoiceRepo := repository.NewInvoiceRepository(sqlDB, logger)
	paymentRepo := repository.NewPaymentRepository(sqlDB, logger)
	vendorRepo := repository.NewVendorRepository(sqlDB, logger)
	auditRepo := repository.NewAuditLogRepository(sqlDB, logger)
	notifier := notify.NewLogNotifier(logger)

	invoiceSvc := service.NewInvoiceService(invoiceRepo, paymentRepo, db, auditRepo, notifier, svcLogger)
	services := serverhttp.Services{
		Projects: service.NewProjectService(projectRepo, db, auditRepo, svcLogger),
		Budgets:  service.NewBudgetService(budgetRepo, expenseRepo, db, auditRepo, svcLogger),
		Expenses: service.NewExpenseService(expenseRepo, db, auditRepo, notifier, svcLogger),
		Invoices: invoiceSvc,
		Vendors:  service.NewVendorService(vendorRepo, svcLogger),
		Reports:  service.NewReportService(projectRepo, budgetRepo, expenseRepo, invoiceRepo, svcLogger),
		Exporter: export.NewXLSXExporter(cfg.Export.OutputDir, logger),
		Audit:    auditRepo,
	}

	srv := serverhttp.NewServer(serverhttp.ServerConfig{
		Host:                      cfg.Server.Host,
		Port:                      cfg.Server.Port,
		ReadTimeout:               cfg.Server.ReadTimeout,
		WriteTimeout:              cfg.Server.WriteTimeout,
		DefaultTaxRateBasisPoints: cfg.Billing.DefaultTaxRateBasisPoints,
	}, services, svcLogger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		invoices: invoiceSvc,
		server:   srv,
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			a.logger.Info("Starting studiobooks server",
				zap.String("host", a.cfg.Server.Host),
				zap.Int("port", a.cfg.Server.Port))

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := a.server.Start(ctx); err != nil {
				return fmt.Errorf("server error: %w", err)
			}

			a.logger.Info("Shutting down server")
			if err := a.server.Stop(); err != nil {
				a.logger.Error("Failed to stop server cleanly", zap.Error(err))
			}
			return nil
		},
	}
}

func sweepCmd(configPath *string) *cobra.Command {
	var orgID int64
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Mark past-due outstanding invoices as overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			swept, err := a.invoices.SweepOverdue(cmd.Context(), orgID, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("overdue sweep failed: %w", err)
			}
			a.logger.Info("Overdue sweep complete",
				zap.Int64("organization_id", orgID),
				zap.Int("swept", swept))
			return nil
		},
	}
	cmd.Flags().Int64Var(&orgID, "org", 0, "organization ID to sweep")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func remindCmd(configPath *string) *cobra.Command {
	var orgID int64
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send payment reminders for invoices due soon or overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			err = a.invoices.ScanPaymentReminders(
				cmd.Context(), orgID, time.Now().UTC(),
				a.cfg.Billing.ReminderDueWithinDays,
			)
			if err != nil {
				return fmt.Errorf("reminder scan failed: %w", err)
			}
			a.logger.Info("Payment reminder scan complete",
				zap.Int64("organization_id", orgID))
			return nil
		},
	}
	cmd.Flags().Int64Var(&orgID, "org", 0, "organization ID to scan")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}
