// Package http provides the HTTP adapter for the application layer: a
// thin translation from requests to service calls, with no business
// rules of its own.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/atelierhq/studiobooks/internal/application/service"
	"github.com/atelierhq/studiobooks/internal/domain/event"
	"github.com/atelierhq/studiobooks/internal/domain/report"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Applied to invoices created without an explicit tax rate.
	DefaultTaxRateBasisPoints int64
}

// Exporter writes report snapshots to spreadsheet files.
type Exporter interface {
	WriteAging(rep report.AgingReport, orgID int64) (string, error)
	WriteProfitAndLoss(stmt report.ProfitLossStatement, orgID int64) (string, error)
}

// AuditTrail reads back the audit log for one entity.
type AuditTrail interface {
	ListByEntity(ctx context.Context, orgID int64, entityType string, entityID int64, limit int) ([]*event.Event, error)
}

// Services bundles the collaborators the HTTP layer exposes.
type Services struct {
	Projects service.ProjectService
	Budgets  service.BudgetService
	Expenses service.ExpenseService
	Invoices service.InvoiceService
	Vendors  service.VendorService
	Reports  service.ReportService
	Exporter Exporter
	Audit    AuditTrail
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()

	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()
	return server
}

// registerValidations adds domain validations to gin's binding engine.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// basispoints: an integer rate between 0 and 10000 inclusive.
	_ = v.RegisterValidation("basispoints", func(fl validator.FieldLevel) bool {
		bp := fl.Field().Int()
		return bp >= 0 && bp <= 10000
	})
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.config.DefaultTaxRateBasisPoints, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api/v1")
	api.Use(actorMiddleware())
	{
		api.POST("/projects", handlers.CreateProject)
		api.GET("/projects", handlers.ListProjects)
		api.GET("/projects/:id", handlers.GetProject)
		api.POST("/projects/:id/status", handlers.ChangeProjectStatus)

		api.POST("/projects/:id/budget", handlers.CreateBudget)
		api.GET("/projects/:id/budget", handlers.GetBudget)
		api.POST("/budget-categories", handlers.AddBudgetCategory)
		api.PUT("/budget-categories/:id", handlers.UpdateBudgetCategory)
		api.DELETE("/budget-categories/:id", handlers.DeleteBudgetCategory)

		api.POST("/expenses", handlers.CreateExpense)
		api.GET("/expenses/:id", handlers.GetExpense)
		api.POST("/expenses/:id/submit", handlers.SubmitExpense)
		api.POST("/expenses/:id/approve", handlers.ApproveExpense)
		api.POST("/expenses/:id/reject", handlers.RejectExpense)
		api.POST("/expenses/:id/reimburse", handlers.ReimburseExpense)
		api.POST("/expenses/bulk-approve", handlers.BulkApproveExpenses)

		api.POST("/invoices", handlers.CreateInvoice)
		api.GET("/invoices/:id", handlers.GetInvoice)
		api.PUT("/invoices/:id/line-items", handlers.UpdateInvoiceLineItems)
		api.POST("/invoices/:id/send", handlers.SendInvoice)
		api.POST("/invoices/:id/viewed", handlers.MarkInvoiceViewed)
		api.POST("/invoices/:id/write-off", handlers.WriteOffInvoice)
		api.POST("/invoices/:id/payments", handlers.RecordPayment)

		api.POST("/vendors", handlers.CreateVendor)
		api.GET("/vendors", handlers.ListVendors)
		api.GET("/vendors/:id", handlers.GetVendor)
		api.PUT("/vendors/:id", handlers.UpdateVendor)

		api.GET("/reports/aging", handlers.AgingReport)
		api.GET("/reports/cash-flow", handlers.CashFlowForecast)
		api.GET("/reports/projects/:id/profitability", handlers.ProjectProfitability)
		api.GET("/reports/profit-loss", handlers.ProfitAndLoss)
		api.POST("/reports/aging/export", handlers.ExportAging)
		api.POST("/reports/profit-loss/export", handlers.ExportProfitAndLoss)

		api.GET("/audit/:entity_type/:id", handlers.AuditTrail)
	}
}

// Start starts the HTTP server and blocks until the context is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
