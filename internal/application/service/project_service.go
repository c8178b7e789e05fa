package service

import (
	"context"
	"strings"
	"time"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/event"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
	"github.com/atelierhq/studiobooks/internal/domain/workflow"
)

// ProjectService manages project lifecycle transitions.
type ProjectService interface {
	Create(ctx context.Context, actor entity.Actor, project *entity.Project) error
	Get(ctx context.Context, actor entity.Actor, id int64) (*entity.Project, error)
	List(ctx context.Context, actor entity.Actor, limit, offset int) ([]*entity.Project, error)
	ChangeStatus(ctx context.Context, actor entity.Actor, id int64, to entity.ProjectStatus) (*entity.Project, error)
}

type projectServiceImpl struct {
	projectRepo port.ProjectRepository
	txManager   port.TransactionManager
	auditSink   port.AuditSink
	logger      Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo port.ProjectRepository,
	txManager port.TransactionManager,
	auditSink port.AuditSink,
	logger Logger,
) ProjectService {
	return &projectServiceImpl{
		projectRepo: projectRepo,
		txManager:   txManager,
		auditSink:   auditSink,
		logger:      logger,
	}
}

// Create persists a new project. Projects always start in DRAFT.
func (s *projectServiceImpl) Create(ctx context.Context, actor entity.Actor, project *entity.Project) error {
	if !actor.Role.AtLeast(entity.RoleManager) {
		return fault.PermissionDenied("create projects", actor.Role.String())
	}
	if strings.TrimSpace(project.Name) == "" {
		return fault.Validation("name", "project name is required")
	}

	now := time.Now().UTC()
	project.OrganizationID = actor.OrganizationID
	project.Status = entity.ProjectDraft
	project.CreatedAt = now
	project.UpdatedAt = now

	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project", "error", err, "org_id", actor.OrganizationID)
		return err
	}

	s.logger.Info("project created", "project_id", project.ID, "org_id", actor.OrganizationID)
	return nil
}

// Get retrieves a project within the actor's organization.
func (s *projectServiceImpl) Get(ctx context.Context, actor entity.Actor, id int64) (*entity.Project, error) {
	return s.projectRepo.GetByID(ctx, actor.OrganizationID, id)
}

// List returns a page of the organization's projects.
func (s *projectServiceImpl) List(ctx context.Context, actor entity.Actor, limit, offset int) ([]*entity.Project, error) {
	return s.projectRepo.List(ctx, actor.OrganizationID, limit, offset)
}

// ChangeStatus moves a project through its lifecycle, consulting the
// transition table before persisting anything.
func (s *projectServiceImpl) ChangeStatus(ctx context.Context, actor entity.Actor, id int64, to entity.ProjectStatus) (*entity.Project, error) {
	if !actor.Role.AtLeast(entity.RoleManager) {
		return nil, fault.PermissionDenied("change project status", actor.Role.String())
	}

	project, err := s.projectRepo.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fault.NotFound("project", id)
	}

	if err := workflow.ValidateProjectTransition(project.Status, to); err != nil {
		return nil, err
	}

	before := *project
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.projectRepo.UpdateStatus(txCtx, actor.OrganizationID, id, to)
	})
	if err != nil {
		s.logger.Error("failed to update project status", "error", err, "project_id", id)
		return nil, err
	}
	project.Status = to
	project.UpdatedAt = time.Now().UTC()

	recordAudit(ctx, s.auditSink, s.logger, event.New(
		event.TypeProjectStatusChanged, "project", id,
		actor.OrganizationID, actor.UserID, before, project,
	))

	s.logger.Info("project status changed",
		"project_id", id, "from", before.Status.String(), "to", to.String())
	return project, nil
}
