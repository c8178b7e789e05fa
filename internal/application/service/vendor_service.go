package service

import (
	"context"
	"strings"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
)

// VendorService manages the organization's supplier directory.
type VendorService interface {
	Create(ctx context.Context, actor entity.Actor, vendor *entity.Vendor) error
	Get(ctx context.Context, actor entity.Actor, id int64) (*entity.Vendor, error)
	Update(ctx context.Context, actor entity.Actor, vendor *entity.Vendor) error
	List(ctx context.Context, actor entity.Actor, limit, offset int) ([]*entity.Vendor, error)
}

type vendorServiceImpl struct {
	vendorRepo port.VendorRepository
	logger     Logger
}

// NewVendorService creates a new VendorService
func NewVendorService(vendorRepo port.VendorRepository, logger Logger) VendorService {
	return &vendorServiceImpl{
		vendorRepo: vendorRepo,
		logger:     logger,
	}
}

func (s *vendorServiceImpl) Create(ctx context.Context, actor entity.Actor, vendor *entity.Vendor) error {
	if !actor.Role.AtLeast(entity.RoleFinance) {
		return fault.PermissionDenied("create vendors", actor.Role.String())
	}
	if strings.TrimSpace(vendor.Name) == "" {
		return fault.Validation("name", "vendor name is required")
	}
	vendor.OrganizationID = actor.OrganizationID
	return s.vendorRepo.Create(ctx, vendor)
}

func (s *vendorServiceImpl) Get(ctx context.Context, actor entity.Actor, id int64) (*entity.Vendor, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, fault.NotFound("vendor", id)
	}
	return vendor, nil
}

func (s *vendorServiceImpl) Update(ctx context.Context, actor entity.Actor, vendor *entity.Vendor) error {
	if !actor.Role.AtLeast(entity.RoleFinance) {
		return fault.PermissionDenied("edit vendors", actor.Role.String())
	}
	if strings.TrimSpace(vendor.Name) == "" {
		return fault.Validation("name", "vendor name is required")
	}
	existing, err := s.Get(ctx, actor, vendor.ID)
	if err != nil {
		return err
	}
	vendor.OrganizationID = existing.OrganizationID
	return s.vendorRepo.Update(ctx, vendor)
}

func (s *vendorServiceImpl) List(ctx context.Context, actor entity.Actor, limit, offset int) ([]*entity.Vendor, error) {
	return s.vendorRepo.List(ctx, actor.OrganizationID, limit, offset)
}
