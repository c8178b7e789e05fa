package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/infrastructure/persistence/sqlite"
)

// VendorRepository implements port.VendorRepository
type VendorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db *sql.DB, logger *zap.Logger) port.VendorRepository {
	return &VendorRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new vendor record
func (r *VendorRepository) Create(ctx context.Context, vendor *entity.Vendor) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, `
		INSERT INTO vendors (
			organization_id, name, contact_name, email, phone, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`,
		vendor.OrganizationID,
		vendor.Name,
		vendor.ContactName,
		vendor.Email,
		vendor.Phone,
		vendor.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to create vendor",
			zap.Int64("organization_id", vendor.OrganizationID),
			zap.Error(err))
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	vendor.ID = id
	return nil
}

// GetByID retrieves a vendor by ID within the organization
func (r *VendorRepository) GetByID(ctx context.Context, orgID, id int64) (*entity.Vendor, error) {
	vendor, err := scanVendor(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, organization_id, name, contact_name, email, phone, notes,
			created_at, updated_at
		FROM vendors
		WHERE organization_id = ? AND id = ?
	`, orgID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get vendor",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return vendor, nil
}

// Update rewrites the vendor's directory fields
func (r *VendorRepository) Update(ctx context.Context, vendor *entity.Vendor) error {
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, `
		UPDATE vendors
		SET name = ?, contact_name = ?, email = ?, phone = ?, notes = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE organization_id = ? AND id = ?
	`,
		vendor.Name,
		vendor.ContactName,
		vendor.Email,
		vendor.Phone,
		vendor.Notes,
		vendor.OrganizationID,
		vendor.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update vendor",
			zap.Int64("id", vendor.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update vendor: %w", err)
	}
	return nil
}

// List returns a page of the organization's vendors by name
func (r *VendorRepository) List(ctx context.Context, orgID int64, limit, offset int) ([]*entity.Vendor, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, `
		SELECT id, organization_id, name, contact_name, email, phone, notes,
			created_at, updated_at
		FROM vendors
		WHERE organization_id = ?
		ORDER BY name, id
		LIMIT ? OFFSET ?
	`, orgID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list vendors",
			zap.Int64("organization_id", orgID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*entity.Vendor
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, vendor)
	}
	return vendors, rows.Err()
}

func scanVendor(row scanner) (*entity.Vendor, error) {
	var vendor entity.Vendor
	err := row.Scan(
		&vendor.ID,
		&vendor.OrganizationID,
		&vendor.Name,
		&vendor.ContactName,
		&vendor.Email,
		&vendor.Phone,
		&vendor.Notes,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// Verify interface compliance
var _ port.VendorRepository = (*VendorRepository)(nil)
