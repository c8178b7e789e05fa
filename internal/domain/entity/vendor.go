package entity

import "time"

// Vendor is an organization-scoped supplier directory entry,
// referenced by expenses.
type Vendor struct {
	ID             int64
	OrganizationID int64
	Name           string
	ContactName    string
	Email          string
	Phone          string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
