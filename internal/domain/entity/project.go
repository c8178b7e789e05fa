package entity

import "time"

// ProjectStatus is a project's lifecycle state.
type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "DRAFT"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectArchived  ProjectStatus = "ARCHIVED"
)

var validProjectStatuses = map[ProjectStatus]bool{
	ProjectDraft:     true,
	ProjectActive:    true,
	ProjectOnHold:    true,
	ProjectCompleted: true,
	ProjectArchived:  true,
}

// IsValid reports whether the status is a defined project state.
func (s ProjectStatus) IsValid() bool {
	return validProjectStatuses[s]
}

// String returns the string representation of the status.
func (s ProjectStatus) String() string {
	return string(s)
}

// ProjectType categorizes the kind of studio engagement.
type ProjectType string

const (
	ProjectTypeInterior   ProjectType = "INTERIOR_DESIGN"
	ProjectTypeEvent      ProjectType = "EVENT"
	ProjectTypeExhibition ProjectType = "EXHIBITION"
	ProjectTypeOther      ProjectType = "OTHER"
)

// Project is the root entity every financial record hangs off.
// Projects are owned by exactly one organization and are archived,
// never hard-deleted.
type Project struct {
	ID             int64
	OrganizationID int64
	Name           string
	ClientName     string
	Type           ProjectType
	Status         ProjectStatus
	StartDate      *time.Time
	EndDate        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
