package domain

import "time"

// Category enumerates the closed set of report categories.
type Category string

const (
	CategoryWaterSupply       Category = "WATER_SUPPLY"
	CategoryPublicLighting    Category = "PUBLIC_LIGHTING"
	CategoryWaste             Category = "WASTE"
	CategoryRoadsAndFurniture Category = "ROADS_AND_FURNITURE"
	CategoryPublicGreen       Category = "PUBLIC_GREEN"
)

// AllCategories lists every valid category value.
var AllCategories = []Category{
	CategoryWaterSupply,
	CategoryPublicLighting,
	CategoryWaste,
	CategoryRoadsAndFurniture,
	CategoryPublicGreen,
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	for _, cat := range AllCategories {
		if cat == c {
			return true
		}
	}
	return false
}

// Department identifies the municipal unit responsible for a category.
type Department string

const (
	DepartmentWater    Department = "WATER"
	DepartmentLighting Department = "LIGHTING"
	DepartmentWaste    Department = "WASTE"
	DepartmentRoads    Department = "ROADS"
	DepartmentGreen    Department = "GREEN"
)

// ReportStatus enumerates lifecycle states for citizen reports.
type ReportStatus string

const (
	StatusPendingApproval ReportStatus = "PENDING_APPROVAL"
	StatusAssigned        ReportStatus = "ASSIGNED"
	StatusInProgress      ReportStatus = "IN_PROGRESS"
	StatusSuspended       ReportStatus = "SUSPENDED"
	StatusResolved        ReportStatus = "RESOLVED"
	StatusRejected        ReportStatus = "REJECTED"
)

// IsValid reports whether s is a known status.
func (s ReportStatus) IsValid() bool {
	switch s {
	case StatusPendingApproval, StatusAssigned, StatusInProgress, StatusSuspended, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// statusTransitions is the single source of truth for the report lifecycle.
// Approval and rejection are the only ways out of PENDING_APPROVAL; REJECTED
// and RESOLVED are terminal.
var statusTransitions = map[ReportStatus][]ReportStatus{
	StatusPendingApproval: {StatusAssigned, StatusRejected},
	StatusAssigned:        {StatusInProgress},
	StatusInProgress:      {StatusSuspended, StatusResolved},
	StatusSuspended:       {StatusInProgress},
	StatusResolved:        {},
	StatusRejected:        {},
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, candidate := range statusTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s ReportStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// Report is the aggregate for a citizen-submitted issue.
type Report struct {
	ID              int64
	Title           string
	Description     string
	Category        Category
	Latitude        float64
	Longitude       float64
	Address         string
	IsAnonymous     bool
	Status          ReportStatus
	CitizenID       int64
	AssignedToID    *int64
	RejectionReason *string
	Photos          []ReportPhoto
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReportPhoto is an immutable photo attached at report creation.
type ReportPhoto struct {
	ID        int64
	ReportID  int64
	URL       string
	Filename  string
	CreatedAt time.Time
}

const (
	// MinReportPhotos and MaxReportPhotos bound the attachment count at creation.
	MinReportPhotos = 1
	MaxReportPhotos = 3
)
