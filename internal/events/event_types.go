package events

import (
	"time"

	"github.com/echosuccess/participium-sub000/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportSubmitted     EventType = "report_submitted"
	EventReportApproved      EventType = "report_approved"
	EventReportRejected      EventType = "report_rejected"
	EventReportStatusChanged EventType = "report_status_changed"
	EventReportReassigned    EventType = "report_reassigned"
	EventReportMessageAdded  EventType = "report_message_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReportID  int64       `json:"report_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportSubmittedPayload payload.
type ReportSubmittedPayload struct {
	CitizenID int64           `json:"citizen_id"`
	Category  domain.Category `json:"category"`
	Title     string          `json:"title"`
}

// ReportApprovedPayload payload.
type ReportApprovedPayload struct {
	CitizenID  int64  `json:"citizen_id"`
	AssigneeID int64  `json:"assignee_id"`
	Title      string `json:"title"`
}

// ReportRejectedPayload payload.
type ReportRejectedPayload struct {
	CitizenID int64  `json:"citizen_id"`
	Reason    string `json:"reason"`
	Title     string `json:"title"`
}

// ReportStatusChangedPayload payload.
type ReportStatusChangedPayload struct {
	CitizenID int64               `json:"citizen_id"`
	OldStatus domain.ReportStatus `json:"old_status"`
	NewStatus domain.ReportStatus `json:"new_status"`
	Title     string              `json:"title"`
}

// ReportReassignedPayload payload.
type ReportReassignedPayload struct {
	NewAssigneeID int64  `json:"new_assignee_id"`
	Title         string `json:"title"`
}

// ReportMessageAddedPayload payload.
type ReportMessageAddedPayload struct {
	CitizenID  int64              `json:"citizen_id"`
	AssigneeID *int64             `json:"assignee_id,omitempty"`
	Kind       domain.MessageKind `json:"kind"`
	Title      string             `json:"title"`
}
