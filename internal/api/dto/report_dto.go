package dto

import (
	"time"

	"github.com/echosuccess/participium-sub000/internal/domain"
)

// ApproveReportRequest selects the technical assignee.
type ApproveReportRequest struct {
	AssigneeID int64 `json:"assignee_id"`
}

// RejectReportRequest carries the mandatory rejection reason.
type RejectReportRequest struct {
	Reason string `json:"reason"`
}

// UpdateStatusRequest requests a lifecycle transition.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AssignExternalRequest hands a report to an external maintainer.
type AssignExternalRequest struct {
	ExternalID int64 `json:"external_id"`
}

// CreateMessageRequest appends to a report conversation.
type CreateMessageRequest struct {
	Content  string `json:"content"`
	Internal bool   `json:"internal"`
}

// PhotoResponse describes an attached photo.
type PhotoResponse struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// ReportResponse is the report representation. CitizenID is omitted for
// anonymous reports unless the caller owns the report.
type ReportResponse struct {
	ID              int64               `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Category        domain.Category     `json:"category"`
	Latitude        float64             `json:"latitude"`
	Longitude       float64             `json:"longitude"`
	Address         string              `json:"address"`
	IsAnonymous     bool                `json:"is_anonymous"`
	Status          domain.ReportStatus `json:"status"`
	CitizenID       *int64              `json:"citizen_id,omitempty"`
	AssignedToID    *int64              `json:"assigned_to_id,omitempty"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	Photos          []PhotoResponse     `json:"photos"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// FromReport maps a report, revealing the reporter only when allowed.
func FromReport(report *domain.Report, revealReporter bool) ReportResponse {
	photos := make([]PhotoResponse, 0, len(report.Photos))
	for _, photo := range report.Photos {
		photos = append(photos, PhotoResponse{ID: photo.ID, URL: photo.URL, Filename: photo.Filename})
	}
	resp := ReportResponse{
		ID:              report.ID,
		Title:           report.Title,
		Description:     report.Description,
		Category:        report.Category,
		Latitude:        report.Latitude,
		Longitude:       report.Longitude,
		Address:         report.Address,
		IsAnonymous:     report.IsAnonymous,
		Status:          report.Status,
		AssignedToID:    report.AssignedToID,
		RejectionReason: report.RejectionReason,
		Photos:          photos,
		CreatedAt:       report.CreatedAt,
		UpdatedAt:       report.UpdatedAt,
	}
	if !report.IsAnonymous || revealReporter {
		citizenID := report.CitizenID
		resp.CitizenID = &citizenID
	}
	return resp
}

// MessageResponse is one conversation entry.
type MessageResponse struct {
	ID        int64              `json:"id"`
	ReportID  int64              `json:"report_id"`
	SenderID  int64              `json:"sender_id"`
	Kind      domain.MessageKind `json:"kind"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"created_at"`
}

// FromMessage maps a conversation entry.
func FromMessage(msg *domain.ReportMessage) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		ReportID:  msg.ReportID,
		SenderID:  msg.SenderID,
		Kind:      msg.Kind,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
