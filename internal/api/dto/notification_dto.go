package dto

import (
	"time"

	"github.com/echosuccess/participium-sub000/internal/domain"
)

// NotificationResponse is one user notification.
type NotificationResponse struct {
	ID        int64     `json:"id"`
	Payload   string    `json:"payload"`
	ReportID  *int64    `json:"report_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// FromNotification maps a notification.
func FromNotification(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Payload:   n.Payload,
		ReportID:  n.ReportID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
