package domain

import "time"

// Notification is a per-user record of a lifecycle event.
type Notification struct {
	ID          int64
	RecipientID int64
	Payload     string
	ReportID    *int64
	IsRead      bool
	CreatedAt   time.Time
}
