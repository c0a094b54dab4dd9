package domain

import "time"

// MessageKind differentiates citizen-visible messages from staff-only notes.
type MessageKind string

const (
	MessageKindPublic   MessageKind = "PUBLIC"
	MessageKindInternal MessageKind = "INTERNAL"
)

// ReportMessage is an immutable entry in a report's conversation. Internal
// notes are never shown to the owning citizen.
type ReportMessage struct {
	ID        int64
	ReportID  int64
	SenderID  int64
	Kind      MessageKind
	Content   string
	CreatedAt time.Time
}
