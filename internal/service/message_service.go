package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/echosuccess/participium-sub000/internal/domain"
	"github.com/echosuccess/participium-sub000/internal/events"
	"github.com/echosuccess/participium-sub000/internal/repository"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// MessageService manages report conversations and internal notes.
type MessageService struct {
	reports    repository.ReportRepository
	messages   repository.ReportMessageRepository
	dispatcher events.Dispatcher
}

// NewMessageService constructs the service.
func NewMessageService(reports repository.ReportRepository, messages repository.ReportMessageRepository, dispatcher events.Dispatcher) *MessageService {
	return &MessageService{reports: reports, messages: messages, dispatcher: dispatcher}
}

// ListForReport returns the conversation visible to the caller. Internal notes
// are included only for technical and external staff.
func (s *MessageService) ListForReport(ctx context.Context, actor *domain.User, reportID int64) ([]domain.ReportMessage, error) {
	if _, err := s.fetchReport(ctx, reportID); err != nil {
		return nil, err
	}
	if actor.Role.IsTechnical() || actor.Role.IsExternal() {
		msgs, err := s.messages.ListByReport(ctx, reportID)
		return msgs, apperrors.MapError(err)
	}
	msgs, err := s.messages.ListPublicByReport(ctx, reportID)
	return msgs, apperrors.MapError(err)
}

// Append adds an immutable message to a report's conversation. Citizens may
// post public messages on their own reports; the currently assigned staff may
// post public messages or internal notes.
func (s *MessageService) Append(ctx context.Context, actor *domain.User, reportID int64, content string, internal bool) (*domain.ReportMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewBadRequest("message content is required")
	}

	report, err := s.fetchReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	kind := domain.MessageKindPublic
	if internal {
		if !actor.Role.IsTechnical() && !actor.Role.IsExternal() {
			return nil, apperrors.NewForbidden("internal notes are restricted to staff")
		}
		kind = domain.MessageKindInternal
	}

	switch {
	case actor.Role == domain.RoleCitizen:
		if report.CitizenID != actor.ID {
			return nil, apperrors.NewForbidden("not the owner of this report")
		}
	case actor.Role.IsTechnical() || actor.Role.IsExternal():
		if report.AssignedToID == nil || *report.AssignedToID != actor.ID {
			return nil, apperrors.NewForbidden("only the assigned staff member may write on this report")
		}
	default:
		return nil, apperrors.NewForbidden("role may not post report messages")
	}

	msg := &domain.ReportMessage{
		ReportID: report.ID,
		SenderID: actor.ID,
		Kind:     kind,
		Content:  content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil && kind == domain.MessageKindPublic {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventReportMessageAdded,
			ReportID:  report.ID,
			ActorID:   actor.ID,
			Timestamp: time.Now(),
			Payload: events.ReportMessageAddedPayload{
				CitizenID:  report.CitizenID,
				AssigneeID: report.AssignedToID,
				Kind:       kind,
				Title:      report.Title,
			},
		})
	}
	return msg, nil
}

func (s *MessageService) fetchReport(ctx context.Context, reportID int64) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("report")
		}
		return nil, apperrors.MapError(err)
	}
	return report, nil
}
