package service

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/echosuccess/participium-sub000/internal/domain"
	"github.com/echosuccess/participium-sub000/internal/events"
	"github.com/echosuccess/participium-sub000/internal/mail"
	"github.com/echosuccess/participium-sub000/internal/repository"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// NotificationService turns lifecycle events into persisted notifications and
// delivers them over the recipient's preferred channel.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	mailer        mail.Sender
	bot           *tgbotapi.BotAPI
	logger        *zap.Logger
}

// NewNotificationService creates the service. The telegram bot is optional;
// when nil, telegram-preferring recipients only get the persisted row.
func NewNotificationService(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	dispatcher events.Dispatcher,
	mailer mail.Sender,
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		dispatcher:    dispatcher,
		mailer:        mailer,
		bot:           bot,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReportApproved, n.handleReportApproved)
	n.dispatcher.Subscribe(events.EventReportRejected, n.handleReportRejected)
	n.dispatcher.Subscribe(events.EventReportStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventReportReassigned, n.handleReassigned)
	n.dispatcher.Subscribe(events.EventReportMessageAdded, n.handleMessageAdded)
}

// ListForUser returns the caller's notifications, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	list, err := n.notifications.ListByRecipient(ctx, userID)
	return list, apperrors.MapError(err)
}

// MarkRead flags one of the caller's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	if err := n.notifications.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification")
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (n *NotificationService) handleReportApproved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportApprovedPayload)
	if !ok {
		return nil
	}
	n.notify(ctx, payload.CitizenID, event.ReportID,
		fmt.Sprintf("Your report %q has been approved.", payload.Title))
	n.notify(ctx, payload.AssigneeID, event.ReportID,
		fmt.Sprintf("Report %q has been assigned to you.", payload.Title))
	return nil
}

func (n *NotificationService) handleReportRejected(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportRejectedPayload)
	if !ok {
		return nil
	}
	n.notify(ctx, payload.CitizenID, event.ReportID,
		fmt.Sprintf("Your report %q has been rejected: %s", payload.Title, payload.Reason))
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportStatusChangedPayload)
	if !ok {
		return nil
	}
	n.notify(ctx, payload.CitizenID, event.ReportID,
		fmt.Sprintf("Report %q moved from %s to %s.", payload.Title, payload.OldStatus, payload.NewStatus))
	return nil
}

func (n *NotificationService) handleReassigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportReassignedPayload)
	if !ok {
		return nil
	}
	n.notify(ctx, payload.NewAssigneeID, event.ReportID,
		fmt.Sprintf("Report %q has been assigned to you.", payload.Title))
	return nil
}

func (n *NotificationService) handleMessageAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportMessageAddedPayload)
	if !ok {
		return nil
	}
	// Notify the other side of the conversation, never the author.
	if event.ActorID != payload.CitizenID {
		n.notify(ctx, payload.CitizenID, event.ReportID,
			fmt.Sprintf("New message on your report %q.", payload.Title))
	} else if payload.AssigneeID != nil {
		n.notify(ctx, *payload.AssigneeID, event.ReportID,
			fmt.Sprintf("New message on report %q.", payload.Title))
	}
	return nil
}

func (n *NotificationService) notify(ctx context.Context, recipientID, reportID int64, payload string) {
	record := &domain.Notification{
		RecipientID: recipientID,
		Payload:     payload,
		ReportID:    &reportID,
	}
	if err := n.notifications.Create(ctx, record); err != nil {
		n.logger.Error("failed to persist notification", zap.Int64("recipient_id", recipientID), zap.Error(err))
		return
	}
	n.deliver(ctx, recipientID, payload)
}

// deliver sends over the recipient's preferred channel; failures are logged
// and never surfaced to the triggering request.
func (n *NotificationService) deliver(ctx context.Context, recipientID int64, payload string) {
	user, err := n.users.GetByID(ctx, recipientID)
	if err != nil {
		n.logger.Warn("notification recipient lookup failed", zap.Int64("recipient_id", recipientID), zap.Error(err))
		return
	}

	switch user.NotificationPref {
	case domain.NotifyByEmail:
		if n.mailer == nil {
			return
		}
		if err := n.mailer.Send(user.Email, "Report update", payload); err != nil {
			n.logger.Error("failed to send notification email", zap.String("email", user.Email), zap.Error(err))
		}
	case domain.NotifyByTelegram:
		if n.bot == nil || user.TelegramChatID == nil {
			return
		}
		msg := tgbotapi.NewMessage(*user.TelegramChatID, payload)
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Error("failed to send telegram notification", zap.Int64("chat_id", *user.TelegramChatID), zap.Error(err))
		}
	}
}
