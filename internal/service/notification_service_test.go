package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/echosuccess/participium-sub000/internal/domain"
	"github.com/echosuccess/participium-sub000/internal/events"
)

func TestNotificationsOnApproval(t *testing.T) {
	users := newMemUserRepo()
	notifications := newMemNotificationRepo()
	mailer := &recordingMailer{}
	dispatcher := events.NewInMemoryDispatcher()

	citizen := users.add(&domain.User{ID: 1, Email: "mario@example.com", Role: domain.RoleCitizen, NotificationPref: domain.NotifyByEmail})
	tech := users.add(&domain.User{ID: 2, Email: "tech@example.com", Role: domain.RoleTechnicalLighting, NotificationPref: domain.NotifyNone})

	svc := NewNotificationService(notifications, users, dispatcher, mailer, nil, zap.NewNop())
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:       "evt-1",
		Type:     events.EventReportApproved,
		ReportID: 10,
		ActorID:  5,
		Payload: events.ReportApprovedPayload{
			CitizenID:  citizen.ID,
			AssigneeID: tech.ID,
			Title:      "Broken streetlight",
		},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	citizenRows, _ := notifications.ListByRecipient(context.Background(), citizen.ID)
	if len(citizenRows) != 1 {
		t.Fatalf("citizen notifications = %d, want 1", len(citizenRows))
	}
	techRows, _ := notifications.ListByRecipient(context.Background(), tech.ID)
	if len(techRows) != 1 {
		t.Fatalf("assignee notifications = %d, want 1", len(techRows))
	}

	// Only the email-preferring recipient gets a mail; NONE suppresses delivery
	// but the row is still persisted.
	if len(mailer.sent) != 1 || mailer.sent[0] != "mario@example.com" {
		t.Fatalf("mails sent = %v, want only mario@example.com", mailer.sent)
	}
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	users := newMemUserRepo()
	notifications := newMemNotificationRepo()
	svc := NewNotificationService(notifications, users, nil, nil, nil, zap.NewNop())

	row := &domain.Notification{RecipientID: 1, Payload: "hello"}
	if err := notifications.Create(context.Background(), row); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.MarkRead(context.Background(), row.ID, 2); statusOf(t, err) != 404 {
		t.Error("marking another user's notification: status != 404")
	}
	if err := svc.MarkRead(context.Background(), row.ID, 1); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	list, _ := svc.ListForUser(context.Background(), 1)
	if len(list) != 1 || !list[0].IsRead {
		t.Fatalf("notification not marked read: %+v", list)
	}
}
