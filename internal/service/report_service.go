package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/echosuccess/participium-sub000/internal/authz"
	"github.com/echosuccess/participium-sub000/internal/domain"
	"github.com/echosuccess/participium-sub000/internal/events"
	"github.com/echosuccess/participium-sub000/internal/geo"
	"github.com/echosuccess/participium-sub000/internal/repository"
	"github.com/echosuccess/participium-sub000/internal/storage"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// ReportService coordinates the report lifecycle.
type ReportService struct {
	reports    repository.ReportRepository
	photos     repository.ReportPhotoRepository
	messages   repository.ReportMessageRepository
	users      repository.UserRepository
	policy     *authz.Policy
	geofence   *geo.Validator
	store      storage.ObjectStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ReportRepo  repository.ReportRepository
	PhotoRepo   repository.ReportPhotoRepository
	MessageRepo repository.ReportMessageRepository
	UserRepo    repository.UserRepository
	Policy      *authz.Policy
	Geofence    *geo.Validator
	Store       storage.ObjectStore
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:    deps.ReportRepo,
		photos:     deps.PhotoRepo,
		messages:   deps.MessageRepo,
		users:      deps.UserRepo,
		policy:     deps.Policy,
		geofence:   deps.Geofence,
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// PhotoUpload carries one uploaded photo into the service.
type PhotoUpload struct {
	Filename string
	Content  io.Reader
}

// ReportCreateInput describes a citizen report submission.
type ReportCreateInput struct {
	Title       string
	Description string
	Category    domain.Category
	Latitude    float64
	Longitude   float64
	Address     string
	IsAnonymous bool
	Photos      []PhotoUpload
}

// CreateReport validates guards, stores photos, and persists the report in
// PENDING_APPROVAL. Photos are written to the object store before any database
// row exists; a storage failure aborts the submission and removes what was
// already written, so no orphaned metadata can appear.
func (s *ReportService) CreateReport(ctx context.Context, citizen *domain.User, input ReportCreateInput) (*domain.Report, error) {
	var missing []string
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(input.Description) == "" {
		missing = append(missing, "description")
	}
	if input.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewBadRequest("missing required field(s): " + strings.Join(missing, ", "))
	}
	if !input.Category.IsValid() {
		return nil, apperrors.NewBadRequest("unknown category")
	}
	if len(input.Photos) < domain.MinReportPhotos || len(input.Photos) > domain.MaxReportPhotos {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("between %d and %d photos required", domain.MinReportPhotos, domain.MaxReportPhotos))
	}
	if !s.geofence.Contains(input.Latitude, input.Longitude) {
		return nil, apperrors.NewUnprocessable("coordinates outside municipality boundaries")
	}

	stored := make([]storage.StoredObject, 0, len(input.Photos))
	cleanup := func() {
		for _, obj := range stored {
			if err := s.store.Delete(ctx, obj.Key); err != nil {
				s.logger.Warn("failed to remove stored photo", zap.String("key", obj.Key), zap.Error(err))
			}
		}
	}
	filenames := make([]string, 0, len(input.Photos))
	for _, photo := range input.Photos {
		key := "reports/" + uuid.NewString() + strings.ToLower(path.Ext(photo.Filename))
		obj, err := s.store.Save(ctx, key, photo.Content)
		if err != nil {
			cleanup()
			return nil, apperrors.NewInternal(fmt.Errorf("store photo: %w", err))
		}
		stored = append(stored, obj)
		filenames = append(filenames, photo.Filename)
	}

	report := &domain.Report{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Address:     strings.TrimSpace(input.Address),
		IsAnonymous: input.IsAnonymous,
		Status:      domain.StatusPendingApproval,
		CitizenID:   citizen.ID,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		cleanup()
		return nil, apperrors.MapError(err)
	}
	for i, obj := range stored {
		photo := &domain.ReportPhoto{
			ReportID: report.ID,
			URL:      obj.URL,
			Filename: filenames[i],
		}
		if err := s.photos.Create(ctx, photo); err != nil {
			return nil, apperrors.MapError(err)
		}
		report.Photos = append(report.Photos, *photo)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventReportSubmitted,
		ReportID: report.ID,
		ActorID:  citizen.ID,
		Payload: events.ReportSubmittedPayload{
			CitizenID: citizen.ID,
			Category:  report.Category,
			Title:     report.Title,
		},
	})
	return report, nil
}

// ApproveReport moves a pending report to ASSIGNED with a compatible technical
// assignee and appends the approval message authored by the approving user.
// The status write is guarded on the current status so a concurrent second
// approval fails without a duplicate message.
func (s *ReportService) ApproveReport(ctx context.Context, approver *domain.User, reportID, assigneeID int64) (*domain.Report, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.StatusPendingApproval {
		return nil, apperrors.NewBadRequest("report is not in PENDING_APPROVAL status")
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignee")
		}
		return nil, apperrors.MapError(err)
	}
	if !s.policy.CompatibleTechnical(assignee, report.Category) {
		return nil, apperrors.NewBadRequest("assignee role is not compatible with the report category")
	}

	applied, err := s.reports.ApplyStatusChange(ctx, report.ID, repository.StatusChange{
		FromStatus:   domain.StatusPendingApproval,
		ToStatus:     domain.StatusAssigned,
		AssignedToID: &assignee.ID,
		SetAssignee:  true,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		return nil, apperrors.NewBadRequest("report is not in PENDING_APPROVAL status")
	}
	report.Status = domain.StatusAssigned
	report.AssignedToID = &assignee.ID

	msg := &domain.ReportMessage{
		ReportID: report.ID,
		SenderID: approver.ID,
		Kind:     domain.MessageKindPublic,
		Content:  fmt.Sprintf("Your report has been approved and assigned to the %s office.", assignee.Role),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventReportApproved,
		ReportID: report.ID,
		ActorID:  approver.ID,
		Payload: events.ReportApprovedPayload{
			CitizenID:  report.CitizenID,
			AssigneeID: assignee.ID,
			Title:      report.Title,
		},
	})
	return report, nil
}

// RejectReport moves a pending report to the terminal REJECTED state and
// appends the rejection message carrying the reason.
func (s *ReportService) RejectReport(ctx context.Context, approver *domain.User, reportID int64, reason string) (*domain.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewBadRequest("rejection reason is required")
	}
	if len(reason) > 500 {
		return nil, apperrors.NewBadRequest("rejection reason must be at most 500 characters")
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.StatusPendingApproval {
		return nil, apperrors.NewBadRequest("report is not in PENDING_APPROVAL status")
	}

	applied, err := s.reports.ApplyStatusChange(ctx, report.ID, repository.StatusChange{
		FromStatus:      domain.StatusPendingApproval,
		ToStatus:        domain.StatusRejected,
		RejectionReason: &reason,
		SetReason:       true,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		return nil, apperrors.NewBadRequest("report is not in PENDING_APPROVAL status")
	}
	report.Status = domain.StatusRejected
	report.RejectionReason = &reason

	msg := &domain.ReportMessage{
		ReportID: report.ID,
		SenderID: approver.ID,
		Kind:     domain.MessageKindPublic,
		Content:  "Your report has been rejected: " + reason,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventReportRejected,
		ReportID: report.ID,
		ActorID:  approver.ID,
		Payload: events.ReportRejectedPayload{
			CitizenID: report.CitizenID,
			Reason:    reason,
			Title:     report.Title,
		},
	})
	return report, nil
}

// AssignExternal hands an approved report over to an external maintainer or
// company compatible with the report category. Only municipal technical staff
// may do this; the report status is unchanged.
func (s *ReportService) AssignExternal(ctx context.Context, actor *domain.User, reportID, externalID int64) (*domain.Report, error) {
	if !actor.Role.IsTechnical() {
		return nil, apperrors.NewForbidden("only municipal technical staff may assign externals")
	}
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.StatusAssigned && report.Status != domain.StatusInProgress {
		return nil, apperrors.NewBadRequest("report cannot be reassigned in its current status")
	}

	external, err := s.users.GetByID(ctx, externalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("external maintainer")
		}
		return nil, apperrors.MapError(err)
	}
	if !s.policy.CompatibleExternal(external, report.Category) {
		return nil, apperrors.NewBadRequest("external maintainer is not compatible with the report category")
	}

	if err := s.reports.UpdateAssignee(ctx, report.ID, external.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	report.AssignedToID = &external.ID

	s.publish(ctx, events.Event{
		Type:     events.EventReportReassigned,
		ReportID: report.ID,
		ActorID:  actor.ID,
		Payload: events.ReportReassignedPayload{
			NewAssigneeID: external.ID,
			Title:         report.Title,
		},
	})
	return report, nil
}

// UpdateStatus applies a lifecycle transition requested by the currently
// assigned staff member. The transition table is the only authority on which
// moves are legal.
func (s *ReportService) UpdateStatus(ctx context.Context, actor *domain.User, reportID int64, next domain.ReportStatus) (*domain.Report, error) {
	if !next.IsValid() {
		return nil, apperrors.NewBadRequest("unknown status")
	}
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.AssignedToID == nil || *report.AssignedToID != actor.ID {
		return nil, apperrors.NewForbidden("only the assigned staff member may update this report")
	}
	if !report.Status.CanTransitionTo(next) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("illegal transition from %s to %s", report.Status, next))
	}

	oldStatus := report.Status
	applied, err := s.reports.ApplyStatusChange(ctx, report.ID, repository.StatusChange{
		FromStatus: oldStatus,
		ToStatus:   next,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		return nil, apperrors.NewBadRequest("report status changed concurrently; retry")
	}
	report.Status = next

	s.publish(ctx, events.Event{
		Type:     events.EventReportStatusChanged,
		ReportID: report.ID,
		ActorID:  actor.ID,
		Payload: events.ReportStatusChangedPayload{
			CitizenID: report.CitizenID,
			OldStatus: oldStatus,
			NewStatus: next,
			Title:     report.Title,
		},
	})
	return report, nil
}

// ListPending returns all reports awaiting approval.
func (s *ReportService) ListPending(ctx context.Context) ([]domain.Report, error) {
	reports, err := s.reports.ListByStatus(ctx, domain.StatusPendingApproval)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.attachPhotos(ctx, reports)
}

// ListAssigned returns reports currently assigned to the caller.
func (s *ReportService) ListAssigned(ctx context.Context, actor *domain.User) ([]domain.Report, error) {
	reports, err := s.reports.ListByAssignee(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.attachPhotos(ctx, reports)
}

// ListPublished returns every report past approval, i.e. whose status is not
// PENDING_APPROVAL.
func (s *ReportService) ListPublished(ctx context.Context) ([]domain.Report, error) {
	reports, err := s.reports.ListExcludingStatus(ctx, domain.StatusPendingApproval)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.attachPhotos(ctx, reports)
}

// GetReport fetches a report with its photos.
func (s *ReportService) GetReport(ctx context.Context, reportID int64) (*domain.Report, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	photos, err := s.photos.ListByReport(ctx, report.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	report.Photos = photos
	return report, nil
}

// AssignableTechnicals lists municipal technical staff compatible with the
// report's category.
func (s *ReportService) AssignableTechnicals(ctx context.Context, reportID int64) ([]domain.User, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.users.ListByRoles(ctx, []domain.Role{
		domain.RoleTechnicalWater,
		domain.RoleTechnicalLighting,
		domain.RoleTechnicalWaste,
		domain.RoleTechnicalRoads,
		domain.RoleTechnicalGreen,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	matched := make([]domain.User, 0, len(candidates))
	for i := range candidates {
		if s.policy.CompatibleTechnical(&candidates[i], report.Category) {
			matched = append(matched, candidates[i])
		}
	}
	return matched, nil
}

// AssignableExternals lists external maintainers and companies compatible with
// the report's category.
func (s *ReportService) AssignableExternals(ctx context.Context, reportID int64) ([]domain.User, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.users.ListByRoles(ctx, []domain.Role{
		domain.RoleExternalMaintainer,
		domain.RoleExternalCompany,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	matched := make([]domain.User, 0, len(candidates))
	for i := range candidates {
		if s.policy.CompatibleExternal(&candidates[i], report.Category) {
			matched = append(matched, candidates[i])
		}
	}
	return matched, nil
}

func (s *ReportService) getReport(ctx context.Context, reportID int64) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("report")
		}
		return nil, apperrors.MapError(err)
	}
	return report, nil
}

func (s *ReportService) attachPhotos(ctx context.Context, reports []domain.Report) ([]domain.Report, error) {
	for i := range reports {
		photos, err := s.photos.ListByReport(ctx, reports[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		reports[i].Photos = photos
	}
	return reports, nil
}

func (s *ReportService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
