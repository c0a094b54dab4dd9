package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/echosuccess/participium-sub000/internal/domain"
	"github.com/echosuccess/participium-sub000/internal/events"
	"github.com/echosuccess/participium-sub000/internal/repository"
	"github.com/echosuccess/participium-sub000/internal/storage"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]*domain.User)}
}

func (r *memUserRepo) add(user *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	} else if user.ID > r.nextID {
		r.nextID = user.ID
	}
	cp := *user
	r.users[cp.ID] = &cp
	return user
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[cp.ID] = &cp
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	cp := *user
	r.users[cp.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *user
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListByRoles(_ context.Context, roles []domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		for _, role := range roles {
			if user.Role == role {
				out = append(out, *user)
				break
			}
		}
	}
	return out, nil
}

func (r *memUserRepo) ListMunicipality(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if user.Role != domain.RoleCitizen {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *memUserRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, user := range r.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

type memReportRepo struct {
	mu      sync.Mutex
	nextID  int64
	reports map[int64]*domain.Report
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: make(map[int64]*domain.Report)}
}

func (r *memReportRepo) add(report *domain.Report) *domain.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	if report.ID == 0 {
		r.nextID++
		report.ID = r.nextID
	} else if report.ID > r.nextID {
		r.nextID = report.ID
	}
	cp := *report
	r.reports[cp.ID] = &cp
	return report
}

func (r *memReportRepo) Create(_ context.Context, report *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	report.ID = r.nextID
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	cp := *report
	r.reports[cp.ID] = &cp
	return nil
}

func (r *memReportRepo) GetByID(_ context.Context, id int64) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *report
	return &cp, nil
}

func (r *memReportRepo) ListByStatus(_ context.Context, status domain.ReportStatus) ([]domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Report
	for _, report := range r.reports {
		if report.Status == status {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (r *memReportRepo) ListExcludingStatus(_ context.Context, status domain.ReportStatus) ([]domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Report
	for _, report := range r.reports {
		if report.Status != status {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (r *memReportRepo) ListByAssignee(_ context.Context, assigneeID int64) ([]domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Report
	for _, report := range r.reports {
		if report.AssignedToID != nil && *report.AssignedToID == assigneeID {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (r *memReportRepo) ApplyStatusChange(_ context.Context, id int64, change repository.StatusChange) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return false, nil
	}
	if report.Status != change.FromStatus {
		return false, nil
	}
	report.Status = change.ToStatus
	if change.SetAssignee {
		report.AssignedToID = change.AssignedToID
	}
	if change.SetReason {
		report.RejectionReason = change.RejectionReason
	}
	report.UpdatedAt = time.Now()
	return true, nil
}

func (r *memReportRepo) UpdateAssignee(_ context.Context, id int64, assigneeID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return pgx.ErrNoRows
	}
	report.AssignedToID = &assigneeID
	report.UpdatedAt = time.Now()
	return nil
}

type memReportPhotoRepo struct {
	mu     sync.Mutex
	nextID int64
	photos map[int64][]domain.ReportPhoto
}

func newMemReportPhotoRepo() *memReportPhotoRepo {
	return &memReportPhotoRepo{photos: make(map[int64][]domain.ReportPhoto)}
}

func (r *memReportPhotoRepo) Create(_ context.Context, photo *domain.ReportPhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	photo.ID = r.nextID
	photo.CreatedAt = time.Now()
	r.photos[photo.ReportID] = append(r.photos[photo.ReportID], *photo)
	return nil
}

func (r *memReportPhotoRepo) ListByReport(_ context.Context, reportID int64) ([]domain.ReportPhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ReportPhoto{}, r.photos[reportID]...), nil
}

func (r *memReportPhotoRepo) DeleteByReport(_ context.Context, reportID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.photos, reportID)
	return nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	nextID   int64
	messages map[int64][]domain.ReportMessage
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[int64][]domain.ReportMessage)}
}

func (r *memMessageRepo) Create(_ context.Context, msg *domain.ReportMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	msg.CreatedAt = time.Now()
	r.messages[msg.ReportID] = append(r.messages[msg.ReportID], *msg)
	return nil
}

func (r *memMessageRepo) ListByReport(_ context.Context, reportID int64) ([]domain.ReportMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ReportMessage{}, r.messages[reportID]...), nil
}

func (r *memMessageRepo) ListPublicByReport(_ context.Context, reportID int64) ([]domain.ReportMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ReportMessage
	for _, msg := range r.messages[reportID] {
		if msg.Kind == domain.MessageKindPublic {
			out = append(out, msg)
		}
	}
	return out, nil
}

type memCitizenPhotoRepo struct {
	mu     sync.Mutex
	nextID int64
	photos map[int64]*domain.CitizenPhoto
}

func newMemCitizenPhotoRepo() *memCitizenPhotoRepo {
	return &memCitizenPhotoRepo{photos: make(map[int64]*domain.CitizenPhoto)}
}

func (r *memCitizenPhotoRepo) Upsert(_ context.Context, photo *domain.CitizenPhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.photos[photo.UserID]; ok {
		photo.ID = existing.ID
	} else {
		r.nextID++
		photo.ID = r.nextID
	}
	photo.CreatedAt = time.Now()
	cp := *photo
	r.photos[photo.UserID] = &cp
	return nil
}

func (r *memCitizenPhotoRepo) GetByUser(_ context.Context, userID int64) (*domain.CitizenPhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	photo, ok := r.photos[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *photo
	return &cp, nil
}

func (r *memCitizenPhotoRepo) DeleteByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.photos[userID]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.photos, userID)
	return nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	nextID        int64
	notifications []domain.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (r *memNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = time.Now()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *memNotificationRepo) ListByRecipient(_ context.Context, recipientID int64) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id, recipientID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].RecipientID == recipientID {
			r.notifications[i].IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  int
	saves   int
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: make(map[string][]byte)}
}

func (s *memObjectStore) Save(_ context.Context, key string, r io.Reader) (storage.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.failOn > 0 && s.saves >= s.failOn {
		return storage.StoredObject{}, io.ErrUnexpectedEOF
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return storage.StoredObject{}, err
	}
	s.objects[key] = buf.Bytes()
	return storage.StoredObject{Key: key, URL: "/static/" + key}, nil
}

func (s *memObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memObjectStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (m *recordingMailer) Send(to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return io.ErrClosedPipe
	}
	m.sent = append(m.sent, to)
	return nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
