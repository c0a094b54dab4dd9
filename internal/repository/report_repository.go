package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/echosuccess/participium-sub000/internal/domain"
)

const reportColumns = `id, title, description, category, latitude, longitude, address,
       is_anonymous, status, citizen_id, assigned_to_id, rejection_reason, created_at, updated_at`

// StatusChange describes a compare-and-swap lifecycle update. The update only
// applies while the row still holds FromStatus, which makes concurrent
// conflicting transitions lose cleanly instead of overwriting each other.
type StatusChange struct {
	FromStatus      domain.ReportStatus
	ToStatus        domain.ReportStatus
	AssignedToID    *int64
	RejectionReason *string
	SetAssignee     bool
	SetReason       bool
}

// ReportRepository encapsulates report persistence.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id int64) (*domain.Report, error)
	ListByStatus(ctx context.Context, status domain.ReportStatus) ([]domain.Report, error)
	ListExcludingStatus(ctx context.Context, status domain.ReportStatus) ([]domain.Report, error)
	ListByAssignee(ctx context.Context, assigneeID int64) ([]domain.Report, error)
	ApplyStatusChange(ctx context.Context, id int64, change StatusChange) (bool, error)
	UpdateAssignee(ctx context.Context, id int64, assigneeID int64) error
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates the repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (title, description, category, latitude, longitude, address,
                             is_anonymous, status, citizen_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		report.Title,
		report.Description,
		report.Category,
		report.Latitude,
		report.Longitude,
		report.Address,
		report.IsAnonymous,
		report.Status,
		report.CitizenID,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
}

func (r *reportRepository) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id=$1`
	var report domain.Report
	if err := scanReport(r.pool.QueryRow(ctx, query, id), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListByStatus(ctx context.Context, status domain.ReportStatus) ([]domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE status=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r *reportRepository) ListExcludingStatus(ctx context.Context, status domain.ReportStatus) ([]domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE status <> $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r *reportRepository) ListByAssignee(ctx context.Context, assigneeID int64) ([]domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE assigned_to_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, assigneeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

// ApplyStatusChange performs the guarded transition. It returns false when the
// row no longer holds the expected status, without modifying anything.
func (r *reportRepository) ApplyStatusChange(ctx context.Context, id int64, change StatusChange) (bool, error) {
	query := `UPDATE reports SET status=$1, updated_at=NOW()`
	args := []any{change.ToStatus}
	if change.SetAssignee {
		args = append(args, change.AssignedToID)
		query += `, assigned_to_id=$2`
	}
	if change.SetReason {
		args = append(args, change.RejectionReason)
		if change.SetAssignee {
			query += `, rejection_reason=$3`
		} else {
			query += `, rejection_reason=$2`
		}
	}
	args = append(args, id, change.FromStatus)
	switch len(args) {
	case 3:
		query += ` WHERE id=$2 AND status=$3`
	case 4:
		query += ` WHERE id=$3 AND status=$4`
	default:
		query += ` WHERE id=$4 AND status=$5`
	}

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *reportRepository) UpdateAssignee(ctx context.Context, id int64, assigneeID int64) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE reports SET assigned_to_id=$1, updated_at=NOW() WHERE id=$2`, assigneeID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanReport(row rowScanner, report *domain.Report) error {
	return row.Scan(
		&report.ID,
		&report.Title,
		&report.Description,
		&report.Category,
		&report.Latitude,
		&report.Longitude,
		&report.Address,
		&report.IsAnonymous,
		&report.Status,
		&report.CitizenID,
		&report.AssignedToID,
		&report.RejectionReason,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
}

func scanReports(rows pgx.Rows) ([]domain.Report, error) {
	var result []domain.Report
	for rows.Next() {
		var report domain.Report
		if err := scanReport(rows, &report); err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	return result, rows.Err()
}
