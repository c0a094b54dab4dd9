package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/echosuccess/participium-sub000/internal/domain"
)

// ReportMessageRepository persists report conversation entries. Messages are
// immutable: there is no update or single-row delete.
type ReportMessageRepository interface {
	Create(ctx context.Context, msg *domain.ReportMessage) error
	ListByReport(ctx context.Context, reportID int64) ([]domain.ReportMessage, error)
	ListPublicByReport(ctx context.Context, reportID int64) ([]domain.ReportMessage, error)
}

type reportMessageRepository struct {
	pool *pgxpool.Pool
}

// NewReportMessageRepository instantiates the repository.
func NewReportMessageRepository(pool *pgxpool.Pool) ReportMessageRepository {
	return &reportMessageRepository{pool: pool}
}

func (r *reportMessageRepository) Create(ctx context.Context, msg *domain.ReportMessage) error {
	const query = `
        INSERT INTO report_messages (report_id, sender_id, kind, content)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.ReportID,
		msg.SenderID,
		msg.Kind,
		msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *reportMessageRepository) ListByReport(ctx context.Context, reportID int64) ([]domain.ReportMessage, error) {
	const query = `
        SELECT id, report_id, sender_id, kind, content, created_at
        FROM report_messages WHERE report_id=$1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *reportMessageRepository) ListPublicByReport(ctx context.Context, reportID int64) ([]domain.ReportMessage, error) {
	const query = `
        SELECT id, report_id, sender_id, kind, content, created_at
        FROM report_messages WHERE report_id=$1 AND kind=$2 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, reportID, domain.MessageKindPublic)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]domain.ReportMessage, error) {
	var result []domain.ReportMessage
	for rows.Next() {
		var msg domain.ReportMessage
		if err := rows.Scan(&msg.ID, &msg.ReportID, &msg.SenderID, &msg.Kind, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
