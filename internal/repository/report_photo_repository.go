package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/echosuccess/participium-sub000/internal/domain"
)

// ReportPhotoRepository persists the photos attached at report creation.
type ReportPhotoRepository interface {
	Create(ctx context.Context, photo *domain.ReportPhoto) error
	ListByReport(ctx context.Context, reportID int64) ([]domain.ReportPhoto, error)
	DeleteByReport(ctx context.Context, reportID int64) error
}

type reportPhotoRepository struct {
	pool *pgxpool.Pool
}

// NewReportPhotoRepository instantiates the repository.
func NewReportPhotoRepository(pool *pgxpool.Pool) ReportPhotoRepository {
	return &reportPhotoRepository{pool: pool}
}

func (r *reportPhotoRepository) Create(ctx context.Context, photo *domain.ReportPhoto) error {
	const query = `
        INSERT INTO report_photos (report_id, url, filename)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		photo.ReportID,
		photo.URL,
		photo.Filename,
	).Scan(&photo.ID, &photo.CreatedAt)
}

func (r *reportPhotoRepository) ListByReport(ctx context.Context, reportID int64) ([]domain.ReportPhoto, error) {
	const query = `
        SELECT id, report_id, url, filename, created_at
        FROM report_photos WHERE report_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReportPhoto
	for rows.Next() {
		var photo domain.ReportPhoto
		if err := rows.Scan(&photo.ID, &photo.ReportID, &photo.URL, &photo.Filename, &photo.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, photo)
	}
	return result, rows.Err()
}

func (r *reportPhotoRepository) DeleteByReport(ctx context.Context, reportID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM report_photos WHERE report_id=$1`, reportID)
	return err
}
