package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/echosuccess/participium-sub000/internal/domain"
)

// CitizenPhotoRepository persists the single profile photo per user.
type CitizenPhotoRepository interface {
	Upsert(ctx context.Context, photo *domain.CitizenPhoto) error
	GetByUser(ctx context.Context, userID int64) (*domain.CitizenPhoto, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

type citizenPhotoRepository struct {
	pool *pgxpool.Pool
}

// NewCitizenPhotoRepository instantiates the repository.
func NewCitizenPhotoRepository(pool *pgxpool.Pool) CitizenPhotoRepository {
	return &citizenPhotoRepository{pool: pool}
}

// Upsert replaces any prior photo row for the user.
func (r *citizenPhotoRepository) Upsert(ctx context.Context, photo *domain.CitizenPhoto) error {
	const query = `
        INSERT INTO citizen_photos (user_id, url, filename)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id) DO UPDATE SET url=EXCLUDED.url, filename=EXCLUDED.filename, created_at=NOW()
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		photo.UserID,
		photo.URL,
		photo.Filename,
	).Scan(&photo.ID, &photo.CreatedAt)
}

func (r *citizenPhotoRepository) GetByUser(ctx context.Context, userID int64) (*domain.CitizenPhoto, error) {
	const query = `
        SELECT id, user_id, url, filename, created_at
        FROM citizen_photos WHERE user_id=$1`
	var photo domain.CitizenPhoto
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&photo.ID,
		&photo.UserID,
		&photo.URL,
		&photo.Filename,
		&photo.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *citizenPhotoRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM citizen_photos WHERE user_id=$1`, userID)
	return err
}
