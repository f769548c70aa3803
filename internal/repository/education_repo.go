package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/internal/database"
	"portfolio-api/internal/model"
)

const educationColumns = `id, institution, degree, logo_url, start_date, end_date, profile_id, created_at, updated_at`

type EducationRepository struct {
	pool *pgxpool.Pool
}

func NewEducationRepository(pool *pgxpool.Pool) *EducationRepository {
	return &EducationRepository{pool: pool}
}

func scanEducation(row pgx.Row) (model.Education, error) {
	var e model.Education
	err := row.Scan(&e.ID, &e.Institution, &e.Degree, &e.LogoURL, &e.StartDate, &e.EndDate,
		&e.ProfileID, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func queryEducation(ctx context.Context, db database.DBTX, where string, args ...any) ([]model.Education, error) {
	rows, err := db.Query(ctx, `SELECT `+educationColumns+` FROM education `+where+` ORDER BY start_date DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query education: %w", err)
	}
	defer rows.Close()

	items := make([]model.Education, 0)
	for rows.Next() {
		e, err := scanEducation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan education: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *EducationRepository) List(ctx context.Context, profileID string) ([]model.Education, error) {
	if profileID == "" {
		return queryEducation(ctx, r.pool, "")
	}
	return queryEducation(ctx, r.pool, `WHERE profile_id = $1`, profileID)
}

func (r *EducationRepository) FindByID(ctx context.Context, id string) (model.Education, error) {
	e, err := scanEducation(r.pool.QueryRow(ctx, `SELECT `+educationColumns+` FROM education WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Education{}, model.ErrNotFound
	}
	if err != nil {
		return model.Education{}, fmt.Errorf("find education: %w", err)
	}
	return e, nil
}

func (r *EducationRepository) Create(ctx context.Context, e model.Education) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO education (id, institution, degree, logo_url, start_date, end_date, profile_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Institution, e.Degree, e.LogoURL, e.StartDate, e.EndDate, e.ProfileID, e.CreatedAt, e.UpdatedAt)
	return contentWriteError("create education", err, 1)
}

func (r *EducationRepository) Update(ctx context.Context, e model.Education) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE education
		 SET institution = $2, degree = $3, logo_url = $4, start_date = $5, end_date = $6, profile_id = $7, updated_at = $8
		 WHERE id = $1`,
		e.ID, e.Institution, e.Degree, e.LogoURL, e.StartDate, e.EndDate, e.ProfileID, e.UpdatedAt)
	return contentWriteError("update education", err, tag.RowsAffected())
}

func (r *EducationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM education WHERE id = $1`, id)
	return contentWriteError("delete education", err, tag.RowsAffected())
}
