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

const workExperienceColumns = `id, company, position, location, website, description, logo_url, logo_key,
	start_date, end_date, profile_id, created_at, updated_at`

type WorkExperienceRepository struct {
	pool *pgxpool.Pool
}

func NewWorkExperienceRepository(pool *pgxpool.Pool) *WorkExperienceRepository {
	return &WorkExperienceRepository{pool: pool}
}

func scanWorkExperience(row pgx.Row) (model.WorkExperience, error) {
	var w model.WorkExperience
	err := row.Scan(&w.ID, &w.Company, &w.Position, &w.Location, &w.Website, &w.Description,
		&w.LogoURL, &w.LogoKey, &w.StartDate, &w.EndDate, &w.ProfileID, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func queryWorkExperience(ctx context.Context, db database.DBTX, where string, args ...any) ([]model.WorkExperience, error) {
	rows, err := db.Query(ctx,
		`SELECT `+workExperienceColumns+` FROM work_experience `+where+` ORDER BY start_date DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query work experience: %w", err)
	}
	defer rows.Close()

	items := make([]model.WorkExperience, 0)
	for rows.Next() {
		w, err := scanWorkExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work experience: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

func (r *WorkExperienceRepository) List(ctx context.Context, profileID string) ([]model.WorkExperience, error) {
	if profileID == "" {
		return queryWorkExperience(ctx, r.pool, "")
	}
	return queryWorkExperience(ctx, r.pool, `WHERE profile_id = $1`, profileID)
}

func (r *WorkExperienceRepository) FindByID(ctx context.Context, id string) (model.WorkExperience, error) {
	w, err := scanWorkExperience(r.pool.QueryRow(ctx,
		`SELECT `+workExperienceColumns+` FROM work_experience WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.WorkExperience{}, model.ErrNotFound
	}
	if err != nil {
		return model.WorkExperience{}, fmt.Errorf("find work experience: %w", err)
	}
	return w, nil
}

func (r *WorkExperienceRepository) Create(ctx context.Context, w model.WorkExperience) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO work_experience (id, company, position, location, website, description, logo_url, logo_key,
		                              start_date, end_date, profile_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		w.ID, w.Company, w.Position, w.Location, w.Website, w.Description, w.LogoURL, w.LogoKey,
		w.StartDate, w.EndDate, w.ProfileID, w.CreatedAt, w.UpdatedAt)
	return contentWriteError("create work experience", err, 1)
}

func (r *WorkExperienceRepository) Update(ctx context.Context, w model.WorkExperience) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE work_experience
		 SET company = $2, position = $3, location = $4, website = $5, description = $6, logo_url = $7,
		     logo_key = $8, start_date = $9, end_date = $10, profile_id = $11, updated_at = $12
		 WHERE id = $1`,
		w.ID, w.Company, w.Position, w.Location, w.Website, w.Description, w.LogoURL,
		w.LogoKey, w.StartDate, w.EndDate, w.ProfileID, w.UpdatedAt)
	return contentWriteError("update work experience", err, tag.RowsAffected())
}

func (r *WorkExperienceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM work_experience WHERE id = $1`, id)
	return contentWriteError("delete work experience", err, tag.RowsAffected())
}
