package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/internal/database"
	"portfolio-api/internal/model"
)

type SkillRepository struct {
	pool *pgxpool.Pool
}

func NewSkillRepository(pool *pgxpool.Pool) *SkillRepository {
	return &SkillRepository{pool: pool}
}

func (r *SkillRepository) List(ctx context.Context) ([]model.Skill, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, category, created_at FROM skills ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	skills := make([]model.Skill, 0)
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func (r *SkillRepository) Create(ctx context.Context, s model.Skill) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO skills (id, name, category, created_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.Name, s.Category, s.CreatedAt)
	if isUniqueViolation(err) {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create skill: %w", err)
	}
	return nil
}

// upsertSkills returns the ids of the named skills, creating missing ones.
func upsertSkills(ctx context.Context, db database.DBTX, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		var id string
		err := db.QueryRow(ctx,
			`INSERT INTO skills (id, name, created_at) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`,
			uuid.NewString(), name, time.Now().UTC()).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("upsert skill %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
