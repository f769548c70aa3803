package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/internal/database"
	"portfolio-api/internal/model"
)

const projectColumns = `id, title, slug, description, website_url, repo_url, video_url, image_url, image_key,
	tags, start_date, end_date, is_active, is_featured, profile_id, created_at, updated_at`

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func scanProject(row pgx.Row) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.WebsiteURL, &p.RepoURL, &p.VideoURL,
		&p.ImageURL, &p.ImageKey, &p.Tags, &p.StartDate, &p.EndDate, &p.IsActive, &p.IsFeatured,
		&p.ProfileID, &p.CreatedAt, &p.UpdatedAt)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, err
}

// queryProjects returns projects newest first with their skills attached.
func queryProjects(ctx context.Context, db database.DBTX, where string, args ...any) ([]model.Project, error) {
	rows, err := db.Query(ctx, `SELECT `+projectColumns+` FROM projects `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	if err := attachProjectSkills(ctx, db, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func attachProjectSkills(ctx context.Context, db database.DBTX, projects []model.Project) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]string, len(projects))
	index := make(map[string]int, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
		index[projects[i].ID] = i
		projects[i].Skills = []model.Skill{}
	}

	rows, err := db.Query(ctx,
		`SELECT ps.project_id, s.id, s.name, s.category, s.created_at
		 FROM project_skills ps JOIN skills s ON s.id = ps.skill_id
		 WHERE ps.project_id = ANY($1::uuid[])
		 ORDER BY s.name`, ids)
	if err != nil {
		return fmt.Errorf("query project skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID string
		var s model.Skill
		if err := rows.Scan(&projectID, &s.ID, &s.Name, &s.Category, &s.CreatedAt); err != nil {
			return fmt.Errorf("scan project skill: %w", err)
		}
		if i, ok := index[projectID]; ok {
			projects[i].Skills = append(projects[i].Skills, s)
		}
	}
	return rows.Err()
}

func (r *ProjectRepository) List(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	var conds []string
	if filter.Featured {
		conds = append(conds, "is_featured")
	}
	if filter.Active {
		conds = append(conds, "is_active")
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return queryProjects(ctx, r.pool, where)
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (model.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Project{}, model.ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("find project: %w", err)
	}

	projects := []model.Project{p}
	if err := attachProjectSkills(ctx, r.pool, projects); err != nil {
		return model.Project{}, err
	}
	return projects[0], nil
}

// Create inserts the project and links the named skills, creating any that
// do not exist yet.
func (r *ProjectRepository) Create(ctx context.Context, p model.Project, technologies []string) error {
	return r.write(ctx, "create project", technologies, func(ctx context.Context, tx database.DBTX) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO projects (id, title, slug, description, website_url, repo_url, video_url, image_url,
			                       image_key, tags, start_date, end_date, is_active, is_featured, profile_id,
			                       created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			p.ID, p.Title, p.Slug, p.Description, p.WebsiteURL, p.RepoURL, p.VideoURL, p.ImageURL,
			p.ImageKey, p.Tags, p.StartDate, p.EndDate, p.IsActive, p.IsFeatured, p.ProfileID,
			p.CreatedAt, p.UpdatedAt)
		return err
	}, p.ID)
}

// Update rewrites the project. A nil technologies slice leaves the skill
// links untouched; a non-nil one replaces them.
func (r *ProjectRepository) Update(ctx context.Context, p model.Project, technologies []string) error {
	return r.write(ctx, "update project", technologies, func(ctx context.Context, tx database.DBTX) error {
		tag, err := tx.Exec(ctx,
			`UPDATE projects
			 SET title = $2, slug = $3, description = $4, website_url = $5, repo_url = $6, video_url = $7,
			     image_url = $8, image_key = $9, tags = $10, start_date = $11, end_date = $12,
			     is_active = $13, is_featured = $14, profile_id = $15, updated_at = $16
			 WHERE id = $1`,
			p.ID, p.Title, p.Slug, p.Description, p.WebsiteURL, p.RepoURL, p.VideoURL,
			p.ImageURL, p.ImageKey, p.Tags, p.StartDate, p.EndDate,
			p.IsActive, p.IsFeatured, p.ProfileID, p.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return model.ErrNotFound
		}
		if technologies == nil {
			return nil
		}
		_, err = tx.Exec(ctx, `DELETE FROM project_skills WHERE project_id = $1`, p.ID)
		return err
	}, p.ID)
}

func (r *ProjectRepository) write(ctx context.Context, op string, technologies []string,
	fn func(ctx context.Context, tx database.DBTX) error, projectID string,
) error {
	err := database.WithTx(ctx, r.pool, func(ctx context.Context, tx database.DBTX) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if len(technologies) == 0 {
			return nil
		}

		skillIDs, err := upsertSkills(ctx, tx, technologies)
		if err != nil {
			return err
		}
		for _, skillID := range skillIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO project_skills (project_id, skill_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				projectID, skillID); err != nil {
				return fmt.Errorf("link skill: %w", err)
			}
		}
		return nil
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNotFound):
		return err
	case isUniqueViolation(err):
		return model.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return model.ErrInvalidInput
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
