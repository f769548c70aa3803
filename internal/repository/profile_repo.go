package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/internal/model"
)

const profileColumns = `id, slug, full_name, headline, location, location_link, avatar_url, avatar_key,
	short_bio, email, telephone, user_id, created_at, updated_at`

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Slug, &p.FullName, &p.Headline, &p.Location, &p.LocationLink,
		&p.AvatarURL, &p.AvatarKey, &p.ShortBio, &p.Email, &p.Telephone, &p.UserID,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProfileRepository) findOne(ctx context.Context, op string, where string, arg any) (model.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, model.ErrNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (model.Profile, error) {
	return r.findOne(ctx, "find profile by id", `id = $1`, id)
}

func (r *ProfileRepository) FindBySlug(ctx context.Context, slug string) (model.Profile, error) {
	return r.findOne(ctx, "find profile by slug", `slug = $1`, slug)
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (model.Profile, error) {
	return r.findOne(ctx, "find profile by user", `user_id = $1`, userID)
}

func (r *ProfileRepository) Create(ctx context.Context, p model.Profile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, slug, full_name, headline, location, location_link, avatar_url, avatar_key,
		                       short_bio, email, telephone, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Slug, p.FullName, p.Headline, p.Location, p.LocationLink, p.AvatarURL, p.AvatarKey,
		p.ShortBio, p.Email, p.Telephone, p.UserID, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Update(ctx context.Context, p model.Profile) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles
		 SET slug = $2, full_name = $3, headline = $4, location = $5, location_link = $6,
		     avatar_url = $7, avatar_key = $8, short_bio = $9, email = $10, telephone = $11, updated_at = $12
		 WHERE id = $1`,
		p.ID, p.Slug, p.FullName, p.Headline, p.Location, p.LocationLink,
		p.AvatarURL, p.AvatarKey, p.ShortBio, p.Email, p.Telephone, p.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Detail loads the public portfolio page: the profile with its links,
// experience, education, active projects and skills.
func (r *ProfileRepository) Detail(ctx context.Context, slug string) (model.ProfileDetail, error) {
	p, err := r.FindBySlug(ctx, slug)
	if err != nil {
		return model.ProfileDetail{}, err
	}

	d := model.ProfileDetail{Profile: p}

	if d.SocialLinks, err = querySocialLinks(ctx, r.pool, `WHERE profile_id = $1`, p.ID); err != nil {
		return model.ProfileDetail{}, err
	}
	if d.WorkExperience, err = queryWorkExperience(ctx, r.pool, `WHERE profile_id = $1`, p.ID); err != nil {
		return model.ProfileDetail{}, err
	}
	if d.Education, err = queryEducation(ctx, r.pool, `WHERE profile_id = $1`, p.ID); err != nil {
		return model.ProfileDetail{}, err
	}
	if d.Projects, err = queryProjects(ctx, r.pool, `WHERE profile_id = $1 AND is_active`, p.ID); err != nil {
		return model.ProfileDetail{}, err
	}
	if d.Skills, err = r.profileSkills(ctx, p.ID); err != nil {
		return model.ProfileDetail{}, err
	}

	return d, nil
}

func (r *ProfileRepository) profileSkills(ctx context.Context, profileID string) ([]model.ProfileSkill, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.name, s.category, s.created_at, ps.sort_order
		 FROM profile_skills ps JOIN skills s ON s.id = ps.skill_id
		 WHERE ps.profile_id = $1
		 ORDER BY ps.sort_order, s.name`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query profile skills: %w", err)
	}
	defer rows.Close()

	skills := make([]model.ProfileSkill, 0)
	for rows.Next() {
		var ps model.ProfileSkill
		if err := rows.Scan(&ps.Skill.ID, &ps.Skill.Name, &ps.Skill.Category, &ps.Skill.CreatedAt, &ps.SortOrder); err != nil {
			return nil, fmt.Errorf("scan profile skill: %w", err)
		}
		skills = append(skills, ps)
	}
	return skills, rows.Err()
}
