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

const socialLinkColumns = `id, platform, url, icon, navbar, sort_order, profile_id, created_at, updated_at`

type SocialLinkRepository struct {
	pool *pgxpool.Pool
}

func NewSocialLinkRepository(pool *pgxpool.Pool) *SocialLinkRepository {
	return &SocialLinkRepository{pool: pool}
}

func scanSocialLink(row pgx.Row) (model.SocialLink, error) {
	var l model.SocialLink
	err := row.Scan(&l.ID, &l.Platform, &l.URL, &l.Icon, &l.Navbar, &l.SortOrder, &l.ProfileID, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func querySocialLinks(ctx context.Context, db database.DBTX, where string, args ...any) ([]model.SocialLink, error) {
	rows, err := db.Query(ctx,
		`SELECT `+socialLinkColumns+` FROM social_links `+where+` ORDER BY sort_order, created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("query social links: %w", err)
	}
	defer rows.Close()

	links := make([]model.SocialLink, 0)
	for rows.Next() {
		l, err := scanSocialLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan social link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SocialLinkRepository) List(ctx context.Context, profileID string) ([]model.SocialLink, error) {
	if profileID == "" {
		return querySocialLinks(ctx, r.pool, "")
	}
	return querySocialLinks(ctx, r.pool, `WHERE profile_id = $1`, profileID)
}

func (r *SocialLinkRepository) FindByID(ctx context.Context, id string) (model.SocialLink, error) {
	l, err := scanSocialLink(r.pool.QueryRow(ctx, `SELECT `+socialLinkColumns+` FROM social_links WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SocialLink{}, model.ErrNotFound
	}
	if err != nil {
		return model.SocialLink{}, fmt.Errorf("find social link: %w", err)
	}
	return l, nil
}

func (r *SocialLinkRepository) Create(ctx context.Context, l model.SocialLink) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO social_links (id, platform, url, icon, navbar, sort_order, profile_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.Platform, l.URL, l.Icon, l.Navbar, l.SortOrder, l.ProfileID, l.CreatedAt, l.UpdatedAt)
	return contentWriteError("create social link", err, 1)
}

func (r *SocialLinkRepository) Update(ctx context.Context, l model.SocialLink) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE social_links
		 SET platform = $2, url = $3, icon = $4, navbar = $5, sort_order = $6, profile_id = $7, updated_at = $8
		 WHERE id = $1`,
		l.ID, l.Platform, l.URL, l.Icon, l.Navbar, l.SortOrder, l.ProfileID, l.UpdatedAt)
	return contentWriteError("update social link", err, tag.RowsAffected())
}

func (r *SocialLinkRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM social_links WHERE id = $1`, id)
	return contentWriteError("delete social link", err, tag.RowsAffected())
}
