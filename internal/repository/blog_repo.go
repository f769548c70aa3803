package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/internal/model"
)

const blogSelect = `SELECT b.id, b.title, b.slug, b.content, b.summary, b.cover_image, b.cover_key, b.tags,
	b.published_at, b.author_id, p.full_name, p.avatar_url, b.created_at, b.updated_at
	FROM blog_posts b JOIN profiles p ON p.id = b.author_id`

type BlogRepository struct {
	pool *pgxpool.Pool
}

func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

func scanBlogPost(row pgx.Row) (model.BlogPost, error) {
	var b model.BlogPost
	err := row.Scan(&b.ID, &b.Title, &b.Slug, &b.Content, &b.Summary, &b.CoverImage, &b.CoverKey, &b.Tags,
		&b.PublishedAt, &b.AuthorID, &b.Author.FullName, &b.Author.AvatarURL, &b.CreatedAt, &b.UpdatedAt)
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return b, err
}

// List returns posts newest first. publishedOnly hides drafts.
func (r *BlogRepository) List(ctx context.Context, publishedOnly bool) ([]model.BlogPost, error) {
	query := blogSelect
	if publishedOnly {
		query += ` WHERE b.published_at IS NOT NULL`
	}
	query += ` ORDER BY b.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.BlogPost, 0)
	for rows.Next() {
		b, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog post: %w", err)
		}
		posts = append(posts, b)
	}
	return posts, rows.Err()
}

func (r *BlogRepository) findOne(ctx context.Context, op string, where string, arg any) (model.BlogPost, error) {
	b, err := scanBlogPost(r.pool.QueryRow(ctx, blogSelect+` WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.BlogPost{}, model.ErrNotFound
	}
	if err != nil {
		return model.BlogPost{}, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	return r.findOne(ctx, "find blog post by slug", `b.slug = $1`, slug)
}

func (r *BlogRepository) FindByID(ctx context.Context, id string) (model.BlogPost, error) {
	return r.findOne(ctx, "find blog post", `b.id = $1`, id)
}

func (r *BlogRepository) Create(ctx context.Context, b model.BlogPost) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO blog_posts (id, title, slug, content, summary, cover_image, cover_key, tags, published_at,
		                         author_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.Title, b.Slug, b.Content, b.Summary, b.CoverImage, b.CoverKey, b.Tags, b.PublishedAt,
		b.AuthorID, b.CreatedAt, b.UpdatedAt)
	return contentWriteError("create blog post", err, 1)
}

func (r *BlogRepository) Update(ctx context.Context, b model.BlogPost) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE blog_posts
		 SET title = $2, slug = $3, content = $4, summary = $5, cover_image = $6, cover_key = $7, tags = $8,
		     published_at = $9, updated_at = $10
		 WHERE id = $1`,
		b.ID, b.Title, b.Slug, b.Content, b.Summary, b.CoverImage, b.CoverKey, b.Tags, b.PublishedAt, b.UpdatedAt)
	return contentWriteError("update blog post", err, tag.RowsAffected())
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	return contentWriteError("delete blog post", err, tag.RowsAffected())
}
